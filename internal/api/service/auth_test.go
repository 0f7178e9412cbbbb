package service

import (
	"context"
	"testing"
	"time"

	"github.com/opslane/clientdesk/internal/api/store"
	"github.com/opslane/clientdesk/pkg/jwtx"

	"github.com/stretchr/testify/require"
)

func TestSignup(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	st := newTestStore(t)
	svc := newAuthService(t, st)
	company := seedCompany(t, st, "Acme", "acme")

	t.Run("creates an unverified account with a pending code", func(t *testing.T) {
		account, err := svc.Signup(ctx, SignupRequest{
			CompanyID: company.ID,
			Email:     "alice@acme.test",
			Username:  "alice",
			Password:  "correct horse",
		})
		require.NoError(t, err)
		require.False(t, account.Verified)
		require.NotNil(t, account.OTP)
		require.Len(t, *account.OTP, 6)
		require.NotNil(t, account.OTPExpiresAt)
		require.WithinDuration(t, time.Now().Add(DefaultOTPTTL), *account.OTPExpiresAt, 5*time.Second)
	})

	t.Run("rejects missing fields", func(t *testing.T) {
		_, err := svc.Signup(ctx, SignupRequest{CompanyID: company.ID, Email: "x@acme.test"})
		require.ErrorIs(t, err, ErrInvalidSignupRequest)
	})

	t.Run("rejects unknown company", func(t *testing.T) {
		_, err := svc.Signup(ctx, SignupRequest{
			CompanyID: "01J00000000000000000000000",
			Email:     "bob@acme.test",
			Username:  "bob",
			Password:  "pw",
		})
		require.ErrorIs(t, err, ErrInvalidCompany)
	})

	t.Run("rejects inactive company", func(t *testing.T) {
		dormant := seedCompany(t, st, "Dormant", "dormant")
		require.NoError(t, st.Companies().UpdateCompanyStatus(ctx, dormant.ID, false))

		_, err := svc.Signup(ctx, SignupRequest{
			CompanyID: dormant.ID,
			Email:     "bob@dormant.test",
			Username:  "bob",
			Password:  "pw",
		})
		require.ErrorIs(t, err, ErrInvalidCompany)
	})

	t.Run("duplicate email in the same company conflicts", func(t *testing.T) {
		_, err := svc.Signup(ctx, SignupRequest{
			CompanyID: company.ID,
			Email:     "alice@acme.test",
			Username:  "alice2",
			Password:  "pw",
		})
		require.ErrorIs(t, err, ErrEmailTaken)
	})

	t.Run("same email registers independently in another company", func(t *testing.T) {
		other := seedCompany(t, st, "Globex", "globex")

		account, err := svc.Signup(ctx, SignupRequest{
			CompanyID: other.ID,
			Email:     "alice@acme.test",
			Username:  "alice",
			Password:  "pw",
		})
		require.NoError(t, err)
		require.Equal(t, other.ID, account.CompanyID)
	})
}

func TestVerifyOTP(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	st := newTestStore(t)
	svc := newAuthService(t, st)
	company := seedCompany(t, st, "Acme", "acme")

	signup := func(t *testing.T, email string) (string, string) {
		t.Helper()
		account, err := svc.Signup(ctx, SignupRequest{
			CompanyID: company.ID,
			Email:     email,
			Username:  email,
			Password:  "pw",
		})
		require.NoError(t, err)
		return account.Email, *account.OTP
	}

	t.Run("succeeds exactly once", func(t *testing.T) {
		email, code := signup(t, "once@acme.test")

		account, err := svc.VerifyOTP(ctx, company.ID, email, code)
		require.NoError(t, err)
		require.True(t, account.Verified)
		require.Nil(t, account.OTP)

		// Second attempt with the same code fails: the success path
		// cleared the stored code.
		_, err = svc.VerifyOTP(ctx, company.ID, email, code)
		require.ErrorIs(t, err, ErrInvalidOTP)
	})

	t.Run("wrong code fails", func(t *testing.T) {
		email, code := signup(t, "wrong@acme.test")

		bad := "000000"
		if bad == code {
			bad = "000001"
		}
		_, err := svc.VerifyOTP(ctx, company.ID, email, bad)
		require.ErrorIs(t, err, ErrInvalidOTP)
	})

	t.Run("unknown account fails the same way", func(t *testing.T) {
		_, err := svc.VerifyOTP(ctx, company.ID, "ghost@acme.test", "123456")
		require.ErrorIs(t, err, ErrInvalidOTP)
	})

	t.Run("a code expiring exactly now is expired", func(t *testing.T) {
		email, code := signup(t, "edge@acme.test")

		account, err := st.Accounts().GetAccountByEmail(ctx, company.ID, email)
		require.NoError(t, err)
		require.NoError(t, st.Accounts().UpdateOTP(ctx, account.ID, code, time.Now().UTC()))

		_, err = svc.VerifyOTP(ctx, company.ID, email, code)
		require.ErrorIs(t, err, ErrInvalidOTP)
	})

	t.Run("verification is tenant scoped", func(t *testing.T) {
		other := seedCompany(t, st, "Globex", "globex")
		email, code := signup(t, "scoped@acme.test")

		_, err := svc.VerifyOTP(ctx, other.ID, email, code)
		require.ErrorIs(t, err, ErrInvalidOTP)
	})
}

func TestResendOTP(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	st := newTestStore(t)
	svc := newAuthService(t, st)
	company := seedCompany(t, st, "Acme", "acme")

	t.Run("replaces the pending code", func(t *testing.T) {
		account, err := svc.Signup(ctx, SignupRequest{
			CompanyID: company.ID,
			Email:     "resend@acme.test",
			Username:  "resend",
			Password:  "pw",
		})
		require.NoError(t, err)
		oldCode := *account.OTP

		require.NoError(t, svc.ResendOTP(ctx, company.ID, account.Email))

		refreshed, err := st.Accounts().GetAccountByEmail(ctx, company.ID, account.Email)
		require.NoError(t, err)
		require.NotNil(t, refreshed.OTP)

		// The old code no longer verifies unless the 1-in-16M collision
		// hit; the new one does.
		if *refreshed.OTP != oldCode {
			_, err = svc.VerifyOTP(ctx, company.ID, account.Email, oldCode)
			require.ErrorIs(t, err, ErrInvalidOTP)
		}
		_, err = svc.VerifyOTP(ctx, company.ID, account.Email, *refreshed.OTP)
		require.NoError(t, err)
	})

	t.Run("fails for a verified account", func(t *testing.T) {
		account := seedAccount(t, st, company.ID, "done@acme.test", "member")
		err := svc.ResendOTP(ctx, company.ID, account.Email)
		require.ErrorIs(t, err, ErrAlreadyVerified)
	})

	t.Run("fails for an unknown account", func(t *testing.T) {
		err := svc.ResendOTP(ctx, company.ID, "ghost@acme.test")
		require.ErrorIs(t, err, store.ErrNotFound)
	})
}

func TestLogin(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	st := newTestStore(t)
	svc := newAuthService(t, st)
	company := seedCompany(t, st, "Acme", "acme")
	account := seedAccount(t, st, company.ID, "alice@acme.test", "member")

	t.Run("returns a token pair on success", func(t *testing.T) {
		got, pair, err := svc.Login(ctx, company.ID, account.Email, "hunter2-correct", "")
		require.NoError(t, err)
		require.Equal(t, account.ID, got.ID)
		require.NotEmpty(t, pair.AccessToken)
		require.NotEmpty(t, pair.RefreshToken)

		claims, err := svc.Verifier.Verify(pair.AccessToken)
		require.NoError(t, err)
		require.Equal(t, jwtx.TokenTypeAccess, claims.TokenType)
		require.Equal(t, account.ID, claims.Subject)
		require.Equal(t, company.ID, claims.CompanyID)
		require.Equal(t, []string{jwtx.AMRPassword}, claims.AMR)
	})

	t.Run("wrong password and unknown email are indistinguishable", func(t *testing.T) {
		_, _, err := svc.Login(ctx, company.ID, account.Email, "wrong", "")
		require.ErrorIs(t, err, ErrInvalidCredentials)

		_, _, err = svc.Login(ctx, company.ID, "ghost@acme.test", "hunter2-correct", "")
		require.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("credentials do not cross tenants", func(t *testing.T) {
		other := seedCompany(t, st, "Globex", "globex")
		_, _, err := svc.Login(ctx, other.ID, account.Email, "hunter2-correct", "")
		require.ErrorIs(t, err, ErrInvalidCredentials)
	})
}

func TestRefresh(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	st := newTestStore(t)
	svc := newAuthService(t, st)
	company := seedCompany(t, st, "Acme", "acme")
	account := seedAccount(t, st, company.ID, "alice@acme.test", "member")

	_, pair, err := svc.Login(ctx, company.ID, account.Email, "hunter2-correct", "")
	require.NoError(t, err)

	t.Run("mints a fresh pair from a refresh token", func(t *testing.T) {
		fresh, err := svc.Refresh(ctx, pair.RefreshToken)
		require.NoError(t, err)

		claims, err := svc.Verifier.Verify(fresh.AccessToken)
		require.NoError(t, err)
		require.Equal(t, jwtx.TokenTypeAccess, claims.TokenType)
		require.Equal(t, account.ID, claims.Subject)
	})

	t.Run("rejects an access token presented as refresh", func(t *testing.T) {
		_, err := svc.Refresh(ctx, pair.AccessToken)
		require.ErrorIs(t, err, ErrInvalidRefreshToken)
	})

	t.Run("rejects garbage", func(t *testing.T) {
		_, err := svc.Refresh(ctx, "not-a-token")
		require.ErrorIs(t, err, ErrInvalidRefreshToken)
	})
}
