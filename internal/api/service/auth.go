package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/opslane/clientdesk/internal/api/domain"
	"github.com/opslane/clientdesk/internal/api/mail"
	"github.com/opslane/clientdesk/internal/api/metrics"
	"github.com/opslane/clientdesk/internal/api/store"
	"github.com/opslane/clientdesk/pkg/cryptox"
	"github.com/opslane/clientdesk/pkg/idx"
	"github.com/opslane/clientdesk/pkg/jwtx"
	"github.com/opslane/clientdesk/pkg/slogx"

	"github.com/pquerna/otp/totp"
)

// DefaultOTPTTL is how long an emailed verification code stays valid.
const DefaultOTPTTL = 10 * time.Minute

var (
	ErrInvalidSignupRequest = errors.New("invalid signup request")
	ErrInvalidCompany       = errors.New("invalid or inactive company")
	ErrEmailTaken           = errors.New("email or username already taken")
	ErrInvalidCredentials   = errors.New("invalid email or password")
	ErrInvalidOTP           = errors.New("invalid or expired verification code")
	ErrAlreadyVerified      = errors.New("account already verified")
	ErrMFARequired          = errors.New("mfa code required")
	ErrInvalidRefreshToken  = errors.New("invalid refresh token")
)

type AuthService struct {
	Store    store.Store
	Mailer   mail.Mailer
	Signer   jwtx.Signer
	Verifier jwtx.Verifier

	Issuer     string
	OTPTTL     time.Duration
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

// SignupRequest carries the fields of a new account registration. The
// account joins an existing company; registering the company itself is
// CompanyService territory.
type SignupRequest struct {
	CompanyID string
	Email     string
	Username  string
	Password  string
	FirstName string
	LastName  string
	Address   string
}

// Signup creates an unverified account in an existing company and mails a
// one-time verification code.
func (s *AuthService) Signup(ctx context.Context, req SignupRequest) (domain.Account, error) {
	log := slogx.FromContext(ctx)

	// 1. Validate input.
	if req.CompanyID == "" || req.Email == "" || req.Username == "" || req.Password == "" {
		return domain.Account{}, ErrInvalidSignupRequest
	}

	// 2. The company must exist and be active.
	company, err := s.Store.Companies().GetCompanyByID(ctx, req.CompanyID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			log.Warn("signup attempted for unknown company",
				slog.String("company_id", req.CompanyID),
			)
			metrics.Signup(metrics.StatusRejected)
			return domain.Account{}, ErrInvalidCompany
		}
		log.Error("failed to fetch company", slog.Any("error", err))
		return domain.Account{}, err
	}
	if !company.IsActive {
		metrics.Signup(metrics.StatusRejected)
		return domain.Account{}, ErrInvalidCompany
	}

	// 3. Hash the password.
	passwordHash, err := cryptox.HashPassword(req.Password)
	if err != nil {
		log.Error("failed to hash password", slog.Any("error", err))
		return domain.Account{}, err
	}

	// 4. Generate the verification code.
	code, err := cryptox.GenerateOTP()
	if err != nil {
		log.Error("failed to generate otp", slog.Any("error", err))
		return domain.Account{}, err
	}

	now := time.Now().UTC()
	expiresAt := now.Add(s.otpTTL())

	account := domain.Account{
		ID:           idx.New().String(),
		Email:        req.Email,
		Username:     req.Username,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Address:      req.Address,
		PasswordHash: passwordHash,
		Role:         domain.RoleMember,
		CompanyID:    req.CompanyID,
		Verified:     false,
		OTP:          &code,
		OTPExpiresAt: &expiresAt,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	// 5. Persist. The per-tenant unique indexes arbitrate duplicates.
	if err := s.Store.Accounts().CreateAccount(ctx, account); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			log.Warn("signup attempted with taken email or username",
				slog.String("company_id", req.CompanyID),
			)
			metrics.Signup(metrics.StatusRejected)
			return domain.Account{}, ErrEmailTaken
		}
		log.Error("failed to create account", slog.Any("error", err))
		metrics.Signup(metrics.StatusError)
		return domain.Account{}, err
	}

	// 6. Mail the code. Fire and forget; a delivery failure never fails
	// the signup, the user can request a resend.
	s.sendVerification(ctx, account.Email, account.Username, code)

	log.Info("account registered",
		slog.String("account_id", account.ID),
		slog.String("company_id", account.CompanyID),
	)
	metrics.Signup(metrics.StatusOK)

	return account, nil
}

// VerifyOTP marks an account verified when the submitted code matches and
// has not expired. The code is single-use: success clears it.
func (s *AuthService) VerifyOTP(ctx context.Context, companyID, email, code string) (domain.Account, error) {
	log := slogx.FromContext(ctx)

	account, err := s.Store.Accounts().GetAccountByEmail(ctx, companyID, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			metrics.OTPVerification(metrics.StatusRejected)
			return domain.Account{}, ErrInvalidOTP
		}
		log.Error("failed to fetch account", slog.Any("error", err))
		return domain.Account{}, err
	}

	// A cleared or never-set code can never match. Comparing against the
	// stored value also makes verification single-use: the success path
	// below clears the fields.
	if account.OTP == nil || account.OTPExpiresAt == nil || *account.OTP != code {
		metrics.OTPVerification(metrics.StatusRejected)
		return domain.Account{}, ErrInvalidOTP
	}

	// A code expiring exactly now is already expired.
	if !time.Now().UTC().Before(*account.OTPExpiresAt) {
		metrics.OTPVerification(metrics.StatusRejected)
		return domain.Account{}, ErrInvalidOTP
	}

	if err := s.Store.Accounts().MarkVerified(ctx, account.ID); err != nil {
		log.Error("failed to mark account verified", slog.Any("error", err))
		return domain.Account{}, err
	}

	account.Verified = true
	account.OTP = nil
	account.OTPExpiresAt = nil

	log.Info("account verified", slog.String("account_id", account.ID))
	metrics.OTPVerification(metrics.StatusOK)

	return account, nil
}

// ResendOTP issues a fresh verification code for an unverified account and
// mails it, replacing any previous code.
func (s *AuthService) ResendOTP(ctx context.Context, companyID, email string) error {
	log := slogx.FromContext(ctx)

	account, err := s.Store.Accounts().GetAccountByEmail(ctx, companyID, email)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			log.Error("failed to fetch account", slog.Any("error", err))
		}
		return err
	}

	if account.Verified {
		return ErrAlreadyVerified
	}

	code, err := cryptox.GenerateOTP()
	if err != nil {
		log.Error("failed to generate otp", slog.Any("error", err))
		return err
	}

	expiresAt := time.Now().UTC().Add(s.otpTTL())
	if err := s.Store.Accounts().UpdateOTP(ctx, account.ID, code, expiresAt); err != nil {
		log.Error("failed to update otp", slog.Any("error", err))
		return err
	}

	s.sendVerification(ctx, account.Email, account.Username, code)

	log.Debug("verification code reissued", slog.String("account_id", account.ID))
	return nil
}

// Login authenticates an account within a company and mints a token pair.
// Unknown email and wrong password are indistinguishable to the caller; a
// pending MFA requirement is not.
func (s *AuthService) Login(ctx context.Context, companyID, email, password, totpCode string) (domain.Account, domain.TokenPair, error) {
	log := slogx.FromContext(ctx)

	account, err := s.Store.Accounts().GetAccountByEmail(ctx, companyID, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			metrics.Login(metrics.StatusRejected)
			return domain.Account{}, domain.TokenPair{}, ErrInvalidCredentials
		}
		log.Error("failed to fetch account", slog.Any("error", err))
		return domain.Account{}, domain.TokenPair{}, err
	}

	if err := cryptox.VerifyPassword(password, account.PasswordHash); err != nil {
		if errors.Is(err, cryptox.ErrPasswordMismatch) {
			log.Warn("login attempted with wrong password",
				slog.String("account_id", account.ID),
			)
			metrics.Login(metrics.StatusRejected)
			return domain.Account{}, domain.TokenPair{}, ErrInvalidCredentials
		}
		log.Error("failed to verify password", slog.Any("error", err))
		return domain.Account{}, domain.TokenPair{}, err
	}

	amr := []string{jwtx.AMRPassword}
	if account.MFAEnabled() {
		if totpCode == "" {
			metrics.Login(metrics.StatusRejected)
			return domain.Account{}, domain.TokenPair{}, ErrMFARequired
		}
		if !totp.Validate(totpCode, *account.MFASecret) {
			log.Warn("login attempted with invalid totp code",
				slog.String("account_id", account.ID),
			)
			metrics.Login(metrics.StatusRejected)
			return domain.Account{}, domain.TokenPair{}, ErrInvalidTOTPCode
		}
		amr = append(amr, jwtx.AMRTOTP)
	}

	pair, err := s.issueTokenPair(account, amr)
	if err != nil {
		log.Error("failed to sign tokens", slog.Any("error", err))
		return domain.Account{}, domain.TokenPair{}, err
	}

	log.Info("login succeeded",
		slog.String("account_id", account.ID),
		slog.String("company_id", account.CompanyID),
	)
	metrics.Login(metrics.StatusOK)

	return account, pair, nil
}

// Refresh verifies a refresh token and mints a fresh token pair with
// claims re-read from the current account state.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (domain.TokenPair, error) {
	log := slogx.FromContext(ctx)

	claims, err := s.Verifier.Verify(refreshToken)
	if err != nil {
		return domain.TokenPair{}, ErrInvalidRefreshToken
	}
	if claims.TokenType != jwtx.TokenTypeRefresh {
		log.Warn("access token presented as refresh token",
			slog.String("account_id", claims.Subject),
		)
		return domain.TokenPair{}, ErrInvalidRefreshToken
	}

	account, err := s.Store.Accounts().GetAccountByID(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.TokenPair{}, ErrInvalidRefreshToken
		}
		log.Error("failed to fetch account", slog.Any("error", err))
		return domain.TokenPair{}, err
	}

	pair, err := s.issueTokenPair(account, claims.AMR)
	if err != nil {
		log.Error("failed to sign tokens", slog.Any("error", err))
		return domain.TokenPair{}, err
	}

	log.Debug("token pair refreshed", slog.String("account_id", account.ID))
	return pair, nil
}

// Profile returns the account behind a verified access token subject.
func (s *AuthService) Profile(ctx context.Context, accountID string) (domain.Account, error) {
	return s.Store.Accounts().GetAccountByID(ctx, accountID)
}

func (s *AuthService) issueTokenPair(account domain.Account, amr []string) (domain.TokenPair, error) {
	now := time.Now().UTC()

	accessTTL := s.AccessTTL
	if accessTTL <= 0 {
		accessTTL = jwtx.DefaultAccessTokenTTL
	}
	refreshTTL := s.RefreshTTL
	if refreshTTL <= 0 {
		refreshTTL = jwtx.DefaultRefreshTokenTTL
	}

	access, err := s.Signer.Sign(jwtx.NewClaims(
		jwtx.TokenTypeAccess, account.ID, account.Email, account.Username,
		string(account.Role), account.CompanyID, amr,
		s.Issuer, accessTTL, now,
	))
	if err != nil {
		return domain.TokenPair{}, err
	}

	refresh, err := s.Signer.Sign(jwtx.NewClaims(
		jwtx.TokenTypeRefresh, account.ID, account.Email, account.Username,
		string(account.Role), account.CompanyID, amr,
		s.Issuer, refreshTTL, now,
	))
	if err != nil {
		return domain.TokenPair{}, err
	}

	return domain.TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresIn:    accessTTL,
	}, nil
}

func (s *AuthService) otpTTL() time.Duration {
	if s.OTPTTL > 0 {
		return s.OTPTTL
	}
	return DefaultOTPTTL
}

// sendVerification mails the code on a detached context so an in-flight
// request cancellation does not abort delivery.
func (s *AuthService) sendVerification(ctx context.Context, email, username, code string) {
	if s.Mailer == nil {
		return
	}
	bg := context.WithoutCancel(ctx)
	go func() {
		if err := s.Mailer.SendVerification(bg, email, username, code); err != nil {
			slogx.FromContext(bg).Warn("failed to send verification mail",
				slog.Any("error", err),
			)
		}
	}()
}
