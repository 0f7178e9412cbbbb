package http

import (
	"bytes"
	"context"
	"crypto/ed25519"
	"crypto/rand"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/opslane/clientdesk/internal/api/domain"
	"github.com/opslane/clientdesk/internal/api/service"
	"github.com/opslane/clientdesk/internal/api/store"
	"github.com/opslane/clientdesk/internal/api/store/drivers/sqlite"
	"github.com/opslane/clientdesk/pkg/cryptox"
	"github.com/opslane/clientdesk/pkg/idx"
	"github.com/opslane/clientdesk/pkg/jwtx"

	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	dir, err := os.MkdirTemp("", "http-test")
	if err != nil {
		os.Exit(1)
	}
	cryptox.SetPepperPath(filepath.Join(dir, "pepper"))

	code := m.Run()
	os.RemoveAll(dir)
	os.Exit(code)
}

func newTestRouter(t *testing.T) (*Router, store.Store) {
	t.Helper()

	st, err := sqlite.NewStore("file:" + filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	require.NoError(t, st.ApplyMigrations())

	_, priv, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)
	keys := jwtx.NewEdDSAKeys(priv, "clientdesk-test")

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	r := NewRouter(keys, "test", st, logger)
	r.AuthService = &service.AuthService{
		Store:    st,
		Signer:   keys,
		Verifier: keys,
		Issuer:   "clientdesk-test",
	}
	r.InviteService = &service.InviteService{Store: st, BaseURL: "http://localhost:8080"}
	r.MFAService = &service.MFAService{Store: st, Issuer: "clientdesk-test"}
	r.CompanyService = &service.CompanyService{Store: st}
	r.ClientService = &service.ClientService{Store: st}
	r.ApplyRoutes()

	return r, st
}

func seedAdmin(t *testing.T, st store.Store, companyID, email string) domain.Account {
	t.Helper()

	hash, err := cryptox.HashPassword("root-password")
	require.NoError(t, err)

	now := time.Now().UTC()
	account := domain.Account{
		ID:           idx.New().String(),
		Email:        email,
		Username:     email,
		PasswordHash: hash,
		Role:         domain.RoleAdmin,
		CompanyID:    companyID,
		Verified:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	require.NoError(t, st.Accounts().CreateAccount(context.Background(), account))
	return account
}

// doJSON fires one request through the router. The forwarded-for header
// keys the per-IP rate limit buckets, so each logical actor gets its own.
func doJSON(t *testing.T, r *Router, method, target, token, forwardedFor string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, target, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if forwardedFor != "" {
		req.Header.Set("X-Forwarded-For", forwardedFor)
	}

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&v))
	return v
}

// TestAPIFlow walks the whole tenant lifecycle over the wire: register a
// company, sign up into it, verify, log in, invite, redeem, and manage
// client records with the resulting tokens.
func TestAPIFlow(t *testing.T) {
	r, st := newTestRouter(t)
	ctx := context.Background()

	// Company registration.
	rec := doJSON(t, r, http.MethodGet, "/v1/companies/check-slug?slug=acme", "", "10.0.0.1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.True(t, decodeBody[checkSlugResponse](t, rec).Available)

	rec = doJSON(t, r, http.MethodPost, "/v1/companies", "", "10.0.0.1", companyRequest{
		Name: "Acme", Slug: "acme", Industry: "software",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	company := decodeBody[CompanyResponse](t, rec)
	require.True(t, company.IsActive)

	rec = doJSON(t, r, http.MethodGet, "/v1/companies/check-slug?slug=acme", "", "10.0.0.1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.False(t, decodeBody[checkSlugResponse](t, rec).Available)

	// Signup lands unverified with a pending code.
	rec = doJSON(t, r, http.MethodPost, "/v1/auth/signup", "", "10.0.0.2", signupRequest{
		CompanyID: company.ID, Email: "alice@acme.test", Username: "alice", Password: "correct horse",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	require.False(t, decodeBody[AccountResponse](t, rec).Verified)

	// The code never leaves the mail path; fish it out of the store the
	// way the mailer would have received it.
	pending, err := st.Accounts().GetAccountByEmail(ctx, company.ID, "alice@acme.test")
	require.NoError(t, err)
	require.NotNil(t, pending.OTP)

	rec = doJSON(t, r, http.MethodPost, "/v1/auth/verify-otp", "", "10.0.0.2", verifyOTPRequest{
		CompanyID: company.ID, Email: "alice@acme.test", Code: *pending.OTP,
	})
	require.Equal(t, http.StatusOK, rec.Code)
	require.True(t, decodeBody[AccountResponse](t, rec).Verified)

	rec = doJSON(t, r, http.MethodPost, "/v1/auth/login", "", "10.0.0.2", loginRequest{
		CompanyID: company.ID, Email: "alice@acme.test", Password: "correct horse",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	alice := decodeBody[loginResponse](t, rec)
	require.Equal(t, "Bearer", alice.Tokens.TokenType)
	require.NotEmpty(t, alice.Tokens.AccessToken)

	// The bearer token works; garbage does not.
	rec = doJSON(t, r, http.MethodGet, "/v1/auth/profile", alice.Tokens.AccessToken, "10.0.0.2", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "alice@acme.test", decodeBody[AccountResponse](t, rec).Email)

	rec = doJSON(t, r, http.MethodGet, "/v1/auth/profile", "not-a-token", "10.0.0.2", nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	// A refresh token opens no doors by itself but mints a fresh pair.
	rec = doJSON(t, r, http.MethodGet, "/v1/auth/profile", alice.Tokens.RefreshToken, "10.0.0.2", nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = doJSON(t, r, http.MethodPost, "/v1/auth/refresh", "", "10.0.0.2", refreshRequest{
		RefreshToken: alice.Tokens.RefreshToken,
	})
	require.Equal(t, http.StatusOK, rec.Code)
	require.NotEmpty(t, decodeBody[TokenResponse](t, rec).AccessToken)

	// Alice is a member, so invitations and client records are closed to
	// her.
	rec = doJSON(t, r, http.MethodPost, "/v1/users/invite", alice.Tokens.AccessToken, "10.0.0.2", inviteRequest{
		Email: "bob@acme.test", Role: "member",
	})
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = doJSON(t, r, http.MethodGet, "/v1/clients", alice.Tokens.AccessToken, "10.0.0.2", nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	// Seed an admin directly; roles are never self-assigned through the
	// public surface.
	seedAdmin(t, st, company.ID, "root@acme.test")
	rec = doJSON(t, r, http.MethodPost, "/v1/auth/login", "", "10.0.0.3", loginRequest{
		CompanyID: company.ID, Email: "root@acme.test", Password: "root-password",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	admin := decodeBody[loginResponse](t, rec)

	// Invite bob and redeem the token. The invitation decides the role and
	// the account starts verified.
	rec = doJSON(t, r, http.MethodPost, "/v1/users/invite", admin.Tokens.AccessToken, "10.0.0.3", inviteRequest{
		Email: "bob@acme.test", Role: "member",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	invite := decodeBody[inviteResponse](t, rec)
	require.NotEmpty(t, invite.Token)

	rec = doJSON(t, r, http.MethodPost, "/v1/users/register", "", "10.0.0.4", registerRequest{
		Token: invite.Token, Email: "bob@acme.test", CompanyID: company.ID,
		Username: "bob", Password: "hunter2",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	bob := decodeBody[AccountResponse](t, rec)
	require.True(t, bob.Verified)
	require.Equal(t, "member", bob.Role)

	// Consumed tokens are dead.
	rec = doJSON(t, r, http.MethodPost, "/v1/users/register", "", "10.0.0.4", registerRequest{
		Token: invite.Token, Email: "bob@acme.test", CompanyID: company.ID,
		Username: "bob2", Password: "hunter2",
	})
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	// Client records, admin-gated and tenant-scoped.
	rec = doJSON(t, r, http.MethodPost, "/v1/clients", admin.Tokens.AccessToken, "10.0.0.3", clientRequest{
		Name: "Wayne Enterprises", PrimaryContactEmail: "lucius@wayne.test",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	client := decodeBody[ClientResponse](t, rec)
	require.Equal(t, company.ID, client.CompanyID)

	rec = doJSON(t, r, http.MethodPost, "/v1/clients", admin.Tokens.AccessToken, "10.0.0.3", clientRequest{
		Name: "Wayne Shadow", PrimaryContactEmail: "lucius@wayne.test",
	})
	require.Equal(t, http.StatusConflict, rec.Code)

	rec = doJSON(t, r, http.MethodGet, "/v1/clients", admin.Tokens.AccessToken, "10.0.0.3", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	list := decodeBody[ClientListResponse](t, rec)
	require.Equal(t, 1, list.Total)

	rec = doJSON(t, r, http.MethodPatch, "/v1/clients/"+client.ID, admin.Tokens.AccessToken, "10.0.0.3", clientRequest{
		Name: "Wayne Enterprises Ltd",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "Wayne Enterprises Ltd", decodeBody[ClientResponse](t, rec).Name)

	rec = doJSON(t, r, http.MethodDelete, "/v1/clients/"+client.ID, admin.Tokens.AccessToken, "10.0.0.3", nil)
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = doJSON(t, r, http.MethodGet, "/v1/clients/"+client.ID, admin.Tokens.AccessToken, "10.0.0.3", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestTenantIsolationOverHTTP(t *testing.T) {
	r, st := newTestRouter(t)

	register := func(t *testing.T, name, slug, email, ip string) loginResponse {
		t.Helper()

		rec := doJSON(t, r, http.MethodPost, "/v1/companies", "", ip, companyRequest{Name: name, Slug: slug})
		require.Equal(t, http.StatusCreated, rec.Code)
		company := decodeBody[CompanyResponse](t, rec)

		seedAdmin(t, st, company.ID, email)

		rec = doJSON(t, r, http.MethodPost, "/v1/auth/login", "", ip, loginRequest{
			CompanyID: company.ID, Email: email, Password: "root-password",
		})
		require.Equal(t, http.StatusOK, rec.Code)
		return decodeBody[loginResponse](t, rec)
	}

	acme := register(t, "Acme", "acme", "admin@acme.test", "10.1.0.1")
	globex := register(t, "Globex", "globex", "admin@globex.test", "10.1.0.2")

	rec := doJSON(t, r, http.MethodPost, "/v1/clients", acme.Tokens.AccessToken, "10.1.0.1", clientRequest{
		Name: "Wayne Enterprises",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	client := decodeBody[ClientResponse](t, rec)

	// Globex holds a valid admin token, but the record belongs to Acme.
	rec = doJSON(t, r, http.MethodGet, "/v1/clients/"+client.ID, globex.Tokens.AccessToken, "10.1.0.2", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)

	rec = doJSON(t, r, http.MethodDelete, "/v1/clients/"+client.ID, globex.Tokens.AccessToken, "10.1.0.2", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)

	rec = doJSON(t, r, http.MethodGet, "/v1/clients", globex.Tokens.AccessToken, "10.1.0.2", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Zero(t, decodeBody[ClientListResponse](t, rec).Total)
}

func TestLoginRateLimit(t *testing.T) {
	r, _ := newTestRouter(t)

	// The strict profile allows a burst of five per IP; the sixth attempt
	// must be throttled regardless of payload.
	var last *httptest.ResponseRecorder
	for i := 0; i < 6; i++ {
		last = doJSON(t, r, http.MethodPost, "/v1/auth/login", "", "10.2.0.1", loginRequest{
			CompanyID: "nope", Email: "ghost@nowhere.test", Password: "wrong",
		})
	}
	require.Equal(t, http.StatusTooManyRequests, last.Code)
	require.NotEmpty(t, last.Header().Get("Retry-After"))

	// A different source address is unaffected.
	rec := doJSON(t, r, http.MethodPost, "/v1/auth/login", "", "10.2.0.2", loginRequest{
		CompanyID: "nope", Email: "ghost@nowhere.test", Password: "wrong",
	})
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestSystemEndpoints(t *testing.T) {
	r, _ := newTestRouter(t)

	rec := doJSON(t, r, http.MethodGet, "/livez", "", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "ok", decodeBody[livezResponse](t, rec).Status)

	rec = doJSON(t, r, http.MethodGet, "/readyz", "", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, r, http.MethodGet, "/metrics", "", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "go_goroutines")
}
