package httpx_test

import (
	"crypto/ed25519"
	"crypto/rand"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/opslane/clientdesk/pkg/httpx"
	"github.com/opslane/clientdesk/pkg/jwtx"
	"github.com/stretchr/testify/require"
)

func testKeys(t *testing.T) *jwtx.EdDSAKeys {
	t.Helper()

	_, priv, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)
	return jwtx.NewEdDSAKeys(priv, "clientdesk-test")
}

func signToken(t *testing.T, keys *jwtx.EdDSAKeys, tokenType, role string) string {
	t.Helper()

	token, err := keys.Sign(jwtx.NewClaims(
		tokenType, "account-1", "alice@acme.test", "alice", role, "company-1",
		[]string{jwtx.AMRPassword}, "clientdesk-test", time.Minute, time.Now().UTC(),
	))
	require.NoError(t, err)
	return token
}

func TestChainOrdering(t *testing.T) {
	var order []string
	mark := func(name string) httpx.Middleware {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, name)
				next.ServeHTTP(w, r)
			})
		}
	}

	h := httpx.Chain(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		order = append(order, "handler")
	}), mark("first"), mark("second"))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	// First listed runs first: authn before role checks relies on this.
	require.Equal(t, []string{"first", "second", "handler"}, order)
}

func TestAuthnMiddleware(t *testing.T) {
	keys := testKeys(t)

	protected := httpx.AuthnMiddleware(keys)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, ok := httpx.ClaimsFromContext(r.Context())
		require.True(t, ok)
		require.Equal(t, "account-1", claims.Subject)
		require.Equal(t, "company-1", claims.CompanyID)
		w.WriteHeader(http.StatusOK)
	}))

	t.Run("valid access token passes", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+signToken(t, keys, jwtx.TokenTypeAccess, "member"))
		rec := httptest.NewRecorder()

		protected.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("missing header is rejected", func(t *testing.T) {
		rec := httptest.NewRecorder()
		protected.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

		require.Equal(t, http.StatusUnauthorized, rec.Code)
		require.Contains(t, rec.Header().Get("WWW-Authenticate"), "invalid_token")
	})

	t.Run("garbage token is rejected", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer garbage")
		rec := httptest.NewRecorder()

		protected.ServeHTTP(rec, req)
		require.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("refresh token opens no doors", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+signToken(t, keys, jwtx.TokenTypeRefresh, "member"))
		rec := httptest.NewRecorder()

		protected.ServeHTTP(rec, req)
		require.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("token from another issuer is rejected", func(t *testing.T) {
		other := testKeys(t)
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+signToken(t, other, jwtx.TokenTypeAccess, "member"))
		rec := httptest.NewRecorder()

		protected.ServeHTTP(rec, req)
		require.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestRequireRole(t *testing.T) {
	keys := testKeys(t)

	adminOnly := httpx.Chain(okHandler(),
		httpx.AuthnMiddleware(keys),
		httpx.RequireRole("admin"),
	)

	t.Run("admin passes", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+signToken(t, keys, jwtx.TokenTypeAccess, "admin"))
		rec := httptest.NewRecorder()

		adminOnly.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("member is rejected", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+signToken(t, keys, jwtx.TokenTypeAccess, "member"))
		rec := httptest.NewRecorder()

		adminOnly.ServeHTTP(rec, req)
		require.Equal(t, http.StatusUnauthorized, rec.Code)
		require.Contains(t, rec.Body.String(), "insufficient role")
	})

	t.Run("unauthenticated is rejected before the role check", func(t *testing.T) {
		rec := httptest.NewRecorder()
		adminOnly.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		require.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}
