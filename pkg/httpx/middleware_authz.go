package httpx

import "net/http"

// RequireRole rejects callers whose token does not carry one of the given
// roles. Must run after AuthnMiddleware. Services still re-check roles on
// privileged operations; this is the outer check, not the only one.
func RequireRole(roles ...string) Middleware {
	want := make(map[string]struct{}, len(roles))
	for _, role := range roles {
		want[role] = struct{}{}
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := ClaimsFromContext(r.Context())
			if !ok {
				writeBearerError(w, "missing bearer token")
				return
			}
			if _, ok := want[claims.Role]; !ok {
				WriteError(w, http.StatusUnauthorized, "unauthorized", "insufficient role")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
