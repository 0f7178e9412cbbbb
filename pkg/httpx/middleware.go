// Package httpx holds the small HTTP toolbox shared by every handler:
// JSON responses, middleware chaining, bearer-token authentication, role
// checks, and token-bucket rate limiting.
package httpx

import "net/http"

// Middleware wraps an http.Handler with extra behavior.
type Middleware func(http.Handler) http.Handler

// Chain applies middlewares to h so that the first middleware listed is the
// outermost, i.e. runs first. Chain(h, authn, role) authenticates before
// the role check sees the request.
func Chain(h http.Handler, middlewares ...Middleware) http.Handler {
	for i := len(middlewares) - 1; i >= 0; i-- {
		h = middlewares[i](h)
	}
	return h
}
