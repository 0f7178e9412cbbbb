package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/opslane/clientdesk/internal/api/metrics"
	"github.com/opslane/clientdesk/internal/api/service"
	"github.com/opslane/clientdesk/internal/api/store"
	"github.com/opslane/clientdesk/pkg/httpx"
	"github.com/opslane/clientdesk/pkg/jwtx"
	"github.com/opslane/clientdesk/pkg/slogx"

	_ "github.com/opslane/clientdesk/api/docs" // Swagger docs
	httpSwagger "github.com/swaggo/http-swagger"
)

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	verifier     jwtx.Verifier
	buildVersion string
	startTime    time.Time
	logger       *slog.Logger
	store        store.Store

	AuthService    *service.AuthService
	InviteService  *service.InviteService
	MFAService     *service.MFAService
	CompanyService *service.CompanyService
	ClientService  *service.ClientService
}

func NewRouter(
	verifier jwtx.Verifier,
	buildVersion string,
	st store.Store,
	logger *slog.Logger,
) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		verifier:     verifier,
		buildVersion: buildVersion,
		startTime:    time.Now(),
		store:        st,
		logger:       logger,
	}

	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerAuth()
	r.registerMFA()
	r.registerUsers()
	r.registerCompanies()
	r.registerClients()
	r.registerSystem()

	r.Mux.Handle("/swagger/", httpSwagger.Handler())
}

// handle registers a route with the given per-route middlewares plus the
// request-duration metric. Metrics sit outermost so they observe the final
// status code; the metric middleware needs the mux-populated pattern, which
// is why it cannot live in the global chain.
func (r *Router) handle(pattern string, h http.Handler, middlewares ...httpx.Middleware) {
	chain := append([]httpx.Middleware{metrics.Middleware}, middlewares...)
	r.Mux.Handle(pattern, httpx.Chain(h, chain...))
}

// ServeHTTP implements http.Handler for Router and applies the global middleware chain.
//
//	@title			ClientDesk API
//	@version		0.1.0
//	@description	Multi-tenant client management backend: company registration,
//	@description	account auth with email OTP verification and optional TOTP MFA,
//	@description	admin invitations, and tenant-scoped client records.
//
//	@host		localhost:8080
//	@BasePath	/
//
//	@schemes	http https
//
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				JWT access token. Format: "Bearer {token}".
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

func (r *Router) registerAuth() {
	h := &AuthHandler{AuthService: r.AuthService}

	// Credential endpoints take the brunt of brute forcing; all strict.
	r.handle("POST /v1/auth/signup", http.HandlerFunc(h.HandleSignup),
		httpx.RateLimitByIP(httpx.StrictLimit),
	)
	r.handle("POST /v1/auth/verify-otp", http.HandlerFunc(h.HandleVerifyOTP),
		httpx.RateLimitByIP(httpx.StrictLimit),
	)
	r.handle("POST /v1/auth/resend-otp", http.HandlerFunc(h.HandleResendOTP),
		httpx.RateLimitByIP(httpx.StrictLimit),
	)
	r.handle("POST /v1/auth/login", http.HandlerFunc(h.HandleLogin),
		httpx.RateLimitByIP(httpx.StrictLimit),
	)
	r.handle("POST /v1/auth/refresh", http.HandlerFunc(h.HandleRefresh),
		httpx.RateLimitByIP(httpx.ModerateLimit),
	)
	r.handle("GET /v1/auth/profile", http.HandlerFunc(h.HandleProfile),
		httpx.AuthnMiddleware(r.verifier),
		httpx.RateLimitByAccount(httpx.LenientLimit),
	)
}

func (r *Router) registerMFA() {
	h := &MFAHandler{MFAService: r.MFAService}

	r.handle("POST /v1/auth/mfa/enroll", http.HandlerFunc(h.HandleEnroll),
		httpx.AuthnMiddleware(r.verifier),
		httpx.RateLimitByAccount(httpx.ModerateLimit),
	)
	r.handle("POST /v1/auth/mfa/activate", http.HandlerFunc(h.HandleActivate),
		httpx.AuthnMiddleware(r.verifier),
		httpx.RateLimitByAccount(httpx.StrictLimit),
	)
	r.handle("DELETE /v1/auth/mfa", http.HandlerFunc(h.HandleDisable),
		httpx.AuthnMiddleware(r.verifier),
		httpx.RateLimitByAccount(httpx.StrictLimit),
	)
}

func (r *Router) registerUsers() {
	h := &UsersHandler{InviteService: r.InviteService}

	r.handle("POST /v1/users/invite", http.HandlerFunc(h.HandleInvite),
		httpx.AuthnMiddleware(r.verifier),
		httpx.RateLimitByAccount(httpx.ModerateLimit),
	)
	// Registration is public but token-gated: possession of the opaque
	// invite token is the credential.
	r.handle("POST /v1/users/register", http.HandlerFunc(h.HandleRegister),
		httpx.RateLimitByIP(httpx.StrictLimit),
	)
}

func (r *Router) registerCompanies() {
	h := &CompaniesHandler{CompanyService: r.CompanyService}

	r.handle("GET /v1/companies/check-slug", http.HandlerFunc(h.HandleCheckSlug),
		httpx.RateLimitByIP(httpx.ModerateLimit),
	)
	// Company registration is the public entry point of the tenant
	// lifecycle: register the company, then sign up into it.
	r.handle("POST /v1/companies", http.HandlerFunc(h.HandleCreate),
		httpx.RateLimitByIP(httpx.StrictLimit),
	)
	r.handle("GET /v1/companies", http.HandlerFunc(h.HandleList),
		httpx.AuthnMiddleware(r.verifier),
		httpx.RateLimitByAccount(httpx.LenientLimit),
	)
	r.handle("GET /v1/companies/{id}", http.HandlerFunc(h.HandleGet),
		httpx.AuthnMiddleware(r.verifier),
		httpx.RateLimitByAccount(httpx.LenientLimit),
	)
	r.handle("PATCH /v1/companies/{id}", http.HandlerFunc(h.HandleUpdate),
		httpx.AuthnMiddleware(r.verifier),
		httpx.RequireRole("admin"),
		httpx.RateLimitByAccount(httpx.ModerateLimit),
	)
	r.handle("PATCH /v1/companies/{id}/status", http.HandlerFunc(h.HandleUpdateStatus),
		httpx.AuthnMiddleware(r.verifier),
		httpx.RequireRole("admin"),
		httpx.RateLimitByAccount(httpx.ModerateLimit),
	)
	r.handle("DELETE /v1/companies/{id}", http.HandlerFunc(h.HandleDelete),
		httpx.AuthnMiddleware(r.verifier),
		httpx.RequireRole("admin"),
		httpx.RateLimitByAccount(httpx.StrictLimit),
	)
}

func (r *Router) registerClients() {
	h := &ClientsHandler{ClientService: r.ClientService}

	authn := httpx.AuthnMiddleware(r.verifier)
	admin := httpx.RequireRole("admin")

	r.handle("GET /v1/clients", http.HandlerFunc(h.HandleList),
		authn, admin, httpx.RateLimitByAccount(httpx.LenientLimit))
	r.handle("GET /v1/clients/{id}", http.HandlerFunc(h.HandleGet),
		authn, admin, httpx.RateLimitByAccount(httpx.LenientLimit))
	r.handle("POST /v1/clients", http.HandlerFunc(h.HandleCreate),
		authn, admin, httpx.RateLimitByAccount(httpx.ModerateLimit))
	r.handle("PATCH /v1/clients/{id}", http.HandlerFunc(h.HandleUpdate),
		authn, admin, httpx.RateLimitByAccount(httpx.ModerateLimit))
	r.handle("DELETE /v1/clients/{id}", http.HandlerFunc(h.HandleDelete),
		authn, admin, httpx.RateLimitByAccount(httpx.ModerateLimit))
}
