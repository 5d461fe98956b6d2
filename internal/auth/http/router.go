// Package http wires the identity service's HTTP surface: session endpoints,
// the request gate, and system health.
package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/cliptide/cliptide/internal/auth/service"
	"github.com/cliptide/cliptide/internal/auth/store"
	"github.com/cliptide/cliptide/pkg/httpx"
	"github.com/cliptide/cliptide/pkg/jwtx"
	"github.com/cliptide/cliptide/pkg/slogx"
)

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	tokens       *jwtx.Issuer
	buildVersion string
	startTime    time.Time
	logger       *slog.Logger
	store        store.Store

	Sessions     *service.SessionService
	Users        *service.UserService
	CookieSecure bool
}

func NewRouter(tokens *jwtx.Issuer, buildVersion string, st store.Store, logger *slog.Logger) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		tokens:       tokens,
		buildVersion: buildVersion,
		startTime:    time.Now(),
		logger:       logger,
		store:        st,
	}

	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
	}

	return r
}

// ServeHTTP applies the global middleware chain around the mux.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

func (r *Router) ApplyRoutes() {
	r.registerAuth()
	r.registerSystem()
}

func (r *Router) registerAuth() {
	gate := RequireSession(r.tokens, r.Users)

	sessions := &SessionHandler{Sessions: r.Sessions, CookieSecure: r.CookieSecure}
	users := &UserHandler{Users: r.Users}

	// Credential endpoints are strictly rate limited by IP: every request
	// here is a guessing opportunity.
	r.Mux.Handle("POST /v1/auth/register",
		httpx.Chain(http.HandlerFunc(users.HandleRegister),
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)
	r.Mux.Handle("POST /v1/auth/login",
		httpx.Chain(http.HandlerFunc(sessions.HandleLogin),
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)
	r.Mux.Handle("POST /v1/auth/refresh",
		httpx.Chain(http.HandlerFunc(sessions.HandleRefresh),
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)

	r.Mux.Handle("POST /v1/auth/logout",
		httpx.Chain(http.HandlerFunc(sessions.HandleLogout),
			gate,
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
	r.Mux.Handle("POST /v1/auth/change-password",
		httpx.Chain(http.HandlerFunc(sessions.HandleChangePassword),
			gate,
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)
	r.Mux.Handle("GET /v1/auth/me",
		httpx.Chain(http.HandlerFunc(users.HandleMe),
			gate,
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
}

func (r *Router) registerSystem() {
	r.Mux.Handle("GET /livez",
		httpx.Chain(LivezHandler(r.startTime, r.buildVersion),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
	r.Mux.Handle("GET /readyz",
		httpx.Chain(ReadyzHandler(r.store),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
}
