// Package httpapi exposes the Engine over HTTP with a chi router.
//
// Every route lives under /api/auth. Gated routes reuse the middleware
// package; handlers only decode input, call one Engine method and encode the
// result. Errors are answered with middleware.WriteError.
package httpapi

import (
	"log/slog"
	"net/http"
	"time"

	multiAuth "github.com/MrEthical07/multiAuth"
	"github.com/MrEthical07/multiAuth/middleware"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
)

// Prefix is where Router is mounted by Handler.
const Prefix = "/api/auth"

// API serves the authentication endpoints.
type API struct {
	engine       *multiAuth.Engine
	logger       *slog.Logger
	cookieSecure bool
	metrics      http.Handler
	now          func() time.Time
}

// Option configures an API.
type Option func(*API)

// WithLogger sets the request logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(a *API) {
		if logger != nil {
			a.logger = logger
		}
	}
}

// WithSecureCookies controls the Secure flag of the OAuth state cookie.
func WithSecureCookies(secure bool) Option {
	return func(a *API) {
		a.cookieSecure = secure
	}
}

// WithMetricsHandler serves h at GET /metrics.
func WithMetricsHandler(h http.Handler) Option {
	return func(a *API) {
		a.metrics = h
	}
}

// New returns an API backed by engine.
func New(engine *multiAuth.Engine, opts ...Option) *API {
	a := &API{
		engine:       engine,
		logger:       slog.Default(),
		cookieSecure: true,
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Router returns the /api/auth routes, unprefixed.
func (a *API) Router() chi.Router {
	r := chi.NewRouter()

	r.Post("/sign-up", a.SignUp)
	r.Post("/sign-in", a.SignIn)
	r.Post("/sign-in-w-phone-number", a.SignInWithPhoneNumber)

	r.With(middleware.RequireRefreshToken(a.engine)).Post("/refresh-token", a.RefreshToken)
	r.With(middleware.RequireSignOutSingle(a.engine)).Post("/sign-out", a.SignOut)
	r.With(middleware.RequireSignOutAll(a.engine)).Post("/sign-out-all", a.SignOutAll)

	r.Route("/sessions", func(r chi.Router) {
		r.Use(middleware.RequireSession(a.engine))
		r.Get("/", a.ListSessions)
		r.Delete("/{deviceId}", a.RevokeSession)
	})

	r.Post("/get-otp/{phoneNumber}", a.GetOTP)
	r.Post("/verify-otp/{phoneNumber}/{code}", a.VerifyOTP)

	r.Get("/{provider}", a.ProviderRedirect)
	r.Get("/{provider}/callback", a.ProviderCallback)
	r.Post("/{provider}/callback", a.ProviderCallback)

	return r
}

// Handler returns the complete server handler: request middleware, health
// and metrics endpoints, and Router mounted at Prefix.
func (a *API) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(a.requestLogger)
	r.Use(chimw.Recoverer)
	r.Use(clientContext)

	r.Get("/healthz", a.Health)
	if a.metrics != nil {
		r.Method(http.MethodGet, "/metrics", a.metrics)
	}

	r.Mount(Prefix, a.Router())
	return r
}
