package handler

import (
	"log/slog"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/hngstage/profile-api/internal/middleware"
	"github.com/hngstage/profile-api/internal/ratelimit"
)

// Route names used as rate limit buckets and metric labels.
const (
	RouteRoot    = "root"
	RouteProfile = "profile"
)

// RouterConfig wires handlers and middleware into a router.
type RouterConfig struct {
	Logger *slog.Logger

	Handler *Handler
	Profile *ProfileHandler
	Health  *HealthHandler
	Metrics *MetricsHandler
	OpenAPI *OpenAPIHandler

	RateLimit   middleware.RateLimitConfig
	RootRule    ratelimit.Rule
	ProfileRule ratelimit.Rule

	IsDevelopment      bool
	CORSAllowedOrigins []string
}

// NewRouter configures the chi router with all routes and middleware.
// Rate limits run before the route handlers, so rejected requests never
// reach the fact API.
func NewRouter(cfg RouterConfig) *chi.Mux {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Handler == nil {
		cfg.Handler = New(cfg.Logger)
	}

	r := chi.NewRouter()

	// Global middleware
	if cfg.RateLimit.TrustProxyHeaders {
		r.Use(chimiddleware.RealIP)
	}
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(cfg.Logger))
	r.Use(middleware.Recoverer(cfg.Logger))
	r.Use(middleware.Security(middleware.SecurityConfig{IsDevelopment: cfg.IsDevelopment}))
	r.Use(middleware.CORS(cfg.CORSAllowedOrigins))

	// Public API
	r.With(middleware.RateLimit(cfg.RateLimit, RouteRoot, cfg.RootRule)).Get("/", cfg.Handler.Welcome)
	r.With(middleware.RateLimit(cfg.RateLimit, RouteProfile, cfg.ProfileRule)).Get("/me", cfg.Profile.Me)

	// Operational endpoints
	if cfg.Health != nil {
		r.Get("/healthz", cfg.Health.Healthz)
		r.Get("/readyz", cfg.Health.Readyz)
	}
	if cfg.Metrics != nil {
		r.Get("/metrics", cfg.Metrics.Metrics)
	}
	if cfg.OpenAPI != nil {
		r.Get("/openapi.yaml", cfg.OpenAPI.Spec)
	}

	// 404 and 405 handlers
	r.NotFound(cfg.Handler.NotFound)
	r.MethodNotAllowed(cfg.Handler.MethodNotAllowed)

	return r
}
