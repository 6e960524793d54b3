package server

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/daybook/daybook/internal/handler"
	"github.com/daybook/daybook/internal/metrics"
	"github.com/daybook/daybook/internal/middleware"
	"github.com/daybook/daybook/internal/service"
)

// RouterConfig collects everything the HTTP surface needs.
type RouterConfig struct {
	Logger *slog.Logger

	Journal     *service.JournalService
	Accounts    *service.AccountService
	Preferences *service.PreferenceService

	Health   *handler.HealthHandler
	Metrics  http.Handler // nil hides /metrics
	Limiter  middleware.LoginLimiter
	Recorder metrics.Recorder

	IsDevelopment      bool
	CORSAllowedOrigins []string
	MaxRequestBodySize int64
	MaxEntryLength     int

	RateLimitLoginEnabled bool
	RateLimitLoginRPM     int
	RateLimitLoginBurst   int
	TrustProxy            bool
}

// NewRouter configures the chi router with all routes and middleware.
func NewRouter(cfg RouterConfig) *chi.Mux {
	logger := cfg.Logger
	r := chi.NewRouter()

	// Global middleware
	if cfg.TrustProxy {
		r.Use(chimiddleware.RealIP)
	}
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Recoverer(logger, cfg.IsDevelopment))
	r.Use(middleware.Security(middleware.SecurityConfig{IsDevelopment: cfg.IsDevelopment}))
	r.Use(middleware.CORS(cfg.CORSAllowedOrigins))
	r.Use(middleware.MaxBodySize(cfg.MaxRequestBodySize))

	// Health endpoints (no auth required)
	r.Get("/healthz", cfg.Health.Healthz)
	r.Get("/readyz", cfg.Health.Readyz)
	if cfg.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", cfg.Metrics)
	}

	authHandler := handler.NewAuthHandler(cfg.Accounts, logger.With("component", "auth"), !cfg.IsDevelopment)
	journalHandler := handler.NewJournalHandler(cfg.Journal, logger.With("component", "journal"), cfg.MaxEntryLength)
	prefHandler := handler.NewPreferenceHandler(cfg.Preferences, logger.With("component", "preferences"))

	loginLimit := middleware.RateLimitLogin(middleware.RateLimitConfig{
		Logger:     logger,
		Limiter:    cfg.Limiter,
		Metrics:    cfg.Recorder,
		Enabled:    cfg.RateLimitLoginEnabled,
		PerMinute:  cfg.RateLimitLoginRPM,
		Burst:      cfg.RateLimitLoginBurst,
		TrustProxy: cfg.TrustProxy,
	})

	requireSession := middleware.Auth(middleware.AuthConfig{
		Logger:   logger,
		Sessions: cfg.Accounts,
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			// Registration checks a password too, so it shares the login budget.
			r.With(loginLimit).Post("/register", authHandler.Register)
			r.With(loginLimit).Post("/login", authHandler.Login)
			r.Post("/logout", authHandler.Logout)
			r.With(requireSession).Get("/me", authHandler.Me)
		})

		// Everything below acts on the caller's own journal.
		r.Group(func(r chi.Router) {
			r.Use(requireSession)

			r.Get("/journal", journalHandler.Today)

			r.Route("/entries", func(r chi.Router) {
				r.Get("/", journalHandler.List)
				r.Post("/", journalHandler.Create)
				r.Get("/random", journalHandler.Random)
				r.Put("/{id}", journalHandler.Update)
				r.Delete("/{id}", journalHandler.Delete)
				r.Post("/{id}/delete", journalHandler.Delete)
			})

			r.Route("/preferences", func(r chi.Router) {
				r.Get("/theme", prefHandler.GetTheme)
				r.Post("/theme", prefHandler.SetTheme)
			})
		})
	})

	r.NotFound(handler.NotFound)
	r.MethodNotAllowed(handler.MethodNotAllowed)

	return r
}
