package router

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	httpmiddleware "github.com/katalux/roofers-landing/internal/http/middleware"
	"github.com/katalux/roofers-landing/internal/leadform"
	"github.com/katalux/roofers-landing/internal/leads"
	"github.com/katalux/roofers-landing/pkg/logging"
)

// Config holds router configuration
type Config struct {
	Logger       *logging.Logger
	FormsHandler *leadform.Handler
	LeadsHandler *leads.Handler
	// RateLimiter guards the public form endpoints; nil disables limiting.
	RateLimiter        httpmiddleware.Limiter
	AdminAuthSecret    string
	AdminAudience      string
	MetricsHandler     http.Handler
	CORSAllowedOrigins []string
	// TrustProxyHeaders rewrites RemoteAddr from X-Real-IP/X-Forwarded-For.
	// Leave it off unless a proxy in front strips client-sent copies.
	TrustProxyHeaders bool
}

// New creates a new Chi router with all routes configured
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	if cfg.TrustProxyHeaders {
		r.Use(middleware.RealIP)
	}
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))
	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(httpmiddleware.CORS(cfg.CORSAllowedOrigins))
	}
	if cfg.Logger != nil {
		r.Use(httpmiddleware.RequestLogger(cfg.Logger))
	}

	// Public endpoints
	r.Group(func(public chi.Router) {
		public.Get("/health", healthCheck)
		if cfg.MetricsHandler != nil {
			public.Handle("/metrics", cfg.MetricsHandler)
		}
		if cfg.FormsHandler != nil {
			public.Post("/phone/format", cfg.FormsHandler.FormatPhone)
			public.Group(func(forms chi.Router) {
				if cfg.RateLimiter != nil {
					forms.Use(httpmiddleware.RateLimit(cfg.RateLimiter, cfg.Logger))
				}
				forms.Mount("/forms", cfg.FormsHandler.Routes())
			})
		}
	})

	// Admin routes (protected by JWT)
	if cfg.AdminAuthSecret != "" && cfg.LeadsHandler != nil {
		r.Route("/admin", func(admin chi.Router) {
			admin.Use(httpmiddleware.AdminJWT(httpmiddleware.AdminAuthConfig{
				Secret:   cfg.AdminAuthSecret,
				Audience: cfg.AdminAudience,
				Logger:   cfg.Logger,
			}))
			admin.Get("/leads", cfg.LeadsHandler.ListLeads)
			admin.Get("/leads/{leadID}", cfg.LeadsHandler.GetLead)
		})
	}

	return r
}

func healthCheck(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}
