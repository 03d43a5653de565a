package router

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/wolfman30/territory-leads/internal/auth"
	"github.com/wolfman30/territory-leads/internal/compliance"
	httpmiddleware "github.com/wolfman30/territory-leads/internal/http/middleware"
	"github.com/wolfman30/territory-leads/internal/leads"
	"github.com/wolfman30/territory-leads/internal/observability/metrics"
	"github.com/wolfman30/territory-leads/internal/places"
	"github.com/wolfman30/territory-leads/internal/ratelimit"
	"github.com/wolfman30/territory-leads/internal/users"
	"github.com/wolfman30/territory-leads/pkg/logging"
)

// Config holds router configuration
type Config struct {
	Logger            *logging.Logger
	Sessions          httpmiddleware.SessionVerifier
	RateLimiter       *ratelimit.Limiter
	Metrics           *metrics.DiscoveryMetrics
	AuthHandler       *auth.Handler
	PlacesHandler     *places.Handler
	LeadsHandler      *leads.Handler
	UsersHandler      *users.Handler
	ComplianceHandler *compliance.Handler
	MetricsHandler    http.Handler

	// MapsBrowserKey is the optional client-side map key served to the UI.
	MapsBrowserKey     string
	CORSAllowedOrigins []string
}

// New creates a new Chi router with all routes configured
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(httpmiddleware.CORS(cfg.CORSAllowedOrigins))
	}
	if cfg.Logger != nil {
		r.Use(httpmiddleware.RequestLogger(cfg.Logger))
	}

	limiter := cfg.RateLimiter
	if limiter == nil {
		limiter = ratelimit.New(nil, cfg.Logger)
	}
	sessions := cfg.Sessions
	if sessions == nil {
		// No verifier means every protected route answers 401.
		sessions = auth.NewTokenService("", 0)
	}

	// Public endpoints
	r.Group(func(public chi.Router) {
		public.Get("/health", healthCheck)
		if cfg.MetricsHandler != nil {
			public.Handle("/metrics", cfg.MetricsHandler)
		}
		public.Get("/client-config", clientConfig(cfg.MapsBrowserKey))
		if cfg.AuthHandler != nil {
			public.Post("/auth/login", cfg.AuthHandler.Login)
		}
		if cfg.ComplianceHandler != nil {
			public.Get("/compliance/guardrails", cfg.ComplianceHandler.GetGuardrails)
		}
	})

	// Session-protected endpoints
	r.Group(func(r chi.Router) {
		r.Use(httpmiddleware.RequireSession(sessions, cfg.Logger))

		if cfg.PlacesHandler != nil {
			r.Route("/places", func(p chi.Router) {
				p.With(httpmiddleware.RateLimit(limiter, ratelimit.PlacesSearch, cfg.Metrics, cfg.Logger)).
					Post("/search", cfg.PlacesHandler.Search)
				p.With(httpmiddleware.RateLimit(limiter, ratelimit.PlacesDetails, cfg.Metrics, cfg.Logger)).
					Post("/details", cfg.PlacesHandler.Details)
			})
		}
		if cfg.LeadsHandler != nil {
			r.Route("/leads", func(l chi.Router) {
				l.Post("/", cfg.LeadsHandler.CreateLead)
				l.Get("/", cfg.LeadsHandler.ListLeads)
				l.Get("/{leadID}", cfg.LeadsHandler.GetLead)
			})
		}
		if cfg.UsersHandler != nil {
			r.Get("/owners", cfg.UsersHandler.ListOwners)
			r.Get("/me", cfg.UsersHandler.GetMe)
		}
		if cfg.ComplianceHandler != nil {
			r.Get("/compliance/events", cfg.ComplianceHandler.ListEvents)
		}
	})

	return r
}

func healthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// clientConfig exposes only what the browser needs to render maps.
func clientConfig(mapsBrowserKey string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"mapsBrowserKey": mapsBrowserKey})
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
