package router

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	httpmiddleware "github.com/wolfman30/lead-funnel/internal/http/middleware"
	"github.com/wolfman30/lead-funnel/pkg/logging"
)

// Config holds router configuration
type Config struct {
	Logger             *logging.Logger
	LeadForwarder      http.Handler
	PixelConfig        http.Handler
	MetricsHandler     http.Handler
	CORSAllowedOrigins []string
}

// New creates a new Chi router with all routes configured
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	if cfg.Logger != nil {
		r.Use(httpmiddleware.RequestLogger(cfg.Logger))
	}

	// The forwarder owns its method handling and CORS headers.
	if cfg.LeadForwarder != nil {
		r.Handle("/api/fb-lead", cfg.LeadForwarder)
	}

	r.Group(func(public chi.Router) {
		if len(cfg.CORSAllowedOrigins) > 0 {
			public.Use(httpmiddleware.CORS(httpmiddleware.CORSOptions{
				AllowedOrigins: cfg.CORSAllowedOrigins,
				AllowedMethods: []string{"GET", "OPTIONS"},
			}))
		}
		public.Get("/health", healthCheck)
		if cfg.PixelConfig != nil {
			public.Handle("/api/pixel-config", cfg.PixelConfig)
		}
		if cfg.MetricsHandler != nil {
			public.Handle("/metrics", cfg.MetricsHandler)
		}
	})

	return r
}

func healthCheck(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}
