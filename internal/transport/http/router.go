package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"retailpulse/internal/config"
	"retailpulse/internal/middleware"
	"retailpulse/internal/pipeline"
)

// NewRouter assembles the service routes and middleware chain.
func NewRouter(cfg *config.Config, defaults pipeline.Config, version string, logger *slog.Logger) http.Handler {
	registry := prometheus.NewRegistry()
	metrics := middleware.NewMetrics(registry)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.StructuredLogger(logger))
	r.Use(middleware.Recoverer(logger))
	r.Use(metrics.Handler)
	if cfg.Server.RateLimit.Enabled {
		limiter := middleware.NewRateLimiter(cfg.Server.RateLimit.RPS, cfg.Server.RateLimit.Burst, logger)
		r.Use(limiter.Handler)
	}
	if cfg.Server.MaxBodyBytes > 0 {
		r.Use(maxBytes(cfg.Server.MaxBodyBytes))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Method(http.MethodPost, "/analyze", NewAnalyzeHandler(defaults, logger))
		r.Method(http.MethodGet, "/health", NewHealthHandler(version))
	})
	r.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))

	return r
}

// maxBytes caps request body size so oversized uploads fail decoding
// instead of exhausting memory.
func maxBytes(limit int64) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			r.Body = http.MaxBytesReader(w, r.Body, limit)
			next.ServeHTTP(w, r)
		})
	}
}
