// Package handler serves the local ops endpoints of watch mode.
package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/utafrali/DeliveryConsole/pkg/health"
	"github.com/utafrali/DeliveryConsole/pkg/middleware"
)

// NewRouter creates the chi router for health, metrics and console state.
func NewRouter(healthHandler *health.Handler, console *ConsoleHandler, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recovery(logger))
	r.Use(middleware.RequestLogging(logger))
	r.Use(middleware.PrometheusMetrics)

	r.Get("/health/live", healthHandler.LivenessHandler())
	r.Get("/health/ready", healthHandler.ReadinessHandler())
	r.Handle("/metrics", promhttp.Handler())

	r.Get("/session", console.Session)
	r.Get("/stats", console.Stats)

	return r
}
