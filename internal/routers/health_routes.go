package routers

import (
	"github.com/go-chi/chi/v5"

	"voicehire/backend/internal/handlers"
	"voicehire/backend/internal/metrics"
)

func HealthRoutes(router *chi.Mux, healthHandler *handlers.HealthHandler) {
	router.Get("/healthz", healthHandler.HealthzHandler)
	router.Get("/readyz", healthHandler.ReadyzHandler)
	router.Get("/api/health", healthHandler.HealthzHandler)
	router.Method("GET", "/metrics", metrics.Handler())
}
