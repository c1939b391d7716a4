package api

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"schedule-optimizer-service/internal/api/handlers"
	"schedule-optimizer-service/internal/services"
)

// NewRouter wires HTTP handlers with their dependencies and returns an http.Handler.
// This is the API composition root (handlers stay unaware of concrete adapters).
func NewRouter(deps services.Deps) http.Handler {
	mux := http.NewServeMux()

	jobHandler := &handlers.JobHandler{Source: deps.Jobs}
	optimizeHandler := &handlers.OptimizeHandler{Deps: deps}

	mux.HandleFunc("/health", handlers.Health)
	mux.HandleFunc("/jobs", jobHandler.List)
	mux.HandleFunc("/optimize", optimizeHandler.Optimize)
	mux.Handle("/metrics", promhttp.Handler())

	return loggingMiddleware(mux)
}
