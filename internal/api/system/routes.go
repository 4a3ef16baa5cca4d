// Package system provides health, readiness and version endpoints.
package system

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/mergington/activities-api/internal/api/common"
	"github.com/mergington/activities-api/internal/service"
	"github.com/mergington/activities-api/internal/versions"
)

// HealthResponse represents the health check response
type HealthResponse struct {
	Status string `json:"status"`
}

// ReadinessResponse represents the readiness check response
type ReadinessResponse struct {
	Status string `json:"status"`
}

// Router creates a router for health check endpoints
func Router(svc service.ActivityService) http.Handler {
	r := chi.NewRouter()
	Routes(svc)(r)
	return r
}

// Routes registers the system endpoints on an existing router
func Routes(svc service.ActivityService) func(chi.Router) {
	return func(r chi.Router) {
		r.Get("/health", healthHandler)
		r.Get("/readiness", readinessHandler(svc))
		r.Get("/version", versionHandler)
	}
}

// healthHandler reports that the process is up
func healthHandler(w http.ResponseWriter, _ *http.Request) {
	common.WriteJSONResponse(w, HealthResponse{Status: "healthy"}, http.StatusOK)
}

// readinessHandler reports whether the activity service can serve requests
func readinessHandler(svc service.ActivityService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := svc.CheckReadiness(r.Context()); err != nil {
			slog.WarnContext(r.Context(), "Readiness check failed", "error", err)
			common.WriteDetailResponse(w, "Service not ready: "+err.Error(), http.StatusServiceUnavailable)
			return
		}

		common.WriteJSONResponse(w, ReadinessResponse{Status: "ready"}, http.StatusOK)
	}
}

// versionHandler handles version information requests
func versionHandler(w http.ResponseWriter, _ *http.Request) {
	common.WriteJSONResponse(w, versions.GetVersionInfo(), http.StatusOK)
}
