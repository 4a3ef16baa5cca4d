// Package v1 provides the activity enrollment endpoints.
package v1

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/mergington/activities-api/internal/api/common"
	"github.com/mergington/activities-api/internal/registry"
	"github.com/mergington/activities-api/internal/service"
)

const (
	activityNameParam = "activityName"
	emailQueryParam   = "email"
)

// Error details returned to clients
const (
	DetailActivityNotFound    = "Activity not found"
	DetailParticipantNotFound = "Participant not found in activity"
	DetailAlreadySignedUp     = "Student already signed up"
	DetailActivityFull        = "Activity is full"
	DetailEmailRequired       = "Email is required"
	DetailInvalidEmail        = "Invalid email address"
	DetailInternalError       = "Internal server error"
)

// Routes handles HTTP requests for the activity endpoints.
type Routes struct {
	service service.ActivityService
}

// NewRoutes creates a new Routes instance with the given service.
func NewRoutes(svc service.ActivityService) *Routes {
	return &Routes{
		service: svc,
	}
}

// Router creates and configures the HTTP router for the activity endpoints.
func Router(svc service.ActivityService) http.Handler {
	routes := NewRoutes(svc)

	r := chi.NewRouter()

	r.Get("/", routes.listActivities)
	r.Route("/{activityName}", func(r chi.Router) {
		r.Get("/", routes.getActivity)
		r.Post("/signup", routes.signup)
		r.Delete("/signup", routes.unregister)
	})

	return r
}

// listActivities handles GET /activities
func (routes *Routes) listActivities(w http.ResponseWriter, r *http.Request) {
	catalog, err := routes.service.ListActivities(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	common.WriteJSONResponse(w, catalog, http.StatusOK)
}

// getActivity handles GET /activities/{activityName}
func (routes *Routes) getActivity(w http.ResponseWriter, r *http.Request) {
	name, err := common.GetAndValidateURLParam(r, activityNameParam)
	if err != nil {
		common.WriteDetailResponse(w, DetailActivityNotFound, http.StatusNotFound)
		return
	}

	activity, err := routes.service.GetActivity(r.Context(), name)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	common.WriteJSONResponse(w, activity, http.StatusOK)
}

// signup handles POST /activities/{activityName}/signup?email=...
func (routes *Routes) signup(w http.ResponseWriter, r *http.Request) {
	name, email, ok := enrollmentParams(w, r)
	if !ok {
		return
	}

	if _, err := routes.service.Signup(r.Context(), name, email); err != nil {
		writeServiceError(w, r, err)
		return
	}

	common.WriteJSONResponse(w, common.MessageResponse{
		Message: fmt.Sprintf("Signed up %s for %s", email, name),
	}, http.StatusOK)
}

// unregister handles DELETE /activities/{activityName}/signup?email=...
func (routes *Routes) unregister(w http.ResponseWriter, r *http.Request) {
	name, email, ok := enrollmentParams(w, r)
	if !ok {
		return
	}

	if _, err := routes.service.Unregister(r.Context(), name, email); err != nil {
		writeServiceError(w, r, err)
		return
	}

	common.WriteJSONResponse(w, common.MessageResponse{
		Message: fmt.Sprintf("Unregistered %s from %s", email, name),
	}, http.StatusOK)
}

// enrollmentParams reads the activity name and email, writing the error response itself
func enrollmentParams(w http.ResponseWriter, r *http.Request) (string, string, bool) {
	name, err := common.GetAndValidateURLParam(r, activityNameParam)
	if err != nil {
		common.WriteDetailResponse(w, DetailActivityNotFound, http.StatusNotFound)
		return "", "", false
	}

	email := r.URL.Query().Get(emailQueryParam)
	if strings.TrimSpace(email) == "" {
		common.WriteDetailResponse(w, DetailEmailRequired, http.StatusUnprocessableEntity)
		return "", "", false
	}

	return name, email, true
}

// writeServiceError maps service errors to HTTP responses
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, registry.ErrActivityNotFound):
		common.WriteDetailResponse(w, DetailActivityNotFound, http.StatusNotFound)
	case errors.Is(err, registry.ErrParticipantNotFound):
		common.WriteDetailResponse(w, DetailParticipantNotFound, http.StatusNotFound)
	case errors.Is(err, registry.ErrAlreadySignedUp):
		common.WriteDetailResponse(w, DetailAlreadySignedUp, http.StatusBadRequest)
	case errors.Is(err, registry.ErrActivityFull):
		common.WriteDetailResponse(w, DetailActivityFull, http.StatusBadRequest)
	case errors.Is(err, registry.ErrInvalidEmail):
		common.WriteDetailResponse(w, DetailInvalidEmail, http.StatusUnprocessableEntity)
	default:
		slog.ErrorContext(r.Context(), "Request failed",
			"method", r.Method,
			"path", r.URL.Path,
			"error", err)
		common.WriteDetailResponse(w, DetailInternalError, http.StatusInternalServerError)
	}
}
