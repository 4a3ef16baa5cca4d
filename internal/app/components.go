package app

import (
	"github.com/mergington/activities-api/internal/registry"
	"github.com/mergington/activities-api/internal/service"
	"github.com/mergington/activities-api/internal/telemetry"
)

// AppComponents groups all application components
//
//nolint:revive // This name is fine
type AppComponents struct {
	// Telemetry owns the tracer and meter providers
	Telemetry *telemetry.Telemetry

	// Registry holds the activities and their rosters
	Registry *registry.Registry

	// ActivityService provides enrollment business logic
	ActivityService service.ActivityService
}
