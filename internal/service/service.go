// Package service provides the business logic for the activities API
package service

import (
	"context"
	"errors"

	"github.com/mergington/activities-api/internal/registry"
)

// ErrNotReady is returned by CheckReadiness when the service cannot serve requests
var ErrNotReady = errors.New("service not ready")

//go:generate mockgen -destination=mocks/mock_service.go -package=mocks -source=service.go ActivityService

// ActivityService defines the interface for activity enrollment operations
type ActivityService interface {
	// CheckReadiness checks if the service is ready to serve requests
	CheckReadiness(ctx context.Context) error

	// ListActivities returns every activity in catalog order
	ListActivities(ctx context.Context) (*registry.Catalog, error)

	// GetActivity returns a single activity by name
	GetActivity(ctx context.Context, name string) (registry.Activity, error)

	// Signup enrolls email in the named activity
	Signup(ctx context.Context, name, email string) (registry.Change, error)

	// Unregister removes email from the named activity
	Unregister(ctx context.Context, name, email string) (registry.Change, error)
}
