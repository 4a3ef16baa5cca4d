// Package inmemory provides an in-memory implementation of the ActivityService interface
package inmemory

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel/trace"

	"github.com/mergington/activities-api/internal/otel"
	"github.com/mergington/activities-api/internal/registry"
	"github.com/mergington/activities-api/internal/service"
	"github.com/mergington/activities-api/internal/telemetry"
)

// ServiceTracerName is the name used for the in-memory service tracer
const ServiceTracerName = "github.com/mergington/activities-api/service/inmemory"

// activitySvc implements the ActivityService interface on top of a registry
type activitySvc struct {
	registry *registry.Registry
	tracer   trace.Tracer
	metrics  *telemetry.EnrollmentMetrics
	logger   *slog.Logger
}

var _ service.ActivityService = (*activitySvc)(nil)

// Option is a functional option for configuring the activitySvc
type Option func(*activitySvc)

// WithTracer sets the tracer used to create spans for service operations
func WithTracer(tracer trace.Tracer) Option {
	return func(s *activitySvc) {
		s.tracer = tracer
	}
}

// WithEnrollmentMetrics sets the instruments updated by signup and unregister
func WithEnrollmentMetrics(m *telemetry.EnrollmentMetrics) Option {
	return func(s *activitySvc) {
		s.metrics = m
	}
}

// WithLogger sets the logger for enrollment events, slog.Default() otherwise
func WithLogger(logger *slog.Logger) Option {
	return func(s *activitySvc) {
		s.logger = logger
	}
}

// New creates a new activity service over reg.
// The current roster size of every activity is recorded on creation.
func New(ctx context.Context, reg *registry.Registry, opts ...Option) (service.ActivityService, error) {
	if reg == nil {
		return nil, fmt.Errorf("activity registry is required")
	}

	s := &activitySvc{
		registry: reg,
	}

	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}

	catalog := reg.List()
	for _, name := range catalog.Names() {
		a, _ := catalog.Get(name)
		s.metrics.RecordParticipants(ctx, name, len(a.Participants), a.MaxParticipants)
	}

	s.logger.Info("Activity service initialized",
		"activities", catalog.Len(),
		"enforce_capacity", reg.Policy().EnforceCapacity,
		"validate_email", reg.Policy().ValidateEmail,
	)

	return s, nil
}

// CheckReadiness implements ActivityService.CheckReadiness
func (s *activitySvc) CheckReadiness(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %w", service.ErrNotReady, err)
	}
	if s.registry == nil {
		return fmt.Errorf("%w: registry not initialized", service.ErrNotReady)
	}
	return nil
}

// ListActivities implements ActivityService.ListActivities
func (s *activitySvc) ListActivities(ctx context.Context) (*registry.Catalog, error) {
	ctx, span := otel.StartSpan(ctx, s.tracer, "inmemory.ListActivities")
	defer span.End()

	if err := ctx.Err(); err != nil {
		otel.RecordError(span, err)
		return nil, err
	}

	catalog := s.registry.List()
	span.SetAttributes(otel.AttrResultCount.Int(catalog.Len()))
	return catalog, nil
}

// GetActivity implements ActivityService.GetActivity
func (s *activitySvc) GetActivity(ctx context.Context, name string) (registry.Activity, error) {
	ctx, span := otel.StartSpan(ctx, s.tracer, "inmemory.GetActivity",
		trace.WithAttributes(otel.AttrActivityName.String(name)),
	)
	defer span.End()

	if err := ctx.Err(); err != nil {
		otel.RecordError(span, err)
		return registry.Activity{}, err
	}

	a, err := s.registry.Get(name)
	if err != nil {
		otel.RecordRejection(span, outcomeOf(err))
		return registry.Activity{}, err
	}

	span.SetAttributes(otel.AttrResultCount.Int(len(a.Participants)))
	return a, nil
}

// Signup implements ActivityService.Signup
func (s *activitySvc) Signup(ctx context.Context, name, email string) (registry.Change, error) {
	return s.mutate(ctx, registry.ChangeSignup, name, email, s.registry.Signup)
}

// Unregister implements ActivityService.Unregister
func (s *activitySvc) Unregister(ctx context.Context, name, email string) (registry.Change, error) {
	return s.mutate(ctx, registry.ChangeUnregister, name, email, s.registry.Unregister)
}

// mutate runs one registry mutation inside a span and records its outcome
func (s *activitySvc) mutate(
	ctx context.Context,
	kind registry.ChangeKind,
	name, email string,
	op func(name, email string) (registry.Change, error),
) (registry.Change, error) {
	ctx, span := otel.StartSpan(ctx, s.tracer, "inmemory."+spanSuffix(kind),
		trace.WithAttributes(
			otel.AttrActivityName.String(name),
			otel.AttrOperation.String(string(kind)),
		),
	)
	defer span.End()

	if err := ctx.Err(); err != nil {
		otel.RecordError(span, err)
		return registry.Change{}, err
	}

	change, err := op(name, email)
	outcome := outcomeOf(err)
	s.metrics.RecordOperation(ctx, string(kind), name, outcome)

	if err != nil {
		if outcome == telemetry.OutcomeError {
			otel.RecordError(span, err)
			s.logger.ErrorContext(ctx, "Enrollment operation failed",
				"operation", kind, "activity", name, "error", err)
		} else {
			otel.RecordRejection(span, outcome)
			s.logger.DebugContext(ctx, "Enrollment request rejected",
				"operation", kind, "activity", name, "outcome", outcome)
		}
		return registry.Change{}, err
	}

	span.SetAttributes(
		otel.AttrOutcome.String(outcome),
		otel.AttrChangeID.String(change.ID),
		otel.AttrResultCount.Int(change.Participants),
	)
	s.metrics.RecordParticipants(ctx, name, change.Participants, change.Capacity)

	s.logger.InfoContext(ctx, "Enrollment changed",
		"operation", kind,
		"activity", name,
		"change_id", change.ID,
		"participants", change.Participants,
		"capacity", change.Capacity,
	)

	return change, nil
}

func spanSuffix(kind registry.ChangeKind) string {
	if kind == registry.ChangeUnregister {
		return "Unregister"
	}
	return "Signup"
}

// outcomeOf maps a registry error to its metric outcome label
func outcomeOf(err error) string {
	switch {
	case err == nil:
		return telemetry.OutcomeSuccess
	case errors.Is(err, registry.ErrActivityNotFound), errors.Is(err, registry.ErrParticipantNotFound):
		return telemetry.OutcomeNotFound
	case errors.Is(err, registry.ErrAlreadySignedUp):
		return telemetry.OutcomeAlreadySignedUp
	case errors.Is(err, registry.ErrActivityFull):
		return telemetry.OutcomeFull
	case errors.Is(err, registry.ErrInvalidEmail):
		return telemetry.OutcomeInvalidEmail
	default:
		return telemetry.OutcomeError
	}
}
