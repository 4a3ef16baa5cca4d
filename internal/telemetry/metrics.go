package telemetry

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	// EnrollmentMetricsMeterName is the name used for the enrollment metrics meter
	EnrollmentMetricsMeterName = "github.com/mergington/activities-api/enrollment"

	// CatalogMetricsMeterName is the name used for the catalog metrics meter
	CatalogMetricsMeterName = "github.com/mergington/activities-api/catalog"
)

// Outcome labels for enrollment operations
const (
	OutcomeSuccess         = "success"
	OutcomeNotFound        = "not_found"
	OutcomeAlreadySignedUp = "already_signed_up"
	OutcomeFull            = "full"
	OutcomeInvalidEmail    = "invalid_email"
	OutcomeError           = "error"
)

// EnrollmentMetrics holds the OpenTelemetry instruments for signup and unregister operations
type EnrollmentMetrics struct {
	operationsTotal metric.Int64Counter
	participants    metric.Int64Gauge
	capacity        metric.Int64Gauge
}

// NewEnrollmentMetrics creates a new EnrollmentMetrics instance with the given meter provider.
// If provider is nil, it returns nil (no-op metrics).
func NewEnrollmentMetrics(provider metric.MeterProvider) (*EnrollmentMetrics, error) {
	if provider == nil {
		return nil, nil
	}

	meter := provider.Meter(EnrollmentMetricsMeterName)

	operationsTotal, err := meter.Int64Counter(
		"activities_enrollment_operations",
		metric.WithDescription("Number of signup and unregister operations by outcome"),
		metric.WithUnit("{operation}"),
	)
	if err != nil {
		return nil, err
	}

	participants, err := meter.Int64Gauge(
		"activities_participants",
		metric.WithDescription("Number of participants enrolled in each activity"),
		metric.WithUnit("{participant}"),
	)
	if err != nil {
		return nil, err
	}

	capacity, err := meter.Int64Gauge(
		"activities_capacity",
		metric.WithDescription("Maximum number of participants for each activity"),
		metric.WithUnit("{participant}"),
	)
	if err != nil {
		return nil, err
	}

	return &EnrollmentMetrics{
		operationsTotal: operationsTotal,
		participants:    participants,
		capacity:        capacity,
	}, nil
}

// RecordOperation counts one signup or unregister attempt
func (m *EnrollmentMetrics) RecordOperation(ctx context.Context, operation, activity, outcome string) {
	if m == nil || m.operationsTotal == nil {
		return
	}

	attrs := []attribute.KeyValue{
		attribute.String("operation", operation),
		attribute.String("activity", activity),
		attribute.String("outcome", outcome),
	}

	m.operationsTotal.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// RecordParticipants records the current roster size and capacity of an activity
func (m *EnrollmentMetrics) RecordParticipants(ctx context.Context, activity string, participants, capacity int) {
	if m == nil || m.participants == nil {
		return
	}

	attrs := metric.WithAttributes(attribute.String("activity", activity))
	m.participants.Record(ctx, int64(participants), attrs)
	m.capacity.Record(ctx, int64(capacity), attrs)
}

// CatalogMetrics holds the OpenTelemetry instruments for catalog loading
type CatalogMetrics struct {
	loadDuration metric.Float64Histogram
	activities   metric.Int64Gauge
}

// NewCatalogMetrics creates a new CatalogMetrics instance with the given meter provider.
// If provider is nil, it returns nil (no-op metrics).
func NewCatalogMetrics(provider metric.MeterProvider) (*CatalogMetrics, error) {
	if provider == nil {
		return nil, nil
	}

	meter := provider.Meter(CatalogMetricsMeterName)

	loadDuration, err := meter.Float64Histogram(
		"activities_catalog_load_duration_seconds",
		metric.WithDescription("Duration of catalog loads in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5),
	)
	if err != nil {
		return nil, err
	}

	activities, err := meter.Int64Gauge(
		"activities_catalog_activities",
		metric.WithDescription("Number of activities in the loaded catalog"),
		metric.WithUnit("{activity}"),
	)
	if err != nil {
		return nil, err
	}

	return &CatalogMetrics{
		loadDuration: loadDuration,
		activities:   activities,
	}, nil
}

// RecordLoad records how long loading the catalog from source took and how many activities it holds
func (m *CatalogMetrics) RecordLoad(ctx context.Context, source string, duration time.Duration, count int, success bool) {
	if m == nil || m.loadDuration == nil {
		return
	}

	attrs := []attribute.KeyValue{
		attribute.String("source", source),
		attribute.Bool("success", success),
	}
	m.loadDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(attrs...))

	if success {
		m.activities.Record(ctx, int64(count), metric.WithAttributes(attribute.String("source", source)))
	}
}
