package telemetry

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
)

// ServiceNamespace groups every Mergington service in telemetry backends
const ServiceNamespace = "mergington"

// Resource attribute keys describing how the enrollment service is set up
const (
	AttrCatalogSource   = attribute.Key("activities.catalog.source")
	AttrEnforceCapacity = attribute.Key("activities.enrollment.enforce_capacity")
	AttrValidateEmail   = attribute.Key("activities.enrollment.validate_email")
)

// newResource describes this process once; tracer and meter providers share it.
// extra holds deployment details such as the catalog source and enrollment policy.
func newResource(ctx context.Context, cfg *Config, extra []attribute.KeyValue) (*resource.Resource, error) {
	attrs := append([]attribute.KeyValue{
		semconv.ServiceName(cfg.GetServiceName()),
		semconv.ServiceVersion(cfg.GetServiceVersion()),
		semconv.ServiceNamespace(ServiceNamespace),
	}, extra...)

	res, err := resource.New(ctx,
		resource.WithAttributes(attrs...),
		resource.WithHost(),
		resource.WithTelemetrySDK(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}
	return res, nil
}
