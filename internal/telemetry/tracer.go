package telemetry

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
)

// enrollmentSampler keeps every signup and unregister request and samples
// everything else by trace ID ratio.
type enrollmentSampler struct {
	fallback sdktrace.Sampler
}

func newEnrollmentSampler(ratio float64) sdktrace.Sampler {
	return sdktrace.ParentBased(enrollmentSampler{fallback: sdktrace.TraceIDRatioBased(ratio)})
}

// ShouldSample implements sdktrace.Sampler
func (s enrollmentSampler) ShouldSample(p sdktrace.SamplingParameters) sdktrace.SamplingResult {
	if !isEnrollmentMutation(p) {
		return s.fallback.ShouldSample(p)
	}
	return sdktrace.SamplingResult{
		Decision:   sdktrace.RecordAndSample,
		Tracestate: trace.SpanContextFromContext(p.ParentContext).TraceState(),
	}
}

// Description implements sdktrace.Sampler
func (s enrollmentSampler) Description() string {
	return fmt.Sprintf("EnrollmentSampler{mutations:always,other:%s}", s.fallback.Description())
}

// isEnrollmentMutation matches the server span opened for POST or DELETE on
// /activities/{name}/signup. The span is named after the raw path at this point.
func isEnrollmentMutation(p sdktrace.SamplingParameters) bool {
	if p.Kind != trace.SpanKindServer || !strings.HasSuffix(p.Name, "/signup") {
		return false
	}
	for _, attr := range p.Attributes {
		if attr.Key == semconv.HTTPRequestMethodKey {
			method := attr.Value.AsString()
			return method == http.MethodPost || method == http.MethodDelete
		}
	}
	return false
}

// newTracerProvider returns an OTLP-exporting provider, or nil when tracing is off.
// The provider is installed as the global one together with the W3C propagators.
func newTracerProvider(ctx context.Context, cfg *Config, res *resource.Resource) (*sdktrace.TracerProvider, error) {
	if cfg.Tracing == nil || !cfg.Tracing.Enabled {
		slog.Info("Tracing disabled")
		return nil, nil
	}

	opts := []otlptracehttp.Option{otlptracehttp.WithEndpoint(cfg.GetEndpoint())}
	if cfg.GetInsecure() {
		opts = append(opts, otlptracehttp.WithInsecure())
	}
	exporter, err := otlptracehttp.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create OTLP trace exporter: %w", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithResource(res),
		sdktrace.WithBatcher(exporter),
		sdktrace.WithSampler(newEnrollmentSampler(cfg.Tracing.GetSampling())),
	)

	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	slog.Info("Tracing initialized",
		"endpoint", cfg.GetEndpoint(),
		"sampling_ratio", cfg.Tracing.GetSampling(),
		"insecure", cfg.GetInsecure(),
	)
	return tp, nil
}
