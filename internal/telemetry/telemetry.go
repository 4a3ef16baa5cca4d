package telemetry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	metricnoop "go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"
)

// Telemetry owns the tracer and meter providers of the process.
// Disabled signals are served by no-op providers.
type Telemetry struct {
	tracerProvider trace.TracerProvider
	meterProvider  metric.MeterProvider
	promRegistry   *prometheus.Registry
	shutdowns      []namedShutdown
}

type namedShutdown struct {
	name string
	fn   func(context.Context) error
}

// Option is a function that configures the telemetry setup
type Option func(*telemetryConfig)

type telemetryConfig struct {
	config        *Config
	resourceAttrs []attribute.KeyValue
}

// WithTelemetryConfig sets the telemetry configuration
func WithTelemetryConfig(cfg *Config) Option {
	return func(tc *telemetryConfig) {
		tc.config = cfg
	}
}

// WithResourceAttributes adds attributes describing this deployment, such as
// AttrCatalogSource, to every exported span and metric
func WithResourceAttributes(attrs ...attribute.KeyValue) Option {
	return func(tc *telemetryConfig) {
		tc.resourceAttrs = append(tc.resourceAttrs, attrs...)
	}
}

// New creates the providers described by the configuration.
// The caller must call Shutdown to flush pending data.
func New(ctx context.Context, opts ...Option) (*Telemetry, error) {
	tc := &telemetryConfig{}
	for _, opt := range opts {
		opt(tc)
	}

	t := &Telemetry{
		tracerProvider: tracenoop.NewTracerProvider(),
		meterProvider:  metricnoop.NewMeterProvider(),
	}

	cfg := tc.config
	if cfg == nil || !cfg.Enabled {
		slog.Debug("Telemetry disabled")
		return t, nil
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid telemetry configuration: %w", err)
	}

	slog.Info("Initializing telemetry",
		"service_name", cfg.GetServiceName(),
		"service_version", cfg.GetServiceVersion(),
	)

	res, err := newResource(ctx, cfg, tc.resourceAttrs)
	if err != nil {
		return nil, err
	}

	tp, err := newTracerProvider(ctx, cfg, res)
	if err != nil {
		return nil, fmt.Errorf("failed to create tracer provider: %w", err)
	}
	if tp != nil {
		t.tracerProvider = tp
		t.shutdowns = append(t.shutdowns, namedShutdown{name: "tracer provider", fn: tp.Shutdown})
	}

	if cfg.PrometheusEnabled() {
		t.promRegistry = prometheus.NewRegistry()
	}

	mp, err := newMeterProvider(ctx, cfg, res, t.promRegistry)
	if err != nil {
		_ = t.Shutdown(ctx)
		return nil, fmt.Errorf("failed to create meter provider: %w", err)
	}
	if mp != nil {
		t.meterProvider = mp
		t.shutdowns = append(t.shutdowns, namedShutdown{name: "meter provider", fn: mp.Shutdown})
	}

	slog.Info("Telemetry initialized")
	return t, nil
}

// TracerProvider returns the tracer provider
func (t *Telemetry) TracerProvider() trace.TracerProvider {
	return t.tracerProvider
}

// MeterProvider returns the meter provider
func (t *Telemetry) MeterProvider() metric.MeterProvider {
	return t.meterProvider
}

// MetricsHandler returns the Prometheus scrape handler, or nil when metrics
// are not exported through Prometheus
func (t *Telemetry) MetricsHandler() http.Handler {
	if t.promRegistry == nil {
		return nil
	}
	return promhttp.HandlerFor(t.promRegistry, promhttp.HandlerOpts{})
}

// Tracer returns a named tracer
func (t *Telemetry) Tracer(name string, opts ...trace.TracerOption) trace.Tracer {
	return t.tracerProvider.Tracer(name, opts...)
}

// Meter returns a named meter
func (t *Telemetry) Meter(name string, opts ...metric.MeterOption) metric.Meter {
	return t.meterProvider.Meter(name, opts...)
}

// Shutdown flushes and stops the SDK providers. Later calls are no-ops.
func (t *Telemetry) Shutdown(ctx context.Context) error {
	if len(t.shutdowns) == 0 {
		return nil
	}

	var errs []error
	for _, s := range t.shutdowns {
		if err := s.fn(ctx); err != nil {
			errs = append(errs, fmt.Errorf("failed to shutdown %s: %w", s.name, err))
		}
	}
	t.shutdowns = nil

	if err := errors.Join(errs...); err != nil {
		return err
	}
	slog.Info("Telemetry shutdown complete")
	return nil
}
