package telemetry

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	otelprom "go.opentelemetry.io/otel/exporters/prometheus"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
)

// DefaultMetricsInterval is how often metrics are pushed to the OTLP endpoint
const DefaultMetricsInterval = 60 * time.Second

// newMeterProvider returns a provider for the configured exporter, or nil when
// metrics are off. reg receives the Prometheus collector and must be set when
// the exporter is prometheus.
func newMeterProvider(
	ctx context.Context,
	cfg *Config,
	res *resource.Resource,
	reg prometheus.Registerer,
) (*sdkmetric.MeterProvider, error) {
	if cfg.Metrics == nil || !cfg.Metrics.Enabled {
		slog.Info("Metrics disabled")
		return nil, nil
	}

	var reader sdkmetric.Reader
	switch exporter := cfg.Metrics.GetExporter(); exporter {
	case MetricsExporterPrometheus:
		if reg == nil {
			return nil, fmt.Errorf("prometheus exporter needs a registry")
		}
		promReader, err := otelprom.New(otelprom.WithRegisterer(reg))
		if err != nil {
			return nil, fmt.Errorf("failed to create Prometheus metrics exporter: %w", err)
		}
		reader = promReader
		slog.Info("Metrics initialized", "exporter", exporter)
	default:
		opts := []otlpmetrichttp.Option{otlpmetrichttp.WithEndpoint(cfg.GetEndpoint())}
		if cfg.GetInsecure() {
			opts = append(opts, otlpmetrichttp.WithInsecure())
		}
		otlpExporter, err := otlpmetrichttp.New(ctx, opts...)
		if err != nil {
			return nil, fmt.Errorf("failed to create OTLP metrics exporter: %w", err)
		}
		reader = sdkmetric.NewPeriodicReader(otlpExporter, sdkmetric.WithInterval(DefaultMetricsInterval))
		slog.Info("Metrics initialized",
			"exporter", exporter,
			"endpoint", cfg.GetEndpoint(),
			"insecure", cfg.GetInsecure(),
		)
	}

	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(reader),
	)
	otel.SetMeterProvider(mp)
	return mp, nil
}
