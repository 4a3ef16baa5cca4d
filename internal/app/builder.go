package app

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"net/netip"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/mergington/activities-api/internal/api"
	"github.com/mergington/activities-api/internal/catalog"
	"github.com/mergington/activities-api/internal/config"
	"github.com/mergington/activities-api/internal/registry"
	"github.com/mergington/activities-api/internal/service"
	"github.com/mergington/activities-api/internal/service/inmemory"
	"github.com/mergington/activities-api/internal/telemetry"
	"github.com/mergington/activities-api/internal/versions"
)

const (
	defaultReadTimeout  = 10 * time.Second
	defaultWriteTimeout = 45 * time.Second // must exceed the request timeout so the middleware answers first
	defaultIdleTimeout  = 60 * time.Second
)

// ActivitiesAppOptions is a function that configures the activities app builder
type ActivitiesAppOptions func(*activitiesAppConfig) error

// activitiesAppConfig collects everything needed to build an ActivitiesApp.
// Components left nil are built from the configuration.
type activitiesAppConfig struct {
	config *config.Config

	// Optional component overrides (primarily for testing)
	catalogSource catalog.Source
	telemetry     *telemetry.Telemetry

	// HTTP server options
	address        string
	metricsAddress string
	staticDir      string
	middlewares    []func(http.Handler) http.Handler
	requestTimeout time.Duration
	readTimeout    time.Duration
	writeTimeout   time.Duration
	idleTimeout    time.Duration
}

func baseConfig(opts ...ActivitiesAppOptions) (*activitiesAppConfig, error) {
	cfg := &activitiesAppConfig{
		readTimeout:  defaultReadTimeout,
		writeTimeout: defaultWriteTimeout,
		idleTimeout:  defaultIdleTimeout,
	}

	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, err
		}
	}

	if cfg.config == nil {
		cfg.config = config.Default()
	}

	// Explicit options win over the configuration file
	if cfg.address == "" {
		cfg.address = cfg.config.GetAddress()
	}
	if cfg.metricsAddress == "" {
		cfg.metricsAddress = cfg.config.Server.MetricsAddress
	}
	if cfg.staticDir == "" {
		cfg.staticDir = cfg.config.Server.StaticDir
	}
	if cfg.requestTimeout == 0 {
		cfg.requestTimeout = cfg.config.GetRequestTimeout()
	}
	if cfg.catalogSource == nil {
		cfg.catalogSource = catalog.NewSource(cfg.config.Catalog.Path)
	}

	return cfg, nil
}

// NewActivitiesApp creates the application from the given options
func NewActivitiesApp(
	ctx context.Context,
	opts ...ActivitiesAppOptions,
) (*ActivitiesApp, error) {
	cfg, err := baseConfig(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to build base configuration: %w", err)
	}

	tel, err := buildTelemetry(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to build telemetry: %w", err)
	}

	// Flush telemetry if a later step fails
	cleanupNeeded := true
	defer func() {
		if cleanupNeeded {
			_ = tel.Shutdown(context.Background())
		}
	}()

	reg, svc, err := buildServiceComponents(ctx, cfg, tel)
	if err != nil {
		return nil, fmt.Errorf("failed to build service components: %w", err)
	}

	httpServer, err := buildHTTPServer(ctx, cfg, svc, tel)
	if err != nil {
		return nil, fmt.Errorf("failed to build HTTP server: %w", err)
	}

	metricsServer := buildMetricsServer(cfg, tel)

	appCtx, cancel := context.WithCancel(ctx)
	cleanupNeeded = false

	return &ActivitiesApp{
		config: cfg.config,
		components: &AppComponents{
			Telemetry:       tel,
			Registry:        reg,
			ActivityService: svc,
		},
		httpServer:    httpServer,
		metricsServer: metricsServer,
		ctx:           appCtx,
		cancelFunc:    cancel,
	}, nil
}

// WithConfig sets the configuration
func WithConfig(c *config.Config) ActivitiesAppOptions {
	return func(cfg *activitiesAppConfig) error {
		cfg.config = c
		return nil
	}
}

// WithAddress sets the HTTP server address
func WithAddress(addr string) ActivitiesAppOptions {
	return func(cfg *activitiesAppConfig) error {
		if err := validateListenAddress(addr); err != nil {
			return err
		}
		cfg.address = addr
		return nil
	}
}

// WithMetricsAddress serves /metrics on its own listener
func WithMetricsAddress(addr string) ActivitiesAppOptions {
	return func(cfg *activitiesAppConfig) error {
		if err := validateListenAddress(addr); err != nil {
			return fmt.Errorf("metrics %w", err)
		}
		cfg.metricsAddress = addr
		return nil
	}
}

// WithStaticDir serves the landing page from dir instead of the embedded assets
func WithStaticDir(dir string) ActivitiesAppOptions {
	return func(cfg *activitiesAppConfig) error {
		info, err := os.Stat(dir)
		if err != nil {
			return fmt.Errorf("static directory: %w", err)
		}
		if !info.IsDir() {
			return fmt.Errorf("static directory: %s is not a directory", dir)
		}
		cfg.staticDir = dir
		return nil
	}
}

// WithRequestTimeout bounds the handling time of a single request
func WithRequestTimeout(d time.Duration) ActivitiesAppOptions {
	return func(cfg *activitiesAppConfig) error {
		if d <= 0 {
			return fmt.Errorf("request timeout must be positive, got %s", d)
		}
		cfg.requestTimeout = d
		return nil
	}
}

// WithMiddlewares sets custom HTTP middlewares
func WithMiddlewares(mw ...func(http.Handler) http.Handler) ActivitiesAppOptions {
	return func(cfg *activitiesAppConfig) error {
		cfg.middlewares = mw
		return nil
	}
}

// WithCatalogSource replaces the catalog named in the configuration
func WithCatalogSource(src catalog.Source) ActivitiesAppOptions {
	return func(cfg *activitiesAppConfig) error {
		cfg.catalogSource = src
		return nil
	}
}

// WithTelemetry injects already initialized telemetry providers (for testing)
func WithTelemetry(t *telemetry.Telemetry) ActivitiesAppOptions {
	return func(cfg *activitiesAppConfig) error {
		cfg.telemetry = t
		return nil
	}
}

func validateListenAddress(addr string) error {
	if addr == "" {
		return fmt.Errorf("address cannot be empty")
	}

	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		return fmt.Errorf("address is not valid: %w", err)
	}
	if port == "" {
		return fmt.Errorf("address is not a valid port: %s", addr)
	}
	if host == "localhost" {
		host = "127.0.0.1"
	}
	if host == "" {
		host = "0.0.0.0"
	}

	if _, err := netip.ParseAddrPort(net.JoinHostPort(host, port)); err != nil {
		return fmt.Errorf("address is not a valid port: %w", err)
	}
	return nil
}

// buildTelemetry initializes the configured providers, falling back to no-op providers
func buildTelemetry(ctx context.Context, b *activitiesAppConfig) (*telemetry.Telemetry, error) {
	if b.telemetry != nil {
		return b.telemetry, nil
	}

	telCfg := b.config.Telemetry
	if telCfg != nil && telCfg.ServiceVersion == "" {
		withVersion := *telCfg
		withVersion.ServiceVersion = versions.GetVersionInfo().Version
		telCfg = &withVersion
	}

	policy := b.config.Enrollment.Policy()
	return telemetry.New(ctx,
		telemetry.WithTelemetryConfig(telCfg),
		telemetry.WithResourceAttributes(
			telemetry.AttrCatalogSource.String(b.catalogSource.Name()),
			telemetry.AttrEnforceCapacity.Bool(policy.EnforceCapacity),
			telemetry.AttrValidateEmail.Bool(policy.ValidateEmail),
		),
	)
}

// buildServiceComponents loads the catalog and builds the registry and the activity service
func buildServiceComponents(
	ctx context.Context,
	b *activitiesAppConfig,
	tel *telemetry.Telemetry,
) (*registry.Registry, service.ActivityService, error) {
	slog.Info("Initializing service components")

	catalogMetrics, err := telemetry.NewCatalogMetrics(tel.MeterProvider())
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create catalog metrics: %w", err)
	}

	policy := b.config.Enrollment.Policy()
	reg, err := catalog.LoadRegistry(ctx, b.catalogSource, catalogMetrics, registry.WithPolicy(policy))
	if err != nil {
		return nil, nil, err
	}

	enrollmentMetrics, err := telemetry.NewEnrollmentMetrics(tel.MeterProvider())
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create enrollment metrics: %w", err)
	}

	svc, err := inmemory.New(ctx, reg,
		inmemory.WithTracer(tel.Tracer(inmemory.ServiceTracerName)),
		inmemory.WithEnrollmentMetrics(enrollmentMetrics),
		inmemory.WithLogger(slog.Default().With("component", "activity-service")),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create activity service: %w", err)
	}

	slog.Info("Service components initialized successfully",
		"enforce_capacity", policy.EnforceCapacity,
		"validate_email", policy.ValidateEmail,
	)
	return reg, svc, nil
}

// buildHTTPServer builds the HTTP server with router and middleware
//
//nolint:unparam // we prefer having a similar interface
func buildHTTPServer(
	_ context.Context,
	b *activitiesAppConfig,
	svc service.ActivityService,
	tel *telemetry.Telemetry,
) (*http.Server, error) {
	slog.Info("Initializing HTTP server")

	middlewares := b.middlewares
	if middlewares == nil {
		middlewares = []func(http.Handler) http.Handler{
			middleware.RequestID,
			middleware.RealIP,
			middleware.Recoverer,
			middleware.Timeout(b.requestTimeout),
			api.LoggingMiddleware,
		}
	}

	// Telemetry goes first so rejected and timed out requests are still observed
	httpMetrics, err := telemetry.NewHTTPMetrics(tel.MeterProvider())
	if err != nil {
		return nil, fmt.Errorf("failed to create HTTP metrics: %w", err)
	}
	middlewares = append([]func(http.Handler) http.Handler{
		telemetry.TracingMiddleware(tel.TracerProvider()),
		httpMetrics.Middleware,
	}, middlewares...)

	serverOpts := []api.ServerOption{
		api.WithMiddlewares(middlewares...),
	}
	if b.staticDir != "" {
		serverOpts = append(serverOpts, api.WithStaticFS(os.DirFS(b.staticDir)))
		slog.Info("Serving static files from disk", "dir", b.staticDir)
	}
	if handler := tel.MetricsHandler(); handler != nil && b.metricsAddress == "" {
		serverOpts = append(serverOpts, api.WithMetricsHandler(handler))
		slog.Info("Prometheus metrics served on API listener", "path", "/metrics")
	}

	server := &http.Server{
		Addr:         b.address,
		Handler:      api.NewServer(svc, serverOpts...),
		ReadTimeout:  b.readTimeout,
		WriteTimeout: b.writeTimeout,
		IdleTimeout:  b.idleTimeout,
	}

	slog.Info("HTTP server configured", "address", b.address)
	return server, nil
}

// buildMetricsServer returns the dedicated /metrics listener, or nil when not configured
func buildMetricsServer(b *activitiesAppConfig, tel *telemetry.Telemetry) *http.Server {
	handler := tel.MetricsHandler()
	if b.metricsAddress == "" || handler == nil {
		return nil
	}

	r := chi.NewRouter()
	r.Handle("/metrics", handler)

	slog.Info("Metrics server configured", "address", b.metricsAddress)
	return &http.Server{
		Addr:         b.metricsAddress,
		Handler:      r,
		ReadTimeout:  b.readTimeout,
		WriteTimeout: b.writeTimeout,
		IdleTimeout:  b.idleTimeout,
	}
}
