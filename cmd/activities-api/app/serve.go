package app

import (
	"context"
	"fmt"
	"log/slog"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mergington/activities-api/internal/app"
	"github.com/mergington/activities-api/internal/catalog"
	"github.com/mergington/activities-api/internal/config"
)

const defaultGracefulTimeout = 30 * time.Second // Kubernetes-friendly shutdown time

func newServeCmd() *cobra.Command {
	v := newViper()

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the activities API server",
		Long: `Start the activities API server.

Configuration is read from --config, or from activities-api/config.yaml in the
XDG config directories. Without a file, built-in defaults and the built-in
Mergington catalog are used. Flags and ACTIVITIES_* environment variables
override the file.

See examples/ directory for sample configurations.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), v)
		},
	}

	cmd.Flags().String("address", config.DefaultAddress, "Address to listen on")
	cmd.Flags().String("metrics-address", "", "Serve /metrics on a separate address (requires the prometheus exporter)")
	cmd.Flags().String("config", "", "Path to configuration file (YAML format)")
	cmd.Flags().String("static-dir", "", "Serve the landing page from this directory instead of the embedded one")
	cmd.Flags().String("catalog", "", "Path to a YAML or JSON activity catalog")

	bindFlags(cmd, v, "address", "metrics-address", "config", "static-dir", "catalog")

	return cmd
}

// newViper returns a viper instance reading ACTIVITIES_* environment variables
func newViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(config.EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	return v
}

func bindFlags(cmd *cobra.Command, v *viper.Viper, names ...string) {
	for _, name := range names {
		if err := v.BindPFlag(name, cmd.Flags().Lookup(name)); err != nil {
			// only fails when the flag does not exist
			panic(fmt.Sprintf("failed to bind %s flag: %v", name, err))
		}
	}
}

// loadConfig reads the configuration named by the config key, or the XDG default
func loadConfig(v *viper.Viper) (*config.Config, error) {
	var opts []config.Option
	if path := v.GetString("config"); path != "" {
		opts = append(opts, config.WithConfigPath(path))
	}

	cfg, err := config.LoadConfig(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	if path := v.GetString("catalog"); path != "" {
		cfg.Catalog.Path = path
	}
	return cfg, nil
}

// appOptions turns flags and environment overrides into app options
func appOptions(v *viper.Viper, cfg *config.Config) []app.ActivitiesAppOptions {
	opts := []app.ActivitiesAppOptions{
		app.WithConfig(cfg),
		app.WithCatalogSource(catalog.NewSource(cfg.Catalog.Path)),
	}
	if v.IsSet("address") {
		opts = append(opts, app.WithAddress(v.GetString("address")))
	}
	if addr := v.GetString("metrics-address"); addr != "" {
		opts = append(opts, app.WithMetricsAddress(addr))
	}
	if dir := v.GetString("static-dir"); dir != "" {
		opts = append(opts, app.WithStaticDir(dir))
	}
	return opts
}

func runServe(ctx context.Context, v *viper.Viper) error {
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := loadConfig(v)
	if err != nil {
		return err
	}

	activitiesApp, err := app.NewActivitiesApp(context.Background(), appOptions(v, cfg)...)
	if err != nil {
		return fmt.Errorf("failed to create application: %w", err)
	}

	slog.Info("Starting activities API server", "address", activitiesApp.GetHTTPServer().Addr)

	errChan := make(chan error, 1)
	go func() {
		errChan <- activitiesApp.Start()
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	sigCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	select {
	case err := <-errChan:
		_ = activitiesApp.Stop(defaultGracefulTimeout)
		return err
	case <-sigCtx.Done():
	}

	if err := activitiesApp.Stop(defaultGracefulTimeout); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
		return err
	}
	return <-errChan
}
