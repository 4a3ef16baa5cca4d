// Package app provides application lifecycle management for the activities API.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/mergington/activities-api/internal/config"
)

// ActivitiesApp encapsulates all components needed to run the activities API server.
// It provides lifecycle management and graceful shutdown capabilities.
type ActivitiesApp struct {
	config        *config.Config
	components    *AppComponents
	httpServer    *http.Server
	metricsServer *http.Server

	// Lifecycle management
	ctx        context.Context
	cancelFunc context.CancelFunc
}

// Start runs the API listener and, when configured, the metrics listener.
// It blocks until Stop is called, the application context ends or a listener fails.
// A failing listener closes the others.
func (app *ActivitiesApp) Start() error {
	servers := app.servers()
	g, gctx := errgroup.WithContext(app.ctx)

	for _, srv := range servers {
		g.Go(func() error {
			slog.Info("Server listening", "address", srv.Addr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("HTTP server on %s failed: %w", srv.Addr, err)
			}
			return nil
		})
	}

	g.Go(func() error {
		<-gctx.Done()
		for _, srv := range servers {
			_ = srv.Close()
		}
		return nil
	})

	return g.Wait()
}

// Stop gracefully stops the application with the given timeout.
// Listeners are drained first, then telemetry is flushed.
func (app *ActivitiesApp) Stop(timeout time.Duration) error {
	slog.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	var errs []error
	for _, srv := range app.servers() {
		if err := srv.Shutdown(shutdownCtx); err != nil {
			errs = append(errs, fmt.Errorf("server on %s forced to shutdown: %w", srv.Addr, err))
		}
	}

	if app.cancelFunc != nil {
		app.cancelFunc()
	}

	if app.components != nil && app.components.Telemetry != nil {
		if err := app.components.Telemetry.Shutdown(shutdownCtx); err != nil {
			errs = append(errs, fmt.Errorf("failed to shutdown telemetry: %w", err))
		}
	}

	if err := errors.Join(errs...); err != nil {
		return err
	}

	slog.Info("Server shutdown complete")
	return nil
}

// GetConfig returns the application configuration
func (app *ActivitiesApp) GetConfig() *config.Config {
	return app.config
}

// GetHTTPServer returns the API server (useful for testing to get the actual port)
func (app *ActivitiesApp) GetHTTPServer() *http.Server {
	return app.httpServer
}

// GetMetricsServer returns the dedicated metrics server, or nil when /metrics
// is served by the API listener or not at all
func (app *ActivitiesApp) GetMetricsServer() *http.Server {
	return app.metricsServer
}

func (app *ActivitiesApp) servers() []*http.Server {
	servers := []*http.Server{app.httpServer}
	if app.metricsServer != nil {
		servers = append(servers, app.metricsServer)
	}
	return servers
}
