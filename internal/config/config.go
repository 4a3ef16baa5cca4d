// Package config provides configuration loading and management for the activities API.
package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
	"gopkg.in/yaml.v3"

	"github.com/mergington/activities-api/internal/registry"
	"github.com/mergington/activities-api/internal/telemetry"
)

const (
	// EnvPrefix is the prefix of environment variables read by the CLI
	EnvPrefix = "ACTIVITIES"

	// AppName names the XDG configuration directory
	AppName = "activities-api"

	// DefaultAddress is the address the API listens on when none is configured
	DefaultAddress = ":8080"

	// DefaultRequestTimeout bounds the handling time of a single request
	DefaultRequestTimeout = 30 * time.Second
)

// Option defines the interface for configuration options
type Option func(*loaderConfig) error

// loaderConfig defines the configuration for loading a configuration
type loaderConfig struct {
	path string
}

// WithConfigPath loads configuration from a YAML file
func WithConfigPath(path string) Option {
	return func(cfg *loaderConfig) error {
		if path == "" {
			return fmt.Errorf("path is required")
		}

		// EvalSymlinks also cleans the path
		realPath, err := filepath.EvalSymlinks(path)
		if err != nil {
			return fmt.Errorf("failed to evaluate symlinks: %w", err)
		}

		if !filepath.IsAbs(realPath) && !filepath.IsLocal(realPath) {
			return fmt.Errorf("path is not local or contains invalid traversal: %s", path)
		}

		cfg.path = realPath
		return nil
	}
}

// Config represents the root configuration structure
type Config struct {
	Server     ServerConfig      `yaml:"server"`
	Catalog    CatalogConfig     `yaml:"catalog"`
	Enrollment EnrollmentConfig  `yaml:"enrollment"`
	Telemetry  *telemetry.Config `yaml:"telemetry,omitempty"`
}

// ServerConfig defines the HTTP listeners
type ServerConfig struct {
	// Address is the API listen address, ":8080" if not specified
	Address string `yaml:"address,omitempty"`

	// MetricsAddress serves /metrics on a separate listener when set.
	// When empty, /metrics is served by the API listener.
	MetricsAddress string `yaml:"metricsAddress,omitempty"`

	// StaticDir serves the landing page from disk instead of the embedded assets
	StaticDir string `yaml:"staticDir,omitempty"`

	// RequestTimeout is a duration such as "30s"
	RequestTimeout string `yaml:"requestTimeout,omitempty"`
}

// CatalogConfig defines where seed activities come from
type CatalogConfig struct {
	// Path is a YAML or JSON catalog file. The built-in catalog is used when empty.
	Path string `yaml:"path,omitempty"`
}

// EnrollmentConfig toggles the optional enrollment checks.
// Unset values default to true.
type EnrollmentConfig struct {
	EnforceCapacity *bool `yaml:"enforceCapacity,omitempty"`
	ValidateEmail   *bool `yaml:"validateEmail,omitempty"`
}

// Policy returns the registry policy described by the enrollment config
func (e EnrollmentConfig) Policy() registry.Policy {
	p := registry.DefaultPolicy()
	if e.EnforceCapacity != nil {
		p.EnforceCapacity = *e.EnforceCapacity
	}
	if e.ValidateEmail != nil {
		p.ValidateEmail = *e.ValidateEmail
	}
	return p
}

// Default returns the configuration used when no file is found
func Default() *Config {
	return &Config{}
}

// DefaultConfigPath returns the first config.yaml found in the XDG config
// directories, or an empty string
func DefaultConfigPath() string {
	path, err := xdg.SearchConfigFile(filepath.Join(AppName, "config.yaml"))
	if err != nil {
		return ""
	}
	return path
}

// LoadConfig loads and parses configuration from a YAML file.
// Without WithConfigPath the XDG config directories are searched, and
// defaults are returned when no file exists there.
func LoadConfig(opts ...Option) (*Config, error) {
	loaderCfg := &loaderConfig{}
	for _, opt := range opts {
		if err := opt(loaderCfg); err != nil {
			return nil, err
		}
	}

	if loaderCfg.path == "" {
		loaderCfg.path = DefaultConfigPath()
	}
	if loaderCfg.path == "" {
		config := Default()
		return config, config.validate()
	}

	data, err := os.ReadFile(loaderCfg.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	return Parse(data)
}

// Parse decodes and validates a YAML configuration document
func Parse(data []byte) (*Config, error) {
	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse YAML config: %w", err)
	}

	if err := config.validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// GetAddress returns the API listen address, using DefaultAddress if not specified
func (c *Config) GetAddress() string {
	if c.Server.Address == "" {
		return DefaultAddress
	}
	return c.Server.Address
}

// GetRequestTimeout returns the per-request timeout, using DefaultRequestTimeout if not specified.
// Validation should be performed before calling this method.
func (c *Config) GetRequestTimeout() time.Duration {
	if c.Server.RequestTimeout == "" {
		return DefaultRequestTimeout
	}
	d, err := time.ParseDuration(c.Server.RequestTimeout)
	if err != nil {
		return DefaultRequestTimeout
	}
	return d
}

// validate performs validation on the configuration
func (c *Config) validate() error {
	if c == nil {
		return fmt.Errorf("config cannot be nil")
	}

	var errs []error

	if err := validateAddress(c.GetAddress()); err != nil {
		errs = append(errs, fmt.Errorf("server.address: %w", err))
	}

	if c.Server.MetricsAddress != "" {
		if err := validateAddress(c.Server.MetricsAddress); err != nil {
			errs = append(errs, fmt.Errorf("server.metricsAddress: %w", err))
		} else if c.Server.MetricsAddress == c.GetAddress() {
			errs = append(errs, fmt.Errorf("server.metricsAddress must differ from server.address"))
		}
	}

	if c.Server.RequestTimeout != "" {
		d, err := time.ParseDuration(c.Server.RequestTimeout)
		switch {
		case err != nil:
			errs = append(errs, fmt.Errorf("server.requestTimeout must be a valid duration (e.g., '30s'): %w", err))
		case d <= 0:
			errs = append(errs, fmt.Errorf("server.requestTimeout must be positive, got %s", d))
		}
	}

	if c.Server.StaticDir != "" {
		if info, err := os.Stat(c.Server.StaticDir); err != nil {
			errs = append(errs, fmt.Errorf("server.staticDir: %w", err))
		} else if !info.IsDir() {
			errs = append(errs, fmt.Errorf("server.staticDir: %s is not a directory", c.Server.StaticDir))
		}
	}

	if err := c.Telemetry.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("telemetry: %w", err))
	}

	if c.Server.MetricsAddress != "" && !c.Telemetry.PrometheusEnabled() {
		errs = append(errs, fmt.Errorf("server.metricsAddress requires telemetry.metrics.exporter to be %q",
			telemetry.MetricsExporterPrometheus))
	}

	return errors.Join(errs...)
}

// validateAddress checks a "host:port" listen address
func validateAddress(addr string) error {
	_, port, err := net.SplitHostPort(addr)
	if err != nil {
		return err
	}
	if port == "" {
		return fmt.Errorf("port is required in %q", addr)
	}
	return nil
}
