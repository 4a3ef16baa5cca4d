package catalog

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/mergington/activities-api/internal/registry"
	"github.com/mergington/activities-api/internal/telemetry"
)

// BuiltinSourceName identifies the compiled-in Mergington catalog
const BuiltinSourceName = "builtin"

// Source abstracts where seed activities come from
type Source interface {
	// Seeds returns the activities to build the registry from, in listing order
	Seeds(ctx context.Context) ([]registry.Seed, error)

	// Name describes the source, e.g. "builtin" or "file:/etc/activities/catalog.yaml"
	Name() string
}

// NewSource returns a file source for path, or the built-in catalog when path is empty
func NewSource(path string) Source {
	if path == "" {
		return builtinSource{}
	}
	return fileSource{path: path}
}

type builtinSource struct{}

func (builtinSource) Seeds(context.Context) ([]registry.Seed, error) {
	return registry.DefaultCatalog(), nil
}

func (builtinSource) Name() string {
	return BuiltinSourceName
}

type fileSource struct {
	path string
}

func (s fileSource) Seeds(ctx context.Context) ([]registry.Seed, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return Load(s.path)
}

func (s fileSource) Name() string {
	return "file:" + s.path
}

// LoadRegistry reads seeds from src and builds a registry from them.
// metrics may be nil.
func LoadRegistry(
	ctx context.Context,
	src Source,
	metrics *telemetry.CatalogMetrics,
	opts ...registry.Option,
) (*registry.Registry, error) {
	start := time.Now()

	seeds, err := src.Seeds(ctx)
	if err != nil {
		metrics.RecordLoad(ctx, src.Name(), time.Since(start), 0, false)
		return nil, fmt.Errorf("failed to load catalog from %s: %w", src.Name(), err)
	}

	reg, err := registry.New(seeds, opts...)
	if err != nil {
		metrics.RecordLoad(ctx, src.Name(), time.Since(start), 0, false)
		return nil, fmt.Errorf("invalid catalog from %s: %w", src.Name(), err)
	}

	metrics.RecordLoad(ctx, src.Name(), time.Since(start), len(seeds), true)
	slog.Info("Loaded activity catalog", "source", src.Name(), "activities", len(seeds))

	return reg, nil
}
