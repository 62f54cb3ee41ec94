package testsupport

import (
	"path/filepath"
	"testing"

	"stlcat/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*config.Config)

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.CatalogDir = filepath.Join(base, "catalog")
	cfg.Paths.VocabDir = filepath.Join(base, "vocab")
	cfg.Paths.ChangeSetDir = filepath.Join(base, "changesets")
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	cfg.Pipeline.Workers = 2

	for _, opt := range opts {
		opt(&cfg)
	}
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("ensure config directories: %v", err)
	}
	return &cfg
}

// WithWorkers overrides the pipeline worker count.
func WithWorkers(workers int) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Pipeline.Workers = workers
	}
}

// WithKitRollup toggles kit candidate roll-up for matcher tests.
func WithKitRollup(enabled bool) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Matcher.KitRollup = enabled
	}
}
