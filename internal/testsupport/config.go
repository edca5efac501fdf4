package testsupport

import (
	"path/filepath"
	"testing"

	"episodekit/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*config.Config)

// NewConfig produces a config rooted in a per-test temp directory: the task
// root is <base>/task and the state dir is <base>/state. Neither directory is
// created.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.TaskRoot = filepath.Join(base, "task")
	cfg.Paths.StateDir = filepath.Join(base, "state")

	for _, opt := range opts {
		opt(&cfg)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("test config invalid: %v", err)
	}
	return &cfg
}

// WithTaskRoot points the config at an existing dataset directory.
func WithTaskRoot(dir string) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Paths.TaskRoot = dir
	}
}

// WithoutJournal disables the run journal.
func WithoutJournal() ConfigOption {
	return func(cfg *config.Config) {
		cfg.Journal.Enabled = false
	}
}

// WithPublishBucket enables publishing to bucket with static test credentials.
func WithPublishBucket(bucket string) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Publish.Enabled = true
		cfg.Publish.Bucket = bucket
		cfg.Publish.AccessKeyID = "test-access-key"
		cfg.Publish.SecretAccessKey = "test-secret-key"
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.StateDir)
}
