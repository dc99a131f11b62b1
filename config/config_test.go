package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfigIsValid(t *testing.T) {
	require.NoError(t, DefaultConfig().Validate())
}

func TestLoadLayers(t *testing.T) {
	t.Chdir(t.TempDir())

	path := filepath.Join(t.TempDir(), "epubpress.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  addr: ":9090"
tasks:
  retention: 10m
  backend: badger
batch:
  workers: 2
`), 0o644))

	t.Setenv("EPUBPRESS_TASKS__RETENTION", "2m")
	t.Setenv("EPUBPRESS_LOGGING__LEVEL", "debug")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Server.Addr)
	assert.Equal(t, "badger", cfg.Tasks.Backend)
	assert.Equal(t, 2, cfg.Batch.Workers)
	assert.Equal(t, 2*time.Minute, cfg.Tasks.Retention)
	assert.Equal(t, "debug", cfg.Logging.Level)

	// Untouched keys keep their defaults.
	assert.Equal(t, int64(4<<20), cfg.Limits.MaxUploadBytes)
	assert.Equal(t, 10, cfg.Batch.MaxFiles)
	assert.True(t, cfg.Artifacts.OneTime)
}

func TestLoadRejectsInvalid(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("EPUBPRESS_TASKS__BACKEND", "etcd")

	_, err := Load("")
	assert.ErrorContains(t, err, "unknown backend")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"no addr", func(c *Config) { c.Server.Addr = "" }},
		{"zero upload limit", func(c *Config) { c.Limits.MaxUploadBytes = 0 }},
		{"zero batch files", func(c *Config) { c.Batch.MaxFiles = 0 }},
		{"negative workers", func(c *Config) { c.Batch.Workers = -1 }},
		{"zero retention", func(c *Config) { c.Tasks.Retention = 0 }},
		{"redis without url", func(c *Config) { c.Tasks.Backend = "redis"; c.Tasks.RedisURL = "" }},
		{"bad zstd level", func(c *Config) { c.Artifacts.Compress = true; c.Artifacts.Level = 9 }},
		{"bad checksum", func(c *Config) { c.Artifacts.Checksum = "md5" }},
		{"bad log level", func(c *Config) { c.Logging.Level = "loud" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
