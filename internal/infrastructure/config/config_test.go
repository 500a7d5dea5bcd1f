package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	t.Run("loads default values when nothing is set", func(t *testing.T) {
		cfg, err := Load(t.TempDir())
		require.NoError(t, err)

		assert.Equal(t, "minishop-pos", cfg.App.Name)
		assert.Equal(t, "development", cfg.App.Env)
		assert.Equal(t, "info", cfg.Log.Level)
		assert.Equal(t, "stderr", cfg.Log.Output)
		assert.Empty(t, cfg.Log.File)
		assert.Empty(t, cfg.Metrics.Addr)
		assert.Empty(t, cfg.Catalog.SeedFile)
		assert.Equal(t, 1024, cfg.Bus.Buffer)
		assert.Equal(t, 8, cfg.Bus.Concurrency)
		assert.False(t, cfg.IsProduction())
	})

	t.Run("loads values from environment variables with POS prefix", func(t *testing.T) {
		t.Setenv("POS_APP_NAME", "till-7")
		t.Setenv("POS_APP_ENV", "production")
		t.Setenv("POS_LOG_LEVEL", "debug")
		t.Setenv("POS_METRICS_ADDR", ":9090")
		t.Setenv("POS_BUS_CONCURRENCY", "2")

		cfg, err := Load(t.TempDir())
		require.NoError(t, err)

		assert.Equal(t, "till-7", cfg.App.Name)
		assert.True(t, cfg.IsProduction())
		assert.Equal(t, "debug", cfg.Log.Level)
		assert.Equal(t, ":9090", cfg.Metrics.Addr)
		assert.Equal(t, 2, cfg.Bus.Concurrency)
	})

	t.Run("reads config.yaml and lets env override it", func(t *testing.T) {
		dir := t.TempDir()
		yaml := []byte("app:\n  name: from-file\nlog:\n  level: warn\ncatalog:\n  seed_file: products.yaml\nbus:\n  buffer: 64\n")
		require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), yaml, 0o644))
		t.Setenv("POS_LOG_LEVEL", "error")

		cfg, err := Load(dir)
		require.NoError(t, err)

		assert.Equal(t, "from-file", cfg.App.Name)
		assert.Equal(t, "error", cfg.Log.Level)
		assert.Equal(t, "products.yaml", cfg.Catalog.SeedFile)
		assert.Equal(t, 64, cfg.Bus.Buffer)
	})

	t.Run("rejects unknown log level", func(t *testing.T) {
		t.Setenv("POS_LOG_LEVEL", "verbose")
		_, err := Load(t.TempDir())
		assert.ErrorContains(t, err, "invalid log level")
	})

	t.Run("rejects unknown log output", func(t *testing.T) {
		t.Setenv("POS_LOG_OUTPUT", "syslog")
		_, err := Load(t.TempDir())
		assert.ErrorContains(t, err, "invalid log output")
	})

	t.Run("rejects negative bus buffer", func(t *testing.T) {
		t.Setenv("POS_BUS_BUFFER", "-1")
		_, err := Load(t.TempDir())
		assert.ErrorContains(t, err, "bus buffer")
	})

	t.Run("reports malformed config file", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("app: [unterminated"), 0o644))
		_, err := Load(dir)
		assert.ErrorContains(t, err, "error reading config file")
	})
}
