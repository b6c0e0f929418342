package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, 64, cfg.Server.BodyLimitMB)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, 30, cfg.Database.TimeoutSeconds)
	assert.Equal(t, "sql", cfg.Catalog.Store)
	assert.Equal(t, 256, cfg.Catalog.LockShards)
	assert.Equal(t, 0, cfg.Catalog.Workers)
	assert.True(t, cfg.Metrics.Enabled)
	assert.Equal(t, "/metrics", cfg.Metrics.Path)
	assert.Equal(t, "catalog-snapshots", cfg.Storage.Bucket)
}

func TestLoadConfig_Environment(t *testing.T) {
	t.Setenv("CATALOG_WORKERS", "3")
	t.Setenv("CATALOG_STORE", "memory")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, 3, cfg.Catalog.Workers)
	assert.Equal(t, "memory", cfg.Catalog.Store)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoadConfig_EnvFile(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("SERVER_PORT", "")
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("SERVER_PORT=9191\n"), 0o600))

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)
	assert.Equal(t, "9191", cfg.Server.Port)
}

func TestLoadConfig_Invalid(t *testing.T) {
	t.Run("Store", func(t *testing.T) {
		t.Setenv("CATALOG_STORE", "redis")
		_, err := LoadConfig(t.TempDir())
		assert.ErrorContains(t, err, "unsupported catalog store")
	})

	t.Run("Driver", func(t *testing.T) {
		t.Setenv("DATABASE_DRIVER", "oracle")
		_, err := LoadConfig(t.TempDir())
		assert.ErrorContains(t, err, "unsupported database driver")
	})
}
