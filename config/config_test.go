package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meshpay/rewards/config"
)

func TestDefaults(t *testing.T) {
	cfg, err := config.LoadConfig("")
	require.NoError(t, err)

	assert.Equal(t, config.BackendMemory, cfg.Database.Backend)
	assert.False(t, cfg.Archive.Enabled)
	assert.Equal(t, config.DriverSQLite, cfg.Archive.Driver)
	assert.Equal(t, 1024, cfg.Cache.Size)
	assert.False(t, cfg.Log.Verbose)
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "meshpay.toml")
	content := `
[database]
backend = "pebble"
path = "/var/lib/meshpay/ledger"

[archive]
enabled = true
driver = "sqlite"
path = ":memory:"

[cache]
size = 64

[log]
verbose = true
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := config.LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, config.BackendPebble, cfg.Database.Backend)
	assert.Equal(t, "/var/lib/meshpay/ledger", cfg.Database.Path)
	assert.True(t, cfg.Archive.Enabled)
	assert.Equal(t, ":memory:", cfg.Archive.Path)
	assert.Equal(t, 64, cfg.Cache.Size)
	assert.True(t, cfg.Log.Verbose)
}

func TestEnvOverride(t *testing.T) {
	t.Setenv("MESHPAY_DATABASE_BACKEND", "bbolt")
	t.Setenv("MESHPAY_DATABASE_PATH", "/tmp/ledger.db")

	cfg, err := config.LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, config.BackendBBolt, cfg.Database.Backend)
	assert.Equal(t, "/tmp/ledger.db", cfg.Database.Path)
}

func TestValidation(t *testing.T) {
	t.Run("UnknownBackend", func(t *testing.T) {
		cfg := config.DefaultConfig()
		cfg.Database.Backend = "redis"
		require.ErrorIs(t, config.ValidateConfig(cfg), config.ErrUnknownBackend)
	})

	t.Run("DurableBackendNeedsPath", func(t *testing.T) {
		cfg := config.DefaultConfig()
		cfg.Database.Backend = config.BackendPebble
		require.ErrorIs(t, config.ValidateConfig(cfg), config.ErrMissingPath)
	})

	t.Run("ArchiveNeedsDestination", func(t *testing.T) {
		cfg := config.DefaultConfig()
		cfg.Archive.Enabled = true
		cfg.Archive.Path = ""
		require.ErrorIs(t, config.ValidateConfig(cfg), config.ErrMissingArchiveDSN)
	})

	t.Run("UnknownDriver", func(t *testing.T) {
		cfg := config.DefaultConfig()
		cfg.Archive.Enabled = true
		cfg.Archive.Driver = "oracle"
		require.ErrorIs(t, config.ValidateConfig(cfg), config.ErrUnknownDriver)
	})

	t.Run("CacheSize", func(t *testing.T) {
		cfg := config.DefaultConfig()
		cfg.Cache.Size = 0
		require.ErrorIs(t, config.ValidateConfig(cfg), config.ErrInvalidCacheSize)
	})
}
