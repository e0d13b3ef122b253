package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_FileAndDefaults(t *testing.T) {
	dir := t.TempDir()
	yaml := []byte(`
jwt:
  secret: s3cr3t
  expiration: 2h
database:
  driver: memory
app:
  timezone: UTC
  default_rest_seconds: 120
persist:
  retry_backoff: 1s
`)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), yaml, 0o600))

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)

	assert.Equal(t, "s3cr3t", cfg.JWT.Secret)
	assert.Equal(t, 2*time.Hour, cfg.JWT.Expiration)
	assert.Equal(t, DriverMemory, cfg.Database.Driver)
	assert.Equal(t, 120, cfg.App.DefaultRestSeconds)
	assert.Equal(t, time.Second, cfg.Persist.RetryBackoff)

	// defaults
	assert.Equal(t, ":8080", cfg.Server.Address)
	assert.Equal(t, 3, cfg.Persist.MaxAttempts)
	assert.Equal(t, 15*time.Minute, cfg.S3.URLExpiration)
	assert.False(t, cfg.S3.Enabled)
	assert.Equal(t, 30*time.Minute, cfg.App.WorkspaceIdle)
	assert.Equal(t, 5*time.Minute, cfg.App.EvictionInterval)

	loc, err := cfg.App.Location()
	require.NoError(t, err)
	assert.Equal(t, "UTC", loc.String())
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	t.Setenv("JWT_SECRET", "from-env")
	t.Setenv("SERVER_ADDRESS", ":9999")
	t.Setenv("DATABASE_DRIVER", "memory")

	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.JWT.Secret)
	assert.Equal(t, ":9999", cfg.Server.Address)
}

func TestLoadConfig_RequiresSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	_, err := LoadConfig(t.TempDir())
	assert.Error(t, err)
}

func TestLoadConfig_RejectsUnknownDriver(t *testing.T) {
	t.Setenv("JWT_SECRET", "x")
	t.Setenv("DATABASE_DRIVER", "postgres")
	_, err := LoadConfig(t.TempDir())
	assert.ErrorContains(t, err, "database.driver")
}

func TestAppConfig_LocationInvalid(t *testing.T) {
	_, err := AppConfig{Timezone: "Not/AZone"}.Location()
	assert.Error(t, err)
}
