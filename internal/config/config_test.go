package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/BookCnk/sit-football-club/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("CONFIG_FILE", "")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.AppPort)
	assert.Equal(t, "postgres", cfg.DatabaseDriver)
	assert.Equal(t, "supabase", cfg.StorageDriver)
	assert.Equal(t, "payment-slips", cfg.SlipBucket)
	assert.Equal(t, 30*time.Second, cfg.StorageTimeout)
	assert.False(t, cfg.CookieSecure)
}

func TestLoadEnvironmentOverrides(t *testing.T) {
	t.Setenv("CONFIG_FILE", "")
	t.Setenv("APP_PORT", "9090")
	t.Setenv("DATABASE_DRIVER", "SQLite")
	t.Setenv("NEXT_PUBLIC_SUPABASE_URL", "https://project.supabase.co")
	t.Setenv("SUPABASE_ORDER_SLIP_BUCKET", "slips")
	t.Setenv("COOKIE_SECURE", "true")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.AppPort)
	assert.Equal(t, "sqlite", cfg.DatabaseDriver)
	assert.Equal(t, "https://project.supabase.co", cfg.SupabaseURL)
	assert.Equal(t, "slips", cfg.SlipBucket)
	assert.True(t, cfg.CookieSecure)
}

func TestLoadEnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env.local")
	require.NoError(t, os.WriteFile(path, []byte("JWT_SECRET=from-file\nSTORAGE_DRIVER=memory\n"), 0o600))
	t.Setenv("CONFIG_FILE", path)

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "from-file", cfg.JWTSecret)
	assert.Equal(t, "memory", cfg.StorageDriver)
}

func TestLoadRejectsUnknownDriver(t *testing.T) {
	t.Setenv("CONFIG_FILE", "")
	t.Setenv("DATABASE_DRIVER", "mysql")

	_, err := config.Load()
	assert.Error(t, err)
}

func TestMissing(t *testing.T) {
	err := config.Missing("SUPABASE_URL")
	assert.Equal(t, "SUPABASE_URL", err.Key)
	assert.EqualError(t, err, "Missing required environment variable: SUPABASE_URL")
}
