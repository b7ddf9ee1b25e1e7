package config_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/landing-api/internal/config"
)

func TestLoadRequiresDatabaseURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("REDIS_URL", "redis://localhost:6379")
	_, err := config.Load()
	require.ErrorContains(t, err, "DATABASE_URL")
}

func TestLoadDevFallsBackToPlaceholderKey(t *testing.T) {
	t.Setenv("APP_ENV", "development")
	t.Setenv("DATABASE_URL", "postgres://localhost/landing")
	t.Setenv("REDIS_URL", "redis://localhost:6379")
	t.Setenv("APP_MASTER_KEY", "")

	cfg, err := config.Load()
	require.NoError(t, err)
	require.True(t, cfg.UsingDevMasterKey())
}

func TestLoadProductionRequiresMasterKey(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("DATABASE_URL", "postgres://localhost/landing")
	t.Setenv("REDIS_URL", "redis://localhost:6379")
	t.Setenv("APP_MASTER_KEY", "")

	_, err := config.Load()
	require.ErrorContains(t, err, "APP_MASTER_KEY")
}

func TestLoadProductionWithMasterKey(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("DATABASE_URL", "postgres://localhost/landing")
	t.Setenv("REDIS_URL", "redis://localhost:6379")
	t.Setenv("APP_MASTER_KEY", "real-secret")

	cfg, err := config.Load()
	require.NoError(t, err)
	require.False(t, cfg.UsingDevMasterKey())
	require.Equal(t, ":8080", cfg.HTTPAddr())
}
