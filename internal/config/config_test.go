package config_test

import (
	"context"
	"testing"
	"time"

	"github.com/jrsteele09/credibuy-console/internal/config"
	"github.com/sethvargo/go-envconfig"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	c, err := config.Load(context.Background(), envconfig.MapLookuper(map[string]string{}))
	require.NoError(t, err)

	require.Equal(t, ":8080", c.GetPort())
	require.Equal(t, "Credibuy Console", c.GetAppName())
	require.Equal(t, "DEV", c.GetEnv())
	require.Equal(t, "http://localhost:8000", c.GetAPIBaseURL())
	require.Equal(t, 15*time.Second, c.GetAPITimeout())
	require.Equal(t, config.SessionBackendFile, c.GetSessionBackend())
	require.Empty(t, c.GetAllowedOrigins())
}

func TestLoad_Overrides(t *testing.T) {
	c, err := config.Load(context.Background(), envconfig.MapLookuper(map[string]string{
		"PORT":            ":9090",
		"API_URL":         "https://api.credibuy.test",
		"API_TIMEOUT":     "3s",
		"SESSION_BACKEND": "redis",
		"REDIS_DB":        "2",
		"ALLOWED_ORIGINS": "https://a.test, https://b.test",
		"ENV":             "prod",
	}))
	require.NoError(t, err)

	require.Equal(t, ":9090", c.GetPort())
	require.Equal(t, "https://api.credibuy.test", c.GetAPIBaseURL())
	require.Equal(t, 3*time.Second, c.GetAPITimeout())
	require.Equal(t, config.SessionBackendRedis, c.GetSessionBackend())
	require.Equal(t, 2, c.GetRedisDB())
	require.Equal(t, "PROD", c.GetEnv())
	require.True(t, c.GetAllowedOrigins().IsAllowedOrigin("https://b.test"))
	require.Equal(t, "https://a.test, https://b.test", c.GetAllowedOrigins().String())
}

func TestLoad_UnknownBackend(t *testing.T) {
	_, err := config.Load(context.Background(), envconfig.MapLookuper(map[string]string{
		"SESSION_BACKEND": "cookie",
	}))
	require.Error(t, err)
	require.Contains(t, err.Error(), "unknown session backend")
}
