package config

import (
	"context"
	"fmt"

	"github.com/sethvargo/go-envconfig"
)

type Config interface {
	EnvConfig
	CorsConfig
	APIConfig
	SessionConfig
}

type EnvConfig interface {
	GetPort() string
	GetAppName() string
	GetDataFolder() string
	GetLogLevel() string
	GetEnv() string
}

type CorsConfig interface {
	GetAllowedOrigins() AllowedOrigins
	GetAllowedMethods() string
	GetAllowedHeaders() string
}

type mainConfig struct {
	EnvVars
	Cors
	API
	Session
}

// New loads the configuration from the process environment.
func New(ctx context.Context) (Config, error) {
	return Load(ctx, envconfig.OsLookuper())
}

// Load resolves the configuration through the given lookuper, tests pass envconfig.MapLookuper.
func Load(ctx context.Context, lookuper envconfig.Lookuper) (Config, error) {
	var c mainConfig
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{
		Target:   &c,
		Lookuper: lookuper,
	}); err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}
	if err := c.Session.validate(); err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}
	return c, nil
}
