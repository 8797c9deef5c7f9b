// Package app wires the session store, the authenticated API client and the
// domain services into one console instance.
package app

import (
	"context"
	"fmt"
	"net/http"
	"path/filepath"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/jrsteele09/credibuy-console/api"
	"github.com/jrsteele09/credibuy-console/auth"
	"github.com/jrsteele09/credibuy-console/clients"
	"github.com/jrsteele09/credibuy-console/credits"
	"github.com/jrsteele09/credibuy-console/internal/config"
	"github.com/jrsteele09/credibuy-console/products"
	"github.com/jrsteele09/credibuy-console/server"
	"github.com/jrsteele09/credibuy-console/sessions"
	"github.com/jrsteele09/credibuy-console/sessions/filestore"
	"github.com/jrsteele09/credibuy-console/sessions/memstore"
	"github.com/jrsteele09/credibuy-console/sessions/redisstore"
	"github.com/jrsteele09/credibuy-console/token"
	"github.com/jrsteele09/credibuy-console/token/refresh"
	"github.com/jrsteele09/credibuy-console/transport"
)

type App struct {
	Config   config.Config
	Store    sessions.Store
	Provider *auth.Provider
	Services server.Services

	Clients  *clients.Service
	Products *products.Service
	Credits  *credits.Service

	redis *redis.Client
}

type Option func(*options)

type options struct {
	base  http.RoundTripper
	store sessions.Store
}

// WithBaseTransport sets the RoundTripper under the authenticated transport.
func WithBaseTransport(rt http.RoundTripper) Option {
	return func(o *options) {
		o.base = rt
	}
}

// WithStore skips the configured session backend.
func WithStore(s sessions.Store) Option {
	return func(o *options) {
		o.store = s
	}
}

// New builds the console. Refresh exchanges use a plain client so they never
// pass through the authenticated transport.
func New(ctx context.Context, cfg config.Config, opts ...Option) (*App, error) {
	o := options{base: http.DefaultTransport}
	for _, opt := range opts {
		opt(&o)
	}

	a := &App{Config: cfg, Store: o.store}
	if a.Store == nil {
		if err := a.openStore(ctx); err != nil {
			return nil, err
		}
	}

	plain, err := api.New(cfg.GetAPIBaseURL(), &http.Client{Transport: o.base, Timeout: cfg.GetAPITimeout()})
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("[app New] %w", err)
	}
	tokens := token.NewClient(plain)
	refresher := refresh.NewRefresher(a.Store, tokens)

	tr := transport.New(a.Store, refresher,
		transport.WithBase(o.base),
		transport.WithOnUnauthorized(a.onUnauthorized))
	authed, err := api.New(cfg.GetAPIBaseURL(), tr.Client(cfg.GetAPITimeout()))
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("[app New] %w", err)
	}

	a.Provider, err = auth.NewProvider(ctx, a.Store, tokens, refresher)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("[app New] %w", err)
	}

	a.Clients = clients.NewService(authed)
	a.Products = products.NewService(authed)
	a.Credits = credits.NewService(authed)
	a.Services = server.Services{
		Clients:  a.Clients,
		Products: a.Products,
		Credits:  a.Credits,
	}
	return a, nil
}

// Server builds the dashboard over this console.
func (a *App) Server() (*server.Server, error) {
	return server.New(a.Config, a.Provider, a.Services)
}

// Close releases the redis connection, if any.
func (a *App) Close() {
	if a.redis == nil {
		return
	}
	if err := a.redis.Close(); err != nil {
		log.Err(err).Msg("Failed to close redis client")
	}
	a.redis = nil
}

func (a *App) openStore(ctx context.Context) error {
	switch backend := a.Config.GetSessionBackend(); backend {
	case config.SessionBackendMemory:
		a.Store = memstore.New()
	case config.SessionBackendFile:
		path := filepath.Join(a.Config.GetDataFolder(), a.Config.GetSessionFile())
		fs, err := filestore.New(path)
		if err != nil {
			return fmt.Errorf("[app openStore] %w", err)
		}
		a.Store = fs
	case config.SessionBackendRedis:
		rs, client, err := redisstore.Connect(ctx, redisstore.Config{
			Addr:   a.Config.GetRedisAddr(),
			DB:     a.Config.GetRedisDB(),
			Prefix: a.Config.GetRedisPrefix(),
		})
		if err != nil {
			return fmt.Errorf("[app openStore] %w", err)
		}
		a.Store, a.redis = rs, client
	default:
		return fmt.Errorf("[app openStore] unknown session backend %q", backend)
	}
	log.Debug().Str("backend", string(a.Config.GetSessionBackend())).Msg("session store ready")
	return nil
}

// onUnauthorized keeps the provider's signal in line with the cleared store.
func (a *App) onUnauthorized(ctx context.Context, err error) {
	log.Warn().Err(err).Msg("session rejected, logging out")
	if a.Provider == nil {
		return
	}
	if logoutErr := a.Provider.Logout(ctx); logoutErr != nil {
		log.Err(logoutErr).Msg("Failed to log out after rejected session")
	}
}
