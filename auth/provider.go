// Package auth tracks whether the console holds a session and guards the views
// that need one.
package auth

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog/log"

	"github.com/jrsteele09/credibuy-console/internal/errors"
	"github.com/jrsteele09/credibuy-console/sessions"
	"github.com/jrsteele09/credibuy-console/token"
	"github.com/jrsteele09/credibuy-console/token/jwt"
)

// TokenObtainer exchanges credentials for a token pair.
type TokenObtainer interface {
	Obtain(ctx context.Context, email, password string) (*token.Pair, error)
}

// Refresher renews the stored access token.
type Refresher interface {
	Refresh(ctx context.Context) error
}

// Provider is the single source of the "authenticated" signal.
// The flag only changes through Login, Logout and RefreshAccessToken.
type Provider struct {
	store     sessions.Store
	tokens    TokenObtainer
	refresher Refresher

	authenticated atomic.Bool

	mu        sync.Mutex
	listeners map[int]func(bool)
	nextID    int
}

// NewProvider seeds the signal from the presence of a stored access token.
// The token is not validated.
func NewProvider(ctx context.Context, store sessions.Store, tokens TokenObtainer, refresher Refresher) (*Provider, error) {
	access, _, err := store.Get(ctx, sessions.AccessTokenKey)
	if err != nil {
		return nil, fmt.Errorf("auth.NewProvider: %w", err)
	}
	p := &Provider{
		store:     store,
		tokens:    tokens,
		refresher: refresher,
		listeners: make(map[int]func(bool)),
	}
	p.authenticated.Store(access != "")
	return p, nil
}

func (p *Provider) Authenticated() bool {
	return p.authenticated.Load()
}

// Subscribe registers fn to be called with the new value whenever the signal changes.
// The returned function removes the subscription.
func (p *Provider) Subscribe(fn func(authenticated bool)) (cancel func()) {
	p.mu.Lock()
	defer p.mu.Unlock()

	id := p.nextID
	p.nextID++
	p.listeners[id] = fn
	return func() {
		p.mu.Lock()
		defer p.mu.Unlock()
		delete(p.listeners, id)
	}
}

// Login obtains a token pair and stores it. On failure the session is left as it was.
// Rejected credentials are reported as ErrInvalidCredentials.
func (p *Provider) Login(ctx context.Context, email, password string) error {
	pair, err := p.tokens.Obtain(ctx, email, password)
	if err != nil {
		if errors.Is(err, errors.ErrInvalidCredentials) {
			log.Info().Str("email", email).Msg("auth: login rejected")
		}
		return err
	}
	if err := sessions.Save(ctx, p.store, sessions.Session{AccessToken: pair.Access, RefreshToken: pair.Refresh}); err != nil {
		return fmt.Errorf("auth.Login: %w", err)
	}
	log.Info().Str("email", email).Msg("auth: logged in")
	p.set(true)
	return nil
}

// Logout clears both tokens. It never calls the API and still clears them
// when ctx is already done.
func (p *Provider) Logout(ctx context.Context) error {
	err := sessions.ClearAll(context.WithoutCancel(ctx), p.store)
	p.set(false)
	if err != nil {
		return fmt.Errorf("auth.Logout: %w", err)
	}
	return nil
}

// RefreshAccessToken renews the access token, logging out when that fails.
// A caller that stops waiting gets its context error and the session is left
// to the exchange still in flight.
func (p *Provider) RefreshAccessToken(ctx context.Context) error {
	if err := p.refresher.Refresh(ctx); err != nil {
		if ctx.Err() != nil && !errors.Is(err, errors.ErrRefreshRejected) {
			return err
		}
		if logoutErr := p.Logout(ctx); logoutErr != nil {
			log.Err(logoutErr).Msg("auth: logout after failed refresh")
		}
		return err
	}
	return nil
}

// Claims decodes the stored access token for display. Nothing is verified.
func (p *Provider) Claims(ctx context.Context) (*jwt.Claims, error) {
	access, ok, err := p.store.Get(ctx, sessions.AccessTokenKey)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, errors.ErrUnauthorized
	}
	return jwt.Parse(access)
}

func (p *Provider) set(authenticated bool) {
	if p.authenticated.Swap(authenticated) == authenticated {
		return
	}

	p.mu.Lock()
	listeners := make([]func(bool), 0, len(p.listeners))
	for _, fn := range p.listeners {
		listeners = append(listeners, fn)
	}
	p.mu.Unlock()

	for _, fn := range listeners {
		fn(authenticated)
	}
}
