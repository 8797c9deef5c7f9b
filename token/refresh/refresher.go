// Package refresh renews the stored access token using the stored refresh token.
package refresh

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"

	"github.com/jrsteele09/credibuy-console/internal/errors"
	"github.com/jrsteele09/credibuy-console/internal/metrics"
	"github.com/jrsteele09/credibuy-console/sessions"
)

const flightKey = "refresh"

// Exchanger trades a refresh token for a new access token.
type Exchanger interface {
	Refresh(ctx context.Context, refreshToken string) (string, error)
}

// Refresher coordinates refreshes for one session store.
// Concurrent callers share a single in-flight exchange and all observe its result.
type Refresher struct {
	store     sessions.Store
	exchanger Exchanger
	group     singleflight.Group
}

func NewRefresher(store sessions.Store, exchanger Exchanger) *Refresher {
	return &Refresher{
		store:     store,
		exchanger: exchanger,
	}
}

// Refresh obtains a new access token and writes it to the store.
//
// It returns ErrNoRefreshToken, without a network call, when no refresh token is
// stored. When the exchange fails both tokens are cleared and the error matches
// ErrRefreshRejected while still wrapping the cause.
//
// The exchange itself is detached from ctx so one caller giving up does not fail
// the others waiting on it; ctx only bounds how long this caller waits.
func (r *Refresher) Refresh(ctx context.Context) error {
	ch := r.group.DoChan(flightKey, func() (any, error) {
		return nil, r.exchange(context.WithoutCancel(ctx))
	})
	select {
	case res := <-ch:
		return res.Err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (r *Refresher) exchange(ctx context.Context) error {
	refreshToken, ok, err := r.store.Get(ctx, sessions.RefreshTokenKey)
	if err != nil {
		metrics.TokenRefreshTotal.WithLabelValues(metrics.RefreshStoreFailure).Inc()
		return fmt.Errorf("refresh: read refresh token: %w", err)
	}
	if !ok || refreshToken == "" {
		metrics.TokenRefreshTotal.WithLabelValues(metrics.RefreshNoToken).Inc()
		return errors.ErrNoRefreshToken
	}

	access, err := r.exchanger.Refresh(ctx, refreshToken)
	if err != nil {
		metrics.TokenRefreshTotal.WithLabelValues(metrics.RefreshRejected).Inc()
		if clearErr := sessions.ClearAll(ctx, r.store); clearErr != nil {
			log.Err(clearErr).Msg("refresh: clearing session after rejected refresh")
		}
		log.Warn().Err(err).Msg("refresh: token refresh failed, session cleared")
		return fmt.Errorf("%w: %w", errors.ErrRefreshRejected, err)
	}

	if err := r.store.Set(ctx, sessions.AccessTokenKey, access); err != nil {
		metrics.TokenRefreshTotal.WithLabelValues(metrics.RefreshStoreFailure).Inc()
		return fmt.Errorf("refresh: store access token: %w", err)
	}
	metrics.TokenRefreshTotal.WithLabelValues(metrics.RefreshSuccess).Inc()
	log.Debug().Msg("refresh: access token renewed")
	return nil
}
