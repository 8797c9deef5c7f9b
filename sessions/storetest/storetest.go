// Package storetest holds the behaviour every sessions.Store backend must share.
package storetest

import (
	"context"
	"testing"

	"github.com/jrsteele09/credibuy-console/sessions"
	"github.com/stretchr/testify/require"
)

// Run exercises a fresh store returned by newStore.
func Run(t *testing.T, newStore func(t *testing.T) sessions.Store) {
	t.Helper()
	ctx := context.Background()

	t.Run("empty store reports absence", func(t *testing.T) {
		s := newStore(t)
		for _, k := range sessions.Keys {
			v, ok, err := s.Get(ctx, k)
			require.NoError(t, err)
			require.False(t, ok)
			require.Empty(t, v)
		}
	})

	t.Run("set is visible to the next get", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, s.Set(ctx, sessions.AccessTokenKey, "A1"))
		v, ok, err := s.Get(ctx, sessions.AccessTokenKey)
		require.NoError(t, err)
		require.True(t, ok)
		require.Equal(t, "A1", v)

		require.NoError(t, s.Set(ctx, sessions.AccessTokenKey, "A2"))
		v, _, err = s.Get(ctx, sessions.AccessTokenKey)
		require.NoError(t, err)
		require.Equal(t, "A2", v)
	})

	t.Run("keys are independent", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, sessions.Save(ctx, s, sessions.Session{AccessToken: "A1", RefreshToken: "R1"}))
		require.NoError(t, s.Clear(ctx, sessions.AccessTokenKey))

		loaded, err := sessions.Load(ctx, s)
		require.NoError(t, err)
		require.Equal(t, sessions.Session{RefreshToken: "R1"}, loaded)
		require.False(t, loaded.Authenticated())
	})

	t.Run("clear all and clearing twice", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, sessions.Save(ctx, s, sessions.Session{AccessToken: "A1", RefreshToken: "R1"}))
		require.NoError(t, sessions.ClearAll(ctx, s))
		require.NoError(t, sessions.ClearAll(ctx, s))

		loaded, err := sessions.Load(ctx, s)
		require.NoError(t, err)
		require.Equal(t, sessions.Session{}, loaded)
	})
}
