package memstore_test

import (
	"context"
	"testing"

	"github.com/jrsteele09/credibuy-console/sessions"
	"github.com/jrsteele09/credibuy-console/sessions/memstore"
	"github.com/jrsteele09/credibuy-console/sessions/storetest"
	"github.com/stretchr/testify/require"
)

func TestMemStore(t *testing.T) {
	storetest.Run(t, func(t *testing.T) sessions.Store {
		return memstore.New()
	})
}

func TestNewWithSession(t *testing.T) {
	s := memstore.NewWithSession(sessions.Session{AccessToken: "A1"})
	_, ok, err := s.Get(context.Background(), sessions.RefreshTokenKey)
	require.NoError(t, err)
	require.False(t, ok)

	loaded, err := sessions.Load(context.Background(), s)
	require.NoError(t, err)
	require.True(t, loaded.Authenticated())
}
