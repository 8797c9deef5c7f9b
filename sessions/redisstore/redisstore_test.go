package redisstore_test

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/jrsteele09/credibuy-console/sessions"
	"github.com/jrsteele09/credibuy-console/sessions/redisstore"
	"github.com/jrsteele09/credibuy-console/sessions/storetest"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func TestRedisStore(t *testing.T) {
	storetest.Run(t, func(t *testing.T) sessions.Store {
		mr := miniredis.RunT(t)
		client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
		t.Cleanup(func() { _ = client.Close() })
		return redisstore.New(client, "test:")
	})
}

func TestConnect_UsesPrefixAndNoTTL(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)

	store, client, err := redisstore.Connect(ctx, redisstore.Config{Addr: mr.Addr(), Prefix: "cb:"})
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	require.NoError(t, store.Set(ctx, sessions.RefreshTokenKey, "R1"))
	v, err := mr.Get("cb:refreshToken")
	require.NoError(t, err)
	require.Equal(t, "R1", v)
	require.Zero(t, mr.TTL("cb:refreshToken"))
}

func TestConnect_Unreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	_, _, err := redisstore.Connect(context.Background(), redisstore.Config{Addr: addr})
	require.Error(t, err)
	require.Contains(t, err.Error(), "redis ping")
}
