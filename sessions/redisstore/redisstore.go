package redisstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jrsteele09/credibuy-console/sessions"
	"github.com/redis/go-redis/v9"
)

const defaultTimeout = 5 * time.Second

var _ sessions.Store = (*RedisStore)(nil)

// Config captures the settings for establishing a Redis connection.
type Config struct {
	Addr    string
	DB      int
	Prefix  string
	Timeout time.Duration
}

// RedisStore keeps the session tokens in Redis under <prefix><key>, without TTL.
type RedisStore struct {
	client redis.Cmdable
	prefix string
}

// Connect initialises a Redis client and validates connectivity with a ping.
func Connect(ctx context.Context, cfg Config) (*RedisStore, *redis.Client, error) {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	client := redis.NewClient(&redis.Options{
		Addr: cfg.Addr,
		DB:   cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, nil, fmt.Errorf("redis ping: %w", err)
	}

	return New(client, cfg.Prefix), client, nil
}

// New wraps an existing client.
func New(client redis.Cmdable, prefix string) *RedisStore {
	if prefix == "" {
		prefix = "credibuy:console:"
	}
	return &RedisStore{client: client, prefix: prefix}
}

func (s *RedisStore) key(k sessions.Key) string {
	return s.prefix + string(k)
}

func (s *RedisStore) Get(ctx context.Context, key sessions.Key) (string, bool, error) {
	val, err := s.client.Get(ctx, s.key(key)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("redisstore: get %s: %w", key, err)
	}
	return val, true, nil
}

func (s *RedisStore) Set(ctx context.Context, key sessions.Key, value string) error {
	if err := s.client.Set(ctx, s.key(key), value, 0).Err(); err != nil {
		return fmt.Errorf("redisstore: set %s: %w", key, err)
	}
	return nil
}

func (s *RedisStore) Clear(ctx context.Context, key sessions.Key) error {
	if err := s.client.Del(ctx, s.key(key)).Err(); err != nil {
		return fmt.Errorf("redisstore: clear %s: %w", key, err)
	}
	return nil
}
