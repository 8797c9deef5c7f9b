package config

import "fmt"

// SessionBackend selects where the access and refresh tokens are persisted.
type SessionBackend string

const (
	SessionBackendMemory SessionBackend = "memory"
	SessionBackendFile   SessionBackend = "file"
	SessionBackendRedis  SessionBackend = "redis"
)

type SessionConfig interface {
	GetSessionBackend() SessionBackend
	GetSessionFile() string
	GetRedisAddr() string
	GetRedisDB() int
	GetRedisPrefix() string
}

type Session struct {
	Backend     SessionBackend `env:"SESSION_BACKEND, default=file"`
	File        string         `env:"SESSION_FILE, default=session.json"`
	RedisAddr   string         `env:"REDIS_ADDR, default=localhost:6379"`
	RedisDB     int            `env:"REDIS_DB, default=0"`
	RedisPrefix string         `env:"REDIS_PREFIX, default=credibuy:console:"`
}

var _ SessionConfig = Session{}

func (s Session) GetSessionBackend() SessionBackend {
	return s.Backend
}

// GetSessionFile is relative to the data folder.
func (s Session) GetSessionFile() string {
	return s.File
}

func (s Session) GetRedisAddr() string {
	return s.RedisAddr
}

func (s Session) GetRedisDB() int {
	return s.RedisDB
}

func (s Session) GetRedisPrefix() string {
	return s.RedisPrefix
}

func (s Session) validate() error {
	switch s.Backend {
	case SessionBackendMemory, SessionBackendFile, SessionBackendRedis:
		return nil
	}
	return fmt.Errorf("unknown session backend %q", s.Backend)
}
