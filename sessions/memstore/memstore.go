package memstore

import (
	"context"
	"sync"

	"github.com/jrsteele09/credibuy-console/sessions"
)

var _ sessions.Store = (*MemStore)(nil)

// MemStore keeps the session in process memory. It does not survive a restart.
type MemStore struct {
	values map[sessions.Key]string
	lock   sync.RWMutex
}

func New() *MemStore {
	return &MemStore{
		values: make(map[sessions.Key]string),
	}
}

// NewWithSession returns a store pre-seeded with the non-empty tokens of s.
func NewWithSession(s sessions.Session) *MemStore {
	m := New()
	if s.AccessToken != "" {
		m.values[sessions.AccessTokenKey] = s.AccessToken
	}
	if s.RefreshToken != "" {
		m.values[sessions.RefreshTokenKey] = s.RefreshToken
	}
	return m
}

func (m *MemStore) Get(_ context.Context, key sessions.Key) (string, bool, error) {
	m.lock.RLock()
	defer m.lock.RUnlock()

	v, ok := m.values[key]
	return v, ok, nil
}

func (m *MemStore) Set(_ context.Context, key sessions.Key, value string) error {
	m.lock.Lock()
	defer m.lock.Unlock()

	m.values[key] = value
	return nil
}

func (m *MemStore) Clear(_ context.Context, key sessions.Key) error {
	m.lock.Lock()
	defer m.lock.Unlock()

	delete(m.values, key)
	return nil
}
