package sessions

import (
	"context"
	"fmt"

	"golang.org/x/oauth2"
)

// Key names one of the two values persisted for a console session.
type Key string

const (
	AccessTokenKey  Key = "accessToken"
	RefreshTokenKey Key = "refreshToken"
)

// Keys lists every key a Store may hold.
var Keys = []Key{AccessTokenKey, RefreshTokenKey}

// Store is durable key/value storage for the session tokens.
// Implementations hold no logic: no validation and no expiry tracking.
// A write or clear must be visible to the next Get on the same Store.
type Store interface {
	// Get returns the stored value and whether it was present
	Get(ctx context.Context, key Key) (string, bool, error)

	// Set stores value under key, replacing any previous value
	Set(ctx context.Context, key Key, value string) error

	// Clear removes key; clearing a missing key is not an error
	Clear(ctx context.Context, key Key) error
}

// Session is a point-in-time view of the stored tokens.
// An empty field means the token is absent.
type Session struct {
	AccessToken  string
	RefreshToken string
}

// Authenticated reports presence of an access token, not its validity.
func (s Session) Authenticated() bool {
	return s.AccessToken != ""
}

// BearerToken returns the access token in the form golang.org/x/oauth2 attaches to requests,
// nil when there is no access token.
func (s Session) BearerToken() *oauth2.Token {
	if s.AccessToken == "" {
		return nil
	}
	return &oauth2.Token{AccessToken: s.AccessToken, TokenType: "Bearer"}
}

// Load reads both keys from the store.
func Load(ctx context.Context, store Store) (Session, error) {
	access, _, err := store.Get(ctx, AccessTokenKey)
	if err != nil {
		return Session{}, fmt.Errorf("sessions.Load %s: %w", AccessTokenKey, err)
	}
	refresh, _, err := store.Get(ctx, RefreshTokenKey)
	if err != nil {
		return Session{}, fmt.Errorf("sessions.Load %s: %w", RefreshTokenKey, err)
	}
	return Session{AccessToken: access, RefreshToken: refresh}, nil
}

// Save writes both tokens.
func Save(ctx context.Context, store Store, s Session) error {
	if err := store.Set(ctx, AccessTokenKey, s.AccessToken); err != nil {
		return fmt.Errorf("sessions.Save %s: %w", AccessTokenKey, err)
	}
	if err := store.Set(ctx, RefreshTokenKey, s.RefreshToken); err != nil {
		return fmt.Errorf("sessions.Save %s: %w", RefreshTokenKey, err)
	}
	return nil
}

// ClearAll removes both tokens, attempting each key even if one fails.
func ClearAll(ctx context.Context, store Store) error {
	var firstErr error
	for _, k := range Keys {
		if err := store.Clear(ctx, k); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("sessions.ClearAll %s: %w", k, err)
		}
	}
	return firstErr
}
