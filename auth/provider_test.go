package auth_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/jrsteele09/credibuy-console/auth"
	"github.com/jrsteele09/credibuy-console/internal/errors"
	"github.com/jrsteele09/credibuy-console/internal/fakeapi"
	"github.com/jrsteele09/credibuy-console/sessions"
	"github.com/jrsteele09/credibuy-console/sessions/memstore"
	"github.com/jrsteele09/credibuy-console/token"
	"github.com/jrsteele09/credibuy-console/token/refresh"
)

// testFixture holds the provider and everything behind it
type testFixture struct {
	srv      *fakeapi.Server
	store    *memstore.MemStore
	provider *auth.Provider

	mu      sync.Mutex
	changes []bool
}

func setupTestFixture(t *testing.T, seed sessions.Session) *testFixture {
	t.Helper()

	f := &testFixture{
		srv:   fakeapi.New(t),
		store: memstore.NewWithSession(seed),
	}
	tokens := token.NewClient(f.srv.PlainClient(t))

	var err error
	f.provider, err = auth.NewProvider(context.Background(), f.store, tokens, refresh.NewRefresher(f.store, tokens))
	require.NoError(t, err)

	cancel := f.provider.Subscribe(func(authenticated bool) {
		f.mu.Lock()
		defer f.mu.Unlock()
		f.changes = append(f.changes, authenticated)
	})
	t.Cleanup(cancel)
	return f
}

func (f *testFixture) notified() []bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]bool(nil), f.changes...)
}

func (f *testFixture) session(t *testing.T) sessions.Session {
	t.Helper()
	s, err := sessions.Load(context.Background(), f.store)
	require.NoError(t, err)
	return s
}

func TestProviderSeededFromPresence(t *testing.T) {
	// any non-empty access token counts, valid or not
	f := setupTestFixture(t, sessions.Session{AccessToken: "not-even-a-jwt"})
	require.True(t, f.provider.Authenticated())

	f = setupTestFixture(t, sessions.Session{RefreshToken: "R1"})
	require.False(t, f.provider.Authenticated())
}

func TestLogin(t *testing.T) {
	f := setupTestFixture(t, sessions.Session{})

	require.NoError(t, f.provider.Login(context.Background(), fakeapi.Email, fakeapi.Password))
	require.True(t, f.provider.Authenticated())
	require.Equal(t, []bool{true}, f.notified())

	s := f.session(t)
	require.NotEmpty(t, s.AccessToken)
	require.NotEmpty(t, s.RefreshToken)

	claims, err := f.provider.Claims(context.Background())
	require.NoError(t, err)
	require.Equal(t, "1", claims.UserID)
}

func TestLoginInvalidCredentialsLeavesSession(t *testing.T) {
	seed := sessions.Session{AccessToken: "A1", RefreshToken: "R1"}
	f := setupTestFixture(t, seed)

	err := f.provider.Login(context.Background(), fakeapi.Email, "wrong")
	require.ErrorIs(t, err, errors.ErrInvalidCredentials)
	require.True(t, f.provider.Authenticated())
	require.Equal(t, seed, f.session(t))
	require.Empty(t, f.notified())
}

func TestLoginTransportFailure(t *testing.T) {
	f := setupTestFixture(t, sessions.Session{})
	f.srv.Close()

	err := f.provider.Login(context.Background(), fakeapi.Email, fakeapi.Password)
	require.Error(t, err)
	require.NotErrorIs(t, err, errors.ErrInvalidCredentials)
	require.False(t, f.provider.Authenticated())
}

func TestLogoutMakesNoRequest(t *testing.T) {
	f := setupTestFixture(t, sessions.Session{AccessToken: "A1", RefreshToken: "R1"})

	require.NoError(t, f.provider.Logout(context.Background()))
	require.False(t, f.provider.Authenticated())
	require.Equal(t, sessions.Session{}, f.session(t))
	require.Empty(t, f.srv.Requests())
	require.Equal(t, []bool{false}, f.notified())

	// logging out twice does not notify again
	require.NoError(t, f.provider.Logout(context.Background()))
	require.Equal(t, []bool{false}, f.notified())
}

func TestRefreshAccessTokenFailureLogsOut(t *testing.T) {
	f := setupTestFixture(t, sessions.Session{AccessToken: "A1", RefreshToken: "revoked"})

	err := f.provider.RefreshAccessToken(context.Background())
	require.ErrorIs(t, err, errors.ErrRefreshRejected)
	require.False(t, f.provider.Authenticated())
	require.Equal(t, sessions.Session{}, f.session(t))
}

func TestRefreshAccessTokenCallerGivingUpKeepsSession(t *testing.T) {
	f := setupTestFixture(t, sessions.Session{})
	require.NoError(t, f.provider.Login(context.Background(), fakeapi.Email, fakeapi.Password))
	before := f.session(t)
	f.srv.SetRefreshDelay(200 * time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	err := f.provider.RefreshAccessToken(ctx)
	require.ErrorIs(t, err, context.DeadlineExceeded)
	require.True(t, f.provider.Authenticated())
	require.Equal(t, []bool{true}, f.notified())

	require.Eventually(t, func() bool {
		return f.session(t).AccessToken != before.AccessToken
	}, 2*time.Second, 10*time.Millisecond)
	require.Equal(t, before.RefreshToken, f.session(t).RefreshToken)
}

// cancelAwareStore rejects calls made with a finished context.
type cancelAwareStore struct {
	*memstore.MemStore
}

func (c cancelAwareStore) Clear(ctx context.Context, key sessions.Key) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return c.MemStore.Clear(ctx, key)
}

func TestLogoutWithCancelledContextStillClears(t *testing.T) {
	store := cancelAwareStore{memstore.NewWithSession(sessions.Session{AccessToken: "A1", RefreshToken: "R1"})}
	provider, err := auth.NewProvider(context.Background(), store, nil, nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.NoError(t, provider.Logout(ctx))
	require.False(t, provider.Authenticated())

	s, err := sessions.Load(context.Background(), store)
	require.NoError(t, err)
	require.Equal(t, sessions.Session{}, s)
}

func TestRefreshAccessTokenSuccess(t *testing.T) {
	f := setupTestFixture(t, sessions.Session{})
	require.NoError(t, f.provider.Login(context.Background(), fakeapi.Email, fakeapi.Password))
	before := f.session(t)

	require.NoError(t, f.provider.RefreshAccessToken(context.Background()))
	require.True(t, f.provider.Authenticated())
	after := f.session(t)
	require.NotEqual(t, before.AccessToken, after.AccessToken)
	require.Equal(t, before.RefreshToken, after.RefreshToken)
}

func TestSubscribeCancel(t *testing.T) {
	f := setupTestFixture(t, sessions.Session{})

	var calls int
	cancel := f.provider.Subscribe(func(bool) { calls++ })
	require.NoError(t, f.provider.Login(context.Background(), fakeapi.Email, fakeapi.Password))
	cancel()
	require.NoError(t, f.provider.Logout(context.Background()))
	require.Equal(t, 1, calls)
}

func TestClaimsWithoutSession(t *testing.T) {
	f := setupTestFixture(t, sessions.Session{})
	_, err := f.provider.Claims(context.Background())
	require.ErrorIs(t, err, errors.ErrUnauthorized)
}
