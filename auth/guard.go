package auth

import (
	"context"

	"github.com/rs/zerolog/log"
)

// Decision is the outcome of entering a protected view.
type Decision int

const (
	Redirected Decision = iota + 1
	Allowed
)

func (d Decision) String() string {
	switch d {
	case Redirected:
		return "redirected"
	case Allowed:
		return "allowed"
	}
	return "undecided"
}

// SessionState is what the guard needs from the Provider.
type SessionState interface {
	Authenticated() bool
	RefreshAccessToken(ctx context.Context) error
}

type Guard struct {
	state SessionState
}

func NewGuard(state SessionState) *Guard {
	return &Guard{state: state}
}

// Enter decides synchronously from the current signal.
//
// Without a session it redirects and makes no network call. With one it allows
// entry immediately and refreshes in the background; the returned channel then
// yields Redirected if that refresh failed, or Allowed otherwise. The channel
// always delivers exactly one decision and is then closed.
//
// The background refresh outlives ctx so leaving the view does not abort it.
func (g *Guard) Enter(ctx context.Context) (Decision, <-chan Decision) {
	ch := make(chan Decision, 1)
	if !g.state.Authenticated() {
		ch <- Redirected
		close(ch)
		return Redirected, ch
	}

	detached := context.WithoutCancel(ctx)
	go func() {
		defer close(ch)
		if err := g.state.RefreshAccessToken(detached); err != nil {
			log.Warn().Err(err).Msg("auth: background refresh failed, redirecting to login")
			ch <- Redirected
			return
		}
		ch <- Allowed
	}()
	return Allowed, ch
}
