package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
)

// SessionStatus is the body of GET /api/session.
type SessionStatus struct {
	Authenticated bool       `json:"authenticated"`
	UserID        string     `json:"user_id,omitempty"`
	ExpiresAt     *time.Time `json:"expires_at,omitempty"`
}

// SessionStatusHandler reports the authenticated signal. It never calls the API.
func (s *Server) SessionStatusHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		status := SessionStatus{Authenticated: s.session.Authenticated()}
		if status.Authenticated {
			if claims, err := s.session.Claims(r.Context()); err == nil {
				status.UserID = claims.UserID
				if !claims.ExpiresAt.IsZero() {
					status.ExpiresAt = &claims.ExpiresAt
				}
			}
		}

		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Cache-Control", "no-store")
		if err := json.NewEncoder(w).Encode(status); err != nil {
			log.Err(err).Msg("Failed to encode session status")
		}
	}
}
