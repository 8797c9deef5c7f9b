package server

import (
	"net/http"

	"github.com/jrsteele09/credibuy-console/auth"
)

// RequireSession guards dashboard routes.
//
// Without a stored session the browser is sent to the login page and no API
// call is made. With one the view renders straight away while the session is
// refreshed in the background; if that refresh fails the session is dropped and
// the next navigation lands on the login page.
func (s *Server) RequireSession(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		// The refresh outcome is not awaited. A failed refresh logs out through
		// the provider and takes effect on the next navigation.
		if decision, _ := s.guard.Enter(r.Context()); decision != auth.Allowed {
			redirectToLogin(w, r)
			return
		}
		next(w, r)
	}
}
