package server

import (
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/jrsteele09/credibuy-console/internal/errors"
)

// Messages shown inline when the API call behind a view fails.
const (
	msgLoadFailed   = "No se pudieron cargar los datos. Intente de nuevo."
	msgNotFound     = "El registro solicitado no existe."
	msgSaveFailed   = "No se pudo guardar. Intente de nuevo."
	msgCreditFailed = "Error al asignar el crédito"
)

// handledAuthError redirects to the login page when err is an unrecovered
// authentication failure and reports whether it did.
func (s *Server) handledAuthError(w http.ResponseWriter, r *http.Request, err error) bool {
	if !errors.Is(err, errors.ErrUnauthorized) {
		return false
	}
	log.Warn().Err(err).Str("path", r.URL.Path).Msg("session rejected by the API")
	if logoutErr := s.session.Logout(r.Context()); logoutErr != nil {
		log.Err(logoutErr).Msg("logout after rejected session")
	}
	redirectToLogin(w, r)
	return true
}

// inlineError is the message a view shows for a failed API call.
func inlineError(r *http.Request, err error, fallback string) string {
	log.Err(err).Str("path", r.URL.Path).Msg("API call failed")
	if errors.Is(err, errors.ErrNotFound) {
		return msgNotFound
	}
	return fallback
}
