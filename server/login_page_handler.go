package server

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/jrsteele09/credibuy-console/internal/errors"
)

const (
	msgLoginRequired    = "El email y la contraseña son requeridos"
	msgLoginInvalid     = "Email o contraseña inválidos"
	msgLoginUnavailable = "No se pudo iniciar sesión. Intente de nuevo."
)

// LoginPageData contains data for rendering the login page
type LoginPageData struct {
	AppName string
	Error   string
	Email   string // Preserve email on error
	Next    string
}

// LoginPageUIHandler displays the login page (GET /login)
func (s *Server) LoginPageUIHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if s.session.Authenticated() {
			redirectSuccess(w, r, safeNext(q.Get("next")))
			return
		}

		data := LoginPageData{
			AppName: s.config.GetAppName(),
			Error:   q.Get("error"),
			Email:   q.Get("email"),
			Next:    q.Get("next"),
		}

		w.Header().Set("Content-Type", contentTypeHTML)
		if err := s.templates["login.html"].Execute(w, data); err != nil {
			log.Err(err).Msg("Failed to render login template")
			http.Error(w, "Failed to render login page", http.StatusInternalServerError)
		}
	}
}

// LoginSubmissionHandler processes the login form submission
func (s *Server) LoginSubmissionHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		// Parse form data
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Invalid form data", http.StatusBadRequest)
			return
		}

		email := strings.TrimSpace(r.FormValue("email"))
		password := r.FormValue("password")
		next := r.FormValue("next")

		if email == "" || password == "" {
			s.renderLoginError(w, r, msgLoginRequired, email, next)
			return
		}

		if err := s.session.Login(r.Context(), email, password); err != nil {
			if errors.Is(err, errors.ErrInvalidCredentials) {
				s.renderLoginError(w, r, msgLoginInvalid, email, next)
				return
			}
			log.Err(err).Msg("Login failed")
			s.renderLoginError(w, r, msgLoginUnavailable, email, next)
			return
		}

		redirectSuccess(w, r, safeNext(next))
	}
}

func (s *Server) LogoutHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := s.session.Logout(r.Context()); err != nil {
			log.Err(err).Msg("Failed to clear session on logout")
		}
		redirectSuccess(w, r, RouteLogin)
	}
}

// renderLoginError redirects to login page with an error message
func (s *Server) renderLoginError(w http.ResponseWriter, r *http.Request, errorMsg, email, next string) {
	// Build redirect URL with error and email parameters
	redirectURL := RouteLogin + "?error=" + url.QueryEscape(errorMsg)
	if email != "" {
		redirectURL += "&email=" + url.QueryEscape(email)
	}
	if next != "" {
		redirectURL += "&next=" + url.QueryEscape(next)
	}

	redirectSuccess(w, r, redirectURL)
}
