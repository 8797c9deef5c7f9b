package server

import (
	"bytes"
	"html/template"
	"net/http"

	"github.com/rs/zerolog/log"
)

const contentTypeHTML = "text/html; charset=utf-8"

// renderPage renders contentTemplate with data inside the dashboard layout.
func (s *Server) renderPage(w http.ResponseWriter, r *http.Request, status int, activePage, pageTitle, contentTemplate string, data any) {
	contentTmpl, ok := s.templates[contentTemplate]
	if !ok {
		http.Error(w, "Failed to load content template", http.StatusInternalServerError)
		return
	}

	var content bytes.Buffer
	if err := contentTmpl.Execute(&content, data); err != nil {
		log.Err(err).Str("template", contentTemplate).Msg("Failed to render content")
		http.Error(w, "Failed to render content", http.StatusInternalServerError)
		return
	}

	layout := map[string]any{
		"AppName":    s.config.GetAppName(),
		"ActivePage": activePage,
		"PageTitle":  pageTitle,
		"Content":    template.HTML(content.String()),
	}
	// Display only; the claims are not verified.
	if claims, err := s.session.Claims(r.Context()); err == nil {
		layout["UserID"] = claims.UserID
		layout["ExpiresAt"] = claims.ExpiresAt
	}

	var page bytes.Buffer
	if err := s.templates[layoutTemplate].Execute(&page, layout); err != nil {
		log.Err(err).Msg("Failed to render layout")
		http.Error(w, "Failed to render page", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", contentTypeHTML)
	w.WriteHeader(status)
	_, _ = page.WriteTo(w)
}
