package server

import (
	"embed"
	"fmt"
	"io/fs"
	"mime"
	"net/http"
	"path"
	"strings"
	"sync"
)

// Dashboard stylesheets, served under /css/.
//
//go:embed static/*
var staticFiles embed.FS

var dashboardAssets = sync.OnceValue(func() fs.FS {
	sub, err := fs.Sub(staticFiles, "static")
	if err != nil {
		panic("server: embedded dashboard assets: " + err.Error())
	}
	return sub
})

// StreamFile writes the embedded dashboard asset name to w. A missing asset is
// reported before anything is written so the caller can still answer 404.
func StreamFile(w http.ResponseWriter, _ *http.Request, name string) error {
	data, err := fs.ReadFile(dashboardAssets(), name)
	if err != nil {
		return fmt.Errorf("server: dashboard asset %s: %w", name, err)
	}

	ctype := mime.TypeByExtension(strings.ToLower(path.Ext(name)))
	if ctype == "" {
		ctype = http.DetectContentType(data)
	}
	if strings.HasPrefix(ctype, "text/") && !strings.Contains(strings.ToLower(ctype), "charset=") {
		ctype += "; charset=utf-8"
	}
	w.Header().Set("Content-Type", ctype)
	// Assets change only with a new binary.
	w.Header().Set("Cache-Control", "public, max-age=3600")
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("server: write dashboard asset %s: %w", name, err)
	}
	return nil
}
