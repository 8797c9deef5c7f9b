package server

import (
	"embed"
	"html/template"
	"io/fs"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jrsteele09/credibuy-console/credits"
)

//go:embed templates/*
var templateFiles embed.FS

const layoutTemplate = "layout.html"

var pageTemplates = []string{
	"login.html",
	"clients.html",
	"client_new.html",
	"products.html",
	"credits.html",
	"credit_detail.html",
	"credit_new.html",
}

var templateFuncs = template.FuncMap{
	"cop":     credits.FormatCOP,
	"percent": credits.FormatPercent,
	"date": func(t time.Time) string {
		if t.IsZero() {
			return "-"
		}
		return t.Format("02/01/2006")
	},
	"payable": func(p credits.Payment) string {
		v, ok := credits.DisplayValue(p)
		if !ok {
			return "-"
		}
		return credits.FormatCOP(v)
	},
	"progressWidth": func(d decimal.Decimal) string {
		return d.StringFixed(1)
	},
}

func TemplateFilesFS() fs.FS {
	// Create the sub filesystem once
	subFS, err := fs.Sub(templateFiles, "templates")
	if err != nil {
		panic("Failed to create templates sub filesystem: " + err.Error())
	}
	return subFS
}

// ParseTemplate parses a template from the embedded filesystem
func ParseTemplate(name string) (*template.Template, error) {
	content, err := fs.ReadFile(TemplateFilesFS(), name)
	if err != nil {
		return nil, err
	}
	return template.New(name).Funcs(templateFuncs).Parse(string(content))
}

func loadTemplates() (map[string]*template.Template, error) {
	templates := make(map[string]*template.Template, len(pageTemplates)+1)
	for _, name := range append([]string{layoutTemplate}, pageTemplates...) {
		tmpl, err := ParseTemplate(name)
		if err != nil {
			return nil, err
		}
		templates[name] = tmpl
	}
	return templates, nil
}
