// Package web renders the HTML pages of the site.
package web

import (
	"bytes"
	"embed"
	"html/template"
	"net/http"

	"github.com/cameronmore/go-authsite/sessions"
)

//go:embed templates/*.html
var templateFS embed.FS

// Page is the data every template receives.
type Page struct {
	Username string
	Profile  *sessions.Profile
	Error    string
	Form     map[string]string
}

type Renderer struct {
	tmpl *template.Template
}

func NewRenderer() (*Renderer, error) {
	tmpl, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, err
	}
	return &Renderer{tmpl: tmpl}, nil
}

// Render executes the named template into a buffer first so a template error never
// leaves a half written page behind.
func (r *Renderer) Render(w http.ResponseWriter, status int, name string, page Page) error {
	var buf bytes.Buffer
	if err := r.tmpl.ExecuteTemplate(&buf, name, page); err != nil {
		return err
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, err := buf.WriteTo(w)
	return err
}
