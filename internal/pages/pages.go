// Package pages renders the HTML served alongside the JSON API.
package pages

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
)

//go:embed templates/*.html
var files embed.FS

// Renderer executes the page templates.
type Renderer struct {
	tmpl *template.Template
}

// New parses the embedded templates.
func New() (*Renderer, error) {
	tmpl, err := template.ParseFS(files, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse page templates: %w", err)
	}

	return &Renderer{tmpl: tmpl}, nil
}

// MustNew is New for package-level and container wiring; it panics on a
// template error.
func MustNew() *Renderer {
	r, err := New()
	if err != nil {
		panic(err)
	}

	return r
}

// Setup renders the administrator setup form posting to action.
func (r *Renderer) Setup(title, action string) ([]byte, error) {
	return r.render("setup.html", struct{ Title, Action string }{title, action})
}

// Interstitial renders a page that forwards to destination without a referrer.
func (r *Renderer) Interstitial(destination string) ([]byte, error) {
	return r.render("interstitial.html", struct{ Destination template.URL }{safeURL(destination)})
}

// Warning renders the unsafe-destination page. unverified marks a warning
// caused by an unavailable oracle rather than a threat match.
func (r *Renderer) Warning(destination string, unverified bool) ([]byte, error) {
	return r.render("warning.html", struct {
		Destination template.URL
		Unverified  bool
	}{safeURL(destination), unverified})
}

// NotFound renders the 404 page.
func (r *Renderer) NotFound() ([]byte, error) {
	return r.render("notfound.html", nil)
}

func (r *Renderer) render(name string, data any) ([]byte, error) {
	var buf bytes.Buffer
	if err := r.tmpl.ExecuteTemplate(&buf, name, data); err != nil {
		return nil, fmt.Errorf("render %s: %w", name, err)
	}

	return buf.Bytes(), nil
}

// safeURL marks destination as a trusted URL. Destinations are validated as
// http(s) before they are stored, so the scheme filter html/template would
// otherwise apply is already satisfied.
func safeURL(destination string) template.URL {
	return template.URL(destination) //nolint:gosec // scheme validated at creation
}
