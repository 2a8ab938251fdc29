package handlers

import (
	"bytes"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"path"
	"strings"

	"go.uber.org/zap"

	"github.com/nazbav/spoolshelf/internal/format"
	"github.com/nazbav/spoolshelf/internal/platform/requestctx"
	"github.com/nazbav/spoolshelf/internal/reviews"
	"github.com/nazbav/spoolshelf/public"
)

// Renderer executes the embedded templates. Pages share the base layout and
// partials; each page is parsed into its own clone so "content" can be
// defined once per page.
type Renderer struct {
	shared *template.Template
	pages  map[string]*template.Template
}

// NewRenderer parses the embedded template tree.
func NewRenderer() (*Renderer, error) {
	fsys, err := public.Templates()
	if err != nil {
		return nil, fmt.Errorf("templates: %w", err)
	}
	return parseTemplates(fsys)
}

func parseTemplates(fsys fs.FS) (*Renderer, error) {
	shared, err := template.New("_root").Funcs(funcMap()).ParseFS(fsys, "layouts/*.tmpl", "partials/*.tmpl")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	pageFiles, err := fs.Glob(fsys, "pages/*.tmpl")
	if err != nil {
		return nil, fmt.Errorf("list pages: %w", err)
	}
	pages := make(map[string]*template.Template, len(pageFiles))
	for _, file := range pageFiles {
		clone, err := shared.Clone()
		if err != nil {
			return nil, fmt.Errorf("clone templates: %w", err)
		}
		if _, err := clone.ParseFS(fsys, file); err != nil {
			return nil, fmt.Errorf("parse page %s: %w", file, err)
		}
		pages[strings.TrimSuffix(path.Base(file), ".tmpl")] = clone
	}
	return &Renderer{shared: shared, pages: pages}, nil
}

func funcMap() template.FuncMap {
	return template.FuncMap{
		"price":     format.Price,
		"rating":    format.Rating,
		"stars":     format.Stars,
		"weight":    format.Weight,
		"mm":        format.Millimetres,
		"grams":     format.Grams,
		"datetime":  format.DateTime,
		"linkLabel": format.LinkLabel,
		"ratingOf": func(v int) *float64 {
			f := float64(v)
			return &f
		},
		"ratingChoices": func() []int {
			out := make([]int, reviews.MaxRating)
			for i := range out {
				out[i] = i + 1
			}
			return out
		},
	}
}

// Page renders a full document through the base layout.
func (rd *Renderer) Page(w http.ResponseWriter, r *http.Request, status int, name string, data any) {
	t, ok := rd.pages[name]
	if !ok {
		rd.fail(w, r, fmt.Errorf("unknown page %q", name))
		return
	}
	rd.write(w, r, status, t, "base", data)
}

// Fragment renders a single partial, typically as an htmx swap target.
func (rd *Renderer) Fragment(w http.ResponseWriter, r *http.Request, status int, name string, data any) {
	rd.write(w, r, status, rd.shared, name, data)
}

// String renders a partial into a string.
func (rd *Renderer) String(name string, data any) (string, error) {
	var buf bytes.Buffer
	if err := rd.shared.ExecuteTemplate(&buf, name, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func (rd *Renderer) write(w http.ResponseWriter, r *http.Request, status int, t *template.Template, name string, data any) {
	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, name, data); err != nil {
		rd.fail(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

func (rd *Renderer) fail(w http.ResponseWriter, r *http.Request, err error) {
	requestctx.Logger(r.Context()).Error("template execution failed", zap.Error(err))
	http.Error(w, "template error", http.StatusInternalServerError)
}
