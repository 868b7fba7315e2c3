package render

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"path"
	"strings"
	"time"

	"petkimlik/internal/platform/money"
)

//go:embed templates/*.html
var templateFS embed.FS

// Renderer mantiene un template por página (layout + página), parseados una vez.
type Renderer struct {
	pages map[string]*template.Template
}

func New() (*Renderer, error) {
	return NewFromFS(templateFS, "templates")
}

func NewFromFS(fsys fs.FS, dir string) (*Renderer, error) {
	funcs := template.FuncMap{
		"money": money.Format,
		"date": func(t time.Time) string {
			if t.IsZero() {
				return ""
			}
			return t.Format("02.01.2006")
		},
		"datetime": func(t time.Time) string {
			if t.IsZero() {
				return ""
			}
			return t.Format("02.01.2006 15:04")
		},
	}

	layout := path.Join(dir, "layout.html")
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, fmt.Errorf("render: read templates: %w", err)
	}

	pages := map[string]*template.Template{}
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || name == "layout.html" || !strings.HasSuffix(name, ".html") {
			continue
		}
		t, err := template.New("layout.html").Funcs(funcs).ParseFS(fsys, layout, path.Join(dir, name))
		if err != nil {
			return nil, fmt.Errorf("render: parse %s: %w", name, err)
		}
		pages[strings.TrimSuffix(name, ".html")] = t
	}
	return &Renderer{pages: pages}, nil
}

// MustNew para el wiring del router: templates embebidos rotos son un bug de build.
func MustNew() *Renderer {
	r, err := New()
	if err != nil {
		panic(err)
	}
	return r
}

// HTML renderiza la página en un buffer primero para no mandar respuestas a medias.
func (r *Renderer) HTML(w http.ResponseWriter, status int, page string, data any) {
	t, ok := r.pages[page]
	if !ok {
		http.Error(w, "template not found", http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout.html", data); err != nil {
		http.Error(w, "template error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

func (r *Renderer) Has(page string) bool {
	_, ok := r.pages[page]
	return ok
}
