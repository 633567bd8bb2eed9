package web

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"

	"github.com/anderovsky/ITStep-zrucnosti/pkg/logger"
)

//go:embed templates/*.html
var templateFS embed.FS

// pageNames lists the content templates; each is parsed together with the
// shared layout.
var pageNames = []string{
	"index", "register", "login", "add", "detail", "about", "error",
}

// Renderer executes embedded HTML templates. Pages are buffered before
// writing so a mid-render failure never leaks a half-written page.
type Renderer struct {
	pages map[string]*template.Template
}

// NewRenderer parses the embedded templates. Parse errors surface at startup
// rather than per request.
func NewRenderer() (*Renderer, error) {
	pages := make(map[string]*template.Template, len(pageNames))
	for _, name := range pageNames {
		tmpl, err := template.ParseFS(templateFS, "templates/layout.html", "templates/"+name+".html")
		if err != nil {
			return nil, fmt.Errorf("parse template %s: %w", name, err)
		}
		pages[name] = tmpl
	}
	return &Renderer{pages: pages}, nil
}

// Render writes the named page with the given status code.
func (rn *Renderer) Render(w http.ResponseWriter, r *http.Request, status int, page string, data any) {
	tmpl, ok := rn.pages[page]
	if !ok {
		rn.fail(w, r, fmt.Errorf("unknown template %q", page))
		return
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "layout", data); err != nil {
		rn.fail(w, r, fmt.Errorf("execute template %s: %w", page, err))
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

func (rn *Renderer) fail(w http.ResponseWriter, r *http.Request, err error) {
	logger.FromContext(r.Context()).ErrorContext(r.Context(), "template rendering failed",
		slog.String("error", err.Error()),
	)
	http.Error(w, "Internal Server Error", http.StatusInternalServerError)
}
