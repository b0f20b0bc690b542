package web

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/go-while/go-paradigmas/internal/config"
)

//go:embed templates/*.html
var EmbeddedTemplatesFS embed.FS

const baseTemplate = "base.html"

// pageTemplates are rendered inside base.html
var pageTemplates = []string{
	"index.html", "capa.html", "intro_apresentacao.html", "topicos_apresentacao.html",
	"about_apresentacao.html", "intro.html", "historico.html", "paradigmas.html",
	"caracteristicas.html", "linguagens_relacionadas.html", "exemplos.html",
	"arquitetura.html", "consideracoes_finais.html", "bibliografia.html",
	"stats.html", "error.html",
}

var templateFuncs = template.FuncMap{
	"add":  func(a, b int) int { return a + b },
	"join": strings.Join,
	"year": func() int { return time.Now().Year() },
}

// templateSet parses base.html together with each page template.
// In dev mode templates are read from disk on every render.
type templateSet struct {
	fsys     fs.FS
	fromDisk bool
	parsed   map[string]*template.Template
}

func newTemplateSet(cfg *config.WebConfig) (*templateSet, error) {
	ts := &templateSet{parsed: make(map[string]*template.Template)}
	if cfg.Dev {
		ts.fsys = os.DirFS(cfg.TemplatesDir)
		ts.fromDisk = true
		return ts, nil
	}
	sub, err := fs.Sub(EmbeddedTemplatesFS, "templates")
	if err != nil {
		return nil, fmt.Errorf("failed to open embedded templates: %w", err)
	}
	ts.fsys = sub
	// parse everything up front, a broken template fails startup
	for _, name := range pageTemplates {
		tmpl, err := ts.parse(name)
		if err != nil {
			return nil, err
		}
		ts.parsed[name] = tmpl
	}
	return ts, nil
}

func (ts *templateSet) parse(name string) (*template.Template, error) {
	tmpl, err := template.New(baseTemplate).Funcs(templateFuncs).ParseFS(ts.fsys, baseTemplate, name)
	if err != nil {
		return nil, fmt.Errorf("failed to parse template %s: %w", name, err)
	}
	return tmpl, nil
}

func (ts *templateSet) lookup(name string) (*template.Template, error) {
	if ts.fromDisk {
		return ts.parse(name)
	}
	tmpl, ok := ts.parsed[name]
	if !ok {
		return nil, fmt.Errorf("unknown template %s", name)
	}
	return tmpl, nil
}

// render executes name into a buffer so a failing template never
// leaves a half written response
func (ts *templateSet) render(name string, data interface{}) ([]byte, error) {
	tmpl, err := ts.lookup(name)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, baseTemplate, data); err != nil {
		return nil, fmt.Errorf("failed to execute template %s: %w", name, err)
	}
	return buf.Bytes(), nil
}
