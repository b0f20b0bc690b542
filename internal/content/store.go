// Package content loads the presentation pages from embedded YAML documents
// and serves them to the web layer.
package content

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"path"
	"sort"
	"strings"

	"github.com/go-while/go-paradigmas/internal/models"
	"gopkg.in/yaml.v3"
)

//go:embed data/*.yaml
var EmbeddedContentFS embed.FS

const (
	LangPython     = "python"
	LangJavaScript = "javascript"
	LangGeneral    = "general"
)

var (
	// ErrUnknownSection is returned when a language/section pair has no page
	ErrUnknownSection = errors.New("unknown section")
	// ErrInvalidContent is wrapped by every shape validation failure
	ErrInvalidContent = errors.New("invalid content")
)

// document is the on-disk shape of one data/*.yaml file
type document struct {
	Language string                  `yaml:"language"`
	Title    string                  `yaml:"title"`
	Cover    *models.Cover           `yaml:"cover"`
	Sections map[string]*models.Page `yaml:"sections"`
}

// Store holds every presentation page, indexed by language and section
type Store struct {
	sections map[string]map[string]*models.Page
	byPath   map[string]*models.Page
	titles   map[string]string // language -> display title
	cover    models.Cover
}

// Load parses the embedded content documents
func Load() (*Store, error) {
	return LoadFS(EmbeddedContentFS, "data")
}

// LoadFS parses every *.yaml file in dir of fsys
func LoadFS(fsys fs.FS, dir string) (*Store, error) {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read content directory %s: %w", dir, err)
	}

	s := &Store{
		sections: make(map[string]map[string]*models.Page),
		byPath:   make(map[string]*models.Page),
		titles:   make(map[string]string),
	}

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".yaml") {
			continue
		}
		raw, err := fs.ReadFile(fsys, path.Join(dir, entry.Name()))
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", entry.Name(), err)
		}
		var doc document
		if err := yaml.Unmarshal(raw, &doc); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", entry.Name(), err)
		}
		if doc.Language == "" {
			return nil, fmt.Errorf("%w: %s has no language", ErrInvalidContent, entry.Name())
		}
		if doc.Cover != nil {
			s.cover = *doc.Cover
		}
		s.titles[doc.Language] = doc.Title
		s.add(doc.Language, doc.Sections)
	}

	if err := s.Validate(); err != nil {
		return nil, err
	}
	log.Printf("[CONTENT]: Loaded %d pages in %d languages", len(s.byPath), len(s.sections))
	return s, nil
}

func (s *Store) add(lang string, sections map[string]*models.Page) {
	if s.sections[lang] == nil {
		s.sections[lang] = make(map[string]*models.Page)
	}
	for name, page := range sections {
		if page == nil {
			continue
		}
		page.Language = lang
		page.Slug = name
		page.Path = routeFor(lang, name)
		assignAnchors(page)
		s.sections[lang][name] = page
		s.byPath[page.Path] = page
	}
}

// Validate checks basic shape: every known route has a titled page and every
// code example has a name and code.
func (s *Store) Validate() error {
	for _, route := range AllRoutes() {
		if route == "/" {
			continue
		}
		page, ok := s.byPath[route]
		if !ok {
			return fmt.Errorf("%w: no page for route %s", ErrInvalidContent, route)
		}
		if strings.TrimSpace(page.Title) == "" {
			return fmt.Errorf("%w: page %s has no title", ErrInvalidContent, route)
		}
		for i, ex := range page.Examples {
			if ex.Name == "" || strings.TrimSpace(ex.Code) == "" {
				return fmt.Errorf("%w: example %d of %s needs name and code", ErrInvalidContent, i, route)
			}
		}
	}
	if s.cover.Title == "" {
		return fmt.Errorf("%w: cover title missing", ErrInvalidContent)
	}
	return nil
}

// Section returns the page of a language section
func (s *Store) Section(lang, name string) (*models.Page, error) {
	if page, ok := s.sections[lang][name]; ok {
		return page, nil
	}
	return nil, fmt.Errorf("%w: %s/%s", ErrUnknownSection, lang, name)
}

// ByPath returns the page served at route
func (s *Store) ByPath(route string) (*models.Page, bool) {
	page, ok := s.byPath[route]
	return page, ok
}

// Cover returns the presentation title and authors
func (s *Store) Cover() models.Cover {
	return s.cover
}

// Pages returns every page sorted by route order
func (s *Store) Pages() []*models.Page {
	order := make(map[string]int)
	for i, r := range AllRoutes() {
		order[r] = i
	}
	pages := make([]*models.Page, 0, len(s.byPath))
	for _, p := range s.byPath {
		pages = append(pages, p)
	}
	sort.Slice(pages, func(i, j int) bool {
		oi, iok := order[pages[i].Path]
		oj, jok := order[pages[j].Path]
		if iok != jok {
			return iok
		}
		if oi != oj {
			return oi < oj
		}
		return pages[i].Path < pages[j].Path
	})
	return pages
}

func (s *Store) page(lang, name string) *models.Page {
	return s.sections[lang][name]
}

func (s *Store) PythonIntro() *models.Page      { return s.page(LangPython, "intro") }
func (s *Store) PythonHistorico() *models.Page  { return s.page(LangPython, "historico") }
func (s *Store) PythonParadigmas() *models.Page { return s.page(LangPython, "paradigmas") }
func (s *Store) PythonCaracteristicas() *models.Page {
	return s.page(LangPython, "caracteristicas")
}
func (s *Store) PythonLinguagensRelacionadas() *models.Page {
	return s.page(LangPython, "linguagens_relacionadas")
}
func (s *Store) PythonExemplos() *models.Page    { return s.page(LangPython, "exemplos") }
func (s *Store) PythonArquitetura() *models.Page { return s.page(LangPython, "arquitetura") }

func (s *Store) JavaScriptIntro() *models.Page      { return s.page(LangJavaScript, "intro") }
func (s *Store) JavaScriptHistorico() *models.Page  { return s.page(LangJavaScript, "historico") }
func (s *Store) JavaScriptParadigmas() *models.Page { return s.page(LangJavaScript, "paradigmas") }
func (s *Store) JavaScriptCaracteristicas() *models.Page {
	return s.page(LangJavaScript, "caracteristicas")
}
func (s *Store) JavaScriptLinguagensRelacionadas() *models.Page {
	return s.page(LangJavaScript, "linguagens_relacionadas")
}
func (s *Store) JavaScriptExemplos() *models.Page { return s.page(LangJavaScript, "exemplos") }

func (s *Store) ConsideracoesFinais() *models.Page { return s.page(LangGeneral, "consideracoes_finais") }
func (s *Store) Bibliografia() *models.Page        { return s.page(LangGeneral, "bibliografia") }

// String reports the number of routes, like the listing tool prints it
func (s *Store) String() string {
	return fmt.Sprintf("Store(routes=%d)", len(AllRoutes()))
}

// assignAnchors gives every repeated item an id unique within its page
func assignAnchors(page *models.Page) {
	seen := make(map[string]int)
	next := func(name string) string {
		slug := Slugify(name)
		if slug == "" {
			slug = "item"
		}
		seen[slug]++
		if n := seen[slug]; n > 1 {
			return fmt.Sprintf("%s-%d", slug, n)
		}
		return slug
	}
	for i := range page.Paradigms {
		page.Paradigms[i].Anchor = next(page.Paradigms[i].Name)
	}
	for i := range page.Features {
		page.Features[i].Anchor = next(page.Features[i].Name)
	}
	for i := range page.Influences {
		page.Influences[i].Anchor = next(page.Influences[i].Name)
	}
	for i := range page.Influenced {
		page.Influenced[i].Anchor = next(page.Influenced[i].Name)
	}
	for i := range page.Examples {
		page.Examples[i].Anchor = next(page.Examples[i].Name)
	}
}
