package content

import (
	"github.com/go-while/go-paradigmas/internal/models"
)

// allRoutes is the presentation order of the content pages
var allRoutes = []string{
	"/", "/python", "/python/historico", "/python/paradigmas",
	"/python/caracteristicas", "/python/linguagens_relacionadas",
	"/python/exemplos", "/python/arquitetura", "/javascript",
	"/javascript/historico", "/javascript/paradigmas",
	"/javascript/caracteristicas", "/javascript/linguagens_relacionadas",
	"/javascript/exemplos", "/consideracoes_finais", "/bibliografia",
}

// coverRoutes are the cover pages served next to the home page
var coverRoutes = []*models.NavItem{
	{Path: "/", Title: "Início"},
	{Path: "/inicio-ttp", Title: "Capa"},
	{Path: "/intro-ttp", Title: "Introdução"},
	{Path: "/topicos-ttp", Title: "Tópicos"},
	{Path: "/about-ttp", Title: "Sobre"},
}

// AllRoutes returns every content route in presentation order
func AllRoutes() []string {
	out := make([]string, len(allRoutes))
	copy(out, allRoutes)
	return out
}

// CoverRoutes returns the cover page links
func CoverRoutes() []*models.NavItem {
	out := make([]*models.NavItem, 0, len(coverRoutes))
	for _, item := range coverRoutes {
		cp := *item
		out = append(out, &cp)
	}
	return out
}

// routeFor maps a language section to its URL path
func routeFor(lang, name string) string {
	switch {
	case lang == LangGeneral:
		return "/" + name
	case name == "intro":
		return "/" + lang
	default:
		return "/" + lang + "/" + name
	}
}

// navTitle is the sidebar label of a page
func navTitle(p *models.Page) string {
	if p.Slug == "intro" {
		return "Introdução"
	}
	return p.Title
}

// Navigation returns the sidebar, grouped per language
func (s *Store) Navigation() []*models.NavSection {
	nav := []*models.NavSection{{Title: "Apresentação", Items: CoverRoutes()}}

	groups := []struct {
		lang  string
		title string
	}{
		{LangPython, s.titles[LangPython]},
		{LangJavaScript, s.titles[LangJavaScript]},
		{LangGeneral, "Conclusão"},
	}
	for _, g := range groups {
		section := &models.NavSection{Title: g.title}
		for _, route := range allRoutes {
			page, ok := s.byPath[route]
			if !ok || page.Language != g.lang {
				continue
			}
			section.Items = append(section.Items, &models.NavItem{Path: route, Title: navTitle(page)})
		}
		if len(section.Items) > 0 {
			nav = append(nav, section)
		}
	}
	return nav
}

// Neighbors returns the previous and next page of route in presentation
// order. Either is nil at the ends or when route is not a content route.
func (s *Store) Neighbors(route string) (prev, next *models.NavItem) {
	idx := -1
	for i, r := range allRoutes {
		if r == route {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, nil
	}
	if idx > 0 {
		prev = s.navItem(allRoutes[idx-1])
	}
	if idx < len(allRoutes)-1 {
		next = s.navItem(allRoutes[idx+1])
	}
	return prev, next
}

func (s *Store) navItem(route string) *models.NavItem {
	if route == "/" {
		return &models.NavItem{Path: "/", Title: "Início"}
	}
	page, ok := s.byPath[route]
	if !ok {
		return nil
	}
	return &models.NavItem{Path: route, Title: navTitle(page)}
}
