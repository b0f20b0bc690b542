package content

import (
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadStore(t *testing.T) *Store {
	t.Helper()
	s, err := Load()
	require.NoError(t, err)
	return s
}

func TestLoadEmbeddedContent(t *testing.T) {
	s := loadStore(t)

	for _, route := range AllRoutes() {
		if route == "/" {
			continue
		}
		page, ok := s.ByPath(route)
		require.True(t, ok, "missing page for %s", route)
		assert.NotEmpty(t, page.Title, route)
		assert.Equal(t, route, page.Path)
	}

	cover := s.Cover()
	assert.Equal(t, "Relatório Detalhado sobre Python e JavaScript", cover.Title)
	assert.NotEmpty(t, cover.Author)
	assert.NotEmpty(t, cover.Author2)
}

func TestGetters(t *testing.T) {
	s := loadStore(t)

	assert.Equal(t, "Python", s.PythonIntro().Title)
	assert.Len(t, s.PythonIntro().KeyPoints, 5)
	assert.Equal(t, "Guido van Rossum", s.PythonHistorico().Creator)
	assert.Len(t, s.PythonHistorico().Timeline, 6)
	assert.Len(t, s.PythonParadigmas().Paradigms, 3)
	assert.Len(t, s.PythonCaracteristicas().Features, 6)
	assert.Len(t, s.PythonLinguagensRelacionadas().Influences, 5)
	assert.Len(t, s.PythonLinguagensRelacionadas().Influenced, 3)
	assert.Len(t, s.PythonExemplos().Examples, 4)
	assert.Len(t, s.PythonArquitetura().ExecutionModel, 3)

	assert.Equal(t, "JavaScript", s.JavaScriptIntro().Title)
	assert.Len(t, s.JavaScriptIntro().KeyPoints, 10)
	assert.Len(t, s.JavaScriptHistorico().Timeline, 8)
	assert.NotEmpty(t, s.JavaScriptHistorico().Development)
	assert.Len(t, s.JavaScriptParadigmas().Paradigms, 4)
	assert.Len(t, s.JavaScriptCaracteristicas().Features, 10)
	assert.Len(t, s.JavaScriptLinguagensRelacionadas().Influences, 6)
	assert.Len(t, s.JavaScriptLinguagensRelacionadas().TranspilationEcosystem, 7)
	assert.Len(t, s.JavaScriptExemplos().Examples, 4)

	assert.Len(t, s.ConsideracoesFinais().KeyTakeaways, 4)
	assert.Len(t, s.Bibliografia().References, 5)
}

func TestCodeExamplesKeepIndentation(t *testing.T) {
	s := loadStore(t)
	ex := s.PythonExemplos().Examples[3]
	assert.Equal(t, "Função Recursiva (Fatorial)", ex.Name)
	assert.Contains(t, ex.Code, "def fatorial(n):\n    if n == 0:\n        return 1")
	assert.Equal(t, "python", ex.Language)
}

func TestSection(t *testing.T) {
	s := loadStore(t)

	page, err := s.Section(LangJavaScript, "paradigmas")
	require.NoError(t, err)
	assert.Equal(t, "/javascript/paradigmas", page.Path)

	_, err = s.Section(LangPython, "decoradores")
	assert.ErrorIs(t, err, ErrUnknownSection)

	_, err = s.Section("ruby", "intro")
	assert.ErrorIs(t, err, ErrUnknownSection)
}

func TestAnchorsAreUniqueWithinPage(t *testing.T) {
	s := loadStore(t)

	for _, page := range s.Pages() {
		seen := map[string]bool{}
		var anchors []string
		for _, p := range page.Paradigms {
			anchors = append(anchors, p.Anchor)
		}
		for _, f := range page.Features {
			anchors = append(anchors, f.Anchor)
		}
		for _, i := range page.Influences {
			anchors = append(anchors, i.Anchor)
		}
		for _, i := range page.Influenced {
			anchors = append(anchors, i.Anchor)
		}
		for _, e := range page.Examples {
			anchors = append(anchors, e.Anchor)
		}
		for _, a := range anchors {
			require.NotEmpty(t, a, page.Path)
			assert.False(t, seen[a], "duplicate anchor %q on %s", a, page.Path)
			seen[a] = true
		}
	}
}

func TestAllRoutes(t *testing.T) {
	routes := AllRoutes()
	assert.Len(t, routes, 16)
	assert.Equal(t, "/", routes[0])
	assert.Equal(t, "/bibliografia", routes[len(routes)-1])

	// callers get a copy
	routes[0] = "/changed"
	assert.Equal(t, "/", AllRoutes()[0])

	s := loadStore(t)
	assert.Equal(t, "Store(routes=16)", s.String())
}

func TestPagesOrder(t *testing.T) {
	s := loadStore(t)
	pages := s.Pages()
	require.Len(t, pages, 15)
	assert.Equal(t, "/python", pages[0].Path)
	assert.Equal(t, "/bibliografia", pages[len(pages)-1].Path)
}

func TestNavigation(t *testing.T) {
	s := loadStore(t)
	nav := s.Navigation()
	require.Len(t, nav, 4)

	assert.Equal(t, "Apresentação", nav[0].Title)
	assert.Len(t, nav[0].Items, 5)
	assert.Equal(t, "Python", nav[1].Title)
	assert.Len(t, nav[1].Items, 7)
	assert.Equal(t, "Introdução", nav[1].Items[0].Title)
	assert.Equal(t, "JavaScript", nav[2].Title)
	assert.Len(t, nav[2].Items, 6)
	assert.Equal(t, "Conclusão", nav[3].Title)
	assert.Len(t, nav[3].Items, 2)
}

func TestNeighbors(t *testing.T) {
	s := loadStore(t)

	prev, next := s.Neighbors("/")
	assert.Nil(t, prev)
	require.NotNil(t, next)
	assert.Equal(t, "/python", next.Path)

	prev, next = s.Neighbors("/javascript")
	require.NotNil(t, prev)
	require.NotNil(t, next)
	assert.Equal(t, "/python/arquitetura", prev.Path)
	assert.Equal(t, "/javascript/historico", next.Path)

	prev, next = s.Neighbors("/bibliografia")
	require.NotNil(t, prev)
	assert.Nil(t, next)

	prev, next = s.Neighbors("/stats")
	assert.Nil(t, prev)
	assert.Nil(t, next)
}

func TestLoadFSRejectsMissingPages(t *testing.T) {
	fsys := fstest.MapFS{
		"data/general.yaml": &fstest.MapFile{Data: []byte(`
language: general
cover:
  title: Teste
sections:
  bibliografia:
    title: Bibliografia
`)},
	}
	_, err := LoadFS(fsys, "data")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidContent)
}

func TestLoadFSRejectsBrokenYAML(t *testing.T) {
	fsys := fstest.MapFS{
		"data/python.yaml": &fstest.MapFile{Data: []byte("language: [python")},
	}
	_, err := LoadFS(fsys, "data")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse python.yaml")
}

func TestLoadFSRejectsEmptyExample(t *testing.T) {
	s := loadStore(t)
	s.PythonExemplos().Examples = append(s.PythonExemplos().Examples, s.PythonExemplos().Examples[0])
	s.PythonExemplos().Examples[len(s.PythonExemplos().Examples)-1].Code = "  "
	assert.ErrorIs(t, s.Validate(), ErrInvalidContent)
}
