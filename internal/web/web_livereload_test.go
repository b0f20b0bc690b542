package web

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/go-while/go-paradigmas/internal/config"
	"github.com/go-while/go-paradigmas/internal/watcher"
	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"
)

func devMode(cfg *config.MainConfig) {
	cfg.Web.Dev = true
	cfg.Web.TemplatesDir = "templates"
	cfg.Web.StaticDir = "static"
}

func TestDevModeRendersFromDisk(t *testing.T) {
	srv, _ := newTestServer(t, devMode)

	w := get(srv, "/python")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Header().Get("X-Cache"))

	doc := parseHTML(t, w.Body.String())
	bodies := findAll(doc, byTag("body"))
	require.Len(t, bodies, 1)
	live, ok := attr(bodies[0], "data-livereload")
	assert.True(t, ok)
	assert.Equal(t, "/dev/livereload", live)

	w = get(srv, "/static/css/style.css")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "no-cache", w.Header().Get("Cache-Control"))
}

func TestLiveReloadRouteOnlyInDevMode(t *testing.T) {
	srv, _ := newTestServer(t)
	assert.Nil(t, srv.reload)
	assert.Equal(t, http.StatusNotFound, get(srv, "/dev/livereload").Code)
}

func TestLiveReloadBroadcast(t *testing.T) {
	srv, _ := newTestServer(t, devMode)
	ts := httptest.NewServer(srv.Router)
	defer ts.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	conn, _, err := websocket.Dial(ctx, "ws"+strings.TrimPrefix(ts.URL, "http")+"/dev/livereload", nil)
	require.NoError(t, err)
	defer conn.Close(websocket.StatusNormalClosure, "")

	require.Eventually(t, func() bool {
		return srv.reload.Clients() == 1
	}, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, srv.handleFileChanges([]watcher.ChangeEvent{
		{Type: watcher.EventTypeModified, Path: "templates/base.html"},
	}))

	_, payload, err := conn.Read(ctx)
	require.NoError(t, err)
	var msg reloadMessage
	require.NoError(t, json.Unmarshal(payload, &msg))
	assert.Equal(t, "reload", msg.Type)
	assert.Equal(t, []string{"templates/base.html"}, msg.Paths)

	conn.Close(websocket.StatusNormalClosure, "")
	assert.Eventually(t, func() bool {
		return srv.reload.Clients() == 0
	}, 2*time.Second, 10*time.Millisecond)
}

func TestFileChangesClearPageCache(t *testing.T) {
	srv, _ := newTestServer(t)

	get(srv, "/python")
	assert.Equal(t, "HIT", get(srv, "/python").Header().Get("X-Cache"))

	require.NoError(t, srv.handleFileChanges([]watcher.ChangeEvent{{Path: "static/css/style.css"}}))
	assert.Equal(t, "MISS", get(srv, "/python").Header().Get("X-Cache"))
}

func TestErrorTemplateStructure(t *testing.T) {
	srv, _ := newTestServer(t)

	doc := parseHTML(t, get(srv, "/nada/aqui").Body.String())
	headings := findAll(doc, byTag("h1"))
	require.NotEmpty(t, headings)
	assert.Equal(t, "404", textContent(headings[0]))
	assert.Empty(t, findAll(doc, func(n *html.Node) bool {
		return n.Type == html.ElementNode && n.Data == "nav" && hasClass(n, "pager")
	}))
}

func hasClass(n *html.Node, class string) bool {
	v, _ := attr(n, "class")
	for _, c := range strings.Fields(v) {
		if c == class {
			return true
		}
	}
	return false
}
