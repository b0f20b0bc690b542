package web

import (
	"embed"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"net/http"
	"os"
	"path"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/go-while/go-paradigmas/internal/config"
	"golang.org/x/crypto/blake2b"
)

//go:embed static/*
var EmbeddedStaticFS embed.FS

// staticAsset is a static file with its precomputed headers
type staticAsset struct {
	body        []byte
	etag        string
	contentType string
}

// staticFiles serves files from the embedded static tree, or from
// StaticDir in dev mode. Embedded assets are hashed once.
type staticFiles struct {
	fsys     fs.FS
	fromDisk bool
	maxAge   int
	mux      sync.RWMutex
	assets   map[string]*staticAsset
}

func newStaticFiles(cfg *config.WebConfig) *staticFiles {
	sf := &staticFiles{
		maxAge: cfg.StaticMaxAge,
		assets: make(map[string]*staticAsset),
	}
	if cfg.Dev {
		sf.fsys = os.DirFS(cfg.StaticDir)
		sf.fromDisk = true
		return sf
	}
	sub, err := fs.Sub(EmbeddedStaticFS, "static")
	if err != nil {
		// only fails for an invalid literal path
		panic(err)
	}
	sf.fsys = sub
	return sf
}

func (sf *staticFiles) get(name string) (*staticAsset, error) {
	if !sf.fromDisk {
		sf.mux.RLock()
		asset, ok := sf.assets[name]
		sf.mux.RUnlock()
		if ok {
			return asset, nil
		}
	}

	body, err := fs.ReadFile(sf.fsys, name)
	if err != nil {
		return nil, err
	}
	asset := &staticAsset{
		body:        body,
		etag:        etagFor(body),
		contentType: getContentType(name),
	}
	if !sf.fromDisk {
		sf.mux.Lock()
		sf.assets[name] = asset
		sf.mux.Unlock()
	}
	return asset, nil
}

func (sf *staticFiles) cacheControl() string {
	if sf.fromDisk {
		return "no-cache"
	}
	return fmt.Sprintf("public, max-age=%d", sf.maxAge)
}

// etagFor returns a strong ETag from the first 16 bytes of a blake2b-256 sum
func etagFor(body []byte) string {
	sum := blake2b.Sum256(body)
	return `"` + hex.EncodeToString(sum[:16]) + `"`
}

// etagMatch reports whether an If-None-Match header matches etag
func etagMatch(header, etag string) bool {
	if header == "" {
		return false
	}
	for _, candidate := range strings.Split(header, ",") {
		candidate = strings.TrimSpace(candidate)
		if candidate == "*" || strings.TrimPrefix(candidate, "W/") == etag {
			return true
		}
	}
	return false
}

// staticHandler serves /static/*filepath
func (s *WebServer) staticHandler(c *gin.Context) {
	name := strings.TrimPrefix(c.Param("filepath"), "/")
	s.serveStatic(c, name)
}

// faviconHandler serves the svg icon for browsers asking for /favicon.ico
func (s *WebServer) faviconHandler(c *gin.Context) {
	s.serveStatic(c, "img/favicon.svg")
}

func (s *WebServer) serveStatic(c *gin.Context, name string) {
	if name == "" || !fs.ValidPath(name) {
		c.String(http.StatusNotFound, "404 page not found")
		return
	}

	asset, err := s.static.get(name)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			log.Printf("[WEB]: Error reading static file %s: %v", name, err)
			c.String(http.StatusInternalServerError, "500 internal server error")
			return
		}
		c.String(http.StatusNotFound, "404 page not found")
		return
	}

	c.Header("ETag", asset.etag)
	c.Header("Cache-Control", s.static.cacheControl())
	if etagMatch(c.GetHeader("If-None-Match"), asset.etag) {
		c.Status(http.StatusNotModified)
		return
	}
	c.Data(http.StatusOK, asset.contentType, asset.body)
}

// getContentType returns the appropriate MIME type for a file
func getContentType(filename string) string {
	switch strings.ToLower(path.Ext(filename)) {
	case ".css":
		return "text/css; charset=utf-8"
	case ".js":
		return "application/javascript; charset=utf-8"
	case ".json":
		return "application/json; charset=utf-8"
	case ".svg":
		return "image/svg+xml"
	case ".png":
		return "image/png"
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".gif":
		return "image/gif"
	case ".webp":
		return "image/webp"
	case ".ico":
		return "image/x-icon"
	case ".woff2":
		return "font/woff2"
	case ".txt":
		return "text/plain; charset=utf-8"
	default:
		return "application/octet-stream"
	}
}
