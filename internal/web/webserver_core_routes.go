// Package web provides the HTTP server and presentation pages for go-paradigmas
package web

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gin-contrib/secure"
	"github.com/gin-gonic/gin"
	"github.com/go-while/go-paradigmas/internal/cache"
	"github.com/go-while/go-paradigmas/internal/config"
	"github.com/go-while/go-paradigmas/internal/content"
	"github.com/go-while/go-paradigmas/internal/database"
	"github.com/go-while/go-paradigmas/internal/features"
	"github.com/go-while/go-paradigmas/internal/watcher"
	"github.com/google/uuid"
)

// WebServer represents the web server
type WebServer struct {
	Router   *gin.Engine
	Config   *config.WebConfig
	UI       *config.UIConfig
	Content  *content.Store
	Views    database.ViewStore
	Features *features.Showcase

	templates *templateSet
	static    *staticFiles
	pages     *cache.TTLCache[[]byte] // rendered pages, nil in dev mode
	reload    *reloadHub              // dev mode only
	watcher   *watcher.FileWatcher

	StartTime  time.Time // Track server start time for uptime calculations
	mux        sync.Mutex
	httpServer *http.Server
	stopWatch  context.CancelFunc
	stopped    bool
}

// NewServer creates a new web server instance
func NewServer(cfg *config.MainConfig, store *content.Store, views database.ViewStore) (*WebServer, error) {
	if cfg == nil || store == nil {
		return nil, errors.New("web server needs a config and a content store")
	}
	if views == nil {
		views = database.NewMemoryViews()
	}
	webconfig := &cfg.Web

	templates, err := newTemplateSet(webconfig)
	if err != nil {
		return nil, err
	}

	// Set Gin to release mode for production
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	if err := router.SetTrustedProxies(webconfig.TrustedProxies); err != nil {
		return nil, fmt.Errorf("invalid trusted proxies: %w", err)
	}

	server := &WebServer{
		Router:    router,
		Config:    webconfig,
		UI:        &cfg.UI,
		Content:   store,
		Views:     views,
		Features:  features.NewShowcase(cfg.Demo),
		templates: templates,
		static:    newStaticFiles(webconfig),
		StartTime: time.Now(),
	}
	if webconfig.Dev {
		server.reload = newReloadHub()
	} else {
		server.pages = cache.NewTTLCache[[]byte]("pages", webconfig.PageCacheEntries, webconfig.PageCacheExpiry)
	}

	router.Use(gin.Recovery())
	router.Use(RequestIDMiddleware())
	router.Use(server.ApacheLogFormat())
	router.Use(secure.New(server.secureConfig()))
	router.Use(server.ReverseProxyMiddleware())

	server.setupRoutes()
	return server, nil
}

// secureConfig configures security headers based on SSL setup
func (s *WebServer) secureConfig() secure.Config {
	secureConfig := secure.Config{
		FrameDeny:          true,
		ContentTypeNosniff: true,
		BrowserXssFilter:   true,
		ReferrerPolicy:     "strict-origin-when-cross-origin",
		IsDevelopment:      s.Config.Dev,
	}

	// Only add SSL-specific headers if SSL is enabled on the application itself
	// (not when running behind a reverse proxy like nginx with SSL)
	if s.Config.SSL {
		secureConfig.SSLRedirect = true
		secureConfig.STSSeconds = 31536000
		secureConfig.STSIncludeSubdomains = true
	}
	return secureConfig
}

// setupRoutes configures all HTTP routes
func (s *WebServer) setupRoutes() {
	s.Router.GET("/static/*filepath", s.staticHandler)
	s.Router.GET("/favicon.ico", s.faviconHandler)
	s.Router.GET("/robots.txt", func(c *gin.Context) {
		c.String(http.StatusOK, "User-agent: *\nDisallow:\n")
	})
	s.Router.GET("/ping", func(c *gin.Context) {
		c.String(http.StatusOK, "pong")
	})
	s.Router.GET("/health", s.healthHandler)

	api := s.Router.Group("/api", s.CORSMiddleware())
	{
		api.GET("/python-features", s.apiPythonFeatures)
		api.GET("/demo", s.apiDemo)
		api.GET("/routes", s.apiRoutes)
		api.GET("/v1/stats", s.getStats)
		api.OPTIONS("/*path", func(c *gin.Context) {
			c.Status(http.StatusNoContent)
		})
	}

	pages := s.Router.Group("/", s.PageViewMiddleware())
	{
		pages.GET("/", s.indexPage)
		pages.GET("/inicio-ttp", s.coverPage("capa.html", "Capa"))
		pages.GET("/intro-ttp", s.coverPage("intro_apresentacao.html", "Introdução"))
		pages.GET("/topicos-ttp", s.coverPage("topicos_apresentacao.html", "Tópicos"))
		pages.GET("/about-ttp", s.coverPage("about_apresentacao.html", "Sobre"))

		for _, page := range s.Content.Pages() {
			pages.GET(page.Path, s.contentPage(page))
		}
		pages.GET("/stats", s.statsPage)
	}

	if s.reload != nil {
		s.Router.GET("/dev/livereload", s.reload.handle)
	}

	s.Router.NoRoute(func(c *gin.Context) {
		if strings.HasPrefix(c.Request.URL.Path, "/api/") {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "not found"})
			return
		}
		s.renderError(c, http.StatusNotFound, "Página não encontrada", c.Request.URL.Path)
	})
}

// Start starts the web server with SSL support if configured. It blocks
// until the server stops and returns nil after a graceful Shutdown.
func (s *WebServer) Start() error {
	addr := s.Config.ListenAddr()
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.mux.Lock()
	if s.stopped {
		s.mux.Unlock()
		log.Printf("[WEB]: Not starting, server already shut down")
		return nil
	}
	s.httpServer = srv
	s.mux.Unlock()

	if s.Config.Dev {
		if err := s.startDevWatcher(); err != nil {
			log.Printf("[WEB]: Live reload disabled: %v", err)
		}
	}

	var err error
	if s.Config.SSL {
		if s.Config.CertFile == "" || s.Config.KeyFile == "" {
			return errors.New("SSL enabled but cert_file or key_file not specified in config")
		}
		log.Printf("[WEB]: Starting HTTPS server on %s", addr)
		err = srv.ListenAndServeTLS(s.Config.CertFile, s.Config.KeyFile)
	} else {
		log.Printf("[WEB]: Starting HTTP server on %s", addr)
		err = srv.ListenAndServe()
	}
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Shutdown stops accepting requests, waits for active ones until ctx is
// done and releases caches and dev tooling. A later Start returns at once.
func (s *WebServer) Shutdown(ctx context.Context) error {
	s.mux.Lock()
	if s.stopped {
		s.mux.Unlock()
		return nil
	}
	s.stopped = true
	srv := s.httpServer
	stopWatch := s.stopWatch
	fw := s.watcher
	s.stopWatch = nil
	s.watcher = nil
	s.mux.Unlock()

	if stopWatch != nil {
		stopWatch()
	}
	if fw != nil {
		fw.Stop()
	}
	if s.reload != nil {
		s.reload.Shutdown()
	}

	var err error
	if srv != nil {
		err = srv.Shutdown(ctx)
	}
	if s.pages != nil {
		s.pages.Stop()
	}
	s.Features.Stop()
	log.Printf("[WEB]: Server stopped")
	return err
}

// RequestIDMiddleware tags every request with an X-Request-ID
func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader("X-Request-ID")
		if id == "" || len(id) > 128 {
			id = uuid.NewString()
		}
		c.Set("request_id", id)
		c.Header("X-Request-ID", id)
		c.Next()
	}
}

// ReverseProxyMiddleware handles X-Forwarded headers when running behind a reverse proxy
func (s *WebServer) ReverseProxyMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		// Handle X-Forwarded-Proto to detect if the original request was HTTPS
		if proto := c.GetHeader("X-Forwarded-Proto"); proto == "https" {
			c.Request.URL.Scheme = "https"
		}

		// Handle X-Forwarded-Host to get the original host
		if host := c.GetHeader("X-Forwarded-Host"); host != "" {
			c.Request.Host = host
		}

		c.Next()
	}
}

// ApacheLogFormat logs requests in Apache combined format plus the request id
func (s *WebServer) ApacheLogFormat() gin.HandlerFunc {
	return gin.LoggerWithFormatter(func(param gin.LogFormatterParams) string {
		return fmt.Sprintf(`%s - - [%s] "%s %s %s" %d %d "%s" "%s" %s`+"\n",
			param.ClientIP,
			param.TimeStamp.Format("02/Jan/2006:15:04:05 -0700"),
			param.Method,
			param.Path,
			param.Request.Proto,
			param.StatusCode,
			param.BodySize,
			param.Request.Referer(),
			param.Request.UserAgent(),
			param.Keys["request_id"],
		)
	})
}

// CORSMiddleware answers cross-origin API requests from the configured origins
func (s *WebServer) CORSMiddleware() gin.HandlerFunc {
	allowAll := false
	allowed := make(map[string]bool, len(s.Config.AllowedOrigins))
	for _, o := range s.Config.AllowedOrigins {
		if o == "*" {
			allowAll = true
		}
		allowed[o] = true
	}

	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		if origin != "" {
			switch {
			case allowAll:
				c.Header("Access-Control-Allow-Origin", "*")
			case allowed[origin]:
				c.Header("Access-Control-Allow-Origin", origin)
				c.Header("Vary", "Origin")
			}
		}
		if c.Request.Method == http.MethodOptions {
			c.Header("Access-Control-Allow-Methods", "GET, OPTIONS")
			c.Header("Access-Control-Allow-Headers", "Content-Type, X-Request-ID")
			c.Header("Access-Control-Max-Age", "600")
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

// PageViewMiddleware counts successful GETs of presentation pages
func (s *WebServer) PageViewMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		if c.Request.Method != http.MethodGet || c.Writer.Status() != http.StatusOK {
			return
		}
		if route := c.FullPath(); route != "" {
			s.Views.RecordHit(route)
		}
	}
}
