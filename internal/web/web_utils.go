package web

import (
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-while/go-paradigmas/internal/config"
	"github.com/go-while/go-paradigmas/internal/models"
)

// UIData is exposed to main.js as data attributes on <body>
type UIData struct {
	Breakpoint      int
	CopyDelayMs     int64
	RevealThreshold float64
	RevealMargin    string
}

// TemplateData is the base data every page receives
type TemplateData struct {
	Title       string
	SiteTitle   string
	AppVersion  string
	CurrentPath string
	Navigation  []*models.NavSection
	Prev        *models.NavItem
	Next        *models.NavItem
	Cover       models.Cover
	UI          UIData
	Dev         bool
}

// ContentPageData is the data of one content page
type ContentPageData struct {
	TemplateData
	Page *models.Page
}

// StatsPageData is the data of the /stats page
type StatsPageData struct {
	TemplateData
	Views      []*models.PageView
	TotalViews int64
	Uptime     string
	Caches     []map[string]interface{}
}

// ErrorPageData is the data of error.html
type ErrorPageData struct {
	TemplateData
	StatusCode int
	Error      string
	Details    string
}

func uiData(ui *config.UIConfig) UIData {
	return UIData{
		Breakpoint:      ui.MobileBreakpoint,
		CopyDelayMs:     ui.CopyRevertDelay.Milliseconds(),
		RevealThreshold: ui.RevealThreshold,
		RevealMargin:    ui.RevealRootMargin,
	}
}

// getBaseTemplateData returns base template data for the page at route
func (s *WebServer) getBaseTemplateData(route, title string) TemplateData {
	prev, next := s.Content.Neighbors(route)
	return TemplateData{
		Title:       title,
		SiteTitle:   s.Content.Cover().Title,
		AppVersion:  config.AppVersion,
		CurrentPath: route,
		Navigation:  s.Content.Navigation(),
		Prev:        prev,
		Next:        next,
		Cover:       s.Content.Cover(),
		UI:          uiData(s.UI),
		Dev:         s.Config.Dev,
	}
}

// renderTemplate renders a page without caching
func (s *WebServer) renderTemplate(c *gin.Context, templateName string, data interface{}) {
	body, err := s.templates.render(templateName, data)
	if err != nil {
		log.Printf("[WEB]: Template error for %s: %v", c.Request.URL.Path, err)
		s.renderError(c, http.StatusInternalServerError, "Erro ao renderizar a página", "")
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", body)
}

// renderCached serves a page from the page cache, rendering it with the
// data from build on a miss. Pages only depend on their route.
func (s *WebServer) renderCached(c *gin.Context, templateName string, build func() interface{}) {
	key := c.FullPath()
	if s.pages != nil {
		if body, ok := s.pages.Get(key); ok {
			c.Header("X-Cache", "HIT")
			c.Data(http.StatusOK, "text/html; charset=utf-8", body)
			return
		}
	}

	body, err := s.templates.render(templateName, build())
	if err != nil {
		log.Printf("[WEB]: Template error for %s: %v", key, err)
		s.renderError(c, http.StatusInternalServerError, "Erro ao renderizar a página", "")
		return
	}
	if s.pages != nil {
		s.pages.Set(key, body, int64(len(body)))
		c.Header("X-Cache", "MISS")
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", body)
}

// renderError renders error.html, falling back to plain text
func (s *WebServer) renderError(c *gin.Context, statusCode int, message, details string) {
	data := ErrorPageData{
		TemplateData: s.getBaseTemplateData(c.Request.URL.Path, http.StatusText(statusCode)),
		StatusCode:   statusCode,
		Error:        message,
		Details:      details,
	}
	body, err := s.templates.render("error.html", data)
	if err != nil {
		log.Printf("[WEB]: Error template failed: %v", err)
		c.String(statusCode, "%d %s", statusCode, message)
		return
	}
	c.Data(statusCode, "text/html; charset=utf-8", body)
}

// clearPageCache drops all rendered pages
func (s *WebServer) clearPageCache() {
	if s.pages != nil {
		s.pages.Clear()
	}
}

// uptime returns the time since the server was created, rounded to seconds
func (s *WebServer) uptime() time.Duration {
	return time.Since(s.StartTime).Round(time.Second)
}
