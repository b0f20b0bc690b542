package web

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
)

// statsPage renders view counters and cache statistics. Never cached.
func (s *WebServer) statsPage(c *gin.Context) {
	views, err := s.Views.PageViews()
	if err != nil {
		log.Printf("[WEB]: Failed to load page views: %v", err)
		s.renderError(c, http.StatusInternalServerError, "Estatísticas indisponíveis", "")
		return
	}
	total, err := s.Views.TotalViews()
	if err != nil {
		log.Printf("[WEB]: Failed to load total views: %v", err)
		s.renderError(c, http.StatusInternalServerError, "Estatísticas indisponíveis", "")
		return
	}

	data := StatsPageData{
		TemplateData: s.getBaseTemplateData("/stats", "Estatísticas"),
		Views:        views,
		TotalViews:   total,
		Uptime:       s.uptime().String(),
		Caches:       s.cacheStats(),
	}
	s.renderTemplate(c, "stats.html", data)
}

func (s *WebServer) cacheStats() []map[string]interface{} {
	stats := []map[string]interface{}{s.Features.CacheStats()}
	if s.pages != nil {
		stats = append(stats, s.pages.GetStats())
	}
	return stats
}
