package web

import (
	"log"
	"net/http"
	"runtime"

	"github.com/gin-gonic/gin"
	"github.com/go-while/go-paradigmas/internal/config"
	"github.com/go-while/go-paradigmas/internal/content"
)

// apiPythonFeatures runs the language feature demos
func (s *WebServer) apiPythonFeatures(c *gin.Context) {
	report, err := s.Features.Report()
	if err != nil {
		log.Printf("[WEB]: Features report failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Demonstração de características Python via API",
		"data":    report,
	})
}

// apiDemo returns a static payload
func (s *WebServer) apiDemo(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message":        "API Gin funcionando!",
		"python_version": "3.11+",
		"framework":      "Gin",
		"go_version":     runtime.Version(),
		"paradigmas_demonstrated": []string{
			"Programação Orientada a Objetos",
			"Programação Funcional",
			"Decoradores",
			"Context Managers",
			"Type Hints",
		},
	})
}

// apiRoutes lists the content routes in presentation order
func (s *WebServer) apiRoutes(c *gin.Context) {
	routes := content.AllRoutes()
	c.JSON(http.StatusOK, gin.H{
		"routes": routes,
		"count":  len(routes),
	})
}

// getStats returns view counters, cache statistics and uptime
func (s *WebServer) getStats(c *gin.Context) {
	views, err := s.Views.PageViews()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": err.Error()})
		return
	}
	total, err := s.Views.TotalViews()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": err.Error()})
		return
	}
	uptime := s.uptime()
	c.JSON(http.StatusOK, gin.H{
		"app_version":    config.AppVersion,
		"uptime":         uptime.String(),
		"uptime_seconds": int64(uptime.Seconds()),
		"total_views":    total,
		"page_views":     views,
		"caches":         s.cacheStats(),
	})
}

// healthHandler reports liveness
func (s *WebServer) healthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"version": config.AppVersion,
		"uptime":  s.uptime().String(),
	})
}
