package web

import (
	"github.com/gin-gonic/gin"
)

// indexPage renders the presentation home
func (s *WebServer) indexPage(c *gin.Context) {
	s.renderCached(c, "index.html", func() interface{} {
		return s.getBaseTemplateData("/", s.Content.Cover().Title)
	})
}

// coverPage returns a handler for one of the cover pages
func (s *WebServer) coverPage(templateName, title string) gin.HandlerFunc {
	return func(c *gin.Context) {
		s.renderCached(c, templateName, func() interface{} {
			return s.getBaseTemplateData(c.FullPath(), title)
		})
	}
}
