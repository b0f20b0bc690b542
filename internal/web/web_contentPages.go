package web

import (
	"github.com/gin-gonic/gin"
	"github.com/go-while/go-paradigmas/internal/models"
)

// contentPage returns the handler of a content page. Both languages share
// one template per section, e.g. /python/historico and /javascript/historico
// render historico.html.
func (s *WebServer) contentPage(page *models.Page) gin.HandlerFunc {
	templateName := page.Slug + ".html"
	return func(c *gin.Context) {
		s.renderCached(c, templateName, func() interface{} {
			return ContentPageData{
				TemplateData: s.getBaseTemplateData(page.Path, page.Title),
				Page:         page,
			}
		})
	}
}
