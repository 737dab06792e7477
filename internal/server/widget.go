package server

import (
	_ "embed"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

//go:embed assets/widget.html
var widgetPage string

// WidgetRouter serves the standalone chat widget. The page is static apart
// from the API base URL, which is stamped in at startup.
func WidgetRouter(apiBaseURL string) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())

	page := []byte(strings.ReplaceAll(widgetPage, "{{API_BASE}}", apiBaseURL))
	r.GET("/", func(c *gin.Context) {
		c.Data(http.StatusOK, "text/html; charset=utf-8", page)
	})

	return r
}
