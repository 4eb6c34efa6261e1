package api

import (
	_ "embed"
	"net/http"

	"github.com/gin-gonic/gin"
)

//go:embed admin.html
var adminPageHTML []byte

// adminPage serves the static admin page.
func (h *handlers) adminPage(c *gin.Context) {
	c.Data(http.StatusOK, "text/html; charset=utf-8", adminPageHTML)
}
