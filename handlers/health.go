package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"roamly/utils"
)

// Health handles GET /health using the last monitor snapshot.
func Health(c *gin.Context) {
	status := utils.GetHealthStatus()
	code := http.StatusOK
	if !status.Healthy() {
		code = http.StatusServiceUnavailable
	}
	c.JSON(code, status)
}
