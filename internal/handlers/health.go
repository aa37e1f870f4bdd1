package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"quicktrain-backend/internal/models"
)

// HealthHandler godoc
// @Summary     Health check
// @Description Liveness probe. No authentication.
// @Tags        health
// @Produce     json
// @Success     200 {object} models.HealthResponse
// @Router      /health [get]
func HealthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, models.HealthResponse{Status: "ok"})
}
