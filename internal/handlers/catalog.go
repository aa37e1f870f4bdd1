package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"quicktrain-backend/internal/models"
)

// ListModels godoc
// @Summary     List trainable models
// @Description Returns the catalog of architectures with the dataset format each one expects.
// @Tags        models
// @Produce     json
// @Security    Bearer
// @Success     200 {object} models.ModelsResponse
// @Failure     401 {object} models.ErrorResponse
// @Router      /api/v1/models [get]
func ListModels(c *gin.Context) {
	resp := models.ModelsResponse{Models: make([]models.ModelResponse, 0, len(models.Catalog))}
	for _, a := range models.Catalog {
		resp.Models = append(resp.Models, models.ModelResponse{
			ID:          a.ID,
			Label:       a.Label,
			Kind:        a.Kind,
			Input:       string(a.Input),
			Format:      a.Format,
			Requirement: a.Requirement,
			Description: a.Description,
		})
	}
	c.JSON(http.StatusOK, resp)
}
