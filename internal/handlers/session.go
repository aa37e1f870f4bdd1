package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"quicktrain-backend/internal/logger"
	"quicktrain-backend/internal/models"
)

type SessionHandler struct {
	registry UserRegistry
}

func NewSessionHandler(registry UserRegistry) *SessionHandler {
	return &SessionHandler{registry: registry}
}

// GetSession godoc
// @Summary     Current session
// @Description Returns the signed-in user and makes sure their metadata row exists.
// @Tags        session
// @Produce     json
// @Security    Bearer
// @Success     200 {object} models.SessionResponse
// @Failure     401 {object} models.ErrorResponse
// @Failure     500 {object} models.ErrorResponse
// @Router      /api/v1/session [get]
func (h *SessionHandler) GetSession(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	if err := h.registry.EnsureUser(c.Request.Context(), userID); err != nil {
		logger.Error("Failed to ensure user data", zap.String("user_id", userID.String()), zap.Error(err))
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "failed to initialise user data",
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, models.SessionResponse{UserID: userID.String()})
}
