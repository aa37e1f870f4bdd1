package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"quicktrain-backend/internal/middleware"
	"quicktrain-backend/internal/models"
	"quicktrain-backend/internal/services"
)

type UserRegistry interface {
	EnsureUser(ctx context.Context, userID uuid.UUID) error
}

type TrainingSubmitter interface {
	Submit(ctx context.Context, req *models.TrainingRequest) (*services.JobResult, error)
}

type ProjectResolver interface {
	Resolve(ctx context.Context, userID uuid.UUID) ([]models.Project, error)
	Find(ctx context.Context, userID uuid.UUID, filename string) (models.Project, error)
}

// currentUser reads the id set by the auth middleware. On failure it has
// already written a JSON error.
func currentUser(c *gin.Context) (uuid.UUID, bool) {
	userIDStr, exists := c.Get(middleware.UserIDKey)
	if !exists {
		c.JSON(http.StatusUnauthorized, models.ErrorResponse{Error: "user id not found"})
		return uuid.Nil, false
	}

	userID, err := uuid.Parse(userIDStr.(string))
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "invalid user id"})
		return uuid.Nil, false
	}
	return userID, true
}

func toProjectResponse(p models.Project) models.ProjectResponse {
	return models.ProjectResponse{
		ID:           p.ID,
		Filename:     p.Filename,
		Name:         p.Name,
		Architecture: p.Architecture,
		Status:       string(p.Status),
		StatusLabel:  p.Status.Label(),
		DownloadURL:  p.DownloadURL,
	}
}

func toJobResponse(r *services.JobResult) models.JobResponse {
	resp := models.JobResponse{
		JobID:           r.JobID,
		ModelID:         r.ModelID,
		Status:          string(r.Status),
		StatusLabel:     r.Status.Label(),
		Transitions:     make([]string, 0, len(r.Transitions)),
		ProjectFilename: r.ProjectFilename,
		Objects:         r.Objects,
	}
	for _, s := range r.Transitions {
		resp.Transitions = append(resp.Transitions, string(s))
	}
	if r.Err != nil {
		resp.Error = r.Err.Error()
	}
	if r.Status == models.JobStarted {
		resp.Redirect = "/dashboard"
		resp.RedirectAfterMS = r.RedirectAfter.Milliseconds()
	}
	return resp
}
