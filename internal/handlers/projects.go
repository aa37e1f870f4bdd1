package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"quicktrain-backend/internal/models"
	"quicktrain-backend/internal/services"
)

type ProjectsHandler struct {
	resolver ProjectResolver
}

func NewProjectsHandler(resolver ProjectResolver) *ProjectsHandler {
	return &ProjectsHandler{resolver: resolver}
}

// ListProjects godoc
// @Summary     List projects
// @Description Lists the user's projects, newest first. A project is completed once its artifact exists in storage.
// @Tags        projects
// @Produce     json
// @Security    Bearer
// @Success     200 {object} models.ProjectListResponse
// @Failure     401 {object} models.ErrorResponse
// @Failure     500 {object} models.ErrorResponse
// @Router      /api/v1/projects [get]
func (h *ProjectsHandler) ListProjects(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	projects, err := h.resolver.Resolve(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "failed to list projects",
			Message: err.Error(),
		})
		return
	}

	resp := models.ProjectListResponse{Projects: make([]models.ProjectResponse, 0, len(projects))}
	for _, p := range projects {
		resp.Projects = append(resp.Projects, toProjectResponse(p))
	}
	c.JSON(http.StatusOK, resp)
}

// GetUsage godoc
// @Summary     Project usage snippet
// @Description Returns a Python snippet that loads the trained artifact and runs inference.
// @Tags        projects
// @Produce     json
// @Security    Bearer
// @Param       filename path string true "Project artifact filename, e.g. resnet18_ab12cd34.pth"
// @Success     200 {object} models.UsageResponse
// @Failure     401 {object} models.ErrorResponse
// @Failure     404 {object} models.ErrorResponse
// @Failure     500 {object} models.ErrorResponse
// @Router      /api/v1/projects/{filename}/usage [get]
func (h *ProjectsHandler) GetUsage(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	project, err := h.resolver.Find(c.Request.Context(), userID, c.Param("filename"))
	if errors.Is(err, services.ErrProjectNotFound) {
		c.JSON(http.StatusNotFound, models.ErrorResponse{Error: "project not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "failed to load project",
			Message: err.Error(),
		})
		return
	}

	usage, err := services.Usage(project)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "failed to render usage",
			Message: err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, usage)
}
