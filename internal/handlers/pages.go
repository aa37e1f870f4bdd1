package handlers

import (
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"quicktrain-backend/internal/config"
	"quicktrain-backend/internal/logger"
	"quicktrain-backend/internal/middleware"
	"quicktrain-backend/internal/models"
	"quicktrain-backend/internal/services"
)

// PagesHandler serves the server-rendered site and the sign-in glue around
// Supabase OAuth.
type PagesHandler struct {
	cfg       *config.Config
	verifier  middleware.TokenVerifier
	registry  UserRegistry
	submitter TrainingSubmitter
	resolver  ProjectResolver
}

func NewPagesHandler(
	cfg *config.Config,
	verifier middleware.TokenVerifier,
	registry UserRegistry,
	submitter TrainingSubmitter,
	resolver ProjectResolver,
) *PagesHandler {
	return &PagesHandler{
		cfg:       cfg,
		verifier:  verifier,
		registry:  registry,
		submitter: submitter,
		resolver:  resolver,
	}
}

func (h *PagesHandler) page(c *gin.Context, title string, extra gin.H) gin.H {
	_, signedIn := c.Get(middleware.UserIDKey)
	data := gin.H{"Title": title, "SignedIn": signedIn}
	for k, v := range extra {
		data[k] = v
	}
	return data
}

// pageUser reads the id set by RequireSession. It redirects to the landing
// page when the id is unusable.
func (h *PagesHandler) pageUser(c *gin.Context) (uuid.UUID, bool) {
	if raw, ok := c.Get(middleware.UserIDKey); ok {
		if userID, err := uuid.Parse(raw.(string)); err == nil {
			return userID, true
		}
	}
	c.Redirect(http.StatusFound, "/")
	return uuid.Nil, false
}

func (h *PagesHandler) Landing(c *gin.Context) {
	c.HTML(http.StatusOK, "landing.html", h.page(c, "Home", gin.H{"Catalog": models.Catalog}))
}

func (h *PagesHandler) Docs(c *gin.Context) {
	c.HTML(http.StatusOK, "docs.html", h.page(c, "Documentation", gin.H{"Catalog": models.Catalog}))
}

func (h *PagesHandler) TrainForm(c *gin.Context) {
	arch, ok := models.LookupArchitecture(c.Param("model_id"))
	if !ok {
		c.Redirect(http.StatusFound, "/")
		return
	}
	c.HTML(http.StatusOK, "train.html", h.page(c, "Train "+arch.Label, gin.H{"Arch": arch, "AutoSplit": true}))
}

// TrainSubmit runs the workflow for the form post. Validation and workflow
// errors re-render the form with an alert; a started job shows a page that
// refreshes to the dashboard.
func (h *PagesHandler) TrainSubmit(c *gin.Context) {
	userID, ok := h.pageUser(c)
	if !ok {
		return
	}
	arch, ok := models.LookupArchitecture(c.Param("model_id"))
	if !ok {
		c.Redirect(http.StatusFound, "/")
		return
	}

	formData := gin.H{"Arch": arch, "AutoSplit": true}
	req, err := parseTrainingRequest(c, arch.ID, userID.String())
	if err != nil {
		formData["Alert"] = "Could not read the upload: " + err.Error()
		c.HTML(http.StatusBadRequest, "train.html", h.page(c, "Train "+arch.Label, formData))
		return
	}
	formData["AutoSplit"] = req.AutoSplit

	result, err := h.submitter.Submit(c.Request.Context(), req)
	if err != nil {
		status, body := submitErrorResponse(err)
		formData["Alert"] = alertMessage(body)
		c.HTML(status, "train.html", h.page(c, "Train "+arch.Label, formData))
		return
	}

	job := toJobResponse(result)
	if result.Status != models.JobStarted {
		formData["Alert"] = "Training failed: " + job.Error
		formData["Job"] = job
		c.HTML(http.StatusBadGateway, "train.html", h.page(c, "Train "+arch.Label, formData))
		return
	}

	c.HTML(http.StatusOK, "started.html", h.page(c, job.StatusLabel, gin.H{
		"Arch":         arch,
		"Job":          job,
		"RefreshAfter": strconv.FormatFloat(result.RedirectAfter.Seconds(), 'f', -1, 64),
		"RefreshTo":    job.Redirect,
	}))
}

func alertMessage(body models.ErrorResponse) string {
	msg := body.Message
	// drop the sentinel prefix, keep the user-facing part
	if i := strings.LastIndex(msg, ": "); i >= 0 {
		msg = msg[i+2:]
	}
	if msg == "" {
		return body.Error
	}
	return msg
}

func (h *PagesHandler) Dashboard(c *gin.Context) {
	userID, ok := h.pageUser(c)
	if !ok {
		return
	}

	projects, err := h.resolver.Resolve(c.Request.Context(), userID)
	if err != nil {
		logger.Error("Failed to resolve projects", zap.String("user_id", userID.String()), zap.Error(err))
		c.HTML(http.StatusInternalServerError, "dashboard.html", h.page(c, "Dashboard", gin.H{
			"Alert": "Could not load your models. Please try again.",
		}))
		return
	}

	rows := make([]models.ProjectResponse, 0, len(projects))
	for _, p := range projects {
		rows = append(rows, toProjectResponse(p))
	}
	c.HTML(http.StatusOK, "dashboard.html", h.page(c, "Dashboard", gin.H{"Projects": rows}))
}

// ModelUsage needs both model_id and file; anything else goes back to the
// dashboard.
func (h *PagesHandler) ModelUsage(c *gin.Context) {
	userID, ok := h.pageUser(c)
	if !ok {
		return
	}

	modelID, file := c.Query("model_id"), c.Query("file")
	if modelID == "" || file == "" || services.DeriveProjectID(file) != modelID {
		c.Redirect(http.StatusFound, "/dashboard")
		return
	}

	project, err := h.resolver.Find(c.Request.Context(), userID, file)
	if err != nil {
		if !errors.Is(err, services.ErrProjectNotFound) {
			logger.Error("Failed to load project", zap.String("filename", file), zap.Error(err))
		}
		c.Redirect(http.StatusFound, "/dashboard")
		return
	}

	usage, err := services.Usage(project)
	if err != nil {
		logger.Error("Failed to render usage", zap.String("filename", file), zap.Error(err))
		c.Redirect(http.StatusFound, "/dashboard")
		return
	}
	c.HTML(http.StatusOK, "usage.html", h.page(c, usage.ModelType+" Integration", gin.H{"Usage": usage}))
}

// Login sends the browser to Supabase's Google OAuth flow.
func (h *PagesHandler) Login(c *gin.Context) {
	query := url.Values{}
	query.Set("provider", "google")
	query.Set("redirect_to", strings.TrimSuffix(h.cfg.BaseURL, "/")+"/auth/callback")

	c.Redirect(http.StatusFound, strings.TrimSuffix(h.cfg.SupabaseURL, "/")+"/auth/v1/authorize?"+query.Encode())
}

// Callback renders the page that hands the URL fragment token to Session.
func (h *PagesHandler) Callback(c *gin.Context) {
	c.HTML(http.StatusOK, "callback.html", h.page(c, "Signing in", nil))
}

// Session verifies a freshly issued access token, stores the token pair in the
// session cookies and creates the user's metadata row.
func (h *PagesHandler) Session(c *gin.Context) {
	var req models.SessionTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "invalid request", Message: err.Error()})
		return
	}

	userIDStr, err := h.verifier.Verify(c.Request.Context(), req.AccessToken)
	if err != nil {
		c.JSON(http.StatusUnauthorized, models.ErrorResponse{Error: "invalid token", Message: err.Error()})
		return
	}
	userID, err := uuid.Parse(userIDStr)
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "invalid user id"})
		return
	}

	if err := h.registry.EnsureUser(c.Request.Context(), userID); err != nil {
		logger.Error("Failed to ensure user data", zap.String("user_id", userIDStr), zap.Error(err))
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "failed to initialise user data",
			Message: err.Error(),
		})
		return
	}

	middleware.SetSessionCookies(c, h.cfg.SessionCookie, req.AccessToken, req.RefreshToken, h.cfg.Environment == "production")
	c.JSON(http.StatusOK, models.SessionResponse{UserID: userID.String()})
}

func (h *PagesHandler) Logout(c *gin.Context) {
	middleware.ClearSessionCookies(c, h.cfg.SessionCookie, h.cfg.Environment == "production")
	c.Redirect(http.StatusFound, "/")
}
