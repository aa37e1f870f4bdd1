package main

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"quicktrain-backend/internal/config"
	"quicktrain-backend/internal/handlers"
	"quicktrain-backend/internal/middleware"
)

type routeHandlers struct {
	pages    *handlers.PagesHandler
	session  *handlers.SessionHandler
	training *handlers.TrainingHandler
	projects *handlers.ProjectsHandler

	// nil disables session renewal
	refresher *middleware.SessionRefresher
}

func setupRouter(cfg *config.Config, verifier middleware.TokenVerifier, h routeHandlers) *gin.Engine {
	router := gin.New()
	router.Use(middleware.RequestLogger())
	router.Use(gin.Recovery())
	router.SetHTMLTemplate(handlers.Templates())

	// Health check (no auth)
	router.GET("/health", handlers.HealthHandler)

	// Swagger documentation
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Public pages
	public := router.Group("/")
	public.Use(middleware.OptionalSession(verifier, cfg.SessionCookie))
	public.GET("/", h.pages.Landing)
	public.GET("/docs", h.pages.Docs)

	// Sign-in glue
	auth := router.Group("/auth")
	auth.GET("/login", h.pages.Login)
	auth.GET("/callback", h.pages.Callback)
	auth.POST("/session", h.pages.Session)
	auth.GET("/logout", h.pages.Logout)

	// Pages behind a session
	pages := router.Group("/")
	pages.Use(middleware.RequireSession(verifier, cfg.SessionCookie, h.refresher))
	pages.GET("/train/:model_id", h.pages.TrainForm)
	pages.POST("/train/:model_id", h.pages.TrainSubmit)
	pages.GET("/dashboard", h.pages.Dashboard)
	pages.GET("/model-usage", h.pages.ModelUsage)

	// API routes
	api := router.Group("/api/v1")
	api.Use(middleware.AuthMiddleware(verifier, cfg.SessionCookie))
	api.GET("/session", h.session.GetSession)
	api.GET("/models", handlers.ListModels)
	api.POST("/train/:model_id", h.training.Submit)
	api.GET("/projects", h.projects.ListProjects)
	api.GET("/projects/:filename/usage", h.projects.GetUsage)

	return router
}
