// @title           QuickTrain Backend API
// @version         1.0.0
// @description     Backend API for training image, text and tabular models from uploaded datasets. It handles dataset uploads, training job submission and project status, with job progress broadcast over Supabase Realtime.

// @host      localhost:8080
// @BasePath  /

// @securityDefinitions.apikey Bearer
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and the Supabase access token.

package main

import (
	"context"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"quicktrain-backend/docs"
	"quicktrain-backend/internal/config"
	"quicktrain-backend/internal/database"
	"quicktrain-backend/internal/handlers"
	"quicktrain-backend/internal/logger"
	"quicktrain-backend/internal/middleware"
	"quicktrain-backend/internal/services"
	"quicktrain-backend/internal/supabase"
	"quicktrain-backend/internal/trainer"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load configuration", zap.Error(err))
	}

	if err := logger.Init(cfg.LogLevel, cfg.LogFormat); err != nil {
		logger.Fatal("Failed to initialize logger", zap.Error(err))
	}
	defer logger.Sync()

	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Point the Swagger UI at the public host
	if cfg.BaseURL != "" {
		if baseURL, err := url.Parse(cfg.BaseURL); err == nil && baseURL.Host != "" {
			docs.SwaggerInfo.Host = baseURL.Host
			if baseURL.Scheme == "https" {
				docs.SwaggerInfo.Schemes = []string{"https", "http"}
			} else {
				docs.SwaggerInfo.Schemes = []string{"http", "https"}
			}
		}
	}

	// Initialize Supabase clients
	supabaseClient, err := supabase.NewClient(cfg)
	if err != nil {
		logger.Fatal("Failed to initialize Supabase client", zap.Error(err))
	}

	storageClient, err := supabase.NewStorageClient(cfg.SupabaseURL, cfg.SupabasePublishableKey, cfg.SupabaseStorageBucket)
	if err != nil {
		logger.Fatal("Failed to initialize storage client", zap.Error(err))
	}

	realtimeClient := supabase.NewRealtimeClient(cfg.SupabaseURL, cfg.SupabasePublishableKey)

	dbClient, err := supabase.NewDatabaseClient(cfg.DatabaseURL)
	if err != nil {
		logger.Fatal("Failed to initialize database client", zap.Error(err))
	}
	defer dbClient.Close()

	if err := database.NewMigrator(dbClient.DB()).Run(context.Background()); err != nil {
		logger.Fatal("Migration failed", zap.Error(err))
	}

	var verifier middleware.TokenVerifier
	if cfg.SupabaseJWTSecret != "" {
		verifier = middleware.NewHS256Verifier(cfg.SupabaseJWTSecret)
	} else {
		logger.Warn("SUPABASE_JWT_SECRET not set, verifying tokens through Supabase Auth")
		verifier = middleware.NewSupabaseVerifier(supabaseClient)
	}

	trainingService := services.NewTrainingService(
		storageClient,
		dbClient,
		trainer.NewClient(cfg.TrainerTriggerURL),
		realtimeClient,
		cfg.RedirectDelay,
	)
	statusService := services.NewStatusService(dbClient, storageClient, cfg.ModelsPrefix, cfg.StatusProbeLimit)

	router := setupRouter(cfg, verifier, routeHandlers{
		pages:    handlers.NewPagesHandler(cfg, verifier, dbClient, trainingService, statusService),
		session:  handlers.NewSessionHandler(dbClient),
		training: handlers.NewTrainingHandler(trainingService),
		projects: handlers.NewProjectsHandler(statusService),

		refresher: middleware.NewSessionRefresher(supabaseClient, cfg.Environment == "production"),
	})

	logger.Info("Server starting", zap.String("port", cfg.Port), zap.String("trainer", cfg.TrainerTriggerURL))
	if err := http.ListenAndServe(":"+cfg.Port, router); err != nil {
		logger.Fatal("Failed to start server", zap.Error(err))
	}
}
