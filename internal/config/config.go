package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	// Supabase
	SupabaseURL            string
	SupabasePublishableKey string
	SupabaseJWTSecret      string
	SupabaseStorageBucket  string
	ModelsPrefix           string

	// Trainer
	TrainerTriggerURL string

	// Database
	DatabaseURL string

	// Pages
	SessionCookie    string
	RedirectDelay    time.Duration
	StatusProbeLimit int

	// Logging
	LogLevel  string
	LogFormat string

	// Server
	Port        string
	Environment string
	BaseURL     string
}

var defaults = map[string]any{
	"SUPABASE_STORAGE_BUCKET": "images-bucket",
	"MODELS_PREFIX":           "models/",
	"TRAINER_TRIGGER_URL":     "https://quicktrain.onrender.com/trigger-training",
	"SESSION_COOKIE":          "sb-access-token",
	"REDIRECT_DELAY":          "2s",
	"STATUS_PROBE_LIMIT":      0,
	"LOG_LEVEL":               "info",
	"LOG_FORMAT":              "console",
	"PORT":                    "8080",
	"ENVIRONMENT":             "development",
	"BASE_URL":                "http://localhost:8080",
}

// Load reads configuration from the environment and, when present, from a
// config.yaml in the working directory. Environment variables win.
func Load() (*Config, error) {
	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	for _, key := range []string{"SUPABASE_URL", "SUPABASE_PUBLISHABLE_KEY", "SUPABASE_JWT_SECRET", "DATABASE_URL"} {
		v.SetDefault(key, "")
	}
	v.AutomaticEnv()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	cfg := FromViper(v)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func FromViper(v *viper.Viper) *Config {
	return &Config{
		SupabaseURL:            v.GetString("SUPABASE_URL"),
		SupabasePublishableKey: v.GetString("SUPABASE_PUBLISHABLE_KEY"),
		SupabaseJWTSecret:      v.GetString("SUPABASE_JWT_SECRET"),
		SupabaseStorageBucket:  v.GetString("SUPABASE_STORAGE_BUCKET"),
		ModelsPrefix:           v.GetString("MODELS_PREFIX"),

		TrainerTriggerURL: v.GetString("TRAINER_TRIGGER_URL"),

		DatabaseURL: v.GetString("DATABASE_URL"),

		SessionCookie:    v.GetString("SESSION_COOKIE"),
		RedirectDelay:    v.GetDuration("REDIRECT_DELAY"),
		StatusProbeLimit: v.GetInt("STATUS_PROBE_LIMIT"),

		LogLevel:  v.GetString("LOG_LEVEL"),
		LogFormat: v.GetString("LOG_FORMAT"),

		Port:        v.GetString("PORT"),
		Environment: v.GetString("ENVIRONMENT"),
		BaseURL:     v.GetString("BASE_URL"),
	}
}

func (c *Config) Validate() error {
	if c.SupabaseURL == "" {
		return fmt.Errorf("SUPABASE_URL is required")
	}
	if c.SupabasePublishableKey == "" {
		return fmt.Errorf("SUPABASE_PUBLISHABLE_KEY is required")
	}
	if c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	if c.TrainerTriggerURL == "" {
		return fmt.Errorf("TRAINER_TRIGGER_URL is required")
	}
	if c.StatusProbeLimit < 0 {
		return fmt.Errorf("STATUS_PROBE_LIMIT must not be negative")
	}
	return nil
}
