package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/adaptive-testing/quizclient/internal/validator"
)

type Config struct {
	APIBaseURL  string        `json:"api_base_url" validate:"required,url"`
	APIToken    string        `json:"api_token"`
	HTTPTimeout time.Duration `json:"http_timeout"`
	HistoryDB   string        `json:"history_db" validate:"required"`
	Environment string        `json:"environment" validate:"oneof=development production"`
}

// LoadConfig reads configuration from the environment, with .env as an
// optional overlay for local development.
func LoadConfig() (*Config, error) {
	// Absence of a .env file is fine; real deployments set the
	// environment directly.
	_ = godotenv.Load()

	timeout, err := time.ParseDuration(getEnv("QUIZ_HTTP_TIMEOUT", "30s"))
	if err != nil {
		return nil, fmt.Errorf("invalid QUIZ_HTTP_TIMEOUT: %w", err)
	}

	cfg := &Config{
		APIBaseURL:  getEnv("QUIZ_API_BASE_URL", "http://localhost:8000/api"),
		APIToken:    getEnv("QUIZ_API_TOKEN", ""),
		HTTPTimeout: timeout,
		HistoryDB:   getEnv("QUIZ_HISTORY_DB", "quiz_history.db"),
		Environment: getEnv("ENVIRONMENT", "development"),
	}

	if err := validator.New().Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}
