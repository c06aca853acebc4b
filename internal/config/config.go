package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"rmsbilling/internal/logger"
)

// defaultAPIBaseURL points at the hosted billing backend. Override with
// BILLING_API_URL for staging or local development.
const defaultAPIBaseURL = "https://rms-billing-backend.onrender.com/api/v1"

type Config struct {
	// Backend API Configuration
	APIBaseURL  string
	HTTPTimeout time.Duration

	// Token Storage Configuration
	TokenFile string

	// Logging Configuration
	LogLevel      string
	LogFormat     string
	LogTimeFormat string
	LogOutput     string
}

func Load() (*Config, error) {
	timeoutSecs, err := strconv.Atoi(getEnv("BILLING_HTTP_TIMEOUT", "30"))
	if err != nil {
		return nil, fmt.Errorf("config validation failed: BILLING_HTTP_TIMEOUT must be an integer number of seconds: %w", err)
	}

	config := &Config{
		APIBaseURL:    getEnv("BILLING_API_URL", defaultAPIBaseURL),
		HTTPTimeout:   time.Duration(timeoutSecs) * time.Second,
		TokenFile:     getEnv("BILLING_TOKEN_FILE", defaultTokenFile()),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		LogFormat:     getEnv("LOG_FORMAT", "console"),
		LogTimeFormat: getEnv("LOG_TIME_FORMAT", "2006-01-02T15:04:05Z07:00"),
		LogOutput:     getEnv("LOG_OUTPUT", "stdout"),
	}

	if err := config.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return config, nil
}

func (c *Config) validate() error {
	if c.APIBaseURL == "" {
		return fmt.Errorf("BILLING_API_URL is required")
	}
	if c.HTTPTimeout <= 0 {
		return fmt.Errorf("BILLING_HTTP_TIMEOUT must be greater than zero")
	}
	if c.TokenFile == "" {
		return fmt.Errorf("BILLING_TOKEN_FILE is required")
	}
	return nil
}

// GetLoggerConfig returns a logger configuration from the main config
func (c *Config) GetLoggerConfig() logger.LogConfig {
	return logger.LogConfig{
		Level:      c.LogLevel,
		Format:     c.LogFormat,
		TimeFormat: c.LogTimeFormat,
		Output:     c.LogOutput,
	}
}

func defaultTokenFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".rmsbilling-tokens.json"
	}
	return filepath.Join(home, ".rmsbilling", "tokens.json")
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
