// Package config provides application configuration.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration.
type Config struct {
	Port        string
	FrontendURL string
	DBPath      string
	SessionTTL  time.Duration

	LLM    LLMConfig
	Google GoogleConfig
}

// LLMConfig controls the completion collaborator.
type LLMConfig struct {
	APIKey         string
	BaseURL        string
	Model          string
	AttemptTimeout time.Duration
	MaxAttempts    int
}

// Configured reports whether the completion service credential is present.
func (c LLMConfig) Configured() bool {
	return c.APIKey != ""
}

// GoogleConfig holds the service account credentials for Drive/Docs export.
type GoogleConfig struct {
	ClientEmail string
	PrivateKey  string
}

// Configured reports whether both credential parts are present.
func (c GoogleConfig) Configured() bool {
	return c.ClientEmail != "" && c.PrivateKey != ""
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	maxAttempts := getEnvInt("LLM_MAX_ATTEMPTS", 3)
	if maxAttempts <= 0 {
		maxAttempts = 3
	}

	cfg := &Config{
		Port:        getEnv("PORT", "8080"),
		FrontendURL: getEnv("FRONTEND_URL", ""),
		DBPath:      getEnv("DB_PATH", "./data/planner.db"),
		SessionTTL:  getEnvDuration("SESSION_TTL", 24*time.Hour),
		LLM: LLMConfig{
			APIKey:         getEnv("OPENAI_API_KEY", ""),
			BaseURL:        getEnv("OPENAI_BASE_URL", ""),
			Model:          getEnv("LLM_MODEL", "gpt-4o-mini"),
			AttemptTimeout: getEnvDuration("LLM_TIMEOUT", 45*time.Second),
			MaxAttempts:    maxAttempts,
		},
		Google: GoogleConfig{
			ClientEmail: getEnv("GOOGLE_CLIENT_EMAIL", ""),
			PrivateKey:  getEnv("GOOGLE_PRIVATE_KEY", ""),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks that all required configuration fields are set. Missing
// external-service credentials are not fatal at startup; the affected route
// rejects requests with a configuration error instead.
func (c *Config) Validate() error {
	if c.Port == "" {
		return fmt.Errorf("PORT cannot be empty")
	}
	if c.DBPath == "" {
		return fmt.Errorf("DB_PATH cannot be empty")
	}
	if c.SessionTTL <= 0 {
		return fmt.Errorf("SESSION_TTL must be positive")
	}
	if c.LLM.Model == "" {
		return fmt.Errorf("LLM_MODEL cannot be empty")
	}
	if c.LLM.AttemptTimeout <= 0 {
		return fmt.Errorf("LLM_TIMEOUT must be positive")
	}
	return nil
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.FrontendURL == "" ||
		strings.Contains(c.FrontendURL, "localhost") ||
		strings.Contains(c.FrontendURL, "127.0.0.1")
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return fallback
	}
	return n
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	d, err := time.ParseDuration(strings.TrimSpace(value))
	if err != nil {
		return fallback
	}
	return d
}
