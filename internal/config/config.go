package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds everything the client needs to talk to the list API.
type Config struct {
	APIURL       string
	ShareBaseURL string
	PollInterval time.Duration
	Timeout      time.Duration
	LogLevel     string
	LogFile      string
	Theme        string
	Home         string // credentials and log live here
}

// Load reads an optional .env file and then the environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	home, err := defaultHome()
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		APIURL:       strings.TrimRight(getEnvOrDefault("LISTIFY_API_URL", "http://localhost:8000"), "/"),
		ShareBaseURL: strings.TrimRight(getEnvOrDefault("LISTIFY_SHARE_BASE_URL", "https://listify.space"), "/"),
		LogLevel:     getEnvOrDefault("LISTIFY_LOG_LEVEL", "info"),
		Theme:        getEnvOrDefault("LISTIFY_THEME", "classic"),
		Home:         getEnvOrDefault("LISTIFY_HOME", home),
	}
	cfg.LogFile = getEnvOrDefault("LISTIFY_LOG_FILE", filepath.Join(cfg.Home, "listify.log"))

	if cfg.PollInterval, err = durationEnv("LISTIFY_POLL_INTERVAL", 3*time.Second); err != nil {
		return nil, err
	}
	if cfg.Timeout, err = durationEnv("LISTIFY_TIMEOUT", 15*time.Second); err != nil {
		return nil, err
	}
	return cfg, nil
}

func defaultHome() (string, error) {
	h, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("home: %w", err)
	}
	return filepath.Join(h, ".listify"), nil
}

func durationEnv(key string, def time.Duration) (time.Duration, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return def, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("%s must be positive, got %s", key, d)
	}
	return d, nil
}

// getEnvOrDefault returns environment variable value or default if not set
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
