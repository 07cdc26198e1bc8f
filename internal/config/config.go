// Package config provides environment-driven configuration for the sync subsystem.
package config

import (
	"os"
	"path/filepath"
	"time"
)

// Queue backend selection values for LIFELEDGER_QUEUE_BACKEND.
const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
)

// Config holds the sync subsystem settings.
type Config struct {
	APIBaseURL     string        // backend base URL
	DataDir        string        // where the queue is persisted
	QueueBackend   string        // file or sqlite
	LogLevel       string        // logrus level string
	ProbeInterval  time.Duration // connectivity probe period
	DebounceWindow time.Duration // offline-to-online debounce
}

// Default returns the built-in defaults.
func Default() *Config {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return &Config{
		APIBaseURL:     "http://localhost:8080",
		DataDir:        filepath.Join(home, ".lifeledger"),
		QueueBackend:   BackendFile,
		LogLevel:       "info",
		ProbeInterval:  30 * time.Second,
		DebounceWindow: 2 * time.Second,
	}
}

// FromEnv builds a Config from LIFELEDGER_* environment variables,
// falling back to defaults for anything unset.
func FromEnv() *Config {
	cfg := Default()

	cfg.APIBaseURL = getEnv("LIFELEDGER_API_BASE_URL", cfg.APIBaseURL)
	cfg.DataDir = getEnv("LIFELEDGER_DATA_DIR", cfg.DataDir)
	cfg.QueueBackend = getEnv("LIFELEDGER_QUEUE_BACKEND", cfg.QueueBackend)
	cfg.LogLevel = getEnv("LIFELEDGER_LOG_LEVEL", cfg.LogLevel)
	cfg.ProbeInterval = getDuration("LIFELEDGER_PROBE_INTERVAL", cfg.ProbeInterval)
	cfg.DebounceWindow = getDuration("LIFELEDGER_DEBOUNCE_WINDOW", cfg.DebounceWindow)

	return cfg
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}
