// Package config loads service settings from environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	HTTPAddr  string
	LogLevel  string
	LogFormat string

	// DatasetURL is the primary TSV export. Required.
	DatasetURL string
	// CoordsURL is the province-capital reference CSV. Optional; when
	// empty the coordinate fallback path is disabled.
	CoordsURL string
	// SnapshotPath is a precomputed gzip payload served when a live build
	// fails. Optional.
	SnapshotPath string

	FetchTimeout    time.Duration
	ShutdownTimeout time.Duration

	// CacheTTL bounds payload staleness and drives the response
	// Cache-Control max-age.
	CacheTTL time.Duration

	// Breakdown configuration (see domain.Options).
	BreakdownField string
	BreakdownLimit int
}

// Load reads configuration from environment variables, applying defaults
// where unset.
func Load() (*Config, error) {
	fetchTimeout, err := envDuration("FETCH_TIMEOUT", 30*time.Second)
	if err != nil {
		return nil, err
	}
	shutdownTimeout, err := envDuration("SHUTDOWN_TIMEOUT", 10*time.Second)
	if err != nil {
		return nil, err
	}
	// CACHE_TTL=0 keeps a built payload for the life of the process.
	cacheTTL, err := envDurationAllowZero("CACHE_TTL", 5*time.Minute)
	if err != nil {
		return nil, err
	}
	breakdownLimit, err := envInt("BREAKDOWN_LIMIT", 8)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		HTTPAddr:  envOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:  envOrDefault("LOG_LEVEL", "info"),
		LogFormat: envOrDefault("LOG_FORMAT", "json"),

		DatasetURL:   os.Getenv("DATASET_URL"),
		CoordsURL:    os.Getenv("COORDS_URL"),
		SnapshotPath: os.Getenv("SNAPSHOT_PATH"),

		FetchTimeout:    fetchTimeout,
		ShutdownTimeout: shutdownTimeout,
		CacheTTL:        cacheTTL,

		BreakdownField: envOrDefault("BREAKDOWN_FIELD", "environmental site"),
		BreakdownLimit: breakdownLimit,
	}

	if cfg.DatasetURL == "" {
		return nil, errors.New("DATASET_URL is required")
	}

	return cfg, nil
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) (time.Duration, error) {
	s := os.Getenv(key)
	if s == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s: %q", key, s)
	}
	return d, nil
}

func envDurationAllowZero(key string, fallback time.Duration) (time.Duration, error) {
	s := os.Getenv(key)
	if s == "" {
		return fallback, nil
	}
	if s == "0" {
		return 0, nil
	}
	return envDuration(key, fallback)
}

func envInt(key string, fallback int) (int, error) {
	s := os.Getenv(key)
	if s == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("invalid %s: %q", key, s)
	}
	return n, nil
}
