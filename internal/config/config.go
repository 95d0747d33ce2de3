// Package config loads runtime configuration from the environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds all runtime settings.
type Config struct {
	Scraper ScraperConfig
	Logging LoggingConfig
}

// ScraperConfig bounds the HTTP workload.
type ScraperConfig struct {
	MaxConcurrency int
	Timeout        time.Duration
	DelayMin       time.Duration
	DelayMax       time.Duration
}

// LoggingConfig selects log verbosity and output format.
type LoggingConfig struct {
	Level  string
	Format string
}

// Load reads configuration from environment variables, falling back to
// defaults for anything unset.
func Load() *Config {
	return &Config{
		Scraper: ScraperConfig{
			MaxConcurrency: getIntOrDefault("SCRAPER_MAX_CONCURRENCY", 20),
			Timeout:        getDurationOrDefault("SCRAPER_TIMEOUT", 10*time.Second),
			DelayMin:       getDurationOrDefault("SCRAPER_DELAY_MIN", 0),
			DelayMax:       getDurationOrDefault("SCRAPER_DELAY_MAX", 0),
		},
		Logging: LoggingConfig{
			Level:  getEnvOrDefault("LOG_LEVEL", "info"),
			Format: getEnvOrDefault("LOG_FORMAT", "json"),
		},
	}
}

// Validate checks settings for consistency.
func (c *Config) Validate() error {
	if c.Scraper.MaxConcurrency < 1 {
		return fmt.Errorf("SCRAPER_MAX_CONCURRENCY must be at least 1, got %d", c.Scraper.MaxConcurrency)
	}
	if c.Scraper.Timeout <= 0 {
		return fmt.Errorf("SCRAPER_TIMEOUT must be positive, got %s", c.Scraper.Timeout)
	}
	if c.Scraper.DelayMin < 0 || c.Scraper.DelayMax < 0 {
		return fmt.Errorf("scraper delays must not be negative")
	}
	if c.Scraper.DelayMax > 0 && c.Scraper.DelayMax < c.Scraper.DelayMin {
		return fmt.Errorf("SCRAPER_DELAY_MAX (%s) must not be below SCRAPER_DELAY_MIN (%s)", c.Scraper.DelayMax, c.Scraper.DelayMin)
	}
	switch c.Logging.Format {
	case "json", "text":
	default:
		return fmt.Errorf("LOG_FORMAT must be json or text, got %q", c.Logging.Format)
	}
	return nil
}

func getEnvOrDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getIntOrDefault(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return fallback
}

func getDurationOrDefault(key string, fallback time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return fallback
}
