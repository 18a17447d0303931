// Package config loads server settings from the environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds runtime settings for the analysis server.
type Config struct {
	LogLevel        string
	AnalysisTimeout time.Duration
	RawConverter    string
	CacheEntries    int
	DominantColors  int
	Seed            int64
}

// Default returns the settings used when no environment overrides exist.
func Default() *Config {
	return &Config{
		LogLevel:        "info",
		AnalysisTimeout: 60 * time.Second,
		RawConverter:    "dcraw",
		CacheEntries:    8,
		DominantColors:  5,
		Seed:            42,
	}
}

// LoadFromEnv reads IMAGE_MCP_* variables over the defaults and validates
// the result.
func LoadFromEnv() (*Config, error) {
	def := Default()
	cfg := &Config{
		LogLevel:     strings.ToLower(getEnvOrDefault("IMAGE_MCP_LOG_LEVEL", def.LogLevel)),
		RawConverter: getEnvOrDefault("IMAGE_MCP_RAW_CONVERTER", def.RawConverter),
	}

	var err error
	if cfg.AnalysisTimeout, err = parseDurationOrDefault("IMAGE_MCP_ANALYSIS_TIMEOUT", def.AnalysisTimeout); err != nil {
		return nil, err
	}
	cacheEntries, err := parseIntOrDefault("IMAGE_MCP_CACHE_ENTRIES", int64(def.CacheEntries))
	if err != nil {
		return nil, err
	}
	cfg.CacheEntries = int(cacheEntries)
	colors, err := parseIntOrDefault("IMAGE_MCP_DOMINANT_COLORS", int64(def.DominantColors))
	if err != nil {
		return nil, err
	}
	cfg.DominantColors = int(colors)
	if cfg.Seed, err = parseIntOrDefault("IMAGE_MCP_SEED", def.Seed); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that every setting is in range.
func (c *Config) Validate() error {
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid IMAGE_MCP_LOG_LEVEL: %q", c.LogLevel)
	}
	if c.AnalysisTimeout <= 0 {
		return fmt.Errorf("IMAGE_MCP_ANALYSIS_TIMEOUT must be > 0 (got %s)", c.AnalysisTimeout)
	}
	if strings.TrimSpace(c.RawConverter) == "" {
		return fmt.Errorf("IMAGE_MCP_RAW_CONVERTER must not be empty")
	}
	if c.CacheEntries < 0 {
		return fmt.Errorf("IMAGE_MCP_CACHE_ENTRIES must be >= 0 (got %d)", c.CacheEntries)
	}
	if c.DominantColors < 1 {
		return fmt.Errorf("IMAGE_MCP_DOMINANT_COLORS must be >= 1 (got %d)", c.DominantColors)
	}
	return nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func parseDurationOrDefault(key string, defaultValue time.Duration) (time.Duration, error) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return defaultValue, nil
	}
	duration, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return duration, nil
}

func parseIntOrDefault(key string, defaultValue int64) (int64, error) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return defaultValue, nil
	}
	intValue, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return intValue, nil
}
