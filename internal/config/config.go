// Package config loads gateway configuration from environment and file.
package config

import (
	"os"
	"strconv"
	"time"

	"github.com/gemrelay/gemrelay/internal/upstream"
)

// Config holds application configuration.
// Priority: env vars → config.toml → defaults
type Config struct {
	// ServerPort is the address to bind the server to (e.g., ":8080")
	ServerPort string

	// UpstreamBaseURL is the Gemini API endpoint
	UpstreamBaseURL string

	// UpstreamTimeout bounds each generateContent call
	UpstreamTimeout time.Duration

	// DefaultModel is used when a request omits the model field
	DefaultModel string

	// CredentialCooldown is how long a rate-limited credential sits out
	CredentialCooldown time.Duration

	// CacheEnabled turns on the exact-match completion cache
	CacheEnabled bool

	// CacheTTL is how long cached completions stay valid
	CacheTTL time.Duration

	// RequestsPerMinute limits inbound requests per client IP (0 = unlimited)
	RequestsPerMinute int

	// TokenFile is the newline-delimited key file imported on first run
	TokenFile string
}

// Load reads configuration from file and environment variables.
// Environment variables override file config values.
func Load() *Config {
	fileConfig, _ := LoadFile() // Ignore error, use defaults

	return &Config{
		ServerPort:         getEnvOrFile("SERVER_PORT", fileConfig.ServerPort, ":8080"),
		UpstreamBaseURL:    getEnvOrFile("UPSTREAM_BASE_URL", fileConfig.UpstreamBaseURL, upstream.DefaultBaseURL),
		UpstreamTimeout:    getEnvDurationOrFile("UPSTREAM_TIMEOUT", fileConfig.UpstreamTimeout, 60*time.Second),
		DefaultModel:       getEnvOrFile("DEFAULT_MODEL", fileConfig.DefaultModel, "gemini-2.0-flash-exp"),
		CredentialCooldown: getEnvDurationOrFile("CREDENTIAL_COOLDOWN", fileConfig.CredentialCooldown, 60*time.Second),
		CacheEnabled:       getEnvBoolOrFile("CACHE_ENABLED", fileConfig.CacheEnabled, false),
		CacheTTL:           getEnvDurationOrFile("CACHE_TTL", fileConfig.CacheTTL, 5*time.Minute),
		RequestsPerMinute:  getEnvIntOrFile("REQUESTS_PER_MINUTE", fileConfig.RequestsPerMinute, 0),
		TokenFile:          getEnvOrFile("TOKEN_FILE", fileConfig.TokenFile, TokenFilePath()),
	}
}

// getEnvOrFile returns env value, file value, or default (in priority order)
func getEnvOrFile(key, fileValue, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	if fileValue != "" {
		return fileValue
	}
	return defaultValue
}

// getEnvBoolOrFile returns env bool, file bool, or default (in priority order)
func getEnvBoolOrFile(key string, fileValue *bool, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return value == "true" || value == "1" || value == "yes"
	}
	if fileValue != nil {
		return *fileValue
	}
	return defaultValue
}

// getEnvIntOrFile returns env int, file int, or default (in priority order)
func getEnvIntOrFile(key string, fileValue *int, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	if fileValue != nil {
		return *fileValue
	}
	return defaultValue
}

// getEnvDurationOrFile returns env duration, file duration, or default.
// File values are plain seconds; env values use Go duration syntax.
func getEnvDurationOrFile(key string, fileSeconds *int, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil && d > 0 {
			return d
		}
	}
	if fileSeconds != nil && *fileSeconds > 0 {
		return time.Duration(*fileSeconds) * time.Second
	}
	return defaultValue
}
