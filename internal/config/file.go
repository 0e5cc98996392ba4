package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// FileConfig represents the structure of config.toml.
// Duration fields are plain seconds so the file stays free of parsing quirks.
type FileConfig struct {
	ServerPort         string `toml:"server_port"`
	UpstreamBaseURL    string `toml:"upstream_base_url"`
	UpstreamTimeout    *int   `toml:"upstream_timeout_seconds"`
	DefaultModel       string `toml:"default_model"`
	CredentialCooldown *int   `toml:"credential_cooldown_seconds"`
	CacheEnabled       *bool  `toml:"cache_enabled"`
	CacheTTL           *int   `toml:"cache_ttl_seconds"`
	RequestsPerMinute  *int   `toml:"requests_per_minute"`
	TokenFile          string `toml:"token_file"`
}

// LoadFile reads and parses the config.toml file.
// Returns an empty config (not an error) if the file doesn't exist.
func LoadFile() (*FileConfig, error) {
	configPath := ConfigFilePath()

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return &FileConfig{}, nil
	}

	var fileConfig FileConfig
	if _, err := toml.DecodeFile(configPath, &fileConfig); err != nil {
		return &FileConfig{}, fmt.Errorf("failed to parse config file %s: %w", configPath, err)
	}

	return &fileConfig, nil
}

// EnsureConfigFile creates a default config.toml if it doesn't exist.
func EnsureConfigFile() error {
	configPath := ConfigFilePath()

	if _, err := os.Stat(configPath); err == nil {
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	defaultConfig := `# gemrelay configuration
# Environment variables take priority over values in this file.

# Address to bind the HTTP server to
# server_port = ":8080"

# Gemini API endpoint
# upstream_base_url = "https://generativelanguage.googleapis.com/v1beta"

# Per-call upstream timeout in seconds
# upstream_timeout_seconds = 60

# Model used when a request omits one
# default_model = "gemini-2.0-flash-exp"

# How long a rate-limited credential sits out, in seconds
# credential_cooldown_seconds = 60

# Exact-match completion cache
# cache_enabled = false
# cache_ttl_seconds = 300

# Inbound requests per minute per client IP (0 = unlimited)
# requests_per_minute = 0

# Newline-delimited API key file imported on first run
# token_file = "~/.gemrelay/tokens.txt"
`

	if err := os.WriteFile(configPath, []byte(defaultConfig), 0644); err != nil {
		return fmt.Errorf("failed to write default config: %w", err)
	}

	return nil
}
