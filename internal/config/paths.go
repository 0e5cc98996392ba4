package config

import (
	"os"
	"path/filepath"
)

// DataDir returns the directory where gemrelay stores its data.
// Override with the DATA_DIR environment variable; defaults to ~/.gemrelay.
func DataDir() string {
	if dir := os.Getenv("DATA_DIR"); dir != "" {
		return dir
	}

	home, err := os.UserHomeDir()
	if err != nil {
		// Fall back to current directory if home can't be determined
		return ".gemrelay"
	}

	return filepath.Join(home, ".gemrelay")
}

// DBPath returns the full path to the SQLite database file.
func DBPath() string {
	return filepath.Join(DataDir(), "gemrelay.db")
}

// ConfigFilePath returns the full path to the config.toml file.
func ConfigFilePath() string {
	return filepath.Join(DataDir(), "config.toml")
}

// TokenFilePath returns the default location of the key import file.
func TokenFilePath() string {
	return filepath.Join(DataDir(), "tokens.txt")
}

// EnsureDataDir creates the data directory if it doesn't exist.
func EnsureDataDir() error {
	return os.MkdirAll(DataDir(), 0755)
}
