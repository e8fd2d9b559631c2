package config

import (
	"os"
	"path/filepath"
)

// PalPath returns the root directory for pal data.
// It uses $PAL_PATH if set, otherwise defaults to ~/.pal.
func PalPath() string {
	if v := os.Getenv("PAL_PATH"); v != "" {
		return v
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", ".pal")
	}
	return filepath.Join(home, ".pal")
}

// ConfigPath returns the path to the pal config file.
func ConfigPath() string {
	return filepath.Join(PalPath(), "config.jsonc")
}

// DotenvPath returns the path to the pal .env file.
func DotenvPath() string {
	return filepath.Join(PalPath(), ".env")
}

// DatabasePath returns the default SQLite database location.
func DatabasePath() string {
	return filepath.Join(PalPath(), "pal.db")
}

// HeartbeatPath returns the path of the liveness file written by `pal serve`.
func HeartbeatPath() string {
	return filepath.Join(PalPath(), "heartbeat.json")
}
