// Package config provides configuration utilities for the application.
package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// ExpandPath expands ~ and environment variables in a file path.
// It handles both ~ for home directory and $VAR style environment variables.
func ExpandPath(path string) string {
	if path == "" {
		return path
	}

	// First expand tilde if present
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err == nil {
			path = filepath.Join(home, path[2:])
		}
	} else if path == "~" {
		home, err := os.UserHomeDir()
		if err == nil {
			path = home
		}
	}

	// Then expand environment variables
	return os.ExpandEnv(path)
}

// DatabasePath resolves the SQLite database location: the storage.path key
// when set, otherwise ~/.local/share/till/till.db. ":memory:" passes
// through untouched.
func DatabasePath() string {
	if path := viper.GetString("storage.path"); path != "" {
		if path == ":memory:" {
			return path
		}
		return ExpandPath(path)
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "till.db"
	}
	return filepath.Join(home, ".local", "share", "till", "till.db")
}
