// Package paths provides a single source of truth for herd file paths.
// All helpers honor the HERD_DIR override for isolated testing.
//
// Path resolution precedence:
//  1. HERD_DIR env var sets the base directory (derives log/config paths)
//  2. Default behavior (~/.herd, ~/.config/herd) when unset
package paths

import (
	"os"
	"path/filepath"
)

// EnvHerdDir is the base directory override (e.g., /tmp/herd-test).
const EnvHerdDir = "HERD_DIR"

// BaseDir returns the herd data directory (~/.herd by default).
func BaseDir() (string, error) {
	if dir := os.Getenv(EnvHerdDir); dir != "" {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".herd"), nil
}

// LogPath returns the path to the herd log file.
func LogPath() (string, error) {
	dir, err := BaseDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "herd.log"), nil
}

// ConfigDir returns the herd config directory (~/.config/herd by default).
// When HERD_DIR is set, returns HERD_DIR/config instead.
func ConfigDir() (string, error) {
	if dir := os.Getenv(EnvHerdDir); dir != "" {
		return filepath.Join(dir, "config"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "herd"), nil
}

// ConfigPath returns the path to the global herd config file
// (~/.config/herd/config.toml by default, or HERD_DIR/config/config.toml).
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}
