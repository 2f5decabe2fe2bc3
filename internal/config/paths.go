package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
)

// ConfigDir is the standard configuration directory name
const ConfigDir = "fsnav"

// configDir returns the platform-appropriate config directory.
// - Windows: %APPDATA%\fsnav
// - Unix: ~/.config/fsnav
func configDir() string {
	if runtime.GOOS == "windows" {
		if appData := os.Getenv("APPDATA"); appData != "" {
			return filepath.Join(appData, ConfigDir)
		}
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, ".config", ConfigDir)
	}
	return ""
}

// DefaultConfigPath returns the default INI config path.
func DefaultConfigPath() string {
	dir := configDir()
	if dir == "" {
		return "fsnav.ini"
	}
	return filepath.Join(dir, "config")
}

// DefaultTokenPath returns the default token file path, or "" when the
// home directory cannot be determined.
func DefaultTokenPath() string {
	dir := configDir()
	if dir == "" {
		return ""
	}
	return filepath.Join(dir, "token")
}

// LogDirectory returns the directory used for the optional rotating log file.
func LogDirectory() string {
	dir := configDir()
	if dir == "" {
		return filepath.Join(os.TempDir(), "fsnav-logs")
	}
	return filepath.Join(dir, "logs")
}

// EnsureConfigDir creates the config directory if it doesn't exist
func EnsureConfigDir() error {
	dir := configDir()
	if dir == "" {
		return fmt.Errorf("could not determine config directory")
	}
	return os.MkdirAll(dir, 0700)
}
