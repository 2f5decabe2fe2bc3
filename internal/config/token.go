package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// TokenEnvVar names the environment variable consulted last when resolving a token.
const TokenEnvVar = "FSNAV_TOKEN"

// ResolveToken returns an access token and where it came from.
//
// Priority (highest to lowest):
//  1. flag value
//  2. [server] token in the config file
//  3. token file (~/.config/fsnav/token) written by 'config init'
//  4. FSNAV_TOKEN environment variable
//
// Both results are empty when no source provides a token; the client then
// browses as the guest user.
func ResolveToken(flagToken string, cfg *Config, tokenPath string) (string, string) {
	if flagToken != "" {
		return flagToken, "flag"
	}
	if cfg != nil && cfg.Token != "" {
		return cfg.Token, "config"
	}
	if tokenPath != "" {
		if token, err := ReadTokenFile(tokenPath); err == nil {
			return token, "token-file"
		}
	}
	if env := os.Getenv(TokenEnvVar); env != "" {
		return env, "environment"
	}
	return "", ""
}

// ReadTokenFile reads a token from a file. Whitespace is trimmed.
// Warns on stderr when the file is readable by group or others.
func ReadTokenFile(path string) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", fmt.Errorf("failed to stat token file: %w", err)
	}
	if mode := info.Mode().Perm(); mode&0077 != 0 {
		fmt.Fprintf(os.Stderr, "Warning: Token file %s has insecure permissions %04o. Consider using 'chmod 600 %s'\n", path, mode, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read token file: %w", err)
	}
	token := strings.TrimSpace(string(data))
	if token == "" {
		return "", fmt.Errorf("token file is empty")
	}
	return token, nil
}

// WriteTokenFile writes a token to a file with 0600 permissions.
func WriteTokenFile(path, token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return fmt.Errorf("cannot write empty token")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create token directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(token+"\n"), 0600); err != nil {
		return fmt.Errorf("failed to write token file: %w", err)
	}
	return nil
}
