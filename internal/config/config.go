// Package config provides configuration management for fsnav.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	"github.com/mitchellh/go-homedir"
	"gopkg.in/ini.v1"

	"github.com/fsnav/fsnav/internal/constants"
)

// Pagination modes understood by the browser.
const (
	PaginationClassic  = "pagination"
	PaginationLoadMore = "load_more"
	PaginationAuto     = "auto_load_more"
)

// Proxy modes
const (
	ProxyModeNone   = "no-proxy"
	ProxyModeSystem = "system"
	ProxyModeBasic  = "basic"
	ProxyModeNTLM   = "ntlm"
)

// Config is the client configuration.
//
// INI format:
//
//	[server]
//	url = https://files.example.com
//	token = <token>
//	rate_limit = 10
//
//	[browse]
//	pagination = load_more
//	page_size = 100
//	history_size = 256
//
//	[proxy]
//	mode = no-proxy
//	host = proxy.corp
//	port = 8080
//	user =
//	password =
//	no_proxy = localhost,.internal
//	warmup = false
//
//	[log]
//	file = ~/.config/fsnav/logs/fsnav.log
//	level = info
type Config struct {
	ServerURL string
	Token     string

	// RateLimit caps API requests per second. Zero disables pacing.
	RateLimit float64

	// Pagination and PageSize override the site settings when non-empty/non-zero.
	Pagination  string
	PageSize    int
	HistorySize int

	ProxyMode     string
	ProxyHost     string
	ProxyPort     int
	ProxyUser     string
	ProxyPassword string
	NoProxy       string // Comma-separated list of hosts to bypass proxy
	ProxyWarmup   bool

	LogFile  string
	LogLevel string
}

// Validation errors
var (
	ErrMissingServerURL  = errors.New("server url is required")
	ErrInvalidServerURL  = errors.New("server url must be an absolute http(s) URL")
	ErrInvalidPagination = errors.New("pagination must be one of pagination, load_more, auto_load_more")
	ErrInvalidPageSize   = fmt.Errorf("page_size must be between %d and %d", constants.MinPageSize, constants.MaxPageSize)
	ErrInvalidRateLimit  = errors.New("rate_limit must not be negative")
	ErrInvalidHistory    = fmt.Errorf("history_size must be between 1 and %d", constants.MaxHistorySize)
	ErrInvalidProxyMode  = errors.New("proxy mode must be one of no-proxy, system, basic, ntlm")
	ErrMissingProxyHost  = errors.New("proxy host is required for basic and ntlm proxy modes")
)

// NewConfig creates a Config with default values.
func NewConfig() *Config {
	return &Config{
		RateLimit:   constants.DefaultRequestRate,
		HistorySize: constants.DefaultHistorySize,
		ProxyMode:   ProxyModeNone,
		LogLevel:    "info",
	}
}

// LoadConfig loads configuration from an INI file.
// If the file doesn't exist, returns a config with default values and no error.
func LoadConfig(path string) (*Config, error) {
	cfg := NewConfig()

	if path == "" {
		path = DefaultConfigPath()
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	iniFile, err := ini.Load(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	server := iniFile.Section("server")
	cfg.ServerURL = strings.TrimRight(server.Key("url").String(), "/")
	cfg.Token = server.Key("token").String()
	cfg.RateLimit = server.Key("rate_limit").MustFloat64(constants.DefaultRequestRate)

	browse := iniFile.Section("browse")
	cfg.Pagination = browse.Key("pagination").In("", []string{PaginationClassic, PaginationLoadMore, PaginationAuto})
	cfg.PageSize = browse.Key("page_size").MustInt(0)
	cfg.HistorySize = browse.Key("history_size").MustInt(constants.DefaultHistorySize)

	proxy := iniFile.Section("proxy")
	cfg.ProxyMode = proxy.Key("mode").MustString(ProxyModeNone)
	cfg.ProxyHost = proxy.Key("host").String()
	cfg.ProxyPort = proxy.Key("port").MustInt(0)
	cfg.ProxyUser = proxy.Key("user").String()
	cfg.ProxyPassword = proxy.Key("password").String()
	cfg.NoProxy = proxy.Key("no_proxy").String()
	cfg.ProxyWarmup = proxy.Key("warmup").MustBool(false)

	logSection := iniFile.Section("log")
	cfg.LogFile = expandHome(logSection.Key("file").String())
	cfg.LogLevel = logSection.Key("level").MustString("info")

	return cfg, nil
}

// SaveConfig saves configuration to an INI file.
// The token is stored in the file, so it is written with 0600 permissions.
func SaveConfig(cfg *Config, path string) error {
	if path == "" {
		path = DefaultConfigPath()
	}

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	iniFile := ini.Empty()

	sections := []struct {
		name string
		keys [][2]string
	}{
		{"server", [][2]string{
			{"url", cfg.ServerURL},
			{"token", cfg.Token},
			{"rate_limit", strconv.FormatFloat(cfg.RateLimit, 'f', -1, 64)},
		}},
		{"browse", [][2]string{
			{"pagination", cfg.Pagination},
			{"page_size", fmt.Sprintf("%d", cfg.PageSize)},
			{"history_size", fmt.Sprintf("%d", cfg.HistorySize)},
		}},
		{"proxy", [][2]string{
			{"mode", cfg.ProxyMode},
			{"host", cfg.ProxyHost},
			{"port", fmt.Sprintf("%d", cfg.ProxyPort)},
			{"user", cfg.ProxyUser},
			{"password", cfg.ProxyPassword},
			{"no_proxy", cfg.NoProxy},
			{"warmup", fmt.Sprintf("%t", cfg.ProxyWarmup)},
		}},
		{"log", [][2]string{
			{"file", cfg.LogFile},
			{"level", cfg.LogLevel},
		}},
	}
	for _, s := range sections {
		sec, err := iniFile.NewSection(s.name)
		if err != nil {
			return fmt.Errorf("failed to create %s section: %w", s.name, err)
		}
		for _, kv := range s.keys {
			sec.Key(kv[0]).SetValue(kv[1])
		}
	}

	// Temporary file + rename keeps the previous config intact on failure.
	tmpPath := path + ".tmp"
	if err := iniFile.SaveTo(tmpPath); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	if runtime.GOOS != "windows" {
		if err := os.Chmod(tmpPath, 0600); err != nil {
			os.Remove(tmpPath)
			return fmt.Errorf("failed to set config permissions: %w", err)
		}
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to save config: %w", err)
	}
	return nil
}

// Validate checks the whole configuration.
func (c *Config) Validate() error {
	if err := c.ValidateForConnection(); err != nil {
		return err
	}
	switch c.Pagination {
	case "", PaginationClassic, PaginationLoadMore, PaginationAuto:
	default:
		return ErrInvalidPagination
	}
	if c.PageSize != 0 && (c.PageSize < constants.MinPageSize || c.PageSize > constants.MaxPageSize) {
		return ErrInvalidPageSize
	}
	if c.RateLimit < 0 {
		return ErrInvalidRateLimit
	}
	if c.HistorySize < 1 || c.HistorySize > constants.MaxHistorySize {
		return ErrInvalidHistory
	}
	switch c.ProxyMode {
	case "", ProxyModeNone, ProxyModeSystem:
	case ProxyModeBasic, ProxyModeNTLM:
		if strings.TrimSpace(c.ProxyHost) == "" {
			return ErrMissingProxyHost
		}
	default:
		return ErrInvalidProxyMode
	}
	return nil
}

// ValidateForConnection checks only the server URL.
// A token is optional: anonymous guests may browse public storages.
func (c *Config) ValidateForConnection() error {
	raw := strings.TrimSpace(c.ServerURL)
	if raw == "" {
		return ErrMissingServerURL
	}
	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return ErrInvalidServerURL
	}
	return nil
}

// MergeFlags applies non-empty command line overrides.
func (c *Config) MergeFlags(serverURL, token, pagination string, pageSize int) {
	if serverURL != "" {
		c.ServerURL = strings.TrimRight(serverURL, "/")
	}
	if token != "" {
		c.Token = token
	}
	if pagination != "" {
		c.Pagination = pagination
	}
	if pageSize > 0 {
		c.PageSize = pageSize
	}
}

func expandHome(p string) string {
	expanded, err := homedir.Expand(p)
	if err != nil {
		return p
	}
	return expanded
}
