// Package filter narrows a directory listing by name patterns and search
// terms. It is shared by the ls command and the interactive browser.
package filter

import (
	"path"
	"strings"

	"github.com/samber/lo"

	"github.com/fsnav/fsnav/internal/models"
)

// Kind restricts a listing to files or directories.
type Kind int

const (
	AnyKind Kind = iota
	FilesOnly
	DirsOnly
)

// Config holds filter configuration.
type Config struct {
	// Include patterns (glob-style). Empty means include all.
	// Example: []string{"*.dat", "*.txt"}
	Include []string

	// Exclude patterns (glob-style). Takes precedence over Include.
	Exclude []string

	// Search terms (case-insensitive substring match).
	// A name must match ALL search terms to be kept.
	Search []string

	Kind Kind
}

// IsZero reports whether the config keeps every entry.
func (c Config) IsZero() bool {
	return len(c.Include) == 0 && len(c.Exclude) == 0 && len(c.Search) == 0 && c.Kind == AnyKind
}

// Apply returns the entries that pass the filter, in their original order.
// Directories are matched against include patterns only when Kind is
// DirsOnly, so "*.log" does not hide the folders around the logs.
func Apply(entries []models.Entry, config Config) []models.Entry {
	if config.IsZero() {
		return entries
	}
	return lo.Filter(entries, func(e models.Entry, _ int) bool {
		return Matches(e, config)
	})
}

// Matches reports whether a single entry passes the filter.
func Matches(e models.Entry, config Config) bool {
	switch config.Kind {
	case FilesOnly:
		if e.IsDir {
			return false
		}
	case DirsOnly:
		if !e.IsDir {
			return false
		}
	}

	// 1. Exclude patterns win
	if matchesAny(e.Name, config.Exclude) {
		return false
	}

	// 2. Include patterns
	if len(config.Include) > 0 && (!e.IsDir || config.Kind == DirsOnly) {
		if !matchesAny(e.Name, config.Include) {
			return false
		}
	}

	// 3. Search terms
	if len(config.Search) > 0 {
		lowerName := strings.ToLower(e.Name)
		for _, term := range config.Search {
			if !strings.Contains(lowerName, strings.ToLower(term)) {
				return false
			}
		}
	}
	return true
}

func matchesAny(name string, patterns []string) bool {
	for _, pattern := range patterns {
		if matched, _ := path.Match(pattern, name); matched {
			return true
		}
		// Case-insensitive fallback for extensions typed in another case.
		if matched, _ := path.Match(strings.ToLower(pattern), strings.ToLower(name)); matched {
			return true
		}
	}
	return false
}

// ParsePatternList parses a comma-separated list of patterns into a slice.
// Example: "*.dat,*.txt" -> []string{"*.dat", "*.txt"}
func ParsePatternList(patternStr string) []string {
	if patternStr == "" {
		return nil
	}
	parts := strings.Split(patternStr, ",")
	patterns := make([]string, 0, len(parts))
	for _, p := range parts {
		trimmed := strings.TrimSpace(p)
		if trimmed != "" {
			patterns = append(patterns, trimmed)
		}
	}
	return patterns
}
