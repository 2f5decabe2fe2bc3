// Package navigator implements path navigation over a remote file server:
// permission-scoped path resolution, directory/file kind caching, listing
// history, the request coordinator that drives the listing state machine,
// error recovery and pagination strategies.
package navigator

import (
	"path"
	"strings"

	"github.com/fsnav/fsnav/internal/models"
)

// RootPath is the logical root of the browser.
const RootPath = "/"

// CleanPath normalizes p to an absolute, slash-separated path without a
// trailing slash. The empty string maps to the root.
func CleanPath(p string) string {
	p = strings.ReplaceAll(p, "\\", "/")
	if p == "" {
		return RootPath
	}
	return path.Clean("/" + p)
}

// IsRoot reports whether p denotes the browser root.
func IsRoot(p string) bool {
	return CleanPath(p) == RootPath
}

// JoinPath joins elem onto base the way a browser joins route segments.
func JoinPath(base string, elem ...string) string {
	return CleanPath(path.Join(append([]string{base}, elem...)...))
}

func stripSlashes(p string) string {
	return strings.Trim(p, "/")
}

func segments(p string) []string {
	parts := strings.Split(p, "/")
	out := parts[:0]
	for _, s := range parts {
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}

// Resolve maps a requested path to the permission-scoped path the backend
// expects.
//
// A path already starting with one of the roots is returned unchanged.
// Otherwise the root whose stripped form is the longest substring of the
// stripped request is joined in front of it; ties go to the earlier root and
// when nothing matches the first root is used. With no roots, or for the
// root path itself, the request is returned as is.
func Resolve(requested string, roots []models.PermissionRoot) string {
	if len(roots) == 0 || requested == RootPath {
		return requested
	}
	for _, r := range roots {
		if strings.HasPrefix(requested, r.Path) {
			return requested
		}
	}

	best := roots[0]
	bestLen := 0
	clean := stripSlashes(requested)
	for _, r := range roots {
		rp := stripSlashes(r.Path)
		if len(rp) > bestLen && strings.Contains(clean, rp) {
			best = r
			bestLen = len(rp)
		}
	}
	return JoinPath(best.Path, requested)
}

// HasRootPermission reports whether any root grants the whole tree.
func HasRootPermission(roots []models.PermissionRoot) bool {
	for _, r := range roots {
		if r.Path == RootPath {
			return true
		}
	}
	return false
}

// rootEntryName is the display name of a permission root: its last
// non-empty segment, or the raw path when it has none.
func rootEntryName(p string) string {
	parts := segments(p)
	if len(parts) == 0 {
		return p
	}
	return parts[len(parts)-1]
}
