package api

import (
	"net/url"
	"path"
	"strings"
)

func joinPath(dir, name string) string {
	return path.Join("/", dir, name)
}

// escapePath escapes each segment of p while keeping the separators.
func escapePath(p string) string {
	parts := strings.Split(p, "/")
	for i, part := range parts {
		parts[i] = url.PathEscape(part)
	}
	return strings.Join(parts, "/")
}
