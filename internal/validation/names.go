// Package validation checks names and paths received from the server
// before they are joined into request paths.
package validation

import (
	"fmt"
	"strings"
)

// EntryName validates a single path element reported by a listing.
//
// Returns an error if the name:
//   - Is empty
//   - Contains path separators (/ or \)
//   - Is "." or ".."
//   - Contains null bytes
//
// Names like "foo..bar.txt" are accepted.
func EntryName(name string) error {
	if name == "" {
		return fmt.Errorf("entry name cannot be empty")
	}
	if strings.ContainsRune(name, 0) {
		return fmt.Errorf("entry name contains null byte: %q", name)
	}
	if strings.ContainsAny(name, `/\`) {
		return fmt.Errorf("entry name cannot contain path separators: %q", name)
	}
	if name == "." || name == ".." {
		return fmt.Errorf("entry name cannot be %q", name)
	}
	return nil
}
