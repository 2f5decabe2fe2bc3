// Package api provides the client for the file server's JSON API.
package api

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// CodeCancelled is the status code reported for requests that were
// cancelled on the client side.
const CodeCancelled = -1

// CodeTransport is the status code reported when no response was obtained
// (DNS failure, refused connection, retries exhausted).
const CodeTransport = 500

// Error is a failed API call. Code is the envelope code when the server
// answered, otherwise the HTTP status or CodeTransport.
type Error struct {
	Code    int
	Message string
	Path    string
	Err     error
}

func (e *Error) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s: %s (code %d)", e.Path, e.Message, e.Code)
	}
	return fmt.Sprintf("%s (code %d)", e.Message, e.Code)
}

func (e *Error) Unwrap() error { return e.Err }

// StatusCode extracts the status code from err. Cancellation maps to
// CodeCancelled; errors that are not API errors map to CodeTransport.
func StatusCode(err error) int {
	if err == nil {
		return 200
	}
	if errors.Is(err, context.Canceled) {
		return CodeCancelled
	}
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Code
	}
	return CodeTransport
}

// Message extracts the human-readable message from err.
func Message(err error) string {
	if err == nil {
		return ""
	}
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}
	return err.Error()
}

// IsCancelled reports whether err stems from a cancelled request.
func IsCancelled(err error) bool {
	return StatusCode(err) == CodeCancelled
}

// IsPermissionDenied reports whether err is a 403, which the server also
// uses for a missing or wrong directory password.
func IsPermissionDenied(err error) bool {
	return StatusCode(err) == 403
}

// IsStorageMissing reports whether err says that no storage is mounted at
// the requested path.
func IsStorageMissing(err error) bool {
	if err == nil {
		return false
	}
	return IsStorageMissingMessage(Message(err))
}

// IsStorageMissingMessage checks a raw server message.
func IsStorageMissingMessage(msg string) bool {
	msg = strings.ToLower(msg)
	return strings.Contains(msg, "storage not found") || strings.Contains(msg, "please add a storage")
}
