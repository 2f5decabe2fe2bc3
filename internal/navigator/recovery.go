package navigator

import (
	"strings"
	"time"

	"github.com/fsnav/fsnav/internal/api"
	"github.com/fsnav/fsnav/internal/models"
)

// ErrorKind classifies a failed describe or list request.
type ErrorKind int

const (
	// ErrorCancelled is a request superseded or cancelled locally. Silent.
	ErrorCancelled ErrorKind = iota
	// ErrorPermissionDenied is a 403: no access, or a password is needed.
	ErrorPermissionDenied
	// ErrorStorageMissing means no storage is mounted at the path.
	ErrorStorageMissing
	// ErrorGeneric is anything else.
	ErrorGeneric
	// ErrorPathRedirect is a failure recovered by jumping to a permission root.
	ErrorPathRedirect
)

func (k ErrorKind) String() string {
	switch k {
	case ErrorCancelled:
		return "cancelled"
	case ErrorPermissionDenied:
		return "permission_denied"
	case ErrorStorageMissing:
		return "storage_missing"
	case ErrorGeneric:
		return "generic"
	case ErrorPathRedirect:
		return "path_redirect"
	default:
		return "unknown"
	}
}

// RecoveryAction is what the navigator does after a failure.
type RecoveryAction int

const (
	// ActionNone leaves every piece of state untouched.
	ActionNone RecoveryAction = iota
	// ActionShowRoots shows the synthetic permission-root listing in Folder.
	ActionShowRoots
	// ActionNeedPassword moves to NeedPassword keeping the listing.
	ActionNeedPassword
	// ActionBanner sets the error banner and moves to Initial.
	ActionBanner
	// ActionRedirect navigates to Decision.RedirectTo.
	ActionRedirect
)

// Decision is the outcome of the recovery rules.
type Decision struct {
	Kind       ErrorKind
	Action     RecoveryAction
	Banner     string
	RedirectTo string
}

// Decide applies the recovery rules, in order, to a failed request for
// currentPath:
//
//  1. code -1: nothing happens.
//  2. code 403: at the root or without roots, show the root listing (and go
//     to the root if not there yet); otherwise ask for a password.
//  3. a storage-missing message: banner and Initial.
//  4. at the root with roots: show the root listing, no banner.
//  5. the first root mutually containing the current path (slashes
//     stripped) that also shares a segment with it: redirect there.
//  6. banner and Initial.
func Decide(code int, message, currentPath string, roots []models.PermissionRoot) Decision {
	currentPath = CleanPath(currentPath)
	atRoot := currentPath == RootPath

	if code == api.CodeCancelled {
		return Decision{Kind: ErrorCancelled, Action: ActionNone}
	}

	if code == 403 {
		if atRoot || len(roots) == 0 {
			d := Decision{Kind: ErrorPermissionDenied, Action: ActionShowRoots}
			if !atRoot {
				d.RedirectTo = RootPath
			}
			return d
		}
		return Decision{Kind: ErrorPermissionDenied, Action: ActionNeedPassword}
	}

	if api.IsStorageMissingMessage(message) {
		return Decision{Kind: ErrorStorageMissing, Action: ActionBanner, Banner: message}
	}

	if atRoot {
		if len(roots) > 0 {
			return Decision{Kind: ErrorGeneric, Action: ActionShowRoots}
		}
	} else if target, ok := redirectTarget(currentPath, roots); ok && target != currentPath {
		return Decision{Kind: ErrorPathRedirect, Action: ActionRedirect, RedirectTo: target}
	}

	return Decision{Kind: ErrorGeneric, Action: ActionBanner, Banner: message}
}

// redirectTarget finds the first root whose stripped path contains, or is
// contained in, the stripped current path. Only that root is considered:
// it is a redirect target when at least one segment of the current path
// also appears among its segments.
func redirectTarget(currentPath string, roots []models.PermissionRoot) (string, bool) {
	cleanCurrent := strings.TrimPrefix(currentPath, "/")
	for _, r := range roots {
		cleanRoot := strings.TrimPrefix(r.Path, "/")
		if !strings.Contains(cleanCurrent, cleanRoot) && !strings.Contains(cleanRoot, cleanCurrent) {
			continue
		}
		rootParts := segments(r.Path)
		for _, part := range segments(currentPath) {
			for _, rp := range rootParts {
				if part == rp {
					return r.Path, true
				}
			}
		}
		return "", false
	}
	return "", false
}

// SyntheticRootListing turns permission roots into directory entries so a
// user without access to "/" still gets a browsable root.
func SyntheticRootListing(roots []models.PermissionRoot, now time.Time) []models.Entry {
	out := make([]models.Entry, 0, len(roots))
	for _, r := range roots {
		out = append(out, models.Entry{
			Name:     rootEntryName(r.Path),
			IsDir:    true,
			Modified: now,
			Created:  now,
			Type:     models.TypeFolder,
			Path:     r.Path,
		})
	}
	return out
}
