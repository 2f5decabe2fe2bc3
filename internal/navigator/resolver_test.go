package navigator

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fsnav/fsnav/internal/models"
)

func TestResolve(t *testing.T) {
	tests := []struct {
		name  string
		path  string
		roots StaticPermissions
		want  string
	}{
		{"no roots", "/docs/a", nil, "/docs/a"},
		{"root path", "/", roots("/docs"), "/"},
		{"already qualified", "/docs/a", roots("/media", "/docs"), "/docs/a"},
		{"longest substring wins", "/x/home/alice/y", roots("/alice", "/home/alice"), "/home/alice/x/home/alice/y"},
		{"tie goes to first", "/x/a/team/b/team", roots("/a/team", "/b/team"), "/a/team/x/a/team/b/team"},
		{"fallback to first root", "/other", roots("/docs", "/media"), "/docs/other"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Resolve(tt.path, tt.roots))
		})
	}
}

func TestResolve_AlwaysScopedToARoot(t *testing.T) {
	rs := roots("/data", "/media/photos", "/archive")
	for _, p := range []string{"/photos/2024", "/x/media/photos/y", "/nothing", "/data/raw"} {
		got := Resolve(p, rs)
		scoped := false
		for _, r := range rs {
			if strings.HasPrefix(got, r.Path+"/") || got == r.Path {
				scoped = true
			}
		}
		assert.True(t, scoped, "Resolve(%q) = %q", p, got)
	}
}

func TestCleanAndJoin(t *testing.T) {
	assert.Equal(t, "/", CleanPath(""))
	assert.Equal(t, "/a/b", CleanPath("a//b/"))
	assert.Equal(t, "/a/b", CleanPath(`\a\b`))
	assert.True(t, IsRoot("/"))
	assert.False(t, IsRoot("/a"))
	assert.Equal(t, "/a/b/c", JoinPath("/a", "b", "c"))
	assert.Equal(t, "/a", JoinPath("/a/b", ".."))
}

func TestSyntheticRootListing(t *testing.T) {
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	got := SyntheticRootListing(roots("/docs", "/media/", "/"), now)

	require.Len(t, got, 3)
	assert.Equal(t, []string{"docs", "media", "/"}, names(got))
	for _, e := range got {
		assert.True(t, e.IsDir)
		assert.Zero(t, e.Size)
		assert.Equal(t, models.TypeFolder, e.Type)
		assert.Equal(t, now, e.Modified)
		assert.Empty(t, e.Sign)
		assert.Empty(t, e.Thumb)
	}
	assert.Equal(t, "/media/", got[1].Path)
}

func TestDecide(t *testing.T) {
	tests := []struct {
		name     string
		code     int
		msg      string
		path     string
		roots    StaticPermissions
		action   RecoveryAction
		kind     ErrorKind
		redirect string
	}{
		{"cancelled", -1, "", "/docs", roots("/docs"), ActionNone, ErrorCancelled, ""},
		{"403 at root", 403, "forbidden", "/", roots("/docs"), ActionShowRoots, ErrorPermissionDenied, ""},
		{"403 without roots", 403, "forbidden", "/private", nil, ActionShowRoots, ErrorPermissionDenied, "/"},
		{"403 needs password", 403, "password is incorrect", "/docs/secret", roots("/docs"), ActionNeedPassword, ErrorPermissionDenied, ""},
		{"storage missing", 500, "storage not found; please add a storage", "/x", roots("/docs"), ActionBanner, ErrorStorageMissing, ""},
		{"root with roots", 500, "failed get storage", "/", roots("/docs"), ActionShowRoots, ErrorGeneric, ""},
		{"root without roots", 500, "boom", "/", nil, ActionBanner, ErrorGeneric, ""},
		{"redirect to root path", 500, "object not found", "/docs", roots("/team/docs"), ActionRedirect, ErrorPathRedirect, "/team/docs"},
		{"containment without shared segment", 500, "object not found", "/doc", roots("/docs"), ActionBanner, ErrorGeneric, ""},
		{"only the first contained root is tried", 500, "object not found", "/docs", roots("/", "/team/docs"), ActionBanner, ErrorGeneric, ""},
		{"no redirect onto itself", 500, "object not found", "/docs", roots("/docs"), ActionBanner, ErrorGeneric, ""},
		{"unrelated", 500, "object not found", "/zzz", roots("/docs"), ActionBanner, ErrorGeneric, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := Decide(tt.code, tt.msg, tt.path, tt.roots)
			assert.Equal(t, tt.action, d.Action)
			assert.Equal(t, tt.kind, d.Kind, "kind %s", d.Kind)
			assert.Equal(t, tt.redirect, d.RedirectTo)
			if tt.action == ActionBanner {
				assert.Equal(t, tt.msg, d.Banner)
			}
		})
	}
}
