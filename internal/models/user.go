package models

// PermissionRoot is a server path the current user may access.
type PermissionRoot struct {
	Path       string `json:"path"`
	Permission int    `json:"permission,omitempty"`
}

// User is the profile returned by the "me" endpoint.
type User struct {
	ID          int              `json:"id"`
	Username    string           `json:"username"`
	BasePath    string           `json:"base_path"`
	Role        int              `json:"role"`
	Disabled    bool             `json:"disabled"`
	Permissions []PermissionRoot `json:"permissions"`
}

// IsGuest reports whether the profile is the anonymous guest account.
func (u *User) IsGuest() bool {
	return u.Role == RoleGuest
}

const (
	RoleGeneral = 0
	RoleGuest   = 1
	RoleAdmin   = 2
)

// PublicSettings holds the subset of site settings the browser reads.
// The server serializes every value as a string.
type PublicSettings struct {
	PaginationType  string `json:"pagination_type"`
	DefaultPageSize string `json:"default_page_size"`
	SiteTitle       string `json:"site_title"`
	Version         string `json:"version"`
}
