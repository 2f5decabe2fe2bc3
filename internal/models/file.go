package models

import (
	"time"
)

// ObjType is the server's coarse classification of an entry.
type ObjType int

const (
	TypeUnknown ObjType = iota
	TypeFolder
	TypeVideo
	TypeAudio
	TypeText
	TypeImage
)

// Label is a user-defined tag attached to an entry.
type Label struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Type        int    `json:"type"`
	Description string `json:"description"`
	BgColor     string `json:"bg_color"`
}

// Entry represents one object in a directory listing
type Entry struct {
	Name         string    `json:"name"`
	Size         int64     `json:"size"`
	IsDir        bool      `json:"is_dir"`
	Modified     time.Time `json:"modified"`
	Created      time.Time `json:"created"`
	Sign         string    `json:"sign"`
	Thumb        string    `json:"thumb"`
	Type         ObjType   `json:"type"`
	Path         string    `json:"path,omitempty"`
	StorageClass string    `json:"storage_class,omitempty"`
	LabelList    []Label   `json:"label_list,omitempty"`

	// Selected is local UI state and is never sent to the server.
	Selected bool `json:"-"`
}

// EntryDescriptor is the result of describing a single path.
// Readme, Header and Related are only meaningful for files.
type EntryDescriptor struct {
	Entry
	RawURL   string  `json:"raw_url"`
	Readme   string  `json:"readme"`
	Header   string  `json:"header"`
	Provider string  `json:"provider"`
	Related  []Entry `json:"related"`
}

// ListingPage is one page of a directory listing.
type ListingPage struct {
	Content       []Entry `json:"content"`
	Total         int64   `json:"total"`
	FilteredTotal *int64  `json:"filtered_total,omitempty"`
	Page          int     `json:"page,omitempty"`
	PerPage       int     `json:"per_page,omitempty"`
	HasMore       *bool   `json:"has_more,omitempty"`
	Readme        string  `json:"readme"`
	Header        string  `json:"header"`
	Write         bool    `json:"write"`
	Provider      string  `json:"provider"`
}

// EffectiveTotal returns the filtered total when the server reported one,
// otherwise the raw total.
func (p *ListingPage) EffectiveTotal() int64 {
	if p.FilteredTotal != nil {
		return *p.FilteredTotal
	}
	return p.Total
}

// ComputeHasMore reports whether another page exists after page.
// An explicit server flag wins; otherwise page*perPage is compared with
// the effective total.
func (p *ListingPage) ComputeHasMore(page, perPage int) bool {
	if p.HasMore != nil {
		return *p.HasMore
	}
	return int64(page)*int64(perPage) < p.EffectiveTotal()
}

// ListRequest is the body of a directory listing call.
type ListRequest struct {
	Path     string `json:"path"`
	Password string `json:"password"`
	Page     int    `json:"page"`
	PerPage  int    `json:"per_page"`
	Refresh  bool   `json:"refresh"`
}

// GetRequest is the body of a describe call.
type GetRequest struct {
	Path     string `json:"path"`
	Password string `json:"password"`
	Refresh  bool   `json:"refresh,omitempty"`
}

// OtherRequest invokes a driver-specific method on a path.
type OtherRequest struct {
	Path     string `json:"path"`
	Password string `json:"password"`
	Method   string `json:"method"`
}

// PreviewInfo is returned by the document preview driver method.
type PreviewInfo struct {
	PageNums int    `json:"page_nums"`
	ImgExt   string `json:"img_ext"`
	Version  int    `json:"version"`
}
