// Package state provides the observable listing store shared by the
// navigator and any frontend. Every mutation publishes an event so views can
// subscribe instead of polling.
package state

import (
	"github.com/fsnav/fsnav/internal/events"
	"github.com/fsnav/fsnav/internal/models"
)

// NavState is the navigation state of the listing view.
// Exactly one state is active at a time.
type NavState int

const (
	Initial NavState = iota
	FetchingObj
	FetchingObjs
	FetchingMore
	File
	Folder
	NeedPassword
)

func (s NavState) String() string {
	switch s {
	case Initial:
		return "initial"
	case FetchingObj:
		return "fetching_obj"
	case FetchingObjs:
		return "fetching_objs"
	case FetchingMore:
		return "fetching_more"
	case File:
		return "file"
	case Folder:
		return "folder"
	case NeedPassword:
		return "need_password"
	default:
		return "unknown"
	}
}

// IsFetching reports whether a request is in flight in this state.
func (s NavState) IsFetching() bool {
	return s == FetchingObj || s == FetchingObjs || s == FetchingMore
}

// State event types
const (
	EventNavStateChanged    events.EventType = "nav_state_changed"
	EventListingChanged     events.EventType = "listing_changed"
	EventErrorBanner        events.EventType = "error_banner"
	EventSelectionChanged   events.EventType = "selection_changed"
	EventCurrentPathChanged events.EventType = "current_path_changed"
	EventFileShown          events.EventType = "file_shown"
	EventRedirect           events.EventType = "redirect"
)

// NavStateChangedEvent is published on every state transition.
type NavStateChangedEvent struct {
	events.BaseEvent
	Old  NavState
	New  NavState
	Path string
}

// ListingChangedEvent is published when the entry list is replaced,
// appended to, cleared or restored from history.
type ListingChangedEvent struct {
	events.BaseEvent
	Path     string
	Page     int
	Count    int
	Added    int
	Total    int64
	Appended bool
	Restored bool
}

// ErrorBannerEvent carries the banner text. An empty message clears it.
type ErrorBannerEvent struct {
	events.BaseEvent
	Message string
}

// SelectionChangedEvent is published when the selection changes.
type SelectionChangedEvent struct {
	events.BaseEvent
	Names []string
}

// CurrentPathChangedEvent is published when the displayed path changes.
type CurrentPathChangedEvent struct {
	events.BaseEvent
	Path string
}

// FileShownEvent is published when a path resolves to a file.
type FileShownEvent struct {
	events.BaseEvent
	Path  string
	Entry models.EntryDescriptor
}

// RedirectEvent is published when navigation is redirected to another path.
type RedirectEvent struct {
	events.BaseEvent
	From   string
	To     string
	Reason string
}

func NewNavStateChangedEvent(from, to NavState, path string) *NavStateChangedEvent {
	return &NavStateChangedEvent{BaseEvent: events.NewBase(EventNavStateChanged), Old: from, New: to, Path: path}
}

func NewErrorBannerEvent(message string) *ErrorBannerEvent {
	return &ErrorBannerEvent{BaseEvent: events.NewBase(EventErrorBanner), Message: message}
}

func NewSelectionChangedEvent(names []string) *SelectionChangedEvent {
	return &SelectionChangedEvent{BaseEvent: events.NewBase(EventSelectionChanged), Names: names}
}

func NewCurrentPathChangedEvent(path string) *CurrentPathChangedEvent {
	return &CurrentPathChangedEvent{BaseEvent: events.NewBase(EventCurrentPathChanged), Path: path}
}

func NewFileShownEvent(path string, entry models.EntryDescriptor) *FileShownEvent {
	return &FileShownEvent{BaseEvent: events.NewBase(EventFileShown), Path: path, Entry: entry}
}

// NewRedirectEvent creates a RedirectEvent.
func NewRedirectEvent(from, to, reason string) *RedirectEvent {
	return &RedirectEvent{BaseEvent: events.NewBase(EventRedirect), From: from, To: to, Reason: reason}
}
