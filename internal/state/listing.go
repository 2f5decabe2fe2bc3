package state

import (
	"sort"
	"strings"
	"sync"

	"github.com/maruel/natural"
	"github.com/samber/lo"

	"github.com/fsnav/fsnav/internal/events"
	"github.com/fsnav/fsnav/internal/models"
)

// FolderMeta is the per-directory data returned alongside a listing.
type FolderMeta struct {
	Readme   string
	Header   string
	Write    bool
	Provider string
}

// FileMeta is the data shown when a path resolves to a file.
type FileMeta struct {
	RawURL   string
	Readme   string
	Header   string
	Provider string
	Related  []models.Entry
}

// Capture is a restorable copy of a folder view.
type Capture struct {
	Path         string
	Page         int
	PerPage      int
	Entries      []models.Entry
	Total        int64
	Folder       FolderMeta
	ScrollOffset int
}

// View is a read-only copy of the whole store.
type View struct {
	State         NavState
	Path          string
	Page          int
	PerPage       int
	Obj           *models.EntryDescriptor
	Entries       []models.Entry
	Total         int64
	Folder        FolderMeta
	File          FileMeta
	Banner        string
	WrongPassword bool
	ScrollOffset  int
	SelectedCount int
}

// Listing is the observable store behind the listing view.
// Thread-safe for concurrent access; events are published after the lock
// is released.
type Listing struct {
	eventBus *events.EventBus

	navState      NavState
	path          string
	page          int
	perPage       int
	obj           *models.EntryDescriptor
	entries       []models.Entry
	total         int64
	folder        FolderMeta
	file          FileMeta
	banner        string
	wrongPassword bool
	scrollOffset  int
	selected      map[string]bool

	mu sync.RWMutex
}

// NewListing creates an empty store in the Initial state.
func NewListing(eventBus *events.EventBus) *Listing {
	return &Listing{
		eventBus: eventBus,
		path:     "/",
		page:     1,
		entries:  make([]models.Entry, 0),
		selected: make(map[string]bool),
	}
}

func (l *Listing) publish(evs ...events.Event) {
	if l.eventBus == nil {
		return
	}
	for _, ev := range evs {
		l.eventBus.Publish(ev)
	}
}

// State returns the current navigation state.
func (l *Listing) State() NavState {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.navState
}

// SetState transitions to s. Re-entering the current state publishes nothing.
func (l *Listing) SetState(s NavState) {
	l.mu.Lock()
	old := l.navState
	l.navState = s
	path := l.path
	l.mu.Unlock()

	if old != s {
		l.publish(NewNavStateChangedEvent(old, s, path))
	}
}

// Path returns the displayed path.
func (l *Listing) Path() string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.path
}

// SetPath records the displayed path.
func (l *Listing) SetPath(path string) {
	l.mu.Lock()
	changed := l.path != path
	l.path = path
	l.mu.Unlock()

	if changed {
		l.publish(NewCurrentPathChangedEvent(path))
	}
}

// Page returns the current page and page size.
func (l *Listing) Page() (int, int) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.page, l.perPage
}

// SetPage records the current page and page size.
func (l *Listing) SetPage(page, perPage int) {
	l.mu.Lock()
	l.page = page
	if perPage > 0 {
		l.perPage = perPage
	}
	l.mu.Unlock()
}

// Obj returns the last described object, or nil.
func (l *Listing) Obj() *models.EntryDescriptor {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if l.obj == nil {
		return nil
	}
	cp := *l.obj
	return &cp
}

// SetObj records the described object.
func (l *Listing) SetObj(obj *models.EntryDescriptor) {
	l.mu.Lock()
	if obj == nil {
		l.obj = nil
	} else {
		cp := *obj
		l.obj = &cp
	}
	l.mu.Unlock()
}

// ReplaceEntries replaces the entry list and folder metadata.
// The selection is cleared since it referred to the previous list.
func (l *Listing) ReplaceEntries(entries []models.Entry, total int64, meta FolderMeta) {
	l.mu.Lock()
	l.entries = append(make([]models.Entry, 0, len(entries)), entries...)
	l.total = total
	l.folder = meta
	l.selected = make(map[string]bool)
	ev := l.listingEventLocked(len(entries), false, false)
	l.mu.Unlock()

	l.publish(ev, NewSelectionChangedEvent([]string{}))
}

// AppendEntries concatenates entries onto the list. No de-duplication is
// performed; the server's pages are trusted to be disjoint.
func (l *Listing) AppendEntries(entries []models.Entry, total int64, meta FolderMeta) {
	l.mu.Lock()
	l.entries = append(l.entries, entries...)
	l.total = total
	l.folder = meta
	ev := l.listingEventLocked(len(entries), true, false)
	l.mu.Unlock()

	l.publish(ev)
}

// ShowFile records file metadata and publishes a FileShownEvent.
func (l *Listing) ShowFile(meta FileMeta) {
	l.mu.Lock()
	l.file = meta
	l.file.Related = append([]models.Entry(nil), meta.Related...)
	path := l.path
	var desc models.EntryDescriptor
	if l.obj != nil {
		desc = *l.obj
	}
	l.mu.Unlock()

	l.publish(NewFileShownEvent(path, desc))
}

// Clear empties the entry list and total, keeping the path.
func (l *Listing) Clear() {
	l.mu.Lock()
	l.entries = make([]models.Entry, 0)
	l.total = 0
	l.selected = make(map[string]bool)
	ev := l.listingEventLocked(0, false, false)
	l.mu.Unlock()

	l.publish(ev, NewSelectionChangedEvent([]string{}))
}

func (l *Listing) listingEventLocked(added int, appended, restored bool) *ListingChangedEvent {
	return &ListingChangedEvent{
		BaseEvent: events.NewBase(EventListingChanged),
		Path:      l.path,
		Page:      l.page,
		Count:     len(l.entries),
		Added:     added,
		Total:     l.total,
		Appended:  appended,
		Restored:  restored,
	}
}

// Entries returns a copy of the entry list with selection flags applied.
func (l *Listing) Entries() []models.Entry {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.entriesLocked()
}

func (l *Listing) entriesLocked() []models.Entry {
	return lo.Map(l.entries, func(e models.Entry, _ int) models.Entry {
		e.Selected = l.selected[e.Name]
		return e
	})
}

// Count returns the number of entries currently loaded.
func (l *Listing) Count() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.entries)
}

// Total returns the (filtered) total reported by the server.
func (l *Listing) Total() int64 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.total
}

// Find returns the loaded entry with the given name.
func (l *Listing) Find(name string) (models.Entry, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	e, ok := lo.Find(l.entries, func(e models.Entry) bool { return e.Name == name })
	if ok {
		e.Selected = l.selected[name]
	}
	return e, ok
}

// SetBanner sets the error banner. An empty message clears it.
func (l *Listing) SetBanner(msg string) {
	l.mu.Lock()
	changed := l.banner != msg
	l.banner = msg
	l.mu.Unlock()

	if changed {
		l.publish(NewErrorBannerEvent(msg))
	}
}

// Banner returns the error banner text.
func (l *Listing) Banner() string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.banner
}

// SetWrongPassword marks whether the last password attempt was rejected.
func (l *Listing) SetWrongPassword(wrong bool) {
	l.mu.Lock()
	l.wrongPassword = wrong
	l.mu.Unlock()
}

// ScrollOffset returns the index of the first visible entry.
func (l *Listing) ScrollOffset() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.scrollOffset
}

// SetScrollOffset records the index of the first visible entry.
func (l *Listing) SetScrollOffset(offset int) {
	if offset < 0 {
		offset = 0
	}
	l.mu.Lock()
	l.scrollOffset = offset
	l.mu.Unlock()
}

// Capture copies the folder view for later restoration.
func (l *Listing) Capture() Capture {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return Capture{
		Path:         l.path,
		Page:         l.page,
		PerPage:      l.perPage,
		Entries:      append([]models.Entry(nil), l.entries...),
		Total:        l.total,
		Folder:       l.folder,
		ScrollOffset: l.scrollOffset,
	}
}

// Restore replaces the folder view with a previous capture.
func (l *Listing) Restore(c Capture) {
	l.mu.Lock()
	pathChanged := l.path != c.Path
	l.path = c.Path
	l.page = c.Page
	l.perPage = c.PerPage
	l.entries = append(make([]models.Entry, 0, len(c.Entries)), c.Entries...)
	l.total = c.Total
	l.folder = c.Folder
	l.scrollOffset = c.ScrollOffset
	l.selected = make(map[string]bool)
	ev := l.listingEventLocked(len(c.Entries), false, true)
	l.mu.Unlock()

	if pathChanged {
		l.publish(NewCurrentPathChangedEvent(c.Path))
	}
	l.publish(ev)
}

// View returns a copy of the whole store.
func (l *Listing) View() View {
	l.mu.RLock()
	defer l.mu.RUnlock()

	v := View{
		State:         l.navState,
		Path:          l.path,
		Page:          l.page,
		PerPage:       l.perPage,
		Entries:       l.entriesLocked(),
		Total:         l.total,
		Folder:        l.folder,
		File:          l.file,
		Banner:        l.banner,
		WrongPassword: l.wrongPassword,
		ScrollOffset:  l.scrollOffset,
		SelectedCount: len(l.selected),
	}
	v.File.Related = append([]models.Entry(nil), l.file.Related...)
	if l.obj != nil {
		cp := *l.obj
		v.Obj = &cp
	}
	return v
}

// Select adds an entry to the selection. Unknown names are ignored.
func (l *Listing) Select(name string) bool {
	l.mu.Lock()
	if !l.hasEntryLocked(name) {
		l.mu.Unlock()
		return false
	}
	l.selected[name] = true
	names := l.selectedNamesLocked()
	l.mu.Unlock()

	l.publish(NewSelectionChangedEvent(names))
	return true
}

// Deselect removes an entry from the selection.
func (l *Listing) Deselect(name string) {
	l.mu.Lock()
	delete(l.selected, name)
	names := l.selectedNamesLocked()
	l.mu.Unlock()

	l.publish(NewSelectionChangedEvent(names))
}

// ToggleSelect toggles an entry's selection state and returns the new state.
func (l *Listing) ToggleSelect(name string) bool {
	l.mu.Lock()
	if !l.hasEntryLocked(name) {
		l.mu.Unlock()
		return false
	}
	now := !l.selected[name]
	if now {
		l.selected[name] = true
	} else {
		delete(l.selected, name)
	}
	names := l.selectedNamesLocked()
	l.mu.Unlock()

	l.publish(NewSelectionChangedEvent(names))
	return now
}

// SelectAll selects every loaded entry.
func (l *Listing) SelectAll() {
	l.mu.Lock()
	for _, e := range l.entries {
		l.selected[e.Name] = true
	}
	names := l.selectedNamesLocked()
	l.mu.Unlock()

	l.publish(NewSelectionChangedEvent(names))
}

// ClearSelection clears all selections.
func (l *Listing) ClearSelection() {
	l.mu.Lock()
	l.selected = make(map[string]bool)
	l.mu.Unlock()

	l.publish(NewSelectionChangedEvent([]string{}))
}

// SelectedEntries returns the selected entries in list order.
func (l *Listing) SelectedEntries() []models.Entry {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return lo.Filter(l.entriesLocked(), func(e models.Entry, _ int) bool { return e.Selected })
}

// SelectedCount returns the number of selected entries.
func (l *Listing) SelectedCount() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.selected)
}

func (l *Listing) hasEntryLocked(name string) bool {
	return lo.ContainsBy(l.entries, func(e models.Entry) bool { return e.Name == name })
}

func (l *Listing) selectedNamesLocked() []string {
	names := lo.Keys(l.selected)
	sort.Strings(names)
	return names
}

// SortedEntries returns a display-sorted copy of the entries. The stored
// order (server order) is not changed. Folders always come first; names
// compare naturally, so "file2" sorts before "file10".
func (l *Listing) SortedEntries(sortBy string, ascending bool) []models.Entry {
	items := l.Entries()
	sort.SliceStable(items, func(i, j int) bool {
		a, b := items[i], items[j]
		if a.IsDir != b.IsDir {
			return a.IsDir
		}

		var less bool
		switch sortBy {
		case "size":
			less = a.Size < b.Size
		case "date":
			less = a.Modified.Before(b.Modified)
		default:
			less = natural.Less(strings.ToLower(a.Name), strings.ToLower(b.Name))
		}
		if ascending {
			return less
		}
		return !less
	})
	return items
}
