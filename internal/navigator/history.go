package navigator

import (
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/fsnav/fsnav/internal/constants"
	"github.com/fsnav/fsnav/internal/state"
)

// HistoryKey identifies one remembered folder view.
type HistoryKey struct {
	Path string
	Page int
}

// HistoryEntry is a folder view captured when the user navigated away from
// it, together with the pagination knowledge that was current at the time.
type HistoryEntry struct {
	Capture      state.Capture
	HasMore      bool
	HasMoreKnown bool
	SavedAt      time.Time
}

// HistoryStore keeps folder views for backward navigation. It is bounded:
// the least recently used (path, page) is evicted once the store is full.
type HistoryStore struct {
	cache *lru.Cache[HistoryKey, HistoryEntry]
}

// NewHistoryStore creates a store holding at most size views. Out of range
// sizes fall back to constants.DefaultHistorySize.
func NewHistoryStore(size int) *HistoryStore {
	if size < 1 || size > constants.MaxHistorySize {
		size = constants.DefaultHistorySize
	}
	cache, err := lru.New[HistoryKey, HistoryEntry](size)
	if err != nil {
		// Only reachable with a non-positive size, which is excluded above.
		panic(err)
	}
	return &HistoryStore{cache: cache}
}

func historyKey(p string, page int) HistoryKey {
	if page < 1 {
		page = 1
	}
	return HistoryKey{Path: CleanPath(p), Page: page}
}

// Save stores entry for (p, page), replacing any previous one.
func (h *HistoryStore) Save(p string, page int, entry HistoryEntry) {
	entry.Capture.Entries = append(entry.Capture.Entries[:0:0], entry.Capture.Entries...)
	h.cache.Add(historyKey(p, page), entry)
}

// Get returns the view stored for (p, page).
func (h *HistoryStore) Get(p string, page int) (HistoryEntry, bool) {
	return h.cache.Get(historyKey(p, page))
}

// Has reports whether a view is stored without touching recency.
func (h *HistoryStore) Has(p string, page int) bool {
	return h.cache.Contains(historyKey(p, page))
}

// Clear drops the view for (p, page).
func (h *HistoryStore) Clear(p string, page int) {
	h.cache.Remove(historyKey(p, page))
}

// ClearPath drops every page stored for p.
func (h *HistoryStore) ClearPath(p string) {
	p = CleanPath(p)
	for _, k := range h.cache.Keys() {
		if k.Path == p {
			h.cache.Remove(k)
		}
	}
}

// Len returns the number of stored views.
func (h *HistoryStore) Len() int {
	return h.cache.Len()
}

// Purge drops everything.
func (h *HistoryStore) Purge() {
	h.cache.Purge()
}
