package navigator

import "sync"

// PathKindCache remembers which paths are known directories so navigation
// can skip the describe probe. A missing entry means unknown.
type PathKindCache struct {
	mu   sync.RWMutex
	dirs map[string]bool
}

// NewPathKindCache creates an empty cache.
func NewPathKindCache() *PathKindCache {
	return &PathKindCache{dirs: make(map[string]bool)}
}

// MarkAsDirectory records p as a directory.
func (c *PathKindCache) MarkAsDirectory(p string) {
	c.mu.Lock()
	c.dirs[CleanPath(p)] = true
	c.mu.Unlock()
}

// MarkAsUnknown forgets p, e.g. after it turned out to be a file.
func (c *PathKindCache) MarkAsUnknown(p string) {
	c.mu.Lock()
	delete(c.dirs, CleanPath(p))
	c.mu.Unlock()
}

// IsKnownDirectory reports whether p was previously confirmed a directory.
func (c *PathKindCache) IsKnownDirectory(p string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.dirs[CleanPath(p)]
}

// Len returns the number of known directories.
func (c *PathKindCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.dirs)
}

// Reset forgets everything.
func (c *PathKindCache) Reset() {
	c.mu.Lock()
	c.dirs = make(map[string]bool)
	c.mu.Unlock()
}
