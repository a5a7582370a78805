package fs

import (
	"sync"
	"time"
)

// cacheEntry holds the parsed documents of one file.
type cacheEntry struct {
	Docs         []Document
	LastModified time.Time
	Size         int64
}

// cache keeps parsed files keyed by relative path, so unchanged files are
// not parsed again on the next load.
type cache struct {
	mu      sync.RWMutex
	entries map[string]*cacheEntry
	hits    int
	misses  int
}

func newCache() *cache {
	return &cache{entries: make(map[string]*cacheEntry)}
}

// Get returns the entry for relPath if it is still fresh.
func (c *cache) Get(relPath string, mtime time.Time, size int64) (*cacheEntry, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[relPath]
	if !ok || !entry.LastModified.Equal(mtime) || entry.Size != size {
		c.misses++
		return nil, false
	}
	c.hits++
	return entry, true
}

// Set updates an entry in the cache.
func (c *cache) Set(relPath string, entry *cacheEntry) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[relPath] = entry
}

// Prune removes entries that are not in the keep set.
func (c *cache) Prune(keep map[string]bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for path := range c.entries {
		if !keep[path] {
			delete(c.entries, path)
		}
	}
}

// Delete removes a single entry from the cache.
func (c *cache) Delete(relPath string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, relPath)
}

// Len returns the number of entries in the cache.
func (c *cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Stats returns the hit and miss counters.
func (c *cache) Stats() (hits, misses int) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.hits, c.misses
}
