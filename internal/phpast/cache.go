package phpast

import (
	"sync"

	"github.com/cespare/xxhash/v2"
)

// Cache memoizes parsed files keyed by path and content hash. A changed
// content hash is a miss, so entries never go stale; Invalidate only
// releases memory for deleted files.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]*cacheEntry

	hits   uint64
	misses uint64
}

type cacheEntry struct {
	hash uint64
	file *File
}

// NewCache creates an empty parse cache
func NewCache() *Cache {
	return &Cache{
		entries: make(map[string]*cacheEntry),
	}
}

// Parse returns the parsed form of content, reusing the previous parse of
// path when the content is unchanged. A nil cache just parses.
func (c *Cache) Parse(path string, content []byte) *File {
	if c == nil {
		return Parse(content)
	}

	hash := xxhash.Sum64(content)

	c.mu.RLock()
	entry, ok := c.entries[path]
	c.mu.RUnlock()
	if ok && entry.hash == hash {
		c.mu.Lock()
		c.hits++
		c.mu.Unlock()
		return entry.file
	}

	file := Parse(content)

	c.mu.Lock()
	c.entries[path] = &cacheEntry{hash: hash, file: file}
	c.misses++
	c.mu.Unlock()

	return file
}

// Invalidate drops the entry for path
func (c *Cache) Invalidate(path string) {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, path)
}

// Clear removes all entries from cache
func (c *Cache) Clear() {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]*cacheEntry)
}

// Size returns the number of cached files
func (c *Cache) Size() int {
	if c == nil {
		return 0
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Stats returns hit and miss counters
func (c *Cache) Stats() (hits, misses uint64) {
	if c == nil {
		return 0, 0
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.hits, c.misses
}
