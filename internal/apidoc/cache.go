package apidoc

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// DefaultCacheSize bounds the number of files kept in memory. Viewer files
// run to several megabytes, so the bound is deliberately small.
const DefaultCacheSize = 8

type cacheEntry struct {
	content  string
	modTime  time.Time
	loadedAt time.Time
}

// Cache holds raw file content keyed by resolved absolute path. An entry is
// reused only while the file's modification time is unchanged; a touched
// file is reloaded transparently. Safe for concurrent use.
type Cache struct {
	mu      sync.Mutex
	max     int
	entries map[string]cacheEntry
}

// NewCache returns a cache bounded to max entries. max <= 0 selects
// DefaultCacheSize.
func NewCache(max int) *Cache {
	if max <= 0 {
		max = DefaultCacheSize
	}
	return &Cache{max: max, entries: make(map[string]cacheEntry)}
}

// GetOrLoad returns the content of path, reading it at most once per
// modification. The path is resolved to its absolute form so aliases of the
// same file share an entry.
func (c *Cache) GetOrLoad(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolve %s: %w", path, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return "", err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if entry, ok := c.entries[abs]; ok && entry.modTime.Equal(info.ModTime()) {
		return entry.content, nil
	}

	data, err := os.ReadFile(abs)
	if err != nil {
		return "", err
	}
	if len(c.entries) >= c.max {
		c.evictOldest()
	}
	c.entries[abs] = cacheEntry{
		content:  string(data),
		modTime:  info.ModTime(),
		loadedAt: time.Now(),
	}
	return string(data), nil
}

// Len reports the number of cached files.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func (c *Cache) evictOldest() {
	var oldest string
	var oldestAt time.Time
	for path, entry := range c.entries {
		if oldest == "" || entry.loadedAt.Before(oldestAt) {
			oldest = path
			oldestAt = entry.loadedAt
		}
	}
	if oldest != "" {
		delete(c.entries, oldest)
	}
}
