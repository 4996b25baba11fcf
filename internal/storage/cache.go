package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"

	"shadowcrawler/internal/logging"
	"shadowcrawler/internal/metrics"
)

// FreshnessWindow is the maximum age at which a cached stats entry is
// still served. Older entries are treated as absent.
const FreshnessWindow = 24 * time.Hour

// Stats holds the aggregate sizes for one analyzed directory.
type Stats struct {
	DirectoryPath string `json:"directoryPath"`
	TotalFiles    int64  `json:"totalFiles"`
	TotalSize     int64  `json:"totalSize"`
	VideoFiles    int64  `json:"videoFiles"`
	VideoSize     int64  `json:"videoSize"`
	LastUpdated   int64  `json:"lastUpdated"`
}

// Cache persists Stats entries keyed by directory path in a single JSON
// document. Every write re-reads the document first so entries for
// other directories survive.
type Cache struct {
	path string
	mu   sync.Mutex
}

// NewCache creates a cache backed by the JSON file at path. The file is
// created on first write.
func NewCache(path string) *Cache {
	return &Cache{path: path}
}

// load reads the cache document. A missing or malformed file is an
// empty cache, never an error.
func (c *Cache) load() map[string]Stats {
	data, err := os.ReadFile(c.path)
	if err != nil {
		if !os.IsNotExist(err) {
			logging.Warn("failed to read stats cache %s: %v", c.path, err)
		}
		return map[string]Stats{}
	}

	entries := map[string]Stats{}
	if err := json.Unmarshal(data, &entries); err != nil {
		logging.Warn("malformed stats cache %s, ignoring: %v", c.path, err)
		return map[string]Stats{}
	}
	return entries
}

// Get returns the cached stats for dir, or nil if absent or older than
// the freshness window.
func (c *Cache) Get(dir string) *Stats {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.load()[dir]
	if !ok {
		metrics.StorageCacheLookups.WithLabelValues("miss").Inc()
		return nil
	}

	age := time.Since(time.Unix(entry.LastUpdated, 0))
	if age > FreshnessWindow {
		logging.Debug("stats cache entry for %s is stale (%s old)", dir, age.Round(time.Minute))
		metrics.StorageCacheLookups.WithLabelValues("stale").Inc()
		return nil
	}

	metrics.StorageCacheLookups.WithLabelValues("hit").Inc()
	return &entry
}

// Put stores stats under its directory path, preserving entries for
// other directories.
func (c *Cache) Put(stats Stats) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	entries := c.load()
	entries[stats.DirectoryPath] = stats

	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode stats cache: %w", err)
	}
	if err := os.WriteFile(c.path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write stats cache %s: %w", c.path, err)
	}
	return nil
}
