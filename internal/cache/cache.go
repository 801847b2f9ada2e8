// Package cache persists classifications between runs so posts seen again
// within the TTL are not re-sent to the model. The cache is a single JSON
// file keyed by post ID.
package cache

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"brandpulse/internal/types"
)

const (
	// DefaultTTL is how long an entry may serve hits.
	DefaultTTL = 7 * 24 * time.Hour
	// DefaultPurgeAge is when an entry is dropped from the file entirely.
	DefaultPurgeAge = 30 * 24 * time.Hour
)

type entry struct {
	Classification types.Classification `json:"classification"`
	CachedAt       time.Time            `json:"cached_at"`
}

// Cache is a file-backed classification cache. Safe for concurrent use.
type Cache struct {
	path     string
	log      *logrus.Entry
	ttl      time.Duration
	purgeAge time.Duration

	mu      sync.Mutex
	entries map[string]entry
	dirty   bool
}

// Open loads the cache at path, starting empty when the file is missing or
// unreadable. A corrupt cache costs one re-classification run, not the run
// itself, so load errors are logged and swallowed.
func Open(path string, log *logrus.Entry) *Cache {
	c := &Cache{
		path:     path,
		log:      log,
		ttl:      DefaultTTL,
		purgeAge: DefaultPurgeAge,
		entries:  make(map[string]entry),
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			log.WithField("error", err.Error()).Warn("failed to read classification cache, starting empty")
		}
		return c
	}
	if err := json.Unmarshal(data, &c.entries); err != nil {
		log.WithField("error", err.Error()).Warn("corrupt classification cache, starting empty")
		c.entries = make(map[string]entry)
		return c
	}
	log.WithField("entries", len(c.entries)).Debug("classification cache loaded")
	return c
}

// Get returns the cached classification for a post if it is younger than the
// TTL.
func (c *Cache) Get(postID string) (types.Classification, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[postID]
	if !ok || time.Since(e.CachedAt) >= c.ttl {
		return types.Classification{}, false
	}
	return e.Classification, true
}

// Put records a fresh classification.
func (c *Cache) Put(postID string, cl types.Classification) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[postID] = entry{Classification: cl, CachedAt: time.Now().UTC()}
	c.dirty = true
}

// Len reports the number of stored entries, expired ones included.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Save purges entries older than the purge age and writes the file when
// anything changed since load.
func (c *Cache) Save() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	purged := 0
	for id, e := range c.entries {
		if time.Since(e.CachedAt) >= c.purgeAge {
			delete(c.entries, id)
			purged++
		}
	}
	if purged > 0 {
		c.dirty = true
		c.log.WithField("purged", purged).Info("purged stale cache entries")
	}
	if !c.dirty {
		return nil
	}

	if dir := filepath.Dir(c.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create cache directory: %w", err)
		}
	}
	data, err := json.MarshalIndent(c.entries, "", "  ")
	if err != nil {
		return fmt.Errorf("encode cache: %w", err)
	}
	if err := os.WriteFile(c.path, data, 0o644); err != nil {
		return fmt.Errorf("write cache: %w", err)
	}
	c.dirty = false
	c.log.WithField("entries", len(c.entries)).Debug("classification cache saved")
	return nil
}
