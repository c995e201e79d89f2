package memory

import (
	"context"
	"sync"
	"time"

	"github.com/custodia-labs/bidflow/internal/core/domain"
	"github.com/custodia-labs/bidflow/internal/core/ports/driven"
)

// Ensure StageCache implements the interface.
var _ driven.StageCache = (*StageCache)(nil)

// StageCache is an in-process driven.StageCache. Entries live as long as
// the process, or until they exceed the TTL.
type StageCache struct {
	mu      sync.RWMutex
	entries map[driven.CacheKey]driven.CacheEntry
	ttl     time.Duration
	now     func() time.Time
}

// NewStageCache creates an empty cache. A zero ttl keeps entries forever.
func NewStageCache(ttl time.Duration) *StageCache {
	return &StageCache{
		entries: make(map[driven.CacheKey]driven.CacheEntry),
		ttl:     ttl,
		now:     time.Now,
	}
}

// Get returns the entry for key.
func (c *StageCache) Get(_ context.Context, key driven.CacheKey) (*driven.CacheEntry, error) {
	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()

	if !ok || c.expired(entry) {
		return nil, domain.ErrNotFound
	}
	return &entry, nil
}

// Put stores or replaces the entry for key.
func (c *StageCache) Put(_ context.Context, key driven.CacheKey, entry driven.CacheEntry) error {
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = c.now()
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = entry
	return nil
}

// Invalidate removes every entry of a document.
func (c *StageCache) Invalidate(_ context.Context, documentHash string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for key := range c.entries {
		if key.DocumentHash == documentHash {
			delete(c.entries, key)
		}
	}
	return nil
}

// Clear removes every entry.
func (c *StageCache) Clear(_ context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[driven.CacheKey]driven.CacheEntry)
	return nil
}

// Len returns the number of stored entries, expired ones included.
func (c *StageCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Close is a no-op.
func (c *StageCache) Close() error {
	return nil
}

func (c *StageCache) expired(entry driven.CacheEntry) bool {
	return c.ttl > 0 && c.now().Sub(entry.CreatedAt) > c.ttl
}
