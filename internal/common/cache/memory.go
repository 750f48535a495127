package cache

import (
	"context"
	"sync"
	"time"

	"benefits-assistant/internal/models"
)

type memoryEntry struct {
	bills     []models.Bill
	expiresAt time.Time
}

// MemoryLegislationCache is an in-process cache with a fixed TTL. A TTL of
// zero keeps entries for the life of the cache.
type MemoryLegislationCache struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	ttl     time.Duration
	now     func() time.Time
}

func NewMemoryLegislationCache(ttl time.Duration) *MemoryLegislationCache {
	return &MemoryLegislationCache{
		entries: make(map[string]memoryEntry),
		ttl:     ttl,
		now:     time.Now,
	}
}

// WithClock replaces the time source, for tests.
func (c *MemoryLegislationCache) WithClock(now func() time.Time) *MemoryLegislationCache {
	c.now = now
	return c
}

func (c *MemoryLegislationCache) Get(_ context.Context, key string) ([]models.Bill, bool) {
	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok {
		return nil, false
	}
	if !entry.expiresAt.IsZero() && !c.now().Before(entry.expiresAt) {
		c.mu.Lock()
		if current, still := c.entries[key]; still && current.expiresAt.Equal(entry.expiresAt) {
			delete(c.entries, key)
		}
		c.mu.Unlock()
		return nil, false
	}
	return cloneBills(entry.bills), true
}

func (c *MemoryLegislationCache) Put(_ context.Context, key string, bills []models.Bill) {
	entry := memoryEntry{bills: cloneBills(bills)}
	if c.ttl > 0 {
		entry.expiresAt = c.now().Add(c.ttl)
	}
	c.mu.Lock()
	c.entries[key] = entry
	c.mu.Unlock()
}

func (c *MemoryLegislationCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
