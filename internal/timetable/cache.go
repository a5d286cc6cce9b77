package timetable

import (
	"context"
	"sync"
	"time"
)

// Cache stores merged load results between computations.
type Cache interface {
	Get(ctx context.Context, key string) (LoadResult, bool)
	Store(ctx context.Context, key string, result LoadResult, ttl time.Duration)
	Invalidate(ctx context.Context)
}

// MemoryCache is an in-process TTL cache with a bounded number of entries.
type MemoryCache struct {
	mu         sync.RWMutex
	now        func() time.Time
	maxEntries int
	entries    map[string]memoryCacheEntry
}

type memoryCacheEntry struct {
	result    LoadResult
	expiresAt time.Time
}

// NewMemoryCache constructs a cache. A nil clock falls back to time.Now.
func NewMemoryCache(maxEntries int, now func() time.Time) *MemoryCache {
	if maxEntries <= 0 {
		maxEntries = 16
	}
	if now == nil {
		now = time.Now
	}
	return &MemoryCache{
		now:        now,
		maxEntries: maxEntries,
		entries:    make(map[string]memoryCacheEntry),
	}
}

func (c *MemoryCache) Get(_ context.Context, key string) (LoadResult, bool) {
	if c == nil {
		return LoadResult{}, false
	}
	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok {
		return LoadResult{}, false
	}
	if c.now().After(entry.expiresAt) {
		c.mu.Lock()
		delete(c.entries, key)
		c.mu.Unlock()
		return LoadResult{}, false
	}
	return entry.result.Clone(), true
}

func (c *MemoryCache) Store(_ context.Context, key string, result LoadResult, ttl time.Duration) {
	if c == nil || ttl <= 0 {
		return
	}
	cloned := result.Clone()
	expiry := c.now().Add(ttl)

	c.mu.Lock()
	defer c.mu.Unlock()

	c.cleanupLocked()
	if _, exists := c.entries[key]; !exists && len(c.entries) >= c.maxEntries {
		c.evictOneLocked()
	}
	c.entries[key] = memoryCacheEntry{result: cloned, expiresAt: expiry}
}

func (c *MemoryCache) Invalidate(context.Context) {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.entries = make(map[string]memoryCacheEntry)
	c.mu.Unlock()
}

func (c *MemoryCache) cleanupLocked() {
	now := c.now()
	for key, entry := range c.entries {
		if now.After(entry.expiresAt) {
			delete(c.entries, key)
		}
	}
}

// evictOneLocked drops the entry closest to expiry.
func (c *MemoryCache) evictOneLocked() {
	var (
		victim string
		oldest time.Time
	)
	for key, entry := range c.entries {
		if victim == "" || entry.expiresAt.Before(oldest) {
			victim, oldest = key, entry.expiresAt
		}
	}
	delete(c.entries, victim)
}
