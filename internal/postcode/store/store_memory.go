package store

import (
	"context"
	"sync"
	"time"

	"github.com/pk-mender/desafiojr/internal/postcode"
	"github.com/pk-mender/desafiojr/internal/postcode/metrics"
)

type cachedAddress struct {
	address  postcode.Address
	storedAt time.Time
}

// InMemoryCache keeps addresses in process memory with TTL expiration.
type InMemoryCache struct {
	mu       sync.RWMutex
	entries  map[string]cachedAddress
	cacheTTL time.Duration
	metrics  *metrics.Metrics
	now      func() time.Time
}

// MemoryOption configures the InMemoryCache.
type MemoryOption func(*InMemoryCache)

// WithMemoryMetrics records hits and misses.
func WithMemoryMetrics(m *metrics.Metrics) MemoryOption {
	return func(c *InMemoryCache) { c.metrics = m }
}

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) MemoryOption {
	return func(c *InMemoryCache) { c.now = now }
}

func NewInMemoryCache(cacheTTL time.Duration, opts ...MemoryOption) *InMemoryCache {
	c := &InMemoryCache{
		entries:  make(map[string]cachedAddress),
		cacheTTL: cacheTTL,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Find returns the cached address for the eight-digit code.
func (c *InMemoryCache) Find(_ context.Context, digits string) (postcode.Address, error) {
	c.mu.RLock()
	cached, ok := c.entries[digits]
	c.mu.RUnlock()

	if ok && c.now().Sub(cached.storedAt) < c.cacheTTL {
		c.recordHit()
		return cached.address, nil
	}
	c.recordMiss()
	return postcode.Address{}, ErrNotFound
}

// Save stores an address, replacing any previous entry.
func (c *InMemoryCache) Save(_ context.Context, digits string, address postcode.Address) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[digits] = cachedAddress{address: address, storedAt: c.now()}
	return nil
}

// Sweep drops expired entries and returns how many were removed.
func (c *InMemoryCache) Sweep() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	removed := 0
	now := c.now()
	for k, v := range c.entries {
		if now.Sub(v.storedAt) >= c.cacheTTL {
			delete(c.entries, k)
			removed++
		}
	}
	return removed
}

func (c *InMemoryCache) recordHit() {
	if c.metrics != nil {
		c.metrics.RecordCacheHit(BackendMemory)
	}
}

func (c *InMemoryCache) recordMiss() {
	if c.metrics != nil {
		c.metrics.RecordCacheMiss(BackendMemory)
	}
}
