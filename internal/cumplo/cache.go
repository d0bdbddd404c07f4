package cumplo

import (
	"sync"
	"time"

	"github.com/mfigueroa/spotter/internal/model"
)

// resultCache holds the single assembled funding-request set with a bounded
// TTL. Safe for concurrent readers overlapping an in-flight refresh: readers
// see the previous entry until the new one is swapped in.
type resultCache struct {
	mu        sync.RWMutex
	ttl       time.Duration
	items     []model.FundingRequest
	expiresAt time.Time
}

func newResultCache(ttl time.Duration) *resultCache {
	return &resultCache{ttl: ttl}
}

// Get returns a copy of the cached set, or false when expired or invalidated.
// The copy keeps callers from reordering the shared entry.
func (c *resultCache) Get() ([]model.FundingRequest, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.items == nil || time.Now().After(c.expiresAt) {
		return nil, false
	}

	items := make([]model.FundingRequest, len(c.items))
	copy(items, c.items)
	return items, true
}

// Set atomically swaps in a freshly assembled set.
func (c *resultCache) Set(items []model.FundingRequest) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if items == nil {
		items = []model.FundingRequest{}
	}
	c.items = items
	c.expiresAt = time.Now().Add(c.ttl)
}

// Invalidate drops the entry immediately, forcing the next read to refresh.
func (c *resultCache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items = nil
	c.expiresAt = time.Time{}
}
