package classifications

import (
	"sync"
	"time"

	"github.com/patrickmn/go-cache"
)

// historyCache holds each user's history listing until it expires or the
// user writes or deletes an item. Entries are replaced, never merged.
//
// A listing read from the store is only cached if no invalidation for that
// user happened while it was being read; otherwise a slow read would
// reinstate rows that a concurrent delete already removed.
type historyCache struct {
	c *cache.Cache

	mu   sync.Mutex
	gens map[string]uint64
}

func newHistoryCache(ttl time.Duration) *historyCache {
	return &historyCache{
		c:    cache.New(ttl, ttl*2),
		gens: map[string]uint64{},
	}
}

// get returns the cached listing, or the generation to pass to set after
// reading the store.
func (h *historyCache) get(userID string) ([]HistoryItem, uint64, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	gen := h.gens[userID]
	v, ok := h.c.Get(userID)
	if !ok {
		return nil, gen, false
	}
	items, ok := v.([]HistoryItem)
	return items, gen, ok
}

// set caches items unless userID was invalidated after gen was read.
func (h *historyCache) set(userID string, gen uint64, items []HistoryItem) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.gens[userID] != gen {
		return false
	}
	h.c.SetDefault(userID, items)
	return true
}

func (h *historyCache) invalidate(userID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.gens[userID]++
	h.c.Delete(userID)
}
