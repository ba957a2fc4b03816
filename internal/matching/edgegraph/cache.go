package edgegraph

import (
	"sync"

	"github.com/weylan/street-coverage-go/internal/roadgraph"
)

// NodeWayCache stores resolved node→way membership across runs. Entries
// are safe to overwrite with identical or fresher data, so concurrent
// writers need no coordination beyond the cache's own locking.
type NodeWayCache interface {
	Get(nodeIDs []int64) (hits map[int64][]roadgraph.WayRef, misses []int64)
	Put(entries map[int64][]roadgraph.WayRef)
}

// MemoryCache is the in-process NodeWayCache.
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[int64][]roadgraph.WayRef
}

// NewMemoryCache creates an empty cache.
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{entries: make(map[int64][]roadgraph.WayRef)}
}

// Get splits the requested IDs into cached hits and misses.
func (c *MemoryCache) Get(nodeIDs []int64) (map[int64][]roadgraph.WayRef, []int64) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	hits := make(map[int64][]roadgraph.WayRef)
	var misses []int64
	for _, id := range nodeIDs {
		if refs, ok := c.entries[id]; ok {
			hits[id] = refs
		} else {
			misses = append(misses, id)
		}
	}
	return hits, misses
}

// Put stores resolved entries, overwriting any existing ones.
func (c *MemoryCache) Put(entries map[int64][]roadgraph.WayRef) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for id, refs := range entries {
		c.entries[id] = refs
	}
}
