// Package lru provides a fixed-capacity, in-process metadata cache with
// least-recently-used eviction.
package lru

import (
	"container/list"
	"context"
	"sync"

	"github.com/alanyoungcy/polymirror/internal/domain"
)

// DefaultCapacity is used when a cache is constructed with a non-positive
// capacity.
const DefaultCapacity = 100

// entry is one cached asset-id -> metadata pair.
type entry struct {
	assetID string
	md      domain.MarketMetadata
}

// Cache is a bounded LRU metadata cache. Safe for concurrent use.
type Cache struct {
	mu       sync.Mutex
	capacity int
	order    *list.List               // front = most recently used
	items    map[string]*list.Element // assetID -> element in order
}

// New creates a Cache holding at most capacity entries.
func New(capacity int) *Cache {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Cache{
		capacity: capacity,
		order:    list.New(),
		items:    make(map[string]*list.Element, capacity),
	}
}

// Get returns the cached metadata for assetID and marks it most recently
// used. It returns domain.ErrNotFound when the entry is absent.
func (c *Cache) Get(_ context.Context, assetID string) (domain.MarketMetadata, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.items[assetID]
	if !ok {
		return domain.MarketMetadata{}, domain.ErrNotFound
	}
	c.order.MoveToFront(el)
	return el.Value.(*entry).md, nil
}

// Set stores metadata for assetID, evicting the least-recently-used entry
// when the cache is full.
func (c *Cache) Set(_ context.Context, assetID string, md domain.MarketMetadata) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.items[assetID]; ok {
		el.Value.(*entry).md = md
		c.order.MoveToFront(el)
		return nil
	}

	if c.order.Len() >= c.capacity {
		oldest := c.order.Back()
		if oldest != nil {
			c.order.Remove(oldest)
			delete(c.items, oldest.Value.(*entry).assetID)
		}
	}

	c.items[assetID] = c.order.PushFront(&entry{assetID: assetID, md: md})
	return nil
}

// Len returns the current number of cached entries.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}

// Compile-time interface check.
var _ domain.MetadataCache = (*Cache)(nil)
