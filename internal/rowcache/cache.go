// Package rowcache keeps rendered artwork for listing rows so rows that
// scroll back into view do not decode or fetch their artwork again.
//
// One Cache is shared by every listing of the process. It is created by the
// application and handed to each listing; rows never own cache entries.
package rowcache

import (
	"container/list"
	"fmt"
	"sync"

	"github.com/mmcdole/vinyl/internal/domain"
)

// DefaultCapacity is the default total cost budget
const DefaultCapacity = 6 * 1024 * 1024

// Key returns the cache key of a row
func Key(kind domain.MediaKind, id int64) string {
	return fmt.Sprintf("%d//%d", int(kind), id)
}

// CostFunc reports the cost of a value in capacity units
type CostFunc[V any] func(V) int

// Stats is a snapshot of cache counters
type Stats struct {
	Entries   int
	Size      int
	Capacity  int
	Hits      int
	Misses    int
	Evictions int
}

// Cache is a least-recently-used cache bounded by the total cost of its
// entries. It is safe for concurrent use.
type Cache[V any] struct {
	mu       sync.Mutex
	capacity int
	size     int
	cost     CostFunc[V]
	items    map[string]*list.Element
	order    *list.List // front = most recently used

	hits, misses, evictions int
}

type entry[V any] struct {
	key   string
	value V
	cost  int
}

// New creates a cache with the given cost budget. A nil cost counts every
// entry as 1; a non-positive capacity selects DefaultCapacity.
func New[V any](capacity int, cost CostFunc[V]) *Cache[V] {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	if cost == nil {
		cost = func(V) int { return 1 }
	}
	return &Cache[V]{
		capacity: capacity,
		cost:     cost,
		items:    make(map[string]*list.Element),
		order:    list.New(),
	}
}

// Get returns the value for key and marks it most recently used. A miss is
// not an error: the caller is expected to fetch the artwork and Put it.
func (c *Cache[V]) Get(key string) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	elem, ok := c.items[key]
	if !ok {
		c.misses++
		var zero V
		return zero, false
	}
	c.hits++
	c.order.MoveToFront(elem)
	return elem.Value.(*entry[V]).value, true
}

// Put inserts or replaces the value for key, then evicts least recently
// used entries until the total cost fits the budget. An entry costing more
// than the whole budget is evicted immediately.
func (c *Cache[V]) Put(key string, value V) {
	cost := c.cost(value)
	if cost < 0 {
		cost = 0
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.items[key]; ok {
		e := elem.Value.(*entry[V])
		c.size += cost - e.cost
		e.value = value
		e.cost = cost
		c.order.MoveToFront(elem)
	} else {
		c.items[key] = c.order.PushFront(&entry[V]{key: key, value: value, cost: cost})
		c.size += cost
	}
	c.trim()
}

// trim evicts from the back until size fits; c.mu must be held
func (c *Cache[V]) trim() {
	for c.size > c.capacity {
		back := c.order.Back()
		if back == nil {
			return
		}
		e := back.Value.(*entry[V])
		c.order.Remove(back)
		delete(c.items, e.key)
		c.size -= e.cost
		c.evictions++
	}
}

// Len returns the number of cached entries
func (c *Cache[V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

// Stats returns a snapshot of the cache counters
func (c *Cache[V]) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Stats{
		Entries:   len(c.items),
		Size:      c.size,
		Capacity:  c.capacity,
		Hits:      c.hits,
		Misses:    c.misses,
		Evictions: c.evictions,
	}
}
