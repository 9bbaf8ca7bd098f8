// Package lru implements a fixed-capacity, expiry-callback LRU cache,
// built on listutil's intrusive list and grounded on
// original_source/util/cache.c. mimeparser uses one instance to cache
// compiled MIME-boundary scanners so that re-parsing nested parts under
// the same boundary string doesn't re-build the scanner on every call.
package lru

import "github.com/mailchannels/gomime/listutil"

// ExpiryFunc is called, synchronously, whenever an entry is evicted —
// either by capacity pressure or an explicit Remove/Clear — mirroring
// go-guerrilla's destroy-notify callback on its backend caches.
type ExpiryFunc func(key string, value interface{})

type entry struct {
	node  listutil.Node
	key   string
	value interface{}
}

// Cache is a fixed-capacity least-recently-used cache. The zero value is
// not usable; construct with New.
type Cache struct {
	capacity int
	list     *listutil.List
	index    map[string]*entry
	byNode   map[*listutil.Node]*entry
	onEvict  ExpiryFunc
}

// New returns a Cache holding at most capacity entries. onEvict may be
// nil.
func New(capacity int, onEvict ExpiryFunc) *Cache {
	if capacity < 1 {
		capacity = 1
	}
	return &Cache{
		capacity: capacity,
		list:     listutil.New(),
		index:    make(map[string]*entry, capacity),
		byNode:   make(map[*listutil.Node]*entry, capacity),
		onEvict:  onEvict,
	}
}

// Get looks up key, promoting it to most-recently-used on a hit.
func (c *Cache) Get(key string) (value interface{}, ok bool) {
	e, found := c.index[key]
	if !found {
		return nil, false
	}
	c.list.MoveToFront(&e.node)
	return e.value, true
}

// Put inserts or updates key, evicting the least-recently-used entry if
// the cache is at capacity and key is new.
func (c *Cache) Put(key string, value interface{}) {
	if e, found := c.index[key]; found {
		e.value = value
		c.list.MoveToFront(&e.node)
		return
	}
	if len(c.index) >= c.capacity {
		c.evictOldest()
	}
	e := &entry{key: key, value: value}
	c.list.Prepend(&e.node)
	c.index[key] = e
	c.byNode[&e.node] = e
}

func (c *Cache) evictOldest() {
	n := c.list.UnlinkTail()
	if n == nil {
		return
	}
	e := c.byNode[n]
	delete(c.byNode, n)
	delete(c.index, e.key)
	if c.onEvict != nil {
		c.onEvict(e.key, e.value)
	}
}

// Remove evicts key immediately if present, invoking onEvict.
func (c *Cache) Remove(key string) {
	e, found := c.index[key]
	if !found {
		return
	}
	e.node.Unlink()
	delete(c.byNode, &e.node)
	delete(c.index, key)
	if c.onEvict != nil {
		c.onEvict(e.key, e.value)
	}
}

// Len returns the number of entries currently cached.
func (c *Cache) Len() int { return len(c.index) }

// Clear evicts every entry, invoking onEvict for each.
func (c *Cache) Clear() {
	for key := range c.index {
		c.Remove(key)
	}
}
