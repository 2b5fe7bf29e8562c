// Package cache provides a bounded in-process key/value cache with per-entry expiry.
// Values are opaque byte slices; callers own their encoding.
package cache

import (
	"container/list"
	"context"
	"strings"
	"sync"
	"time"
)

// Default sizing used when the caller passes a non-positive value.
const (
	DefaultCapacity = 1000
	DefaultTTL      = 30 * time.Second
)

// LRU is a least-recently-used cache with TTL support. It is safe for concurrent use.
type LRU struct {
	capacity   int
	defaultTTL time.Duration
	now        func() time.Time

	mu    sync.Mutex
	items map[string]*entry
	order *list.List
}

type entry struct {
	key       string
	value     []byte
	expiresAt time.Time
	element   *list.Element
}

// NewLRU creates a cache holding at most capacity entries.
func NewLRU(capacity int, defaultTTL time.Duration) *LRU {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	if defaultTTL <= 0 {
		defaultTTL = DefaultTTL
	}

	return &LRU{
		capacity:   capacity,
		defaultTTL: defaultTTL,
		now:        time.Now,
		items:      make(map[string]*entry),
		order:      list.New(),
	}
}

// Get returns the value stored under key. Expired entries are dropped on access.
// The error is always nil for the in-memory implementation.
func (c *LRU) Get(_ context.Context, key string) ([]byte, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.items[key]
	if !ok {
		return nil, false, nil
	}
	if !c.now().Before(e.expiresAt) {
		c.remove(e)
		return nil, false, nil
	}

	c.order.MoveToFront(e.element)
	return e.value, true, nil
}

// Set stores value under key for ttl, or the default TTL when ttl is not positive.
func (c *LRU) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = c.defaultTTL
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	expiresAt := c.now().Add(ttl)
	if e, ok := c.items[key]; ok {
		e.value = value
		e.expiresAt = expiresAt
		c.order.MoveToFront(e.element)
		return nil
	}

	for len(c.items) >= c.capacity {
		c.evictOldest()
	}

	e := &entry{key: key, value: value, expiresAt: expiresAt}
	e.element = c.order.PushFront(e)
	c.items[key] = e
	return nil
}

// Invalidate removes the entry named by pattern. A trailing * removes every key
// with that prefix. It returns the number of entries removed.
func (c *LRU) Invalidate(_ context.Context, pattern string) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	prefix, wildcard := strings.CutSuffix(pattern, "*")
	if !wildcard {
		if e, ok := c.items[pattern]; ok {
			c.remove(e)
			return 1
		}
		return 0
	}

	n := 0
	for key, e := range c.items {
		if strings.HasPrefix(key, prefix) {
			c.remove(e)
			n++
		}
	}
	return n
}

// Prune removes every expired entry and returns how many were dropped.
func (c *LRU) Prune() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	var expired []*entry
	for _, e := range c.items {
		if !now.Before(e.expiresAt) {
			expired = append(expired, e)
		}
	}
	for _, e := range expired {
		c.remove(e)
	}
	return len(expired)
}

// Len returns the number of entries, including expired ones not yet pruned.
func (c *LRU) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

// must be called with mu held
func (c *LRU) evictOldest() {
	oldest := c.order.Back()
	if oldest == nil {
		return
	}
	c.remove(oldest.Value.(*entry))
}

// must be called with mu held
func (c *LRU) remove(e *entry) {
	c.order.Remove(e.element)
	delete(c.items, e.key)
}
