// Package cache holds the notification dedup cache: a memoized mapping
// from (user_id, shop_id) to previously generated text, so the generator
// service is called at most once per unique pair.
package cache

import (
	"container/list"
	"context"
	"fmt"
	"sync"
	"time"
)

// Store is what the pipeline sees. Entries are write-once per key and
// never mutated; empty values are never stored.
type Store interface {
	Get(ctx context.Context, userID, shopID int) (string, bool)
	Set(ctx context.Context, userID, shopID int, text string)
	Stats() map[string]any
}

// Key builds the canonical cache key for a (user, shop) pair.
func Key(userID, shopID int) string {
	return fmt.Sprintf("%d:%d", userID, shopID)
}

type memoryEntry struct {
	key       string
	text      string
	expiresAt time.Time
}

// Memory is a bounded LRU cache with per-entry TTL. It is owned by a
// single worker and still guarded by a mutex so the admin stats endpoint
// can read it safely.
type Memory struct {
	mu        sync.Mutex
	entries   map[string]*list.Element
	order     *list.List // front = most recently used
	capacity  int
	ttl       time.Duration
	evictions int64
	// onEvict is invoked (outside the lock) once per capacity eviction.
	onEvict func()
}

// NewMemory creates a worker-local cache bounded to capacity entries.
// onEvict may be nil.
func NewMemory(capacity int, ttl time.Duration, onEvict func()) *Memory {
	if capacity <= 0 {
		capacity = 1
	}
	return &Memory{
		entries:  make(map[string]*list.Element),
		order:    list.New(),
		capacity: capacity,
		ttl:      ttl,
		onEvict:  onEvict,
	}
}

func (c *Memory) Get(_ context.Context, userID, shopID int) (string, bool) {
	key := Key(userID, shopID)

	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.entries[key]
	if !ok {
		return "", false
	}
	entry := el.Value.(*memoryEntry)
	if time.Now().After(entry.expiresAt) {
		c.order.Remove(el)
		delete(c.entries, key)
		return "", false
	}
	c.order.MoveToFront(el)
	return entry.text, true
}

func (c *Memory) Set(_ context.Context, userID, shopID int, text string) {
	if text == "" {
		return
	}
	key := Key(userID, shopID)

	c.mu.Lock()
	if el, ok := c.entries[key]; ok {
		entry := el.Value.(*memoryEntry)
		if time.Now().After(entry.expiresAt) {
			// An expired entry counts as absent: take the new text.
			entry.text = text
			entry.expiresAt = time.Now().Add(c.ttl)
			c.order.MoveToFront(el)
			c.mu.Unlock()
			return
		}
		// Write-once keys: keep the original text, just refresh recency.
		c.order.MoveToFront(el)
		c.mu.Unlock()
		return
	}

	el := c.order.PushFront(&memoryEntry{
		key:       key,
		text:      text,
		expiresAt: time.Now().Add(c.ttl),
	})
	c.entries[key] = el

	evicted := 0
	for c.order.Len() > c.capacity {
		oldest := c.order.Back()
		if oldest == nil {
			break
		}
		c.order.Remove(oldest)
		delete(c.entries, oldest.Value.(*memoryEntry).key)
		c.evictions++
		evicted++
	}
	c.mu.Unlock()

	if c.onEvict != nil {
		for i := 0; i < evicted; i++ {
			c.onEvict()
		}
	}
}

func (c *Memory) Stats() map[string]any {
	c.mu.Lock()
	defer c.mu.Unlock()

	active := 0
	now := time.Now()
	for _, el := range c.entries {
		if now.Before(el.Value.(*memoryEntry).expiresAt) {
			active++
		}
	}
	return map[string]any{
		"backend":     "memory",
		"total_keys":  len(c.entries),
		"active_keys": active,
		"capacity":    c.capacity,
		"evictions":   c.evictions,
	}
}

// Evictions returns how many entries were dropped for capacity.
func (c *Memory) Evictions() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.evictions
}
