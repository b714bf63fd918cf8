package cache

import "sync"

type basicCacheEntry[T any] struct {
	data  T
	valid bool
	// closed once the claimed entry is set or dropped
	ready chan struct{}
}

type basicCache[T any] struct {
	mu      sync.Mutex
	entries map[string]*basicCacheEntry[T]
}

func (c *basicCache[T]) getOrClaim(key string) hitResult[T] {
	c.mu.Lock()
	defer c.mu.Unlock()

	if entry, ok := c.entries[key]; ok {
		return hitResult[T]{data: entry.data, valid: entry.valid}
	}

	c.entries[key] = &basicCacheEntry[T]{ready: make(chan struct{})}
	return hitResult[T]{claimed: true}
}

func (c *basicCache[T]) release(key string, entry *basicCacheEntry[T]) {
	if old, ok := c.entries[key]; ok && !old.valid {
		close(old.ready)
	}
	if entry == nil {
		delete(c.entries, key)
		return
	}
	c.entries[key] = entry
}

func (c *basicCache[T]) set(key string, data T) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.release(key, &basicCacheEntry[T]{data: data, valid: true})
}

func (c *basicCache[T]) delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.release(key, nil)
}

func (c *basicCache[T]) wait(key string) {
	c.mu.Lock()
	entry, ok := c.entries[key]
	c.mu.Unlock()

	if !ok || entry.valid {
		return
	}
	<-entry.ready
}

// NewBasicCache never expires entries. Waiters block until the claimed entry is resolved.
func NewBasicCache[T any]() *basicCache[T] {
	return &basicCache[T]{
		entries: make(map[string]*basicCacheEntry[T]),
	}
}
