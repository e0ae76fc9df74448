package cache

import (
	"context"
	"encoding/json"
	"sync"
	"time"
)

type item struct {
	data       []byte
	expiration time.Time
}

func (i item) expired(now time.Time) bool {
	return !i.expiration.IsZero() && now.After(i.expiration)
}

// MemoryCache is the single-instance fallback when no Redis URL is set.
// Values are stored JSON encoded so callers never share memory with the cache.
type MemoryCache struct {
	mu    sync.RWMutex
	items map[string]item
	now   func() time.Time
}

func NewMemoryCache() *MemoryCache {
	return &MemoryCache{
		items: make(map[string]item),
		now:   time.Now,
	}
}

func (c *MemoryCache) Set(_ context.Context, key string, value any, ttl time.Duration) error {
	if key == "" {
		return ErrInvalidKey
	}

	data, err := json.Marshal(value)
	if err != nil {
		return err
	}

	it := item{data: data}
	if ttl > 0 {
		it.expiration = c.now().Add(ttl)
	}

	c.mu.Lock()
	c.items[key] = it
	c.mu.Unlock()
	return nil
}

func (c *MemoryCache) Get(_ context.Context, key string, dest any) error {
	c.mu.RLock()
	it, ok := c.items[key]
	c.mu.RUnlock()

	if !ok {
		return ErrKeyNotFound
	}
	if it.expired(c.now()) {
		c.mu.Lock()
		delete(c.items, key)
		c.mu.Unlock()
		return ErrKeyNotFound
	}

	return json.Unmarshal(it.data, dest)
}

func (c *MemoryCache) Delete(_ context.Context, keys ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, k := range keys {
		delete(c.items, k)
	}
	return nil
}

func (c *MemoryCache) Close() error {
	c.mu.Lock()
	c.items = make(map[string]item)
	c.mu.Unlock()
	return nil
}
