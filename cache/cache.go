// ABOUTME: In-memory cache with TTL-based expiration for read-mostly API responses
// ABOUTME: Thread-safe cache using sync.Map with background cleanup and prefix invalidation

package cache

import (
	"log/slog"
	"strings"
	"sync"
	"time"
)

type entry struct {
	data      any
	expiresAt time.Time
}

type Cache struct {
	store sync.Map
	ttl   time.Duration

	stop     chan struct{}
	stopOnce sync.Once
}

// New creates a cache whose entries live for ttl. A zero ttl disables caching.
func New(ttl time.Duration) *Cache {
	c := &Cache{
		ttl:  ttl,
		stop: make(chan struct{}),
	}
	if ttl > 0 {
		go c.startCleanup(time.Minute)
	}
	return c
}

func (c *Cache) Get(key string) (any, bool) {
	val, ok := c.store.Load(key)
	if !ok {
		slog.Debug("Cache miss", "key", key)
		return nil, false
	}

	e := val.(entry)
	if time.Now().After(e.expiresAt) {
		c.store.Delete(key)
		slog.Debug("Cache expired", "key", key)
		return nil, false
	}

	slog.Debug("Cache hit", "key", key)
	return e.data, true
}

func (c *Cache) Set(key string, value any) {
	c.SetWithTTL(key, value, c.ttl)
}

// SetWithTTL stores a value with a custom TTL
func (c *Cache) SetWithTTL(key string, value any, ttl time.Duration) {
	if ttl <= 0 {
		return
	}
	e := entry{
		data:      value,
		expiresAt: time.Now().Add(ttl),
	}
	c.store.Store(key, e)
	slog.Debug("Cache set", "key", key, "ttl", ttl)
}

func (c *Cache) Clear(key string) {
	c.store.Delete(key)
}

// ClearPrefix removes every key starting with prefix.
func (c *Cache) ClearPrefix(prefix string) {
	c.store.Range(func(key, _ any) bool {
		if strings.HasPrefix(key.(string), prefix) {
			c.store.Delete(key)
		}
		return true
	})
	slog.Debug("Cache cleared", "prefix", prefix)
}

// ClearAll removes every entry.
func (c *Cache) ClearAll() {
	c.ClearPrefix("")
}

// Close stops the cleanup goroutine. The cache stays usable.
func (c *Cache) Close() {
	c.stopOnce.Do(func() { close(c.stop) })
}

func (c *Cache) startCleanup(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-c.stop:
			return
		case <-ticker.C:
			c.sweep(time.Now())
		}
	}
}

func (c *Cache) sweep(now time.Time) {
	c.store.Range(func(key, val any) bool {
		e := val.(entry)
		if now.After(e.expiresAt) {
			c.store.Delete(key)
		}
		return true
	})
}
