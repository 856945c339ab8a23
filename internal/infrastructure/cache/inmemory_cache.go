package cache

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

const defaultCleanupInterval = 30 * time.Second

// InMemoryCache implements Cache in process memory.
// It stands in for Redis in development and when Redis is unreachable.
type InMemoryCache struct {
	entries    sync.Map // map[string]*cacheEntry[[]byte]
	defaultTTL time.Duration
	observer   Observer
	logger     *zap.Logger
	stopCh     chan struct{}
	stopped    int32

	hits   int64
	misses int64
}

// cacheEntry wraps a cached value with expiration time
type cacheEntry[T any] struct {
	value     T
	expiresAt time.Time
}

func (e *cacheEntry[T]) isExpired() bool {
	return time.Now().After(e.expiresAt)
}

// NewInMemoryCache creates a cache and starts its cleanup goroutine
func NewInMemoryCache(opts ...Option) *InMemoryCache {
	o := newOptions(opts)
	c := &InMemoryCache{
		defaultTTL: o.defaultTTL,
		observer:   o.observer,
		logger:     o.logger,
		stopCh:     make(chan struct{}),
	}

	go c.cleanupExpired(defaultCleanupInterval)

	return c
}

// Get returns a copy of the stored value
func (c *InMemoryCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	if value, ok := c.entries.Load(key); ok {
		entry := value.(*cacheEntry[[]byte])
		if !entry.isExpired() {
			atomic.AddInt64(&c.hits, 1)
			c.observe(true)
			return append([]byte(nil), entry.value...), true, nil
		}
		c.entries.Delete(key)
	}

	atomic.AddInt64(&c.misses, 1)
	c.observe(false)
	return nil, false, nil
}

// Set stores a copy of value
func (c *InMemoryCache) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = c.defaultTTL
	}
	c.entries.Store(key, &cacheEntry[[]byte]{
		value:     append([]byte(nil), value...),
		expiresAt: time.Now().Add(ttl),
	})
	return nil
}

// Delete removes keys; missing keys are ignored
func (c *InMemoryCache) Delete(_ context.Context, keys ...string) error {
	for _, key := range keys {
		c.entries.Delete(key)
	}
	return nil
}

// Backend returns "memory"
func (c *InMemoryCache) Backend() string {
	return BackendInMemory
}

// Close stops the cleanup goroutine. It is safe to call more than once.
func (c *InMemoryCache) Close() error {
	if atomic.CompareAndSwapInt32(&c.stopped, 0, 1) {
		close(c.stopCh)
	}
	return nil
}

// GetStats returns cache statistics
func (c *InMemoryCache) GetStats() (hits, misses int64) {
	return atomic.LoadInt64(&c.hits), atomic.LoadInt64(&c.misses)
}

// Count returns the number of stored entries, expired ones included
func (c *InMemoryCache) Count() int {
	count := 0
	c.entries.Range(func(_, _ any) bool {
		count++
		return true
	})
	return count
}

func (c *InMemoryCache) observe(hit bool) {
	if c.observer != nil {
		c.observer.CacheLookup(BackendInMemory, hit)
	}
}

func (c *InMemoryCache) cleanupExpired(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-c.stopCh:
			return
		case <-ticker.C:
			func() {
				defer func() {
					if r := recover(); r != nil {
						c.logger.Error("Panic in cache cleanup", zap.Any("panic", r))
					}
				}()
				c.doCleanup()
			}()
		}
	}
}

func (c *InMemoryCache) doCleanup() {
	removed := 0
	c.entries.Range(func(key, value any) bool {
		if value.(*cacheEntry[[]byte]).isExpired() {
			c.entries.Delete(key)
			removed++
		}
		return true
	})
	if removed > 0 {
		c.logger.Debug("Cleaned up expired cache entries", zap.Int("removed", removed))
	}
}

var _ Cache = (*InMemoryCache)(nil)
