package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/webstack/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

const defaultConnectTimeout = 5 * time.Second

// RedisCache implements Cache using Redis
type RedisCache struct {
	client     *redis.Client
	ownsClient bool // true if we created the client and should close it
	defaultTTL time.Duration
	observer   Observer
	logger     *zap.Logger
}

// Option configures a cache implementation
type Option func(*options)

type options struct {
	defaultTTL time.Duration
	observer   Observer
	logger     *zap.Logger
}

func newOptions(opts []Option) options {
	o := options{
		defaultTTL: 5 * time.Minute,
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// WithDefaultTTL sets the ttl used when Set is called with zero
func WithDefaultTTL(ttl time.Duration) Option {
	return func(o *options) {
		if ttl > 0 {
			o.defaultTTL = ttl
		}
	}
}

// WithObserver attaches a lookup observer
func WithObserver(observer Observer) Option {
	return func(o *options) {
		o.observer = observer
	}
}

// WithCacheLogger sets the logger for the cache
func WithCacheLogger(logger *zap.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// NewRedisCache connects to Redis and returns a cache that owns the client
func NewRedisCache(cfg config.RedisConfig, opts ...Option) (*RedisCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), defaultConnectTimeout)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	c := NewRedisCacheWithClient(client, append([]Option{WithDefaultTTL(cfg.CacheTTL)}, opts...)...)
	c.ownsClient = true
	return c, nil
}

// NewRedisCacheWithClient creates a cache with an existing Redis client.
// The caller retains ownership of the client and is responsible for closing it.
func NewRedisCacheWithClient(client *redis.Client, opts ...Option) *RedisCache {
	o := newOptions(opts)
	return &RedisCache{
		client:     client,
		defaultTTL: o.defaultTTL,
		observer:   o.observer,
		logger:     o.logger,
	}
}

// Client returns the underlying Redis client so other stores can share it
func (c *RedisCache) Client() *redis.Client {
	return c.client
}

// Get retrieves a value from Redis
func (c *RedisCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	data, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		c.observe(false)
		return nil, false, nil
	}
	if err != nil {
		c.logger.Error("Failed to get cache entry from Redis",
			zap.String("key", key),
			zap.Error(err))
		return nil, false, fmt.Errorf("failed to get %q from cache: %w", key, err)
	}
	c.observe(true)
	return data, true, nil
}

// Set stores a value in Redis with expiry
func (c *RedisCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = c.defaultTTL
	}
	if err := c.client.Set(ctx, key, value, ttl).Err(); err != nil {
		c.logger.Error("Failed to set cache entry in Redis",
			zap.String("key", key),
			zap.Error(err))
		return fmt.Errorf("failed to set %q in cache: %w", key, err)
	}
	return nil
}

// Delete removes keys from Redis
func (c *RedisCache) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("failed to delete cache entries: %w", err)
	}
	return nil
}

// Backend returns "redis"
func (c *RedisCache) Backend() string {
	return BackendRedis
}

// Close releases the client if the cache created it
func (c *RedisCache) Close() error {
	if c.ownsClient {
		return c.client.Close()
	}
	return nil
}

func (c *RedisCache) observe(hit bool) {
	if c.observer != nil {
		c.observer.CacheLookup(BackendRedis, hit)
	}
}

var _ Cache = (*RedisCache)(nil)
