package cache

import (
	"fmt"

	"github.com/webstack/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

// Factory creates the cache backend selected by configuration
type Factory struct {
	redisConfig           config.RedisConfig
	logger                *zap.Logger
	observer              Observer
	allowInMemoryFallback bool
}

// FactoryOption is a functional option for configuring the factory
type FactoryOption func(*Factory)

// WithLogger sets the logger for the factory and the caches it creates
func WithLogger(logger *zap.Logger) FactoryOption {
	return func(f *Factory) {
		f.logger = logger
	}
}

// WithInMemoryFallback controls whether to fall back to the in-memory cache when Redis is unavailable.
// Default is true.
func WithInMemoryFallback(allow bool) FactoryOption {
	return func(f *Factory) {
		f.allowInMemoryFallback = allow
	}
}

// WithLookupObserver attaches an observer to the created cache
func WithLookupObserver(observer Observer) FactoryOption {
	return func(f *Factory) {
		f.observer = observer
	}
}

// NewFactory creates a new factory
func NewFactory(cfg config.RedisConfig, opts ...FactoryOption) *Factory {
	f := &Factory{
		redisConfig:           cfg,
		logger:                zap.NewNop(),
		allowInMemoryFallback: true,
	}

	for _, opt := range opts {
		opt(f)
	}

	return f
}

// Create returns a Redis cache when enabled and reachable, otherwise an in-memory cache
func (f *Factory) Create() (Cache, error) {
	if !f.redisConfig.Enabled {
		f.logger.Info("Redis disabled, using in-memory cache")
		return f.CreateInMemory(), nil
	}

	c, err := NewRedisCache(f.redisConfig, f.cacheOptions()...)
	if err == nil {
		f.logger.Info("Using Redis cache",
			zap.String("host", f.redisConfig.Host),
			zap.Int("port", f.redisConfig.Port))
		return c, nil
	}

	if !f.allowInMemoryFallback {
		return nil, fmt.Errorf("redis cache unavailable: %w", err)
	}

	f.logger.Warn("Redis unavailable, falling back to in-memory cache",
		zap.String("host", f.redisConfig.Host),
		zap.Int("port", f.redisConfig.Port),
		zap.Error(err))
	return f.CreateInMemory(), nil
}

// CreateInMemory returns an in-memory cache with the configured ttl
func (f *Factory) CreateInMemory() *InMemoryCache {
	return NewInMemoryCache(f.cacheOptions()...)
}

func (f *Factory) cacheOptions() []Option {
	return []Option{
		WithDefaultTTL(f.redisConfig.CacheTTL),
		WithObserver(f.observer),
		WithCacheLogger(f.logger.Named("cache")),
	}
}
