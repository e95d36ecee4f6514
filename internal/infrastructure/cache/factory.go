package cache

import (
	"fmt"

	"github.com/propledger/backend/internal/infrastructure/config"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// ProjectionCacheFactory builds the projection cache from configuration
type ProjectionCacheFactory struct {
	redisConfig           config.RedisConfig
	cacheConfig           config.CacheConfig
	logger                *zap.Logger
	allowInMemoryFallback bool
}

// ProjectionCacheFactoryOption configures the factory
type ProjectionCacheFactoryOption func(*ProjectionCacheFactory)

// WithLogger sets the logger for the factory and the caches it builds
func WithLogger(logger *zap.Logger) ProjectionCacheFactoryOption {
	return func(f *ProjectionCacheFactory) {
		f.logger = logger
	}
}

// WithInMemoryFallback controls whether an unreachable Redis degrades to an
// L1-only cache. Default is true.
func WithInMemoryFallback(allow bool) ProjectionCacheFactoryOption {
	return func(f *ProjectionCacheFactory) {
		f.allowInMemoryFallback = allow
	}
}

// NewProjectionCacheFactory creates a new factory
func NewProjectionCacheFactory(redisCfg config.RedisConfig, cacheCfg config.CacheConfig, opts ...ProjectionCacheFactoryOption) *ProjectionCacheFactory {
	f := &ProjectionCacheFactory{
		redisConfig:           redisCfg,
		cacheConfig:           cacheCfg,
		logger:                zap.NewNop(),
		allowInMemoryFallback: true,
	}

	for _, opt := range opts {
		opt(f)
	}

	return f
}

// CreateInMemoryCache creates the L1 tier
func (f *ProjectionCacheFactory) CreateInMemoryCache() *InMemoryProjectionCache {
	return NewInMemoryProjectionCache(
		WithInMemoryTTL(f.cacheConfig.ProjectionTTL),
		WithCleanupInterval(f.cacheConfig.LocalCleanup),
		WithInMemoryLogger(f.logger),
	)
}

// CreateCache builds a tiered cache. With Redis enabled and reachable it has
// an L2 tier and Pub/Sub invalidation; otherwise it is L1 only, unless
// fallback is disabled.
func (f *ProjectionCacheFactory) CreateCache() (*TieredProjectionCache, error) {
	l1 := f.CreateInMemoryCache()
	if !f.redisConfig.Enabled {
		f.logger.Info("Redis disabled, using in-memory projection cache")
		return NewTieredProjectionCache(l1, WithTieredLogger(f.logger)), nil
	}

	client, err := NewRedisClient(RedisConfig{
		Host:     f.redisConfig.Host,
		Port:     f.redisConfig.Port,
		Password: f.redisConfig.Password,
		DB:       f.redisConfig.DB,
	})
	if err != nil {
		if !f.allowInMemoryFallback {
			_ = l1.Close()
			return nil, fmt.Errorf("redis required for projection cache but unavailable: %w", err)
		}
		f.logger.Warn("Redis unavailable, falling back to in-memory projection cache. "+
			"Other instances will not see invalidations.",
			zap.Error(err),
		)
		return NewTieredProjectionCache(l1, WithTieredLogger(f.logger)), nil
	}

	f.logger.Info("using Redis projection cache",
		zap.String("addr", f.redisConfig.Addr()),
		zap.String("channel", f.cacheConfig.InvalidationChannel))
	return f.createTiered(l1, client), nil
}

func (f *ProjectionCacheFactory) createTiered(l1 *InMemoryProjectionCache, client *redis.Client) *TieredProjectionCache {
	l2 := NewRedisProjectionCacheWithClient(client,
		WithRedisTTL(f.cacheConfig.ProjectionTTL),
		WithRedisLogger(f.logger),
	)
	// The L2 cache owns the shared client so the tiered Close releases it.
	l2.ownsClient = true

	invalidator := NewRedisProjectionInvalidator(client,
		WithInvalidatorChannel(f.cacheConfig.InvalidationChannel),
		WithInvalidatorLogger(f.logger),
	)

	return NewTieredProjectionCache(l1,
		WithL2(l2),
		WithInvalidator(invalidator),
		WithL1TTL(f.cacheConfig.ProjectionTTL),
		WithTieredLogger(f.logger),
	)
}
