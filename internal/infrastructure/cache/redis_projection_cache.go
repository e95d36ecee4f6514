package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/propledger/backend/internal/domain/depreciation"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	defaultScanBatchSize = 100
	projectionKeyPrefix  = "propledger:projection:"
)

// RedisProjectionCache stores projections in Redis as JSON, shared across
// instances
type RedisProjectionCache struct {
	client     *redis.Client
	ownsClient bool
	ttl        time.Duration
	logger     *zap.Logger
}

// RedisProjectionCacheOption configures a RedisProjectionCache
type RedisProjectionCacheOption func(*RedisProjectionCache)

// WithRedisTTL sets the default entry lifetime
func WithRedisTTL(ttl time.Duration) RedisProjectionCacheOption {
	return func(c *RedisProjectionCache) {
		if ttl > 0 {
			c.ttl = ttl
		}
	}
}

// WithRedisLogger sets the logger for the cache
func WithRedisLogger(logger *zap.Logger) RedisProjectionCacheOption {
	return func(c *RedisProjectionCache) {
		c.logger = logger
	}
}

// NewRedisProjectionCache connects to Redis and owns the client it creates
func NewRedisProjectionCache(cfg RedisConfig, opts ...RedisProjectionCacheOption) (*RedisProjectionCache, error) {
	client, err := NewRedisClient(cfg)
	if err != nil {
		return nil, err
	}

	cache := NewRedisProjectionCacheWithClient(client, opts...)
	cache.ownsClient = true
	return cache, nil
}

// NewRedisProjectionCacheWithClient wraps an existing client. The caller
// keeps ownership of the client.
func NewRedisProjectionCacheWithClient(client *redis.Client, opts ...RedisProjectionCacheOption) *RedisProjectionCache {
	cache := &RedisProjectionCache{
		client: client,
		ttl:    defaultProjectionTTL,
		logger: zap.NewNop(),
	}

	for _, opt := range opts {
		opt(cache)
	}

	return cache
}

func (c *RedisProjectionCache) cacheKey(key depreciation.ProjectionKey) string {
	return projectionKeyPrefix + key.String()
}

// Get returns the cached rows, or nil on a miss. Corrupt entries are deleted.
func (c *RedisProjectionCache) Get(ctx context.Context, key depreciation.ProjectionKey) ([]depreciation.ProjectionRow, error) {
	cacheKey := c.cacheKey(key)

	data, err := c.client.Get(ctx, cacheKey).Bytes()
	if errors.Is(err, redis.Nil) {
		c.logger.Debug("Cache miss for projection", zap.String("key", cacheKey))
		return nil, nil
	}
	if err != nil {
		c.logger.Error("Failed to get projection from cache",
			zap.String("key", cacheKey),
			zap.Error(err))
		return nil, fmt.Errorf("failed to get projection from cache: %w", err)
	}

	var rows []depreciation.ProjectionRow
	if err := json.Unmarshal(data, &rows); err != nil {
		c.logger.Error("Failed to unmarshal projection",
			zap.String("key", cacheKey),
			zap.Error(err))
		_ = c.client.Del(ctx, cacheKey)
		return nil, fmt.Errorf("failed to unmarshal projection: %w", err)
	}

	c.logger.Debug("Cache hit for projection", zap.String("key", cacheKey))
	return rows, nil
}

// Set stores rows. A zero ttl uses the cache default.
func (c *RedisProjectionCache) Set(ctx context.Context, key depreciation.ProjectionKey, rows []depreciation.ProjectionRow, ttl time.Duration) error {
	if rows == nil {
		return nil
	}
	if ttl == 0 {
		ttl = c.ttl
	}

	cacheKey := c.cacheKey(key)
	data, err := json.Marshal(rows)
	if err != nil {
		return fmt.Errorf("failed to marshal projection: %w", err)
	}

	if err := c.client.Set(ctx, cacheKey, data, ttl).Err(); err != nil {
		c.logger.Error("Failed to set projection in cache",
			zap.String("key", cacheKey),
			zap.Error(err))
		return fmt.Errorf("failed to set projection in cache: %w", err)
	}
	return nil
}

// InvalidateProperty deletes every cached range of a property. SCAN is used
// so Redis is never blocked by KEYS.
func (c *RedisProjectionCache) InvalidateProperty(ctx context.Context, ownerID, propertyID uuid.UUID) error {
	pattern := projectionKeyPrefix + depreciation.PropertyKeyPrefix(ownerID, propertyID) + "*"

	var cursor uint64
	var deletedCount int64
	for {
		var keys []string
		var err error
		keys, cursor, err = c.client.Scan(ctx, cursor, pattern, defaultScanBatchSize).Result()
		if err != nil {
			c.logger.Error("Failed to scan projection keys", zap.Error(err))
			return fmt.Errorf("failed to scan cache keys: %w", err)
		}

		if len(keys) > 0 {
			deleted, err := c.client.Del(ctx, keys...).Result()
			if err != nil {
				c.logger.Error("Failed to delete projection keys", zap.Error(err))
				return fmt.Errorf("failed to delete cache keys: %w", err)
			}
			deletedCount += deleted
		}

		if cursor == 0 {
			break
		}
	}

	c.logger.Debug("Invalidated cached projections",
		zap.String("owner_id", ownerID.String()),
		zap.String("property_id", propertyID.String()),
		zap.Int64("deleted_count", deletedCount))
	return nil
}

// Close closes the client if the cache created it
func (c *RedisProjectionCache) Close() error {
	if c.ownsClient {
		return c.client.Close()
	}
	return nil
}

var _ depreciation.ProjectionCache = (*RedisProjectionCache)(nil)
