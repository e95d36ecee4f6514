package cache

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/propledger/backend/internal/domain/depreciation"
	"go.uber.org/zap"
)

// TieredProjectionCache reads L1 then L2 and writes both. Invalidations
// clear both tiers locally and are broadcast so other instances clear L1.
// L2 and the invalidator are optional; without them the cache is L1 only.
type TieredProjectionCache struct {
	l1          *InMemoryProjectionCache
	l2          depreciation.ProjectionCache
	invalidator depreciation.CacheInvalidator
	l1TTL       time.Duration
	logger      *zap.Logger

	l1Hits int64
	l2Hits int64
	misses int64
}

// TieredProjectionCacheOption configures a TieredProjectionCache
type TieredProjectionCacheOption func(*TieredProjectionCache)

// WithL2 adds a shared second tier
func WithL2(l2 depreciation.ProjectionCache) TieredProjectionCacheOption {
	return func(c *TieredProjectionCache) {
		c.l2 = l2
	}
}

// WithInvalidator broadcasts invalidations to other instances
func WithInvalidator(invalidator depreciation.CacheInvalidator) TieredProjectionCacheOption {
	return func(c *TieredProjectionCache) {
		c.invalidator = invalidator
	}
}

// WithL1TTL sets the lifetime of L1 entries populated from L2
func WithL1TTL(ttl time.Duration) TieredProjectionCacheOption {
	return func(c *TieredProjectionCache) {
		c.l1TTL = ttl
	}
}

// WithTieredLogger sets the logger for the cache
func WithTieredLogger(logger *zap.Logger) TieredProjectionCacheOption {
	return func(c *TieredProjectionCache) {
		c.logger = logger
	}
}

// NewTieredProjectionCache creates a tiered cache over l1
func NewTieredProjectionCache(l1 *InMemoryProjectionCache, opts ...TieredProjectionCacheOption) *TieredProjectionCache {
	cache := &TieredProjectionCache{
		l1:     l1,
		logger: zap.NewNop(),
	}

	for _, opt := range opts {
		opt(cache)
	}

	return cache
}

// StartInvalidationSubscription blocks, applying remote invalidations to L1.
// It returns immediately when no invalidator is configured.
func (c *TieredProjectionCache) StartInvalidationSubscription(ctx context.Context) error {
	if c.invalidator == nil {
		return nil
	}
	return c.invalidator.Subscribe(ctx, c.handleInvalidationMessage)
}

func (c *TieredProjectionCache) handleInvalidationMessage(msg depreciation.CacheUpdateMessage) {
	ownerID, err := uuid.Parse(msg.OwnerID)
	if err != nil {
		c.logger.Error("Invalid owner id in invalidation message",
			zap.String("owner_id", msg.OwnerID),
			zap.Error(err))
		return
	}
	propertyID, err := uuid.Parse(msg.PropertyID)
	if err != nil {
		c.logger.Error("Invalid property id in invalidation message",
			zap.String("property_id", msg.PropertyID),
			zap.Error(err))
		return
	}

	if err := c.l1.InvalidateProperty(context.Background(), ownerID, propertyID); err != nil {
		c.logger.Error("Failed to invalidate L1 projections", zap.Error(err))
	}
}

// Get returns cached rows from L1, falling back to L2 and populating L1
func (c *TieredProjectionCache) Get(ctx context.Context, key depreciation.ProjectionKey) ([]depreciation.ProjectionRow, error) {
	rows, _ := c.l1.Get(ctx, key)
	if rows != nil {
		atomic.AddInt64(&c.l1Hits, 1)
		return rows, nil
	}

	if c.l2 == nil {
		atomic.AddInt64(&c.misses, 1)
		return nil, nil
	}

	rows, err := c.l2.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	if rows == nil {
		atomic.AddInt64(&c.misses, 1)
		return nil, nil
	}

	atomic.AddInt64(&c.l2Hits, 1)
	if err := c.l1.Set(ctx, key, rows, c.l1TTL); err != nil {
		c.logger.Warn("Failed to populate L1 cache", zap.String("key", key.String()), zap.Error(err))
	}
	return rows, nil
}

// Set writes rows to L2 then L1
func (c *TieredProjectionCache) Set(ctx context.Context, key depreciation.ProjectionKey, rows []depreciation.ProjectionRow, ttl time.Duration) error {
	if c.l2 != nil {
		if err := c.l2.Set(ctx, key, rows, ttl); err != nil {
			return err
		}
	}
	return c.l1.Set(ctx, key, rows, c.l1TTL)
}

// InvalidateProperty clears both tiers and notifies other instances
func (c *TieredProjectionCache) InvalidateProperty(ctx context.Context, ownerID, propertyID uuid.UUID) error {
	if c.l2 != nil {
		if err := c.l2.InvalidateProperty(ctx, ownerID, propertyID); err != nil {
			return err
		}
	}

	if err := c.l1.InvalidateProperty(ctx, ownerID, propertyID); err != nil {
		c.logger.Warn("Failed to invalidate L1 projections", zap.Error(err))
	}

	if c.invalidator != nil {
		msg := depreciation.CacheUpdateMessage{OwnerID: ownerID.String(), PropertyID: propertyID.String()}
		if err := c.invalidator.Publish(ctx, msg); err != nil {
			c.logger.Warn("Failed to publish projection invalidation",
				zap.String("property_id", propertyID.String()),
				zap.Error(err))
		}
	}
	return nil
}

// Close releases every tier
func (c *TieredProjectionCache) Close() error {
	var lastErr error

	if c.invalidator != nil {
		if err := c.invalidator.Close(); err != nil {
			lastErr = err
		}
	}
	if c.l2 != nil {
		if err := c.l2.Close(); err != nil {
			lastErr = err
		}
	}
	if err := c.l1.Close(); err != nil {
		lastErr = err
	}

	return lastErr
}

// GetStats returns L1 hits, L2 hits and final misses
func (c *TieredProjectionCache) GetStats() (l1Hits, l2Hits, misses int64) {
	return atomic.LoadInt64(&c.l1Hits), atomic.LoadInt64(&c.l2Hits), atomic.LoadInt64(&c.misses)
}

var _ depreciation.ProjectionCache = (*TieredProjectionCache)(nil)
