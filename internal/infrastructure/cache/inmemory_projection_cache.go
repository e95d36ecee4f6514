package cache

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/propledger/backend/internal/domain/depreciation"
	"go.uber.org/zap"
)

const (
	defaultCleanupInterval = 30 * time.Second
	defaultProjectionTTL   = 10 * time.Minute
)

// InMemoryProjectionCache keeps projections in process memory.
// It serves as the L1 tier in front of Redis.
type InMemoryProjectionCache struct {
	entries         sync.Map // map[string]*cacheEntry
	ttl             time.Duration
	cleanupInterval time.Duration
	logger          *zap.Logger
	stopCh          chan struct{}
	stopped         int32

	hits   int64
	misses int64
}

type cacheEntry struct {
	rows      []depreciation.ProjectionRow
	expiresAt time.Time
}

func (e *cacheEntry) isExpired() bool {
	return time.Now().After(e.expiresAt)
}

// InMemoryProjectionCacheOption configures an InMemoryProjectionCache
type InMemoryProjectionCacheOption func(*InMemoryProjectionCache)

// WithInMemoryTTL sets the default entry lifetime
func WithInMemoryTTL(ttl time.Duration) InMemoryProjectionCacheOption {
	return func(c *InMemoryProjectionCache) {
		if ttl > 0 {
			c.ttl = ttl
		}
	}
}

// WithCleanupInterval sets how often expired entries are swept
func WithCleanupInterval(interval time.Duration) InMemoryProjectionCacheOption {
	return func(c *InMemoryProjectionCache) {
		if interval > 0 {
			c.cleanupInterval = interval
		}
	}
}

// WithInMemoryLogger sets the logger for the cache
func WithInMemoryLogger(logger *zap.Logger) InMemoryProjectionCacheOption {
	return func(c *InMemoryProjectionCache) {
		c.logger = logger
	}
}

// NewInMemoryProjectionCache creates the cache and starts its cleanup loop.
// Call Close to stop it.
func NewInMemoryProjectionCache(opts ...InMemoryProjectionCacheOption) *InMemoryProjectionCache {
	cache := &InMemoryProjectionCache{
		ttl:             defaultProjectionTTL,
		cleanupInterval: defaultCleanupInterval,
		logger:          zap.NewNop(),
		stopCh:          make(chan struct{}),
	}

	for _, opt := range opts {
		opt(cache)
	}

	go cache.cleanupExpired()

	return cache
}

// Get returns a copy of the cached rows, or nil on a miss
func (c *InMemoryProjectionCache) Get(ctx context.Context, key depreciation.ProjectionKey) ([]depreciation.ProjectionRow, error) {
	cacheKey := key.String()

	if value, ok := c.entries.Load(cacheKey); ok {
		entry := value.(*cacheEntry)
		if !entry.isExpired() {
			atomic.AddInt64(&c.hits, 1)
			c.logger.Debug("L1 cache hit for projection", zap.String("key", cacheKey))
			return cloneRows(entry.rows), nil
		}
		c.entries.Delete(cacheKey)
	}

	atomic.AddInt64(&c.misses, 1)
	c.logger.Debug("L1 cache miss for projection", zap.String("key", cacheKey))
	return nil, nil
}

// Set stores a copy of rows. A zero ttl uses the cache default.
func (c *InMemoryProjectionCache) Set(ctx context.Context, key depreciation.ProjectionKey, rows []depreciation.ProjectionRow, ttl time.Duration) error {
	if rows == nil {
		return nil
	}
	if ttl == 0 {
		ttl = c.ttl
	}

	c.entries.Store(key.String(), &cacheEntry{
		rows:      cloneRows(rows),
		expiresAt: time.Now().Add(ttl),
	})
	return nil
}

// InvalidateProperty removes every cached range of a property
func (c *InMemoryProjectionCache) InvalidateProperty(ctx context.Context, ownerID, propertyID uuid.UUID) error {
	prefix := depreciation.PropertyKeyPrefix(ownerID, propertyID)
	removed := 0
	c.entries.Range(func(key, _ any) bool {
		if strings.HasPrefix(key.(string), prefix) {
			c.entries.Delete(key)
			removed++
		}
		return true
	})

	c.logger.Debug("Invalidated L1 projections",
		zap.String("owner_id", ownerID.String()),
		zap.String("property_id", propertyID.String()),
		zap.Int("removed", removed))
	return nil
}

// Close stops the cleanup loop
func (c *InMemoryProjectionCache) Close() error {
	if atomic.CompareAndSwapInt32(&c.stopped, 0, 1) {
		close(c.stopCh)
	}
	return nil
}

// GetStats returns cache statistics
func (c *InMemoryProjectionCache) GetStats() (hits, misses int64) {
	return atomic.LoadInt64(&c.hits), atomic.LoadInt64(&c.misses)
}

// Count returns the number of entries, expired ones included
func (c *InMemoryProjectionCache) Count() int {
	n := 0
	c.entries.Range(func(_, _ any) bool {
		n++
		return true
	})
	return n
}

func (c *InMemoryProjectionCache) cleanupExpired() {
	ticker := time.NewTicker(c.cleanupInterval)
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

func (c *InMemoryProjectionCache) doCleanup() {
	removed := 0
	c.entries.Range(func(key, value any) bool {
		if value.(*cacheEntry).isExpired() {
			c.entries.Delete(key)
			removed++
		}
		return true
	})

	if removed > 0 {
		c.logger.Debug("Cleaned up expired L1 projections", zap.Int("removed", removed))
	}
}

func cloneRows(rows []depreciation.ProjectionRow) []depreciation.ProjectionRow {
	out := make([]depreciation.ProjectionRow, len(rows))
	copy(out, rows)
	return out
}

var _ depreciation.ProjectionCache = (*InMemoryProjectionCache)(nil)
