package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/propledger/backend/internal/domain/depreciation"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	defaultCloseTimeout        = 5 * time.Second
	defaultInvalidationChannel = "propledger:projection:invalidate"
)

// RedisProjectionInvalidator broadcasts projection invalidations over Redis
// Pub/Sub so every instance can drop its L1 entries
type RedisProjectionInvalidator struct {
	client    *redis.Client
	channel   string
	logger    *zap.Logger
	cancelFn  context.CancelFunc
	doneCh    chan struct{}
	doneOnce  sync.Once
	mu        sync.Mutex
	isRunning bool
}

// RedisProjectionInvalidatorOption configures a RedisProjectionInvalidator
type RedisProjectionInvalidatorOption func(*RedisProjectionInvalidator)

// WithInvalidatorChannel sets the Pub/Sub channel name
func WithInvalidatorChannel(channel string) RedisProjectionInvalidatorOption {
	return func(i *RedisProjectionInvalidator) {
		if channel != "" {
			i.channel = channel
		}
	}
}

// WithInvalidatorLogger sets the logger for the invalidator
func WithInvalidatorLogger(logger *zap.Logger) RedisProjectionInvalidatorOption {
	return func(i *RedisProjectionInvalidator) {
		i.logger = logger
	}
}

// NewRedisProjectionInvalidator creates an invalidator on a shared client.
// The caller keeps ownership of the client.
func NewRedisProjectionInvalidator(client *redis.Client, opts ...RedisProjectionInvalidatorOption) *RedisProjectionInvalidator {
	invalidator := &RedisProjectionInvalidator{
		client:  client,
		channel: defaultInvalidationChannel,
		logger:  zap.NewNop(),
		doneCh:  make(chan struct{}),
	}

	for _, opt := range opts {
		opt(invalidator)
	}

	return invalidator
}

// Publish sends an invalidation to all subscribers
func (i *RedisProjectionInvalidator) Publish(ctx context.Context, msg depreciation.CacheUpdateMessage) error {
	if msg.Timestamp == 0 {
		msg.Timestamp = time.Now().UnixNano()
	}

	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	if err := i.client.Publish(ctx, i.channel, data).Err(); err != nil {
		i.logger.Error("Failed to publish projection invalidation",
			zap.String("channel", i.channel),
			zap.Error(err))
		return fmt.Errorf("failed to publish message: %w", err)
	}
	return nil
}

// PublishPropertyInvalidation announces that a property's projections are stale
func (i *RedisProjectionInvalidator) PublishPropertyInvalidation(ctx context.Context, ownerID, propertyID uuid.UUID) error {
	return i.Publish(ctx, depreciation.CacheUpdateMessage{
		OwnerID:    ownerID.String(),
		PropertyID: propertyID.String(),
	})
}

// Subscribe listens for invalidations until ctx is cancelled or Close is
// called. It blocks; run it in a goroutine.
func (i *RedisProjectionInvalidator) Subscribe(ctx context.Context, callback func(msg depreciation.CacheUpdateMessage)) error {
	i.mu.Lock()
	if i.isRunning {
		i.mu.Unlock()
		return errors.New("subscription already running")
	}
	i.isRunning = true
	subCtx, cancel := context.WithCancel(ctx)
	i.cancelFn = cancel
	i.mu.Unlock()

	defer func() {
		i.mu.Lock()
		i.isRunning = false
		i.mu.Unlock()
		i.markDone()
	}()

	pubsub := i.client.Subscribe(subCtx, i.channel)
	defer pubsub.Close()

	if _, err := pubsub.Receive(subCtx); err != nil {
		return fmt.Errorf("failed to subscribe to channel: %w", err)
	}

	i.logger.Info("Subscribed to projection invalidation channel",
		zap.String("channel", i.channel))

	ch := pubsub.Channel()
	for {
		select {
		case <-subCtx.Done():
			i.logger.Info("Projection invalidation subscription stopped")
			return subCtx.Err()
		case msg, ok := <-ch:
			if !ok {
				i.logger.Warn("Projection invalidation channel closed")
				return nil
			}

			var update depreciation.CacheUpdateMessage
			if err := json.Unmarshal([]byte(msg.Payload), &update); err != nil {
				i.logger.Error("Failed to unmarshal projection invalidation",
					zap.String("payload", msg.Payload),
					zap.Error(err))
				continue
			}

			func() {
				defer func() {
					if r := recover(); r != nil {
						i.logger.Error("Panic in invalidation callback", zap.Any("panic", r))
					}
				}()
				callback(update)
			}()
		}
	}
}

func (i *RedisProjectionInvalidator) markDone() {
	i.doneOnce.Do(func() {
		close(i.doneCh)
	})
}

// Close stops a running subscription
func (i *RedisProjectionInvalidator) Close() error {
	i.mu.Lock()
	cancelFn := i.cancelFn
	i.mu.Unlock()

	if cancelFn != nil {
		cancelFn()
		select {
		case <-i.doneCh:
		case <-time.After(defaultCloseTimeout):
			i.logger.Warn("Timeout waiting for subscription to stop")
		}
	}
	return nil
}

var _ depreciation.CacheInvalidator = (*RedisProjectionInvalidator)(nil)
