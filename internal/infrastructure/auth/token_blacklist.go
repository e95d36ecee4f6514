package auth

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

const blacklistKeyPrefix = "token:blacklist:"

// TokenBlacklist answers whether a token was revoked before it expired.
// The identity service writes the entries; this service only reads them.
type TokenBlacklist interface {
	// IsBlacklisted reports whether the token with this jti was revoked
	IsBlacklisted(ctx context.Context, jti string) (bool, error)

	// IsOwnerTokenInvalidated reports whether every token of the owner issued
	// at or before the owner's invalidation time was revoked
	IsOwnerTokenInvalidated(ctx context.Context, ownerID string, issuedAt time.Time) (bool, error)
}

// RedisTokenBlacklist reads revocations from the Redis shared with the
// identity service. Keys are token:blacklist:jti:<jti> (any value) and
// token:blacklist:owner:<owner> holding a unix timestamp.
type RedisTokenBlacklist struct {
	client *redis.Client
}

// NewRedisTokenBlacklist creates a blacklist on an existing client. The
// caller owns the client.
func NewRedisTokenBlacklist(client *redis.Client) *RedisTokenBlacklist {
	return &RedisTokenBlacklist{client: client}
}

// IsBlacklisted implements TokenBlacklist
func (b *RedisTokenBlacklist) IsBlacklisted(ctx context.Context, jti string) (bool, error) {
	n, err := b.client.Exists(ctx, blacklistKeyPrefix+"jti:"+jti).Result()
	if err != nil {
		return false, fmt.Errorf("check token blacklist: %w", err)
	}
	return n > 0, nil
}

// IsOwnerTokenInvalidated implements TokenBlacklist
func (b *RedisTokenBlacklist) IsOwnerTokenInvalidated(ctx context.Context, ownerID string, issuedAt time.Time) (bool, error) {
	raw, err := b.client.Get(ctx, blacklistKeyPrefix+"owner:"+ownerID).Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("check owner token invalidation: %w", err)
	}

	invalidatedAt, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return false, fmt.Errorf("parse invalidation timestamp %q: %w", raw, err)
	}
	return issuedAt.Unix() <= invalidatedAt, nil
}

var _ TokenBlacklist = (*RedisTokenBlacklist)(nil)

// InMemoryTokenBlacklist is a single-process TokenBlacklist for development
// and tests
type InMemoryTokenBlacklist struct {
	mu            sync.RWMutex
	revoked       map[string]time.Time // jti -> entry expiry
	invalidatedAt map[string]time.Time // owner -> invalidation time
}

// NewInMemoryTokenBlacklist creates an empty in-memory blacklist
func NewInMemoryTokenBlacklist() *InMemoryTokenBlacklist {
	return &InMemoryTokenBlacklist{
		revoked:       make(map[string]time.Time),
		invalidatedAt: make(map[string]time.Time),
	}
}

// Revoke blacklists jti for ttl
func (b *InMemoryTokenBlacklist) Revoke(jti string, ttl time.Duration) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.revoked[jti] = time.Now().Add(ttl)
}

// InvalidateOwner revokes every token of ownerID issued at or before at
func (b *InMemoryTokenBlacklist) InvalidateOwner(ownerID string, at time.Time) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.invalidatedAt[ownerID] = at
}

// IsBlacklisted implements TokenBlacklist
func (b *InMemoryTokenBlacklist) IsBlacklisted(_ context.Context, jti string) (bool, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	expiry, ok := b.revoked[jti]
	return ok && time.Now().Before(expiry), nil
}

// IsOwnerTokenInvalidated implements TokenBlacklist
func (b *InMemoryTokenBlacklist) IsOwnerTokenInvalidated(_ context.Context, ownerID string, issuedAt time.Time) (bool, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	at, ok := b.invalidatedAt[ownerID]
	return ok && !issuedAt.After(at), nil
}

var _ TokenBlacklist = (*InMemoryTokenBlacklist)(nil)
