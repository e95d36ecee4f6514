package auth

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/propledger/backend/internal/infrastructure/config"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func newTestJWTService() *JWTService {
	return NewJWTService(config.JWTConfig{
		Secret:                testSecret,
		Issuer:                "propledger",
		AccessTokenExpiration: 15 * time.Minute,
	})
}

func sign(t *testing.T, method jwt.SigningMethod, key any, claims jwt.Claims) string {
	t.Helper()
	s, err := jwt.NewWithClaims(method, claims).SignedString(key)
	require.NoError(t, err)
	return s
}

func registered(issuer, subject string, expiresIn time.Duration) jwt.RegisteredClaims {
	now := time.Now()
	return jwt.RegisteredClaims{
		Issuer:    issuer,
		Subject:   subject,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(expiresIn)),
	}
}

func TestJWTService_RoundTrip(t *testing.T) {
	svc := newTestJWTService()
	owner := uuid.New()

	token, expiresAt, err := svc.GenerateAccessToken(owner)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(15*time.Minute), expiresAt, time.Second)

	claims, err := svc.ValidateAccessToken(token)
	require.NoError(t, err)
	got, err := claims.Owner()
	require.NoError(t, err)
	assert.Equal(t, owner, got)
	assert.NotEmpty(t, claims.ID)
}

func TestJWTService_ValidateAccessToken(t *testing.T) {
	svc := newTestJWTService()
	owner := uuid.New()

	tests := []struct {
		name    string
		token   func(t *testing.T) string
		wantErr error
	}{
		{
			name: "owner from sub",
			token: func(t *testing.T) string {
				return sign(t, jwt.SigningMethodHS256, []byte(testSecret), &Claims{
					RegisteredClaims: registered("propledger", owner.String(), time.Minute),
				})
			},
		},
		{
			name: "expired",
			token: func(t *testing.T) string {
				return sign(t, jwt.SigningMethodHS256, []byte(testSecret), &Claims{
					RegisteredClaims: registered("propledger", owner.String(), -time.Hour),
				})
			},
			wantErr: ErrExpiredToken,
		},
		{
			name: "wrong secret",
			token: func(t *testing.T) string {
				return sign(t, jwt.SigningMethodHS256, []byte("another-secret-another-secret-!!"), &Claims{
					RegisteredClaims: registered("propledger", owner.String(), time.Minute),
				})
			},
			wantErr: ErrInvalidToken,
		},
		{
			name: "wrong algorithm",
			token: func(t *testing.T) string {
				return sign(t, jwt.SigningMethodHS512, []byte(testSecret), &Claims{
					RegisteredClaims: registered("propledger", owner.String(), time.Minute),
				})
			},
			wantErr: ErrInvalidToken,
		},
		{
			name: "foreign issuer",
			token: func(t *testing.T) string {
				return sign(t, jwt.SigningMethodHS256, []byte(testSecret), &Claims{
					RegisteredClaims: registered("someone-else", owner.String(), time.Minute),
				})
			},
			wantErr: ErrInvalidToken,
		},
		{
			name: "no expiry",
			token: func(t *testing.T) string {
				return sign(t, jwt.SigningMethodHS256, []byte(testSecret), &Claims{
					RegisteredClaims: jwt.RegisteredClaims{Issuer: "propledger", Subject: owner.String()},
				})
			},
			wantErr: ErrInvalidToken,
		},
		{
			name: "no owner",
			token: func(t *testing.T) string {
				return sign(t, jwt.SigningMethodHS256, []byte(testSecret), &Claims{
					RegisteredClaims: registered("propledger", "", time.Minute),
				})
			},
			wantErr: ErrMissingOwner,
		},
		{
			name: "owner is not a uuid",
			token: func(t *testing.T) string {
				return sign(t, jwt.SigningMethodHS256, []byte(testSecret), &Claims{
					RegisteredClaims: registered("propledger", "alice", time.Minute),
				})
			},
			wantErr: ErrInvalidClaims,
		},
		{
			name:    "garbage",
			token:   func(*testing.T) string { return "not.a.token" },
			wantErr: ErrInvalidToken,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			claims, err := svc.ValidateAccessToken(tt.token(t))
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, claims)
				return
			}
			require.NoError(t, err)
			got, err := claims.Owner()
			require.NoError(t, err)
			assert.Equal(t, owner, got)
		})
	}
}

func TestClaims_OwnerPrefersOwnerClaim(t *testing.T) {
	owner := uuid.New()
	c := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: uuid.NewString()},
		OwnerID:          owner.String(),
	}

	got, err := c.Owner()

	require.NoError(t, err)
	assert.Equal(t, owner, got)
}

func TestInMemoryTokenBlacklist(t *testing.T) {
	ctx := context.Background()
	b := NewInMemoryTokenBlacklist()

	b.Revoke("jti-1", time.Minute)
	b.Revoke("jti-expired", -time.Minute)

	revoked, err := b.IsBlacklisted(ctx, "jti-1")
	require.NoError(t, err)
	assert.True(t, revoked)

	revoked, _ = b.IsBlacklisted(ctx, "jti-expired")
	assert.False(t, revoked)

	at := time.Now()
	b.InvalidateOwner("owner-1", at)

	invalid, _ := b.IsOwnerTokenInvalidated(ctx, "owner-1", at.Add(-time.Second))
	assert.True(t, invalid)
	invalid, _ = b.IsOwnerTokenInvalidated(ctx, "owner-1", at.Add(time.Second))
	assert.False(t, invalid)
	invalid, _ = b.IsOwnerTokenInvalidated(ctx, "owner-2", at)
	assert.False(t, invalid)
}

func TestRedisTokenBlacklist_Unreachable(t *testing.T) {
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 100 * time.Millisecond,
		MaxRetries:  -1,
	})
	defer client.Close()
	b := NewRedisTokenBlacklist(client)

	_, err := b.IsBlacklisted(context.Background(), "jti-1")
	assert.ErrorContains(t, err, "check token blacklist")

	_, err = b.IsOwnerTokenInvalidated(context.Background(), "owner-1", time.Now())
	assert.ErrorContains(t, err, "check owner token invalidation")
}
