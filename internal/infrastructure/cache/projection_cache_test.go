package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/propledger/backend/internal/domain/depreciation"
	"github.com/propledger/backend/internal/domain/shared/valueobject"
	"github.com/propledger/backend/internal/infrastructure/config"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockProjectionCache struct {
	mock.Mock
}

func (m *MockProjectionCache) Get(ctx context.Context, key depreciation.ProjectionKey) ([]depreciation.ProjectionRow, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]depreciation.ProjectionRow), args.Error(1)
}

func (m *MockProjectionCache) Set(ctx context.Context, key depreciation.ProjectionKey, rows []depreciation.ProjectionRow, ttl time.Duration) error {
	args := m.Called(ctx, key, rows, ttl)
	return args.Error(0)
}

func (m *MockProjectionCache) InvalidateProperty(ctx context.Context, ownerID, propertyID uuid.UUID) error {
	args := m.Called(ctx, ownerID, propertyID)
	return args.Error(0)
}

func (m *MockProjectionCache) Close() error {
	args := m.Called()
	return args.Error(0)
}

type MockCacheInvalidator struct {
	mock.Mock
}

func (m *MockCacheInvalidator) Publish(ctx context.Context, msg depreciation.CacheUpdateMessage) error {
	args := m.Called(ctx, msg)
	return args.Error(0)
}

func (m *MockCacheInvalidator) Subscribe(ctx context.Context, callback func(msg depreciation.CacheUpdateMessage)) error {
	args := m.Called(ctx, callback)
	return args.Error(0)
}

func (m *MockCacheInvalidator) Close() error {
	args := m.Called()
	return args.Error(0)
}

func testKey(owner, property uuid.UUID) depreciation.ProjectionKey {
	return depreciation.ProjectionKey{OwnerID: owner, PropertyID: property, From: 2025, To: 2027}
}

func testRows() []depreciation.ProjectionRow {
	rows := make([]depreciation.ProjectionRow, 0, 3)
	for fy := valueobject.FinancialYear(2025); fy <= 2027; fy++ {
		rows = append(rows, depreciation.ProjectionRow{
			FinancialYear:     fy,
			Div40Total:        decimal.RequireFromString("1000.00"),
			Div43Total:        decimal.RequireFromString("250.00"),
			LowValuePoolTotal: decimal.Zero,
			GrandTotal:        decimal.RequireFromString("1250.00"),
		})
	}
	return rows
}

func TestProjectionKey_String(t *testing.T) {
	owner := uuid.MustParse("11111111-1111-1111-1111-111111111111")
	property := uuid.MustParse("22222222-2222-2222-2222-222222222222")

	key := testKey(owner, property)
	assert.Equal(t, "11111111-1111-1111-1111-111111111111:22222222-2222-2222-2222-222222222222:2025-2027", key.String())
}

func TestInMemoryProjectionCache_GetSet(t *testing.T) {
	c := NewInMemoryProjectionCache()
	t.Cleanup(func() { _ = c.Close() })

	ctx := context.Background()
	key := testKey(uuid.New(), uuid.New())

	rows, err := c.Get(ctx, key)
	require.NoError(t, err)
	assert.Nil(t, rows)

	require.NoError(t, c.Set(ctx, key, testRows(), time.Minute))

	rows, err = c.Get(ctx, key)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, valueobject.FinancialYear(2025), rows[0].FinancialYear)

	hits, misses := c.GetStats()
	assert.Equal(t, int64(1), hits)
	assert.Equal(t, int64(1), misses)
}

func TestInMemoryProjectionCache_ReturnsCopies(t *testing.T) {
	c := NewInMemoryProjectionCache()
	t.Cleanup(func() { _ = c.Close() })

	ctx := context.Background()
	key := testKey(uuid.New(), uuid.New())
	require.NoError(t, c.Set(ctx, key, testRows(), time.Minute))

	rows, err := c.Get(ctx, key)
	require.NoError(t, err)
	rows[0].GrandTotal = decimal.Zero

	again, err := c.Get(ctx, key)
	require.NoError(t, err)
	assert.True(t, again[0].GrandTotal.Equal(decimal.RequireFromString("1250.00")))
}

func TestInMemoryProjectionCache_Expiry(t *testing.T) {
	c := NewInMemoryProjectionCache()
	t.Cleanup(func() { _ = c.Close() })

	ctx := context.Background()
	key := testKey(uuid.New(), uuid.New())
	require.NoError(t, c.Set(ctx, key, testRows(), 10*time.Millisecond))

	time.Sleep(20 * time.Millisecond)

	rows, err := c.Get(ctx, key)
	require.NoError(t, err)
	assert.Nil(t, rows)
}

func TestInMemoryProjectionCache_InvalidateProperty(t *testing.T) {
	c := NewInMemoryProjectionCache()
	t.Cleanup(func() { _ = c.Close() })

	ctx := context.Background()
	owner := uuid.New()
	stale := uuid.New()
	other := uuid.New()

	require.NoError(t, c.Set(ctx, testKey(owner, stale), testRows(), time.Minute))
	require.NoError(t, c.Set(ctx, depreciation.ProjectionKey{OwnerID: owner, PropertyID: stale, From: 2030, To: 2031}, testRows(), time.Minute))
	require.NoError(t, c.Set(ctx, testKey(owner, other), testRows(), time.Minute))
	require.Equal(t, 3, c.Count())

	require.NoError(t, c.InvalidateProperty(ctx, owner, stale))

	assert.Equal(t, 1, c.Count())
	rows, err := c.Get(ctx, testKey(owner, other))
	require.NoError(t, err)
	assert.NotNil(t, rows)
}

func TestInMemoryProjectionCache_CloseIsIdempotent(t *testing.T) {
	c := NewInMemoryProjectionCache()
	assert.NoError(t, c.Close())
	assert.NoError(t, c.Close())
}

func TestTieredProjectionCache_L1Only(t *testing.T) {
	l1 := NewInMemoryProjectionCache()
	c := NewTieredProjectionCache(l1)
	t.Cleanup(func() { _ = c.Close() })

	ctx := context.Background()
	key := testKey(uuid.New(), uuid.New())

	rows, err := c.Get(ctx, key)
	require.NoError(t, err)
	assert.Nil(t, rows)

	require.NoError(t, c.Set(ctx, key, testRows(), 0))
	rows, err = c.Get(ctx, key)
	require.NoError(t, err)
	assert.Len(t, rows, 3)

	require.NoError(t, c.InvalidateProperty(ctx, key.OwnerID, key.PropertyID))
	rows, err = c.Get(ctx, key)
	require.NoError(t, err)
	assert.Nil(t, rows)

	l1Hits, l2Hits, misses := c.GetStats()
	assert.Equal(t, int64(1), l1Hits)
	assert.Equal(t, int64(0), l2Hits)
	assert.Equal(t, int64(2), misses)
}

func TestTieredProjectionCache_PopulatesL1FromL2(t *testing.T) {
	l1 := NewInMemoryProjectionCache()
	t.Cleanup(func() { _ = l1.Close() })
	l2 := new(MockProjectionCache)

	c := NewTieredProjectionCache(l1, WithL2(l2))
	ctx := context.Background()
	key := testKey(uuid.New(), uuid.New())

	l2.On("Get", ctx, key).Return(testRows(), nil).Once()

	rows, err := c.Get(ctx, key)
	require.NoError(t, err)
	assert.Len(t, rows, 3)

	// second read is served by L1
	rows, err = c.Get(ctx, key)
	require.NoError(t, err)
	assert.Len(t, rows, 3)

	l1Hits, l2Hits, _ := c.GetStats()
	assert.Equal(t, int64(1), l1Hits)
	assert.Equal(t, int64(1), l2Hits)
	l2.AssertExpectations(t)
}

func TestTieredProjectionCache_L2ErrorPropagates(t *testing.T) {
	l1 := NewInMemoryProjectionCache()
	t.Cleanup(func() { _ = l1.Close() })
	l2 := new(MockProjectionCache)

	c := NewTieredProjectionCache(l1, WithL2(l2))
	ctx := context.Background()
	key := testKey(uuid.New(), uuid.New())

	l2.On("Get", ctx, key).Return(nil, errors.New("connection refused"))

	rows, err := c.Get(ctx, key)
	assert.Error(t, err)
	assert.Nil(t, rows)
}

func TestTieredProjectionCache_InvalidatePublishes(t *testing.T) {
	l1 := NewInMemoryProjectionCache()
	l2 := new(MockProjectionCache)
	inv := new(MockCacheInvalidator)

	c := NewTieredProjectionCache(l1, WithL2(l2), WithInvalidator(inv))
	ctx := context.Background()
	owner, property := uuid.New(), uuid.New()

	l2.On("InvalidateProperty", ctx, owner, property).Return(nil)
	inv.On("Publish", ctx, mock.MatchedBy(func(msg depreciation.CacheUpdateMessage) bool {
		return msg.OwnerID == owner.String() && msg.PropertyID == property.String()
	})).Return(errors.New("publish failed"))

	// a failed broadcast does not fail the invalidation
	require.NoError(t, c.InvalidateProperty(ctx, owner, property))

	inv.On("Close").Return(nil)
	l2.On("Close").Return(nil)
	require.NoError(t, c.Close())

	l2.AssertExpectations(t)
	inv.AssertExpectations(t)
}

func TestTieredProjectionCache_HandleInvalidationMessage(t *testing.T) {
	l1 := NewInMemoryProjectionCache()
	c := NewTieredProjectionCache(l1)
	t.Cleanup(func() { _ = c.Close() })

	ctx := context.Background()
	key := testKey(uuid.New(), uuid.New())
	require.NoError(t, l1.Set(ctx, key, testRows(), time.Minute))

	c.handleInvalidationMessage(depreciation.CacheUpdateMessage{OwnerID: "not-a-uuid", PropertyID: key.PropertyID.String()})
	assert.Equal(t, 1, l1.Count())

	c.handleInvalidationMessage(depreciation.CacheUpdateMessage{
		OwnerID:    key.OwnerID.String(),
		PropertyID: key.PropertyID.String(),
	})
	assert.Equal(t, 0, l1.Count())
}

func TestProjectionCacheFactory_RedisDisabled(t *testing.T) {
	f := NewProjectionCacheFactory(config.RedisConfig{Enabled: false}, config.CacheConfig{ProjectionTTL: time.Minute})

	c, err := f.CreateCache()
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })

	assert.Nil(t, c.l2)
	assert.Nil(t, c.invalidator)
	assert.NoError(t, c.StartInvalidationSubscription(context.Background()))
}

func TestProjectionCacheFactory_FallbackDisabled(t *testing.T) {
	f := NewProjectionCacheFactory(
		config.RedisConfig{Enabled: true, Host: "127.0.0.1", Port: 1},
		config.CacheConfig{},
		WithInMemoryFallback(false),
	)

	c, err := f.CreateCache()
	assert.Error(t, err)
	assert.Nil(t, c)
}

func TestProjectionCacheFactory_FallsBackToMemory(t *testing.T) {
	f := NewProjectionCacheFactory(
		config.RedisConfig{Enabled: true, Host: "127.0.0.1", Port: 1},
		config.CacheConfig{},
	)

	c, err := f.CreateCache()
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	assert.Nil(t, c.l2)
}
