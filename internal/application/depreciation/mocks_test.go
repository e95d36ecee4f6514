package depreciation

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/propledger/backend/internal/domain/depreciation"
	"github.com/propledger/backend/internal/domain/property"
	"github.com/propledger/backend/internal/domain/shared"
	"github.com/propledger/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

// =============================================================================
// Mock Repositories
// =============================================================================

type MockScheduleRepository struct {
	mock.Mock
}

func (m *MockScheduleRepository) FindByIDForOwner(ctx context.Context, ownerID, id uuid.UUID) (*depreciation.DepreciationSchedule, error) {
	args := m.Called(ctx, ownerID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*depreciation.DepreciationSchedule), args.Error(1)
}

func (m *MockScheduleRepository) FindByAssetForOwner(ctx context.Context, ownerID, assetID uuid.UUID) (*depreciation.DepreciationSchedule, error) {
	args := m.Called(ctx, ownerID, assetID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*depreciation.DepreciationSchedule), args.Error(1)
}

func (m *MockScheduleRepository) FindByPropertyForOwner(ctx context.Context, ownerID, propertyID uuid.UUID) ([]depreciation.DepreciationSchedule, error) {
	args := m.Called(ctx, ownerID, propertyID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]depreciation.DepreciationSchedule), args.Error(1)
}

func (m *MockScheduleRepository) Create(ctx context.Context, schedule *depreciation.DepreciationSchedule) error {
	args := m.Called(ctx, schedule)
	return args.Error(0)
}

type MockAssetRepository struct {
	mock.Mock
}

func (m *MockAssetRepository) Save(ctx context.Context, asset *depreciation.DepreciationAsset) error {
	args := m.Called(ctx, asset)
	return args.Error(0)
}

func (m *MockAssetRepository) DeleteForOwner(ctx context.Context, ownerID, id uuid.UUID) error {
	args := m.Called(ctx, ownerID, id)
	return args.Error(0)
}

type MockClaimRepository struct {
	mock.Mock
}

func (m *MockClaimRepository) RecordClaims(ctx context.Context, claims []depreciation.Claim, affected []*depreciation.DepreciationAsset) error {
	args := m.Called(ctx, claims, affected)
	return args.Error(0)
}

func (m *MockClaimRepository) RemoveClaims(ctx context.Context, ownerID, scheduleID uuid.UUID, fy valueobject.FinancialYear, affected []*depreciation.DepreciationAsset) (int64, error) {
	args := m.Called(ctx, ownerID, scheduleID, fy, affected)
	return args.Get(0).(int64), args.Error(1)
}

type MockCapitalWorkRepository struct {
	mock.Mock
}

func (m *MockCapitalWorkRepository) FindByPropertyForOwner(ctx context.Context, ownerID, propertyID uuid.UUID) ([]depreciation.CapitalWork, error) {
	args := m.Called(ctx, ownerID, propertyID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]depreciation.CapitalWork), args.Error(1)
}

func (m *MockCapitalWorkRepository) Save(ctx context.Context, cw *depreciation.CapitalWork) error {
	args := m.Called(ctx, cw)
	return args.Error(0)
}

type MockPropertyRepository struct {
	mock.Mock
}

func (m *MockPropertyRepository) FindByIDForOwner(ctx context.Context, ownerID, id uuid.UUID) (*property.Property, error) {
	args := m.Called(ctx, ownerID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*property.Property), args.Error(1)
}

func (m *MockPropertyRepository) FindAllForOwner(ctx context.Context, ownerID uuid.UUID) ([]property.Property, error) {
	args := m.Called(ctx, ownerID)
	return args.Get(0).([]property.Property), args.Error(1)
}

func (m *MockPropertyRepository) RecordSale(ctx context.Context, p *property.Property, sale *property.Sale) error {
	args := m.Called(ctx, p, sale)
	return args.Error(0)
}

type MockSaleRepository struct {
	mock.Mock
}

func (m *MockSaleRepository) FindByPropertyForOwner(ctx context.Context, ownerID, propertyID uuid.UUID) (*property.Sale, error) {
	args := m.Called(ctx, ownerID, propertyID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*property.Sale), args.Error(1)
}

func (m *MockSaleRepository) FindAllForOwner(ctx context.Context, ownerID uuid.UUID) ([]property.Sale, error) {
	args := m.Called(ctx, ownerID)
	return args.Get(0).([]property.Sale), args.Error(1)
}

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

type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	args := m.Called(ctx, events)
	return args.Error(0)
}

// =============================================================================
// Fixtures
// =============================================================================

func newTestProperty(ownerID uuid.UUID) *property.Property {
	return &property.Property{
		OwnedAggregateRoot: shared.NewOwnedAggregateRoot(ownerID),
		Address:            "12 Harbour St, Sydney NSW",
		PurchasePrice:      decimal.RequireFromString("850000"),
		PurchaseDate:       time.Date(2022, 8, 15, 0, 0, 0, 0, time.UTC),
		Status:             property.StatusActive,
	}
}

func newSoldProperty(ownerID uuid.UUID) *property.Property {
	p := newTestProperty(ownerID)
	soldAt := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	p.Status = property.StatusSold
	p.SoldAt = &soldAt
	return p
}

func newTestSchedule(ownerID, propertyID uuid.UUID, inputs ...depreciation.AssetInput) *depreciation.DepreciationSchedule {
	s, err := depreciation.NewDepreciationSchedule(ownerID, propertyID, time.Date(2023, 7, 1, 0, 0, 0, 0, time.UTC), nil, inputs)
	if err != nil {
		panic(err)
	}
	s.ClearDomainEvents()
	return s
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func heater() depreciation.AssetInput {
	return depreciation.AssetInput{
		AssetName:     "Heater",
		OriginalCost:  dec("1200"),
		EffectiveLife: dec("4"),
		Method:        depreciation.MethodDiminishingValue,
	}
}

func carpet() depreciation.AssetInput {
	return depreciation.AssetInput{
		AssetName:     "Carpet",
		OriginalCost:  dec("8000"),
		EffectiveLife: dec("10"),
		Method:        depreciation.MethodPrimeCost,
	}
}
