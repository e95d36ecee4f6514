package property

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/propledger/backend/internal/domain/property"
	"github.com/propledger/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// =============================================================================
// Mocks
// =============================================================================

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
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]property.Property), args.Error(1)
}

func (m *MockPropertyRepository) RecordSale(ctx context.Context, p *property.Property, sale *property.Sale) error {
	args := m.Called(ctx, p, sale)
	return args.Error(0)
}

type MockTransactionRepository struct {
	mock.Mock
}

func (m *MockTransactionRepository) FindByPropertyForOwner(ctx context.Context, ownerID, propertyID uuid.UUID, categories ...property.TransactionCategory) ([]property.Transaction, error) {
	args := m.Called(ctx, ownerID, propertyID, categories)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]property.Transaction), args.Error(1)
}

func (m *MockTransactionRepository) FindAllForOwner(ctx context.Context, ownerID uuid.UUID, categories ...property.TransactionCategory) ([]property.Transaction, error) {
	args := m.Called(ctx, ownerID, categories)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]property.Transaction), args.Error(1)
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
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]property.Sale), args.Error(1)
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

type cgtFixture struct {
	svc          *CGTService
	properties   *MockPropertyRepository
	transactions *MockTransactionRepository
	sales        *MockSaleRepository
	publisher    *MockEventPublisher
}

func newCGTFixture() *cgtFixture {
	f := &cgtFixture{
		properties:   new(MockPropertyRepository),
		transactions: new(MockTransactionRepository),
		sales:        new(MockSaleRepository),
		publisher:    new(MockEventPublisher),
	}
	f.svc = NewCGTService(f.properties, f.transactions, f.sales, zap.NewNop())
	f.svc.SetEventPublisher(f.publisher)
	return f
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func newTestProperty(ownerID uuid.UUID) *property.Property {
	return &property.Property{
		OwnedAggregateRoot: shared.NewOwnedAggregateRoot(ownerID),
		Address:            "4 Wattle Ave, Brunswick VIC",
		PurchasePrice:      dec("850000"),
		PurchaseDate:       time.Date(2022, 8, 15, 0, 0, 0, 0, time.UTC),
		Status:             property.StatusActive,
	}
}

func acquisitionCosts(p *property.Property) []property.Transaction {
	return []property.Transaction{
		{ID: uuid.New(), OwnerID: p.OwnerID, PropertyID: p.ID, Category: property.CategoryStampDuty, Amount: dec("33000")},
		{ID: uuid.New(), OwnerID: p.OwnerID, PropertyID: p.ID, Category: property.CategoryConveyancing, Amount: dec("1500")},
	}
}

func saleRequest(price, settlement string) RecordSaleRequest {
	return RecordSaleRequest{
		SalePrice:      dec(price),
		SettlementDate: settlement,
		SaleCosts: SaleCostsRequest{
			AgentCommission: dec("20000"),
			LegalFees:       dec("2000"),
		},
	}
}

// =============================================================================
// Tests
// =============================================================================

func TestCGTService_GetCostBase(t *testing.T) {
	ctx := context.Background()
	owner := uuid.New()

	t.Run("adds acquisition costs", func(t *testing.T) {
		f := newCGTFixture()
		p := newTestProperty(owner)
		f.properties.On("FindByIDForOwner", ctx, owner, p.ID).Return(p, nil)
		f.transactions.On("FindByPropertyForOwner", ctx, owner, p.ID, property.AcquisitionCategories()).
			Return(acquisitionCosts(p), nil)

		resp, err := f.svc.GetCostBase(ctx, owner, p.ID)

		require.NoError(t, err)
		assert.True(t, resp.PurchasePrice.Equal(dec("850000")))
		assert.True(t, resp.StampDuty.Equal(dec("33000")))
		assert.True(t, resp.Conveyancing.Equal(dec("1500")))
		assert.True(t, resp.BuyersAgentFees.IsZero())
		assert.True(t, resp.Total.Equal(dec("884500")))
	})

	t.Run("foreign property is not found", func(t *testing.T) {
		f := newCGTFixture()
		id := uuid.New()
		f.properties.On("FindByIDForOwner", ctx, owner, id).Return(nil, property.ErrPropertyNotFound)

		_, err := f.svc.GetCostBase(ctx, owner, id)

		assert.ErrorIs(t, err, shared.ErrNotFound)
		f.transactions.AssertNotCalled(t, "FindByPropertyForOwner", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestCGTService_RecordSale(t *testing.T) {
	ctx := context.Background()
	owner := uuid.New()

	t.Run("discounts a gain held over twelve months", func(t *testing.T) {
		f := newCGTFixture()
		p := newTestProperty(owner)
		f.properties.On("FindByIDForOwner", ctx, owner, p.ID).Return(p, nil)
		f.transactions.On("FindByPropertyForOwner", ctx, owner, p.ID, property.AcquisitionCategories()).
			Return(acquisitionCosts(p), nil)
		f.properties.On("RecordSale", ctx, p, mock.AnythingOfType("*property.Sale")).Return(nil)
		f.publisher.On("Publish", ctx, mock.MatchedBy(func(events []shared.DomainEvent) bool {
			return len(events) == 1 && events[0].EventType() == property.EventTypePropertySold
		})).Return(nil)

		resp, err := f.svc.RecordSale(ctx, owner, p.ID, saleRequest("1000000", "2025-03-01"))

		require.NoError(t, err)
		assert.True(t, resp.CostBase.Equal(dec("906500")))
		assert.True(t, resp.CapitalGain.Equal(dec("93500")))
		assert.True(t, resp.DiscountedGain.Equal(dec("46750")))
		assert.True(t, resp.HeldOverTwelveMonths)
		assert.True(t, resp.SaleCosts.Total.Equal(dec("22000")))
		assert.Equal(t, "2025-03-01", resp.SettlementDate)
		assert.Equal(t, "2024-25", resp.FinancialYear)
		assert.True(t, p.IsSold())
		assert.Empty(t, p.GetDomainEvents())
		f.properties.AssertExpectations(t)
		f.publisher.AssertExpectations(t)
	})

	t.Run("does not discount a short hold", func(t *testing.T) {
		f := newCGTFixture()
		p := newTestProperty(owner)
		f.properties.On("FindByIDForOwner", ctx, owner, p.ID).Return(p, nil)
		f.transactions.On("FindByPropertyForOwner", ctx, owner, p.ID, property.AcquisitionCategories()).
			Return([]property.Transaction{}, nil)
		f.properties.On("RecordSale", ctx, p, mock.Anything).Return(nil)
		f.publisher.On("Publish", ctx, mock.Anything).Return(nil)

		resp, err := f.svc.RecordSale(ctx, owner, p.ID, saleRequest("900000", "2023-06-30"))

		require.NoError(t, err)
		assert.False(t, resp.HeldOverTwelveMonths)
		assert.True(t, resp.CapitalGain.Equal(dec("28000")))
		assert.True(t, resp.DiscountedGain.Equal(dec("28000")))
	})

	t.Run("carries a loss undiscounted", func(t *testing.T) {
		f := newCGTFixture()
		p := newTestProperty(owner)
		f.properties.On("FindByIDForOwner", ctx, owner, p.ID).Return(p, nil)
		f.transactions.On("FindByPropertyForOwner", ctx, owner, p.ID, property.AcquisitionCategories()).
			Return([]property.Transaction{}, nil)
		f.properties.On("RecordSale", ctx, p, mock.Anything).Return(nil)
		f.publisher.On("Publish", ctx, mock.Anything).Return(nil)

		resp, err := f.svc.RecordSale(ctx, owner, p.ID, saleRequest("800000", "2025-03-01"))

		require.NoError(t, err)
		assert.True(t, resp.HeldOverTwelveMonths)
		assert.True(t, resp.CapitalGain.Equal(dec("-72000")))
		assert.True(t, resp.DiscountedGain.Equal(dec("-72000")))
	})

	t.Run("rejects a second sale", func(t *testing.T) {
		f := newCGTFixture()
		p := newTestProperty(owner)
		p.Status = property.StatusSold
		f.properties.On("FindByIDForOwner", ctx, owner, p.ID).Return(p, nil)

		_, err := f.svc.RecordSale(ctx, owner, p.ID, saleRequest("1000000", "2025-03-01"))

		assert.ErrorIs(t, err, property.ErrPropertyAlreadySold)
		f.properties.AssertNotCalled(t, "RecordSale", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("rejects settlement before purchase", func(t *testing.T) {
		f := newCGTFixture()
		p := newTestProperty(owner)
		f.properties.On("FindByIDForOwner", ctx, owner, p.ID).Return(p, nil)
		f.transactions.On("FindByPropertyForOwner", ctx, owner, p.ID, property.AcquisitionCategories()).
			Return([]property.Transaction{}, nil)

		_, err := f.svc.RecordSale(ctx, owner, p.ID, saleRequest("1000000", "2021-01-01"))

		assert.ErrorIs(t, err, property.ErrInvalidSettlementDate)
		assert.False(t, p.IsSold())
	})

	t.Run("rejects a non-positive price", func(t *testing.T) {
		f := newCGTFixture()
		p := newTestProperty(owner)
		f.properties.On("FindByIDForOwner", ctx, owner, p.ID).Return(p, nil)
		f.transactions.On("FindByPropertyForOwner", ctx, owner, p.ID, property.AcquisitionCategories()).
			Return([]property.Transaction{}, nil)

		_, err := f.svc.RecordSale(ctx, owner, p.ID, saleRequest("0", "2025-03-01"))

		assert.ErrorIs(t, err, property.ErrInvalidSalePrice)
	})

	t.Run("rejects a malformed date before loading", func(t *testing.T) {
		f := newCGTFixture()

		_, err := f.svc.RecordSale(ctx, owner, uuid.New(), saleRequest("1000000", "01/03/2025"))

		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "INVALID_DATE", domainErr.Code)
		f.properties.AssertNotCalled(t, "FindByIDForOwner", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("persistence failure skips publishing", func(t *testing.T) {
		f := newCGTFixture()
		p := newTestProperty(owner)
		f.properties.On("FindByIDForOwner", ctx, owner, p.ID).Return(p, nil)
		f.transactions.On("FindByPropertyForOwner", ctx, owner, p.ID, property.AcquisitionCategories()).
			Return([]property.Transaction{}, nil)
		f.properties.On("RecordSale", ctx, p, mock.Anything).Return(errors.New("connection reset"))

		_, err := f.svc.RecordSale(ctx, owner, p.ID, saleRequest("1000000", "2025-03-01"))

		assert.EqualError(t, err, "connection reset")
		f.publisher.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything)
	})

	t.Run("publish failure still returns the sale", func(t *testing.T) {
		f := newCGTFixture()
		p := newTestProperty(owner)
		f.properties.On("FindByIDForOwner", ctx, owner, p.ID).Return(p, nil)
		f.transactions.On("FindByPropertyForOwner", ctx, owner, p.ID, property.AcquisitionCategories()).
			Return([]property.Transaction{}, nil)
		f.properties.On("RecordSale", ctx, p, mock.Anything).Return(nil)
		f.publisher.On("Publish", ctx, mock.Anything).Return(errors.New("bus closed"))

		resp, err := f.svc.RecordSale(ctx, owner, p.ID, saleRequest("1000000", "2025-03-01"))

		require.NoError(t, err)
		assert.NotNil(t, resp)
		assert.Empty(t, p.GetDomainEvents())
	})
}

func TestCGTService_GetSale(t *testing.T) {
	ctx := context.Background()
	owner := uuid.New()

	t.Run("returns the recorded sale", func(t *testing.T) {
		f := newCGTFixture()
		p := newTestProperty(owner)
		sale := &property.Sale{
			ID:             uuid.New(),
			OwnerID:        owner,
			PropertyID:     p.ID,
			SalePrice:      dec("1000000"),
			CapitalGain:    dec("93500"),
			DiscountedGain: dec("46750"),
			SettlementDate: time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
		}
		f.properties.On("FindByIDForOwner", ctx, owner, p.ID).Return(p, nil)
		f.sales.On("FindByPropertyForOwner", ctx, owner, p.ID).Return(sale, nil)

		resp, err := f.svc.GetSale(ctx, owner, p.ID)

		require.NoError(t, err)
		assert.Equal(t, sale.ID, resp.ID)
		assert.True(t, resp.DiscountedGain.Equal(dec("46750")))
	})

	t.Run("unsold property has no sale", func(t *testing.T) {
		f := newCGTFixture()
		p := newTestProperty(owner)
		f.properties.On("FindByIDForOwner", ctx, owner, p.ID).Return(p, nil)
		f.sales.On("FindByPropertyForOwner", ctx, owner, p.ID).Return(nil, property.ErrSaleNotFound)

		_, err := f.svc.GetSale(ctx, owner, p.ID)

		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}

func TestCGTService_GetPortfolioSummary(t *testing.T) {
	ctx := context.Background()
	owner := uuid.New()

	active := newTestProperty(owner)
	sold := newTestProperty(owner)
	sold.PurchasePrice = dec("600000")
	sold.Status = property.StatusSold

	f := newCGTFixture()
	f.properties.On("FindAllForOwner", ctx, owner).Return([]property.Property{*active, *sold}, nil)
	f.transactions.On("FindAllForOwner", ctx, owner, property.AcquisitionCategories()).
		Return(append(acquisitionCosts(active), acquisitionCosts(sold)...), nil)
	f.sales.On("FindAllForOwner", ctx, owner).Return([]property.Sale{
		{ID: uuid.New(), OwnerID: owner, PropertyID: sold.ID, DiscountedGain: dec("46750")},
	}, nil)

	resp, err := f.svc.GetPortfolioSummary(ctx, owner)

	require.NoError(t, err)
	assert.Equal(t, 1, resp.ActiveProperties)
	assert.True(t, resp.ActivePurchaseTotal.Equal(dec("850000")))
	assert.True(t, resp.ActiveCostBaseTotal.Equal(dec("884500")))
	assert.Equal(t, 1, resp.SoldProperties)
	assert.True(t, resp.RealisedGainTotal.Equal(dec("46750")))
}
