package property

import (
	"context"

	"github.com/google/uuid"
	"github.com/propledger/backend/internal/domain/property"
	"github.com/propledger/backend/internal/domain/shared"
	"github.com/propledger/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// CGTService calculates cost bases and records property sales
type CGTService struct {
	properties   property.PropertyRepository
	transactions property.TransactionRepository
	sales        property.SaleRepository

	eventPublisher shared.EventPublisher
	engineMetrics  *telemetry.EngineMetrics
	logger         *zap.Logger
}

// NewCGTService creates a new CGTService
func NewCGTService(
	properties property.PropertyRepository,
	transactions property.TransactionRepository,
	sales property.SaleRepository,
	logger *zap.Logger,
) *CGTService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CGTService{
		properties:   properties,
		transactions: transactions,
		sales:        sales,
		logger:       logger,
	}
}

// SetEventPublisher sets the publisher that receives PropertySold events
func (s *CGTService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// SetEngineMetrics sets the engine metrics collector
func (s *CGTService) SetEngineMetrics(em *telemetry.EngineMetrics) {
	s.engineMetrics = em
}

// GetCostBase returns the purchase price plus acquisition costs of a property
func (s *CGTService) GetCostBase(ctx context.Context, ownerID, propertyID uuid.UUID) (*CostBaseResponse, error) {
	p, err := s.properties.FindByIDForOwner(ctx, ownerID, propertyID)
	if err != nil {
		return nil, err
	}
	cb, err := s.costBase(ctx, p)
	if err != nil {
		return nil, err
	}
	return ToCostBaseResponse(cb), nil
}

// RecordSale records the one and only sale of a property. The sale and the
// property's sold status are persisted together.
func (s *CGTService) RecordSale(ctx context.Context, ownerID, propertyID uuid.UUID, req RecordSaleRequest) (_ *SaleResponse, err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "cgt", "record_sale",
		telemetry.WithAttribute(telemetry.SpanAttrPropertyID, propertyID),
	)
	defer telemetry.EndSpan(span, &err)

	settlement, err := parseSettlementDate(req.SettlementDate)
	if err != nil {
		return nil, err
	}

	p, err := s.properties.FindByIDForOwner(ctx, ownerID, propertyID)
	if err != nil {
		return nil, err
	}
	if p.IsSold() {
		return nil, property.ErrPropertyAlreadySold
	}

	cb, err := s.costBase(ctx, p)
	if err != nil {
		return nil, err
	}

	sale, err := p.RecordSale(cb, req.SalePrice, settlement, req.SaleCosts.toSaleCosts())
	if err != nil {
		return nil, err
	}

	if err := s.properties.RecordSale(ctx, p, sale); err != nil {
		return nil, err
	}

	s.logger.Info("property sold",
		zap.String("owner_id", ownerID.String()),
		zap.String("property_id", propertyID.String()),
		zap.String("sale_id", sale.ID.String()),
		zap.String("capital_gain", sale.CapitalGain.StringFixed(2)),
		zap.Bool("discounted", sale.HeldOverTwelveMonths && sale.CapitalGain.IsPositive()),
	)
	if s.engineMetrics != nil {
		s.engineMetrics.RecordSale(ctx, ownerID, sale.HeldOverTwelveMonths && sale.CapitalGain.IsPositive())
	}

	s.publishEvents(ctx, p)
	return ToSaleResponse(sale), nil
}

// GetSale returns the recorded sale of a property
func (s *CGTService) GetSale(ctx context.Context, ownerID, propertyID uuid.UUID) (*SaleResponse, error) {
	if _, err := s.properties.FindByIDForOwner(ctx, ownerID, propertyID); err != nil {
		return nil, err
	}
	sale, err := s.sales.FindByPropertyForOwner(ctx, ownerID, propertyID)
	if err != nil {
		return nil, err
	}
	return ToSaleResponse(sale), nil
}

// GetPortfolioSummary rolls up an owner's active and sold properties
func (s *CGTService) GetPortfolioSummary(ctx context.Context, ownerID uuid.UUID) (*PortfolioSummaryResponse, error) {
	properties, err := s.properties.FindAllForOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	transactions, err := s.transactions.FindAllForOwner(ctx, ownerID, property.AcquisitionCategories()...)
	if err != nil {
		return nil, err
	}
	sales, err := s.sales.FindAllForOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	return ToPortfolioSummaryResponse(property.SummarizePortfolio(properties, transactions, sales)), nil
}

func (s *CGTService) costBase(ctx context.Context, p *property.Property) (property.CostBase, error) {
	transactions, err := s.transactions.FindByPropertyForOwner(ctx, p.OwnerID, p.ID, property.AcquisitionCategories()...)
	if err != nil {
		return property.CostBase{}, err
	}
	return property.CalculateCostBase(p, transactions), nil
}

func (s *CGTService) publishEvents(ctx context.Context, p *property.Property) {
	defer p.ClearDomainEvents()
	if s.eventPublisher == nil {
		return
	}
	if err := s.eventPublisher.Publish(ctx, p.GetDomainEvents()...); err != nil {
		s.logger.Warn("failed to publish domain events",
			zap.String("property_id", p.ID.String()),
			zap.Error(err),
		)
	}
}
