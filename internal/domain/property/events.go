package property

import (
	"time"

	"github.com/google/uuid"
	"github.com/propledger/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// EventTypePropertySold is raised when a sale is recorded
const EventTypePropertySold = "PropertySold"

// PropertySoldEvent is raised when a property is sold
type PropertySoldEvent struct {
	shared.BaseDomainEvent
	SaleID         uuid.UUID       `json:"sale_id"`
	SalePrice      decimal.Decimal `json:"sale_price"`
	CapitalGain    decimal.Decimal `json:"capital_gain"`
	DiscountedGain decimal.Decimal `json:"discounted_gain"`
	SettlementDate time.Time       `json:"settlement_date"`
}

// PropertyID returns the sold property
func (e *PropertySoldEvent) PropertyID() uuid.UUID {
	return e.AggID
}

// NewPropertySoldEvent creates a new PropertySoldEvent
func NewPropertySoldEvent(p *Property, sale *Sale) *PropertySoldEvent {
	return &PropertySoldEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePropertySold, "Property", p.ID, p.OwnerID),
		SaleID:          sale.ID,
		SalePrice:       sale.SalePrice,
		CapitalGain:     sale.CapitalGain,
		DiscountedGain:  sale.DiscountedGain,
		SettlementDate:  sale.SettlementDate,
	}
}
