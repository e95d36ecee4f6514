package property

import (
	"time"

	"github.com/propledger/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Status represents the lifecycle state of a property
type Status string

const (
	StatusActive Status = "active"
	StatusSold   Status = "sold"
)

// IsValid checks if the status is a valid Status
func (s Status) IsValid() bool {
	return s == StatusActive || s == StatusSold
}

// String returns the string representation of Status
func (s Status) String() string {
	return string(s)
}

// IsTerminal returns true once no further changes are allowed
func (s Status) IsTerminal() bool {
	return s == StatusSold
}

// Property is an investment property. Properties are created and edited
// elsewhere; this service reads them and records their sale.
type Property struct {
	shared.OwnedAggregateRoot
	Address       string
	PurchasePrice decimal.Decimal
	PurchaseDate  time.Time
	Status        Status
	SoldAt        *time.Time
}

// IsSold returns true when a sale has been recorded
func (p *Property) IsSold() bool {
	return p.Status == StatusSold
}

// EnsureActive returns ErrPropertySold when the property has been sold
func (p *Property) EnsureActive() error {
	if p.Status.IsTerminal() {
		return ErrPropertySold
	}
	return nil
}

// RecordSale computes the capital gain for a sale and moves the property to
// sold. A property can be sold only once.
func (p *Property) RecordSale(costBase CostBase, salePrice decimal.Decimal, settlementDate time.Time, costs SaleCosts) (*Sale, error) {
	if p.IsSold() {
		return nil, ErrPropertyAlreadySold
	}

	sale, err := newSale(p, costBase, salePrice, settlementDate, costs)
	if err != nil {
		return nil, err
	}

	settled := sale.SettlementDate
	p.Status = StatusSold
	p.SoldAt = &settled
	p.Touch(time.Now())
	p.IncrementVersion()

	p.AddDomainEvent(NewPropertySoldEvent(p, sale))
	return sale, nil
}
