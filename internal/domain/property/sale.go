package property

import (
	"time"

	"github.com/google/uuid"
	"github.com/propledger/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// Sale is the single disposal record of a property
type Sale struct {
	ID                   uuid.UUID
	OwnerID              uuid.UUID
	PropertyID           uuid.UUID
	SalePrice            decimal.Decimal
	SaleCosts            SaleCosts
	CostBase             decimal.Decimal
	CapitalGain          decimal.Decimal
	DiscountedGain       decimal.Decimal
	HeldOverTwelveMonths bool
	SettlementDate       time.Time
	CreatedAt            time.Time
}

// TotalSaleCosts returns the summed sale costs
func (s *Sale) TotalSaleCosts() decimal.Decimal {
	return s.SaleCosts.Total()
}

// SettledIn returns the financial year the sale settled in
func (s *Sale) SettledIn() valueobject.FinancialYear {
	return valueobject.FinancialYearOf(s.SettlementDate)
}

func newSale(p *Property, costBase CostBase, salePrice decimal.Decimal, settlementDate time.Time, costs SaleCosts) (*Sale, error) {
	if !salePrice.IsPositive() {
		return nil, ErrInvalidSalePrice
	}
	if err := costs.validate(); err != nil {
		return nil, err
	}
	if settlementDate.IsZero() || settlementDate.Before(p.PurchaseDate) {
		return nil, ErrInvalidSettlementDate
	}

	effective := valueobject.SumMoney(costBase.Total, costs.Total())
	gain := valueobject.RoundMoney(salePrice.Sub(effective))
	held := HeldOverTwelveMonths(p.PurchaseDate, settlementDate)

	return &Sale{
		ID:                   uuid.New(),
		OwnerID:              p.OwnerID,
		PropertyID:           p.ID,
		SalePrice:            valueobject.RoundMoney(salePrice),
		SaleCosts:            costs,
		CostBase:             effective,
		CapitalGain:          gain,
		DiscountedGain:       DiscountedGain(gain, held),
		HeldOverTwelveMonths: held,
		SettlementDate:       settlementDate,
		CreatedAt:            time.Now(),
	}, nil
}
