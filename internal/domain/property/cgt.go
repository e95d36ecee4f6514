package property

import (
	"time"

	"github.com/google/uuid"
	"github.com/propledger/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// CGTDiscountRate is the discount applied to gains on assets held at least
// twelve months
var CGTDiscountRate = decimal.RequireFromString("0.5")

// DiscountHoldingDays is the minimum holding period for the CGT discount
const DiscountHoldingDays = 365

// CostBase is the CGT cost base of a property before sale costs
type CostBase struct {
	PropertyID      uuid.UUID
	PurchasePrice   decimal.Decimal
	StampDuty       decimal.Decimal
	Conveyancing    decimal.Decimal
	BuyersAgentFees decimal.Decimal
	InitialRepairs  decimal.Decimal
	Total           decimal.Decimal
}

// CalculateCostBase adds the property's acquisition transactions to its
// purchase price. Transactions of other properties or categories are ignored.
// Costs are positive and refunds negative, so a refund reduces its category.
func CalculateCostBase(p *Property, transactions []Transaction) CostBase {
	cb := CostBase{
		PropertyID:      p.ID,
		PurchasePrice:   valueobject.RoundMoney(p.PurchasePrice),
		StampDuty:       decimal.Zero,
		Conveyancing:    decimal.Zero,
		BuyersAgentFees: decimal.Zero,
		InitialRepairs:  decimal.Zero,
	}

	for _, tx := range transactions {
		if tx.PropertyID != p.ID {
			continue
		}
		amount := tx.Amount
		switch tx.Category {
		case CategoryStampDuty:
			cb.StampDuty = cb.StampDuty.Add(amount)
		case CategoryConveyancing:
			cb.Conveyancing = cb.Conveyancing.Add(amount)
		case CategoryBuyersAgentFees:
			cb.BuyersAgentFees = cb.BuyersAgentFees.Add(amount)
		case CategoryInitialRepairs:
			cb.InitialRepairs = cb.InitialRepairs.Add(amount)
		}
	}

	cb.StampDuty = valueobject.RoundMoney(cb.StampDuty)
	cb.Conveyancing = valueobject.RoundMoney(cb.Conveyancing)
	cb.BuyersAgentFees = valueobject.RoundMoney(cb.BuyersAgentFees)
	cb.InitialRepairs = valueobject.RoundMoney(cb.InitialRepairs)
	cb.Total = valueobject.SumMoney(cb.PurchasePrice, cb.StampDuty, cb.Conveyancing, cb.BuyersAgentFees, cb.InitialRepairs)
	return cb
}

// SaleCosts are incidental costs of disposal added to the cost base
type SaleCosts struct {
	AgentCommission decimal.Decimal
	LegalFees       decimal.Decimal
	MarketingCosts  decimal.Decimal
	Other           decimal.Decimal
}

// Total sums the sale costs
func (c SaleCosts) Total() decimal.Decimal {
	return valueobject.SumMoney(c.AgentCommission, c.LegalFees, c.MarketingCosts, c.Other)
}

func (c SaleCosts) validate() error {
	for _, v := range []decimal.Decimal{c.AgentCommission, c.LegalFees, c.MarketingCosts, c.Other} {
		if v.IsNegative() {
			return ErrInvalidSaleCosts
		}
	}
	return nil
}

// HeldOverTwelveMonths reports whether at least DiscountHoldingDays passed
// between purchase and settlement
func HeldOverTwelveMonths(purchase, settlement time.Time) bool {
	p := time.Date(purchase.Year(), purchase.Month(), purchase.Day(), 0, 0, 0, 0, time.UTC)
	s := time.Date(settlement.Year(), settlement.Month(), settlement.Day(), 0, 0, 0, 0, time.UTC)
	days := int(s.Sub(p).Hours() / 24)
	return days >= DiscountHoldingDays
}

// DiscountedGain applies the CGT discount. Losses are never discounted.
func DiscountedGain(capitalGain decimal.Decimal, heldOverTwelveMonths bool) decimal.Decimal {
	if heldOverTwelveMonths && capitalGain.IsPositive() {
		return valueobject.RoundMoney(capitalGain.Mul(CGTDiscountRate))
	}
	return valueobject.RoundMoney(capitalGain)
}
