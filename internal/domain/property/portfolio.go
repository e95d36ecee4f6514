package property

import (
	"github.com/google/uuid"
	"github.com/propledger/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// PortfolioSummary aggregates an owner's properties. Sold properties are
// excluded from the active figures.
type PortfolioSummary struct {
	ActiveProperties    int
	ActivePurchaseTotal decimal.Decimal
	ActiveCostBaseTotal decimal.Decimal
	SoldProperties      int
	RealisedGainTotal   decimal.Decimal
}

// SummarizePortfolio rolls properties, their transactions and sales up into a
// PortfolioSummary
func SummarizePortfolio(properties []Property, transactions []Transaction, sales []Sale) PortfolioSummary {
	byProperty := make(map[uuid.UUID][]Transaction)
	for _, tx := range transactions {
		byProperty[tx.PropertyID] = append(byProperty[tx.PropertyID], tx)
	}

	summary := PortfolioSummary{
		ActivePurchaseTotal: decimal.Zero,
		ActiveCostBaseTotal: decimal.Zero,
		RealisedGainTotal:   decimal.Zero,
	}

	for i := range properties {
		p := &properties[i]
		if p.IsSold() {
			summary.SoldProperties++
			continue
		}
		summary.ActiveProperties++
		summary.ActivePurchaseTotal = summary.ActivePurchaseTotal.Add(p.PurchasePrice)
		summary.ActiveCostBaseTotal = summary.ActiveCostBaseTotal.Add(CalculateCostBase(p, byProperty[p.ID]).Total)
	}

	for _, s := range sales {
		summary.RealisedGainTotal = summary.RealisedGainTotal.Add(s.DiscountedGain)
	}

	summary.ActivePurchaseTotal = valueobject.RoundMoney(summary.ActivePurchaseTotal)
	summary.ActiveCostBaseTotal = valueobject.RoundMoney(summary.ActiveCostBaseTotal)
	summary.RealisedGainTotal = valueobject.RoundMoney(summary.RealisedGainTotal)
	return summary
}
