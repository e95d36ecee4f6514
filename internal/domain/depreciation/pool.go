package depreciation

import (
	"github.com/shopspring/decimal"
)

// ATO pool thresholds in AUD
var (
	ImmediateWriteOffThreshold = decimal.NewFromInt(300)
	LowValuePoolThreshold      = decimal.NewFromInt(1000)
)

// Low-value pool rates. Assets entering the pool at cost are deducted at the
// half rate in their first year.
var (
	LowValuePoolFirstYearRate = decimal.RequireFromString("0.1875")
	LowValuePoolRate          = decimal.RequireFromString("0.375")
)

// ClassifyPool returns the pool for an asset of the given cost
func ClassifyPool(cost decimal.Decimal) PoolType {
	switch {
	case cost.LessThanOrEqual(ImmediateWriteOffThreshold):
		return PoolImmediateWriteOff
	case cost.LessThanOrEqual(LowValuePoolThreshold):
		return PoolLowValue
	default:
		return PoolIndividual
	}
}

// CanMoveToLowValuePool reports whether an asset in pool with the given
// written-down value may be moved into the low-value pool
func CanMoveToLowValuePool(pool PoolType, category Category, remainingValue decimal.Decimal) error {
	if pool != PoolIndividual || category.IsCapitalWorks() {
		return ErrInvalidPoolTransition
	}
	if remainingValue.GreaterThan(LowValuePoolThreshold) {
		return ErrPoolThresholdExceeded
	}
	return nil
}
