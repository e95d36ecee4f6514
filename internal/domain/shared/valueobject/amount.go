package valueobject

import (
	"github.com/shopspring/decimal"
)

// CurrencyAUD is the only currency the ledger records
const CurrencyAUD = "AUD"

// MoneyPlaces is the number of decimal places every stored amount is rounded to
const MoneyPlaces int32 = 2

// RoundMoney rounds to cents, half away from zero
func RoundMoney(d decimal.Decimal) decimal.Decimal {
	return d.Round(MoneyPlaces)
}

// FloorZero returns d, or zero when d is negative
func FloorZero(d decimal.Decimal) decimal.Decimal {
	if d.IsNegative() {
		return decimal.Zero
	}
	return d
}

// SumMoney adds the amounts and rounds the total to cents
func SumMoney(amounts ...decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, a := range amounts {
		total = total.Add(a)
	}
	return RoundMoney(total)
}
