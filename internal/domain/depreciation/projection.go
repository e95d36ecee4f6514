package depreciation

import (
	"time"

	"github.com/propledger/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// MaxProjectionYears bounds the number of rows a projection may return
const MaxProjectionYears = 60

// ProjectionRow is the projected deduction for one financial year
type ProjectionRow struct {
	FinancialYear     valueobject.FinancialYear `json:"financial_year"`
	Div40Total        decimal.Decimal           `json:"div40_total"`
	Div43Total        decimal.Decimal           `json:"div43_total"`
	LowValuePoolTotal decimal.Decimal           `json:"low_value_pool_total"`
	GrandTotal        decimal.Decimal           `json:"grand_total"`
}

// ProjectionInput is everything recorded for one property
type ProjectionInput struct {
	Schedules    []DepreciationSchedule
	CapitalWorks []CapitalWork
	// SoldIn is the financial year the property was settled in, if sold.
	// Later years project nothing.
	SoldIn *valueobject.FinancialYear
}

// ProjectionBuilder rolls assets and capital works up into per-year totals
type ProjectionBuilder struct {
	calc *ScheduleCalculator
}

// NewProjectionBuilder creates a builder backed by the given calculator
func NewProjectionBuilder(calc *ScheduleCalculator) *ProjectionBuilder {
	if calc == nil {
		calc = NewScheduleCalculator()
	}
	return &ProjectionBuilder{calc: calc}
}

// ValidateProjectionRange checks a requested range
func ValidateProjectionRange(from, to valueobject.FinancialYear) error {
	if !from.IsValid() || !to.IsValid() {
		return ErrInvalidFinancialYear
	}
	if from > to || int(to-from)+1 > MaxProjectionYears {
		return ErrInvalidProjectionRange
	}
	return nil
}

// Build returns one row per financial year from "from" to "to", ascending.
// Years with nothing to deduct are zero-filled.
func (b *ProjectionBuilder) Build(input ProjectionInput, from, to valueobject.FinancialYear) ([]ProjectionRow, error) {
	if err := ValidateProjectionRange(from, to); err != nil {
		return nil, err
	}

	years := valueobject.FinancialYearRange(from, to)
	rows := make([]ProjectionRow, 0, len(years))
	for _, fy := range years {
		row := ProjectionRow{
			FinancialYear:     fy,
			Div40Total:        decimal.Zero,
			Div43Total:        decimal.Zero,
			LowValuePoolTotal: decimal.Zero,
			GrandTotal:        decimal.Zero,
		}
		if input.SoldIn == nil || fy <= *input.SoldIn {
			b.accumulate(&row, input)
		}
		row.Div40Total = valueobject.RoundMoney(row.Div40Total)
		row.Div43Total = valueobject.RoundMoney(row.Div43Total)
		row.LowValuePoolTotal = valueobject.RoundMoney(row.LowValuePoolTotal)
		row.GrandTotal = valueobject.SumMoney(row.Div40Total, row.Div43Total, row.LowValuePoolTotal)
		rows = append(rows, row)
	}
	return rows, nil
}

func (b *ProjectionBuilder) accumulate(row *ProjectionRow, input ProjectionInput) {
	fy := row.FinancialYear

	for i := range input.Schedules {
		schedule := &input.Schedules[i]
		for j := range schedule.Assets {
			asset := &schedule.Assets[j]
			anchorDate := asset.AnchorDate(schedule.EffectiveDate)
			anchor := valueobject.FinancialYearOf(anchorDate)
			index := int(fy - anchor)

			switch {
			case asset.Category.IsCapitalWorks():
				row.Div43Total = row.Div43Total.Add(b.capitalWorksDeduction(asset.OriginalCost, index))

			case asset.PoolType == PoolImmediateWriteOff:
				if index == 0 {
					row.Div40Total = row.Div40Total.Add(asset.OriginalCost)
				}

			case asset.IsMovedToPool():
				pooledFY := valueobject.FinancialYearOf(*asset.PooledAt)
				if fy < pooledFY {
					row.Div40Total = row.Div40Total.Add(b.individualDeduction(asset, anchorDate, index))
					continue
				}
				row.LowValuePoolTotal = row.LowValuePoolTotal.Add(poolDeductionForYear(*asset.OpeningWrittenDownValue, int(fy-pooledFY), false))

			case asset.PoolType == PoolLowValue:
				row.LowValuePoolTotal = row.LowValuePoolTotal.Add(poolDeductionForYear(asset.OriginalCost, index, true))

			default:
				row.Div40Total = row.Div40Total.Add(b.individualDeduction(asset, anchorDate, index))
			}
		}
	}

	for i := range input.CapitalWorks {
		cw := &input.CapitalWorks[i]
		row.Div43Total = row.Div43Total.Add(b.capitalWorksDeduction(cw.ConstructionCost, int(fy-cw.StartYear())))
	}
}

// individualDeduction is the Division 40 deduction in the zero-based year
// index, with the anchor year apportioned by days held
func (b *ProjectionBuilder) individualDeduction(asset *DepreciationAsset, anchorDate time.Time, index int) decimal.Decimal {
	factor := ProRataFactor(anchorDate, valueobject.FinancialYearOf(anchorDate))
	return b.calc.ProRataDeductionForYear(asset.OriginalCost, asset.EffectiveLife, asset.Method, factor, index)
}

func (b *ProjectionBuilder) capitalWorksDeduction(cost decimal.Decimal, index int) decimal.Decimal {
	return b.calc.DeductionForYear(cost, CapitalWorksLife, MethodPrimeCost, index)
}

// poolDeductionForYear is the low-value pool deduction in the zero-based
// year index after the balance entered the pool
func poolDeductionForYear(opening decimal.Decimal, index int, enteredAtCost bool) decimal.Decimal {
	if index < 0 {
		return decimal.Zero
	}
	balance := lowValueBalance(opening, index, enteredAtCost)
	return lowValueDeduction(balance, enteredAtCost && index == 0)
}
