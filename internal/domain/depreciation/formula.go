package depreciation

import (
	"time"

	"github.com/propledger/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// MaxScheduleYears caps every generated schedule
const MaxScheduleYears = 40

// intermediate precision for compounding diminishing-value factors
const compoundPlaces int32 = 16

var (
	two     = decimal.NewFromInt(2)
	daysInY = decimal.NewFromInt(365)
)

// ScheduleRow is one year of a multi-year depreciation schedule
type ScheduleRow struct {
	Year         int             `json:"year"`
	OpeningValue decimal.Decimal `json:"opening_value"`
	Deduction    decimal.Decimal `json:"deduction"`
	ClosingValue decimal.Decimal `json:"closing_value"`
}

// CalculateYearlyDeduction returns the deduction for one year.
// Prime cost deducts cost/life, diminishing value deducts cost*2/life, both
// scaled by proRataFactor. A non-positive cost or life yields zero.
func CalculateYearlyDeduction(cost, effectiveLife decimal.Decimal, method Method, proRataFactor decimal.Decimal) decimal.Decimal {
	if !cost.IsPositive() || !effectiveLife.IsPositive() {
		return decimal.Zero
	}

	var base decimal.Decimal
	switch method {
	case MethodDiminishingValue:
		base = cost.Mul(two).Div(effectiveLife)
	default:
		base = cost.Div(effectiveLife)
	}
	return valueobject.RoundMoney(base.Mul(proRataFactor))
}

// YearlyDeduction is CalculateYearlyDeduction for a full year
func YearlyDeduction(cost, effectiveLife decimal.Decimal, method Method) decimal.Decimal {
	return CalculateYearlyDeduction(cost, effectiveLife, method, decimal.NewFromInt(1))
}

// ProRataFactor is the share of fy the asset was held, counting the
// acquisition day. Assets acquired before fy get 1, after fy get 0.
func ProRataFactor(acquired time.Time, fy valueobject.FinancialYear) decimal.Decimal {
	start := fy.StartDate()
	end := fy.EndDate()
	day := time.Date(acquired.Year(), acquired.Month(), acquired.Day(), 0, 0, 0, 0, time.UTC)

	if !day.After(start) {
		return decimal.NewFromInt(1)
	}
	if day.After(end) {
		return decimal.Zero
	}

	held := int64(end.Sub(day).Hours()/24) + 1
	factor := decimal.NewFromInt(held).Div(daysInY)
	if factor.GreaterThan(decimal.NewFromInt(1)) {
		return decimal.NewFromInt(1)
	}
	return factor
}

// CalculateRemainingValue returns the written-down value after yearsElapsed
// full years, floored at zero.
func CalculateRemainingValue(cost, effectiveLife decimal.Decimal, method Method, yearsElapsed int) decimal.Decimal {
	if yearsElapsed <= 0 {
		return valueobject.RoundMoney(cost)
	}
	if !cost.IsPositive() || !effectiveLife.IsPositive() {
		return valueobject.RoundMoney(valueobject.FloorZero(cost))
	}

	switch method {
	case MethodDiminishingValue:
		rate := two.Div(effectiveLife)
		if rate.GreaterThanOrEqual(decimal.NewFromInt(1)) {
			return decimal.Zero
		}
		factor := decimal.NewFromInt(1).Sub(rate)
		value := cost
		for i := 0; i < yearsElapsed; i++ {
			value = value.Mul(factor).Round(compoundPlaces)
		}
		return valueobject.RoundMoney(valueobject.FloorZero(value))
	default:
		used := cost.Div(effectiveLife).Mul(decimal.NewFromInt(int64(yearsElapsed)))
		return valueobject.RoundMoney(valueobject.FloorZero(cost.Sub(used)))
	}
}

// GenerateMultiYearSchedule produces year-by-year rows. The row count is
// maxYears when given, otherwise the effective life rounded up, and never
// more than MaxScheduleYears. Generation stops once the value reaches zero.
// Prime cost writes off any rounding remainder in the last year of its life.
func GenerateMultiYearSchedule(cost, effectiveLife decimal.Decimal, method Method, maxYears *int) []ScheduleRow {
	return generateSchedule(cost, effectiveLife, method, decimal.NewFromInt(1), maxYears)
}

// GenerateProRataSchedule is GenerateMultiYearSchedule with the first
// year's deduction scaled by firstYearFactor. A partial first year pushes
// the end of the schedule one year out, and prime cost writes off the
// remainder in that extra year.
func GenerateProRataSchedule(cost, effectiveLife decimal.Decimal, method Method, firstYearFactor decimal.Decimal, maxYears *int) []ScheduleRow {
	return generateSchedule(cost, effectiveLife, method, firstYearFactor, maxYears)
}

func generateSchedule(cost, effectiveLife decimal.Decimal, method Method, firstYearFactor decimal.Decimal, maxYears *int) []ScheduleRow {
	if !cost.IsPositive() || !effectiveLife.IsPositive() || !firstYearFactor.IsPositive() {
		return []ScheduleRow{}
	}
	one := decimal.NewFromInt(1)
	if firstYearFactor.GreaterThan(one) {
		firstYearFactor = one
	}

	lifeYears := int(effectiveLife.Ceil().IntPart())
	if firstYearFactor.LessThan(one) {
		lifeYears++
	}
	years := lifeYears
	if maxYears != nil {
		years = *maxYears
	}
	if years > MaxScheduleYears {
		years = MaxScheduleYears
	}
	if years <= 0 {
		return []ScheduleRow{}
	}

	rows := make([]ScheduleRow, 0, years)
	opening := valueobject.RoundMoney(cost)
	primeCost := YearlyDeduction(cost, effectiveLife, MethodPrimeCost)

	for year := 1; year <= years; year++ {
		if !opening.IsPositive() {
			break
		}

		factor := one
		if year == 1 {
			factor = firstYearFactor
		}

		deduction := primeCost
		if year == 1 {
			deduction = CalculateYearlyDeduction(cost, effectiveLife, MethodPrimeCost, factor)
		}
		if method == MethodDiminishingValue {
			deduction = CalculateYearlyDeduction(opening, effectiveLife, MethodDiminishingValue, factor)
		}
		if deduction.GreaterThan(opening) || (method == MethodPrimeCost && year == lifeYears) {
			deduction = opening
		}

		closing := opening.Sub(deduction)
		rows = append(rows, ScheduleRow{
			Year:         year,
			OpeningValue: opening,
			Deduction:    deduction,
			ClosingValue: closing,
		})
		opening = closing
	}

	return rows
}
