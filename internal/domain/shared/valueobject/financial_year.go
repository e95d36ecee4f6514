package valueobject

import (
	"fmt"
	"time"
)

// FinancialYear is an Australian financial year (1 July to 30 June),
// identified by the calendar year in which it ends. FinancialYear(2025)
// runs from 1 July 2024 to 30 June 2025.
type FinancialYear int

// Bounds accepted by IsValid. Older or later years are treated as input errors.
const (
	MinFinancialYear FinancialYear = 1950
	MaxFinancialYear FinancialYear = 2150
)

// FinancialYearOf returns the financial year containing t
func FinancialYearOf(t time.Time) FinancialYear {
	if t.Month() >= time.July {
		return FinancialYear(t.Year() + 1)
	}
	return FinancialYear(t.Year())
}

// IsValid reports whether the year is inside the supported range
func (fy FinancialYear) IsValid() bool {
	return fy >= MinFinancialYear && fy <= MaxFinancialYear
}

// StartDate returns 1 July of the opening calendar year
func (fy FinancialYear) StartDate() time.Time {
	return time.Date(int(fy)-1, time.July, 1, 0, 0, 0, 0, time.UTC)
}

// EndDate returns 30 June of the closing calendar year
func (fy FinancialYear) EndDate() time.Time {
	return time.Date(int(fy), time.June, 30, 0, 0, 0, 0, time.UTC)
}

// Contains reports whether t falls inside the financial year
func (fy FinancialYear) Contains(t time.Time) bool {
	return FinancialYearOf(t) == fy
}

// Next returns the following financial year
func (fy FinancialYear) Next() FinancialYear {
	return fy + 1
}

// Int returns the ending calendar year
func (fy FinancialYear) Int() int {
	return int(fy)
}

// String renders the year the way the ATO does, e.g. "2024-25"
func (fy FinancialYear) String() string {
	return fmt.Sprintf("%d-%02d", int(fy)-1, int(fy)%100)
}

// FinancialYearRange returns every year from "from" to "to" inclusive, ascending.
// It returns nil when from is after to.
func FinancialYearRange(from, to FinancialYear) []FinancialYear {
	if from > to {
		return nil
	}
	years := make([]FinancialYear, 0, int(to-from)+1)
	for fy := from; fy <= to; fy++ {
		years = append(years, fy)
	}
	return years
}
