package depreciation

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/shopspring/decimal"
)

// ScheduleCalculator memoises GenerateProRataSchedule. Schedules are pure
// functions of their inputs, so entries never expire. Safe for concurrent use.
type ScheduleCalculator struct {
	entries sync.Map // map[string][]ScheduleRow

	hits   int64
	misses int64
}

// NewScheduleCalculator creates an empty calculator
func NewScheduleCalculator() *ScheduleCalculator {
	return &ScheduleCalculator{}
}

func scheduleKey(cost, effectiveLife decimal.Decimal, method Method, firstYearFactor decimal.Decimal, maxYears *int) string {
	limit := -1
	if maxYears != nil {
		limit = *maxYears
	}
	return fmt.Sprintf("%s|%s|%s|%s|%d", cost.String(), effectiveLife.String(), method, firstYearFactor.String(), limit)
}

// Schedule returns the multi-year schedule for the inputs, computing it once.
// The returned slice is a copy and may be modified by the caller.
func (c *ScheduleCalculator) Schedule(cost, effectiveLife decimal.Decimal, method Method, maxYears *int) []ScheduleRow {
	return cloneRows(c.lookup(cost, effectiveLife, method, decimal.NewFromInt(1), maxYears))
}

// DeductionForYear returns the deduction in the zero-based year index of the
// full-life schedule, or zero outside it.
func (c *ScheduleCalculator) DeductionForYear(cost, effectiveLife decimal.Decimal, method Method, index int) decimal.Decimal {
	return c.ProRataDeductionForYear(cost, effectiveLife, method, decimal.NewFromInt(1), index)
}

// ProRataDeductionForYear is DeductionForYear over a schedule whose first
// year is scaled by firstYearFactor
func (c *ScheduleCalculator) ProRataDeductionForYear(cost, effectiveLife decimal.Decimal, method Method, firstYearFactor decimal.Decimal, index int) decimal.Decimal {
	if index < 0 {
		return decimal.Zero
	}
	rows := c.lookup(cost, effectiveLife, method, firstYearFactor, nil)
	if index >= len(rows) {
		return decimal.Zero
	}
	return rows[index].Deduction
}

func (c *ScheduleCalculator) lookup(cost, effectiveLife decimal.Decimal, method Method, firstYearFactor decimal.Decimal, maxYears *int) []ScheduleRow {
	key := scheduleKey(cost, effectiveLife, method, firstYearFactor, maxYears)

	if value, ok := c.entries.Load(key); ok {
		atomic.AddInt64(&c.hits, 1)
		return value.([]ScheduleRow)
	}

	atomic.AddInt64(&c.misses, 1)
	rows := GenerateProRataSchedule(cost, effectiveLife, method, firstYearFactor, maxYears)
	actual, _ := c.entries.LoadOrStore(key, rows)
	return actual.([]ScheduleRow)
}

// GetStats returns cache statistics
func (c *ScheduleCalculator) GetStats() (hits, misses int64) {
	return atomic.LoadInt64(&c.hits), atomic.LoadInt64(&c.misses)
}

func cloneRows(rows []ScheduleRow) []ScheduleRow {
	out := make([]ScheduleRow, len(rows))
	copy(out, rows)
	return out
}
