package depreciation

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/propledger/backend/internal/domain/shared"
	"github.com/propledger/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// CapitalWorksLife is the fixed Division 43 effective life in years
var CapitalWorksLife = decimal.NewFromInt(40)

const maxAssetNameLength = 255

// AssetInput carries caller-supplied asset fields. Derived values are never
// accepted from callers.
type AssetInput struct {
	AssetName     string
	Category      Category
	OriginalCost  decimal.Decimal
	EffectiveLife decimal.Decimal
	Method        Method
	PurchaseDate  *time.Time
}

// AssetPatch is a partial update; nil fields are left unchanged
type AssetPatch struct {
	AssetName     *string
	Category      *Category
	OriginalCost  *decimal.Decimal
	EffectiveLife *decimal.Decimal
	Method        *Method
	PurchaseDate  *time.Time
}

// DepreciationAsset is a line item of a depreciation schedule.
// YearlyDeduction and RemainingValue are always derived.
type DepreciationAsset struct {
	shared.BaseEntity
	OwnerID                 uuid.UUID
	ScheduleID              uuid.UUID
	AssetName               string
	Category                Category
	OriginalCost            decimal.Decimal
	EffectiveLife           decimal.Decimal
	Method                  Method
	PurchaseDate            *time.Time
	PoolType                PoolType
	OpeningWrittenDownValue *decimal.Decimal
	PooledAt                *time.Time
	// PooledClaimYears is the number of claimed years already reflected in
	// OpeningWrittenDownValue when the asset was moved into the pool
	PooledClaimYears        int
	YearlyDeduction         decimal.Decimal
	RemainingValue          decimal.Decimal
	Claims                  []Claim
}

// normalize applies the Division 43 rule and validates the input
func (in *AssetInput) normalize() error {
	in.AssetName = strings.TrimSpace(in.AssetName)
	if in.AssetName == "" || len(in.AssetName) > maxAssetNameLength {
		return ErrInvalidAssetName
	}
	if in.Category == "" {
		in.Category = CategoryPlantEquipment
	}
	if !in.Category.IsValid() {
		return ErrInvalidCategory
	}
	if in.Category.IsCapitalWorks() {
		in.Method = MethodPrimeCost
		in.EffectiveLife = CapitalWorksLife
	}
	if !in.Method.IsValid() {
		return ErrInvalidMethod
	}
	if !in.OriginalCost.IsPositive() {
		return ErrInvalidCost
	}
	if !in.EffectiveLife.IsPositive() {
		return ErrInvalidEffectiveLife
	}
	return nil
}

// NewDepreciationAsset validates the input and derives pool, deduction and
// remaining value
func NewDepreciationAsset(ownerID, scheduleID uuid.UUID, input AssetInput) (*DepreciationAsset, error) {
	if err := input.normalize(); err != nil {
		return nil, err
	}

	asset := &DepreciationAsset{
		BaseEntity:    shared.NewBaseEntity(),
		OwnerID:       ownerID,
		ScheduleID:    scheduleID,
		AssetName:     input.AssetName,
		Category:      input.Category,
		OriginalCost:  valueobject.RoundMoney(input.OriginalCost),
		EffectiveLife: input.EffectiveLife,
		Method:        input.Method,
		PurchaseDate:  input.PurchaseDate,
		Claims:        make([]Claim, 0),
	}
	asset.classify()
	asset.Recalculate()
	return asset, nil
}

// classify sets the pool from cost. Capital works are never pooled.
func (a *DepreciationAsset) classify() {
	a.OpeningWrittenDownValue = nil
	a.PooledAt = nil
	a.PooledClaimYears = 0
	if a.Category.IsCapitalWorks() {
		a.PoolType = PoolIndividual
		return
	}
	a.PoolType = ClassifyPool(a.OriginalCost)
}

// ApplyPatch updates the asset. A cost change reclassifies the pool, which
// discards any earlier move into the low-value pool.
func (a *DepreciationAsset) ApplyPatch(patch AssetPatch) error {
	input := AssetInput{
		AssetName:     a.AssetName,
		Category:      a.Category,
		OriginalCost:  a.OriginalCost,
		EffectiveLife: a.EffectiveLife,
		Method:        a.Method,
		PurchaseDate:  a.PurchaseDate,
	}
	if patch.AssetName != nil {
		input.AssetName = *patch.AssetName
	}
	if patch.Category != nil {
		input.Category = *patch.Category
	}
	if patch.OriginalCost != nil {
		input.OriginalCost = *patch.OriginalCost
	}
	if patch.EffectiveLife != nil {
		input.EffectiveLife = *patch.EffectiveLife
	}
	if patch.Method != nil {
		input.Method = *patch.Method
	}
	if patch.PurchaseDate != nil {
		d := *patch.PurchaseDate
		input.PurchaseDate = &d
	}
	if err := input.normalize(); err != nil {
		return err
	}

	costChanged := !valueobject.RoundMoney(input.OriginalCost).Equal(a.OriginalCost)
	categoryChanged := input.Category != a.Category

	a.AssetName = input.AssetName
	a.Category = input.Category
	a.OriginalCost = valueobject.RoundMoney(input.OriginalCost)
	a.EffectiveLife = input.EffectiveLife
	a.Method = input.Method
	a.PurchaseDate = input.PurchaseDate

	if costChanged || categoryChanged {
		a.classify()
	}
	a.Recalculate()
	a.Touch(time.Now())
	return nil
}

// MoveToLowValuePool moves an individually depreciated asset whose written-down
// value is at most $1,000 into the low-value pool
func (a *DepreciationAsset) MoveToLowValuePool(at time.Time) error {
	if err := CanMoveToLowValuePool(a.PoolType, a.Category, a.RemainingValue); err != nil {
		return err
	}

	wdv := a.RemainingValue
	a.PoolType = PoolLowValue
	a.OpeningWrittenDownValue = &wdv
	a.PooledAt = &at
	a.PooledClaimYears = len(a.ClaimedYears())
	a.Recalculate()
	a.Touch(at)
	return nil
}

// IsMovedToPool returns true when the asset joined the low-value pool after
// being depreciated individually
func (a *DepreciationAsset) IsMovedToPool() bool {
	return a.PoolType == PoolLowValue && a.OpeningWrittenDownValue != nil && a.PooledAt != nil
}

// AnchorDate is the date depreciation starts from: the purchase date, or the
// schedule's effective date when none was recorded
func (a *DepreciationAsset) AnchorDate(scheduleEffective time.Time) time.Time {
	if a.PurchaseDate != nil {
		return *a.PurchaseDate
	}
	return scheduleEffective
}

// ClaimedYears returns the distinct financial years with a claim on this asset
func (a *DepreciationAsset) ClaimedYears() []valueobject.FinancialYear {
	seen := make(map[valueobject.FinancialYear]struct{}, len(a.Claims))
	years := make([]valueobject.FinancialYear, 0, len(a.Claims))
	for _, c := range a.Claims {
		if _, ok := seen[c.FinancialYear]; ok {
			continue
		}
		seen[c.FinancialYear] = struct{}{}
		years = append(years, c.FinancialYear)
	}
	return years
}

// TotalClaimed sums every claim recorded against the asset
func (a *DepreciationAsset) TotalClaimed() decimal.Decimal {
	total := decimal.Zero
	for _, c := range a.Claims {
		total = total.Add(c.Amount)
	}
	return valueobject.RoundMoney(total)
}

// Recalculate derives YearlyDeduction and RemainingValue from cost, life,
// method, pool and the years claimed so far
func (a *DepreciationAsset) Recalculate() {
	switch a.PoolType {
	case PoolImmediateWriteOff:
		a.YearlyDeduction = a.OriginalCost
	default:
		a.YearlyDeduction = YearlyDeduction(a.OriginalCost, a.EffectiveLife, a.Method)
	}
	a.RemainingValue = a.deriveRemainingValue()
}

func (a *DepreciationAsset) deriveRemainingValue() decimal.Decimal {
	years := a.ClaimedYears()

	switch a.PoolType {
	case PoolImmediateWriteOff:
		if len(years) > 0 {
			return decimal.Zero
		}
		return a.OriginalCost

	case PoolLowValue:
		if a.IsMovedToPool() {
			n := len(years) - a.PooledClaimYears
			if n < 0 {
				n = 0
			}
			return lowValueBalance(*a.OpeningWrittenDownValue, n, false)
		}
		return lowValueBalance(a.OriginalCost, len(years), true)

	default:
		return CalculateRemainingValue(a.OriginalCost, a.EffectiveLife, a.Method, len(years))
	}
}

// lowValueDeduction is the pool deduction for a balance. Assets entering the
// pool at cost use the first-year rate in their first year.
func lowValueDeduction(balance decimal.Decimal, firstYearAtCost bool) decimal.Decimal {
	rate := LowValuePoolRate
	if firstYearAtCost {
		rate = LowValuePoolFirstYearRate
	}
	return valueobject.RoundMoney(balance.Mul(rate))
}

// lowValueBalance declines a pooled balance over years of pool deductions
func lowValueBalance(opening decimal.Decimal, years int, enteredAtCost bool) decimal.Decimal {
	balance := valueobject.RoundMoney(opening)
	for i := 0; i < years; i++ {
		balance = balance.Sub(lowValueDeduction(balance, enteredAtCost && i == 0))
	}
	return valueobject.FloorZero(balance)
}
