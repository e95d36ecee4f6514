package depreciation

import (
	"strings"
	"time"

	"github.com/propledger/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// DiscrepancyTolerance is the relative difference between a supplied and a
// recalculated deduction above which the candidate is flagged
var DiscrepancyTolerance = decimal.RequireFromString("0.10")

// AssetCandidate is an untrusted asset, e.g. extracted from a quantity
// surveyor report. Its YearlyDeduction is never persisted as-is.
type AssetCandidate struct {
	AssetName       string
	Category        Category
	OriginalCost    decimal.Decimal
	EffectiveLife   decimal.Decimal
	Method          Method
	PurchaseDate    *time.Time
	YearlyDeduction *decimal.Decimal
}

// ValidationIssue describes why a candidate cannot be persisted
type ValidationIssue struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ValidatedAsset is a candidate after reconciliation. CalculatedDeduction is
// authoritative; SuppliedDeduction is kept only for display.
type ValidatedAsset struct {
	AssetName           string
	Category            Category
	OriginalCost        decimal.Decimal
	EffectiveLife       decimal.Decimal
	Method              Method
	PurchaseDate        *time.Time
	PoolType            PoolType
	CalculatedDeduction decimal.Decimal
	SuppliedDeduction   *decimal.Decimal
	Discrepancy         bool
	Issues              []ValidationIssue
}

// IsValid returns true when the candidate passed every check
func (v ValidatedAsset) IsValid() bool {
	return len(v.Issues) == 0
}

// ToAssetInput converts a valid candidate into lifecycle input
func (v ValidatedAsset) ToAssetInput() AssetInput {
	return AssetInput{
		AssetName:     v.AssetName,
		Category:      v.Category,
		OriginalCost:  v.OriginalCost,
		EffectiveLife: v.EffectiveLife,
		Method:        v.Method,
		PurchaseDate:  v.PurchaseDate,
	}
}

// ReconciliationSummary aggregates a reconciliation run
type ReconciliationSummary struct {
	Candidates         int
	Valid              int
	Discrepancies      int
	SuppliedCandidates int
	CalculatedTotal    decimal.Decimal
	SuppliedTotal      decimal.Decimal
}

// ReconciliationReport is the result of ValidateAndRecalculate, in input order
type ReconciliationReport struct {
	Assets  []ValidatedAsset
	Summary ReconciliationSummary
}

// HasInvalid returns true when any candidate failed validation
func (r ReconciliationReport) HasInvalid() bool {
	return r.Summary.Valid < r.Summary.Candidates
}

// ValidateAndRecalculate checks each candidate, forces the Division 43 rule,
// recomputes its deduction and flags differences from the supplied value of
// more than DiscrepancyTolerance. Invalid candidates are never recalculated.
func ValidateAndRecalculate(candidates []AssetCandidate) ReconciliationReport {
	report := ReconciliationReport{
		Assets: make([]ValidatedAsset, 0, len(candidates)),
		Summary: ReconciliationSummary{
			Candidates:      len(candidates),
			CalculatedTotal: decimal.Zero,
			SuppliedTotal:   decimal.Zero,
		},
	}

	for _, c := range candidates {
		v := validateCandidate(c)
		if v.IsValid() {
			report.Summary.Valid++
			report.Summary.CalculatedTotal = report.Summary.CalculatedTotal.Add(v.CalculatedDeduction)
		}
		if v.SuppliedDeduction != nil {
			report.Summary.SuppliedCandidates++
			report.Summary.SuppliedTotal = report.Summary.SuppliedTotal.Add(*v.SuppliedDeduction)
		}
		if v.Discrepancy {
			report.Summary.Discrepancies++
		}
		report.Assets = append(report.Assets, v)
	}

	report.Summary.CalculatedTotal = valueobject.RoundMoney(report.Summary.CalculatedTotal)
	report.Summary.SuppliedTotal = valueobject.RoundMoney(report.Summary.SuppliedTotal)
	return report
}

func validateCandidate(c AssetCandidate) ValidatedAsset {
	v := ValidatedAsset{
		AssetName:           strings.TrimSpace(c.AssetName),
		Category:            c.Category,
		OriginalCost:        c.OriginalCost,
		EffectiveLife:       c.EffectiveLife,
		Method:              c.Method,
		PurchaseDate:        c.PurchaseDate,
		SuppliedDeduction:   c.YearlyDeduction,
		CalculatedDeduction: decimal.Zero,
		Issues:              make([]ValidationIssue, 0),
	}

	if v.Category == "" {
		v.Category = CategoryPlantEquipment
	}
	if v.Category.IsCapitalWorks() {
		v.Method = MethodPrimeCost
		v.EffectiveLife = CapitalWorksLife
	}

	if v.AssetName == "" || len(v.AssetName) > maxAssetNameLength {
		v.Issues = append(v.Issues, issueFrom("asset_name", ErrInvalidAssetName.Code, ErrInvalidAssetName.Message))
	}
	if !v.Category.IsValid() {
		v.Issues = append(v.Issues, issueFrom("category", ErrInvalidCategory.Code, ErrInvalidCategory.Message))
	}
	if !v.Method.IsValid() {
		v.Issues = append(v.Issues, issueFrom("method", ErrInvalidMethod.Code, ErrInvalidMethod.Message))
	}
	if !v.OriginalCost.IsPositive() {
		v.Issues = append(v.Issues, issueFrom("original_cost", ErrInvalidCost.Code, ErrInvalidCost.Message))
	}
	if !v.EffectiveLife.IsPositive() {
		v.Issues = append(v.Issues, issueFrom("effective_life", ErrInvalidEffectiveLife.Code, ErrInvalidEffectiveLife.Message))
	}
	if !v.IsValid() {
		return v
	}

	v.OriginalCost = valueobject.RoundMoney(v.OriginalCost)
	// Division 43 works are never pooled, whatever their cost
	v.PoolType = PoolIndividual
	if !v.Category.IsCapitalWorks() {
		v.PoolType = ClassifyPool(v.OriginalCost)
	}
	v.CalculatedDeduction = YearlyDeduction(v.OriginalCost, v.EffectiveLife, v.Method)

	if v.SuppliedDeduction != nil {
		diff := v.CalculatedDeduction.Sub(*v.SuppliedDeduction).Abs()
		v.Discrepancy = diff.GreaterThan(v.CalculatedDeduction.Mul(DiscrepancyTolerance))
	}
	return v
}

func issueFrom(field, code, message string) ValidationIssue {
	return ValidationIssue{Field: field, Code: code, Message: message}
}
