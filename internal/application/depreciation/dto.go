package depreciation

import (
	"time"

	"github.com/google/uuid"
	"github.com/propledger/backend/internal/domain/depreciation"
	"github.com/propledger/backend/internal/domain/shared"
	"github.com/propledger/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

const dateLayout = "2006-01-02"

// AssetRequest carries the caller-editable fields of an asset.
// Yearly deduction and remaining value are derived and never accepted.
type AssetRequest struct {
	AssetName     string          `json:"asset_name" binding:"required,min=1,max=255"`
	Category      string          `json:"category" binding:"omitempty,oneof=plant_equipment capital_works"`
	OriginalCost  decimal.Decimal `json:"original_cost"`
	EffectiveLife decimal.Decimal `json:"effective_life"`
	Method        string          `json:"method" binding:"omitempty,oneof=diminishing_value prime_cost"`
	PurchaseDate  *string         `json:"purchase_date" binding:"omitempty,datetime=2006-01-02"`
}

// UpdateAssetRequest is a partial asset update
type UpdateAssetRequest struct {
	AssetName     *string          `json:"asset_name" binding:"omitempty,min=1,max=255"`
	Category      *string          `json:"category" binding:"omitempty,oneof=plant_equipment capital_works"`
	OriginalCost  *decimal.Decimal `json:"original_cost"`
	EffectiveLife *decimal.Decimal `json:"effective_life"`
	Method        *string          `json:"method" binding:"omitempty,oneof=diminishing_value prime_cost"`
	PurchaseDate  *string          `json:"purchase_date" binding:"omitempty,datetime=2006-01-02"`
}

// CreateScheduleRequest creates a schedule from manually entered assets
type CreateScheduleRequest struct {
	EffectiveDate string         `json:"effective_date" binding:"required,datetime=2006-01-02"`
	DocumentID    *uuid.UUID     `json:"document_id"`
	Assets        []AssetRequest `json:"assets" binding:"dive"`
}

// CandidateRequest is an untrusted asset, typically extracted from a
// quantity surveyor report. YearlyDeduction is compared, never stored.
type CandidateRequest struct {
	AssetName       string           `json:"asset_name"`
	Category        string           `json:"category"`
	OriginalCost    decimal.Decimal  `json:"original_cost"`
	EffectiveLife   decimal.Decimal  `json:"effective_life"`
	Method          string           `json:"method"`
	PurchaseDate    *string          `json:"purchase_date" binding:"omitempty,datetime=2006-01-02"`
	YearlyDeduction *decimal.Decimal `json:"yearly_deduction"`
}

// ValidateRequest runs candidates through reconciliation without persisting
type ValidateRequest struct {
	Assets []CandidateRequest `json:"assets" binding:"required,min=1,dive"`
}

// ImportScheduleRequest reconciles candidates and persists them as a schedule
type ImportScheduleRequest struct {
	EffectiveDate string             `json:"effective_date" binding:"required,datetime=2006-01-02"`
	DocumentID    *uuid.UUID         `json:"document_id"`
	Assets        []CandidateRequest `json:"assets" binding:"required,min=1,dive"`
}

// ClaimLineRequest is one claimed amount; a missing asset_id claims against the pool
type ClaimLineRequest struct {
	AssetID *uuid.UUID      `json:"asset_id"`
	Amount  decimal.Decimal `json:"amount"`
}

// ClaimFYRequest lodges claims for a financial year, named by its ending year
type ClaimFYRequest struct {
	FinancialYear int                `json:"financial_year" binding:"required,min=1950,max=2150"`
	Claims        []ClaimLineRequest `json:"claims" binding:"required,min=1,dive"`
}

// CapitalWorksRequest records a Division 43 item. ClaimStartDate defaults
// to the construction date.
type CapitalWorksRequest struct {
	Description      string          `json:"description" binding:"required,min=1,max=500"`
	ConstructionDate string          `json:"construction_date" binding:"required,datetime=2006-01-02"`
	ConstructionCost decimal.Decimal `json:"construction_cost"`
	ClaimStartDate   *string         `json:"claim_start_date" binding:"omitempty,datetime=2006-01-02"`
}

// PreviewRequest asks for a multi-year schedule of a hypothetical asset
type PreviewRequest struct {
	Cost          decimal.Decimal
	EffectiveLife decimal.Decimal
	Method        string
	MaxYears      *int
}

// ClaimResponse is a recorded claim
type ClaimResponse struct {
	ID                 uuid.UUID       `json:"id"`
	AssetID            *uuid.UUID      `json:"asset_id"`
	FinancialYear      int             `json:"financial_year"`
	FinancialYearLabel string          `json:"financial_year_label"`
	Amount             decimal.Decimal `json:"amount"`
	ClaimedAt          time.Time       `json:"claimed_at"`
}

// AssetResponse is an asset with its derived values and claims
type AssetResponse struct {
	ID                      uuid.UUID        `json:"id"`
	ScheduleID              uuid.UUID        `json:"schedule_id"`
	AssetName               string           `json:"asset_name"`
	Category                string           `json:"category"`
	OriginalCost            decimal.Decimal  `json:"original_cost"`
	EffectiveLife           decimal.Decimal  `json:"effective_life"`
	Method                  string           `json:"method"`
	PurchaseDate            *time.Time       `json:"purchase_date"`
	PoolType                string           `json:"pool_type"`
	OpeningWrittenDownValue *decimal.Decimal `json:"opening_written_down_value"`
	PooledAt                *time.Time       `json:"pooled_at"`
	YearlyDeduction         decimal.Decimal  `json:"yearly_deduction"`
	RemainingValue          decimal.Decimal  `json:"remaining_value"`
	Claims                  []ClaimResponse  `json:"claims"`
	CreatedAt               time.Time        `json:"created_at"`
}

// ScheduleResponse is a schedule with nested assets and pool-level claims
type ScheduleResponse struct {
	ID            uuid.UUID       `json:"id"`
	PropertyID    uuid.UUID       `json:"property_id"`
	DocumentID    *uuid.UUID      `json:"document_id"`
	EffectiveDate time.Time       `json:"effective_date"`
	TotalValue    decimal.Decimal `json:"total_value"`
	Assets        []AssetResponse `json:"assets"`
	PoolClaims    []ClaimResponse `json:"pool_claims"`
	CreatedAt     time.Time       `json:"created_at"`
}

// CapitalWorkResponse is a Division 43 item
type CapitalWorkResponse struct {
	ID               uuid.UUID       `json:"id"`
	PropertyID       uuid.UUID       `json:"property_id"`
	Description      string          `json:"description"`
	ConstructionDate time.Time       `json:"construction_date"`
	ConstructionCost decimal.Decimal `json:"construction_cost"`
	ClaimStartDate   time.Time       `json:"claim_start_date"`
	AnnualDeduction  decimal.Decimal `json:"annual_deduction"`
	CreatedAt        time.Time       `json:"created_at"`
}

// PropertyDepreciationResponse lists everything depreciable on a property
type PropertyDepreciationResponse struct {
	Schedules    []ScheduleResponse    `json:"schedules"`
	CapitalWorks []CapitalWorkResponse `json:"capital_works"`
}

// ValidatedAssetResponse is one reconciled candidate
type ValidatedAssetResponse struct {
	AssetName           string                         `json:"asset_name"`
	Category            string                         `json:"category"`
	OriginalCost        decimal.Decimal                `json:"original_cost"`
	EffectiveLife       decimal.Decimal                `json:"effective_life"`
	Method              string                         `json:"method"`
	PoolType            string                         `json:"pool_type,omitempty"`
	CalculatedDeduction decimal.Decimal                `json:"calculated_deduction"`
	SuppliedDeduction   *decimal.Decimal               `json:"supplied_deduction"`
	Discrepancy         bool                           `json:"discrepancy"`
	Valid               bool                           `json:"valid"`
	Issues              []depreciation.ValidationIssue `json:"issues"`
}

// ReconciliationSummaryResponse aggregates a reconciliation run
type ReconciliationSummaryResponse struct {
	Candidates         int             `json:"candidates"`
	Valid              int             `json:"valid"`
	Discrepancies      int             `json:"discrepancies"`
	SuppliedCandidates int             `json:"supplied_candidates"`
	CalculatedTotal    decimal.Decimal `json:"calculated_total"`
	SuppliedTotal      decimal.Decimal `json:"supplied_total"`
}

// ReconciliationResponse is the outcome of validating candidates
type ReconciliationResponse struct {
	Assets  []ValidatedAssetResponse      `json:"assets"`
	Summary ReconciliationSummaryResponse `json:"summary"`
}

// ImportScheduleResponse carries the created schedule, if any, and the
// reconciliation report that decided it
type ImportScheduleResponse struct {
	Schedule       *ScheduleResponse      `json:"schedule"`
	Reconciliation ReconciliationResponse `json:"reconciliation"`
}

// ClaimFYResponse reports claims lodged for a financial year
type ClaimFYResponse struct {
	ScheduleID     uuid.UUID       `json:"schedule_id"`
	FinancialYear  int             `json:"financial_year"`
	Claims         []ClaimResponse `json:"claims"`
	Total          decimal.Decimal `json:"total"`
	AffectedAssets []AssetResponse `json:"affected_assets"`
}

// UnclaimFYResponse reports the claims removed for a financial year
type UnclaimFYResponse struct {
	ScheduleID     uuid.UUID       `json:"schedule_id"`
	FinancialYear  int             `json:"financial_year"`
	Removed        int64           `json:"removed"`
	AffectedAssets []AssetResponse `json:"affected_assets"`
}

// ProjectionRowResponse is one financial year of a projection
type ProjectionRowResponse struct {
	FinancialYear      int             `json:"financial_year"`
	FinancialYearLabel string          `json:"financial_year_label"`
	Div40Total         decimal.Decimal `json:"div40_total"`
	Div43Total         decimal.Decimal `json:"div43_total"`
	LowValuePoolTotal  decimal.Decimal `json:"low_value_pool_total"`
	GrandTotal         decimal.Decimal `json:"grand_total"`
}

// ProjectionResponse is a property's projected deductions
type ProjectionResponse struct {
	PropertyID uuid.UUID               `json:"property_id"`
	FromFY     int                     `json:"from_fy"`
	ToFY       int                     `json:"to_fy"`
	Rows       []ProjectionRowResponse `json:"rows"`
	Total      decimal.Decimal         `json:"total"`
}

func parseDate(field, s string) (time.Time, error) {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return time.Time{}, shared.NewDomainError("INVALID_DATE", field+" must be a date in YYYY-MM-DD format")
	}
	return t, nil
}

func parseOptionalDate(field string, s *string) (*time.Time, error) {
	if s == nil || *s == "" {
		return nil, nil
	}
	t, err := parseDate(field, *s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r AssetRequest) toInput() (depreciation.AssetInput, error) {
	purchased, err := parseOptionalDate("purchase_date", r.PurchaseDate)
	if err != nil {
		return depreciation.AssetInput{}, err
	}
	return depreciation.AssetInput{
		AssetName:     r.AssetName,
		Category:      depreciation.Category(r.Category),
		OriginalCost:  r.OriginalCost,
		EffectiveLife: r.EffectiveLife,
		Method:        depreciation.Method(r.Method),
		PurchaseDate:  purchased,
	}, nil
}

func (r UpdateAssetRequest) toPatch() (depreciation.AssetPatch, error) {
	purchased, err := parseOptionalDate("purchase_date", r.PurchaseDate)
	if err != nil {
		return depreciation.AssetPatch{}, err
	}
	patch := depreciation.AssetPatch{
		AssetName:     r.AssetName,
		OriginalCost:  r.OriginalCost,
		EffectiveLife: r.EffectiveLife,
		PurchaseDate:  purchased,
	}
	if r.Category != nil {
		c := depreciation.Category(*r.Category)
		patch.Category = &c
	}
	if r.Method != nil {
		m := depreciation.Method(*r.Method)
		patch.Method = &m
	}
	return patch, nil
}

func toCandidates(reqs []CandidateRequest) ([]depreciation.AssetCandidate, error) {
	candidates := make([]depreciation.AssetCandidate, 0, len(reqs))
	for _, r := range reqs {
		purchased, err := parseOptionalDate("purchase_date", r.PurchaseDate)
		if err != nil {
			return nil, err
		}
		candidates = append(candidates, depreciation.AssetCandidate{
			AssetName:       r.AssetName,
			Category:        depreciation.Category(r.Category),
			OriginalCost:    r.OriginalCost,
			EffectiveLife:   r.EffectiveLife,
			Method:          depreciation.Method(r.Method),
			PurchaseDate:    purchased,
			YearlyDeduction: r.YearlyDeduction,
		})
	}
	return candidates, nil
}

// ToClaimResponse converts a domain claim
func ToClaimResponse(c depreciation.Claim) ClaimResponse {
	return ClaimResponse{
		ID:                 c.ID,
		AssetID:            c.AssetID,
		FinancialYear:      c.FinancialYear.Int(),
		FinancialYearLabel: c.FinancialYear.String(),
		Amount:             c.Amount,
		ClaimedAt:          c.ClaimedAt,
	}
}

func toClaimResponses(claims []depreciation.Claim) []ClaimResponse {
	out := make([]ClaimResponse, 0, len(claims))
	for _, c := range claims {
		out = append(out, ToClaimResponse(c))
	}
	return out
}

// ToAssetResponse converts a domain asset
func ToAssetResponse(a *depreciation.DepreciationAsset) AssetResponse {
	return AssetResponse{
		ID:                      a.ID,
		ScheduleID:              a.ScheduleID,
		AssetName:               a.AssetName,
		Category:                a.Category.String(),
		OriginalCost:            a.OriginalCost,
		EffectiveLife:           a.EffectiveLife,
		Method:                  a.Method.String(),
		PurchaseDate:            a.PurchaseDate,
		PoolType:                a.PoolType.String(),
		OpeningWrittenDownValue: a.OpeningWrittenDownValue,
		PooledAt:                a.PooledAt,
		YearlyDeduction:         a.YearlyDeduction,
		RemainingValue:          a.RemainingValue,
		Claims:                  toClaimResponses(a.Claims),
		CreatedAt:               a.CreatedAt,
	}
}

func toAssetResponses(assets []*depreciation.DepreciationAsset) []AssetResponse {
	out := make([]AssetResponse, 0, len(assets))
	for _, a := range assets {
		out = append(out, ToAssetResponse(a))
	}
	return out
}

// ToScheduleResponse converts a domain schedule
func ToScheduleResponse(s *depreciation.DepreciationSchedule) ScheduleResponse {
	assets := make([]AssetResponse, 0, len(s.Assets))
	for i := range s.Assets {
		assets = append(assets, ToAssetResponse(&s.Assets[i]))
	}
	return ScheduleResponse{
		ID:            s.ID,
		PropertyID:    s.PropertyID,
		DocumentID:    s.DocumentID,
		EffectiveDate: s.EffectiveDate,
		TotalValue:    s.TotalValue,
		Assets:        assets,
		PoolClaims:    toClaimResponses(s.PoolClaims),
		CreatedAt:     s.CreatedAt,
	}
}

// ToCapitalWorkResponse converts a domain capital works item
func ToCapitalWorkResponse(cw *depreciation.CapitalWork) CapitalWorkResponse {
	return CapitalWorkResponse{
		ID:               cw.ID,
		PropertyID:       cw.PropertyID,
		Description:      cw.Description,
		ConstructionDate: cw.ConstructionDate,
		ConstructionCost: cw.ConstructionCost,
		ClaimStartDate:   cw.ClaimStartDate,
		AnnualDeduction:  cw.AnnualDeduction(),
		CreatedAt:        cw.CreatedAt,
	}
}

// ToReconciliationResponse converts a reconciliation report
func ToReconciliationResponse(r depreciation.ReconciliationReport) ReconciliationResponse {
	assets := make([]ValidatedAssetResponse, 0, len(r.Assets))
	for _, v := range r.Assets {
		assets = append(assets, ValidatedAssetResponse{
			AssetName:           v.AssetName,
			Category:            v.Category.String(),
			OriginalCost:        v.OriginalCost,
			EffectiveLife:       v.EffectiveLife,
			Method:              v.Method.String(),
			PoolType:            v.PoolType.String(),
			CalculatedDeduction: v.CalculatedDeduction,
			SuppliedDeduction:   v.SuppliedDeduction,
			Discrepancy:         v.Discrepancy,
			Valid:               v.IsValid(),
			Issues:              v.Issues,
		})
	}
	return ReconciliationResponse{
		Assets: assets,
		Summary: ReconciliationSummaryResponse{
			Candidates:         r.Summary.Candidates,
			Valid:              r.Summary.Valid,
			Discrepancies:      r.Summary.Discrepancies,
			SuppliedCandidates: r.Summary.SuppliedCandidates,
			CalculatedTotal:    r.Summary.CalculatedTotal,
			SuppliedTotal:      r.Summary.SuppliedTotal,
		},
	}
}

// ToProjectionResponse converts projection rows
func ToProjectionResponse(propertyID uuid.UUID, from, to valueobject.FinancialYear, rows []depreciation.ProjectionRow) *ProjectionResponse {
	resp := &ProjectionResponse{
		PropertyID: propertyID,
		FromFY:     from.Int(),
		ToFY:       to.Int(),
		Rows:       make([]ProjectionRowResponse, 0, len(rows)),
		Total:      decimal.Zero,
	}
	for _, r := range rows {
		resp.Rows = append(resp.Rows, ProjectionRowResponse{
			FinancialYear:      r.FinancialYear.Int(),
			FinancialYearLabel: r.FinancialYear.String(),
			Div40Total:         r.Div40Total,
			Div43Total:         r.Div43Total,
			LowValuePoolTotal:  r.LowValuePoolTotal,
			GrandTotal:         r.GrandTotal,
		})
		resp.Total = resp.Total.Add(r.GrandTotal)
	}
	resp.Total = valueobject.RoundMoney(resp.Total)
	return resp
}
