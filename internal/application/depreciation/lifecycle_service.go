package depreciation

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/propledger/backend/internal/domain/depreciation"
	"github.com/propledger/backend/internal/domain/property"
	"github.com/propledger/backend/internal/domain/shared"
	"github.com/propledger/backend/internal/domain/shared/valueobject"
	"github.com/propledger/backend/internal/infrastructure/telemetry"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// ErrCandidatesRejected is returned by ImportSchedule when any candidate
// fails validation. Nothing is persisted in that case.
var ErrCandidatesRejected = shared.NewDomainError("INVALID_CANDIDATES", "One or more assets failed validation; see the reconciliation report")

// ErrInvalidPreview rejects a preview request with unusable inputs
var ErrInvalidPreview = shared.NewDomainError("INVALID_INPUT", "Preview needs a positive cost and effective life, a valid method and at most 40 years")

type domainEventSource interface {
	GetDomainEvents() []shared.DomainEvent
	ClearDomainEvents()
}

// LifecycleService manages depreciation schedules, their assets and claims,
// and capital works. Every operation is scoped to the calling owner.
type LifecycleService struct {
	schedules    depreciation.ScheduleRepository
	assets       depreciation.AssetRepository
	claims       depreciation.ClaimRepository
	capitalWorks depreciation.CapitalWorkRepository
	properties   property.PropertyRepository
	calc         *depreciation.ScheduleCalculator

	eventPublisher shared.EventPublisher
	engineMetrics  *telemetry.EngineMetrics
	logger         *zap.Logger
	now            func() time.Time
}

// NewLifecycleService creates a new LifecycleService
func NewLifecycleService(
	schedules depreciation.ScheduleRepository,
	assets depreciation.AssetRepository,
	claims depreciation.ClaimRepository,
	capitalWorks depreciation.CapitalWorkRepository,
	properties property.PropertyRepository,
	calc *depreciation.ScheduleCalculator,
	logger *zap.Logger,
) *LifecycleService {
	if calc == nil {
		calc = depreciation.NewScheduleCalculator()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LifecycleService{
		schedules:    schedules,
		assets:       assets,
		claims:       claims,
		capitalWorks: capitalWorks,
		properties:   properties,
		calc:         calc,
		logger:       logger,
		now:          time.Now,
	}
}

// SetEventPublisher sets the publisher that receives lifecycle events
func (s *LifecycleService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// SetEngineMetrics sets the engine metrics collector
func (s *LifecycleService) SetEngineMetrics(em *telemetry.EngineMetrics) {
	s.engineMetrics = em
}

// ListSchedules returns a property's schedules with nested assets and claims,
// plus its capital works
func (s *LifecycleService) ListSchedules(ctx context.Context, ownerID, propertyID uuid.UUID) (*PropertyDepreciationResponse, error) {
	if _, err := s.properties.FindByIDForOwner(ctx, ownerID, propertyID); err != nil {
		return nil, err
	}

	schedules, err := s.schedules.FindByPropertyForOwner(ctx, ownerID, propertyID)
	if err != nil {
		return nil, err
	}
	works, err := s.capitalWorks.FindByPropertyForOwner(ctx, ownerID, propertyID)
	if err != nil {
		return nil, err
	}

	resp := &PropertyDepreciationResponse{
		Schedules:    make([]ScheduleResponse, 0, len(schedules)),
		CapitalWorks: make([]CapitalWorkResponse, 0, len(works)),
	}
	for i := range schedules {
		resp.Schedules = append(resp.Schedules, ToScheduleResponse(&schedules[i]))
	}
	for i := range works {
		resp.CapitalWorks = append(resp.CapitalWorks, ToCapitalWorkResponse(&works[i]))
	}
	return resp, nil
}

// CreateSchedule stores a manually entered schedule
func (s *LifecycleService) CreateSchedule(ctx context.Context, ownerID, propertyID uuid.UUID, req CreateScheduleRequest) (*ScheduleResponse, error) {
	if _, err := s.activeProperty(ctx, ownerID, propertyID); err != nil {
		return nil, err
	}
	effective, err := parseDate("effective_date", req.EffectiveDate)
	if err != nil {
		return nil, err
	}

	inputs := make([]depreciation.AssetInput, 0, len(req.Assets))
	for _, a := range req.Assets {
		in, err := a.toInput()
		if err != nil {
			return nil, err
		}
		inputs = append(inputs, in)
	}

	return s.createSchedule(ctx, ownerID, propertyID, effective, req.DocumentID, inputs)
}

// ImportSchedule reconciles untrusted candidates and, when every candidate
// is valid, persists them with their recalculated deductions. The report is
// returned in both cases.
func (s *LifecycleService) ImportSchedule(ctx context.Context, ownerID, propertyID uuid.UUID, req ImportScheduleRequest) (_ *ImportScheduleResponse, err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "depreciation", "import_schedule",
		telemetry.WithAttribute(telemetry.SpanAttrPropertyID, propertyID),
		telemetry.WithAttribute(telemetry.SpanAttrCandidates, len(req.Assets)),
	)
	defer telemetry.EndSpan(span, &err)

	if _, err := s.activeProperty(ctx, ownerID, propertyID); err != nil {
		return nil, err
	}
	effective, err := parseDate("effective_date", req.EffectiveDate)
	if err != nil {
		return nil, err
	}
	candidates, err := toCandidates(req.Assets)
	if err != nil {
		return nil, err
	}

	report := s.reconcile(ctx, candidates)
	resp := &ImportScheduleResponse{Reconciliation: ToReconciliationResponse(report)}
	if report.HasInvalid() {
		s.logger.Info("schedule import rejected",
			zap.String("owner_id", ownerID.String()),
			zap.String("property_id", propertyID.String()),
			zap.Int("candidates", report.Summary.Candidates),
			zap.Int("valid", report.Summary.Valid),
		)
		return resp, ErrCandidatesRejected
	}

	inputs := make([]depreciation.AssetInput, 0, len(report.Assets))
	for _, v := range report.Assets {
		inputs = append(inputs, v.ToAssetInput())
	}

	schedule, err := s.createSchedule(ctx, ownerID, propertyID, effective, req.DocumentID, inputs)
	if err != nil {
		return nil, err
	}
	resp.Schedule = schedule
	return resp, nil
}

// ValidateAndRecalculate reconciles candidates without persisting anything
func (s *LifecycleService) ValidateAndRecalculate(ctx context.Context, req ValidateRequest) (*ReconciliationResponse, error) {
	candidates, err := toCandidates(req.Assets)
	if err != nil {
		return nil, err
	}
	resp := ToReconciliationResponse(s.reconcile(ctx, candidates))
	return &resp, nil
}

// Preview returns the multi-year schedule of a hypothetical asset
func (s *LifecycleService) Preview(req PreviewRequest) ([]depreciation.ScheduleRow, error) {
	method := depreciation.Method(req.Method)
	if !req.Cost.IsPositive() || !req.EffectiveLife.IsPositive() || !method.IsValid() {
		return nil, ErrInvalidPreview
	}
	if req.MaxYears != nil && (*req.MaxYears < 1 || *req.MaxYears > depreciation.MaxScheduleYears) {
		return nil, ErrInvalidPreview
	}
	return s.calc.Schedule(req.Cost, req.EffectiveLife, method, req.MaxYears), nil
}

// AddAsset appends an asset to a schedule
func (s *LifecycleService) AddAsset(ctx context.Context, ownerID, scheduleID uuid.UUID, req AssetRequest) (*AssetResponse, error) {
	schedule, err := s.mutableSchedule(ctx, ownerID, func() (*depreciation.DepreciationSchedule, error) {
		return s.schedules.FindByIDForOwner(ctx, ownerID, scheduleID)
	})
	if err != nil {
		return nil, err
	}

	input, err := req.toInput()
	if err != nil {
		return nil, err
	}
	asset, err := schedule.AddAsset(input)
	if err != nil {
		return nil, err
	}
	if err := s.assets.Save(ctx, asset); err != nil {
		return nil, err
	}

	s.publishEvents(ctx, schedule)
	resp := ToAssetResponse(asset)
	return &resp, nil
}

// UpdateAsset applies a partial update and re-derives the asset's values
func (s *LifecycleService) UpdateAsset(ctx context.Context, ownerID, assetID uuid.UUID, req UpdateAssetRequest) (*AssetResponse, error) {
	schedule, err := s.mutableSchedule(ctx, ownerID, func() (*depreciation.DepreciationSchedule, error) {
		return s.schedules.FindByAssetForOwner(ctx, ownerID, assetID)
	})
	if err != nil {
		return nil, err
	}

	patch, err := req.toPatch()
	if err != nil {
		return nil, err
	}
	asset, err := schedule.UpdateAsset(assetID, patch)
	if err != nil {
		return nil, err
	}
	if err := s.assets.Save(ctx, asset); err != nil {
		return nil, err
	}

	s.publishEvents(ctx, schedule)
	resp := ToAssetResponse(asset)
	return &resp, nil
}

// DeleteAsset removes an asset together with its claims
func (s *LifecycleService) DeleteAsset(ctx context.Context, ownerID, assetID uuid.UUID) error {
	schedule, err := s.mutableSchedule(ctx, ownerID, func() (*depreciation.DepreciationSchedule, error) {
		return s.schedules.FindByAssetForOwner(ctx, ownerID, assetID)
	})
	if err != nil {
		return err
	}

	if _, err := schedule.RemoveAsset(assetID); err != nil {
		return err
	}
	if err := s.assets.DeleteForOwner(ctx, ownerID, assetID); err != nil {
		return err
	}

	s.publishEvents(ctx, schedule)
	return nil
}

// MoveToPool moves an individually depreciated asset into the low-value pool
// at its current written-down value
func (s *LifecycleService) MoveToPool(ctx context.Context, ownerID, assetID uuid.UUID) (*AssetResponse, error) {
	schedule, err := s.mutableSchedule(ctx, ownerID, func() (*depreciation.DepreciationSchedule, error) {
		return s.schedules.FindByAssetForOwner(ctx, ownerID, assetID)
	})
	if err != nil {
		return nil, err
	}

	asset, err := schedule.MoveAssetToPool(assetID, s.now())
	if err != nil {
		return nil, err
	}
	if err := s.assets.Save(ctx, asset); err != nil {
		return nil, err
	}

	s.logger.Info("asset moved to low-value pool",
		zap.String("owner_id", ownerID.String()),
		zap.String("property_id", schedule.PropertyID.String()),
		zap.String("asset_id", asset.ID.String()),
		zap.String("opening_written_down_value", asset.RemainingValue.String()),
	)
	if s.engineMetrics != nil {
		s.engineMetrics.RecordPoolMove(ctx, ownerID)
	}

	s.publishEvents(ctx, schedule)
	resp := ToAssetResponse(asset)
	return &resp, nil
}

// ClaimFY records claims for a financial year. Claims and the recomputed
// remaining values are written in one transaction. Claiming the same year
// twice adds to the earlier claims.
func (s *LifecycleService) ClaimFY(ctx context.Context, ownerID, scheduleID uuid.UUID, req ClaimFYRequest) (_ *ClaimFYResponse, err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "depreciation", "claim_fy",
		telemetry.WithAttribute(telemetry.SpanAttrScheduleID, scheduleID),
		telemetry.WithAttribute(telemetry.SpanAttrFinancialYear, req.FinancialYear),
	)
	defer telemetry.EndSpan(span, &err)

	schedule, err := s.mutableSchedule(ctx, ownerID, func() (*depreciation.DepreciationSchedule, error) {
		return s.schedules.FindByIDForOwner(ctx, ownerID, scheduleID)
	})
	if err != nil {
		return nil, err
	}

	fy := valueobject.FinancialYear(req.FinancialYear)
	lines := make([]depreciation.ClaimAmount, 0, len(req.Claims))
	for _, c := range req.Claims {
		lines = append(lines, depreciation.ClaimAmount{AssetID: c.AssetID, Amount: c.Amount})
	}

	recorded, affected, err := schedule.RecordClaims(fy, lines, s.now())
	if err != nil {
		return nil, err
	}
	if err := s.claims.RecordClaims(ctx, recorded, affected); err != nil {
		return nil, err
	}

	amounts := make([]decimal.Decimal, 0, len(recorded))
	for _, c := range recorded {
		amounts = append(amounts, c.Amount)
	}
	total := valueobject.SumMoney(amounts...)

	s.logger.Info("depreciation claims recorded",
		zap.String("owner_id", ownerID.String()),
		zap.String("property_id", schedule.PropertyID.String()),
		zap.String("schedule_id", scheduleID.String()),
		zap.String("financial_year", fy.String()),
		zap.Int("claims", len(recorded)),
		zap.String("total", total.String()),
	)
	if s.engineMetrics != nil {
		s.engineMetrics.RecordClaims(ctx, ownerID, fy.Int(), len(recorded), total)
	}

	s.publishEvents(ctx, schedule)
	return &ClaimFYResponse{
		ScheduleID:     scheduleID,
		FinancialYear:  fy.Int(),
		Claims:         toClaimResponses(recorded),
		Total:          total,
		AffectedAssets: toAssetResponses(affected),
	}, nil
}

// UnclaimFY removes every claim of a schedule for a financial year and
// restores the affected remaining values, in one transaction
func (s *LifecycleService) UnclaimFY(ctx context.Context, ownerID, scheduleID uuid.UUID, financialYear int) (*UnclaimFYResponse, error) {
	fy := valueobject.FinancialYear(financialYear)
	if !fy.IsValid() {
		return nil, depreciation.ErrInvalidFinancialYear
	}

	schedule, err := s.mutableSchedule(ctx, ownerID, func() (*depreciation.DepreciationSchedule, error) {
		return s.schedules.FindByIDForOwner(ctx, ownerID, scheduleID)
	})
	if err != nil {
		return nil, err
	}

	_, affected := schedule.RemoveClaims(fy)
	removed, err := s.claims.RemoveClaims(ctx, ownerID, scheduleID, fy, affected)
	if err != nil {
		return nil, err
	}

	s.logger.Info("depreciation claims removed",
		zap.String("owner_id", ownerID.String()),
		zap.String("property_id", schedule.PropertyID.String()),
		zap.String("schedule_id", scheduleID.String()),
		zap.String("financial_year", fy.String()),
		zap.Int64("removed", removed),
	)

	s.publishEvents(ctx, schedule)
	return &UnclaimFYResponse{
		ScheduleID:     scheduleID,
		FinancialYear:  fy.Int(),
		Removed:        removed,
		AffectedAssets: toAssetResponses(affected),
	}, nil
}

// AddCapitalWorks records a Division 43 item against a property
func (s *LifecycleService) AddCapitalWorks(ctx context.Context, ownerID, propertyID uuid.UUID, req CapitalWorksRequest) (*CapitalWorkResponse, error) {
	if _, err := s.activeProperty(ctx, ownerID, propertyID); err != nil {
		return nil, err
	}

	built, err := parseDate("construction_date", req.ConstructionDate)
	if err != nil {
		return nil, err
	}
	start := built
	if req.ClaimStartDate != nil && *req.ClaimStartDate != "" {
		if start, err = parseDate("claim_start_date", *req.ClaimStartDate); err != nil {
			return nil, err
		}
	}

	cw, err := depreciation.NewCapitalWork(ownerID, propertyID, depreciation.CapitalWorkInput{
		Description:      req.Description,
		ConstructionDate: built,
		ConstructionCost: req.ConstructionCost,
		ClaimStartDate:   start,
	})
	if err != nil {
		return nil, err
	}
	if err := s.capitalWorks.Save(ctx, cw); err != nil {
		return nil, err
	}

	s.publishEvents(ctx, cw)
	resp := ToCapitalWorkResponse(cw)
	return &resp, nil
}

func (s *LifecycleService) createSchedule(
	ctx context.Context,
	ownerID, propertyID uuid.UUID,
	effective time.Time,
	documentID *uuid.UUID,
	inputs []depreciation.AssetInput,
) (*ScheduleResponse, error) {
	schedule, err := depreciation.NewDepreciationSchedule(ownerID, propertyID, effective, documentID, inputs)
	if err != nil {
		return nil, err
	}
	if err := s.schedules.Create(ctx, schedule); err != nil {
		return nil, err
	}

	s.logger.Info("depreciation schedule created",
		zap.String("owner_id", ownerID.String()),
		zap.String("property_id", propertyID.String()),
		zap.String("schedule_id", schedule.ID.String()),
		zap.Int("assets", len(schedule.Assets)),
	)

	s.publishEvents(ctx, schedule)
	resp := ToScheduleResponse(schedule)
	return &resp, nil
}

func (s *LifecycleService) reconcile(ctx context.Context, candidates []depreciation.AssetCandidate) depreciation.ReconciliationReport {
	report := depreciation.ValidateAndRecalculate(candidates)
	if report.Summary.Discrepancies > 0 {
		s.logger.Info("deduction discrepancies found",
			zap.Int("candidates", report.Summary.Candidates),
			zap.Int("discrepancies", report.Summary.Discrepancies),
			zap.String("calculated_total", report.Summary.CalculatedTotal.String()),
			zap.String("supplied_total", report.Summary.SuppliedTotal.String()),
		)
	}
	if s.engineMetrics != nil {
		s.engineMetrics.RecordReconciliation(ctx, report.Summary.Candidates, report.Summary.Valid, report.Summary.Discrepancies)
	}
	return report
}

// activeProperty loads the owner's property and rejects sold ones
func (s *LifecycleService) activeProperty(ctx context.Context, ownerID, propertyID uuid.UUID) (*property.Property, error) {
	p, err := s.properties.FindByIDForOwner(ctx, ownerID, propertyID)
	if err != nil {
		return nil, err
	}
	if err := p.EnsureActive(); err != nil {
		return nil, err
	}
	return p, nil
}

// mutableSchedule loads a schedule and checks its property is still active
func (s *LifecycleService) mutableSchedule(ctx context.Context, ownerID uuid.UUID, load func() (*depreciation.DepreciationSchedule, error)) (*depreciation.DepreciationSchedule, error) {
	schedule, err := load()
	if err != nil {
		return nil, err
	}
	if _, err := s.activeProperty(ctx, ownerID, schedule.PropertyID); err != nil {
		return nil, err
	}
	return schedule, nil
}

// publishEvents hands pending events to the publisher. Publish failures are
// logged; the write has already committed.
func (s *LifecycleService) publishEvents(ctx context.Context, source domainEventSource) {
	defer source.ClearDomainEvents()
	if s.eventPublisher == nil {
		return
	}
	for _, event := range source.GetDomainEvents() {
		if err := s.eventPublisher.Publish(ctx, event); err != nil {
			s.logger.Warn("failed to publish domain event",
				zap.String("event_type", event.EventType()),
				zap.String("event_id", event.EventID().String()),
				zap.Error(err),
			)
		}
	}
}
