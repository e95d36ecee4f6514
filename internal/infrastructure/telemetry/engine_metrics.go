package telemetry

import (
	"context"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// EngineMetrics counts what the depreciation and CGT engines do: candidates
// reconciled, claims lodged, assets pooled, sales recorded and how the
// projection cache performs.
type EngineMetrics struct {
	meter  metric.Meter
	logger *zap.Logger

	candidatesTotal    *Counter
	discrepanciesTotal *Counter
	claimsTotal        *Counter
	claimAmountTotal   *Counter
	poolMovesTotal     *Counter
	salesTotal         *Counter
	projectionCache    *Counter
	projectionDuration *Histogram
}

// EngineMetricsConfig holds configuration for engine metrics.
type EngineMetricsConfig struct {
	Meter  metric.Meter
	Logger *zap.Logger
}

// NewEngineMetrics registers the engine instruments on cfg.Meter.
func NewEngineMetrics(cfg EngineMetricsConfig) (*EngineMetrics, error) {
	if cfg.Meter == nil {
		return nil, ErrMeterNil
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	em := &EngineMetrics{meter: cfg.Meter, logger: logger}

	var err error
	if em.candidatesTotal, err = NewCounter(cfg.Meter,
		"propledger_reconciliation_candidates_total",
		"Asset candidates passed through reconciliation",
		"{candidates}",
	); err != nil {
		return nil, err
	}
	if em.discrepanciesTotal, err = NewCounter(cfg.Meter,
		"propledger_reconciliation_discrepancies_total",
		"Candidates whose supplied deduction differs from the recalculated one by more than the tolerance",
		"{candidates}",
	); err != nil {
		return nil, err
	}
	if em.claimsTotal, err = NewCounter(cfg.Meter,
		"propledger_depreciation_claims_total",
		"Depreciation claim rows recorded",
		"{claims}",
	); err != nil {
		return nil, err
	}
	if em.claimAmountTotal, err = NewCounter(cfg.Meter,
		"propledger_depreciation_claim_amount_total",
		"Claimed depreciation in cents",
		"{cents}",
	); err != nil {
		return nil, err
	}
	if em.poolMovesTotal, err = NewCounter(cfg.Meter,
		"propledger_low_value_pool_moves_total",
		"Assets moved into the low-value pool",
		"{assets}",
	); err != nil {
		return nil, err
	}
	if em.salesTotal, err = NewCounter(cfg.Meter,
		"propledger_property_sales_total",
		"Property sales recorded",
		"{sales}",
	); err != nil {
		return nil, err
	}
	if em.projectionCache, err = NewCounter(cfg.Meter,
		"propledger_projection_cache_lookups_total",
		"Projection cache lookups by result",
		"{lookups}",
	); err != nil {
		return nil, err
	}
	if em.projectionDuration, err = NewHistogram(cfg.Meter, HistogramOpts{
		Name:        "propledger_projection_build_duration_seconds",
		Description: "Time taken to build a multi-year projection",
		Unit:        "s",
		Boundaries:  SmallDurationBuckets,
	}); err != nil {
		return nil, err
	}

	return em, nil
}

// RecordReconciliation records a reconciliation run.
func (em *EngineMetrics) RecordReconciliation(ctx context.Context, candidates, valid, discrepancies int) {
	em.candidatesTotal.Add(ctx, int64(valid), AttrOutcome.String("valid"))
	if invalid := candidates - valid; invalid > 0 {
		em.candidatesTotal.Add(ctx, int64(invalid), AttrOutcome.String("invalid"))
	}
	if discrepancies > 0 {
		em.discrepanciesTotal.Add(ctx, int64(discrepancies))
	}
}

// RecordClaims records claims lodged for a financial year.
func (em *EngineMetrics) RecordClaims(ctx context.Context, ownerID uuid.UUID, financialYear, count int, total decimal.Decimal) {
	fy := AttrFinancialYear.String(strconv.Itoa(financialYear))
	em.claimsTotal.Add(ctx, int64(count), AttrOwnerID.String(ownerID.String()), fy)
	em.claimAmountTotal.Add(ctx, total.Shift(2).IntPart(), fy)
}

// RecordPoolMove records an asset moved into the low-value pool.
func (em *EngineMetrics) RecordPoolMove(ctx context.Context, ownerID uuid.UUID) {
	em.poolMovesTotal.Inc(ctx, AttrOwnerID.String(ownerID.String()))
}

// RecordSale records a property sale, labelled by whether the gain was discounted.
func (em *EngineMetrics) RecordSale(ctx context.Context, ownerID uuid.UUID, discounted bool) {
	outcome := "undiscounted"
	if discounted {
		outcome = "discounted"
	}
	em.salesTotal.Inc(ctx, AttrOwnerID.String(ownerID.String()), AttrOutcome.String(outcome))
}

// RecordProjectionCache records a projection cache hit or miss.
func (em *EngineMetrics) RecordProjectionCache(ctx context.Context, hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	em.projectionCache.Inc(ctx, AttrCacheResult.String(result))
}

// RecordProjectionBuild records how long a projection took to build.
func (em *EngineMetrics) RecordProjectionBuild(ctx context.Context, d time.Duration) {
	em.projectionDuration.RecordDuration(ctx, d)
}

// ErrMeterNil is returned when meter is nil.
var ErrMeterNil = &MetricsError{Op: "NewEngineMetrics", Err: "meter cannot be nil"}

// MetricsError represents a metrics-related error.
type MetricsError struct {
	Op  string
	Err string
}

func (e *MetricsError) Error() string {
	return e.Op + ": " + e.Err
}
