package depreciation

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/propledger/backend/internal/domain/depreciation"
	"github.com/propledger/backend/internal/domain/property"
	"github.com/propledger/backend/internal/domain/shared/valueobject"
	"github.com/propledger/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// ProjectionService builds multi-year deduction projections for a property.
// Results are cached per owner, property and range when a cache is set.
type ProjectionService struct {
	schedules    depreciation.ScheduleRepository
	capitalWorks depreciation.CapitalWorkRepository
	properties   property.PropertyRepository
	sales        property.SaleRepository
	builder      *depreciation.ProjectionBuilder

	cache         depreciation.ProjectionCache
	cacheTTL      time.Duration
	engineMetrics *telemetry.EngineMetrics
	logger        *zap.Logger
}

// NewProjectionService creates a new ProjectionService
func NewProjectionService(
	schedules depreciation.ScheduleRepository,
	capitalWorks depreciation.CapitalWorkRepository,
	properties property.PropertyRepository,
	sales property.SaleRepository,
	calc *depreciation.ScheduleCalculator,
	logger *zap.Logger,
) *ProjectionService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProjectionService{
		schedules:    schedules,
		capitalWorks: capitalWorks,
		properties:   properties,
		sales:        sales,
		builder:      depreciation.NewProjectionBuilder(calc),
		logger:       logger,
	}
}

// SetCache enables projection caching; a zero ttl uses the cache default
func (s *ProjectionService) SetCache(cache depreciation.ProjectionCache, ttl time.Duration) {
	s.cache = cache
	s.cacheTTL = ttl
}

// SetEngineMetrics sets the engine metrics collector
func (s *ProjectionService) SetEngineMetrics(em *telemetry.EngineMetrics) {
	s.engineMetrics = em
}

// GetProjection returns one row per financial year from fromFY to toFY
func (s *ProjectionService) GetProjection(ctx context.Context, ownerID, propertyID uuid.UUID, fromFY, toFY int) (_ *ProjectionResponse, err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "projection", "get",
		telemetry.WithAttribute(telemetry.SpanAttrPropertyID, propertyID),
		telemetry.WithAttribute(telemetry.SpanAttrFromFY, fromFY),
		telemetry.WithAttribute(telemetry.SpanAttrToFY, toFY),
	)
	defer telemetry.EndSpan(span, &err)

	from, to := valueobject.FinancialYear(fromFY), valueobject.FinancialYear(toFY)
	if err := depreciation.ValidateProjectionRange(from, to); err != nil {
		return nil, err
	}

	p, err := s.properties.FindByIDForOwner(ctx, ownerID, propertyID)
	if err != nil {
		return nil, err
	}

	key := depreciation.ProjectionKey{OwnerID: ownerID, PropertyID: propertyID, From: from, To: to}
	rows := s.cached(ctx, key)
	telemetry.SetAttributes(span, telemetry.SpanAttrCacheHit, rows != nil)
	if rows != nil {
		return ToProjectionResponse(propertyID, from, to, rows), nil
	}

	start := time.Now()
	input, err := s.loadInput(ctx, p)
	if err != nil {
		return nil, err
	}
	rows, err = s.builder.Build(input, from, to)
	if err != nil {
		return nil, err
	}
	if s.engineMetrics != nil {
		s.engineMetrics.RecordProjectionBuild(ctx, time.Since(start))
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, rows, s.cacheTTL); err != nil {
			s.logger.Warn("failed to cache projection",
				zap.String("property_id", propertyID.String()),
				zap.Error(err))
		}
	}

	return ToProjectionResponse(propertyID, from, to, rows), nil
}

// cached returns rows from the cache, or nil. Cache errors are logged and
// treated as a miss.
func (s *ProjectionService) cached(ctx context.Context, key depreciation.ProjectionKey) []depreciation.ProjectionRow {
	if s.cache == nil {
		return nil
	}

	rows, err := s.cache.Get(ctx, key)
	if err != nil {
		s.logger.Warn("projection cache lookup failed",
			zap.String("key", key.String()),
			zap.Error(err))
	}
	if s.engineMetrics != nil {
		s.engineMetrics.RecordProjectionCache(ctx, rows != nil)
	}
	return rows
}

func (s *ProjectionService) loadInput(ctx context.Context, p *property.Property) (depreciation.ProjectionInput, error) {
	schedules, err := s.schedules.FindByPropertyForOwner(ctx, p.OwnerID, p.ID)
	if err != nil {
		return depreciation.ProjectionInput{}, err
	}
	works, err := s.capitalWorks.FindByPropertyForOwner(ctx, p.OwnerID, p.ID)
	if err != nil {
		return depreciation.ProjectionInput{}, err
	}

	input := depreciation.ProjectionInput{Schedules: schedules, CapitalWorks: works}
	if p.IsSold() {
		sale, err := s.sales.FindByPropertyForOwner(ctx, p.OwnerID, p.ID)
		if err != nil {
			return depreciation.ProjectionInput{}, err
		}
		soldIn := sale.SettledIn()
		input.SoldIn = &soldIn
	}
	return input, nil
}
