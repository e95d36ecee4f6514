package depreciation

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/propledger/backend/internal/domain/depreciation"
	"github.com/propledger/backend/internal/domain/property"
	"github.com/propledger/backend/internal/domain/shared"
	"go.uber.org/zap"
)

type propertyScopedEvent interface {
	shared.DomainEvent
	PropertyID() uuid.UUID
}

// ProjectionInvalidationHandler drops a property's cached projections
// whenever its schedules, claims, capital works or sale change
type ProjectionInvalidationHandler struct {
	cache  depreciation.ProjectionCache
	logger *zap.Logger
}

// NewProjectionInvalidationHandler creates a new handler
func NewProjectionInvalidationHandler(cache depreciation.ProjectionCache, logger *zap.Logger) *ProjectionInvalidationHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProjectionInvalidationHandler{cache: cache, logger: logger}
}

// EventTypes returns the event types this handler is interested in
func (h *ProjectionInvalidationHandler) EventTypes() []string {
	return append(depreciation.AllEventTypes(), property.EventTypePropertySold)
}

// Handle invalidates the projections of the event's property
func (h *ProjectionInvalidationHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	scoped, ok := event.(propertyScopedEvent)
	if !ok {
		h.logger.Error("event carries no property",
			zap.String("event_type", event.EventType()),
		)
		return fmt.Errorf("unexpected event type: %s carries no property id", event.EventType())
	}

	if err := h.cache.InvalidateProperty(ctx, event.OwnerID(), scoped.PropertyID()); err != nil {
		h.logger.Error("failed to invalidate projections",
			zap.String("owner_id", event.OwnerID().String()),
			zap.String("property_id", scoped.PropertyID().String()),
			zap.String("event_type", event.EventType()),
			zap.Error(err),
		)
		return fmt.Errorf("invalidate projections: %w", err)
	}

	h.logger.Debug("projections invalidated",
		zap.String("property_id", scoped.PropertyID().String()),
		zap.String("event_type", event.EventType()),
	)
	return nil
}
