package depreciation

import (
	"github.com/google/uuid"
	"github.com/propledger/backend/internal/domain/shared"
	"github.com/propledger/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// Event type names
const (
	EventTypeScheduleCreated  = "DepreciationScheduleCreated"
	EventTypeAssetAdded       = "DepreciationAssetAdded"
	EventTypeAssetUpdated     = "DepreciationAssetUpdated"
	EventTypeAssetRemoved     = "DepreciationAssetRemoved"
	EventTypeAssetMovedToPool = "DepreciationAssetMovedToPool"
	EventTypeClaimsRecorded   = "DepreciationClaimsRecorded"
	EventTypeClaimsRemoved    = "DepreciationClaimsRemoved"
	EventTypeCapitalWorkAdded = "CapitalWorkAdded"
)

const (
	aggregateTypeSchedule    = "DepreciationSchedule"
	aggregateTypeCapitalWork = "CapitalWork"
)

// AllEventTypes lists every event raised by this package
func AllEventTypes() []string {
	return []string{
		EventTypeScheduleCreated,
		EventTypeAssetAdded,
		EventTypeAssetUpdated,
		EventTypeAssetRemoved,
		EventTypeAssetMovedToPool,
		EventTypeClaimsRecorded,
		EventTypeClaimsRemoved,
		EventTypeCapitalWorkAdded,
	}
}

// propertyEvent is embedded by every event raised against a property's
// depreciation records
type propertyEvent struct {
	shared.BaseDomainEvent
	Property uuid.UUID `json:"property_id"`
}

// PropertyID returns the property whose depreciation changed
func (e *propertyEvent) PropertyID() uuid.UUID {
	return e.Property
}

func newScheduleEvent(eventType string, s *DepreciationSchedule) propertyEvent {
	return propertyEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(eventType, aggregateTypeSchedule, s.ID, s.OwnerID),
		Property:        s.PropertyID,
	}
}

// ScheduleCreatedEvent is raised when a schedule is created
type ScheduleCreatedEvent struct {
	propertyEvent
	AssetCount int             `json:"asset_count"`
	TotalValue decimal.Decimal `json:"total_value"`
}

// NewScheduleCreatedEvent creates a new ScheduleCreatedEvent
func NewScheduleCreatedEvent(s *DepreciationSchedule) *ScheduleCreatedEvent {
	return &ScheduleCreatedEvent{
		propertyEvent: newScheduleEvent(EventTypeScheduleCreated, s),
		AssetCount:    len(s.Assets),
		TotalValue:    s.TotalValue,
	}
}

// AssetChangedEvent is raised when an asset is added, updated, removed or pooled
type AssetChangedEvent struct {
	propertyEvent
	AssetID  uuid.UUID `json:"asset_id"`
	PoolType PoolType  `json:"pool_type"`
}

// NewAssetChangedEvent creates an asset event of the given type
func NewAssetChangedEvent(eventType string, s *DepreciationSchedule, a *DepreciationAsset) *AssetChangedEvent {
	return &AssetChangedEvent{
		propertyEvent: newScheduleEvent(eventType, s),
		AssetID:       a.ID,
		PoolType:      a.PoolType,
	}
}

// ClaimsChangedEvent is raised when claims for a financial year are recorded or removed
type ClaimsChangedEvent struct {
	propertyEvent
	FinancialYear valueobject.FinancialYear `json:"financial_year"`
	ClaimCount    int                       `json:"claim_count"`
	Total         decimal.Decimal           `json:"total"`
}

// NewClaimsChangedEvent creates a claims event of the given type
func NewClaimsChangedEvent(eventType string, s *DepreciationSchedule, fy valueobject.FinancialYear, claims []Claim) *ClaimsChangedEvent {
	total := decimal.Zero
	for _, c := range claims {
		total = total.Add(c.Amount)
	}
	return &ClaimsChangedEvent{
		propertyEvent: newScheduleEvent(eventType, s),
		FinancialYear: fy,
		ClaimCount:    len(claims),
		Total:         valueobject.RoundMoney(total),
	}
}

// CapitalWorkAddedEvent is raised when a Division 43 item is recorded
type CapitalWorkAddedEvent struct {
	propertyEvent
	ConstructionCost decimal.Decimal `json:"construction_cost"`
}

// NewCapitalWorkAddedEvent creates a new CapitalWorkAddedEvent
func NewCapitalWorkAddedEvent(cw *CapitalWork) *CapitalWorkAddedEvent {
	return &CapitalWorkAddedEvent{
		propertyEvent: propertyEvent{
			BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeCapitalWorkAdded, aggregateTypeCapitalWork, cw.ID, cw.OwnerID),
			Property:        cw.PropertyID,
		},
		ConstructionCost: cw.ConstructionCost,
	}
}
