package depreciation

import (
	"context"

	"github.com/google/uuid"
	"github.com/propledger/backend/internal/domain/shared/valueobject"
)

// ScheduleRepository persists schedules together with their assets and claims.
// Every lookup is owner-scoped; records owned by someone else are reported as
// shared.ErrNotFound.
type ScheduleRepository interface {
	// FindByIDForOwner loads a schedule with assets and claims
	FindByIDForOwner(ctx context.Context, ownerID, id uuid.UUID) (*DepreciationSchedule, error)

	// FindByAssetForOwner loads the schedule containing an asset
	FindByAssetForOwner(ctx context.Context, ownerID, assetID uuid.UUID) (*DepreciationSchedule, error)

	// FindByPropertyForOwner loads every schedule of a property, oldest first
	FindByPropertyForOwner(ctx context.Context, ownerID, propertyID uuid.UUID) ([]DepreciationSchedule, error)

	// Create inserts a new schedule and its initial assets atomically
	Create(ctx context.Context, schedule *DepreciationSchedule) error
}

// AssetRepository persists individual assets
type AssetRepository interface {
	// Save creates or updates an asset's own columns
	Save(ctx context.Context, asset *DepreciationAsset) error

	// DeleteForOwner removes an asset and its claims
	DeleteForOwner(ctx context.Context, ownerID, id uuid.UUID) error
}

// ClaimRepository writes claims together with the recomputed assets they
// affect, each call in a single transaction
type ClaimRepository interface {
	// RecordClaims inserts claims and saves the affected assets
	RecordClaims(ctx context.Context, claims []Claim, affected []*DepreciationAsset) error

	// RemoveClaims deletes every claim of a schedule for a financial year and
	// saves the affected assets. It returns the number of rows deleted.
	RemoveClaims(ctx context.Context, ownerID, scheduleID uuid.UUID, fy valueobject.FinancialYear, affected []*DepreciationAsset) (int64, error)
}

// CapitalWorkRepository persists Division 43 items
type CapitalWorkRepository interface {
	// FindByPropertyForOwner lists a property's capital works, oldest first
	FindByPropertyForOwner(ctx context.Context, ownerID, propertyID uuid.UUID) ([]CapitalWork, error)

	// Save creates or updates a capital works item
	Save(ctx context.Context, cw *CapitalWork) error
}
