package depreciation

import (
	"time"

	"github.com/google/uuid"
	"github.com/propledger/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// Claim records a deduction taken in a financial year. A nil AssetID marks a
// pool-level claim. Claims are additive: they are only created, or removed in
// bulk for a (schedule, financial year) pair.
type Claim struct {
	ID            uuid.UUID
	OwnerID       uuid.UUID
	ScheduleID    uuid.UUID
	AssetID       *uuid.UUID
	FinancialYear valueobject.FinancialYear
	Amount        decimal.Decimal
	ClaimedAt     time.Time
}

// IsPoolLevel returns true when the claim is not tied to a single asset
func (c Claim) IsPoolLevel() bool {
	return c.AssetID == nil
}

// ClaimAmount is one requested line of a financial year claim
type ClaimAmount struct {
	AssetID *uuid.UUID
	Amount  decimal.Decimal
}

func newClaim(ownerID, scheduleID uuid.UUID, fy valueobject.FinancialYear, line ClaimAmount, claimedAt time.Time) Claim {
	var assetID *uuid.UUID
	if line.AssetID != nil {
		id := *line.AssetID
		assetID = &id
	}
	return Claim{
		ID:            uuid.New(),
		OwnerID:       ownerID,
		ScheduleID:    scheduleID,
		AssetID:       assetID,
		FinancialYear: fy,
		Amount:        valueobject.RoundMoney(line.Amount),
		ClaimedAt:     claimedAt,
	}
}
