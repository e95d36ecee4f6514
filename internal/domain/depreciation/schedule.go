package depreciation

import (
	"time"

	"github.com/google/uuid"
	"github.com/propledger/backend/internal/domain/shared"
	"github.com/propledger/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// DepreciationSchedule is a quantity surveyor's schedule for one property.
// After creation it only changes through its assets and claims.
type DepreciationSchedule struct {
	shared.OwnedAggregateRoot
	PropertyID    uuid.UUID
	DocumentID    *uuid.UUID
	EffectiveDate time.Time
	TotalValue    decimal.Decimal
	Assets        []DepreciationAsset
	PoolClaims    []Claim
}

// NewDepreciationSchedule creates a schedule with its initial assets.
// TotalValue is the sum of the assets' original cost.
func NewDepreciationSchedule(
	ownerID, propertyID uuid.UUID,
	effectiveDate time.Time,
	documentID *uuid.UUID,
	inputs []AssetInput,
) (*DepreciationSchedule, error) {
	if propertyID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PROPERTY", "Property ID is required")
	}
	if effectiveDate.IsZero() {
		return nil, shared.NewDomainError("INVALID_EFFECTIVE_DATE", "Schedule effective date is required")
	}

	schedule := &DepreciationSchedule{
		OwnedAggregateRoot: shared.NewOwnedAggregateRoot(ownerID),
		PropertyID:         propertyID,
		DocumentID:         documentID,
		EffectiveDate:      effectiveDate,
		Assets:             make([]DepreciationAsset, 0, len(inputs)),
		PoolClaims:         make([]Claim, 0),
	}

	total := decimal.Zero
	for _, in := range inputs {
		asset, err := NewDepreciationAsset(ownerID, schedule.ID, in)
		if err != nil {
			return nil, err
		}
		schedule.Assets = append(schedule.Assets, *asset)
		total = total.Add(asset.OriginalCost)
	}
	schedule.TotalValue = valueobject.RoundMoney(total)

	schedule.AddDomainEvent(NewScheduleCreatedEvent(schedule))
	return schedule, nil
}

// Asset returns the asset with the given ID, or ErrAssetNotFound
func (s *DepreciationSchedule) Asset(assetID uuid.UUID) (*DepreciationAsset, error) {
	for i := range s.Assets {
		if s.Assets[i].ID == assetID {
			return &s.Assets[i], nil
		}
	}
	return nil, ErrAssetNotFound
}

// AddAsset appends a validated asset to the schedule
func (s *DepreciationSchedule) AddAsset(input AssetInput) (*DepreciationAsset, error) {
	asset, err := NewDepreciationAsset(s.OwnerID, s.ID, input)
	if err != nil {
		return nil, err
	}
	s.Assets = append(s.Assets, *asset)
	added := &s.Assets[len(s.Assets)-1]

	s.AddDomainEvent(NewAssetChangedEvent(EventTypeAssetAdded, s, added))
	return added, nil
}

// UpdateAsset applies a patch to one of the schedule's assets
func (s *DepreciationSchedule) UpdateAsset(assetID uuid.UUID, patch AssetPatch) (*DepreciationAsset, error) {
	asset, err := s.Asset(assetID)
	if err != nil {
		return nil, err
	}
	if err := asset.ApplyPatch(patch); err != nil {
		return nil, err
	}

	s.AddDomainEvent(NewAssetChangedEvent(EventTypeAssetUpdated, s, asset))
	return asset, nil
}

// RemoveAsset drops an asset and its claims from the schedule
func (s *DepreciationSchedule) RemoveAsset(assetID uuid.UUID) (*DepreciationAsset, error) {
	for i := range s.Assets {
		if s.Assets[i].ID != assetID {
			continue
		}
		removed := s.Assets[i]
		s.Assets = append(s.Assets[:i], s.Assets[i+1:]...)
		s.AddDomainEvent(NewAssetChangedEvent(EventTypeAssetRemoved, s, &removed))
		return &removed, nil
	}
	return nil, ErrAssetNotFound
}

// MoveAssetToPool moves one of the schedule's assets into the low-value pool
func (s *DepreciationSchedule) MoveAssetToPool(assetID uuid.UUID, at time.Time) (*DepreciationAsset, error) {
	asset, err := s.Asset(assetID)
	if err != nil {
		return nil, err
	}
	if err := asset.MoveToLowValuePool(at); err != nil {
		return nil, err
	}

	s.AddDomainEvent(NewAssetChangedEvent(EventTypeAssetMovedToPool, s, asset))
	return asset, nil
}

// RecordClaims creates one claim per line for the financial year and
// recomputes the remaining value of every asset that was claimed. It returns
// the new claims and the affected assets.
func (s *DepreciationSchedule) RecordClaims(fy valueobject.FinancialYear, lines []ClaimAmount, at time.Time) ([]Claim, []*DepreciationAsset, error) {
	if !fy.IsValid() {
		return nil, nil, ErrInvalidFinancialYear
	}
	if len(lines) == 0 {
		return nil, nil, ErrInvalidClaimAmount
	}
	for _, line := range lines {
		if !valueobject.RoundMoney(line.Amount).IsPositive() {
			return nil, nil, ErrInvalidClaimAmount
		}
		if line.AssetID != nil {
			if _, err := s.Asset(*line.AssetID); err != nil {
				return nil, nil, ErrInvalidClaimAsset
			}
		}
	}

	claims := make([]Claim, 0, len(lines))
	touched := make(map[uuid.UUID]*DepreciationAsset)
	affected := make([]*DepreciationAsset, 0)

	for _, line := range lines {
		claim := newClaim(s.OwnerID, s.ID, fy, line, at)
		claims = append(claims, claim)

		if claim.IsPoolLevel() {
			s.PoolClaims = append(s.PoolClaims, claim)
			continue
		}
		asset, _ := s.Asset(*claim.AssetID)
		asset.Claims = append(asset.Claims, claim)
		if _, ok := touched[asset.ID]; !ok {
			touched[asset.ID] = asset
			affected = append(affected, asset)
		}
	}

	for _, asset := range affected {
		asset.Recalculate()
	}

	s.AddDomainEvent(NewClaimsChangedEvent(EventTypeClaimsRecorded, s, fy, claims))
	return claims, affected, nil
}

// RemoveClaims deletes every claim for the financial year and recomputes the
// assets that lost a claim. It returns the removed claims and affected assets.
func (s *DepreciationSchedule) RemoveClaims(fy valueobject.FinancialYear) ([]Claim, []*DepreciationAsset) {
	removed := make([]Claim, 0)
	affected := make([]*DepreciationAsset, 0)

	kept := s.PoolClaims[:0]
	for _, c := range s.PoolClaims {
		if c.FinancialYear == fy {
			removed = append(removed, c)
			continue
		}
		kept = append(kept, c)
	}
	s.PoolClaims = kept

	for i := range s.Assets {
		asset := &s.Assets[i]
		remaining := asset.Claims[:0]
		changed := false
		for _, c := range asset.Claims {
			if c.FinancialYear == fy {
				removed = append(removed, c)
				changed = true
				continue
			}
			remaining = append(remaining, c)
		}
		asset.Claims = remaining
		if changed {
			asset.Recalculate()
			affected = append(affected, asset)
		}
	}

	s.AddDomainEvent(NewClaimsChangedEvent(EventTypeClaimsRemoved, s, fy, removed))
	return removed, affected
}

// AllClaims returns pool-level and asset-level claims together
func (s *DepreciationSchedule) AllClaims() []Claim {
	claims := make([]Claim, 0, len(s.PoolClaims))
	claims = append(claims, s.PoolClaims...)
	for _, a := range s.Assets {
		claims = append(claims, a.Claims...)
	}
	return claims
}

// ClaimedTotal sums every claim for the financial year
func (s *DepreciationSchedule) ClaimedTotal(fy valueobject.FinancialYear) decimal.Decimal {
	total := decimal.Zero
	for _, c := range s.AllClaims() {
		if c.FinancialYear == fy {
			total = total.Add(c.Amount)
		}
	}
	return valueobject.RoundMoney(total)
}
