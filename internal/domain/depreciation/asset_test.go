package depreciation

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/propledger/backend/internal/domain/shared/valueobject"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func plantInput(name, cost, life string, method Method) AssetInput {
	return AssetInput{
		AssetName:     name,
		Category:      CategoryPlantEquipment,
		OriginalCost:  d(cost),
		EffectiveLife: d(life),
		Method:        method,
	}
}

func claimFor(asset *DepreciationAsset, fy valueobject.FinancialYear, amount string) Claim {
	id := asset.ID
	return Claim{
		ID:            uuid.New(),
		OwnerID:       asset.OwnerID,
		ScheduleID:    asset.ScheduleID,
		AssetID:       &id,
		FinancialYear: fy,
		Amount:        d(amount),
		ClaimedAt:     time.Now(),
	}
}

func TestNewDepreciationAsset(t *testing.T) {
	ownerID := uuid.New()
	scheduleID := uuid.New()

	t.Run("derives pool and values", func(t *testing.T) {
		asset, err := NewDepreciationAsset(ownerID, scheduleID, plantInput("Carpet", "10000", "10", MethodDiminishingValue))
		require.NoError(t, err)
		assert.Equal(t, PoolIndividual, asset.PoolType)
		assertDecimal(t, "2000", asset.YearlyDeduction)
		assertDecimal(t, "10000", asset.RemainingValue)
		assert.Equal(t, ownerID, asset.OwnerID)
		assert.Equal(t, scheduleID, asset.ScheduleID)
		assert.NotEqual(t, uuid.Nil, asset.ID)
	})

	t.Run("capital works forced to prime cost over forty years", func(t *testing.T) {
		asset, err := NewDepreciationAsset(ownerID, scheduleID, AssetInput{
			AssetName:     "Building structure",
			Category:      CategoryCapitalWorks,
			OriginalCost:  d("200000"),
			EffectiveLife: d("2.5"),
			Method:        MethodDiminishingValue,
		})
		require.NoError(t, err)
		assert.Equal(t, MethodPrimeCost, asset.Method)
		assertDecimal(t, "40", asset.EffectiveLife)
		assertDecimal(t, "5000", asset.YearlyDeduction)
		assert.Equal(t, PoolIndividual, asset.PoolType)
	})

	t.Run("capital works need no method or life", func(t *testing.T) {
		asset, err := NewDepreciationAsset(ownerID, scheduleID, AssetInput{
			AssetName:    "Driveway",
			Category:     CategoryCapitalWorks,
			OriginalCost: d("400"),
		})
		require.NoError(t, err)
		assert.Equal(t, PoolIndividual, asset.PoolType)
		assertDecimal(t, "10", asset.YearlyDeduction)
	})

	t.Run("category defaults to plant and equipment", func(t *testing.T) {
		input := plantInput("Blinds", "2000", "10", MethodPrimeCost)
		input.Category = ""
		asset, err := NewDepreciationAsset(ownerID, scheduleID, input)
		require.NoError(t, err)
		assert.Equal(t, CategoryPlantEquipment, asset.Category)
	})

	t.Run("immediate write-off deducts full cost", func(t *testing.T) {
		asset, err := NewDepreciationAsset(ownerID, scheduleID, plantInput("Smoke alarm", "250", "6", MethodDiminishingValue))
		require.NoError(t, err)
		assert.Equal(t, PoolImmediateWriteOff, asset.PoolType)
		assertDecimal(t, "250", asset.YearlyDeduction)
		assertDecimal(t, "250", asset.RemainingValue)

		asset.Claims = append(asset.Claims, claimFor(asset, 2025, "250"))
		asset.Recalculate()
		assert.True(t, asset.RemainingValue.IsZero())
	})

	t.Run("low value pool declines at pool rates", func(t *testing.T) {
		asset, err := NewDepreciationAsset(ownerID, scheduleID, plantInput("Dishwasher", "800", "5", MethodDiminishingValue))
		require.NoError(t, err)
		assert.Equal(t, PoolLowValue, asset.PoolType)
		assertDecimal(t, "320", asset.YearlyDeduction)

		asset.Claims = append(asset.Claims, claimFor(asset, 2025, "150"))
		asset.Recalculate()
		assertDecimal(t, "650", asset.RemainingValue)

		asset.Claims = append(asset.Claims, claimFor(asset, 2026, "243.75"))
		asset.Recalculate()
		assertDecimal(t, "406.25", asset.RemainingValue)
	})

	t.Run("rejects invalid input", func(t *testing.T) {
		tests := []struct {
			name     string
			input    AssetInput
			expected error
		}{
			{"empty name", plantInput("  ", "1000", "5", MethodPrimeCost), ErrInvalidAssetName},
			{"zero cost", plantInput("Oven", "0", "5", MethodPrimeCost), ErrInvalidCost},
			{"negative cost", plantInput("Oven", "-10", "5", MethodPrimeCost), ErrInvalidCost},
			{"zero life", plantInput("Oven", "1000", "0", MethodPrimeCost), ErrInvalidEffectiveLife},
			{"unknown method", plantInput("Oven", "1000", "5", Method("accelerated")), ErrInvalidMethod},
			{"unknown category", AssetInput{AssetName: "Oven", Category: "fixtures", OriginalCost: d("1"), EffectiveLife: d("1"), Method: MethodPrimeCost}, ErrInvalidCategory},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				_, err := NewDepreciationAsset(ownerID, scheduleID, tt.input)
				assert.ErrorIs(t, err, tt.expected)
			})
		}
	})
}

func TestDepreciationAsset_ClaimedYears(t *testing.T) {
	asset, err := NewDepreciationAsset(uuid.New(), uuid.New(), plantInput("Hot water system", "10000", "10", MethodDiminishingValue))
	require.NoError(t, err)

	asset.Claims = append(asset.Claims,
		claimFor(asset, 2025, "1000"),
		claimFor(asset, 2025, "1000"),
		claimFor(asset, 2026, "1600"),
	)
	asset.Recalculate()

	assert.Equal(t, []valueobject.FinancialYear{2025, 2026}, asset.ClaimedYears())
	assertDecimal(t, "3600", asset.TotalClaimed())
	assertDecimal(t, "6400", asset.RemainingValue)
}

func TestDepreciationAsset_ApplyPatch(t *testing.T) {
	t.Run("cost change reclassifies pool", func(t *testing.T) {
		asset, err := NewDepreciationAsset(uuid.New(), uuid.New(), plantInput("Air conditioner", "1500", "10", MethodDiminishingValue))
		require.NoError(t, err)
		require.Equal(t, PoolIndividual, asset.PoolType)

		cost := d("900")
		require.NoError(t, asset.ApplyPatch(AssetPatch{OriginalCost: &cost}))
		assert.Equal(t, PoolLowValue, asset.PoolType)
		assertDecimal(t, "180", asset.YearlyDeduction)
		assertDecimal(t, "900", asset.RemainingValue)
	})

	t.Run("method change recomputes deduction", func(t *testing.T) {
		asset, err := NewDepreciationAsset(uuid.New(), uuid.New(), plantInput("Air conditioner", "10000", "10", MethodDiminishingValue))
		require.NoError(t, err)

		method := MethodPrimeCost
		name := "Ducted air conditioner"
		require.NoError(t, asset.ApplyPatch(AssetPatch{Method: &method, AssetName: &name}))
		assertDecimal(t, "1000", asset.YearlyDeduction)
		assert.Equal(t, "Ducted air conditioner", asset.AssetName)
		assert.Equal(t, PoolIndividual, asset.PoolType)
	})

	t.Run("switching to capital works forces prime cost", func(t *testing.T) {
		asset, err := NewDepreciationAsset(uuid.New(), uuid.New(), plantInput("Pergola", "8000", "10", MethodDiminishingValue))
		require.NoError(t, err)

		category := CategoryCapitalWorks
		require.NoError(t, asset.ApplyPatch(AssetPatch{Category: &category}))
		assert.Equal(t, MethodPrimeCost, asset.Method)
		assertDecimal(t, "40", asset.EffectiveLife)
		assertDecimal(t, "200", asset.YearlyDeduction)
	})

	t.Run("invalid patch leaves asset unchanged", func(t *testing.T) {
		asset, err := NewDepreciationAsset(uuid.New(), uuid.New(), plantInput("Oven", "2000", "10", MethodPrimeCost))
		require.NoError(t, err)

		cost := d("-5")
		assert.ErrorIs(t, asset.ApplyPatch(AssetPatch{OriginalCost: &cost}), ErrInvalidCost)
		assertDecimal(t, "2000", asset.OriginalCost)
		assertDecimal(t, "200", asset.YearlyDeduction)
	})
}

func TestDepreciationAsset_MoveToLowValuePool(t *testing.T) {
	at := time.Date(2025, time.August, 1, 0, 0, 0, 0, time.UTC)

	t.Run("rejects written-down value over threshold", func(t *testing.T) {
		asset, err := NewDepreciationAsset(uuid.New(), uuid.New(), plantInput("Split system", "1500", "10", MethodDiminishingValue))
		require.NoError(t, err)

		err = asset.MoveToLowValuePool(at)
		assert.ErrorIs(t, err, ErrPoolThresholdExceeded)
		assert.Equal(t, PoolIndividual, asset.PoolType)
		assert.Nil(t, asset.OpeningWrittenDownValue)
	})

	t.Run("moves asset at written-down value", func(t *testing.T) {
		asset, err := NewDepreciationAsset(uuid.New(), uuid.New(), plantInput("Cooktop", "3200", "4", MethodDiminishingValue))
		require.NoError(t, err)
		asset.Claims = append(asset.Claims, claimFor(asset, 2024, "1600"), claimFor(asset, 2025, "800"))
		asset.Recalculate()
		require.True(t, d("800").Equal(asset.RemainingValue))

		require.NoError(t, asset.MoveToLowValuePool(at))
		assert.Equal(t, PoolLowValue, asset.PoolType)
		require.NotNil(t, asset.OpeningWrittenDownValue)
		assertDecimal(t, "800", *asset.OpeningWrittenDownValue)
		assert.Equal(t, at, *asset.PooledAt)
		assert.True(t, asset.IsMovedToPool())
		assertDecimal(t, "800", asset.RemainingValue)

		asset.Claims = append(asset.Claims, claimFor(asset, 2026, "300"))
		asset.Recalculate()
		assertDecimal(t, "500", asset.RemainingValue)
	})

	t.Run("claim in the year of the move is counted once", func(t *testing.T) {
		asset, err := NewDepreciationAsset(uuid.New(), uuid.New(), plantInput("Heat pump", "1500", "3", MethodPrimeCost))
		require.NoError(t, err)
		asset.Claims = append(asset.Claims, claimFor(asset, 2027, "500"))
		asset.Recalculate()
		require.True(t, d("1000").Equal(asset.RemainingValue))

		movedAt := time.Date(2026, time.October, 19, 0, 0, 0, 0, time.UTC)
		require.NoError(t, asset.MoveToLowValuePool(movedAt))
		assert.Equal(t, 1, asset.PooledClaimYears)
		assertDecimal(t, "1000", *asset.OpeningWrittenDownValue)
		assertDecimal(t, "1000", asset.RemainingValue)

		asset.Claims = append(asset.Claims, claimFor(asset, 2028, "375"))
		asset.Recalculate()
		assertDecimal(t, "625", asset.RemainingValue)
	})

	t.Run("cannot move twice", func(t *testing.T) {
		asset, err := NewDepreciationAsset(uuid.New(), uuid.New(), plantInput("Dryer", "900", "10", MethodDiminishingValue))
		require.NoError(t, err)
		assert.ErrorIs(t, asset.MoveToLowValuePool(at), ErrInvalidPoolTransition)
	})
}
