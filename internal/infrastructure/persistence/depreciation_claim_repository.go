package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/propledger/backend/internal/domain/depreciation"
	"github.com/propledger/backend/internal/domain/shared/valueobject"
	"github.com/propledger/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormDepreciationClaimRepository implements depreciation.ClaimRepository using GORM
type GormDepreciationClaimRepository struct {
	db *gorm.DB
}

// NewGormDepreciationClaimRepository creates a new GormDepreciationClaimRepository
func NewGormDepreciationClaimRepository(db *gorm.DB) *GormDepreciationClaimRepository {
	return &GormDepreciationClaimRepository{db: db}
}

// WithTx returns a new repository instance with the given transaction
func (r *GormDepreciationClaimRepository) WithTx(tx *gorm.DB) *GormDepreciationClaimRepository {
	return &GormDepreciationClaimRepository{db: tx}
}

// RecordClaims inserts claims and saves the affected assets
func (r *GormDepreciationClaimRepository) RecordClaims(ctx context.Context, claims []depreciation.Claim, affected []*depreciation.DepreciationAsset) error {
	if len(claims) == 0 {
		return nil
	}
	claimModels := make([]*models.DepreciationClaimModel, len(claims))
	for i := range claims {
		claimModels[i] = models.DepreciationClaimModelFromDomain(&claims[i])
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&claimModels).Error; err != nil {
			return err
		}
		return saveAssets(tx, affected)
	})
}

// RemoveClaims deletes every claim of a schedule for a financial year and
// saves the affected assets
func (r *GormDepreciationClaimRepository) RemoveClaims(
	ctx context.Context,
	ownerID, scheduleID uuid.UUID,
	fy valueobject.FinancialYear,
	affected []*depreciation.DepreciationAsset,
) (int64, error) {
	var deleted int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Where("owner_id = ? AND schedule_id = ? AND financial_year = ?", ownerID, scheduleID, fy.Int()).
			Delete(&models.DepreciationClaimModel{})
		if result.Error != nil {
			return result.Error
		}
		deleted = result.RowsAffected
		return saveAssets(tx, affected)
	})
	if err != nil {
		return 0, err
	}
	return deleted, nil
}

func saveAssets(tx *gorm.DB, assets []*depreciation.DepreciationAsset) error {
	for _, asset := range assets {
		if err := tx.Save(models.DepreciationAssetModelFromDomain(asset)).Error; err != nil {
			return err
		}
	}
	return nil
}
