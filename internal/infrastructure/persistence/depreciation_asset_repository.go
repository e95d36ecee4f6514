package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/propledger/backend/internal/domain/depreciation"
	"github.com/propledger/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormDepreciationAssetRepository implements depreciation.AssetRepository using GORM
type GormDepreciationAssetRepository struct {
	db *gorm.DB
}

// NewGormDepreciationAssetRepository creates a new GormDepreciationAssetRepository
func NewGormDepreciationAssetRepository(db *gorm.DB) *GormDepreciationAssetRepository {
	return &GormDepreciationAssetRepository{db: db}
}

// WithTx returns a new repository instance with the given transaction
func (r *GormDepreciationAssetRepository) WithTx(tx *gorm.DB) *GormDepreciationAssetRepository {
	return &GormDepreciationAssetRepository{db: tx}
}

// Save creates or updates an asset's own columns
func (r *GormDepreciationAssetRepository) Save(ctx context.Context, asset *depreciation.DepreciationAsset) error {
	return r.db.WithContext(ctx).Save(models.DepreciationAssetModelFromDomain(asset)).Error
}

// DeleteForOwner removes an asset and its claims
func (r *GormDepreciationAssetRepository) DeleteForOwner(ctx context.Context, ownerID, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("owner_id = ? AND asset_id = ?", ownerID, id).
			Delete(&models.DepreciationClaimModel{}).Error; err != nil {
			return err
		}
		result := tx.Where("owner_id = ? AND id = ?", ownerID, id).
			Delete(&models.DepreciationAssetModel{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return depreciation.ErrAssetNotFound
		}
		return nil
	})
}
