package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/propledger/backend/internal/domain/depreciation"
	"github.com/propledger/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormCapitalWorkRepository implements depreciation.CapitalWorkRepository using GORM
type GormCapitalWorkRepository struct {
	db *gorm.DB
}

// NewGormCapitalWorkRepository creates a new GormCapitalWorkRepository
func NewGormCapitalWorkRepository(db *gorm.DB) *GormCapitalWorkRepository {
	return &GormCapitalWorkRepository{db: db}
}

// FindByPropertyForOwner lists a property's capital works, oldest first
func (r *GormCapitalWorkRepository) FindByPropertyForOwner(ctx context.Context, ownerID, propertyID uuid.UUID) ([]depreciation.CapitalWork, error) {
	var workModels []models.CapitalWorkModel
	if err := r.db.WithContext(ctx).
		Where("owner_id = ? AND property_id = ?", ownerID, propertyID).
		Order("claim_start_date ASC, created_at ASC").
		Find(&workModels).Error; err != nil {
		return nil, err
	}
	works := make([]depreciation.CapitalWork, len(workModels))
	for i := range workModels {
		works[i] = *workModels[i].ToDomain()
	}
	return works, nil
}

// Save creates or updates a capital works item
func (r *GormCapitalWorkRepository) Save(ctx context.Context, cw *depreciation.CapitalWork) error {
	return r.db.WithContext(ctx).Save(models.CapitalWorkModelFromDomain(cw)).Error
}
