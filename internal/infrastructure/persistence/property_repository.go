package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/propledger/backend/internal/domain/property"
	"github.com/propledger/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormPropertyRepository implements property.PropertyRepository using GORM
type GormPropertyRepository struct {
	db *gorm.DB
}

// NewGormPropertyRepository creates a new GormPropertyRepository
func NewGormPropertyRepository(db *gorm.DB) *GormPropertyRepository {
	return &GormPropertyRepository{db: db}
}

// WithTx returns a new repository instance with the given transaction
func (r *GormPropertyRepository) WithTx(tx *gorm.DB) *GormPropertyRepository {
	return &GormPropertyRepository{db: tx}
}

// FindByIDForOwner returns ErrPropertyNotFound for missing or foreign properties
func (r *GormPropertyRepository) FindByIDForOwner(ctx context.Context, ownerID, id uuid.UUID) (*property.Property, error) {
	var model models.PropertyModel
	if err := r.db.WithContext(ctx).
		Where("owner_id = ? AND id = ?", ownerID, id).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, property.ErrPropertyNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAllForOwner lists an owner's properties, active and sold
func (r *GormPropertyRepository) FindAllForOwner(ctx context.Context, ownerID uuid.UUID) ([]property.Property, error) {
	var propertyModels []models.PropertyModel
	if err := r.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("purchase_date ASC, created_at ASC").
		Find(&propertyModels).Error; err != nil {
		return nil, err
	}
	properties := make([]property.Property, len(propertyModels))
	for i := range propertyModels {
		properties[i] = *propertyModels[i].ToDomain()
	}
	return properties, nil
}

// RecordSale stores the sale and the property's sold status in one transaction.
// The status update only matches an active property, so a concurrent second
// sale fails with ErrPropertyAlreadySold.
func (r *GormPropertyRepository) RecordSale(ctx context.Context, p *property.Property, sale *property.Sale) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&models.PropertyModel{}).
			Where("owner_id = ? AND id = ? AND status = ?", p.OwnerID, p.ID, property.StatusActive).
			Updates(map[string]any{
				"status":     p.Status,
				"sold_at":    p.SoldAt,
				"version":    p.Version,
				"updated_at": time.Now(),
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return property.ErrPropertyAlreadySold
		}
		return tx.Create(models.PropertySaleModelFromDomain(sale)).Error
	})
}
