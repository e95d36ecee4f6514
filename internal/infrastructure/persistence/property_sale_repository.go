package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/propledger/backend/internal/domain/property"
	"github.com/propledger/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormPropertySaleRepository implements property.SaleRepository using GORM
type GormPropertySaleRepository struct {
	db *gorm.DB
}

// NewGormPropertySaleRepository creates a new GormPropertySaleRepository
func NewGormPropertySaleRepository(db *gorm.DB) *GormPropertySaleRepository {
	return &GormPropertySaleRepository{db: db}
}

// FindByPropertyForOwner returns ErrSaleNotFound when no sale was recorded
func (r *GormPropertySaleRepository) FindByPropertyForOwner(ctx context.Context, ownerID, propertyID uuid.UUID) (*property.Sale, error) {
	var model models.PropertySaleModel
	if err := r.db.WithContext(ctx).
		Where("owner_id = ? AND property_id = ?", ownerID, propertyID).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, property.ErrSaleNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAllForOwner lists an owner's sales
func (r *GormPropertySaleRepository) FindAllForOwner(ctx context.Context, ownerID uuid.UUID) ([]property.Sale, error) {
	var saleModels []models.PropertySaleModel
	if err := r.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("settlement_date ASC").
		Find(&saleModels).Error; err != nil {
		return nil, err
	}
	sales := make([]property.Sale, len(saleModels))
	for i := range saleModels {
		sales[i] = *saleModels[i].ToDomain()
	}
	return sales, nil
}
