package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/propledger/backend/internal/domain/property"
	"github.com/propledger/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormTransactionRepository implements property.TransactionRepository using GORM
type GormTransactionRepository struct {
	db *gorm.DB
}

// NewGormTransactionRepository creates a new GormTransactionRepository
func NewGormTransactionRepository(db *gorm.DB) *GormTransactionRepository {
	return &GormTransactionRepository{db: db}
}

// FindByPropertyForOwner lists a property's transactions in the given categories.
// No categories means every category.
func (r *GormTransactionRepository) FindByPropertyForOwner(
	ctx context.Context,
	ownerID, propertyID uuid.UUID,
	categories ...property.TransactionCategory,
) ([]property.Transaction, error) {
	query := r.db.WithContext(ctx).
		Where("owner_id = ? AND property_id = ?", ownerID, propertyID)
	return r.find(applyCategories(query, categories))
}

// FindAllForOwner lists all of an owner's transactions in the given categories
func (r *GormTransactionRepository) FindAllForOwner(ctx context.Context, ownerID uuid.UUID, categories ...property.TransactionCategory) ([]property.Transaction, error) {
	query := r.db.WithContext(ctx).Where("owner_id = ?", ownerID)
	return r.find(applyCategories(query, categories))
}

func (r *GormTransactionRepository) find(query *gorm.DB) ([]property.Transaction, error) {
	var txModels []models.TransactionModel
	if err := query.Order("date ASC").Find(&txModels).Error; err != nil {
		return nil, err
	}
	transactions := make([]property.Transaction, len(txModels))
	for i := range txModels {
		transactions[i] = *txModels[i].ToDomain()
	}
	return transactions, nil
}

func applyCategories(query *gorm.DB, categories []property.TransactionCategory) *gorm.DB {
	if len(categories) == 0 {
		return query
	}
	names := make([]string, len(categories))
	for i, c := range categories {
		names[i] = c.String()
	}
	return query.Where("category IN ?", names)
}
