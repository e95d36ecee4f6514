package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/propledger/backend/internal/domain/depreciation"
	"github.com/propledger/backend/internal/domain/shared"
	"github.com/propledger/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormDepreciationScheduleRepository implements depreciation.ScheduleRepository using GORM
type GormDepreciationScheduleRepository struct {
	db *gorm.DB
}

// NewGormDepreciationScheduleRepository creates a new GormDepreciationScheduleRepository
func NewGormDepreciationScheduleRepository(db *gorm.DB) *GormDepreciationScheduleRepository {
	return &GormDepreciationScheduleRepository{db: db}
}

// WithTx returns a new repository instance with the given transaction
func (r *GormDepreciationScheduleRepository) WithTx(tx *gorm.DB) *GormDepreciationScheduleRepository {
	return &GormDepreciationScheduleRepository{db: tx}
}

// withChildren preloads assets and claims in a stable order
func (r *GormDepreciationScheduleRepository) withChildren(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Preload("Assets", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC, id ASC")
		}).
		Preload("Claims", func(db *gorm.DB) *gorm.DB {
			return db.Order("financial_year ASC, claimed_at ASC")
		})
}

// FindByIDForOwner loads a schedule with assets and claims
func (r *GormDepreciationScheduleRepository) FindByIDForOwner(ctx context.Context, ownerID, id uuid.UUID) (*depreciation.DepreciationSchedule, error) {
	var model models.DepreciationScheduleModel
	if err := r.withChildren(ctx).
		Where("owner_id = ? AND id = ?", ownerID, id).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByAssetForOwner loads the schedule containing an asset
func (r *GormDepreciationScheduleRepository) FindByAssetForOwner(ctx context.Context, ownerID, assetID uuid.UUID) (*depreciation.DepreciationSchedule, error) {
	var asset models.DepreciationAssetModel
	if err := r.db.WithContext(ctx).
		Select("id", "schedule_id").
		Where("owner_id = ? AND id = ?", ownerID, assetID).
		First(&asset).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, depreciation.ErrAssetNotFound
		}
		return nil, err
	}
	return r.FindByIDForOwner(ctx, ownerID, asset.ScheduleID)
}

// FindByPropertyForOwner loads every schedule of a property, oldest first
func (r *GormDepreciationScheduleRepository) FindByPropertyForOwner(ctx context.Context, ownerID, propertyID uuid.UUID) ([]depreciation.DepreciationSchedule, error) {
	var scheduleModels []models.DepreciationScheduleModel
	if err := r.withChildren(ctx).
		Where("owner_id = ? AND property_id = ?", ownerID, propertyID).
		Order("effective_date ASC, created_at ASC").
		Find(&scheduleModels).Error; err != nil {
		return nil, err
	}
	schedules := make([]depreciation.DepreciationSchedule, len(scheduleModels))
	for i := range scheduleModels {
		schedules[i] = *scheduleModels[i].ToDomain()
	}
	return schedules, nil
}

// Create inserts a new schedule and its initial assets atomically
func (r *GormDepreciationScheduleRepository) Create(ctx context.Context, schedule *depreciation.DepreciationSchedule) error {
	model := models.DepreciationScheduleModelFromDomain(schedule)
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(model).Error; err != nil {
			return err
		}
		if len(model.Assets) == 0 {
			return nil
		}
		return tx.Create(&model.Assets).Error
	})
}
