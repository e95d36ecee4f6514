package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/propledger/backend/internal/domain/depreciation"
	"github.com/propledger/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// DepreciationScheduleModel is the persistence model for the DepreciationSchedule aggregate root.
type DepreciationScheduleModel struct {
	OwnedAggregateModel
	PropertyID    uuid.UUID                `gorm:"type:uuid;not null;index"`
	DocumentID    *uuid.UUID               `gorm:"type:uuid"`
	EffectiveDate time.Time                `gorm:"type:date;not null"`
	TotalValue    decimal.Decimal          `gorm:"type:decimal(18,2);not null"`
	Assets        []DepreciationAssetModel `gorm:"foreignKey:ScheduleID;references:ID"`
	Claims        []DepreciationClaimModel `gorm:"foreignKey:ScheduleID;references:ID"`
}

// TableName returns the table name for GORM
func (DepreciationScheduleModel) TableName() string {
	return "depreciation_schedules"
}

// ToDomain converts the persistence model to a domain DepreciationSchedule.
// Claims are attached to their asset; claims without an asset become pool claims.
func (m *DepreciationScheduleModel) ToDomain() *depreciation.DepreciationSchedule {
	s := &depreciation.DepreciationSchedule{
		PropertyID:    m.PropertyID,
		DocumentID:    m.DocumentID,
		EffectiveDate: m.EffectiveDate,
		TotalValue:    m.TotalValue,
		Assets:        make([]depreciation.DepreciationAsset, 0, len(m.Assets)),
		PoolClaims:    make([]depreciation.Claim, 0),
	}
	m.PopulateOwnedAggregateRoot(&s.OwnedAggregateRoot)

	index := make(map[uuid.UUID]int, len(m.Assets))
	for i := range m.Assets {
		index[m.Assets[i].ID] = i
		s.Assets = append(s.Assets, *m.Assets[i].ToDomain())
	}
	for i := range m.Claims {
		claim := m.Claims[i].ToDomain()
		if claim.AssetID == nil {
			s.PoolClaims = append(s.PoolClaims, claim)
			continue
		}
		if pos, ok := index[*claim.AssetID]; ok {
			s.Assets[pos].Claims = append(s.Assets[pos].Claims, claim)
		}
	}
	return s
}

// FromDomain populates the persistence model from a domain DepreciationSchedule.
// Claims are not copied; they are written through the claim repository.
func (m *DepreciationScheduleModel) FromDomain(s *depreciation.DepreciationSchedule) {
	m.FromDomainOwnedAggregateRoot(s.OwnedAggregateRoot)
	m.PropertyID = s.PropertyID
	m.DocumentID = s.DocumentID
	m.EffectiveDate = s.EffectiveDate
	m.TotalValue = s.TotalValue
	m.Assets = make([]DepreciationAssetModel, len(s.Assets))
	for i := range s.Assets {
		m.Assets[i] = *DepreciationAssetModelFromDomain(&s.Assets[i])
	}
}

// DepreciationScheduleModelFromDomain creates a new persistence model from a domain DepreciationSchedule.
func DepreciationScheduleModelFromDomain(s *depreciation.DepreciationSchedule) *DepreciationScheduleModel {
	m := &DepreciationScheduleModel{}
	m.FromDomain(s)
	return m
}

// DepreciationAssetModel is the persistence model for a schedule line item.
type DepreciationAssetModel struct {
	BaseModel
	OwnerID                 uuid.UUID             `gorm:"type:uuid;not null;index"`
	ScheduleID              uuid.UUID             `gorm:"type:uuid;not null;index"`
	AssetName               string                `gorm:"type:varchar(255);not null"`
	Category                depreciation.Category `gorm:"type:varchar(30);not null"`
	OriginalCost            decimal.Decimal       `gorm:"type:decimal(18,2);not null"`
	EffectiveLife           decimal.Decimal       `gorm:"type:decimal(6,2);not null"`
	Method                  depreciation.Method   `gorm:"type:varchar(30);not null"`
	PurchaseDate            *time.Time            `gorm:"type:date"`
	PoolType                depreciation.PoolType `gorm:"type:varchar(30);not null;index"`
	OpeningWrittenDownValue decimal.NullDecimal   `gorm:"type:decimal(18,2)"`
	PooledAt                *time.Time            `gorm:"type:date"`
	PooledClaimYears        int                   `gorm:"not null;default:0"`
	YearlyDeduction         decimal.Decimal       `gorm:"type:decimal(18,2);not null"`
	RemainingValue          decimal.Decimal       `gorm:"type:decimal(18,2);not null"`
}

// TableName returns the table name for GORM
func (DepreciationAssetModel) TableName() string {
	return "depreciation_assets"
}

// ToDomain converts the persistence model to a domain DepreciationAsset without claims.
func (m *DepreciationAssetModel) ToDomain() *depreciation.DepreciationAsset {
	a := &depreciation.DepreciationAsset{
		BaseEntity:       m.BaseModel.ToDomain(),
		OwnerID:          m.OwnerID,
		ScheduleID:       m.ScheduleID,
		AssetName:        m.AssetName,
		Category:         m.Category,
		OriginalCost:     m.OriginalCost,
		EffectiveLife:    m.EffectiveLife,
		Method:           m.Method,
		PurchaseDate:     m.PurchaseDate,
		PoolType:         m.PoolType,
		PooledAt:         m.PooledAt,
		PooledClaimYears: m.PooledClaimYears,
		YearlyDeduction:  m.YearlyDeduction,
		RemainingValue:   m.RemainingValue,
		Claims:           make([]depreciation.Claim, 0),
	}
	if m.OpeningWrittenDownValue.Valid {
		owdv := m.OpeningWrittenDownValue.Decimal
		a.OpeningWrittenDownValue = &owdv
	}
	return a
}

// FromDomain populates the persistence model from a domain DepreciationAsset.
func (m *DepreciationAssetModel) FromDomain(a *depreciation.DepreciationAsset) {
	m.FromDomainBaseEntity(a.BaseEntity)
	m.OwnerID = a.OwnerID
	m.ScheduleID = a.ScheduleID
	m.AssetName = a.AssetName
	m.Category = a.Category
	m.OriginalCost = a.OriginalCost
	m.EffectiveLife = a.EffectiveLife
	m.Method = a.Method
	m.PurchaseDate = a.PurchaseDate
	m.PoolType = a.PoolType
	m.OpeningWrittenDownValue = decimal.NullDecimal{}
	if a.OpeningWrittenDownValue != nil {
		m.OpeningWrittenDownValue = decimal.NewNullDecimal(*a.OpeningWrittenDownValue)
	}
	m.PooledAt = a.PooledAt
	m.PooledClaimYears = a.PooledClaimYears
	m.YearlyDeduction = a.YearlyDeduction
	m.RemainingValue = a.RemainingValue
}

// DepreciationAssetModelFromDomain creates a new persistence model from a domain DepreciationAsset.
func DepreciationAssetModelFromDomain(a *depreciation.DepreciationAsset) *DepreciationAssetModel {
	m := &DepreciationAssetModel{}
	m.FromDomain(a)
	return m
}

// DepreciationClaimModel is the persistence model for a claimed deduction.
// AssetID is NULL for claims against the low-value pool as a whole.
type DepreciationClaimModel struct {
	ID            uuid.UUID       `gorm:"type:uuid;primary_key"`
	OwnerID       uuid.UUID       `gorm:"type:uuid;not null;index"`
	ScheduleID    uuid.UUID       `gorm:"type:uuid;not null;index:idx_claim_schedule_fy,priority:1"`
	AssetID       *uuid.UUID      `gorm:"type:uuid;index"`
	FinancialYear int             `gorm:"not null;index:idx_claim_schedule_fy,priority:2"`
	Amount        decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	ClaimedAt     time.Time       `gorm:"not null"`
}

// TableName returns the table name for GORM
func (DepreciationClaimModel) TableName() string {
	return "depreciation_claims"
}

// ToDomain converts the persistence model to a domain Claim.
func (m *DepreciationClaimModel) ToDomain() depreciation.Claim {
	return depreciation.Claim{
		ID:            m.ID,
		OwnerID:       m.OwnerID,
		ScheduleID:    m.ScheduleID,
		AssetID:       m.AssetID,
		FinancialYear: valueobject.FinancialYear(m.FinancialYear),
		Amount:        m.Amount,
		ClaimedAt:     m.ClaimedAt,
	}
}

// DepreciationClaimModelFromDomain creates a new persistence model from a domain Claim.
func DepreciationClaimModelFromDomain(c *depreciation.Claim) *DepreciationClaimModel {
	return &DepreciationClaimModel{
		ID:            c.ID,
		OwnerID:       c.OwnerID,
		ScheduleID:    c.ScheduleID,
		AssetID:       c.AssetID,
		FinancialYear: c.FinancialYear.Int(),
		Amount:        c.Amount,
		ClaimedAt:     c.ClaimedAt,
	}
}

// CapitalWorkModel is the persistence model for the CapitalWork aggregate root.
type CapitalWorkModel struct {
	OwnedAggregateModel
	PropertyID       uuid.UUID       `gorm:"type:uuid;not null;index"`
	Description      string          `gorm:"type:varchar(500);not null"`
	ConstructionDate time.Time       `gorm:"type:date;not null"`
	ConstructionCost decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	ClaimStartDate   time.Time       `gorm:"type:date;not null"`
}

// TableName returns the table name for GORM
func (CapitalWorkModel) TableName() string {
	return "capital_works"
}

// ToDomain converts the persistence model to a domain CapitalWork.
func (m *CapitalWorkModel) ToDomain() *depreciation.CapitalWork {
	cw := &depreciation.CapitalWork{
		PropertyID:       m.PropertyID,
		Description:      m.Description,
		ConstructionDate: m.ConstructionDate,
		ConstructionCost: m.ConstructionCost,
		ClaimStartDate:   m.ClaimStartDate,
	}
	m.PopulateOwnedAggregateRoot(&cw.OwnedAggregateRoot)
	return cw
}

// FromDomain populates the persistence model from a domain CapitalWork.
func (m *CapitalWorkModel) FromDomain(cw *depreciation.CapitalWork) {
	m.FromDomainOwnedAggregateRoot(cw.OwnedAggregateRoot)
	m.PropertyID = cw.PropertyID
	m.Description = cw.Description
	m.ConstructionDate = cw.ConstructionDate
	m.ConstructionCost = cw.ConstructionCost
	m.ClaimStartDate = cw.ClaimStartDate
}

// CapitalWorkModelFromDomain creates a new persistence model from a domain CapitalWork.
func CapitalWorkModelFromDomain(cw *depreciation.CapitalWork) *CapitalWorkModel {
	m := &CapitalWorkModel{}
	m.FromDomain(cw)
	return m
}
