package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/propledger/backend/internal/domain/property"
	"github.com/shopspring/decimal"
)

// PropertyModel is the persistence model for the Property aggregate root.
type PropertyModel struct {
	OwnedAggregateModel
	Address       string          `gorm:"type:varchar(500);not null"`
	PurchasePrice decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	PurchaseDate  time.Time       `gorm:"type:date;not null"`
	Status        property.Status `gorm:"type:varchar(20);not null;default:'active';index"`
	SoldAt        *time.Time      `gorm:"type:date"`
}

// TableName returns the table name for GORM
func (PropertyModel) TableName() string {
	return "properties"
}

// ToDomain converts the persistence model to a domain Property.
func (m *PropertyModel) ToDomain() *property.Property {
	p := &property.Property{
		Address:       m.Address,
		PurchasePrice: m.PurchasePrice,
		PurchaseDate:  m.PurchaseDate,
		Status:        m.Status,
		SoldAt:        m.SoldAt,
	}
	m.PopulateOwnedAggregateRoot(&p.OwnedAggregateRoot)
	return p
}

// FromDomain populates the persistence model from a domain Property.
func (m *PropertyModel) FromDomain(p *property.Property) {
	m.FromDomainOwnedAggregateRoot(p.OwnedAggregateRoot)
	m.Address = p.Address
	m.PurchasePrice = p.PurchasePrice
	m.PurchaseDate = p.PurchaseDate
	m.Status = p.Status
	m.SoldAt = p.SoldAt
}

// PropertyModelFromDomain creates a new persistence model from a domain Property.
func PropertyModelFromDomain(p *property.Property) *PropertyModel {
	m := &PropertyModel{}
	m.FromDomain(p)
	return m
}

// TransactionModel is the persistence model for a property ledger transaction.
type TransactionModel struct {
	BaseModel
	OwnerID     uuid.UUID                    `gorm:"type:uuid;not null;index"`
	PropertyID  uuid.UUID                    `gorm:"type:uuid;not null;index"`
	Category    property.TransactionCategory `gorm:"type:varchar(50);not null;index"`
	Amount      decimal.Decimal              `gorm:"type:decimal(18,2);not null"`
	Date        time.Time                    `gorm:"type:date;not null"`
	Description string                       `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (TransactionModel) TableName() string {
	return "transactions"
}

// ToDomain converts the persistence model to a domain Transaction.
func (m *TransactionModel) ToDomain() *property.Transaction {
	return &property.Transaction{
		ID:          m.ID,
		OwnerID:     m.OwnerID,
		PropertyID:  m.PropertyID,
		Category:    m.Category,
		Amount:      m.Amount,
		Date:        m.Date,
		Description: m.Description,
	}
}

// TransactionModelFromDomain creates a new persistence model from a domain Transaction.
func TransactionModelFromDomain(t *property.Transaction) *TransactionModel {
	now := time.Now()
	return &TransactionModel{
		BaseModel: BaseModel{
			ID:        t.ID,
			CreatedAt: now,
			UpdatedAt: now,
		},
		OwnerID:     t.OwnerID,
		PropertyID:  t.PropertyID,
		Category:    t.Category,
		Amount:      t.Amount,
		Date:        t.Date,
		Description: t.Description,
	}
}

// PropertySaleModel is the persistence model for a recorded sale.
// A property has at most one sale.
type PropertySaleModel struct {
	ID                   uuid.UUID       `gorm:"type:uuid;primary_key"`
	OwnerID              uuid.UUID       `gorm:"type:uuid;not null;index"`
	PropertyID           uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex"`
	SalePrice            decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	AgentCommission      decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	LegalFees            decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	MarketingCosts       decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	OtherSaleCosts       decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	CostBase             decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	CapitalGain          decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	DiscountedGain       decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	HeldOverTwelveMonths bool            `gorm:"not null"`
	SettlementDate       time.Time       `gorm:"type:date;not null"`
	CreatedAt            time.Time       `gorm:"not null"`
}

// TableName returns the table name for GORM
func (PropertySaleModel) TableName() string {
	return "property_sales"
}

// ToDomain converts the persistence model to a domain Sale.
func (m *PropertySaleModel) ToDomain() *property.Sale {
	return &property.Sale{
		ID:         m.ID,
		OwnerID:    m.OwnerID,
		PropertyID: m.PropertyID,
		SalePrice:  m.SalePrice,
		SaleCosts: property.SaleCosts{
			AgentCommission: m.AgentCommission,
			LegalFees:       m.LegalFees,
			MarketingCosts:  m.MarketingCosts,
			Other:           m.OtherSaleCosts,
		},
		CostBase:             m.CostBase,
		CapitalGain:          m.CapitalGain,
		DiscountedGain:       m.DiscountedGain,
		HeldOverTwelveMonths: m.HeldOverTwelveMonths,
		SettlementDate:       m.SettlementDate,
		CreatedAt:            m.CreatedAt,
	}
}

// PropertySaleModelFromDomain creates a new persistence model from a domain Sale.
func PropertySaleModelFromDomain(s *property.Sale) *PropertySaleModel {
	return &PropertySaleModel{
		ID:                   s.ID,
		OwnerID:              s.OwnerID,
		PropertyID:           s.PropertyID,
		SalePrice:            s.SalePrice,
		AgentCommission:      s.SaleCosts.AgentCommission,
		LegalFees:            s.SaleCosts.LegalFees,
		MarketingCosts:       s.SaleCosts.MarketingCosts,
		OtherSaleCosts:       s.SaleCosts.Other,
		CostBase:             s.CostBase,
		CapitalGain:          s.CapitalGain,
		DiscountedGain:       s.DiscountedGain,
		HeldOverTwelveMonths: s.HeldOverTwelveMonths,
		SettlementDate:       s.SettlementDate,
		CreatedAt:            s.CreatedAt,
	}
}
