package depreciation

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/propledger/backend/internal/domain/shared"
	"github.com/propledger/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// CapitalWork is a Division 43 construction item recorded outside any
// schedule. It is deducted at prime cost over 40 years from ClaimStartDate.
type CapitalWork struct {
	shared.OwnedAggregateRoot
	PropertyID       uuid.UUID
	Description      string
	ConstructionDate time.Time
	ConstructionCost decimal.Decimal
	ClaimStartDate   time.Time
}

// CapitalWorkInput carries caller-supplied capital works fields
type CapitalWorkInput struct {
	Description      string
	ConstructionDate time.Time
	ConstructionCost decimal.Decimal
	ClaimStartDate   time.Time
}

// NewCapitalWork validates and creates a capital works item
func NewCapitalWork(ownerID, propertyID uuid.UUID, input CapitalWorkInput) (*CapitalWork, error) {
	description := strings.TrimSpace(input.Description)
	if description == "" || len(description) > 500 {
		return nil, ErrInvalidCapitalWork
	}
	if !input.ConstructionCost.IsPositive() {
		return nil, ErrInvalidCapitalWork
	}
	if input.ConstructionDate.IsZero() || input.ClaimStartDate.IsZero() {
		return nil, ErrInvalidCapitalWork
	}
	if input.ClaimStartDate.Before(input.ConstructionDate) {
		return nil, ErrInvalidCapitalWork
	}

	cw := &CapitalWork{
		OwnedAggregateRoot: shared.NewOwnedAggregateRoot(ownerID),
		PropertyID:         propertyID,
		Description:        description,
		ConstructionDate:   input.ConstructionDate,
		ConstructionCost:   valueobject.RoundMoney(input.ConstructionCost),
		ClaimStartDate:     input.ClaimStartDate,
	}
	cw.AddDomainEvent(NewCapitalWorkAddedEvent(cw))
	return cw, nil
}

// AnnualDeduction is the Division 43 deduction for a full year
func (cw *CapitalWork) AnnualDeduction() decimal.Decimal {
	return YearlyDeduction(cw.ConstructionCost, CapitalWorksLife, MethodPrimeCost)
}

// StartYear is the first financial year the item can be claimed in
func (cw *CapitalWork) StartYear() valueobject.FinancialYear {
	return valueobject.FinancialYearOf(cw.ClaimStartDate)
}
