package property

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TransactionCategory classifies a ledger transaction
type TransactionCategory string

// Acquisition categories form part of the CGT cost base
const (
	CategoryStampDuty       TransactionCategory = "stamp_duty"
	CategoryConveyancing    TransactionCategory = "conveyancing"
	CategoryBuyersAgentFees TransactionCategory = "buyers_agent_fees"
	CategoryInitialRepairs  TransactionCategory = "initial_repairs"
)

// AcquisitionCategories returns the categories included in the cost base
func AcquisitionCategories() []TransactionCategory {
	return []TransactionCategory{
		CategoryStampDuty,
		CategoryConveyancing,
		CategoryBuyersAgentFees,
		CategoryInitialRepairs,
	}
}

// IsAcquisitionCost returns true for categories that form part of the cost base
func (c TransactionCategory) IsAcquisitionCost() bool {
	switch c {
	case CategoryStampDuty, CategoryConveyancing, CategoryBuyersAgentFees, CategoryInitialRepairs:
		return true
	}
	return false
}

// String returns the string representation of TransactionCategory
func (c TransactionCategory) String() string {
	return string(c)
}

// Transaction is a ledger entry against a property, recorded by the
// transactions service. It is read-only here.
type Transaction struct {
	ID          uuid.UUID
	OwnerID     uuid.UUID
	PropertyID  uuid.UUID
	Category    TransactionCategory
	Amount      decimal.Decimal
	Date        time.Time
	Description string
}
