package property

import "github.com/propledger/backend/internal/domain/shared"

var (
	ErrPropertyNotFound      = shared.NewDomainError("NOT_FOUND", "Property not found")
	ErrSaleNotFound          = shared.NewDomainError("NOT_FOUND", "Sale not found")
	ErrPropertySold          = shared.NewDomainError("PROPERTY_SOLD", "Property has been sold and can no longer change")
	ErrPropertyAlreadySold   = shared.NewDomainError("PROPERTY_ALREADY_SOLD", "A sale has already been recorded for this property")
	ErrInvalidSalePrice      = shared.NewDomainError("INVALID_SALE_PRICE", "Sale price must be positive")
	ErrInvalidSaleCosts      = shared.NewDomainError("INVALID_SALE_COSTS", "Sale costs cannot be negative")
	ErrInvalidSettlementDate = shared.NewDomainError("INVALID_SETTLEMENT_DATE", "Settlement date cannot be before the purchase date")
)
