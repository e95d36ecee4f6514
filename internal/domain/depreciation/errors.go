package depreciation

import "github.com/propledger/backend/internal/domain/shared"

// Input validation errors
var (
	ErrInvalidCost            = shared.NewDomainError("INVALID_COST", "Original cost must be positive")
	ErrInvalidEffectiveLife   = shared.NewDomainError("INVALID_EFFECTIVE_LIFE", "Effective life must be positive")
	ErrInvalidMethod          = shared.NewDomainError("INVALID_METHOD", "Depreciation method must be diminishing_value or prime_cost")
	ErrInvalidCategory        = shared.NewDomainError("INVALID_CATEGORY", "Category must be plant_equipment or capital_works")
	ErrInvalidAssetName       = shared.NewDomainError("INVALID_ASSET_NAME", "Asset name is required and cannot exceed 255 characters")
	ErrInvalidClaimAmount     = shared.NewDomainError("INVALID_CLAIM_AMOUNT", "Claim amounts must be positive")
	ErrInvalidClaimAsset      = shared.NewDomainError("INVALID_CLAIM_ASSET", "Claimed asset does not belong to the schedule")
	ErrInvalidFinancialYear   = shared.NewDomainError("INVALID_FINANCIAL_YEAR", "Financial year is out of range")
	ErrInvalidProjectionRange = shared.NewDomainError("INVALID_PROJECTION_RANGE", "Projection range must be ascending and at most 60 years")
	ErrInvalidCapitalWork     = shared.NewDomainError("INVALID_CAPITAL_WORK", "Capital works need a description, a positive cost and a claim start on or after construction")
)

// Business rule errors
var (
	ErrPoolThresholdExceeded = shared.NewDomainError("POOL_THRESHOLD_EXCEEDED", "Only assets with a written-down value of $1,000 or less can join the low-value pool")
	ErrInvalidPoolTransition = shared.NewDomainError("INVALID_POOL_TRANSITION", "Only individually depreciated plant & equipment can be moved to the low-value pool")
	ErrAssetNotFound         = shared.NewDomainError("NOT_FOUND", "Depreciation asset not found")
)
