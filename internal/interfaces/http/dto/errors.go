package dto

import (
	"net/http"
	"strings"
)

// Error codes returned in the error envelope. Domain errors carry their own
// codes, which pass through unchanged.
const (
	ErrCodeInternal        = "INTERNAL_ERROR"
	ErrCodeValidation      = "VALIDATION_ERROR"
	ErrCodeInvalidInput    = "INVALID_INPUT"
	ErrCodeInvalidJSON     = "INVALID_JSON"
	ErrCodeUnauthorized    = "UNAUTHORIZED"
	ErrCodeForbidden       = "FORBIDDEN"
	ErrCodeNotFound        = "NOT_FOUND"
	ErrCodeAlreadyExists   = "ALREADY_EXISTS"
	ErrCodeInvalidState    = "INVALID_STATE"
	ErrCodeRateLimited     = "RATE_LIMIT_EXCEEDED"
	ErrCodePayloadTooLarge = "PAYLOAD_TOO_LARGE"
)

// Ledger rule violations. The request was well formed but the ledger cannot
// accept it in its current state.
const (
	ErrCodePoolThresholdExceeded = "POOL_THRESHOLD_EXCEEDED"
	ErrCodeInvalidPoolTransition = "INVALID_POOL_TRANSITION"
	ErrCodePropertySold          = "PROPERTY_SOLD"
	ErrCodePropertyAlreadySold   = "PROPERTY_ALREADY_SOLD"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes. Unlisted codes
// with an INVALID_ prefix are 400, anything else is 500.
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeInternal:        http.StatusInternalServerError,
	ErrCodeValidation:      http.StatusBadRequest,
	ErrCodeInvalidInput:    http.StatusBadRequest,
	ErrCodeInvalidJSON:     http.StatusBadRequest,
	ErrCodeUnauthorized:    http.StatusUnauthorized,
	ErrCodeForbidden:       http.StatusForbidden,
	ErrCodeNotFound:        http.StatusNotFound,
	ErrCodeAlreadyExists:   http.StatusConflict,
	ErrCodeRateLimited:     http.StatusTooManyRequests,
	ErrCodePayloadTooLarge: http.StatusRequestEntityTooLarge,

	ErrCodeInvalidState:          http.StatusUnprocessableEntity,
	ErrCodePoolThresholdExceeded: http.StatusUnprocessableEntity,
	ErrCodeInvalidPoolTransition: http.StatusUnprocessableEntity,
	ErrCodePropertySold:          http.StatusUnprocessableEntity,
	ErrCodePropertyAlreadySold:   http.StatusUnprocessableEntity,
}

// GetHTTPStatus returns the HTTP status for an error code
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	if strings.HasPrefix(code, "INVALID_") {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
