package dto

import (
	"net/http"

	"github.com/erp/vendorledger/internal/domain/shared"
)

// Transport-level error codes. Domain codes pass through unchanged.
const (
	ErrCodeBadRequest   = "BAD_REQUEST"
	ErrCodeUnauthorized = "UNAUTHORIZED"
	ErrCodeTooLarge     = "REQUEST_TOO_LARGE"
	ErrCodeInternal     = "INTERNAL_ERROR"
	ErrCodeValidation   = shared.CodeValidation
)

var statusByCode = map[string]int{
	shared.CodeNotFound:            http.StatusNotFound,
	shared.CodeValidation:          http.StatusBadRequest,
	shared.CodeOverAllocation:      http.StatusUnprocessableEntity,
	shared.CodeInvalidState:        http.StatusUnprocessableEntity,
	shared.CodeStockAlreadyMoved:   http.StatusConflict,
	shared.CodeConcurrencyConflict: http.StatusConflict,
	shared.CodeDuplicateRequest:    http.StatusConflict,
	shared.CodeConfiguration:       http.StatusInternalServerError,

	ErrCodeBadRequest:   http.StatusBadRequest,
	ErrCodeUnauthorized: http.StatusUnauthorized,
	ErrCodeTooLarge:     http.StatusRequestEntityTooLarge,
	ErrCodeInternal:     http.StatusInternalServerError,
}

// StatusFor returns the HTTP status for an error code, 500 if unknown.
func StatusFor(code string) int {
	if status, ok := statusByCode[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}
