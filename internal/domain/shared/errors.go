package shared

import (
	"errors"
	"fmt"
)

// Error codes of the ledger taxonomy. Clients branch on these, never on
// Message text.
const (
	CodeNotFound            = "NOT_FOUND"
	CodeConfiguration       = "CONFIGURATION_ERROR"
	CodeValidation          = "VALIDATION_ERROR"
	CodeOverAllocation      = "OVER_ALLOCATION"
	CodeInvalidState        = "INVALID_STATE"
	CodeStockAlreadyMoved   = "STOCK_ALREADY_MOVED"
	CodeConcurrencyConflict = "CONCURRENCY_CONFLICT"
	CodeDuplicateRequest    = "DUPLICATE_REQUEST"
)

// DomainError represents a domain-level error
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	cause   error
}

// Error implements the error interface
func (e *DomainError) Error() string {
	return e.Message
}

// Unwrap exposes the underlying cause, if any.
func (e *DomainError) Unwrap() error {
	return e.cause
}

// Is reports whether target is a DomainError with the same code, so that
// errors.Is(err, shared.ErrConfiguration) matches any configuration error.
func (e *DomainError) Is(target error) bool {
	var t *DomainError
	if !errors.As(target, &t) {
		return false
	}
	return t.Code == e.Code
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// WithCause returns a copy of the error carrying cause for logging and
// errors.Is/As chains. The cause never leaks into Message.
func (e *DomainError) WithCause(cause error) *DomainError {
	return &DomainError{
		Code:    e.Code,
		Message: e.Message,
		cause:   cause,
	}
}

// Common domain errors
var (
	ErrNotFound            = NewDomainError(CodeNotFound, "Resource not found")
	ErrConfiguration       = NewDomainError(CodeConfiguration, "Required configuration is missing")
	ErrValidation          = NewDomainError(CodeValidation, "Invalid input provided")
	ErrOverAllocation      = NewDomainError(CodeOverAllocation, "Allocations exceed the source amount")
	ErrInvalidState        = NewDomainError(CodeInvalidState, "Operation not allowed in current state")
	ErrStockAlreadyMoved   = NewDomainError(CodeStockAlreadyMoved, "Stock from this receipt has already moved")
	ErrConcurrencyConflict = NewDomainError(CodeConcurrencyConflict, "Resource was modified by another process")
	ErrDuplicateRequest    = NewDomainError(CodeDuplicateRequest, "Request with this idempotency key is still being processed")
)

// NewConfigurationError reports a missing sequence or configuration row.
func NewConfigurationError(format string, args ...any) *DomainError {
	return NewDomainError(CodeConfiguration, fmt.Sprintf(format, args...))
}

// NewValidationError reports malformed or missing input.
func NewValidationError(format string, args ...any) *DomainError {
	return NewDomainError(CodeValidation, fmt.Sprintf(format, args...))
}

// NewOverAllocationError reports explicit allocations above the source amount.
func NewOverAllocationError(format string, args ...any) *DomainError {
	return NewDomainError(CodeOverAllocation, fmt.Sprintf(format, args...))
}

// NewInvalidStateError reports an operation on an entity in the wrong lifecycle state.
func NewInvalidStateError(format string, args ...any) *DomainError {
	return NewDomainError(CodeInvalidState, fmt.Sprintf(format, args...))
}

// NewStockAlreadyMovedError reports a reversal blocked by batch movement.
func NewStockAlreadyMovedError(format string, args ...any) *DomainError {
	return NewDomainError(CodeStockAlreadyMoved, fmt.Sprintf(format, args...))
}

// NewConcurrencyConflict reports a unique-constraint collision on a generated code.
func NewConcurrencyConflict(format string, args ...any) *DomainError {
	return NewDomainError(CodeConcurrencyConflict, fmt.Sprintf(format, args...))
}

// NewDuplicateRequestError reports a repeated idempotency key whose first
// request has not finished. Retrying later returns the stored outcome.
func NewDuplicateRequestError(format string, args ...any) *DomainError {
	return NewDomainError(CodeDuplicateRequest, fmt.Sprintf(format, args...))
}

// IsConcurrencyConflict reports whether err is a retryable conflict.
func IsConcurrencyConflict(err error) bool {
	return errors.Is(err, ErrConcurrencyConflict)
}
