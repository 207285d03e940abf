package shared

import "fmt"

// DomainError represents a domain-level error
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error implements the error interface
func (e *DomainError) Error() string {
	return e.Message
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// NewDomainErrorf creates a new domain error with a formatted message
func NewDomainErrorf(code, format string, args ...any) *DomainError {
	return &DomainError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// Common domain errors
var (
	ErrNotFound            = NewDomainError("NOT_FOUND", "Resource not found")
	ErrAlreadyExists       = NewDomainError("ALREADY_EXISTS", "Resource already exists")
	ErrInvalidInput        = NewDomainError("INVALID_INPUT", "Invalid input provided")
	ErrConcurrencyConflict = NewDomainError("CONCURRENCY_CONFLICT", "Resource was modified by another process")
	ErrInvalidState        = NewDomainError("INVALID_STATE", "Operation not allowed in current state")
	ErrInsufficientStock   = NewDomainError("INSUFFICIENT_STOCK", "Insufficient stock available")
	ErrLockTimeout         = NewDomainError("LOCK_TIMEOUT", "Timed out waiting for a row lock; retry the request")
	ErrUnbalancedJournal   = NewDomainError("UNBALANCED_JOURNAL", "Journal debits and credits do not balance")
	ErrConfiguration       = NewDomainError("CONFIGURATION", "Required table or column is not available")
)

// NewInsufficientStockError names the product that failed the availability check.
// The whole operation that triggered it must be rolled back.
func NewInsufficientStockError(productName string) *DomainError {
	return NewDomainErrorf("INSUFFICIENT_STOCK", "Insufficient stock for %s", productName)
}

// IsRetryable reports whether a caller may simply resubmit the request.
// Lock-wait timeouts and optimistic-concurrency conflicts qualify;
// validation and stock failures require an amended request.
func IsRetryable(err error) bool {
	de, ok := err.(*DomainError)
	if !ok {
		return false
	}
	return de.Code == "LOCK_TIMEOUT" || de.Code == "CONCURRENCY_CONFLICT"
}
