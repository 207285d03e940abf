package dto

import "net/http"

// Transport-level error codes
const (
	// ErrCodeInternal is used for unexpected server failures
	ErrCodeInternal = "INTERNAL_ERROR"
	// ErrCodeBadRequest is used for malformed requests
	ErrCodeBadRequest = "BAD_REQUEST"
	// ErrCodeInvalidJSON is used when body parsing fails
	ErrCodeInvalidJSON = "INVALID_JSON"
	// ErrCodeMissingTenant is used when the tenant header is absent
	ErrCodeMissingTenant = "MISSING_TENANT"
	// ErrCodeDuplicateRequest is used when an idempotency key replays
	ErrCodeDuplicateRequest = "DUPLICATE_REQUEST"
	// ErrCodeNotFound mirrors the domain not-found code
	ErrCodeNotFound = "NOT_FOUND"
)

// errorCodeHTTPStatus maps domain error codes onto HTTP statuses. Validation
// failures on the request shape are 400; requests that are well formed but
// break a business rule are 422; contention outcomes are 409.
var errorCodeHTTPStatus = map[string]int{
	ErrCodeInternal:         http.StatusInternalServerError,
	ErrCodeBadRequest:       http.StatusBadRequest,
	ErrCodeInvalidJSON:      http.StatusBadRequest,
	ErrCodeMissingTenant:    http.StatusBadRequest,
	ErrCodeDuplicateRequest: http.StatusConflict,

	"NOT_FOUND":      http.StatusNotFound,
	"ALREADY_EXISTS": http.StatusConflict,

	// Contention outcomes; both are safe to retry
	"LOCK_TIMEOUT":         http.StatusConflict,
	"CONCURRENCY_CONFLICT": http.StatusConflict,

	// Input shape problems
	"INVALID_INPUT":          http.StatusBadRequest,
	"INVALID_INVOICE_NUMBER": http.StatusBadRequest,
	"INVALID_REFERENCE":      http.StatusBadRequest,
	"INVALID_QUANTITY":       http.StatusBadRequest,
	"INVALID_PRICE":          http.StatusBadRequest,
	"INVALID_PRODUCT":        http.StatusBadRequest,
	"INVALID_AMOUNT":         http.StatusBadRequest,
	"INVALID_ACCOUNT":        http.StatusBadRequest,
	"INVALID_ACCOUNT_TYPE":   http.StatusBadRequest,
	"INVALID_METHOD":         http.StatusBadRequest,
	"INVALID_NAME":           http.StatusBadRequest,
	"INVALID_SKU":            http.StatusBadRequest,
	"INVALID_CODE":           http.StatusBadRequest,
	"INVALID_CATEGORY":       http.StatusBadRequest,
	"INVALID_DIRECTION":      http.StatusBadRequest,
	"INVALID_ENTRY":          http.StatusBadRequest,
	"EMPTY_CART":             http.StatusBadRequest,
	"EMPTY_TRANSFER":         http.StatusBadRequest,

	// Business rule violations
	"INSUFFICIENT_STOCK": http.StatusUnprocessableEntity,
	"ZERO_SUBTOTAL":      http.StatusUnprocessableEntity,
	"SAME_BRANCH":        http.StatusUnprocessableEntity,
	"SAME_ACCOUNT":       http.StatusUnprocessableEntity,
	"NOT_STOCK_TRACKED":  http.StatusUnprocessableEntity,
	"UNBALANCED_JOURNAL": http.StatusUnprocessableEntity,
	"SUBTOTAL_MISMATCH":  http.StatusUnprocessableEntity,
	"TOTAL_MISMATCH":     http.StatusUnprocessableEntity,
	"INVALID_STATE":      http.StatusUnprocessableEntity,

	"CONFIGURATION": http.StatusInternalServerError,
}

// GetHTTPStatus returns the HTTP status for an error code. Unknown codes are
// treated as internal failures.
func GetHTTPStatus(code string) int {
	if status, ok := errorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}
