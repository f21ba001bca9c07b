package dto

import "net/http"

// Error code constants organized by category
// Format: ERR_<CATEGORY>_<DESCRIPTION>

// General error codes
const (
	// ErrCodeUnknown is used when the error type is unknown
	ErrCodeUnknown = "ERR_UNKNOWN"
	// ErrCodeInternal is used for internal server errors
	ErrCodeInternal = "ERR_INTERNAL"
)

// Validation error codes
const (
	// ErrCodeValidation is the base code for validation errors
	ErrCodeValidation = "ERR_VALIDATION"
	// ErrCodeValidationRequired is used when a required field is missing
	ErrCodeValidationRequired = "ERR_VALIDATION_REQUIRED"
	// ErrCodeValidationFormat is used when a field has invalid format
	ErrCodeValidationFormat = "ERR_VALIDATION_FORMAT"
	// ErrCodeValidationRange is used when a value is out of range
	ErrCodeValidationRange = "ERR_VALIDATION_RANGE"
)

// Authentication error codes
const (
	// ErrCodeUnauthorized is used when tenant identification is missing/invalid
	ErrCodeUnauthorized = "ERR_UNAUTHORIZED"
	// ErrCodeForbidden is used when the caller lacks permission
	ErrCodeForbidden = "ERR_FORBIDDEN"
)

// Resource error codes
const (
	// ErrCodeNotFound is used when a resource is not found
	ErrCodeNotFound = "ERR_NOT_FOUND"
	// ErrCodeAlreadyExists is used when trying to create a duplicate resource
	ErrCodeAlreadyExists = "ERR_ALREADY_EXISTS"
	// ErrCodeConflict is used for general resource conflicts
	ErrCodeConflict = "ERR_CONFLICT"
	// ErrCodeConcurrencyConflict is used when optimistic locking fails
	ErrCodeConcurrencyConflict = "ERR_CONCURRENCY_CONFLICT"
)

// Business rule error codes
const (
	// ErrCodeInvalidState is used when an operation is invalid for current state
	ErrCodeInvalidState = "ERR_INVALID_STATE"
	// ErrCodeBusinessRule is used for generic business rule violations
	ErrCodeBusinessRule = "ERR_BUSINESS_RULE"
)

// Input error codes
const (
	// ErrCodeBadRequest is used for malformed requests
	ErrCodeBadRequest = "ERR_BAD_REQUEST"
	// ErrCodeInvalidInput is used for invalid input data
	ErrCodeInvalidInput = "ERR_INVALID_INPUT"
)

// Billing error codes surfaced to API clients. These keep their domain
// spelling so a client can branch on the exact rule that fired.
const (
	// ErrCodeDuplicateInvoice is used when a job already carries an active invoice
	ErrCodeDuplicateInvoice = "DUPLICATE_INVOICE"
	// ErrCodeEmptyChargeSet is used when invoicing a job with no charges
	ErrCodeEmptyChargeSet = "EMPTY_CHARGE_SET"
	// ErrCodeInvalidPaymentAmount is used for non-positive payment amounts
	ErrCodeInvalidPaymentAmount = "INVALID_PAYMENT_AMOUNT"
	// ErrCodePaymentExceedsBalance is used when a payment overshoots the outstanding balance
	ErrCodePaymentExceedsBalance = "PAYMENT_EXCEEDS_BALANCE"
	// ErrCodeInvoiceAlreadyPaid is used when paying a settled invoice
	ErrCodeInvoiceAlreadyPaid = "INVOICE_ALREADY_PAID"
	// ErrCodeInvoiceVoid is used when operating on a voided invoice
	ErrCodeInvoiceVoid = "INVOICE_VOID"
	// ErrCodeCannotVoidPaidInvoice is used when voiding an invoice with payments
	ErrCodeCannotVoidPaidInvoice = "CANNOT_VOID_PAID_INVOICE"
	// ErrCodeLedgerInconsistent is used when statement totals violate an invariant
	ErrCodeLedgerInconsistent = "LEDGER_INCONSISTENT"
	// ErrCodeDuplicateJobNumber is used when a job number is already taken
	ErrCodeDuplicateJobNumber = "DUPLICATE_JOB_NUMBER"
	// ErrCodeDuplicateFeeName is used when a fee name is already taken
	ErrCodeDuplicateFeeName = "DUPLICATE_FEE_NAME"
	// ErrCodeDuplicateCustomerCode is used when a customer code is already taken
	ErrCodeDuplicateCustomerCode = "DUPLICATE_CUSTOMER_CODE"
	// ErrCodeInactiveCustomer is used when billing against a deactivated customer
	ErrCodeInactiveCustomer = "INACTIVE_CUSTOMER"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	// General errors
	ErrCodeUnknown:  http.StatusInternalServerError,
	ErrCodeInternal: http.StatusInternalServerError,

	// Validation errors -> 400 Bad Request
	ErrCodeValidation:         http.StatusBadRequest,
	ErrCodeValidationRequired: http.StatusBadRequest,
	ErrCodeValidationFormat:   http.StatusBadRequest,
	ErrCodeValidationRange:    http.StatusBadRequest,

	// Auth errors
	ErrCodeUnauthorized: http.StatusUnauthorized,
	ErrCodeForbidden:    http.StatusForbidden,

	// Resource errors
	ErrCodeNotFound:            http.StatusNotFound,
	ErrCodeAlreadyExists:       http.StatusConflict,
	ErrCodeConflict:            http.StatusConflict,
	ErrCodeConcurrencyConflict: http.StatusConflict,

	// Business rule errors -> 422 Unprocessable Entity
	ErrCodeInvalidState: http.StatusUnprocessableEntity,
	ErrCodeBusinessRule: http.StatusUnprocessableEntity,

	// Input errors -> 400 Bad Request
	ErrCodeBadRequest:   http.StatusBadRequest,
	ErrCodeInvalidInput: http.StatusBadRequest,

	// Billing conflicts -> 409 Conflict
	ErrCodeDuplicateInvoice:      http.StatusConflict,
	ErrCodeDuplicateJobNumber:    http.StatusConflict,
	ErrCodeDuplicateFeeName:      http.StatusConflict,
	ErrCodeDuplicateCustomerCode: http.StatusConflict,

	// Billing rule violations -> 422 Unprocessable Entity
	ErrCodeEmptyChargeSet:        http.StatusUnprocessableEntity,
	ErrCodePaymentExceedsBalance: http.StatusUnprocessableEntity,
	ErrCodeInvoiceAlreadyPaid:    http.StatusUnprocessableEntity,
	ErrCodeInvoiceVoid:           http.StatusUnprocessableEntity,
	ErrCodeCannotVoidPaidInvoice: http.StatusUnprocessableEntity,
	ErrCodeInactiveCustomer:      http.StatusUnprocessableEntity,
	ErrCodeInvalidPaymentAmount:  http.StatusBadRequest,

	// A statement that fails its own arithmetic is a server-side defect
	ErrCodeLedgerInconsistent: http.StatusInternalServerError,
}

// GetHTTPStatus returns the HTTP status code for an error code
// Returns 500 Internal Server Error if the error code is not found
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// DomainErrorCodeMapping maps domain error codes to the standardized
// API format. Billing codes pass through unchanged.
var DomainErrorCodeMapping = map[string]string{
	"NOT_FOUND":            ErrCodeNotFound,
	"ALREADY_EXISTS":       ErrCodeAlreadyExists,
	"INVALID_INPUT":        ErrCodeInvalidInput,
	"INVALID_STATE":        ErrCodeInvalidState,
	"UNAUTHORIZED":         ErrCodeUnauthorized,
	"FORBIDDEN":            ErrCodeForbidden,
	"CONCURRENCY_CONFLICT": ErrCodeConcurrencyConflict,
	"BAD_REQUEST":          ErrCodeBadRequest,
	"INTERNAL_ERROR":       ErrCodeInternal,
}

// NormalizeErrorCode converts a domain error code to the standardized format
// If the code has no mapping, returns it as-is
func NormalizeErrorCode(code string) string {
	if newCode, ok := DomainErrorCodeMapping[code]; ok {
		return newCode
	}
	return code
}
