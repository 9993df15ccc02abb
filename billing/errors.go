package billing

import "fmt"

// ErrorCode is a domain error code used across the billing engine.
type ErrorCode string

const (
	// ErrorInvalidInput indicates a request or mutation payload failed validation.
	ErrorInvalidInput ErrorCode = "1001"
	// ErrorCalculationFailed indicates the remote calculator call failed.
	// Transient: prior totals stay on display and the next edit retries.
	ErrorCalculationFailed ErrorCode = "2001"
	// ErrorResolutionFailed indicates a product or price lookup failed.
	// Recovered by falling back to the catalog default price.
	ErrorResolutionFailed ErrorCode = "2002"
	// ErrorValidationFailed indicates a pre-submit check failed. Blocks
	// submission; Field names the offending input.
	ErrorValidationFailed ErrorCode = "2003"
	// ErrorSubmissionFailed indicates the transaction create/update call
	// failed. The session stays editable for retry.
	ErrorSubmissionFailed ErrorCode = "2004"
	// ErrorStaleResponse indicates a calculator response no longer matches
	// the state it was computed from and was discarded.
	ErrorStaleResponse ErrorCode = "2005"
	// ErrorSessionClosed indicates an operation was attempted on a closed
	// editing session.
	ErrorSessionClosed ErrorCode = "2006"
	// ErrorNotFound indicates a referenced row, product, or session does not exist.
	ErrorNotFound ErrorCode = "2007"
)

// DomainError represents a structured billing domain error.
type DomainError struct {
	Code    ErrorCode
	Field   string
	Message string
	Err     error
}

// Error returns the formatted domain error string.
func (e DomainError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}

	return fmt.Sprintf("%s: %s (%s)", e.Code, e.Message, e.Field)
}

// Unwrap exposes the underlying cause, if any.
func (e DomainError) Unwrap() error {
	return e.Err
}

// NewDomainError creates a domain error with code, field, and message.
func NewDomainError(code ErrorCode, field, message string) error {
	return DomainError{Code: code, Field: field, Message: message}
}

// WrapDomainError creates a domain error that wraps an underlying cause.
func WrapDomainError(code ErrorCode, field, message string, err error) error {
	return DomainError{Code: code, Field: field, Message: message, Err: err}
}
