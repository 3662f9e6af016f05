package domain

import (
	"errors"
	"fmt"
)

// ErrorCode classifies a domain failure so transport layers can map it to a
// status without string matching.
type ErrorCode string

const (
	CodeValidation  ErrorCode = "VALIDATION_ERROR"
	CodeNotFound    ErrorCode = "NOT_FOUND"
	CodeConflict    ErrorCode = "CONFLICT"
	CodeUnavailable ErrorCode = "UNAVAILABLE"

	CodeInvalidInterval     ErrorCode = "INVALID_INTERVAL"
	CodeCalendarUnavailable ErrorCode = "CALENDAR_UNAVAILABLE"
	CodeCouponNotFound      ErrorCode = "COUPON_NOT_FOUND"
	CodeCouponInactive      ErrorCode = "COUPON_INACTIVE"
	CodeCouponExpired       ErrorCode = "COUPON_EXPIRED"
	CodeCouponExhausted     ErrorCode = "COUPON_EXHAUSTED"
	CodeCouponNotApplicable ErrorCode = "COUPON_NOT_APPLICABLE"
	CodeMinOrderNotMet      ErrorCode = "MIN_ORDER_NOT_MET"
	CodeSequenceUnavailable ErrorCode = "SEQUENCE_UNAVAILABLE"
	CodeConfirmationStale   ErrorCode = "CONFIRMATION_STALE"
)

// Error is the typed failure returned by the engine. Every failure the caller
// can act on carries one of the codes above.
type Error struct {
	Code    ErrorCode
	Message string
	cause   error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap exposes the underlying cause, if any.
func (e *Error) Unwrap() error { return e.cause }

// New creates a typed domain error.
func New(code ErrorCode, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Newf creates a typed domain error with a formatted message.
func Newf(code ErrorCode, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches a domain code to an underlying error.
func Wrap(code ErrorCode, message string, cause error) *Error {
	return &Error{Code: code, Message: message, cause: cause}
}

// NewValidationError creates a generic input-validation failure.
func NewValidationError(message string) *Error {
	return New(CodeValidation, message)
}

// NewNotFoundError creates a not-found failure for the named entity.
func NewNotFoundError(entity, key string) *Error {
	return Newf(CodeNotFound, "%s %q not found", entity, key)
}

// NewConflictError creates a concurrent-modification failure.
func NewConflictError(message string) *Error {
	return New(CodeConflict, message)
}

// CodeOf returns the domain code carried by err, or "" if err is not a
// domain error.
func CodeOf(err error) ErrorCode {
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	return ""
}

// IsCode reports whether err carries the given domain code.
func IsCode(err error, code ErrorCode) bool {
	return CodeOf(err) == code
}
