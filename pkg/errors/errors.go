package errors

import (
	"errors"
	"fmt"
	"net/http"
	"runtime"
)

// ErrorType represents the type of error
type ErrorType string

const (
	// Value object and aggregate errors
	ErrorTypeInvalidArgument     ErrorType = "INVALID_ARGUMENT"
	ErrorTypeCurrencyMismatch    ErrorType = "CURRENCY_MISMATCH"
	ErrorTypeDomainRuleViolation ErrorType = "DOMAIN_RULE_VIOLATION"
	ErrorTypeDataIntegrity       ErrorType = "DATA_INTEGRITY"

	// Event (de)serialization errors
	ErrorTypeUnknownEventType ErrorType = "UNKNOWN_EVENT_TYPE"
	ErrorTypeDeserialization  ErrorType = "DESERIALIZATION"

	// Persistence errors
	ErrorTypeConcurrencyConflict ErrorType = "CONCURRENCY_CONFLICT"
	ErrorTypeStorage             ErrorType = "STORAGE"
	ErrorTypeProjection          ErrorType = "PROJECTION"

	// Application errors
	ErrorTypeValidation ErrorType = "VALIDATION"
	ErrorTypeNotFound   ErrorType = "NOT_FOUND"
	ErrorTypeInternal   ErrorType = "INTERNAL"
)

// AppError represents an application-specific error
type AppError struct {
	Type       ErrorType              `json:"type"`
	Message    string                 `json:"message"`
	Code       string                 `json:"code,omitempty"`
	Details    map[string]interface{} `json:"details,omitempty"`
	Cause      error                  `json:"-"`
	StackTrace string                 `json:"-"`
	HTTPStatus int                    `json:"-"`
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap returns the underlying error
func (e *AppError) Unwrap() error {
	return e.Cause
}

// WithCode adds an error code
func (e *AppError) WithCode(code string) *AppError {
	e.Code = code
	return e
}

// WithDetails adds error details
func (e *AppError) WithDetails(details map[string]interface{}) *AppError {
	e.Details = details
	return e
}

// WithCause wraps an underlying error
func (e *AppError) WithCause(err error) *AppError {
	e.Cause = err
	return e
}

// captureStackTrace captures the current stack trace
func captureStackTrace() string {
	const depth = 32
	var pcs [depth]uintptr
	n := runtime.Callers(3, pcs[:])
	frames := runtime.CallersFrames(pcs[:n])

	stack := ""
	for {
		frame, more := frames.Next()
		stack += fmt.Sprintf("%s:%d %s\n", frame.File, frame.Line, frame.Function)
		if !more {
			break
		}
	}
	return stack
}

func newError(errType ErrorType, status int, message string) *AppError {
	return &AppError{
		Type:       errType,
		Message:    message,
		HTTPStatus: status,
		StackTrace: captureStackTrace(),
	}
}

// Constructor functions for common error types

// NewInvalidArgumentError creates an error for a malformed value
func NewInvalidArgumentError(message string) *AppError {
	return newError(ErrorTypeInvalidArgument, http.StatusBadRequest, message)
}

// NewCurrencyMismatchError creates an error for arithmetic across currencies
func NewCurrencyMismatchError(left, right string) *AppError {
	return newError(ErrorTypeCurrencyMismatch, http.StatusUnprocessableEntity,
		fmt.Sprintf("currency mismatch: %s vs %s", left, right)).
		WithDetails(map[string]interface{}{"left": left, "right": right})
}

// NewDomainRuleViolationError creates an error for a broken business rule
func NewDomainRuleViolationError(message string) *AppError {
	return newError(ErrorTypeDomainRuleViolation, http.StatusUnprocessableEntity, message)
}

// NewDataIntegrityError creates an error for a corrupt or inconsistent event stream
func NewDataIntegrityError(message string) *AppError {
	return newError(ErrorTypeDataIntegrity, http.StatusInternalServerError, message)
}

// NewUnknownEventTypeError creates an error for an unregistered event type
func NewUnknownEventTypeError(eventType string) *AppError {
	return newError(ErrorTypeUnknownEventType, http.StatusInternalServerError,
		fmt.Sprintf("unknown event type '%s'", eventType)).
		WithDetails(map[string]interface{}{"eventType": eventType})
}

// NewDeserializationError creates an error for a payload that cannot be decoded
func NewDeserializationError(message string) *AppError {
	return newError(ErrorTypeDeserialization, http.StatusInternalServerError, message)
}

// NewConcurrencyConflictError creates an error for a failed expected-version check
func NewConcurrencyConflictError(aggregateID string, expected, actual int) *AppError {
	return newError(ErrorTypeConcurrencyConflict, http.StatusConflict,
		fmt.Sprintf("aggregate %s: expected version %d, found %d", aggregateID, expected, actual)).
		WithDetails(map[string]interface{}{
			"aggregateID":     aggregateID,
			"expectedVersion": expected,
			"actualVersion":   actual,
		})
}

// NewStorageError creates an error for a failed persistence operation
func NewStorageError(operation string, err error) *AppError {
	return newError(ErrorTypeStorage, http.StatusServiceUnavailable,
		fmt.Sprintf("storage operation '%s' failed", operation)).WithCause(err)
}

// NewProjectionFailedError creates an error for a read model that could not be updated
func NewProjectionFailedError(message string, err error) *AppError {
	return newError(ErrorTypeProjection, http.StatusInternalServerError, message).WithCause(err)
}

// NewValidationError creates a validation error
func NewValidationError(message string) *AppError {
	return newError(ErrorTypeValidation, http.StatusBadRequest, message)
}

// NewNotFoundError creates a not found error
func NewNotFoundError(resource string) *AppError {
	return newError(ErrorTypeNotFound, http.StatusNotFound, fmt.Sprintf("%s not found", resource))
}

// NewInternalError creates an internal error
func NewInternalError(message string) *AppError {
	return newError(ErrorTypeInternal, http.StatusInternalServerError, message)
}

// Helper functions

// IsAppError checks if an error is an AppError
func IsAppError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr)
}

// GetAppError extracts the outermost AppError from an error chain
func GetAppError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return nil
}

// IsType checks if any AppError in the chain is of a specific type
func IsType(err error, errType ErrorType) bool {
	for err != nil {
		var appErr *AppError
		if !errors.As(err, &appErr) {
			return false
		}
		if appErr.Type == errType {
			return true
		}
		err = appErr.Cause
	}
	return false
}

// IsInvalidArgument checks if an error is an invalid argument error
func IsInvalidArgument(err error) bool {
	return IsType(err, ErrorTypeInvalidArgument)
}

// IsCurrencyMismatch checks if an error is a currency mismatch error
func IsCurrencyMismatch(err error) bool {
	return IsType(err, ErrorTypeCurrencyMismatch)
}

// IsDomainRuleViolation checks if an error is a business rule violation
func IsDomainRuleViolation(err error) bool {
	return IsType(err, ErrorTypeDomainRuleViolation)
}

// IsDataIntegrity checks if an error is a data integrity error
func IsDataIntegrity(err error) bool {
	return IsType(err, ErrorTypeDataIntegrity)
}

// IsUnknownEventType checks if an error is an unknown event type error
func IsUnknownEventType(err error) bool {
	return IsType(err, ErrorTypeUnknownEventType)
}

// IsDeserialization checks if an error is a deserialization error
func IsDeserialization(err error) bool {
	return IsType(err, ErrorTypeDeserialization)
}

// IsConcurrencyConflict checks if an error is an optimistic concurrency conflict
func IsConcurrencyConflict(err error) bool {
	return IsType(err, ErrorTypeConcurrencyConflict)
}

// IsStorage checks if an error is a storage failure
func IsStorage(err error) bool {
	return IsType(err, ErrorTypeStorage)
}

// IsProjection checks if an error is a projection failure
func IsProjection(err error) bool {
	return IsType(err, ErrorTypeProjection)
}

// IsNotFound checks if an error is a not found error
func IsNotFound(err error) bool {
	return IsType(err, ErrorTypeNotFound)
}

// IsValidation checks if an error is a validation error
func IsValidation(err error) bool {
	return IsType(err, ErrorTypeValidation)
}

// IsRetryable reports whether the caller may reload and try again
func IsRetryable(err error) bool {
	return IsConcurrencyConflict(err)
}

// Wrap wraps an error with additional context
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	if IsAppError(err) {
		return fmt.Errorf("%s: %w", message, err)
	}
	return NewInternalError(message).WithCause(err)
}

// Wrapf wraps an error with formatted message
func Wrapf(err error, format string, args ...interface{}) error {
	return Wrap(err, fmt.Sprintf(format, args...))
}
