// Package errors provides error types and handling for usagemig.
// It defines application errors with stable codes so callers can decide
// whether a failure is fatal, retryable, or just worth counting.
package errors

import (
	"errors"
	"fmt"
)

// AppError represents an application error with a stable error code.
type AppError struct {
	// Code is an error code string for programmatic handling
	Code string
	// Message is a user-friendly error message
	Message string
	// Cause is the underlying error (for error wrapping)
	Cause error
}

// Error implements the error interface.
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

// Unwrap returns the underlying error for error unwrapping.
func (e *AppError) Unwrap() error {
	return e.Cause
}

// Is allows errors.Is to work with AppError.
func (e *AppError) Is(target error) bool {
	if t, ok := target.(*AppError); ok {
		return e.Code != "" && e.Code == t.Code
	}
	return false
}

// Predefined error codes.
const (
	ErrCodeInvalidConfig    = "INVALID_CONFIG"
	ErrCodeUnauthorized     = "UNAUTHORIZED"
	ErrCodeNotFound         = "NOT_FOUND"
	ErrCodeDatabaseError    = "DATABASE_ERROR"
	ErrCodeResponseTooLarge = "RESPONSE_TOO_LARGE"
)

// New creates an AppError with an arbitrary code.
func New(code, message string, cause error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// Convenience constructors for common errors

// ErrInvalidConfig creates a configuration error.
func ErrInvalidConfig(message string, cause error) *AppError {
	return New(ErrCodeInvalidConfig, message, cause)
}

// ErrUnauthorized creates an unauthorized error (bad credentials or endpoint).
func ErrUnauthorized(message string, cause error) *AppError {
	return New(ErrCodeUnauthorized, message, cause)
}

// ErrNotFound creates a not found error (missing table, index, or document).
func ErrNotFound(message string, cause error) *AppError {
	return New(ErrCodeNotFound, message, cause)
}

// ErrDatabaseError creates a store error for failures with no more
// specific classification.
func ErrDatabaseError(message string, cause error) *AppError {
	return New(ErrCodeDatabaseError, message, cause)
}

// ErrResponseTooLarge creates a transport-limit error. Discovery treats
// this class as recoverable by shrinking its page size.
func ErrResponseTooLarge(message string, cause error) *AppError {
	return New(ErrCodeResponseTooLarge, message, cause)
}

// GetErrorCode extracts the error code from an error.
// Returns empty string if the error is not an AppError.
func GetErrorCode(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return ""
}

// GetErrorMessage extracts a user-friendly message from an error.
func GetErrorMessage(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	return err.Error()
}

// GetErrorDetails extracts detailed error information including the underlying cause.
// Returns the underlying error message if available, otherwise returns the main error message.
func GetErrorDetails(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		if appErr.Cause != nil {
			return appErr.Cause.Error()
		}
		return appErr.Message
	}
	return err.Error()
}

// IsNotFound reports whether the error carries the NOT_FOUND code.
func IsNotFound(err error) bool {
	return GetErrorCode(err) == ErrCodeNotFound
}

// IsUnauthorized reports whether the error carries the UNAUTHORIZED code.
func IsUnauthorized(err error) bool {
	return GetErrorCode(err) == ErrCodeUnauthorized
}

// IsResponseTooLarge reports whether the error carries the
// RESPONSE_TOO_LARGE code.
func IsResponseTooLarge(err error) bool {
	return GetErrorCode(err) == ErrCodeResponseTooLarge
}
