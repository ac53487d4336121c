package domain

import (
	"errors"
	"fmt"
)

// ErrorCode represents a semantic classification shared across transport layers.
type ErrorCode string

const (
	ErrCodeNotFound     ErrorCode = "NOT_FOUND"
	ErrCodeInvalid      ErrorCode = "INVALID"
	ErrCodeConflict     ErrorCode = "CONFLICT"
	ErrCodeForbidden    ErrorCode = "FORBIDDEN"
	ErrCodeUnauthorized ErrorCode = "UNAUTHORIZED"
	ErrCodeRateLimited  ErrorCode = "RATE_LIMITED"
	ErrCodeInternal     ErrorCode = "INTERNAL"
)

// Error represents a domain-level error.
type Error struct {
	Code    ErrorCode
	Message string
	// Field names the offending input for validation errors.
	Field string
	Err   error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// NewError builds a domain error.
func NewError(code ErrorCode, message string) *Error {
	return &Error{Code: code, Message: message}
}

// WrapError wraps an existing error with a domain classification.
func WrapError(code ErrorCode, message string, err error) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// NewValidationError reports a malformed input field.
func NewValidationError(field, message string) *Error {
	return &Error{
		Code:    ErrCodeInvalid,
		Message: fmt.Sprintf("%s: %s", field, message),
		Field:   field,
	}
}

// Common domain errors.
var (
	ErrUserNotFound        = NewError(ErrCodeNotFound, "User not found")
	ErrTaskNotFound        = NewError(ErrCodeNotFound, "Task not found")
	ErrUserExists          = NewError(ErrCodeConflict, "User already exists")
	ErrInvalidCredentials  = NewError(ErrCodeUnauthorized, "Invalid credentials")
	ErrMissingToken        = NewError(ErrCodeUnauthorized, "Access Token Required")
	ErrInvalidToken        = NewError(ErrCodeForbidden, "Invalid or Expired Token")
	ErrInvalidRefreshToken = NewError(ErrCodeForbidden, "Invalid Refresh Token")
	ErrTooManyAttempts     = NewError(ErrCodeRateLimited, "Too many login attempts")
	ErrInvalidPayload      = NewError(ErrCodeInvalid, "Invalid request body")
)

// IsDomainError helps checking error codes.
func IsDomainError(err error, code ErrorCode) bool {
	var dErr *Error
	if errors.As(err, &dErr) {
		return dErr.Code == code
	}
	return false
}
