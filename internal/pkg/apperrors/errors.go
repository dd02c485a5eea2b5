package apperrors

import (
	"errors"
	"fmt"
)

// Common errors
var (
	// Resource errors
	ErrResourceNotFound = errors.New("resource not found")
	ErrDuplicateKey     = errors.New("duplicate key")

	// Authentication errors
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAccountDisabled    = errors.New("account is disabled")

	// Validation errors
	ErrValidationFailed = errors.New("validation failed")
	ErrPasswordMismatch = fmt.Errorf("%w: passwords do not match", ErrValidationFailed)
	ErrInvalidDate      = errors.New("invalid date")
)

// Account errors
var (
	ErrDuplicateUsername = fmt.Errorf("%w: username already exists", ErrDuplicateKey)
	ErrDuplicateEmail    = fmt.Errorf("%w: email already exists", ErrDuplicateKey)
)

// Student Errors
var (
	ErrStudentNotFound     = fmt.Errorf("%w: student", ErrResourceNotFound)
	ErrDuplicateEnrollment = fmt.Errorf("%w: enrollment code already exists", ErrDuplicateKey)
)

// Pet Errors
var (
	ErrPetNotFound   = fmt.Errorf("%w: pet", ErrResourceNotFound)
	ErrOwnerNotFound = errors.New("owner not found")
)

// NewValidationError creates a validation error carrying a user-facing message
func NewValidationError(message string) error {
	return &CustomError{
		Err:     ErrValidationFailed,
		Message: message,
	}
}

// Is returns whether target matches any of the errors in errList
func Is(err, target error, errList ...error) bool {
	if errors.Is(err, target) {
		return true
	}

	for _, e := range errList {
		if errors.Is(err, e) {
			return true
		}
	}

	return false
}

// CustomError represents application-specific errors with additional context
type CustomError struct {
	Err     error
	Message string
	Field   string
}

// Error implements error interface
func (e *CustomError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return "unknown error"
}

// Unwrap implements errors.Unwrap interface
func (e *CustomError) Unwrap() error {
	return e.Err
}

// NewCustomError creates a CustomError with underlying error
func NewCustomError(err error, message string) *CustomError {
	return &CustomError{
		Err:     err,
		Message: message,
	}
}

// WithField records which form field caused the error
func (e *CustomError) WithField(field string) *CustomError {
	e.Field = field
	return e
}

// UserMessage returns the message of the outermost CustomError in the chain, if any
func UserMessage(err error) (string, bool) {
	var ce *CustomError
	if errors.As(err, &ce) && ce.Message != "" {
		return ce.Message, true
	}
	return "", false
}
