// Package shared contains common domain types and errors used across all
// domain packages. This package has zero external dependencies.
package shared

import (
	"errors"
	"fmt"
)

// Base domain errors that can be used for error checking with errors.Is().
var (
	// Entity errors
	ErrNotFound      = errors.New("entity not found")
	ErrAlreadyExists = errors.New("entity already exists")

	// Validation errors
	ErrValidation    = errors.New("validation error")
	ErrInvalidID     = errors.New("invalid ID")
	ErrInvalidInput  = errors.New("invalid input")
	ErrEmptyValue    = errors.New("value cannot be empty")
	ErrInvalidFormat = errors.New("invalid format")

	// Authorization errors
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrSuspended    = errors.New("account suspended")

	// Storage errors
	ErrStorage     = errors.New("storage error")
	ErrLockTimeout = errors.New("lock acquisition timeout")

	// External service errors
	ErrExternalService = errors.New("external service error")
	ErrTimeout         = errors.New("operation timeout")
	ErrRateLimited     = errors.New("rate limited")
)

// DomainError represents a domain-specific error with context.
type DomainError struct {
	Domain  string // e.g., "enrollment", "catalog", "identity"
	Op      string // Operation that failed, e.g., "Add", "Rename"
	Kind    error  // Base error type for errors.Is() checking
	Message string // Human-readable message
	Err     error  // Underlying error (optional)
}

// Error implements the error interface.
func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s.%s: %s: %v", e.Domain, e.Op, e.Message, e.Err)
	}
	return fmt.Sprintf("%s.%s: %s", e.Domain, e.Op, e.Message)
}

// Unwrap returns the underlying error for errors.Unwrap().
func (e *DomainError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return e.Kind
}

// Is implements errors.Is() matching.
func (e *DomainError) Is(target error) bool {
	if e.Kind != nil && errors.Is(e.Kind, target) {
		return true
	}
	if e.Err != nil && errors.Is(e.Err, target) {
		return true
	}
	return false
}

// NewDomainError creates a new domain error.
func NewDomainError(domain, op string, kind error, message string) *DomainError {
	return &DomainError{
		Domain:  domain,
		Op:      op,
		Kind:    kind,
		Message: message,
	}
}

// WrapError wraps an existing error with domain context.
func WrapError(domain, op string, kind error, message string, err error) *DomainError {
	return &DomainError{
		Domain:  domain,
		Op:      op,
		Kind:    kind,
		Message: message,
		Err:     err,
	}
}

// Enrollment domain errors
var (
	ErrCodeNotFound   = NewDomainError("enrollment", "Find", ErrNotFound, "enrollment code not found")
	ErrCodeExists     = NewDomainError("enrollment", "Add", ErrAlreadyExists, "enrollment code already exists")
	ErrCodeTooShort   = NewDomainError("enrollment", "Validate", ErrValidation, "enrollment code too short")
	ErrCodeEmpty      = NewDomainError("enrollment", "Validate", ErrEmptyValue, "enrollment code is empty")
	ErrStudentBlocked = NewDomainError("enrollment", "Login", ErrSuspended, "enrollment code is suspended")
)

// Catalog domain errors
var (
	ErrSubjectNotFound = NewDomainError("catalog", "Find", ErrNotFound, "subject not found")
	ErrLectureNotFound = NewDomainError("catalog", "Find", ErrNotFound, "lecture not found")
	ErrFileNotFound    = NewDomainError("catalog", "Find", ErrNotFound, "file not found")
	ErrNameTaken       = NewDomainError("catalog", "Add", ErrAlreadyExists, "name already used at this level")
	ErrNameEmpty       = NewDomainError("catalog", "Validate", ErrEmptyValue, "name cannot be empty")
)

// Identity domain errors
var (
	ErrAdminNotFound   = NewDomainError("identity", "Find", ErrNotFound, "admin not found")
	ErrAdminExists     = NewDomainError("identity", "Add", ErrAlreadyExists, "admin already registered")
	ErrOwnerImmutable  = NewDomainError("identity", "Delete", ErrForbidden, "owner cannot be modified")
	ErrCapabilityMissing = NewDomainError("identity", "Authorize", ErrForbidden, "capability not granted")
)

// External service errors
var (
	ErrTelegramAPIFailed = NewDomainError("telegram", "Send", ErrExternalService, "Telegram API request failed")
)

// IsNotFound checks if the error is a "not found" error.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsAlreadyExists checks if the error is an "already exists" error.
func IsAlreadyExists(err error) bool {
	return errors.Is(err, ErrAlreadyExists)
}

// IsValidation checks if the error is a validation error.
func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation) ||
		errors.Is(err, ErrInvalidID) ||
		errors.Is(err, ErrInvalidInput) ||
		errors.Is(err, ErrEmptyValue) ||
		errors.Is(err, ErrInvalidFormat)
}

// IsPermission checks if the error is an authorization error.
func IsPermission(err error) bool {
	return errors.Is(err, ErrForbidden) || errors.Is(err, ErrUnauthorized)
}

// IsLockTimeout checks if the error is a lock acquisition timeout.
func IsLockTimeout(err error) bool {
	return errors.Is(err, ErrLockTimeout)
}

// IsExternalService checks if the error is from an external service.
func IsExternalService(err error) bool {
	return errors.Is(err, ErrExternalService) ||
		errors.Is(err, ErrTimeout) ||
		errors.Is(err, ErrRateLimited)
}
