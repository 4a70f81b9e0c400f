package errors

import (
	"errors"
	"fmt"
	"time"
)

// ErrorType represents the type of error
type ErrorType string

const (
	ErrConflict     ErrorType = "CONFLICT"
	ErrNotFound     ErrorType = "NOT_FOUND"
	ErrInvalidInput ErrorType = "INVALID_INPUT"
	ErrTransport    ErrorType = "TRANSPORT"
	ErrInternal     ErrorType = "INTERNAL"
)

// AppError represents an application error
type AppError struct {
	Type      ErrorType
	Message   string
	Cause     error
	Timestamp time.Time
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// New creates a new AppError
func New(errType ErrorType, message string, cause error) *AppError {
	return &AppError{
		Type:      errType,
		Message:   message,
		Cause:     cause,
		Timestamp: time.Now(),
	}
}

func isType(err error, t ErrorType) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Type == t
	}
	return false
}

// IsConflict checks if the error signals that another run holds the lock
func IsConflict(err error) bool {
	return isType(err, ErrConflict)
}

// IsNotFound checks if the error is a not found error
func IsNotFound(err error) bool {
	return isType(err, ErrNotFound)
}

// IsInvalidInput checks if the error is an invalid input error
func IsInvalidInput(err error) bool {
	return isType(err, ErrInvalidInput)
}

// IsValidationError checks if the error is a validation error.
// Alias for IsInvalidInput since validation errors are invalid input.
func IsValidationError(err error) bool {
	return IsInvalidInput(err)
}

// IsTransport checks if the error is a network/transport-class error.
// Transport errors are fatal to a run once retries are exhausted.
func IsTransport(err error) bool {
	return isType(err, ErrTransport)
}

// NewConflictError creates a new conflict error
func NewConflictError(message string, err error) *AppError {
	return New(ErrConflict, message, err)
}

// NewNotFoundError creates a new not found error
func NewNotFoundError(message string, err error) *AppError {
	return New(ErrNotFound, message, err)
}

// NewValidationError creates a new validation error
func NewValidationError(message string, err error) *AppError {
	return New(ErrInvalidInput, message, err)
}

// NewTransportError creates a new transport error
func NewTransportError(message string, err error) *AppError {
	return New(ErrTransport, message, err)
}

// NewInternalError creates a new internal error
func NewInternalError(message string, err error) *AppError {
	return New(ErrInternal, message, err)
}

// SyncInProgressError is returned when an import is triggered while
// another process already holds the import lock
type SyncInProgressError struct{}

func (e *SyncInProgressError) Error() string {
	return "import already in progress"
}

// NewSyncInProgressError creates a new SyncInProgressError wrapped in a
// conflict AppError so IsConflict recognizes it
func NewSyncInProgressError() error {
	return NewConflictError("import already in progress", &SyncInProgressError{})
}
