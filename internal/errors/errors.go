// Package errors provides error code definitions for the sync subsystem.
package errors

import "fmt"

// ErrorCode represents a unique, stable error code.
type ErrorCode string

const (
	// General errors
	ErrInternal   ErrorCode = "INTERNAL_ERROR"
	ErrInvalid    ErrorCode = "INVALID_INPUT"
	ErrNotFound   ErrorCode = "NOT_FOUND"
	ErrValidation ErrorCode = "VALIDATION_ERROR"

	// Storage errors
	ErrStorage   ErrorCode = "STORAGE_ERROR"
	ErrCorrupted ErrorCode = "STORAGE_CORRUPTED"

	// Mutation errors
	ErrUnknownEntity   ErrorCode = "UNKNOWN_ENTITY"
	ErrInvalidMutation ErrorCode = "INVALID_MUTATION"

	// Sync errors
	ErrSyncInProgress  ErrorCode = "SYNC_IN_PROGRESS"
	ErrTransport       ErrorCode = "TRANSPORT_ERROR"
	ErrBackendRejected ErrorCode = "BACKEND_REJECTED"
	ErrOffline         ErrorCode = "OFFLINE"
)

// AppError represents an application error with code and message.
type AppError struct {
	Code    ErrorCode
	Message string
	Err     error
}

// Error implements the error interface.
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error.
func (e *AppError) Unwrap() error {
	return e.Err
}

// New creates a new AppError.
func New(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// Wrap wraps an existing error with an error code.
func Wrap(code ErrorCode, message string, err error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Is checks if an error is of a specific code.
func Is(err error, code ErrorCode) bool {
	if appErr, ok := err.(*AppError); ok {
		return appErr.Code == code
	}
	return false
}
