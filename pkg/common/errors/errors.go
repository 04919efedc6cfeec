package errors

import (
	"errors"
	"fmt"
)

// Common error types used across the gopipe library

var (
	// ErrClosed indicates that an operation was attempted on a closed resource
	ErrClosed = errors.New("resource is closed")

	// ErrTimeout indicates that an operation timed out
	ErrTimeout = errors.New("operation timed out")

	// ErrInvalidConfiguration indicates invalid configuration parameters
	ErrInvalidConfiguration = errors.New("invalid configuration")

	// ErrPeerClosed indicates that the remote end closed the channel
	ErrPeerClosed = errors.New("peer closed the pipe")

	// ErrPipeClosing indicates that the pipe is being torn down
	ErrPipeClosing = errors.New("pipe is closing")

	// ErrOperationCanceled indicates that an outstanding operation was canceled
	ErrOperationCanceled = errors.New("operation canceled")

	// ErrOperationNotFound indicates that a cancellation found no outstanding
	// operation, usually because it already completed
	ErrOperationNotFound = errors.New("operation not found")

	// ErrWriteInProgress indicates that a handle was asked to start a second
	// write while one is still outstanding
	ErrWriteInProgress = errors.New("write already in progress")
)

// IsBenignClose returns true if the error represents an orderly end of the
// channel's life rather than a reportable failure: the peer closed its end,
// the pipe is being torn down, or the operation was canceled by this writer.
func IsBenignClose(err error) bool {
	return errors.Is(err, ErrPeerClosed) ||
		errors.Is(err, ErrPipeClosing) ||
		errors.Is(err, ErrOperationCanceled)
}

// IsTemporary returns true if the error indicates a temporary condition
func IsTemporary(err error) bool {
	return errors.Is(err, ErrTimeout)
}

// ValidationError describes an invalid configuration value. It wraps
// ErrInvalidConfiguration so callers can test with errors.Is.
type ValidationError struct {
	Module string
	Field  string
	Value  interface{}
	Reason string
	Hint   string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	msg := fmt.Sprintf("%s: invalid %s=%v (%s)", e.Module, e.Field, e.Value, e.Reason)
	if e.Hint != "" {
		msg += " - " + e.Hint
	}
	return msg
}

// Unwrap returns ErrInvalidConfiguration.
func (e *ValidationError) Unwrap() error {
	return ErrInvalidConfiguration
}

// NewValidationError creates a new ValidationError.
func NewValidationError(module, field string, value interface{}, reason string) *ValidationError {
	return &ValidationError{
		Module: module,
		Field:  field,
		Value:  value,
		Reason: reason,
	}
}

// WithHint attaches a remediation hint to the error and returns it.
func (e *ValidationError) WithHint(hint string) *ValidationError {
	e.Hint = hint
	return e
}

// IsValidationError returns true if err is a *ValidationError.
func IsValidationError(err error) bool {
	var verr *ValidationError
	return errors.As(err, &verr)
}
