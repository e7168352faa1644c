package service

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidParameter is returned when a caller supplied malformed input
	// (bad chunk size/overlap, empty question). Never retried.
	ErrInvalidParameter = errors.New("invalid parameter")
	// ErrNotFound is returned when a local snapshot is absent or a storage
	// handle cannot be resolved. Used as a control-flow signal inside the
	// build precedence chain, not logged as an error at top level.
	ErrNotFound = errors.New("not found")
	// ErrServiceFailure is returned when an embedding or chat-completion call
	// failed or timed out.
	ErrServiceFailure = errors.New("external service failure")
	// ErrTransport is returned when a durable-storage upload or download
	// failed. The lifecycle manager catches it during the precedence chain
	// and falls through to the next option.
	ErrTransport = errors.New("storage transport error")
	// ErrNoIndex is returned when no precedence option can produce an index.
	ErrNoIndex = errors.New("no index available")
)

// ValidationError represents a validation error with a field name.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error on field %s: %s", e.Field, e.Message)
}

// Unwrap lets errors.Is treat every validation error as an invalid parameter.
func (e *ValidationError) Unwrap() error {
	return ErrInvalidParameter
}

// WrapError wraps an error with additional context.
func WrapError(err error, msg string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", msg, err)
}
