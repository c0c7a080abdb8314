// Package apperrors defines the structured error types shared by the CLI,
// the REPL and the HTTP server, and the process exit codes they map to.
//
// Every wrapping type implements Unwrap so errors.Is and errors.As see the
// cause.
package apperrors

import (
	"context"
	"errors"
	"fmt"
)

// Process exit codes.
const (
	ExitSuccess       = 0   // Run completed.
	ExitErrorGeneric  = 1   // Unexpected failure.
	ExitErrorTimeout  = 2   // The -timeout budget was exhausted.
	ExitErrorMismatch = 3   // Engines disagreed on a trajectory.
	ExitErrorConfig   = 4   // Invalid flags, environment or scene file.
	ExitErrorCanceled = 130 // Interrupted by SIGINT/SIGTERM.
)

// ConfigError reports invalid user configuration: flags, environment
// variables or a scene file.
type ConfigError struct {
	Message string
}

func (e ConfigError) Error() string { return e.Message }

// NewConfigError returns a ConfigError with a formatted message.
func NewConfigError(format string, a ...any) error {
	return ConfigError{Message: fmt.Sprintf(format, a...)}
}

// IterationError wraps a failure raised while running an engine. The engine
// itself never fails on numerical grounds (poles and flat derivatives are
// ordinary outcomes); this covers validation, cancellation and lookup errors
// surfaced through the service layer.
type IterationError struct {
	// Algorithm is the engine name, if known.
	Algorithm string
	Cause     error
}

func (e IterationError) Error() string {
	if e.Algorithm != "" {
		return fmt.Sprintf("%s: %v", e.Algorithm, e.Cause)
	}
	return e.Cause.Error()
}

// Unwrap returns the cause.
func (e IterationError) Unwrap() error { return e.Cause }

// NewIterationError wraps cause, or returns nil when cause is nil.
func NewIterationError(algorithm string, cause error) error {
	if cause == nil {
		return nil
	}
	return IterationError{Algorithm: algorithm, Cause: cause}
}

// ServerError reports a failure of the HTTP server.
type ServerError struct {
	Message string
	Cause   error
}

func (e ServerError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

// Unwrap returns the cause, which may be nil.
func (e ServerError) Unwrap() error { return e.Cause }

// NewServerError returns a ServerError. cause may be nil.
func NewServerError(message string, cause error) error {
	return ServerError{Message: message, Cause: cause}
}

// WrapError prefixes err with a formatted message using %w. It returns nil
// when err is nil.
func WrapError(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	message := fmt.Sprintf(format, args...)
	return fmt.Errorf("%s: %w", message, err)
}

// IsContextError reports whether err is a cancellation or a deadline.
func IsContextError(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

// ValidationError reports an invalid input field, from an API request or
// from the configuration.
type ValidationError struct {
	// Field is the offending parameter, e.g. "maxiter" or "roots".
	Field   string
	Message string
	// Value is the rejected input, when useful for the response.
	Value any
}

func (e ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation error for '%s': %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation error: %s", e.Message)
}

// NewValidationError returns a ValidationError.
func NewValidationError(field, message string, value any) error {
	return ValidationError{Field: field, Message: message, Value: value}
}
