// Package apperror defines the domain errors shared by the service and handler layers.
//
// The service layer returns these errors without knowing about HTTP.
// The handler layer translates them into status codes (see handler/response.go).
package apperror

import (
	"errors"
	"fmt"
)

var (
	ErrValidation  = errors.New("Validation Error")
	ErrUnavailable = errors.New("unavailable")
	ErrInternal    = errors.New("internal error")
)

type AppError struct {
	Err     error  // actual error
	Message string // Human-readable error message
	Field   string // Optional: field causing the error
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func ValidationFailed(field, message string) *AppError {
	return &AppError{
		Err:     ErrValidation,
		Message: message,
		Field:   field,
	}
}

// Unavailable reports a dependency that cannot serve the request right now,
// for example when every execution slot is busy and the caller gave up waiting.
func Unavailable(message string) *AppError {
	return &AppError{
		Err:     ErrUnavailable,
		Message: message,
	}
}

// Internal wraps an infrastructure failure. The cause is kept for logging;
// only the generic message is ever shown to clients.
func Internal(message string, cause error) *AppError {
	return &AppError{
		Err:     fmt.Errorf("%w: %w", ErrInternal, cause),
		Message: message,
	}
}
