// GO TESTING BASICS:
// 1. Test files MUST end in _test.go
// 2. Test functions MUST start with "Test" and take *testing.T as the only param
// 3. Same package as the code being tested (so we can access unexported stuff)
// 4. Run with: go test ./internal/apperror/ -v
package apperror

import (
	"errors"
	"io"
	"testing"
)

func TestErrorsIs(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		target    error
		wantMatch bool
	}{
		{
			name:      "ValidationFailed wraps ErrValidation",
			err:       ValidationFailed("code", "No code provided"),
			target:    ErrValidation,
			wantMatch: true,
		},
		{
			name:      "Unavailable wraps ErrUnavailable",
			err:       Unavailable("execution slots exhausted"),
			target:    ErrUnavailable,
			wantMatch: true,
		},
		{
			name:      "Internal wraps ErrInternal",
			err:       Internal("spawn failed", io.ErrUnexpectedEOF),
			target:    ErrInternal,
			wantMatch: true,
		},
		{
			name:      "Internal keeps the cause",
			err:       Internal("spawn failed", io.ErrUnexpectedEOF),
			target:    io.ErrUnexpectedEOF,
			wantMatch: true,
		},
		{
			name:      "Unavailable does NOT match ErrValidation",
			err:       Unavailable("cancelled"),
			target:    ErrValidation,
			wantMatch: false,
		},
		{
			name:      "ValidationFailed does NOT match ErrInternal",
			err:       ValidationFailed("code", "too long"),
			target:    ErrInternal,
			wantMatch: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := errors.Is(tt.err, tt.target)
			if got != tt.wantMatch {
				t.Errorf("errors.Is(%v, %v) = %v, want %v", tt.err, tt.target, got, tt.wantMatch)
			}
		})
	}
}

func TestErrorMessages(t *testing.T) {
	tests := []struct {
		name        string
		err         *AppError
		wantMessage string
	}{
		{
			name:        "ValidationFailed uses custom message",
			err:         ValidationFailed("code", "No code provided"),
			wantMessage: "No code provided",
		},
		{
			name:        "Internal hides the cause",
			err:         Internal("An unexpected error occurred", errors.New("fork: resource temporarily unavailable")),
			wantMessage: "An unexpected error occurred",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.wantMessage {
				t.Errorf("Error() = %q, want %q", got, tt.wantMessage)
			}
		})
	}
}

func TestValidationFailedField(t *testing.T) {
	err := ValidationFailed("code", "code must be 100000 characters or less")

	if err.Field != "code" {
		t.Errorf("Field = %q, want %q", err.Field, "code")
	}
}
