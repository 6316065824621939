// GO TESTING BASICS:
// 1. Test files MUST end in _test.go — Go's tooling auto-discovers them
// 2. Test functions MUST start with "Test" and take *testing.T as the only param
// 3. Same package as the code being tested (so we can access unexported stuff)
// 4. Run with: go test ./internal/apperror/ -v  (-v = verbose, shows each test name)
package apperror

import (
	"errors"
	"fmt"
	"testing"
)

// TABLE-DRIVEN TESTS:
// This is Go's idiomatic pattern for testing multiple cases.
// Instead of writing separate test functions, we define a slice of test cases
// and loop over them. Adding a new case = adding one struct to the slice.

func TestErrorsIs(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		target    error
		wantMatch bool
	}{
		{
			name:      "NotFound wraps ErrNotFound",
			err:       NotFound("project", "abc123"),
			target:    ErrNotFound,
			wantMatch: true,
		},
		{
			name:      "ValidationFailed wraps ErrValidation",
			err:       ValidationFailed("title", "title is required"),
			target:    ErrValidation,
			wantMatch: true,
		},
		{
			name:      "Conflict wraps ErrConflict",
			err:       Conflict("profile", "abc123"),
			target:    ErrConflict,
			wantMatch: true,
		},
		{
			name:      "Forbidden wraps ErrForbidden",
			err:       Forbidden("not your project"),
			target:    ErrForbidden,
			wantMatch: true,
		},
		{
			name:      "NotAuthenticated wraps ErrNotAuthenticated",
			err:       NotAuthenticated(),
			target:    ErrNotAuthenticated,
			wantMatch: true,
		},
		{
			name:      "Unavailable wraps ErrUnavailable",
			err:       Unavailable("insert upvote", errors.New("disk I/O error")),
			target:    ErrUnavailable,
			wantMatch: true,
		},
		{
			name:      "ProvisioningExhausted wraps ErrProvisioningExhausted",
			err:       ProvisioningExhausted("partha"),
			target:    ErrProvisioningExhausted,
			wantMatch: true,
		},
		{
			name:      "NotFound does NOT match ErrValidation",
			err:       NotFound("project", "abc123"),
			target:    ErrValidation,
			wantMatch: false,
		},
		{
			name:      "Unavailable does NOT match ErrConflict",
			err:       Unavailable("insert star", errors.New("timeout")),
			target:    ErrConflict,
			wantMatch: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := errors.Is(tt.err, tt.target); got != tt.wantMatch {
				t.Errorf("errors.Is(%v, %v) = %v, want %v", tt.err, tt.target, got, tt.wantMatch)
			}
		})
	}
}

// TestErrorsIs_WrappedChain verifies that matching survives an extra layer of
// fmt.Errorf("%w") wrapping — exactly what the service layer does before
// returning errors up to the handlers.
func TestErrorsIs_WrappedChain(t *testing.T) {
	inner := NotFound("project", "xyz")
	outer := fmt.Errorf("listing projects: %w", inner)

	if !errors.Is(outer, ErrNotFound) {
		t.Error("wrapped NotFound should still match ErrNotFound")
	}

	var appErr *AppError
	if !errors.As(outer, &appErr) {
		t.Fatal("errors.As should extract *AppError from the chain")
	}
	if appErr.Message == "" {
		t.Error("extracted AppError should keep its message")
	}
}

// TestUnavailable_KeepsCause ensures the underlying driver error stays in the
// chain (for logs) while the user-facing message does not leak it.
func TestUnavailable_KeepsCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := Unavailable("recount votes", cause)

	if !errors.Is(err, cause) {
		t.Error("Unavailable should keep the cause in the error chain")
	}
	if err.Message != "storage unavailable during recount votes" {
		t.Errorf("Message = %q, should not contain the raw cause", err.Message)
	}
}

func TestValidationFailed_Field(t *testing.T) {
	err := ValidationFailed("username", "username is too long")
	if err.Field != "username" {
		t.Errorf("Field = %q, want %q", err.Field, "username")
	}
	if err.Error() != "username is too long" {
		t.Errorf("Error() = %q, want the message", err.Error())
	}
}
