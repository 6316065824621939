package apperror

import (
	"errors"
	"fmt"
)

// Sentinel errors for the application's failure taxonomy.
//
// Handlers map these to HTTP status codes with errors.Is, so every error a
// service returns should wrap exactly one of them (or be a plain internal
// error, which maps to 500).
var (
	ErrNotFound         = errors.New("not found")
	ErrValidation       = errors.New("validation error")
	ErrConflict         = errors.New("conflict")
	ErrForbidden        = errors.New("forbidden")
	ErrNotAuthenticated = errors.New("not authenticated")

	// ErrUnavailable means the datastore could not be reached or timed out.
	// Never retried internally — a toggle retried blindly after a timeout
	// could flip state twice. The caller owns retry/backoff.
	ErrUnavailable = errors.New("store unavailable")

	// ErrProvisioningExhausted means every username candidate collided.
	// Rare by construction (~1000-suffix collision space); surfaced as a
	// hard failure rather than retried forever so signup latency stays bounded.
	ErrProvisioningExhausted = errors.New("username provisioning exhausted")
)

type AppError struct {
	Err     error  // actual error
	Message string // human-readable error message
	Field   string // optional: field causing the error
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func NotFound(resource, id string) *AppError {
	return &AppError{
		Err:     ErrNotFound,
		Message: fmt.Sprintf("%s not found with id %s", resource, id),
	}
}

func ValidationFailed(field, message string) *AppError {
	return &AppError{
		Err:     ErrValidation,
		Message: message,
		Field:   field,
	}
}

func Conflict(resource, id string) *AppError {
	return &AppError{
		Err:     ErrConflict,
		Message: fmt.Sprintf("%s conflict with id %s", resource, id),
	}
}

// Forbidden returns an AppError indicating the caller lacks permission.
// HTTP handlers map this to 403 Forbidden.
func Forbidden(message string) *AppError {
	return &AppError{
		Err:     ErrForbidden,
		Message: message,
	}
}

// NotAuthenticated is returned when an operation that needs an acting
// principal is attempted anonymously. Rejected before any store access.
func NotAuthenticated() *AppError {
	return &AppError{
		Err:     ErrNotAuthenticated,
		Message: "authentication required",
	}
}

// Unavailable wraps a store I/O failure. The underlying error stays in the
// chain for logging but is never shown to clients.
func Unavailable(op string, err error) *AppError {
	return &AppError{
		Err:     fmt.Errorf("%w: %s: %w", ErrUnavailable, op, err),
		Message: fmt.Sprintf("storage unavailable during %s", op),
	}
}

// ProvisioningExhausted is returned when all username candidates derived
// from base were already claimed.
func ProvisioningExhausted(base string) *AppError {
	return &AppError{
		Err:     ErrProvisioningExhausted,
		Message: fmt.Sprintf("could not allocate a username for %q after repeated collisions", base),
	}
}
