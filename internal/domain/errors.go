package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors for common error conditions.
var (
	// ErrProviderUnavailable indicates that a single external provider call
	// failed (network, timeout, non-2xx status, or malformed response).
	ErrProviderUnavailable = errors.New("provider unavailable")

	// ErrInvalidInput indicates that caller-supplied input is invalid.
	ErrInvalidInput = errors.New("invalid input")

	// ErrRateLimited indicates that a request was rate limited by a provider.
	ErrRateLimited = errors.New("rate limited")

	// ErrInternal indicates a defect inside the aggregation pipeline itself.
	ErrInternal = errors.New("internal aggregation fault")
)

// ProviderError is the only error type a source adapter may surface to its
// callers. It wraps the underlying transport or parsing failure together
// with the provider's name and, when available, the HTTP status code.
type ProviderError struct {
	// Provider is the human-readable provider name (e.g. "arXiv").
	Provider string

	// StatusCode is the HTTP status of the failed call, 0 when the failure
	// happened before a response was received.
	StatusCode int

	// Message describes what went wrong.
	Message string

	// Cause is the underlying error, if any.
	Cause error
}

// Error implements the error interface.
func (e *ProviderError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s provider error (status %d): %s", e.Provider, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("%s provider error: %s", e.Provider, e.Message)
}

// Unwrap returns ErrProviderUnavailable so callers can match with errors.Is
// while the cause chain remains reachable through errors.As.
func (e *ProviderError) Unwrap() []error {
	if e.Cause != nil {
		return []error{ErrProviderUnavailable, e.Cause}
	}
	return []error{ErrProviderUnavailable}
}

// NewProviderError creates a ProviderError for a failed provider call.
func NewProviderError(provider string, statusCode int, message string, cause error) *ProviderError {
	return &ProviderError{
		Provider:   provider,
		StatusCode: statusCode,
		Message:    message,
		Cause:      cause,
	}
}

// ValidationError reports a canonical record that failed schema validation
// at an adapter boundary.
type ValidationError struct {
	Field   string
	Message string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error: %s: %s", e.Field, e.Message)
}

// Unwrap returns the underlying sentinel error for use with errors.Is.
func (e *ValidationError) Unwrap() error {
	return ErrInvalidInput
}

// NewValidationError creates a new ValidationError.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}
