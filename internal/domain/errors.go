package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound signals a missing resource.
	ErrNotFound = errors.New("not found")
	// ErrPaperNotFound signals an unknown paper identifier.
	ErrPaperNotFound = fmt.Errorf("paper %w", ErrNotFound)
	// ErrAlreadyExists signals a duplicate resource.
	ErrAlreadyExists = errors.New("already exists")
	// ErrInvalidInput signals a request that failed validation.
	ErrInvalidInput = errors.New("invalid input")

	// ErrRateLimited signals a rate limit hit, local or upstream.
	ErrRateLimited = errors.New("rate limited")
	// ErrSummaryQuotaExceeded signals an exhausted summary token budget.
	ErrSummaryQuotaExceeded = errors.New("summary quota exceeded")
	// ErrProviderError signals an LLM provider failure.
	ErrProviderError = errors.New("summary provider error")
	// ErrUpstreamUnavailable signals that the paper feed cannot be reached.
	ErrUpstreamUnavailable = errors.New("upstream unavailable")
	// ErrNotImplemented signals an unimplemented feature.
	ErrNotImplemented = errors.New("not implemented")
)

// ValidationError wraps ErrInvalidInput with the offending field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s %s", ErrInvalidInput.Error(), e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error { return ErrInvalidInput }

// NewValidationError creates a validation error for a field.
func NewValidationError(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}
