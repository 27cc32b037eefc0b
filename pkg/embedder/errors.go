package embedder

import (
	"errors"
	"fmt"
)

// Common embedding client errors
var (
	// ErrProviderTransient indicates a provider failure that may succeed on retry.
	ErrProviderTransient = errors.New("transient embedding provider failure")

	// ErrProviderPermanent indicates a provider failure that will not succeed on retry.
	ErrProviderPermanent = errors.New("permanent embedding provider failure")

	// ErrEmptyBatch indicates a provider returned fewer vectors than texts sent.
	ErrEmptyBatch = errors.New("embedding provider returned incomplete batch")
)

// ProviderError wraps a provider failure with its retry classification.
type ProviderError struct {
	StatusCode int
	Message    string
	Transient  bool
}

func (e *ProviderError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("embedding provider error (status %d): %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("embedding provider error: %s", e.Message)
}

// Unwrap maps the classification onto the package sentinels so callers can
// use errors.Is without inspecting the struct.
func (e *ProviderError) Unwrap() error {
	if e.Transient {
		return ErrProviderTransient
	}
	return ErrProviderPermanent
}

// NewProviderError creates a classified provider error.
func NewProviderError(statusCode int, message string, transient bool) *ProviderError {
	return &ProviderError{
		StatusCode: statusCode,
		Message:    message,
		Transient:  transient,
	}
}

// DimensionMismatchError reports a vector whose length does not match the
// configured dimension. Vectors are never truncated or padded to fit.
type DimensionMismatchError struct {
	Expected int
	Actual   int
}

func (e *DimensionMismatchError) Error() string {
	return fmt.Sprintf("embedding dimension mismatch: expected %d, got %d", e.Expected, e.Actual)
}

// Is implements errors.Is support for DimensionMismatchError.
// This allows errors.Is(err, &DimensionMismatchError{}) to work with wrapped errors.
func (e *DimensionMismatchError) Is(target error) bool {
	_, ok := target.(*DimensionMismatchError)
	return ok
}

// NewDimensionMismatchError creates a new dimension mismatch error.
func NewDimensionMismatchError(expected, actual int) *DimensionMismatchError {
	return &DimensionMismatchError{Expected: expected, Actual: actual}
}
