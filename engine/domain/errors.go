package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors for the engine's failure taxonomy.
var (
	ErrMissingCompany     = errors.New("posting missing company")
	ErrMissingDescription = errors.New("posting missing description")
	ErrModelUnavailable   = errors.New("classifier model unavailable")
	ErrInvalidWeights     = errors.New("invalid scorer weights")
)

// ValidationError wraps a sentinel with the offending field.
type ValidationError struct {
	Field   string
	Value   string
	Wrapped error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation: %s: %s (value=%q)", e.Wrapped, e.Field, e.Value)
}

func (e *ValidationError) Unwrap() error { return e.Wrapped }

// NewValidationError creates a ValidationError.
func NewValidationError(field, value string, wrapped error) *ValidationError {
	return &ValidationError{Field: field, Value: value, Wrapped: wrapped}
}
