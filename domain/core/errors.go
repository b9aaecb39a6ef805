package core

import (
	"errors"
	"fmt"
)

// Domain errors - centralized error definitions
var (
	// Not found errors
	ErrNotFound        = errors.New("resource not found")
	ErrDatasetNotFound = fmt.Errorf("%w: dataset", ErrNotFound)
	ErrColumnNotFound  = fmt.Errorf("%w: column", ErrNotFound)

	// Data shape errors
	ErrEmptyDataset       = errors.New("dataset has no rows")
	ErrInsufficientData   = errors.New("insufficient data for analysis")
	ErrInsufficientGroups = errors.New("fewer than two usable groups")
	ErrSampleTooSmall     = errors.New("sample too small for test")
	ErrSampleTooLarge     = errors.New("sample too large for test approximation")

	// Selection errors
	ErrUnknownAttribute = errors.New("unknown grouping attribute")
	ErrUnknownMethod    = errors.New("unknown omnibus method")
)

// Error constructors with context
func NewNotFoundError(resource string, name string) error {
	return fmt.Errorf("%w: %s %q", ErrNotFound, resource, name)
}

func NewColumnError(column string) error {
	return fmt.Errorf("%w: %q", ErrColumnNotFound, column)
}

func NewValidationError(field string, reason string) error {
	return fmt.Errorf("validation failed for %s: %s", field, reason)
}

func NewSampleSizeError(n, min int) error {
	return fmt.Errorf("%w: n=%d, need at least %d", ErrSampleTooSmall, n, min)
}

// Error checking helpers
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}

func IsDataError(err error) bool {
	return errors.Is(err, ErrEmptyDataset) ||
		errors.Is(err, ErrInsufficientData) ||
		errors.Is(err, ErrInsufficientGroups) ||
		errors.Is(err, ErrSampleTooSmall) ||
		errors.Is(err, ErrSampleTooLarge)
}

func IsSelectionError(err error) bool {
	return errors.Is(err, ErrUnknownAttribute) ||
		errors.Is(err, ErrUnknownMethod)
}
