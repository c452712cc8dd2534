package core

import (
	"errors"
	"fmt"
)

// Domain errors - centralized error definitions
var (
	// Not found errors
	ErrNotFound       = errors.New("resource not found")
	ErrColumnNotFound = fmt.Errorf("%w: column", ErrNotFound)
	ErrLessonNotFound = fmt.Errorf("%w: lesson", ErrNotFound)
	ErrExampleUnknown = fmt.Errorf("%w: example dataset", ErrNotFound)

	// Input errors
	ErrInvalidInput     = errors.New("invalid input")
	ErrDegenerateInput  = errors.New("degenerate input")
	ErrInsufficientData = errors.New("insufficient data for analysis")
)

// NewInvalidInputError annotates ErrInvalidInput with the offending field.
func NewInvalidInputError(field string, reason string) error {
	return fmt.Errorf("%w: %s: %s", ErrInvalidInput, field, reason)
}

// NewDegenerateInputError annotates ErrDegenerateInput with the offending field.
func NewDegenerateInputError(field string, reason string) error {
	return fmt.Errorf("%w: %s: %s", ErrDegenerateInput, field, reason)
}

func NewInsufficientDataError(label string, have, need int) error {
	return fmt.Errorf("%w: %s has %d values, need at least %d", ErrInsufficientData, label, have, need)
}

func NewNotFoundError(resource error, name string) error {
	return fmt.Errorf("%w %q", resource, name)
}

// Error checking helpers
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}

func IsInputError(err error) bool {
	return errors.Is(err, ErrInvalidInput) ||
		errors.Is(err, ErrInsufficientData)
}

func IsDegenerateError(err error) bool {
	return errors.Is(err, ErrDegenerateInput)
}
