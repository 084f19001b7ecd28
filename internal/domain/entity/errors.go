package entity

import (
	"errors"
	"fmt"
)

var (
	// ErrValidationFailed matches every *ValidationError via errors.Is.
	ErrValidationFailed = errors.New("validation failed")

	// ErrNotConfigured means a collaborator has no credentials.
	ErrNotConfigured = errors.New("not configured")
)

// ValidationError names the input field that was rejected.
type ValidationError struct {
	Field   string
	Message string
}

func invalid(field, format string, args ...any) *ValidationError {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error on field '%s': %s", e.Field, e.Message)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidationFailed
}
