package level

import (
	"errors"
	"fmt"
)

// ConstructionError represents an invalid parameter domain detected
// while building a level or comparison: negative thresholds, unknown
// metric names, mismatched parallel lists, wrong input types. It is
// raised before any compilation is attempted.
type ConstructionError struct {
	// Field names the offending parameter.
	Field string

	// Message is a human-readable description.
	Message string
}

func (e *ConstructionError) Error() string {
	return fmt.Sprintf("invalid comparison specification: %s: %s", e.Field, e.Message)
}

// IsConstructionError reports whether err is (or wraps) a
// ConstructionError.
func IsConstructionError(err error) bool {
	var ce *ConstructionError
	return errors.As(err, &ce)
}

// NewConstructionError creates a ConstructionError for a field with a
// formatted message.
func NewConstructionError(field, format string, args ...any) *ConstructionError {
	return &ConstructionError{Field: field, Message: fmt.Sprintf(format, args...)}
}
