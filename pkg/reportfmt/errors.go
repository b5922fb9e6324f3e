// Package reportfmt lays out financial research content as formatted
// documents and spreadsheet charts.
package reportfmt

import (
	"errors"
	"fmt"
)

// ErrValidation marks errors caused by bad or missing input.
var ErrValidation = errors.New("validation failed")

// ErrPersistence marks errors raised while writing the final artifact.
var ErrPersistence = errors.New("persistence failed")

// ValidationError reports input that cannot be laid out.
// It is always returned before any artifact is mutated.
type ValidationError struct {
	Field  string // e.g. "y_columns", "sections[2].table"
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("validation error: %s", e.Reason)
	}
	return fmt.Sprintf("validation error in %s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

// NewValidationError creates a new ValidationError.
func NewValidationError(field, format string, args ...interface{}) *ValidationError {
	return &ValidationError{
		Field:  field,
		Reason: fmt.Sprintf(format, args...),
	}
}

// PersistenceError reports a failed write of the final artifact.
type PersistenceError struct {
	Path string
	Err  error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence error writing %q: %v", e.Path, e.Err)
}

func (e *PersistenceError) Unwrap() []error {
	return []error{ErrPersistence, e.Err}
}

// NewPersistenceError creates a new PersistenceError.
func NewPersistenceError(path string, err error) *PersistenceError {
	return &PersistenceError{
		Path: path,
		Err:  err,
	}
}

// IsValidation reports whether err is a validation failure.
func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation)
}

// IsPersistence reports whether err is a persistence failure.
func IsPersistence(err error) bool {
	return errors.Is(err, ErrPersistence)
}
