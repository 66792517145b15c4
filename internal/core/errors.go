package core

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrValidation    = errors.New("validation failed")
	ErrInvalidAmount = errors.New("invalid amount")
	ErrEmptyCategory = errors.New("category is required")
	ErrInvalidDate   = errors.New("invalid date (expected YYYY-MM-DD)")
)

// Violation describes one rejected input field.
type Violation struct {
	Field  string
	Reason string
}

// ValidationError is returned when caller input is rejected before any write.
type ValidationError struct {
	Violations []Violation
}

// Add records a violation for field.
func (e *ValidationError) Add(field, reason string) {
	e.Violations = append(e.Violations, Violation{Field: field, Reason: reason})
}

// OrNil returns e as an error when it holds violations, nil otherwise.
func (e *ValidationError) OrNil() error {
	if e == nil || len(e.Violations) == 0 {
		return nil
	}
	return e
}

// Reason returns the reason recorded for field, or "".
func (e *ValidationError) Reason(field string) string {
	for _, v := range e.Violations {
		if v.Field == field {
			return v.Reason
		}
	}
	return ""
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Violations))
	for _, v := range e.Violations {
		parts = append(parts, v.Field+": "+v.Reason)
	}
	return fmt.Sprintf("%s: %s", ErrValidation, strings.Join(parts, "; "))
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// StorageError wraps a failure of the underlying store.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// NewStorageError wraps err, or returns nil when err is nil.
func NewStorageError(op string, err error) error {
	if err == nil {
		return nil
	}
	return &StorageError{Op: op, Err: err}
}
