// Package validation provides field-level validation errors shared by the
// billing calculation packages. Validation failures are detected before any
// network call, reported field by field, and never reach the backend.
package validation

import (
	"errors"
	"fmt"
	"strings"
)

// FieldError describes one invalid field of a draft document.
type FieldError struct {
	Field   string
	Value   interface{}
	Message string
}

// Error implements the error interface.
func (e *FieldError) Error() string {
	if e.Value == nil {
		return fmt.Sprintf("validation error for field '%s': %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation error for field '%s': %s (value: %v)", e.Field, e.Message, e.Value)
}

// NewFieldError creates a FieldError.
func NewFieldError(field string, value interface{}, message string) *FieldError {
	return &FieldError{Field: field, Value: value, Message: message}
}

// Errors collects every invalid field of a document so the whole form can be
// annotated in one pass.
type Errors []*FieldError

// Error implements the error interface.
func (e Errors) Error() string {
	if len(e) == 1 {
		return e[0].Error()
	}
	msgs := make([]string, len(e))
	for i, fe := range e {
		msgs[i] = fe.Error()
	}
	return fmt.Sprintf("%d validation errors: %s", len(e), strings.Join(msgs, "; "))
}

// Add appends a field error.
func (e *Errors) Add(field string, value interface{}, message string) {
	*e = append(*e, NewFieldError(field, value, message))
}

// OrNil returns the collected errors, or nil when every field was valid.
func (e Errors) OrNil() error {
	if len(e) == 0 {
		return nil
	}
	return e
}

// Fields extracts the Errors slice from err, if err is (or wraps) one.
func Fields(err error) (Errors, bool) {
	var ve Errors
	if errors.As(err, &ve) {
		return ve, true
	}
	var fe *FieldError
	if errors.As(err, &fe) {
		return Errors{fe}, true
	}
	return nil, false
}
