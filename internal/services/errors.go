// Package services defines the business logic for testimonial submission,
// moderation and display. This file centralizes the service-level error
// values so that they can be returned consistently by service methods and
// checked by callers with errors.Is / errors.As.
//
// Translation into user-facing messages or HTTP status codes is performed at
// the handler layer.
package services

import (
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"
)

var (
	// ErrValidation is matched by every *ValidationError.
	ErrValidation = errors.New("validation failed")

	// ErrUnauthorized is returned when the acting account does not own the
	// target testimonial, or when no acting account was supplied.
	ErrUnauthorized = errors.New("not authorized for this testimonial")

	// ErrNotFound indicates that the referenced testimonial or owner does
	// not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidStatus is returned when a requested status is not one of
	// pending, approved or rejected, or is not a legal transition target.
	ErrInvalidStatus = errors.New("invalid status")

	// ErrTransport is matched by every *TransportError.
	ErrTransport = errors.New("record store unavailable")
)

// Field-level validation reasons.
const (
	ReasonRequired   = "required"
	ReasonTooLong    = "too_long"
	ReasonOutOfRange = "out_of_range"
	ReasonNotInteger = "not_integer"
)

// FieldError names one offending input field.
type FieldError struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

// ValidationError carries every field that failed validation.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+" "+f.Reason)
	}
	return "validation failed: " + strings.Join(parts, ", ")
}

// Is makes errors.Is(err, ErrValidation) true.
func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// TransportError wraps a failure of the record store. It is opaque to
// callers beyond the failing operation name.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string { return fmt.Sprintf("store %s: %v", e.Op, e.Err) }

func (e *TransportError) Unwrap() error { return e.Err }

// Is makes errors.Is(err, ErrTransport) true.
func (e *TransportError) Is(target error) bool { return target == ErrTransport }

// storeErr classifies a repository error: missing rows become ErrNotFound,
// everything else becomes a *TransportError for op.
func storeErr(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return &TransportError{Op: op, Err: err}
}
