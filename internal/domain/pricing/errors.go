package pricing

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrValidation tags every input validation failure; use errors.Is to
	// detect it and unwrap *ValidationError for field detail.
	ErrValidation = errors.New("pricing: validation failed")

	ErrConfigNotFound   = errors.New("pricing: base price config not found")
	ErrRuleNotFound     = errors.New("pricing: rule not found")
	ErrOverrideNotFound = errors.New("pricing: override not found")
	ErrSnapshotNotFound = errors.New("pricing: price snapshot not found")
)

// FieldError points at a single offending input field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError aggregates per-field failures for one request.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return ErrValidation.Error()
	}
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, fmt.Sprintf("%s: %s", f.Field, f.Message))
	}
	return "pricing: validation failed: " + strings.Join(parts, "; ")
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

func (e *ValidationError) add(field, message string) {
	e.Fields = append(e.Fields, FieldError{Field: field, Message: message})
}

func (e *ValidationError) orNil() error {
	if len(e.Fields) == 0 {
		return nil
	}
	return e
}
