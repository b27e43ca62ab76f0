package application

import (
	"errors"
	"sort"
	"strings"
)

var (
	ErrInvalidCredentials = errors.New("unable to authenticate with provided credentials")
	ErrNotFound           = errors.New("not found")
	ErrSearchUnavailable  = errors.New("search is not configured")
)

// ValidationError carries field-level messages, keyed by JSON field name.
type ValidationError struct {
	Fields map[string][]string
}

func NewValidationError() *ValidationError {
	return &ValidationError{Fields: map[string][]string{}}
}

// Add appends a message for field.
func (e *ValidationError) Add(field, msg string) {
	e.Fields[field] = append(e.Fields[field], msg)
}

// Merge copies messages from other into e.
func (e *ValidationError) Merge(other map[string][]string) {
	for f, msgs := range other {
		e.Fields[f] = append(e.Fields[f], msgs...)
	}
}

// OrNil returns e when it holds at least one message.
func (e *ValidationError) OrNil() error {
	if e == nil || len(e.Fields) == 0 {
		return nil
	}
	return e
}

func (e *ValidationError) Error() string {
	fields := make([]string, 0, len(e.Fields))
	for f := range e.Fields {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		parts = append(parts, f+": "+strings.Join(e.Fields[f], "; "))
	}
	return "validation failed: " + strings.Join(parts, ", ")
}
