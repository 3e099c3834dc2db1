package apperror

import (
	"fmt"
	"sort"
	"strings"
)

// FieldErrors maps a JSON field name to its messages.
type FieldErrors map[string][]string

func (f FieldErrors) Add(field, message string) {
	f[field] = append(f[field], message)
}

type ValidationError struct {
	Fields FieldErrors
}

func NewValidation(fields FieldErrors) *ValidationError {
	return &ValidationError{Fields: fields}
}

// Field is a shorthand for a single-field validation failure.
func Field(field, message string) *ValidationError {
	return &ValidationError{Fields: FieldErrors{field: {message}}}
}

func (e *ValidationError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, fmt.Sprintf("%s: %s", name, strings.Join(e.Fields[name], " ")))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

type NotFoundError struct {
	Resource string
	ID       uint
}

func NotFound(resource string, id uint) *NotFoundError {
	return &NotFoundError{Resource: resource, ID: id}
}

func (e *NotFoundError) Error() string {
	return e.Resource + " not found"
}
