package store

import (
	"errors"
	"fmt"
	"strings"
)

var ErrNotFound = errors.New("not found")

// NotFoundError reports a test id that no provider knows about.
// errors.Is(err, ErrNotFound) holds for it.
type NotFoundError struct {
	ID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("test %q not found", e.ID)
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// FieldError is a single failed check on a test definition. Field uses the
// JSON name of the offending field, dotted for nested fields.
type FieldError struct {
	Field   string
	Message string
}

// ValidationError collects every invariant a test definition breaks.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		parts[i] = f.Field + ": " + f.Message
	}
	return "invalid test: " + strings.Join(parts, "; ")
}

// For returns the message for field, or "" if the field passed.
func (e *ValidationError) For(field string) string {
	for _, f := range e.Fields {
		if f.Field == field {
			return f.Message
		}
	}
	return ""
}

func (e *ValidationError) add(field, message string) {
	e.Fields = append(e.Fields, FieldError{Field: field, Message: message})
}
