package schema

import (
	"fmt"
	"strings"
)

// FieldError describes one offending field. Loc is the path to the value,
// starting with where it came from ("body", "path" or "query").
type FieldError struct {
	Loc  []string `json:"loc"`
	Msg  string   `json:"msg"`
	Type string   `json:"type"`
}

// ValidationError is returned when an inbound payload breaks a declared constraint.
// The underlying decoder error, if any, stays out of Fields and only shows up
// through Error and Unwrap.
type ValidationError struct {
	Fields []FieldError
	cause  error
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, fmt.Sprintf("%s: %s", strings.Join(f.Loc, "."), f.Msg))
	}
	msg := "validation failed: " + strings.Join(parts, "; ")
	if e.cause != nil {
		msg += ": " + e.cause.Error()
	}
	return msg
}

func (e *ValidationError) Unwrap() error { return e.cause }

// NewFieldError builds a ValidationError with a single field.
func NewFieldError(loc []string, msg, typ string) *ValidationError {
	return &ValidationError{Fields: []FieldError{{Loc: loc, Msg: msg, Type: typ}}}
}

// jsonDecodeError reports a body that is not valid JSON.
func jsonDecodeError(cause error) *ValidationError {
	ve := NewFieldError([]string{"body"}, "JSON decode error", "json_invalid")
	ve.cause = cause
	return ve
}
