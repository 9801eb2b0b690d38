package entities

import (
	"errors"
	"fmt"
	"strings"
)

// ErrForbidden is returned when an actor may not modify a session or player
var ErrForbidden = errors.New("forbidden")

// ErrAlreadyExists is returned when a create hits a row with the same key
var ErrAlreadyExists = errors.New("already exists")

// FieldError describes one failed constraint
type FieldError struct {
	Field string `json:"field"`
	Rule  string `json:"rule"`
	Param string `json:"param,omitempty"`
}

func (f FieldError) String() string {
	if f.Param != "" {
		return fmt.Sprintf("%s: %s=%s", f.Field, f.Rule, f.Param)
	}
	return fmt.Sprintf("%s: %s", f.Field, f.Rule)
}

// ValidationError is returned when a candidate value breaks its schema
type ValidationError struct {
	Entity string
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		parts[i] = f.String()
	}
	return fmt.Sprintf("invalid %s: %s", e.Entity, strings.Join(parts, ", "))
}

// DecodeError is returned when a stored record does not satisfy its schema
type DecodeError struct {
	Entity string
	Key    string
	Err    error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("failed to decode %s %s: %v", e.Entity, e.Key, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// NotFoundError is returned when a referenced session or user is missing
type NotFoundError struct {
	Resource string
	Key      string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s (%s) was not found", e.Resource, e.Key)
}

// IsNotFound reports whether err is or wraps a NotFoundError
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

// IsValidation reports whether err is or wraps a ValidationError
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
