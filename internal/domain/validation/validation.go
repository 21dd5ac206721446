// Package validation carries field-level input errors shared by every
// domain package.
package validation

import (
	"errors"
	"fmt"
)

var ErrInvalid = errors.New("validation failed")

// Error is a malformed or missing input value. It matches ErrInvalid with
// errors.Is.
type Error struct {
	Field   string
	Message string
}

func (e *Error) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return e.Field + " " + e.Message
}

func (e *Error) Is(target error) bool {
	return target == ErrInvalid
}

func New(field, message string) error {
	return &Error{Field: field, Message: message}
}

func Newf(field, format string, args ...any) error {
	return &Error{Field: field, Message: fmt.Sprintf(format, args...)}
}

func Required(field string) error {
	return &Error{Field: field, Message: "is required"}
}
