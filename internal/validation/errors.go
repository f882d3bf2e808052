package validation

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

// FieldError is used to indicate an error with a specific field.
type FieldError struct {
	Field string `json:"field"`
	Error string `json:"error"`
}

// ValidationError is returned when caller input is rejected. No state is
// mutated when an operation returns one.
type ValidationError struct {
	Err    error
	Fields []FieldError
}

func New(err error, flds ...FieldError) error {
	return &ValidationError{Err: err, Fields: flds}
}

// Newf builds a ValidationError from a formatted message.
func Newf(format string, args ...interface{}) error {
	return &ValidationError{Err: errors.Errorf(format, args...)}
}

func (err *ValidationError) Error() string {
	if err.Err == nil {
		return "validation failed"
	}
	if len(err.Fields) == 0 {
		return err.Err.Error()
	}
	parts := make([]string, 0, len(err.Fields))
	for _, f := range err.Fields {
		parts = append(parts, fmt.Sprintf("%s: %s", f.Field, f.Error))
	}
	return err.Err.Error() + " (" + strings.Join(parts, "; ") + ")"
}

func (err *ValidationError) Unwrap() error { return err.Err }

// Is reports whether any error in err's chain is a ValidationError.
func Is(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}
