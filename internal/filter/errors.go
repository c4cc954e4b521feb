package filter

import (
	"errors"
	"fmt"
)

// ErrSyntax is the generic failure for structurally malformed expressions:
// unbalanced parentheses, trailing garbage, empty input.
var ErrSyntax = errors.New("invalid filter expression")

// InvalidLiteralError reports a literal that failed its field's type grammar
// or range check.
type InvalidLiteralError struct {
	Text string
}

func (e *InvalidLiteralError) Error() string {
	return fmt.Sprintf("invalid literal %q", e.Text)
}

// InvalidFieldError reports an identifier that names no known field.
type InvalidFieldError struct {
	Name string
}

func (e *InvalidFieldError) Error() string {
	return fmt.Sprintf("unknown field %q", e.Name)
}

// InvalidOperatorError reports a token where an operator was expected.
type InvalidOperatorError struct {
	Op string
}

func (e *InvalidOperatorError) Error() string {
	return fmt.Sprintf("invalid operator %q", e.Op)
}

// UnsupportedOperatorError reports a valid operator applied to a field
// whose literal type does not support it.
type UnsupportedOperatorError struct {
	Field string
	Op    string
}

func (e *UnsupportedOperatorError) Error() string {
	return fmt.Sprintf("operator %q is not supported on field %q", e.Op, e.Field)
}
