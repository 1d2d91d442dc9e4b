package params

import (
	"errors"
	"fmt"
)

// ErrInvalidParameterFormat is matched by every FormatError.
var ErrInvalidParameterFormat = errors.New("invalid parameter format")

// FormatError reports a raw value that cannot be read as the declared type.
type FormatError struct {
	Name  string
	Value string
	Type  SchemaType
	Err   error
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("parameter %q: cannot parse %q as %s", e.Name, e.Value, e.Type)
}

func (e *FormatError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrInvalidParameterFormat}
	}
	return []error{ErrInvalidParameterFormat, e.Err}
}
