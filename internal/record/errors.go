package record

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrFormat is the root of every decode failure.
	ErrFormat = errors.New("malformed record")
	// ErrMissingField indicates a required key is absent from the input map.
	ErrMissingField = fmt.Errorf("%w: missing required field", ErrFormat)
	// ErrFieldType indicates a key holds a value of the wrong shape.
	ErrFieldType = fmt.Errorf("%w: invalid field type", ErrFormat)
)

// FormatError describes why a map could not be decoded into a record.
type FormatError struct {
	Record   string
	Problems []string
	cause    error
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("decode %s: %s", e.Record, strings.Join(e.Problems, "; "))
}

// Unwrap returns ErrMissingField or ErrFieldType.
func (e *FormatError) Unwrap() error {
	return e.cause
}

func newFormatError(name string, cause error, problems ...string) *FormatError {
	return &FormatError{Record: name, Problems: problems, cause: cause}
}
