// Package record derives value semantics for plain data records: structural
// equality, hashing, partial-update copies and a strict JSON map codec.
//
// A record is any struct whose exported fields carry json tags. Fields whose
// tag lacks omitempty are required on decode; optional scalars are pointers.
package record

import (
	"reflect"
	"time"
)

// Enum is implemented by string enums so decoding can reject unknown values.
type Enum interface {
	EnumValues() []string
}

var (
	timeType = reflect.TypeOf(time.Time{})
	enumType = reflect.TypeOf((*Enum)(nil)).Elem()
)

// typeName returns the display name used in error messages.
func typeName(t reflect.Type) string {
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == nil {
		return "<nil>"
	}
	if t.Name() != "" {
		return t.Name()
	}
	return t.String()
}
