package record

import (
	"bytes"
	"encoding/json"
	"fmt"
	"reflect"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// Encode maps v to a string-keyed dynamic map following its json tags.
// Absent optional fields are omitted and numbers are kept as json.Number so
// integers survive without float rounding.
func Encode[T any](v T) (map[string]any, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", typeName(reflect.TypeOf(any(v))), err)
	}
	m, err := ParseObject(raw)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", typeName(reflect.TypeOf(any(v))), err)
	}
	return m, nil
}

// Marshal encodes v to JSON bytes.
func Marshal[T any](v T) ([]byte, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", typeName(reflect.TypeOf(any(v))), err)
	}
	return raw, nil
}

// ParseObject parses a JSON object into a dynamic map, keeping numbers as
// json.Number. Anything other than an object is a format error.
func ParseObject(data []byte) (map[string]any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var m map[string]any
	if err := dec.Decode(&m); err != nil {
		return nil, newFormatError("object", ErrFieldType, err.Error())
	}
	if m == nil {
		return nil, newFormatError("object", ErrFieldType, "input is null")
	}
	return m, nil
}

// Decode builds a T from a dynamic map. Every required key must be present
// and every value must have the declared JSON type; otherwise a *FormatError
// wrapping ErrMissingField or ErrFieldType is returned.
func Decode[T any](m map[string]any) (T, error) {
	var out T
	t := reflect.TypeOf((*T)(nil)).Elem()
	name := typeName(t)

	if m == nil {
		return out, newFormatError(name, ErrFieldType, "input is null")
	}

	raw, err := json.Marshal(m)
	if err != nil {
		return out, newFormatError(name, ErrFieldType, err.Error())
	}
	return decodeRaw[T](name, t, raw)
}

// DecodeJSON builds a T from JSON bytes with the same rules as Decode.
func DecodeJSON[T any](data []byte) (T, error) {
	var out T
	t := reflect.TypeOf((*T)(nil)).Elem()
	name := typeName(t)

	m, err := ParseObject(data)
	if err != nil {
		return out, newFormatError(name, ErrFieldType, err.(*FormatError).Problems...)
	}
	raw, err := json.Marshal(m)
	if err != nil {
		return out, newFormatError(name, ErrFieldType, err.Error())
	}
	return decodeRaw[T](name, t, raw)
}

func decodeRaw[T any](name string, t reflect.Type, raw []byte) (T, error) {
	var out T

	schema, err := schemaFor(t)
	if err != nil {
		return out, err
	}

	result, err := schema.Validate(gojsonschema.NewBytesLoader(raw))
	if err != nil {
		return out, newFormatError(name, ErrFieldType, err.Error())
	}
	if !result.Valid() {
		return out, problemsError(name, result.Errors())
	}

	if err := json.Unmarshal(raw, &out); err != nil {
		return out, newFormatError(name, ErrFieldType, err.Error())
	}
	return out, nil
}

// problemsError converts schema violations to a FormatError. A missing key
// takes precedence over type problems when choosing the sentinel.
func problemsError(name string, errs []gojsonschema.ResultError) *FormatError {
	cause := ErrFieldType
	problems := make([]string, 0, len(errs))
	for _, e := range errs {
		if e.Type() == "required" {
			cause = ErrMissingField
		}
		problems = append(problems, describeProblem(e))
	}
	return newFormatError(name, cause, problems...)
}

func describeProblem(e gojsonschema.ResultError) string {
	field := e.Field()
	if field == "(root)" {
		field = ""
	}
	if e.Type() == "required" {
		if p, ok := e.Details()["property"].(string); ok {
			if field == "" {
				return p + ": is required"
			}
			return field + "." + p + ": is required"
		}
	}
	if field == "" {
		return e.Description()
	}
	return strings.Join([]string{field, e.Description()}, ": ")
}
