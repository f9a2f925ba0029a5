package record

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/xeipuuv/gojsonschema"
)

// schemas caches compiled schemas per record type.
var schemas sync.Map // reflect.Type -> *gojsonschema.Schema

// schemaFor returns the compiled JSON schema describing t.
func schemaFor(t reflect.Type) (*gojsonschema.Schema, error) {
	if s, ok := schemas.Load(t); ok {
		return s.(*gojsonschema.Schema), nil
	}

	doc := describe(t, map[reflect.Type]bool{})
	raw, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("marshal schema for %s: %w", typeName(t), err)
	}

	s, err := gojsonschema.NewSchema(gojsonschema.NewBytesLoader(raw))
	if err != nil {
		return nil, fmt.Errorf("compile schema for %s: %w", typeName(t), err)
	}

	actual, _ := schemas.LoadOrStore(t, s)
	return actual.(*gojsonschema.Schema), nil
}

// Schema returns the JSON schema document derived for T, for tooling.
func Schema[T any]() map[string]any {
	return SchemaOf(reflect.TypeOf((*T)(nil)).Elem())
}

// SchemaOf returns the JSON schema document derived for t.
func SchemaOf(t reflect.Type) map[string]any {
	return describe(t, map[reflect.Type]bool{})
}

func nullable(s map[string]any) map[string]any {
	return map[string]any{"anyOf": []any{map[string]any{"type": "null"}, s}}
}

// describe builds a JSON schema document for t. Recursive struct types stop
// at the first repetition and accept any object there.
func describe(t reflect.Type, active map[reflect.Type]bool) map[string]any {
	if t.Implements(enumType) && t.Kind() == reflect.String {
		values := reflect.Zero(t).Interface().(Enum).EnumValues()
		enum := make([]any, len(values))
		for i, v := range values {
			enum[i] = v
		}
		return map[string]any{"type": "string", "enum": enum}
	}

	if t == timeType {
		return map[string]any{"type": "string", "format": "date-time"}
	}

	switch t.Kind() {
	case reflect.Pointer:
		return nullable(describe(t.Elem(), active))
	case reflect.String:
		return map[string]any{"type": "string"}
	case reflect.Bool:
		return map[string]any{"type": "boolean"}
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return map[string]any{"type": "integer"}
	case reflect.Float32, reflect.Float64:
		return map[string]any{"type": "number"}
	case reflect.Slice, reflect.Array:
		if t.Elem().Kind() == reflect.Uint8 {
			// encoding/json writes byte slices as base64 strings.
			return nullable(map[string]any{"type": "string"})
		}
		return nullable(map[string]any{"type": "array", "items": describe(t.Elem(), active)})
	case reflect.Map:
		return nullable(map[string]any{
			"type":                 "object",
			"additionalProperties": describe(t.Elem(), active),
		})
	case reflect.Struct:
		return describeStruct(t, active)
	}

	// interface and anything else json can carry
	return map[string]any{}
}

func describeStruct(t reflect.Type, active map[reflect.Type]bool) map[string]any {
	if active[t] {
		return map[string]any{"type": "object"}
	}
	active[t] = true
	defer delete(active, t)

	properties := map[string]any{}
	required := []any{}
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		name, omitEmpty, skip := jsonField(f)
		if skip {
			continue
		}
		properties[name] = describe(f.Type, active)
		if !omitEmpty {
			required = append(required, name)
		}
	}

	s := map[string]any{
		"type":       "object",
		"properties": properties,
	}
	if len(required) > 0 {
		s["required"] = required
	}
	return s
}

// jsonField reads the encoding/json name and options of a struct field.
func jsonField(f reflect.StructField) (name string, omitEmpty, skip bool) {
	tag := f.Tag.Get("json")
	if tag == "-" {
		return "", false, true
	}
	name, opts, _ := strings.Cut(tag, ",")
	if name == "" {
		name = f.Name
	}
	for _, opt := range strings.Split(opts, ",") {
		if opt == "omitempty" || opt == "omitzero" {
			omitEmpty = true
		}
	}
	return name, omitEmpty, false
}
