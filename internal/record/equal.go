package record

import (
	"math"
	"reflect"
	"time"
)

// Equal reports whether a and b are structurally equal.
//
// Exported struct fields are compared one by one. Nil and empty collections
// are equal, nil pointers equal only other absent values, and time.Time
// values compare by instant. Values reached through an interface (free-form
// payloads such as map[string]any) compare loosely: numbers by numeric value
// and collections by content, so a payload survives a JSON round trip.
func Equal[T any](a, b T) bool {
	return equalValues(reflect.ValueOf(any(a)), reflect.ValueOf(any(b)), false)
}

// unwrap follows pointers and interfaces. A nil pointer or interface yields
// the zero Value. The returned flag is true if an interface was crossed.
func unwrap(v reflect.Value) (reflect.Value, bool) {
	loose := false
	for v.IsValid() {
		switch v.Kind() {
		case reflect.Interface:
			loose = true
			fallthrough
		case reflect.Pointer:
			if v.IsNil() {
				return reflect.Value{}, loose
			}
			v = v.Elem()
			continue
		}
		break
	}
	return v, loose
}

// isEmpty reports whether v is absent or a collection with no elements.
func isEmpty(v reflect.Value) bool {
	if !v.IsValid() {
		return true
	}
	switch v.Kind() {
	case reflect.Slice, reflect.Map, reflect.Array:
		return v.Len() == 0
	}
	return false
}

func isNumber(k reflect.Kind) bool {
	return isInt(k) || isUint(k) || k == reflect.Float32 || k == reflect.Float64
}

func isInt(k reflect.Kind) bool {
	return k >= reflect.Int && k <= reflect.Int64
}

func isUint(k reflect.Kind) bool {
	return k >= reflect.Uint && k <= reflect.Uintptr
}

func isList(k reflect.Kind) bool {
	return k == reflect.Slice || k == reflect.Array
}

// toFloat converts any numeric value to float64.
func toFloat(v reflect.Value) float64 {
	switch {
	case isInt(v.Kind()):
		return float64(v.Int())
	case isUint(v.Kind()):
		return float64(v.Uint())
	default:
		return v.Float()
	}
}

func floatEqual(a, b float64) bool {
	return a == b || (math.IsNaN(a) && math.IsNaN(b))
}

func equalValues(a, b reflect.Value, loose bool) bool {
	a, la := unwrap(a)
	b, lb := unwrap(b)
	loose = loose || la || lb

	if isEmpty(a) || isEmpty(b) {
		return isEmpty(a) && isEmpty(b)
	}

	if a.Type() == timeType || b.Type() == timeType {
		if a.Type() != b.Type() {
			return false
		}
		return a.Interface().(time.Time).Equal(b.Interface().(time.Time))
	}

	ka, kb := a.Kind(), b.Kind()

	if isNumber(ka) || isNumber(kb) {
		if !isNumber(ka) || !isNumber(kb) {
			return false
		}
		if loose || ka != kb {
			return floatEqual(toFloat(a), toFloat(b))
		}
		switch {
		case isInt(ka):
			return a.Int() == b.Int()
		case isUint(ka):
			return a.Uint() == b.Uint()
		default:
			return floatEqual(a.Float(), b.Float())
		}
	}

	if isList(ka) && isList(kb) {
		if a.Len() != b.Len() {
			return false
		}
		for i := 0; i < a.Len(); i++ {
			if !equalValues(a.Index(i), b.Index(i), loose) {
				return false
			}
		}
		return true
	}

	if ka != kb {
		return false
	}

	switch ka {
	case reflect.String:
		return a.String() == b.String()
	case reflect.Bool:
		return a.Bool() == b.Bool()
	case reflect.Complex64, reflect.Complex128:
		ca, cb := a.Complex(), b.Complex()
		return floatEqual(real(ca), real(cb)) && floatEqual(imag(ca), imag(cb))
	case reflect.Map:
		return equalMaps(a, b, loose)
	case reflect.Struct:
		if a.Type() != b.Type() {
			return false
		}
		for i := 0; i < a.NumField(); i++ {
			if !a.Type().Field(i).IsExported() {
				continue
			}
			if !equalValues(a.Field(i), b.Field(i), loose) {
				return false
			}
		}
		return true
	}
	return false
}

func equalMaps(a, b reflect.Value, loose bool) bool {
	if a.Len() != b.Len() {
		return false
	}
	bKey := b.Type().Key()
	for _, ak := range a.MapKeys() {
		bk := ak
		switch {
		case ak.Type() == bKey:
		case ak.Kind() == reflect.String && bKey.Kind() == reflect.String:
			bk = reflect.ValueOf(ak.String()).Convert(bKey)
		default:
			return false
		}
		bv := b.MapIndex(bk)
		if !bv.IsValid() {
			return false
		}
		if !equalValues(a.MapIndex(ak), bv, loose) {
			return false
		}
	}
	return true
}
