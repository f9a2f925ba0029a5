package record

import (
	"encoding/binary"
	"math"
	"reflect"
	"slices"
	"time"

	"github.com/cespare/xxhash/v2"
)

// Hash returns a 64-bit hash of v consistent with Equal: equal values always
// hash equally.
func Hash[T any](v T) uint64 {
	d := xxhash.New()
	writeValue(d, reflect.ValueOf(any(v)), false)
	return d.Sum64()
}

// Value tags keep differently shaped values from colliding trivially.
const (
	tagEmpty  = 'n'
	tagTime   = 't'
	tagBool   = 'b'
	tagInt    = 'i'
	tagUint   = 'u'
	tagFloat  = 'f'
	tagString = 's'
	tagList   = 'l'
	tagMap    = 'm'
	tagStruct = 'o'
)

var canonicalNaN = math.Float64frombits(0x7ff8000000000001)

func writeTag(d *xxhash.Digest, tag byte) {
	_, _ = d.Write([]byte{tag})
}

func writeUint64(d *xxhash.Digest, n uint64) {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], n)
	_, _ = d.Write(buf[:])
}

func writeFloat(d *xxhash.Digest, f float64) {
	switch {
	case math.IsNaN(f):
		f = canonicalNaN
	case f == 0:
		f = 0 // folds -0 into +0
	}
	writeTag(d, tagFloat)
	writeUint64(d, math.Float64bits(f))
}

func writeValue(d *xxhash.Digest, v reflect.Value, loose bool) {
	v, crossed := unwrap(v)
	loose = loose || crossed

	if isEmpty(v) {
		writeTag(d, tagEmpty)
		return
	}

	if v.Type() == timeType {
		t := v.Interface().(time.Time)
		writeTag(d, tagTime)
		writeUint64(d, uint64(t.Unix()))
		writeUint64(d, uint64(t.Nanosecond()))
		return
	}

	k := v.Kind()
	switch {
	case isNumber(k) && loose:
		writeFloat(d, toFloat(v))
	case isInt(k):
		writeTag(d, tagInt)
		writeUint64(d, uint64(v.Int()))
	case isUint(k):
		writeTag(d, tagUint)
		writeUint64(d, v.Uint())
	case k == reflect.Float32 || k == reflect.Float64:
		writeFloat(d, v.Float())
	case isList(k):
		writeTag(d, tagList)
		writeUint64(d, uint64(v.Len()))
		for i := 0; i < v.Len(); i++ {
			writeValue(d, v.Index(i), loose)
		}
	case k == reflect.String:
		s := v.String()
		writeTag(d, tagString)
		writeUint64(d, uint64(len(s)))
		_, _ = d.WriteString(s)
	case k == reflect.Bool:
		writeTag(d, tagBool)
		if v.Bool() {
			writeTag(d, 1)
		} else {
			writeTag(d, 0)
		}
	case k == reflect.Complex64 || k == reflect.Complex128:
		c := v.Complex()
		writeFloat(d, real(c))
		writeFloat(d, imag(c))
	case k == reflect.Map:
		writeMap(d, v, loose)
	case k == reflect.Struct:
		writeTag(d, tagStruct)
		for i := 0; i < v.NumField(); i++ {
			if !v.Type().Field(i).IsExported() {
				continue
			}
			writeValue(d, v.Field(i), loose)
		}
	}
}

// writeMap hashes each entry separately and feeds the sorted entry hashes,
// so iteration order never matters.
func writeMap(d *xxhash.Digest, v reflect.Value, loose bool) {
	entries := make([]uint64, 0, v.Len())
	iter := v.MapRange()
	for iter.Next() {
		ed := xxhash.New()
		writeValue(ed, iter.Key(), loose)
		writeValue(ed, iter.Value(), loose)
		entries = append(entries, ed.Sum64())
	}
	slices.Sort(entries)

	writeTag(d, tagMap)
	writeUint64(d, uint64(len(entries)))
	for _, e := range entries {
		writeUint64(d, e)
	}
}
