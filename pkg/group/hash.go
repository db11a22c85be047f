package group

import (
	"encoding/binary"
	"math"
	"reflect"

	"github.com/cespare/xxhash/v2"

	"github.com/conneroisu/smallgears/pkg/errors"
)

// Hasher is implemented by elements that hash themselves. A type whose Equal
// method is looser than reflect.DeepEqual must implement it so that equal
// elements hash alike.
type Hasher interface {
	Hash() uint64
}

// HashOf hashes v structurally, agreeing with reflect.DeepEqual: pointers
// and interfaces are followed, map entries are combined regardless of
// order, and cycles terminate.
func HashOf(v any) uint64 {
	d := xxhash.New()
	writeValue(d, reflect.ValueOf(v), map[uintptr]struct{}{})
	return d.Sum64()
}

func hashElement[E any](e E) uint64 {
	if h, ok := any(e).(Hasher); ok && !errors.IsNil(e) {
		return h.Hash()
	}
	return HashOf(e)
}

func writeUint64(d *xxhash.Digest, n uint64) {
	_, _ = d.Write(binary.LittleEndian.AppendUint64(nil, n))
}

func writeTag(d *xxhash.Digest, tag string) {
	_, _ = d.WriteString(tag)
	_, _ = d.Write([]byte{0})
}

// writeValue only uses kind accessors, which work on unexported fields.
func writeValue(d *xxhash.Digest, v reflect.Value, seen map[uintptr]struct{}) {
	if !v.IsValid() {
		writeTag(d, "nil")
		return
	}
	writeTag(d, v.Type().String())

	switch v.Kind() {
	case reflect.Pointer:
		if v.IsNil() {
			writeTag(d, "nil")
			return
		}
		if !enter(v.Pointer(), seen) {
			writeTag(d, "cycle")
			return
		}
		defer delete(seen, v.Pointer())
		writeValue(d, v.Elem(), seen)

	case reflect.Interface:
		if v.IsNil() {
			writeTag(d, "nil")
			return
		}
		writeValue(d, v.Elem(), seen)

	case reflect.Struct:
		for i := range v.NumField() {
			writeValue(d, v.Field(i), seen)
		}

	case reflect.Slice, reflect.Array:
		if v.Kind() == reflect.Slice && v.IsNil() {
			writeTag(d, "nil")
			return
		}
		writeUint64(d, uint64(v.Len()))
		for i := range v.Len() {
			writeValue(d, v.Index(i), seen)
		}

	case reflect.Map:
		if v.IsNil() {
			writeTag(d, "nil")
			return
		}
		if !enter(v.Pointer(), seen) {
			writeTag(d, "cycle")
			return
		}
		defer delete(seen, v.Pointer())

		var sum uint64
		iter := v.MapRange()
		for iter.Next() {
			entry := xxhash.New()
			writeValue(entry, iter.Key(), seen)
			writeValue(entry, iter.Value(), seen)
			sum += entry.Sum64()
		}
		writeUint64(d, uint64(v.Len()))
		writeUint64(d, sum)

	case reflect.Bool:
		if v.Bool() {
			writeUint64(d, 1)
		} else {
			writeUint64(d, 0)
		}

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		writeUint64(d, uint64(v.Int()))

	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		writeUint64(d, v.Uint())

	case reflect.Float32, reflect.Float64:
		writeFloat(d, v.Float())

	case reflect.Complex64, reflect.Complex128:
		c := v.Complex()
		writeFloat(d, real(c))
		writeFloat(d, imag(c))

	case reflect.String:
		_, _ = d.WriteString(v.String())

	case reflect.Chan, reflect.UnsafePointer:
		writeUint64(d, uint64(v.Pointer()))

	case reflect.Func:
		// non-nil funcs are never deeply equal
		writeUint64(d, uint64(v.Pointer()))
	}
}

// writeFloat makes 0 and -0, which compare equal, hash alike.
func writeFloat(d *xxhash.Digest, f float64) {
	if f == 0 {
		f = 0
	}
	writeUint64(d, math.Float64bits(f))
}

func enter(p uintptr, seen map[uintptr]struct{}) bool {
	if _, ok := seen[p]; ok {
		return false
	}
	seen[p] = struct{}{}
	return true
}
