package errors

import "reflect"

// Require panics with a constraint violation when cond is false.
func Require(cond bool, code, message string) {
	if !cond {
		panic(NewConstraintError(code, message))
	}
}

// RequireNonNil panics with a constraint violation when v is nil, including
// typed nil pointers, maps, slices, funcs, channels and interfaces.
func RequireNonNil(v any, what string) {
	if IsNil(v) {
		panic(NewConstraintError(ErrCodeNilArgument, what+" must not be nil").
			WithContext("argument", what))
	}
}

// IsNil reports whether v is nil or a typed nil.
func IsNil(v any) bool {
	if v == nil {
		return true
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Func,
		reflect.Chan, reflect.Interface, reflect.UnsafePointer:
		return rv.IsNil()
	default:
		return false
	}
}
