// Package errors defines the structured errors shared by the smallgears
// packages.
//
// Every failure carries an ErrorType that says who is at fault:
// constraint violations and state errors are programming errors made by the
// caller, type mismatches come from dynamically typed property values, and
// config/io errors come from the file system. Nothing in the library retries;
// errors are returned (or, for constraint violations, panicked) to the
// immediate caller.
package errors

import (
	"errors"
	"fmt"
	"maps"
	"sort"
	"strings"
)

// ErrorType represents different categories of errors.
type ErrorType string

const (
	ErrorTypeConstraint   ErrorType = "constraint"
	ErrorTypeTypeMismatch ErrorType = "type_mismatch"
	ErrorTypeState        ErrorType = "state"
	ErrorTypeConfig       ErrorType = "config"
	ErrorTypeIO           ErrorType = "io"
)

// Common error codes.
const (
	ErrCodeNilArgument      = "ERR_NIL_ARGUMENT"
	ErrCodeEmptyName        = "ERR_EMPTY_NAME"
	ErrCodeTypeMismatch     = "ERR_TYPE_MISMATCH"
	ErrCodeNotFound         = "ERR_NOT_FOUND"
	ErrCodeInvalidLocation  = "ERR_INVALID_LOCATION"
	ErrCodeConfigNotFound   = "ERR_CONFIG_NOT_FOUND"
	ErrCodeConfigUnreadable = "ERR_CONFIG_UNREADABLE"
	ErrCodeLoadFailed       = "ERR_LOAD_FAILED"
	ErrCodeSaveFailed       = "ERR_SAVE_FAILED"
	ErrCodeInvalidTarget    = "ERR_INVALID_TARGET"
	ErrCodeKeyCollision     = "ERR_KEY_COLLISION"
)

// Error is a structured error type with context.
type Error struct {
	Type    ErrorType
	Code    string
	Message string
	Cause   error
	Context map[string]any
}

// Error implements the error interface.
func (e *Error) Error() string {
	var parts []string

	if e.Code != "" {
		parts = append(parts, fmt.Sprintf("[%s]", e.Code))
	}

	parts = append(parts, e.Message)

	result := strings.Join(parts, " ")

	if e.Cause != nil {
		result += fmt.Sprintf(": %v", e.Cause)
	}

	return result
}

// Unwrap returns the underlying cause error.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target is an *Error with the same type and code.
func (e *Error) Is(target error) bool {
	var t *Error
	if errors.As(target, &t) {
		return e.Type == t.Type && e.Code == t.Code
	}

	return false
}

// WithContext returns a copy of the error with context information added.
// The receiver is left untouched, so shared errors such as sentinels can be
// decorated safely.
func (e *Error) WithContext(key string, value any) *Error {
	c := *e
	c.Context = make(map[string]any, len(e.Context)+1)
	maps.Copy(c.Context, e.Context)
	c.Context[key] = value

	return &c
}

// Fields flattens the context into alternating key/value pairs, sorted by
// key, in the shape logging.Logger expects.
func (e *Error) Fields() []any {
	keys := make([]string, 0, len(e.Context))
	for k := range e.Context {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	fields := make([]any, 0, 2*len(keys)+4)
	fields = append(fields, "error_type", string(e.Type), "error_code", e.Code)
	for _, k := range keys {
		fields = append(fields, k, e.Context[k])
	}

	return fields
}

// Error creation functions

// NewConstraintError creates a constraint violation: a programming error
// such as a nil argument.
func NewConstraintError(code, message string) *Error {
	return &Error{
		Type:    ErrorTypeConstraint,
		Code:    code,
		Message: message,
	}
}

// NewTypeMismatchError creates a type-mismatch error for a dynamically typed
// value that does not have the requested type.
func NewTypeMismatchError(value any, requested string) *Error {
	actual := fmt.Sprintf("%T", value)
	return (&Error{
		Type: ErrorTypeTypeMismatch,
		Code: ErrCodeTypeMismatch,
		Message: fmt.Sprintf("property value %v of type %s cannot be typed as %s",
			value, actual, requested),
	}).
		WithContext("value", value).
		WithContext("actual_type", actual).
		WithContext("requested_type", requested)
}

// NewStateError creates an error for an operation invalid in the current
// state, such as dereferencing a missing key.
func NewStateError(code, message string) *Error {
	return &Error{
		Type:    ErrorTypeState,
		Code:    code,
		Message: message,
	}
}

// NewConfigError creates a configuration error.
func NewConfigError(code, message string) *Error {
	return &Error{
		Type:    ErrorTypeConfig,
		Code:    code,
		Message: message,
	}
}

// NewIOError creates an I/O error.
func NewIOError(code, message string, cause error) *Error {
	return &Error{
		Type:    ErrorTypeIO,
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// Unchecked wraps cause with msg. A cause that is already a constraint,
// state or config error keeps its type, anything else becomes an I/O error.
func Unchecked(code, msg string, cause error) *Error {
	msg += " (see cause)"

	var se *Error
	if errors.As(cause, &se) {
		switch se.Type {
		case ErrorTypeConstraint, ErrorTypeState, ErrorTypeConfig:
			return &Error{Type: se.Type, Code: code, Message: msg, Cause: cause}
		}
	}

	return NewIOError(code, msg, cause)
}

// TypeOf returns the ErrorType of err, or "" if err is not an *Error.
func TypeOf(err error) ErrorType {
	var se *Error
	if errors.As(err, &se) {
		return se.Type
	}

	return ""
}

// IsConstraint checks if an error is a constraint violation.
func IsConstraint(err error) bool {
	return TypeOf(err) == ErrorTypeConstraint
}

// IsTypeMismatch checks if an error is a type mismatch.
func IsTypeMismatch(err error) bool {
	return TypeOf(err) == ErrorTypeTypeMismatch
}

// IsConfig checks if an error is a configuration error.
func IsConfig(err error) bool {
	return TypeOf(err) == ErrorTypeConfig
}
