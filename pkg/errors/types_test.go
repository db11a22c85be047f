package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorError(t *testing.T) {
	tests := []struct {
		name     string
		err      *Error
		expected string
	}{
		{
			name:     "message only",
			err:      &Error{Message: "boom"},
			expected: "boom",
		},
		{
			name:     "code and message",
			err:      NewStateError(ErrCodeNotFound, "no property named x"),
			expected: "[ERR_NOT_FOUND] no property named x",
		},
		{
			name:     "with cause",
			err:      NewIOError(ErrCodeLoadFailed, "cannot load", fmt.Errorf("eof")),
			expected: "[ERR_LOAD_FAILED] cannot load: eof",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.err.Error())
		})
	}
}

func TestErrorIs(t *testing.T) {
	err := fmt.Errorf("lookup: %w", NewStateError(ErrCodeNotFound, "no property named a"))

	assert.True(t, errors.Is(err, NewStateError(ErrCodeNotFound, "")))
	assert.False(t, errors.Is(err, NewStateError(ErrCodeEmptyName, "")))
	assert.False(t, errors.Is(err, NewConfigError(ErrCodeNotFound, "")))
}

func TestErrorUnwrap(t *testing.T) {
	cause := errors.New("disk on fire")
	err := NewIOError(ErrCodeSaveFailed, "cannot save", cause)

	assert.Same(t, cause, err.Unwrap())
	assert.True(t, errors.Is(err, cause))
}

func TestNewTypeMismatchError(t *testing.T) {
	err := NewTypeMismatchError("v", "int")

	assert.Equal(t, ErrorTypeTypeMismatch, err.Type)
	assert.Contains(t, err.Error(), "property value v of type string cannot be typed as int")
	assert.Equal(t, "string", err.Context["actual_type"])
	assert.Equal(t, "int", err.Context["requested_type"])
	assert.Equal(t, "v", err.Context["value"])
	assert.True(t, IsTypeMismatch(err))
}

func TestUnchecked(t *testing.T) {
	t.Run("plain cause becomes io", func(t *testing.T) {
		cause := errors.New("unexpected EOF")
		err := Unchecked(ErrCodeLoadFailed, "cannot load configuration", cause)

		assert.Equal(t, ErrorTypeIO, err.Type)
		assert.Equal(t, "cannot load configuration (see cause)", err.Message)
		assert.ErrorIs(t, err, cause)
	})

	t.Run("config cause keeps its type", func(t *testing.T) {
		cause := NewConfigError(ErrCodeInvalidLocation, "bad dir")
		err := Unchecked(ErrCodeConfigUnreadable, "cannot read", cause)

		assert.Equal(t, ErrorTypeConfig, err.Type)
		assert.True(t, IsConfig(err))
	})
}

func TestFields(t *testing.T) {
	err := NewConstraintError(ErrCodeNilArgument, "x").
		WithContext("b", 2).
		WithContext("a", 1)

	assert.Equal(t,
		[]any{"error_type", "constraint", "error_code", ErrCodeNilArgument, "a", 1, "b", 2},
		err.Fields())
}

func TestWithContextCopies(t *testing.T) {
	base := NewStateError(ErrCodeNotFound, "missing").WithContext("a", 1)

	derived := base.WithContext("b", 2)

	assert.Equal(t, map[string]any{"a": 1}, base.Context)
	assert.Equal(t, map[string]any{"a": 1, "b": 2}, derived.Context)
	assert.True(t, errors.Is(derived, base))
}

func TestRequireNonNil(t *testing.T) {
	var nilPtr *int
	var nilMap map[string]int
	var nilFunc func()

	for name, v := range map[string]any{
		"untyped": nil,
		"pointer": nilPtr,
		"map":     nilMap,
		"func":    nilFunc,
	} {
		t.Run(name, func(t *testing.T) {
			defer func() {
				rec := recover()
				require.NotNil(t, rec)
				err, ok := rec.(*Error)
				require.True(t, ok)
				assert.True(t, IsConstraint(err))
			}()
			RequireNonNil(v, name)
		})
	}

	assert.NotPanics(t, func() { RequireNonNil(0, "zero int") })
	assert.NotPanics(t, func() { RequireNonNil("", "empty string") })
}

func TestRequire(t *testing.T) {
	assert.NotPanics(t, func() { Require(true, ErrCodeEmptyName, "fine") })
	assert.PanicsWithError(t, "[ERR_EMPTY_NAME] name must not be empty", func() {
		Require(false, ErrCodeEmptyName, "name must not be empty")
	})
}
