package properties

import (
	"fmt"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/conneroisu/smallgears/pkg/errors"
)

func TestProperty(t *testing.T) {
	p := Prop("n", "v")

	assert.True(t, p.Equal(Prop("n", "v")))

	assert.True(t, Is[string](p))
	assert.Equal(t, "v", MustAs[any](p))
	assert.Equal(t, "v", p.Value())
	assert.Equal(t, "n", p.Name())

	p.SetValue("new")
	assert.Equal(t, "new", p.Value())
}

func TestProperty_As(t *testing.T) {
	p := Prop("n", "v")

	s, err := As[string](p)
	require.NoError(t, err)
	assert.Equal(t, "v", s)

	_, err = As[int](p)
	require.Error(t, err)
	assert.True(t, errors.IsTypeMismatch(err))
	assert.Contains(t, err.Error(), "property value v of type string cannot be typed as int")

	assert.PanicsWithError(t, err.Error(), func() { MustAs[int](p) })
}

func TestProperty_AsInterface(t *testing.T) {
	p := Prop("n", fmt.Errorf("boom"))

	got, err := As[error](p)
	require.NoError(t, err)
	assert.EqualError(t, got, "boom")

	_, err = As[fmt.Stringer](p)
	assert.Error(t, err)
}

func TestProperty_AsOr(t *testing.T) {
	tests := []struct {
		name     string
		value    any
		fallback any
		expected any
	}{
		{name: "matching type", value: "v", fallback: "fallback", expected: "v"},
		{name: "mismatched type", value: 42, fallback: "fallback", expected: "fallback"},
		{name: "nil value", value: nil, fallback: "fallback", expected: "fallback"},
		{name: "nil fallback", value: "v", fallback: nil, expected: nil},
		// the static type is any, the runtime type of the fallback decides
		{name: "runtime type of fallback", value: 7, fallback: 0, expected: 7},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, AsOr(Prop("n", tt.value), tt.fallback))
		})
	}

	assert.Equal(t, 3, AsOr(Prop("n", 3), 5))
	assert.Equal(t, 5, AsOr(Prop("n", "3"), 5))
}

func TestProperty_IsType(t *testing.T) {
	p := Prop("n", 1.5)

	assert.True(t, p.IsType(reflect.TypeFor[float64]()))
	assert.True(t, p.IsType(reflect.TypeFor[any]()))
	assert.False(t, p.IsType(reflect.TypeFor[int]()))
	assert.False(t, Named("empty").IsType(reflect.TypeFor[any]()))
	assert.False(t, Is[any](Named("empty")))
}

func TestProperty_Equal(t *testing.T) {
	assert.True(t, Prop("n", []int{1, 2}).Equal(Prop("n", []int{1, 2})))
	assert.False(t, Prop("n", 1).Equal(Prop("m", 1)))
	assert.False(t, Prop("n", 1).Equal(Prop("n", int64(1))))
	assert.True(t, Named("n").Equal(Named("n")))
	assert.False(t, Named("n").Equal(nil))
}

func TestProperty_String(t *testing.T) {
	assert.Equal(t, "Property(name=n, value=v)", Prop("n", "v").String())
	assert.Equal(t, "Property(name=n, value=<nil>)", Named("n").String())
}

func TestProperty_EmptyNamePanics(t *testing.T) {
	defer func() {
		rec := recover()
		require.NotNil(t, rec)
		err, ok := rec.(error)
		require.True(t, ok)
		assert.True(t, errors.IsConstraint(err))
	}()
	Prop("", "v")
}
