// Package properties provides named, mutable, dynamically typed values and
// a group to hold them.
package properties

import (
	"encoding/binary"
	"fmt"
	"reflect"
	"sync"

	"github.com/cespare/xxhash/v2"

	"github.com/conneroisu/smallgears/pkg/errors"
	"github.com/conneroisu/smallgears/pkg/group"
)

// Property is a named property with a mutable, arbitrarily typed value.
// The name never changes; the value may be replaced at any time and may be
// nil.
type Property struct {
	name  string
	mu    sync.RWMutex
	value any
}

// Named creates a property without a value.
func Named(name string) *Property {
	return Prop(name, nil)
}

// Prop creates a property with an initial value. An empty name is a
// constraint violation.
func Prop(name string, value any) *Property {
	errors.Require(name != "", errors.ErrCodeEmptyName, "property name must not be empty")

	return &Property{name: name, value: value}
}

// Name returns the name of the property.
func (p *Property) Name() string {
	return p.name
}

// Value returns the current value of the property.
func (p *Property) Value() any {
	p.mu.RLock()
	defer p.mu.RUnlock()

	return p.value
}

// SetValue replaces the value of the property.
func (p *Property) SetValue(value any) *Property {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.value = value
	return p
}

// IsType reports whether the value is an instance of t: its type is t, or
// t is an interface the value implements. A nil value has no type.
func (p *Property) IsType(t reflect.Type) bool {
	v := p.Value()
	if v == nil || t == nil {
		return false
	}
	return reflect.TypeOf(v).AssignableTo(t)
}

// Equal reports whether other has the same name and value.
func (p *Property) Equal(other *Property) bool {
	if p == nil || other == nil {
		return p == other
	}
	if p == other {
		return true
	}
	return p.name == other.name && reflect.DeepEqual(p.Value(), other.Value())
}

// Hash returns a hash consistent with Equal. Pointer values are hashed by
// what they point to.
func (p *Property) Hash() uint64 {
	d := xxhash.New()
	_, _ = d.WriteString(p.name)
	_, _ = d.Write(binary.LittleEndian.AppendUint64([]byte{0}, group.HashOf(p.Value())))
	return d.Sum64()
}

// String implements fmt.Stringer.
func (p *Property) String() string {
	return fmt.Sprintf("Property(name=%s, value=%v)", p.name, p.Value())
}

// As returns the value of p typed as T, or a type-mismatch error naming the
// value, its runtime type and T.
func As[T any](p *Property) (T, error) {
	v := p.Value()
	if typed, ok := v.(T); ok {
		return typed, nil
	}

	var zero T
	return zero, errors.NewTypeMismatchError(v, typeName[T]()).
		WithContext("property", p.name)
}

// MustAs is like As but panics on a type mismatch.
func MustAs[T any](p *Property) T {
	v, err := As[T](p)
	if err != nil {
		panic(err)
	}
	return v
}

// AsOr returns the value of p if it is an instance of the runtime type of
// fallback, and fallback otherwise.
func AsOr[T any](p *Property, fallback T) T {
	ft := reflect.TypeOf(any(fallback))
	if ft == nil || !p.IsType(ft) {
		return fallback
	}
	if typed, ok := p.Value().(T); ok {
		return typed
	}
	return fallback
}

// Is reports whether the value of p is an instance of T.
func Is[T any](p *Property) bool {
	_, ok := p.Value().(T)
	return ok
}

func typeName[T any]() string {
	return reflect.TypeFor[T]().String()
}
