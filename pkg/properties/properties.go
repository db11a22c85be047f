package properties

import (
	"iter"

	"github.com/go-viper/mapstructure/v2"

	"github.com/conneroisu/smallgears/pkg/errors"
	"github.com/conneroisu/smallgears/pkg/group"
)

// ErrPropertyNotFound matches, with errors.Is, the error returned when a
// property is looked up by a name the group does not have. It is meant for
// matching only; WithContext on it returns a copy.
var ErrPropertyNotFound = errors.NewStateError(errors.ErrCodeNotFound, "property not found")

// Properties is a mutable group of uniquely named properties.
type Properties struct {
	*group.Group[*Property, *Properties]
}

// New creates a group of initial properties.
func New(props ...*Property) *Properties {
	ps := &Properties{}
	ps.Group = group.New(ps, (*Property).Name)
	return ps.Add(props...)
}

// FromMap creates a group with a property for each entry of values.
func FromMap(values map[string]any) *Properties {
	ps := New()
	for name, value := range values {
		ps.Add(Prop(name, value))
	}
	return ps
}

// AddNames adds a valueless property for each name.
func (ps *Properties) AddNames(names ...string) *Properties {
	for _, name := range names {
		ps.Add(Named(name))
	}
	return ps
}

// AddNamesFrom adds a valueless property for each name of seq.
func (ps *Properties) AddNamesFrom(seq iter.Seq[string]) *Properties {
	errors.RequireNonNil(seq, "names")
	for name := range seq {
		ps.Add(Named(name))
	}
	return ps
}

// Lookup returns the property with a given name, or an error matching
// ErrPropertyNotFound.
func (ps *Properties) Lookup(name string) (*Property, error) {
	if p, ok := ps.Get(name); ok {
		return p, nil
	}
	return nil, errors.NewStateError(errors.ErrCodeNotFound, "no property named "+name).
		WithContext("property", name)
}

// MustProp returns the property with a given name and panics if there is
// none. Callers that cannot be sure of the name use Get, GetOr or PropOr.
func (ps *Properties) MustProp(name string) *Property {
	p, err := ps.Lookup(name)
	if err != nil {
		panic(err)
	}
	return p
}

// PropOr returns the property with a given name, or a new property with
// that name and the fallback value. The new property is not added.
func (ps *Properties) PropOr(name string, fallback any) *Property {
	if p, ok := ps.Get(name); ok {
		return p
	}
	return Prop(name, fallback)
}

// Map returns the names and values of the properties in a detached map.
func (ps *Properties) Map() map[string]any {
	values := make(map[string]any, ps.Size())
	for p := range ps.All() {
		values[p.Name()] = p.Value()
	}
	return values
}

// Decode decodes the property values into target, a pointer to a struct or
// map, matching property names to `mapstructure` tags.
func (ps *Properties) Decode(target any) error {
	errors.RequireNonNil(target, "target")

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           target,
		WeaklyTypedInput: true,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		),
	})
	if err != nil {
		return &errors.Error{
			Type:    errors.ErrorTypeConstraint,
			Code:    errors.ErrCodeInvalidTarget,
			Message: "invalid decode target",
			Cause:   err,
		}
	}

	if err := decoder.Decode(ps.Map()); err != nil {
		return &errors.Error{
			Type:    errors.ErrorTypeTypeMismatch,
			Code:    errors.ErrCodeTypeMismatch,
			Message: "cannot decode properties",
			Cause:   err,
		}
	}
	return nil
}

// ValueAs looks up a property by name and returns its value typed as T.
func ValueAs[T any](ps *Properties, name string) (T, error) {
	p, err := ps.Lookup(name)
	if err != nil {
		var zero T
		return zero, err
	}
	return As[T](p)
}
