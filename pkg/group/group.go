// Package group provides a mutable, concurrency-safe collection of uniquely
// named elements, meant to be embedded by types that add their own API and
// admission policy.
//
// A Group derives each element's key with a Naming function fixed at
// construction. Embedding types bind the S parameter to themselves so that
// every fluent method returns the embedding type:
//
//	type Users struct{ *group.Group[User, *Users] }
//
//	func NewUsers() *Users {
//	    u := &Users{}
//	    u.Group = group.New(u, func(x User) string { return x.ID })
//	    return u
//	}
//
//	users := NewUsers().Add(alice, bob).Remove(carol)
//
// Embedding types may implement AddHook and RemoveHook to accept, reject or
// protect elements. Every mutation, including the bulk forms, goes through
// the hooks one element at a time.
package group

import (
	"fmt"
	"iter"
	"reflect"
	"sort"
	"strings"
	"sync"

	"github.com/cespare/xxhash/v2"

	"github.com/conneroisu/smallgears/pkg/errors"
)

// Naming derives the key of an element. It must be pure and total.
type Naming[E any] func(E) string

// Container is anything that can list its elements and their names.
// Every Group, and every type embedding one, is a Container.
type Container[E any] interface {
	Elements() []E
	Names() []string
}

// AddHook is implemented by embedding types that want a say over which
// elements are stored. OnAdd calls store to admit e; not calling it drops e
// silently.
type AddHook[E any] interface {
	OnAdd(e E, store func(E))
}

// RemoveHook is implemented by embedding types that want to protect keys.
// OnRemove calls remove to delete the key; not calling it keeps the key.
type RemoveHook interface {
	OnRemove(name string, remove func(string))
}

// Group is a set of elements keyed by name. It is safe for concurrent use.
// Single operations are atomic; bulk operations are sequences of single
// operations, so concurrent readers may observe a partially applied batch.
type Group[E any, S any] struct {
	self     S
	naming   Naming[E]
	mu       sync.RWMutex
	elements map[string]E
}

// New creates an empty group. self is the value returned by fluent methods
// and is checked for hooks; naming derives keys. Both must be non-nil.
func New[E any, S any](self S, naming Naming[E]) *Group[E, S] {
	errors.RequireNonNil(self, "self")
	errors.RequireNonNil(naming, "naming function")

	return &Group[E, S]{
		self:     self,
		naming:   naming,
		elements: make(map[string]E),
	}
}

// Add adds elements to this group, in order. An element whose key is
// already present replaces the stored one.
func (g *Group[E, S]) Add(elems ...E) S {
	for _, e := range elems {
		g.add(e)
	}
	return g.self
}

// AddAll adds every element of seq to this group.
func (g *Group[E, S]) AddAll(seq iter.Seq[E]) S {
	errors.RequireNonNil(seq, "elements")
	for e := range seq {
		g.add(e)
	}
	return g.self
}

// AddGroup adds the elements of another group to this group.
func (g *Group[E, S]) AddGroup(other Container[E]) S {
	errors.RequireNonNil(other, "group")
	return g.Add(other.Elements()...)
}

// Remove removes elements from this group, by their derived keys.
func (g *Group[E, S]) Remove(elems ...E) S {
	for _, e := range elems {
		errors.RequireNonNil(e, "element")
		g.remove(g.naming(e))
	}
	return g.self
}

// RemoveAll removes every element of seq from this group.
func (g *Group[E, S]) RemoveAll(seq iter.Seq[E]) S {
	errors.RequireNonNil(seq, "elements")
	for e := range seq {
		g.Remove(e)
	}
	return g.self
}

// RemoveGroup removes the elements of another group from this group. Keys
// are derived with this group's naming, not taken from other.
func (g *Group[E, S]) RemoveGroup(other Container[E]) S {
	errors.RequireNonNil(other, "group")
	return g.Remove(other.Elements()...)
}

// RemoveNames removes elements by name. Absent names are ignored.
func (g *Group[E, S]) RemoveNames(names ...string) S {
	for _, name := range names {
		g.remove(name)
	}
	return g.self
}

// RemoveNamesFrom removes every name of seq from this group.
func (g *Group[E, S]) RemoveNamesFrom(seq iter.Seq[string]) S {
	errors.RequireNonNil(seq, "names")
	for name := range seq {
		g.remove(name)
	}
	return g.self
}

// Has reports whether this group has elements with all the given names.
func (g *Group[E, S]) Has(names ...string) bool {
	g.mu.RLock()
	defer g.mu.RUnlock()

	for _, name := range names {
		if _, ok := g.elements[name]; !ok {
			return false
		}
	}
	return true
}

// HasNamesFrom reports whether this group has elements with all the names
// of seq.
func (g *Group[E, S]) HasNamesFrom(seq iter.Seq[string]) bool {
	errors.RequireNonNil(seq, "names")
	for name := range seq {
		if !g.Has(name) {
			return false
		}
	}
	return true
}

// HasElements reports whether this group has elements under the keys of all
// the given elements. Only keys are compared, not the stored values.
func (g *Group[E, S]) HasElements(elems ...E) bool {
	for _, e := range elems {
		errors.RequireNonNil(e, "element")
		if !g.Has(g.naming(e)) {
			return false
		}
	}
	return true
}

// Contains reports whether every element of seq is stored in this group,
// comparing values rather than keys.
func (g *Group[E, S]) Contains(seq iter.Seq[E]) bool {
	errors.RequireNonNil(seq, "elements")
	for e := range seq {
		if !g.containsValue(e) {
			return false
		}
	}
	return true
}

// HasGroup reports whether this group has every name of another group.
func (g *Group[E, S]) HasGroup(other Container[E]) bool {
	errors.RequireNonNil(other, "group")
	return g.Has(other.Names()...)
}

// Get returns the element with a given name.
func (g *Group[E, S]) Get(name string) (E, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	e, ok := g.elements[name]
	return e, ok
}

// GetOr returns the element with a given name, or fallback if there is none.
func (g *Group[E, S]) GetOr(name string, fallback E) E {
	if e, ok := g.Get(name); ok {
		return e
	}
	return fallback
}

// Size returns the number of elements in this group.
func (g *Group[E, S]) Size() int {
	g.mu.RLock()
	defer g.mu.RUnlock()

	return len(g.elements)
}

// Empty reports whether there are no elements in this group.
func (g *Group[E, S]) Empty() bool {
	return g.Size() == 0
}

// Elements returns the elements of this group in a detached slice, ordered
// by name.
func (g *Group[E, S]) Elements() []E {
	g.mu.RLock()
	defer g.mu.RUnlock()

	names := g.sortedNames()
	result := make([]E, 0, len(names))
	for _, name := range names {
		result = append(result, g.elements[name])
	}
	return result
}

// Names returns the names of the elements of this group in a detached,
// sorted slice.
func (g *Group[E, S]) Names() []string {
	g.mu.RLock()
	defer g.mu.RUnlock()

	return g.sortedNames()
}

// All iterates over a snapshot of the elements of this group.
func (g *Group[E, S]) All() iter.Seq[E] {
	elems := g.Elements()
	return func(yield func(E) bool) {
		for _, e := range elems {
			if !yield(e) {
				return
			}
		}
	}
}

// Equal reports whether other holds the same name/element pairs as this
// group.
func (g *Group[E, S]) Equal(other Container[E]) bool {
	if errors.IsNil(other) {
		return false
	}

	theirs := other.Elements()

	g.mu.RLock()
	defer g.mu.RUnlock()

	if len(theirs) != len(g.elements) {
		return false
	}
	for _, e := range theirs {
		mine, ok := g.elements[g.naming(e)]
		if !ok || !equal(mine, e) {
			return false
		}
	}
	return true
}

// Hash returns a hash of the contents of this group, consistent with
// Equal. Elements implementing Hasher hash themselves; the others are
// hashed structurally with HashOf.
func (g *Group[E, S]) Hash() uint64 {
	g.mu.RLock()
	defer g.mu.RUnlock()

	d := xxhash.New()
	for _, name := range g.sortedNames() {
		writeTag(d, name)
		writeUint64(d, hashElement(g.elements[name]))
	}
	return d.Sum64()
}

// String renders the group as [name=element,...], ordered by name.
func (g *Group[E, S]) String() string {
	g.mu.RLock()
	defer g.mu.RUnlock()

	names := g.sortedNames()
	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, fmt.Sprintf("%s=%v", name, g.elements[name]))
	}
	return "[" + strings.Join(parts, ",") + "]"
}

func (g *Group[E, S]) add(e E) {
	errors.RequireNonNil(e, "element")

	if hook, ok := any(g.self).(AddHook[E]); ok {
		hook.OnAdd(e, g.store)
		return
	}
	g.store(e)
}

func (g *Group[E, S]) store(e E) {
	errors.RequireNonNil(e, "element")
	name := g.naming(e)

	g.mu.Lock()
	defer g.mu.Unlock()

	g.elements[name] = e
}

func (g *Group[E, S]) remove(name string) {
	if hook, ok := any(g.self).(RemoveHook); ok {
		hook.OnRemove(name, g.delete)
		return
	}
	g.delete(name)
}

func (g *Group[E, S]) delete(name string) {
	g.mu.Lock()
	defer g.mu.Unlock()

	delete(g.elements, name)
}

func (g *Group[E, S]) containsValue(e E) bool {
	g.mu.RLock()
	defer g.mu.RUnlock()

	for _, stored := range g.elements {
		if equal(stored, e) {
			return true
		}
	}
	return false
}

// sortedNames must be called with mu held.
func (g *Group[E, S]) sortedNames() []string {
	names := make([]string, 0, len(g.elements))
	for name := range g.elements {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func equal[E any](a, b E) bool {
	if eq, ok := any(a).(interface{ Equal(E) bool }); ok {
		if errors.IsNil(a) {
			return errors.IsNil(b)
		}
		return eq.Equal(b)
	}
	return reflect.DeepEqual(a, b)
}
