package group

import (
	"golang.org/x/text/cases"
)

// Basic is a Group with no policy of its own, for callers that do not need
// to embed one.
type Basic[E any] struct {
	*Group[E, *Basic[E]]
}

// NewBasic creates an empty Basic group.
func NewBasic[E any](naming Naming[E]) *Basic[E] {
	b := &Basic[E]{}
	b.Group = New(b, naming)
	return b
}

// FoldNaming wraps naming so that keys are Unicode case-folded: elements
// named "Key", "KEY" and "key" share a key.
//
// Only element-based operations fold. Name-based ones (Has, Get,
// RemoveNames, ...) compare the given names verbatim, so callers pass folded
// names, e.g. cases.Fold().String("Key").
func FoldNaming[E any](naming Naming[E]) Naming[E] {
	if naming == nil {
		return nil
	}
	return func(e E) string {
		// a Caser keeps state, so each call gets its own
		return cases.Fold().String(naming(e))
	}
}
