package core

// Cloneable is implemented by components that support a structural
// clone (spec.md §8 property 7). CloneInto mirrors the original's
// clone-into-existing-or-new-object pattern (coreOwningPtr.hpp): if
// target is non-nil it must be the same concrete type and is
// overwritten in place; if target is nil a new instance is allocated.
// A type mismatch between source and target returns a CloneFailure
// error (simerr.ErrCloneFailure) rather than panicking.
type Cloneable interface {
	CloneInto(target Component) (Component, error)
}

// Comparable is implemented by components with a component-defined
// equality comparator, used by the clone round-trip test property.
type Comparable interface {
	CompareTo(other Component) bool
}
