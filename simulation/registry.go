package simulation

import "github.com/griddyn-go/simcore/core"

// registryKey is the (type name, user id) pair findByUserID resolves
// against, grounded on objectFactoryTemplates.hpp's factory-by-type-name
// pattern (SPEC_FULL's SUPPLEMENTED FEATURES).
type registryKey struct {
	typeName string
	userID   string
}

// registry is a per-Simulation type-scoped lookup table for
// findByUserID, populated as components are registered during Add*.
type registry struct {
	byKey  map[registryKey]core.Parent
	byName map[string]core.Parent
}

func newRegistry() *registry {
	return &registry{
		byKey:  make(map[registryKey]core.Parent),
		byName: make(map[string]core.Parent),
	}
}

// Register records obj under its type name/user id and plain name. It
// implements core.Registrar so grid's Area/Bus can register their
// children without depending on the simulation package.
func (r *registry) Register(typeName string, obj core.Registrable) {
	r.byName[obj.Name()] = obj
	if uid := obj.UserID(); uid != "" {
		r.byKey[registryKey{typeName: typeName, userID: uid}] = obj
	}
}

// findByUserID resolves a component by its type name and user-assigned
// id (spec.md §6).
func (r *registry) findByUserID(typeName, userID string) (core.Parent, bool) {
	obj, ok := r.byKey[registryKey{typeName: typeName, userID: userID}]
	return obj, ok
}

// find resolves a component by its plain name (spec.md §6's find(name)).
func (r *registry) find(name string) (core.Parent, bool) {
	obj, ok := r.byName[name]
	return obj, ok
}
