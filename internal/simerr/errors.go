// Package simerr defines the error taxonomy used by the simulation core's
// tree-mutation and configuration surfaces (spec.md §7). It mirrors the
// teacher's system/framework/core/errors.go pattern: sentinel errors
// wrapped by typed structs that carry the context a caller needs, joined
// with errors.Is/As via Unwrap.
//
// Solver-path code (residual/Jacobian/root functions) must never construct
// or return these: those paths report invalidity via a null-value sentinel
// or an INVALID_STATE alert instead, per the propagation policy in spec.md
// §7.
package simerr

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownParameter: set/get was called with a name the target does
	// not accept.
	ErrUnknownParameter = errors.New("unknown parameter")

	// ErrInvalidParameterValue: correct name, unacceptable value.
	ErrInvalidParameterValue = errors.New("invalid parameter value")

	// ErrObjectAdd: tree mutation rejected on add (duplicate, wrong type).
	ErrObjectAdd = errors.New("object add failure")

	// ErrObjectRemove: tree mutation rejected on remove (not a child).
	ErrObjectRemove = errors.New("object remove failure")

	// ErrUnrecognizedObject: add of a type this container does not accept.
	ErrUnrecognizedObject = errors.New("unrecognized object")

	// ErrObjectUpdateFail: updateObject could not find a match in the new
	// tree.
	ErrObjectUpdateFail = errors.New("object update failure")

	// ErrCloneFailure: a clone could not cast its result.
	ErrCloneFailure = errors.New("clone failure")

	// ErrExecutionFailure: e.g. an alarm send with no comm link.
	ErrExecutionFailure = errors.New("execution failure")
)

// ParameterError reports a failed set/get call against a named parameter.
type ParameterError struct {
	Target    string
	Parameter string
	Value     string
	Kind      error // one of ErrUnknownParameter / ErrInvalidParameterValue
}

func (e *ParameterError) Error() string {
	if e.Value != "" {
		return fmt.Sprintf("%s: parameter %q value %q: %v", e.Target, e.Parameter, e.Value, e.Kind)
	}
	return fmt.Sprintf("%s: parameter %q: %v", e.Target, e.Parameter, e.Kind)
}

func (e *ParameterError) Unwrap() error { return e.Kind }

// NewUnknownParameter builds a ParameterError wrapping ErrUnknownParameter.
func NewUnknownParameter(target, param string) error {
	return &ParameterError{Target: target, Parameter: param, Kind: ErrUnknownParameter}
}

// NewInvalidParameterValue builds a ParameterError wrapping
// ErrInvalidParameterValue.
func NewInvalidParameterValue(target, param, value string) error {
	return &ParameterError{Target: target, Parameter: param, Value: value, Kind: ErrInvalidParameterValue}
}

// TreeError reports a rejected add/remove/update against the component
// tree.
type TreeError struct {
	Operation string // "add", "remove", "update"
	Container string
	Child     string
	Reason    string
	Kind      error
}

func (e *TreeError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("%s %s on %s: %s: %v", e.Operation, e.Child, e.Container, e.Reason, e.Kind)
	}
	return fmt.Sprintf("%s %s on %s: %v", e.Operation, e.Child, e.Container, e.Kind)
}

func (e *TreeError) Unwrap() error { return e.Kind }

// NewObjectAddFailure builds a TreeError wrapping ErrObjectAdd.
func NewObjectAddFailure(container, child, reason string) error {
	return &TreeError{Operation: "add", Container: container, Child: child, Reason: reason, Kind: ErrObjectAdd}
}

// NewObjectRemoveFailure builds a TreeError wrapping ErrObjectRemove.
func NewObjectRemoveFailure(container, child, reason string) error {
	return &TreeError{Operation: "remove", Container: container, Child: child, Reason: reason, Kind: ErrObjectRemove}
}

// NewUnrecognizedObject builds a TreeError wrapping ErrUnrecognizedObject.
func NewUnrecognizedObject(container, child string) error {
	return &TreeError{Operation: "add", Container: container, Child: child, Kind: ErrUnrecognizedObject}
}

// NewObjectUpdateFail builds a TreeError wrapping ErrObjectUpdateFail.
func NewObjectUpdateFail(container, child, reason string) error {
	return &TreeError{Operation: "update", Container: container, Child: child, Reason: reason, Kind: ErrObjectUpdateFail}
}

// CloneError reports a failed clone.
type CloneError struct {
	SourceType string
	TargetType string
}

func (e *CloneError) Error() string {
	return fmt.Sprintf("clone failure: cannot clone %s into %s", e.SourceType, e.TargetType)
}

func (e *CloneError) Unwrap() error { return ErrCloneFailure }

// NewCloneFailure builds a CloneError.
func NewCloneFailure(sourceType, targetType string) error {
	return &CloneError{SourceType: sourceType, TargetType: targetType}
}

// IsUnknownParameter reports whether err is/wraps ErrUnknownParameter.
func IsUnknownParameter(err error) bool { return errors.Is(err, ErrUnknownParameter) }

// IsInvalidParameterValue reports whether err is/wraps
// ErrInvalidParameterValue.
func IsInvalidParameterValue(err error) bool { return errors.Is(err, ErrInvalidParameterValue) }

// IsCloneFailure reports whether err is/wraps ErrCloneFailure.
func IsCloneFailure(err error) bool { return errors.Is(err, ErrCloneFailure) }
