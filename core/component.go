package core

import "fmt"

// LifecycleState is a component's position in the uninitialized ->
// pFlowInit-done -> dynInit-done -> running -> disconnected state machine
// (spec.md §4.1).
type LifecycleState int

const (
	Uninitialized LifecycleState = iota
	PowerFlowInitDone
	DynamicInitDone
	Running
	Disconnected
)

func (s LifecycleState) String() string {
	switch s {
	case Uninitialized:
		return "uninitialized"
	case PowerFlowInitDone:
		return "pFlowInit-done"
	case DynamicInitDone:
		return "dynInit-done"
	case Running:
		return "running"
	case Disconnected:
		return "disconnected"
	default:
		return "unknown"
	}
}

// StateSizes is the (algebraic, differential, root) triple a component
// contributes to the global state vector under one SolverMode.
type StateSizes struct {
	Alg  int
	Diff int
	Root int
}

// Add returns the element-wise sum of two StateSizes.
func (s StateSizes) Add(o StateSizes) StateSizes {
	return StateSizes{Alg: s.Alg + o.Alg, Diff: s.Diff + o.Diff, Root: s.Root + o.Root}
}

// Total returns Alg+Diff, the algebraic+differential state width (root
// count is tracked separately since roots don't occupy state-vector
// slots).
func (s StateSizes) Total() int { return s.Alg + s.Diff }

// ComponentOffsets is the absolute position a parent assigned this
// component within the global state/residual vector, for one SolverMode.
// Offsets are only valid while the mode and topology are unchanged
// (spec.md §4.1).
type ComponentOffsets struct {
	AlgOffset  int
	DiffOffset int
	RootOffset int
	Valid      bool
}

// Component is the interface every modeled entity in the tree satisfies:
// sizing, per-mode offsets, the four init hooks, reset/timestep, and the
// parameter get/set/flag surface (spec.md §4.1, §6).
type Component interface {
	Parent

	LocalStateSizes(mode SolverMode) StateSizes
	StateSize(mode SolverMode) StateSizes

	Offsets(mode SolverMode) ComponentOffsets
	SetOffsets(mode SolverMode, off ComponentOffsets)
	InvalidateOffsets()

	LifecycleState() LifecycleState

	PowerFlowInitializeA() error
	PowerFlowInitializeB() error
	DynamicInitializeA() error
	DynamicInitializeB() error
	ResetComponent()
	Timestep(t float64, mode SolverMode) error

	Set(param string, value float64) error
	SetString(param, value string) error
	Get(param string) float64
	SetFlag(name string, value bool) error
	GetFlag(name string) bool
}

// Base is the embeddable component substrate: identity (via CoreObject),
// the per-mode offset table, lifecycle state, and alert propagation to
// the owning container. Concrete types (Bus, Link, Relay, Load,
// Generator, Area) embed Base and implement the sizing/residual/Jacobian
// specifics spec.md describes for each.
type Base struct {
	CoreObject
	offsets   map[int]ComponentOffsets
	lifecycle LifecycleState
	sink      AlertSink
}

// InitBase constructs a Base with freshly assigned identity.
func InitBase(gen *IDGenerator, name string) Base {
	return Base{
		CoreObject: InitCoreObject(gen, name),
		offsets:    make(map[int]ComponentOffsets),
		lifecycle:  Uninitialized,
	}
}

// Offsets returns the offsets assigned for mode, or the zero value with
// Valid=false if none have been assigned (or they were invalidated).
func (b *Base) Offsets(mode SolverMode) ComponentOffsets {
	if b.offsets == nil {
		return ComponentOffsets{}
	}
	return b.offsets[mode.key()]
}

// SetOffsets records the offsets a parent assigned this component for
// mode.
func (b *Base) SetOffsets(mode SolverMode, off ComponentOffsets) {
	if b.offsets == nil {
		b.offsets = make(map[int]ComponentOffsets)
	}
	off.Valid = true
	b.offsets[mode.key()] = off
}

// InvalidateOffsets marks every mode's offsets stale. Called on any
// topology change (enable/disable, add/remove, reconnect) per spec.md
// §4.1; offsets are lazily recomputed on the next solver entry.
func (b *Base) InvalidateOffsets() {
	for k, off := range b.offsets {
		off.Valid = false
		b.offsets[k] = off
	}
}

// LifecycleState returns the component's current lifecycle state.
func (b *Base) LifecycleState() LifecycleState { return b.lifecycle }

// SetLifecycleState transitions the component's lifecycle state.
func (b *Base) SetLifecycleState(s LifecycleState) { b.lifecycle = s }

// SetAlertSink installs the parent alert sink (typically the owning
// Area), called by the container's add() method.
func (b *Base) SetAlertSink(sink AlertSink) { b.sink = sink }

// Alert propagates a named alert to the owning container. Alerts
// propagate synchronously, bottom-up, and never defer (spec.md §5).
func (b *Base) Alert(code Alert) {
	if b.sink != nil {
		b.sink.Alert(&b.CoreObject, code)
	}
}

// Disconnect transitions the component to the Disconnected lifecycle
// state, emits JAC_COUNT_CHANGE, and invalidates offsets (spec.md §4.1).
func (b *Base) Disconnect() {
	if b.lifecycle == Disconnected {
		return
	}
	b.lifecycle = Disconnected
	b.Flags().Set(FlagConnected, false)
	b.InvalidateOffsets()
	b.Alert(AlertJacCountChange)
}

// ErrorString is a small helper for Set/SetString implementations that
// need to format a consistent "object(name): ..." prefix.
func (b *Base) ErrorString(format string, args ...interface{}) string {
	return fmt.Sprintf("%s: %s", b.Name(), fmt.Sprintf(format, args...))
}
