package grid

import "github.com/griddyn-go/simcore/core"

// Load is a secondary component attached to a bus: a constant-power
// demand (spec.md §4.2's "hosts loads/generators").
type Load struct {
	core.Base

	p, q float64
}

// NewLoad builds a constant-power load and attaches it to bus.
func NewLoad(gen *core.IDGenerator, name string, bus *Bus, p, q float64) *Load {
	l := &Load{Base: core.InitBase(gen, name), p: p, q: q}
	l.Flags().Set(core.FlagEnabled, true)
	bus.AddLoad(l)
	return l
}

// RealPower returns the load's real power draw.
func (l *Load) RealPower() float64 { return l.p }

// ReactivePower returns the load's reactive power draw.
func (l *Load) ReactivePower() float64 { return l.q }

// SetRealPower updates the load's real power draw and invalidates
// cached offsets (a load-size change is a topology change, spec.md §4.1).
func (l *Load) SetRealPower(p float64) {
	l.p = p
	l.InvalidateOffsets()
}

// SetReactivePower updates the load's reactive power draw.
func (l *Load) SetReactivePower(q float64) {
	l.q = q
	l.InvalidateOffsets()
}

// HasPowerFlowAdjustments reports whether this load participates in the
// powerFlowAdjust pass; a constant-power load never does.
func (l *Load) HasPowerFlowAdjustments() bool { return false }

// PowerFlowAdjust is a no-op for a constant-power load.
func (l *Load) PowerFlowAdjust(ignoreLimits bool) core.ChangeCode { return core.NoChange }

// LocalStateSizes returns zero: a constant-power load is a static value
// provider with no state of its own, folded directly into its bus's
// residual rather than occupying a separate slot.
func (l *Load) LocalStateSizes(mode core.SolverMode) core.StateSizes { return core.StateSizes{} }

// StateSize has no children to sum over, so it equals LocalStateSizes.
func (l *Load) StateSize(mode core.SolverMode) core.StateSizes { return l.LocalStateSizes(mode) }

// Get implements grabber.Gettable.
func (l *Load) Get(param string) float64 {
	switch param {
	case "p":
		return l.p
	case "q":
		return l.q
	default:
		return core.NullValue
	}
}
