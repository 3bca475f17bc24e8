package grid

import "github.com/griddyn-go/simcore/core"

// Generator is a secondary component attached to a bus, injecting real
// and reactive power subject to its own Q-limits (spec.md §4.2's "hosts
// loads/generators"; the Q-limit enforcement that drives a PV bus's
// type transitions lives in Bus.PowerFlowAdjust, which reads these
// limits through HasPowerFlowAdjustments/PowerFlowAdjust).
type Generator struct {
	core.Base

	p, q       float64
	pSet       float64
	qMin, qMax float64

	voltageControl bool
}

// NewGenerator builds a generator attached to bus with the given real
// power setpoint and reactive limits.
func NewGenerator(gen *core.IDGenerator, name string, bus *Bus, pSet, qMin, qMax float64) *Generator {
	g := &Generator{Base: core.InitBase(gen, name), p: pSet, pSet: pSet, qMin: qMin, qMax: qMax, voltageControl: true}
	g.Flags().Set(core.FlagEnabled, true)
	bus.AddGenerator(g)
	return g
}

// RealPower returns the generator's current real power injection.
func (g *Generator) RealPower() float64 { return g.p }

// ReactivePower returns the generator's current reactive power
// injection.
func (g *Generator) ReactivePower() float64 { return g.q }

// SetReactivePower sets the generator's current Q injection (normally
// computed by the voltage-control loop the bus drives).
func (g *Generator) SetReactivePower(q float64) { g.q = q }

// HasPowerFlowAdjustments reports whether this generator participates
// in the powerFlowAdjust pass (it does whenever it is on voltage
// control, i.e. contributing to a PV/SLK bus's Q).
func (g *Generator) HasPowerFlowAdjustments() bool { return g.voltageControl }

// PowerFlowAdjust clamps this generator's Q to its own limits. The
// bus-level PV/SLK/PQ type transition is handled by Bus.PowerFlowAdjust;
// this only enforces the individual unit's limits once the bus has
// settled on an aggregate Q.
func (g *Generator) PowerFlowAdjust(ignoreLimits bool) core.ChangeCode {
	if ignoreLimits {
		return core.NoChange
	}
	if g.q < g.qMin {
		g.q = g.qMin
		return core.JacobianChange
	}
	if g.q > g.qMax {
		g.q = g.qMax
		return core.JacobianChange
	}
	return core.NoChange
}

// LocalStateSizes returns zero: a generator's setpoint/limits are static
// parameters, not solver state of their own.
func (g *Generator) LocalStateSizes(mode core.SolverMode) core.StateSizes { return core.StateSizes{} }

// StateSize has no children to sum over, so it equals LocalStateSizes.
func (g *Generator) StateSize(mode core.SolverMode) core.StateSizes { return g.LocalStateSizes(mode) }

// Get implements grabber.Gettable.
func (g *Generator) Get(param string) float64 {
	switch param {
	case "p":
		return g.p
	case "q":
		return g.q
	default:
		return core.NullValue
	}
}
