package grid

import (
	"github.com/griddyn-go/simcore/core"
	"github.com/griddyn-go/simcore/internal/simmetrics"
)

// Area aggregates primary components (buses, links, and nested areas),
// dispatching residual/Jacobian/alert calls across them and acting as
// the AlertSink its children's Base.Alert propagates to (spec.md §4
// intro, "hosts loads/generators" generalized to the full primary tree).
type Area struct {
	core.Base

	buses    []*Bus
	links    []*Link
	subareas []*Area

	sink      core.AlertSink
	registrar core.Registrar
	metrics   *simmetrics.Recorder
}

// NewArea builds an empty area.
func NewArea(gen *core.IDGenerator, name string) *Area {
	a := &Area{Base: core.InitBase(gen, name)}
	a.Flags().Set(core.FlagEnabled, true)
	return a
}

// AddBus attaches a bus to this area and installs the area as its alert
// sink, registering it (and its attached loads/generators) against this
// area's registrar, if one is wired (SPEC_FULL.md's type-scoped
// find/findByUserID contract, spec.md §6).
func (a *Area) AddBus(b *Bus) {
	a.buses = append(a.buses, b)
	b.SetAlertSink(a)
	b.SetParent(a)
	a.InvalidateOffsets()
	if a.registrar != nil {
		b.registerWith(a.registrar)
	}
	b.SetMetrics(a.metrics)
}

// AddLink attaches a link to this area, registering it against this
// area's registrar if one is wired.
func (a *Area) AddLink(l *Link) {
	a.links = append(a.links, l)
	l.SetAlertSink(a)
	l.SetParent(a)
	a.InvalidateOffsets()
	if a.registrar != nil {
		a.registrar.Register("link", l)
	}
}

// AddArea attaches a nested area, forwarding its alerts up through this
// one and propagating this area's registrar/metrics down into it.
func (a *Area) AddArea(sub *Area) {
	a.subareas = append(a.subareas, sub)
	sub.sink = a
	sub.SetParent(a)
	a.InvalidateOffsets()
	if a.registrar != nil {
		sub.SetRegistrar(a.registrar)
	}
	sub.SetMetrics(a.metrics)
}

// SetAlertSink installs the sink this area forwards alerts to (e.g. the
// owning Simulation).
func (a *Area) SetAlertSink(sink core.AlertSink) { a.sink = sink }

// SetRegistrar installs the simulation-level registry this area (and
// everything attached beneath it) registers into. Buses/links/subareas
// already attached when SetRegistrar is called are registered
// immediately, so construction order (build the tree, then attach it to
// a Simulation) and registrar-first order both work.
func (a *Area) SetRegistrar(reg core.Registrar) {
	a.registrar = reg
	if reg == nil {
		return
	}
	reg.Register("area", a)
	for _, b := range a.buses {
		b.registerWith(reg)
	}
	for _, l := range a.links {
		reg.Register("link", l)
	}
	for _, sub := range a.subareas {
		sub.SetRegistrar(reg)
	}
}

// SetMetrics installs the recorder this area and everything attached
// beneath it report to, propagating into already-attached buses and
// subareas the same way SetRegistrar does.
func (a *Area) SetMetrics(m *simmetrics.Recorder) {
	a.metrics = m
	for _, b := range a.buses {
		b.SetMetrics(m)
	}
	for _, sub := range a.subareas {
		sub.SetMetrics(m)
	}
}

// Alert implements core.AlertSink: areas propagate every child alert
// bottom-up, synchronously, per spec.md §5.
func (a *Area) Alert(source core.Parent, code core.Alert) {
	if a.sink != nil {
		a.sink.Alert(source, code)
	}
}

// Buses returns the area's directly attached buses.
func (a *Area) Buses() []*Bus { return a.buses }

// Links returns the area's directly attached links.
func (a *Area) Links() []*Link { return a.links }

// PowerFlowAdjust runs the Q/P-limit adjustment pass over every bus in
// the area (and its subareas), aggregating the worst change_code
// (spec.md §4.6's aggregation rule, §4.2's bus-type state machine).
func (a *Area) PowerFlowAdjust(ignoreLimits bool) core.ChangeCode {
	out := core.NoChange
	for _, b := range a.buses {
		out = core.Max(out, b.PowerFlowAdjust(ignoreLimits))
	}
	for _, sub := range a.subareas {
		out = core.Max(out, sub.PowerFlowAdjust(ignoreLimits))
	}
	return out
}

// LocalStateSizes returns zero: an area is pure aggregation, contributing
// no state of its own beyond the sum of its children (spec.md §4.1's
// stateSize contract, §8 property 1).
func (a *Area) LocalStateSizes(mode core.SolverMode) core.StateSizes { return core.StateSizes{} }

// StateSize sums every attached bus's, link's, and subarea's StateSize,
// satisfying `stateSize(sMode) = localAlg + localDiff + Σ child.stateSize(sMode)`.
func (a *Area) StateSize(mode core.SolverMode) core.StateSizes {
	total := a.LocalStateSizes(mode)
	for _, b := range a.buses {
		total = total.Add(b.StateSize(mode))
	}
	for _, l := range a.links {
		total = total.Add(l.StateSize(mode))
	}
	for _, sub := range a.subareas {
		total = total.Add(sub.StateSize(mode))
	}
	return total
}

// Converge runs the local Newton correction over every bus in the area,
// using offsets supplied by the caller keyed by bus ID.
func (a *Area) Converge(sD *core.StateData, resid []float64, offsets map[int64][2]int, tol float64) core.ChangeCode {
	out := core.NoChange
	for _, b := range a.buses {
		off, ok := offsets[b.ID()]
		if !ok {
			continue
		}
		out = core.Max(out, b.Converge(sD, resid, off[0], off[1], tol))
	}
	for _, sub := range a.subareas {
		out = core.Max(out, sub.Converge(sD, resid, offsets, tol))
	}
	return out
}
