package grid

import (
	"math"
	"math/cmplx"

	"github.com/griddyn-go/simcore/core"
)

// linkCache holds the per-terminal current/power values computed from
// the last stateData snapshot, keyed by its SeqID (spec.md §4.3's linkI
// cache; grounded on the linkI/linkF structs in
// original_source/src/griddyn/Link.h).
type linkCache struct {
	seqID      int64
	i1, i2     float64
	p1, p2     float64
	q1, q2     float64
}

// Link connects two buses with a series impedance and two end switches,
// per spec.md §4.3. The trivial no-impedance transport model of the
// original base Link class is generalized here to a series R+jX branch
// so the link can carry a real current differential (spec.md §8 S3).
type Link struct {
	core.Base

	busFrom, busTo *Bus

	r, x float64

	switch1Open, switch2Open bool
	fixedTarget              bool
	fixedP, fixedQ           float64
	fixedMeasureTerminal     int

	cache linkCache
}

// NewLink builds a link of series resistance r and reactance x between
// from and to, with both switches closed.
func NewLink(gen *core.IDGenerator, name string, from, to *Bus, r, x float64) *Link {
	l := &Link{Base: core.InitBase(gen, name), busFrom: from, busTo: to, r: r, x: x}
	l.Flags().Set(core.FlagEnabled, true)
	from.AddLink(l)
	to.AddLink(l)
	return l
}

// IsConnected reports whether both switches are closed and the link is
// enabled (spec.md §4.3).
func (l *Link) IsConnected() bool {
	return l.Flags().Get(core.FlagEnabled) && !l.switch1Open && !l.switch2Open
}

// SwitchMode opens or closes the numbered switch (1 for the from bus, 2
// for the to bus). Flipping a switch on a zero-impedance link triggers
// a bus merge or unmerge, grounded on zBreaker::switchMode in
// original_source/src/griddyn/links/zBreaker.cpp.
func (l *Link) SwitchMode(num int, open bool) {
	var cur *bool
	if num == 2 {
		cur = &l.switch2Open
	} else {
		cur = &l.switch1Open
	}
	if *cur == open {
		return
	}
	*cur = open
	l.cache.seqID = 0
	l.InvalidateOffsets()

	if l.r == 0 && l.x == 0 {
		if l.IsConnected() {
			l.busFrom.MergeBus(l.busTo)
		} else {
			l.busFrom.UnmergeBus(l.busTo)
		}
	}
}

// admittance returns the series admittance Y = 1/(R+jX).
func (l *Link) admittance() complex128 {
	z := complex(l.r, l.x)
	if z == 0 {
		return complex(math.Inf(1), 0)
	}
	return 1 / z
}

// updateCache recomputes terminal currents and power flows if sD's
// SeqID does not match the cached one, per spec.md §4.3's "any mismatch
// forces a full recompute."
func (l *Link) updateCache(sD *core.StateData) {
	if sD != nil && sD.SeqID == l.cache.seqID {
		return
	}
	if !l.IsConnected() {
		l.cache = linkCache{}
		if sD != nil {
			l.cache.seqID = sD.SeqID
		}
		return
	}

	v1 := cmplx.Rect(l.busFrom.Voltage(), l.busFrom.Angle())
	v2 := cmplx.Rect(l.busTo.Voltage(), l.busTo.Angle())
	y := l.admittance()

	iFrom := y * (v1 - v2)
	iTo := -iFrom

	sFrom := v1 * cmplx.Conj(iFrom)
	sTo := v2 * cmplx.Conj(iTo)

	l.cache = linkCache{
		i1: cmplx.Abs(iFrom),
		i2: cmplx.Abs(iTo),
		p1: real(sFrom),
		q1: imag(sFrom),
		p2: real(sTo),
		q2: imag(sTo),
	}
	if sD != nil {
		l.cache.seqID = sD.SeqID
	}
}

// FixPower adjusts the link so the measured terminal sees (P,Q),
// overriding the impedance-based flow until cleared. The concrete
// adjustment algorithm is link-type-specific per spec.md §4.3; this
// series-impedance link simply pins the measured terminal's flow.
func (l *Link) FixPower(p, q float64, measureTerminal, fixedTerminal int) {
	l.fixedTarget = true
	l.fixedP = p
	l.fixedQ = q
	l.fixedMeasureTerminal = measureTerminal
	_ = fixedTerminal
	l.cache.seqID = 0
}

// ClearFixedPower releases a FixPower override.
func (l *Link) ClearFixedPower() { l.fixedTarget = false }

// RealPowerInto returns the real power flowing into busID's terminal,
// implementing the linkEnd interface Bus.computePowerAdjustments uses.
func (l *Link) RealPowerInto(busID int64, sD *core.StateData) float64 {
	l.updateCache(sD)
	if l.fixedTarget {
		if (l.fixedMeasureTerminal == 1 && busID == l.busFrom.ID()) ||
			(l.fixedMeasureTerminal == 2 && busID == l.busTo.ID()) {
			return l.fixedP
		}
	}
	switch busID {
	case l.busFrom.ID():
		return l.cache.p1
	case l.busTo.ID():
		return l.cache.p2
	default:
		return 0
	}
}

// ReactivePowerInto returns the reactive power flowing into busID's
// terminal.
func (l *Link) ReactivePowerInto(busID int64, sD *core.StateData) float64 {
	l.updateCache(sD)
	if l.fixedTarget {
		if (l.fixedMeasureTerminal == 1 && busID == l.busFrom.ID()) ||
			(l.fixedMeasureTerminal == 2 && busID == l.busTo.ID()) {
			return l.fixedQ
		}
	}
	switch busID {
	case l.busFrom.ID():
		return l.cache.q1
	case l.busTo.ID():
		return l.cache.q2
	default:
		return 0
	}
}

// HasPowerFlowAdjustments reports whether this link participates in the
// powerFlowAdjust pass; a plain impedance link never does.
func (l *Link) HasPowerFlowAdjustments() bool { return false }

// PowerFlowAdjust is a no-op for a plain impedance link (implements
// linkEnd).
func (l *Link) PowerFlowAdjust(ignoreLimits bool) core.ChangeCode { return core.NoChange }

// LocalStateSizes returns zero: a series-impedance link has no state of
// its own, only a cache derived from its terminal buses' voltages.
func (l *Link) LocalStateSizes(mode core.SolverMode) core.StateSizes { return core.StateSizes{} }

// StateSize has no children to sum over, so it equals LocalStateSizes.
func (l *Link) StateSize(mode core.SolverMode) core.StateSizes { return l.LocalStateSizes(mode) }

// CurrentMagnitude returns |I| at terminal 1 or 2, refreshing the cache
// against the given snapshot.
func (l *Link) CurrentMagnitude(terminal int, sD *core.StateData) float64 {
	l.updateCache(sD)
	if terminal == 2 {
		return l.cache.i2
	}
	return l.cache.i1
}

// OutputPartialDerivatives writes two diagonal partials at the offsets
// the caller supplies: -B at (angleOffset, angleOffset) and G at
// (voltageOffset, voltageOffset) (spec.md §4.3). busID is not consulted,
// so both ends of the link receive the same values.
func (l *Link) OutputPartialDerivatives(busID int64, angleOffset, voltageOffset int, sink core.JacobianSink) {
	if angleOffset < 0 || voltageOffset < 0 {
		return
	}
	y := l.admittance()
	g := real(y)
	b := imag(y)
	sink.SetJacobianElement(angleOffset, angleOffset, -b)
	sink.SetJacobianElement(voltageOffset, voltageOffset, g)
	_ = busID
}

// Get implements grabber.Gettable so conditions can reference
// "current1"/"current2"/"p1"/"p2"/"q1"/"q2" on the link directly
// (spec.md §8 S3).
func (l *Link) Get(param string) float64 {
	l.updateCache(nil)
	switch param {
	case "current1":
		return l.cache.i1
	case "current2":
		return l.cache.i2
	case "p1":
		return l.cache.p1
	case "p2":
		return l.cache.p2
	case "q1":
		return l.cache.q1
	case "q2":
		return l.cache.q2
	default:
		return core.NullValue
	}
}
