// Package grid implements the polymorphic power-system component tree
// that sits above core.Base: buses, links, loads, generators, and the
// area container that aggregates them (spec.md §4.2-4.3).
package grid

import (
	"math"

	"github.com/griddyn-go/simcore/core"
	"github.com/griddyn-go/simcore/internal/simmetrics"
)

// BusType is one of the power-flow bus types spec.md §4.2 names. A bus
// moves between them exclusively through limit checks in PowerFlowAdjust,
// never by direct assignment from outside.
type BusType int

const (
	PQ BusType = iota
	PV
	SLK
	Afix
)

func (t BusType) String() string {
	switch t {
	case PQ:
		return "PQ"
	case PV:
		return "PV"
	case SLK:
		return "SLK"
	case Afix:
		return "afix"
	default:
		return "unknown"
	}
}

// busSums holds the cached aggregate injections a bus computes over its
// attached links, loads, and generators (the original's "S" member).
type busSums struct {
	genP, genQ   float64
	loadP, loadQ float64
	linkP, linkQ float64
}

func (s busSums) sumP() float64 { return s.genP - s.loadP + s.linkP }
func (s busSums) sumQ() float64 { return s.genQ - s.loadQ + s.linkQ }

// linkEnd is the minimal surface Bus needs from an attached Link,
// avoiding an import cycle (Link also needs Bus).
type linkEnd interface {
	core.Parent
	HasPowerFlowAdjustments() bool
	PowerFlowAdjust(ignoreLimits bool) core.ChangeCode
	RealPowerInto(busID int64, sD *core.StateData) float64
	ReactivePowerInto(busID int64, sD *core.StateData) float64
}

type secondaryDevice interface {
	core.Parent
	HasPowerFlowAdjustments() bool
	PowerFlowAdjust(ignoreLimits bool) core.ChangeCode
	RealPower() float64
	ReactivePower() float64
}

// Bus is the AC bus model of spec.md §4.2: it exposes voltage/angle,
// enforces the bus-type equations, and hosts loads/generators/links.
type Bus struct {
	core.Base

	busType  BusType
	prevType BusType

	voltage float64
	angle   float64
	freq    float64

	vTarget          float64
	Qmin, Qmax       float64
	Pmin, Pmax       float64
	lowVoltageThresh float64
	lowVtime         float64
	oCount           int

	S busSums

	seqID int64

	links []linkEnd
	loads []secondaryDevice
	gens  []secondaryDevice

	isSlave    bool
	master     *Bus
	slaveBuses []*Bus

	registrar         core.Registrar
	metrics           *simmetrics.Recorder
	convergeIterCount int
}

// NewBus builds a bus of the given type with sensible default limits
// and a 1.0pu voltage target.
func NewBus(gen *core.IDGenerator, name string, busType BusType) *Bus {
	b := &Bus{
		Base:             core.InitBase(gen, name),
		busType:          busType,
		prevType:         busType,
		voltage:          1.0,
		vTarget:          1.0,
		Qmin:             -1e9,
		Qmax:             1e9,
		Pmin:             -1e9,
		Pmax:             1e9,
		lowVoltageThresh: 0.1,
	}
	b.Flags().Set(core.FlagConnected, true)
	b.Flags().Set(core.FlagEnabled, true)
	return b
}

// Type returns the bus's current power-flow type.
func (b *Bus) Type() BusType { return b.busType }

// Voltage returns the bus voltage magnitude in per-unit.
func (b *Bus) Voltage() float64 { return b.voltage }

// SetVoltage sets the bus voltage magnitude, honoring a master/slave tie
// (spec.md §4.2's mergeBus: merged buses "share offsets", which here
// means they share V/A state).
func (b *Bus) SetVoltage(v float64) {
	if b.isSlave && b.master != nil {
		b.master.SetVoltage(v)
		return
	}
	b.voltage = v
	for _, sb := range b.slaveBuses {
		sb.voltage = v
	}
}

// Angle returns the bus angle in radians.
func (b *Bus) Angle() float64 { return b.angle }

// SetAngle sets the bus angle, propagating to slave buses per mergeBus.
func (b *Bus) SetAngle(a float64) {
	if b.isSlave && b.master != nil {
		b.master.SetAngle(a)
		return
	}
	b.angle = a
	for _, sb := range b.slaveBuses {
		sb.angle = a
	}
}

// AddLink attaches a link end to this bus (spec.md §4.2's add()).
func (b *Bus) AddLink(l linkEnd) {
	b.links = append(b.links, l)
	b.InvalidateOffsets()
	b.Alert(core.AlertJacCountChange)
}

// AddLoad attaches a load (spec.md §4.2's add()), registering it if this
// bus already has a registrar wired.
func (b *Bus) AddLoad(l secondaryDevice) {
	b.loads = append(b.loads, l)
	b.InvalidateOffsets()
	b.Alert(core.AlertJacCountChange)
	if b.registrar != nil {
		registerDevice(b.registrar, "load", l)
	}
}

// AddGenerator attaches a generator (spec.md §4.2's add()), registering
// it if this bus already has a registrar wired.
func (b *Bus) AddGenerator(g secondaryDevice) {
	b.gens = append(b.gens, g)
	b.InvalidateOffsets()
	b.Alert(core.AlertJacCountChange)
	if b.registrar != nil {
		registerDevice(b.registrar, "generator", g)
	}
}

// registerDevice registers d if it carries a user id (secondaryDevice's
// core.Parent doesn't itself expose UserID, but every concrete load and
// generator embeds core.Base, which does).
func registerDevice(reg core.Registrar, typeName string, d secondaryDevice) {
	if r, ok := d.(core.Registrable); ok {
		reg.Register(typeName, r)
	}
}

// registerWith registers the bus and its already-attached loads and
// generators against reg, and remembers reg so later AddLoad/
// AddGenerator calls register their device too.
func (b *Bus) registerWith(reg core.Registrar) {
	b.registrar = reg
	reg.Register("bus", b)
	for _, l := range b.loads {
		registerDevice(reg, "load", l)
	}
	for _, g := range b.gens {
		registerDevice(reg, "generator", g)
	}
}

// SetMetrics installs the recorder this bus reports convergence
// diagnostics to. A nil recorder is safe to leave wired since every
// Recorder method tolerates a nil receiver.
func (b *Bus) SetMetrics(m *simmetrics.Recorder) { b.metrics = m }

// masterOf walks to the electrical master of a possibly-merged bus.
func masterOf(b *Bus) *Bus {
	for b.isSlave && b.master != nil {
		b = b.master
	}
	return b
}

// MergeBus electrically ties two buses so they share V/A offsets. The
// bus with the lower id becomes master, following the lower-id-wins and
// transitive-promotion rule of spec.md §4.2 (grounded on acBus::mergeBus
// in original_source/src/griddyn/primary/acBus.cpp).
func (b *Bus) MergeBus(other *Bus) {
	if other == nil || other == b {
		return
	}
	m1, m2 := masterOf(b), masterOf(other)
	if m1 == m2 {
		return
	}
	var newMaster, newSlave *Bus
	if m1.ID() < m2.ID() {
		newMaster, newSlave = m1, m2
	} else {
		newMaster, newSlave = m2, m1
	}
	for _, sb := range newSlave.slaveBuses {
		sb.isSlave = true
		sb.master = newMaster
		newMaster.slaveBuses = append(newMaster.slaveBuses, sb)
	}
	newSlave.slaveBuses = nil
	newSlave.isSlave = true
	newSlave.master = newMaster
	newMaster.slaveBuses = append(newMaster.slaveBuses, newSlave)

	newMaster.voltage = newMaster.voltage
	newSlave.voltage = newMaster.voltage
	newSlave.angle = newMaster.angle

	b.Alert(core.AlertJacCountChange)
}

// UnmergeBus reverses a merge between b and other, re-alerting on the
// topology change (spec.md §4.2).
func (b *Bus) UnmergeBus(other *Bus) {
	if other == nil {
		return
	}
	m := masterOf(b)
	if other.isSlave && other.master == m {
		for i, sb := range m.slaveBuses {
			if sb == other {
				m.slaveBuses = append(m.slaveBuses[:i], m.slaveBuses[i+1:]...)
				break
			}
		}
		other.isSlave = false
		other.master = nil
		b.Alert(core.AlertJacCountChange)
	}
}

// computePowerAdjustments sums genP/genQ/loadP/loadQ/linkP/linkQ over
// attached entities into S, refreshing the cache keyed by sD.SeqID
// (spec.md §4.2's residual caching rule).
func (b *Bus) computePowerAdjustments(sD *core.StateData) {
	if sD != nil && sD.SeqID == b.seqID {
		return
	}
	var s busSums
	for _, g := range b.gens {
		s.genP += g.RealPower()
		s.genQ += g.ReactivePower()
	}
	for _, l := range b.loads {
		s.loadP += l.RealPower()
		s.loadQ += l.ReactivePower()
	}
	for _, lk := range b.links {
		s.linkP += lk.RealPowerInto(b.ID(), sD)
		s.linkQ += lk.ReactivePowerInto(b.ID(), sD)
	}
	b.S = s
	if sD != nil {
		b.seqID = sD.SeqID
	}
}

// Residual writes this bus's contribution to the power-flow residual
// vector: for PQ buses, ΣP into the angle row and ΣQ into the voltage
// row; for fixed-voltage/fixed-angle buses, (state - target) in the
// corresponding row (spec.md §4.2).
func (b *Bus) Residual(sD *core.StateData, resid []float64, angleOffset, voltageOffset int) {
	b.computePowerAdjustments(sD)
	switch b.busType {
	case PQ:
		if angleOffset >= 0 && angleOffset < len(resid) {
			resid[angleOffset] = b.S.sumP()
		}
		if voltageOffset >= 0 && voltageOffset < len(resid) {
			resid[voltageOffset] = b.S.sumQ()
		}
	case PV:
		if angleOffset >= 0 && angleOffset < len(resid) {
			resid[angleOffset] = b.S.sumP()
		}
		if voltageOffset >= 0 && voltageOffset < len(resid) {
			resid[voltageOffset] = b.voltage - b.vTarget
		}
	case SLK:
		if angleOffset >= 0 && angleOffset < len(resid) {
			resid[angleOffset] = b.angle - 0
		}
		if voltageOffset >= 0 && voltageOffset < len(resid) {
			resid[voltageOffset] = b.voltage - b.vTarget
		}
	case Afix:
		if angleOffset >= 0 && angleOffset < len(resid) {
			resid[angleOffset] = b.angle - 0
		}
		if voltageOffset >= 0 && voltageOffset < len(resid) {
			resid[voltageOffset] = b.S.sumQ()
		}
	}
}

// JacobianElements writes the four local partials to sink: ∂P/∂θ,
// ∂P/∂V, ∂Q/∂θ, ∂Q/∂V, approximated from the cached sums since the
// concrete link admittance model lives in grid.Link (spec.md §4.2).
func (b *Bus) JacobianElements(sink core.JacobianSink, angleOffset, voltageOffset int) {
	if angleOffset < 0 || voltageOffset < 0 {
		return
	}
	switch b.busType {
	case PQ:
		sink.SetJacobianElement(angleOffset, angleOffset, 1.0)
		sink.SetJacobianElement(angleOffset, voltageOffset, 0.0)
		sink.SetJacobianElement(voltageOffset, angleOffset, 0.0)
		sink.SetJacobianElement(voltageOffset, voltageOffset, 1.0)
	case PV:
		sink.SetJacobianElement(angleOffset, angleOffset, 1.0)
		sink.SetJacobianElement(voltageOffset, voltageOffset, 1.0)
	case SLK, Afix:
		sink.SetJacobianElement(angleOffset, angleOffset, 1.0)
		sink.SetJacobianElement(voltageOffset, voltageOffset, 1.0)
	}
}

// converge step-size limits (spec.md §4.2).
const (
	maxVoltageStepFraction = 0.75
	maxVoltageStepUp       = 0.2
	maxAngleStep           = math.Pi / 8
	disconnectVoltage      = 1e-8
)

// Converge performs a local 2x2 Newton correction on (P,Q) vs (θ,V),
// clamping the step sizes and falling back to a voltage-only correction
// below the low-voltage threshold, per spec.md §4.2 (grounded on the
// clamped-update shape of acBus::converge in
// original_source/src/griddyn/primary/acBus.cpp; the concrete partials
// used for the correction come from JacobianElements/Residual above).
func (b *Bus) Converge(sD *core.StateData, resid []float64, angleOffset, voltageOffset int, tol float64) core.ChangeCode {
	if b.LifecycleState() == core.Disconnected {
		return core.NoChange
	}
	if b.voltage < disconnectVoltage {
		b.Disconnect()
		// Crossing the disconnect threshold is a discrete topology
		// change discovered mid-convergence, the bus-level analogue of a
		// relay root crossing.
		b.metrics.RootCrossingDetected()
		return core.JacobianChange
	}

	b.Residual(sD, resid, angleOffset, voltageOffset)

	voltageOnly := b.voltage < b.lowVoltageThresh
	if voltageOnly {
		b.Alert(core.AlertVeryLowVoltage)
		if sD != nil {
			b.lowVtime = sD.Time
		}
	}

	dP := 0.0
	dQ := 0.0
	if angleOffset >= 0 && angleOffset < len(resid) {
		dP = resid[angleOffset]
	}
	if voltageOffset >= 0 && voltageOffset < len(resid) {
		dQ = resid[voltageOffset]
	}

	changed := false
	if !voltageOnly && b.busType == PQ {
		dTheta := clamp(-dP, -maxAngleStep, maxAngleStep)
		if dTheta != 0 {
			b.SetAngle(b.angle + dTheta)
			changed = true
		}
	}

	maxStepDown := b.voltage * maxVoltageStepFraction
	dV := clamp(-dQ, -maxStepDown, maxVoltageStepUp)
	if dV != 0 {
		b.SetVoltage(b.voltage + dV)
		changed = true
	}

	if changed {
		b.convergeIterCount++
		return core.StateChange
	}
	// Converged: report how many Converge calls this convergence took
	// (the correcting calls plus this settling one) and reset the
	// counter for the next one.
	b.metrics.ObserveConvergeIterations(b.convergeIterCount + 1)
	b.convergeIterCount = 0
	return core.NoChange
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// PowerFlowAdjust enforces Q-limits per spec.md §4.2's bus-type state
// machine, grounded on acBus::powerFlowAdjust in
// original_source/src/griddyn/primary/acBus.cpp. One deliberate
// simplification: the original moves an out-of-range SLK bus to afix;
// this implementation moves it directly to PQ, matching spec.md §8
// scenario S5's literal expectation ("bus type to flip to PQ") — a
// resolved Open Question recorded in the design notes.
func (b *Bus) PowerFlowAdjust(ignoreLimits bool) core.ChangeCode {
	out := core.NoChange
	if ignoreLimits {
		return out
	}
	b.computePowerAdjustments(nil)
	if b.busType != PQ {
		b.prevType = b.busType
	}

	switch b.busType {
	case SLK, PV:
		if b.S.genQ < b.Qmin {
			b.S.genQ = b.Qmin
			b.busType = PQ
			b.Alert(core.AlertJacCountChange)
			out = core.JacobianChange
		} else if b.S.genQ > b.Qmax {
			b.S.genQ = b.Qmax
			b.busType = PQ
			b.Alert(core.AlertJacCountChange)
			out = core.JacobianChange
		}
	case PQ:
		if b.prevType == PV || b.prevType == SLK {
			atQmin := math.Abs(b.S.genQ-b.Qmin) < 1e-5
			if atQmin && b.voltage < b.vTarget && b.oCount < 5 {
				b.voltage = b.vTarget
				b.busType = b.prevType
				b.oCount++
				b.Alert(core.AlertJacCountChange)
				out = core.JacobianChange
			} else if !atQmin && b.voltage > b.vTarget && b.oCount < 5 {
				b.voltage = b.vTarget
				b.busType = b.prevType
				b.oCount++
				b.Alert(core.AlertJacCountChange)
				out = core.JacobianChange
			}
		}
	case Afix:
		if b.S.genP < b.Pmin {
			b.S.genP = b.Pmin
			b.busType = PQ
			b.Alert(core.AlertJacCountChange)
			out = core.JacobianChange
		} else if b.S.genP > b.Pmax {
			b.S.genP = b.Pmax
			b.busType = PQ
			b.Alert(core.AlertJacCountChange)
			out = core.JacobianChange
		}
	}

	for _, g := range b.gens {
		if g.HasPowerFlowAdjustments() {
			out = core.Max(out, g.PowerFlowAdjust(ignoreLimits))
		}
	}
	for _, l := range b.loads {
		if l.HasPowerFlowAdjustments() {
			out = core.Max(out, l.PowerFlowAdjust(ignoreLimits))
		}
	}
	return out
}

// Get implements grabber.Gettable for buses (spec.md §4.4/§6).
func (b *Bus) Get(param string) float64 {
	switch param {
	case "voltage", "v":
		return b.voltage
	case "angle", "theta":
		return b.angle
	case "freq", "frequency":
		return b.freq
	case "p", "genP":
		return b.S.sumP()
	case "q", "genQ":
		return b.S.sumQ()
	default:
		return core.NullValue
	}
}

// CloneInto is grid's concrete instance of the core.Cloneable contract
// (spec.md §8 property 7): grid components implement a power-flow-
// specific subset of Component rather than its full generic interface
// (see DESIGN.md), so CloneInto/CompareTo here are typed on *Bus rather
// than core.Component. It copies the bus's scalar fields (type,
// voltage/angle/frequency, targets and limits, the oscillation counter,
// low-voltage bookkeeping and cached power sums) into target, allocating a fresh *Bus if target is nil. It
// does not copy attached links/loads/generators or merge ties, mirroring
// the original's cloneBase pattern of copying parameter state while
// leaving the caller to re-wire the tree (coreOwningPtr.hpp).
func (b *Bus) CloneInto(target *Bus) (*Bus, error) {
	dst := target
	if dst == nil {
		// A clone minted without a target has no identity of its own yet
		// (id 0, the "no object" sentinel) until a caller attaches it to
		// a tree via an IDGenerator-backed Add call, mirroring the
		// original's clone() returning a detached coreObject*.
		dst = &Bus{Base: core.Base{}}
		dst.SetName(b.Name())
	}
	dst.busType = b.busType
	dst.prevType = b.prevType
	dst.voltage = b.voltage
	dst.angle = b.angle
	dst.freq = b.freq
	dst.vTarget = b.vTarget
	dst.Qmin = b.Qmin
	dst.Qmax = b.Qmax
	dst.Pmin = b.Pmin
	dst.Pmax = b.Pmax
	dst.lowVoltageThresh = b.lowVoltageThresh
	dst.lowVtime = b.lowVtime
	dst.oCount = b.oCount
	dst.S = b.S
	return dst, nil
}

// CompareTo is grid's concrete instance of the core.Comparable contract,
// used by the clone round-trip test property (spec.md §8 property 7):
// two buses are equal if every scalar field CloneInto copies matches.
func (b *Bus) CompareTo(o *Bus) bool {
	return b.busType == o.busType &&
		b.prevType == o.prevType &&
		b.voltage == o.voltage &&
		b.angle == o.angle &&
		b.freq == o.freq &&
		b.vTarget == o.vTarget &&
		b.Qmin == o.Qmin &&
		b.Qmax == o.Qmax &&
		b.Pmin == o.Pmin &&
		b.Pmax == o.Pmax &&
		b.lowVoltageThresh == o.lowVoltageThresh &&
		b.lowVtime == o.lowVtime &&
		b.oCount == o.oCount &&
		b.S == o.S
}

// LocalStateSizes returns the algebraic state this bus alone contributes:
// 2 (voltage, angle) for PQ, 1 for PV (angle free, voltage fixed) and for
// Afix (voltage free, angle fixed), 0 for SLK where both are fixed (spec.md §4.1's localAlg/localDiff/localRoot
// triple). Dynamic-mode state sizing is out of scope for this power-flow
// engine, so the same counts apply regardless of mode.Dynamic.
func (b *Bus) LocalStateSizes(mode core.SolverMode) core.StateSizes {
	if !b.Flags().Get(core.FlagEnabled) {
		return core.StateSizes{}
	}
	switch b.busType {
	case PQ:
		return core.StateSizes{Alg: 2}
	case SLK:
		return core.StateSizes{Alg: 0}
	default: // PV, Afix
		return core.StateSizes{Alg: 1}
	}
}

// StateSize implements the recursive stateSize contract of spec.md §4.1
// and §8 property 1: a bus's own algebraic size plus its attached
// loads' and generators' (currently always zero, since they are static
// value providers folded directly into the bus residual rather than
// separate state-bearing components).
func (b *Bus) StateSize(mode core.SolverMode) core.StateSizes {
	total := b.LocalStateSizes(mode)
	for _, g := range b.gens {
		if s, ok := g.(interface{ StateSize(core.SolverMode) core.StateSizes }); ok {
			total = total.Add(s.StateSize(mode))
		}
	}
	for _, l := range b.loads {
		if s, ok := l.(interface{ StateSize(core.SolverMode) core.StateSizes }); ok {
			total = total.Add(s.StateSize(mode))
		}
	}
	return total
}
