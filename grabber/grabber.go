// Package grabber implements the single-value extractor framework
// (spec.md §4.4): a grabber is a pure function from (target object,
// optional state data) to a scalar, composable by arithmetic and
// function expressions via the recursive-descent interpreter in
// parser.go.
package grabber

import "github.com/griddyn-go/simcore/core"

// Gettable is the minimal surface a grabber target needs: the named
// parameter read-back from spec.md §6's external object-tree API.
// core.Component satisfies this structurally.
type Gettable interface {
	Get(param string) float64
	Name() string
}

// Evaluator is implemented by every node in a composed grabber
// expression: plain field grabbers, constants, and the binary/function
// nodes the parser builds over them.
type Evaluator interface {
	GrabData() float64
	Description() string
}

// JacobianMode names whether a grabber participates in the derivative
// path spec.md §4.4 describes. Grabber does not store or consult a
// JacobianMode; OutputPartialDerivatives decides from the target alone.
type JacobianMode int

const (
	// JacobianNone: this grabber is skipped by the derivative path.
	JacobianNone JacobianMode = iota
	// JacobianDirect: the grabber's target supplies partial derivatives
	// directly (it is itself a state grabber).
	JacobianDirect
)

// PartialDerivative is one (offset, value) contribution to a Jacobian
// row, as produced by OutputPartialDerivatives.
type PartialDerivative struct {
	Offset int
	Value  float64
}

// Grabber is the base single-value extractor: value = fn(target, sD,
// sMode) * gain + bias, expressed in outputUnits.
type Grabber struct {
	target      Gettable
	field       string
	gain        float64
	bias        float64
	inputUnits  string
	outputUnits string
	description string
}

// New constructs a Grabber with gain 1 and bias 0 (identity scaling).
func New(target Gettable, field string) *Grabber {
	return &Grabber{target: target, field: field, gain: 1, description: field}
}

// WithGain sets the multiplicative gain applied after unit conversion.
func (g *Grabber) WithGain(gain float64) *Grabber { g.gain = gain; return g }

// WithBias sets the additive bias applied after gain.
func (g *Grabber) WithBias(bias float64) *Grabber { g.bias = bias; return g }

// WithUnits sets the input/output unit pair for conversion.
func (g *Grabber) WithUnits(in, out string) *Grabber {
	g.inputUnits = in
	g.outputUnits = out
	return g
}

// WithDescription overrides the grabber's description string (the " as
// <name>" grammar rule).
func (g *Grabber) WithDescription(desc string) *Grabber {
	g.description = desc
	return g
}

// Field returns the target field name this grabber reads.
func (g *Grabber) Field() string { return g.field }

// Target returns the grabber's weak target reference (nil if unset).
func (g *Grabber) Target() Gettable { return g.target }

// SetTarget rebinds the grabber to a new target (used when cloning a
// relay/sensor configuration onto a different object).
func (g *Grabber) SetTarget(target Gettable) { g.target = target }

// GrabData evaluates the grabber: kNullVal if the target is nil or the
// field is unknown, else fn(target)*gain + bias in outputUnits
// (spec.md §3, §4.4).
func (g *Grabber) GrabData() float64 {
	if g == nil || g.target == nil {
		return core.NullValue
	}
	raw := g.target.Get(g.field)
	if raw == core.NullValue {
		return core.NullValue
	}
	converted := Convert(raw, g.inputUnits, g.outputUnits)
	return converted*g.gain + g.bias
}

// Description returns the grabber's description string.
func (g *Grabber) Description() string {
	if g.description != "" {
		return g.description
	}
	return g.field
}

// JacobianCapable is implemented by targets that can supply partial
// derivatives of one of their outputs with respect to global state
// offsets (the "state grabber" half of spec.md §4.4's GrabberSet).
type JacobianCapable interface {
	Gettable
	OutputPartialDerivatives(field string, sD *core.StateData, mode core.SolverMode) []PartialDerivative
}

// OutputPartialDerivatives returns this grabber's contribution to the
// derivative path, scaled by gain exactly as GrabData scales the value.
// A grabber whose target does not implement JacobianCapable, or whose
// target returns no partials, is skipped (returns nil) per spec.md
// §4.4; there is no per-grabber JacobianNone switch.
func (g *Grabber) OutputPartialDerivatives(sD *core.StateData, mode core.SolverMode) []PartialDerivative {
	jc, ok := g.target.(JacobianCapable)
	if !ok {
		return nil
	}
	raw := jc.OutputPartialDerivatives(g.field, sD, mode)
	if raw == nil {
		return nil
	}
	scaled := make([]PartialDerivative, len(raw))
	for i, pd := range raw {
		scaled[i] = PartialDerivative{Offset: pd.Offset, Value: pd.Value * g.gain}
	}
	return scaled
}

// Constant is a literal numeric Evaluator, used both as a parsed leaf
// node and as the RHS of a Condition built against a bare number
// (spec.md §4.5).
type Constant float64

func (c Constant) GrabData() float64    { return float64(c) }
func (c Constant) Description() string  { return "" }
