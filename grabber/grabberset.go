package grabber

import "github.com/griddyn-go/simcore/core"

// Predictor supplies a predicted value at a future time when a
// GrabberSet has no state-grabber counterpart (spec.md §3's
// valuePredictor pattern, grounded on utilities/valuePredictor.hpp).
type Predictor interface {
	Predict(t float64) float64
}

// GrabberSet pairs a value-grabber with its optional state-space-aware
// counterpart, so the same signal can be read both outside and inside
// the solver (spec.md §3, §4.4). If only the value-grabber is present,
// state-space evaluation falls back to a predictor, or to the last
// grabbed value.
type GrabberSet struct {
	Value     Evaluator
	State     Evaluator
	predictor Predictor
	lastValue float64
	hasLast   bool
}

// NewGrabberSet wraps a value-grabber with no state counterpart or
// predictor yet attached.
func NewGrabberSet(value Evaluator) *GrabberSet {
	return &GrabberSet{Value: value}
}

// WithState attaches the state-space-aware counterpart.
func (gs *GrabberSet) WithState(state Evaluator) *GrabberSet {
	gs.State = state
	return gs
}

// WithPredictor attaches a fallback predictor used when no state
// grabber is present.
func (gs *GrabberSet) WithPredictor(p Predictor) *GrabberSet {
	gs.predictor = p
	return gs
}

// GrabData evaluates the outer value-grabber and remembers the result
// as the fallback for StateValue.
func (gs *GrabberSet) GrabData() float64 {
	v := gs.Value.GrabData()
	gs.lastValue = v
	gs.hasLast = true
	return v
}

// StateValue evaluates the state-space counterpart at time t, falling
// back to the predictor, then to the last grabbed value, per spec.md §3.
func (gs *GrabberSet) StateValue(t float64) float64 {
	if gs.State != nil {
		return gs.State.GrabData()
	}
	if gs.predictor != nil {
		return gs.predictor.Predict(t)
	}
	if gs.hasLast {
		return gs.lastValue
	}
	return gs.GrabData()
}

// OutputPartialDerivatives delegates to the state grabber when it is a
// *Grabber (spec.md §4.4); any other State, and a value-only GrabberSet,
// contributes nothing to the Jacobian path.
func (gs *GrabberSet) OutputPartialDerivatives(sD *core.StateData, mode core.SolverMode) []PartialDerivative {
	if jg, ok := gs.State.(*Grabber); ok {
		return jg.OutputPartialDerivatives(sD, mode)
	}
	return nil
}
