// Package condition implements the comparison and compound-logic layer
// that sits between grabbers and the relay engine (spec.md §4.5).
package condition

import (
	"math"

	"github.com/griddyn-go/simcore/core"
	"github.com/griddyn-go/simcore/grabber"
)

// CompareOp is one of the comparison operators the grammar in spec.md
// §6 recognizes.
type CompareOp int

const (
	OpLT CompareOp = iota
	OpLE
	OpGT
	OpGE
	OpEQ
	OpNE
	OpApprox // '~=': equality within margin, identical to OpEQ's evaluation
)

// Evaluable is implemented by both a leaf Condition and a
// CompoundCondition, so relays can treat either uniformly.
type Evaluable interface {
	EvalCondition() float64
	CheckCondition() bool
	EnableMargin()
	DisableMargin()
}

// Condition owns two grabber-sets (LHS, RHS; RHS may be a constant) and
// a comparison (spec.md §3, §4.5). The normalized evaluation is
// `residual = evalf(LHS, RHS, margin)` such that `residual < 0`
// corresponds to the condition being true for strict comparisons,
// `residual <= 0` for non-strict ones.
type Condition struct {
	lhs           grabber.Evaluator
	rhs           grabber.Evaluator
	op            CompareOp
	margin        float64
	marginEnabled bool
}

// New builds a Condition comparing lhs against rhs with op. margin
// defaults to 0 (no hysteresis band) until EnableMargin sets it active.
func New(lhs, rhs grabber.Evaluator, op CompareOp, margin float64) *Condition {
	return &Condition{lhs: lhs, rhs: rhs, op: op, margin: margin}
}

// NewConstantRHS builds a Condition whose RHS is a bare numeric
// constant rather than a grabber expression.
func NewConstantRHS(lhs grabber.Evaluator, value float64, op CompareOp, margin float64) *Condition {
	return New(lhs, grabber.Constant(value), op, margin)
}

// strict reports whether this comparison uses the strict (`< 0`) or
// non-strict (`<= 0`) residual threshold, per spec.md §4.5.
func (c *Condition) strict() bool {
	switch c.op {
	case OpLT, OpGT, OpNE:
		return true
	default:
		return false
	}
}

// EvalCondition returns the signed residual: negative (or <=0 for
// non-strict ops) means the condition holds.
func (c *Condition) EvalCondition() float64 {
	a := c.lhs.GrabData()
	b := c.rhs.GrabData()
	if a == core.NullValue || b == core.NullValue {
		return core.NullValue
	}

	switch c.op {
	case OpLT, OpLE:
		return a - b
	case OpGT, OpGE:
		return b - a
	case OpEQ, OpApprox:
		return math.Abs(a-b) - c.margin
	case OpNE:
		return c.margin - math.Abs(a-b)
	default:
		return core.NullValue
	}
}

// CheckCondition evaluates the boolean condition, applying the margin
// hysteresis band when enabled (the Schmitt-trigger effect of spec.md
// §4.5: "when a relay triggers a condition it enables the margin").
func (c *Condition) CheckCondition() bool {
	r := c.EvalCondition()
	if r == core.NullValue {
		return false
	}
	threshold := 0.0
	if c.marginEnabled {
		threshold = c.margin
	}
	if c.strict() {
		return r < threshold
	}
	return r <= threshold
}

// EnableMargin activates the hysteresis band (called when a relay
// triggers this condition).
func (c *Condition) EnableMargin() { c.marginEnabled = true }

// DisableMargin deactivates the hysteresis band (called when the
// condition clears).
func (c *Condition) DisableMargin() { c.marginEnabled = false }

// GetVal returns the LHS value (which=1) or RHS value (which=2), as
// used by spec.md §8's scenario assertions.
func (c *Condition) GetVal(which int) float64 {
	switch which {
	case 1:
		return c.lhs.GrabData()
	case 2:
		return c.rhs.GrabData()
	default:
		return core.NullValue
	}
}

// Margin returns the currently configured margin value.
func (c *Condition) Margin() float64 { return c.margin }

// SetMargin updates the margin value.
func (c *Condition) SetMargin(m float64) { c.margin = m }

// MarginEnabled reports whether the hysteresis band is currently active.
func (c *Condition) MarginEnabled() bool { return c.marginEnabled }
