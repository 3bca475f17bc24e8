package condition

import "github.com/griddyn-go/simcore/core"

// Aggregator selects how a CompoundCondition combines its children's
// boolean results (spec.md §4.5).
type Aggregator int

const (
	AggAND Aggregator = iota
	AggOR
	AggXOR
	AggOneOf
	AggTwoOf
	AggThreeOf
	AggTwoOrMore
	AggThreeOrMore
	AggEven
	AggEvenMin // even count, excluding zero
	AggOdd
	AggNone
)

// CompoundCondition applies short-circuit evaluation over child
// conditions and aggregates their boolean results by one of the modes
// above. Short-circuit mode is selected per aggregator: AND breaks on
// first false, OR/NONE break on first true; the counting aggregators
// (XOR, one_of, ..., odd) must see every child to know the final
// count, so they evaluate all of them (spec.md §4.5).
type CompoundCondition struct {
	children []Evaluable
	agg      Aggregator
}

// NewCompound builds a CompoundCondition over children with the given
// aggregator.
func NewCompound(agg Aggregator, children ...Evaluable) *CompoundCondition {
	return &CompoundCondition{agg: agg, children: children}
}

// CheckCondition evaluates the compound boolean per spec.md §4.5.
func (cc *CompoundCondition) CheckCondition() bool {
	switch cc.agg {
	case AggAND:
		for _, ch := range cc.children {
			if !ch.CheckCondition() {
				return false
			}
		}
		return true
	case AggOR:
		for _, ch := range cc.children {
			if ch.CheckCondition() {
				return true
			}
		}
		return false
	case AggNone:
		for _, ch := range cc.children {
			if ch.CheckCondition() {
				return false
			}
		}
		return true
	default:
		count := cc.trueCount()
		switch cc.agg {
		case AggXOR, AggOneOf:
			return count == 1
		case AggTwoOf:
			return count == 2
		case AggThreeOf:
			return count == 3
		case AggTwoOrMore:
			return count >= 2
		case AggThreeOrMore:
			return count >= 3
		case AggEven:
			return count%2 == 0
		case AggEvenMin:
			return count > 0 && count%2 == 0
		case AggOdd:
			return count%2 == 1
		default:
			return false
		}
	}
}

func (cc *CompoundCondition) trueCount() int {
	count := 0
	for _, ch := range cc.children {
		if ch.CheckCondition() {
			count++
		}
	}
	return count
}

// EvalCondition returns a signed residual consistent with
// CheckCondition: negative when the compound is true. For AND/OR it
// propagates the deciding child's residual; for NONE and the counting
// aggregators it returns a small negative/positive sentinel since no
// single child residual determines the boolean.
func (cc *CompoundCondition) EvalCondition() float64 {
	switch cc.agg {
	case AggAND:
		worst := -1.0
		any := false
		for _, ch := range cc.children {
			r := ch.EvalCondition()
			if r == core.NullValue {
				return core.NullValue
			}
			if !any || r > worst {
				worst = r
				any = true
			}
		}
		if !any {
			return -1
		}
		return worst
	case AggOR:
		best := 1.0
		any := false
		for _, ch := range cc.children {
			r := ch.EvalCondition()
			if r == core.NullValue {
				continue
			}
			if !any || r < best {
				best = r
				any = true
			}
		}
		if !any {
			return 1
		}
		return best
	default:
		if cc.CheckCondition() {
			return -1
		}
		return 1
	}
}

// EnableMargin enables the hysteresis band on every child condition.
func (cc *CompoundCondition) EnableMargin() {
	for _, ch := range cc.children {
		ch.EnableMargin()
	}
}

// DisableMargin disables the hysteresis band on every child condition.
func (cc *CompoundCondition) DisableMargin() {
	for _, ch := range cc.children {
		ch.DisableMargin()
	}
}
