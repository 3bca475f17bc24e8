package core

// SolverMode identifies the tuple (power-flow|dynamic, DAE|algebraic-only|
// differential-only, AC|DC, paired-offset-index) that parameterizes state
// layout (GLOSSARY). Offsets computed under one SolverMode are invalid
// under any other (spec.md §4.1).
type SolverMode struct {
	// Dynamic is false for power-flow mode, true for dynamic simulation.
	Dynamic bool
	// AlgebraicOnly restricts state to algebraic variables only.
	AlgebraicOnly bool
	// DifferentialOnly restricts state to differential variables only.
	DifferentialOnly bool
	// DCOnly restricts state to DC-only variables.
	DCOnly bool
	// PairIndex selects between predictor (0) and corrector (1) offset
	// sets for multistep/predictor-corrector schemes.
	PairIndex int

	// offsetIndex is not set or read anywhere; key() below computes the
	// dense offset-table key from the other fields on each call.
	offsetIndex int
}

// key packs the mode's boolean/int fields into a small dense integer
// usable as an offset-table index.
func (m SolverMode) key() int {
	k := 0
	if m.Dynamic {
		k |= 1
	}
	if m.AlgebraicOnly {
		k |= 2
	}
	if m.DifferentialOnly {
		k |= 4
	}
	if m.DCOnly {
		k |= 8
	}
	k |= m.PairIndex << 4
	return k
}

// PowerFlowMode is the canonical power-flow solver mode.
var PowerFlowMode = SolverMode{Dynamic: false}

// DynamicMode is the canonical full DAE dynamic solver mode.
var DynamicMode = SolverMode{Dynamic: true}

// DynamicAlgebraicMode restricts the dynamic solver to algebraic state
// only (used for consistency initialization).
var DynamicAlgebraicMode = SolverMode{Dynamic: true, AlgebraicOnly: true}
