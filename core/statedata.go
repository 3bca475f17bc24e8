package core

// StateData is the global state/residual snapshot passed in by the
// solver (spec.md §5 "Shared-resource policy"). Components read their
// own values via State[offset] and write into Resid[offset] or a
// JacobianSink; they may read other components' Outputs but never write
// them.
type StateData struct {
	// SeqID is the monotonically increasing counter the driver stamps on
	// each snapshot (GLOSSARY). Caches keyed by SeqID are invalidated on
	// any mismatch.
	SeqID int64

	Time   float64
	State  []float64
	DState []float64
	Resid  []float64
}

// JacobianSink receives (row, col, value) partial-derivative
// contributions. The concrete sparse-matrix implementation is an
// external collaborator (spec.md §1); this interface is all the core
// needs to route contributions into it.
type JacobianSink interface {
	SetJacobianElement(row, col int, value float64)
}

// MatrixData collects (row, col, value) triples into a flat slice; a
// trivial in-core JacobianSink implementation used by tests and by
// components that need to stage contributions before handing them to an
// external sparse assembler.
type MatrixData struct {
	Rows, Cols []int
	Values     []float64
}

// SetJacobianElement implements JacobianSink.
func (m *MatrixData) SetJacobianElement(row, col int, value float64) {
	m.Rows = append(m.Rows, row)
	m.Cols = append(m.Cols, col)
	m.Values = append(m.Values, value)
}

// Get returns the first recorded value for (row, col), used by tests
// that assert on the assembled Jacobian without running a full solve.
func (m *MatrixData) Get(row, col int) (float64, bool) {
	for i := range m.Rows {
		if m.Rows[i] == row && m.Cols[i] == col {
			return m.Values[i], true
		}
	}
	return 0, false
}
