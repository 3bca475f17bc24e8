package sensor

import (
	"strconv"
	"strings"

	"github.com/griddyn-go/simcore/core"
	"github.com/griddyn-go/simcore/grabber"
	"github.com/griddyn-go/simcore/relay"
)

// OutputMode selects how a sensor output resolves, per spec.md §4.8.
type OutputMode int

const (
	OutputDirect OutputMode = iota
	OutputBlock
	OutputBlockDeriv
	OutputProcessed
)

type outputSpec struct {
	mode      OutputMode
	index     int
	processed grabber.Evaluator
}

// Sensor is a relay with no triggers by default, composing input
// grabbers through a chain of filter blocks into one or more named
// outputs (spec.md §3's Sensor row, §4.8).
type Sensor struct {
	*relay.Relay

	inputs      []grabber.Evaluator
	blocks      []FilterBlock
	blockInputs []int // blocks[i] reads inputs[blockInputs[i]]
	outputs     []outputSpec

	sampled      bool
	updatePeriod float64
}

// NewSensor builds an empty sensor.
func NewSensor(gen *core.IDGenerator, name string) *Sensor {
	return &Sensor{Relay: relay.NewRelay(gen, name)}
}

// AddInput registers a grabber expression as input N and returns its
// index (spec.md §4.8's `input N = <expr>`).
func (s *Sensor) AddInput(expr grabber.Evaluator) int {
	s.inputs = append(s.inputs, expr)
	return len(s.inputs) - 1
}

// AddFilter registers a filter block wired to read inputIndex
// (spec.md §4.8's `filter N = <spec>` plus `process N = <input-index>`).
func (s *Sensor) AddFilter(block FilterBlock, inputIndex int) int {
	s.blocks = append(s.blocks, block)
	s.blockInputs = append(s.blockInputs, inputIndex)
	return len(s.blocks) - 1
}

// AddDirectOutput registers an output that passes inputs[inputIndex]
// through unchanged.
func (s *Sensor) AddDirectOutput(inputIndex int) int {
	return s.addOutput(outputSpec{mode: OutputDirect, index: inputIndex})
}

// AddBlockOutput registers an output returning filterBlocks[blockIndex]'s
// current value.
func (s *Sensor) AddBlockOutput(blockIndex int) int {
	return s.addOutput(outputSpec{mode: OutputBlock, index: blockIndex})
}

// AddBlockDerivOutput registers an output returning d/dt of
// filterBlocks[blockIndex]'s output.
func (s *Sensor) AddBlockDerivOutput(blockIndex int) int {
	return s.addOutput(outputSpec{mode: OutputBlockDeriv, index: blockIndex})
}

// AddProcessedOutput registers an output evaluating a grabber
// expression over the sensor itself (so it may reference "block0",
// "input0", etc. via Sensor.Get).
func (s *Sensor) AddProcessedOutput(expr grabber.Evaluator) int {
	return s.addOutput(outputSpec{mode: OutputProcessed, processed: expr})
}

func (s *Sensor) addOutput(spec outputSpec) int {
	s.outputs = append(s.outputs, spec)
	return len(s.outputs) - 1
}

// SetSampled records a sampling period on the sensor. Step does not
// consult it: blocks still advance on every Step call. It also shadows
// Relay.SetSampled, so the embedded relay stays in continuous mode and
// its conditions still take part in root finding.
func (s *Sensor) SetSampled(period float64) {
	s.sampled = true
	s.updatePeriod = period
}

// Step advances every filter block to time t, reading its wired input's
// current value.
func (s *Sensor) Step(t float64) {
	for i, block := range s.blocks {
		u := s.inputs[s.blockInputs[i]].GrabData()
		block.Step(t, u)
	}
}

// Output evaluates output N per its configured mode (spec.md §4.8).
func (s *Sensor) Output(n int) float64 {
	if n < 0 || n >= len(s.outputs) {
		return core.NullValue
	}
	spec := s.outputs[n]
	switch spec.mode {
	case OutputDirect:
		if spec.index < 0 || spec.index >= len(s.inputs) {
			return core.NullValue
		}
		return s.inputs[spec.index].GrabData()
	case OutputBlock:
		if spec.index < 0 || spec.index >= len(s.blocks) {
			return core.NullValue
		}
		return s.blocks[spec.index].Output()
	case OutputBlockDeriv:
		if spec.index < 0 || spec.index >= len(s.blocks) {
			return core.NullValue
		}
		return s.blocks[spec.index].DerivOutput()
	case OutputProcessed:
		if spec.processed == nil {
			return core.NullValue
		}
		return spec.processed.GrabData()
	default:
		return core.NullValue
	}
}

// Get implements grabber.Gettable so conditions and processed outputs
// can reference "blockN", "blockderivN", and "inputN" fields on the
// sensor itself.
func (s *Sensor) Get(param string) float64 {
	switch {
	case strings.HasPrefix(param, "blockderiv"):
		if idx, ok := suffixIndex(param, "blockderiv"); ok && idx < len(s.blocks) {
			return s.blocks[idx].DerivOutput()
		}
	case strings.HasPrefix(param, "block"):
		if idx, ok := suffixIndex(param, "block"); ok && idx < len(s.blocks) {
			return s.blocks[idx].Output()
		}
	case strings.HasPrefix(param, "input"):
		if idx, ok := suffixIndex(param, "input"); ok && idx < len(s.inputs) {
			return s.inputs[idx].GrabData()
		}
	}
	return core.NullValue
}

func suffixIndex(param, prefix string) (int, bool) {
	rest := strings.TrimPrefix(param, prefix)
	if rest == "" {
		return 0, false
	}
	idx, err := strconv.Atoi(rest)
	if err != nil || idx < 0 {
		return 0, false
	}
	return idx, true
}
