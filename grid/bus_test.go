package grid

import (
	"math"
	"testing"

	"github.com/griddyn-go/simcore/core"
)

type recordingSink struct {
	codes []core.Alert
}

func (s *recordingSink) Alert(source core.Parent, code core.Alert) {
	s.codes = append(s.codes, code)
}

func (s *recordingSink) has(code core.Alert) bool {
	for _, c := range s.codes {
		if c == code {
			return true
		}
	}
	return false
}

// S5 from spec.md §8: SLK bus with Qmax=1.0, Qmin=-1.0, vTarget=1.0.
// Inject genQ=1.2 and call powerFlowAdjust(ignoreLimits=false); expect
// the bus type to flip to PQ, S.genQ clamped to 1.0, a JAC_COUNT_CHANGE
// alert, and the returned change_code to be jacobian_change.
func TestScenarioS5SlackBusQLimitTransition(t *testing.T) {
	gen := core.NewIDGenerator()
	bus := NewBus(gen, "bus1", SLK)
	bus.Qmax = 1.0
	bus.Qmin = -1.0
	bus.vTarget = 1.0

	sink := &recordingSink{}
	bus.SetAlertSink(sink)

	g := NewGenerator(gen, "gen1", bus, 0.5, -10, 10)
	g.SetReactivePower(1.2)

	code := bus.PowerFlowAdjust(false)

	if bus.Type() != PQ {
		t.Fatalf("bus type = %v, want PQ", bus.Type())
	}
	if math.Abs(bus.S.genQ-1.0) > 1e-9 {
		t.Fatalf("S.genQ = %v, want clamped to 1.0", bus.S.genQ)
	}
	if !sink.has(core.AlertJacCountChange) {
		t.Fatalf("expected JAC_COUNT_CHANGE alert, got %v", sink.codes)
	}
	if code != core.JacobianChange {
		t.Fatalf("change_code = %v, want jacobian_change", code)
	}
}

func TestPowerFlowAdjustIgnoreLimitsIsNoop(t *testing.T) {
	gen := core.NewIDGenerator()
	bus := NewBus(gen, "bus1", SLK)
	bus.Qmax = 1.0
	g := NewGenerator(gen, "gen1", bus, 0, -10, 10)
	g.SetReactivePower(5.0)

	code := bus.PowerFlowAdjust(true)
	if code != core.NoChange {
		t.Fatalf("expected no_change when ignoring limits, got %v", code)
	}
	if bus.Type() != SLK {
		t.Fatalf("expected bus type unchanged under ignoreLimits, got %v", bus.Type())
	}
}

func TestMergeBusLowerIDBecomesMaster(t *testing.T) {
	gen := core.NewIDGenerator()
	b1 := NewBus(gen, "bus1", PQ) // id 1
	b2 := NewBus(gen, "bus2", PQ) // id 2

	b2.SetVoltage(0.9)
	b1.MergeBus(b2)

	b1.SetVoltage(1.05)
	if got := b2.Voltage(); math.Abs(got-1.05) > 1e-12 {
		t.Fatalf("slave voltage = %v, want 1.05 (tied to master)", got)
	}
}

func TestUnmergeBusSeparatesBuses(t *testing.T) {
	gen := core.NewIDGenerator()
	b1 := NewBus(gen, "bus1", PQ)
	b2 := NewBus(gen, "bus2", PQ)

	b1.MergeBus(b2)
	b1.UnmergeBus(b2)

	b1.SetVoltage(1.1)
	if got := b2.Voltage(); math.Abs(got-1.1) < 1e-12 {
		t.Fatalf("expected unmerged bus2 to stop tracking bus1's voltage")
	}
}

func TestConvergeDisconnectsBelowThreshold(t *testing.T) {
	gen := core.NewIDGenerator()
	bus := NewBus(gen, "bus1", PQ)
	bus.voltage = 1e-10

	resid := make([]float64, 2)
	code := bus.Converge(nil, resid, 0, 1, 1e-6)
	if code != core.JacobianChange {
		t.Fatalf("change_code = %v, want jacobian_change on disconnect", code)
	}
	if bus.LifecycleState() != core.Disconnected {
		t.Fatalf("expected bus disconnected below threshold")
	}
}
