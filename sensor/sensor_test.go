package sensor

import (
	"math"
	"testing"

	"github.com/griddyn-go/simcore/condition"
	"github.com/griddyn-go/simcore/core"
	"github.com/griddyn-go/simcore/event"
	"github.com/griddyn-go/simcore/grabber"
)

type stubThermal struct{ hotSpot float64 }

func (t *stubThermal) Name() string { return "thermal1" }
func (t *stubThermal) Get(param string) float64 {
	if param == "hot_spot" {
		return t.hotSpot
	}
	return core.NullValue
}

func TestIntegratorAccumulatesConstantInput(t *testing.T) {
	in := NewIntegrator(1.0 / 3600)
	in.Step(0, 3600)
	in.Step(1, 3600)
	in.Step(2, 3600)
	if got, want := in.Output(), 2.0; math.Abs(got-want) > 1e-9 {
		t.Fatalf("output = %v, want %v", got, want)
	}
}

// S6 from spec.md §8: sensor with input = hot_spot, filter =
// integral(gain=1/3600), condition = block0 > threshold, action = open
// breaker targeting switch1.
func TestScenarioS6SensorIntegratorTripsAction(t *testing.T) {
	gen := core.NewIDGenerator()
	thermal := &stubThermal{hotSpot: 3600}

	s := NewSensor(gen, "sensor1")
	hotSpotInput := grabber.New(thermal, "hot_spot")
	inputIdx := s.AddInput(hotSpotInput)

	integrator := NewIntegrator(1.0 / 3600)
	blockIdx := s.AddFilter(integrator, inputIdx)
	outIdx := s.AddBlockOutput(blockIdx)

	blockGrabber := grabber.New(s, "block0")
	cond := condition.NewConstantRHS(blockGrabber, 1.5, condition.OpGT, 0)
	s.AddCondition(cond, false)

	var actionFired bool
	var firedTargetField string
	s.AddAction(event.NewEventAdapter(0, func(t float64) core.ChangeCode {
		actionFired = true
		firedTargetField = "switch1"
		return core.StateChange
	}))
	s.AddActionTrigger(0, 0, 0)

	times := []float64{0, 1, 2}
	for _, tt := range times {
		s.Step(tt)
		s.RootTrigger(tt)
	}

	if got, want := s.Output(outIdx), 2.0; math.Abs(got-want) > 1e-6 {
		t.Fatalf("block0 output = %v, want ~%v (h*T/3600 = 3600*2/3600)", got, want)
	}
	if !actionFired {
		t.Fatalf("expected action to fire once block0 crossed threshold")
	}
	if firedTargetField != "switch1" {
		t.Fatalf("fired action target field = %q, want switch1", firedTargetField)
	}
}

func TestDirectOutputPassesInputThrough(t *testing.T) {
	gen := core.NewIDGenerator()
	thermal := &stubThermal{hotSpot: 42}
	s := NewSensor(gen, "sensor1")
	idx := s.AddInput(grabber.New(thermal, "hot_spot"))
	outIdx := s.AddDirectOutput(idx)

	if got := s.Output(outIdx); got != 42 {
		t.Fatalf("got %v, want 42", got)
	}
}
