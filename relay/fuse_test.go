package relay

import (
	"testing"

	"github.com/griddyn-go/simcore/core"
	"github.com/griddyn-go/simcore/event"
)

func TestFuseInstantaneousBlowsOnTrigger(t *testing.T) {
	gen := core.NewIDGenerator()
	cond := &mutableCondition{}
	blown := false
	action := event.NewEventAdapter(0, func(t float64) core.ChangeCode {
		blown = true
		return core.StateChange
	})

	f := NewFuse(gen, "fuse1", cond, action)

	cond.val = true
	f.RootTrigger(0)

	if !f.Blown() {
		t.Fatalf("expected fuse to blow once the overcurrent condition trips")
	}
	if !blown {
		t.Fatalf("expected the blow action to fire")
	}
}

func TestFuseI2TAccumulatesAndBlows(t *testing.T) {
	gen := core.NewIDGenerator()
	cond := &mutableCondition{}
	action := event.NewEventAdapter(0, func(t float64) core.ChangeCode { return core.StateChange })

	f := NewFuseWithI2T(gen, "fuse1", cond, action, 10.0)

	// current=2, dt=1 => 4 accumulated per step; two steps reach 8 <= 10,
	// the third reaches 12 > 10.
	for i := 0; i < 2; i++ {
		code := f.AccumulateI2T(2.0, 1.0, float64(i))
		if f.Blown() {
			t.Fatalf("fuse blew too early at step %d, accumulated=%v", i, f.AccumulatedI2T())
		}
		_ = code
	}
	if f.AccumulatedI2T() != 8.0 {
		t.Fatalf("accumulatedI2T = %v, want 8.0", f.AccumulatedI2T())
	}

	code := f.AccumulateI2T(2.0, 1.0, 2.0)
	if !f.Blown() {
		t.Fatalf("expected fuse to blow once accumulated I2T exceeds the limit")
	}
	if code != core.JacobianChange {
		t.Fatalf("expected JacobianChange from the blow, got %v", code)
	}
}

func TestFuseI2TInstantaneousTriggerDoesNotBlowDirectly(t *testing.T) {
	gen := core.NewIDGenerator()
	cond := &mutableCondition{}
	action := event.NewEventAdapter(0, func(t float64) core.ChangeCode { return core.StateChange })

	f := NewFuseWithI2T(gen, "fuse1", cond, action, 10.0)

	// In I2T mode, the instantaneous overcurrent condition alone must not
	// blow the fuse; only AccumulateI2T crossing the limit does.
	cond.val = true
	f.RootTrigger(0)
	if f.Blown() {
		t.Fatalf("expected I2T-mode fuse not to blow from the instantaneous condition alone")
	}
}
