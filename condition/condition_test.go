package condition

import (
	"math"
	"testing"

	"github.com/griddyn-go/simcore/core"
	"github.com/griddyn-go/simcore/grabber"
)

type stubBus struct{ voltage, angle float64 }

func (b *stubBus) Name() string { return "bus1" }
func (b *stubBus) Get(param string) float64 {
	switch param {
	case "voltage":
		return b.voltage
	case "angle":
		return b.angle
	default:
		return core.NullValue
	}
}

func approx(a, b, tol float64) bool { return math.Abs(a-b) <= tol }

// S1 from spec.md §8: bus voltage 1.0, angle 0.05; condition voltage < 0.7.
func TestScenarioS1ConditionOnSimpleBus(t *testing.T) {
	bus := &stubBus{voltage: 1.0, angle: 0.05}
	node, _, err := grabber.Parse("voltage", bus, nil)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	c := NewConstantRHS(node, 0.7, OpLT, 0)

	if got := c.EvalCondition(); !approx(got, 0.3, 1e-6) {
		t.Fatalf("evalCondition() = %v, want 0.3", got)
	}
	if c.CheckCondition() {
		t.Fatalf("checkCondition() = true, want false")
	}
	if got := c.GetVal(1); !approx(got, 1.0, 1e-9) {
		t.Fatalf("getVal(1) = %v, want 1.0", got)
	}
	if got := c.GetVal(2); !approx(got, 0.7, 1e-9) {
		t.Fatalf("getVal(2) = %v, want 0.7", got)
	}
}

// S2 from spec.md §8: same bus; condition (voltage - 0.4) < 0.7.
func TestScenarioS2ConditionWithArithmetic(t *testing.T) {
	bus := &stubBus{voltage: 1.0, angle: 0.05}
	node, _, err := grabber.Parse("voltage - 0.4", bus, nil)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	c := NewConstantRHS(node, 0.7, OpLT, 0)

	if got := c.EvalCondition(); !approx(got, -0.1, 1e-6) {
		t.Fatalf("evalCondition() = %v, want -0.1", got)
	}
	if !c.CheckCondition() {
		t.Fatalf("checkCondition() = false, want true")
	}
	if got := c.GetVal(1); !approx(got, 0.6, 1e-9) {
		t.Fatalf("getVal(1) = %v, want 0.6", got)
	}
	if got := c.GetVal(2); !approx(got, 0.7, 1e-9) {
		t.Fatalf("getVal(2) = %v, want 0.7", got)
	}
}

func TestSchmittTriggerMarginHysteresis(t *testing.T) {
	bus := &stubBus{voltage: 0.71}
	node, _, _ := grabber.Parse("voltage", bus, nil)
	c := NewConstantRHS(node, 0.7, OpLT, 0.05)

	if c.CheckCondition() {
		t.Fatalf("expected false before margin enabled (0.71 not < 0.7)")
	}

	c.EnableMargin()
	if !c.CheckCondition() {
		t.Fatalf("expected true once margin enabled (0.71 < 0.7+0.05)")
	}

	c.DisableMargin()
	if c.CheckCondition() {
		t.Fatalf("expected false again once margin disabled")
	}
}

type boolCondition struct{ val bool }

func (b *boolCondition) EvalCondition() float64 {
	if b.val {
		return -1
	}
	return 1
}
func (b *boolCondition) CheckCondition() bool { return b.val }
func (b *boolCondition) EnableMargin()        {}
func (b *boolCondition) DisableMargin()       {}

func TestCompoundConditionAND(t *testing.T) {
	cc := NewCompound(AggAND, &boolCondition{true}, &boolCondition{true}, &boolCondition{false})
	if cc.CheckCondition() {
		t.Fatalf("expected AND with one false child to be false")
	}
	cc2 := NewCompound(AggAND, &boolCondition{true}, &boolCondition{true})
	if !cc2.CheckCondition() {
		t.Fatalf("expected AND of all-true children to be true")
	}
}

func TestCompoundConditionCounting(t *testing.T) {
	cc := NewCompound(AggTwoOf, &boolCondition{true}, &boolCondition{true}, &boolCondition{false})
	if !cc.CheckCondition() {
		t.Fatalf("expected two_of with exactly 2 true children to be true")
	}
	ccOdd := NewCompound(AggOdd, &boolCondition{true}, &boolCondition{true}, &boolCondition{true})
	if !ccOdd.CheckCondition() {
		t.Fatalf("expected odd with 3 true children to be true")
	}
}

func TestCompoundConditionNONEShortCircuits(t *testing.T) {
	calls := 0
	cc := NewCompound(AggNone,
		&countingCondition{val: true, calls: &calls},
		&countingCondition{val: true, calls: &calls},
	)
	if cc.CheckCondition() {
		t.Fatalf("expected NONE with a true child to be false")
	}
	if calls != 1 {
		t.Fatalf("expected short-circuit after first true child, got %d calls", calls)
	}
}

type countingCondition struct {
	val   bool
	calls *int
}

func (c *countingCondition) EvalCondition() float64 {
	return 0
}
func (c *countingCondition) CheckCondition() bool {
	*c.calls++
	return c.val
}
func (c *countingCondition) EnableMargin()  {}
func (c *countingCondition) DisableMargin() {}
