package relay

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/griddyn-go/simcore/core"
	"github.com/griddyn-go/simcore/event"
	"github.com/griddyn-go/simcore/internal/simmetrics"
)

type mutableCondition struct {
	val           bool
	marginEnabled bool
}

func (c *mutableCondition) EvalCondition() float64 {
	if c.val {
		return -1
	}
	return 1
}
func (c *mutableCondition) CheckCondition() bool { return c.val }
func (c *mutableCondition) EnableMargin()        { c.marginEnabled = true }
func (c *mutableCondition) DisableMargin()       { c.marginEnabled = false }

type recordingSink struct {
	codes []core.Alert
}

func (s *recordingSink) Alert(source core.Parent, code core.Alert) {
	s.codes = append(s.codes, code)
}

func TestTriggerConditionExecutesImmediateAction(t *testing.T) {
	gen := core.NewIDGenerator()
	r := NewRelay(gen, "relay1")

	cond := &mutableCondition{val: true}
	r.AddCondition(cond, false)

	fired := false
	r.AddAction(event.NewEventAdapter(0, func(t float64) core.ChangeCode {
		fired = true
		return core.ParameterChange
	}))
	r.AddActionTrigger(0, 0, 0)

	code := r.TriggerCondition(0, 1.0, 0)
	if code != core.ParameterChange {
		t.Fatalf("code = %v, want parameter_change", code)
	}
	if !fired {
		t.Fatalf("expected immediate action execution")
	}
	if r.ConditionStatusAt(0) != StatusTriggered {
		t.Fatalf("expected condition 0 triggered")
	}
	if r.TriggerCount() != 1 {
		t.Fatalf("trigger count = %d, want 1", r.TriggerCount())
	}
}

func TestTriggerConditionSchedulesDelayedAction(t *testing.T) {
	gen := core.NewIDGenerator()
	r := NewRelay(gen, "relay1")

	cond := &mutableCondition{val: true}
	r.AddCondition(cond, false)

	fired := false
	r.AddAction(event.NewEventAdapter(0, func(t float64) core.ChangeCode {
		fired = true
		return core.ParameterChange
	}))
	r.AddActionTrigger(0, 0, 2.0)

	r.TriggerCondition(0, 1.0, 0)
	if fired {
		t.Fatalf("action fired immediately despite delay > minDelay")
	}

	r.ProcessCondChecks(2.5)
	if fired {
		t.Fatalf("action fired before scheduled time 3.0")
	}

	r.ProcessCondChecks(3.0)
	if !fired {
		t.Fatalf("expected action to fire at scheduled time 3.0")
	}
}

func TestMultiConditionTriggerRequiresAllParticipants(t *testing.T) {
	gen := core.NewIDGenerator()
	r := NewRelay(gen, "relay1")

	c0 := &mutableCondition{val: true}
	c1 := &mutableCondition{val: false}
	r.AddCondition(c0, false)
	r.AddCondition(c1, false)

	fired := false
	r.AddAction(event.NewEventAdapter(0, func(t float64) core.ChangeCode {
		fired = true
		return core.StateChange
	}))
	r.AddMultiConditionTrigger(0, 0, []int{0, 1}, 0)

	r.TriggerCondition(0, 1.0, 0)
	if fired {
		t.Fatalf("multi-condition action fired before all participants triggered")
	}

	r.TriggerCondition(1, 1.0, 0)
	if !fired {
		t.Fatalf("expected multi-condition action to fire once both conditions triggered")
	}
}

func TestLiveRootCountAlertsOnChange(t *testing.T) {
	gen := core.NewIDGenerator()
	r := NewRelay(gen, "relay1")
	sink := &recordingSink{}
	r.SetAlertSink(sink)

	cond := &mutableCondition{val: false}
	r.AddCondition(cond, false)
	if r.LiveRootCount() != 1 {
		t.Fatalf("root count = %d, want 1 (one active condition)", r.LiveRootCount())
	}

	cond.val = true
	r.TriggerCondition(0, 1.0, 0)
	if r.LiveRootCount() != 0 {
		t.Fatalf("root count = %d, want 0 (non-resettable condition now triggered)", r.LiveRootCount())
	}

	found := false
	for _, c := range sink.codes {
		if c == core.AlertRootCountChange {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected AlertRootCountChange to be emitted, got %v", sink.codes)
	}
}

func TestRootTriggerSnapshotsEligibleSetBeforeIterating(t *testing.T) {
	gen := core.NewIDGenerator()
	r := NewRelay(gen, "relay1")

	c0 := &mutableCondition{val: true}
	c1 := &mutableCondition{val: true}
	r.AddCondition(c0, false)
	r.AddCondition(c1, false)

	r.AddAction(event.NewEventAdapter(0, func(t float64) core.ChangeCode { return core.NoChange }))
	r.AddAction(event.NewEventAdapter(0, func(t float64) core.ChangeCode { return core.NoChange }))
	r.AddActionTrigger(0, 0, 0)
	r.AddActionTrigger(1, 1, 0)

	r.RootTrigger(1.0)
	if r.ConditionStatusAt(0) != StatusTriggered || r.ConditionStatusAt(1) != StatusTriggered {
		t.Fatalf("expected both conditions triggered in one RootTrigger pass")
	}
}

// S4 from spec.md §8: breaker with limit=1.0pu, recloserTap=0,
// minClearingTime=0, recloseTime1=1.0s, maxRecloseAttempts=1.
func TestScenarioS4BreakerTripAndReclose(t *testing.T) {
	gen := core.NewIDGenerator()
	overcurrent := &mutableCondition{val: false}

	openCount, closeCount := 0, 0
	openAction := event.NewEventAdapter(0, func(t float64) core.ChangeCode {
		openCount++
		return core.StateChange
	})
	closeAction := event.NewEventAdapter(0, func(t float64) core.ChangeCode {
		closeCount++
		return core.StateChange
	})

	b := NewBreaker(gen, "breaker1", overcurrent, openAction, closeAction, BreakerConfig{
		MinClearingTime:    0,
		RecloseTime1:       1.0,
		RecloseTime2:       5.0,
		MaxRecloseAttempts: 1,
	})

	overcurrent.val = true
	b.Update(0.5)
	if !b.Tripped() {
		t.Fatalf("expected breaker tripped at t=0.5")
	}
	if openCount != 1 {
		t.Fatalf("open action fired %d times, want 1", openCount)
	}

	b.Update(1.0)
	if closeCount != 0 {
		t.Fatalf("reclose fired early at t=1.0")
	}

	b.Update(1.5)
	if closeCount != 1 {
		t.Fatalf("expected reclose action at t=1.5, got %d", closeCount)
	}

	if b.Tripped() {
		t.Fatalf("expected breaker re-tripped is suppressed: attempts exhausted, but Update left it tripped=%v", b.Tripped())
	}
	if openCount != 1 {
		t.Fatalf("expected no second trip (attempts exhausted), open fired %d times", openCount)
	}
	if b.RecloseAttempts() != 1 {
		t.Fatalf("reclose attempts = %d, want 1", b.RecloseAttempts())
	}
}

func TestTriggerConditionReportsRelayTripped(t *testing.T) {
	gen := core.NewIDGenerator()
	r := NewRelay(gen, "relay1")
	m := simmetrics.NewRecorder()
	r.SetMetrics(m)

	cond := &mutableCondition{val: true}
	r.AddCondition(cond, false)

	r.TriggerCondition(0, 1.0, 0)

	if got := testutil.ToFloat64(m.relayTrips.WithLabelValues("relay1")); got != 1 {
		t.Fatalf("relayTrips[relay1] = %v, want 1", got)
	}
}

func TestUpdateRootCountReportsLiveRootCount(t *testing.T) {
	gen := core.NewIDGenerator()
	r := NewRelay(gen, "relay1")
	m := simmetrics.NewRecorder()
	r.SetMetrics(m)

	r.AddCondition(&mutableCondition{}, false)
	r.AddCondition(&mutableCondition{}, false)

	if got := testutil.ToFloat64(m.liveRootCount); got != 2 {
		t.Fatalf("liveRootCount = %v, want 2", got)
	}
}

// A pending delayed check for a condition that clears (and later
// retriggers) before the check is due must not fire against the stale
// trigger (spec.md §4.7 step 4's clearCondChecks purge).
func TestClearConditionPurgesPendingCondChecks(t *testing.T) {
	gen := core.NewIDGenerator()
	r := NewRelay(gen, "relay1")

	cond := &mutableCondition{val: true}
	r.AddCondition(cond, true) // resettable, so it stays root-eligible after triggering

	fireCount := 0
	r.AddAction(event.NewEventAdapter(0, func(t float64) core.ChangeCode {
		fireCount++
		return core.StateChange
	}))
	r.AddActionTrigger(0, 0, 5.0)

	r.TriggerCondition(0, 0, 0) // schedules a check for t=5.0
	if len(r.condChecks) != 1 {
		t.Fatalf("expected one pending condCheck, got %d", len(r.condChecks))
	}

	cond.val = false
	r.RootTrigger(1.0) // clears the condition before the check comes due
	if len(r.condChecks) != 0 {
		t.Fatalf("expected clearCondition to purge the pending check, got %d left", len(r.condChecks))
	}

	// Retrigger and let the original checkup time pass: only the new
	// schedule (from this trigger) may fire, not a stale one.
	cond.val = true
	r.TriggerCondition(0, 2.0, 0) // schedules a fresh check for t=7.0

	r.ProcessCondChecks(5.0) // the purged, stale check's time
	if fireCount != 0 {
		t.Fatalf("stale condCheck fired, fireCount = %d, want 0", fireCount)
	}

	r.ProcessCondChecks(7.0)
	if fireCount != 1 {
		t.Fatalf("fresh condCheck never fired, fireCount = %d, want 1", fireCount)
	}
}
