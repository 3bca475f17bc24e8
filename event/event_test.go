package event

import (
	"testing"

	"github.com/griddyn-go/simcore/core"
)

func TestExecuteEventsPopsEverythingDue(t *testing.T) {
	q := NewEventQueue()
	var order []string
	q.Insert(NewEventAdapter(1.0, func(t float64) core.ChangeCode {
		order = append(order, "a")
		return core.ParameterChange
	}))
	q.Insert(NewEventAdapter(0.5, func(t float64) core.ChangeCode {
		order = append(order, "b")
		return core.StateChange
	}))
	q.Insert(NewEventAdapter(2.0, func(t float64) core.ChangeCode {
		order = append(order, "c")
		return core.ExecutionFailure
	}))

	code := q.ExecuteEvents(1.5)
	if code != core.StateChange {
		t.Fatalf("aggregate = %v, want state_change (worst of a,b due by 1.5)", code)
	}
	if len(order) != 2 || order[0] != "b" || order[1] != "a" {
		t.Fatalf("order = %v, want [b a] (time order)", order)
	}
	if q.Len() != 1 {
		t.Fatalf("queue len = %d, want 1 (c still pending)", q.Len())
	}
}

func TestTiesBreakByInsertionOrder(t *testing.T) {
	q := NewEventQueue()
	var order []string
	q.Insert(NewEventAdapter(1.0, func(t float64) core.ChangeCode {
		order = append(order, "first")
		return core.NoChange
	}))
	q.Insert(NewEventAdapter(1.0, func(t float64) core.ChangeCode {
		order = append(order, "second")
		return core.NoChange
	}))

	q.ExecuteEvents(1.0)
	if len(order) != 2 || order[0] != "first" || order[1] != "second" {
		t.Fatalf("order = %v, want [first second]", order)
	}
}

func TestPeriodicAdapterReinsertsOneShotDiscards(t *testing.T) {
	q := NewEventQueue()
	count := 0
	q.Insert(NewPeriodicEventAdapter(1.0, 1.0, func(t float64) core.ChangeCode {
		count++
		return core.NoChange
	}))
	q.Insert(NewEventAdapter(1.0, func(t float64) core.ChangeCode {
		return core.NoChange
	}))

	q.ExecuteEvents(1.0)
	if q.Len() != 1 {
		t.Fatalf("after first tick, len = %d, want 1 (only periodic survives)", q.Len())
	}
	nt, ok := q.NextEventTime()
	if !ok || nt != 2.0 {
		t.Fatalf("next event time = %v,%v, want 2.0,true", nt, ok)
	}

	q.ExecuteEvents(2.0)
	if count != 2 {
		t.Fatalf("periodic fired %d times, want 2", count)
	}
	if q.Len() != 1 {
		t.Fatalf("after second tick, len = %d, want 1", q.Len())
	}
}

func TestCancelledEventNeverFires(t *testing.T) {
	q := NewEventQueue()
	fired := false
	a := NewEventAdapter(1.0, func(t float64) core.ChangeCode {
		fired = true
		return core.NoChange
	})
	q.Insert(a)
	a.Cancel()

	q.ExecuteEvents(1.0)
	if fired {
		t.Fatalf("cancelled adapter fired")
	}
}

func TestAssignmentEventIsIdempotentPerFire(t *testing.T) {
	calls := 0
	ev := NewEvent("voltage", 1.05, 1.0, func(field string, value float64) core.ChangeCode {
		calls++
		return core.ParameterChange
	})
	adapter := ev.ToAdapter()

	if got := adapter.Execute(1.0); got != core.ParameterChange {
		t.Fatalf("first execute = %v, want parameter_change", got)
	}
	if got := adapter.Execute(1.0); got != core.NoChange {
		t.Fatalf("second execute = %v, want no_change (idempotent)", got)
	}
	if calls != 1 {
		t.Fatalf("apply called %d times, want 1", calls)
	}
}

func TestNextEventTimeEmptyQueue(t *testing.T) {
	q := NewEventQueue()
	if _, ok := q.NextEventTime(); ok {
		t.Fatalf("expected ok=false on empty queue")
	}
}
