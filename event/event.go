// Package event implements the scheduled-action layer that drives a
// simulation's run loop forward between solver steps (spec.md §4.6).
package event

import "github.com/griddyn-go/simcore/core"

// Action is the work an EventAdapter performs when it fires. It returns
// the change code the queue should fold into its aggregate result.
type Action func(t float64) core.ChangeCode

// EventAdapter is a schedulable unit of work: a next-due time, an
// optional period for periodic re-insertion (zero means fire once and
// discard), and the action to execute (spec.md §4.6, §3's EventAdapter
// row).
type EventAdapter struct {
	action   Action
	nextTime float64
	period   float64
	seq      int64
	armed    bool
}

// NewEventAdapter builds a one-shot adapter due at t.
func NewEventAdapter(t float64, action Action) *EventAdapter {
	return &EventAdapter{action: action, nextTime: t, armed: true}
}

// NewPeriodicEventAdapter builds an adapter that re-inserts itself with
// nextTime += period after every firing, per spec.md §4.6 step 3.
func NewPeriodicEventAdapter(t, period float64, action Action) *EventAdapter {
	return &EventAdapter{action: action, nextTime: t, period: period, armed: true}
}

// NextTime returns the adapter's currently scheduled fire time.
func (a *EventAdapter) NextTime() float64 { return a.nextTime }

// Period returns the re-insertion period; zero means one-shot.
func (a *EventAdapter) Period() float64 { return a.period }

// Armed reports whether the adapter is still eligible to fire. A
// cancelled event never re-fires (spec.md §3's Event row).
func (a *EventAdapter) Armed() bool { return a.armed }

// Cancel disarms the adapter; executeEvents skips disarmed adapters and
// drops them rather than re-inserting.
func (a *EventAdapter) Cancel() { a.armed = false }

// Execute runs the action at time t and returns the resulting change
// code. Callers (the EventQueue) are responsible for re-insertion or
// discard per Period().
func (a *EventAdapter) Execute(t float64) core.ChangeCode {
	if !a.armed || a.action == nil {
		return core.NoChange
	}
	return a.action(t)
}

// Event is the concrete target-field assignment form described in
// spec.md §3's Event row and §6's string grammar
// (`<target-field> '=' <value> ['@' <time>]`). It adapts to an
// EventAdapter via ToAdapter.
type Event struct {
	TargetField string
	Value       float64
	ScheduledAt float64
	apply       func(field string, value float64) core.ChangeCode
	fired       bool
}

// NewEvent builds a value-assignment event. apply is invoked with
// TargetField/Value when the event fires; it is expected to locate the
// target object and set the field, returning the resulting change code.
func NewEvent(targetField string, value, scheduledAt float64, apply func(field string, value float64) core.ChangeCode) *Event {
	return &Event{TargetField: targetField, Value: value, ScheduledAt: scheduledAt, apply: apply}
}

// ToAdapter wraps the event in a one-shot EventAdapter. Execution is
// idempotent per (time, field): firing twice at the same scheduled time
// is a no-op after the first call, per spec.md §3's Event row.
func (e *Event) ToAdapter() *EventAdapter {
	return NewEventAdapter(e.ScheduledAt, func(t float64) core.ChangeCode {
		if e.fired {
			return core.NoChange
		}
		e.fired = true
		if e.apply == nil {
			return core.NoChange
		}
		return e.apply(e.TargetField, e.Value)
	})
}
