// Package relay implements the condition/action engine described in
// spec.md §4.7: conditions paired with status, trigger times, actions,
// and delayed condition-check bookkeeping.
package relay

import (
	"github.com/griddyn-go/simcore/condition"
	"github.com/griddyn-go/simcore/core"
	"github.com/griddyn-go/simcore/event"
	"github.com/griddyn-go/simcore/internal/simmetrics"
)

// ConditionStatus is the per-condition state machine described in
// spec.md §3's Relay row.
type ConditionStatus int

const (
	StatusActive ConditionStatus = iota
	StatusTriggered
	StatusDisabled
)

type actionTrigger struct {
	actionIndex int
	delay       float64
}

type multiConditionTrigger struct {
	actionIndex int
	conditions  []int
	delay       float64
}

type condCheck struct {
	conditionNum   int
	actionNum      int
	testTime       float64
	multiCondition bool
}

// Relay owns weak references to a source and sink object plus the
// condition/action bookkeeping of spec.md §4.7. It embeds core.Base so
// it participates in the component tree and alert propagation like any
// other component.
type Relay struct {
	core.Base

	source core.Parent
	sink   core.Parent

	conditions            []condition.Evaluable
	cStates               []ConditionStatus
	conditionTriggerTimes []float64
	resettable            []bool

	actions []*event.EventAdapter

	actionTriggers         map[int][]actionTrigger
	multiConditionTriggers map[int][]multiConditionTrigger
	condChecks             []condCheck

	triggerCount      int
	actionsTakenCount int
	liveRootCount     int

	sampled      bool
	updatePeriod float64

	metrics *simmetrics.Recorder

	// OnConditionTriggered and OnConditionCleared let concrete relay
	// kinds (breaker, fuse, differential) hook the trigger/clear
	// transitions without Relay needing a virtual-method table, the Go
	// equivalent of Relay::conditionTriggered/conditionCleared being
	// overridden in original_source/src/griddyn/relays/Relay.cpp.
	OnConditionTriggered func(conditionNum int, t float64)
	OnConditionCleared   func(conditionNum int, t float64)
}

// NewRelay builds an empty relay in continuous (root-finding) mode.
func NewRelay(gen *core.IDGenerator, name string) *Relay {
	r := &Relay{
		Base:                   core.InitBase(gen, name),
		actionTriggers:         make(map[int][]actionTrigger),
		multiConditionTriggers: make(map[int][]multiConditionTrigger),
	}
	return r
}

// SetMetrics installs the recorder this relay reports trips and live
// root counts to. A nil recorder (the zero value) is safe to leave
// wired since every Recorder method tolerates a nil receiver.
func (r *Relay) SetMetrics(m *simmetrics.Recorder) { r.metrics = m }

// SetSampled switches the relay to sampled (polling) mode with the
// given update period, replacing root-finding with periodic
// re-evaluation (spec.md §4.7's "sampled (non-continuous) mode").
func (r *Relay) SetSampled(period float64) {
	r.sampled = true
	r.updatePeriod = period
}

// Sampled reports whether this relay polls instead of root-finding.
func (r *Relay) Sampled() bool { return r.sampled }

// UpdatePeriod returns the polling period configured by SetSampled (0 if
// the relay is in continuous root-finding mode).
func (r *Relay) UpdatePeriod() float64 { return r.updatePeriod }

// SetEndpoints records the relay's weak source/sink references.
func (r *Relay) SetEndpoints(source, sink core.Parent) {
	r.source = source
	r.sink = sink
}

// Source returns the relay's source object.
func (r *Relay) Source() core.Parent { return r.source }

// Sink returns the relay's sink object.
func (r *Relay) Sink() core.Parent { return r.sink }

// AddCondition registers a condition in the active state and returns
// its index. resettable marks whether a triggered instance of this
// condition still contributes to the live root count (spec.md §4.7's
// root-count bookkeeping rule).
func (r *Relay) AddCondition(c condition.Evaluable, resettable bool) int {
	idx := len(r.conditions)
	r.conditions = append(r.conditions, c)
	r.cStates = append(r.cStates, StatusActive)
	r.conditionTriggerTimes = append(r.conditionTriggerTimes, 0)
	r.resettable = append(r.resettable, resettable)
	r.updateRootCount()
	return idx
}

// AddAction registers an action (event adapter) and returns its index.
func (r *Relay) AddAction(a *event.EventAdapter) int {
	r.actions = append(r.actions, a)
	return len(r.actions) - 1
}

// AddActionTrigger wires conditionNum to fire actionIndex after delay
// once triggered (spec.md §4.7's actionTriggers row).
func (r *Relay) AddActionTrigger(conditionNum, actionIndex int, delay float64) {
	r.actionTriggers[conditionNum] = append(r.actionTriggers[conditionNum], actionTrigger{actionIndex, delay})
}

// AddMultiConditionTrigger wires actionIndex to fire once every
// condition in conditions (rooted at conditionNum) is triggered and
// delay has elapsed since the last of them tripped. The trigger is
// registered under conditionNum and under every listed condition, so it
// is evaluated whichever participant triggers last.
func (r *Relay) AddMultiConditionTrigger(conditionNum, actionIndex int, conditions []int, delay float64) {
	mct := multiConditionTrigger{
		actionIndex: actionIndex,
		conditions:  conditions,
		delay:       delay,
	}
	r.multiConditionTriggers[conditionNum] = append(r.multiConditionTriggers[conditionNum], mct)
	for _, cn := range conditions {
		if cn != conditionNum {
			r.multiConditionTriggers[cn] = append(r.multiConditionTriggers[cn], mct)
		}
	}
}

// ConditionStatusAt returns the current status of condition c.
func (r *Relay) ConditionStatusAt(c int) ConditionStatus { return r.cStates[c] }

// LiveRootCount returns the number of conditions currently contributing
// a root-finding function (spec.md §4.7, §8 universal property 5).
func (r *Relay) LiveRootCount() int { return r.liveRootCount }

// TriggerCount returns how many times any condition has triggered.
func (r *Relay) TriggerCount() int { return r.triggerCount }

// ActionsTakenCount returns how many actions have executed.
func (r *Relay) ActionsTakenCount() int { return r.actionsTakenCount }

// RootTest returns one root residual per eligible condition: every
// active condition plus every resettable condition currently triggered
// (spec.md §4.7 step 1). The order matches AddCondition's insertion
// order restricted to eligible indices.
func (r *Relay) RootTest() []float64 {
	var roots []float64
	for i, st := range r.cStates {
		if r.eligibleForRoot(i, st) {
			roots = append(roots, r.conditions[i].EvalCondition())
		}
	}
	return roots
}

func (r *Relay) eligibleForRoot(i int, st ConditionStatus) bool {
	if st == StatusDisabled {
		return false
	}
	if st == StatusActive {
		return true
	}
	return st == StatusTriggered && r.resettable[i]
}

// RootTrigger re-evaluates every eligible condition's boolean state and
// fires transitions: an active condition whose CheckCondition becomes
// true triggers; a resettable condition already triggered whose
// CheckCondition becomes false clears. The eligible index set is
// snapshotted before iterating since a trigger can change cStates and
// therefore the next eligibility test (spec.md §5's "a trigger that
// invalidates the in-flight root list must snapshot it before
// iteration").
func (r *Relay) RootTrigger(t float64) core.ChangeCode {
	var eligible []int
	for i, st := range r.cStates {
		if r.eligibleForRoot(i, st) {
			eligible = append(eligible, i)
		}
	}

	agg := core.NoChange
	for _, i := range eligible {
		switch r.cStates[i] {
		case StatusActive:
			if r.conditions[i].CheckCondition() {
				agg = core.Max(agg, r.TriggerCondition(i, t, 0))
			}
		case StatusTriggered:
			if !r.conditions[i].CheckCondition() {
				r.clearCondition(i, t)
			}
		}
	}
	return agg
}

// PollSampled re-checks every active condition on a fixed period
// instead of via root-finding (spec.md §4.7's sampled mode).
func (r *Relay) PollSampled(t float64) core.ChangeCode {
	return r.RootTrigger(t)
}

// TriggerCondition transitions condition c to triggered, enables its
// hysteresis margin, and fires or schedules every action wired to it
// (spec.md §4.7 step 3).
func (r *Relay) TriggerCondition(c int, tNow, minDelay float64) core.ChangeCode {
	r.cStates[c] = StatusTriggered
	r.conditions[c].EnableMargin()
	r.conditionTriggerTimes[c] = tNow
	r.triggerCount++
	r.metrics.RelayTripped(r.Name())
	r.updateRootCount()

	if r.OnConditionTriggered != nil {
		r.OnConditionTriggered(c, tNow)
	}

	agg := core.NoChange
	for _, at := range r.actionTriggers[c] {
		if at.delay <= minDelay {
			agg = core.Max(agg, r.ExecuteAction(at.actionIndex, tNow))
		} else {
			r.condChecks = append(r.condChecks, condCheck{
				conditionNum: c,
				actionNum:    at.actionIndex,
				testTime:     tNow + at.delay,
			})
		}
	}

	for mi, mct := range r.multiConditionTriggers[c] {
		allTriggered := true
		for _, cn := range mct.conditions {
			if r.cStates[cn] != StatusTriggered {
				allTriggered = false
				break
			}
		}
		if !allTriggered {
			continue
		}
		if mct.delay <= minDelay {
			agg = core.Max(agg, r.ExecuteAction(mct.actionIndex, tNow))
		} else {
			r.condChecks = append(r.condChecks, condCheck{
				conditionNum:   c,
				actionNum:      mi,
				testTime:       tNow + mct.delay,
				multiCondition: true,
			})
		}
	}
	return agg
}

// ResetConditionStatus forces condition c back to active and disables
// its margin, regardless of the condition's current boolean value. This
// is for concrete relay kinds (breaker's resetBreaker) that reset on
// their own schedule rather than waiting for CheckCondition to clear.
func (r *Relay) ResetConditionStatus(c int) {
	r.cStates[c] = StatusActive
	r.conditions[c].DisableMargin()
	r.updateRootCount()
}

// clearCondition resets a triggered condition back to active, disabling
// its margin, and purges any still-pending delayed condition checks for
// it (spec.md §4.7 step 4's "clear pending checks for that condition",
// mirrored by Relay::clearCondChecks in
// original_source/src/griddyn/relays/Relay.cpp). Without this purge, a
// relay that wires two or more AddActionTrigger delays to the same
// condition would fire a stale check against a condition that has since
// cleared and retriggered.
func (r *Relay) clearCondition(c int, t float64) {
	r.cStates[c] = StatusActive
	r.conditions[c].DisableMargin()
	r.clearCondChecks(c)
	if r.OnConditionCleared != nil {
		r.OnConditionCleared(c, t)
	}
	r.updateRootCount()
}

// clearCondChecks drops every pending condCheck keyed to conditionNum.
func (r *Relay) clearCondChecks(conditionNum int) {
	if len(r.condChecks) == 0 {
		return
	}
	kept := r.condChecks[:0]
	for _, cc := range r.condChecks {
		if cc.conditionNum != conditionNum {
			kept = append(kept, cc)
		}
	}
	r.condChecks = kept
}

// ExecuteAction fires the named action and counts it.
func (r *Relay) ExecuteAction(actionIndex int, t float64) core.ChangeCode {
	if actionIndex < 0 || actionIndex >= len(r.actions) {
		return core.NoChange
	}
	code := r.actions[actionIndex].Execute(t)
	r.actionsTakenCount++
	return code
}

// ProcessCondChecks re-tests every pending delayed condition-check due
// at or before tNow, executing or rescheduling per spec.md §4.7 step 4.
func (r *Relay) ProcessCondChecks(tNow float64) core.ChangeCode {
	pending := r.condChecks
	r.condChecks = nil

	agg := core.NoChange
	for _, cc := range pending {
		agg = core.Max(agg, r.evaluateCondCheck(cc, tNow))
	}
	return agg
}

func (r *Relay) evaluateCondCheck(cc condCheck, tNow float64) core.ChangeCode {
	if tNow < cc.testTime {
		if r.cStates[cc.conditionNum] == StatusTriggered {
			r.condChecks = append(r.condChecks, cc)
		}
		return core.NoChange
	}

	if !r.conditions[cc.conditionNum].CheckCondition() {
		r.clearCondition(cc.conditionNum, tNow)
		return core.NoChange
	}

	if !cc.multiCondition {
		return r.ExecuteAction(cc.actionNum, tNow)
	}

	mct := r.multiConditionTriggers[cc.conditionNum][cc.actionNum]
	allTriggered := true
	for _, cn := range mct.conditions {
		if r.cStates[cn] != StatusTriggered {
			allTriggered = false
			break
		}
		if tNow-r.conditionTriggerTimes[cn] < mct.delay {
			cc.testTime = r.conditionTriggerTimes[cn] + mct.delay
			r.condChecks = append(r.condChecks, cc)
			return core.NoChange
		}
	}
	if allTriggered {
		return r.ExecuteAction(mct.actionIndex, tNow)
	}
	return core.NoChange
}

// updateRootCount recomputes the live root count and emits
// AlertRootCountChange on any change (spec.md §4.7, §8 property 5).
func (r *Relay) updateRootCount() {
	count := 0
	for i, st := range r.cStates {
		if r.eligibleForRoot(i, st) {
			count++
		}
	}
	if count != r.liveRootCount {
		r.liveRootCount = count
		r.Alert(core.AlertRootCountChange)
	}
	r.metrics.SetLiveRootCount(r.liveRootCount)
}
