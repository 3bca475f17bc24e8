package relay

import (
	"github.com/griddyn-go/simcore/condition"
	"github.com/griddyn-go/simcore/core"
	"github.com/griddyn-go/simcore/event"
)

// Breaker is an overcurrent protection relay: condition 0 is "current
// exceeds limit"; action 0 opens the protected switch, action 1 closes
// it again after a reclose delay (spec.md §8 scenario S4, grounded on
// original_source/src/griddyn/relays/breaker.cpp's tripBreaker/
// resetBreaker pair).
type Breaker struct {
	*Relay

	minClearingTime    float64
	recloseTime1       float64
	recloseTime2       float64
	recloserResetTime  float64
	maxRecloseAttempts int
	recloseAttempts    int
	lastRecloseTime    float64

	tripped            bool
	hasScheduledUpdate bool
	nextUpdateTime     float64
}

// BreakerConfig mirrors the S4 scenario's configuration knobs.
type BreakerConfig struct {
	MinClearingTime    float64
	RecloseTime1       float64
	RecloseTime2       float64
	RecloserResetTime  float64 // default 60s if zero
	MaxRecloseAttempts int
}

// NewBreaker builds a breaker relay around an overcurrent condition
// (typically `current > limit`) and open/close actions.
func NewBreaker(gen *core.IDGenerator, name string, overcurrent condition.Evaluable, openAction, closeAction *event.EventAdapter, cfg BreakerConfig) *Breaker {
	r := NewRelay(gen, name)
	b := &Breaker{
		Relay:              r,
		minClearingTime:    cfg.MinClearingTime,
		recloseTime1:       cfg.RecloseTime1,
		recloseTime2:       cfg.RecloseTime2,
		recloserResetTime:  cfg.RecloserResetTime,
		maxRecloseAttempts: cfg.MaxRecloseAttempts,
	}
	if b.recloserResetTime == 0 {
		b.recloserResetTime = 60.0
	}

	r.AddCondition(overcurrent, false)
	r.AddAction(openAction)
	r.AddAction(closeAction)
	r.OnConditionTriggered = func(conditionNum int, t float64) {
		// Attempts exhausted: no further trip until the recloser reset
		// time has passed since the last reclose.
		exhausted := b.recloseAttempts > 0 && b.recloseAttempts >= b.maxRecloseAttempts &&
			t <= b.lastRecloseTime+b.recloserResetTime
		if conditionNum == 0 && !exhausted {
			b.tripBreaker(t)
		}
	}
	return b
}

// Tripped reports whether the breaker is currently open.
func (b *Breaker) Tripped() bool { return b.tripped }

// RecloseAttempts returns the number of reclose attempts consumed so far.
func (b *Breaker) RecloseAttempts() int { return b.recloseAttempts }

// Update advances the breaker's internal timed state: while open, checks
// whether the scheduled reclose time has arrived; while closed, re-tests
// the overcurrent condition (spec.md §4.7's root-test/trigger flow,
// grounded on breaker::updateA).
func (b *Breaker) Update(t float64) core.ChangeCode {
	if b.tripped {
		if b.hasScheduledUpdate && t >= b.nextUpdateTime {
			return b.resetBreaker(t)
		}
		return core.NoChange
	}
	return b.RootTrigger(t)
}

func (b *Breaker) tripBreaker(t float64) {
	b.tripped = true
	b.Alert(core.AlertBreakerTripCurrent)
	b.ExecuteAction(0, t)

	if t > b.lastRecloseTime+b.recloserResetTime {
		b.recloseAttempts = 0
	}
	if b.recloseAttempts < b.maxRecloseAttempts {
		delay := b.recloseTime1
		if b.recloseAttempts > 0 {
			delay = b.recloseTime2
		}
		b.nextUpdateTime = t + delay
		b.hasScheduledUpdate = true
		b.Alert(core.AlertUpdateTimeChange)
	} else {
		b.hasScheduledUpdate = false
	}
}

// resetBreaker recloses the switch and, if the fault has cleared (or
// attempts remain and the fault persists), returns to normal monitoring.
// Once recloseAttempts reaches maxRecloseAttempts the breaker stays
// closed without re-tripping even if the overcurrent condition is still
// true, per spec.md §8 S4's "a second trip must not occur (attempts
// exhausted)".
func (b *Breaker) resetBreaker(t float64) core.ChangeCode {
	b.recloseAttempts++
	b.lastRecloseTime = t
	b.tripped = false
	b.hasScheduledUpdate = false
	b.ExecuteAction(1, t)
	b.ResetConditionStatus(0)

	if b.ConditionStatusAt(0) == StatusActive && b.recloseAttempts < b.maxRecloseAttempts {
		if b.conditions[0].CheckCondition() {
			b.tripBreaker(t)
			return core.StateChange
		}
	}
	return core.StateChange
}
