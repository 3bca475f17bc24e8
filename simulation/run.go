package simulation

import "github.com/griddyn-go/simcore/core"

// Solver advances the simulation clock from one time to another,
// reporting whether it stopped early because it detected a root
// crossing. Concrete numerical integrators are external collaborators
// per spec.md §1/§4.9 ("abstract; concrete solver plug-in implements
// the step"); NoopSolver below is the trivial stand-in tests and the
// demo program use when there is nothing but events/relays to drive.
type Solver interface {
	Advance(from, to float64) (reached float64, hitRoot bool, err error)
}

// NoopSolver advances directly to the requested target time without
// detecting any root crossing, useful for scenarios driven purely by
// the event queue and sampled relays.
type NoopSolver struct{}

// Advance implements Solver.
func (NoopSolver) Advance(from, to float64) (float64, bool, error) { return to, false, nil }

// SetSolver installs the plug-in solver the run loop delegates each
// advance to. A Simulation with no solver installed behaves as if
// NoopSolver were set.
func (s *Simulation) SetSolver(solver Solver) { s.solver = solver }

// Run drives the simulation from its current time to stopTime,
// following spec.md §4.9's run loop: clamp stopTime by recordStop, then
// repeatedly advance to the nearer of the next event time or
// currentTime+maxUpdateTime, root-check on a root return, execute due
// events, and poll collectors. Returns 0 on success, the recorded error
// code otherwise.
func (s *Simulation) Run(stopTime float64) int {
	if stopTime < s.recordStop {
		s.stopTime = stopTime
	} else {
		s.stopTime = s.recordStop
	}

	for s.CurrentTime() < s.stopTime {
		if s.State() == Error || s.State() == Halted {
			break
		}
		s.step()
	}

	switch s.State() {
	case Error:
		return s.errorCode
	case Halted:
		return s.errorCode
	}
	if s.CurrentTime() >= s.stopTime {
		s.setState(DynamicComplete)
	} else {
		s.setState(DynamicPartial)
	}
	return 0
}

// Step advances the simulation by exactly one run-loop iteration and
// returns the aggregated change_code, for callers that want to drive
// the loop themselves (e.g. tests, or an embedding application
// interleaving its own work between steps).
func (s *Simulation) Step() core.ChangeCode {
	return s.step()
}

func (s *Simulation) step() core.ChangeCode {
	cur := s.CurrentTime()

	target := cur + s.maxUpdateTime
	if nextEvent, ok := s.evQ.NextEventTime(); ok && nextEvent < target {
		target = nextEvent
	}
	for i, r := range s.relays {
		if !r.Sampled() {
			continue
		}
		// Only a still-future poll time constrains how far we may
		// advance; a due-or-past poll time fires within this step
		// regardless of the target chosen (pollSampledRelays below),
		// and must never force target back to cur or the clock stalls.
		if np := s.relayNextPoll[i]; np > cur && np < target {
			target = np
		}
	}
	if target > s.stopTime {
		target = s.stopTime
	}
	if target < cur {
		target = cur
	}

	solver := s.solver
	if solver == nil {
		solver = NoopSolver{}
	}
	reached, hitRoot, err := solver.Advance(cur, target)
	if err != nil {
		s.setErrorCode(1)
		return core.ExecutionFailure
	}
	s.setCurrentTime(reached)

	out := core.NoChange
	if hitRoot {
		out = core.Max(out, s.rootCheck(reached))
	}
	out = core.Max(out, s.pollSampledRelays(reached))
	out = core.Max(out, s.executeEvents(reached))
	s.pollCollectors(reached)
	return out
}

// rootCheck runs rootTrigger across every continuous-mode relay, per
// spec.md §4.9 step 2c.
func (s *Simulation) rootCheck(t float64) core.ChangeCode {
	out := core.NoChange
	for _, r := range s.relays {
		if r.Sampled() {
			continue
		}
		out = core.Max(out, r.RootTrigger(t))
	}
	return out
}

// pollSampledRelays polls every sampled relay whose next update time has
// arrived, rescheduling it one period ahead.
func (s *Simulation) pollSampledRelays(t float64) core.ChangeCode {
	out := core.NoChange
	for i, r := range s.relays {
		if !r.Sampled() {
			continue
		}
		if s.relayNextPoll[i] > t {
			continue
		}
		out = core.Max(out, r.PollSampled(t))
		period := r.UpdatePeriod()
		if period <= 0 {
			period = s.stepTime
		}
		s.relayNextPoll[i] = t + period
	}
	return out
}

// executeEvents drains and runs every event-queue adapter due at or
// before t (spec.md §4.9 step 2d).
func (s *Simulation) executeEvents(t float64) core.ChangeCode {
	out := s.evQ.ExecuteEvents(t)
	if out != core.NoChange && s.metrics != nil {
		s.metrics.EventExecuted()
	}
	return out
}

// pollCollectors samples every collector whose next sample time has
// arrived (spec.md §4.9 step 2e).
func (s *Simulation) pollCollectors(t float64) {
	for _, c := range s.collect {
		if c.NextSampleTime() <= t {
			c.Sample(t)
		}
	}
}
