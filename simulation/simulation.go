package simulation

import (
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/griddyn-go/simcore/core"
	"github.com/griddyn-go/simcore/event"
	"github.com/griddyn-go/simcore/grid"
	"github.com/griddyn-go/simcore/internal/obslog"
	"github.com/griddyn-go/simcore/internal/simmetrics"
)

// Rooted is implemented by any continuous-mode relay the run loop must
// poll for zero-crossings (spec.md §4.7); grid.Bus/Link/Area never
// implement it directly, only relay.Relay and its specializations do.
type Rooted interface {
	core.Parent
	UserID() string
	Sampled() bool
	UpdatePeriod() float64
	RootTest() []float64
	RootTrigger(t float64) core.ChangeCode
	PollSampled(t float64) core.ChangeCode
	LiveRootCount() int
}

// Simulation owns the clock, event queue, top area, relays, and
// collectors, and drives the run loop of spec.md §4.9. It embeds
// core.Base so it can itself be the root AlertSink and carry identity,
// grounded on gridSimulation inheriting from Area in
// original_source/src/griddyn/simulation/gridSimulation.h.
type Simulation struct {
	core.Base

	log     *obslog.Logger
	metrics *simmetrics.Recorder

	// runID is stamped on this simulation's creation and error-state log
	// lines, the way the teacher's logging package stamps a trace id
	// onto a request's log lines (infrastructure/logging.NewTraceID).
	runID string

	state     atomic.Int32
	errorCode int

	startTime     float64
	stopTime      float64
	currentTimeNs atomic.Int64 // bits of currentTime, per spec.md §5's atomic-read contract
	stepTime      float64
	maxUpdateTime float64
	recordStop    float64

	topArea       *grid.Area
	relays        []Rooted
	relayNextPoll []float64
	evQ           *event.EventQueue
	collect       []Collector
	solver        Solver

	reg *registry

	alertCount, warnCount, errorCount int
}

// New builds a Simulation with the given name, wired to a fresh top
// Area, logger, and metrics recorder.
func New(gen *core.IDGenerator, name string, log *obslog.Logger, metrics *simmetrics.Recorder) *Simulation {
	s := &Simulation{
		Base:          core.InitBase(gen, name),
		log:           log,
		metrics:       metrics,
		runID:         uuid.New().String(),
		topArea:       grid.NewArea(gen, name+"_top"),
		evQ:           event.NewEventQueue(),
		reg:           newRegistry(),
		stopTime:      30.0,
		stepTime:      0.05,
		maxUpdateTime: 1e18,
		recordStop:    1e18,
	}
	s.topArea.SetAlertSink(s)
	s.topArea.SetRegistrar(s.reg)
	s.topArea.SetMetrics(s.metrics)
	s.state.Store(int32(Startup))
	if s.log != nil {
		s.log.Infof("simulation %q created, run_id=%s", name, s.runID)
	}
	return s
}

// RunID returns the identifier generated for this Simulation instance,
// usable to correlate log lines and metrics across a single run the way
// the teacher's infrastructure/logging package correlates a request's
// log lines by trace id.
func (s *Simulation) RunID() string { return s.runID }

// State returns the simulation's current processing state.
func (s *Simulation) State() State { return State(s.state.Load()) }

// setState transitions the processing state.
func (s *Simulation) setState(st State) { s.state.Store(int32(st)) }

// ErrorCode returns the last recorded error code (0 if none).
func (s *Simulation) ErrorCode() int { return s.errorCode }

// setErrorCode records an error code and moves the state machine to
// Error, per gridSimulation::setErrorCode.
func (s *Simulation) setErrorCode(code int) {
	s.errorCode = code
	s.setState(Error)
	if s.log != nil {
		s.log.Errorf("simulation entered error state, run_id=%s code=%d", s.runID, code)
	}
}

// CurrentTime atomically reads the simulation clock; this is the one
// concurrency primitive spec.md §5 exposes to an observer thread.
func (s *Simulation) CurrentTime() float64 {
	return int64BitsToFloat(s.currentTimeNs.Load())
}

func (s *Simulation) setCurrentTime(t float64) {
	s.currentTimeNs.Store(float64ToInt64Bits(t))
	if s.metrics != nil {
		s.metrics.SetCurrentTime(t)
	}
}

// SetStopTime sets the requested stop time for the next Run call.
func (s *Simulation) SetStopTime(t float64) { s.stopTime = t }

// SetStepTime sets the polling period the run loop uses for a sampled
// relay whose own update period is not positive.
func (s *Simulation) SetStepTime(t float64) { s.stepTime = t }

// SetMaxUpdateTime bounds how far the solver may advance in one
// iteration regardless of the next event time (spec.md §4.9 step 2b).
func (s *Simulation) SetMaxUpdateTime(t float64) { s.maxUpdateTime = t }

// SetRecordStop bounds the effective stop time by the recorder's own
// stop time (spec.md §4.9 step 1).
func (s *Simulation) SetRecordStop(t float64) { s.recordStop = t }

// TopArea returns the simulation's top-level Area.
func (s *Simulation) TopArea() *grid.Area { return s.topArea }

// relayMetricsSetter is implemented by relay.Relay (and, by promotion,
// every concrete relay kind that embeds it).
type relayMetricsSetter interface {
	SetMetrics(*simmetrics.Recorder)
}

// AddRelay registers a relay (or sensor, which embeds one) to be polled
// by the run loop's root-check step.
func (s *Simulation) AddRelay(r Rooted) {
	s.relays = append(s.relays, r)
	s.relayNextPoll = append(s.relayNextPoll, s.CurrentTime())
	s.reg.Register("relay", r) // Rooted's Parent+UserID() satisfies core.Registrable
	if m, ok := r.(relayMetricsSetter); ok {
		m.SetMetrics(s.metrics)
	}
}

// AddCollector registers a collector to be polled by the run loop.
func (s *Simulation) AddCollector(c Collector) {
	s.collect = append(s.collect, c)
}

// Alert implements core.AlertSink: the simulation is the root of the
// alert-propagation tree (spec.md §5).
func (s *Simulation) Alert(source core.Parent, code core.Alert) {
	s.alertCount++
	if s.log != nil {
		s.log.Debugf("alert %s from %s", code, source.Name())
	}
	if code == core.AlertInvalidState {
		s.warnCount++
	}
}

// Find resolves a component by plain name (spec.md §6's find(name)).
func (s *Simulation) Find(name string) (core.Parent, bool) { return s.reg.find(name) }

// FindByUserID resolves a component by type name and user-assigned id
// (spec.md §6's findByUserID).
func (s *Simulation) FindByUserID(typeName, userID string) (core.Parent, bool) {
	return s.reg.findByUserID(typeName, userID)
}

// EventQueue returns the simulation's event queue, so callers can
// schedule events before or during a run.
func (s *Simulation) EventQueue() *event.EventQueue { return s.evQ }
