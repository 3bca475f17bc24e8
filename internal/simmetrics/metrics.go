// Package simmetrics exposes the small set of Prometheus collectors the
// simulation core updates from its run loop. It mirrors the teacher's
// pkg/metrics package: a dedicated registry rather than the global
// prometheus default, so embedding applications don't collide with it.
package simmetrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Recorder owns the core's Prometheus collectors.
type Recorder struct {
	Registry *prometheus.Registry

	eventsExecuted   prometheus.Counter
	relayTrips       *prometheus.CounterVec
	rootCrossings    prometheus.Counter
	solverIterations prometheus.Histogram
	currentTime      prometheus.Gauge
	liveRootCount    prometheus.Gauge
}

// NewRecorder builds a Recorder and registers its collectors against a
// fresh registry.
func NewRecorder() *Recorder {
	reg := prometheus.NewRegistry()

	r := &Recorder{
		Registry: reg,
		eventsExecuted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "simcore",
			Subsystem: "events",
			Name:      "executed_total",
			Help:      "Total number of event-queue adapters executed.",
		}),
		relayTrips: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "simcore",
			Subsystem: "relay",
			Name:      "trips_total",
			Help:      "Total number of relay condition trips, by relay name.",
		}, []string{"relay"}),
		rootCrossings: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "simcore",
			Subsystem: "solver",
			Name:      "root_crossings_total",
			Help:      "Total number of root zero-crossings detected.",
		}),
		solverIterations: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "simcore",
			Subsystem: "solver",
			Name:      "converge_iterations",
			Help:      "Iteration counts consumed by local bus convergence.",
			Buckets:   prometheus.LinearBuckets(1, 1, 10),
		}),
		currentTime: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "simcore",
			Subsystem: "sim",
			Name:      "current_time_seconds",
			Help:      "Current simulation clock time.",
		}),
		liveRootCount: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "simcore",
			Subsystem: "solver",
			Name:      "live_root_count",
			Help:      "Current number of live root-finding functions across all relays.",
		}),
	}

	reg.MustRegister(
		r.eventsExecuted,
		r.relayTrips,
		r.rootCrossings,
		r.solverIterations,
		r.currentTime,
		r.liveRootCount,
	)

	return r
}

// EventExecuted increments the events-executed counter.
func (r *Recorder) EventExecuted() {
	if r == nil {
		return
	}
	r.eventsExecuted.Inc()
}

// RelayTripped increments the per-relay trip counter.
func (r *Recorder) RelayTripped(relayName string) {
	if r == nil {
		return
	}
	r.relayTrips.WithLabelValues(relayName).Inc()
}

// RootCrossingDetected increments the root-crossing counter.
func (r *Recorder) RootCrossingDetected() {
	if r == nil {
		return
	}
	r.rootCrossings.Inc()
}

// ObserveConvergeIterations records the iteration count of one local
// bus Newton correction.
func (r *Recorder) ObserveConvergeIterations(n int) {
	if r == nil {
		return
	}
	r.solverIterations.Observe(float64(n))
}

// SetCurrentTime sets the current-time gauge.
func (r *Recorder) SetCurrentTime(t float64) {
	if r == nil {
		return
	}
	r.currentTime.Set(t)
}

// SetLiveRootCount sets the live-root-count gauge.
func (r *Recorder) SetLiveRootCount(n int) {
	if r == nil {
		return
	}
	r.liveRootCount.Set(float64(n))
}
