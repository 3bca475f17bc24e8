package simmetrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecorderIncrementsWiredCollectors(t *testing.T) {
	r := NewRecorder()

	r.EventExecuted()
	r.EventExecuted()
	r.RelayTripped("breaker1")
	r.RootCrossingDetected()
	r.ObserveConvergeIterations(3)
	r.SetCurrentTime(12.5)
	r.SetLiveRootCount(2)

	if got := testutil.ToFloat64(r.eventsExecuted); got != 2 {
		t.Fatalf("eventsExecuted = %v, want 2", got)
	}
	if got := testutil.ToFloat64(r.relayTrips.WithLabelValues("breaker1")); got != 1 {
		t.Fatalf("relayTrips[breaker1] = %v, want 1", got)
	}
	if got := testutil.ToFloat64(r.rootCrossings); got != 1 {
		t.Fatalf("rootCrossings = %v, want 1", got)
	}
	if got := testutil.ToFloat64(r.currentTime); got != 12.5 {
		t.Fatalf("currentTime = %v, want 12.5", got)
	}
	if got := testutil.ToFloat64(r.liveRootCount); got != 2 {
		t.Fatalf("liveRootCount = %v, want 2", got)
	}
}

// A nil Recorder must tolerate every call (Simulation/grid/relay code
// wires metrics unconditionally, including from code paths that may run
// before a Recorder is installed).
func TestNilRecorderToleratesEveryCall(t *testing.T) {
	var r *Recorder
	r.EventExecuted()
	r.RelayTripped("x")
	r.RootCrossingDetected()
	r.ObserveConvergeIterations(1)
	r.SetCurrentTime(1)
	r.SetLiveRootCount(1)
}
