package event

import (
	"container/heap"

	"github.com/griddyn-go/simcore/core"
)

// EventQueue orders EventAdapters by next-due time, with ties broken by
// insertion order (spec.md §3's EventAdapter row: "queue-stable
// ordering: ties broken by insertion order"). It is not safe for
// concurrent use; a Simulation owns exactly one queue and drives it from
// its single run loop (spec.md §5).
type EventQueue struct {
	heap    adapterHeap
	nextSeq int64
}

// NewEventQueue builds an empty queue.
func NewEventQueue() *EventQueue {
	return &EventQueue{}
}

// Insert adds an adapter to the queue, stamping it with the next
// insertion sequence number for tie-breaking.
func (q *EventQueue) Insert(a *EventAdapter) {
	a.seq = q.nextSeq
	q.nextSeq++
	heap.Push(&q.heap, a)
}

// Len reports how many adapters are currently scheduled.
func (q *EventQueue) Len() int { return q.heap.Len() }

// NextEventTime returns the next-due adapter's time and whether the
// queue is non-empty, used by the run loop to bound its step size
// (spec.md §4.9 step 2a).
func (q *EventQueue) NextEventTime() (float64, bool) {
	if q.heap.Len() == 0 {
		return 0, false
	}
	return q.heap[0].nextTime, true
}

// ExecuteEvents pops and runs every adapter due at or before t,
// aggregating the worst change code, re-inserting periodic adapters at
// nextTime+period, and discarding one-shot or disarmed ones (spec.md
// §4.6's executeEvents algorithm).
func (q *EventQueue) ExecuteEvents(t float64) core.ChangeCode {
	agg := core.NoChange
	for q.heap.Len() > 0 && q.heap[0].nextTime <= t {
		a := heap.Pop(&q.heap).(*EventAdapter)
		if !a.armed {
			continue
		}
		code := a.Execute(t)
		agg = core.Max(agg, code)
		if a.period > 0 {
			a.nextTime += a.period
			q.Insert(a)
		}
	}
	return agg
}

// Recheck invalidates no cached state of its own (the queue holds no
// per-object cache); it exists so callers can re-sort after externally
// mutating an adapter's nextTime, per spec.md §4.6's "recheck()
// invalidates cached next update time... and re-sorts".
func (q *EventQueue) Recheck() {
	heap.Init(&q.heap)
}

// adapterHeap implements container/heap.Interface, ordering by
// (nextTime, seq) so ties resolve in insertion order.
type adapterHeap []*EventAdapter

func (h adapterHeap) Len() int { return len(h) }

func (h adapterHeap) Less(i, j int) bool {
	if h[i].nextTime != h[j].nextTime {
		return h[i].nextTime < h[j].nextTime
	}
	return h[i].seq < h[j].seq
}

func (h adapterHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *adapterHeap) Push(x any) {
	*h = append(*h, x.(*EventAdapter))
}

func (h *adapterHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	return item
}
