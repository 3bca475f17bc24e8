package grid

import "github.com/griddyn-go/simcore/core"

// approxRequestState is the three-state request lifecycle spec.md §9's
// "Coroutines / async" design note prescribes in place of a
// goroutine-per-call pattern: a caller moves a request from requested to
// pending by submitting it, and from pending to consumed by awaiting its
// result exactly once.
type approxRequestState int

const (
	requestRequested approxRequestState = iota
	requestPending
	requestConsumed
)

type approxResult struct {
	p, q float64
}

// ApproxLoad generalizes approximatingLoad's run1ApproxA/run1ApproxB pair
// (original_source/src/griddyn/loads/approximatingLoad.cpp): a load whose
// P/Q at a given voltage is expensive enough to warrant computing off the
// solver's call path. SubmitA dispatches the computation and returns
// immediately; AwaitB blocks for the result on a later pass, mirroring the
// original's workQueue-backed std::future submit/get split.
type ApproxLoad struct {
	core.Base

	compute func(voltage float64) (p, q float64)

	state  approxRequestState
	result chan approxResult

	p, q float64
}

// NewApproxLoad builds an approximating load attached to bus, backed by
// compute for its P/Q evaluation.
func NewApproxLoad(gen *core.IDGenerator, name string, bus *Bus, compute func(voltage float64) (p, q float64)) *ApproxLoad {
	a := &ApproxLoad{
		Base:    core.InitBase(gen, name),
		compute: compute,
		state:   requestRequested,
	}
	a.Flags().Set(core.FlagEnabled, true)
	bus.AddLoad(a)
	return a
}

// SubmitA dispatches the load's P/Q computation on a worker goroutine and
// returns without blocking, the Go equivalent of run1ApproxA's
// make_workBlock/addWorkBlock pair. Calling SubmitA again before AwaitB
// has consumed the previous result is a programming error, mirroring the
// original's `assert(!opFlags[waiting_flag])` guard.
func (a *ApproxLoad) SubmitA(voltage float64) {
	if a.state == requestPending {
		panic("grid: ApproxLoad.SubmitA called while a request is already pending")
	}
	ch := make(chan approxResult, 1)
	a.result = ch
	a.state = requestPending
	go func() {
		p, q := a.compute(voltage)
		ch <- approxResult{p: p, q: q}
	}()
}

// AwaitB blocks for the result of the most recent SubmitA call, the
// equivalent of run1ApproxB's `vres.get()`, and stores it as the load's
// current P/Q. Calling AwaitB with no request pending is a programming
// error.
func (a *ApproxLoad) AwaitB() (p, q float64) {
	if a.state != requestPending {
		panic("grid: ApproxLoad.AwaitB called with no pending request")
	}
	res := <-a.result
	a.p, a.q = res.p, res.q
	a.state = requestConsumed
	return a.p, a.q
}

// Pending reports whether a SubmitA call is outstanding.
func (a *ApproxLoad) Pending() bool { return a.state == requestPending }

// RealPower returns the real power from the last consumed result.
func (a *ApproxLoad) RealPower() float64 { return a.p }

// ReactivePower returns the reactive power from the last consumed result.
func (a *ApproxLoad) ReactivePower() float64 { return a.q }

// HasPowerFlowAdjustments reports false: an approximating load never
// participates in the Q/P-limit adjustment pass itself.
func (a *ApproxLoad) HasPowerFlowAdjustments() bool { return false }

// PowerFlowAdjust is a no-op for an approximating load.
func (a *ApproxLoad) PowerFlowAdjust(ignoreLimits bool) core.ChangeCode { return core.NoChange }

// LocalStateSizes returns zero: the asynchronous evaluation never adds a
// solver state slot of its own.
func (a *ApproxLoad) LocalStateSizes(mode core.SolverMode) core.StateSizes { return core.StateSizes{} }

// StateSize has no children to sum over, so it equals LocalStateSizes.
func (a *ApproxLoad) StateSize(mode core.SolverMode) core.StateSizes { return a.LocalStateSizes(mode) }

// Get implements grabber.Gettable.
func (a *ApproxLoad) Get(param string) float64 {
	switch param {
	case "p":
		return a.p
	case "q":
		return a.q
	default:
		return core.NullValue
	}
}
