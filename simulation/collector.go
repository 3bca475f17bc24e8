package simulation

// Collector is sampled by the run loop whenever its next sample time has
// arrived (spec.md §4.9 step 2e). The concrete recording format/layout
// is an external collaborator per spec.md §1/§6 ("the layout is owned
// by the collector and is not fixed by the core"); this interface is
// all the run loop needs to drive one.
type Collector interface {
	NextSampleTime() float64
	Sample(t float64)
	Flush()
}

// FuncCollector adapts a plain sampling function and a fixed period into
// a Collector, the simplest concrete implementation; the tests use it.
type FuncCollector struct {
	Period float64
	Fn     func(t float64)

	next float64
}

// NewFuncCollector builds a FuncCollector sampling every period seconds
// starting at startTime.
func NewFuncCollector(startTime, period float64, fn func(t float64)) *FuncCollector {
	return &FuncCollector{Period: period, Fn: fn, next: startTime}
}

// NextSampleTime implements Collector.
func (c *FuncCollector) NextSampleTime() float64 { return c.next }

// Sample implements Collector.
func (c *FuncCollector) Sample(t float64) {
	if c.Fn != nil {
		c.Fn(t)
	}
	c.next = t + c.Period
}

// Flush implements Collector; a function collector has nothing to flush.
func (c *FuncCollector) Flush() {}
