// Package sensor implements the specialized relay that composes
// measured signals through a chain of filter blocks (spec.md §4.8).
package sensor

// FilterBlock is the contract a transfer-function block exposes to a
// sensor: advance one step given the current input, report its output
// and the output's instantaneous rate of change. The block's internal
// math (integrator, lag, washout, ...) is out of scope for the core
// engine per spec.md §4.8 ("a transfer function expressed at design
// level as a block with step(t, u) and residual/Jacobian
// contributions") — only the contract is specified here; Integrator is
// provided as the one concrete block the test scenarios exercise.
type FilterBlock interface {
	Step(t, u float64) float64
	Output() float64
	DerivOutput() float64
}

// Integrator is a first-order block whose output is the running
// integral of its input scaled by gain: output(t) = ∫ gain*u dt. It is
// the block spec.md §8 scenario S6 drives ("filter = integral(gain=1/3600)").
type Integrator struct {
	Gain float64

	state   float64
	lastU   float64
	lastT   float64
	hasLast bool
}

// NewIntegrator builds an integrator block with the given gain.
func NewIntegrator(gain float64) *Integrator {
	return &Integrator{Gain: gain}
}

// Step advances the integrator to time t given input u, using a simple
// forward-Euler update over the elapsed interval since the last step.
func (in *Integrator) Step(t, u float64) float64 {
	if in.hasLast {
		dt := t - in.lastT
		in.state += in.Gain * in.lastU * dt
	}
	in.lastU = u
	in.lastT = t
	in.hasLast = true
	return in.state
}

// Output returns the block's current integrated value.
func (in *Integrator) Output() float64 { return in.state }

// DerivOutput returns d/dt of the block's output, i.e. gain*lastInput.
func (in *Integrator) DerivOutput() float64 { return in.Gain * in.lastU }
