package relay

import (
	"github.com/griddyn-go/simcore/condition"
	"github.com/griddyn-go/simcore/core"
	"github.com/griddyn-go/simcore/event"
)

// DifferentialRelay compares two measured quantities (typically the two
// terminal currents of a link) and trips a single action once their
// difference exceeds a threshold for longer than a configured delay
// (supplemented feature, grounded on
// original_source/src/griddyn/relays/differentialRelay.cpp).
type DifferentialRelay struct {
	*Relay
}

// NewDifferentialRelay wires diffCondition (e.g.
// `abs(current1-current2) > max_differential`) to tripAction with the
// given trigger delay, mirroring differentialRelay::pFlowObjectInitializeA's
// single actionTrigger wiring.
func NewDifferentialRelay(gen *core.IDGenerator, name string, diffCondition condition.Evaluable, tripAction *event.EventAdapter, delay float64) *DifferentialRelay {
	r := NewRelay(gen, name)
	r.AddCondition(diffCondition, true)
	r.AddAction(tripAction)
	r.AddActionTrigger(0, 0, delay)
	return &DifferentialRelay{Relay: r}
}
