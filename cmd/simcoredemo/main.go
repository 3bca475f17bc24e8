// Command simcoredemo drives one bounded simulation run against a small
// hand-built topology, the way slctl's run(ctx, args) wires a single CLI
// invocation against a remote service: load configuration, build the
// logger and metrics recorder, assemble the object tree, then run to
// completion and report the outcome.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/griddyn-go/simcore/condition"
	"github.com/griddyn-go/simcore/core"
	"github.com/griddyn-go/simcore/event"
	"github.com/griddyn-go/simcore/grabber"
	"github.com/griddyn-go/simcore/grid"
	"github.com/griddyn-go/simcore/internal/obslog"
	"github.com/griddyn-go/simcore/internal/simconfig"
	"github.com/griddyn-go/simcore/internal/simmetrics"
	"github.com/griddyn-go/simcore/relay"
	"github.com/griddyn-go/simcore/simulation"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	defaultStop := 5.0

	root := flag.NewFlagSet("simcoredemo", flag.ContinueOnError)
	root.SetOutput(io.Discard)
	stopFlag := root.Float64("stop", defaultStop, "simulation stop time in seconds")
	showVersion := root.Bool("version", false, "print simcoredemo version and exit")
	if err := root.Parse(args); err != nil {
		printUsage()
		return err
	}
	if *showVersion {
		fmt.Println("simcoredemo dev")
		return nil
	}

	cfg, err := simconfig.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log := obslog.New(obslog.Config{Level: cfg.Logging.Level}).Named("simcoredemo", 0)
	metrics := simmetrics.NewRecorder()

	gen := core.NewIDGenerator()
	sim := simulation.New(gen, "demo", log, metrics)
	sim.SetStepTime(cfg.Run.StepTime)
	sim.SetMaxUpdateTime(cfg.Run.MaxUpdateTime)

	north, south := buildTopology(gen, sim)

	b := buildOvercurrentBreaker(gen, north)
	sim.AddRelay(b)

	log.Infof("starting run: stop=%v buses=[%s %s]", *stopFlag, north.Name(), south.Name())

	code := sim.Run(*stopFlag)
	log.Infof("run complete: state=%s error_code=%d current_time=%v breaker_tripped=%v",
		sim.State(), code, sim.CurrentTime(), b.Tripped())

	if code != 0 {
		return fmt.Errorf("simulation ended in error state, code=%d", code)
	}
	return nil
}

// buildTopology assembles a two-bus, one-link, one-generator, one-load
// demonstration network and attaches it to the simulation's top area.
func buildTopology(gen *core.IDGenerator, sim *simulation.Simulation) (*grid.Bus, *grid.Bus) {
	north := grid.NewBus(gen, "north", grid.SLK)
	south := grid.NewBus(gen, "south", grid.PQ)
	sim.TopArea().AddBus(north)
	sim.TopArea().AddBus(south)

	link := grid.NewLink(gen, "north-south", north, south, 0.01, 0.08)
	sim.TopArea().AddLink(link)

	grid.NewGenerator(gen, "gen1", north, 1.5, -0.8, 0.8)
	grid.NewLoad(gen, "load1", south, -1.2, -0.3)

	north.PowerFlowAdjust(false)
	south.PowerFlowAdjust(false)

	return north, south
}

// buildOvercurrentBreaker wires a sampled breaker relay watching the
// north bus's aggregate real power, tripping open if it exceeds a fixed
// threshold.
func buildOvercurrentBreaker(gen *core.IDGenerator, bus *grid.Bus) *relay.Breaker {
	current := grabber.New(bus, "p")
	overcurrent := condition.NewConstantRHS(current, 2.0, condition.OpGT, 0)

	openAction := event.NewEventAdapter(0, func(t float64) core.ChangeCode {
		return core.StateChange
	})
	closeAction := event.NewEventAdapter(0, func(t float64) core.ChangeCode {
		return core.NoChange
	})

	b := relay.NewBreaker(gen, "breaker-north", overcurrent, openAction, closeAction, relay.BreakerConfig{
		MinClearingTime:    0,
		RecloseTime1:       1,
		RecloseTime2:       5,
		MaxRecloseAttempts: 2,
	})
	b.SetSampled(0.1)
	return b
}

func printUsage() {
	fmt.Println(`simcoredemo

Usage:
  simcoredemo [flags]

Flags:
  -stop      simulation stop time in seconds (default 5)
  -version   print simcoredemo version and exit`)
}
