// Package anneal is the simulated annealing placement engine. A Placer owns
// the placement and every incremental cost structure, proposes swaps,
// accepts or rejects them, and cools the temperature until the schedule
// stops, then quenches.
package anneal

import (
	"time"

	"github.com/sarchlab/akita/v4/sim"

	"github.com/sarchlab/fplace/bbox"
	"github.com/sarchlab/fplace/config"
	"github.com/sarchlab/fplace/cost"
	"github.com/sarchlab/fplace/move"
	"github.com/sarchlab/fplace/movegen"
	"github.com/sarchlab/fplace/netlist"
	"github.com/sarchlab/fplace/noc"
	"github.com/sarchlab/fplace/placement"
	"github.com/sarchlab/fplace/rng"
	"github.com/sarchlab/fplace/stats"
	"github.com/sarchlab/fplace/timing"
)

// Phase is where a Placer is in the placement flow.
type Phase int

// Placement phases, in order.
const (
	PhaseInit Phase = iota
	PhaseAnneal
	PhaseQuench
	PhaseFinish
	PhaseDone
)

func (p Phase) String() string {
	switch p {
	case PhaseInit:
		return "init"
	case PhaseAnneal:
		return "anneal"
	case PhaseQuench:
		return "quench"
	case PhaseFinish:
		return "finish"
	case PhaseDone:
		return "done"
	}

	return "unknown"
}

// agentState tells which learning generator drives the swaps.
type agentState int

const (
	earlyInTheAnneal agentState = iota
	lateInTheAnneal
)

// Placer is the annealing engine.
type Placer struct {
	*sim.HookableBase

	name  string
	opts  config.Options
	st    *placement.State
	rand  *rng.Stream
	flows []noc.Flow

	delayModel  timing.DelayModel
	analyzer    timing.Analyzer
	invalidator timing.Invalidator

	cache  *bbox.Cache
	wl     *cost.Wirelength
	model  cost.Model
	costs  cost.Costs
	bridge *timing.Bridge
	noc    *noc.Model

	ba           *move.BlocksAffected
	affectedNets []netlist.NetID
	ctx          *movegen.Context
	gens         [2]movegen.MoveGenerator
	rlGens       []*movegen.RLMoveGenerator
	manual       *movegen.ManualMoveGenerator
	manualCh     <-chan movegen.ManualMove
	routerSwap   *movegen.RouterSwap

	state      State
	phase      Phase
	agentState agentState
	err        error

	placerStats stats.PlacerStatistics
	swapStats   stats.SwapStats
	moveStats   *stats.MoveTypeStat
	status      stats.StatusTable

	numNets              int
	innerRecomputeLimit  int
	quenchRecomputeLimit int
	movesSinceRecompute  int
	outerCritIterCount   int
	totalIter            int

	checkpoint Checkpoint
	start      time.Time
}

// Name returns the name of the placer.
func (p *Placer) Name() string {
	return p.name
}

// Options returns the options the placer runs with.
func (p *Placer) Options() config.Options {
	return p.opts
}

// Placement returns the placement being annealed.
func (p *Placer) Placement() *placement.State {
	return p.st
}

// Costs returns the current costs.
func (p *Placer) Costs() cost.Costs {
	return p.costs
}

// AnnealingState returns the schedule state.
func (p *Placer) AnnealingState() State {
	return p.state
}

// Phase returns the current phase.
func (p *Placer) Phase() Phase {
	return p.phase
}

// Timing returns the timing bridge, or nil for a wirelength driven anneal.
func (p *Placer) Timing() *timing.Bridge {
	return p.bridge
}

// NoC returns the NoC model, or nil when NoC costs are off.
func (p *Placer) NoC() *noc.Model {
	return p.noc
}

// Wirelength returns the wirelength evaluator.
func (p *Placer) Wirelength() *cost.Wirelength {
	return p.wl
}

// SwapStats returns the swap totals so far.
func (p *Placer) SwapStats() stats.SwapStats {
	return p.swapStats
}

// MoveTypeStats returns the per block type and move type counters.
func (p *Placer) MoveTypeStats() *stats.MoveTypeStat {
	return p.moveStats
}

// StatusTable returns one row per temperature.
func (p *Placer) StatusTable() *stats.StatusTable {
	return &p.status
}

// TotalMoves returns the number of swaps tried by the inner loops.
func (p *Placer) TotalMoves() int {
	return p.totalIter
}

// CriticalPathDelay returns the current critical path delay, or zero for a
// wirelength driven anneal.
func (p *Placer) CriticalPathDelay() float64 {
	if p.bridge == nil {
		return 0
	}

	return p.bridge.CriticalPathDelay()
}

// RLGenerators returns the learning generators, early one first.
func (p *Placer) RLGenerators() []*movegen.RLMoveGenerator {
	return p.rlGens
}
