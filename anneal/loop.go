package anneal

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/sarchlab/akita/v4/sim"

	"github.com/sarchlab/fplace/cost"
	"github.com/sarchlab/fplace/move"
	"github.com/sarchlab/fplace/movegen"
	"github.com/sarchlab/fplace/stats"
)

// Step runs the next piece of the placement flow: the initialization, one
// temperature of the anneal, the quench, or the final checks. It reports
// true once the placement is done or has failed.
func (p *Placer) Step() (bool, error) {
	if p.err != nil {
		return true, p.err
	}

	switch p.phase {
	case PhaseInit:
		if err := p.Init(); err != nil {
			p.fail(err)
		}
	case PhaseAnneal:
		p.outerIteration()
	case PhaseQuench:
		p.quench()
	case PhaseFinish:
		p.finish()
	case PhaseDone:
		return true, nil
	}

	if p.err != nil {
		return true, p.err
	}

	return p.phase == PhaseDone, nil
}

// Place runs the whole placement flow.
func (p *Placer) Place() error {
	for {
		done, err := p.Step()
		if err != nil {
			return err
		}

		if done {
			return nil
		}
	}
}

// Err returns the error that stopped the placer, if any.
func (p *Placer) Err() error {
	return p.err
}

func (p *Placer) fail(err error) {
	if p.err == nil {
		p.err = err
	}
}

func (p *Placer) currentGenerator() movegen.MoveGenerator {
	if p.agentState == lateInTheAnneal {
		return p.gens[1]
	}

	return p.gens[0]
}

func (p *Placer) outerIteration() {
	p.outerLoopUpdateTimingInfo()

	if p.bridge != nil && p.opts.Checkpointing &&
		p.agentState == lateInTheAnneal {
		p.saveCheckpointIfNeeded()
	}

	p.innerLoop(p.currentGenerator(), p.innerRecomputeLimit,
		p.opts.PlaceAlgorithm)
	if p.err != nil {
		return
	}

	p.totalIter += p.state.MoveLim
	p.state.NumTemps++
	p.reportStatus()

	if p.opts.PlaceAlgorithm.IsTimingDriven() && p.opts.AgentMultistate &&
		p.agentState == earlyInTheAnneal &&
		p.state.Alpha > 0.6 && p.state.Alpha < 0.85 {
		p.agentState = lateInTheAnneal
		slog.Debug("Agent switched to its second state",
			"Placer", p.name,
			"Temperature", p.state.NumTemps)
	}

	if p.opts.CheckCosts {
		if err := p.RecomputeCostsFromScratch(); err != nil {
			p.fail(err)
			return
		}
	}

	if !p.state.OuterLoopUpdate(p.placerStats.SuccessRate, &p.costs,
		p.numNets, p.opts) {
		p.phase = PhaseQuench
	}
}

// outerLoopUpdateTimingInfo refreshes the criticalities before a
// temperature and renormalizes the costs.
func (p *Placer) outerLoopUpdateTimingInfo() {
	if p.opts.PlaceAlgorithm.IsTimingDriven() {
		if p.outerCritIterCount >= p.opts.RecomputeCritIter ||
			p.opts.InnerLoopRecomputeDivider != 0 {
			p.costs.TimingCost =
				p.bridge.PerformFullTimingUpdate(p.state.CritExponent)
			p.outerCritIterCount = 0
		}

		p.outerCritIterCount++
	}

	p.model.UpdateNormFactors(&p.costs)
}

func (p *Placer) innerLoop(
	gen movegen.MoveGenerator,
	recomputeLimit int,
	algo cost.Algorithm,
) {
	p.placerStats.Reset()

	critIterCount := 1
	saveCount := 0
	saveInterval := 0
	if p.opts.SavesPerTemperature >= 1 {
		saveInterval = max(p.state.MoveLim/p.opts.SavesPerTemperature, 1)
	}

	for i := 0; i < p.state.MoveLim; i++ {
		result := p.trySwap(&p.state, gen, algo)
		if p.err != nil {
			return
		}

		if result == move.Accepted {
			p.placerStats.SingleSwapUpdate(p.costs.Cost, p.costs.BBCost,
				p.costs.TimingCost)
		}

		if algo.IsTimingDriven() {
			if critIterCount >= recomputeLimit && i != p.state.MoveLim-1 {
				critIterCount = 0
				p.costs.TimingCost =
					p.bridge.PerformFullTimingUpdate(p.state.CritExponent)
			}

			critIterCount++
		}

		p.movesSinceRecompute++
		if p.movesSinceRecompute > MaxMovesBeforeRecompute {
			if err := p.RecomputeCostsFromScratch(); err != nil {
				p.fail(err)
				return
			}

			p.movesSinceRecompute = 0
		}

		if saveInterval > 0 && i > 0 && (i+1)%saveInterval == 0 {
			if err := p.dumpPlacement(p.state.NumTemps+1, saveCount); err != nil {
				p.fail(err)
				return
			}

			saveCount++
		}
	}

	p.placerStats.CalcIterationStats(p.costs.Cost, p.costs.BBCost,
		p.costs.TimingCost, p.state.MoveLim)
}

// quench runs one more temperature at zero, so that only improving swaps
// are taken, with the largest move limit.
func (p *Placer) quench() {
	p.state.T = 0
	p.state.MoveLim = p.state.MoveLimMax

	p.outerLoopUpdateTimingInfo()

	gen := p.gens[0]
	if p.opts.QuenchAlgorithm.IsTimingDriven() && p.opts.AgentMultistate {
		gen = p.gens[1]
	}

	p.innerLoop(gen, p.quenchRecomputeLimit, p.opts.QuenchAlgorithm)
	if p.err != nil {
		return
	}

	p.totalIter += p.state.MoveLim
	p.state.NumTemps++
	p.reportStatus()

	p.phase = PhaseFinish
}

func (p *Placer) finish() {
	if p.bridge != nil {
		// A wirelength quench leaves the connection delays of moved blocks
		// stale.
		p.bridge.CompConnectionDelays()
		p.costs.TimingCost =
			p.bridge.PerformFullTimingUpdate(p.state.CritExponent)
	}

	if p.bridge != nil && p.opts.Checkpointing {
		p.restoreBestPlacement()
	}

	if p.opts.SavesPerTemperature >= 1 {
		if err := p.dumpPlacement(p.state.NumTemps+1, 0); err != nil {
			p.fail(err)
			return
		}
	}

	if err := p.CheckPlace(); err != nil {
		p.fail(err)
		return
	}

	p.phase = PhaseDone

	s := p.Summary()
	p.InvokeHook(sim.HookCtx{Domain: p, Pos: HookPosFinish, Item: s})

	slog.Info("Placement done",
		"Placer", p.name,
		"Cost", s.Cost,
		"BBCost", s.BBCost,
		"CPD", s.CPD,
		"Temperatures", s.NumTemps,
		"Moves", s.TotalMoves)
}

func (p *Placer) reportStatus() {
	row := stats.StatusRow{
		Iteration:    p.state.NumTemps,
		Elapsed:      time.Since(p.start).Seconds(),
		Temperature:  p.state.T,
		AvCost:       p.placerStats.AvCost,
		AvBBCost:     p.placerStats.AvBBCost,
		AvTimingCost: p.placerStats.AvTimingCost,
		CPD:          p.CriticalPathDelay(),
		SuccessRate:  p.placerStats.SuccessRate,
		StdDev:       p.placerStats.StdDev,
		Rlim:         p.state.Rlim,
		CritExponent: p.state.CritExponent,
		TotalMoves:   p.totalIter,
		Alpha:        p.state.Alpha,
	}

	p.status.Append(row)
	p.InvokeHook(sim.HookCtx{Domain: p, Pos: HookPosTemperature, Item: row})

	slog.Debug("Temperature done",
		"Placer", p.name,
		"Iteration", row.Iteration,
		"T", row.Temperature,
		"AvCost", row.AvCost,
		"SuccessRate", row.SuccessRate)
}

// Summary describes the placement as it is now.
func (p *Placer) Summary() Summary {
	d := p.st.Digest()

	return Summary{
		Name:       p.name,
		Seed:       p.opts.Seed,
		Cost:       p.costs.Cost,
		BBCost:     p.costs.BBCost,
		TimingCost: p.costs.TimingCost,
		CPD:        p.CriticalPathDelay(),
		Wirelength: p.wl.Estimate(),
		NumTemps:   p.state.NumTemps,
		TotalMoves: p.totalIter,
		Accepted:   p.swapStats.Accepted,
		Rejected:   p.swapStats.Rejected,
		Aborted:    p.swapStats.Aborted,
		Digest:     fmt.Sprintf("%x", d[:]),
		Elapsed:    time.Since(p.start).Seconds(),
	}
}
