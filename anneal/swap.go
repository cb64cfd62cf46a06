package anneal

import (
	"math"

	"github.com/sarchlab/akita/v4/sim"

	"github.com/sarchlab/fplace/cost"
	"github.com/sarchlab/fplace/move"
	"github.com/sarchlab/fplace/movegen"
	"github.com/sarchlab/fplace/stats"
	"github.com/sarchlab/fplace/verify"
)

// SwapEvent is the hook item of every swap.
type SwapEvent struct {
	Result      move.Result
	MoveType    move.Type
	BlockType   int
	Delta       float64
	BBDelta     float64
	TimingDelta float64
	Temperature float64
	RouterSwap  bool
}

// Accept is the annealing acceptance rule. A swap that does not increase
// the cost is always taken; at zero temperature no other swap is. Otherwise
// the swap is taken when exp(-delta/t) beats the uniform draw.
func Accept(delta, t, draw float64) bool {
	if delta <= 0 {
		return true
	}

	if t == 0 {
		return false
	}

	return math.Exp(-delta/t) > draw
}

// AssessSwap decides a swap of cost change delta at temperature t.
// The random stream is drawn from only for uphill swaps above zero
// temperature.
func (p *Placer) AssessSwap(delta, t float64) move.Result {
	if delta > 0 && (t == 0 || !Accept(delta, t, p.rand.Float64())) {
		return move.Rejected
	}

	return move.Accepted
}

// TrySwap proposes, evaluates and accepts or rejects one swap at the
// current temperature.
func (p *Placer) TrySwap() move.Result {
	return p.trySwap(&p.state, p.currentGenerator(), p.opts.PlaceAlgorithm)
}

func (p *Placer) trySwap(
	s *State,
	gen movegen.MoveGenerator,
	algo cost.Algorithm,
) move.Result {
	routerMove := p.routerSwap != nil &&
		p.routerSwap.ShouldSwap(p.opts.NoC.SwapPercentage)

	rlim := s.Rlim
	if p.opts.RlimEscapeFraction > 0 && p.rand.Float64() < p.opts.RlimEscapeFraction {
		rlim = math.Inf(1)
	}

	action := movegen.Action{MoveType: move.Uniform, BlockType: movegen.NoBlockType}
	proposer := gen

	var created move.CreateOutcome
	switch {
	case p.manual != nil:
		proposer = p.manual
		created = p.manual.ProposeMove(p.ba, &action, rlim)
	case routerMove:
		created = p.routerSwap.Propose(p.ba, rlim)
	default:
		created = gen.ProposeMove(p.ba, &action, rlim)
	}

	result := move.Aborted
	delta := 0.0
	o := stats.OutcomeStats{}

	if created == move.Valid {
		result, delta, o = p.evaluate(s.T, algo)
	}

	o.Outcome = result
	p.swapStats.Record(result)
	p.recordMoveType(action, result)

	if !routerMove {
		fn := p.opts.RewardFunction
		proposer.ProcessOutcome(
			stats.Reward(fn, delta, o, stats.BBTimingRelativeWeight), fn)
	}

	if p.NumHooks() > 0 {
		p.InvokeHook(sim.HookCtx{
			Domain: p,
			Pos:    HookPosSwap,
			Item: SwapEvent{
				Result:      result,
				MoveType:    action.MoveType,
				BlockType:   action.BlockType,
				Delta:       delta,
				BBDelta:     o.DeltaBBCostAbs,
				TimingDelta: o.DeltaTimingCostAbs,
				Temperature: s.T,
				RouterSwap:  routerMove,
			},
		})
	}

	p.ba.Clear()

	return result
}

func (p *Placer) evaluate(
	t float64,
	algo cost.Algorithm,
) (move.Result, float64, stats.OutcomeStats) {
	ba := p.ba
	ba.Apply(p.st)

	bbDelta, timingDelta := p.findAffectedNetsAndUpdateCosts(algo)

	var delta float64
	if algo == cost.SlackTiming {
		p.bridge.InvalidateAffected(ba)
		p.bridge.Commit(ba)
		p.bridge.UpdateSetupSlacks()
		delta = p.bridge.AnalyzeSetupSlackCost() * p.costs.TimingNorm
	} else {
		m := p.model
		m.Algorithm = algo
		delta = m.Delta(&p.costs, bbDelta, timingDelta)
	}

	var nocDelta cost.NoCTerms
	if p.noc != nil {
		nocDelta = p.noc.Propose(ba)
		delta += cost.NoCCost(nocDelta, p.costs.NoCNorm, p.model.NoCWeights)
	}

	result := p.AssessSwap(delta, t)

	if result == move.Accepted {
		p.costs.Cost += delta
		p.costs.BBCost += bbDelta

		switch algo {
		case cost.SlackTiming:
			p.costs.TimingCost += timingDelta
			p.bridge.CommitSetupSlacks()
		case cost.CriticalityTiming:
			p.costs.TimingCost += timingDelta
			p.bridge.InvalidateAffected(ba)
			p.bridge.Commit(ba)
		}

		p.commitNets()
		ba.Commit(p.st)

		if p.noc != nil {
			p.noc.Commit()
			p.costs.NoC = p.costs.NoC.Add(nocDelta)
		}
	} else {
		p.resetNets()
		ba.Revert(p.st)

		switch algo {
		case cost.SlackTiming:
			p.bridge.CompConnectionDelays()
			p.costs.TimingCost = p.bridge.CompTimingCosts()
			p.bridge.InvalidateAffected(ba)
			p.bridge.UpdateTimingClasses(false, true)

			if !p.bridge.VerifySetupSlacks() {
				p.fail(&verify.ConsistencyError{Issues: []verify.Issue{{
					Type:    verify.IssueCost,
					Message: "setup slacks changed after reverting a rejected swap",
				}}})
			}
		case cost.CriticalityTiming:
			p.bridge.Revert(ba)
		}

		if p.noc != nil {
			p.noc.Revert()
		}
	}

	o := stats.OutcomeStats{
		DeltaCostNorm:       delta,
		DeltaBBCostNorm:     bbDelta * p.costs.BBNorm,
		DeltaTimingCostNorm: timingDelta * p.costs.TimingNorm,
		DeltaBBCostAbs:      bbDelta,
		DeltaTimingCostAbs:  timingDelta,
	}

	return result, delta, o
}

// findAffectedNetsAndUpdateCosts computes the proposed box and cost of
// every net touched by the applied swap and, for timing driven costs, the
// proposed connection delays. It returns the wirelength and timing cost
// changes.
func (p *Placer) findAffectedNetsAndUpdateCosts(algo cost.Algorithm) (float64, float64) {
	nl := p.st.Netlist()
	p.affectedNets = p.affectedNets[:0]
	timingDelta := 0.0

	for _, m := range p.ba.Moved {
		for _, pin := range nl.Block(m.Block).Pins {
			net := nl.Pin(pin).Net
			if nl.Net(net).Ignored {
				continue
			}

			if p.wl.Nets.Mark(net) {
				p.affectedNets = append(p.affectedNets, net)
			}

			p.cache.UpdatePin(net, pin, m.OldLoc, m.NewLoc)

			if algo.IsTimingDriven() {
				timingDelta += p.bridge.UpdateTDDeltaCosts(pin, p.ba)
			}
		}
	}

	bbDelta := 0.0
	for _, net := range p.affectedNets {
		c := p.wl.ProposedCost(net)
		p.wl.Nets.Proposed[net] = c
		bbDelta += c - p.wl.Nets.Committed[net]
	}

	return bbDelta, timingDelta
}

func (p *Placer) commitNets() {
	for _, net := range p.affectedNets {
		p.cache.Commit(net)
		p.wl.Nets.Commit(net)
	}
}

func (p *Placer) resetNets() {
	for _, net := range p.affectedNets {
		p.cache.Reset(net)
		p.wl.Nets.Reset(net)
	}
}

// recordMoveType counts the swap under the block type the generator chose,
// or under the type of the first moved block.
func (p *Placer) recordMoveType(action movegen.Action, result move.Result) {
	bt := action.BlockType
	if bt < 0 && p.ba.NumMoved() > 0 {
		bt = p.st.Netlist().Block(p.ba.Moved[0].Block).Type
	}

	p.moveStats.Record(bt, action.MoveType, result)
}
