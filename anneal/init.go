package anneal

import (
	"log/slog"
	"math"
	"time"

	"github.com/pkg/errors"

	"github.com/sarchlab/fplace/bbox"
	"github.com/sarchlab/fplace/config"
	"github.com/sarchlab/fplace/cost"
	"github.com/sarchlab/fplace/move"
	"github.com/sarchlab/fplace/movegen"
	"github.com/sarchlab/fplace/netlist"
	"github.com/sarchlab/fplace/noc"
	"github.com/sarchlab/fplace/stats"
	"github.com/sarchlab/fplace/timing"
)

// Init places the unplaced blocks, builds every cost structure, checks the
// initial placement and picks the starting temperature.
func (p *Placer) Init() error {
	if p.phase != PhaseInit {
		return errors.Errorf("placer %s already initialized", p.name)
	}

	p.start = time.Now()

	if err := p.st.InitialPlace(p.rand); err != nil {
		return errors.Wrap(err, "initial placement")
	}

	p.initCosts()
	p.initGenerators()

	if err := p.CheckPlace(); err != nil {
		return errors.Wrap(err, "initial placement")
	}

	if p.opts.SavesPerTemperature >= 1 {
		if err := p.dumpPlacement(0, 0); err != nil {
			return err
		}
	}

	p.initSchedule()
	p.phase = PhaseAnneal

	slog.Debug("Placer initialized",
		"Placer", p.name,
		"Cost", p.costs.Cost,
		"BBCost", p.costs.BBCost,
		"TimingCost", p.costs.TimingCost,
		"MoveLim", p.state.MoveLim,
		"T", p.state.T,
		"Rlim", p.state.Rlim)

	return nil
}

func (p *Placer) initCosts() {
	g := p.st.Grid()
	nl := p.st.Netlist()

	p.cache = bbox.NewCache(p.st, bbox.UseCube(p.opts.BoundingBoxMode, g))
	p.wl = cost.NewWirelength(nl, cost.NewChanFactors(g, p.opts.PlaceCostExp), p.cache)
	p.costs.BBCost = p.wl.CompBBCost(bbox.Normal)
	p.costs.TimingNorm = 1

	for i := 0; i < nl.NumNets(); i++ {
		if !nl.Net(netlist.NetID(i)).Ignored {
			p.numNets++
		}
	}

	if p.opts.PlaceAlgorithm.IsTimingDriven() {
		p.bridge = timing.NewBridge(p.st, p.delayModel, p.analyzer,
			p.invalidator, p.opts.PlaceCritLimit)
		p.bridge.CompConnectionDelays()
		p.costs.TimingCost = p.bridge.PerformFullTimingUpdate(p.opts.TDPlaceExpFirst)
	}

	if p.opts.NoC.Enabled {
		p.noc = noc.NewModel(p.st, p.flows, noc.Config{
			LinkBandwidth: p.opts.NoC.LinkBandwidth,
			LinkLatency:   p.opts.NoC.LinkLatency,
			RouterLatency: p.opts.NoC.RouterLatency,
		})
		p.costs.NoC = p.noc.Route()
	}

	p.model = cost.Model{
		Algorithm:  p.opts.PlaceAlgorithm,
		Tradeoff:   p.opts.TimingTradeoff,
		NoCEnabled: p.opts.NoC.Enabled,
		NoCWeights: p.opts.NoC.Weights(),
	}
	p.model.UpdateNormFactors(&p.costs)
}

func (p *Placer) initGenerators() {
	var crits movegen.Criticalities
	if p.bridge != nil {
		crits = p.bridge
	}

	p.ctx = movegen.NewContext(p.st, p.rand, crits)
	p.ctx.HighFanoutNet = p.opts.HighFanoutNet

	gens := movegen.NewMoveTypeGenerators(p.ctx)

	if p.opts.RLAgent {
		first, second := movegen.NumNonTimingMoveTypes, movegen.NumNonTimingMoveTypes
		if p.opts.PlaceAlgorithm.IsTimingDriven() {
			first, second = len(gens), len(gens)
			if p.opts.AgentMultistate {
				first = movegen.NumFirstStateMoveTypes
			}
		}

		for i, n := range []int{first, second} {
			g := movegen.NewRLMoveGenerator(p.ctx, gens, movegen.AgentConfig{
				Algorithm: p.opts.AgentAlgorithm,
				Space:     p.opts.AgentSpace,
				NumMoves:  n,
				Epsilon:   p.opts.AgentEpsilon,
				Gamma:     p.opts.AgentGamma,
			})
			p.rlGens = append(p.rlGens, g)
			p.gens[i] = g
		}
	} else {
		for i := range p.gens {
			// Validate has checked the probabilities already.
			g, _ := movegen.NewStaticMoveGenerator(p.ctx, gens, p.opts.StaticMoveProb)
			p.gens[i] = g
		}
	}

	if p.manualCh != nil {
		p.manual = movegen.NewManualMoveGenerator(p.ctx, p.manualCh)
	}

	if p.noc != nil {
		p.routerSwap = movegen.NewRouterSwap(p.ctx, p.noc.RouterBlocks())
	}

	p.moveStats = stats.NewMoveTypeStat(
		len(p.st.Grid().LogicalTypes()), int(move.NumTypes))
}

func (p *Placer) initSchedule() {
	g := p.st.Grid()
	numBlocks := p.st.Netlist().NumBlocks()

	firstMoveLim := InitialMoveLim(p.opts, numBlocks,
		g.Width()*g.Height()*g.NumLayers())
	p.innerRecomputeLimit = recomputeLimit(firstMoveLim,
		p.opts.InnerLoopRecomputeDivider)
	p.quenchRecomputeLimit = recomputeLimit(firstMoveLim,
		p.opts.EffectiveQuenchDivider())
	p.outerCritIterCount = 1

	firstRlim := float64(max(g.Width()-1, g.Height()-1))

	p.state = NewState(p.opts, 0, firstRlim, firstMoveLim, p.opts.TDPlaceExpFirst)

	for _, gen := range p.rlGens {
		gen.SetStep(p.state.MoveLim)
	}

	p.state.T = p.startingT()
	p.state.RestartT = p.state.T
}

// startingT returns the initial temperature. The auto and dusty schedules
// probe swaps that are all accepted and start at a fraction of the standard
// deviation of the resulting costs.
func (p *Placer) startingT() float64 {
	if p.opts.AnnealingSchedule == config.UserSchedule {
		return p.opts.InitT
	}

	probe := p.state
	probe.T = math.Inf(1)

	moveLim := min(p.state.MoveLimMax, p.st.Netlist().NumBlocks())
	numAccepted := 0
	av := 0.0
	sumOfSquares := 0.0

	for i := 0; i < moveLim; i++ {
		if p.trySwap(&probe, p.gens[0], p.opts.PlaceAlgorithm) == move.Accepted {
			numAccepted++
			av += p.costs.Cost
			sumOfSquares += p.costs.Cost * p.costs.Cost
		}
	}

	if numAccepted > 0 {
		av /= float64(numAccepted)
	}

	stdDev := stats.StdDev(numAccepted, sumOfSquares, av)

	if numAccepted != moveLim {
		slog.Warn("Not every starting temperature probe was accepted",
			"Accepted", numAccepted, "Probes", moveLim)
	}

	return stdDev / 64
}
