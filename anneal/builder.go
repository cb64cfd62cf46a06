package anneal

import (
	"github.com/sarchlab/akita/v4/sim"

	"github.com/sarchlab/fplace/config"
	"github.com/sarchlab/fplace/move"
	"github.com/sarchlab/fplace/movegen"
	"github.com/sarchlab/fplace/noc"
	"github.com/sarchlab/fplace/placement"
	"github.com/sarchlab/fplace/rng"
	"github.com/sarchlab/fplace/timing"
)

// Builder can build placers.
type Builder struct {
	opts        config.Options
	delayModel  timing.DelayModel
	analyzer    timing.Analyzer
	invalidator timing.Invalidator
	flows       []noc.Flow
	manual      <-chan movegen.ManualMove
}

// MakeBuilder creates a builder with the default options.
func MakeBuilder() Builder {
	return Builder{opts: config.DefaultOptions()}
}

// WithOptions sets the placer options.
func (b Builder) WithOptions(opts config.Options) Builder {
	b.opts = opts
	return b
}

// WithDelayModel replaces the Manhattan delay model of the options.
func (b Builder) WithDelayModel(m timing.DelayModel) Builder {
	b.delayModel = m
	return b
}

// WithAnalyzer replaces the built-in path analyzer. The invalidator is told
// about every connection whose delay changes.
func (b Builder) WithAnalyzer(a timing.Analyzer, inv timing.Invalidator) Builder {
	b.analyzer = a
	b.invalidator = inv
	return b
}

// WithFlows sets the NoC traffic flows.
func (b Builder) WithFlows(flows []noc.Flow) Builder {
	b.flows = flows
	return b
}

// WithManualMoves makes every swap a manual move read from ch.
func (b Builder) WithManualMoves(ch <-chan movegen.ManualMove) Builder {
	b.manual = ch
	return b
}

// Build creates a placer over a placement. Blocks left unplaced are placed
// at random when the placer initializes. The options are validated first.
func (b Builder) Build(name string, st *placement.State) (*Placer, error) {
	if err := b.opts.Validate(); err != nil {
		return nil, err
	}

	p := &Placer{
		HookableBase: sim.NewHookableBase(),
		name:         name,
		opts:         b.opts,
		st:           st,
		rand:         rng.New(b.opts.Seed),
		flows:        b.flows,
		delayModel:   b.delayModel,
		analyzer:     b.analyzer,
		invalidator:  b.invalidator,
		manualCh:     b.manual,
		ba:           move.NewBlocksAffected(),
	}

	if p.delayModel == nil {
		p.delayModel = timing.ManhattanDelayModel{
			Base:     b.opts.Delay.Base,
			PerTile:  b.opts.Delay.PerTile,
			PerLayer: b.opts.Delay.PerLayer,
		}
	}

	if p.analyzer == nil {
		inv := timing.NewPinInvalidator()
		p.analyzer = timing.NewPathAnalyzer(st.Netlist(), inv)
		p.invalidator = inv
	}

	if p.invalidator == nil {
		p.invalidator = timing.NewPinInvalidator()
	}

	return p, nil
}
