package anneal

import (
	"github.com/sarchlab/akita/v4/sim"

	"github.com/sarchlab/fplace/arch"
	"github.com/sarchlab/fplace/bbox"
	"github.com/sarchlab/fplace/cost"
)

// Checkpoint is the best timing placement seen late in the anneal.
type Checkpoint struct {
	valid  bool
	locs   []arch.Loc
	costs  cost.Costs
	cpd    float64
	digest [32]byte
}

// IsValid tells if a placement was saved.
func (c *Checkpoint) IsValid() bool { return c.valid }

// CPD returns the critical path delay of the saved placement.
func (c *Checkpoint) CPD() float64 { return c.cpd }

// Costs returns the costs of the saved placement.
func (c *Checkpoint) Costs() cost.Costs { return c.costs }

// Digest returns the digest of the saved placement.
func (c *Checkpoint) Digest() [32]byte { return c.digest }

// Checkpoint returns the saved checkpoint.
func (p *Placer) Checkpoint() *Checkpoint {
	return &p.checkpoint
}

// saveCheckpointIfNeeded keeps the placement when its critical path is
// shorter without a wirelength more than 5% worse.
func (p *Placer) saveCheckpointIfNeeded() {
	c := &p.checkpoint
	cpd := p.bridge.CriticalPathDelay()

	if c.valid && (cpd >= c.cpd || p.costs.BBCost > 1.05*c.costs.BBCost) {
		return
	}

	c.valid = true
	c.locs = p.st.Snapshot()
	c.costs = p.costs
	c.cpd = cpd
	c.digest = p.st.Digest()

	p.InvokeHook(sim.HookCtx{
		Domain: p,
		Pos:    HookPosCheckpoint,
		Item:   CheckpointEvent{CPD: cpd, BBCost: p.costs.BBCost, Digest: c.digest},
	})
}

// restoreBestPlacement goes back to the checkpoint when the final critical
// path is over 1% longer and the checkpoint wirelength is not 5% worse.
func (p *Placer) restoreBestPlacement() {
	c := &p.checkpoint
	if !c.valid {
		return
	}

	cpd := p.bridge.CriticalPathDelay()
	if cpd <= 1.01*c.cpd || p.costs.BBCost >= 1.05*c.costs.BBCost {
		return
	}

	p.st.Restore(c.locs)
	p.costs = c.costs
	p.costs.BBCost = p.wl.CompBBCost(bbox.Normal)

	p.bridge.CompConnectionDelays()
	p.costs.TimingCost = p.bridge.PerformFullTimingUpdate(p.state.CritExponent)

	if p.noc != nil {
		p.costs.NoC = p.noc.Route()
	}

	p.costs.Cost = p.model.Total(&p.costs)

	p.InvokeHook(sim.HookCtx{
		Domain: p,
		Pos:    HookPosCheckpoint,
		Item: CheckpointEvent{
			Restored: true,
			CPD:      p.bridge.CriticalPathDelay(),
			BBCost:   p.costs.BBCost,
			Digest:   c.digest,
		},
	})
}
