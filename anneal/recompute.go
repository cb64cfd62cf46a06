package anneal

import (
	"fmt"
	"log/slog"

	"github.com/sarchlab/fplace/verify"
)

// MaxMovesBeforeRecompute is how many swaps the incremental costs may drift
// before they are recomputed from scratch.
const MaxMovesBeforeRecompute = 500000

// NoC latency and congestion costs below these are too small to compare.
const (
	minExpectedNoCLatencyCost    = 1e-12
	minExpectedNoCCongestionCost = 1e-3
)

// RecomputeCostsFromScratch recomputes every cost term, replaces the
// incrementally maintained one, and fails when the two disagree by more
// than the error tolerance.
func (p *Placer) RecomputeCostsFromScratch() error {
	var issues []verify.Issue

	check := func(name string, fresh, incremental float64) {
		if verify.IsClose(fresh, incremental) {
			return
		}

		issues = append(issues, verify.Issue{
			Type: verify.IssueCost,
			Message: fmt.Sprintf("%s recomputed %g, incremental %g, tolerance %g",
				name, fresh, incremental, verify.ErrorTol),
		})
	}

	bb := p.wl.Recompute()
	check("bb_cost", bb, p.costs.BBCost)
	p.costs.BBCost = bb

	if p.opts.PlaceAlgorithm.IsTimingDriven() {
		t := p.bridge.CompTimingCosts()
		check("timing_cost", t, p.costs.TimingCost)
		p.costs.TimingCost = t
	} else {
		p.costs.Cost = bb * p.costs.BBNorm
	}

	if p.noc != nil {
		n := p.noc.CheckTerms()
		check("noc_aggregate_bandwidth_cost", n.AggregateBandwidth,
			p.costs.NoC.AggregateBandwidth)

		if n.Latency > minExpectedNoCLatencyCost {
			check("noc_latency_cost", n.Latency, p.costs.NoC.Latency)
		}

		if n.LatencyOverrun > minExpectedNoCLatencyCost {
			check("noc_latency_overrun_cost", n.LatencyOverrun,
				p.costs.NoC.LatencyOverrun)
		}

		if n.Congestion > minExpectedNoCCongestionCost {
			check("noc_congestion_cost", n.Congestion, p.costs.NoC.Congestion)
		}

		p.costs.NoC = n
	}

	if len(issues) > 0 {
		return &verify.ConsistencyError{Issues: issues}
	}

	return nil
}

// CheckPlace checks the legality of the placement and recomputes every cost
// from scratch against the maintained ones.
func (p *Placer) CheckPlace() error {
	r := verify.CheckPlace(verify.Input{
		State:      p.st,
		Wirelength: p.wl,
		Costs:      &p.costs,
		Timing:     p.bridge,
		NoC:        p.noc,
	})

	if !r.OK() {
		slog.Error("Placement check failed",
			"Placer", p.name,
			"Issues", len(r.Issues))
	}

	return r.Err()
}
