package cost

import "math"

// Caps on normalization factors, so that a near zero cost term does not
// blow up the total cost.
const (
	MaxInvTimingCost                = 1e12
	MaxInvNoCAggregateBandwidthCost = 1.0
	MaxInvNoCLatencyCost            = 1e12
	MaxInvNoCCongestionCost         = 1e3
)

// NoCTerms are the network-on-chip cost terms, or their normalization
// factors, or their weights.
type NoCTerms struct {
	AggregateBandwidth float64
	Latency            float64
	LatencyOverrun     float64
	Congestion         float64
}

// Add returns the element-wise sum.
func (t NoCTerms) Add(o NoCTerms) NoCTerms {
	return NoCTerms{
		AggregateBandwidth: t.AggregateBandwidth + o.AggregateBandwidth,
		Latency:            t.Latency + o.Latency,
		LatencyOverrun:     t.LatencyOverrun + o.LatencyOverrun,
		Congestion:         t.Congestion + o.Congestion,
	}
}

// NoCWeights weighs the NoC terms against each other and against the rest of
// the cost.
type NoCWeights struct {
	Placement          float64
	AggregateBandwidth float64
	Latency            float64
	LatencyConstraints float64
	Congestion         float64
}

// NoCCost combines normalized NoC terms.
func NoCCost(terms, norms NoCTerms, w NoCWeights) float64 {
	return w.Placement * (terms.AggregateBandwidth*norms.AggregateBandwidth*w.AggregateBandwidth +
		terms.Latency*norms.Latency*w.Latency +
		terms.LatencyOverrun*norms.LatencyOverrun*w.LatencyConstraints +
		terms.Congestion*norms.Congestion*w.Congestion)
}

// Costs are the placement cost terms and their normalization.
type Costs struct {
	Cost       float64
	BBCost     float64
	TimingCost float64
	BBNorm     float64
	TimingNorm float64
	NoC        NoCTerms
	NoCNorm    NoCTerms
}

// Model combines cost terms into the total cost.
type Model struct {
	Algorithm  Algorithm
	Tradeoff   float64
	NoCEnabled bool
	NoCWeights NoCWeights
}

// UpdateNormFactors resets every normalization factor to the inverse of its
// current cost term and recomputes the total cost.
func (m Model) UpdateNormFactors(c *Costs) {
	c.BBNorm = math.Min(1/c.BBCost, MaxInvTimingCost)

	if m.Algorithm.IsTimingDriven() {
		c.TimingNorm = math.Min(1/c.TimingCost, MaxInvTimingCost)
	}

	if m.NoCEnabled {
		c.NoCNorm = NoCTerms{
			AggregateBandwidth: math.Min(1/c.NoC.AggregateBandwidth, MaxInvNoCAggregateBandwidthCost),
			Latency:            math.Min(1/c.NoC.Latency, MaxInvNoCLatencyCost),
			LatencyOverrun:     math.Min(1/c.NoC.LatencyOverrun, MaxInvNoCLatencyCost),
			Congestion:         math.Min(1/c.NoC.Congestion, MaxInvNoCCongestionCost),
		}
	}

	c.Cost = m.Total(c)
}

// Total computes the total cost from the terms and their normalization.
func (m Model) Total(c *Costs) float64 {
	total := c.BBCost * c.BBNorm

	if m.Algorithm.IsTimingDriven() {
		total = (1-m.Tradeoff)*c.BBCost*c.BBNorm + m.Tradeoff*c.TimingCost*c.TimingNorm
	}

	if m.NoCEnabled {
		total += NoCCost(c.NoC, c.NoCNorm, m.NoCWeights)
	}

	return total
}

// Delta combines the cost deltas of a swap the same way Total combines
// costs, for the criticality and bounding box formulations.
func (m Model) Delta(c *Costs, bbDelta, timingDelta float64) float64 {
	if m.Algorithm == CriticalityTiming {
		return (1-m.Tradeoff)*bbDelta*c.BBNorm + m.Tradeoff*timingDelta*c.TimingNorm
	}

	return bbDelta * c.BBNorm
}
