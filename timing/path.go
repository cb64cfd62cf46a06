package timing

import (
	"log/slog"
	"math"

	"github.com/sarchlab/fplace/netlist"
)

// PathAnalyzer is a block-level static timing analyzer. Paths start at
// sequential blocks and at blocks without fanin, and end at sequential
// blocks and at blocks without fanout. Blocks have no intrinsic delay. The
// required time of every endpoint is the critical path delay.
type PathAnalyzer struct {
	nl          *netlist.Netlist
	invalidator *PinInvalidator

	order  []netlist.BlockID
	rank   []int
	fanin  [][]netlist.PinID
	fanout [][]netlist.PinID

	arrivalOut  []float64
	requiredOut []float64
	arrival     []float64
	slack       []float64
	crit        []float64
	cpd         float64
	analyzed    bool
}

// NewPathAnalyzer creates an analyzer for a netlist. If an invalidator is
// given, an update with no invalidated connection is skipped.
func NewPathAnalyzer(nl *netlist.Netlist, inv *PinInvalidator) *PathAnalyzer {
	a := &PathAnalyzer{
		nl:          nl,
		invalidator: inv,
		fanin:       make([][]netlist.PinID, nl.NumBlocks()),
		fanout:      make([][]netlist.PinID, nl.NumBlocks()),
		arrivalOut:  make([]float64, nl.NumBlocks()),
		requiredOut: make([]float64, nl.NumBlocks()),
		arrival:     make([]float64, nl.NumPins()),
		slack:       make([]float64, nl.NumPins()),
		crit:        make([]float64, nl.NumPins()),
	}

	for n := 0; n < nl.NumNets(); n++ {
		net := netlist.NetID(n)
		if nl.Net(net).Ignored {
			continue
		}

		driver := nl.NetDriverBlock(net)
		for _, sink := range nl.NetSinks(net) {
			a.fanout[driver] = append(a.fanout[driver], sink)
			dst := nl.Pin(sink).Block
			a.fanin[dst] = append(a.fanin[dst], sink)
		}
	}

	a.levelize()

	return a
}

func (a *PathAnalyzer) source(sink netlist.PinID) netlist.BlockID {
	return a.nl.NetDriverBlock(a.nl.Pin(sink).Net)
}

// propagates tells if arrival times flow through a block.
func (a *PathAnalyzer) propagates(b netlist.BlockID) bool {
	return !a.nl.Block(b).Sequential
}

func (a *PathAnalyzer) levelize() {
	n := a.nl.NumBlocks()
	indegree := make([]int, n)

	for b := 0; b < n; b++ {
		dst := netlist.BlockID(b)
		if !a.propagates(dst) {
			continue
		}

		for _, sink := range a.fanin[dst] {
			src := a.source(sink)
			if src != dst && a.propagates(src) {
				indegree[dst]++
			}
		}
	}

	queue := make([]netlist.BlockID, 0, n)
	for b := 0; b < n; b++ {
		if indegree[b] == 0 {
			queue = append(queue, netlist.BlockID(b))
		}
	}

	done := make([]bool, n)
	for len(queue) > 0 {
		b := queue[0]
		queue = queue[1:]
		done[b] = true
		a.order = append(a.order, b)

		if !a.propagates(b) {
			continue
		}

		for _, sink := range a.fanout[b] {
			dst := a.nl.Pin(sink).Block
			if dst == b || !a.propagates(dst) {
				continue
			}

			indegree[dst]--
			if indegree[dst] == 0 {
				queue = append(queue, dst)
			}
		}
	}

	if len(a.order) < n {
		slog.Warn("Combinational loop, timing is approximate",
			"Blocks", n-len(a.order))

		for b := 0; b < n; b++ {
			if !done[b] {
				a.order = append(a.order, netlist.BlockID(b))
			}
		}
	}

	a.rank = make([]int, n)
	for i, b := range a.order {
		a.rank[b] = i
	}
}

// cut tells if a connection closes a combinational loop. Cut connections
// end a path at their sink, so every pass breaks loops the same way.
func (a *PathAnalyzer) cut(sink netlist.PinID) bool {
	src, dst := a.source(sink), a.nl.Pin(sink).Block

	return src != dst && a.propagates(src) && a.propagates(dst) &&
		a.rank[src] >= a.rank[dst]
}

// Update implements Analyzer.
func (a *PathAnalyzer) Update(delays DelayLookup) {
	if a.analyzed && a.invalidator != nil && a.invalidator.Pending() == 0 {
		return
	}

	a.forward(delays)
	a.backward(delays)
	a.analyzed = true
}

func (a *PathAnalyzer) forward(delays DelayLookup) {
	a.cpd = 0

	for _, b := range a.order {
		a.arrivalOut[b] = 0
		if !a.propagates(b) {
			continue
		}

		for _, sink := range a.fanin[b] {
			src := a.source(sink)
			if src == b || a.cut(sink) {
				continue
			}

			a.arrivalOut[b] = math.Max(a.arrivalOut[b],
				a.arrivalOut[src]+delays.PinDelay(sink))
		}
	}

	for b := range a.fanin {
		for _, sink := range a.fanin[b] {
			a.arrival[sink] = a.arrivalOut[a.source(sink)] + delays.PinDelay(sink)
			a.cpd = math.Max(a.cpd, a.arrival[sink])
		}
	}
}

func (a *PathAnalyzer) required(sink netlist.PinID) float64 {
	dst := a.nl.Pin(sink).Block
	if !a.propagates(dst) || a.source(sink) == dst || a.cut(sink) {
		return a.cpd
	}

	return a.requiredOut[dst]
}

func (a *PathAnalyzer) backward(delays DelayLookup) {
	for i := len(a.order) - 1; i >= 0; i-- {
		b := a.order[i]
		a.requiredOut[b] = a.cpd

		for _, sink := range a.fanout[b] {
			a.requiredOut[b] = math.Min(a.requiredOut[b],
				a.required(sink)-delays.PinDelay(sink))
		}
	}

	for b := range a.fanin {
		for _, sink := range a.fanin[b] {
			a.slack[sink] = a.required(sink) - a.arrival[sink]
			a.crit[sink] = a.criticality(a.slack[sink])
		}
	}
}

func (a *PathAnalyzer) criticality(slack float64) float64 {
	if a.cpd <= 0 {
		return 0
	}

	return math.Max(0, math.Min(1, 1-slack/a.cpd))
}

// Criticality implements Analyzer.
func (a *PathAnalyzer) Criticality(sink netlist.PinID) float64 {
	return a.crit[sink]
}

// SetupSlack implements Analyzer.
func (a *PathAnalyzer) SetupSlack(sink netlist.PinID) float64 {
	return a.slack[sink]
}

// CriticalPathDelay implements Analyzer.
func (a *PathAnalyzer) CriticalPathDelay() float64 {
	return a.cpd
}
