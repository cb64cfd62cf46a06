package cost

import (
	"github.com/sarchlab/fplace/bbox"
	"github.com/sarchlab/fplace/netlist"
)

// Wirelength evaluates net costs over a box cache.
type Wirelength struct {
	Factors *ChanFactors
	Cache   *bbox.Cache
	Nets    *NetCosts
	nl      *netlist.Netlist
}

// NewWirelength ties channel factors, a box cache and per-net costs
// together.
func NewWirelength(nl *netlist.Netlist, f *ChanFactors, c *bbox.Cache) *Wirelength {
	return &Wirelength{
		Factors: f,
		Cache:   c,
		Nets:    NewNetCosts(nl.NumNets()),
		nl:      nl,
	}
}

// CompBBCost rebuilds every box with the given method, stores every net
// cost and returns their sum.
func (w *Wirelength) CompBBCost(method bbox.Method) float64 {
	w.Cache.LoadAll(method)

	total := 0.0
	for i := 0; i < w.nl.NumNets(); i++ {
		net := netlist.NetID(i)
		if w.nl.Net(net).Ignored {
			continue
		}

		w.Nets.Committed[net] = w.committedCost(net)
		total += w.Nets.Committed[net]
	}

	return total
}

// Recompute sums the committed net costs.
func (w *Wirelength) Recompute() float64 {
	return w.Nets.Sum(w.nl)
}

func (w *Wirelength) committedCost(net netlist.NetID) float64 {
	if w.Cache.IsCube() {
		return w.Factors.NetCost(w.Cache.Coords(net), len(w.nl.Net(net).Pins))
	}

	return w.Factors.NetLayerCost(w.Cache.LayerCoords(net), w.Cache.SinkCount(net))
}

// ProposedCost evaluates the proposed box of a net.
func (w *Wirelength) ProposedCost(net netlist.NetID) float64 {
	if w.Cache.IsCube() {
		return w.Factors.NetCost(w.Cache.ProposedCoords(net), len(w.nl.Net(net).Pins))
	}

	return w.Factors.NetLayerCost(w.Cache.ProposedLayerCoords(net),
		w.Cache.ProposedSinkCount(net))
}

// BoxCost evaluates boxes shaped like bbox.Cache.CheckNet returns them.
func (w *Wirelength) BoxCost(net netlist.NetID, boxes []bbox.Box, sinks []int) float64 {
	if w.Cache.IsCube() {
		return w.Factors.NetCost(boxes[0], len(w.nl.Net(net).Pins))
	}

	return w.Factors.NetLayerCost(boxes, sinks)
}

// Estimate sums the wirelength estimate of every net that is not ignored.
func (w *Wirelength) Estimate() float64 {
	wl := 0.0

	for i := 0; i < w.nl.NumNets(); i++ {
		net := netlist.NetID(i)
		if w.nl.Net(net).Ignored {
			continue
		}

		if w.Cache.IsCube() {
			wl += WirelengthEstimate(w.Cache.Coords(net), len(w.nl.Net(net).Pins))
		} else {
			wl += LayerWirelengthEstimate(w.Cache.LayerCoords(net), w.Cache.SinkCount(net))
		}
	}

	return wl
}
