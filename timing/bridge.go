package timing

import (
	"math"

	"github.com/sarchlab/fplace/move"
	"github.com/sarchlab/fplace/netlist"
	"github.com/sarchlab/fplace/placement"
)

// Bridge owns the timing state of a placement. Every per-connection array is
// indexed by the sink pin of the connection; driver entries stay unused.
type Bridge struct {
	st          *placement.State
	nl          *netlist.Netlist
	model       DelayModel
	analyzer    Analyzer
	invalidator Invalidator

	delay         []float64
	proposedDelay []float64
	cost          []float64
	proposedCost  []float64

	crit           []float64
	critExponent   float64
	critLimit      float64
	highlyCritical []netlist.PinID

	setupSlack     []float64
	slackView      []float64
	modifiedSlacks []netlist.PinID
}

// NewBridge creates the timing state of a placement. Connections whose
// sharpened criticality exceeds critLimit are reported as highly critical.
func NewBridge(
	st *placement.State,
	model DelayModel,
	analyzer Analyzer,
	invalidator Invalidator,
	critLimit float64,
) *Bridge {
	n := st.Netlist().NumPins()

	b := &Bridge{
		st:            st,
		nl:            st.Netlist(),
		model:         model,
		analyzer:      analyzer,
		invalidator:   invalidator,
		delay:         make([]float64, n),
		proposedDelay: make([]float64, n),
		cost:          make([]float64, n),
		proposedCost:  make([]float64, n),
		crit:          make([]float64, n),
		critExponent:  1,
		critLimit:     critLimit,
		setupSlack:    make([]float64, n),
		slackView:     make([]float64, n),
	}

	for i := 0; i < n; i++ {
		b.proposedDelay[i] = InvalidDelay
		b.proposedCost[i] = InvalidDelay
		b.setupSlack[i] = math.Inf(1)
		b.slackView[i] = InvalidDelay
	}

	return b
}

// PinDelay returns the committed delay of a connection.
func (b *Bridge) PinDelay(sink netlist.PinID) float64 {
	return b.delay[sink]
}

// ConnectionDelay returns the committed delay of a net connection.
func (b *Bridge) ConnectionDelay(net netlist.NetID, ipin int) float64 {
	return b.delay[b.nl.NetPin(net, ipin)]
}

// ProposedDelay returns the delay proposed by the current swap, or
// InvalidDelay.
func (b *Bridge) ProposedDelay(net netlist.NetID, ipin int) float64 {
	return b.proposedDelay[b.nl.NetPin(net, ipin)]
}

// ConnectionTimingCost returns the committed timing cost of a connection.
func (b *Bridge) ConnectionTimingCost(net netlist.NetID, ipin int) float64 {
	return b.cost[b.nl.NetPin(net, ipin)]
}

// SetConnectionTimingCost overwrites a committed timing cost.
func (b *Bridge) SetConnectionTimingCost(net netlist.NetID, ipin int, v float64) {
	b.cost[b.nl.NetPin(net, ipin)] = v
}

// ProposedTimingCost returns the timing cost proposed by the current swap,
// or InvalidDelay.
func (b *Bridge) ProposedTimingCost(net netlist.NetID, ipin int) float64 {
	return b.proposedCost[b.nl.NetPin(net, ipin)]
}

// Criticality returns the sharpened criticality of a connection.
func (b *Bridge) Criticality(net netlist.NetID, ipin int) float64 {
	return b.crit[b.nl.NetPin(net, ipin)]
}

// PinCriticality returns the sharpened criticality of a connection.
func (b *Bridge) PinCriticality(sink netlist.PinID) float64 {
	return b.crit[sink]
}

// ConnectionSetupSlack returns the committed setup slack of a connection.
func (b *Bridge) ConnectionSetupSlack(net netlist.NetID, ipin int) float64 {
	return b.setupSlack[b.nl.NetPin(net, ipin)]
}

// HighlyCriticalPins returns the connections whose criticality exceeds the
// limit, as of the last criticality update.
func (b *Bridge) HighlyCriticalPins() []netlist.PinID {
	return b.highlyCritical
}

// CriticalPathDelay returns the analyzer's critical path delay.
func (b *Bridge) CriticalPathDelay() float64 {
	return b.analyzer.CriticalPathDelay()
}

// SingleConnectionDelay computes the delay of a connection at the current
// block locations.
func (b *Bridge) SingleConnectionDelay(net netlist.NetID, ipin int) float64 {
	sink := b.nl.NetPin(net, ipin)
	driver := b.nl.NetDriverPin(net)

	return b.model.Delay(
		b.st.PinTileLoc(driver), b.nl.Pin(driver).TilePin,
		b.st.PinTileLoc(sink), b.nl.Pin(sink).TilePin,
	)
}

// CompConnectionDelays recomputes every connection delay from the block
// locations and clears the proposed delays. Connections whose delay changed
// are invalidated.
func (b *Bridge) CompConnectionDelays() {
	for n := 0; n < b.nl.NumNets(); n++ {
		net := netlist.NetID(n)
		if b.nl.Net(net).Ignored {
			continue
		}

		for ipin := 1; ipin < len(b.nl.Net(net).Pins); ipin++ {
			sink := b.nl.NetPin(net, ipin)
			d := b.SingleConnectionDelay(net, ipin)

			if d != b.delay[sink] {
				b.invalidator.InvalidateConnection(sink)
			}

			b.delay[sink] = d
			b.proposedDelay[sink] = InvalidDelay
		}
	}
}

// CompTimingCosts recomputes every connection timing cost from the committed
// delays and criticalities and returns the total.
func (b *Bridge) CompTimingCosts() float64 {
	total := 0.0

	for n := 0; n < b.nl.NumNets(); n++ {
		net := netlist.NetID(n)
		if b.nl.Net(net).Ignored {
			continue
		}

		for ipin := 1; ipin < len(b.nl.Net(net).Pins); ipin++ {
			sink := b.nl.NetPin(net, ipin)
			b.cost[sink] = b.crit[sink] * b.delay[sink]
			b.proposedCost[sink] = InvalidDelay
			total += b.cost[sink]
		}
	}

	return total
}

// CheckTimingCost recomputes the total timing cost without touching any
// cached value.
func (b *Bridge) CheckTimingCost() float64 {
	total := 0.0

	for n := 0; n < b.nl.NumNets(); n++ {
		net := netlist.NetID(n)
		if b.nl.Net(net).Ignored {
			continue
		}

		for ipin := 1; ipin < len(b.nl.Net(net).Pins); ipin++ {
			sink := b.nl.NetPin(net, ipin)
			total += b.crit[sink] * b.SingleConnectionDelay(net, ipin)
		}
	}

	return total
}

// UpdateTDDeltaCosts computes the proposed delays of the connections a moved
// pin affects, records them in the transaction and returns the change of
// timing cost.
//
// A driver pin affects every sink of its net. A sink pin affects its own
// connection, unless the net driver moves too, in which case the driver has
// accounted for it already. Connections whose delay does not change are not
// recorded.
func (b *Bridge) UpdateTDDeltaCosts(pin netlist.PinID, ba *move.BlocksAffected) float64 {
	p := b.nl.Pin(pin)
	net := p.Net

	if p.Type == netlist.Driver {
		delta := 0.0
		for ipin := 1; ipin < len(b.nl.Net(net).Pins); ipin++ {
			delta += b.proposeConnection(net, ipin, ba)
		}

		return delta
	}

	if ba.IsMoved(b.nl.NetDriverBlock(net)) {
		return 0
	}

	return b.proposeConnection(net, p.NetIndex, ba)
}

func (b *Bridge) proposeConnection(
	net netlist.NetID,
	ipin int,
	ba *move.BlocksAffected,
) float64 {
	sink := b.nl.NetPin(net, ipin)
	d := b.SingleConnectionDelay(net, ipin)

	if d == b.delay[sink] {
		return 0
	}

	b.proposedDelay[sink] = d
	b.proposedCost[sink] = b.crit[sink] * d
	ba.AffectedPins = append(ba.AffectedPins, sink)

	return b.proposedCost[sink] - b.cost[sink]
}

// Commit adopts the proposed delays and costs of the affected connections.
func (b *Bridge) Commit(ba *move.BlocksAffected) {
	for _, sink := range ba.AffectedPins {
		b.delay[sink] = b.proposedDelay[sink]
		b.proposedDelay[sink] = InvalidDelay
		b.cost[sink] = b.proposedCost[sink]
		b.proposedCost[sink] = InvalidDelay
	}
}

// Revert discards the proposed delays and costs of the affected connections.
func (b *Bridge) Revert(ba *move.BlocksAffected) {
	for _, sink := range ba.AffectedPins {
		b.proposedDelay[sink] = InvalidDelay
		b.proposedCost[sink] = InvalidDelay
	}
}

// InvalidateAffected tells the invalidator about every affected connection.
func (b *Bridge) InvalidateAffected(ba *move.BlocksAffected) {
	for _, sink := range ba.AffectedPins {
		b.invalidator.InvalidateConnection(sink)
	}
}
