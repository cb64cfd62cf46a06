package cost

import "github.com/sarchlab/fplace/netlist"

// NetCosts holds the committed wirelength cost of every net and the cost
// proposed during the current swap. A negative proposed cost marks a net not
// yet affected by the swap.
type NetCosts struct {
	Committed []float64
	Proposed  []float64
}

// NewNetCosts allocates costs for n nets.
func NewNetCosts(n int) *NetCosts {
	nc := &NetCosts{
		Committed: make([]float64, n),
		Proposed:  make([]float64, n),
	}

	for i := range nc.Proposed {
		nc.Proposed[i] = -1
	}

	return nc
}

// Mark flags a net as affected by the current swap. It returns false if the
// net was already flagged.
func (nc *NetCosts) Mark(net netlist.NetID) bool {
	if nc.Proposed[net] >= 0 {
		return false
	}

	nc.Proposed[net] = 1

	return true
}

// Commit adopts the proposed cost of a net.
func (nc *NetCosts) Commit(net netlist.NetID) {
	nc.Committed[net] = nc.Proposed[net]
	nc.Proposed[net] = -1
}

// Reset drops the proposed cost of a net.
func (nc *NetCosts) Reset(net netlist.NetID) {
	nc.Proposed[net] = -1
}

// Sum adds up the committed cost of every net that is not ignored.
func (nc *NetCosts) Sum(nl *netlist.Netlist) float64 {
	total := 0.0

	for i, c := range nc.Committed {
		if !nl.Net(netlist.NetID(i)).Ignored {
			total += c
		}
	}

	return total
}
