package timing

import "github.com/sarchlab/fplace/netlist"

// PinInvalidator records invalidated connections.
type PinInvalidator struct {
	pending map[netlist.PinID]bool
}

// NewPinInvalidator creates an invalidator with nothing pending.
func NewPinInvalidator() *PinInvalidator {
	return &PinInvalidator{pending: make(map[netlist.PinID]bool)}
}

// InvalidateConnection marks a connection as changed.
func (v *PinInvalidator) InvalidateConnection(sink netlist.PinID) {
	v.pending[sink] = true
}

// Reset forgets every invalidation.
func (v *PinInvalidator) Reset() {
	clear(v.pending)
}

// Pending returns the number of invalidated connections.
func (v *PinInvalidator) Pending() int {
	return len(v.pending)
}

// IsInvalidated tells if a connection changed since the last reset.
func (v *PinInvalidator) IsInvalidated(sink netlist.PinID) bool {
	return v.pending[sink]
}
