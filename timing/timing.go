// Package timing connects the placer to a static timing analyzer. It keeps
// the per-connection delays and timing costs of the placement, with the
// proposed values of the swap under evaluation, and the criticality and
// setup-slack views the analyzer produces.
package timing

import (
	"math"

	"github.com/sarchlab/fplace/arch"
	"github.com/sarchlab/fplace/netlist"
)

// InvalidDelay marks a proposed delay or timing cost that is not set.
var InvalidDelay = math.NaN()

// IsInvalid tells if a proposed value is unset.
func IsInvalid(v float64) bool {
	return math.IsNaN(v)
}

// A DelayModel estimates the delay of a connection between two pins.
type DelayModel interface {
	Delay(from arch.TileLoc, fromPin int, to arch.TileLoc, toPin int) float64
}

// A DelayLookup provides the current delay of a connection, keyed by sink pin.
type DelayLookup interface {
	PinDelay(sink netlist.PinID) float64
}

// An Analyzer is a static timing analyzer over the connection graph.
type Analyzer interface {
	// Update re-analyzes timing with the given connection delays.
	Update(delays DelayLookup)
	// Criticality returns the criticality of a connection in [0, 1].
	Criticality(sink netlist.PinID) float64
	// SetupSlack returns the setup slack of a connection.
	SetupSlack(sink netlist.PinID) float64
	// CriticalPathDelay returns the longest path delay.
	CriticalPathDelay() float64
}

// An Invalidator collects the connections whose delay changed since the last
// analysis, so that the analyzer can update incrementally.
type Invalidator interface {
	InvalidateConnection(sink netlist.PinID)
	Reset()
}
