// Package netlist holds the clustered netlist being placed: blocks, the nets
// connecting their pins, and placement macros.
package netlist

import "github.com/sarchlab/fplace/arch"

// BlockID identifies a block.
type BlockID int

// NetID identifies a net.
type NetID int

// PinID identifies a pin.
type PinID int

// Invalid ids.
const (
	InvalidBlock BlockID = -1
	InvalidNet   NetID   = -1
	InvalidPin   PinID   = -1
)

// PinType tells if a pin drives or sinks its net.
type PinType int

// Pin types.
const (
	Driver PinType = iota
	Sink
)

func (t PinType) String() string {
	if t == Driver {
		return "driver"
	}

	return "sink"
}

// Block is a clustered logical block.
type Block struct {
	ID   BlockID
	Name string
	// Type is the id of the logical block type.
	Type int
	Pins []PinID

	// Fixed blocks keep their initial location.
	Fixed bool
	// Sequential blocks start and end timing paths.
	Sequential bool
	// Region, when set, constrains where the block may go.
	Region *arch.Region
}

// Net connects a driver pin (index 0) to zero or more sink pins.
type Net struct {
	ID   NetID
	Name string
	Pins []PinID
	// Ignored nets, such as clocks, do not contribute to any cost.
	Ignored bool
}

// Pin is a block terminal attached to a net.
type Pin struct {
	ID    PinID
	Block BlockID
	Net   NetID
	// NetIndex is the index of the pin within its net; 0 is the driver.
	NetIndex int
	// TilePin is the physical pin on the tile hosting the block.
	TilePin int
	Type    PinType
}

// MacroMember is a block of a macro and its offset from the macro head.
type MacroMember struct {
	Block  BlockID
	Offset arch.Offset
}

// Macro is a group of blocks that moves as a rigid body. Members[0] is the
// head and has a zero offset.
type Macro struct {
	Members []MacroMember
}

// Head returns the head block.
func (m Macro) Head() BlockID {
	return m.Members[0].Block
}

// Netlist is an immutable clustered netlist.
type Netlist struct {
	blocks []Block
	nets   []Net
	pins   []Pin
	macros []Macro

	blockNames *NameIDBinding
	netNames   *NameIDBinding

	numConnections int
}

// NumBlocks returns the number of blocks.
func (n *Netlist) NumBlocks() int { return len(n.blocks) }

// NumNets returns the number of nets.
func (n *Netlist) NumNets() int { return len(n.nets) }

// NumPins returns the number of pins.
func (n *Netlist) NumPins() int { return len(n.pins) }

// NumConnections returns the number of driver-to-sink connections over all
// nets that are not ignored.
func (n *Netlist) NumConnections() int { return n.numConnections }

// Block returns a block.
func (n *Netlist) Block(id BlockID) *Block { return &n.blocks[id] }

// Net returns a net.
func (n *Netlist) Net(id NetID) *Net { return &n.nets[id] }

// Pin returns a pin.
func (n *Netlist) Pin(id PinID) *Pin { return &n.pins[id] }

// Macros lists the macros.
func (n *Netlist) Macros() []Macro { return n.macros }

// NetDriverPin returns the pin driving a net.
func (n *Netlist) NetDriverPin(id NetID) PinID {
	return n.nets[id].Pins[0]
}

// NetDriverBlock returns the block driving a net.
func (n *Netlist) NetDriverBlock(id NetID) BlockID {
	return n.pins[n.nets[id].Pins[0]].Block
}

// NetSinks returns the sink pins of a net.
func (n *Netlist) NetSinks(id NetID) []PinID {
	return n.nets[id].Pins[1:]
}

// NetPin returns the pin at an index of a net.
func (n *Netlist) NetPin(id NetID, index int) PinID {
	return n.nets[id].Pins[index]
}

// BlockByName finds a block.
func (n *Netlist) BlockByName(name string) (BlockID, bool) {
	id, ok := n.blockNames.Lookup(name)
	return BlockID(id), ok
}

// NetByName finds a net.
func (n *Netlist) NetByName(name string) (NetID, bool) {
	id, ok := n.netNames.Lookup(name)
	return NetID(id), ok
}

// BlocksOfType counts the blocks of every logical type.
func (n *Netlist) BlocksOfType(numTypes int) []int {
	counts := make([]int, numTypes)
	for _, b := range n.blocks {
		if b.Type >= 0 && b.Type < numTypes {
			counts[b.Type]++
		}
	}

	return counts
}
