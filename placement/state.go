// Package placement keeps the block to location map of a placement and its
// inverse, the per-slot grid occupancy.
package placement

import (
	"github.com/sarchlab/fplace/arch"
	"github.com/sarchlab/fplace/netlist"
)

// EmptyBlock marks a free sub-tile slot.
const EmptyBlock netlist.BlockID = -2

// Unplaced is the location of a block that has not been placed yet.
var Unplaced = arch.Loc{X: -1, Y: -1, SubTile: -1, Layer: -1}

// State is the placement of a netlist on a grid.
//
// The block map (Location) and the grid map (BlockAt, Usage) are kept apart:
// a move transaction updates the block map first and only touches the grid
// map when it commits. Between the two the grid map is stale.
type State struct {
	grid *arch.Grid
	nl   *netlist.Netlist

	locs  []arch.Loc
	slots [][][][]netlist.BlockID
	usage [][][]int

	macroOf      []int
	memberOffset []arch.Offset
}

// NewState creates a placement with no block placed.
func NewState(grid *arch.Grid, nl *netlist.Netlist) *State {
	s := &State{
		grid: grid,
		nl:   nl,
		locs: make([]arch.Loc, nl.NumBlocks()),
	}

	for i := range s.locs {
		s.locs[i] = Unplaced
	}

	s.allocGrid()
	s.indexMacros()

	return s
}

func (s *State) allocGrid() {
	g := s.grid
	s.slots = make([][][][]netlist.BlockID, g.NumLayers())
	s.usage = make([][][]int, g.NumLayers())

	for layer := 0; layer < g.NumLayers(); layer++ {
		s.slots[layer] = make([][][]netlist.BlockID, g.Width())
		s.usage[layer] = make([][]int, g.Width())

		for x := 0; x < g.Width(); x++ {
			s.slots[layer][x] = make([][]netlist.BlockID, g.Height())
			s.usage[layer][x] = make([]int, g.Height())

			for y := 0; y < g.Height(); y++ {
				capacity := g.TileAt(arch.TileLoc{X: x, Y: y, Layer: layer}).Capacity
				slots := make([]netlist.BlockID, capacity)
				for i := range slots {
					slots[i] = EmptyBlock
				}
				s.slots[layer][x][y] = slots
			}
		}
	}
}

func (s *State) indexMacros() {
	s.macroOf = make([]int, s.nl.NumBlocks())
	s.memberOffset = make([]arch.Offset, s.nl.NumBlocks())

	for i := range s.macroOf {
		s.macroOf[i] = -1
	}

	for i, m := range s.nl.Macros() {
		for _, member := range m.Members {
			s.macroOf[member.Block] = i
			s.memberOffset[member.Block] = member.Offset
		}
	}
}

// Grid returns the device.
func (s *State) Grid() *arch.Grid { return s.grid }

// Netlist returns the netlist.
func (s *State) Netlist() *netlist.Netlist { return s.nl }

// Location returns where a block is.
func (s *State) Location(b netlist.BlockID) arch.Loc {
	return s.locs[b]
}

// IsPlaced tells if a block has a location.
func (s *State) IsPlaced(b netlist.BlockID) bool {
	return s.locs[b] != Unplaced
}

// BlockAt returns the block in a slot, EmptyBlock for a free slot, or
// netlist.InvalidBlock when the slot does not exist.
func (s *State) BlockAt(l arch.Loc) netlist.BlockID {
	if !s.grid.InBounds(l.Tile()) {
		return netlist.InvalidBlock
	}

	slots := s.slots[l.Layer][l.X][l.Y]
	if l.SubTile < 0 || l.SubTile >= len(slots) {
		return netlist.InvalidBlock
	}

	return slots[l.SubTile]
}

// Usage returns the number of occupied slots of a cell.
func (s *State) Usage(t arch.TileLoc) int {
	return s.usage[t.Layer][t.X][t.Y]
}

// Capacity returns the number of slots of a cell.
func (s *State) Capacity(t arch.TileLoc) int {
	return len(s.slots[t.Layer][t.X][t.Y])
}

// SetBlockLoc moves a block in the block map only.
func (s *State) SetBlockLoc(b netlist.BlockID, l arch.Loc) {
	s.locs[b] = l
}

// SetGridBlock puts a block into a slot of the grid map, counting the slot as
// used if it was free.
func (s *State) SetGridBlock(l arch.Loc, b netlist.BlockID) {
	slots := s.slots[l.Layer][l.X][l.Y]
	if slots[l.SubTile] == EmptyBlock {
		s.usage[l.Layer][l.X][l.Y]++
	}

	slots[l.SubTile] = b
}

// ClearGridSlot frees a slot of the grid map.
func (s *State) ClearGridSlot(l arch.Loc) {
	slots := s.slots[l.Layer][l.X][l.Y]
	if slots[l.SubTile] != EmptyBlock {
		s.usage[l.Layer][l.X][l.Y]--
	}

	slots[l.SubTile] = EmptyBlock
}

// IsLegal tells if a block may sit at a location: in bounds, an existing
// slot of a compatible tile, and inside the block's floorplan region.
func (s *State) IsLegal(b netlist.BlockID, l arch.Loc) bool {
	blk := s.nl.Block(b)
	if !s.grid.IsLegal(l, blk.Type) {
		return false
	}

	return blk.Region == nil || blk.Region.Contains(l)
}

// MacroOf returns the macro holding a block.
func (s *State) MacroOf(b netlist.BlockID) (int, bool) {
	m := s.macroOf[b]
	return m, m >= 0
}

// Macro returns a macro.
func (s *State) Macro(i int) netlist.Macro {
	return s.nl.Macros()[i]
}

// MemberOffset returns the offset of a macro member from its head.
func (s *State) MemberOffset(b netlist.BlockID) arch.Offset {
	return s.memberOffset[b]
}

// PinTileLoc returns the cell a pin sits on, following the block location
// and the pin offset within its tile.
func (s *State) PinTileLoc(p netlist.PinID) arch.TileLoc {
	pin := s.nl.Pin(p)
	l := s.locs[pin.Block]
	t := l.Tile()

	dx, dy := s.grid.TileAt(t).PinOffset(pin.TilePin)
	t.X += dx
	t.Y += dy

	return t
}

// Place puts a block at a location in both maps.
func (s *State) Place(b netlist.BlockID, l arch.Loc) error {
	if !s.IsLegal(b, l) {
		return &PlaceError{Block: s.nl.Block(b).Name, Loc: l, Reason: "illegal"}
	}

	if occupant := s.BlockAt(l); occupant != EmptyBlock && occupant != b {
		return &PlaceError{
			Block:  s.nl.Block(b).Name,
			Loc:    l,
			Reason: "occupied by " + s.nl.Block(occupant).Name,
		}
	}

	if s.IsPlaced(b) {
		old := s.locs[b]
		if s.BlockAt(old) == b {
			s.ClearGridSlot(old)
		}
	}

	s.locs[b] = l
	s.SetGridBlock(l, b)

	return nil
}

// Snapshot copies the block map.
func (s *State) Snapshot() []arch.Loc {
	return append([]arch.Loc(nil), s.locs...)
}

// Restore replaces the block map with a snapshot and rebuilds the grid map.
func (s *State) Restore(locs []arch.Loc) {
	copy(s.locs, locs)
	s.RebuildGrid()
}

// RebuildGrid recomputes the grid map from the block map.
func (s *State) RebuildGrid() {
	for layer := range s.slots {
		for x := range s.slots[layer] {
			for y := range s.slots[layer][x] {
				for i := range s.slots[layer][x][y] {
					s.slots[layer][x][y][i] = EmptyBlock
				}
				s.usage[layer][x][y] = 0
			}
		}
	}

	for b, l := range s.locs {
		if l != Unplaced {
			s.SetGridBlock(l, netlist.BlockID(b))
		}
	}
}
