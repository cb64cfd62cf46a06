package move

import (
	"github.com/sarchlab/fplace/arch"
	"github.com/sarchlab/fplace/netlist"
	"github.com/sarchlab/fplace/placement"
)

// MovedBlock is one displacement of a swap.
type MovedBlock struct {
	Block  netlist.BlockID
	OldLoc arch.Loc
	NewLoc arch.Loc
}

// BlocksAffected is the move transaction of one swap: the blocks it
// displaces and the sink pins whose connection delay it changes.
//
// Between Apply and Commit or Revert, only the block map of the placement is
// current; the grid map still shows the pre-move occupancy.
type BlocksAffected struct {
	Moved        []MovedBlock
	AffectedPins []netlist.PinID

	movedFrom map[arch.Loc]bool
	movedTo   map[arch.Loc]bool
	blocks    map[netlist.BlockID]bool
}

// NewBlocksAffected creates an empty transaction.
func NewBlocksAffected() *BlocksAffected {
	return &BlocksAffected{
		movedFrom: make(map[arch.Loc]bool),
		movedTo:   make(map[arch.Loc]bool),
		blocks:    make(map[netlist.BlockID]bool),
	}
}

// NumMoved returns the number of displaced blocks.
func (ba *BlocksAffected) NumMoved() int {
	return len(ba.Moved)
}

// IsMoved tells if a block is displaced by the transaction.
func (ba *BlocksAffected) IsMoved(b netlist.BlockID) bool {
	return ba.blocks[b]
}

// RecordBlockMove adds a displacement. A block moved twice, two blocks
// moving to one slot, two blocks leaving one slot or a fixed block abort the
// transaction.
func (ba *BlocksAffected) RecordBlockMove(
	st *placement.State,
	b netlist.BlockID,
	to arch.Loc,
) CreateOutcome {
	if st.Netlist().Block(b).Fixed {
		return Abort
	}

	from := st.Location(b)
	if ba.blocks[b] || ba.movedTo[to] || ba.movedFrom[from] {
		return Abort
	}

	ba.blocks[b] = true
	ba.movedTo[to] = true
	ba.movedFrom[from] = true
	ba.Moved = append(ba.Moved, MovedBlock{Block: b, OldLoc: from, NewLoc: to})

	return Valid
}

// Apply moves every displaced block in the block map. The grid map is left
// untouched.
func (ba *BlocksAffected) Apply(st *placement.State) {
	for _, m := range ba.Moved {
		st.SetBlockLoc(m.Block, m.NewLoc)
	}
}

// Commit updates the grid map to match the applied displacements.
func (ba *BlocksAffected) Commit(st *placement.State) {
	for _, m := range ba.Moved {
		if st.BlockAt(m.OldLoc) == m.Block {
			st.ClearGridSlot(m.OldLoc)
		}
	}

	for _, m := range ba.Moved {
		st.SetGridBlock(m.NewLoc, m.Block)
	}
}

// Revert puts every displaced block back in the block map.
func (ba *BlocksAffected) Revert(st *placement.State) {
	for _, m := range ba.Moved {
		st.SetBlockLoc(m.Block, m.OldLoc)
	}
}

// Clear empties the transaction for the next swap.
func (ba *BlocksAffected) Clear() {
	ba.Moved = ba.Moved[:0]
	ba.AffectedPins = ba.AffectedPins[:0]

	clear(ba.movedFrom)
	clear(ba.movedTo)
	clear(ba.blocks)
}

// IsLegal tells if every displaced block lands on a legal slot, floorplan
// regions included.
func (ba *BlocksAffected) IsLegal(st *placement.State) bool {
	for _, m := range ba.Moved {
		if !st.IsLegal(m.Block, m.NewLoc) {
			return false
		}
	}

	return true
}
