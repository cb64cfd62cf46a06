package move

import (
	"github.com/sarchlab/fplace/arch"
	"github.com/sarchlab/fplace/netlist"
	"github.com/sarchlab/fplace/placement"
)

// MaxChain bounds the number of blocks one swap may displace.
const MaxChain = 64

// CreateMove records the displacements needed to move block b to a target
// location. A single block swaps with the occupant of the target. A macro on
// either side of the swap moves rigidly and the blocks it covers fill the
// slots it vacates. The grid map must be current, so CreateMove runs before
// Apply.
func (ba *BlocksAffected) CreateMove(
	st *placement.State,
	b netlist.BlockID,
	to arch.Loc,
) CreateOutcome {
	from := st.Location(b)
	if from == to {
		return Abort
	}

	outcome := ba.findAffectedBlocks(st, b, to)
	if outcome != Invert {
		return outcome
	}

	// The target belongs to a macro: move that macro onto the source instead.
	occupant := st.BlockAt(to)
	ba.Clear()

	outcome = ba.findAffectedBlocks(st, occupant, from)
	if outcome == Invert {
		ba.Clear()
		return Abort
	}

	return outcome
}

func (ba *BlocksAffected) findAffectedBlocks(
	st *placement.State,
	b netlist.BlockID,
	to arch.Loc,
) CreateOutcome {
	shift := to.Sub(st.Location(b))

	if m, ok := st.MacroOf(b); ok {
		return ba.recordGroup(st, memberBlocks(st.Macro(m)), shift, m)
	}

	occupant := st.BlockAt(to)
	if occupant >= 0 {
		if _, ok := st.MacroOf(occupant); ok {
			return Invert
		}
	}

	return ba.recordGroup(st, []netlist.BlockID{b}, shift, -1)
}

func memberBlocks(m netlist.Macro) []netlist.BlockID {
	blocks := make([]netlist.BlockID, len(m.Members))
	for i, member := range m.Members {
		blocks[i] = member.Block
	}

	return blocks
}

// recordGroup moves a set of blocks by the same shift and sends every block
// they land on to one of the slots they leave, preferably the mirror slot.
func (ba *BlocksAffected) recordGroup(
	st *placement.State,
	movers []netlist.BlockID,
	shift arch.Offset,
	macro int,
) CreateOutcome {
	if len(movers) > MaxChain {
		return Abort
	}

	targets := make(map[arch.Loc]bool, len(movers))

	for _, b := range movers {
		from := st.Location(b)
		to := from.Add(shift)

		if !st.IsLegal(b, to) {
			return Abort
		}

		targets[to] = true
	}

	vacated := make([]arch.Loc, 0, len(movers))
	for _, b := range movers {
		from := st.Location(b)
		if !targets[from] {
			vacated = append(vacated, from)
		}
	}

	taken := make(map[arch.Loc]bool, len(vacated))

	for _, b := range movers {
		to := st.Location(b).Add(shift)

		occupant := st.BlockAt(to)
		if occupant < 0 || isMember(st, occupant, macro, movers) {
			continue
		}

		slot, ok := ba.vacatedSlotFor(st, occupant, to, shift, vacated, taken)
		if !ok {
			return Abort
		}

		taken[slot] = true

		if ba.RecordBlockMove(st, occupant, slot) != Valid {
			return Abort
		}
	}

	for _, b := range movers {
		if ba.RecordBlockMove(st, b, st.Location(b).Add(shift)) != Valid {
			return Abort
		}
	}

	if ba.NumMoved() > MaxChain {
		return Abort
	}

	return Valid
}

func isMember(
	st *placement.State,
	b netlist.BlockID,
	macro int,
	movers []netlist.BlockID,
) bool {
	if macro >= 0 {
		m, ok := st.MacroOf(b)
		return ok && m == macro
	}

	for _, mover := range movers {
		if mover == b {
			return true
		}
	}

	return false
}

func (ba *BlocksAffected) vacatedSlotFor(
	st *placement.State,
	occupant netlist.BlockID,
	at arch.Loc,
	shift arch.Offset,
	vacated []arch.Loc,
	taken map[arch.Loc]bool,
) (arch.Loc, bool) {
	if st.Netlist().Block(occupant).Fixed {
		return arch.Loc{}, false
	}

	if _, ok := st.MacroOf(occupant); ok {
		return arch.Loc{}, false
	}

	mirror := at.Add(shift.Neg())
	candidates := append([]arch.Loc{mirror}, vacated...)

	for _, slot := range candidates {
		if taken[slot] || !contains(vacated, slot) {
			continue
		}

		if st.IsLegal(occupant, slot) {
			return slot, true
		}
	}

	return arch.Loc{}, false
}

func contains(locs []arch.Loc, l arch.Loc) bool {
	for _, x := range locs {
		if x == l {
			return true
		}
	}

	return false
}
