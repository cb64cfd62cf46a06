package stats

import "github.com/sarchlab/fplace/move"

// MoveTypeStat counts proposed, accepted and rejected swaps per logical
// block type and move type.
type MoveTypeStat struct {
	numMoveTypes int
	proposed     []int
	accepted     []int
	rejected     []int
}

// NewMoveTypeStat creates counters for the given numbers of block types and
// move types.
func NewMoveTypeStat(numBlockTypes, numMoveTypes int) *MoveTypeStat {
	n := numBlockTypes * numMoveTypes

	return &MoveTypeStat{
		numMoveTypes: numMoveTypes,
		proposed:     make([]int, n),
		accepted:     make([]int, n),
		rejected:     make([]int, n),
	}
}

func (s *MoveTypeStat) index(blockType int, t move.Type) int {
	return blockType*s.numMoveTypes + int(t)
}

// NumMoveTypes returns the number of move types counted.
func (s *MoveTypeStat) NumMoveTypes() int {
	return s.numMoveTypes
}

// Record counts a swap of a block type and move type with its result.
func (s *MoveTypeStat) Record(blockType int, t move.Type, r move.Result) {
	if blockType < 0 || int(t) >= s.numMoveTypes {
		return
	}

	i := s.index(blockType, t)
	s.proposed[i]++

	switch r {
	case move.Accepted:
		s.accepted[i]++
	case move.Rejected:
		s.rejected[i]++
	}
}

// Proposed returns the number of swaps proposed.
func (s *MoveTypeStat) Proposed(blockType int, t move.Type) int {
	return s.proposed[s.index(blockType, t)]
}

// Accepted returns the number of swaps accepted.
func (s *MoveTypeStat) Accepted(blockType int, t move.Type) int {
	return s.accepted[s.index(blockType, t)]
}

// Rejected returns the number of swaps rejected.
func (s *MoveTypeStat) Rejected(blockType int, t move.Type) int {
	return s.rejected[s.index(blockType, t)]
}

// Aborted returns the number of swaps that were proposed but neither
// accepted nor rejected.
func (s *MoveTypeStat) Aborted(blockType int, t move.Type) int {
	i := s.index(blockType, t)
	return s.proposed[i] - s.accepted[i] - s.rejected[i]
}

// Total returns the number of swaps proposed over all types.
func (s *MoveTypeStat) Total() int {
	total := 0
	for _, n := range s.proposed {
		total += n
	}

	return total
}

// SwapStats counts swap results.
type SwapStats struct {
	Accepted int
	Rejected int
	Aborted  int
}

// Record counts one swap.
func (s *SwapStats) Record(r move.Result) {
	switch r {
	case move.Accepted:
		s.Accepted++
	case move.Rejected:
		s.Rejected++
	case move.Aborted:
		s.Aborted++
	}
}

// Total returns the number of swaps.
func (s SwapStats) Total() int {
	return s.Accepted + s.Rejected + s.Aborted
}

// Add sums two counters.
func (s SwapStats) Add(o SwapStats) SwapStats {
	return SwapStats{
		Accepted: s.Accepted + o.Accepted,
		Rejected: s.Rejected + o.Rejected,
		Aborted:  s.Aborted + o.Aborted,
	}
}
