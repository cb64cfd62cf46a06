package placement

import (
	"sort"

	"github.com/pkg/errors"

	"github.com/sarchlab/fplace/arch"
	"github.com/sarchlab/fplace/netlist"
	"github.com/sarchlab/fplace/rng"
)

const randomPlaceAttempts = 32

// InitialPlace places every block that is not placed yet on a random free
// legal slot. Macros go first, largest first, so they still find room for
// all their members.
func (s *State) InitialPlace(r *rng.Stream) error {
	macros := make([]int, len(s.nl.Macros()))
	for i := range macros {
		macros[i] = i
	}

	sort.SliceStable(macros, func(i, j int) bool {
		return len(s.Macro(macros[i]).Members) > len(s.Macro(macros[j]).Members)
	})

	for _, m := range macros {
		if err := s.placeMacro(s.Macro(m), r); err != nil {
			return err
		}
	}

	for b := 0; b < s.nl.NumBlocks(); b++ {
		id := netlist.BlockID(b)
		if s.IsPlaced(id) {
			continue
		}

		if err := s.placeSingle(id, r); err != nil {
			return err
		}
	}

	return nil
}

func (s *State) placeSingle(b netlist.BlockID, r *rng.Stream) error {
	candidates := s.grid.LegalLocs(s.nl.Block(b).Type)

	for i := 0; i < randomPlaceAttempts && len(candidates) > 0; i++ {
		l := candidates[r.Intn(len(candidates))]
		if s.IsLegal(b, l) && s.BlockAt(l) == EmptyBlock {
			return s.Place(b, l)
		}
	}

	for _, l := range candidates {
		if s.IsLegal(b, l) && s.BlockAt(l) == EmptyBlock {
			return s.Place(b, l)
		}
	}

	return errors.Errorf("no free legal location for block %q",
		s.nl.Block(b).Name)
}

func (s *State) placeMacro(m netlist.Macro, r *rng.Stream) error {
	head := m.Head()
	if s.IsPlaced(head) {
		return nil
	}

	candidates := s.grid.LegalLocs(s.nl.Block(head).Type)

	for i := 0; i < randomPlaceAttempts && len(candidates) > 0; i++ {
		l := candidates[r.Intn(len(candidates))]
		if s.macroFits(m, l) {
			return s.placeMacroAt(m, l)
		}
	}

	for _, l := range candidates {
		if s.macroFits(m, l) {
			return s.placeMacroAt(m, l)
		}
	}

	return errors.Errorf("no free legal location for macro headed by %q",
		s.nl.Block(head).Name)
}

func (s *State) macroFits(m netlist.Macro, head arch.Loc) bool {
	for _, member := range m.Members {
		l := head.Add(member.Offset)
		if !s.IsLegal(member.Block, l) || s.BlockAt(l) != EmptyBlock {
			return false
		}
	}

	return true
}

func (s *State) placeMacroAt(m netlist.Macro, head arch.Loc) error {
	for _, member := range m.Members {
		if err := s.Place(member.Block, head.Add(member.Offset)); err != nil {
			return err
		}
	}

	return nil
}
