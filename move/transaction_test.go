package move_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/fplace/arch"
	"github.com/sarchlab/fplace/move"
	"github.com/sarchlab/fplace/netlist"
	"github.com/sarchlab/fplace/placement"
)

func at(x, y int) arch.Loc {
	return arch.Loc{X: x, Y: y}
}

var _ = Describe("BlocksAffected", func() {
	var (
		state           *placement.State
		ba              *move.BlocksAffected
		s1, s2, fixed   netlist.BlockID
		fenced          netlist.BlockID
		head, mid, tail netlist.BlockID
	)

	BeforeEach(func() {
		grid, err := arch.MakeGridBuilder().
			WithSize(7, 7).
			WithTileType(arch.TileTypeSpec{
				Name: "clb", Capacity: 1, Compatible: []string{"clb"},
			}).
			WithTileType(arch.TileTypeSpec{
				Name: "io", Capacity: 1, Compatible: []string{"io"},
			}).
			WithFill("clb").
			WithPerimeter("io").
			Build()
		Expect(err).NotTo(HaveOccurred())

		clb := grid.LogicalTypeByName("clb")
		nb := netlist.NewBuilder()
		s1 = nb.MustAddBlock("s1", clb)
		s2 = nb.MustAddBlock("s2", clb)
		fixed = nb.MustAddBlock("fixed", clb)
		nb.SetFixed(fixed)
		fenced = nb.MustAddBlock("fenced", clb)
		nb.SetRegion(fenced, arch.Region{
			XMin: 4, YMin: 4, XMax: 5, YMax: 5, Layer: -1, SubTile: -1,
		})
		head = nb.MustAddBlock("head", clb)
		mid = nb.MustAddBlock("mid", clb)
		tail = nb.MustAddBlock("tail", clb)
		Expect(nb.AddMacro(
			netlist.MacroMember{Block: head},
			netlist.MacroMember{Block: mid, Offset: arch.Offset{Y: 1}},
			netlist.MacroMember{Block: tail, Offset: arch.Offset{Y: 2}},
		)).To(Succeed())
		nb.MustAddNet("n", netlist.Terminal{Block: s1},
			netlist.Terminal{Block: s2})

		nl, err := nb.Build()
		Expect(err).NotTo(HaveOccurred())

		state = placement.NewState(grid, nl)
		Expect(state.Place(head, at(1, 1))).To(Succeed())
		Expect(state.Place(mid, at(1, 2))).To(Succeed())
		Expect(state.Place(tail, at(1, 3))).To(Succeed())
		Expect(state.Place(s1, at(2, 2))).To(Succeed())
		Expect(state.Place(s2, at(3, 3))).To(Succeed())
		Expect(state.Place(fixed, at(5, 1))).To(Succeed())
		Expect(state.Place(fenced, at(4, 4))).To(Succeed())

		ba = move.NewBlocksAffected()
	})

	expectGridInSync := func() {
		for b := 0; b < state.Netlist().NumBlocks(); b++ {
			id := netlist.BlockID(b)
			Expect(state.BlockAt(state.Location(id))).To(Equal(id))
			Expect(state.Usage(state.Location(id).Tile())).To(Equal(1))
		}
	}

	It("should swap a block with the occupant of its target", func() {
		Expect(ba.CreateMove(state, s1, at(3, 3))).To(Equal(move.Valid))

		Expect(ba.Moved).To(ConsistOf(
			move.MovedBlock{Block: s1, OldLoc: at(2, 2), NewLoc: at(3, 3)},
			move.MovedBlock{Block: s2, OldLoc: at(3, 3), NewLoc: at(2, 2)},
		))
	})

	It("should move a block to an empty slot alone", func() {
		Expect(ba.CreateMove(state, s1, at(4, 2))).To(Equal(move.Valid))
		Expect(ba.NumMoved()).To(Equal(1))
	})

	It("should leave the grid map alone until commit", func() {
		Expect(ba.CreateMove(state, s1, at(4, 2))).To(Equal(move.Valid))
		ba.Apply(state)

		Expect(state.Location(s1)).To(Equal(at(4, 2)))
		Expect(state.BlockAt(at(2, 2))).To(Equal(s1))
		Expect(state.BlockAt(at(4, 2))).To(Equal(placement.EmptyBlock))

		ba.Commit(state)

		Expect(state.BlockAt(at(2, 2))).To(Equal(placement.EmptyBlock))
		Expect(state.Usage(at(2, 2).Tile())).To(Equal(0))
		expectGridInSync()
	})

	It("should restore the block map on revert", func() {
		before := state.Snapshot()
		Expect(ba.CreateMove(state, s1, at(3, 3))).To(Equal(move.Valid))

		ba.Apply(state)
		ba.Revert(state)
		ba.Clear()

		Expect(state.Snapshot()).To(Equal(before))
		Expect(ba.NumMoved()).To(Equal(0))
		Expect(ba.IsMoved(s1)).To(BeFalse())
		expectGridInSync()
	})

	It("should abort when a macro member would leave the grid", func() {
		before := state.Snapshot()

		Expect(ba.CreateMove(state, head, at(1, 5))).To(Equal(move.Abort))

		Expect(ba.NumMoved()).To(Equal(0))
		Expect(state.Snapshot()).To(Equal(before))
		expectGridInSync()
	})

	It("should move a macro rigidly and push covered blocks out", func() {
		Expect(ba.CreateMove(state, head, at(2, 1))).To(Equal(move.Valid))
		Expect(ba.NumMoved()).To(Equal(4))

		ba.Apply(state)
		ba.Commit(state)

		Expect(state.Location(head)).To(Equal(at(2, 1)))
		Expect(state.Location(mid)).To(Equal(at(2, 2)))
		Expect(state.Location(tail)).To(Equal(at(2, 3)))
		Expect(state.Location(s1)).To(Equal(at(1, 2)))
		expectGridInSync()
	})

	It("should fill a vacated slot when the mirror slot stays covered", func() {
		Expect(state.Place(s2, at(1, 4))).To(Succeed())

		Expect(ba.CreateMove(state, head, at(1, 2))).To(Equal(move.Valid))
		ba.Apply(state)
		ba.Commit(state)

		Expect(state.Location(tail)).To(Equal(at(1, 4)))
		Expect(state.Location(s2)).To(Equal(at(1, 1)))
		expectGridInSync()
	})

	It("should move the macro instead when a single block targets it", func() {
		Expect(ba.CreateMove(state, s2, at(1, 2))).To(Equal(move.Valid))
		ba.Apply(state)
		ba.Commit(state)

		Expect(state.Location(mid)).To(Equal(at(3, 3)))
		Expect(state.Location(head)).To(Equal(at(3, 2)))
		Expect(state.Location(tail)).To(Equal(at(3, 4)))
		Expect(state.Location(s2)).To(Equal(at(1, 2)))
		expectGridInSync()
	})

	It("should abort when a fixed block is in the way", func() {
		Expect(ba.CreateMove(state, s1, at(5, 1))).To(Equal(move.Abort))
		Expect(ba.CreateMove(state, fixed, at(5, 2))).To(Equal(move.Abort))
	})

	It("should abort when a block would leave its region", func() {
		Expect(ba.CreateMove(state, fenced, at(3, 4))).To(Equal(move.Abort))
		Expect(ba.CreateMove(state, fenced, at(5, 5))).To(Equal(move.Valid))
	})

	It("should refuse the same block or target twice", func() {
		Expect(ba.RecordBlockMove(state, s1, at(4, 2))).To(Equal(move.Valid))
		Expect(ba.RecordBlockMove(state, s1, at(4, 3))).To(Equal(move.Abort))
		Expect(ba.RecordBlockMove(state, s2, at(4, 2))).To(Equal(move.Abort))
	})

	It("should abort a move onto the current location", func() {
		Expect(ba.CreateMove(state, s1, at(2, 2))).To(Equal(move.Abort))
	})

	It("should tell if every target is legal", func() {
		Expect(ba.RecordBlockMove(state, s1, at(0, 2))).To(Equal(move.Valid))
		Expect(ba.IsLegal(state)).To(BeFalse())
	})
})

var _ = Describe("Type", func() {
	It("should parse option names", func() {
		t, err := move.ParseType("weighted_centroid")
		Expect(err).NotTo(HaveOccurred())
		Expect(t).To(Equal(move.WeightedCentroid))
		Expect(t.String()).To(Equal("W. Centroid"))

		_, err = move.ParseType("teleport")
		Expect(err).To(HaveOccurred())
	})
})
