package placement_test

import (
	"bytes"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/fplace/arch"
	"github.com/sarchlab/fplace/netlist"
	"github.com/sarchlab/fplace/placement"
	"github.com/sarchlab/fplace/rng"
)

func buildGrid() *arch.Grid {
	g, err := arch.MakeGridBuilder().
		WithSize(5, 6).
		WithTileType(arch.TileTypeSpec{
			Name: "clb", Capacity: 1, Compatible: []string{"clb"},
		}).
		WithTileType(arch.TileTypeSpec{
			Name: "io", Capacity: 2, Compatible: []string{"io"},
		}).
		WithFill("clb").
		WithPerimeter("io").
		Build()
	Expect(err).NotTo(HaveOccurred())

	return g
}

var _ = Describe("State", func() {
	var (
		grid  *arch.Grid
		nl    *netlist.Netlist
		state *placement.State
		a, b  netlist.BlockID
		pad   netlist.BlockID
	)

	BeforeEach(func() {
		grid = buildGrid()
		clb := grid.LogicalTypeByName("clb")
		io := grid.LogicalTypeByName("io")

		nb := netlist.NewBuilder()
		a = nb.MustAddBlock("a", clb)
		b = nb.MustAddBlock("b", clb)
		pad = nb.MustAddBlock("pad", io)
		c := nb.MustAddBlock("c", clb)
		Expect(nb.AddMacro(
			netlist.MacroMember{Block: b},
			netlist.MacroMember{Block: c, Offset: arch.Offset{Y: 1}},
		)).To(Succeed())
		nb.MustAddNet("n", netlist.Terminal{Block: pad},
			netlist.Terminal{Block: a})

		var err error
		nl, err = nb.Build()
		Expect(err).NotTo(HaveOccurred())

		state = placement.NewState(grid, nl)
	})

	It("should keep both maps in sync when placing", func() {
		l := arch.Loc{X: 1, Y: 1}
		Expect(state.Place(a, l)).To(Succeed())

		Expect(state.Location(a)).To(Equal(l))
		Expect(state.BlockAt(l)).To(Equal(a))
		Expect(state.Usage(l.Tile())).To(Equal(1))
		Expect(state.BlockAt(arch.Loc{X: 1, Y: 2})).To(Equal(placement.EmptyBlock))
		Expect(state.BlockAt(arch.Loc{X: 1, Y: 1, SubTile: 1})).
			To(Equal(netlist.InvalidBlock))
	})

	It("should refuse illegal and occupied locations", func() {
		Expect(state.Place(a, arch.Loc{X: 0, Y: 1})).To(HaveOccurred())
		Expect(state.Place(a, arch.Loc{X: 1, Y: 1})).To(Succeed())

		err := state.Place(b, arch.Loc{X: 1, Y: 1})
		Expect(err).To(MatchError(ContainSubstring("occupied")))
	})

	It("should honour floorplan regions", func() {
		nl.Block(a).Region = &arch.Region{
			XMin: 2, XMax: 3, YMin: 1, YMax: 4, Layer: -1, SubTile: -1,
		}
		Expect(state.IsLegal(a, arch.Loc{X: 1, Y: 1})).To(BeFalse())
		Expect(state.IsLegal(a, arch.Loc{X: 2, Y: 1})).To(BeTrue())
	})

	It("should place everything legally and keep macros rigid", func() {
		Expect(state.InitialPlace(rng.New(3))).To(Succeed())

		for i := 0; i < nl.NumBlocks(); i++ {
			id := netlist.BlockID(i)
			Expect(state.IsLegal(id, state.Location(id))).To(BeTrue())
			Expect(state.BlockAt(state.Location(id))).To(Equal(id))
		}

		m, ok := state.MacroOf(b)
		Expect(ok).To(BeTrue())
		head := state.Location(state.Macro(m).Head())
		for _, member := range state.Macro(m).Members {
			Expect(state.Location(member.Block)).To(Equal(head.Add(member.Offset)))
		}
	})

	It("should place pins with their tile offset", func() {
		Expect(state.Place(pad, arch.Loc{X: 0, Y: 3, SubTile: 1})).To(Succeed())
		Expect(state.PinTileLoc(nl.NetDriverPin(0))).
			To(Equal(arch.TileLoc{X: 0, Y: 3}))
	})

	It("should restore snapshots and fingerprint placements", func() {
		Expect(state.InitialPlace(rng.New(1))).To(Succeed())
		snap := state.Snapshot()
		digest := state.Digest()

		old := state.Location(a)
		state.ClearGridSlot(old)
		state.SetBlockLoc(a, arch.Loc{X: 3, Y: 4})
		Expect(state.Digest()).NotTo(Equal(digest))

		state.Restore(snap)
		Expect(state.Location(a)).To(Equal(old))
		Expect(state.BlockAt(old)).To(Equal(a))
		Expect(state.Digest()).To(Equal(digest))
	})

	It("should write the .place format", func() {
		Expect(state.InitialPlace(rng.New(1))).To(Succeed())

		var buf bytes.Buffer
		Expect(state.WritePlace(&buf, "demo.net")).To(Succeed())
		Expect(buf.String()).To(ContainSubstring("Netlist_File: demo.net"))
		Expect(buf.String()).To(ContainSubstring("Array size: 5 x 6 logic blocks"))
		Expect(buf.String()).To(ContainSubstring("pad\t"))
	})
})
