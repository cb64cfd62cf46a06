package noc_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/fplace/arch"
	"github.com/sarchlab/fplace/cost"
	"github.com/sarchlab/fplace/move"
	"github.com/sarchlab/fplace/netlist"
	"github.com/sarchlab/fplace/noc"
	"github.com/sarchlab/fplace/placement"
)

func at(x, y int) arch.Loc {
	return arch.Loc{X: x, Y: y}
}

var _ = Describe("RouteXY", func() {
	It("should go along x then y", func() {
		links := noc.RouteXY(arch.TileLoc{X: 1, Y: 1}, arch.TileLoc{X: 3, Y: 0})

		Expect(links).To(Equal([]noc.Link{
			{From: arch.TileLoc{X: 1, Y: 1}, To: arch.TileLoc{X: 2, Y: 1}},
			{From: arch.TileLoc{X: 2, Y: 1}, To: arch.TileLoc{X: 3, Y: 1}},
			{From: arch.TileLoc{X: 3, Y: 1}, To: arch.TileLoc{X: 3, Y: 0}},
		}))
		Expect(noc.RouteXY(arch.TileLoc{}, arch.TileLoc{})).To(BeEmpty())
	})
})

var _ = Describe("Model", func() {
	var (
		state      *placement.State
		model      *noc.Model
		r0, r1, r2 netlist.BlockID
		ba         *move.BlocksAffected
	)

	BeforeEach(func() {
		grid, err := arch.MakeGridBuilder().
			WithSize(7, 7).
			WithTileType(arch.TileTypeSpec{
				Name: "router", Capacity: 1, Compatible: []string{"router"},
			}).
			WithFill("router").
			Build()
		Expect(err).NotTo(HaveOccurred())

		rt := grid.LogicalTypeByName("router")
		nb := netlist.NewBuilder()
		r0 = nb.MustAddBlock("r0", rt)
		r1 = nb.MustAddBlock("r1", rt)
		r2 = nb.MustAddBlock("r2", rt)
		nl, err := nb.Build()
		Expect(err).NotTo(HaveOccurred())

		state = placement.NewState(grid, nl)
		Expect(state.Place(r0, at(1, 1))).To(Succeed())
		Expect(state.Place(r1, at(3, 1))).To(Succeed())
		Expect(state.Place(r2, at(2, 1))).To(Succeed())

		model = noc.NewModel(state, []noc.Flow{
			{Source: r0, Sink: r1, Bandwidth: 2, Priority: 1},
			{Source: r2, Sink: r1, Bandwidth: 3, Priority: 2, LatencyConstraint: 1.5},
		}, noc.Config{LinkBandwidth: 4, LinkLatency: 1, RouterLatency: 0.5})

		ba = move.NewBlocksAffected()
	})

	It("should price flows and congestion", func() {
		t := model.Route()

		// flow 1 shares the (2,1)->(3,1) link with flow 0
		Expect(t.AggregateBandwidth).To(Equal(2*2 + 3*1*2.0))
		Expect(t.Latency).To(Equal(3.5 + 2*2.0))
		Expect(t.LatencyOverrun).To(Equal((2 - 1.5) * 2.0))
		Expect(t.Congestion).To(Equal(0.25))
		Expect(model.RouterBlocks()).To(Equal([]netlist.BlockID{r0, r1, r2}))
	})

	It("should match a fresh computation after a committed move", func() {
		before := model.Route()

		Expect(ba.CreateMove(state, r1, at(1, 2))).To(Equal(move.Valid))
		ba.Apply(state)
		delta := model.Propose(ba)
		ba.Commit(state)
		model.Commit()

		after := model.Terms()
		Expect(after).To(Equal(model.CheckTerms()))
		Expect(after.AggregateBandwidth - before.AggregateBandwidth).
			To(BeNumerically("~", delta.AggregateBandwidth, 1e-9))
		Expect(after.Congestion - before.Congestion).
			To(BeNumerically("~", delta.Congestion, 1e-9))
		Expect(after.Congestion).To(Equal(0.25))
		Expect(model.LinkUsage(noc.Link{
			From: arch.TileLoc{X: 2, Y: 1}, To: arch.TileLoc{X: 3, Y: 1},
		})).To(Equal(0.0))
	})

	It("should keep committed routes on revert", func() {
		before := model.Route()
		route := model.RouteOf(1)

		Expect(ba.CreateMove(state, r2, at(5, 5))).To(Equal(move.Valid))
		ba.Apply(state)
		Expect(model.Propose(ba)).NotTo(Equal(cost.NoCTerms{}))
		ba.Revert(state)
		model.Revert()

		Expect(model.Terms()).To(Equal(before))
		Expect(model.RouteOf(1)).To(Equal(route))
		Expect(model.CheckTerms()).To(Equal(before))
	})

	It("should sum congestion the same way on every call", func() {
		model = noc.NewModel(state, []noc.Flow{
			{Source: r0, Sink: r1, Bandwidth: 0.1},
			{Source: r1, Sink: r0, Bandwidth: 0.7},
			{Source: r2, Sink: r1, Bandwidth: 1.3},
			{Source: r1, Sink: r2, Bandwidth: 0.9},
			{Source: r2, Sink: r0, Bandwidth: 0.3},
			{Source: r0, Sink: r2, Bandwidth: 1.1},
		}, noc.Config{LinkBandwidth: 0.3, LinkLatency: 1, RouterLatency: 0.5})

		first := model.Route()
		Expect(first.Congestion).To(BeNumerically(">", 0))

		for i := 0; i < 50; i++ {
			Expect(model.Terms()).To(Equal(first))
			Expect(model.CheckTerms()).To(Equal(first))
		}

		Expect(ba.CreateMove(state, r2, at(2, 3))).To(Equal(move.Valid))
		ba.Apply(state)
		delta := model.Propose(ba)
		ba.Revert(state)
		model.Revert()

		for i := 0; i < 20; i++ {
			ba.Clear()
			Expect(ba.CreateMove(state, r2, at(2, 3))).To(Equal(move.Valid))
			ba.Apply(state)
			Expect(model.Propose(ba)).To(Equal(delta))
			ba.Revert(state)
			model.Revert()
		}
	})
})
