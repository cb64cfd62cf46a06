package cost_test

import (
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/fplace/arch"
	"github.com/sarchlab/fplace/bbox"
	"github.com/sarchlab/fplace/cost"
	"github.com/sarchlab/fplace/netlist"
	"github.com/sarchlab/fplace/placement"
	"github.com/sarchlab/fplace/synth"
)

var _ = Describe("Crossing count", func() {
	It("should read the table", func() {
		Expect(cost.CrossingCount(1)).To(Equal(1.0))
		Expect(cost.CrossingCount(4)).To(Equal(1.0828))
		Expect(cost.CrossingCount(50)).To(Equal(2.7933))
	})

	It("should extrapolate large nets", func() {
		Expect(cost.CrossingCount(60)).To(BeNumerically("~", 2.7933+0.2616, 1e-12))
	})
})

var _ = Describe("Channel factors", func() {
	It("should average channel widths over the span", func() {
		g, err := arch.MakeGridBuilder().
			WithSize(4, 3).
			WithTileType(arch.TileTypeSpec{Name: "clb", Capacity: 1}).
			WithFill("clb").
			WithChannelWidths([]int{2, 4, 6}, []int{1, 1, 3, 3}).
			Build()
		Expect(err).NotTo(HaveOccurred())

		f := cost.NewChanFactors(g, 1)
		Expect(f.X[0][0]).To(BeNumerically("~", 1.0/2))
		Expect(f.X[2][1]).To(BeNumerically("~", 2.0/10))
		Expect(f.X[2][0]).To(BeNumerically("~", 3.0/12))
		Expect(f.Y[3][2]).To(BeNumerically("~", 2.0/6))
	})

	It("should raise factors to the cost exponent", func() {
		g, err := arch.MakeGridBuilder().
			WithSize(3, 3).
			WithTileType(arch.TileTypeSpec{Name: "clb", Capacity: 1}).
			WithChannelWidth(4).
			Build()
		Expect(err).NotTo(HaveOccurred())

		f := cost.NewChanFactors(g, 2)
		Expect(f.X[1][0]).To(BeNumerically("~", math.Pow(2.0/8, 2)))
	})

	It("should clamp zero width spans to one track", func() {
		g, err := arch.MakeGridBuilder().
			WithSize(3, 3).
			WithTileType(arch.TileTypeSpec{Name: "clb", Capacity: 1}).
			WithChannelWidth(0).
			Build()
		Expect(err).NotTo(HaveOccurred())

		f := cost.NewChanFactors(g, 1)
		Expect(f.X[1][0]).To(Equal(2.0))
		Expect(math.IsInf(f.Y[2][2], 0)).To(BeFalse())
	})
})

var _ = Describe("Wirelength", func() {
	It("should cost a two pin net on adjacent cells", func() {
		g, err := synth.Device(synth.DeviceConfig{Width: 5, Height: 5, ChanWidth: 2})
		Expect(err).NotTo(HaveOccurred())

		clb := g.LogicalTypeByName(synth.CLB)
		nb := netlist.NewBuilder()
		a := nb.MustAddBlock("a", clb)
		b := nb.MustAddBlock("b", clb)
		nb.MustAddNet("n", netlist.Terminal{Block: a}, netlist.Terminal{Block: b})
		nl, err := nb.Build()
		Expect(err).NotTo(HaveOccurred())

		st := placement.NewState(g, nl)
		Expect(st.Place(a, arch.Loc{X: 1, Y: 1})).To(Succeed())
		Expect(st.Place(b, arch.Loc{X: 2, Y: 1})).To(Succeed())

		f := cost.NewChanFactors(g, 1)
		wl := cost.NewWirelength(nl, f, bbox.NewCache(st, true))

		expected := (2-1+1)*1.0*f.X[1][0] + (1-1+1)*1.0*f.Y[2][0]
		Expect(wl.CompBBCost(bbox.Normal)).To(BeNumerically("~", expected, 1e-12))
		Expect(wl.Recompute()).To(BeNumerically("~", expected, 1e-12))
		Expect(wl.Estimate()).To(BeNumerically("~", 3.0, 1e-12))
	})

	It("should skip layers without sinks", func() {
		f := &cost.ChanFactors{
			X: [][]float64{{1, 1}, {1, 1, 1}, {1, 1, 1, 1}},
			Y: [][]float64{{1, 1}, {1, 1, 1}, {1, 1, 1, 1}},
		}
		boxes := []bbox.Box{
			{XMin: 1, XMax: 2, YMin: 1, YMax: 1},
			{XMin: 1, XMax: 1, YMin: 1, YMax: 2},
		}

		Expect(f.NetLayerCost(boxes, []int{1, 0})).To(Equal(3.0))
		Expect(f.NetLayerCost(boxes, []int{1, 1})).To(Equal(6.0))
	})
})

var _ = Describe("NetCosts", func() {
	It("should mark a net only once per swap", func() {
		nc := cost.NewNetCosts(2)
		Expect(nc.Mark(1)).To(BeTrue())
		Expect(nc.Mark(1)).To(BeFalse())

		nc.Proposed[1] = 4
		nc.Commit(1)
		Expect(nc.Committed[1]).To(Equal(4.0))
		Expect(nc.Proposed[1]).To(Equal(-1.0))

		Expect(nc.Mark(1)).To(BeTrue())
		nc.Reset(1)
		Expect(nc.Proposed[1]).To(Equal(-1.0))
		Expect(nc.Committed[1]).To(Equal(4.0))
	})
})

var _ = Describe("Model", func() {
	It("should normalize the bounding box term", func() {
		m := cost.Model{Algorithm: cost.BoundingBox}
		c := &cost.Costs{BBCost: 4}
		m.UpdateNormFactors(c)

		Expect(c.BBNorm).To(Equal(0.25))
		Expect(c.Cost).To(Equal(1.0))
		Expect(m.Delta(c, -2, 100)).To(Equal(-0.5))
	})

	It("should trade wirelength against timing", func() {
		m := cost.Model{Algorithm: cost.CriticalityTiming, Tradeoff: 0.5}
		c := &cost.Costs{BBCost: 4, TimingCost: 2}
		m.UpdateNormFactors(c)

		Expect(c.TimingNorm).To(Equal(0.5))
		Expect(c.Cost).To(Equal(1.0))
		Expect(m.Delta(c, 4, -2)).To(Equal(0.5*1 + 0.5*-1))
	})

	It("should cap the timing norm", func() {
		m := cost.Model{Algorithm: cost.CriticalityTiming}
		c := &cost.Costs{BBCost: 1, TimingCost: 0}
		m.UpdateNormFactors(c)
		Expect(c.TimingNorm).To(Equal(cost.MaxInvTimingCost))
	})

	It("should add the weighted NoC terms", func() {
		m := cost.Model{
			Algorithm:  cost.BoundingBox,
			NoCEnabled: true,
			NoCWeights: cost.NoCWeights{
				Placement: 2, AggregateBandwidth: 1, Latency: 1,
				LatencyConstraints: 1, Congestion: 1,
			},
		}
		c := &cost.Costs{
			BBCost: 1,
			NoC: cost.NoCTerms{
				AggregateBandwidth: 0.5, Latency: 2, LatencyOverrun: 4, Congestion: 0,
			},
		}
		m.UpdateNormFactors(c)

		Expect(c.NoCNorm.AggregateBandwidth).To(Equal(1.0))
		Expect(c.NoCNorm.Congestion).To(Equal(cost.MaxInvNoCCongestionCost))
		Expect(c.Cost).To(BeNumerically("~", 1+2*(0.5+1+1+0), 1e-12))
	})

	It("should parse algorithm names", func() {
		a, err := cost.ParseAlgorithm("slack_timing")
		Expect(err).NotTo(HaveOccurred())
		Expect(a).To(Equal(cost.SlackTiming))
		Expect(a.IsTimingDriven()).To(BeTrue())

		_, err = cost.ParseAlgorithm("annealing")
		Expect(err).To(MatchError(ContainSubstring("annealing")))
	})
})
