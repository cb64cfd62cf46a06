package stats_test

import (
	"bytes"
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/fplace/arch"
	"github.com/sarchlab/fplace/move"
	"github.com/sarchlab/fplace/stats"
)

var _ = Describe("PlacerStatistics", func() {
	It("should average accepted swaps", func() {
		var s stats.PlacerStatistics
		s.SingleSwapUpdate(1, 10, 0.1)
		s.SingleSwapUpdate(3, 30, 0.3)
		s.CalcIterationStats(9, 90, 0.9, 8)

		Expect(s.AvCost).To(Equal(2.0))
		Expect(s.AvBBCost).To(Equal(20.0))
		Expect(s.AvTimingCost).To(BeNumerically("~", 0.2, 1e-12))
		Expect(s.SuccessRate).To(Equal(0.25))
		Expect(s.StdDev).To(BeNumerically("~", math.Sqrt2, 1e-12))
	})

	It("should use the current costs when nothing was accepted", func() {
		var s stats.PlacerStatistics
		s.CalcIterationStats(9, 90, 0.9, 8)

		Expect(s.AvCost).To(Equal(9.0))
		Expect(s.SuccessRate).To(Equal(0.0))
		Expect(s.StdDev).To(Equal(0.0))

		s.SingleSwapUpdate(1, 1, 1)
		s.Reset()
		Expect(s.SuccessSum).To(Equal(0))
	})

	It("should clamp the standard deviation at zero", func() {
		Expect(stats.StdDev(1, 4, 2)).To(Equal(0.0))
		Expect(stats.StdDev(2, 7.9, 2)).To(Equal(0.0))
		Expect(stats.StdDev(3, 14, 2)).To(BeNumerically("~", 1, 1e-12))
	})
})

var _ = Describe("Reward", func() {
	o := stats.OutcomeStats{
		DeltaCostNorm:       -0.5,
		DeltaBBCostNorm:     -0.2,
		DeltaTimingCostNorm: -0.3,
	}

	DescribeTable("should reward by function",
		func(fn stats.RewardFunction, delta, want float64) {
			Expect(stats.Reward(fn, delta, o, stats.BBTimingRelativeWeight)).
				To(BeNumerically("~", want, 1e-12))
		},
		Entry("basic improvement", stats.Basic, -0.5, 0.5),
		Entry("basic penalty", stats.Basic, 0.25, -0.25),
		Entry("non penalizing improvement", stats.NonPenalizingBasic, -0.5, 0.5),
		Entry("non penalizing penalty", stats.NonPenalizingBasic, 0.25, 0.0),
		Entry("runtime aware penalty", stats.RuntimeAware, 0.25, 0.0),
		Entry("wl biased improvement", stats.WLBiasedRuntimeAware, -0.5,
			0.5+0.1*0.3+0.4*0.2),
		Entry("wl biased penalty", stats.WLBiasedRuntimeAware, 0.5, 0.0),
	)

	It("should parse names", func() {
		fn, err := stats.ParseRewardFunction("wl_biased_runtime_aware")
		Expect(err).NotTo(HaveOccurred())
		Expect(fn).To(Equal(stats.WLBiasedRuntimeAware))
		Expect(fn.IsRuntimeAware()).To(BeTrue())

		_, err = stats.ParseRewardFunction("greedy")
		Expect(err).To(MatchError(ContainSubstring("greedy")))
	})
})

var _ = Describe("MoveTypeStat", func() {
	It("should derive aborted swaps", func() {
		s := stats.NewMoveTypeStat(2, int(move.NumAutoTypes))
		s.Record(1, move.Median, move.Accepted)
		s.Record(1, move.Median, move.Rejected)
		s.Record(1, move.Median, move.Aborted)
		s.Record(0, move.Uniform, move.Accepted)
		s.Record(-1, move.Uniform, move.Accepted)

		Expect(s.Proposed(1, move.Median)).To(Equal(3))
		Expect(s.Aborted(1, move.Median)).To(Equal(1))
		Expect(s.Total()).To(Equal(4))

		var buf bytes.Buffer
		Expect(stats.WriteMoveTypeStats(&buf, s, []*arch.LogicalBlockType{
			{ID: 0, Name: "io"}, {ID: 1, Name: "clb"},
		})).To(Succeed())
		Expect(buf.String()).To(ContainSubstring("clb"))
		Expect(buf.String()).To(ContainSubstring("Median"))
	})

	It("should total swap results", func() {
		var s stats.SwapStats
		s.Record(move.Accepted)
		s.Record(move.Aborted)
		s = s.Add(stats.SwapStats{Rejected: 2})

		Expect(s.Total()).To(Equal(4))

		var buf bytes.Buffer
		Expect(stats.WriteSwapStats(&buf, s)).To(Succeed())
		Expect(buf.String()).To(ContainSubstring("50.0 %"))
	})

	It("should render a status table", func() {
		var t stats.StatusTable
		t.Append(stats.StatusRow{Iteration: 1, Temperature: 0.5, TotalMoves: 10})

		Expect(t.Render()).To(ContainSubstring("TOT MOVES"))
	})
})
