package anneal_test

import (
	"bytes"
	"os"
	"path/filepath"

	"github.com/sarchlab/akita/v4/sim"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/fplace/anneal"
	"github.com/sarchlab/fplace/config"
	"github.com/sarchlab/fplace/cost"
	"github.com/sarchlab/fplace/placement"
	"github.com/sarchlab/fplace/rng"
	"github.com/sarchlab/fplace/stats"
	"github.com/sarchlab/fplace/synth"
)

func syntheticState() *placement.State {
	g, err := synth.Device(synth.DeviceConfig{
		Width: 10, Height: 10, ChanWidth: 4, IOCapacity: 2,
	})
	Expect(err).NotTo(HaveOccurred())

	nl, err := synth.Netlist(g, synth.NetlistConfig{
		CLBs: 30, IOs: 8, Nets: 40, MaxFanout: 4,
		SequentialFraction: 0.3, PinsPerBlock: 4,
	}, rng.New(7))
	Expect(err).NotTo(HaveOccurred())

	return placement.NewState(g, nl)
}

func quickOptions(algo cost.Algorithm) config.Options {
	opts := config.DefaultOptions()
	opts.PlaceAlgorithm = algo
	opts.QuenchAlgorithm = algo
	opts.AnnealingSchedule = config.UserSchedule
	opts.InitT = 10
	opts.AlphaT = 0.5
	opts.ExitT = 1
	opts.InnerNum = 0.2

	return opts
}

type hookRecorder struct {
	temperatures []stats.StatusRow
	summaries    []anneal.Summary
	swaps        int
}

func (r *hookRecorder) Func(ctx sim.HookCtx) {
	switch ctx.Pos {
	case anneal.HookPosTemperature:
		r.temperatures = append(r.temperatures, ctx.Item.(stats.StatusRow))
	case anneal.HookPosFinish:
		r.summaries = append(r.summaries, ctx.Item.(anneal.Summary))
	case anneal.HookPosSwap:
		r.swaps++
	}
}

var _ = Describe("Placer", func() {
	for _, algo := range []cost.Algorithm{
		cost.BoundingBox, cost.CriticalityTiming, cost.SlackTiming,
	} {
		algo := algo

		It("should place with consistent costs under "+algo.String(), func() {
			st := syntheticState()
			p, err := anneal.MakeBuilder().
				WithOptions(quickOptions(algo)).
				Build("synthetic", st)
			Expect(err).NotTo(HaveOccurred())

			Expect(p.Place()).To(Succeed())

			Expect(p.Phase()).To(Equal(anneal.PhaseDone))
			Expect(p.CheckPlace()).To(Succeed())
			Expect(p.RecomputeCostsFromScratch()).To(Succeed())
			Expect(p.SwapStats().Total()).To(Equal(p.TotalMoves()))
			Expect(p.StatusTable().Rows).To(HaveLen(p.AnnealingState().NumTemps))
		})
	}

	It("should follow the user schedule and end with a quench", func() {
		p, err := anneal.MakeBuilder().
			WithOptions(quickOptions(cost.BoundingBox)).
			Build("synthetic", syntheticState())
		Expect(err).NotTo(HaveOccurred())

		Expect(p.Place()).To(Succeed())

		rows := p.StatusTable().Rows
		Expect(rows).To(HaveLen(5))
		Expect(rows[0].Temperature).To(Equal(10.0))
		Expect(rows[1].Temperature).To(Equal(5.0))
		Expect(rows[3].Temperature).To(Equal(1.25))
		Expect(rows[4].Temperature).To(Equal(0.0))
		Expect(rows[4].TotalMoves).To(Equal(p.TotalMoves()))
	})

	It("should step through the phases", func() {
		p, err := anneal.MakeBuilder().
			WithOptions(quickOptions(cost.BoundingBox)).
			Build("synthetic", syntheticState())
		Expect(err).NotTo(HaveOccurred())
		Expect(p.Phase()).To(Equal(anneal.PhaseInit))

		done, err := p.Step()
		Expect(err).NotTo(HaveOccurred())
		Expect(done).To(BeFalse())
		Expect(p.Phase()).To(Equal(anneal.PhaseAnneal))

		phases := map[anneal.Phase]bool{}
		for !done {
			phases[p.Phase()] = true
			done, err = p.Step()
			Expect(err).NotTo(HaveOccurred())
		}

		Expect(phases).To(HaveKey(anneal.PhaseQuench))
		Expect(phases).To(HaveKey(anneal.PhaseFinish))
		Expect(p.Phase()).To(Equal(anneal.PhaseDone))

		done, err = p.Step()
		Expect(err).NotTo(HaveOccurred())
		Expect(done).To(BeTrue())
	})

	It("should reproduce a placement from the same seed", func() {
		run := func(seed int64) string {
			opts := quickOptions(cost.CriticalityTiming)
			opts.Seed = seed
			p, err := anneal.MakeBuilder().
				WithOptions(opts).
				Build("synthetic", syntheticState())
			Expect(err).NotTo(HaveOccurred())
			Expect(p.Place()).To(Succeed())

			return p.Summary().Digest
		}

		Expect(run(3)).To(Equal(run(3)))
	})

	It("should start the auto schedule from probed swaps", func() {
		opts := config.DefaultOptions()
		opts.PlaceAlgorithm = cost.BoundingBox
		opts.QuenchAlgorithm = cost.BoundingBox
		opts.InnerNum = 0.1

		p, err := anneal.MakeBuilder().
			WithOptions(opts).
			Build("synthetic", syntheticState())
		Expect(err).NotTo(HaveOccurred())

		Expect(p.Init()).To(Succeed())
		s := p.AnnealingState()
		Expect(s.T).To(BeNumerically(">", 0))
		Expect(s.RestartT).To(Equal(s.T))
		Expect(s.Rlim).To(Equal(9.0))
		Expect(p.SwapStats().Total()).To(BeNumerically(">", 0))
		Expect(p.TotalMoves()).To(Equal(0))

		Expect(p.Init()).NotTo(Succeed())
	})

	It("should invoke hooks", func() {
		p, err := anneal.MakeBuilder().
			WithOptions(quickOptions(cost.CriticalityTiming)).
			Build("synthetic", syntheticState())
		Expect(err).NotTo(HaveOccurred())

		r := &hookRecorder{}
		p.AcceptHook(r)

		Expect(p.Place()).To(Succeed())

		Expect(r.temperatures).To(HaveLen(p.AnnealingState().NumTemps))
		Expect(r.summaries).To(HaveLen(1))
		Expect(r.summaries[0].Digest).To(Equal(p.Summary().Digest))
		Expect(r.summaries[0].Seed).To(Equal(int64(1)))
		Expect(r.swaps).To(Equal(p.SwapStats().Total()))
	})

	It("should dump placements", func() {
		opts := quickOptions(cost.BoundingBox)
		opts.SavesPerTemperature = 1
		opts.DumpDir = GinkgoT().TempDir()

		p, err := anneal.MakeBuilder().
			WithOptions(opts).
			Build("synthetic", syntheticState())
		Expect(err).NotTo(HaveOccurred())
		Expect(p.Place()).To(Succeed())

		for _, name := range []string{
			"placement_000_000.place",
			"placement_001_000.place",
			"placement_006_000.place",
		} {
			_, err := os.Stat(filepath.Join(opts.DumpDir, name))
			Expect(err).NotTo(HaveOccurred(), name)
		}
	})

	It("should write a report", func() {
		p, err := anneal.MakeBuilder().
			WithOptions(quickOptions(cost.CriticalityTiming)).
			Build("synthetic", syntheticState())
		Expect(err).NotTo(HaveOccurred())
		Expect(p.Place()).To(Succeed())

		var buf bytes.Buffer
		Expect(p.WriteReport(&buf)).To(Succeed())
		Expect(buf.String()).To(ContainSubstring("Annealing Status"))
		Expect(buf.String()).To(ContainSubstring("Placement Swaps"))
		Expect(buf.String()).To(ContainSubstring("Agent Action Values"))
		Expect(buf.String()).To(ContainSubstring("Resource Usage"))
	})

	It("should reject invalid options", func() {
		opts := config.DefaultOptions()
		opts.TimingTradeoff = 2

		_, err := anneal.MakeBuilder().
			WithOptions(opts).
			Build("synthetic", syntheticState())
		Expect(err).To(HaveOccurred())
	})
})

var _ = Describe("Accept", func() {
	DescribeTable("acceptance",
		func(delta, t, draw float64, accepted bool) {
			Expect(anneal.Accept(delta, t, draw)).To(Equal(accepted))
		},
		Entry("downhill", -1.0, 1.0, 0.99, true),
		Entry("flat", 0.0, 0.0, 0.99, true),
		Entry("uphill at zero temperature", 0.1, 0.0, 0.0, false),
		Entry("uphill beating the draw", 1.0, 1.0, 0.3, true),
		Entry("uphill losing to the draw", 1.0, 1.0, 0.4, false),
	)
})

var _ = Describe("Schedule", func() {
	It("should size the inner loop", func() {
		opts := config.DefaultOptions()
		opts.InnerNum = 1
		Expect(anneal.InitialMoveLim(opts, 10, 1000)).To(Equal(21))

		opts.EffortScaling = config.DeviceCircuitScaling
		Expect(anneal.InitialMoveLim(opts, 10, 1000)).To(Equal(464))

		opts.InnerNum = 0
		Expect(anneal.InitialMoveLim(opts, 10, 1000)).To(Equal(1))
	})

	It("should cool the auto schedule by success rate", func() {
		opts := config.DefaultOptions()
		opts.PlaceAlgorithm = cost.BoundingBox
		s := anneal.NewState(opts, 100, 10, 50, 1)
		c := &cost.Costs{Cost: 1}

		Expect(s.OuterLoopUpdate(0.97, c, 10, opts)).To(BeTrue())
		Expect(s.T).To(Equal(50.0))
		Expect(s.Alpha).To(Equal(0.5))
		Expect(s.Rlim).To(Equal(10.0))

		Expect(s.OuterLoopUpdate(0.0, c, 10, opts)).To(BeTrue())
		Expect(s.Rlim).To(BeNumerically("~", 5.6, 1e-9))

		s.T = 1e-4
		Expect(s.OuterLoopUpdate(0.5, c, 10, opts)).To(BeFalse())
	})

	It("should move the crit exponent as rlim shrinks", func() {
		opts := config.DefaultOptions()
		s := anneal.NewState(opts, 100, 11, 50, opts.TDPlaceExpFirst)
		c := &cost.Costs{Cost: 1}

		for i := 0; i < 40; i++ {
			s.OuterLoopUpdate(0, c, 10, opts)
		}

		Expect(s.Rlim).To(Equal(1.0))
		Expect(s.CritExponent).To(Equal(opts.TDPlaceExpLast))
	})

	It("should restart the dusty schedule", func() {
		opts := config.DefaultOptions()
		opts.PlaceAlgorithm = cost.BoundingBox
		opts.AnnealingSchedule = config.DustySchedule
		s := anneal.NewState(opts, 10, 5, 100, 1)
		c := &cost.Costs{Cost: 1}

		Expect(s.MoveLim).To(Equal(25))
		Expect(s.Alpha).To(Equal(0.5))

		Expect(s.OuterLoopUpdate(0.5, c, 10, opts)).To(BeTrue())
		Expect(s.RestartT).To(Equal(10.0))
		Expect(s.T).To(Equal(5.0))
		Expect(s.MoveLim).To(Equal(50))

		Expect(s.OuterLoopUpdate(0.01, c, 10, opts)).To(BeTrue())
		Expect(s.T).To(BeNumerically("~", 10/0.7071067811865476, 1e-9))
		Expect(s.Alpha).To(BeNumerically("~", 0.65, 1e-9))
		Expect(s.MoveLim).To(Equal(100))

		s.Alpha = 0.95
		Expect(s.OuterLoopUpdate(0.01, c, 10, opts)).To(BeFalse())
	})
})
