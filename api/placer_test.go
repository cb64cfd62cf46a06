package api_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/sarchlab/akita/v4/sim"

	"github.com/sarchlab/fplace/anneal"
	"github.com/sarchlab/fplace/api"
	"github.com/sarchlab/fplace/config"
	"github.com/sarchlab/fplace/cost"
	"github.com/sarchlab/fplace/placement"
	"github.com/sarchlab/fplace/rng"
	"github.com/sarchlab/fplace/synth"
)

var _ = Describe("Driving an annealer", func() {
	It("should run every placement phase on the engine", func() {
		g, err := synth.Device(synth.DeviceConfig{
			Width: 8, Height: 8, ChanWidth: 2, IOCapacity: 2,
		})
		Expect(err).NotTo(HaveOccurred())

		nl, err := synth.Netlist(g, synth.NetlistConfig{
			CLBs: 12, IOs: 4, Nets: 14, MaxFanout: 3, PinsPerBlock: 2,
		}, rng.New(5))
		Expect(err).NotTo(HaveOccurred())

		opts := config.DefaultOptions()
		opts.PlaceAlgorithm = cost.CriticalityTiming
		opts.AnnealingSchedule = config.UserSchedule
		opts.InitT = 8
		opts.AlphaT = 0.5
		opts.ExitT = 1

		p, err := anneal.MakeBuilder().
			WithOptions(opts).
			Build("small", placement.NewState(g, nl))
		Expect(err).NotTo(HaveOccurred())

		engine := sim.NewSerialEngine()
		driver := api.DriverBuilder{}.
			WithEngine(engine).
			WithFreq(1 * sim.GHz).
			WithPlacer(p).
			Build("Driver")

		Expect(driver.Run()).To(Succeed())
		Expect(p.Phase()).To(Equal(anneal.PhaseDone))
		Expect(driver.Steps()).To(Equal(p.AnnealingState().NumTemps + 2))
	})
})
