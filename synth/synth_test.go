package synth_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/fplace/netlist"
	"github.com/sarchlab/fplace/rng"
	"github.com/sarchlab/fplace/synth"
)

var _ = Describe("Netlist", func() {
	generate := func(seq float64) *netlist.Netlist {
		g, err := synth.Device(synth.DeviceConfig{Width: 10, Height: 10, IOCapacity: 2})
		Expect(err).NotTo(HaveOccurred())

		nl, err := synth.Netlist(g, synth.NetlistConfig{
			CLBs: 30, IOs: 8, Nets: 60, MaxFanout: 6, GlobalNets: 1,
			SequentialFraction: seq, PinsPerBlock: 4,
		}, rng.New(7))
		Expect(err).NotTo(HaveOccurred())

		return nl
	}

	DescribeTable("combinational connections run towards higher block ids",
		func(seq float64) {
			nl := generate(seq)

			for n := 0; n < nl.NumNets(); n++ {
				net := netlist.NetID(n)
				if nl.Net(net).Ignored {
					continue
				}

				driver := nl.NetDriverBlock(net)
				Expect(nl.NetSinks(net)).NotTo(BeEmpty())

				for _, sink := range nl.NetSinks(net) {
					dst := nl.Pin(sink).Block
					if nl.Block(driver).Sequential || nl.Block(dst).Sequential {
						continue
					}

					Expect(dst).To(BeNumerically(">", driver), "net %d", n)
				}
			}
		},
		Entry("without registers", 0.0),
		Entry("with registers", 0.3),
	)

	It("should draw the same netlist from the same seed", func() {
		a, b := generate(0.3), generate(0.3)

		Expect(a.NumNets()).To(Equal(b.NumNets()))
		for n := 0; n < a.NumNets(); n++ {
			net := netlist.NetID(n)
			Expect(a.NetDriverBlock(net)).To(Equal(b.NetDriverBlock(net)))
			Expect(a.NetSinks(net)).To(Equal(b.NetSinks(net)))
		}
	})

	It("should fan a global net out to every other block", func() {
		nl := generate(0)
		global := netlist.NetID(nl.NumNets() - 1)

		Expect(nl.Net(global).Ignored).To(BeTrue())
		Expect(nl.NetSinks(global)).To(HaveLen(37))
	})
})
