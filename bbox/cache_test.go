package bbox_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/fplace/arch"
	"github.com/sarchlab/fplace/bbox"
	"github.com/sarchlab/fplace/netlist"
	"github.com/sarchlab/fplace/placement"
	"github.com/sarchlab/fplace/rng"
	"github.com/sarchlab/fplace/synth"
)

type displacement struct {
	block    netlist.BlockID
	from, to arch.Loc
}

// moveBlocks applies every displacement first and only then feeds the pins
// of the moved blocks to the cache, the way a swap does.
func moveBlocks(
	st *placement.State,
	cache *bbox.Cache,
	moves []displacement,
	touched map[netlist.NetID]bool,
) {
	nl := st.Netlist()
	for _, m := range moves {
		st.SetBlockLoc(m.block, m.to)
	}

	for _, m := range moves {
		for _, pin := range nl.Block(m.block).Pins {
			net := nl.Pin(pin).Net
			if nl.Net(net).Ignored {
				continue
			}

			cache.UpdatePin(net, pin, m.from, m.to)
			touched[net] = true
		}
	}
}

func moveBlock(
	st *placement.State,
	cache *bbox.Cache,
	b netlist.BlockID,
	to arch.Loc,
	touched map[netlist.NetID]bool,
) {
	moveBlocks(st, cache, []displacement{{block: b, from: st.Location(b), to: to}}, touched)
}

var _ = Describe("Cache", func() {
	Context("with a six pin net on one row", func() {
		var (
			st     *placement.State
			cache  *bbox.Cache
			net    netlist.NetID
			blocks []netlist.BlockID
		)

		BeforeEach(func() {
			g, err := synth.Device(synth.DeviceConfig{Width: 10, Height: 5})
			Expect(err).NotTo(HaveOccurred())

			clb := g.LogicalTypeByName(synth.CLB)
			nb := netlist.NewBuilder()
			xs := []int{3, 3, 5, 5, 7, 7}
			blocks = nil
			for i := range xs {
				blocks = append(blocks, nb.MustAddBlock(string(rune('a'+i)), clb))
			}

			var sinks []netlist.Terminal
			for _, b := range blocks[1:] {
				sinks = append(sinks, netlist.Terminal{Block: b})
			}
			net = nb.MustAddNet("n", netlist.Terminal{Block: blocks[0]}, sinks...)

			nl, err := nb.Build()
			Expect(err).NotTo(HaveOccurred())

			st = placement.NewState(g, nl)
			for i, x := range xs {
				Expect(st.Place(blocks[i], arch.Loc{X: x, Y: 1 + i%2})).To(Succeed())
			}

			cache = bbox.NewCache(st, true)
			cache.LoadAll(bbox.Normal)
		})

		It("should start with edge counts", func() {
			Expect(cache.Coords(net)).To(Equal(bbox.Box{XMin: 3, XMax: 7, YMin: 1, YMax: 2}))
			Expect(cache.Edges(net)).To(Equal(bbox.Box{XMin: 2, XMax: 2, YMin: 3, YMax: 3}))
		})

		It("should decrement then collapse the extremum", func() {
			touched := map[netlist.NetID]bool{}

			moveBlock(st, cache, blocks[4], arch.Loc{X: 4, Y: 1}, touched)
			Expect(cache.Flag(net)).To(Equal(bbox.UpdatedOnce))
			Expect(cache.ProposedCoords(net).XMax).To(Equal(7))
			Expect(cache.ProposedEdges(net).XMax).To(Equal(1))

			moveBlock(st, cache, blocks[5], arch.Loc{X: 2, Y: 2}, touched)
			Expect(cache.Flag(net)).To(Equal(bbox.GotFromScratch))
			Expect(cache.ProposedCoords(net).XMax).To(Equal(5))
			Expect(cache.ProposedEdges(net).XMax).To(Equal(2))
			Expect(cache.ProposedCoords(net).XMin).To(Equal(2))
			Expect(cache.ProposedEdges(net).XMin).To(Equal(1))
		})

		It("should ignore further pins once rebuilt from scratch", func() {
			touched := map[netlist.NetID]bool{}
			moveBlock(st, cache, blocks[4], arch.Loc{X: 4, Y: 1}, touched)
			moveBlock(st, cache, blocks[5], arch.Loc{X: 2, Y: 2}, touched)
			moveBlock(st, cache, blocks[0], arch.Loc{X: 8, Y: 1}, touched)

			Expect(cache.ProposedCoords(net).XMax).To(Equal(5))
		})

		It("should leave committed state alone on reset", func() {
			before := cache.Coords(net)
			edges := cache.Edges(net)

			touched := map[netlist.NetID]bool{}
			moveBlock(st, cache, blocks[4], arch.Loc{X: 8, Y: 3}, touched)
			Expect(cache.ProposedCoords(net).XMax).To(Equal(8))

			st.SetBlockLoc(blocks[4], arch.Loc{X: 7, Y: 1})
			cache.Reset(net)

			Expect(cache.Flag(net)).To(Equal(bbox.NotUpdatedYet))
			Expect(cache.Coords(net)).To(Equal(before))
			Expect(cache.Edges(net)).To(Equal(edges))
		})

		It("should adopt the proposed box on commit", func() {
			touched := map[netlist.NetID]bool{}
			moveBlock(st, cache, blocks[4], arch.Loc{X: 8, Y: 3}, touched)
			cache.Commit(net)

			Expect(cache.Flag(net)).To(Equal(bbox.NotUpdatedYet))
			Expect(cache.Coords(net)).To(Equal(bbox.Box{XMin: 3, XMax: 8, YMin: 1, YMax: 3}))
			Expect(cache.Edges(net).XMax).To(Equal(1))
		})

		It("should clip boxes to the inner grid", func() {
			touched := map[netlist.NetID]bool{}
			moveBlock(st, cache, blocks[2], arch.Loc{X: 9, Y: 2}, touched)
			cache.Commit(net)

			Expect(cache.Coords(net).XMax).To(Equal(8))
			coords, _ := cache.CheckNet(net)
			Expect(coords[0]).To(Equal(cache.Coords(net)))
		})
	})

	It("should resolve the box mode against the device", func() {
		one, err := synth.Device(synth.DeviceConfig{Width: 5, Height: 5})
		Expect(err).NotTo(HaveOccurred())
		Expect(bbox.UseCube(bbox.PerLayerMode, one)).To(BeTrue())

		two, err := synth.Device(synth.DeviceConfig{Width: 5, Height: 5, Layers: 2})
		Expect(err).NotTo(HaveOccurred())
		Expect(bbox.UseCube(bbox.PerLayerMode, two)).To(BeFalse())
		Expect(bbox.UseCube(bbox.CubeMode, two)).To(BeTrue())
		Expect(bbox.UseCube(bbox.AutoMode, two)).To(BeFalse())

		opins, err := synth.Device(synth.DeviceConfig{
			Width: 5, Height: 5, Layers: 2, InterLayerFromOutputPinsOnly: true,
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(bbox.UseCube(bbox.AutoMode, opins)).To(BeTrue())
	})

	DescribeTable("random swaps keep every box equal to the hull",
		func(layers int, cube bool) {
			g, err := synth.Device(synth.DeviceConfig{
				Width: 12, Height: 10, Layers: layers, IOCapacity: 2,
			})
			Expect(err).NotTo(HaveOccurred())

			r := rng.New(7)
			nl, err := synth.Netlist(g, synth.NetlistConfig{
				CLBs: 40, IOs: 10, Nets: 60, MaxFanout: 9, PinsPerBlock: 4,
			}, r)
			Expect(err).NotTo(HaveOccurred())

			st := placement.NewState(g, nl)
			Expect(st.InitialPlace(r)).To(Succeed())

			cache := bbox.NewCache(st, cube)
			cache.LoadAll(bbox.Normal)

			for i := 0; i < 400; i++ {
				a := netlist.BlockID(r.Intn(nl.NumBlocks()))
				legal := g.LegalLocs(nl.Block(a).Type)
				to := legal[r.Intn(len(legal))]
				from := st.Location(a)
				b := st.BlockAt(to)

				touched := map[netlist.NetID]bool{}
				moves := []displacement{{block: a, from: from, to: to}}
				swapped := b != placement.EmptyBlock && b != a
				if swapped {
					moves = append(moves, displacement{block: b, from: to, to: from})
				}
				moveBlocks(st, cache, moves, touched)

				if r.Float64() < 0.5 {
					for net := range touched {
						cache.Commit(net)
					}
					st.RebuildGrid()
				} else {
					st.SetBlockLoc(a, from)
					if swapped {
						st.SetBlockLoc(b, to)
					}
					for net := range touched {
						cache.Reset(net)
					}
				}

				for net := range touched {
					Expect(cache.Flag(net)).To(Equal(bbox.NotUpdatedYet))
					coords, _ := cache.CheckNet(net)
					Expect(cache.Committed(net)).To(Equal(coords))
				}
			}

			for i := 0; i < nl.NumNets(); i++ {
				net := netlist.NetID(i)
				if nl.Net(net).Ignored {
					continue
				}

				coords, sinks := cache.CheckNet(net)
				Expect(cache.Committed(net)).To(Equal(coords), "net %d", i)
				Expect(cache.SinkCount(net)).To(Equal(sinks), "net %d", i)

				if len(nl.NetSinks(net)) >= bbox.SmallNet {
					_, edges, _ := cache.ScratchNet(net)
					if cube {
						Expect([]bbox.Box{cache.Edges(net)}).To(Equal(edges))
					} else {
						Expect(cache.LayerEdges(net)).To(Equal(edges))
					}
				}
			}
		},
		Entry("cube boxes on one layer", 1, true),
		Entry("cube boxes on two layers", 2, true),
		Entry("per-layer boxes on two layers", 2, false),
	)
})
