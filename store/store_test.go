package store_test

import (
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/rs/xid"

	"github.com/sarchlab/fplace/anneal"
	"github.com/sarchlab/fplace/config"
	"github.com/sarchlab/fplace/cost"
	"github.com/sarchlab/fplace/placement"
	"github.com/sarchlab/fplace/rng"
	"github.com/sarchlab/fplace/store"
	"github.com/sarchlab/fplace/synth"
)

var _ = Describe("Recorder", func() {
	var (
		r *store.Recorder
		p *anneal.Placer
	)

	BeforeEach(func() {
		var err error
		r, err = store.NewRecorder("sqlite3",
			filepath.Join(GinkgoT().TempDir(), "runs.db"))
		Expect(err).NotTo(HaveOccurred())

		g, err := synth.Device(synth.DeviceConfig{
			Width: 8, Height: 8, ChanWidth: 2, IOCapacity: 2,
		})
		Expect(err).NotTo(HaveOccurred())

		nl, err := synth.Netlist(g, synth.NetlistConfig{
			CLBs: 10, IOs: 4, Nets: 12, MaxFanout: 3, PinsPerBlock: 2,
		}, rng.New(11))
		Expect(err).NotTo(HaveOccurred())

		opts := config.DefaultOptions()
		opts.PlaceAlgorithm = cost.BoundingBox
		opts.QuenchAlgorithm = cost.BoundingBox
		opts.AnnealingSchedule = config.UserSchedule
		opts.InitT = 4
		opts.AlphaT = 0.5
		opts.ExitT = 1

		p, err = anneal.MakeBuilder().
			WithOptions(opts).
			Build("stored", placement.NewState(g, nl))
		Expect(err).NotTo(HaveOccurred())
	})

	AfterEach(func() {
		Expect(r.Close()).To(Succeed())
	})

	It("should give every run an xid", func() {
		_, err := xid.FromString(r.RunID())
		Expect(err).NotTo(HaveOccurred())
	})

	It("should record a run", func() {
		Expect(r.StartRun(p.Name(), p.Options().Seed)).To(Succeed())
		p.AcceptHook(r)

		Expect(p.Place()).To(Succeed())
		Expect(r.Err()).NotTo(HaveOccurred())
		Expect(r.RecordPlacement(p.Placement())).To(Succeed())

		var temps int
		Expect(r.DB().QueryRow(
			`SELECT COUNT(*) FROM temperatures WHERE run_id = ?`, r.RunID()).
			Scan(&temps)).To(Succeed())
		Expect(temps).To(Equal(p.AnnealingState().NumTemps))

		var (
			name   string
			digest string
			moves  int
		)
		Expect(r.DB().QueryRow(
			`SELECT name, digest, total_moves FROM runs WHERE id = ?`, r.RunID()).
			Scan(&name, &digest, &moves)).To(Succeed())
		Expect(name).To(Equal("stored"))
		Expect(digest).To(Equal(p.Summary().Digest))
		Expect(moves).To(Equal(p.TotalMoves()))

		var blocks int
		Expect(r.DB().QueryRow(
			`SELECT COUNT(*) FROM block_locations WHERE run_id = ?`, r.RunID()).
			Scan(&blocks)).To(Succeed())
		Expect(blocks).To(Equal(p.Placement().Netlist().NumBlocks()))
	})

	It("should refuse an unknown driver", func() {
		_, err := store.NewRecorder("postgres", "whatever")
		Expect(err).To(HaveOccurred())
	})
})
