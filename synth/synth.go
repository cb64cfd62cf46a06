// Package synth generates synthetic devices and netlists for demos,
// benchmarks and tests.
package synth

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/sarchlab/fplace/arch"
	"github.com/sarchlab/fplace/netlist"
	"github.com/sarchlab/fplace/rng"
)

// Logical and physical type names used by the generated devices.
const (
	CLB = "clb"
	IO  = "io"
	Mem = "mem"
)

// DeviceConfig shapes a synthetic island style device.
type DeviceConfig struct {
	Width, Height int
	Layers        int
	ChanWidth     int
	IOCapacity    int
	// MemStartX and MemRepeatX place columns of two-cell tall memory tiles.
	// A zero MemStartX means no memory columns.
	MemStartX  int
	MemRepeatX int
	// InterLayerFromOutputPinsOnly feeds the auto box mode.
	InterLayerFromOutputPinsOnly bool
}

// Device builds the grid described by cfg.
func Device(cfg DeviceConfig) (*arch.Grid, error) {
	b := arch.MakeGridBuilder().
		WithSize(cfg.Width, cfg.Height).
		WithLayers(max(cfg.Layers, 1)).
		WithChannelWidth(max(cfg.ChanWidth, 1)).
		WithInterLayerFromOutputPinsOnly(cfg.InterLayerFromOutputPinsOnly).
		WithLogicalType(CLB).
		WithLogicalType(IO).
		WithLogicalType(Mem).
		WithTileType(arch.TileTypeSpec{
			Name: CLB, Capacity: 1, Compatible: []string{CLB},
		}).
		WithTileType(arch.TileTypeSpec{
			Name: IO, Capacity: max(cfg.IOCapacity, 1), Compatible: []string{IO},
		}).
		WithTileType(arch.TileTypeSpec{
			Name: Mem, Capacity: 1, Height: 2,
			PinWidthOffset:  []int{0, 0, 0, 0},
			PinHeightOffset: []int{0, 1, 0, 1},
			Compatible:      []string{Mem},
		}).
		WithFill(CLB).
		WithPerimeter(IO)

	if cfg.MemStartX > 0 {
		b = b.WithColumn(arch.ColumnSpec{
			Type: Mem, StartX: cfg.MemStartX, RepeatX: cfg.MemRepeatX,
		})
	}

	return b.Build()
}

// NetlistConfig shapes a synthetic netlist.
type NetlistConfig struct {
	CLBs, IOs, Mems int
	Nets            int
	MaxFanout       int
	// Macros chains of MacroSize CLBs stacked vertically, like carry chains.
	Macros    int
	MacroSize int
	// SequentialFraction of the CLBs are registered.
	SequentialFraction float64
	// GlobalNets are extra high fanout nets marked ignored.
	GlobalNets int
	// PinsPerBlock bounds the tile pin index given to each terminal.
	PinsPerBlock int
}

// Netlist generates a random netlist on the logical types of g.
func Netlist(g *arch.Grid, cfg NetlistConfig, r *rng.Stream) (*netlist.Netlist, error) {
	types := map[string]int{}
	for _, name := range []string{CLB, IO, Mem} {
		id := g.LogicalTypeByName(name)
		if id < 0 {
			return nil, errors.Errorf("device has no %q logical type", name)
		}
		types[name] = id
	}

	if cfg.CLBs+cfg.IOs+cfg.Mems < 2 {
		return nil, errors.New("synthetic netlist needs at least two blocks")
	}

	pins := max(cfg.PinsPerBlock, 1)
	b := netlist.NewBuilder()

	var blocks []netlist.BlockID
	add := func(prefix string, n int) []netlist.BlockID {
		var ids []netlist.BlockID
		for i := 0; i < n; i++ {
			id := b.MustAddBlock(fmt.Sprintf("%s%d", prefix, i), types[prefix])
			ids = append(ids, id)
		}
		blocks = append(blocks, ids...)

		return ids
	}

	clbs := add(CLB, cfg.CLBs)
	add(IO, cfg.IOs)
	add(Mem, cfg.Mems)

	sequential := map[netlist.BlockID]bool{}
	for _, id := range clbs {
		if r.Float64() < cfg.SequentialFraction {
			b.SetSequential(id)
			sequential[id] = true
		}
	}

	// Combinational connections only run towards higher block ids, so the
	// timing graph has no loop that does not cross a register.
	forward := func(driver, sink netlist.BlockID) bool {
		return sink > driver || sequential[driver] || sequential[sink]
	}
	anySink := func(_, _ netlist.BlockID) bool { return true }

	if err := addMacros(b, clbs, cfg); err != nil {
		return nil, err
	}

	fanout := max(cfg.MaxFanout, 1)
	for i := 0; i < cfg.Nets; i++ {
		addRandomNet(b, fmt.Sprintf("n%d", i), blocks,
			1+r.Intn(min(fanout, len(blocks)-1)), pins, r, forward)
	}

	for i := 0; i < cfg.GlobalNets; i++ {
		id := addRandomNet(b, fmt.Sprintf("global%d", i), blocks,
			len(blocks)-1, pins, r, anySink)
		b.SetIgnored(id)
	}

	return b.Build()
}

func addMacros(b *netlist.Builder, clbs []netlist.BlockID, cfg NetlistConfig) error {
	if cfg.Macros*cfg.MacroSize > len(clbs) {
		return errors.Errorf("%d macros of %d CLBs need more than %d CLBs",
			cfg.Macros, cfg.MacroSize, len(clbs))
	}

	next := 0
	for m := 0; m < cfg.Macros; m++ {
		var members []netlist.MacroMember
		for i := 0; i < cfg.MacroSize; i++ {
			members = append(members, netlist.MacroMember{
				Block:  clbs[next],
				Offset: arch.Offset{Y: i},
			})
			next++
		}

		if err := b.AddMacro(members...); err != nil {
			return err
		}
	}

	return nil
}

// driverAttempts bounds the draws for a driver with at least one allowed
// sink before falling back to the first block.
const driverAttempts = 32

func addRandomNet(
	b *netlist.Builder,
	name string,
	blocks []netlist.BlockID,
	fanout, pins int,
	r *rng.Stream,
	allowed func(driver, sink netlist.BlockID) bool,
) netlist.NetID {
	candidates := func(driver netlist.BlockID) []netlist.BlockID {
		var c []netlist.BlockID
		for _, s := range blocks {
			if s != driver && allowed(driver, s) {
				c = append(c, s)
			}
		}
		return c
	}

	driver := blocks[r.Intn(len(blocks))]
	cands := candidates(driver)
	for i := 0; len(cands) == 0 && i < driverAttempts; i++ {
		driver = blocks[r.Intn(len(blocks))]
		cands = candidates(driver)
	}

	if len(cands) == 0 {
		driver = blocks[0]
		cands = candidates(driver)
	}

	fanout = min(fanout, len(cands))
	sinks := make([]netlist.Terminal, 0, fanout)
	for i := 0; i < fanout; i++ {
		j := i + r.Intn(len(cands)-i)
		cands[i], cands[j] = cands[j], cands[i]
		sinks = append(sinks, netlist.Terminal{Block: cands[i], TilePin: r.Intn(pins)})
	}

	return b.MustAddNet(name, netlist.Terminal{Block: driver, TilePin: r.Intn(pins)},
		sinks...)
}
