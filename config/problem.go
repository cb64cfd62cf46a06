package config

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/sarchlab/fplace/arch"
	"github.com/sarchlab/fplace/netlist"
	"github.com/sarchlab/fplace/noc"
	"github.com/sarchlab/fplace/placement"
	"github.com/sarchlab/fplace/rng"
	"github.com/sarchlab/fplace/synth"
)

// DeviceSpec describes an island style device with clb, io and mem tiles.
type DeviceSpec struct {
	Width                        int  `yaml:"width" json:"width"`
	Height                       int  `yaml:"height" json:"height"`
	Layers                       int  `yaml:"layers" json:"layers"`
	ChanWidth                    int  `yaml:"chan_width" json:"chan_width"`
	IOCapacity                   int  `yaml:"io_capacity" json:"io_capacity"`
	MemStartX                    int  `yaml:"mem_start_x" json:"mem_start_x"`
	MemRepeatX                   int  `yaml:"mem_repeat_x" json:"mem_repeat_x"`
	InterLayerFromOutputPinsOnly bool `yaml:"inter_layer_from_output_pins_only" json:"inter_layer_from_output_pins_only"`
}

// SyntheticSpec asks for a random netlist instead of listed blocks and nets.
type SyntheticSpec struct {
	CLBs               int     `yaml:"clbs" json:"clbs"`
	IOs                int     `yaml:"ios" json:"ios"`
	Mems               int     `yaml:"mems" json:"mems"`
	Nets               int     `yaml:"nets" json:"nets"`
	MaxFanout          int     `yaml:"max_fanout" json:"max_fanout"`
	Macros             int     `yaml:"macros" json:"macros"`
	MacroSize          int     `yaml:"macro_size" json:"macro_size"`
	SequentialFraction float64 `yaml:"sequential_fraction" json:"sequential_fraction"`
	GlobalNets         int     `yaml:"global_nets" json:"global_nets"`
	PinsPerBlock       int     `yaml:"pins_per_block" json:"pins_per_block"`
	// Routers is the number of CLBs, from clb0 on, linked by a ring of NoC
	// flows of RouterBandwidth each.
	Routers         int     `yaml:"routers" json:"routers"`
	RouterBandwidth float64 `yaml:"router_bandwidth" json:"router_bandwidth"`
}

// LocSpec is a block location.
type LocSpec struct {
	X       int `yaml:"x" json:"x"`
	Y       int `yaml:"y" json:"y"`
	SubTile int `yaml:"sub_tile" json:"sub_tile"`
	Layer   int `yaml:"layer" json:"layer"`
}

func (l LocSpec) loc() arch.Loc {
	return arch.Loc{X: l.X, Y: l.Y, SubTile: l.SubTile, Layer: l.Layer}
}

// RegionSpec is a floorplan region. A missing layer or sub-tile matches any.
type RegionSpec struct {
	XMin    int  `yaml:"x_min" json:"x_min"`
	YMin    int  `yaml:"y_min" json:"y_min"`
	XMax    int  `yaml:"x_max" json:"x_max"`
	YMax    int  `yaml:"y_max" json:"y_max"`
	Layer   *int `yaml:"layer" json:"layer"`
	SubTile *int `yaml:"sub_tile" json:"sub_tile"`
}

func (r RegionSpec) region() arch.Region {
	reg := arch.Region{
		XMin: r.XMin, YMin: r.YMin, XMax: r.XMax, YMax: r.YMax,
		Layer: -1, SubTile: -1,
	}

	if r.Layer != nil {
		reg.Layer = *r.Layer
	}

	if r.SubTile != nil {
		reg.SubTile = *r.SubTile
	}

	return reg
}

// BlockSpec is a clustered block. Type names a logical type of the device.
type BlockSpec struct {
	Name       string      `yaml:"name" json:"name"`
	Type       string      `yaml:"type" json:"type"`
	Sequential bool        `yaml:"sequential" json:"sequential"`
	Fixed      *LocSpec    `yaml:"fixed" json:"fixed"`
	Region     *RegionSpec `yaml:"region" json:"region"`
}

// TerminalSpec is a net terminal.
type TerminalSpec struct {
	Block string `yaml:"block" json:"block"`
	Pin   int    `yaml:"pin" json:"pin"`
}

// NetSpec is a net from a driver to its sinks.
type NetSpec struct {
	Name    string         `yaml:"name" json:"name"`
	Driver  TerminalSpec   `yaml:"driver" json:"driver"`
	Sinks   []TerminalSpec `yaml:"sinks" json:"sinks"`
	Ignored bool           `yaml:"ignored" json:"ignored"`
}

// MacroMemberSpec is a macro member and its offset from the head.
type MacroMemberSpec struct {
	Block  string `yaml:"block" json:"block"`
	DX     int    `yaml:"dx" json:"dx"`
	DY     int    `yaml:"dy" json:"dy"`
	DSub   int    `yaml:"dsub" json:"dsub"`
	DLayer int    `yaml:"dlayer" json:"dlayer"`
}

// FlowSpec is a NoC traffic flow between two router blocks.
type FlowSpec struct {
	Source            string  `yaml:"source" json:"source"`
	Sink              string  `yaml:"sink" json:"sink"`
	Bandwidth         float64 `yaml:"bandwidth" json:"bandwidth"`
	LatencyConstraint float64 `yaml:"latency_constraint" json:"latency_constraint"`
	Priority          int     `yaml:"priority" json:"priority"`
}

// Problem is a placement problem: a device and either a listed or a
// synthetic netlist.
type Problem struct {
	Name      string              `yaml:"name" json:"name"`
	Device    DeviceSpec          `yaml:"device" json:"device"`
	Synthetic *SyntheticSpec      `yaml:"synthetic" json:"synthetic"`
	Blocks    []BlockSpec         `yaml:"blocks" json:"blocks"`
	Nets      []NetSpec           `yaml:"nets" json:"nets"`
	Macros    [][]MacroMemberSpec `yaml:"macros" json:"macros"`
	Flows     []FlowSpec          `yaml:"flows" json:"flows"`
}

// Instance is a built problem.
type Instance struct {
	Name    string
	Grid    *arch.Grid
	Netlist *netlist.Netlist
	Flows   []noc.Flow
	Fixed   map[netlist.BlockID]arch.Loc
}

// Build creates the device and netlist. The stream is only drawn from for
// synthetic netlists.
func (p *Problem) Build(r *rng.Stream) (*Instance, error) {
	g, err := synth.Device(synth.DeviceConfig{
		Width:                        p.Device.Width,
		Height:                       p.Device.Height,
		Layers:                       p.Device.Layers,
		ChanWidth:                    p.Device.ChanWidth,
		IOCapacity:                   p.Device.IOCapacity,
		MemStartX:                    p.Device.MemStartX,
		MemRepeatX:                   p.Device.MemRepeatX,
		InterLayerFromOutputPinsOnly: p.Device.InterLayerFromOutputPinsOnly,
	})
	if err != nil {
		return nil, errors.Wrap(err, "device")
	}

	in := &Instance{Name: p.Name, Grid: g, Fixed: map[netlist.BlockID]arch.Loc{}}

	flows := p.Flows
	if p.Synthetic != nil {
		in.Netlist, err = p.buildSynthetic(g, r)
		flows = append(p.syntheticFlows(), flows...)
	} else {
		in.Netlist, err = p.buildListed(g, in.Fixed)
	}

	if err != nil {
		return nil, err
	}

	in.Flows, err = buildFlows(in.Netlist, flows)
	if err != nil {
		return nil, err
	}

	return in, nil
}

func (p *Problem) buildSynthetic(g *arch.Grid, r *rng.Stream) (*netlist.Netlist, error) {
	s := p.Synthetic
	if s.Routers > s.CLBs {
		return nil, errors.Errorf("synthetic: %d routers but only %d clbs",
			s.Routers, s.CLBs)
	}

	nl, err := synth.Netlist(g, synth.NetlistConfig{
		CLBs:               s.CLBs,
		IOs:                s.IOs,
		Mems:               s.Mems,
		Nets:               s.Nets,
		MaxFanout:          s.MaxFanout,
		Macros:             s.Macros,
		MacroSize:          s.MacroSize,
		SequentialFraction: s.SequentialFraction,
		GlobalNets:         s.GlobalNets,
		PinsPerBlock:       s.PinsPerBlock,
	}, r)

	return nl, errors.Wrap(err, "synthetic netlist")
}

func (p *Problem) syntheticFlows() []FlowSpec {
	s := p.Synthetic
	if s.Routers < 2 {
		return nil
	}

	bw := s.RouterBandwidth
	if bw <= 0 {
		bw = 1
	}

	flows := make([]FlowSpec, 0, s.Routers)
	for i := 0; i < s.Routers; i++ {
		flows = append(flows, FlowSpec{
			Source:    fmt.Sprintf("%s%d", synth.CLB, i),
			Sink:      fmt.Sprintf("%s%d", synth.CLB, (i+1)%s.Routers),
			Bandwidth: bw,
		})
	}

	return flows
}

func (p *Problem) buildListed(
	g *arch.Grid,
	fixed map[netlist.BlockID]arch.Loc,
) (*netlist.Netlist, error) {
	b := netlist.NewBuilder()
	ids := map[string]netlist.BlockID{}

	for _, bs := range p.Blocks {
		t := g.LogicalTypeByName(bs.Type)
		if t < 0 {
			return nil, errors.Errorf("block %s: unknown type %q", bs.Name, bs.Type)
		}

		id, err := b.AddBlock(bs.Name, t)
		if err != nil {
			return nil, err
		}

		ids[bs.Name] = id

		if bs.Sequential {
			b.SetSequential(id)
		}

		if bs.Fixed != nil {
			b.SetFixed(id)
			fixed[id] = bs.Fixed.loc()
		}

		if bs.Region != nil {
			b.SetRegion(id, bs.Region.region())
		}
	}

	terminal := func(net string, t TerminalSpec) (netlist.Terminal, error) {
		id, ok := ids[t.Block]
		if !ok {
			return netlist.Terminal{}, errors.Errorf(
				"net %s: unknown block %q", net, t.Block)
		}

		return netlist.Terminal{Block: id, TilePin: t.Pin}, nil
	}

	for _, ns := range p.Nets {
		driver, err := terminal(ns.Name, ns.Driver)
		if err != nil {
			return nil, err
		}

		sinks := make([]netlist.Terminal, 0, len(ns.Sinks))
		for _, s := range ns.Sinks {
			t, err := terminal(ns.Name, s)
			if err != nil {
				return nil, err
			}
			sinks = append(sinks, t)
		}

		id, err := b.AddNet(ns.Name, driver, sinks...)
		if err != nil {
			return nil, err
		}

		if ns.Ignored {
			b.SetIgnored(id)
		}
	}

	for i, ms := range p.Macros {
		members := make([]netlist.MacroMember, 0, len(ms))
		for _, m := range ms {
			id, ok := ids[m.Block]
			if !ok {
				return nil, errors.Errorf("macro %d: unknown block %q", i, m.Block)
			}

			members = append(members, netlist.MacroMember{
				Block:  id,
				Offset: arch.Offset{X: m.DX, Y: m.DY, SubTile: m.DSub, Layer: m.DLayer},
			})
		}

		if err := b.AddMacro(members...); err != nil {
			return nil, errors.Wrapf(err, "macro %d", i)
		}
	}

	return b.Build()
}

func buildFlows(nl *netlist.Netlist, specs []FlowSpec) ([]noc.Flow, error) {
	flows := make([]noc.Flow, 0, len(specs))

	for i, f := range specs {
		src, ok := nl.BlockByName(f.Source)
		if !ok {
			return nil, errors.Errorf("flow %d: unknown source %q", i, f.Source)
		}

		sink, ok := nl.BlockByName(f.Sink)
		if !ok {
			return nil, errors.Errorf("flow %d: unknown sink %q", i, f.Sink)
		}

		flows = append(flows, noc.Flow{
			Source:            src,
			Sink:              sink,
			Bandwidth:         f.Bandwidth,
			LatencyConstraint: f.LatencyConstraint,
			Priority:          f.Priority,
		})
	}

	return flows, nil
}

// PlaceFixed puts the fixed blocks at their locations.
func (in *Instance) PlaceFixed(st *placement.State) error {
	for b, l := range in.Fixed {
		if err := st.Place(b, l); err != nil {
			return err
		}
	}

	return nil
}
