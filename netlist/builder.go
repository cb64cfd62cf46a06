package netlist

import (
	"github.com/pkg/errors"

	"github.com/sarchlab/fplace/arch"
)

// Terminal names a block pin when adding nets.
type Terminal struct {
	Block   BlockID
	TilePin int
}

// Builder assembles a netlist.
type Builder struct {
	nl *Netlist
}

// NewBuilder creates an empty netlist builder.
func NewBuilder() *Builder {
	return &Builder{
		nl: &Netlist{
			blockNames: NewNameIDBinding(),
			netNames:   NewNameIDBinding(),
		},
	}
}

// AddBlock adds a block of a logical type.
func (b *Builder) AddBlock(name string, logicalType int) (BlockID, error) {
	id, ok := b.nl.blockNames.RegisterName(name)
	if !ok {
		return InvalidBlock, errors.Errorf("block %q defined twice", name)
	}

	b.nl.blocks = append(b.nl.blocks, Block{
		ID:   BlockID(id),
		Name: name,
		Type: logicalType,
	})

	return BlockID(id), nil
}

// MustAddBlock is AddBlock for netlists built in code. It panics on
// duplicated names.
func (b *Builder) MustAddBlock(name string, logicalType int) BlockID {
	id, err := b.AddBlock(name, logicalType)
	if err != nil {
		panic(err)
	}

	return id
}

// SetFixed pins a block to its initial location.
func (b *Builder) SetFixed(id BlockID) {
	b.nl.blocks[id].Fixed = true
}

// SetSequential marks a block as a timing start and end point.
func (b *Builder) SetSequential(id BlockID) {
	b.nl.blocks[id].Sequential = true
}

// SetRegion constrains a block to a floorplan region.
func (b *Builder) SetRegion(id BlockID, r arch.Region) {
	b.nl.blocks[id].Region = &r
}

// AddNet adds a net from the driver terminal to the sink terminals.
func (b *Builder) AddNet(
	name string,
	driver Terminal,
	sinks ...Terminal,
) (NetID, error) {
	for _, t := range append([]Terminal{driver}, sinks...) {
		if t.Block < 0 || int(t.Block) >= len(b.nl.blocks) {
			return InvalidNet, errors.Errorf(
				"net %q references unknown block %d", name, t.Block)
		}
	}

	id, ok := b.nl.netNames.RegisterName(name)
	if !ok {
		return InvalidNet, errors.Errorf("net %q defined twice", name)
	}

	net := Net{ID: NetID(id), Name: name}
	net.Pins = append(net.Pins, b.addPin(net.ID, 0, driver, Driver))

	for i, s := range sinks {
		net.Pins = append(net.Pins, b.addPin(net.ID, i+1, s, Sink))
	}

	b.nl.nets = append(b.nl.nets, net)

	return net.ID, nil
}

// MustAddNet is AddNet for netlists built in code.
func (b *Builder) MustAddNet(name string, driver Terminal, sinks ...Terminal) NetID {
	id, err := b.AddNet(name, driver, sinks...)
	if err != nil {
		panic(err)
	}

	return id
}

func (b *Builder) addPin(net NetID, index int, t Terminal, typ PinType) PinID {
	id := PinID(len(b.nl.pins))
	b.nl.pins = append(b.nl.pins, Pin{
		ID:       id,
		Block:    t.Block,
		Net:      net,
		NetIndex: index,
		TilePin:  t.TilePin,
		Type:     typ,
	})
	b.nl.blocks[t.Block].Pins = append(b.nl.blocks[t.Block].Pins, id)

	return id
}

// SetIgnored excludes a net from every cost.
func (b *Builder) SetIgnored(id NetID) {
	b.nl.nets[id].Ignored = true
}

// AddMacro adds a rigid macro. The first member is the head and must have a
// zero offset.
func (b *Builder) AddMacro(members ...MacroMember) error {
	if len(members) == 0 {
		return errors.New("macro has no members")
	}

	if !members[0].Offset.IsZero() {
		return errors.Errorf("macro head %d has a non-zero offset",
			members[0].Block)
	}

	b.nl.macros = append(b.nl.macros, Macro{
		Members: append([]MacroMember(nil), members...),
	})

	return nil
}

// Build validates and returns the netlist. The builder must not be used
// afterwards.
func (b *Builder) Build() (*Netlist, error) {
	nl := b.nl
	b.nl = nil

	inMacro := make(map[BlockID]int)
	for i, m := range nl.macros {
		offsets := make(map[arch.Offset]bool)
		for _, member := range m.Members {
			if member.Block < 0 || int(member.Block) >= len(nl.blocks) {
				return nil, errors.Errorf("macro %d references unknown block %d",
					i, member.Block)
			}

			if prev, dup := inMacro[member.Block]; dup {
				return nil, errors.Errorf("block %q is in macros %d and %d",
					nl.blocks[member.Block].Name, prev, i)
			}

			if offsets[member.Offset] {
				return nil, errors.Errorf("macro %d has two members at offset %v",
					i, member.Offset)
			}

			inMacro[member.Block] = i
			offsets[member.Offset] = true
		}
	}

	for _, net := range nl.nets {
		if !net.Ignored {
			nl.numConnections += len(net.Pins) - 1
		}
	}

	return nl, nil
}
