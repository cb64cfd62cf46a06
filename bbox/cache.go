package bbox

import (
	"github.com/sarchlab/fplace/arch"
	"github.com/sarchlab/fplace/netlist"
	"github.com/sarchlab/fplace/placement"
)

// Cache holds the committed box of every net, the proposed box computed
// during the current swap, and the per-net update flags.
//
// Boxes are cube boxes (one hull over every layer) or per-layer boxes (one
// 2-D hull per layer), fixed when the cache is created. Every coordinate is
// clipped to the inner grid [1, W-2] x [1, H-2].
type Cache struct {
	st     *placement.State
	nl     *netlist.Netlist
	cube   bool
	layers int
	xHigh  int
	yHigh  int

	coords      []Box
	edges       []Box
	layerCoords [][]Box
	layerEdges  [][]Box
	sinks       [][]int

	tsCoords      []Box
	tsEdges       []Box
	tsLayerCoords [][]Box
	tsLayerEdges  [][]Box
	tsSinks       [][]int

	flags []Flag
}

// NewCache allocates a cache for every net of the placement. Boxes are not
// valid until LoadAll is called.
func NewCache(st *placement.State, cube bool) *Cache {
	nl := st.Netlist()
	g := st.Grid()
	n := nl.NumNets()

	c := &Cache{
		st:      st,
		nl:      nl,
		cube:    cube,
		layers:  g.NumLayers(),
		xHigh:   g.Width() - 2,
		yHigh:   g.Height() - 2,
		sinks:   makeCounts(n, g.NumLayers()),
		tsSinks: makeCounts(n, g.NumLayers()),
		flags:   make([]Flag, n),
	}

	if cube {
		c.coords = make([]Box, n)
		c.edges = make([]Box, n)
		c.tsCoords = make([]Box, n)
		c.tsEdges = make([]Box, n)
	} else {
		c.layerCoords = makeLayerBoxes(n, c.layers)
		c.layerEdges = makeLayerBoxes(n, c.layers)
		c.tsLayerCoords = makeLayerBoxes(n, c.layers)
		c.tsLayerEdges = makeLayerBoxes(n, c.layers)
	}

	return c
}

func makeCounts(n, layers int) [][]int {
	out := make([][]int, n)
	for i := range out {
		out[i] = make([]int, layers)
	}

	return out
}

func makeLayerBoxes(n, layers int) [][]Box {
	out := make([][]Box, n)
	for i := range out {
		out[i] = make([]Box, layers)
	}

	return out
}

// IsCube tells if the cache holds cube boxes.
func (c *Cache) IsCube() bool { return c.cube }

// NumLayers returns the number of layers per-layer boxes span.
func (c *Cache) NumLayers() int { return c.layers }

// Flag returns the update flag of a net.
func (c *Cache) Flag(net netlist.NetID) Flag { return c.flags[net] }

// Coords returns the committed cube box of a net.
func (c *Cache) Coords(net netlist.NetID) Box { return c.coords[net] }

// Edges returns the committed edge counts of a cube box.
func (c *Cache) Edges(net netlist.NetID) Box { return c.edges[net] }

// LayerCoords returns the committed per-layer boxes of a net.
func (c *Cache) LayerCoords(net netlist.NetID) []Box { return c.layerCoords[net] }

// LayerEdges returns the committed per-layer edge counts of a net.
func (c *Cache) LayerEdges(net netlist.NetID) []Box { return c.layerEdges[net] }

// SinkCount returns the committed number of sinks per layer.
func (c *Cache) SinkCount(net netlist.NetID) []int { return c.sinks[net] }

// ProposedCoords returns the cube box computed during the current swap.
func (c *Cache) ProposedCoords(net netlist.NetID) Box { return c.tsCoords[net] }

// ProposedEdges returns the edge counts computed during the current swap.
func (c *Cache) ProposedEdges(net netlist.NetID) Box { return c.tsEdges[net] }

// ProposedLayerCoords returns the per-layer boxes computed during the
// current swap.
func (c *Cache) ProposedLayerCoords(net netlist.NetID) []Box {
	return c.tsLayerCoords[net]
}

// ProposedSinkCount returns the sinks per layer computed during the current
// swap.
func (c *Cache) ProposedSinkCount(net netlist.NetID) []int { return c.tsSinks[net] }

// LoadAll rebuilds the committed box of every net that is not ignored.
func (c *Cache) LoadAll(method Method) {
	for i := 0; i < c.nl.NumNets(); i++ {
		net := netlist.NetID(i)
		if c.nl.Net(net).Ignored {
			continue
		}

		c.Load(net, method)
	}
}

// Load rebuilds the committed box of one net. Under Normal, nets with at
// least SmallNet sinks also get edge counts.
func (c *Cache) Load(net netlist.NetID, method Method) {
	large := len(c.nl.NetSinks(net)) >= SmallNet

	switch {
	case c.cube && large && method == Normal:
		c.coords[net], c.edges[net] = c.fromScratch(net, c.sinks[net])
	case c.cube:
		c.coords[net] = c.nonUpdatable(net, c.sinks[net])
	case large && method == Normal:
		c.layerFromScratch(net, c.layerCoords[net], c.layerEdges[net], c.sinks[net])
	default:
		c.layerNonUpdatable(net, c.layerCoords[net], c.sinks[net])
	}

	c.flags[net] = NotUpdatedYet
}

// UpdatePin computes the proposed box of a net after one of its pins moved
// from the block location from to the block location to. The block map must
// already hold the post-move locations.
func (c *Cache) UpdatePin(net netlist.NetID, pin netlist.PinID, from, to arch.Loc) {
	if len(c.nl.NetSinks(net)) < SmallNet {
		if c.flags[net] == NotUpdatedYet {
			if c.cube {
				c.tsCoords[net] = c.nonUpdatable(net, c.tsSinks[net])
			} else {
				c.layerNonUpdatable(net, c.tsLayerCoords[net], c.tsSinks[net])
			}
			c.flags[net] = UpdatedOnce
		}

		return
	}

	p := c.nl.Pin(pin)
	oldTile := c.pinTile(from, p.TilePin)
	newTile := c.pinTile(to, p.TilePin)
	isDriver := p.Type == netlist.Driver

	if c.cube {
		c.updateCube(net, oldTile, newTile, isDriver)
	} else {
		c.updateLayer(net, oldTile, newTile, isDriver)
	}
}

func (c *Cache) pinTile(l arch.Loc, tilePin int) arch.TileLoc {
	t := l.Tile()
	dx, dy := c.st.Grid().TileAt(t).PinOffset(tilePin)
	t.X = c.clampX(t.X + dx)
	t.Y = c.clampY(t.Y + dy)

	return t
}

func (c *Cache) clampX(x int) int { return max(min(x, c.xHigh), 1) }

func (c *Cache) clampY(y int) int { return max(min(y, c.yHigh), 1) }

func (c *Cache) updateCube(net netlist.NetID, from, to arch.TileLoc, isDriver bool) {
	if c.flags[net] == GotFromScratch {
		return
	}

	coords, edges := c.tsCoords[net], c.tsEdges[net]
	sinks := c.tsSinks[net]
	if c.flags[net] == NotUpdatedYet {
		coords, edges = c.coords[net], c.edges[net]
		copy(c.tsSinks[net], c.sinks[net])
		c.flags[net] = UpdatedOnce
	}

	x, okX := xAxis(coords, edges).shift(from.X, to.X)
	y, okY := yAxis(coords, edges).shift(from.Y, to.Y)
	if !okX || !okY {
		c.tsCoords[net], c.tsEdges[net] = c.fromScratch(net, c.tsSinks[net])
		c.flags[net] = GotFromScratch

		return
	}

	c.tsCoords[net], c.tsEdges[net] = join(x, y)

	if !isDriver && from.Layer != to.Layer {
		sinks[from.Layer]--
		sinks[to.Layer]++
	}
}

func (c *Cache) updateLayer(net netlist.NetID, from, to arch.TileLoc, isDriver bool) {
	if c.flags[net] == GotFromScratch {
		return
	}

	if c.flags[net] == NotUpdatedYet {
		copy(c.tsLayerCoords[net], c.layerCoords[net])
		copy(c.tsLayerEdges[net], c.layerEdges[net])
		copy(c.tsSinks[net], c.sinks[net])
		c.flags[net] = UpdatedOnce
	}

	// The driver seeds the hull of every layer, so moving it touches them all.
	if isDriver {
		c.rebuildLayers(net)
		return
	}

	coords, edges := c.tsLayerCoords[net], c.tsLayerEdges[net]
	c.tsSinks[net][from.Layer]--
	c.tsSinks[net][to.Layer]++

	if from.Layer == to.Layer {
		l := from.Layer
		x, okX := xAxis(coords[l], edges[l]).shift(from.X, to.X)
		y, okY := yAxis(coords[l], edges[l]).shift(from.Y, to.Y)
		if !okX || !okY {
			c.rebuildLayers(net)
			return
		}

		coords[l], edges[l] = join(x, y)

		return
	}

	x, okX := xAxis(coords[from.Layer], edges[from.Layer]).remove(from.X)
	y, okY := yAxis(coords[from.Layer], edges[from.Layer]).remove(from.Y)
	if !okX || !okY {
		c.rebuildLayers(net)
		return
	}

	coords[from.Layer], edges[from.Layer] = join(x, y)

	x = xAxis(coords[to.Layer], edges[to.Layer]).add(to.X)
	y = yAxis(coords[to.Layer], edges[to.Layer]).add(to.Y)
	coords[to.Layer], edges[to.Layer] = join(x, y)
}

func (c *Cache) rebuildLayers(net netlist.NetID) {
	c.layerFromScratch(net, c.tsLayerCoords[net], c.tsLayerEdges[net], c.tsSinks[net])
	c.flags[net] = GotFromScratch
}

// Commit makes the proposed box of a net the committed one.
func (c *Cache) Commit(net netlist.NetID) {
	large := len(c.nl.NetSinks(net)) >= SmallNet

	if c.cube {
		c.coords[net] = c.tsCoords[net]
		if large {
			c.edges[net] = c.tsEdges[net]
		}
	} else {
		copy(c.layerCoords[net], c.tsLayerCoords[net])
		if large {
			copy(c.layerEdges[net], c.tsLayerEdges[net])
		}
	}

	copy(c.sinks[net], c.tsSinks[net])
	c.flags[net] = NotUpdatedYet
}

// Reset drops the proposed box of a net.
func (c *Cache) Reset(net netlist.NetID) {
	c.flags[net] = NotUpdatedYet
}
