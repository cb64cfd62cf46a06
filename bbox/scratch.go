package bbox

import "github.com/sarchlab/fplace/netlist"

func (c *Cache) pinXY(pin netlist.PinID) (x, y, layer int) {
	t := c.st.PinTileLoc(pin)
	return t.X, t.Y, t.Layer
}

// fromScratch builds a cube box with edge counts from the block map.
func (c *Cache) fromScratch(net netlist.NetID, sinks []int) (Box, Box) {
	x, y, _ := c.pinXY(c.nl.NetDriverPin(net))
	ax := seed(c.clampX(x))
	ay := seed(c.clampY(y))

	clear(sinks)

	for _, pin := range c.nl.NetSinks(net) {
		x, y, layer := c.pinXY(pin)
		ax.grow(c.clampX(x))
		ay.grow(c.clampY(y))
		sinks[layer]++
	}

	return join(ax, ay)
}

// nonUpdatable builds a cube box without edge counts.
func (c *Cache) nonUpdatable(net netlist.NetID, sinks []int) Box {
	x, y, _ := c.pinXY(c.nl.NetDriverPin(net))
	b := Box{XMin: x, XMax: x, YMin: y, YMax: y}

	clear(sinks)

	for _, pin := range c.nl.NetSinks(net) {
		x, y, layer := c.pinXY(pin)
		b.include(x, y)
		sinks[layer]++
	}

	return c.clampBox(b)
}

// layerFromScratch builds per-layer boxes with edge counts. Every layer is
// seeded with the driver.
func (c *Cache) layerFromScratch(
	net netlist.NetID,
	coords, edges []Box,
	sinks []int,
) {
	x, y, _ := c.pinXY(c.nl.NetDriverPin(net))
	xs := make([]axis, c.layers)
	ys := make([]axis, c.layers)

	for l := range xs {
		xs[l] = seed(c.clampX(x))
		ys[l] = seed(c.clampY(y))
	}

	clear(sinks)

	for _, pin := range c.nl.NetSinks(net) {
		x, y, layer := c.pinXY(pin)
		xs[layer].grow(c.clampX(x))
		ys[layer].grow(c.clampY(y))
		sinks[layer]++
	}

	for l := range xs {
		coords[l], edges[l] = join(xs[l], ys[l])
	}
}

// layerNonUpdatable builds per-layer boxes without edge counts.
func (c *Cache) layerNonUpdatable(net netlist.NetID, coords []Box, sinks []int) {
	x, y, _ := c.pinXY(c.nl.NetDriverPin(net))
	for l := range coords {
		coords[l] = Box{XMin: x, XMax: x, YMin: y, YMax: y}
	}

	clear(sinks)

	for _, pin := range c.nl.NetSinks(net) {
		x, y, layer := c.pinXY(pin)
		coords[layer].include(x, y)
		sinks[layer]++
	}

	for l := range coords {
		coords[l] = c.clampBox(coords[l])
	}
}

func (b *Box) include(x, y int) {
	if x < b.XMin {
		b.XMin = x
	} else if x > b.XMax {
		b.XMax = x
	}

	if y < b.YMin {
		b.YMin = y
	} else if y > b.YMax {
		b.YMax = y
	}
}

func (c *Cache) clampBox(b Box) Box {
	return Box{
		XMin: c.clampX(b.XMin),
		XMax: c.clampX(b.XMax),
		YMin: c.clampY(b.YMin),
		YMax: c.clampY(b.YMax),
	}
}

// CheckNet recomputes a net by brute force into fresh storage, leaving the
// cache untouched. Per-layer caches get one box per layer.
func (c *Cache) CheckNet(net netlist.NetID) ([]Box, []int) {
	sinks := make([]int, c.layers)

	if c.cube {
		return []Box{c.nonUpdatable(net, sinks)}, sinks
	}

	coords := make([]Box, c.layers)
	c.layerNonUpdatable(net, coords, sinks)

	return coords, sinks
}

// ScratchNet recomputes a net from scratch with edge counts into fresh
// storage.
func (c *Cache) ScratchNet(net netlist.NetID) (coords, edges []Box, sinks []int) {
	sinks = make([]int, c.layers)

	if c.cube {
		b, e := c.fromScratch(net, sinks)
		return []Box{b}, []Box{e}, sinks
	}

	coords = make([]Box, c.layers)
	edges = make([]Box, c.layers)
	c.layerFromScratch(net, coords, edges, sinks)

	return coords, edges, sinks
}

// Committed returns the committed boxes of a net in the shape CheckNet
// uses.
func (c *Cache) Committed(net netlist.NetID) []Box {
	if c.cube {
		return []Box{c.coords[net]}
	}

	return c.layerCoords[net]
}
