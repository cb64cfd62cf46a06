package movegen

import (
	"math"
	"sort"

	"github.com/sarchlab/fplace/arch"
	"github.com/sarchlab/fplace/move"
	"github.com/sarchlab/fplace/netlist"
)

// DirectedMoveRlim bounds the search radius around the point a directed
// move aims for.
const DirectedMoveRlim = 3

// UniformMove moves a random block to a random location within rlim.
type UniformMove struct {
	ctx *Context
}

// Propose implements MoveTypeGenerator.
func (m *UniformMove) Propose(ba *move.BlocksAffected, blockType int, rlim float64) move.CreateOutcome {
	b := m.ctx.PickBlock(blockType)
	if b == netlist.InvalidBlock {
		return move.Abort
	}

	to, ok := m.ctx.FindToLocUniform(b, rlim)
	if !ok {
		return move.Abort
	}

	return ba.CreateMove(m.ctx.State, b, to)
}

// CriticalUniformMove moves the driver of a highly critical connection to a
// random location within rlim.
type CriticalUniformMove struct {
	ctx *Context
}

// Propose implements MoveTypeGenerator.
func (m *CriticalUniformMove) Propose(ba *move.BlocksAffected, blockType int, rlim float64) move.CreateOutcome {
	pins := m.ctx.Crits.HighlyCriticalPins()
	if len(pins) == 0 {
		return move.Abort
	}

	nl := m.ctx.State.Netlist()
	sink := pins[m.ctx.Rand.Intn(len(pins))]
	b := nl.NetDriverBlock(nl.Pin(sink).Net)

	blk := nl.Block(b)
	if blk.Fixed || (blockType != NoBlockType && blk.Type != blockType) {
		return move.Abort
	}

	to, ok := m.ctx.FindToLocUniform(b, rlim)
	if !ok {
		return move.Abort
	}

	return ba.CreateMove(m.ctx.State, b, to)
}

// findToLocDirected draws a target around a point, within the smaller of
// rlim and DirectedMoveRlim.
func (c *Context) findToLocDirected(b netlist.BlockID, x, y int, rlim float64) (arch.Loc, bool) {
	return c.findToLoc(b, c.rangeWindow(x, y, math.Min(rlim, DirectedMoveRlim)))
}

// CentroidMove moves a block towards the centroid of the blocks it connects
// to. The weighted variant weighs each connection by its criticality.
type CentroidMove struct {
	ctx      *Context
	weighted bool
}

// Propose implements MoveTypeGenerator.
func (m *CentroidMove) Propose(ba *move.BlocksAffected, blockType int, rlim float64) move.CreateOutcome {
	b := m.ctx.PickBlock(blockType)
	if b == netlist.InvalidBlock {
		return move.Abort
	}

	x, y, ok := m.ctx.Centroid(b, m.weighted)
	if !ok {
		return move.Abort
	}

	to, ok := m.ctx.findToLocDirected(b, x, y, rlim)
	if !ok {
		return move.Abort
	}

	return ba.CreateMove(m.ctx.State, b, to)
}

// Centroid returns the weighted average location of the pins a block
// connects to: every sink of the nets it drives and the driver of every net
// it sinks.
func (c *Context) Centroid(b netlist.BlockID, weighted bool) (x, y int, ok bool) {
	st := c.State
	nl := st.Netlist()

	var accX, accY, accW float64
	add := func(p netlist.PinID, w float64) {
		t := st.PinTileLoc(p)
		accX += float64(t.X) * w
		accY += float64(t.Y) * w
		accW += w
	}

	weight := func(sink netlist.PinID) float64 {
		if weighted {
			return c.Crits.PinCriticality(sink)
		}

		return 1
	}

	for _, p := range nl.Block(b).Pins {
		pin := nl.Pin(p)
		if c.netTooLarge(pin.Net) {
			continue
		}

		if pin.Type == netlist.Driver {
			for _, sink := range nl.NetSinks(pin.Net) {
				add(sink, weight(sink))
			}

			continue
		}

		add(nl.NetDriverPin(pin.Net), weight(p))
	}

	if accW <= 0 {
		return 0, 0, false
	}

	return int(math.Round(accX / accW)), int(math.Round(accY / accW)), true
}

// MedianMove moves a block into the median region of the bounding boxes of
// its nets, each box computed without the block.
type MedianMove struct {
	ctx *Context
}

// Propose implements MoveTypeGenerator.
func (m *MedianMove) Propose(ba *move.BlocksAffected, blockType int, rlim float64) move.CreateOutcome {
	b := m.ctx.PickBlock(blockType)
	if b == netlist.InvalidBlock {
		return move.Abort
	}

	xs, ys := m.ctx.edgeCoords(b, false)
	if len(xs) == 0 {
		return move.Abort
	}

	mx := (xs[(len(xs)-1)/2].v + xs[(len(xs)-1)/2+1].v) / 2
	my := (ys[(len(ys)-1)/2].v + ys[(len(ys)-1)/2+1].v) / 2

	to, ok := m.ctx.findToLocDirected(b, mx, my, rlim)
	if !ok {
		return move.Abort
	}

	return ba.CreateMove(m.ctx.State, b, to)
}

// WeightedMedianMove moves a block towards the criticality weighted median of
// the bounding boxes of its nets.
type WeightedMedianMove struct {
	ctx *Context
}

// Propose implements MoveTypeGenerator.
func (m *WeightedMedianMove) Propose(ba *move.BlocksAffected, blockType int, rlim float64) move.CreateOutcome {
	b := m.ctx.PickBlock(blockType)
	if b == netlist.InvalidBlock {
		return move.Abort
	}

	xs, ys := m.ctx.edgeCoords(b, true)
	if len(xs) == 0 {
		return move.Abort
	}

	to, ok := m.ctx.findToLocDirected(b, weightedMedian(xs), weightedMedian(ys), rlim)
	if !ok {
		return move.Abort
	}

	return ba.CreateMove(m.ctx.State, b, to)
}

type weightedCoord struct {
	v int
	w float64
}

// edgeCoords collects, for every net of b, the edges of the net bounding box
// computed without the pins of b. Both results are sorted. Weights are the
// criticality of the connection through b when weighted, else 1.
func (c *Context) edgeCoords(b netlist.BlockID, weighted bool) (xs, ys []weightedCoord) {
	st := c.State
	nl := st.Netlist()

	for _, p := range nl.Block(b).Pins {
		pin := nl.Pin(p)
		if c.netTooLarge(pin.Net) {
			continue
		}

		box, ok := c.boxExcluding(pin.Net, b)
		if !ok {
			continue
		}

		w := 1.0
		if weighted {
			w = c.pinWeight(p)
		}

		xs = append(xs, weightedCoord{box[0], w}, weightedCoord{box[1], w})
		ys = append(ys, weightedCoord{box[2], w}, weightedCoord{box[3], w})
	}

	byValue := func(s []weightedCoord) {
		sort.SliceStable(s, func(i, j int) bool { return s[i].v < s[j].v })
	}
	byValue(xs)
	byValue(ys)

	return xs, ys
}

// pinWeight is the criticality of a sink pin, or of the most critical sink
// of a driver pin.
func (c *Context) pinWeight(p netlist.PinID) float64 {
	nl := c.State.Netlist()
	pin := nl.Pin(p)

	if pin.Type == netlist.Sink {
		return c.Crits.PinCriticality(p)
	}

	w := 0.0
	for _, sink := range nl.NetSinks(pin.Net) {
		w = math.Max(w, c.Crits.PinCriticality(sink))
	}

	return w
}

// boxExcluding returns xmin, xmax, ymin, ymax over the pins of a net that do
// not belong to b.
func (c *Context) boxExcluding(net netlist.NetID, b netlist.BlockID) ([4]int, bool) {
	st := c.State
	nl := st.Netlist()

	box := [4]int{math.MaxInt, math.MinInt, math.MaxInt, math.MinInt}
	found := false

	for _, p := range nl.Net(net).Pins {
		if nl.Pin(p).Block == b {
			continue
		}

		t := st.PinTileLoc(p)
		box[0] = min(box[0], t.X)
		box[1] = max(box[1], t.X)
		box[2] = min(box[2], t.Y)
		box[3] = max(box[3], t.Y)
		found = true
	}

	return box, found
}

// weightedMedian returns the first coordinate at which the cumulative weight
// reaches half of the total. Coordinates must be sorted.
func weightedMedian(s []weightedCoord) int {
	total := 0.0
	for _, c := range s {
		total += c.w
	}

	if total <= 0 {
		return s[(len(s)-1)/2].v
	}

	acc := 0.0
	for _, c := range s {
		acc += c.w
		if acc >= total/2 {
			return c.v
		}
	}

	return s[len(s)-1].v
}
