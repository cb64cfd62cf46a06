package movegen

import (
	"math"
	"sort"

	"github.com/sarchlab/fplace/arch"
	"github.com/sarchlab/fplace/netlist"
	"github.com/sarchlab/fplace/placement"
	"github.com/sarchlab/fplace/rng"
)

// findToLocAttempts bounds the random draws for a target location.
const findToLocAttempts = 10

// Context is the placement view every generator shares.
type Context struct {
	State         *placement.State
	Rand          *rng.Stream
	Crits         Criticalities
	HighFanoutNet int

	movable       []netlist.BlockID
	movableByType [][]netlist.BlockID
	legal         []typeIndex
}

// typeIndex lists the legal locations of one logical type by column.
type typeIndex struct {
	xs   []int
	cols map[int][]arch.Loc
}

// NewContext indexes the movable blocks and the legal locations of every
// logical type. A nil crits weighs every connection the same.
func NewContext(st *placement.State, r *rng.Stream, crits Criticalities) *Context {
	if crits == nil {
		crits = uniformCriticalities{}
	}

	g := st.Grid()
	nl := st.Netlist()

	c := &Context{
		State:         st,
		Rand:          r,
		Crits:         crits,
		HighFanoutNet: DefaultHighFanoutNet,
		movableByType: make([][]netlist.BlockID, len(g.LogicalTypes())),
		legal:         make([]typeIndex, len(g.LogicalTypes())),
	}

	for i := 0; i < nl.NumBlocks(); i++ {
		b := netlist.BlockID(i)
		blk := nl.Block(b)
		if blk.Fixed {
			continue
		}

		c.movable = append(c.movable, b)
		c.movableByType[blk.Type] = append(c.movableByType[blk.Type], b)
	}

	for _, lt := range g.LogicalTypes() {
		c.legal[lt.ID] = indexType(g.LegalLocs(lt.ID))
	}

	return c
}

func indexType(locs []arch.Loc) typeIndex {
	idx := typeIndex{cols: make(map[int][]arch.Loc)}

	for _, l := range locs {
		if _, ok := idx.cols[l.X]; !ok {
			idx.xs = append(idx.xs, l.X)
		}
		idx.cols[l.X] = append(idx.cols[l.X], l)
	}

	sort.Ints(idx.xs)

	for _, col := range idx.cols {
		sort.SliceStable(col, func(i, j int) bool { return col[i].Y < col[j].Y })
	}

	return idx
}

// MovableBlocks returns the blocks that are not fixed.
func (c *Context) MovableBlocks() []netlist.BlockID {
	return c.movable
}

// MovableOfType returns the movable blocks of a logical type.
func (c *Context) MovableOfType(t int) []netlist.BlockID {
	if t < 0 || t >= len(c.movableByType) {
		return nil
	}

	return c.movableByType[t]
}

// PickBlock draws a random movable block, of the given type unless it is
// NoBlockType. It returns InvalidBlock when there is none.
func (c *Context) PickBlock(blockType int) netlist.BlockID {
	blocks := c.movable
	if blockType != NoBlockType {
		blocks = c.MovableOfType(blockType)
	}

	if len(blocks) == 0 {
		return netlist.InvalidBlock
	}

	return blocks[c.Rand.Intn(len(blocks))]
}

// window is an inclusive box of grid cells.
type window struct {
	xlo, xhi, ylo, yhi int
}

// rangeWindow returns the cells within rlim of a point, on the grid.
func (c *Context) rangeWindow(x, y int, rlim float64) window {
	g := c.State.Grid()
	r := g.Width() + g.Height()

	if !math.IsInf(rlim, 1) {
		r = max(int(rlim), 1)
	}

	return window{
		xlo: max(x-r, 0), xhi: min(x+r, g.Width()-1),
		ylo: max(y-r, 0), yhi: min(y+r, g.Height()-1),
	}
}

// FindToLoc draws a random legal location for b inside the window, other
// than its current location.
func (c *Context) findToLoc(b netlist.BlockID, w window) (arch.Loc, bool) {
	idx := c.legal[c.State.Netlist().Block(b).Type]
	from := c.State.Location(b)

	lo := sort.SearchInts(idx.xs, w.xlo)
	hi := sort.SearchInts(idx.xs, w.xhi+1)
	if lo >= hi {
		return arch.Loc{}, false
	}

	for i := 0; i < findToLocAttempts; i++ {
		col := idx.cols[idx.xs[lo+c.Rand.Intn(hi-lo)]]

		ylo := sort.Search(len(col), func(k int) bool { return col[k].Y >= w.ylo })
		yhi := sort.Search(len(col), func(k int) bool { return col[k].Y > w.yhi })
		if ylo >= yhi {
			continue
		}

		to := col[ylo+c.Rand.Intn(yhi-ylo)]
		if to == from || !c.State.IsLegal(b, to) {
			continue
		}

		return to, true
	}

	return arch.Loc{}, false
}

// FindToLocUniform draws a random legal target within rlim of the block.
func (c *Context) FindToLocUniform(b netlist.BlockID, rlim float64) (arch.Loc, bool) {
	from := c.State.Location(b)
	return c.findToLoc(b, c.rangeWindow(from.X, from.Y, rlim))
}

// netTooLarge tells if directed moves skip a net.
func (c *Context) netTooLarge(net netlist.NetID) bool {
	n := c.State.Netlist().Net(net)
	return n.Ignored || len(n.Pins) > c.HighFanoutNet
}
