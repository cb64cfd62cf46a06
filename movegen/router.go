package movegen

import (
	"github.com/sarchlab/fplace/move"
	"github.com/sarchlab/fplace/netlist"
)

// RouterSwap moves a random NoC router block to a random router location
// within rlim, swapping with the router found there.
type RouterSwap struct {
	ctx     *Context
	routers []netlist.BlockID
}

// NewRouterSwap creates a router swap over the movable router blocks.
func NewRouterSwap(ctx *Context, routers []netlist.BlockID) *RouterSwap {
	s := &RouterSwap{ctx: ctx}

	for _, b := range routers {
		if !ctx.State.Netlist().Block(b).Fixed {
			s.routers = append(s.routers, b)
		}
	}

	return s
}

// Propose records a router swap.
func (s *RouterSwap) Propose(ba *move.BlocksAffected, rlim float64) move.CreateOutcome {
	if len(s.routers) == 0 {
		return move.Abort
	}

	b := s.routers[s.ctx.Rand.Intn(len(s.routers))]

	to, ok := s.ctx.FindToLocUniform(b, rlim)
	if !ok {
		return move.Abort
	}

	return ba.CreateMove(s.ctx.State, b, to)
}

// ShouldSwap draws whether the next swap is a router swap, given the share
// of router swaps in percent.
func (s *RouterSwap) ShouldSwap(percentage float64) bool {
	return s.ctx.Rand.Float64()*100 < percentage
}
