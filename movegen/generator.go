// Package movegen proposes swaps for the annealer: random, median and
// centroid directed moves, moves of timing-critical blocks, NoC router
// swaps, manual moves, and generators that learn which move to try.
package movegen

import (
	"github.com/sarchlab/fplace/move"
	"github.com/sarchlab/fplace/netlist"
	"github.com/sarchlab/fplace/rng"
	"github.com/sarchlab/fplace/stats"
)

// Action is the move chosen for one swap. BlockType is the logical block
// type to move, or -1 for any.
type Action struct {
	MoveType  move.Type
	BlockType int
}

// NoBlockType lets a generator move a block of any type.
const NoBlockType = -1

// A MoveGenerator proposes swaps and learns from their outcome.
type MoveGenerator interface {
	// ProposeMove records a swap in ba. It fills in the action it took.
	ProposeMove(ba *move.BlocksAffected, action *Action, rlim float64) move.CreateOutcome
	// ProcessOutcome feeds back the reward of the last proposed swap.
	ProcessOutcome(reward float64, fn stats.RewardFunction)
}

// Criticalities exposes the timing view directed moves use.
type Criticalities interface {
	PinCriticality(sink netlist.PinID) float64
	HighlyCriticalPins() []netlist.PinID
}

// uniformCriticalities weighs every connection the same.
type uniformCriticalities struct{}

func (uniformCriticalities) PinCriticality(netlist.PinID) float64 { return 1 }

func (uniformCriticalities) HighlyCriticalPins() []netlist.PinID { return nil }

// DefaultHighFanoutNet is the fanout above which nets are ignored by
// directed moves.
const DefaultHighFanoutNet = 10

// MoveTypeGenerator proposes one kind of move for a given block type.
type MoveTypeGenerator interface {
	Propose(ba *move.BlocksAffected, blockType int, rlim float64) move.CreateOutcome
}

// NewMoveTypeGenerators builds one generator per automatic move type.
func NewMoveTypeGenerators(ctx *Context) []MoveTypeGenerator {
	gens := make([]MoveTypeGenerator, move.NumAutoTypes)
	gens[move.Uniform] = &UniformMove{ctx: ctx}
	gens[move.Median] = &MedianMove{ctx: ctx}
	gens[move.Centroid] = &CentroidMove{ctx: ctx}
	gens[move.WeightedCentroid] = &CentroidMove{ctx: ctx, weighted: true}
	gens[move.WeightedMedian] = &WeightedMedianMove{ctx: ctx}
	gens[move.CriticalUniform] = &CriticalUniformMove{ctx: ctx}

	return gens
}

func drawCumulative(r *rng.Stream, cumulative []float64) int {
	p := r.Float64() * cumulative[len(cumulative)-1]

	for i, c := range cumulative {
		if p < c {
			return i
		}
	}

	return len(cumulative) - 1
}
