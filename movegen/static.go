package movegen

import (
	"github.com/pkg/errors"

	"github.com/sarchlab/fplace/move"
	"github.com/sarchlab/fplace/stats"
)

// StaticMoveGenerator draws the move type from fixed probabilities.
type StaticMoveGenerator struct {
	ctx        *Context
	gens       []MoveTypeGenerator
	cumulative []float64
}

// NewStaticMoveGenerator creates a generator from one probability per move
// type. Missing entries are zero.
func NewStaticMoveGenerator(ctx *Context, gens []MoveTypeGenerator, probs []float64) (*StaticMoveGenerator, error) {
	if len(probs) > len(gens) {
		return nil, errors.Errorf("%d move probabilities for %d move types",
			len(probs), len(gens))
	}

	g := &StaticMoveGenerator{ctx: ctx, gens: gens}

	total := 0.0
	for i := range gens {
		p := 0.0
		if i < len(probs) {
			p = probs[i]
		}

		if p < 0 {
			return nil, errors.Errorf("negative probability %g for %s",
				p, move.Type(i))
		}

		total += p
		g.cumulative = append(g.cumulative, total)
	}

	if total <= 0 {
		return nil, errors.New("move probabilities sum to zero")
	}

	return g, nil
}

// ProposeMove implements MoveGenerator.
func (g *StaticMoveGenerator) ProposeMove(
	ba *move.BlocksAffected,
	action *Action,
	rlim float64,
) move.CreateOutcome {
	t := move.Type(drawCumulative(g.ctx.Rand, g.cumulative))
	action.MoveType = t
	action.BlockType = NoBlockType

	return g.gens[t].Propose(ba, NoBlockType, rlim)
}

// ProcessOutcome implements MoveGenerator.
func (g *StaticMoveGenerator) ProcessOutcome(float64, stats.RewardFunction) {}
