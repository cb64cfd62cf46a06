package movegen

import (
	"log/slog"

	"github.com/sarchlab/fplace/arch"
	"github.com/sarchlab/fplace/move"
	"github.com/sarchlab/fplace/stats"
)

// ManualMove asks for one block to move to a location.
type ManualMove struct {
	Block string
	To    arch.Loc
}

// ManualMoveGenerator proposes the moves it receives from a channel. The
// channel is polled without blocking; with no move pending the proposal
// aborts.
type ManualMoveGenerator struct {
	ctx   *Context
	moves <-chan ManualMove
}

// NewManualMoveGenerator creates a generator reading from moves.
func NewManualMoveGenerator(ctx *Context, moves <-chan ManualMove) *ManualMoveGenerator {
	return &ManualMoveGenerator{ctx: ctx, moves: moves}
}

// ProposeMove implements MoveGenerator.
func (g *ManualMoveGenerator) ProposeMove(
	ba *move.BlocksAffected,
	action *Action,
	_ float64,
) move.CreateOutcome {
	action.MoveType = move.Manual
	action.BlockType = NoBlockType

	var m ManualMove
	select {
	case m = <-g.moves:
	default:
		return move.Abort
	}

	st := g.ctx.State
	b, ok := st.Netlist().BlockByName(m.Block)
	if !ok {
		slog.Warn("Manual move of unknown block", "Block", m.Block)
		return move.Abort
	}

	if st.Netlist().Block(b).Fixed || !st.IsLegal(b, m.To) {
		slog.Warn("Illegal manual move", "Block", m.Block, "To", m.To.String())
		return move.Abort
	}

	return ba.CreateMove(st, b, m.To)
}

// ProcessOutcome implements MoveGenerator.
func (g *ManualMoveGenerator) ProcessOutcome(float64, stats.RewardFunction) {}
