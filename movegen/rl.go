package movegen

import (
	"github.com/sarchlab/fplace/move"
	"github.com/sarchlab/fplace/stats"
)

// Move type counts of the learning generators.
const (
	// NumNonTimingMoveTypes are the moves that ignore criticality.
	NumNonTimingMoveTypes = 3
	// NumFirstStateMoveTypes are the moves of the early anneal agent.
	NumFirstStateMoveTypes = 4
)

// AgentConfig describes a learning generator.
type AgentConfig struct {
	Algorithm AgentAlgorithm
	Space     AgentSpace
	NumMoves  int
	Epsilon   float64
	// Gamma controls how fast old rewards fade. Negative averages all.
	Gamma float64
}

// RLMoveGenerator lets a bandit agent choose the move type, and optionally
// the block type, of every swap.
type RLMoveGenerator struct {
	ctx   *Context
	gens  []MoveTypeGenerator
	agent Agent
	cfg   AgentConfig
	// blockTypes maps agent block slots to logical type ids.
	blockTypes []int
}

// NewRLMoveGenerator creates a learning generator over the first
// cfg.NumMoves move types of gens.
func NewRLMoveGenerator(ctx *Context, gens []MoveTypeGenerator, cfg AgentConfig) *RLMoveGenerator {
	g := &RLMoveGenerator{ctx: ctx, gens: gens, cfg: cfg}

	if cfg.NumMoves <= 0 || cfg.NumMoves > len(gens) {
		g.cfg.NumMoves = len(gens)
	}

	numActions := g.cfg.NumMoves
	var ratio []float64

	if cfg.Space == MoveBlockType {
		total := float64(len(ctx.MovableBlocks()))
		for t := range ctx.movableByType {
			n := len(ctx.MovableOfType(t))
			if n == 0 {
				continue
			}

			g.blockTypes = append(g.blockTypes, t)
			ratio = append(ratio, float64(n)/total)
		}

		numActions *= len(g.blockTypes)
	}

	switch cfg.Algorithm {
	case Softmax:
		g.agent = NewSoftmaxAgent(ctx.Rand, numActions, g.cfg.NumMoves, ratio)
	default:
		g.agent = NewEpsilonGreedyAgent(ctx.Rand, numActions, g.cfg.NumMoves, cfg.Epsilon)
	}

	return g
}

// Agent returns the bandit agent.
func (g *RLMoveGenerator) Agent() Agent {
	return g.agent
}

// SetStep forwards the reward averaging of the next temperature.
func (g *RLMoveGenerator) SetStep(moveLim int) {
	g.agent.SetStep(g.cfg.Gamma, moveLim)
}

// ProposeMove implements MoveGenerator.
func (g *RLMoveGenerator) ProposeMove(
	ba *move.BlocksAffected,
	action *Action,
	rlim float64,
) move.CreateOutcome {
	a := g.agent.ProposeAction()
	action.MoveType = move.Type(a % g.cfg.NumMoves)
	action.BlockType = NoBlockType

	if g.blockTypes != nil {
		action.BlockType = g.blockTypes[a/g.cfg.NumMoves]
	}

	return g.gens[action.MoveType].Propose(ba, action.BlockType, rlim)
}

// ProcessOutcome implements MoveGenerator.
func (g *RLMoveGenerator) ProcessOutcome(reward float64, fn stats.RewardFunction) {
	g.agent.ProcessOutcome(reward, fn)
}
