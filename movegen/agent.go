package movegen

import (
	"math"

	"github.com/pkg/errors"

	"github.com/sarchlab/fplace/move"
	"github.com/sarchlab/fplace/rng"
	"github.com/sarchlab/fplace/stats"
)

// AgentAlgorithm selects the bandit agent of a learning generator.
type AgentAlgorithm int

// Agent algorithms.
const (
	EpsilonGreedy AgentAlgorithm = iota
	Softmax
)

func (a AgentAlgorithm) String() string {
	if a == Softmax {
		return "softmax"
	}

	return "e_greedy"
}

// ParseAgentAlgorithm parses "e_greedy" or "softmax".
func ParseAgentAlgorithm(s string) (AgentAlgorithm, error) {
	switch s {
	case "e_greedy":
		return EpsilonGreedy, nil
	case "softmax":
		return Softmax, nil
	}

	return EpsilonGreedy, errors.Errorf("unknown agent algorithm %q", s)
}

// MarshalText writes the algorithm name.
func (a AgentAlgorithm) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

// UnmarshalText parses an algorithm name.
func (a *AgentAlgorithm) UnmarshalText(text []byte) error {
	v, err := ParseAgentAlgorithm(string(text))
	if err != nil {
		return err
	}

	*a = v

	return nil
}

// AgentSpace selects what an agent chooses.
type AgentSpace int

// Agent spaces.
const (
	// MoveType agents choose the move type only.
	MoveType AgentSpace = iota
	// MoveBlockType agents choose a block type and a move type.
	MoveBlockType
)

func (s AgentSpace) String() string {
	if s == MoveBlockType {
		return "move_block_type"
	}

	return "move_type"
}

// ParseAgentSpace parses "move_type" or "move_block_type".
func ParseAgentSpace(s string) (AgentSpace, error) {
	switch s {
	case "move_type":
		return MoveType, nil
	case "move_block_type":
		return MoveBlockType, nil
	}

	return MoveType, errors.Errorf("unknown agent space %q", s)
}

// MarshalText writes the space name.
func (s AgentSpace) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText parses a space name.
func (s *AgentSpace) UnmarshalText(text []byte) error {
	v, err := ParseAgentSpace(string(text))
	if err != nil {
		return err
	}

	*s = v

	return nil
}

// moveRuntime is the relative cost of each move type, used to amortize
// runtime aware rewards.
var moveRuntime = [move.NumAutoTypes]float64{
	move.Uniform:          1.0,
	move.Median:           3.6,
	move.Centroid:         5.4,
	move.WeightedCentroid: 2.5,
	move.WeightedMedian:   2.1,
	move.CriticalUniform:  0.8,
}

// An Agent picks one of a fixed set of actions and learns their value.
type Agent interface {
	ProposeAction() int
	ProcessOutcome(reward float64, fn stats.RewardFunction)
	SetStep(gamma float64, moveLim int)
	NumActions() int
	Q() []float64
}

// banditAgent keeps the value estimates of a k-armed bandit.
type banditAgent struct {
	r          *rng.Stream
	numMoves   int
	q          []float64
	chosen     []int
	lastAction int
	expAlpha   float64
}

func newBanditAgent(r *rng.Stream, numActions, numMoves int) banditAgent {
	return banditAgent{
		r:        r,
		numMoves: numMoves,
		q:        make([]float64, numActions),
		chosen:   make([]int, numActions),
		expAlpha: -1,
	}
}

// NumActions returns the number of arms.
func (a *banditAgent) NumActions() int {
	return len(a.q)
}

// Q returns the value estimates.
func (a *banditAgent) Q() []float64 {
	return a.q
}

// SetStep picks the averaging of rewards. A negative gamma selects the
// sample average. Otherwise rewards older than moveLim moves keep a share
// gamma of the total weight.
func (a *banditAgent) SetStep(gamma float64, moveLim int) {
	if gamma < 0 {
		a.expAlpha = -1
		return
	}

	a.expAlpha = 1 - math.Exp(math.Log(gamma)/float64(max(moveLim, 1)))
}

// ProcessOutcome updates the value of the last action.
func (a *banditAgent) ProcessOutcome(reward float64, fn stats.RewardFunction) {
	a.chosen[a.lastAction]++

	if fn.IsRuntimeAware() {
		reward /= moveRuntime[a.lastAction%a.numMoves]
	}

	step := 1 / float64(a.chosen[a.lastAction])
	if a.expAlpha >= 0 {
		step = a.expAlpha
	}

	a.q[a.lastAction] += step * (reward - a.q[a.lastAction])
}

func (a *banditAgent) argmax() int {
	best := 0
	for i, v := range a.q {
		if v > a.q[best] {
			best = i
		}
	}

	return best
}

// EpsilonGreedyAgent explores a random arm with probability epsilon and
// otherwise exploits the best estimate.
type EpsilonGreedyAgent struct {
	banditAgent
	epsilon    float64
	cumulative []float64
}

// NewEpsilonGreedyAgent creates an agent over numActions arms, of which
// numMoves are move types per block type.
func NewEpsilonGreedyAgent(r *rng.Stream, numActions, numMoves int, epsilon float64) *EpsilonGreedyAgent {
	a := &EpsilonGreedyAgent{
		banditAgent: newBanditAgent(r, numActions, numMoves),
		epsilon:     epsilon,
		cumulative:  make([]float64, numActions),
	}

	for i := range a.cumulative {
		a.cumulative[i] = float64(i+1) / float64(numActions)
	}

	return a
}

// ProposeAction implements Agent.
func (a *EpsilonGreedyAgent) ProposeAction() int {
	if a.r.Float64() < a.epsilon {
		a.lastAction = drawCumulative(a.r, a.cumulative)
	} else {
		a.lastAction = a.argmax()
	}

	return a.lastAction
}

// softmaxScale sharpens the value estimates before the exponential.
const softmaxScale = 1000

// SoftmaxAgent draws arms with probabilities from a softmax of the value
// estimates, scaled by the share of blocks of each type.
type SoftmaxAgent struct {
	banditAgent
	typeRatio  []float64
	prob       []float64
	cumulative []float64
}

// NewSoftmaxAgent creates an agent. typeRatio holds the share of movable
// blocks of each agent block type; nil means one block type.
func NewSoftmaxAgent(r *rng.Stream, numActions, numMoves int, typeRatio []float64) *SoftmaxAgent {
	return &SoftmaxAgent{
		banditAgent: newBanditAgent(r, numActions, numMoves),
		typeRatio:   typeRatio,
		prob:        make([]float64, numActions),
		cumulative:  make([]float64, numActions),
	}
}

// ProposeAction implements Agent.
func (a *SoftmaxAgent) ProposeAction() int {
	a.setActionProb()
	a.lastAction = drawCumulative(a.r, a.cumulative)

	return a.lastAction
}

func (a *SoftmaxAgent) setActionProb() {
	sum := 0.0
	for i, q := range a.q {
		a.prob[i] = math.Exp(math.Min(softmaxScale*q, 10))
		sum += a.prob[i]
	}

	for i := range a.prob {
		a.prob[i] /= sum
		if a.typeRatio != nil {
			a.prob[i] *= a.typeRatio[i/a.numMoves]
		}
	}

	acc := 0.0
	for i, p := range a.prob {
		acc += p
		a.cumulative[i] = acc
	}
}

// Prob returns the last computed action probabilities, unnormalized when
// block type ratios apply.
func (a *SoftmaxAgent) Prob() []float64 {
	return a.prob
}
