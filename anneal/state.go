package anneal

import (
	"math"

	"github.com/sarchlab/fplace/config"
	"github.com/sarchlab/fplace/cost"
)

// finalRlim is the smallest range limit.
const finalRlim = 1.0

// State is the annealing schedule state carried between temperatures.
type State struct {
	T            float64
	Rlim         float64
	Alpha        float64
	RestartT     float64
	CritExponent float64
	MoveLim      int
	MoveLimMax   int
	NumTemps     int

	upperRlim        float64
	inverseDeltaRlim float64
}

// NewState creates the schedule state of an anneal. Alpha starts at
// alpha_min. The dusty schedule also starts with a move limit scaled by its
// success target.
func NewState(
	opts config.Options,
	t, rlim float64,
	firstMoveLim int,
	critExponent float64,
) State {
	s := State{
		T:            t,
		Rlim:         rlim,
		Alpha:        opts.AlphaMin,
		RestartT:     t,
		CritExponent: critExponent,
		MoveLimMax:   max(1, firstMoveLim),
		upperRlim:    rlim,
	}

	if rlim > finalRlim {
		s.inverseDeltaRlim = 1 / (rlim - finalRlim)
	}

	s.MoveLim = s.MoveLimMax
	if opts.AnnealingSchedule == config.DustySchedule {
		s.MoveLim = max(1, int(float64(s.MoveLimMax)*opts.SuccessTarget))
	}

	return s
}

// OuterLoopUpdate moves the schedule to the next temperature and tells if
// the anneal goes on. numNets is the number of nets that carry cost.
func (s *State) OuterLoopUpdate(
	successRate float64,
	c *cost.Costs,
	numNets int,
	opts config.Options,
) bool {
	if opts.AnnealingSchedule == config.UserSchedule {
		s.T *= opts.AlphaT
		return s.T >= opts.ExitT
	}

	exitT := 0.005 * c.Cost / float64(max(numNets, 1))

	if opts.AnnealingSchedule == config.DustySchedule {
		restart := s.T < exitT || math.IsNaN(successRate) ||
			successRate < opts.SuccessMin

		if restart {
			if s.Alpha > opts.AlphaMax {
				return false
			}

			s.T = s.RestartT / math.Sqrt(s.Alpha)
			s.Alpha = 1 - (1-s.Alpha)*opts.AlphaDecay
		} else {
			if successRate > opts.SuccessTarget {
				s.RestartT = s.T
			}

			s.T *= s.Alpha
		}

		lim := s.MoveLimMax
		if successRate > 0 {
			lim = int(float64(s.MoveLimMax) * (opts.SuccessTarget / successRate))
		}

		s.MoveLim = max(1, min(s.MoveLimMax, lim))
	} else {
		if s.T < exitT {
			return false
		}

		s.Alpha = autoAlpha(successRate, s.Rlim)
		s.T *= s.Alpha
	}

	s.updateRlim(successRate)

	if opts.PlaceAlgorithm.IsTimingDriven() {
		s.updateCritExponent(opts.TDPlaceExpFirst, opts.TDPlaceExpLast)
	}

	return true
}

// autoAlpha cools fast while most swaps are accepted and slowly around the
// productive acceptance range.
func autoAlpha(successRate, rlim float64) float64 {
	switch {
	case successRate > 0.96:
		return 0.5
	case successRate > 0.8:
		return 0.9
	case successRate > 0.15 || rlim > 1:
		return 0.95
	default:
		return 0.8
	}
}

// updateRlim keeps the acceptance rate near 0.44.
func (s *State) updateRlim(successRate float64) {
	s.Rlim *= 1 - 0.44 + successRate
	s.Rlim = math.Min(math.Max(s.Rlim, finalRlim), s.upperRlim)
}

// updateCritExponent goes from first to last as rlim shrinks.
func (s *State) updateCritExponent(first, last float64) {
	scaled := (s.Rlim - finalRlim) * s.inverseDeltaRlim
	s.CritExponent = (1-scaled)*(last-first) + first
}

// InitialMoveLim returns the number of moves per temperature.
func InitialMoveLim(opts config.Options, numBlocks, gridSize int) int {
	var lim float64

	if opts.EffortScaling == config.DeviceCircuitScaling {
		lim = opts.InnerNum *
			math.Pow(float64(gridSize), 2.0/3.0) *
			math.Pow(float64(numBlocks), 2.0/3.0)
	} else {
		lim = opts.InnerNum * math.Pow(float64(numBlocks), 4.0/3.0)
	}

	return max(int(lim), 1)
}

// recomputeLimit returns after how many moves the inner loop refreshes
// timing. A zero divider means never.
func recomputeLimit(moveLim, divider int) int {
	if divider == 0 {
		return moveLim + 1
	}

	return int(0.5 + float64(moveLim)/float64(divider))
}
