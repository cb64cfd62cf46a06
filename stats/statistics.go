// Package stats collects annealing statistics and turns swap outcomes into
// rewards for the learning move generators.
package stats

import "math"

// PlacerStatistics accumulates the costs of accepted swaps at one
// temperature.
type PlacerStatistics struct {
	AvCost       float64
	AvBBCost     float64
	AvTimingCost float64
	SumOfSquares float64
	SuccessSum   int
	SuccessRate  float64
	StdDev       float64
}

// Reset clears the statistics for a new temperature.
func (s *PlacerStatistics) Reset() {
	*s = PlacerStatistics{}
}

// SingleSwapUpdate records the costs after an accepted swap.
func (s *PlacerStatistics) SingleSwapUpdate(cost, bbCost, timingCost float64) {
	s.SuccessSum++
	s.AvCost += cost
	s.AvBBCost += bbCost
	s.AvTimingCost += timingCost
	s.SumOfSquares += cost * cost
}

// CalcIterationStats turns the sums into averages at the end of a
// temperature. With no accepted swap the averages are the current costs.
func (s *PlacerStatistics) CalcIterationStats(
	cost, bbCost, timingCost float64,
	moveLim int,
) {
	if s.SuccessSum == 0 {
		s.AvCost = cost
		s.AvBBCost = bbCost
		s.AvTimingCost = timingCost
	} else {
		n := float64(s.SuccessSum)
		s.AvCost /= n
		s.AvBBCost /= n
		s.AvTimingCost /= n
	}

	s.SuccessRate = float64(s.SuccessSum) / float64(moveLim)
	s.StdDev = StdDev(s.SuccessSum, s.SumOfSquares, s.AvCost)
}

// StdDev returns the sample standard deviation from a sum of squares and an
// average. It is zero for fewer than two samples.
func StdDev(n int, sumSquares, av float64) float64 {
	if n <= 1 {
		return 0
	}

	v := (sumSquares - float64(n)*av*av) / float64(n-1)
	if v <= 0 {
		return 0
	}

	return math.Sqrt(v)
}
