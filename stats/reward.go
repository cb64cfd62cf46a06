package stats

import (
	"github.com/pkg/errors"

	"github.com/sarchlab/fplace/move"
)

// BBTimingRelativeWeight balances wirelength and timing in the
// wl_biased_runtime_aware reward.
const BBTimingRelativeWeight = 0.4

// RewardFunction selects how a swap outcome is rewarded.
type RewardFunction int

// Reward functions.
const (
	Basic RewardFunction = iota
	NonPenalizingBasic
	RuntimeAware
	WLBiasedRuntimeAware
)

var rewardNames = [...]string{
	Basic:                "basic",
	NonPenalizingBasic:   "non_penalizing_basic",
	RuntimeAware:         "runtime_aware",
	WLBiasedRuntimeAware: "wl_biased_runtime_aware",
}

func (f RewardFunction) String() string {
	if f >= 0 && int(f) < len(rewardNames) {
		return rewardNames[f]
	}

	return "unknown"
}

// IsRuntimeAware tells if rewards are scaled by the cost of each move type.
func (f RewardFunction) IsRuntimeAware() bool {
	return f == RuntimeAware || f == WLBiasedRuntimeAware
}

// ParseRewardFunction parses a reward function name.
func ParseRewardFunction(s string) (RewardFunction, error) {
	for i, name := range rewardNames {
		if name == s {
			return RewardFunction(i), nil
		}
	}

	return Basic, errors.Errorf("unknown reward function %q", s)
}

// MarshalText writes the reward function name.
func (f RewardFunction) MarshalText() ([]byte, error) {
	return []byte(f.String()), nil
}

// UnmarshalText parses a reward function name.
func (f *RewardFunction) UnmarshalText(text []byte) error {
	v, err := ParseRewardFunction(string(text))
	if err != nil {
		return err
	}

	*f = v

	return nil
}

// OutcomeStats describes the cost change of one swap.
type OutcomeStats struct {
	DeltaCostNorm       float64
	DeltaBBCostNorm     float64
	DeltaTimingCostNorm float64
	DeltaBBCostAbs      float64
	DeltaTimingCostAbs  float64
	Outcome             move.Result
}

// Reward computes the reward of a swap with total cost change delta.
func Reward(
	fn RewardFunction,
	delta float64,
	o OutcomeStats,
	timingBBFactor float64,
) float64 {
	switch fn {
	case Basic:
		return -delta
	case NonPenalizingBasic, RuntimeAware:
		if delta < 0 {
			return -delta
		}
	case WLBiasedRuntimeAware:
		if delta < 0 {
			return -(o.DeltaCostNorm +
				(0.5-timingBBFactor)*o.DeltaTimingCostNorm +
				timingBBFactor*o.DeltaBBCostNorm)
		}
	}

	return 0
}
