package config

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/sarchlab/fplace/move"
)

// FieldError is a configuration error on one option.
type FieldError struct {
	Field  string
	Reason string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("option %s: %s", e.Field, e.Reason)
}

func fieldErrorf(field, format string, args ...any) error {
	return errors.WithStack(&FieldError{
		Field:  field,
		Reason: fmt.Sprintf(format, args...),
	})
}

func inRange(field string, v, lo, hi float64) error {
	if v < lo || v > hi {
		return fieldErrorf(field, "%g is outside [%g, %g]", v, lo, hi)
	}

	return nil
}

// Validate checks every option and the consistency between options. The
// error names the first offending option.
func (o Options) Validate() error {
	checks := []func() error{
		o.validateCost,
		o.validateSchedule,
		o.validateMoves,
		o.validateNoC,
	}

	for _, check := range checks {
		if err := check(); err != nil {
			return err
		}
	}

	return nil
}

func (o Options) validateCost() error {
	if err := inRange("timing_tradeoff", o.TimingTradeoff, 0, 1); err != nil {
		return err
	}

	if o.PlaceCostExp < 0 {
		return fieldErrorf("place_cost_exp", "%g is negative", o.PlaceCostExp)
	}

	if err := inRange("place_crit_limit", o.PlaceCritLimit, 0, 1); err != nil {
		return err
	}

	if o.RecomputeCritIter < 1 {
		return fieldErrorf("recompute_crit_iter", "%d is below 1",
			o.RecomputeCritIter)
	}

	if o.InnerLoopRecomputeDivider < 0 {
		return fieldErrorf("inner_loop_recompute_divider", "%d is negative",
			o.InnerLoopRecomputeDivider)
	}

	if o.QuenchAlgorithm.IsTimingDriven() && !o.PlaceAlgorithm.IsTimingDriven() {
		return fieldErrorf("place_quench_algorithm",
			"%s needs a timing driven place_algorithm, got %s",
			o.QuenchAlgorithm, o.PlaceAlgorithm)
	}

	return nil
}

func (o Options) validateSchedule() error {
	if o.InnerNum <= 0 {
		return fieldErrorf("inner_num", "%g is not positive", o.InnerNum)
	}

	switch o.AnnealingSchedule {
	case UserSchedule:
		if o.InitT <= 0 {
			return fieldErrorf("init_t", "%g is not positive", o.InitT)
		}

		if o.AlphaT <= 0 || o.AlphaT >= 1 {
			return fieldErrorf("alpha_t", "%g is outside (0, 1)", o.AlphaT)
		}

		if o.ExitT <= 0 {
			return fieldErrorf("exit_t", "%g is not positive", o.ExitT)
		}
	case DustySchedule:
		if o.AlphaMin <= 0 || o.AlphaMin >= 1 {
			return fieldErrorf("alpha_min", "%g is outside (0, 1)", o.AlphaMin)
		}

		if o.AlphaMax < o.AlphaMin || o.AlphaMax >= 1 {
			return fieldErrorf("alpha_max", "%g is outside [alpha_min, 1)",
				o.AlphaMax)
		}

		if o.AlphaDecay <= 0 || o.AlphaDecay >= 1 {
			return fieldErrorf("alpha_decay", "%g is outside (0, 1)",
				o.AlphaDecay)
		}

		if err := inRange("anneal_success_target", o.SuccessTarget, 0, 1); err != nil {
			return err
		}

		if o.SuccessMin < 0 || o.SuccessMin > o.SuccessTarget {
			return fieldErrorf("anneal_success_min",
				"%g is outside [0, anneal_success_target]", o.SuccessMin)
		}
	}

	return nil
}

func (o Options) validateMoves() error {
	if o.RlimEscapeFraction < 0 || o.RlimEscapeFraction >= 1 {
		return fieldErrorf("rlim_escape_fraction", "%g is outside [0, 1)",
			o.RlimEscapeFraction)
	}

	if o.HighFanoutNet < 1 {
		return fieldErrorf("place_high_fanout_net", "%d is below 1",
			o.HighFanoutNet)
	}

	if o.SavesPerTemperature < 0 {
		return fieldErrorf("placement_saves_per_temperature", "%d is negative",
			o.SavesPerTemperature)
	}

	if !o.RLAgent {
		if len(o.StaticMoveProb) > int(move.NumAutoTypes) {
			return fieldErrorf("place_static_move_prob",
				"%d entries for %d move types",
				len(o.StaticMoveProb), move.NumAutoTypes)
		}

		total := 0.0
		for i, p := range o.StaticMoveProb {
			if p < 0 {
				return fieldErrorf("place_static_move_prob",
					"negative probability %g for %s", p, move.Type(i))
			}

			total += p
		}

		if total <= 0 {
			return fieldErrorf("place_static_move_prob", "probabilities sum to zero")
		}
	}

	if err := inRange("place_agent_epsilon", o.AgentEpsilon, 0, 1); err != nil {
		return err
	}

	// A negative gamma selects plain averaging of the rewards.
	if o.AgentGamma > 1 {
		return fieldErrorf("place_agent_gamma", "%g is above 1", o.AgentGamma)
	}

	return nil
}

func (o Options) validateNoC() error {
	if !o.NoC.Enabled {
		return nil
	}

	if err := inRange("noc.swap_percentage", o.NoC.SwapPercentage, 0, 100); err != nil {
		return err
	}

	if o.NoC.LinkBandwidth <= 0 {
		return fieldErrorf("noc.link_bandwidth", "%g is not positive",
			o.NoC.LinkBandwidth)
	}

	return nil
}
