// Package config holds the placer options, their defaults and validation,
// and loads options and placement problems from YAML or JSON files.
package config

import (
	"github.com/pkg/errors"

	"github.com/sarchlab/fplace/bbox"
	"github.com/sarchlab/fplace/cost"
	"github.com/sarchlab/fplace/movegen"
	"github.com/sarchlab/fplace/stats"
)

// ScheduleType selects the annealing schedule.
type ScheduleType int

// Annealing schedules.
const (
	AutoSchedule ScheduleType = iota
	UserSchedule
	DustySchedule
)

var scheduleNames = map[ScheduleType]string{
	AutoSchedule:  "auto",
	UserSchedule:  "user",
	DustySchedule: "dusty",
}

func (s ScheduleType) String() string {
	if name, ok := scheduleNames[s]; ok {
		return name
	}

	return "unknown"
}

// MarshalText writes the schedule name.
func (s ScheduleType) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText parses "auto", "user" or "dusty".
func (s *ScheduleType) UnmarshalText(text []byte) error {
	for t, name := range scheduleNames {
		if name == string(text) {
			*s = t
			return nil
		}
	}

	return errors.Errorf("unknown annealing schedule %q", string(text))
}

// EffortScaling selects how the number of moves per temperature grows with
// the problem.
type EffortScaling int

// Effort scalings.
const (
	// CircuitScaling uses inner_num * blocks^(4/3).
	CircuitScaling EffortScaling = iota
	// DeviceCircuitScaling uses inner_num * grid^(2/3) * blocks^(2/3).
	DeviceCircuitScaling
)

func (e EffortScaling) String() string {
	if e == DeviceCircuitScaling {
		return "device_circuit"
	}

	return "circuit"
}

// MarshalText writes the scaling name.
func (e EffortScaling) MarshalText() ([]byte, error) {
	return []byte(e.String()), nil
}

// UnmarshalText parses "circuit" or "device_circuit".
func (e *EffortScaling) UnmarshalText(text []byte) error {
	switch string(text) {
	case "circuit":
		*e = CircuitScaling
	case "device_circuit":
		*e = DeviceCircuitScaling
	default:
		return errors.Errorf("unknown effort scaling %q", string(text))
	}

	return nil
}

// NoCOptions configure the network-on-chip cost terms and router swaps.
type NoCOptions struct {
	Enabled bool `yaml:"enabled" json:"enabled"`
	// SwapPercentage is the share of swaps, in percent, that move routers.
	SwapPercentage float64 `yaml:"swap_percentage" json:"swap_percentage"`

	PlacementWeighting          float64 `yaml:"placement_weighting" json:"placement_weighting"`
	AggregateBandwidthWeighting float64 `yaml:"aggregate_bandwidth_weighting" json:"aggregate_bandwidth_weighting"`
	LatencyWeighting            float64 `yaml:"latency_weighting" json:"latency_weighting"`
	LatencyConstraintsWeighting float64 `yaml:"latency_constraints_weighting" json:"latency_constraints_weighting"`
	CongestionWeighting         float64 `yaml:"congestion_weighting" json:"congestion_weighting"`

	LinkBandwidth float64 `yaml:"link_bandwidth" json:"link_bandwidth"`
	LinkLatency   float64 `yaml:"link_latency" json:"link_latency"`
	RouterLatency float64 `yaml:"router_latency" json:"router_latency"`
}

// Weights returns the cost weights of the NoC terms.
func (o NoCOptions) Weights() cost.NoCWeights {
	return cost.NoCWeights{
		Placement:          o.PlacementWeighting,
		AggregateBandwidth: o.AggregateBandwidthWeighting,
		Latency:            o.LatencyWeighting,
		LatencyConstraints: o.LatencyConstraintsWeighting,
		Congestion:         o.CongestionWeighting,
	}
}

// DelayOptions parameterize the built-in Manhattan delay model.
type DelayOptions struct {
	Base     float64 `yaml:"base" json:"base"`
	PerTile  float64 `yaml:"per_tile" json:"per_tile"`
	PerLayer float64 `yaml:"per_layer" json:"per_layer"`
}

// Options are the placer options.
type Options struct {
	Seed int64 `yaml:"seed" json:"seed"`

	PlaceAlgorithm    cost.Algorithm `yaml:"place_algorithm" json:"place_algorithm"`
	QuenchAlgorithm   cost.Algorithm `yaml:"place_quench_algorithm" json:"place_quench_algorithm"`
	BoundingBoxMode   bbox.Mode      `yaml:"place_bounding_box_mode" json:"place_bounding_box_mode"`
	TimingTradeoff    float64        `yaml:"timing_tradeoff" json:"timing_tradeoff"`
	PlaceCostExp      float64        `yaml:"place_cost_exp" json:"place_cost_exp"`
	PlaceCritLimit    float64        `yaml:"place_crit_limit" json:"place_crit_limit"`
	TDPlaceExpFirst   float64        `yaml:"td_place_exp_first" json:"td_place_exp_first"`
	TDPlaceExpLast    float64        `yaml:"td_place_exp_last" json:"td_place_exp_last"`
	RecomputeCritIter int            `yaml:"recompute_crit_iter" json:"recompute_crit_iter"`

	InnerLoopRecomputeDivider int `yaml:"inner_loop_recompute_divider" json:"inner_loop_recompute_divider"`
	// QuenchRecomputeDivider below zero follows the inner loop divider.
	QuenchRecomputeDivider int `yaml:"quench_recompute_divider" json:"quench_recompute_divider"`

	AnnealingSchedule ScheduleType  `yaml:"annealing_sched" json:"annealing_sched"`
	InnerNum          float64       `yaml:"inner_num" json:"inner_num"`
	EffortScaling     EffortScaling `yaml:"place_effort_scaling" json:"place_effort_scaling"`
	InitT             float64       `yaml:"init_t" json:"init_t"`
	AlphaT            float64       `yaml:"alpha_t" json:"alpha_t"`
	ExitT             float64       `yaml:"exit_t" json:"exit_t"`
	AlphaMin          float64       `yaml:"alpha_min" json:"alpha_min"`
	AlphaMax          float64       `yaml:"alpha_max" json:"alpha_max"`
	AlphaDecay        float64       `yaml:"alpha_decay" json:"alpha_decay"`
	SuccessMin        float64       `yaml:"anneal_success_min" json:"anneal_success_min"`
	SuccessTarget     float64       `yaml:"anneal_success_target" json:"anneal_success_target"`

	RlimEscapeFraction float64 `yaml:"rlim_escape_fraction" json:"rlim_escape_fraction"`
	HighFanoutNet      int     `yaml:"place_high_fanout_net" json:"place_high_fanout_net"`

	RewardFunction  stats.RewardFunction   `yaml:"place_reward_fun" json:"place_reward_fun"`
	StaticMoveProb  []float64              `yaml:"place_static_move_prob" json:"place_static_move_prob"`
	RLAgent         bool                   `yaml:"rl_agent_placement" json:"rl_agent_placement"`
	AgentMultistate bool                   `yaml:"place_agent_multistate" json:"place_agent_multistate"`
	AgentAlgorithm  movegen.AgentAlgorithm `yaml:"place_agent_algorithm" json:"place_agent_algorithm"`
	AgentSpace      movegen.AgentSpace     `yaml:"place_agent_space" json:"place_agent_space"`
	AgentEpsilon    float64                `yaml:"place_agent_epsilon" json:"place_agent_epsilon"`
	AgentGamma      float64                `yaml:"place_agent_gamma" json:"place_agent_gamma"`

	Checkpointing       bool `yaml:"place_checkpointing" json:"place_checkpointing"`
	SavesPerTemperature int  `yaml:"placement_saves_per_temperature" json:"placement_saves_per_temperature"`
	// DumpDir receives the periodic placement dumps.
	DumpDir string `yaml:"dump_dir" json:"dump_dir"`
	// CheckCosts recomputes every cost from scratch after each temperature.
	CheckCosts bool `yaml:"check_costs" json:"check_costs"`

	Delay DelayOptions `yaml:"delay_model" json:"delay_model"`
	NoC   NoCOptions   `yaml:"noc" json:"noc"`
}

// DefaultOptions returns the classic placer settings.
func DefaultOptions() Options {
	return Options{
		Seed: 1,

		PlaceAlgorithm:    cost.CriticalityTiming,
		QuenchAlgorithm:   cost.CriticalityTiming,
		BoundingBoxMode:   bbox.AutoMode,
		TimingTradeoff:    0.5,
		PlaceCostExp:      1,
		PlaceCritLimit:    0.7,
		TDPlaceExpFirst:   1,
		TDPlaceExpLast:    8,
		RecomputeCritIter: 1,

		InnerLoopRecomputeDivider: 0,
		QuenchRecomputeDivider:    -1,

		AnnealingSchedule: AutoSchedule,
		InnerNum:          0.5,
		EffortScaling:     CircuitScaling,
		InitT:             100,
		AlphaT:            0.8,
		ExitT:             0.01,
		AlphaMin:          0.5,
		AlphaMax:          0.9,
		AlphaDecay:        0.7,
		SuccessMin:        0.1,
		SuccessTarget:     0.25,

		RlimEscapeFraction: 0,
		HighFanoutNet:      movegen.DefaultHighFanoutNet,

		RewardFunction:  stats.WLBiasedRuntimeAware,
		StaticMoveProb:  []float64{100},
		RLAgent:         true,
		AgentMultistate: true,
		AgentAlgorithm:  movegen.Softmax,
		AgentSpace:      movegen.MoveBlockType,
		AgentEpsilon:    0.3,
		AgentGamma:      0.05,

		Checkpointing: true,

		Delay: DelayOptions{Base: 0.1, PerTile: 0.05, PerLayer: 0.2},
		NoC: NoCOptions{
			PlacementWeighting:          5,
			AggregateBandwidthWeighting: 0.38,
			LatencyWeighting:            0.6,
			LatencyConstraintsWeighting: 0.02,
			CongestionWeighting:         0.25,
			LinkBandwidth:               1,
			LinkLatency:                 1,
			RouterLatency:               1,
		},
	}
}

// EffectiveQuenchDivider returns the recompute divider used by the quench.
func (o Options) EffectiveQuenchDivider() int {
	if o.QuenchRecomputeDivider < 0 {
		return o.InnerLoopRecomputeDivider
	}

	return o.QuenchRecomputeDivider
}
