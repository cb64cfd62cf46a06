package anneal

import (
	"fmt"

	"github.com/sarchlab/akita/v4/sim"

	"github.com/sarchlab/fplace/stats"
	"github.com/sarchlab/fplace/util"
)

// Hook positions of a Placer.
var (
	// HookPosTemperature fires after every temperature with a
	// stats.StatusRow.
	HookPosTemperature = &sim.HookPos{Name: "Placer Temperature"}
	// HookPosSwap fires after every swap with a SwapEvent.
	HookPosSwap = &sim.HookPos{Name: "Placer Swap"}
	// HookPosCheckpoint fires when a checkpoint is saved or restored, with a
	// CheckpointEvent.
	HookPosCheckpoint = &sim.HookPos{Name: "Placer Checkpoint"}
	// HookPosFinish fires once the final placement passed its checks, with a
	// Summary.
	HookPosFinish = &sim.HookPos{Name: "Placer Finish"}
)

// CheckpointEvent is the hook item of a checkpoint save or restore.
type CheckpointEvent struct {
	Restored bool
	CPD      float64
	BBCost   float64
	Digest   [32]byte
}

// Summary describes a finished placement.
type Summary struct {
	Name       string  `json:"name"`
	Seed       int64   `json:"seed"`
	Cost       float64 `json:"cost"`
	BBCost     float64 `json:"bb_cost"`
	TimingCost float64 `json:"timing_cost"`
	CPD        float64 `json:"cpd"`
	Wirelength float64 `json:"wirelength_estimate"`
	NumTemps   int     `json:"num_temps"`
	TotalMoves int     `json:"total_moves"`
	Accepted   int     `json:"accepted"`
	Rejected   int     `json:"rejected"`
	Aborted    int     `json:"aborted"`
	Digest     string  `json:"digest"`
	Elapsed    float64 `json:"elapsed_seconds"`
}

// TraceHook logs placer events at the trace level. Swaps are only logged
// when Swaps is set.
type TraceHook struct {
	Swaps bool
}

// Func implements sim.Hook.
func (h TraceHook) Func(ctx sim.HookCtx) {
	switch ctx.Pos {
	case HookPosTemperature:
		r := ctx.Item.(stats.StatusRow)
		util.Trace("Temperature",
			"Iteration", r.Iteration,
			"T", r.Temperature,
			"AvCost", r.AvCost,
			"SuccessRate", r.SuccessRate,
			"Rlim", r.Rlim,
			"CPD", r.CPD)
	case HookPosSwap:
		if !h.Swaps {
			return
		}

		e := ctx.Item.(SwapEvent)
		util.Trace("Swap",
			"Outcome", e.Result.String(),
			"Move", e.MoveType.String(),
			"Delta", e.Delta,
			"T", e.Temperature)
	case HookPosCheckpoint:
		e := ctx.Item.(CheckpointEvent)
		util.Trace("Checkpoint",
			"Restored", e.Restored,
			"CPD", e.CPD,
			"BBCost", e.BBCost,
			"Digest", fmt.Sprintf("%x", e.Digest[:8]))
	case HookPosFinish:
		s := ctx.Item.(Summary)
		util.Trace("Placement finished",
			"Cost", s.Cost,
			"CPD", s.CPD,
			"Digest", s.Digest)
	}
}
