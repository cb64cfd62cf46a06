// Package verify audits a placement against everything the placer keeps
// incrementally.
//
// CheckPlace runs five groups of checks:
//
//   - BLOCK: every block sits in a slot that holds it back, on a compatible
//     tile, and every cell's usage matches the blocks it holds
//   - MACRO: every macro member sits at its head location plus its offset
//   - COST: every net box and net cost matches a brute force recomputation,
//     and so do the bounding box, timing and NoC totals
//   - FLOORPLAN: every block with a region is inside it
//   - NOC: the NoC cost terms match a rerouting of every flow
//
// Any issue makes Report.Err return a *ConsistencyError. Callers treat it as
// fatal.
package verify

import (
	"fmt"
	"math"

	"github.com/sarchlab/fplace/arch"
	"github.com/sarchlab/fplace/bbox"
	"github.com/sarchlab/fplace/cost"
	"github.com/sarchlab/fplace/netlist"
	"github.com/sarchlab/fplace/noc"
	"github.com/sarchlab/fplace/placement"
	"github.com/sarchlab/fplace/timing"
)

// ErrorTol is the relative difference tolerated between an incrementally
// maintained cost and its recomputation.
const ErrorTol = 0.01

// absTol absorbs float noise around zero costs.
const absTol = 1e-9

// IssueType categorizes issues
type IssueType string

const (
	IssueBlock     IssueType = "BLOCK"
	IssueMacro     IssueType = "MACRO"
	IssueCost      IssueType = "COST"
	IssueFloorplan IssueType = "FLOORPLAN"
	IssueNoC       IssueType = "NOC"
)

// Issue is a single inconsistency.
type Issue struct {
	Type    IssueType
	Block   string // block name, if any
	Net     string // net name, if any
	Message string
	Details map[string]interface{}
}

// Input is what CheckPlace audits. Timing and NoC are optional.
type Input struct {
	State      *placement.State
	Wirelength *cost.Wirelength
	Costs      *cost.Costs
	Timing     *timing.Bridge
	NoC        *noc.Model
}

// CheckPlace runs every check and collects the issues.
func CheckPlace(in Input) *Report {
	r := &Report{}

	r.Issues = append(r.Issues, checkBlocks(in.State)...)
	r.Issues = append(r.Issues, checkMacros(in.State)...)
	r.Issues = append(r.Issues, checkFloorplan(in.State)...)
	r.Issues = append(r.Issues, checkNets(in.State.Netlist(), in.Wirelength, in.Costs, r)...)

	if in.Timing != nil {
		r.Issues = append(r.Issues, checkTiming(in.State.Netlist(), in.Timing, in.Costs, r)...)
	}

	if in.NoC != nil {
		r.Issues = append(r.Issues, checkNoC(in.NoC, in.Costs)...)
	}

	return r
}

// IsClose tells if got agrees with want within ErrorTol.
func IsClose(want, got float64) bool {
	return math.Abs(want-got) <= ErrorTol*math.Abs(want)+absTol
}

func checkBlocks(st *placement.State) []Issue {
	var issues []Issue

	nl := st.Netlist()
	g := st.Grid()
	usage := make(map[arch.TileLoc]int)

	for i := 0; i < nl.NumBlocks(); i++ {
		b := netlist.BlockID(i)
		blk := nl.Block(b)

		if !st.IsPlaced(b) {
			issues = append(issues, Issue{
				Type:    IssueBlock,
				Block:   blk.Name,
				Message: "block is not placed",
			})

			continue
		}

		l := st.Location(b)
		usage[l.Tile()]++

		if at := st.BlockAt(l); at != b {
			issues = append(issues, Issue{
				Type:    IssueBlock,
				Block:   blk.Name,
				Message: fmt.Sprintf("slot %s holds block %d", l, at),
				Details: map[string]interface{}{"loc": l.String(), "grid": int(at)},
			})
		}

		if !g.IsLegal(l, blk.Type) {
			issues = append(issues, Issue{
				Type:    IssueBlock,
				Block:   blk.Name,
				Message: fmt.Sprintf("tile at %s is not compatible", l),
			})
		}
	}

	for layer := 0; layer < g.NumLayers(); layer++ {
		for x := 0; x < g.Width(); x++ {
			for y := 0; y < g.Height(); y++ {
				t := arch.TileLoc{X: x, Y: y, Layer: layer}
				issues = append(issues, checkCell(st, t, usage[t])...)
			}
		}
	}

	return issues
}

func checkCell(st *placement.State, t arch.TileLoc, placed int) []Issue {
	var issues []Issue

	held := 0
	for sub := 0; sub < st.Capacity(t); sub++ {
		l := arch.Loc{X: t.X, Y: t.Y, SubTile: sub, Layer: t.Layer}

		b := st.BlockAt(l)
		if b == placement.EmptyBlock {
			continue
		}

		held++
		if st.Location(b) != l {
			issues = append(issues, Issue{
				Type:  IssueBlock,
				Block: st.Netlist().Block(b).Name,
				Message: fmt.Sprintf("slot %s holds a block placed at %s",
					l, st.Location(b)),
			})
		}
	}

	if held != st.Usage(t) || placed != held {
		issues = append(issues, Issue{
			Type: IssueBlock,
			Message: fmt.Sprintf("cell (%d,%d,%d) usage %d, slots held %d, blocks placed %d",
				t.X, t.Y, t.Layer, st.Usage(t), held, placed),
		})
	}

	return issues
}

func checkMacros(st *placement.State) []Issue {
	var issues []Issue

	nl := st.Netlist()
	for _, m := range nl.Macros() {
		head := st.Location(m.Head())

		for _, mem := range m.Members[1:] {
			want := head.Add(mem.Offset)
			if got := st.Location(mem.Block); got != want {
				issues = append(issues, Issue{
					Type:  IssueMacro,
					Block: nl.Block(mem.Block).Name,
					Message: fmt.Sprintf("member at %s, head %s implies %s",
						got, head, want),
				})
			}
		}
	}

	return issues
}

func checkFloorplan(st *placement.State) []Issue {
	var issues []Issue

	nl := st.Netlist()
	for i := 0; i < nl.NumBlocks(); i++ {
		blk := nl.Block(netlist.BlockID(i))
		if blk.Region == nil || !st.IsPlaced(blk.ID) {
			continue
		}

		if l := st.Location(blk.ID); !blk.Region.Contains(l) {
			issues = append(issues, Issue{
				Type:    IssueFloorplan,
				Block:   blk.Name,
				Message: fmt.Sprintf("block at %s is outside its region", l),
			})
		}
	}

	return issues
}

func checkNets(
	nl *netlist.Netlist,
	w *cost.Wirelength,
	c *cost.Costs,
	r *Report,
) []Issue {
	var issues []Issue

	total := 0.0
	for i := 0; i < nl.NumNets(); i++ {
		net := netlist.NetID(i)
		n := nl.Net(net)
		if n.Ignored {
			continue
		}

		boxes, sinks := w.Cache.CheckNet(net)
		if !sameBoxes(boxes, w.Cache.Committed(net), sinks) {
			issues = append(issues, Issue{
				Type:    IssueCost,
				Net:     n.Name,
				Message: "bounding box differs from a recomputation",
				Details: map[string]interface{}{
					"cached": fmt.Sprint(w.Cache.Committed(net)),
					"check":  fmt.Sprint(boxes),
				},
			})
		}

		want := w.BoxCost(net, boxes, sinks)
		total += want

		if got := w.Nets.Committed[net]; !IsClose(want, got) {
			issues = append(issues, Issue{
				Type:    IssueCost,
				Net:     n.Name,
				Message: fmt.Sprintf("net cost %g, recomputed %g", got, want),
			})
		}
	}

	r.BBCost = total

	if !IsClose(total, c.BBCost) {
		issues = append(issues, Issue{
			Type:    IssueCost,
			Message: fmt.Sprintf("bb_cost %g, recomputed %g", c.BBCost, total),
		})
	}

	return issues
}

// sameBoxes compares the committed boxes of a net. Per-layer layers without
// sinks are skipped, their box is meaningless.
func sameBoxes(check, cached []bbox.Box, sinks []int) bool {
	if len(check) != len(cached) {
		return false
	}

	for i := range check {
		if len(check) > 1 && sinks[i] == 0 {
			continue
		}

		if check[i] != cached[i] {
			return false
		}
	}

	return true
}

func checkTiming(nl *netlist.Netlist, b *timing.Bridge, c *cost.Costs, r *Report) []Issue {
	issues := checkConnections(nl, b)

	r.TimingCost = b.CheckTimingCost()

	if !IsClose(r.TimingCost, c.TimingCost) {
		issues = append(issues, Issue{
			Type:    IssueCost,
			Message: fmt.Sprintf("timing_cost %g, recomputed %g", c.TimingCost, r.TimingCost),
		})
	}

	return issues
}

// checkConnections audits every connection: the committed delay against the
// block locations, and the timing cost against criticality times delay.
func checkConnections(nl *netlist.Netlist, b *timing.Bridge) []Issue {
	var issues []Issue

	for i := 0; i < nl.NumNets(); i++ {
		net := netlist.NetID(i)
		n := nl.Net(net)
		if n.Ignored {
			continue
		}

		for ipin := 1; ipin < len(n.Pins); ipin++ {
			sink := nl.Block(nl.Pin(nl.NetPin(net, ipin)).Block).Name
			delay := b.SingleConnectionDelay(net, ipin)

			if got := b.ConnectionDelay(net, ipin); !IsClose(delay, got) {
				issues = append(issues, Issue{
					Type:    IssueCost,
					Block:   sink,
					Net:     n.Name,
					Message: fmt.Sprintf("sink %d delay %g, recomputed %g", ipin, got, delay),
				})

				continue
			}

			crit := b.Criticality(net, ipin)
			want := crit * delay
			if got := b.ConnectionTimingCost(net, ipin); !IsClose(want, got) {
				issues = append(issues, Issue{
					Type:  IssueCost,
					Block: sink,
					Net:   n.Name,
					Message: fmt.Sprintf(
						"sink %d timing cost %g, criticality %g times delay %g is %g",
						ipin, got, crit, delay, want),
				})
			}
		}
	}

	return issues
}

func checkNoC(m *noc.Model, c *cost.Costs) []Issue {
	var issues []Issue

	want := m.CheckTerms()
	terms := []struct {
		name      string
		want, got float64
	}{
		{"aggregate bandwidth", want.AggregateBandwidth, c.NoC.AggregateBandwidth},
		{"latency", want.Latency, c.NoC.Latency},
		{"latency overrun", want.LatencyOverrun, c.NoC.LatencyOverrun},
		{"congestion", want.Congestion, c.NoC.Congestion},
	}

	for _, t := range terms {
		if !IsClose(t.want, t.got) {
			issues = append(issues, Issue{
				Type:    IssueNoC,
				Message: fmt.Sprintf("NoC %s cost %g, recomputed %g", t.name, t.got, t.want),
			})
		}
	}

	return issues
}
