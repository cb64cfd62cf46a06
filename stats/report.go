package stats

import (
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/sarchlab/fplace/arch"
	"github.com/sarchlab/fplace/move"
	"github.com/sarchlab/fplace/netlist"
	"github.com/sarchlab/fplace/placement"
)

// StatusRow is the state of the annealer after one temperature.
type StatusRow struct {
	Iteration    int
	Elapsed      float64
	Temperature  float64
	AvCost       float64
	AvBBCost     float64
	AvTimingCost float64
	CPD          float64
	SuccessRate  float64
	StdDev       float64
	Rlim         float64
	CritExponent float64
	TotalMoves   int
	Alpha        float64
}

// StatusTable collects status rows.
type StatusTable struct {
	Rows []StatusRow
}

// Append adds a row.
func (t *StatusTable) Append(r StatusRow) {
	t.Rows = append(t.Rows, r)
}

// Render returns the table as text.
func (t *StatusTable) Render() string {
	w := table.NewWriter()
	w.SetTitle("Annealing Status")
	w.AppendHeader(table.Row{
		"Tnum", "Time (s)", "T", "Av Cost", "Av BB Cost", "Av TD Cost",
		"CPD", "Ac Rate", "Std Dev", "R lim", "Crit Exp", "Tot Moves", "Alpha",
	})

	for _, r := range t.Rows {
		w.AppendRow(table.Row{
			r.Iteration,
			fmt.Sprintf("%.1f", r.Elapsed),
			fmt.Sprintf("%.3e", r.Temperature),
			fmt.Sprintf("%.4f", r.AvCost),
			fmt.Sprintf("%.1f", r.AvBBCost),
			fmt.Sprintf("%.4g", r.AvTimingCost),
			fmt.Sprintf("%.3f", r.CPD),
			fmt.Sprintf("%.4f", r.SuccessRate),
			fmt.Sprintf("%.4f", r.StdDev),
			fmt.Sprintf("%.1f", r.Rlim),
			fmt.Sprintf("%.2f", r.CritExponent),
			r.TotalMoves,
			fmt.Sprintf("%.3f", r.Alpha),
		})
	}

	return w.Render()
}

func percent(n, total int) string {
	if total == 0 {
		return "0.0 %"
	}

	return fmt.Sprintf("%.1f %%", 100*float64(n)/float64(total))
}

// WriteSwapStats writes swap totals.
func WriteSwapStats(w io.Writer, s SwapStats) error {
	t := table.NewWriter()
	t.SetTitle("Placement Swaps")
	t.AppendHeader(table.Row{"Result", "Count", "Share"})
	t.AppendRow(table.Row{"Attempted", s.Total(), ""})
	t.AppendRow(table.Row{"Accepted", s.Accepted, percent(s.Accepted, s.Total())})
	t.AppendRow(table.Row{"Rejected", s.Rejected, percent(s.Rejected, s.Total())})
	t.AppendRow(table.Row{"Aborted", s.Aborted, percent(s.Aborted, s.Total())})

	_, err := fmt.Fprintln(w, t.Render())

	return err
}

// WriteMoveTypeStats writes the distribution of swaps by block type and move
// type. Block types with no swap are skipped.
func WriteMoveTypeStats(
	w io.Writer,
	s *MoveTypeStat,
	types []*arch.LogicalBlockType,
) error {
	t := table.NewWriter()
	t.SetTitle("Placement perturbation distribution by block and move type")
	t.AppendHeader(table.Row{
		"Block Type", "Move Type", "% of Total", "Accepted", "Rejected", "Aborted",
	})

	total := s.Total()
	for _, lt := range types {
		for m := 0; m < s.NumMoveTypes(); m++ {
			mt := move.Type(m)
			n := s.Proposed(lt.ID, mt)
			if n == 0 {
				continue
			}

			t.AppendRow(table.Row{
				lt.Name, mt.String(),
				percent(n, total),
				percent(s.Accepted(lt.ID, mt), n),
				percent(s.Rejected(lt.ID, mt), n),
				percent(s.Aborted(lt.ID, mt), n),
			})
		}
	}

	_, err := fmt.Fprintln(w, t.Render())

	return err
}

// WriteResourceUtilization writes how many blocks of each logical type sit
// on each physical tile type.
func WriteResourceUtilization(w io.Writer, st *placement.State) error {
	g := st.Grid()
	nl := st.Netlist()

	counts := make(map[[2]int]int)
	for i := 0; i < nl.NumBlocks(); i++ {
		b := netlist.BlockID(i)
		if !st.IsPlaced(b) {
			continue
		}

		tile := g.TileAt(st.Location(b).Tile())
		counts[[2]int{nl.Block(b).Type, tile.ID}]++
	}

	t := table.NewWriter()
	t.SetTitle("Resource Usage")
	t.AppendHeader(table.Row{"Logical Type", "Physical Type", "Blocks"})

	for _, lt := range g.LogicalTypes() {
		for _, pt := range g.TileTypes() {
			if n := counts[[2]int{lt.ID, pt.ID}]; n > 0 {
				t.AppendRow(table.Row{lt.Name, pt.Name, n})
			}
		}
	}

	_, err := fmt.Fprintln(w, t.Render())

	return err
}
