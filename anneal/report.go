package anneal

import (
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/sarchlab/fplace/stats"
)

// WriteReport writes the annealing status, the swap totals, the move type
// distribution, the agent values and the resource usage.
func (p *Placer) WriteReport(w io.Writer) error {
	if _, err := fmt.Fprintln(w, p.status.Render()); err != nil {
		return err
	}

	if err := stats.WriteSwapStats(w, p.swapStats); err != nil {
		return err
	}

	if p.moveStats != nil {
		err := stats.WriteMoveTypeStats(w, p.moveStats,
			p.st.Grid().LogicalTypes())
		if err != nil {
			return err
		}
	}

	if err := p.writeAgentValues(w); err != nil {
		return err
	}

	return stats.WriteResourceUtilization(w, p.st)
}

func (p *Placer) writeAgentValues(w io.Writer) error {
	if len(p.rlGens) == 0 {
		return nil
	}

	t := table.NewWriter()
	t.SetTitle("Agent Action Values")
	t.AppendHeader(table.Row{"Agent", "Action", "Q"})

	for i, g := range p.rlGens {
		name := "early"
		if i > 0 {
			name = "late"
		}

		for a, q := range g.Agent().Q() {
			t.AppendRow(table.Row{name, a, fmt.Sprintf("%.4g", q)})
		}
	}

	_, err := fmt.Fprintln(w, t.Render())

	return err
}
