package verify

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
)

// Report is the outcome of CheckPlace.
type Report struct {
	Issues []Issue
	// BBCost and TimingCost are the recomputed totals.
	BBCost     float64
	TimingCost float64
}

// OK tells if no issue was found.
func (r *Report) OK() bool {
	return len(r.Issues) == 0
}

// Count returns the number of issues of a type.
func (r *Report) Count(t IssueType) int {
	n := 0
	for _, i := range r.Issues {
		if i.Type == t {
			n++
		}
	}

	return n
}

// Err returns a *ConsistencyError listing every issue, or nil.
func (r *Report) Err() error {
	if r.OK() {
		return nil
	}

	return &ConsistencyError{Issues: r.Issues}
}

// ConsistencyError reports a placement that disagrees with its recomputation.
type ConsistencyError struct {
	Issues []Issue
}

func (e *ConsistencyError) Error() string {
	parts := make([]string, 0, len(e.Issues))
	for _, i := range e.Issues {
		parts = append(parts, i.String())
	}

	return fmt.Sprintf("placement check failed with %d issue(s): %s",
		len(e.Issues), strings.Join(parts, "; "))
}

func (i Issue) String() string {
	subject := ""
	switch {
	case i.Net != "":
		subject = " net " + i.Net
	case i.Block != "":
		subject = " block " + i.Block
	}

	return fmt.Sprintf("[%s]%s: %s", i.Type, subject, i.Message)
}

// WriteReport writes a formatted report to a writer
func (r *Report) WriteReport(w io.Writer) {
	separator := strings.Repeat("=", 60)

	fmt.Fprintln(w, separator)
	fmt.Fprintln(w, "PLACEMENT CHECK")
	fmt.Fprintln(w, separator)

	if r.OK() {
		fmt.Fprintln(w, "✓ No issues found")
		fmt.Fprintf(w, "  bb_cost %g, timing_cost %g\n", r.BBCost, r.TimingCost)

		return
	}

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetTitle(fmt.Sprintf("%d issue(s)", len(r.Issues)))
	t.AppendHeader(table.Row{"Type", "Block", "Net", "Message"})

	for _, i := range r.Issues {
		t.AppendRow(table.Row{i.Type, i.Block, i.Net, i.Message})
	}

	t.Render()
}

// SaveReportToFile writes the report to a file
func (r *Report) SaveReportToFile(filename string) error {
	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("failed to create report file: %w", err)
	}
	defer file.Close()

	r.WriteReport(file)

	return nil
}
