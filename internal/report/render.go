package report

import (
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"specprobe/internal/outcome"
)

var (
	statusStyles = map[outcome.Status]lipgloss.Style{
		outcome.StatusPass: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#98C379")),
		outcome.StatusFail: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#E06C75")),
		outcome.StatusWarning: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#E5C07B")),
		outcome.StatusManual: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#C678DD")),
		outcome.StatusNA: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#ABB2BF")),
	}

	runStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#ABB2BF"))
)

func statusBadge(s outcome.Status) string {
	if style, ok := statusStyles[s]; ok {
		return style.Render(string(s))
	}
	return string(s)
}

// RenderTable writes the run's outcomes as a table, in the given order.
func RenderTable(w io.Writer, results []outcome.Outcome) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleRounded)

	t.AppendHeader([]interface{}{
		text.FgHiCyan.Sprint("STATUS"),
		text.FgHiCyan.Sprint("CHECK"),
		text.FgHiCyan.Sprint("DETAIL"),
	})

	for _, res := range results {
		t.AppendRow([]interface{}{
			statusBadge(res.Status),
			res.Name,
			res.Message,
		})
	}

	t.Render()
}

// RenderSummary writes the one-line run footer: counts per status, the run
// identifier and the wall-clock duration.
func RenderSummary(w io.Writer, r *Report) {
	fmt.Fprintf(w, "\n%s  %s  %s  %s  %s  (%d checks in %s)\n",
		statusStyles[outcome.StatusPass].Render(fmt.Sprintf("%d passed", r.Summary.Pass)),
		statusStyles[outcome.StatusFail].Render(fmt.Sprintf("%d failed", r.Summary.Fail)),
		statusStyles[outcome.StatusWarning].Render(fmt.Sprintf("%d warnings", r.Summary.Warning)),
		statusStyles[outcome.StatusManual].Render(fmt.Sprintf("%d manual", r.Summary.Manual)),
		statusStyles[outcome.StatusNA].Render(fmt.Sprintf("%d n/a", r.Summary.NA)),
		r.Summary.Total(), r.Duration().Round(time.Millisecond),
	)
	fmt.Fprintln(w, runStyle.Render(fmt.Sprintf("run %s against %s", r.RunID, r.Target)))
}
