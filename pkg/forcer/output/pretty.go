package output

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/jamesainslie/forcer/pkg/forcer/types"
)

// PrettyFormatter formats output with colors and styling using lipgloss.
type PrettyFormatter struct{}

// Format writes the formatted output to the buffer.
func (f *PrettyFormatter) Format(w *bytes.Buffer, r *Result) error {
	w.WriteString(f.formatHeader(r))
	w.WriteString("\n")

	if len(r.Lengths) > 0 {
		w.WriteString(f.formatTable(r.Lengths))
	}

	w.WriteString(f.formatFooter(r))
	w.WriteString("\n")

	if len(r.Errors) > 0 {
		w.WriteString(f.formatErrors(r.Errors))
		w.WriteString("\n")
	}
	return nil
}

func (f *PrettyFormatter) formatHeader(r *Result) string {
	title := "Generation run"
	if r.Benchmark {
		title = "Benchmark"
	}

	lines := []string{
		TitleStyle.Render(title),
		field("Lengths:", r.Range.String()),
		field("Alphabet:", fmt.Sprintf("%d symbols", r.AlphabetSize)) + "  " +
			field("Workers:", fmt.Sprintf("%d", r.Workers)),
	}
	if r.OutputDir != "" {
		lines = append(lines, field("Output:", r.OutputDir))
	}
	if r.Interrupted {
		lines = append(lines, WarningStyle.Bold(true).Render("Run interrupted by user"))
	}
	return HeaderBox.Render(strings.Join(lines, "\n"))
}

func (f *PrettyFormatter) formatTable(lengths []types.LengthResult) string {
	headers := []string{"LENGTH", "LINES", "CHARACTERS", "ELAPSED", "WORKER"}
	rows := make([][]string, len(lengths))
	for i, l := range lengths {
		rows[i] = []string{
			fmt.Sprintf("%d", l.Length),
			types.FormatCount(l.Lines),
			types.FormatCount(l.Combinations),
			formatDuration(l.Elapsed),
			fmt.Sprintf("%d", l.Worker),
		}
	}

	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = len(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			widths[i] = max(widths[i], len(cell))
		}
	}

	var b strings.Builder
	cells := make([]string, len(headers))
	for i, h := range headers {
		cells[i] = TableHeaderStyle.Render(pad(h, widths[i], i > 0))
	}
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, cells...))
	b.WriteString("\n")

	for _, row := range rows {
		for i, cell := range row {
			cells[i] = TableRowStyle.Render(pad(cell, widths[i], i > 0))
		}
		b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, cells...))
		b.WriteString("\n")
	}
	return b.String()
}

func (f *PrettyFormatter) formatFooter(r *Result) string {
	agg := r.Aggregate
	rate := RateStyle.Render(types.FormatRate(agg.Rate, agg.Unbounded))

	lines := []string{
		field("Characters:", types.FormatCount(agg.TotalCombinations)) + "  " +
			field("Lines:", types.FormatCount(agg.TotalLines)),
		field("Elapsed:", formatDuration(agg.TotalElapsed)) + "  " +
			field("Wall:", formatDuration(r.Wall)),
		LabelStyle.Render("Rate:") + " " + rate,
	}
	if len(r.Lengths) > 1 {
		lines = append(lines, field("Per length:", fmt.Sprintf("p50 %s  p95 %s  max %s",
			formatDuration(agg.Durations.P50),
			formatDuration(agg.Durations.P95),
			formatDuration(agg.Durations.Max))))
	}
	return FooterBox.Render(strings.Join(lines, "\n"))
}

func (f *PrettyFormatter) formatErrors(errs []types.WorkerError) string {
	lines := []string{ErrorStyle.Bold(true).Render(fmt.Sprintf("%d worker(s) failed", len(errs)))}
	for _, e := range errs {
		lines = append(lines, ErrorStyle.Render(fmt.Sprintf("worker %d %s at length %d: %s",
			e.Worker, e.Range.String(), e.Length, e.Err)))
	}
	return ErrorBox.Render(strings.Join(lines, "\n"))
}

// FormatEstimate writes the estimate to the buffer.
func (f *PrettyFormatter) FormatEstimate(w *bytes.Buffer, e *Estimate) error {
	lines := []string{
		TitleStyle.Render("Estimate"),
		field("Lengths:", e.Range.String()) + "  " +
			field("Alphabet:", fmt.Sprintf("%d symbols", e.AlphabetSize)),
		field("Combinations:", e.Combinations),
		field("Characters:", e.Characters),
	}
	w.WriteString(HeaderBox.Render(strings.Join(lines, "\n")))
	w.WriteString("\n")

	modes := []struct {
		name string
		p    Projection
	}{
		{"Performance mode", e.Performance},
		{"Live display mode", e.Live},
	}
	var rows []string
	for _, m := range modes {
		rows = append(rows, fmt.Sprintf("%s %s  %s %s",
			LabelStyle.Render(m.name+":"),
			RateStyle.Render(types.FormatRate(m.p.Rate, isUnbounded(m.p.Rate))),
			LabelStyle.Render("about"),
			ValueStyle.Render(formatProjection(m.p.Seconds))))
	}
	rows = append(rows, MutedStyle.Render(fmt.Sprintf("Rates measured at length %d", e.BenchmarkLength)))
	w.WriteString(FooterBox.Render(strings.Join(rows, "\n")))
	w.WriteString("\n")
	return nil
}

func field(label, value string) string {
	return LabelStyle.Render(label) + " " + ValueStyle.Render(value)
}

// pad aligns s to width, right-aligned when right is set.
func pad(s string, width int, right bool) string {
	if right {
		return fmt.Sprintf("%*s", width, s)
	}
	return fmt.Sprintf("%-*s", width, s)
}

func isUnbounded(rate float64) bool {
	_, inf := finiteRate(rate)
	return inf
}

func init() {
	Register("pretty", func() Formatter {
		return &PrettyFormatter{}
	})
}

var _ Formatter = (*PrettyFormatter)(nil)
