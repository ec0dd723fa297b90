package output

import (
	"bytes"
	"fmt"

	"github.com/jamesainslie/forcer/pkg/forcer/types"
)

// PlainFormatter writes tab-separated text without styling, one length per
// line followed by a totals line. Suitable for piping to other tools.
type PlainFormatter struct{}

// Format writes the formatted output to the buffer.
func (f *PlainFormatter) Format(w *bytes.Buffer, r *Result) error {
	for _, l := range r.Lengths {
		fmt.Fprintf(w, "%d\t%d\t%d\t%s\n", l.Length, l.Combinations, l.Lines, formatDurationString(l.Elapsed))
	}

	agg := r.Aggregate
	fmt.Fprintf(w, "total\t%d\t%d\t%s\t%s\n",
		agg.TotalCombinations, agg.TotalLines,
		formatDurationString(agg.TotalElapsed),
		plainRate(agg.Rate, agg.Unbounded))

	for _, e := range r.Errors {
		fmt.Fprintf(w, "error\tworker %d\tlength %d\t%s\n", e.Worker, e.Length, e.Err)
	}
	return nil
}

// FormatEstimate writes the estimate to the buffer.
func (f *PlainFormatter) FormatEstimate(w *bytes.Buffer, e *Estimate) error {
	fmt.Fprintf(w, "combinations\t%s\n", e.Combinations)
	fmt.Fprintf(w, "characters\t%s\n", e.Characters)
	fmt.Fprintf(w, "performance\t%s\t%s\n", plainRate(e.Performance.Rate, false), formatProjection(e.Performance.Seconds))
	fmt.Fprintf(w, "live\t%s\t%s\n", plainRate(e.Live.Rate, false), formatProjection(e.Live.Seconds))
	return nil
}

// plainRate renders a rate as an integer per second, or "unbounded".
func plainRate(rate float64, unbounded bool) string {
	if _, inf := finiteRate(rate); inf {
		unbounded = true
	}
	if unbounded {
		return types.FormatRate(rate, true)
	}
	return fmt.Sprintf("%.0f", rate)
}

func init() {
	Register("plain", func() Formatter {
		return &PlainFormatter{}
	})
}

var _ Formatter = (*PlainFormatter)(nil)
