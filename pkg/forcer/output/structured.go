package output

import (
	"bytes"
	"encoding/json"

	"github.com/jamesainslie/forcer/pkg/forcer/types"
	"gopkg.in/yaml.v3"
)

// document is the structured form of a Result shared by the json and yaml
// formatters. An unbounded rate is written as zero with Unbounded set.
type document struct {
	Range     types.LengthRange   `json:"range" yaml:"range"`
	Alphabet  int                 `json:"alphabet_size" yaml:"alphabet_size"`
	Workers   int                 `json:"workers" yaml:"workers"`
	OutputDir string              `json:"output_dir,omitempty" yaml:"output_dir,omitempty"`
	Lengths   []documentLength    `json:"lengths" yaml:"lengths"`
	Totals    documentTotals      `json:"totals" yaml:"totals"`
	Errors    []types.WorkerError `json:"errors,omitempty" yaml:"errors,omitempty"`
	Benchmark bool                `json:"benchmark,omitempty" yaml:"benchmark,omitempty"`

	Interrupted bool `json:"interrupted" yaml:"interrupted"`
}

type documentLength struct {
	Length       int    `json:"length" yaml:"length"`
	Combinations int64  `json:"combinations" yaml:"combinations"`
	Lines        int64  `json:"lines" yaml:"lines"`
	Elapsed      string `json:"elapsed" yaml:"elapsed"`
	Worker       int    `json:"worker" yaml:"worker"`
}

type documentTotals struct {
	Combinations int64   `json:"combinations" yaml:"combinations"`
	Lines        int64   `json:"lines" yaml:"lines"`
	Elapsed      string  `json:"elapsed" yaml:"elapsed"`
	Wall         string  `json:"wall" yaml:"wall"`
	Rate         float64 `json:"rate" yaml:"rate"`
	Unbounded    bool    `json:"unbounded" yaml:"unbounded"`
	P50          string  `json:"p50" yaml:"p50"`
	P95          string  `json:"p95" yaml:"p95"`
	Max          string  `json:"max" yaml:"max"`
}

// estimateDocument is the structured form of an Estimate.
type estimateDocument struct {
	Range           types.LengthRange  `json:"range" yaml:"range"`
	Alphabet        int                `json:"alphabet_size" yaml:"alphabet_size"`
	Combinations    string             `json:"combinations" yaml:"combinations"`
	Characters      string             `json:"characters" yaml:"characters"`
	BenchmarkLength int                `json:"benchmark_length" yaml:"benchmark_length"`
	Performance     projectionDocument `json:"performance" yaml:"performance"`
	Live            projectionDocument `json:"live" yaml:"live"`
}

type projectionDocument struct {
	Rate      float64 `json:"rate" yaml:"rate"`
	Unbounded bool    `json:"unbounded" yaml:"unbounded"`
	Seconds   float64 `json:"seconds" yaml:"seconds"`
	Forever   bool    `json:"forever,omitempty" yaml:"forever,omitempty"`
}

func buildDocument(r *Result) document {
	lengths := make([]documentLength, len(r.Lengths))
	for i, l := range r.Lengths {
		lengths[i] = documentLength{
			Length:       l.Length,
			Combinations: l.Combinations,
			Lines:        l.Lines,
			Elapsed:      formatDurationString(l.Elapsed),
			Worker:       l.Worker,
		}
	}

	agg := r.Aggregate
	rate, unbounded := finiteRate(agg.Rate)
	return document{
		Range:     r.Range,
		Alphabet:  r.AlphabetSize,
		Workers:   r.Workers,
		OutputDir: r.OutputDir,
		Lengths:   lengths,
		Totals: documentTotals{
			Combinations: agg.TotalCombinations,
			Lines:        agg.TotalLines,
			Elapsed:      formatDurationString(agg.TotalElapsed),
			Wall:         formatDurationString(r.Wall),
			Rate:         rate,
			Unbounded:    unbounded || agg.Unbounded,
			P50:          formatDurationString(agg.Durations.P50),
			P95:          formatDurationString(agg.Durations.P95),
			Max:          formatDurationString(agg.Durations.Max),
		},
		Errors:      r.Errors,
		Benchmark:   r.Benchmark,
		Interrupted: r.Interrupted,
	}
}

func buildProjection(p Projection) projectionDocument {
	rate, unbounded := finiteRate(p.Rate)
	seconds, forever := finiteRate(p.Seconds)
	return projectionDocument{Rate: rate, Unbounded: unbounded, Seconds: seconds, Forever: forever}
}

func buildEstimateDocument(e *Estimate) estimateDocument {
	return estimateDocument{
		Range:           e.Range,
		Alphabet:        e.AlphabetSize,
		Combinations:    e.Combinations,
		Characters:      e.Characters,
		BenchmarkLength: e.BenchmarkLength,
		Performance:     buildProjection(e.Performance),
		Live:            buildProjection(e.Live),
	}
}

// JSONFormatter formats output as a single indented JSON object.
type JSONFormatter struct{}

// Format writes the formatted output to the buffer.
func (f *JSONFormatter) Format(w *bytes.Buffer, r *Result) error {
	return writeJSON(w, buildDocument(r))
}

// FormatEstimate writes the estimate to the buffer.
func (f *JSONFormatter) FormatEstimate(w *bytes.Buffer, e *Estimate) error {
	return writeJSON(w, buildEstimateDocument(e))
}

func writeJSON(w *bytes.Buffer, v any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

// YAMLFormatter formats output as YAML with the same structure as JSONFormatter.
type YAMLFormatter struct{}

// Format writes the formatted output to the buffer.
func (f *YAMLFormatter) Format(w *bytes.Buffer, r *Result) error {
	return writeYAML(w, buildDocument(r))
}

// FormatEstimate writes the estimate to the buffer.
func (f *YAMLFormatter) FormatEstimate(w *bytes.Buffer, e *Estimate) error {
	return writeYAML(w, buildEstimateDocument(e))
}

func writeYAML(w *bytes.Buffer, v any) error {
	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)
	if err := encoder.Encode(v); err != nil {
		return err
	}
	return encoder.Close()
}

func init() {
	Register("json", func() Formatter {
		return &JSONFormatter{}
	})
	Register("yaml", func() Formatter {
		return &YAMLFormatter{}
	})
}

var (
	_ Formatter = (*JSONFormatter)(nil)
	_ Formatter = (*YAMLFormatter)(nil)
)
