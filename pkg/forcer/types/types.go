// Package types provides core data types for the forcer combination generator.
// It includes the alphabet and length-range inputs, the per-length and
// aggregate results produced by a run, and helpers for formatting counts.
package types

import (
	"errors"
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
)

// LengthRange is a closed interval of string lengths [Min, Max].
// A range with Min > Max is empty.
type LengthRange struct {
	// Min is the shortest length in the range.
	Min int `json:"min" yaml:"min"`

	// Max is the longest length in the range.
	Max int `json:"max" yaml:"max"`
}

// Empty reports whether the range contains no lengths.
func (r LengthRange) Empty() bool {
	return r.Min > r.Max
}

// Len returns the number of lengths in the range.
func (r LengthRange) Len() int {
	if r.Empty() {
		return 0
	}
	return r.Max - r.Min + 1
}

// String returns the range as "[min, max]".
func (r LengthRange) String() string {
	if r.Empty() {
		return "[]"
	}
	return fmt.Sprintf("[%d, %d]", r.Min, r.Max)
}

// Batch is a contiguous run of alphabet symbols used as the first
// position of a cartesian product.
type Batch []rune

// LengthResult is produced once per generated length.
type LengthResult struct {
	// Length is the generated string length.
	Length int `json:"length" yaml:"length"`

	// Combinations is the total number of characters written for this
	// length. The reported rate is derived from this figure.
	Combinations int64 `json:"combinations" yaml:"combinations"`

	// Lines is the number of strings written for this length.
	Lines int64 `json:"lines" yaml:"lines"`

	// Elapsed is the wall time spent generating this length.
	Elapsed time.Duration `json:"elapsed" yaml:"elapsed"`

	// Worker is the index of the worker that produced the result.
	Worker int `json:"worker" yaml:"worker"`
}

// DurationStats summarizes the distribution of per-length elapsed times.
type DurationStats struct {
	P50 time.Duration `json:"p50" yaml:"p50"`
	P95 time.Duration `json:"p95" yaml:"p95"`
	Max time.Duration `json:"max" yaml:"max"`
}

// AggregateResult is the combined throughput of a set of LengthResults.
type AggregateResult struct {
	// TotalCombinations is the sum of LengthResult.Combinations.
	TotalCombinations int64 `json:"total_combinations" yaml:"total_combinations"`

	// TotalLines is the sum of LengthResult.Lines.
	TotalLines int64 `json:"total_lines" yaml:"total_lines"`

	// TotalElapsed is the sum of the per-length elapsed times.
	TotalElapsed time.Duration `json:"total_elapsed" yaml:"total_elapsed"`

	// Rate is TotalCombinations per second of TotalElapsed.
	// It is +Inf when TotalElapsed is zero.
	Rate float64 `json:"-" yaml:"-"`

	// Unbounded is true when Rate is infinite.
	Unbounded bool `json:"unbounded" yaml:"unbounded"`

	// Durations describes the spread of per-length elapsed times.
	Durations DurationStats `json:"durations" yaml:"durations"`
}

// Progress is a snapshot of a run in flight.
type Progress struct {
	// Combinations is the number of characters written so far.
	Combinations int64 `json:"combinations"`

	// Lines is the number of strings written so far.
	Lines int64 `json:"lines"`

	// LengthsDone is the number of lengths that have completed.
	LengthsDone int64 `json:"lengths_done"`

	// LengthsTotal is the number of lengths in the run.
	LengthsTotal int `json:"lengths_total"`

	// Workers is the number of workers in the run.
	Workers int `json:"workers"`

	// Done is set on the final report of a run.
	Done bool `json:"done,omitempty"`
}

// WorkerError records a worker that stopped before finishing its range.
type WorkerError struct {
	// Worker is the index of the failed worker.
	Worker int `json:"worker" yaml:"worker"`

	// Range is the sub-range the worker was assigned.
	Range LengthRange `json:"range" yaml:"range"`

	// Length is the length in flight when the worker stopped.
	Length int `json:"length" yaml:"length"`

	// Err is the failure message.
	Err string `json:"error" yaml:"error"`
}

// RunResult is everything a scheduler run produced.
type RunResult struct {
	Range     LengthRange     `json:"range" yaml:"range"`
	Workers   int             `json:"workers" yaml:"workers"`
	Results   []LengthResult  `json:"results" yaml:"results"`
	Aggregate AggregateResult `json:"aggregate" yaml:"aggregate"`
	Errors    []WorkerError   `json:"errors,omitempty" yaml:"errors,omitempty"`
	Wall      time.Duration   `json:"wall" yaml:"wall"`
}

// ErrInvalidRange is returned for a range that has no lengths or starts below one.
var ErrInvalidRange = errors.New("invalid length range")

// FormatCount renders n with thousands separators.
func FormatCount(n int64) string {
	return humanize.Comma(n)
}

// FormatRate renders a per-second rate, or "unbounded" for an infinite rate.
func FormatRate(rate float64, unbounded bool) string {
	if unbounded {
		return "unbounded"
	}
	return humanize.CommafWithDigits(rate, 0) + "/s"
}
