// Package manifest records a history of generation runs and benchmarks.
package manifest

import (
	"time"

	"github.com/jamesainslie/forcer/pkg/forcer/types"
)

// OperationType represents the type of operation.
type OperationType string

const (
	// OpRun represents a full generation run.
	OpRun OperationType = "run"
	// OpBenchmark represents a rate measurement.
	OpBenchmark OperationType = "benchmark"
)

// Entry represents a single manifest entry.
type Entry struct {
	ID        string              `json:"id"`
	Timestamp time.Time           `json:"timestamp"`
	Operation OperationType       `json:"operation"`
	Range     types.LengthRange   `json:"range"`
	Alphabet  int                 `json:"alphabet_size"`
	Workers   int                 `json:"workers"`
	Live      bool                `json:"live,omitempty"`
	OutputDir string              `json:"output_dir,omitempty"`
	Lengths   []LengthRecord      `json:"lengths"`
	Errors    []types.WorkerError `json:"errors,omitempty"`
	Summary   Summary             `json:"summary"`
}

// LengthRecord is one generated length.
type LengthRecord struct {
	Length       int     `json:"length"`
	Combinations int64   `json:"combinations"`
	Lines        int64   `json:"lines"`
	ElapsedSec   float64 `json:"elapsed_sec"`
	Worker       int     `json:"worker"`
}

// Summary contains the operation totals. Rate is zero when Unbounded.
type Summary struct {
	TotalCombinations int64   `json:"total_combinations"`
	TotalLines        int64   `json:"total_lines"`
	ElapsedSec        float64 `json:"elapsed_sec"`
	WallSec           float64 `json:"wall_sec"`
	Rate              float64 `json:"rate"`
	Unbounded         bool    `json:"unbounded,omitempty"`
	FailedWorkers     int     `json:"failed_workers,omitempty"`
}

// Record describes an operation to log.
type Record struct {
	Operation OperationType
	Result    *types.RunResult
	Alphabet  int
	Live      bool
	OutputDir string
}
