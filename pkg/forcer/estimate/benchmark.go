package estimate

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/jamesainslie/forcer/pkg/forcer/logging"
	"github.com/jamesainslie/forcer/pkg/forcer/ratecache"
	"github.com/jamesainslie/forcer/pkg/forcer/scheduler"
	"github.com/jamesainslie/forcer/pkg/forcer/types"
)

var logger = logging.Get("estimate")

// DefaultBenchmarkLength is the string length benchmarks generate.
const DefaultBenchmarkLength = 3

// RateCache stores measured rates. *ratecache.Cache satisfies it.
type RateCache interface {
	Get(key ratecache.Key) (float64, bool, error)
	Put(key ratecache.Key, rate float64) error
}

// Benchmarker measures generation rates by running the scheduler over a
// single length into a temporary directory.
type Benchmarker struct {
	// Alphabet is the alphabet benchmarked.
	Alphabet types.Alphabet

	// Scheduler configures the benchmark runs. OutputDir is replaced by a
	// temporary directory.
	Scheduler scheduler.Options

	// Cache, if set, is consulted before running and updated after.
	Cache RateCache

	// Display renders a progress report of a live benchmark over length.
	// Renderings are written to io.Discard so a live benchmark pays for
	// drawing the display. Nil uses a one-line summary.
	Display func(length int, p types.Progress) string
}

// NewBenchmarker returns a Benchmarker for alphabet with opts.
func NewBenchmarker(alphabet types.Alphabet, opts scheduler.Options) *Benchmarker {
	return &Benchmarker{Alphabet: alphabet, Scheduler: opts}
}

// EstimateRate returns characters generated per second for length. With
// performanceMode false the run reports progress after every line, so the
// overhead of a live display is part of the measurement. The result is +Inf
// when the run took no measurable time. A cached rate is returned without
// running.
func (b *Benchmarker) EstimateRate(ctx context.Context, length int, performanceMode bool) (float64, error) {
	if b.Cache != nil {
		key := b.key(length, performanceMode)
		rate, ok, err := b.Cache.Get(key)
		if err != nil {
			logger.Warn("rate cache read failed", "err", err)
		} else if ok {
			logger.Debug("rate cache hit", "length", length, "live", key.Live, "rate", rate)
			return rate, nil
		}
	}

	result, err := b.Measure(ctx, length, performanceMode)
	if err != nil {
		return 0, err
	}
	return result.Aggregate.Rate, nil
}

// Measure runs one benchmark over length regardless of the cache and
// returns the scheduler's result. The measured rate replaces any cached one.
func (b *Benchmarker) Measure(ctx context.Context, length int, performanceMode bool) (*types.RunResult, error) {
	dir, err := os.MkdirTemp("", "forcer-bench-*")
	if err != nil {
		return nil, fmt.Errorf("creating benchmark directory: %w", err)
	}
	defer os.RemoveAll(dir)

	opts := b.Scheduler
	opts.Generator.OutputDir = dir
	if !performanceMode {
		opts.Generator.ReportEvery = 1
		opts.OnProgress = b.liveSink(length)
	}

	result, err := scheduler.New(opts).Run(ctx, types.LengthRange{Min: length, Max: length}, b.Alphabet)
	if err != nil {
		return nil, fmt.Errorf("benchmark length %d: %w", length, err)
	}
	if len(result.Errors) > 0 {
		return nil, fmt.Errorf("benchmark length %d: %s", length, result.Errors[0].Err)
	}

	logger.Info("benchmark complete",
		"length", length,
		"live", !performanceMode,
		"chars", result.Aggregate.TotalCombinations,
		"elapsed", result.Aggregate.TotalElapsed,
		"rate", types.FormatRate(result.Aggregate.Rate, result.Aggregate.Unbounded))

	if b.Cache != nil {
		if err := b.Cache.Put(b.key(length, performanceMode), result.Aggregate.Rate); err != nil {
			logger.Warn("rate cache write failed", "err", err)
		}
	}
	return result, nil
}

func (b *Benchmarker) key(length int, performanceMode bool) ratecache.Key {
	return ratecache.Key{
		Length:    length,
		BatchSize: b.Scheduler.Generator.BatchSize,
		Alphabet:  b.Alphabet.String(),
		Live:      !performanceMode,
	}
}

// liveSink renders every progress report with the configured display and
// discards the output.
func (b *Benchmarker) liveSink(length int) func(types.Progress) {
	display := b.Display
	if display == nil {
		display = progressLine
	}
	return func(p types.Progress) {
		_, _ = io.WriteString(io.Discard, display(length, p))
	}
}

// progressLine renders p as a single status line.
func progressLine(length int, p types.Progress) string {
	return fmt.Sprintf("length %d: %s chars, %s lines, %d/%d lengths\n",
		length, types.FormatCount(p.Combinations), types.FormatCount(p.Lines), p.LengthsDone, p.LengthsTotal)
}
