package main

import (
	"bytes"
	"context"
	"fmt"

	"github.com/jamesainslie/forcer/cmd/forcer/tui"
	"github.com/jamesainslie/forcer/pkg/forcer/config"
	"github.com/jamesainslie/forcer/pkg/forcer/estimate"
	"github.com/jamesainslie/forcer/pkg/forcer/output"
	"github.com/jamesainslie/forcer/pkg/forcer/ratecache"
	"github.com/jamesainslie/forcer/pkg/forcer/types"
	"github.com/spf13/cobra"
)

var estimateCmd = &cobra.Command{
	Use:   "estimate",
	Short: "Project how long a run would take",
	Long: `Count the strings a run would generate and project its duration.

Generation speed is measured by a short benchmark at a fixed length,
once without and once with per-line progress reporting, and the total
character count of the range is divided by each rate. Measured rates are
cached between invocations (see 'forcer cache').`,
	RunE: runEstimate,
}

var (
	estimateMin    int
	estimateMax    int
	estimateFormat string
)

func init() {
	estimateCmd.Flags().IntVarP(&estimateMin, "min", "m", 0, "minimum string length")
	estimateCmd.Flags().IntVarP(&estimateMax, "max", "M", 0, "maximum string length")
	estimateCmd.Flags().StringVarP(&estimateFormat, "output", "o", "pretty", "output format (pretty, plain, json, yaml)")
	_ = estimateCmd.MarkFlagRequired("min")
	_ = estimateCmd.MarkFlagRequired("max")

	rootCmd.AddCommand(estimateCmd)
}

// runEstimate prints the projection for a range.
func runEstimate(cmd *cobra.Command, args []string) error {
	if err := config.ValidateRange(estimateMin, estimateMax); err != nil {
		return err
	}

	cfg, err := setup(true)
	if err != nil {
		return err
	}

	alphabet, err := cfg.ResolveAlphabet()
	if err != nil {
		return fmt.Errorf("invalid alphabet: %w", err)
	}

	formatter, err := output.Get(estimateFormat)
	if err != nil {
		return fmt.Errorf("unknown output format %q: available formats are %v", estimateFormat, output.Available())
	}

	cache := openRateCache(cfg)
	if cache != nil {
		defer cache.Close()
	}

	r := types.LengthRange{Min: estimateMin, Max: estimateMax}
	est, err := buildEstimate(cmd.Context(), cfg, alphabet, r, cache)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	if err := formatter.FormatEstimate(&buf, est); err != nil {
		return fmt.Errorf("failed to format output: %w", err)
	}
	fmt.Print(buf.String())
	return nil
}

// openRateCache opens the configured rate cache. Nil means caching is
// disabled or the cache could not be opened.
func openRateCache(cfg *config.Config) *ratecache.Cache {
	if !cfg.Benchmark.Cache {
		return nil
	}
	cache, err := ratecache.Open(cfg.CachePath(), cfg.CacheOptions())
	if err != nil {
		printVerbose("Rate cache unavailable, benchmarking without it: %v", err)
		return nil
	}
	return cache
}

// newBenchmarker returns a benchmarker for the configured scheduler,
// backed by cache when it is non-nil.
func newBenchmarker(cfg *config.Config, alphabet types.Alphabet, cache *ratecache.Cache) *estimate.Benchmarker {
	b := estimate.NewBenchmarker(alphabet, cfg.SchedulerOptions())
	b.Display = tui.BenchmarkFrame(alphabet.Len())
	if cache != nil {
		b.Cache = cache
	}
	return b
}

// buildEstimate measures both display modes and projects r.
func buildEstimate(ctx context.Context, cfg *config.Config, alphabet types.Alphabet, r types.LengthRange, cache *ratecache.Cache) (*output.Estimate, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	length := cfg.Benchmark.Length
	if length < 1 {
		length = estimate.DefaultBenchmarkLength
	}

	b := newBenchmarker(cfg, alphabet, cache)

	printVerbose("Benchmarking length %d over %d symbols", length, alphabet.Len())
	perfRate, err := b.EstimateRate(ctx, length, true)
	if err != nil {
		return nil, fmt.Errorf("performance benchmark failed: %w", err)
	}
	liveRate, err := b.EstimateRate(ctx, length, false)
	if err != nil {
		return nil, fmt.Errorf("live benchmark failed: %w", err)
	}

	chars := estimate.TotalCharacters(r.Min, r.Max, alphabet.Len())
	return &output.Estimate{
		Range:           r,
		AlphabetSize:    alphabet.Len(),
		Combinations:    estimate.TotalCombinations(r.Min, r.Max, alphabet.Len()).String(),
		Characters:      chars.String(),
		BenchmarkLength: length,
		Performance:     output.Projection{Rate: perfRate, Seconds: estimate.Project(chars, perfRate)},
		Live:            output.Projection{Rate: liveRate, Seconds: estimate.Project(chars, liveRate)},
	}, nil
}
