package main

import (
	"bytes"
	"fmt"

	"github.com/jamesainslie/forcer/pkg/forcer/manifest"
	"github.com/jamesainslie/forcer/pkg/forcer/output"
	"github.com/spf13/cobra"
)

var benchmarkCmd = &cobra.Command{
	Use:   "benchmark",
	Short: "Measure generation throughput",
	Long: `Generate every string of a single length into a temporary directory
and report the characters written per second.

The measurement always runs, even when a cached rate exists, and
replaces the cached rate used by 'forcer estimate' and 'forcer run'.
With --live the run reports progress after every line, as the live
display does.`,
	RunE: runBenchmark,
}

var (
	benchmarkLength int
	benchmarkLive   bool
	benchmarkFormat string
)

func init() {
	benchmarkCmd.Flags().IntVarP(&benchmarkLength, "length", "L", 0, "string length to measure (default: benchmark.length)")
	benchmarkCmd.Flags().BoolVarP(&benchmarkLive, "live", "l", false, "measure with per-line progress reporting")
	benchmarkCmd.Flags().StringVarP(&benchmarkFormat, "output", "o", "pretty", "output format (pretty, plain, json, yaml)")

	rootCmd.AddCommand(benchmarkCmd)
}

// runBenchmark measures one rate and prints the run summary.
func runBenchmark(cmd *cobra.Command, args []string) error {
	cfg, err := setup(true)
	if err != nil {
		return err
	}

	length := benchmarkLength
	if length == 0 {
		length = cfg.Benchmark.Length
	}
	if length < 1 {
		return fmt.Errorf("benchmark length must be at least 1, got %d", length)
	}

	alphabet, err := cfg.ResolveAlphabet()
	if err != nil {
		return fmt.Errorf("invalid alphabet: %w", err)
	}

	formatter, err := output.Get(benchmarkFormat)
	if err != nil {
		return fmt.Errorf("unknown output format %q: available formats are %v", benchmarkFormat, output.Available())
	}

	cache := openRateCache(cfg)
	if cache != nil {
		defer cache.Close()
	}

	printVerbose("Benchmarking length %d over %d symbols (live: %t)", length, alphabet.Len(), benchmarkLive)
	result, err := newBenchmarker(cfg, alphabet, cache).Measure(cmd.Context(), length, !benchmarkLive)
	if err != nil {
		return err
	}

	res := output.NewResult(result, alphabet.Len(), "")
	res.Benchmark = true

	var buf bytes.Buffer
	if err := formatter.Format(&buf, res); err != nil {
		return fmt.Errorf("failed to format output: %w", err)
	}
	fmt.Print(buf.String())

	logManifest(cfg, manifest.Record{
		Operation: manifest.OpBenchmark,
		Result:    result,
		Alphabet:  alphabet.Len(),
		Live:      benchmarkLive,
	})
	return nil
}
