package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"

	"github.com/jamesainslie/forcer/cmd/forcer/tui"
	"github.com/jamesainslie/forcer/pkg/forcer/config"
	"github.com/jamesainslie/forcer/pkg/forcer/manifest"
	"github.com/jamesainslie/forcer/pkg/forcer/output"
	"github.com/jamesainslie/forcer/pkg/forcer/scheduler"
	"github.com/jamesainslie/forcer/pkg/forcer/types"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Generate every string for a range of lengths",
	Long: `Generate every string of each length from --min to --max over the
configured alphabet. Each length is written to its own file,
combinations_length<N>.txt, in the output directory.

The projected run time is printed first and the run only starts after
confirmation (skip with --yes). With --live a progress display is shown
while generating; this is slower than the default performance mode.`,
	RunE: runRun,
}

var (
	runMin    int
	runMax    int
	runLive   bool
	runYes    bool
	runFormat string
)

func init() {
	runCmd.Flags().IntVarP(&runMin, "min", "m", 0, "minimum string length")
	runCmd.Flags().IntVarP(&runMax, "max", "M", 0, "maximum string length")
	runCmd.Flags().BoolVarP(&runLive, "live", "l", false, "show live progress (slower)")
	runCmd.Flags().BoolVarP(&runYes, "yes", "y", false, "skip the confirmation prompt")
	runCmd.Flags().StringP("output-dir", "d", "", "directory to write output files to")
	runCmd.Flags().StringVarP(&runFormat, "output", "o", "pretty", "output format (pretty, plain, json, yaml)")
	_ = runCmd.MarkFlagRequired("min")
	_ = runCmd.MarkFlagRequired("max")

	_ = viper.BindPFlag("output_dir", runCmd.Flags().Lookup("output-dir"))

	rootCmd.AddCommand(runCmd)
}

// runRun is the run command handler.
func runRun(cmd *cobra.Command, args []string) error {
	if err := config.ValidateRange(runMin, runMax); err != nil {
		return err
	}

	// Console logs would tear the live display.
	cfg, err := setup(!runLive)
	if err != nil {
		return err
	}

	alphabet, err := cfg.ResolveAlphabet()
	if err != nil {
		return fmt.Errorf("invalid alphabet: %w", err)
	}

	formatter, err := output.Get(runFormat)
	if err != nil {
		return fmt.Errorf("unknown output format %q: available formats are %v", runFormat, output.Available())
	}

	if err := os.MkdirAll(cfg.OutputDir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	// Setup context with cancellation for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)
	var interrupted atomic.Bool
	go func() {
		select {
		case <-sigChan:
			// A second signal falls through to the default handler.
			signal.Stop(sigChan)
			printInfo("\nInterrupted, stopping workers (interrupt again to exit now)...")
			interrupted.Store(true)
			cancel()
		case <-ctx.Done():
		}
	}()

	r := types.LengthRange{Min: runMin, Max: runMax}

	if !runYes || !getQuiet() {
		cache := openRateCache(cfg)
		est, err := buildEstimate(ctx, cfg, alphabet, r, cache)
		if cache != nil {
			_ = cache.Close()
		}
		if err != nil {
			if ctx.Err() != nil {
				printInfo("Run cancelled")
				return nil
			}
			return err
		}

		var buf bytes.Buffer
		if err := formatter.FormatEstimate(&buf, est); err != nil {
			return fmt.Errorf("failed to format output: %w", err)
		}
		fmt.Print(buf.String())
	}

	if !runYes {
		ok, err := confirm(os.Stdin, os.Stdout, "Proceed with generation?")
		if err != nil {
			return fmt.Errorf("failed to read confirmation: %w", err)
		}
		if !ok {
			printInfo("Aborted.")
			return nil
		}
	}

	opts := cfg.SchedulerOptions()
	printVerbose("Generating %s over %d symbols into %s", r, alphabet.Len(), cfg.OutputDir)

	var result *types.RunResult
	if runLive {
		result, err = tui.Run(ctx, tui.Options{Range: r, Alphabet: alphabet, Scheduler: opts})
	} else {
		if !getQuiet() {
			printInfo("Generating lengths %s...", r)
		}
		result, err = scheduler.New(opts).Run(ctx, r, alphabet)
	}
	if err != nil && (result == nil || !errors.Is(err, context.Canceled)) {
		return fmt.Errorf("run failed: %w", err)
	}

	res := output.NewResult(result, alphabet.Len(), cfg.OutputDir)
	res.Interrupted = interrupted.Load() || errors.Is(err, context.Canceled)

	var buf bytes.Buffer
	if err := formatter.Format(&buf, res); err != nil {
		return fmt.Errorf("failed to format output: %w", err)
	}
	fmt.Print(buf.String())

	logManifest(cfg, manifest.Record{
		Operation: manifest.OpRun,
		Result:    result,
		Alphabet:  alphabet.Len(),
		Live:      runLive,
		OutputDir: cfg.OutputDir,
	})

	if n := len(result.Errors); n > 0 {
		return fmt.Errorf("%d of %d workers failed", n, result.Workers)
	}
	return nil
}

// logManifest records an operation in the history if enabled. Failures
// are reported but do not fail the command.
func logManifest(cfg *config.Config, rec manifest.Record) {
	if !cfg.Manifest.Enabled {
		return
	}

	m, err := manifest.New(cfg.ManifestPath())
	if err != nil {
		printVerbose("Failed to open manifest: %v", err)
		return
	}

	entry, err := m.Log(rec)
	if err != nil {
		printError("failed to record history: %v", err)
		return
	}
	printVerbose("Recorded %s", entry.ID)
}
