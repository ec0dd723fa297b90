package main

import (
	"fmt"
	"strings"

	"github.com/jamesainslie/forcer/pkg/forcer/config"
	"github.com/jamesainslie/forcer/pkg/forcer/manifest"
	"github.com/jamesainslie/forcer/pkg/forcer/types"
	"github.com/spf13/cobra"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "View operation history",
	Long: `View the history of generation runs and benchmarks.

The manifest stores a record of every run and benchmark, including the
per-length counts, the measured rate, and any failed workers.`,
	RunE: runHistory,
}

var historyShowCmd = &cobra.Command{
	Use:   "show [id]",
	Short: "Show details of a specific operation",
	Long:  `Display detailed information about a specific operation by its ID or a unique ID prefix.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runHistoryShow,
}

var historyCleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Clean up old history entries",
	Long:  `Remove history entries older than the retention period.`,
	RunE:  runHistoryClean,
}

var (
	historyLimit int
)

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "maximum number of entries to show")

	historyCmd.AddCommand(historyShowCmd)
	historyCmd.AddCommand(historyCleanCmd)
	rootCmd.AddCommand(historyCmd)
}

// getManifest returns a manifest instance with the configured directory.
func getManifest() (*manifest.Manifest, *config.Config, error) {
	cfg, err := setup(true)
	if err != nil {
		return nil, nil, err
	}

	m, err := manifest.New(cfg.ManifestPath())
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize manifest: %w", err)
	}
	return m, cfg, nil
}

// runHistory lists recent operations.
func runHistory(cmd *cobra.Command, args []string) error {
	m, _, err := getManifest()
	if err != nil {
		return err
	}

	entries, err := m.List(historyLimit)
	if err != nil {
		return fmt.Errorf("failed to list history: %w", err)
	}

	if len(entries) == 0 {
		printInfo("No history entries found.")
		printInfo("Run 'forcer run --min N --max M' to generate.")
		return nil
	}

	fmt.Printf("\n%-38s  %-9s  %-10s  %-16s  %-14s\n", "ID", "TYPE", "RANGE", "CHARS", "RATE")
	fmt.Println(strings.Repeat("-", 95))

	for i := range entries {
		entry := &entries[i]
		fmt.Printf("%-38s  %-9s  %-10s  %-16s  %-14s\n",
			truncateString(entry.ID, 38),
			entry.Operation,
			entry.Range,
			types.FormatCount(entry.Summary.TotalCombinations),
			manifest.RateOf(entry),
		)
	}

	fmt.Println(strings.Repeat("-", 95))
	fmt.Printf("\nShowing %d entries. Use --limit to see more.\n", len(entries))
	fmt.Println("Use 'forcer history show <id>' for details on a specific entry.")

	return nil
}

// runHistoryShow displays details of a specific operation.
func runHistoryShow(cmd *cobra.Command, args []string) error {
	id := args[0]

	m, _, err := getManifest()
	if err != nil {
		return err
	}

	entry, err := m.Get(id)
	if err != nil {
		return fmt.Errorf("failed to get entry: %w", err)
	}

	fmt.Println("\nOperation Details")
	fmt.Println(strings.Repeat("=", 60))
	fmt.Printf("ID:         %s\n", entry.ID)
	fmt.Printf("Timestamp:  %s\n", entry.Timestamp.Format("2006-01-02 15:04:05 MST"))
	fmt.Printf("Operation:  %s\n", entry.Operation)
	fmt.Printf("Range:      %s\n", entry.Range)
	fmt.Printf("Alphabet:   %d symbols\n", entry.Alphabet)
	fmt.Printf("Workers:    %d\n", entry.Workers)
	fmt.Printf("Live:       %t\n", entry.Live)
	if entry.OutputDir != "" {
		fmt.Printf("Output:     %s\n", entry.OutputDir)
	}
	fmt.Printf("Chars:      %s\n", types.FormatCount(entry.Summary.TotalCombinations))
	fmt.Printf("Lines:      %s\n", types.FormatCount(entry.Summary.TotalLines))
	fmt.Printf("Elapsed:    %.3fs (wall %.3fs)\n", entry.Summary.ElapsedSec, entry.Summary.WallSec)
	fmt.Printf("Rate:       %s\n", manifest.RateOf(entry))

	if len(entry.Lengths) > 0 {
		fmt.Println("\nLengths:")
		fmt.Println(strings.Repeat("-", 60))
		fmt.Printf("%-8s  %-16s  %-14s  %-10s  %s\n", "LENGTH", "CHARS", "LINES", "ELAPSED", "WORKER")
		fmt.Println(strings.Repeat("-", 60))
		for _, l := range entry.Lengths {
			fmt.Printf("%-8d  %-16s  %-14s  %-10s  %d\n",
				l.Length,
				types.FormatCount(l.Combinations),
				types.FormatCount(l.Lines),
				fmt.Sprintf("%.3fs", l.ElapsedSec),
				l.Worker)
		}
	}

	if len(entry.Errors) > 0 {
		fmt.Println("\nFailed workers:")
		fmt.Println(strings.Repeat("-", 60))
		for _, e := range entry.Errors {
			fmt.Printf("worker %d %s at length %d: %s\n", e.Worker, e.Range, e.Length, e.Err)
		}
	}

	return nil
}

// runHistoryClean removes old history entries.
func runHistoryClean(cmd *cobra.Command, args []string) error {
	m, cfg, err := getManifest()
	if err != nil {
		return err
	}

	retentionDays := cfg.Manifest.RetentionDays
	if retentionDays <= 0 {
		retentionDays = config.DefaultRetentionDays
	}

	printInfo("Cleaning history entries older than %d days...", retentionDays)

	removed, err := m.Cleanup(retentionDays)
	if err != nil {
		return fmt.Errorf("failed to clean history: %w", err)
	}

	printInfo("History cleanup complete, %d entries removed.", removed)
	return nil
}

// truncateString truncates a string to maxLen, adding "..." if truncated.
func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}
