package main

import (
	"fmt"
	"os"

	"github.com/jamesainslie/forcer/pkg/forcer/ratecache"
	"github.com/spf13/cobra"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Manage the benchmark rate cache",
	Long: `Commands for managing the benchmark rate cache.

The cache stores measured generation rates so repeated estimates skip the
benchmark run. Entries are keyed by benchmark length, batch size,
alphabet, and display mode, and expire after benchmark.cache_ttl.
Cache data is stored in the XDG cache directory (typically ~/.cache/forcer/rates).`,
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Clear all cached rates",
	Long:  `Removes all cached rates. The next estimate will benchmark again.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := setup(true)
		if err != nil {
			return err
		}
		cachePath := cfg.CachePath()

		if _, err := os.Stat(cachePath); os.IsNotExist(err) {
			fmt.Println("Cache is already empty.")
			return nil
		}

		cache, err := ratecache.Open(cachePath, cfg.CacheOptions())
		if err != nil {
			return fmt.Errorf("failed to open cache: %w", err)
		}
		defer cache.Close()

		if err := cache.Clear(); err != nil {
			return fmt.Errorf("failed to clear cache: %w", err)
		}

		fmt.Println("Cache cleared.")
		return nil
	},
}

var cacheStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show cache statistics",
	Long:  `Displays the cache location, entry count, and expiry settings.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := setup(true)
		if err != nil {
			return err
		}
		cachePath := cfg.CachePath()

		if _, err := os.Stat(cachePath); os.IsNotExist(err) {
			fmt.Println("Cache: empty (no cache directory)")
			fmt.Printf("Cache location: %s\n", cachePath)
			return nil
		}

		cache, err := ratecache.Open(cachePath, cfg.CacheOptions())
		if err != nil {
			return fmt.Errorf("failed to open cache: %w", err)
		}
		defer cache.Close()

		n, err := cache.Len()
		if err != nil {
			return fmt.Errorf("failed to count entries: %w", err)
		}

		opts := cfg.CacheOptions()
		fmt.Printf("Cache location: %s\n", cachePath)
		fmt.Printf("Cache entries: %d\n", n)
		fmt.Printf("Entry TTL: %s\n", opts.TTL)
		fmt.Printf("Max entries: %d\n", opts.MaxEntries)
		return nil
	},
}

var cachePathCmd = &cobra.Command{
	Use:   "path",
	Short: "Show cache location",
	Long:  `Prints the path to the cache directory.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		fmt.Println(cfg.CachePath())
		return nil
	},
}

func init() {
	cacheCmd.AddCommand(cacheClearCmd)
	cacheCmd.AddCommand(cacheStatsCmd)
	cacheCmd.AddCommand(cachePathCmd)
	rootCmd.AddCommand(cacheCmd)
}
