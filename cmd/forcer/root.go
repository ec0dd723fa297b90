package main

import (
	"fmt"
	"os"

	"github.com/jamesainslie/forcer/pkg/forcer/config"
	"github.com/jamesainslie/forcer/pkg/forcer/logging"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile   string
	configErr error
	rootCmd   = &cobra.Command{
		Use:   "forcer",
		Short: "Enumerate every string over an alphabet for a range of lengths",
		Long: `Forcer writes every string of each length in a range over an alphabet,
one file per length, using one worker per CPU core.

Before a run it benchmarks generation speed and projects how long the
whole range will take, with and without the live progress display.

Examples:
  forcer estimate --min 1 --max 5          # Project run time
  forcer run --min 1 --max 4 --yes         # Generate lengths 1 to 4
  forcer run --min 2 --max 6 --live        # Show live progress
  forcer --alphabet digits run -m 1 -M 8   # Use a preset alphabet
  forcer --chars abc123 run -m 1 -M 6      # Use custom characters
  forcer benchmark --length 4              # Measure throughput
  forcer history                           # View past runs`,
		SilenceUsage: true,
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = logging.Close()
		},
	}
)

func init() {
	cobra.OnInitialize(initConfig)

	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ~/.config/forcer/config.yaml)")
	rootCmd.PersistentFlags().StringP("alphabet", "a", "", "alphabet preset (full, letters, lower, upper, digits, alnum)")
	rootCmd.PersistentFlags().StringP("chars", "c", "", "custom alphabet characters (overrides --alphabet)")
	rootCmd.PersistentFlags().IntP("workers", "w", 0, "override worker count (0=auto)")
	rootCmd.PersistentFlags().BoolP("quiet", "q", false, "minimal output")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "debug output")

	// Bind flags to viper
	_ = viper.BindPFlag("alphabet", rootCmd.PersistentFlags().Lookup("alphabet"))
	_ = viper.BindPFlag("chars", rootCmd.PersistentFlags().Lookup("chars"))
	_ = viper.BindPFlag("workers", rootCmd.PersistentFlags().Lookup("workers"))
	_ = viper.BindPFlag("quiet", rootCmd.PersistentFlags().Lookup("quiet"))
	_ = viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
}

// initConfig reads in config file and environment variables.
func initConfig() {
	config.Configure(viper.GetViper(), cfgFile)
	configErr = config.Read(viper.GetViper())
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// loadConfig decodes the configuration read by initConfig.
func loadConfig() (*config.Config, error) {
	if configErr != nil {
		return nil, configErr
	}
	return config.Decode(viper.GetViper())
}

// setup loads the configuration and starts logging. With console set and
// verbose enabled, debug logs are mirrored to stderr.
func setup(console bool) (*config.Config, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	logCfg, err := cfg.LoggingOptions()
	if err != nil {
		return nil, err
	}
	if console && getVerbose() {
		logCfg.ConsoleLevel = "debug"
	}
	if err := logging.Init(logCfg); err != nil {
		return nil, fmt.Errorf("failed to initialize logging: %w", err)
	}
	return cfg, nil
}

// getVerbose returns true if verbose mode is enabled.
func getVerbose() bool {
	return viper.GetBool("verbose")
}

// getQuiet returns true if quiet mode is enabled.
func getQuiet() bool {
	return viper.GetBool("quiet")
}

// printVerbose prints a message if verbose mode is enabled.
func printVerbose(format string, args ...interface{}) {
	if getVerbose() && !getQuiet() {
		fmt.Fprintf(os.Stderr, "[DEBUG] "+format+"\n", args...)
	}
}

// printInfo prints a message if quiet mode is not enabled.
func printInfo(format string, args ...interface{}) {
	if !getQuiet() {
		fmt.Printf(format+"\n", args...)
	}
}

// printError prints an error message to stderr.
func printError(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
}
