package main

import (
	"fmt"
	"io"
	"os"
	"os/exec"
	"sort"

	"github.com/jamesainslie/forcer/pkg/forcer/config"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
	Long: `Manage forcer configuration settings.

Configuration is loaded from:
  1. $XDG_CONFIG_HOME/forcer/config.yaml (if set)
  2. ~/.config/forcer/config.yaml

Environment variables can override config file settings using the FORCER_ prefix:
  FORCER_ALPHABET=digits
  FORCER_WORKERS=8
  FORCER_BATCH_INITIAL_SIZE=50000
  FORCER_MEMORY_CEILING_PERCENT=70`,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	Long:  `Display the current configuration settings from all sources.`,
	RunE:  runConfigShow,
}

var configEditCmd = &cobra.Command{
	Use:   "edit",
	Short: "Edit configuration file",
	Long: `Open the configuration file in your default editor.

The editor is determined by:
  1. $VISUAL environment variable
  2. $EDITOR environment variable
  3. Falls back to 'vi'

If the config file doesn't exist, a default one will be created first.`,
	RunE: runConfigEdit,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create default configuration file",
	Long:  `Create a default configuration file if one doesn't exist.`,
	RunE:  runConfigInit,
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Show configuration file path",
	Long:  `Display the path to the configuration file.`,
	RunE:  runConfigPath,
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configEditCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configPathCmd)
	rootCmd.AddCommand(configCmd)
}

// configEnvVars lists the environment overrides reported by config show.
var configEnvVars = []string{
	"FORCER_OUTPUT_DIR",
	"FORCER_ALPHABET",
	"FORCER_CHARS",
	"FORCER_WORKERS",
	"FORCER_BATCH_INITIAL_SIZE",
	"FORCER_BATCH_CHECKPOINT_CHARS",
	"FORCER_MEMORY_CEILING_PERCENT",
	"FORCER_BENCHMARK_LENGTH",
	"FORCER_BENCHMARK_CACHE",
	"FORCER_BENCHMARK_CACHE_TTL",
	"FORCER_MANIFEST_ENABLED",
	"FORCER_MANIFEST_PATH",
	"FORCER_MANIFEST_RETENTION_DAYS",
	"FORCER_LOGGING_LEVEL",
	"FORCER_LOGGING_PATH",
}

// runConfigShow displays the current configuration.
func runConfigShow(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		printError("Failed to load configuration: %v", err)
		// Show defaults anyway
		v := viper.New()
		config.SetDefaults(v)
		if cfg, err = config.Decode(v); err != nil {
			return err
		}
	}

	if configFile := viper.ConfigFileUsed(); configFile != "" {
		fmt.Printf("Config file: %s\n\n", configFile)
	} else {
		fmt.Println("Config file: (using defaults, no file found)")
		fmt.Println()
	}

	fmt.Println("Current Configuration:")
	fmt.Println("----------------------")
	printConfig(os.Stdout, cfg)

	fmt.Println("\nEnvironment Overrides:")
	fmt.Println("----------------------")
	anyOverrides := false
	for _, name := range configEnvVars {
		if val := os.Getenv(name); val != "" {
			fmt.Printf("%s=%s\n", name, val)
			anyOverrides = true
		}
	}
	if !anyOverrides {
		fmt.Println("(none)")
	}

	return nil
}

// printConfig writes the effective configuration as key: value lines.
func printConfig(w io.Writer, cfg *config.Config) {
	chars := cfg.Chars
	if chars == "" {
		chars = "(preset)"
	}

	fmt.Fprintf(w, "output_dir:                 %s\n", cfg.OutputDir)
	fmt.Fprintf(w, "alphabet:                   %s\n", cfg.Alphabet)
	fmt.Fprintf(w, "chars:                      %s\n", chars)
	fmt.Fprintf(w, "workers:                    %d\n", cfg.Workers)
	fmt.Fprintf(w, "batch.initial_size:         %d\n", cfg.Batch.InitialSize)
	fmt.Fprintf(w, "batch.checkpoint_chars:     %d\n", cfg.Batch.CheckpointChars)
	fmt.Fprintf(w, "memory.ceiling_percent:     %.0f\n", cfg.Memory.CeilingPercent)
	fmt.Fprintf(w, "benchmark.length:           %d\n", cfg.Benchmark.Length)
	fmt.Fprintf(w, "benchmark.cache:            %t\n", cfg.Benchmark.Cache)
	fmt.Fprintf(w, "benchmark.cache_path:       %s\n", cfg.CachePath())
	fmt.Fprintf(w, "benchmark.cache_ttl:        %s\n", cfg.Benchmark.CacheTTL)
	fmt.Fprintf(w, "benchmark.cache_max:        %d\n", cfg.Benchmark.CacheMaxEntries)
	fmt.Fprintf(w, "manifest.enabled:           %t\n", cfg.Manifest.Enabled)
	fmt.Fprintf(w, "manifest.path:              %s\n", cfg.ManifestPath())
	fmt.Fprintf(w, "manifest.retention:         %d days\n", cfg.Manifest.RetentionDays)
	fmt.Fprintf(w, "logging.level:              %s\n", cfg.Logging.Level)
	fmt.Fprintf(w, "logging.rotation.max_size:  %s\n", cfg.Logging.Rotation.MaxSize)

	components := make([]string, 0, len(cfg.Logging.Components))
	for name := range cfg.Logging.Components {
		components = append(components, name)
	}
	sort.Strings(components)
	for _, name := range components {
		fmt.Fprintf(w, "logging.components.%-8s %s\n", name+":", cfg.Logging.Components[name])
	}
}

// runConfigEdit opens the config file in an editor.
func runConfigEdit(cmd *cobra.Command, args []string) error {
	configPath, err := config.WriteDefault()
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}

	editor := os.Getenv("VISUAL")
	if editor == "" {
		editor = os.Getenv("EDITOR")
	}
	if editor == "" {
		editor = "vi"
	}

	printVerbose("Opening %s with %s", configPath, editor)

	editorCmd := exec.Command(editor, configPath)
	editorCmd.Stdin = os.Stdin
	editorCmd.Stdout = os.Stdout
	editorCmd.Stderr = os.Stderr

	if err := editorCmd.Run(); err != nil {
		return fmt.Errorf("editor command failed: %w", err)
	}

	return nil
}

// runConfigInit creates a default config file.
func runConfigInit(cmd *cobra.Command, args []string) error {
	configPath, err := config.ConfigPath()
	if err != nil {
		return fmt.Errorf("failed to get config path: %w", err)
	}

	if _, err := os.Stat(configPath); err == nil {
		printInfo("Config file already exists: %s", configPath)
		printInfo("Use 'forcer config edit' to modify it.")
		return nil
	}

	if _, err := config.WriteDefault(); err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}

	printInfo("Created default config file: %s", configPath)
	return nil
}

// runConfigPath shows the config file path.
func runConfigPath(cmd *cobra.Command, args []string) error {
	configPath, err := config.ConfigPath()
	if err != nil {
		return fmt.Errorf("failed to get config path: %w", err)
	}

	fmt.Println(configPath)

	if _, err := os.Stat(configPath); err == nil {
		printVerbose("File exists")
	} else if os.IsNotExist(err) {
		printVerbose("File does not exist (will use defaults)")
	}

	return nil
}
