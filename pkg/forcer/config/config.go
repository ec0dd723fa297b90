package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"github.com/dustin/go-humanize"
	"github.com/jamesainslie/forcer/pkg/forcer/generator"
	"github.com/jamesainslie/forcer/pkg/forcer/logging"
	"github.com/jamesainslie/forcer/pkg/forcer/ratecache"
	"github.com/jamesainslie/forcer/pkg/forcer/scheduler"
	"github.com/jamesainslie/forcer/pkg/forcer/types"
	"github.com/spf13/viper"
)

// ErrInvalidRange is returned by ValidateRange.
var ErrInvalidRange = types.ErrInvalidRange

// RotationConfig configures log file rotation.
type RotationConfig struct {
	MaxSize    string `mapstructure:"max_size"`
	MaxBackups int    `mapstructure:"max_backups"`
}

// LoggingConfig configures application logging.
type LoggingConfig struct {
	Level      string            `mapstructure:"level"`
	Path       string            `mapstructure:"path"`
	Rotation   RotationConfig    `mapstructure:"rotation"`
	Components map[string]string `mapstructure:"components"`
}

// BatchConfig configures batch sizing.
type BatchConfig struct {
	InitialSize     int   `mapstructure:"initial_size"`
	CheckpointChars int64 `mapstructure:"checkpoint_chars"`
}

// MemoryConfig configures the memory governor.
type MemoryConfig struct {
	CeilingPercent float64 `mapstructure:"ceiling_percent"`
}

// BenchmarkConfig configures rate measurement.
type BenchmarkConfig struct {
	Length          int           `mapstructure:"length"`
	Cache           bool          `mapstructure:"cache"`
	CachePath       string        `mapstructure:"cache_path"`
	CacheTTL        time.Duration `mapstructure:"cache_ttl"`
	CacheMaxEntries int           `mapstructure:"cache_max_entries"`
}

// ManifestConfig configures run history.
type ManifestConfig struct {
	Enabled       bool   `mapstructure:"enabled"`
	Path          string `mapstructure:"path"`
	RetentionDays int    `mapstructure:"retention_days"`
}

// Config represents the application configuration.
type Config struct {
	OutputDir string          `mapstructure:"output_dir"`
	Alphabet  string          `mapstructure:"alphabet"`
	Chars     string          `mapstructure:"chars"`
	Workers   int             `mapstructure:"workers"`
	Batch     BatchConfig     `mapstructure:"batch"`
	Memory    MemoryConfig    `mapstructure:"memory"`
	Benchmark BenchmarkConfig `mapstructure:"benchmark"`
	Manifest  ManifestConfig  `mapstructure:"manifest"`
	Logging   LoggingConfig   `mapstructure:"logging"`
}

// Configure prepares v to read forcer configuration: the config file
// location, FORCER_ environment variables, and defaults. If cfgFile is
// empty the file is searched for in:
//   - $XDG_CONFIG_HOME/forcer/config.yaml
//   - $HOME/.config/forcer/config.yaml
func Configure(v *viper.Viper, cfgFile string) {
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		if dir, err := ConfigDir(); err == nil {
			v.AddConfigPath(dir)
		}
	}

	v.SetEnvPrefix("FORCER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	SetDefaults(v)
}

// SetDefaults registers every default value on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("output_dir", DefaultOutputDir)
	v.SetDefault("alphabet", DefaultAlphabet)
	v.SetDefault("chars", "")
	v.SetDefault("workers", 0)

	v.SetDefault("batch.initial_size", DefaultBatchSize)
	v.SetDefault("batch.checkpoint_chars", DefaultCheckpointChars)
	v.SetDefault("memory.ceiling_percent", DefaultMemoryCeiling)

	v.SetDefault("benchmark.length", DefaultBenchmarkLength)
	v.SetDefault("benchmark.cache", true)
	v.SetDefault("benchmark.cache_path", "") // Empty means ratecache.DefaultPath
	v.SetDefault("benchmark.cache_ttl", DefaultCacheTTL)
	v.SetDefault("benchmark.cache_max_entries", DefaultCacheMaxEntries)

	v.SetDefault("manifest.enabled", true)
	v.SetDefault("manifest.path", "") // Empty means DataDir()/manifest
	v.SetDefault("manifest.retention_days", DefaultRetentionDays)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.path", "") // Empty means logging.DefaultLogPath
	v.SetDefault("logging.rotation.max_size", DefaultLogMaxSize)
	v.SetDefault("logging.rotation.max_backups", DefaultLogMaxBackups)
	v.SetDefault("logging.components", DefaultComponentLevels)
}

// Read reads the config file into v. A missing file is not an error.
func Read(v *viper.Viper) error {
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}
		// An explicit path that doesn't exist surfaces as a PathError.
		if os.IsNotExist(err) {
			return fmt.Errorf("config file not found: %w", err)
		}
		return fmt.Errorf("failed to read config file: %w", err)
	}
	return nil
}

// Decode unmarshals v into a Config and expands ~ in paths.
func Decode(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	for _, p := range []*string{&cfg.OutputDir, &cfg.Manifest.Path, &cfg.Benchmark.CachePath, &cfg.Logging.Path} {
		expanded, err := ExpandPath(*p)
		if err != nil {
			return nil, err
		}
		*p = expanded
	}
	return &cfg, nil
}

// Load loads configuration from the default file location and environment.
func Load() (*Config, error) {
	v := viper.New()
	Configure(v, "")
	if err := Read(v); err != nil {
		return nil, err
	}
	return Decode(v)
}

// ValidateRange checks a requested length range: both bounds at least one
// and min strictly below max.
func ValidateRange(minLen, maxLen int) error {
	if minLen < 1 || maxLen < 1 {
		return fmt.Errorf("%w: lengths must be at least 1 (got %d, %d)", ErrInvalidRange, minLen, maxLen)
	}
	if minLen >= maxLen {
		return fmt.Errorf("%w: minimum %d must be less than maximum %d", ErrInvalidRange, minLen, maxLen)
	}
	return nil
}

// ResolveAlphabet returns the configured alphabet. Custom characters take
// precedence over the preset name.
func (c *Config) ResolveAlphabet() (types.Alphabet, error) {
	if c.Chars != "" {
		return types.NewAlphabet(c.Chars)
	}
	name := c.Alphabet
	if name == "" {
		name = DefaultAlphabet
	}
	return types.PresetAlphabet(name)
}

// SchedulerOptions maps the configuration onto scheduler options. The
// generator's Governor is left nil so the scheduler samples live memory.
func (c *Config) SchedulerOptions() scheduler.Options {
	return scheduler.Options{
		Workers: c.Workers,
		Generator: generator.Options{
			OutputDir:       c.OutputDir,
			BatchSize:       c.Batch.InitialSize,
			CheckpointChars: c.Batch.CheckpointChars,
			MemoryCeiling:   c.Memory.CeilingPercent,
		},
	}
}

// CacheOptions maps the benchmark cache settings onto ratecache options.
func (c *Config) CacheOptions() ratecache.Options {
	return ratecache.Options{
		TTL:        c.Benchmark.CacheTTL,
		MaxEntries: c.Benchmark.CacheMaxEntries,
	}
}

// CachePath returns the rate cache directory.
func (c *Config) CachePath() string {
	if c.Benchmark.CachePath != "" {
		return c.Benchmark.CachePath
	}
	return ratecache.DefaultPath()
}

// ManifestPath returns the manifest directory.
func (c *Config) ManifestPath() string {
	if c.Manifest.Path != "" {
		return c.Manifest.Path
	}
	return filepath.Join(DataDir(), "manifest")
}

// LoggingOptions maps the logging section onto logging.Config.
func (c *Config) LoggingOptions() (logging.Config, error) {
	rotation := logging.DefaultRotationConfig()
	if c.Logging.Rotation.MaxSize != "" {
		size, err := humanize.ParseBytes(c.Logging.Rotation.MaxSize)
		if err != nil {
			return logging.Config{}, fmt.Errorf("invalid logging.rotation.max_size %q: %w", c.Logging.Rotation.MaxSize, err)
		}
		rotation.MaxSize = int64(size)
	}
	if c.Logging.Rotation.MaxBackups > 0 {
		rotation.MaxBackups = c.Logging.Rotation.MaxBackups
	}

	return logging.Config{
		Level:      c.Logging.Level,
		Path:       c.Logging.Path,
		Rotation:   rotation,
		Components: c.Logging.Components,
	}, nil
}

// ConfigDir returns the configuration directory path.
func ConfigDir() (string, error) {
	if xdgConfigHome := os.Getenv("XDG_CONFIG_HOME"); xdgConfigHome != "" {
		return filepath.Join(xdgConfigHome, "forcer"), nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}
	return filepath.Join(homeDir, ".config", "forcer"), nil
}

// ConfigPath returns the default configuration file path.
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// DataDir returns $XDG_DATA_HOME/forcer/ for run history.
func DataDir() string {
	return filepath.Join(xdg.DataHome, "forcer")
}

// WriteDefault writes a default config file if none exists and returns its
// path. An existing file is left untouched.
func WriteDefault() (string, error) {
	configPath, err := ConfigPath()
	if err != nil {
		return "", err
	}

	if _, err := os.Stat(configPath); err == nil {
		return configPath, nil
	} else if !os.IsNotExist(err) {
		return "", fmt.Errorf("failed to check config file: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(configPath), 0o755); err != nil {
		return "", fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(configPath, []byte(defaultConfig()), 0o644); err != nil {
		return "", fmt.Errorf("failed to write default config: %w", err)
	}
	return configPath, nil
}

func defaultConfig() string {
	return fmt.Sprintf(`# forcer configuration

# Directory per-length output files are written to
output_dir: %s

# Alphabet preset: %s
alphabet: %s
# Custom characters; overrides the preset when set
chars: ""

# Worker count (0 = one per CPU core)
workers: 0

batch:
  # Initial number of first-position symbols per batch
  initial_size: %d
  # Characters written between memory checks
  checkpoint_chars: %d

memory:
  # Batch size shrinks above this utilization and grows well below it
  ceiling_percent: %.0f

benchmark:
  # Length measured before a run
  length: %d
  # Cache measured rates between invocations
  cache: true
  # Cache directory (empty means $XDG_CACHE_HOME/forcer/rates)
  cache_path: ""
  cache_ttl: %s
  cache_max_entries: %d

# Run history
manifest:
  enabled: true
  # Empty means $XDG_DATA_HOME/forcer/manifest
  path: ""
  retention_days: %d

logging:
  # Log level: debug, info, warn, error
  level: info
  # Log file path (empty means $XDG_STATE_HOME/forcer/forcer.log)
  path: ""
  rotation:
    max_size: %s
    max_backups: %d
  components:
    scheduler: info
    generator: info
    governor: info
    estimate: info
    tui: info
`, DefaultOutputDir, strings.Join(types.PresetNames(), ", "), DefaultAlphabet,
		DefaultBatchSize, DefaultCheckpointChars, DefaultMemoryCeiling,
		DefaultBenchmarkLength, DefaultCacheTTL, DefaultCacheMaxEntries,
		DefaultRetentionDays, DefaultLogMaxSize, DefaultLogMaxBackups)
}

// ExpandPath expands ~ in a path to the user's home directory.
func ExpandPath(path string) (string, error) {
	if !strings.HasPrefix(path, "~") {
		return path, nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}
	return filepath.Join(homeDir, path[1:]), nil
}
