package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jamesainslie/forcer/pkg/forcer/types"
	"github.com/spf13/viper"
)

// isolate points config lookup at an empty temp home.
func isolate(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("XDG_CONFIG_HOME", "")
	return home
}

func TestLoad_Defaults(t *testing.T) {
	isolate(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.OutputDir != DefaultOutputDir {
		t.Errorf("OutputDir = %q, want %q", cfg.OutputDir, DefaultOutputDir)
	}
	if cfg.Alphabet != DefaultAlphabet {
		t.Errorf("Alphabet = %q, want %q", cfg.Alphabet, DefaultAlphabet)
	}
	if cfg.Batch.InitialSize != DefaultBatchSize {
		t.Errorf("Batch.InitialSize = %d, want %d", cfg.Batch.InitialSize, DefaultBatchSize)
	}
	if cfg.Batch.CheckpointChars != DefaultCheckpointChars {
		t.Errorf("Batch.CheckpointChars = %d, want %d", cfg.Batch.CheckpointChars, DefaultCheckpointChars)
	}
	if cfg.Memory.CeilingPercent != DefaultMemoryCeiling {
		t.Errorf("Memory.CeilingPercent = %v, want %v", cfg.Memory.CeilingPercent, DefaultMemoryCeiling)
	}
	if cfg.Benchmark.Length != DefaultBenchmarkLength {
		t.Errorf("Benchmark.Length = %d, want %d", cfg.Benchmark.Length, DefaultBenchmarkLength)
	}
	if cfg.Benchmark.CacheTTL != 24*time.Hour {
		t.Errorf("Benchmark.CacheTTL = %v, want 24h", cfg.Benchmark.CacheTTL)
	}
	if !cfg.Manifest.Enabled {
		t.Error("Manifest.Enabled = false, want true")
	}
	if cfg.Manifest.RetentionDays != DefaultRetentionDays {
		t.Errorf("Manifest.RetentionDays = %d, want %d", cfg.Manifest.RetentionDays, DefaultRetentionDays)
	}
	if cfg.Logging.Components["scheduler"] != "info" {
		t.Errorf("Logging.Components = %v", cfg.Logging.Components)
	}
}

func TestLoad_FromFile(t *testing.T) {
	home := isolate(t)
	configDir := filepath.Join(home, ".config", "forcer")
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		t.Fatalf("failed to create config dir: %v", err)
	}

	content := `
output_dir: ~/out
alphabet: digits
workers: 3
batch:
  initial_size: 500
  checkpoint_chars: 1000
memory:
  ceiling_percent: 60
benchmark:
  length: 2
  cache_ttl: 90m
manifest:
  enabled: false
  retention_days: 7
`
	if err := os.WriteFile(filepath.Join(configDir, "config.yaml"), []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.OutputDir != filepath.Join(home, "out") {
		t.Errorf("OutputDir = %q, want ~ expanded", cfg.OutputDir)
	}
	if cfg.Alphabet != "digits" || cfg.Workers != 3 {
		t.Errorf("Alphabet = %q, Workers = %d", cfg.Alphabet, cfg.Workers)
	}
	if cfg.Batch.InitialSize != 500 || cfg.Batch.CheckpointChars != 1000 {
		t.Errorf("Batch = %+v", cfg.Batch)
	}
	if cfg.Memory.CeilingPercent != 60 {
		t.Errorf("Memory.CeilingPercent = %v", cfg.Memory.CeilingPercent)
	}
	if cfg.Benchmark.CacheTTL != 90*time.Minute {
		t.Errorf("Benchmark.CacheTTL = %v", cfg.Benchmark.CacheTTL)
	}
	if cfg.Manifest.Enabled || cfg.Manifest.RetentionDays != 7 {
		t.Errorf("Manifest = %+v", cfg.Manifest)
	}
}

func TestLoad_EnvOverride(t *testing.T) {
	isolate(t)
	t.Setenv("FORCER_WORKERS", "5")
	t.Setenv("FORCER_BATCH_INITIAL_SIZE", "42")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Workers != 5 {
		t.Errorf("Workers = %d, want 5", cfg.Workers)
	}
	if cfg.Batch.InitialSize != 42 {
		t.Errorf("Batch.InitialSize = %d, want 42", cfg.Batch.InitialSize)
	}
}

func TestRead_ExplicitMissingFile(t *testing.T) {
	isolate(t)
	v := viper.New()
	Configure(v, filepath.Join(t.TempDir(), "absent.yaml"))

	if err := Read(v); err == nil {
		t.Fatal("Read() error = nil, want error for missing explicit config file")
	}
}

func TestValidateRange(t *testing.T) {
	tests := []struct {
		name     string
		min, max int
		wantErr  bool
	}{
		{name: "valid", min: 1, max: 4},
		{name: "equal bounds", min: 3, max: 3, wantErr: true},
		{name: "reversed", min: 5, max: 2, wantErr: true},
		{name: "zero minimum", min: 0, max: 3, wantErr: true},
		{name: "negative maximum", min: 1, max: -1, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateRange(tt.min, tt.max)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidRange) {
					t.Errorf("ValidateRange(%d, %d) error = %v, want ErrInvalidRange", tt.min, tt.max, err)
				}
				return
			}
			if err != nil {
				t.Errorf("ValidateRange(%d, %d) error = %v", tt.min, tt.max, err)
			}
		})
	}
}

func TestResolveAlphabet(t *testing.T) {
	cfg := &Config{Alphabet: "digits"}
	a, err := cfg.ResolveAlphabet()
	if err != nil {
		t.Fatalf("ResolveAlphabet() error = %v", err)
	}
	if a.Len() != 10 {
		t.Errorf("digits preset has %d symbols, want 10", a.Len())
	}

	cfg.Chars = "xyz"
	a, err = cfg.ResolveAlphabet()
	if err != nil {
		t.Fatalf("ResolveAlphabet() error = %v", err)
	}
	if a.String() != "xyz" {
		t.Errorf("custom chars = %q, want xyz", a.String())
	}

	cfg.Chars = "xx"
	if _, err := cfg.ResolveAlphabet(); !errors.Is(err, types.ErrDuplicateSymbol) {
		t.Errorf("duplicate chars error = %v, want ErrDuplicateSymbol", err)
	}

	cfg = &Config{Alphabet: "klingon"}
	if _, err := cfg.ResolveAlphabet(); !errors.Is(err, types.ErrUnknownPreset) {
		t.Errorf("unknown preset error = %v, want ErrUnknownPreset", err)
	}

	cfg = &Config{}
	a, err = cfg.ResolveAlphabet()
	if err != nil || a.Len() != types.DefaultAlphabet().Len() {
		t.Errorf("empty config alphabet = %d symbols, err %v", a.Len(), err)
	}
}

func TestLoggingOptions(t *testing.T) {
	cfg := &Config{Logging: LoggingConfig{
		Level:    "debug",
		Rotation: RotationConfig{MaxSize: "2MB", MaxBackups: 3},
	}}

	opts, err := cfg.LoggingOptions()
	if err != nil {
		t.Fatalf("LoggingOptions() error = %v", err)
	}
	if opts.Rotation.MaxSize != 2000000 {
		t.Errorf("Rotation.MaxSize = %d, want 2000000", opts.Rotation.MaxSize)
	}
	if opts.Rotation.MaxBackups != 3 || opts.Level != "debug" {
		t.Errorf("opts = %+v", opts)
	}

	cfg.Logging.Rotation.MaxSize = "lots"
	if _, err := cfg.LoggingOptions(); err == nil {
		t.Error("LoggingOptions() error = nil for invalid size")
	}
}

func TestSchedulerOptions(t *testing.T) {
	cfg := &Config{OutputDir: "/out", Workers: 2}
	cfg.Batch.InitialSize = 10
	cfg.Batch.CheckpointChars = 99
	cfg.Memory.CeilingPercent = 70

	opts := cfg.SchedulerOptions()
	if opts.Workers != 2 || opts.Generator.OutputDir != "/out" {
		t.Errorf("opts = %+v", opts)
	}
	if opts.Generator.BatchSize != 10 || opts.Generator.CheckpointChars != 99 || opts.Generator.MemoryCeiling != 70 {
		t.Errorf("generator opts = %+v", opts.Generator)
	}
	if opts.Generator.Governor != nil {
		t.Error("Governor should be left for the scheduler to supply")
	}
}

func TestWriteDefault(t *testing.T) {
	xdgHome := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", xdgHome)

	path, err := WriteDefault()
	if err != nil {
		t.Fatalf("WriteDefault() error = %v", err)
	}
	if path != filepath.Join(xdgHome, "forcer", "config.yaml") {
		t.Errorf("path = %q", path)
	}

	// The written file must load back to the defaults.
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Batch.InitialSize != DefaultBatchSize || cfg.Benchmark.CacheMaxEntries != DefaultCacheMaxEntries {
		t.Errorf("loaded defaults mismatch: %+v", cfg)
	}

	// A second call keeps the existing file.
	if err := os.WriteFile(path, []byte("workers: 9\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := WriteDefault(); err != nil {
		t.Fatalf("WriteDefault() second call error = %v", err)
	}
	data, _ := os.ReadFile(path)
	if string(data) != "workers: 9\n" {
		t.Error("WriteDefault overwrote an existing file")
	}
}

func TestExpandPath(t *testing.T) {
	home := isolate(t)

	got, err := ExpandPath("~/x")
	if err != nil || got != filepath.Join(home, "x") {
		t.Errorf("ExpandPath(~/x) = %q, %v", got, err)
	}
	got, _ = ExpandPath("/abs")
	if got != "/abs" {
		t.Errorf("ExpandPath(/abs) = %q", got)
	}
}
