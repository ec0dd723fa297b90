// Package config provides configuration management for forcer.
package config

import (
	"github.com/jamesainslie/forcer/pkg/forcer/generator"
	"github.com/jamesainslie/forcer/pkg/forcer/types"
)

// Default configuration values for forcer.
const (
	// DefaultOutputDir is where per-length files are written.
	DefaultOutputDir = "."

	// DefaultAlphabet is the preset used when no characters are given.
	DefaultAlphabet = types.PresetFull

	// DefaultBatchSize is the initial number of seed symbols per batch.
	DefaultBatchSize = generator.DefaultBatchSize

	// DefaultCheckpointChars is the number of characters between memory checks.
	DefaultCheckpointChars = generator.DefaultCheckpointChars

	// DefaultMemoryCeiling is the target memory utilization percentage.
	DefaultMemoryCeiling = generator.DefaultMemoryCeiling

	// DefaultBenchmarkLength is the length benchmarks generate.
	DefaultBenchmarkLength = 3

	// DefaultCacheTTL is how long benchmark rates stay cached.
	DefaultCacheTTL = "24h"

	// DefaultCacheMaxEntries bounds the benchmark rate cache.
	DefaultCacheMaxEntries = 64

	// DefaultRetentionDays is the default number of days to retain manifests.
	DefaultRetentionDays = 30

	// DefaultLogMaxSize is the size at which the log file rotates.
	DefaultLogMaxSize = "10MB"

	// DefaultLogMaxBackups is the number of rotated log files kept.
	DefaultLogMaxBackups = 5
)

// DefaultComponentLevels are the per-component log levels.
var DefaultComponentLevels = map[string]string{
	"scheduler": "info",
	"generator": "info",
	"governor":  "info",
	"estimate":  "info",
	"tui":       "info",
}
