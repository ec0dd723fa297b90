package generator

// Default generation settings.
const (
	// DefaultBatchSize is the initial number of seed symbols per batch.
	DefaultBatchSize = 100000

	// DefaultCheckpointChars is how many characters are written between
	// memory checks.
	DefaultCheckpointChars = 500000

	// DefaultMemoryCeiling is the target memory utilization percentage.
	DefaultMemoryCeiling = 80.0
)

// Adjuster returns a new batch size given the current one and a memory
// ceiling. *governor.Governor satisfies it.
type Adjuster interface {
	Adjust(current int, ceilingPercent float64) int
}

// Options configures a Generator.
type Options struct {
	// OutputDir is the directory output files are written to.
	OutputDir string

	// BatchSize is the initial batch size.
	BatchSize int

	// CheckpointChars is the number of characters written between
	// consultations of the Governor.
	CheckpointChars int64

	// MemoryCeiling is the utilization percentage passed to the Governor.
	MemoryCeiling float64

	// Governor adjusts the batch size at checkpoints. Nil disables
	// adjustment.
	Governor Adjuster

	// ReportEvery, when positive, reports progress every ReportEvery
	// lines. Otherwise progress is reported once per batch.
	ReportEvery int64

	// OnWrite receives the characters and lines written since the
	// previous call.
	OnWrite func(chars, lines int64)
}

// DefaultOptions returns Options with default values, writing to the
// current directory without memory governance.
func DefaultOptions() Options {
	return Options{
		OutputDir:       ".",
		BatchSize:       DefaultBatchSize,
		CheckpointChars: DefaultCheckpointChars,
		MemoryCeiling:   DefaultMemoryCeiling,
	}
}

// Validate replaces unset or invalid values with defaults.
func (o *Options) Validate() error {
	if o.OutputDir == "" {
		o.OutputDir = "."
	}
	if o.BatchSize < 1 {
		o.BatchSize = DefaultBatchSize
	}
	if o.CheckpointChars < 1 {
		o.CheckpointChars = DefaultCheckpointChars
	}
	if o.MemoryCeiling <= 0 || o.MemoryCeiling > 100 {
		o.MemoryCeiling = DefaultMemoryCeiling
	}
	return nil
}
