package tuner

// maxWorkers caps the worker count regardless of core count or override.
const maxWorkers = 256

// OptimalConfig contains the worker configuration for a run.
type OptimalConfig struct {
	// Workers is the number of generator workers, one per core by default.
	Workers int
}

// Calculate returns one worker per logical CPU core.
func Calculate(resources SystemResources) OptimalConfig {
	workers := max(resources.CPUCores, 1)
	return OptimalConfig{Workers: min(workers, maxWorkers)}
}

// CalculateWithOverrides applies a user worker override to the optimal config.
// If workerOverride is greater than 0 it replaces the core-derived count
// (still capped). Otherwise the calculated value is used.
func CalculateWithOverrides(resources SystemResources, workerOverride int) OptimalConfig {
	config := Calculate(resources)
	if workerOverride > 0 {
		config.Workers = min(workerOverride, maxWorkers)
	}
	return config
}
