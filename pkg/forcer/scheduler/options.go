// Package scheduler runs combination generation over a range of lengths
// with one worker per processing unit.
//
// The range is split into contiguous sub-ranges, one per worker. Each worker
// owns its generator and output files and pushes one result per completed
// length onto a shared channel sized so that producers never block. Workers
// do not communicate with each other; a failing worker stops on its own and
// is reported without affecting the rest.
package scheduler

import (
	"github.com/jamesainslie/forcer/pkg/forcer/generator"
	"github.com/jamesainslie/forcer/pkg/forcer/types"
)

// progressInterval is the minimum time between throttled progress reports,
// in milliseconds.
const progressInterval = 100

// Options configures a Scheduler.
type Options struct {
	// Workers is the number of workers. Zero or less uses one worker per
	// logical CPU core.
	Workers int

	// Generator configures every worker's generator. OnWrite is replaced by
	// the scheduler. A nil Governor is replaced by one sampling live system
	// memory.
	Generator generator.Options

	// OnProgress is called with run progress, at most every 100ms plus a
	// final report. It is called from worker goroutines and must be safe
	// for concurrent use.
	OnProgress func(types.Progress)
}

// DefaultOptions returns options with one worker per core and default
// generator settings.
func DefaultOptions() Options {
	return Options{Generator: generator.DefaultOptions()}
}

// Validate fills unset values with defaults.
func (o *Options) Validate() error {
	if o.Workers < 1 {
		o.Workers = detectWorkers(0)
	}
	return o.Generator.Validate()
}
