// Package governor adjusts generation batch sizes to keep system memory
// utilization near a ceiling.
//
// The governor is a heuristic controller: it only acts at the checkpoints
// where the generator consults it, so it cannot stop a single oversized
// batch from spiking memory use.
package governor

import (
	"github.com/jamesainslie/forcer/pkg/forcer/logging"
)

var logger = logging.Get("governor")

const (
	// step is the fractional change applied per adjustment.
	step = 0.10

	// band is how far below the ceiling, in percentage points, utilization
	// must fall before the batch size grows.
	band = 5.0
)

// Sampler reports current system memory utilization as a percentage.
type Sampler interface {
	UtilizationPercent() (float64, error)
}

// Governor decides batch sizes from sampled memory utilization.
// It holds no mutable state and is safe for concurrent use if its
// Sampler is.
type Governor struct {
	sampler Sampler
}

// New returns a Governor that samples utilization from sampler.
func New(sampler Sampler) *Governor {
	return &Governor{sampler: sampler}
}

// Adjust samples memory utilization and returns the batch size to use for
// subsequent batches. If sampling fails the current size is kept.
func (g *Governor) Adjust(current int, ceilingPercent float64) int {
	utilization, err := g.sampler.UtilizationPercent()
	if err != nil {
		logger.Warn("memory sample failed, keeping batch size", "batch_size", current, "err", err)
		return max(current, 1)
	}

	next := Decide(current, ceilingPercent, utilization)
	if next != current {
		logger.Debug("batch size adjusted",
			"from", current, "to", next,
			"utilization", utilization, "ceiling", ceilingPercent)
	}
	return next
}

// Decide is the adjustment policy. Above the ceiling the size shrinks by
// 10%, more than five points below it the size grows by 10%, and in
// between it is unchanged. Every change moves by at least one and the
// result is never below one.
func Decide(current int, ceilingPercent, utilization float64) int {
	current = max(current, 1)

	switch {
	case utilization > ceilingPercent:
		next := min(int(float64(current)*(1-step)), current-1)
		return max(next, 1)
	case utilization < ceilingPercent-band:
		return max(int(float64(current)*(1+step)), current+1)
	default:
		return current
	}
}
