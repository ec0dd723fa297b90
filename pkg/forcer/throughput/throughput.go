// Package throughput combines per-length generation results into a single
// throughput figure.
package throughput

import (
	"math"
	"sync"
	"time"

	"github.com/HdrHistogram/hdrhistogram-go"
	"github.com/jamesainslie/forcer/pkg/forcer/types"
)

// Histogram bounds for per-length elapsed times, in microseconds.
const (
	histogramMin     = 1
	histogramMax     = 30 * 24 * 3600 * 1000000 // 30 days
	histogramSigFigs = 3
)

// Aggregate sums the results and derives the overall rate.
// An empty slice yields zero totals with an unbounded rate.
func Aggregate(results []types.LengthResult) types.AggregateResult {
	c := NewCollector()
	for _, r := range results {
		c.Add(r)
	}
	return c.Result()
}

// Rate returns combinations per second of elapsed time, and whether the
// rate is unbounded because no time elapsed.
func Rate(combinations int64, elapsed time.Duration) (float64, bool) {
	if elapsed <= 0 {
		return math.Inf(1), true
	}
	return float64(combinations) / elapsed.Seconds(), false
}

// Collector accumulates results one at a time. It is safe for concurrent use.
type Collector struct {
	mu sync.Mutex

	combinations int64
	lines        int64
	elapsed      time.Duration

	// durations holds per-length elapsed times in microseconds.
	durations *hdrhistogram.Histogram
}

// NewCollector returns an empty Collector.
func NewCollector() *Collector {
	return &Collector{
		durations: hdrhistogram.New(histogramMin, histogramMax, histogramSigFigs),
	}
}

// Add records one length result.
func (c *Collector) Add(r types.LengthResult) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.combinations += r.Combinations
	c.lines += r.Lines
	c.elapsed += r.Elapsed

	micros := min(max(r.Elapsed.Microseconds(), 0), histogramMax)
	_ = c.durations.RecordValue(micros)
}

// Count returns the number of results added.
func (c *Collector) Count() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.durations.TotalCount()
}

// Result returns the aggregate of everything added so far.
func (c *Collector) Result() types.AggregateResult {
	c.mu.Lock()
	defer c.mu.Unlock()

	rate, unbounded := Rate(c.combinations, c.elapsed)
	result := types.AggregateResult{
		TotalCombinations: c.combinations,
		TotalLines:        c.lines,
		TotalElapsed:      c.elapsed,
		Rate:              rate,
		Unbounded:         unbounded,
	}
	if c.durations.TotalCount() > 0 {
		result.Durations = types.DurationStats{
			P50: time.Duration(c.durations.ValueAtQuantile(50)) * time.Microsecond,
			P95: time.Duration(c.durations.ValueAtQuantile(95)) * time.Microsecond,
			Max: time.Duration(c.durations.Max()) * time.Microsecond,
		}
	}
	return result
}
