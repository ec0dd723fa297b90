package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jamesainslie/forcer/pkg/forcer/generator"
	"github.com/jamesainslie/forcer/pkg/forcer/governor"
	"github.com/jamesainslie/forcer/pkg/forcer/logging"
	"github.com/jamesainslie/forcer/pkg/forcer/throughput"
	"github.com/jamesainslie/forcer/pkg/forcer/tuner"
	"github.com/jamesainslie/forcer/pkg/forcer/types"
)

var logger = logging.Get("scheduler")

// ErrNoWork is returned when the range or alphabet leaves nothing to generate.
var ErrNoWork = errors.New("no work to schedule")

// Partition splits r into exactly workers contiguous, disjoint sub-ranges
// that together cover r. Sizes differ by at most one, with the larger
// sub-ranges first. Workers beyond the number of lengths get empty ranges.
func Partition(r types.LengthRange, workers int) []types.LengthRange {
	if workers < 1 {
		return nil
	}

	n := r.Len()
	size, rem := n/workers, n%workers
	parts := make([]types.LengthRange, workers)

	start := r.Min
	for i := range parts {
		count := size
		if i < rem {
			count++
		}
		parts[i] = types.LengthRange{Min: start, Max: start + count - 1}
		start += count
	}
	return parts
}

// Scheduler runs generation across workers.
type Scheduler struct {
	opts Options

	// Progress counters shared by all workers.
	combinations atomic.Int64
	lines        atomic.Int64
	lengthsDone  atomic.Int64
	lengthsTotal int

	lastProgress atomic.Int64

	errors   []types.WorkerError
	errorsMu sync.Mutex
}

// New creates a Scheduler. Options are validated and defaults applied.
func New(opts Options) *Scheduler {
	_ = opts.Validate()
	if opts.Generator.Governor == nil {
		opts.Generator.Governor = governor.New(tuner.NewMemorySampler())
	}
	return &Scheduler{opts: opts}
}

// Workers returns the number of workers a run uses.
func (s *Scheduler) Workers() int {
	return s.opts.Workers
}

// Run generates every length in r over alphabet and blocks until all
// workers have returned. Worker failures are recorded in the result's
// Errors; the returned error is non-nil only for invalid input or when ctx
// is cancelled, in which case the partial result is returned with it.
func (s *Scheduler) Run(ctx context.Context, r types.LengthRange, alphabet types.Alphabet) (*types.RunResult, error) {
	if r.Min < 1 || r.Empty() {
		return nil, fmt.Errorf("%w: range %s", ErrNoWork, r)
	}
	if alphabet.Len() == 0 {
		return nil, fmt.Errorf("%w: %w", ErrNoWork, types.ErrEmptyAlphabet)
	}

	start := time.Now()
	s.reset(r.Len())

	parts := Partition(r, s.opts.Workers)
	logger.Info("run start",
		"range", r.String(),
		"workers", len(parts),
		"alphabet", alphabet.Len(),
		"batch_size", s.opts.Generator.BatchSize)

	results := make(chan types.LengthResult, r.Len())

	var wg sync.WaitGroup
	// Workers with an empty sub-range still start and join.
	for i, part := range parts {
		wg.Add(1)
		go func(worker int, part types.LengthRange) {
			defer wg.Done()
			s.work(ctx, worker, part, alphabet, results)
		}(i, part)
	}
	wg.Wait()
	close(results)

	collector := throughput.NewCollector()
	collected := make([]types.LengthResult, 0, r.Len())
	for res := range results {
		collector.Add(res)
		collected = append(collected, res)
	}
	sort.Slice(collected, func(i, j int) bool {
		return collected[i].Length < collected[j].Length
	})

	s.reportProgressFinal()

	s.errorsMu.Lock()
	workerErrors := s.errors
	s.errorsMu.Unlock()
	sort.Slice(workerErrors, func(i, j int) bool {
		return workerErrors[i].Worker < workerErrors[j].Worker
	})

	result := &types.RunResult{
		Range:     r,
		Workers:   len(parts),
		Results:   collected,
		Aggregate: collector.Result(),
		Errors:    workerErrors,
		Wall:      time.Since(start),
	}

	logger.Info("run complete",
		"lengths", len(collected),
		"chars", result.Aggregate.TotalCombinations,
		"failed_workers", len(workerErrors),
		"wall", result.Wall)

	if err := ctx.Err(); err != nil {
		return result, err
	}
	return result, nil
}

// reset clears state left by a previous run.
func (s *Scheduler) reset(lengths int) {
	s.combinations.Store(0)
	s.lines.Store(0)
	s.lengthsDone.Store(0)
	s.lastProgress.Store(0)
	s.lengthsTotal = lengths

	s.errorsMu.Lock()
	s.errors = nil
	s.errorsMu.Unlock()
}

// work generates each length of part in order. It stops at the first
// failure, which is recorded and not retried.
func (s *Scheduler) work(ctx context.Context, worker int, part types.LengthRange, alphabet types.Alphabet, results chan<- types.LengthResult) {
	current := part.Min

	defer func() {
		if p := recover(); p != nil {
			s.addError(worker, part, current, fmt.Errorf("panic: %v", p))
		}
	}()

	opts := s.opts.Generator
	opts.OnWrite = func(chars, lines int64) {
		s.combinations.Add(chars)
		s.lines.Add(lines)
		s.reportProgress()
	}
	gen := generator.New(opts)

	for ; current <= part.Max; current++ {
		res, err := gen.Generate(ctx, current, alphabet)
		if errors.Is(err, generator.ErrNothingToGenerate) {
			continue
		}
		if err != nil {
			if ctx.Err() != nil {
				logger.Debug("worker cancelled", "worker", worker, "length", current)
				return
			}
			s.addError(worker, part, current, err)
			return
		}

		res.Worker = worker
		results <- res
		s.lengthsDone.Add(1)
		s.reportProgress()
	}
}

// addError records a worker failure.
func (s *Scheduler) addError(worker int, part types.LengthRange, length int, err error) {
	logger.Error("worker failed", "worker", worker, "range", part.String(), "length", length, "err", err)

	s.errorsMu.Lock()
	s.errors = append(s.errors, types.WorkerError{
		Worker: worker,
		Range:  part,
		Length: length,
		Err:    err.Error(),
	})
	s.errorsMu.Unlock()
}

// reportProgress calls the progress callback if configured.
// Throttles calls to avoid excessive overhead.
func (s *Scheduler) reportProgress() {
	if s.opts.OnProgress == nil {
		return
	}

	now := time.Now().UnixMilli()
	last := s.lastProgress.Load()
	if now-last < progressInterval {
		return
	}
	if !s.lastProgress.CompareAndSwap(last, now) {
		return
	}

	s.sendProgress(false)
}

// reportProgressFinal sends the last report of a run, bypassing the throttle.
func (s *Scheduler) reportProgressFinal() {
	if s.opts.OnProgress == nil {
		return
	}
	s.lastProgress.Store(time.Now().UnixMilli())
	s.sendProgress(true)
}

func (s *Scheduler) sendProgress(done bool) {
	s.opts.OnProgress(types.Progress{
		Combinations: s.combinations.Load(),
		Lines:        s.lines.Load(),
		LengthsDone:  s.lengthsDone.Load(),
		LengthsTotal: s.lengthsTotal,
		Workers:      s.opts.Workers,
		Done:         done,
	})
}

// detectWorkers returns the worker count for override, falling back to
// one worker per detected core.
func detectWorkers(override int) int {
	resources, err := tuner.Detect()
	if err != nil {
		logger.Warn("resource detection failed, using one worker", "err", err)
		resources = tuner.SystemResources{CPUCores: 1}
	}
	return tuner.CalculateWithOverrides(resources, override).Workers
}
