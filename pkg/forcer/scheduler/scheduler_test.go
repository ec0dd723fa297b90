package scheduler

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/jamesainslie/forcer/pkg/forcer/generator"
	"github.com/jamesainslie/forcer/pkg/forcer/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fixedAdjuster keeps the batch size unchanged.
type fixedAdjuster struct{}

func (fixedAdjuster) Adjust(current int, _ float64) int { return current }

// panicAdjuster panics on its first call.
type panicAdjuster struct{}

func (panicAdjuster) Adjust(int, float64) int { panic("boom") }

func testOptions(t *testing.T, workers int) Options {
	t.Helper()
	return Options{
		Workers: workers,
		Generator: generator.Options{
			OutputDir: t.TempDir(),
			BatchSize: 2,
			Governor:  fixedAdjuster{},
		},
	}
}

func mustAlphabet(t *testing.T, s string) types.Alphabet {
	t.Helper()
	a, err := types.NewAlphabet(s)
	require.NoError(t, err)
	return a
}

func TestPartition(t *testing.T) {
	tests := []struct {
		name    string
		r       types.LengthRange
		workers int
		want    []types.LengthRange
	}{
		{
			name:    "even split",
			r:       types.LengthRange{Min: 1, Max: 4},
			workers: 2,
			want:    []types.LengthRange{{Min: 1, Max: 2}, {Min: 3, Max: 4}},
		},
		{
			name:    "remainder to earliest",
			r:       types.LengthRange{Min: 1, Max: 10},
			workers: 4,
			want: []types.LengthRange{
				{Min: 1, Max: 3}, {Min: 4, Max: 6}, {Min: 7, Max: 8}, {Min: 9, Max: 10},
			},
		},
		{
			name:    "more workers than lengths",
			r:       types.LengthRange{Min: 5, Max: 6},
			workers: 4,
			want: []types.LengthRange{
				{Min: 5, Max: 5}, {Min: 6, Max: 6}, {Min: 7, Max: 6}, {Min: 7, Max: 6},
			},
		},
		{
			name:    "single worker",
			r:       types.LengthRange{Min: 2, Max: 9},
			workers: 1,
			want:    []types.LengthRange{{Min: 2, Max: 9}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Partition(tt.r, tt.workers))
		})
	}
}

func TestPartition_Properties(t *testing.T) {
	for workers := 1; workers <= 12; workers++ {
		for lengths := 1; lengths <= 30; lengths++ {
			r := types.LengthRange{Min: 3, Max: 3 + lengths - 1}
			parts := Partition(r, workers)
			require.Len(t, parts, workers)

			next := r.Min
			smallest, largest := lengths, 0
			for i, p := range parts {
				// Contiguous and disjoint, in order.
				assert.Equal(t, next, p.Min, "C=%d L=%d part %d", workers, lengths, i)
				next = p.Max + 1

				smallest = min(smallest, p.Len())
				largest = max(largest, p.Len())
				if i > 0 {
					assert.LessOrEqual(t, p.Len(), parts[i-1].Len(), "larger parts come first")
				}
			}
			assert.Equal(t, r.Max+1, next, "parts cover the range")
			assert.LessOrEqual(t, largest-smallest, 1)
		}
	}
}

func TestPartition_NoWorkers(t *testing.T) {
	assert.Nil(t, Partition(types.LengthRange{Min: 1, Max: 3}, 0))
}

func TestRun_InvalidInput(t *testing.T) {
	s := New(testOptions(t, 2))

	tests := []struct {
		name     string
		r        types.LengthRange
		alphabet types.Alphabet
	}{
		{name: "empty range", r: types.LengthRange{Min: 4, Max: 3}, alphabet: mustAlphabet(t, "ab")},
		{name: "min below one", r: types.LengthRange{Min: 0, Max: 3}, alphabet: mustAlphabet(t, "ab")},
		{name: "empty alphabet", r: types.LengthRange{Min: 1, Max: 3}, alphabet: types.Alphabet{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := s.Run(context.Background(), tt.r, tt.alphabet)
			assert.ErrorIs(t, err, ErrNoWork)
			assert.Nil(t, result)
		})
	}
}

func TestRun_GeneratesEveryLength(t *testing.T) {
	opts := testOptions(t, 3)
	s := New(opts)

	r := types.LengthRange{Min: 1, Max: 4}
	result, err := s.Run(context.Background(), r, mustAlphabet(t, "abc"))
	require.NoError(t, err)

	require.Len(t, result.Results, 4)
	assert.Empty(t, result.Errors)
	assert.Equal(t, 3, result.Workers)

	var wantChars, wantLines int64
	for i, res := range result.Results {
		length := i + 1
		assert.Equal(t, length, res.Length)

		lines := int64(1)
		for k := 0; k < length; k++ {
			lines *= 3
		}
		assert.Equal(t, lines, res.Lines)
		assert.Equal(t, lines*int64(length), res.Combinations)
		wantChars += res.Combinations
		wantLines += res.Lines

		_, statErr := os.Stat(filepath.Join(opts.Generator.OutputDir, generator.FileName(length)))
		assert.NoError(t, statErr)
	}

	// 3 + 18 + 81 + 324 characters.
	assert.Equal(t, int64(426), wantChars)
	assert.Equal(t, wantChars, result.Aggregate.TotalCombinations)
	assert.Equal(t, wantLines, result.Aggregate.TotalLines)
}

func TestRun_WorkerAssignmentFollowsPartition(t *testing.T) {
	s := New(testOptions(t, 2))

	result, err := s.Run(context.Background(), types.LengthRange{Min: 1, Max: 4}, mustAlphabet(t, "ab"))
	require.NoError(t, err)

	workers := map[int]int{}
	for _, res := range result.Results {
		workers[res.Length] = res.Worker
	}
	assert.Equal(t, map[int]int{1: 0, 2: 0, 3: 1, 4: 1}, workers)
}

func TestRun_MoreWorkersThanLengths(t *testing.T) {
	s := New(testOptions(t, 5))

	result, err := s.Run(context.Background(), types.LengthRange{Min: 1, Max: 2}, mustAlphabet(t, "ab"))
	require.NoError(t, err)

	assert.Equal(t, 5, result.Workers)
	assert.Empty(t, result.Errors)
	require.Len(t, result.Results, 2)
	assert.Equal(t, 0, result.Results[0].Worker)
	assert.Equal(t, 1, result.Results[1].Worker)
}

func TestRun_FailureIsIsolated(t *testing.T) {
	opts := testOptions(t, 2)

	// A directory in place of the length 3 file makes that length fail.
	require.NoError(t, os.Mkdir(filepath.Join(opts.Generator.OutputDir, generator.FileName(3)), 0o755))

	s := New(opts)
	result, err := s.Run(context.Background(), types.LengthRange{Min: 1, Max: 4}, mustAlphabet(t, "ab"))
	require.NoError(t, err)

	require.Len(t, result.Errors, 1)
	assert.Equal(t, 1, result.Errors[0].Worker)
	assert.Equal(t, 3, result.Errors[0].Length)
	assert.Equal(t, types.LengthRange{Min: 3, Max: 4}, result.Errors[0].Range)

	// Worker 0 finished; worker 1 stopped before length 4.
	require.Len(t, result.Results, 2)
	assert.Equal(t, 1, result.Results[0].Length)
	assert.Equal(t, 2, result.Results[1].Length)
}

func TestRun_PanicIsRecovered(t *testing.T) {
	opts := testOptions(t, 2)
	opts.Generator.Governor = panicAdjuster{}
	opts.Generator.CheckpointChars = 1

	s := New(opts)
	result, err := s.Run(context.Background(), types.LengthRange{Min: 1, Max: 2}, mustAlphabet(t, "ab"))
	require.NoError(t, err)

	assert.Len(t, result.Errors, 2)
	assert.Empty(t, result.Results)
	for _, we := range result.Errors {
		assert.Contains(t, we.Err, "panic: boom")
	}
}

func TestRun_AllWorkersFail(t *testing.T) {
	opts := testOptions(t, 2)
	opts.Generator.OutputDir = filepath.Join(t.TempDir(), "missing")

	s := New(opts)
	result, err := s.Run(context.Background(), types.LengthRange{Min: 1, Max: 4}, mustAlphabet(t, "ab"))
	require.NoError(t, err)

	assert.Len(t, result.Errors, 2)
	assert.Empty(t, result.Results)
	assert.True(t, result.Aggregate.Unbounded)
}

func TestRun_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s := New(testOptions(t, 2))
	result, err := s.Run(ctx, types.LengthRange{Min: 1, Max: 4}, mustAlphabet(t, "ab"))
	assert.ErrorIs(t, err, context.Canceled)
	require.NotNil(t, result)
	assert.Empty(t, result.Errors)
	assert.Empty(t, result.Results)
}

func TestRun_ProgressEndsWithTotals(t *testing.T) {
	var (
		mu      sync.Mutex
		reports []types.Progress
	)
	opts := testOptions(t, 2)
	opts.OnProgress = func(p types.Progress) {
		mu.Lock()
		reports = append(reports, p)
		mu.Unlock()
	}

	s := New(opts)
	result, err := s.Run(context.Background(), types.LengthRange{Min: 1, Max: 3}, mustAlphabet(t, "abcd"))
	require.NoError(t, err)

	mu.Lock()
	defer mu.Unlock()
	require.NotEmpty(t, reports)

	last := reports[len(reports)-1]
	assert.True(t, last.Done)
	assert.Equal(t, result.Aggregate.TotalCombinations, last.Combinations)
	assert.Equal(t, result.Aggregate.TotalLines, last.Lines)
	assert.Equal(t, int64(3), last.LengthsDone)
	assert.Equal(t, 3, last.LengthsTotal)
}

func TestRun_Reusable(t *testing.T) {
	s := New(testOptions(t, 1))
	alphabet := mustAlphabet(t, "ab")

	first, err := s.Run(context.Background(), types.LengthRange{Min: 1, Max: 2}, alphabet)
	require.NoError(t, err)
	second, err := s.Run(context.Background(), types.LengthRange{Min: 1, Max: 2}, alphabet)
	require.NoError(t, err)

	assert.Equal(t, first.Aggregate.TotalCombinations, second.Aggregate.TotalCombinations)
}

func TestOptionsValidate_DetectsWorkers(t *testing.T) {
	opts := Options{}
	require.NoError(t, opts.Validate())
	assert.GreaterOrEqual(t, opts.Workers, 1)
	assert.Equal(t, generator.DefaultBatchSize, opts.Generator.BatchSize)
}
