package planner

import (
	"errors"
	"testing"

	"github.com/jamesainslie/forcer/pkg/forcer/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlan_Properties(t *testing.T) {
	alphabet := types.DefaultAlphabet()
	size := alphabet.Len()

	for _, batchSize := range []int{1, 2, 7, 10, 94, 95, 96, 100000} {
		batches, err := Plan(alphabet, batchSize)
		require.NoError(t, err)

		wantCount := (size + batchSize - 1) / batchSize
		assert.Len(t, batches, wantCount, "batch size %d", batchSize)

		var rebuilt []rune
		total := 0
		for i, b := range batches {
			assert.LessOrEqual(t, len(b), batchSize, "batch %d exceeds size %d", i, batchSize)
			assert.NotEmpty(t, b)
			total += len(b)
			rebuilt = append(rebuilt, b...)
		}
		assert.Equal(t, size, total, "batch sizes must sum to the alphabet size")
		assert.Equal(t, alphabet.String(), string(rebuilt), "batches must reconstruct the alphabet")
	}
}

func TestPlan_LastBatchShorter(t *testing.T) {
	alphabet, err := types.NewAlphabet("abcdefg")
	require.NoError(t, err)

	batches, err := Plan(alphabet, 3)
	require.NoError(t, err)
	require.Len(t, batches, 3)
	assert.Equal(t, "abc", string(batches[0]))
	assert.Equal(t, "def", string(batches[1]))
	assert.Equal(t, "g", string(batches[2]))
}

func TestPlan_InvalidBatchSize(t *testing.T) {
	for _, size := range []int{0, -1} {
		_, err := Plan(types.DefaultAlphabet(), size)
		if !errors.Is(err, ErrInvalidBatchSize) {
			t.Errorf("Plan(size=%d) error = %v, want ErrInvalidBatchSize", size, err)
		}
	}
}

func TestPlan_EmptyAlphabet(t *testing.T) {
	batches, err := Plan(types.Alphabet{}, 5)
	require.NoError(t, err)
	assert.Empty(t, batches)
}

func TestPlanner_SizeChangesBetweenBatches(t *testing.T) {
	alphabet, err := types.NewAlphabet("abcdefghij")
	require.NoError(t, err)

	p := New(alphabet)
	sizes := []int{2, 5, 1, 10}
	var got []string
	for _, s := range sizes {
		b, ok := p.Next(s)
		if !ok {
			break
		}
		got = append(got, string(b))
	}

	assert.Equal(t, []string{"ab", "cdefg", "h", "ij"}, got)
	assert.Equal(t, 0, p.Remaining())

	_, ok := p.Next(3)
	assert.False(t, ok, "exhausted planner must report no more batches")
}

func TestPlanner_NonPositiveSizeTreatedAsOne(t *testing.T) {
	alphabet, err := types.NewAlphabet("xy")
	require.NoError(t, err)

	p := New(alphabet)
	b, ok := p.Next(0)
	require.True(t, ok)
	assert.Equal(t, "x", string(b))
	assert.Equal(t, 1, p.Remaining())
}
