// Package planner splits an alphabet into bounded batches of seed symbols.
//
// A batch is used as the first position of a cartesian product, so the
// number of strings produced per batch grows with the batch size while the
// batches together still cover the whole alphabet exactly once.
package planner

import (
	"errors"
	"fmt"

	"github.com/jamesainslie/forcer/pkg/forcer/types"
)

// ErrInvalidBatchSize is returned for a batch size below one.
var ErrInvalidBatchSize = errors.New("batch size must be at least 1")

// Plan splits the alphabet into contiguous batches of at most batchSize
// symbols, preserving order. The last batch may be shorter.
// An empty alphabet yields an empty plan.
func Plan(alphabet types.Alphabet, batchSize int) ([]types.Batch, error) {
	if batchSize < 1 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidBatchSize, batchSize)
	}

	p := New(alphabet)
	batches := make([]types.Batch, 0, (alphabet.Len()+batchSize-1)/batchSize)
	for {
		b, ok := p.Next(batchSize)
		if !ok {
			return batches, nil
		}
		batches = append(batches, b)
	}
}

// Planner hands out batches of an alphabet one at a time. The batch size
// may change between calls; each symbol is handed out exactly once.
type Planner struct {
	alphabet types.Alphabet
	offset   int
}

// New returns a Planner positioned at the start of the alphabet.
func New(alphabet types.Alphabet) *Planner {
	return &Planner{alphabet: alphabet}
}

// Next returns the next batch of at most batchSize symbols.
// It returns false once the alphabet is exhausted. A batchSize below one
// is treated as one.
func (p *Planner) Next(batchSize int) (types.Batch, bool) {
	if p.offset >= p.alphabet.Len() {
		return nil, false
	}
	batchSize = max(batchSize, 1)

	end := min(p.offset+batchSize, p.alphabet.Len())
	b := types.Batch(p.alphabet.Slice(p.offset, end))
	p.offset = end
	return b, true
}

// Remaining returns the number of symbols not yet handed out.
func (p *Planner) Remaining() int {
	return p.alphabet.Len() - p.offset
}
