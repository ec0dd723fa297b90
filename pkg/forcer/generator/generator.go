// Package generator writes every string of one length over an alphabet to
// a length-specific file.
//
// The alphabet is split into batches of seed symbols by the planner. For
// each seed the remaining positions run through the full alphabet in
// odometer order, so the union over batches is the complete cartesian
// product regardless of how batch sizes change along the way.
package generator

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"
	"unicode/utf8"

	"github.com/jamesainslie/forcer/pkg/forcer/logging"
	"github.com/jamesainslie/forcer/pkg/forcer/planner"
	"github.com/jamesainslie/forcer/pkg/forcer/types"
)

var logger = logging.Get("generator")

const writeBufferSize = 64 * 1024

// cancelCheckLines is how many lines are written between context checks.
const cancelCheckLines = 4096

// ErrInvalidLength is returned for a length below one.
var ErrInvalidLength = errors.New("length must be at least 1")

// ErrNothingToGenerate is returned when the alphabet yields no batches.
// No output file is created.
var ErrNothingToGenerate = errors.New("nothing to generate")

// FileName returns the output file name for a length.
func FileName(length int) string {
	return fmt.Sprintf("combinations_length%d.txt", length)
}

// Generator produces output files one length at a time. The batch size
// carries over from one length to the next. A Generator is owned by a
// single worker and is not safe for concurrent use.
type Generator struct {
	opts      Options
	batchSize int
}

// New creates a Generator. Options are validated and defaults applied.
func New(opts Options) *Generator {
	_ = opts.Validate()
	return &Generator{opts: opts, batchSize: opts.BatchSize}
}

// BatchSize returns the batch size the next batch will use.
func (g *Generator) BatchSize() int {
	return g.batchSize
}

// Generate writes all strings of the given length to
// <OutputDir>/combinations_length<N>.txt, one per line, and returns the
// counts and elapsed time. The context is checked every few thousand
// lines; a cancelled call leaves a partial file and returns ctx.Err(). A
// length whose last line was written is returned without error even if
// ctx was cancelled afterwards.
func (g *Generator) Generate(ctx context.Context, length int, alphabet types.Alphabet) (types.LengthResult, error) {
	if length < 1 {
		return types.LengthResult{}, fmt.Errorf("%w: %d", ErrInvalidLength, length)
	}
	if alphabet.Len() == 0 {
		return types.LengthResult{}, fmt.Errorf("length %d: %w", length, ErrNothingToGenerate)
	}

	start := time.Now()
	path := filepath.Join(g.opts.OutputDir, FileName(length))

	file, err := os.Create(path)
	if err != nil {
		return types.LengthResult{}, fmt.Errorf("creating output file: %w", err)
	}

	run := &lengthRun{
		g:          g,
		length:     length,
		symbols:    encode(alphabet),
		w:          bufio.NewWriterSize(file, writeBufferSize),
		checkpoint: g.opts.CheckpointChars,
		result:     types.LengthResult{Length: length},
	}

	err = run.writeAll(ctx, planner.New(alphabet))
	if closeErr := file.Close(); closeErr != nil && err == nil {
		err = fmt.Errorf("closing %s: %w", path, closeErr)
	}
	run.report()
	if err != nil {
		return types.LengthResult{}, err
	}

	run.result.Elapsed = time.Since(start)
	logger.Info("length complete",
		"length", length,
		"lines", run.result.Lines,
		"chars", run.result.Combinations,
		"elapsed", run.result.Elapsed,
		"batch_size", g.batchSize)
	return run.result, nil
}

// lengthRun is the state of one Generate call.
type lengthRun struct {
	g       *Generator
	length  int
	symbols [][]byte
	w       *bufio.Writer

	// checkpoint is the character count at which the governor is next consulted.
	checkpoint int64

	// pending counts written since the last OnWrite report.
	pendingChars int64
	pendingLines int64

	result types.LengthResult
}

func (r *lengthRun) writeAll(ctx context.Context, p *planner.Planner) error {
	for batchNum := 0; ; batchNum++ {
		// The batch size is fixed for the whole batch; adjustments made at
		// checkpoints inside it apply to the next one.
		batch, ok := p.Next(r.g.batchSize)
		if !ok {
			break
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		logger.Debug("batch start", "length", r.length, "batch", batchNum, "seeds", len(batch))
		if err := r.writeBatch(ctx, batch); err != nil {
			return err
		}
		if err := r.w.Flush(); err != nil {
			return fmt.Errorf("flushing length %d: %w", r.length, err)
		}
		r.report()
	}
	return r.w.Flush()
}

// writeBatch writes every string whose first symbol is in batch.
func (r *lengthRun) writeBatch(ctx context.Context, batch types.Batch) error {
	n := len(r.symbols)
	idx := make([]int, r.length-1)
	line := make([]byte, 0, r.length*utf8.UTFMax+1)
	chars := int64(r.length)

	for _, seed := range batch {
		clear(idx)
		for {
			if r.result.Lines%cancelCheckLines == 0 {
				if err := ctx.Err(); err != nil {
					return err
				}
			}
			line = utf8.AppendRune(line[:0], seed)
			for _, k := range idx {
				line = append(line, r.symbols[k]...)
			}
			line = append(line, '\n')
			if _, err := r.w.Write(line); err != nil {
				return fmt.Errorf("writing length %d: %w", r.length, err)
			}

			r.result.Combinations += chars
			r.result.Lines++
			r.pendingChars += chars
			r.pendingLines++

			if r.result.Combinations >= r.checkpoint {
				r.checkpointReached()
			}
			if every := r.g.opts.ReportEvery; every > 0 && r.pendingLines >= every {
				r.report()
			}

			// Advance the odometer over positions 1..length-1.
			i := len(idx) - 1
			for ; i >= 0; i-- {
				idx[i]++
				if idx[i] < n {
					break
				}
				idx[i] = 0
			}
			if i < 0 {
				break
			}
		}
	}
	return nil
}

// checkpointReached consults the governor and schedules the next checkpoint.
func (r *lengthRun) checkpointReached() {
	interval := r.g.opts.CheckpointChars
	for r.checkpoint <= r.result.Combinations {
		r.checkpoint += interval
	}
	if r.g.opts.Governor == nil {
		return
	}
	r.g.batchSize = r.g.opts.Governor.Adjust(r.g.batchSize, r.g.opts.MemoryCeiling)
}

// report sends pending counts to OnWrite.
func (r *lengthRun) report() {
	if r.pendingLines == 0 {
		return
	}
	if r.g.opts.OnWrite != nil {
		r.g.opts.OnWrite(r.pendingChars, r.pendingLines)
	}
	r.pendingChars = 0
	r.pendingLines = 0
}

// encode returns the UTF-8 encoding of each alphabet symbol.
func encode(alphabet types.Alphabet) [][]byte {
	symbols := alphabet.Symbols()
	out := make([][]byte, len(symbols))
	for i, s := range symbols {
		out[i] = utf8.AppendRune(nil, s)
	}
	return out
}
