package tui

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/jamesainslie/forcer/pkg/forcer/logging"
	"github.com/jamesainslie/forcer/pkg/forcer/scheduler"
	"github.com/jamesainslie/forcer/pkg/forcer/types"
)

var logger = logging.Get("tui")

// Options configures a live run.
type Options struct {
	// Range is the length range to generate.
	Range types.LengthRange

	// Alphabet is the alphabet to generate over.
	Alphabet types.Alphabet

	// Scheduler configures the run. OnProgress is replaced by the display
	// and the generator reports after every line.
	Scheduler scheduler.Options
}

type outcome struct {
	result *types.RunResult
	err    error
}

// Run generates opts.Range while showing live progress and returns the
// scheduler's result. Stopping from the display cancels the run; the partial
// result is returned with context.Canceled.
func Run(ctx context.Context, opts Options) (*types.RunResult, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	model := NewRunModel(opts.Range, opts.Alphabet.Len(), cancel)
	p := tea.NewProgram(model, tea.WithAltScreen())

	schedOpts := opts.Scheduler
	schedOpts.Generator.ReportEvery = 1
	schedOpts.OnProgress = func(pr types.Progress) {
		p.Send(ProgressMsg(pr))
	}

	done := make(chan outcome, 1)
	go func() {
		result, err := scheduler.New(schedOpts).Run(ctx, opts.Range, opts.Alphabet)
		done <- outcome{result: result, err: err}
		p.Send(CompleteMsg{Err: err})
	}()

	logger.Info("live display start", "range", opts.Range.String())
	if _, err := p.Run(); err != nil {
		cancel()
		<-done
		return nil, fmt.Errorf("live display failed: %w", err)
	}

	out := <-done
	return out.result, out.err
}
