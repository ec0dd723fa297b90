// Package output provides formatters for forcer run summaries and
// pre-run estimates in several formats (pretty, plain, json, yaml).
//
// Formatters are looked up by name from a registry:
//
//	formatter, err := output.Get("pretty")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	var buf bytes.Buffer
//	if err := formatter.Format(&buf, result); err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Print(buf.String())
package output

import (
	"bytes"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/jamesainslie/forcer/pkg/forcer/types"
)

// Result is a run summary prepared for formatting.
type Result struct {
	// Range is the requested length range.
	Range types.LengthRange

	// AlphabetSize is the number of symbols generated over.
	AlphabetSize int

	// Workers is the number of workers the run used.
	Workers int

	// OutputDir is where the per-length files were written.
	OutputDir string

	// Lengths holds one result per completed length, ordered by length.
	Lengths []types.LengthResult

	// Aggregate is the combined throughput.
	Aggregate types.AggregateResult

	// Errors lists workers that stopped early.
	Errors []types.WorkerError

	// Wall is the wall-clock duration of the run.
	Wall time.Duration

	// Interrupted is set when the run was cancelled.
	Interrupted bool

	// Benchmark is set when the run was a rate measurement.
	Benchmark bool
}

// NewResult builds a Result from a scheduler run.
func NewResult(run *types.RunResult, alphabetSize int, outputDir string) *Result {
	return &Result{
		Range:        run.Range,
		AlphabetSize: alphabetSize,
		Workers:      run.Workers,
		OutputDir:    outputDir,
		Lengths:      run.Results,
		Aggregate:    run.Aggregate,
		Errors:       run.Errors,
		Wall:         run.Wall,
	}
}

// Projection is an estimated duration for one display mode.
type Projection struct {
	// Rate is the measured characters per second.
	Rate float64

	// Seconds is the projected run time.
	Seconds float64
}

// Estimate is a pre-run projection.
type Estimate struct {
	// Range is the length range estimated.
	Range types.LengthRange

	// AlphabetSize is the number of symbols.
	AlphabetSize int

	// Combinations is the number of strings, in decimal.
	Combinations string

	// Characters is the number of characters written, in decimal.
	Characters string

	// BenchmarkLength is the length the rates were measured at.
	BenchmarkLength int

	// Performance is the projection without live display.
	Performance Projection

	// Live is the projection with live display.
	Live Projection
}

// Formatter is the interface that all output formatters must implement.
type Formatter interface {
	// Format writes a run summary to the buffer.
	Format(w *bytes.Buffer, r *Result) error

	// FormatEstimate writes a pre-run projection to the buffer.
	FormatEstimate(w *bytes.Buffer, e *Estimate) error
}

// FormatterFactory is a function that creates a new Formatter instance.
type FormatterFactory func() Formatter

// Registry manages formatter registration and lookup.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]FormatterFactory
}

// NewRegistry creates a new formatter registry.
func NewRegistry() *Registry {
	return &Registry{
		factories: make(map[string]FormatterFactory),
	}
}

// Register adds a formatter factory to the registry.
// It will replace any existing formatter with the same name.
func (r *Registry) Register(name string, factory FormatterFactory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[name] = factory
}

// Get returns a new formatter instance by name.
func (r *Registry) Get(name string) (Formatter, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	factory, ok := r.factories[name]
	if !ok {
		return nil, fmt.Errorf("unknown formatter: %s", name)
	}
	return factory(), nil
}

// Available returns a sorted list of all registered formatter names.
func (r *Registry) Available() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DefaultRegistry is the global formatter registry.
var DefaultRegistry = NewRegistry()

// Register adds a formatter factory to the default registry.
func Register(name string, factory FormatterFactory) {
	DefaultRegistry.Register(name, factory)
}

// Get returns a new formatter instance from the default registry.
func Get(name string) (Formatter, error) {
	return DefaultRegistry.Get(name)
}

// Available returns all formatter names from the default registry.
func Available() []string {
	return DefaultRegistry.Available()
}
