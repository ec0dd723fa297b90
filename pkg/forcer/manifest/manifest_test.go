package manifest

import (
	"encoding/json"
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/jamesainslie/forcer/pkg/forcer/types"
)

func sampleResult() *types.RunResult {
	return &types.RunResult{
		Range:   types.LengthRange{Min: 1, Max: 2},
		Workers: 2,
		Results: []types.LengthResult{
			{Length: 1, Combinations: 3, Lines: 3, Elapsed: time.Second, Worker: 0},
			{Length: 2, Combinations: 18, Lines: 9, Elapsed: 2 * time.Second, Worker: 1},
		},
		Aggregate: types.AggregateResult{
			TotalCombinations: 21,
			TotalLines:        12,
			TotalElapsed:      3 * time.Second,
			Rate:              7,
		},
		Wall: 2 * time.Second,
	}
}

func newTestManifest(t *testing.T) *Manifest {
	t.Helper()
	m, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return m
}

func TestNew(t *testing.T) {
	t.Parallel()

	t.Run("creates manifest with valid directory", func(t *testing.T) {
		t.Parallel()
		m, err := New(t.TempDir())
		if err != nil {
			t.Fatalf("New() error = %v, want nil", err)
		}
		if m == nil {
			t.Fatal("New() returned nil")
		}
	})

	t.Run("returns error for empty directory", func(t *testing.T) {
		t.Parallel()
		if _, err := New(""); err == nil {
			t.Fatal("New() error = nil, want error for empty directory")
		}
	})
}

func TestManifest_EnsureDir(t *testing.T) {
	t.Parallel()

	dir := filepath.Join(t.TempDir(), "nested", "manifest")
	m, err := New(dir)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if err := m.EnsureDir(); err != nil {
		t.Fatalf("EnsureDir() error = %v", err)
	}
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		t.Fatalf("directory not created: %v", err)
	}
}

func TestManifest_LogRoundTrip(t *testing.T) {
	t.Parallel()
	m := newTestManifest(t)

	entry, err := m.Log(Record{Operation: OpRun, Result: sampleResult(), Alphabet: 3, OutputDir: "/tmp/out"})
	if err != nil {
		t.Fatalf("Log() error = %v", err)
	}
	if !strings.HasPrefix(entry.ID, "run-") {
		t.Errorf("ID = %q, want run- prefix", entry.ID)
	}

	data, err := os.ReadFile(filepath.Join(m.Dir(), entry.ID+".json"))
	if err != nil {
		t.Fatalf("entry file not written: %v", err)
	}
	var onDisk Entry
	if err := json.Unmarshal(data, &onDisk); err != nil {
		t.Fatalf("entry file is not valid JSON: %v", err)
	}

	got, err := m.Get(entry.ID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.Summary.TotalCombinations != 21 || got.Summary.TotalLines != 12 {
		t.Errorf("Summary = %+v, want 21 combinations and 12 lines", got.Summary)
	}
	if got.Summary.Rate != 7 {
		t.Errorf("Rate = %v, want 7", got.Summary.Rate)
	}
	if len(got.Lengths) != 2 || got.Lengths[1].ElapsedSec != 2 {
		t.Errorf("Lengths = %+v", got.Lengths)
	}
	if got.Range != (types.LengthRange{Min: 1, Max: 2}) {
		t.Errorf("Range = %v", got.Range)
	}

	if _, err := os.Stat(filepath.Join(m.Dir(), entry.ID+".json.tmp")); !os.IsNotExist(err) {
		t.Error("temp file left behind")
	}
}

func TestManifest_LogUnboundedRate(t *testing.T) {
	t.Parallel()
	m := newTestManifest(t)

	res := sampleResult()
	res.Aggregate.Rate = math.Inf(1)
	res.Aggregate.Unbounded = true

	entry, err := m.Log(Record{Operation: OpBenchmark, Result: res})
	if err != nil {
		t.Fatalf("Log() error = %v, an infinite rate must still encode", err)
	}
	if entry.Summary.Rate != 0 || !entry.Summary.Unbounded {
		t.Errorf("Summary = %+v, want rate 0 and unbounded", entry.Summary)
	}
	if RateOf(entry) != "unbounded" {
		t.Errorf("RateOf() = %q", RateOf(entry))
	}
}

func TestManifest_LogRequiresResult(t *testing.T) {
	t.Parallel()
	m := newTestManifest(t)
	if _, err := m.Log(Record{Operation: OpRun}); err == nil {
		t.Fatal("Log() error = nil, want error for missing result")
	}
}

func TestManifest_ListNewestFirst(t *testing.T) {
	t.Parallel()
	m := newTestManifest(t)

	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		at := base.Add(time.Duration(i) * time.Hour)
		m.now = func() time.Time { return at }
		if _, err := m.Log(Record{Operation: OpRun, Result: sampleResult()}); err != nil {
			t.Fatalf("Log() error = %v", err)
		}
	}

	entries, err := m.List(0)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("List() returned %d entries, want 3", len(entries))
	}
	for i := 1; i < len(entries); i++ {
		if entries[i].Timestamp.After(entries[i-1].Timestamp) {
			t.Errorf("entries not sorted newest first")
		}
	}

	limited, err := m.List(2)
	if err != nil {
		t.Fatalf("List(2) error = %v", err)
	}
	if len(limited) != 2 {
		t.Errorf("List(2) returned %d entries", len(limited))
	}
}

func TestManifest_ListMissingDir(t *testing.T) {
	t.Parallel()
	m, _ := New(filepath.Join(t.TempDir(), "absent"))

	entries, err := m.List(0)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if entries == nil || len(entries) != 0 {
		t.Errorf("List() = %v, want empty non-nil slice", entries)
	}
}

func TestManifest_GetByPrefix(t *testing.T) {
	t.Parallel()
	m := newTestManifest(t)

	entry, err := m.Log(Record{Operation: OpBenchmark, Result: sampleResult()})
	if err != nil {
		t.Fatalf("Log() error = %v", err)
	}

	got, err := m.Get(entry.ID[:len(entry.ID)-2])
	if err != nil {
		t.Fatalf("Get(prefix) error = %v", err)
	}
	if got.ID != entry.ID {
		t.Errorf("Get(prefix) = %s, want %s", got.ID, entry.ID)
	}

	if _, err := m.Get("missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get(missing) error = %v, want ErrNotFound", err)
	}
	if _, err := m.Get(""); err == nil {
		t.Error("Get(\"\") error = nil")
	}
}

func TestManifest_Cleanup(t *testing.T) {
	t.Parallel()
	m := newTestManifest(t)

	now := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	for _, age := range []int{40, 10, 1} {
		at := now.AddDate(0, 0, -age)
		m.now = func() time.Time { return at }
		if _, err := m.Log(Record{Operation: OpRun, Result: sampleResult()}); err != nil {
			t.Fatalf("Log() error = %v", err)
		}
	}

	m.now = func() time.Time { return now }
	removed, err := m.Cleanup(30)
	if err != nil {
		t.Fatalf("Cleanup() error = %v", err)
	}
	if removed != 1 {
		t.Errorf("Cleanup() removed %d, want 1", removed)
	}

	entries, _ := m.List(0)
	if len(entries) != 2 {
		t.Errorf("%d entries remain, want 2", len(entries))
	}

	if removed, _ := m.Cleanup(0); removed != 0 {
		t.Errorf("Cleanup(0) removed %d, want 0", removed)
	}
}
