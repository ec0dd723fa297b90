package manifest

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/adrg/xdg"
	"github.com/google/uuid"
	"github.com/jamesainslie/forcer/pkg/forcer/types"
)

// ErrNotFound is returned by Get for an unknown ID.
var ErrNotFound = errors.New("manifest entry not found")

// Manifest manages operation logging to the filesystem.
type Manifest struct {
	dir string
	mu  sync.Mutex
	now func() time.Time
}

// DefaultDir returns the manifest directory under the XDG data home.
func DefaultDir() string {
	return filepath.Join(xdg.DataHome, "forcer", "manifest")
}

// New creates a new Manifest with the given directory.
// The directory is not created until EnsureDir is called.
func New(dir string) (*Manifest, error) {
	if dir == "" {
		return nil, errors.New("manifest directory cannot be empty")
	}
	return &Manifest{dir: dir, now: time.Now}, nil
}

// Dir returns the manifest directory.
func (m *Manifest) Dir() string {
	return m.dir
}

// EnsureDir creates the manifest directory if it does not exist.
func (m *Manifest) EnsureDir() error {
	return os.MkdirAll(m.dir, 0o755)
}

// Log persists an entry for rec and returns it.
func (m *Manifest) Log(rec Record) (*Entry, error) {
	if rec.Result == nil {
		return nil, errors.New("manifest record has no result")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	entry := newEntry(rec, m.now().UTC())
	if err := m.writeEntry(entry); err != nil {
		return nil, fmt.Errorf("failed to write manifest entry: %w", err)
	}
	return entry, nil
}

func newEntry(rec Record, now time.Time) *Entry {
	res := rec.Result

	lengths := make([]LengthRecord, 0, len(res.Results))
	for _, r := range res.Results {
		lengths = append(lengths, LengthRecord{
			Length:       r.Length,
			Combinations: r.Combinations,
			Lines:        r.Lines,
			ElapsedSec:   r.Elapsed.Seconds(),
			Worker:       r.Worker,
		})
	}

	agg := res.Aggregate
	summary := Summary{
		TotalCombinations: agg.TotalCombinations,
		TotalLines:        agg.TotalLines,
		ElapsedSec:        agg.TotalElapsed.Seconds(),
		WallSec:           res.Wall.Seconds(),
		Unbounded:         agg.Unbounded,
		FailedWorkers:     len(res.Errors),
	}
	if !agg.Unbounded {
		summary.Rate = agg.Rate
	}

	return &Entry{
		ID:        generateID(rec.Operation, now),
		Timestamp: now,
		Operation: rec.Operation,
		Range:     res.Range,
		Alphabet:  rec.Alphabet,
		Workers:   res.Workers,
		Live:      rec.Live,
		OutputDir: rec.OutputDir,
		Lengths:   lengths,
		Errors:    res.Errors,
		Summary:   summary,
	}
}

// writeEntry writes an entry to a JSON file in the manifest directory.
func (m *Manifest) writeEntry(entry *Entry) error {
	filePath := filepath.Join(m.dir, entry.ID+".json")

	data, err := json.MarshalIndent(entry, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal entry: %w", err)
	}

	// Write atomically using a temp file and rename
	tmpPath := filePath + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o644); err != nil {
		return fmt.Errorf("failed to write temp file: %w", err)
	}

	if err := os.Rename(tmpPath, filePath); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to rename temp file: %w", err)
	}

	return nil
}

// List returns all manifest entries sorted by timestamp descending (newest first).
// If limit is 0 or negative, all entries are returned.
func (m *Manifest) List(limit int) ([]Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entries, err := m.readAll()
	if err != nil {
		return nil, err
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Timestamp.After(entries[j].Timestamp)
	})

	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	return entries, nil
}

// Get retrieves a specific entry by ID. A unique ID prefix is accepted.
func (m *Manifest) Get(id string) (*Entry, error) {
	if id == "" {
		return nil, errors.New("entry ID cannot be empty")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	entries, err := m.readAll()
	if err != nil {
		return nil, err
	}

	var match *Entry
	for i := range entries {
		if entries[i].ID == id {
			return &entries[i], nil
		}
		if strings.HasPrefix(entries[i].ID, id) {
			if match != nil {
				return nil, fmt.Errorf("ambiguous entry ID prefix: %s", id)
			}
			match = &entries[i]
		}
	}
	if match == nil {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return match, nil
}

// Cleanup removes entries older than retentionDays and returns how many
// were removed. A retention of zero or less keeps everything.
func (m *Manifest) Cleanup(retentionDays int) (int, error) {
	if retentionDays <= 0 {
		return 0, nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	cutoff := m.now().AddDate(0, 0, -retentionDays)

	files, err := m.entryFiles()
	if err != nil {
		return 0, err
	}

	var removed int
	for _, name := range files {
		entry, err := m.readEntryFile(name)
		if err != nil || !entry.Timestamp.Before(cutoff) {
			continue
		}
		if err := os.Remove(filepath.Join(m.dir, name)); err != nil {
			continue
		}
		removed++
	}
	return removed, nil
}

// readAll parses every entry file, skipping files that can't be parsed.
func (m *Manifest) readAll() ([]Entry, error) {
	files, err := m.entryFiles()
	if err != nil {
		return nil, err
	}

	entries := []Entry{}
	for _, name := range files {
		entry, err := m.readEntryFile(name)
		if err != nil {
			continue
		}
		entries = append(entries, *entry)
	}
	return entries, nil
}

// entryFiles lists entry file names. A missing directory has none.
func (m *Manifest) entryFiles() ([]string, error) {
	files, err := os.ReadDir(m.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read manifest directory: %w", err)
	}

	var names []string
	for _, f := range files {
		if f.IsDir() || !strings.HasSuffix(f.Name(), ".json") {
			continue
		}
		names = append(names, f.Name())
	}
	return names, nil
}

// readEntryFile reads and parses a manifest entry from a JSON file.
func (m *Manifest) readEntryFile(filename string) (*Entry, error) {
	data, err := os.ReadFile(filepath.Join(m.dir, filename))
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	var entry Entry
	if err := json.Unmarshal(data, &entry); err != nil {
		return nil, fmt.Errorf("failed to unmarshal entry: %w", err)
	}
	return &entry, nil
}

// generateID creates a unique ID like "run-2026-06-15T10-30-00-1b4e28ba".
func generateID(op OperationType, now time.Time) string {
	ts := now.Format("2006-01-02T15-04-05")
	suffix := strings.SplitN(uuid.NewString(), "-", 2)[0]
	return fmt.Sprintf("%s-%s-%s", op, ts, suffix)
}

// RateOf returns the entry's rate as reported by types.FormatRate.
func RateOf(e *Entry) string {
	return types.FormatRate(e.Summary.Rate, e.Summary.Unbounded)
}
