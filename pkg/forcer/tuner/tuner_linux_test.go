//go:build linux

package tuner

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const sampleMeminfo = `MemTotal:        6100000 kB
MemFree:          400000 kB
MemAvailable:    5600000 kB
Buffers:           20000 kB
Cached:          5100000 kB
`

func TestParseMeminfo(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		total     int64
		available int64
		ok        bool
	}{
		{
			name:      "page cache counts as available",
			input:     sampleMeminfo,
			total:     6100000 * 1024,
			available: 5600000 * 1024,
			ok:        true,
		},
		{
			name:  "missing MemAvailable",
			input: "MemTotal: 6100000 kB\nMemFree: 400000 kB\n",
		},
		{
			name:  "malformed value",
			input: "MemTotal: lots kB\nMemAvailable: 10 kB\n",
		},
		{
			name:  "empty",
			input: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			total, available, ok := parseMeminfo(strings.NewReader(tt.input))
			if ok != tt.ok {
				t.Fatalf("ok = %v, want %v", ok, tt.ok)
			}
			if total != tt.total || available != tt.available {
				t.Errorf("got total=%d available=%d, want total=%d available=%d",
					total, available, tt.total, tt.available)
			}
		})
	}
}

func TestDetectUsesMemAvailable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "meminfo")
	if err := os.WriteFile(path, []byte(sampleMeminfo), 0o644); err != nil {
		t.Fatalf("WriteFile() returned error: %v", err)
	}

	orig := meminfoPath
	meminfoPath = path
	t.Cleanup(func() { meminfoPath = orig })

	resources, err := Detect()
	if err != nil {
		t.Fatalf("Detect() returned error: %v", err)
	}
	if resources.AvailableRAM != 5600000*1024 {
		t.Errorf("AvailableRAM = %d, want %d", resources.AvailableRAM, 5600000*1024)
	}

	pct, err := resources.UtilizationPercent()
	if err != nil {
		t.Fatalf("UtilizationPercent() returned error: %v", err)
	}
	if pct > 10 {
		t.Errorf("UtilizationPercent() = %.1f, want below 10 with a full page cache", pct)
	}
}

func TestDetectFallsBackToSysinfo(t *testing.T) {
	orig := meminfoPath
	meminfoPath = filepath.Join(t.TempDir(), "missing")
	t.Cleanup(func() { meminfoPath = orig })

	resources, err := Detect()
	if err != nil {
		t.Fatalf("Detect() returned error: %v", err)
	}
	if resources.TotalRAM <= 0 {
		t.Errorf("TotalRAM = %d, want > 0", resources.TotalRAM)
	}
}
