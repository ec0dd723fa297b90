//go:build linux

package tuner

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"runtime"
	"strconv"
	"strings"

	"golang.org/x/sys/unix"
)

// meminfoPath is read for MemAvailable, which counts reclaimable page cache
// as available.
var meminfoPath = "/proc/meminfo"

// Detect detects available system resources (CPU and RAM).
// On linux it uses runtime.NumCPU() for CPU cores and /proc/meminfo for
// memory, falling back to sysinfo(2) when MemAvailable is not reported.
func Detect() (SystemResources, error) {
	resources := SystemResources{
		CPUCores: runtime.NumCPU(),
	}

	if total, available, ok := readMeminfo(meminfoPath); ok {
		resources.TotalRAM = total
		resources.AvailableRAM = available
		return resources, nil
	}

	var info unix.Sysinfo_t
	if err := unix.Sysinfo(&info); err != nil {
		return resources, fmt.Errorf("sysinfo: %w", err)
	}

	unit := int64(info.Unit)
	if unit == 0 {
		unit = 1
	}
	resources.TotalRAM = int64(info.Totalram) * unit
	resources.AvailableRAM = (int64(info.Freeram) + int64(info.Bufferram)) * unit

	return resources, nil
}

// readMeminfo returns MemTotal and MemAvailable in bytes from the file at
// path. ok is false if the file cannot be read or lacks either field.
func readMeminfo(path string) (total, available int64, ok bool) {
	f, err := os.Open(path)
	if err != nil {
		return 0, 0, false
	}
	defer f.Close()
	return parseMeminfo(f)
}

// parseMeminfo parses lines of the form "MemAvailable:  5861234 kB".
func parseMeminfo(r io.Reader) (total, available int64, ok bool) {
	var haveTotal, haveAvailable bool

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		key, rest, found := strings.Cut(scanner.Text(), ":")
		if !found || (key != "MemTotal" && key != "MemAvailable") {
			continue
		}

		fields := strings.Fields(rest)
		if len(fields) == 0 {
			continue
		}
		n, err := strconv.ParseInt(fields[0], 10, 64)
		if err != nil {
			continue
		}
		if len(fields) > 1 && fields[1] == "kB" {
			n *= 1024
		}

		if key == "MemTotal" {
			total, haveTotal = n, true
		} else {
			available, haveAvailable = n, true
		}
	}
	if scanner.Err() != nil || !haveTotal || !haveAvailable || total <= 0 {
		return 0, 0, false
	}
	return total, min(available, total), true
}
