//go:build darwin

package tuner

import (
	"fmt"
	"runtime"

	"golang.org/x/sys/unix"
)

// Detect detects available system resources (CPU and RAM).
// On darwin (macOS), it uses runtime.NumCPU() for CPU cores and
// unix.SysctlUint64 for memory information.
func Detect() (SystemResources, error) {
	resources := SystemResources{
		CPUCores: runtime.NumCPU(),
	}

	memsize, err := unix.SysctlUint64("hw.memsize")
	if err != nil {
		return resources, fmt.Errorf("sysctl hw.memsize: %w", err)
	}
	resources.TotalRAM = int64(memsize)
	resources.AvailableRAM = availableRAM(resources.TotalRAM)

	return resources, nil
}

// availableRAM estimates available memory from the free page count.
// Falls back to half of total RAM when the page counters are unavailable.
func availableRAM(totalRAM int64) int64 {
	freePages, err := unix.SysctlUint32("vm.page_free_count")
	if err != nil {
		return totalRAM / 2
	}
	pageSize, err := unix.SysctlUint32("hw.pagesize")
	if err != nil {
		return totalRAM / 2
	}
	return min(int64(freePages)*int64(pageSize), totalRAM)
}
