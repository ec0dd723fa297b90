// Package tuner detects host resources for the forcer generator: the number
// of processing units to run workers on, and how much of physical memory is
// currently in use.
package tuner

import (
	"errors"
	"fmt"
)

// ErrNoMemoryInfo is returned when total RAM could not be determined.
var ErrNoMemoryInfo = errors.New("total memory unknown")

// SystemResources contains detected system resources.
type SystemResources struct {
	// CPUCores is the number of logical CPU cores available.
	CPUCores int

	// TotalRAM is the total physical RAM in bytes.
	TotalRAM int64

	// AvailableRAM is the available (free) RAM in bytes.
	// This may be an estimate based on system heuristics.
	AvailableRAM int64
}

// UtilizationPercent returns the share of physical memory in use, 0-100.
func (r SystemResources) UtilizationPercent() (float64, error) {
	if r.TotalRAM <= 0 {
		return 0, ErrNoMemoryInfo
	}
	used := r.TotalRAM - r.AvailableRAM
	used = max(used, 0)
	return float64(used) / float64(r.TotalRAM) * 100, nil
}

// MemorySampler reports live memory utilization by re-detecting resources
// on every call.
type MemorySampler struct {
	detect func() (SystemResources, error)
}

// NewMemorySampler returns a sampler backed by Detect.
func NewMemorySampler() *MemorySampler {
	return &MemorySampler{detect: Detect}
}

// UtilizationPercent samples current memory utilization.
func (s *MemorySampler) UtilizationPercent() (float64, error) {
	resources, err := s.detect()
	if err != nil {
		return 0, fmt.Errorf("sampling memory: %w", err)
	}
	return resources.UtilizationPercent()
}
