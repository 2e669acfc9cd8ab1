// Package sysres samples system memory state for batch sizing decisions.
//
// On Linux the profile is read from /proc/meminfo, overridden by cgroup v2
// limits when the process runs inside a container with a memory cap. Each
// Snapshot is an immutable point-in-time view; callers take a fresh one per
// cycle.
package sysres

import (
	"fmt"
	"os"
	"runtime"
	"strconv"
	"strings"
)

// Profile is a point-in-time view of memory capacity and pressure.
type Profile struct {
	TotalBytes     uint64
	AvailableBytes uint64
	UsedFraction   float64
}

// proc and cgroup paths, overridable in tests.
var (
	meminfoPath       = "/proc/meminfo"
	cgroupMaxPath     = "/sys/fs/cgroup/memory.max"
	cgroupCurrentPath = "/sys/fs/cgroup/memory.current"
)

// Snapshot reads the current memory profile. Inside a cgroup v2 container
// with a memory limit the limit and usage take precedence over host-wide
// /proc/meminfo numbers.
func Snapshot() (Profile, error) {
	if runtime.GOOS != "linux" {
		return Profile{}, fmt.Errorf("memory profile unsupported on %s", runtime.GOOS)
	}

	total, available, err := readMeminfo(meminfoPath)
	if err != nil {
		return Profile{}, err
	}

	// Container limit overrides host totals when present.
	if limit, err := readCgroupUint64(cgroupMaxPath); err == nil && limit > 0 {
		if current, err := readCgroupUint64(cgroupCurrentPath); err == nil {
			total = limit
			if current >= limit {
				available = 0
			} else {
				available = limit - current
			}
		}
	}

	if total == 0 {
		return Profile{}, fmt.Errorf("zero total memory from %s", meminfoPath)
	}
	used := float64(total-min64(available, total)) / float64(total)
	return Profile{
		TotalBytes:     total,
		AvailableBytes: available,
		UsedFraction:   used,
	}, nil
}

// readMeminfo parses MemTotal and MemAvailable from /proc/meminfo.
// Values are in kB and need conversion to bytes.
func readMeminfo(path string) (total, available uint64, err error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, 0, err
	}
	for _, line := range strings.Split(string(data), "\n") {
		parts := strings.SplitN(line, ":", 2)
		if len(parts) != 2 {
			continue
		}
		key := strings.TrimSpace(parts[0])
		if key != "MemTotal" && key != "MemAvailable" {
			continue
		}
		valStr := strings.TrimSpace(parts[1])
		valStr = strings.TrimSuffix(valStr, " kB")
		valStr = strings.TrimSpace(valStr)
		kbVal, perr := strconv.ParseUint(valStr, 10, 64)
		if perr != nil {
			continue
		}
		switch key {
		case "MemTotal":
			total = kbVal * 1024
		case "MemAvailable":
			available = kbVal * 1024
		}
	}
	if total == 0 {
		return 0, 0, fmt.Errorf("MemTotal missing in %s", path)
	}
	return total, available, nil
}

func readCgroupUint64(path string) (uint64, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	s := strings.TrimSpace(string(data))
	if s == "max" {
		return 0, fmt.Errorf("unlimited")
	}
	return strconv.ParseUint(s, 10, 64)
}

func min64(a, b uint64) uint64 {
	if a < b {
		return a
	}
	return b
}
