package workers

import (
	"os"
	"runtime"
	"strconv"
)

// Count returns a worker count scaled from the available CPUs.
// GOMAXPROCS is automatically set to the container CPU limit in Go 1.19+,
// so this respects cgroup limits without extra plumbing.
//
// The multiplier adjusts for task characteristics:
//   - 1.0 for CPU-bound tasks
//   - 2.0 for I/O-bound tasks
//
// The limit parameter caps the result; use 0 for no limit.
func Count(multiplier float64, limit int) int {
	available := runtime.GOMAXPROCS(0)

	workers := int(float64(available) * multiplier)
	if workers < 1 {
		workers = 1
	}
	if limit > 0 && workers > limit {
		workers = limit
	}
	return workers
}

// Lanes returns the number of crawl lanes to use. Lane work is dominated by
// external probe processes and filesystem reads, so it scales like I/O-bound
// work. The INDEX_LANES environment variable overrides the computed value.
func Lanes(limit int) int {
	if override := os.Getenv("INDEX_LANES"); override != "" {
		if count, err := strconv.Atoi(override); err == nil && count > 0 {
			if limit > 0 && count > limit {
				return limit
			}
			return count
		}
	}
	return Count(2.0, limit)
}
