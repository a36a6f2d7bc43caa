// Package parallel resolves a "--number-of-thread"-style flag (0 meaning
// "use every CPU") into a concrete worker count, following the same
// convention pileup/snp uses for its "--parallelism" flag.
package parallel

import "runtime"

// NumWorkers returns requested if it's positive, or runtime.NumCPU()
// otherwise.
func NumWorkers(requested int) int {
	if requested > 0 {
		return requested
	}
	return runtime.NumCPU()
}
