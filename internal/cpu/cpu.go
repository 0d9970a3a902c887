// Package cpu isolates the OS calls used to give a worker thread real-time
// treatment: CPU pinning and fixed-priority scheduling. Every function acts on
// the calling OS thread, so callers must hold runtime.LockOSThread first.
package cpu

import (
	"errors"
	"math/bits"
	"runtime"
)

// ErrUnsupported is returned on platforms without the underlying primitive.
var ErrUnsupported = errors.New("cpu: not supported on this platform")

// NumCPU returns the number of logical CPUs available to the process.
func NumCPU() int {
	return runtime.NumCPU()
}

// CoreFor maps a worker index onto a core in [0, NumCPU()).
func CoreFor(workerID int) int {
	n := NumCPU()
	if n <= 0 {
		return 0
	}
	if workerID < 0 {
		workerID = -workerID
	}
	return workerID % n
}

// affinityMask returns the single-bit mask selecting core. Masks are one
// machine word wide, so cores past the word size cannot be addressed.
func affinityMask(core int) (uintptr, error) {
	if core < 0 || core >= bits.UintSize {
		return 0, ErrUnsupported
	}
	return uintptr(1) << uint(core), nil
}
