package mempool

import "errors"

var (
	// ErrOutOfMemory is returned when the pool needs another block but the
	// WithMaxBlocks cap has been reached.
	ErrOutOfMemory = errors.New("mempool: out of memory")

	// ErrInvalidBlockSize is returned by NewObjectPool for a non-positive
	// block size.
	ErrInvalidBlockSize = errors.New("mempool: block size must be positive")
)
