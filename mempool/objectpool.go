package mempool

import (
	"fmt"
	"unsafe"
)

// ObjectPool hands out typed slots carved from fixed-size blocks.
//
// Slots come from a free list; when it runs dry the pool allocates one more
// block and threads its slots onto the list. Blocks are kept for the life of
// the pool, so capacity only grows.
//
// ObjectPool performs no synchronization. Use it from one goroutine, or guard
// it externally; see LockFree for concurrent use.
//
// Releasing a pointer the pool did not hand out, or releasing the same
// pointer twice, corrupts the free list. Neither is detected.
type ObjectPool[T any] struct {
	slotsPerBlock int
	maxBlocks     int
	blocks        [][]T
	free          []*T
}

// NewObjectPool creates a pool and allocates its initial blocks.
//
// Default configuration:
//   - block size: 4096 bytes
//   - initial blocks: 1
//   - max blocks: unlimited
//
// Example:
//
//	p, err := mempool.NewObjectPool[Order]()
//	if err != nil {
//	    return err
//	}
//	o, _ := p.Allocate()
//	defer p.Release(o)
func NewObjectPool[T any](opts ...Option) (*ObjectPool[T], error) {
	cfg := createConfig(opts...)
	if cfg.blockSize <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidBlockSize, cfg.blockSize)
	}

	var zero T
	size := int(unsafe.Sizeof(zero))
	if size == 0 {
		size = 1
	}

	p := &ObjectPool[T]{
		slotsPerBlock: max(1, cfg.blockSize/size),
		maxBlocks:     cfg.maxBlocks,
	}

	for range cfg.initialBlocks {
		if err := p.grow(); err != nil {
			return nil, err
		}
	}
	return p, nil
}

// grow adds one block and pushes its slots onto the free list.
func (p *ObjectPool[T]) grow() error {
	if p.maxBlocks > 0 && len(p.blocks) >= p.maxBlocks {
		return fmt.Errorf("%w: block limit %d reached", ErrOutOfMemory, p.maxBlocks)
	}

	block := make([]T, p.slotsPerBlock)
	p.blocks = append(p.blocks, block)

	// Push in reverse so slots are handed out in address order.
	for i := len(block) - 1; i >= 0; i-- {
		p.free = append(p.free, &block[i])
	}
	return nil
}

// Allocate returns a free slot, growing the pool by one block if none is
// left. The slot holds whatever its previous user left there; use New or
// Destroy when a zeroed value matters.
func (p *ObjectPool[T]) Allocate() (*T, error) {
	if len(p.free) == 0 {
		if err := p.grow(); err != nil {
			return nil, err
		}
	}

	last := len(p.free) - 1
	slot := p.free[last]
	p.free[last] = nil
	p.free = p.free[:last]
	return slot, nil
}

// New allocates a slot and initialises it with init. If init returns an
// error or panics, the slot goes back to the free list before the failure
// reaches the caller.
func (p *ObjectPool[T]) New(init func(*T) error) (*T, error) {
	slot, err := p.Allocate()
	if err != nil {
		return nil, err
	}
	if init == nil {
		return slot, nil
	}

	ok := false
	defer func() {
		if !ok {
			p.Release(slot)
		}
	}()

	if err := init(slot); err != nil {
		return nil, err
	}
	ok = true
	return slot, nil
}

// Release returns obj's storage to the pool without touching its contents.
// A nil obj is ignored.
func (p *ObjectPool[T]) Release(obj *T) {
	if obj == nil {
		return
	}
	p.free = append(p.free, obj)
}

// Destroy zeroes *obj, dropping any references it holds, and releases it.
// A nil obj is ignored.
func (p *ObjectPool[T]) Destroy(obj *T) {
	if obj == nil {
		return
	}
	var zero T
	*obj = zero
	p.Release(obj)
}

// Capacity returns the total number of slots across all blocks.
func (p *ObjectPool[T]) Capacity() int {
	return len(p.blocks) * p.slotsPerBlock
}

// Available returns the number of slots on the free list.
func (p *ObjectPool[T]) Available() int {
	return len(p.free)
}

// SlotsPerBlock returns how many T fit in one block.
func (p *ObjectPool[T]) SlotsPerBlock() int {
	return p.slotsPerBlock
}
