package mempool

import (
	"math/bits"
	"sync/atomic"
	"unsafe"
)

const (
	// Segment k holds firstSegment<<k nodes.
	firstSegmentShift = 6
	firstSegment      = 1 << firstSegmentShift
	// Enough segments to address almost every 32-bit node reference.
	maxSegments = 32 - firstSegmentShift
	maxNodes    = firstSegment<<maxSegments - firstSegment
)

// node is one free-list entry. value must stay the first field: Deallocate
// turns a *T back into its *node by address.
type node[T any] struct {
	value T
	next  atomic.Uint32 // ref of the next free node, 0 at the tail
	ref   uint32        // own index + 1
}

// LockFree is an allocator safe for concurrent use without locks.
//
// Free nodes form a Treiber stack. The head is a single 64-bit word holding
// the reference of the top node in its low half and a modification counter
// in its high half; every successful push or pop bumps the counter, so a
// compare-and-swap against a head that was popped and pushed back in the
// meantime fails instead of corrupting the list.
//
// When the stack is empty Allocate creates a new node rather than waiting.
// Nodes live in segments that double in size and are never returned to the
// runtime while the pool is reachable: the pool grows to its peak demand and
// stays there.
//
// There is deliberately no Available or Capacity; counting free nodes would
// put a shared counter on every operation.
type LockFree[T any] struct {
	head     atomic.Uint64
	created  atomic.Uint32
	segments [maxSegments]atomic.Pointer[[]node[T]]
}

// NewLockFree creates a pool with initialSize free nodes.
// An initialSize of 0 is valid; the first Allocate then grows the pool.
func NewLockFree[T any](initialSize int) *LockFree[T] {
	p := &LockFree[T]{}
	for range max(0, initialSize) {
		p.push(p.newNode())
	}
	return p
}

// Allocate pops a free node, or creates one when none is free, and returns a
// pointer to its value. The value is whatever the previous user left there.
func (p *LockFree[T]) Allocate() *T {
	for {
		old := p.head.Load()
		ref := uint32(old)
		if ref == 0 {
			return &p.newNode().value
		}

		n := p.lookup(ref)
		next := n.next.Load()
		if p.head.CompareAndSwap(old, pack(old, next)) {
			return &n.value
		}
	}
}

// Deallocate returns obj to the pool. obj must have come from Allocate on
// this pool and must not be used afterwards. A nil obj is ignored.
func (p *LockFree[T]) Deallocate(obj *T) {
	if obj == nil {
		return
	}
	p.push((*node[T])(unsafe.Pointer(obj)))
}

func (p *LockFree[T]) push(n *node[T]) {
	for {
		old := p.head.Load()
		n.next.Store(uint32(old))
		if p.head.CompareAndSwap(old, pack(old, n.ref)) {
			return
		}
	}
}

// newNode reserves the next index and makes sure its segment exists.
func (p *LockFree[T]) newNode() *node[T] {
	idx := p.created.Add(1) - 1
	if uint64(idx) >= maxNodes {
		panic("mempool: lock-free pool exhausted its node references")
	}

	k, off := locate(idx)
	seg := p.segments[k].Load()
	if seg == nil {
		fresh := make([]node[T], firstSegment<<k)
		if p.segments[k].CompareAndSwap(nil, &fresh) {
			seg = &fresh
		} else {
			seg = p.segments[k].Load()
		}
	}

	n := &(*seg)[off]
	n.ref = idx + 1
	return n
}

func (p *LockFree[T]) lookup(ref uint32) *node[T] {
	k, off := locate(ref - 1)
	return &(*p.segments[k].Load())[off]
}

// locate maps a node index to its segment and offset.
func locate(idx uint32) (segment, offset int) {
	j := uint64(idx) + firstSegment
	segment = bits.Len64(j) - firstSegmentShift - 1
	offset = int(j - firstSegment<<segment)
	return segment, offset
}

// pack builds the head word that replaces old, pointing at ref.
func pack(old uint64, ref uint32) uint64 {
	tag := old>>32 + 1
	return tag<<32 | uint64(ref)
}
