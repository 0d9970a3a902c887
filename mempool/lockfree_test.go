package mempool

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

func TestLocate(t *testing.T) {
	tests := []struct {
		idx         uint32
		wantSegment int
		wantOffset  int
	}{
		{0, 0, 0},
		{63, 0, 63},
		{64, 1, 0},
		{191, 1, 127},
		{192, 2, 0},
		{maxNodes - 1, maxSegments - 1, firstSegment<<(maxSegments-1) - 1},
	}

	for _, tt := range tests {
		segment, offset := locate(tt.idx)
		assert.Equal(t, tt.wantSegment, segment, "segment of %d", tt.idx)
		assert.Equal(t, tt.wantOffset, offset, "offset of %d", tt.idx)
	}
}

func TestPack(t *testing.T) {
	head := pack(0, 5)
	assert.Equal(t, uint32(5), uint32(head))
	assert.Equal(t, uint64(1), head>>32)

	head = pack(head, 0)
	assert.Zero(t, uint32(head))
	assert.Equal(t, uint64(2), head>>32, "every swap bumps the tag")

	wrapped := pack(uint64(1<<32-1)<<32|7, 9)
	assert.Equal(t, uint64(9), wrapped, "tag wraps around")
}

func TestLockFree_InitialSize(t *testing.T) {
	p := NewLockFree[order](10)
	assert.Equal(t, uint32(10), p.created.Load())

	held := make([]*order, 10)
	for i := range held {
		held[i] = p.Allocate()
	}
	assert.Equal(t, uint32(10), p.created.Load(), "prepopulated nodes are reused")

	extra := p.Allocate()
	assert.NotNil(t, extra)
	assert.Equal(t, uint32(11), p.created.Load())
}

func TestLockFree_ZeroInitialSize(t *testing.T) {
	p := NewLockFree[int64](0)

	a := p.Allocate()
	require.NotNil(t, a)
	*a = 1
	b := p.Allocate()
	require.NotNil(t, b)
	assert.NotSame(t, a, b)

	p.Deallocate(a)
	assert.Same(t, a, p.Allocate())
	assert.Equal(t, uint32(2), p.created.Load())
}

func TestLockFree_NegativeInitialSize(t *testing.T) {
	p := NewLockFree[int64](-3)
	assert.Zero(t, p.created.Load())
	assert.NotNil(t, p.Allocate())
}

func TestLockFree_LIFOReuse(t *testing.T) {
	p := NewLockFree[order](0)

	first := p.Allocate()
	second := p.Allocate()
	first.ID = 1
	second.ID = 2

	p.Deallocate(first)
	p.Deallocate(second)

	assert.Same(t, second, p.Allocate())
	got := p.Allocate()
	assert.Same(t, first, got)
	assert.Equal(t, int64(1), got.ID, "storage is not cleared")
}

func TestLockFree_GrowsAcrossSegments(t *testing.T) {
	p := NewLockFree[int64](0)

	const n = firstSegment * 7
	held := make(map[*int64]struct{}, n)
	for i := range n {
		v := p.Allocate()
		*v = int64(i)
		_, dup := held[v]
		require.False(t, dup)
		held[v] = struct{}{}
	}

	assert.NotNil(t, p.segments[2].Load())
	assert.Nil(t, p.segments[3].Load())

	for v := range held {
		p.Deallocate(v)
	}
	for range n {
		_, ok := held[p.Allocate()]
		require.True(t, ok, "only recycled nodes expected")
	}
	assert.Equal(t, uint32(n), p.created.Load())
}

func TestLockFree_DeallocateNil(t *testing.T) {
	p := NewLockFree[int64](1)
	p.Deallocate(nil)
	assert.Equal(t, uint64(1), p.head.Load()>>32, "nil must not touch the head")
}

func TestLockFree_ConcurrentUniqueness(t *testing.T) {
	const (
		goroutines = 8
		iterations = 10_000
	)

	p := NewLockFree[order](10)

	var live sync.Map
	var outstanding atomic.Int64
	var g errgroup.Group

	for range goroutines {
		g.Go(func() error {
			for i := range iterations {
				o := p.Allocate()
				if _, dup := live.LoadOrStore(o, struct{}{}); dup {
					t.Errorf("pointer %p granted twice", o)
					return nil
				}
				if n := outstanding.Add(1); n > goroutines {
					t.Errorf("%d allocations outstanding with %d holders", n, goroutines)
				}

				o.ID = int64(i)

				outstanding.Add(-1)
				live.Delete(o)
				p.Deallocate(o)
			}
			return nil
		})
	}

	require.NoError(t, g.Wait())
	assert.Zero(t, outstanding.Load())
	assert.LessOrEqual(t, p.created.Load(), uint32(10+goroutines))
}

func TestLockFree_ConcurrentHolding(t *testing.T) {
	const (
		goroutines = 8
		batch      = 32
		rounds     = 500
	)

	p := NewLockFree[int64](0)
	var live sync.Map
	var g errgroup.Group

	for range goroutines {
		g.Go(func() error {
			held := make([]*int64, 0, batch)
			for range rounds {
				for range batch {
					v := p.Allocate()
					if _, dup := live.LoadOrStore(v, struct{}{}); dup {
						t.Errorf("pointer %p granted twice", v)
					}
					held = append(held, v)
				}
				for _, v := range held {
					live.Delete(v)
					p.Deallocate(v)
				}
				held = held[:0]
			}
			return nil
		})
	}

	require.NoError(t, g.Wait())
	assert.LessOrEqual(t, p.created.Load(), uint32(goroutines*batch))
}

func BenchmarkLockFree(b *testing.B) {
	p := NewLockFree[order](1024)
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			o := p.Allocate()
			o.ID++
			p.Deallocate(o)
		}
	})
}

func BenchmarkSyncPool(b *testing.B) {
	p := sync.Pool{New: func() any { return new(order) }}
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			o := p.Get().(*order)
			o.ID++
			p.Put(o)
		}
	})
}

func BenchmarkObjectPool(b *testing.B) {
	p, err := NewObjectPool[order]()
	require.NoError(b, err)

	b.ResetTimer()
	for range b.N {
		o, _ := p.Allocate()
		o.ID++
		p.Release(o)
	}
}
