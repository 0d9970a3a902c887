package main

import (
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/utkarsh5026/rtcore/mempool"
	"github.com/utkarsh5026/rtcore/timer"
)

// order is the object the allocator benchmarks hand out.
type order struct {
	ID     int64
	Price  float64
	Qty    int32
	Side   byte
	Symbol [8]byte
}

// allocResult is published on the bus once an allocator run has finished.
type allocResult struct {
	Name       string
	Goroutines int
	Ops        int
	Total      time.Duration
	Checksum   int64
}

// allocBatch is how many objects a goroutine holds before releasing them,
// so every run exercises growth and reuse instead of a single hot slot.
const allocBatch = 64

func benchObjectPool(ops int, tm *timer.Timer, opts ...mempool.Option) (allocResult, error) {
	p, err := mempool.NewObjectPool[order](opts...)
	if err != nil {
		return allocResult{}, err
	}

	held := make([]*order, 0, allocBatch)
	var sum int64

	sw := tm.Start()
	for i := range ops {
		o, err := p.Allocate()
		if err != nil {
			return allocResult{}, err
		}
		o.ID = int64(i)
		held = append(held, o)

		if len(held) == allocBatch {
			for _, o := range held {
				sum += o.ID
				p.Release(o)
			}
			held = held[:0]
		}
	}
	for _, o := range held {
		sum += o.ID
		p.Release(o)
	}

	return allocResult{Name: "ObjectPool", Goroutines: 1, Ops: ops, Total: sw.Elapsed(), Checksum: sum}, nil
}

// allocator is the shape shared by the concurrent contenders.
type allocator struct {
	name string
	get  func() *order
	put  func(*order)
}

func lockFreeAllocator(initial int) allocator {
	p := mempool.NewLockFree[order](initial)
	return allocator{name: "LockFree", get: p.Allocate, put: p.Deallocate}
}

func syncPoolAllocator() allocator {
	p := &sync.Pool{New: func() any { return new(order) }}
	return allocator{
		name: "sync.Pool",
		get:  func() *order { return p.Get().(*order) },
		put:  func(o *order) { p.Put(o) },
	}
}

func heapAllocator() allocator {
	return allocator{
		name: "new(T)",
		get:  func() *order { return new(order) },
		put:  func(*order) {},
	}
}

// benchConcurrent splits ops across goroutines, each holding up to
// allocBatch objects at a time.
func benchConcurrent(a allocator, ops, goroutines int, tm *timer.Timer) (allocResult, error) {
	sums := make([]int64, goroutines)
	per := ops / goroutines

	sw := tm.Start()
	var g errgroup.Group
	for w := range goroutines {
		g.Go(func() error {
			held := make([]*order, 0, allocBatch)
			for i := range per {
				o := a.get()
				o.ID = int64(i)
				held = append(held, o)
				if len(held) == allocBatch {
					for _, o := range held {
						sums[w] += o.ID
						a.put(o)
					}
					held = held[:0]
				}
			}
			for _, o := range held {
				sums[w] += o.ID
				a.put(o)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return allocResult{}, err
	}

	var sum int64
	for _, s := range sums {
		sum += s
	}
	return allocResult{
		Name:       a.name,
		Goroutines: goroutines,
		Ops:        per * goroutines,
		Total:      sw.Elapsed(),
		Checksum:   sum,
	}, nil
}
