package benchmarks

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/utkarsh5026/rtcore/mempool"
	"github.com/utkarsh5026/rtcore/pool"
)

// =============================================================================
// Throughput Benchmarks - Core Performance Metrics
// =============================================================================

func BenchmarkComprehensive_ThroughputWorkerScaling(b *testing.B) {
	workerCounts := []int{1, 2, 4, 8, 16}
	taskCount := 10000

	runPoolBenchmark(b, func(b *testing.B, c poolConfig) {
		for _, workers := range workerCounts {
			b.Run(fmt.Sprintf("workers_%d", workers), func(b *testing.B) {
				p := c.start(workers)
				defer p.Shutdown(0)

				b.ResetTimer()
				for range b.N {
					submitAll(b, p, taskCount, cpuBoundWork(100))
				}
				b.StopTimer()

				tasksPerSec := float64(taskCount) * float64(b.N) / b.Elapsed().Seconds()
				b.ReportMetric(tasksPerSec, "tasks/sec")
				b.ReportMetric(tasksPerSec/float64(workers), "tasks/sec/worker")
			})
		}
	})
}

func BenchmarkComprehensive_ThroughputLoadScaling(b *testing.B) {
	taskCounts := []int{100, 1000, 10000}
	workers := 4

	runPoolBenchmark(b, func(b *testing.B, c poolConfig) {
		for _, taskCount := range taskCounts {
			b.Run(fmt.Sprintf("tasks_%d", taskCount), func(b *testing.B) {
				p := c.start(workers)
				defer p.Shutdown(0)

				b.ResetTimer()
				for range b.N {
					submitAll(b, p, taskCount, mixedWork())
				}
				b.StopTimer()

				b.ReportMetric(float64(taskCount)*float64(b.N)/b.Elapsed().Seconds(), "tasks/sec")
			})
		}
	})
}

func BenchmarkComprehensive_ConcurrentSubmitters(b *testing.B) {
	runPoolBenchmark(b, func(b *testing.B, c poolConfig) {
		p := c.start(4)
		defer p.Shutdown(0)

		b.ResetTimer()
		b.RunParallel(func(pb *testing.PB) {
			for pb.Next() {
				f, err := pool.SubmitFunc(p, func() {})
				if err != nil {
					b.Error(err)
					return
				}
				_, _ = f.Get()
			}
		})
	})
}

// =============================================================================
// Latency Benchmarks
// =============================================================================

func BenchmarkComprehensive_WakeupLatency(b *testing.B) {
	runPoolBenchmark(b, func(b *testing.B, c poolConfig) {
		p := c.start(2)
		defer p.Shutdown(0)

		latencies := make([]time.Duration, 0, b.N)

		b.ResetTimer()
		for range b.N {
			queued := time.Now()
			f, err := pool.Submit(p, func() (time.Duration, error) {
				return time.Since(queued), nil
			})
			if err != nil {
				b.Fatal(err)
			}
			d, _ := f.Get()
			latencies = append(latencies, d)
		}
		b.StopTimer()

		b.ReportMetric(float64(percentile(latencies, 0.50).Nanoseconds()), "p50-ns")
		b.ReportMetric(float64(percentile(latencies, 0.99).Nanoseconds()), "p99-ns")
	})
}

func BenchmarkComprehensive_FireAndForget(b *testing.B) {
	runPoolBenchmark(b, func(b *testing.B, c poolConfig) {
		p := c.start(4)

		var wg sync.WaitGroup
		wg.Add(b.N)

		b.ResetTimer()
		for range b.N {
			if err := p.Execute(wg.Done); err != nil {
				b.Fatal(err)
			}
		}
		wg.Wait()
		b.StopTimer()

		_ = p.Shutdown(0)
	})
}

// =============================================================================
// Allocator Benchmarks
// =============================================================================

type quote struct {
	Bid, Ask float64
	Seq      uint64
	Symbol   [8]byte
}

func BenchmarkAllocators_Sequential(b *testing.B) {
	b.Run("ObjectPool", func(b *testing.B) {
		p, err := mempool.NewObjectPool[quote]()
		if err != nil {
			b.Fatal(err)
		}
		b.ReportAllocs()
		b.ResetTimer()
		for i := range b.N {
			q, _ := p.Allocate()
			q.Seq = uint64(i)
			p.Release(q)
		}
	})

	b.Run("LockFree", func(b *testing.B) {
		p := mempool.NewLockFree[quote](16)
		b.ReportAllocs()
		b.ResetTimer()
		for i := range b.N {
			q := p.Allocate()
			q.Seq = uint64(i)
			p.Deallocate(q)
		}
	})

	b.Run("sync.Pool", func(b *testing.B) {
		p := sync.Pool{New: func() any { return new(quote) }}
		b.ReportAllocs()
		b.ResetTimer()
		for i := range b.N {
			q := p.Get().(*quote)
			q.Seq = uint64(i)
			p.Put(q)
		}
	})
}

func BenchmarkAllocators_Parallel(b *testing.B) {
	b.Run("LockFree", func(b *testing.B) {
		p := mempool.NewLockFree[quote](1024)
		b.ReportAllocs()
		b.ResetTimer()
		b.RunParallel(func(pb *testing.PB) {
			for pb.Next() {
				q := p.Allocate()
				q.Seq++
				p.Deallocate(q)
			}
		})
	})

	b.Run("sync.Pool", func(b *testing.B) {
		p := sync.Pool{New: func() any { return new(quote) }}
		b.ReportAllocs()
		b.ResetTimer()
		b.RunParallel(func(pb *testing.PB) {
			for pb.Next() {
				q := p.Get().(*quote)
				q.Seq++
				p.Put(q)
			}
		})
	})

	b.Run("LockedObjectPool", func(b *testing.B) {
		p, err := mempool.NewObjectPool[quote]()
		if err != nil {
			b.Fatal(err)
		}
		var mu sync.Mutex
		b.ReportAllocs()
		b.ResetTimer()
		b.RunParallel(func(pb *testing.PB) {
			for pb.Next() {
				mu.Lock()
				q, _ := p.Allocate()
				q.Seq++
				p.Release(q)
				mu.Unlock()
			}
		})
	})
}

func TestPercentile(t *testing.T) {
	samples := []time.Duration{5, 1, 4, 2, 3}
	if got := percentile(samples, 0.5); got != 2 {
		t.Errorf("p50 = %v, want 2", got)
	}
	if got := percentile(samples, 1); got != 5 {
		t.Errorf("p100 = %v, want 5", got)
	}
	if got := percentile(nil, 0.5); got != 0 {
		t.Errorf("empty = %v, want 0", got)
	}
}
