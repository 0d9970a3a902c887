package benchmarks

import (
	"slices"
	"testing"
	"time"

	"github.com/utkarsh5026/rtcore/pool"
)

// executor is what both pool kinds expose to the benchmarks.
type executor interface {
	pool.Executor
	Shutdown(timeout time.Duration) error
}

// poolConfig defines a benchmark configuration for one pool kind
type poolConfig struct {
	name  string
	start func(workers int) executor
}

// quietTuner skips the OS calls so priority pools can be benchmarked without
// privileges and without pinning the benchmark process.
type quietTuner struct{}

func (quietTuner) SetRealtimePriority() error { return nil }
func (quietTuner) PinToCore(int) error        { return nil }

// getAllPools returns every pool kind for benchmarking
func getAllPools() []poolConfig {
	return []poolConfig{
		{
			name: "WorkerPool",
			start: func(workers int) executor {
				return pool.NewWorkerPool(pool.WithWorkerCount(workers))
			},
		},
		{
			name: "PriorityWorkerPool",
			start: func(workers int) executor {
				return pool.NewPriorityWorkerPool(
					pool.WithWorkerCount(workers),
					pool.WithThreadTuner(quietTuner{}),
				)
			},
		},
	}
}

// runPoolBenchmark runs a benchmark function for all pool kinds
func runPoolBenchmark(b *testing.B, benchFunc func(b *testing.B, c poolConfig)) {
	for _, c := range getAllPools() {
		b.Run(c.name, func(b *testing.B) {
			benchFunc(b, c)
		})
	}
}

// submitAll queues count tasks and waits for every result.
func submitAll(b *testing.B, p pool.Executor, count int, work func(task int) int) {
	b.Helper()

	futures := make([]*pool.Future[int], count)
	for i := range count {
		f, err := pool.Submit(p, func() (int, error) { return work(i), nil })
		if err != nil {
			b.Fatal(err)
		}
		futures[i] = f
	}
	for _, f := range futures {
		if _, err := f.Get(); err != nil {
			b.Fatal(err)
		}
	}
}

// =============================================================================
// Benchmark Workload Generators
// =============================================================================

// cpuBoundWork simulates a CPU-intensive operation
func cpuBoundWork(iterations int) func(task int) int {
	return func(task int) int {
		result := 0
		for i := range iterations {
			result += i * task
		}
		return result
	}
}

// mixedWork simulates a realistic workload with variable processing time
func mixedWork() func(task int) int {
	return func(task int) int {
		// Simulate variable processing time (0-100µs)
		time.Sleep(time.Duration(task%10) * 10 * time.Microsecond)

		result := 0
		for i := range 1000 {
			result += i
		}
		return result + task
	}
}

func percentile(latencies []time.Duration, p float64) time.Duration {
	if len(latencies) == 0 {
		return 0
	}

	sorted := slices.Clone(latencies)
	slices.Sort(sorted)

	// Nearest-rank: p=0.50 over 100 samples picks index 49.
	index := max(int(p*float64(len(sorted)))-1, 0)
	return sorted[min(index, len(sorted)-1)]
}
