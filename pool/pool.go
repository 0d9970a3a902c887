package pool

import (
	"runtime"
	"time"
)

// WorkerPool is a fixed set of workers draining a single FIFO queue.
//
// Work is submitted with Submit, SubmitFunc or Execute and runs on the first
// free worker. Tasks are dequeued in submission order; with more than one
// worker, completion order is unspecified. The worker set is created by
// NewWorkerPool and never changes size.
//
// A WorkerPool is safe for concurrent use.
type WorkerPool struct {
	s *poolState
}

// NewWorkerPool starts a pool with the given options.
//
// Default configuration:
//   - workerCount: runtime.GOMAXPROCS(0)
//   - logger: zap.NewNop()
//   - meter provider: otel.GetMeterProvider()
//
// Example:
//
//	p := pool.NewWorkerPool(pool.WithWorkerCount(2))
//	defer p.Shutdown(0)
//
//	future, _ := pool.Submit(p, func() (int, error) { return 10 + 20, nil })
//	v, _ := future.Get() // 30
func NewWorkerPool(opts ...WorkerPoolOption) *WorkerPool {
	cfg := createConfig(runtime.GOMAXPROCS(0), opts...)
	return &WorkerPool{s: startPool(kindStandard, cfg, nil)}
}

// Execute queues fn without a result handle. A panic inside fn is recovered
// and logged; the worker survives.
//
// Returns ErrPoolStopped once Shutdown has been called.
func (wp *WorkerPool) Execute(fn func()) error {
	return wp.s.execute(fn)
}

// Size returns the number of workers, fixed at construction.
func (wp *WorkerPool) Size() int {
	return wp.s.workers
}

// Pending returns the number of queued tasks not yet picked up by a worker.
// The value is a snapshot and may be stale by the time it is read.
func (wp *WorkerPool) Pending() int {
	return wp.s.queue.Len()
}

// Shutdown stops accepting work and waits for the workers to finish every
// task queued before the call. Submissions after this point fail with
// ErrPoolStopped.
//
// Parameters:
//   - timeout: Maximum time to wait for the drain (0 = wait forever)
//
// Returns:
//   - error: ErrShutdownTimeout if workers are still running when the timeout
//     expires; they keep draining in the background
//
// Calling Shutdown again is allowed and waits for the same drain.
func (wp *WorkerPool) Shutdown(timeout time.Duration) error {
	return wp.s.stop(timeout)
}

// Done returns a channel closed once every worker has exited.
func (wp *WorkerPool) Done() <-chan struct{} {
	return wp.s.done
}

func (wp *WorkerPool) state() *poolState {
	return wp.s
}
