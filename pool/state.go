package pool

import (
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/utkarsh5026/rtcore/internal/scheduler"
)

// poolState is the engine shared by WorkerPool and PriorityWorkerPool: one
// queue, a fixed worker set and the shutdown bookkeeping. Each pool owns its
// own poolState; nothing is shared between pools.
type poolState struct {
	kind     string
	workers  int
	queue    *scheduler.TaskQueue
	logger   *zap.Logger
	metrics  *poolMetrics
	shutdown atomic.Bool
	done     chan struct{} // Closed when all workers have finished
}

// startPool spawns cfg.workerCount workers. setup, when non-nil, runs first
// on each worker's goroutine with that worker's index.
func startPool(kind string, cfg *workerPoolConfig, setup func(workerID int)) *poolState {
	s := &poolState{
		kind:    kind,
		workers: cfg.workerCount,
		queue:   scheduler.NewTaskQueue(),
		logger:  cfg.logger.With(zap.String("pool", kind)),
		done:    make(chan struct{}),
	}
	s.metrics = newPoolMetrics(cfg.meterProvider, kind, s.queue.Len, s.logger)

	var g errgroup.Group
	for i := range s.workers {
		g.Go(func() error {
			if setup != nil {
				setup(i)
			}
			w := &scheduler.Worker{ID: i, Queue: s.queue, Recover: s.recovered}
			return w.Run()
		})
	}

	go func() {
		if err := g.Wait(); err != nil {
			s.logger.Error("worker exited abnormally", zap.Error(err))
		}
		s.metrics.close()
		close(s.done)
	}()

	s.logger.Debug("pool started", zap.Int("workers", s.workers))
	return s
}

// enqueue pushes t, translating a closed queue into ErrPoolStopped.
func (s *poolState) enqueue(t scheduler.Task) error {
	if err := s.queue.Push(t); err != nil {
		s.metrics.add(s.metrics.rejected)
		return ErrPoolStopped
	}
	s.metrics.add(s.metrics.submitted)
	return nil
}

// execute queues a fire-and-forget closure. A panic inside fn is handled by
// recovered; completion is only counted when fn returns normally.
func (s *poolState) execute(fn func()) error {
	if fn == nil {
		return ErrNilTask
	}
	return s.enqueue(scheduler.TaskFunc(func() {
		fn()
		s.metrics.add(s.metrics.completed)
	}))
}

// recovered is the worker's last line of defence for tasks without a Future.
func (s *poolState) recovered(workerID int, value any, stack []byte) {
	s.metrics.add(s.metrics.failed)
	s.logger.Error("task panicked",
		zap.Int("worker", workerID),
		zap.Any("panic", value),
		zap.ByteString("stack", stack))
}

// finished records the outcome of a task that reports through a Future.
func (s *poolState) finished(err error) {
	if err != nil {
		s.metrics.add(s.metrics.failed)
		return
	}
	s.metrics.add(s.metrics.completed)
}

// stop closes the queue on the first call and waits for the workers to drain
// it. Every call waits on the same completion signal.
func (s *poolState) stop(timeout time.Duration) error {
	if s.shutdown.CompareAndSwap(false, true) {
		s.logger.Debug("pool shutting down", zap.Int("pending", s.queue.Len()))
		s.queue.Close()
	}
	return waitUntil(s.done, timeout)
}

// waitUntil blocks until d is closed or timeout elapses. A non-positive
// timeout waits forever.
func waitUntil(d <-chan struct{}, timeout time.Duration) error {
	if timeout <= 0 {
		<-d
		return nil
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-d:
		return nil
	case <-timer.C:
		return ErrShutdownTimeout
	}
}
