package pool

import (
	"runtime"
	"time"

	"go.uber.org/zap"

	"github.com/utkarsh5026/rtcore/internal/cpu"
)

const defaultPriorityWorkers = 2

// PriorityWorkerPool is a WorkerPool whose workers each own an OS thread with
// real-time treatment. At startup every worker, once:
//
//  1. locks its goroutine to the current OS thread for the rest of its life,
//  2. requests the highest fixed-priority scheduling class (falling back to the
//     most favourable time-shared priority),
//  3. pins the thread to core (index mod NumCPU).
//
// Steps 2 and 3 are best effort. Without privileges, or on platforms that
// lack the calls, they fail quietly and the pool behaves like a WorkerPool.
//
// The pool has its own queue and worker set; it is not a priority lane on a
// WorkerPool, and no ordering exists between the two.
type PriorityWorkerPool struct {
	s     *poolState
	tuner ThreadTuner
}

// NewPriorityWorkerPool starts a real-time pool. It defaults to 2 workers and
// DefaultThreadTuner(); see WithThreadTuner.
func NewPriorityWorkerPool(opts ...WorkerPoolOption) *PriorityWorkerPool {
	cfg := createConfig(defaultPriorityWorkers, opts...)
	if cfg.tuner == nil {
		cfg.tuner = DefaultThreadTuner()
	}

	p := &PriorityWorkerPool{tuner: cfg.tuner}
	log := cfg.logger.With(zap.String("pool", kindPriority))

	p.s = startPool(kindPriority, cfg, func(workerID int) {
		// Never unlocked: when the worker returns, the runtime retires this
		// thread instead of handing a real-time thread to other goroutines.
		runtime.LockOSThread()
		p.tune(log, workerID)
	})
	return p
}

func (p *PriorityWorkerPool) tune(log *zap.Logger, workerID int) {
	if err := p.tuner.SetRealtimePriority(); err != nil {
		log.Debug("priority elevation denied", zap.Int("worker", workerID), zap.Error(err))
	}

	core := cpu.CoreFor(workerID)
	if err := p.tuner.PinToCore(core); err != nil {
		log.Debug("cpu pinning failed", zap.Int("worker", workerID), zap.Int("core", core), zap.Error(err))
	}
}

// Execute queues fn without a result handle. See WorkerPool.Execute.
func (p *PriorityWorkerPool) Execute(fn func()) error {
	return p.s.execute(fn)
}

// Size returns the number of workers, fixed at construction.
func (p *PriorityWorkerPool) Size() int {
	return p.s.workers
}

// Pending returns the advisory queue depth.
func (p *PriorityWorkerPool) Pending() int {
	return p.s.queue.Len()
}

// Shutdown stops accepting work and waits for queued tasks to finish.
// See WorkerPool.Shutdown.
func (p *PriorityWorkerPool) Shutdown(timeout time.Duration) error {
	return p.s.stop(timeout)
}

// Done returns a channel closed once every worker has exited.
func (p *PriorityWorkerPool) Done() <-chan struct{} {
	return p.s.done
}

func (p *PriorityWorkerPool) state() *poolState {
	return p.s
}
