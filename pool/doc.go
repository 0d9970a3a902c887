// Package pool provides fixed-size worker pools for latency-sensitive code.
//
// Two pool types share one contract:
//
//   - WorkerPool: N workers (default GOMAXPROCS) draining a FIFO queue.
//   - PriorityWorkerPool: the same, but every worker locks an OS thread,
//     requests real-time scheduling and pins itself to a CPU core.
//
// Both accept arbitrary closures and hand back a Future for the result. The
// worker set is fixed at construction; there is no resizing, no work stealing
// and no cancellation of queued tasks. Shutdown lets everything already queued
// run to completion.
//
// # Basic Usage
//
//	p := pool.NewWorkerPool(pool.WithWorkerCount(4))
//	defer p.Shutdown(0)
//
//	future, err := pool.Submit(p, func() (int, error) {
//	    return 10 + 20, nil
//	})
//	if err != nil {
//	    // pool.ErrPoolStopped: the pool was already shut down
//	}
//	sum, err := future.Get() // blocks until a worker has run the task
//
// # Failures
//
// A task's returned error is delivered unchanged by Future.Get. A panic is
// recovered on the worker and delivered as a *PanicError. Neither affects the
// worker or sibling tasks, and nothing is retried automatically.
//
//	future, _ := pool.Submit(p, func() (int, error) {
//	    return 0, errors.New("x")
//	})
//	_, err := future.Get() // err.Error() == "x"
//
// # Fire and Forget
//
//	_ = p.Execute(func() { publish(evt) })
//
// Panics from Execute tasks are logged through the pool's zap logger.
//
// # Real-time Workers
//
//	rt := pool.NewPriorityWorkerPool(
//	    pool.WithWorkerCount(2),
//	    pool.WithLogger(logger),
//	)
//	defer rt.Shutdown(time.Second)
//
// Priority elevation and CPU pinning are hints; failures are logged at debug
// level and never fatal.
//
// # Configuration Options
//
//   - WithWorkerCount(n): Number of workers
//   - WithLogger(l): zap logger for lifecycle and panic reports
//   - WithMeterProvider(mp): OpenTelemetry meter provider for task counters
//   - WithThreadTuner(t): Replace the OS priority/affinity calls
//   - OptionsFromConfig(store): Read "pool.workers" from a config store
package pool
