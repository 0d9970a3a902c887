package pool

import (
	"runtime"

	"github.com/utkarsh5026/rtcore/internal/scheduler"
)

// stateHolder is implemented by the pools in this package so Submit can report
// task outcomes to their metrics. Foreign Executors go through Execute.
type stateHolder interface {
	state() *poolState
}

// Submit queues fn on p and returns a Future for its result.
//
// The function and everything it captures are boxed at submission time. The
// task's returned error, or a *PanicError if it panics, is delivered through
// the Future; the worker keeps running either way.
//
// Parameters:
//   - p: The pool to run on (WorkerPool, PriorityWorkerPool or any Executor)
//   - fn: The work to run; capture arguments in the closure
//
// Returns:
//   - future: A handle whose Get blocks until fn has run
//   - error: ErrPoolStopped after shutdown, ErrNilTask for a nil fn
//
// Example:
//
//	add := func(a, b int) int { return a + b }
//	future, err := pool.Submit(p, func() (int, error) { return add(10, 20), nil })
//	if err != nil {
//	    log.Fatal(err)
//	}
//	sum, err := future.Get() // 30
func Submit[R any](p Executor, fn func() (R, error)) (*Future[R], error) {
	if fn == nil {
		return nil, ErrNilTask
	}

	future := newFuture[R]()

	if h, ok := p.(stateHolder); ok {
		s := h.state()
		err := s.enqueue(scheduler.TaskFunc(func() {
			value, err := invoke(fn)
			future.complete(value, err)
			s.finished(err)
		}))
		if err != nil {
			return nil, err
		}
		return future, nil
	}

	if err := p.Execute(func() {
		future.complete(invoke(fn))
	}); err != nil {
		return nil, err
	}
	return future, nil
}

// SubmitFunc queues a function with no result. The Future resolves to the
// zero struct once fn has returned, or to a *PanicError if it panicked.
func SubmitFunc(p Executor, fn func()) (*Future[struct{}], error) {
	if fn == nil {
		return nil, ErrNilTask
	}
	return Submit(p, func() (struct{}, error) {
		fn()
		return struct{}{}, nil
	})
}

// invoke runs fn and converts a panic into a *PanicError.
func invoke[R any](fn func() (R, error)) (result R, err error) {
	defer func() {
		if r := recover(); r != nil {
			buf := make([]byte, 4096)
			n := runtime.Stack(buf, false)
			err = &PanicError{Value: r, Stack: buf[:n]}
		}
	}()

	return fn()
}
