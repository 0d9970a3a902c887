package pool

import (
	"sync"
)

// Future is a one-shot handle to the result of a submitted task.
//
// It is fulfilled exactly once by the worker that runs the task. Get blocks
// until then; later calls return the same outcome. A Future that is never read
// is simply dropped by the garbage collector, so fire-and-forget submission
// needs no cleanup.
//
// Type parameters:
//   - R: The type of the task's return value
type Future[R any] struct {
	done   chan struct{}
	once   sync.Once
	result Result[R]
}

func newFuture[R any]() *Future[R] {
	return &Future[R]{done: make(chan struct{})}
}

// complete records the outcome and releases every waiter. Only the first call
// has any effect.
func (f *Future[R]) complete(value R, err error) {
	f.once.Do(func() {
		f.result = Result[R]{Value: value, Error: err}
		close(f.done)
	})
}

// Get blocks until the task has run and returns its value and error.
//
// If the task returned an error, that exact error is returned. If it panicked,
// the error is a *PanicError.
//
// Example:
//
//	future, err := pool.Submit(p, func() (int, error) { return 10 + 20, nil })
//	if err != nil {
//	    return err
//	}
//	sum, err := future.Get() // 30, nil
func (f *Future[R]) Get() (R, error) {
	<-f.done
	return f.result.Value, f.result.Error
}

// Result blocks like Get but returns the outcome as a single value.
func (f *Future[R]) Result() Result[R] {
	<-f.done
	return f.result
}

// Done returns a channel that is closed once the result is available.
// It lets callers wait with their own deadline:
//
//	select {
//	case <-future.Done():
//	    v, err := future.Get()
//	case <-ctx.Done():
//	}
func (f *Future[R]) Done() <-chan struct{} {
	return f.done
}

// IsReady reports, without blocking, whether the result is available.
func (f *Future[R]) IsReady() bool {
	select {
	case <-f.done:
		return true
	default:
		return false
	}
}
