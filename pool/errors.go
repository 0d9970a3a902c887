package pool

import (
	"errors"
	"fmt"
)

var (
	// ErrPoolStopped is returned by Submit, SubmitFunc and Execute once Shutdown
	// has been requested. The rejected task is never queued.
	ErrPoolStopped = errors.New("pool: stopped")

	// ErrShutdownTimeout is returned by Shutdown when workers are still draining
	// after the given timeout. Draining continues in the background.
	ErrShutdownTimeout = errors.New("error in shutting down: timeout reached")

	// ErrNilTask is returned when a nil function is submitted.
	ErrNilTask = errors.New("pool: task is nil")
)

// PanicError is the failure recorded in a Future when the task panicked.
// The worker that ran the task recovers and keeps serving the queue.
type PanicError struct {
	Value any    // value passed to panic
	Stack []byte // stack of the worker at the point of recovery
}

// Error formats the panic value together with the captured stack.
func (e *PanicError) Error() string {
	return fmt.Sprintf("worker panic: %v\nstack trace:\n%s", e.Value, e.Stack)
}

// Unwrap exposes the panic value when it was itself an error, so
//
//	errors.Is(err, io.ErrUnexpectedEOF)
//
// matches a task that did panic(io.ErrUnexpectedEOF).
func (e *PanicError) Unwrap() error {
	if err, ok := e.Value.(error); ok {
		return err
	}
	return nil
}
