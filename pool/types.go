package pool

// Result is the outcome of a single submitted task.
//
// Type parameters:
//   - R: The type of the result value
//
// Fields:
//   - Value: The value returned by the task (only meaningful if Error is nil)
//   - Error: The error returned by the task, or a *PanicError if it panicked
type Result[R any] struct {
	Value R
	Error error
}

// Executor is anything that can queue a boxed task for execution.
// Both WorkerPool and PriorityWorkerPool implement it, which lets Submit and
// SubmitFunc work against either.
type Executor interface {
	// Execute queues fn for execution. It fails with ErrPoolStopped after shutdown.
	Execute(fn func()) error
}
