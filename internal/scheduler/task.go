package scheduler

// Task is a boxed unit of work. The queue owns it until a worker dequeues it;
// after that it lives only on the worker's stack.
type Task interface {
	Invoke()
}

// TaskFunc adapts a plain closure to Task.
type TaskFunc func()

// Invoke runs the closure.
func (f TaskFunc) Invoke() { f() }
