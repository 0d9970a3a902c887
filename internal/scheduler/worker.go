package scheduler

import (
	"fmt"
	"runtime"
)

// RecoverFunc receives a value recovered from a task that panicked outside of
// any result plumbing, together with the worker's stack at that point.
type RecoverFunc func(workerID int, value any, stack []byte)

// Worker drains a TaskQueue until it is closed and empty.
type Worker struct {
	ID      int
	Queue   *TaskQueue
	Recover RecoverFunc
}

// Run executes the worker loop. It returns nil once the queue is closed and
// drained; a panicking task never terminates the loop.
func (w *Worker) Run() error {
	if w.Queue == nil {
		return fmt.Errorf("worker %d: nil queue", w.ID)
	}

	for {
		t, ok := w.Queue.Pop()
		if !ok {
			return nil
		}
		w.invoke(t)
	}
}

// invoke runs t outside the queue lock and shields the loop from panics.
func (w *Worker) invoke(t Task) {
	defer func() {
		if r := recover(); r != nil {
			if w.Recover == nil {
				return
			}
			buf := make([]byte, 4096)
			n := runtime.Stack(buf, false)
			w.Recover(w.ID, r, buf[:n])
		}
	}()

	t.Invoke()
}
