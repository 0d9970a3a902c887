package scheduler

import (
	"errors"
	"sync"

	"github.com/eapache/queue"
)

// ErrQueueClosed is returned by Push once the queue has been closed.
var ErrQueueClosed = errors.New("queue is closed")

// TaskQueue is an unbounded FIFO of tasks guarded by a mutex and a condition
// variable. Backpressure is the producer's problem; Push never blocks on
// capacity.
//
// Once closed, Push is rejected but Pop keeps handing out whatever was queued
// before the close, so accepted work is always executed.
type TaskQueue struct {
	mu     sync.Mutex
	cond   *sync.Cond
	items  *queue.Queue
	closed bool
}

// NewTaskQueue returns an empty, open queue.
func NewTaskQueue() *TaskQueue {
	q := &TaskQueue{items: queue.New()}
	q.cond = sync.NewCond(&q.mu)
	return q
}

// Push appends t and wakes exactly one waiting consumer.
// Returns ErrQueueClosed without queuing t once Close has been called.
func (q *TaskQueue) Push(t Task) error {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return ErrQueueClosed
	}
	q.items.Add(t)
	q.mu.Unlock()

	q.cond.Signal()
	return nil
}

// Pop blocks until a task is available or the queue is closed and empty.
// The boolean is false only in the latter case.
func (q *TaskQueue) Pop() (Task, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	for q.items.Length() == 0 && !q.closed {
		q.cond.Wait()
	}

	if q.items.Length() == 0 {
		return nil, false
	}

	return q.items.Remove().(Task), true
}

// Close stops accepting tasks and wakes every waiting consumer.
// Calling it more than once is harmless.
func (q *TaskQueue) Close() {
	q.mu.Lock()
	q.closed = true
	q.mu.Unlock()

	q.cond.Broadcast()
}

// Len reports the queue depth at the time of the call. It is advisory only.
func (q *TaskQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.items.Length()
}

// Closed reports whether Close has been called.
func (q *TaskQueue) Closed() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.closed
}
