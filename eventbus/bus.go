// Package eventbus is an in-process publish/subscribe hub keyed by event
// type.
//
// Handlers are registered per Go type and receive events by value:
//
//	bus := eventbus.New()
//	defer bus.Close()
//
//	eventbus.Subscribe(bus, func(e OrderFilled) {
//	    fmt.Println("filled", e.ID)
//	})
//	_ = eventbus.Publish(bus, OrderFilled{ID: 7})
//
// Delivery is synchronous by default: Publish returns after every handler has
// run. After SetAsync(true), Publish queues the event on a single-worker
// pool.WorkerPool and returns at once; events are still delivered one at a
// time in publication order. Flush waits for the queue to empty; it is safe to
// call from a handler.
//
// A panicking handler is recovered and logged; the remaining handlers for the
// event still run.
package eventbus

import (
	"errors"
	"reflect"
	"runtime"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/utkarsh5026/rtcore/pool"
)

// ErrClosed is returned by Publish after Close.
var ErrClosed = errors.New("eventbus: closed")

type handler func(event any)

// Bus routes events to the handlers subscribed to their type.
// The zero value is not usable; call New.
type Bus struct {
	mu       sync.RWMutex
	handlers map[reflect.Type][]handler

	async  atomic.Bool
	closed atomic.Bool

	workerMu sync.Mutex
	worker   *pool.WorkerPool

	// queued counts async events not yet picked up by the worker.
	queuedMu sync.Mutex
	drained  *sync.Cond
	queued   int

	logger *zap.Logger
}

// Option configures a Bus.
type Option func(*Bus)

// WithLogger sets where handler panics are reported. Defaults to zap.NewNop().
func WithLogger(l *zap.Logger) Option {
	return func(b *Bus) {
		if l != nil {
			b.logger = l
		}
	}
}

// WithAsync starts the bus in asynchronous mode.
func WithAsync() Option {
	return func(b *Bus) {
		b.async.Store(true)
	}
}

// New creates an empty Bus.
func New(opts ...Option) *Bus {
	b := &Bus{
		handlers: make(map[reflect.Type][]handler),
		logger:   zap.NewNop(),
	}
	b.drained = sync.NewCond(&b.queuedMu)
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Subscribe registers fn for events of type E. Handlers run in subscription
// order.
func Subscribe[E any](b *Bus, fn func(E)) {
	if fn == nil {
		return
	}
	key := reflect.TypeFor[E]()

	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[key] = append(b.handlers[key], func(event any) {
		fn(event.(E))
	})
}

// Unsubscribe removes every handler registered for E.
func Unsubscribe[E any](b *Bus) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.handlers, reflect.TypeFor[E]())
}

// HandlerCount returns how many handlers are subscribed to E.
func HandlerCount[E any](b *Bus) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.handlers[reflect.TypeFor[E]()])
}

// Publish delivers event to the handlers of type E, directly or through the
// async queue depending on the bus mode. Handlers subscribed while an async
// event is queued will see it.
func Publish[E any](b *Bus, event E) error {
	if b.closed.Load() {
		return ErrClosed
	}

	key := reflect.TypeFor[E]()
	if !b.async.Load() {
		b.dispatch(key, event)
		return nil
	}

	w, err := b.asyncWorker()
	if err != nil {
		return err
	}
	b.track(1)
	err = w.Execute(func() {
		b.track(-1)
		b.dispatch(key, event)
	})
	if err != nil {
		b.track(-1)
		return ErrClosed
	}
	return nil
}

// Emit builds a zero E, lets init fill it in, and publishes it.
func Emit[E any](b *Bus, init func(*E)) error {
	var event E
	if init != nil {
		init(&event)
	}
	return Publish(b, event)
}

// SetAsync switches delivery mode. Events already queued are still delivered
// by the async worker after switching back to synchronous mode.
func (b *Bus) SetAsync(async bool) {
	b.async.Store(async)
}

// Async reports whether Publish currently queues events.
func (b *Bus) Async() bool {
	return b.async.Load()
}

// Flush blocks until the worker has picked up every event queued before the
// call. Handlers of the last event may still be running when it returns; use
// Close to wait for delivery to finish. A handler may call Flush: the event it
// is handling has already left the queue.
func (b *Bus) Flush() {
	b.queuedMu.Lock()
	defer b.queuedMu.Unlock()
	for b.queued > 0 {
		b.drained.Wait()
	}
}

// Close stops accepting events and waits for queued ones to be delivered.
// Calling Close more than once is safe.
func (b *Bus) Close() error {
	b.closed.Store(true)

	b.workerMu.Lock()
	w := b.worker
	b.workerMu.Unlock()
	if w == nil {
		return nil
	}
	return w.Shutdown(0)
}

func (b *Bus) asyncWorker() (*pool.WorkerPool, error) {
	b.workerMu.Lock()
	defer b.workerMu.Unlock()

	if b.closed.Load() {
		return nil, ErrClosed
	}
	if b.worker == nil {
		b.worker = pool.NewWorkerPool(
			pool.WithWorkerCount(1),
			pool.WithLogger(b.logger.Named("eventbus")),
		)
	}
	return b.worker, nil
}

func (b *Bus) track(delta int) {
	b.queuedMu.Lock()
	b.queued += delta
	if b.queued == 0 {
		b.drained.Broadcast()
	}
	b.queuedMu.Unlock()
}

func (b *Bus) dispatch(key reflect.Type, event any) {
	b.mu.RLock()
	hs := b.handlers[key]
	b.mu.RUnlock()

	for i, h := range hs {
		b.call(key, i, h, event)
	}
}

func (b *Bus) call(key reflect.Type, index int, h handler, event any) {
	defer func() {
		if r := recover(); r != nil {
			buf := make([]byte, 4096)
			n := runtime.Stack(buf, false)
			b.logger.Error("event handler panicked",
				zap.Stringer("event", key),
				zap.Int("handler", index),
				zap.Any("panic", r),
				zap.ByteString("stack", buf[:n]))
		}
	}()
	h(event)
}
