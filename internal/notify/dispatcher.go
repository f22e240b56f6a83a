// Package notify moves events off the request path. Services enqueue onto
// a bounded channel; one goroutine hands them to a Sink.
package notify

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/diewo77/jobboard/internal/events"
)

// Sink delivers one event. mq.Publisher and LocalSink implement it.
type Sink interface {
	Publish(ctx context.Context, key string, payload any) error
}

// Dispatcher is a bounded, non-blocking event queue.
type Dispatcher struct {
	sink        Sink
	queue       chan events.Event
	sendTimeout time.Duration

	mu     sync.RWMutex
	closed bool
	done   chan struct{}
}

// NewDispatcher creates a dispatcher holding at most size pending events.
// Call Start to begin delivery.
func NewDispatcher(sink Sink, size int, sendTimeout time.Duration) *Dispatcher {
	if size <= 0 {
		size = 1
	}
	if sendTimeout <= 0 {
		sendTimeout = 10 * time.Second
	}
	return &Dispatcher{
		sink:        sink,
		queue:       make(chan events.Event, size),
		sendTimeout: sendTimeout,
		done:        make(chan struct{}),
	}
}

// Start launches the delivery goroutine.
func (d *Dispatcher) Start() {
	go d.run()
}

func (d *Dispatcher) run() {
	defer close(d.done)
	for queued := range d.queue {
		for _, ev := range events.Split(queued) {
			d.deliver(ev)
		}
	}
}

func (d *Dispatcher) deliver(ev events.Event) {
	ctx, cancel := context.WithTimeout(context.Background(), d.sendTimeout)
	defer cancel()
	if err := d.sink.Publish(ctx, ev.Key, ev.Payload); err != nil {
		log.Printf("[notify] deliver %s failed: %v", ev.Key, err)
	}
}

// Enqueue never blocks. It reports false when the event was dropped
// because the queue is full or the dispatcher is closed.
func (d *Dispatcher) Enqueue(key string, payload any) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		log.Printf("[notify] dispatcher closed, dropping %s", key)
		return false
	}
	select {
	case d.queue <- events.Event{Key: key, Payload: payload}:
		return true
	default:
		log.Printf("[notify] queue full, dropping %s", key)
		return false
	}
}

// Close stops accepting events and waits until the pending ones are
// delivered or ctx expires.
func (d *Dispatcher) Close(ctx context.Context) error {
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		close(d.queue)
	}
	d.mu.Unlock()

	select {
	case <-d.done:
		return nil
	case <-ctx.Done():
		return errors.Join(errors.New("notify: drain interrupted"), ctx.Err())
	}
}

// Pending returns the number of queued events.
func (d *Dispatcher) Pending() int {
	return len(d.queue)
}
