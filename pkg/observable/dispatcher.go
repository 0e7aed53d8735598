package observable

import (
	"sync"

	"github.com/google/uuid"
)

// Subscription is the handle returned by Subscribe.
type Subscription struct {
	// ID uniquely identifies the subscription.
	ID uuid.UUID

	once   sync.Once
	cancel func()
}

// Unsubscribe stops delivery to the subscriber. It is safe to call more than
// once and from inside the subscriber's own callback.
func (s *Subscription) Unsubscribe() {
	if s == nil {
		return
	}
	s.once.Do(s.cancel)
}

type subscriber[E any] struct {
	id uuid.UUID
	fn func(E)
}

// Dispatcher fans out events of type E to subscribers in publish order.
// The zero value is ready to use.
type Dispatcher[E any] struct {
	mu          sync.Mutex
	subscribers []subscriber[E]
	queue       []E
	flushing    bool
}

// Subscribe registers fn for all events published after this call.
func (d *Dispatcher[E]) Subscribe(fn func(E)) *Subscription {
	id := uuid.New()

	d.mu.Lock()
	d.subscribers = append(d.subscribers, subscriber[E]{id: id, fn: fn})
	d.mu.Unlock()

	return &Subscription{
		ID:     id,
		cancel: func() { d.remove(id) },
	}
}

func (d *Dispatcher[E]) remove(id uuid.UUID) {
	d.mu.Lock()
	defer d.mu.Unlock()

	for i, s := range d.subscribers {
		if s.id == id {
			// Copy so an in-progress delivery keeps its own snapshot intact.
			subs := make([]subscriber[E], 0, len(d.subscribers)-1)
			subs = append(subs, d.subscribers[:i]...)
			d.subscribers = append(subs, d.subscribers[i+1:]...)
			return
		}
	}
}

// Publish enqueues an event without delivering it.
func (d *Dispatcher[E]) Publish(event E) {
	d.mu.Lock()
	d.queue = append(d.queue, event)
	d.mu.Unlock()
}

// Flush delivers queued events until the queue is empty. If another Flush is
// already running, on this goroutine or another one, it returns immediately
// and the running Flush delivers the events instead. A caller on another
// goroutine can therefore return before its event has been delivered; it
// only knows delivery will happen, in publish order.
func (d *Dispatcher[E]) Flush() {
	d.mu.Lock()
	if d.flushing {
		d.mu.Unlock()
		return
	}
	d.flushing = true

	for len(d.queue) > 0 {
		event := d.queue[0]
		var zero E
		d.queue[0] = zero
		d.queue = d.queue[1:]
		subs := d.subscribers
		d.mu.Unlock()

		for _, s := range subs {
			if d.active(s.id) {
				s.fn(event)
			}
		}

		d.mu.Lock()
	}

	d.queue = nil
	d.flushing = false
	d.mu.Unlock()
}

// Emit publishes and flushes a single event.
func (d *Dispatcher[E]) Emit(event E) {
	d.Publish(event)
	d.Flush()
}

// Len returns the number of subscribers.
func (d *Dispatcher[E]) Len() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.subscribers)
}

// active reports whether the subscriber is still registered. A subscriber
// removed by an earlier callback of the same event must not be called.
func (d *Dispatcher[E]) active(id uuid.UUID) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, s := range d.subscribers {
		if s.id == id {
			return true
		}
	}
	return false
}
