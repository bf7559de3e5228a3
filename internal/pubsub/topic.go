// Package pubsub provides typed broadcast topics. Every subscription owns an unbounded
// queue and a delivery goroutine, so a subscriber that never reads does not hold up the others.
package pubsub

import "sync"

type Topic[T any] struct {
	mu     sync.Mutex
	subs   map[*Subscription[T]]struct{}
	closed bool
}

func NewTopic[T any]() *Topic[T] {
	return &Topic[T]{
		subs: make(map[*Subscription[T]]struct{}),
	}
}

// Subscribe registers a new subscriber. Events published before the call are not replayed.
func (that *Topic[T]) Subscribe() *Subscription[T] {
	sub := &Subscription[T]{
		topic:  that,
		out:    make(chan T),
		notify: make(chan struct{}, 1),
		done:   make(chan struct{}),
	}

	that.mu.Lock()
	defer that.mu.Unlock()

	if that.closed {
		close(sub.out)
		return sub
	}

	that.subs[sub] = struct{}{}
	go sub.pump()

	return sub
}

// Publish queues value for every current subscriber and returns without waiting for delivery.
func (that *Topic[T]) Publish(value T) {
	that.mu.Lock()
	defer that.mu.Unlock()

	if that.closed {
		return
	}

	for sub := range that.subs {
		sub.push(value)
	}
}

// Subscribers returns the number of live subscriptions.
func (that *Topic[T]) Subscribers() int {
	that.mu.Lock()
	defer that.mu.Unlock()

	return len(that.subs)
}

// Close ends every subscription. Values still queued are discarded.
func (that *Topic[T]) Close() {
	that.mu.Lock()
	defer that.mu.Unlock()

	if that.closed {
		return
	}

	that.closed = true
	for sub := range that.subs {
		sub.stop()
	}
	clear(that.subs)
}

func (that *Topic[T]) remove(sub *Subscription[T]) {
	that.mu.Lock()
	defer that.mu.Unlock()

	if _, ok := that.subs[sub]; ok {
		delete(that.subs, sub)
		sub.stop()
	}
}

type Subscription[T any] struct {
	topic *Topic[T]
	out   chan T

	mu     sync.Mutex
	queue  []T
	notify chan struct{}

	done     chan struct{}
	stopOnce sync.Once
}

// C delivers the topic's values in publish order. It is closed when the subscription ends.
func (that *Subscription[T]) C() <-chan T {
	return that.out
}

// Close unsubscribes. It is safe to call more than once.
func (that *Subscription[T]) Close() {
	that.topic.remove(that)
}

func (that *Subscription[T]) push(value T) {
	that.mu.Lock()
	that.queue = append(that.queue, value)
	that.mu.Unlock()

	select {
	case that.notify <- struct{}{}:
	default:
	}
}

func (that *Subscription[T]) stop() {
	that.stopOnce.Do(func() {
		close(that.done)
	})
}

func (that *Subscription[T]) pump() {
	defer close(that.out)

	for {
		that.mu.Lock()
		if len(that.queue) == 0 {
			that.mu.Unlock()

			select {
			case <-that.notify:
				continue
			case <-that.done:
				return
			}
		}

		value := that.queue[0]
		var zero T
		that.queue[0] = zero
		that.queue = that.queue[1:]
		that.mu.Unlock()

		select {
		case that.out <- value:
		case <-that.done:
			return
		}
	}
}
