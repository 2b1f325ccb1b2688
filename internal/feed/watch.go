package feed

import (
	"context"
	"log"
)

// Loader reads the current value of whatever a watcher is interested in.
type Loader[T any] func(ctx context.Context) (T, error)

// Snapshots is a live sequence of values reloaded on every change.
// The owner must call Close to release the subscription.
type Snapshots[T any] struct {
	topic  Topic
	ch     chan T
	cancel context.CancelFunc
	done   chan struct{}
}

// Watch subscribes to topic and emits load's result immediately and then
// after every change notification. A failed load is logged and skipped;
// the next notification retries it.
func Watch[T any](ctx context.Context, b Broker, topic Topic, load Loader[T]) (*Snapshots[T], error) {
	sub, err := b.Subscribe(ctx, topic)
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithCancel(ctx)
	s := &Snapshots[T]{
		topic:  topic,
		ch:     make(chan T),
		cancel: cancel,
		done:   make(chan struct{}),
	}
	go s.run(ctx, sub, load)
	return s, nil
}

// C yields snapshots until the watch ends.
func (s *Snapshots[T]) C() <-chan T {
	return s.ch
}

// Close stops the watch and waits for its goroutine to exit.
func (s *Snapshots[T]) Close() {
	s.cancel()
	<-s.done
}

func (s *Snapshots[T]) run(ctx context.Context, sub Subscription, load Loader[T]) {
	defer close(s.done)
	defer close(s.ch)
	defer sub.Close()

	if !s.deliver(ctx, load) {
		return
	}
	for {
		select {
		case <-ctx.Done():
			return
		case _, ok := <-sub.Changes():
			if !ok {
				return
			}
			if !s.deliver(ctx, load) {
				return
			}
		}
	}
}

func (s *Snapshots[T]) deliver(ctx context.Context, load Loader[T]) bool {
	v, err := load(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return false
		}
		log.Printf("feed: reload %s: %v", s.topic, err)
		return true
	}
	select {
	case s.ch <- v:
		return true
	case <-ctx.Done():
		return false
	}
}
