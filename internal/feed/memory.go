package feed

import (
	"context"
	"errors"
	"sync"
)

// ErrClosed is returned by a broker that has been shut down.
var ErrClosed = errors.New("feed: broker closed")

// MemoryBroker is an in-process Broker for single-instance deployments.
type MemoryBroker struct {
	mu     sync.Mutex
	subs   map[Topic]map[*memorySub]struct{}
	closed bool
}

// NewMemoryBroker creates an empty broker.
func NewMemoryBroker() *MemoryBroker {
	return &MemoryBroker{subs: make(map[Topic]map[*memorySub]struct{})}
}

// Publish wakes every subscriber of topic without blocking.
func (b *MemoryBroker) Publish(_ context.Context, topic Topic) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return ErrClosed
	}
	for sub := range b.subs[topic] {
		select {
		case sub.ch <- struct{}{}:
		default:
		}
	}
	return nil
}

// Subscribe registers a new subscriber on topic.
func (b *MemoryBroker) Subscribe(_ context.Context, topic Topic) (Subscription, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil, ErrClosed
	}
	sub := &memorySub{broker: b, topic: topic, ch: make(chan struct{}, 1)}
	if b.subs[topic] == nil {
		b.subs[topic] = make(map[*memorySub]struct{})
	}
	b.subs[topic][sub] = struct{}{}
	return sub, nil
}

// Ping fails once the broker is closed.
func (b *MemoryBroker) Ping(context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return ErrClosed
	}
	return nil
}

// Close drops every subscriber.
func (b *MemoryBroker) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil
	}
	b.closed = true
	for _, set := range b.subs {
		for sub := range set {
			sub.closeLocked()
		}
	}
	b.subs = nil
	return nil
}

func (b *MemoryBroker) subscribers(topic Topic) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs[topic])
}

type memorySub struct {
	broker *MemoryBroker
	topic  Topic
	ch     chan struct{}
	done   bool
}

func (s *memorySub) Changes() <-chan struct{} {
	return s.ch
}

func (s *memorySub) Close() error {
	s.broker.mu.Lock()
	defer s.broker.mu.Unlock()
	s.closeLocked()
	return nil
}

func (s *memorySub) closeLocked() {
	if s.done {
		return
	}
	s.done = true
	if set := s.broker.subs[s.topic]; set != nil {
		delete(set, s)
	}
	close(s.ch)
}
