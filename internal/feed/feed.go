// Package feed carries "something changed" notifications between the
// writers of the store and the views watching it.
//
// Notifications carry no payload. Watchers reload what they care about, so a
// burst of writes collapses into a single reload.
package feed

import "context"

// Topic names a subtree of the store.
type Topic string

const (
	TopicPayments Topic = "payments"
	TopicUsers    Topic = "users"
)

// Broker fans change notifications out to subscribers.
type Broker interface {
	Publish(ctx context.Context, topic Topic) error
	Subscribe(ctx context.Context, topic Topic) (Subscription, error)
	Ping(ctx context.Context) error
	Close() error
}

// Subscription delivers one value per (coalesced) change. Changes is closed
// after Close or when the broker goes away.
type Subscription interface {
	Changes() <-chan struct{}
	Close() error
}
