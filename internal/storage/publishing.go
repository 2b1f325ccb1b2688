package storage

import (
	"context"
	"log"

	"github.com/hongminglow/levelup-be/internal/feed"
	"github.com/hongminglow/levelup-be/internal/models"
)

// Ensure Publishing satisfies the Store interface at compile time.
var _ Store = (*Publishing)(nil)

// Publishing wraps a Store and announces every successful write on the
// change feed. The write is authoritative: a failed publish is only logged.
type Publishing struct {
	Store
	broker feed.Broker
}

// WithFeed wraps store so that writes notify broker subscribers.
func WithFeed(store Store, broker feed.Broker) *Publishing {
	return &Publishing{Store: store, broker: broker}
}

func (p *Publishing) publish(ctx context.Context, topic feed.Topic) {
	if err := p.broker.Publish(context.WithoutCancel(ctx), topic); err != nil {
		log.Printf("publish %s change: %v", topic, err)
	}
}

func (p *Publishing) CreateUser(ctx context.Context, user models.User) (models.User, error) {
	created, err := p.Store.CreateUser(ctx, user)
	if err == nil {
		p.publish(ctx, feed.TopicUsers)
	}
	return created, err
}

func (p *Publishing) UpdateUserRole(ctx context.Context, id string, role models.Role) (models.User, error) {
	updated, err := p.Store.UpdateUserRole(ctx, id, role)
	if err == nil {
		p.publish(ctx, feed.TopicUsers)
	}
	return updated, err
}

func (p *Publishing) AppendPayment(ctx context.Context, pay models.Payment) (models.Payment, error) {
	created, err := p.Store.AppendPayment(ctx, pay)
	if err == nil {
		p.publish(ctx, feed.TopicPayments)
	}
	return created, err
}

func (p *Publishing) SetPaymentStatus(ctx context.Context, id string, status models.PaymentStatus, actorID string) (models.Payment, bool, error) {
	updated, changed, err := p.Store.SetPaymentStatus(ctx, id, status, actorID)
	if err == nil && changed {
		p.publish(ctx, feed.TopicPayments)
	}
	return updated, changed, err
}
