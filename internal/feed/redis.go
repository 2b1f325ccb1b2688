package feed

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

const changedMessage = "changed"

// RedisBroker relays notifications over Redis pub/sub so that every API
// instance and the operator CLI see each other's writes.
type RedisBroker struct {
	client *redis.Client
	prefix string
}

// NewRedisBroker connects to redisURL and verifies the connection.
func NewRedisBroker(ctx context.Context, redisURL, prefix string) (*RedisBroker, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("connect to redis: %w", err)
	}
	return &RedisBroker{client: client, prefix: prefix}, nil
}

func (b *RedisBroker) channel(topic Topic) string {
	return b.prefix + string(topic)
}

// Publish announces a change on topic.
func (b *RedisBroker) Publish(ctx context.Context, topic Topic) error {
	return b.client.Publish(ctx, b.channel(topic), changedMessage).Err()
}

// Subscribe waits for Redis to confirm the subscription before returning,
// so no change published afterwards is missed.
func (b *RedisBroker) Subscribe(ctx context.Context, topic Topic) (Subscription, error) {
	ps := b.client.Subscribe(ctx, b.channel(topic))
	if _, err := ps.Receive(ctx); err != nil {
		_ = ps.Close()
		return nil, fmt.Errorf("subscribe %s: %w", topic, err)
	}
	sub := &redisSub{ps: ps, ch: make(chan struct{}, 1)}
	go sub.pump()
	return sub, nil
}

// Ping round-trips to the Redis server.
func (b *RedisBroker) Ping(ctx context.Context) error {
	return b.client.Ping(ctx).Err()
}

// Close releases the underlying client.
func (b *RedisBroker) Close() error {
	return b.client.Close()
}

type redisSub struct {
	ps *redis.PubSub
	ch chan struct{}
}

func (s *redisSub) pump() {
	defer close(s.ch)
	for range s.ps.Channel() {
		select {
		case s.ch <- struct{}{}:
		default:
		}
	}
}

func (s *redisSub) Changes() <-chan struct{} {
	return s.ch
}

func (s *redisSub) Close() error {
	return s.ps.Close()
}
