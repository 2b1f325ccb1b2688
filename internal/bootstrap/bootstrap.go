// Package bootstrap opens the configured backing services for both binaries.
package bootstrap

import (
	"context"
	"log"

	"github.com/hongminglow/levelup-be/internal/config"
	"github.com/hongminglow/levelup-be/internal/feed"
	"github.com/hongminglow/levelup-be/internal/notify"
	"github.com/hongminglow/levelup-be/internal/storage"
	"github.com/hongminglow/levelup-be/internal/storage/memory"
	"github.com/hongminglow/levelup-be/internal/storage/postgres"
)

// OpenBroker connects to Redis when REDIS_URL is set and otherwise falls
// back to an in-process broker.
func OpenBroker(ctx context.Context, cfg config.Config) (feed.Broker, error) {
	if cfg.RedisURL == "" {
		log.Println("REDIS_URL not set; change feed is in-process only")
		return feed.NewMemoryBroker(), nil
	}
	return feed.NewRedisBroker(ctx, cfg.RedisURL, cfg.FeedChannelPrefix)
}

// OpenStore opens the configured store and makes it publish to broker.
func OpenStore(ctx context.Context, cfg config.Config, broker feed.Broker) (storage.Store, error) {
	var store storage.Store
	switch cfg.StoreDriver {
	case config.DriverMemory:
		log.Println("using in-memory store; data is lost on exit")
		store = memory.New()
	default:
		pg, err := postgres.NewStore(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		store = pg
	}
	return storage.WithFeed(store, broker), nil
}

// Notifier returns the mailer client, or a no-op when NOTIFY_URL is unset.
func Notifier(cfg config.Config) notify.Notifier {
	if cfg.NotifyURL == "" {
		log.Println("NOTIFY_URL not set; payment emails are disabled")
		return notify.Nop{}
	}
	return notify.NewClient(cfg.NotifyURL, cfg.NotifyTimeout)
}
