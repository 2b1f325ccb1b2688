package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"

	"github.com/hongminglow/levelup-be/internal/auth"
	"github.com/hongminglow/levelup-be/internal/bootstrap"
	"github.com/hongminglow/levelup-be/internal/config"
	"github.com/hongminglow/levelup-be/internal/server"
)

func main() {
	loadLocalEnv()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	ctx := context.Background()
	broker, err := bootstrap.OpenBroker(ctx, cfg)
	if err != nil {
		log.Fatalf("init change feed: %v", err)
	}
	defer broker.Close()

	store, err := bootstrap.OpenStore(ctx, cfg, broker)
	if err != nil {
		log.Fatalf("init database: %v", err)
	}
	defer store.Close()

	srv := server.New(cfg, server.Deps{
		Store:    store,
		Broker:   broker,
		Identity: auth.NewAssertionVerifier(cfg.IdentitySecret, cfg.IdentityIssuer),
		Notifier: bootstrap.Notifier(cfg),
	})

	go func() {
		log.Printf("LevelUp backend listening on %s", cfg.HTTPAddress())
		if err := srv.Start(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("http server error: %v", err)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctxShutdown); err != nil {
		log.Printf("graceful shutdown error: %v", err)
	}
}

func loadLocalEnv() {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found; relying on existing environment")
	}
}
