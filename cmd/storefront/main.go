package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"github.com/Skotchmaster/storefront/internal/cart"
	"github.com/Skotchmaster/storefront/internal/catalog"
	"github.com/Skotchmaster/storefront/internal/checkout"
	"github.com/Skotchmaster/storefront/internal/config"
	"github.com/Skotchmaster/storefront/internal/events"
	"github.com/Skotchmaster/storefront/internal/kvstore"
	"github.com/Skotchmaster/storefront/internal/logging"
	"github.com/Skotchmaster/storefront/internal/session"
	"github.com/redis/go-redis/v9"
)

// main assembles the stores once and walks through the demo flows: browse,
// fill the cart, sign in, check out. A UI replaces the walkthrough by calling
// the same store commands.
func main() {
	cfg := config.Load()
	logger := logging.New(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	ctx = logging.IntoContext(ctx, logger)

	db, err := kvstore.OpenDB(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("open database: %v", err)
	}

	var kv kvstore.Adapter
	switch cfg.StoreBackend {
	case "redis":
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		kv = kvstore.NewRedisKV(client)
	case "db":
		gkv, err := kvstore.NewGormKV(db)
		if err != nil {
			log.Fatalf("init kv table: %v", err)
		}
		kv = gkv
	default:
		kv = kvstore.NewMemory()
	}

	auth := session.NewStubAuthenticator()
	if err := auth.Seed("Demo User", "user@example.com", "password"); err != nil {
		log.Fatalf("seed demo account: %v", err)
	}

	cartStore := cart.NewStore(ctx, kv, logger)
	sessionStore := session.NewStore(ctx, kv, auth, cfg.SessionSecret, logger)

	if len(cfg.KafkaBrokers) > 0 {
		producer := events.NewProducer(cfg.KafkaBrokers, logger)
		defer producer.Close()

		cartStore.Subscribe(func(st cart.State) {
			producer.PublishAsync(events.TopicCart, "cart", events.Event{
				Type: "cart_updated", At: timeNow(), Payload: st,
			})
		})
		sessionStore.Subscribe(func(sess session.Session) {
			producer.PublishAsync(events.TopicUser, "session", events.Event{
				Type: "session_changed", At: timeNow(), Payload: sess,
			})
		})
	}

	products := catalog.Default()
	orders, err := checkout.NewService(db, cartStore, checkout.StubCharger{}, logger)
	if err != nil {
		log.Fatalf("init checkout: %v", err)
	}

	runDemo(ctx, logger, products, cartStore, sessionStore, orders)
}
