package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/fjod/go_cart/storefront/internal/api"
	"github.com/fjod/go_cart/storefront/internal/cartsync"
	"github.com/fjod/go_cart/storefront/internal/checkout"
	"github.com/fjod/go_cart/storefront/internal/config"
	h "github.com/fjod/go_cart/storefront/internal/http"
	"github.com/fjod/go_cart/storefront/internal/persist"
	"github.com/fjod/go_cart/storefront/internal/store"
	"github.com/redis/go-redis/v9"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	ctx := context.Background()
	storage, closeStorage, err := openStorage(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to open %s storage: %v", cfg.PersistBackend, err)
	}
	defer closeStorage()

	cart := store.New(ctx, storage)
	log.Printf("Cart restored with %d items from %s storage", cart.Len(), cfg.PersistBackend)

	baseURL := cfg.APIBaseURL
	if baseURL == "" {
		baseURL = api.ResolveBaseURL(cfg.APIScheme, cfg.APIHost)
	}
	token := api.NewSessionToken(cfg.InitData)
	client := api.NewClient(baseURL,
		api.WithTokenSource(token),
		api.WithHTTPClient(&http.Client{Timeout: cfg.RequestTimeout}),
	)

	healthCtx, cancel := context.WithTimeout(ctx, cfg.RequestTimeout)
	if _, err := client.Health(healthCtx); err != nil {
		log.Printf("Backend at %s is not reachable yet: %v", client.BaseURL(), err)
	} else {
		log.Printf("Connected to backend at %s", client.BaseURL())
	}
	cancel()

	coordinator := cartsync.NewCoordinator(client, cart,
		cartsync.WithDebounce(cfg.SyncDebounce),
		cartsync.WithRequestTimeout(cfg.RequestTimeout),
	)
	coordinator.Start(ctx)

	checkoutService := checkout.NewService(client, cart, log.Default())
	router := h.NewRouter(
		h.NewCartHandler(cart, cfg.Currency),
		h.NewCheckoutHandler(checkoutService),
		token,
		cfg.RequestTimeout,
	)

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: cfg.RequestTimeout + 5*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Storefront starting on :%s", cfg.HTTPPort)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server error: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("server forced to shutdown: %v", err)
	}
	coordinator.Stop()

	log.Println("server exited")
}

func openStorage(ctx context.Context, cfg *config.Config) (persist.Storage, func(), error) {
	switch cfg.PersistBackend {
	case config.BackendRedis:
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       0,
		})
		if err := redisClient.Ping(ctx).Err(); err != nil {
			redisClient.Close()
			return nil, nil, fmt.Errorf("redis ping failed: %w", err)
		}
		log.Printf("Redis ping succeeded")
		return persist.NewRedisStorage(redisClient), func() { redisClient.Close() }, nil

	case config.BackendMongo:
		mongoDB, err := persist.ConnectMongoDB(ctx, cfg.MongoURI, cfg.MongoDBName)
		if err != nil {
			return nil, nil, err
		}
		storage := persist.NewMongoStorage(mongoDB)
		if err := storage.CreateIndexes(ctx); err != nil {
			mongoDB.Client().Disconnect(ctx)
			return nil, nil, err
		}
		log.Printf("Connected to MongoDB at %s", cfg.MongoURI)
		return storage, func() { mongoDB.Client().Disconnect(context.Background()) }, nil

	case config.BackendSQLite:
		if err := os.MkdirAll(filepath.Dir(cfg.SQLitePath), 0o755); err != nil {
			return nil, nil, err
		}
		storage, err := persist.NewSQLiteStorage(cfg.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		if err := storage.RunMigrations(); err != nil {
			storage.Close()
			return nil, nil, err
		}
		log.Printf("Opened SQLite database at %s", cfg.SQLitePath)
		return storage, func() { storage.Close() }, nil

	default:
		storage, err := persist.NewFileStorage(cfg.CartFileDir)
		if err != nil {
			return nil, nil, err
		}
		return storage, func() {}, nil
	}
}
