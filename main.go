package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/streadway/amqp"

	"github.com/BookCnk/sit-football-club/internal/config"
	"github.com/BookCnk/sit-football-club/internal/repositories"
	"github.com/BookCnk/sit-football-club/internal/server"
	"github.com/BookCnk/sit-football-club/internal/services"
	"github.com/BookCnk/sit-football-club/internal/storage"
	"github.com/BookCnk/sit-football-club/pkg/rabbitmq"
)

func main() {
	// --- Configuration ---
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	// --- Initialize RabbitMQ Client ---
	// Order events are optional; without a broker URL they are not published.
	var mqClient *rabbitmq.Client
	if cfg.RabbitMQURL != "" {
		mqClient, err = rabbitmq.NewClient(rabbitmq.Config{URL: cfg.RabbitMQURL})
		if err != nil {
			log.Fatalf("Failed to initialize RabbitMQ client: %v", err)
		}
		defer mqClient.Close() // Ensure the connection is closed on exit
	} else {
		log.Println("RABBITMQ_URL is not set; order events are disabled")
	}

	var publisher services.EventPublisher
	if mqClient != nil {
		publisher = mqClient
	}

	app, cleanup, err := NewApp(context.Background(), cfg, publisher)
	if err != nil {
		log.Fatalf("Failed to create app: %v", err)
	}
	defer cleanup()

	// --- Start RabbitMQ Consumer ---
	if mqClient != nil {
		log.Println("Starting RabbitMQ consumer for order events...")
		if err := mqClient.ConsumeOrderEvents(handleOrderEvent); err != nil {
			log.Printf("Failed to start RabbitMQ consumer: %v", err)
		}
	}

	// --- Start HTTP Server ---
	log.Printf("Starting server on port %s", cfg.AppPort)

	// Graceful shutdown handling
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := app.Listen(cfg.AppPort); err != nil {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shut down the server
	<-quit
	log.Println("Shutting down server...")

	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		log.Printf("Error during Fiber shutdown: %v", err)
	}
	log.Println("Server gracefully stopped")
}

// NewApp connects the database and object store described by cfg and
// returns the HTTP app. cleanup closes the database.
func NewApp(ctx context.Context, cfg *config.Config, publisher services.EventPublisher) (*fiber.App, func(), error) {
	// --- Initialize Database ---
	db, err := repositories.OpenDatabase(cfg.DatabaseDriver, cfg.DatabaseDSN)
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	}
	if err := repositories.Migrate(db); err != nil {
		cleanup()
		return nil, nil, err
	}

	// --- Initialize Repositories ---
	userRepo := repositories.NewGORMUserRepository(db)
	itemRepo := repositories.NewGORMShopItemRepository(db)
	orderRepo := repositories.NewGORMShopOrderRepository(db)

	// --- Initialize Services ---
	authService := services.NewAuthService(userRepo, cfg.JWTSecret)
	shopItemService := services.NewShopItemService(itemRepo)

	if cfg.AdminEmail != "" {
		if _, _, err := authService.EnsureAdmin(ctx, cfg.AdminEmail, cfg.AdminPassword, cfg.AdminName); err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("failed to set up admin account: %w", err)
		}
	}
	if cfg.SeedDemoItems {
		if _, err := shopItemService.SeedDemoItems(ctx); err != nil {
			log.Printf("Error seeding demo items: %v", err)
		}
	}

	// --- Initialize Object Storage ---
	var (
		store   storage.ObjectStore
		uploads *storage.MemoryStore
	)
	switch cfg.StorageDriver {
	case "memory":
		uploads = storage.NewMemoryStore(cfg.PublicBaseURL)
		store = uploads
		log.Println("Payment slips are kept in memory and served under /uploads")
	default:
		store = storage.NewSupabaseStore(storage.SupabaseConfig{
			URL:            cfg.SupabaseURL,
			ServiceRoleKey: cfg.SupabaseServiceRoleKey,
			Timeout:        cfg.StorageTimeout,
		})
	}
	orderService := services.NewOrderService(orderRepo, itemRepo, store, cfg.SlipBucket, publisher)

	app := server.NewApp(server.Deps{
		Auth:          authService,
		ShopItems:     shopItemService,
		Orders:        orderService,
		Uploads:       uploads,
		CookieSecure:  cfg.CookieSecure,
		EventsEnabled: publisher != nil,
	})
	return app, cleanup, nil
}

// handleOrderEvent logs each consumed order event as an admin notification.
// Undecodable bodies fail the delivery, which the consumer requeues once.
func handleOrderEvent(msg amqp.Delivery) error {
	event, err := services.DecodeOrderEvent(msg.Body)
	if err != nil {
		return err
	}
	log.Printf("[%s] %s", msg.RoutingKey, event.Describe())
	return nil
}
