package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/YelzhanWeb/fooddelivery/internal/adapter/logger"
	"github.com/YelzhanWeb/fooddelivery/internal/adapter/postgres"
	"github.com/YelzhanWeb/fooddelivery/internal/adapter/rabbitmq"
	"github.com/YelzhanWeb/fooddelivery/internal/adapter/redis"
	"github.com/YelzhanWeb/fooddelivery/internal/app/auth"
	"github.com/YelzhanWeb/fooddelivery/internal/app/catalog"
	"github.com/YelzhanWeb/fooddelivery/internal/app/order"
	"github.com/YelzhanWeb/fooddelivery/internal/config"

	amqpAdapter "github.com/YelzhanWeb/fooddelivery/internal/adapter/amqp"
	httpAdapter "github.com/YelzhanWeb/fooddelivery/internal/adapter/http"
)

func main() {
	// Parse command-line flags
	mode := flag.String("mode", "api", "Service mode: api, order-subscriber, migrate")
	configPath := flag.String("config", "config.yaml", "Path to the YAML config file")
	port := flag.Int("port", 0, "HTTP port (overrides config)")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if *port != 0 {
		cfg.Server.Port = *port
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize logger
	lgr := logger.New(*mode, cfg.Log.Level)

	switch *mode {
	case "api":
		runAPI(ctx, cfg, lgr)

	case "order-subscriber":
		runOrderSubscriber(ctx, cfg, lgr)

	case "migrate":
		db := connectDB(ctx, cfg, lgr)
		defer db.Close()
		if err := postgres.Migrate(ctx, db); err != nil {
			log.Fatalf("Failed to apply schema: %v", err)
		}
		lgr.Info("schema_applied", "Database schema applied", "startup", nil)

	default:
		log.Fatalf("Invalid mode: %s", *mode)
	}
}

func connectDB(ctx context.Context, cfg *config.Config, lgr logger.Logger) postgres.DB {
	db, err := postgres.Connect(ctx, cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to PostgreSQL: %v", err)
	}

	lgr.Info("db_connected", "Connected to PostgreSQL database", "startup", map[string]interface{}{
		"host": cfg.Database.Host,
		"db":   cfg.Database.Database,
	})
	return db
}

func runAPI(ctx context.Context, cfg *config.Config, lgr logger.Logger) {
	// Connect to PostgreSQL
	db := connectDB(ctx, cfg, lgr)
	defer db.Close()

	if err := postgres.Migrate(ctx, db); err != nil {
		log.Fatalf("Failed to apply schema: %v", err)
	}

	// Connect to Redis; the cache turns itself off when unreachable
	redisClient, err := redis.NewClient(cfg.Redis)
	if err != nil {
		log.Fatalf("Failed to configure Redis: %v", err)
	}
	defer redisClient.Close()
	cache := redis.NewCache(ctx, redisClient, lgr)

	// Connect to RabbitMQ; events are dropped when the broker stays down
	mqConn, err := rabbitmq.Connect(ctx, cfg.RabbitMQ, lgr)
	if err != nil {
		lgr.Error("rabbitmq_unavailable", "RabbitMQ unreachable, order events disabled", "startup", nil, err)
		mqConn = nil
	} else {
		defer mqConn.Close()
		lgr.Info("rabbitmq_connected", "Connected to RabbitMQ", "startup", map[string]interface{}{
			"host": cfg.RabbitMQ.Host,
		})
	}
	publisher, err := rabbitmq.NewPublisher(mqConn, cfg.RabbitMQ, lgr)
	if err != nil {
		log.Fatalf("Failed to set up RabbitMQ publisher: %v", err)
	}

	// Initialize repositories
	orderRepo := postgres.NewOrderRepository(db)
	restaurantRepo := postgres.NewRestaurantRepository(db)
	userRepo := postgres.NewUserRepository(db)

	// Initialize services
	authService := auth.NewService(userRepo, lgr, cfg.Auth.Secret, cfg.Auth.TokenTTL)
	catalogService := catalog.NewService(restaurantRepo, cache, lgr, cfg.Redis.TTL)
	orderService := order.NewService(orderRepo, restaurantRepo, cache, publisher, lgr)

	if cfg.Auth.AdminUsername != "" {
		if err := authService.EnsureAdmin(ctx, cfg.Auth.AdminUsername, cfg.Auth.AdminPassword, cfg.Auth.AdminPhone); err != nil {
			log.Fatalf("Failed to create admin account: %v", err)
		}
	}

	handler := httpAdapter.NewRouter(httpAdapter.Services{
		Orders:  orderService,
		Catalog: catalogService,
		Auth:    authService,
	}, lgr)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	lgr.Info("service_started", fmt.Sprintf("API started on port %d", cfg.Server.Port), "startup", map[string]interface{}{
		"port": cfg.Server.Port,
	})

	// Graceful shutdown
	go func() {
		<-ctx.Done()

		lgr.Info("shutdown_initiated", "Shutting down API", "shutdown", nil)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			lgr.Error("shutdown_error", "Error during shutdown", "shutdown", nil, err)
		}
	}()

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		lgr.Error("server_error", "Server error", "runtime", nil, err)
	}
}

func runOrderSubscriber(ctx context.Context, cfg *config.Config, lgr logger.Logger) {
	// Connect to RabbitMQ
	mqConn, err := rabbitmq.Connect(ctx, cfg.RabbitMQ, lgr)
	if err != nil {
		log.Fatalf("Failed to connect to RabbitMQ: %v", err)
	}
	defer mqConn.Close()

	// Initialize consumer and handler
	consumer := rabbitmq.NewConsumer(mqConn, cfg.RabbitMQ, lgr)
	orderEvents := amqpAdapter.NewOrderEventHandler(lgr)

	lgr.Info("service_started", "Order event subscriber started", "startup", map[string]interface{}{
		"queue": cfg.RabbitMQ.Queue,
	})

	if err := consumer.ConsumeOrderEvents(ctx, orderEvents.HandleOrderEvent); err != nil && ctx.Err() == nil {
		lgr.Error("consumer_error", "Error consuming order events", "runtime", nil, err)
	}

	lgr.Info("shutdown_initiated", "Shutting down order event subscriber", "shutdown", nil)
}
