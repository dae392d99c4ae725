package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/shopsphere/shopsphere-backend/internal/auth"
	"github.com/shopsphere/shopsphere-backend/internal/config"
	"github.com/shopsphere/shopsphere-backend/internal/events"
	"github.com/shopsphere/shopsphere-backend/internal/handlers"
	"github.com/shopsphere/shopsphere-backend/internal/logging"
	"github.com/shopsphere/shopsphere-backend/internal/repository"
	"github.com/shopsphere/shopsphere-backend/internal/server"
	"github.com/shopsphere/shopsphere-backend/internal/service"
)

func main() {
	cfg := config.Load()

	logging.Init("shopsphere-backend", cfg.Logging.FilePath, cfg.Logging.Level)
	logger := logging.Base()

	ctx := context.Background()

	db, err := repository.Open(cfg.Database)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := repository.RunMigrations(db); err != nil {
		logger.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}
	logger.Info("database ready", "host", cfg.Database.Host, "name", cfg.Database.Name)

	verifier, provider, err := auth.New(ctx, cfg.Auth)
	if err != nil {
		logger.Error("failed to initialize auth", "mode", cfg.Auth.Mode, "error", err)
		os.Exit(1)
	}

	var cache repository.CartCache = repository.NoopCartCache{}
	if cfg.Features.EnableCartCache {
		client, err := repository.NewRedisClient(ctx, cfg.Redis)
		if err != nil {
			logger.Error("failed to connect to redis", "error", err)
			os.Exit(1)
		}
		defer client.Close()
		cache = repository.NewRedisCartCache(client, cfg.Redis.TTL)
	}

	var publisher events.OrderEventPublisher = events.NoopPublisher{}
	if cfg.Features.EnableOrderEvents {
		kafkaPublisher := events.NewKafkaPublisher(cfg.Kafka)
		defer kafkaPublisher.Close()
		publisher = kafkaPublisher
	}

	userRepo := repository.NewPostgresUserRepository(db)
	catalogRepo := repository.NewPostgresCatalogRepository(db)
	orderRepo := repository.NewPostgresOrderRepository(db)

	catalogService := service.NewCatalogService(catalogRepo)
	taxCalculator := service.NewTaxCalculator()
	invoiceService := service.NewInvoiceService(catalogService, taxCalculator)
	cartService := service.NewCartService(userRepo, catalogService, cache, cfg.Features)
	orderService := service.NewOrderService(orderRepo, userRepo, invoiceService, cache, publisher, cfg.Features)
	userService := service.NewUserService(userRepo, provider)

	h := handlers.New(userService, catalogService, cartService, invoiceService, orderService)

	srv := server.NewServer(cfg, h, verifier, userRepo, db)

	go func() {
		if err := srv.Run(); err != nil {
			logger.Error("server failed", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
	}

	logger.Info("server exited")
}
