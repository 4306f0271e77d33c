package main

import (
	"context"
	"log"

	"lepatage-store/internal/core/auth"
	"lepatage-store/internal/core/cache"
	"lepatage-store/internal/core/config"
	"lepatage-store/internal/core/database"
	"lepatage-store/internal/core/events"
	"lepatage-store/internal/core/logger"
	"lepatage-store/internal/core/metrics"
	"lepatage-store/internal/core/server"
	catalogadapter "lepatage-store/internal/features/catalog/adapters"
	catalogservice "lepatage-store/internal/features/catalog/service"
	orderadapter "lepatage-store/internal/features/orders/adapters"
	"lepatage-store/internal/features/orders/domain"
	orderhandler "lepatage-store/internal/features/orders/handler"
	"lepatage-store/internal/features/orders/ports"
	orderservice "lepatage-store/internal/features/orders/service"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
)

// @title L'Epatage Store Order API
// @version 1.0
// @description Order placement, pricing and status management for the L'Epatage storefront.
// @contact.name API Support
// @contact.email support@lepatage.by
// @license.name MIT
// @host localhost:8080
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	cfg, err := config.Load(".")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if err := logger.Init(cfg.Environment, cfg.LogLevel); err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}
	defer logger.Sync()

	l := logger.Get()
	l.Info("Application starting",
		zap.String("environment", cfg.Environment),
		zap.String("log_level", cfg.LogLevel),
	)

	ctx := context.Background()

	db, err := database.Open(ctx, cfg.Database.Path)
	if err != nil {
		l.Fatal("Database initialization failed", zap.Error(err))
	}
	defer db.Close()
	l.Info("Database ready", zap.String("path", cfg.Database.Path))

	// Catalog
	productRepo := catalogadapter.NewSQLiteProductRepository(db)
	snapshots := catalogservice.NewSnapshotReader(productRepo)

	// Order storage, optionally behind the Redis read-through cache
	var orderRepo ports.OrderRepository = orderadapter.NewSQLiteOrderRepository(db)
	if cfg.Cache.RedisURL != "" {
		redisCache, err := cache.NewRedisAdapter(cfg.Cache.RedisURL, logger.ServiceName)
		if err != nil {
			l.Fatal("Failed to configure Redis", zap.Error(err))
		}
		defer redisCache.Close()

		if err := redisCache.Ping(ctx); err != nil {
			l.Warn("Redis unreachable, order cache will fall back to the database", zap.Error(err))
		}
		orderRepo = orderadapter.NewCachedOrderRepository(orderRepo, redisCache, cfg.Cache.OrderTTL())
		l.Info("Order cache enabled", zap.Duration("ttl", cfg.Cache.OrderTTL()))
	}

	// Order events
	var publisher events.Publisher = events.NopPublisher{}
	if brokers := cfg.Events.Brokers(); len(brokers) > 0 {
		kafkaPublisher, err := events.NewKafkaPublisher(brokers, cfg.Events.OrderTopic)
		if err != nil {
			l.Fatal("Failed to connect to Kafka", zap.Error(err))
		}
		publisher = kafkaPublisher
		l.Info("Publishing order events",
			zap.Strings("brokers", brokers),
			zap.String("topic", cfg.Events.OrderTopic),
		)
	}
	defer publisher.Close()

	// Metrics
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	orderMetrics := metrics.NewOrderMetrics(registry)

	// Order Service & Handler
	orderSvc := orderservice.NewOrderService(orderRepo, snapshots, domain.NewNumberGenerator(), publisher, orderMetrics)
	orderHdl := orderhandler.NewOrderHandler(orderSvc)

	srv := server.New(cfg, registry)

	// Register Routes
	admin := srv.App.Group("/admin", auth.NewVerifier(cfg.Auth.AdminJWTSecret).RequireAdmin())
	orderHdl.Register(srv.App, admin)

	if err := srv.Run(); err != nil {
		l.Fatal("Server failed to start", zap.Error(err))
	}
}
