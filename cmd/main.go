package main

import (
	"context"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sethvargo/go-retry"

	"github.com/arnesssr/nextpms-orders/internal/application"
	"github.com/arnesssr/nextpms-orders/internal/cache"
	"github.com/arnesssr/nextpms-orders/internal/config"
	"github.com/arnesssr/nextpms-orders/internal/kafka"
	"github.com/arnesssr/nextpms-orders/internal/logger"
	"github.com/arnesssr/nextpms-orders/internal/migrate"
	"github.com/arnesssr/nextpms-orders/internal/presentation"
	"github.com/arnesssr/nextpms-orders/internal/repository"
)

func main() {
	logger.Init()
	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Warn("config load failed", "err", err)
		os.Exit(1)
	}

	ctx := context.Background()

	// DB pool; the database may come up after us, so ping under backoff
	var pool *pgxpool.Pool
	backoff := retry.WithMaxRetries(8, retry.NewFibonacci(500*time.Millisecond))
	err = retry.Do(ctx, backoff, func(ctx context.Context) error {
		p, err := pgxpool.New(ctx, cfg.DB_STRING)
		if err != nil {
			return err
		}
		if err := p.Ping(ctx); err != nil {
			p.Close()
			return retry.RetryableError(err)
		}
		pool = p
		return nil
	})
	if err != nil {
		logger.Warn("db connect failed", "err", err)
		os.Exit(1)
	}
	defer pool.Close()
	logger.Info("db connected")

	if err := migrate.Up(cfg.DB_STRING); err != nil {
		logger.Warn("migrations failed", "err", err)
		os.Exit(1)
	}

	// Wiring
	orderRepo := repository.NewOrderRepository(pool)
	returnRepo := repository.NewReturnRepository(pool)

	var events application.OrderEventPublisher
	if cfg.KAFKA_BROKERS != "" {
		prod := kafka.NewProducer(cfg.KAFKA_BROKERS, cfg.KAFKA_EVENTS_TOPIC)
		defer prod.Close()
		events = prod
	}

	ordersSvc := application.NewOrdersService(orderRepo, events)
	returnsSvc := application.NewReturnsService(returnRepo, orderRepo, cfg.RETURN_POLICY_DAYS)

	var metricsCache cache.Cache
	if cfg.REDIS_ADDR != "" {
		metricsCache = cache.NewRedisCache(cfg.REDIS_ADDR, "pms-orders")
	}
	metricsSvc := application.NewMetricsService(orderRepo, returnRepo, metricsCache)

	// Warm the in-memory order cache from the newest rows
	if err := ordersSvc.RestoreCache(ctx, 1000); err != nil {
		logger.Warn("restore cache failed", "err", err)
	}

	// Intake consumer feeds externally produced orders into the service
	if cfg.KAFKA_BROKERS != "" {
		_, _ = kafka.StartConsumer(ctx, ordersSvc, kafka.ConsumerConfig{
			Brokers: cfg.KAFKA_BROKERS,
			Topic:   cfg.KAFKA_INTAKE_TOPIC,
			GroupID: cfg.KAFKA_GROUP_ID,
		})
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	presentation.NewOrdersHandler(ordersSvc, metricsSvc).Register(r)
	presentation.NewReturnsHandler(returnsSvc, metricsSvc).Register(r)
	presentation.NewMetricsHandler(metricsSvc).Register(r)

	addr := ":" + cfg.HTTP_PORT
	logger.Info("starting http", "addr", addr)
	if err := http.ListenAndServe(addr, r); err != nil {
		logger.Warn("http server crashed", "err", err)
		os.Exit(1)
	}
}
