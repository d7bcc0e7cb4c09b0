package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/AlphaCodeSWE/NearYou/internal/api"
	"github.com/AlphaCodeSWE/NearYou/internal/application/factories/infrastructure"
	"github.com/AlphaCodeSWE/NearYou/internal/cache"
	"github.com/AlphaCodeSWE/NearYou/internal/config"
	"github.com/AlphaCodeSWE/NearYou/internal/infrastructure/kafka"
	"github.com/AlphaCodeSWE/NearYou/internal/infrastructure/postgres"
	"github.com/AlphaCodeSWE/NearYou/internal/metrics"
	"github.com/AlphaCodeSWE/NearYou/internal/pipeline"
)

func main() {
	// Initialize structured JSON logger
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.New()
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// Metrics bus shared by all workers; sinks synchronize internally.
	bus := metrics.NewBus(logger)
	counters := metrics.NewCounters()
	latency := metrics.NewLatency()
	bus.Register(counters)
	bus.Register(latency)
	bus.Register(metrics.NewPrometheus())

	// Optional downstream topic for the dashboard relay.
	var publisher pipeline.Publisher
	if cfg.Kafka.NotifyTopic != "" {
		producer := kafka.NewProducer(kafka.Config{
			Brokers: cfg.Kafka.Brokers,
			Topic:   cfg.Kafka.NotifyTopic,
		})
		defer producer.Close()
		publisher = producer
	}

	// One factory, one cache and one pipeline per partition worker.
	workers := cfg.Pipeline.Workers
	if workers <= 0 {
		workers = 1
	}

	pipelines := make([]*pipeline.Pipeline, 0, workers)
	caches := make([]cache.Store, 0, workers)
	factories := make([]*infrastructure.Factory, 0, workers)
	defer func() {
		for _, f := range factories {
			f.Close()
		}
	}()

	for i := 0; i < workers; i++ {
		factory := infrastructure.NewFactory(cfg, logger)
		factories = append(factories, factory)

		spatialPool, err := factory.Spatial(ctx)
		if err != nil {
			logger.Error("failed to connect to spatial store", "error", err)
			os.Exit(1)
		}
		analyticsPool, err := factory.Analytics(ctx)
		if err != nil {
			logger.Error("failed to connect to analytics store", "error", err)
			os.Exit(1)
		}

		local := cache.NewMemory(cfg.Pipeline.CacheCapacity, cfg.Pipeline.CacheTTL, func() {
			bus.Record(metrics.CacheEviction, nil)
		})

		var store cache.Store = local
		if cfg.Redis.Addr != "" {
			redisCli, err := factory.Redis(ctx)
			if err != nil {
				// The shared layer is an optimization; workers run
				// memory-only when Redis is unreachable.
				logger.Warn("redis unavailable, using memory cache only", "error", err)
			} else {
				store = cache.NewLayered(local, cache.NewRedis(redisCli, cfg.Pipeline.CacheTTL, logger))
			}
		}
		caches = append(caches, store)

		pipelines = append(pipelines, pipeline.New(
			postgres.NewShopRepository(spatialPool),
			postgres.NewProfileRepository(analyticsPool),
			factory.Generator(),
			store,
			postgres.NewEventRepository(analyticsPool),
			postgres.NewVisitRepository(analyticsPool),
			bus,
			logger,
			pipeline.Options{
				MaxPOIDistance: cfg.Pipeline.MaxPOIDistance,
				QueryTimeout:   cfg.Pipeline.QueryTimeout,
				Publisher:      publisher,
			},
		))
	}

	// Metrics Server
	go func() {
		router := api.NewRouter(api.NewStats(counters, latency, caches))
		logger.Info("metrics listening", "addr", cfg.Metrics.Addr)
		if err := http.ListenAndServe(cfg.Metrics.Addr, router); err != nil {
			logger.Error("metrics server stopped", "error", err)
		}
	}()

	consumer := kafka.NewConsumer(kafka.ConsumerConfig{
		Brokers:     cfg.Kafka.Brokers,
		Topic:       cfg.Kafka.Topic,
		GroupID:     cfg.Kafka.GroupID,
		StartOffset: cfg.Kafka.StartOffset,
	})
	defer consumer.Close()

	logger.Info("NearYou consumer started",
		"app", cfg.App.Name,
		"topic", cfg.Kafka.Topic,
		"group_id", cfg.Kafka.GroupID,
		"workers", workers)

	runtime := pipeline.NewRuntime(consumer, pipelines, cfg.Pipeline.QueueSize, bus, logger)
	if err := runtime.Run(ctx); err != nil {
		logger.Error("runtime stopped", "error", err)
		os.Exit(1)
	}

	logger.Info("NearYou consumer stopped")
}
