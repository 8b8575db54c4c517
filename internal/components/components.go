package components

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"fieldcheck/internal/api"
	"fieldcheck/internal/api/handlers/http/system"
	"fieldcheck/internal/config"
	"fieldcheck/internal/domain"
	"fieldcheck/internal/kafka"
	"fieldcheck/internal/metrics"
	"fieldcheck/internal/mqtt"
	"fieldcheck/internal/redis"
	"fieldcheck/internal/service"
	"fieldcheck/internal/storage/memory"
	"fieldcheck/internal/storage/postgres"
	"fieldcheck/internal/storage/sqlite"
	"fieldcheck/internal/workers"
)

type Components struct {
	logger *slog.Logger

	HttpServer    *api.Server
	Engine        *service.Engine
	PositionPump  *workers.PositionPump
	Sweeper       *workers.SessionSweeper
	WebhookSender *service.WebhookSender
	MQTT          *mqtt.Source

	Postgres *postgres.Postgres
	Redis    *redis.Redis
	Kafka    *kafka.Publisher
	Hints    *sqlite.HintCache
}

func InitComponents(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Components, error) {
	c := &Components{logger: logger}
	checks := make(map[string]system.Check)

	var (
		directory redis.DirectoryBackend
		events    service.EventStore
	)

	switch cfg.Storage.Driver {
	case config.StorageDriverPostgres:
		logger.Info("Initializing Postgres")
		pg, err := postgres.NewPostgres(ctx, cfg.Postgres, logger)
		if err != nil {
			logger.Error("Failed to init postgres", slog.Any("error", err))
			return nil, fmt.Errorf("failed to init postgres: %w", err)
		}
		c.Postgres = pg
		checks["postgres"] = pg.Pool.Ping

		if cfg.Storage.DirectorySeed != "" {
			records, err := memory.LoadSeed(cfg.Storage.DirectorySeed)
			if err != nil {
				c.ShutdownAll()
				return nil, err
			}
			for _, rec := range records {
				if err := pg.Directory.Upsert(ctx, rec); err != nil {
					c.ShutdownAll()
					return nil, fmt.Errorf("seed directory: %w", err)
				}
			}
			logger.Info("Directory seeded", slog.Int("records", len(records)))
		}

		directory, events = pg.Directory, pg.Events

	case config.StorageDriverMemory:
		logger.Warn("Using in-memory storage, events are lost on restart")
		var records []domain.DirectoryRecord
		if cfg.Storage.DirectorySeed != "" {
			seed, err := memory.LoadSeed(cfg.Storage.DirectorySeed)
			if err != nil {
				return nil, err
			}
			records = seed
		}
		directory, events = memory.NewDirectory(records...), memory.NewEventStore(time.Now)
	}

	var notifiers []service.EventNotifier
	var queue *redis.EventQueue

	if !cfg.Redis.Disabled {
		logger.Info("Initializing Redis")
		rdb, err := redis.NewRedis(ctx, cfg.Redis, logger)
		if err != nil {
			c.ShutdownAll()
			return nil, fmt.Errorf("failed to init redis: %w", err)
		}
		c.Redis = rdb
		checks["redis"] = func(ctx context.Context) error { return rdb.Client.Ping(ctx).Err() }

		if cfg.Redis.TargetCacheTTL > 0 {
			directory = redis.NewCachedDirectory(rdb.Client, directory, cfg.Redis.TargetCacheTTL, logger)
		}
		if !cfg.Webhook.Disabled {
			queue = redis.NewEventQueue(rdb.Client, cfg.Webhook.QueueKey)
			notifiers = append(notifiers, queue)
		}
	}

	if !cfg.Kafka.Disabled {
		pub, err := kafka.NewPublisher(cfg.Kafka, logger)
		if err != nil {
			c.ShutdownAll()
			return nil, err
		}
		c.Kafka = pub
		notifiers = append(notifiers, pub)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	collector := metrics.NewCollector(registry)

	opts := []service.Option{
		service.WithNotifiers(notifiers...),
		service.WithMetrics(collector),
	}

	if !cfg.Hint.Disabled {
		hints, err := sqlite.Open(cfg.Hint.Path)
		if err != nil {
			c.ShutdownAll()
			return nil, err
		}
		c.Hints = hints
		if err := hints.InitSchema(ctx); err != nil {
			c.ShutdownAll()
			return nil, err
		}
		opts = append(opts, service.WithHintCache(hints))
	}

	c.Engine = service.NewEngine(logger, service.EngineConfig{
		ScanMaxMeters:     cfg.Engine.ScanMaxDistanceMeters,
		RegisterMaxMeters: cfg.Engine.RegisterMaxDistanceMeters,
		MinInterval:       cfg.Engine.MinEventInterval,
		DebounceAtScan:    cfg.Engine.DebounceAtScan,
		PositionMaxAge:    cfg.Engine.PositionMaxAge,
		SessionIdleTTL:    cfg.Engine.SessionIdleTTL,
		NotifyTimeout:     cfg.Engine.NotifyTimeout,
	}, directory, events, opts...)

	c.Sweeper = workers.NewSessionSweeper(c.Engine, logger, cfg.Engine.SweepInterval)

	if !cfg.MQTT.Disabled {
		c.PositionPump = workers.NewPositionPump(c.Engine, logger, cfg.MQTT.Workers, cfg.MQTT.QueueSize)
		c.MQTT = mqtt.NewSource(cfg.MQTT, logger)
	}

	if queue != nil {
		c.WebhookSender = service.NewWebhookSender(logger, cfg.Webhook, queue)
	}

	c.HttpServer = api.NewServer(ctx, cfg, logger, c.Engine, checks, metrics.Handler(registry))
	logger.Info("Initialized server")

	return c, nil
}

func SetupLogger(env string) *slog.Logger {
	switch env {
	case "local":
		return slog.New(
			slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
				Level: slog.LevelDebug,
			}),
		)
	case "dev":
		return slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
				Level: slog.LevelDebug,
			}),
		)
	default:
		return slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
				Level: slog.LevelInfo,
			}),
		)
	}
}

func (c *Components) ShutdownAll() {
	start := time.Now()
	c.logger.Info("Component shutdown started")

	if c.MQTT != nil {
		c.MQTT.Close()
	}
	if c.PositionPump != nil {
		if n := c.PositionPump.Dropped(); n > 0 {
			c.logger.Warn("Position updates dropped on full queue", slog.Uint64("count", n))
		}
	}
	if c.Kafka != nil {
		c.Kafka.Close()
	}
	if c.Hints != nil {
		if err := c.Hints.Close(); err != nil {
			c.logger.Error("Hint cache close failed", slog.Any("error", err))
		}
	}
	if c.Redis != nil {
		if err := c.Redis.Close(); err != nil {
			c.logger.Error("Redis close failed", slog.Any("error", err))
		}
	}
	if c.Postgres != nil {
		c.Postgres.Close()
	}

	c.logger.Info("All components stopped",
		slog.Duration("latency", time.Since(start)))
}
