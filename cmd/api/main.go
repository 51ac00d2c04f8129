package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"

	"example.com/reactivities/internal/activities"
	"example.com/reactivities/internal/api"
	"example.com/reactivities/internal/auth"
	"example.com/reactivities/internal/config"
	"example.com/reactivities/internal/mediator"
	"example.com/reactivities/internal/observability"
	"example.com/reactivities/internal/outbox"
	"example.com/reactivities/internal/persistence"
	"example.com/reactivities/internal/persistence/cache"
	"example.com/reactivities/internal/persistence/memory"
	"example.com/reactivities/internal/persistence/postgres"
	httptransport "example.com/reactivities/internal/transport/http"
)

const outboxClaimLease = time.Minute

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger, err := observability.NewLogger(os.Stdout, cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		log.Fatalf("invalid LOG_LEVEL: %v", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	var store activities.Store
	var dispatcher *outbox.Dispatcher

	switch cfg.StoreDriver {
	case config.StorePostgres:
		pool, err := pgxpool.New(ctx, cfg.PostgresURL)
		if err != nil {
			logger.Fatalf("failed to connect to postgres: %v", err)
		}
		defer pool.Close()

		if err := postgres.Migrate(ctx, pool); err != nil {
			logger.Fatalf("migrations failed: %v", err)
		}
		store = postgres.NewRepository(pool)

		if cfg.OutboxEnabled() {
			producer := outbox.NewKafkaProducer(cfg.KafkaBrokers, logger)
			defer producer.Close()

			queue := outbox.NewPostgresQueue(pool, outboxClaimLease)
			dispatcher = outbox.NewDispatcher(queue, producer, cfg.OutboxTopic, cfg.OutboxPollInterval, cfg.OutboxBatchSize, logger)
		}
	default:
		store = memory.NewStore()
	}

	if cfg.SeedData {
		n, err := persistence.Seed(ctx, store, time.Now())
		if err != nil {
			logger.Fatalf("seed failed: %v", err)
		}
		if n > 0 {
			logger.WithField("activities", n).Info("seeded sample activities")
		}
	}

	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			logger.Fatalf("invalid REDIS_URL: %v", err)
		}
		client := redis.NewClient(opts)
		defer client.Close()
		store = cache.NewStore(store, client, cfg.CacheTTL)
	}

	m, err := activities.NewMediator(store, []mediator.Middleware{
		mediator.Tracing(otel.Tracer("example.com/reactivities/mediator")),
		mediator.Logging(logger),
		mediator.Metrics(),
	})
	if err != nil {
		logger.Fatalf("mediator: %v", err)
	}

	opts := api.Options{
		Mediator:    m,
		Logger:      logger,
		Production:  cfg.IsProduction(),
		CORSOrigins: cfg.CORSOrigins,
	}
	if cfg.AuthEnabled {
		opts.Auth = auth.NewMiddleware(auth.Config{Secret: cfg.JWTSecret, Issuer: cfg.JWTIssuer}).Wrap
	}

	if dispatcher != nil {
		go dispatcher.Start(ctx)
	}

	server := httptransport.NewServer(httptransport.DefaultServerConfig(cfg.HTTPAddress), api.NewRouter(opts), logger)
	logger.WithFields(log.Fields{
		"store":  cfg.StoreDriver,
		"cache":  cfg.RedisURL != "",
		"outbox": dispatcher != nil,
		"auth":   cfg.AuthEnabled,
	}).Info("reactivities starting")

	if err := server.Run(ctx); err != nil {
		logger.Errorf("server error: %v", err)
		cancel()
	}

	if dispatcher != nil {
		dispatcher.Wait()
	}
	logger.Info("reactivities stopped")
}
