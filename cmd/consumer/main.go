package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/segmentio/kafka-go"
	log "github.com/sirupsen/logrus"

	"example.com/reactivities/internal/config"
	"example.com/reactivities/internal/consumer"
	"example.com/reactivities/internal/observability"
	"example.com/reactivities/internal/persistence/cache"
	"example.com/reactivities/internal/persistence/memory"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logger, err := observability.NewLogger(os.Stdout, cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		log.Fatalf("invalid LOG_LEVEL: %v", err)
	}
	if len(cfg.KafkaBrokers) == 0 || cfg.RedisURL == "" {
		logger.Fatal("cache invalidator requires KAFKA_BROKERS and REDIS_URL")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	redisOpts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		logger.Fatalf("invalid REDIS_URL: %v", err)
	}
	client := redis.NewClient(redisOpts)
	defer client.Close()

	// Only Evict is used; the backing store is never read.
	evictor := cache.NewStore(memory.NewStore(), client, cfg.CacheTTL)
	handler := consumer.NewCacheInvalidator(evictor)

	metricsSrv := &http.Server{Addr: cfg.MetricsAddress, Handler: promhttp.Handler()}
	go func() {
		logger.Infof("consumer metrics listening on %s", cfg.MetricsAddress)
		if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Errorf("metrics server error: %v", err)
		}
	}()

	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:         cfg.KafkaBrokers,
		GroupID:         cfg.ConsumerGroupID,
		Topic:           cfg.OutboxTopic,
		MinBytes:        1e3,
		MaxBytes:        10e6,
		CommitInterval:  time.Second,
		RetentionTime:   24 * time.Hour,
		ReadLagInterval: -1,
	})
	defer reader.Close()

	logger.WithFields(log.Fields{"topic": cfg.OutboxTopic, "group": cfg.ConsumerGroupID}).Info("consumer started")
	proc := consumer.NewProcessor(reader, handler, consumer.WithLogger(logger))
	if err := proc.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Errorf("consumer stopped with error: %v", err)
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := metricsSrv.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("metrics server shutdown error: %v", err)
	}
}
