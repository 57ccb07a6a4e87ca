package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/jwalitptl/cds-engine/internal/config"
	"github.com/jwalitptl/cds-engine/internal/repository/postgres"
	"github.com/jwalitptl/cds-engine/pkg/logger"
	"github.com/jwalitptl/cds-engine/pkg/messaging/redis"
	"github.com/jwalitptl/cds-engine/pkg/metrics"
	"github.com/jwalitptl/cds-engine/pkg/worker"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	db, err := postgres.NewDB(cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	l := logger.NewLogger(nil)

	broker, err := redis.NewRedisBroker(redis.Config{
		URL:          cfg.Redis.URL,
		MaxRetries:   cfg.Redis.MaxRetries,
		RetryBackoff: 100 * time.Millisecond,
		PoolSize:     cfg.Redis.PoolSize,
		MinIdleConns: cfg.Redis.MinIdleConns,
	}, &log.Logger)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to Redis")
	}
	defer broker.Close()

	m := metrics.NewMetrics("cds", "worker")
	outboxRepo := postgres.NewOutboxRepository(db)

	processor := worker.NewOutboxProcessor(outboxRepo, broker, worker.OutboxProcessorConfig{
		BatchSize:     cfg.Worker.BatchSize,
		PollInterval:  time.Duration(cfg.Worker.IntervalSeconds) * time.Second,
		RetryAttempts: cfg.Worker.MaxRetries,
		RetryDelay:    time.Second,
		Retention:     time.Duration(cfg.Worker.RetentionDays) * 24 * time.Hour,
	}, l, m)

	ctx, cancel := context.WithCancel(context.Background())
	go processor.Start(ctx)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down worker...")
	cancel()
	log.Info().Msg("worker exited properly")
}
