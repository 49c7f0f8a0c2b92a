package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"loolook_backend/internal/geocode"
	"loolook_backend/internal/scheduler"
	"loolook_backend/internal/toilets"
	"loolook_backend/platform/config"
	"loolook_backend/platform/db"
	"loolook_backend/platform/logger"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log := logger.New(cfg.Env)
	log.Info("starting scheduler", "env", cfg.Env)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var pool *pgxpool.Pool
	if err := withRetry(ctx, log, "database connection", 5, 2*time.Second, func() error {
		p, err := db.NewPool(ctx, cfg)
		if err != nil {
			return err
		}
		pool = p
		return nil
	}); err != nil {
		log.Error("failed to connect to database", "error", err)
		panic("failed to connect to database: " + err.Error())
	}
	defer pool.Close()

	var redisClient *redis.Client
	if opt, err := redis.ParseURL(cfg.RedisURL); err == nil {
		redisClient = redis.NewClient(opt)
		defer redisClient.Close()
	}

	toiletsModule := toilets.NewModule(pool, log)
	geocodeModule := geocode.NewModule(cfg, redisClient, toiletsModule, log)

	worker, err := scheduler.NewWorker(cfg, toiletsModule.Repository(), geocodeModule.Resolver(), rate.Every(cfg.GeocodeDelay), log)
	if err != nil {
		log.Error("failed to initialize scheduler worker", "error", err)
		panic("failed to initialize scheduler worker: " + err.Error())
	}

	client, err := scheduler.NewClient(cfg)
	if err != nil {
		log.Error("failed to initialize scheduler client", "error", err)
		panic("failed to initialize scheduler client: " + err.Error())
	}
	defer func() { _ = client.Close() }()

	go enqueueLoop(ctx, client, cfg, log)

	worker.Run(ctx)
}

// enqueueLoop queues a backfill pass immediately and then on every
// interval tick until shutdown.
func enqueueLoop(ctx context.Context, client *scheduler.Client, cfg *config.Config, log *logger.Logger) {
	payload := scheduler.GeocodeBackfillPayload{BatchSize: cfg.BackfillBatchSize}

	if err := client.EnqueueGeocodeBackfill(ctx, payload); err != nil {
		log.Error("failed to enqueue geocode backfill", "error", err)
	}

	ticker := time.NewTicker(cfg.BackfillInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := client.EnqueueGeocodeBackfill(ctx, payload); err != nil {
				log.Error("failed to enqueue geocode backfill", "error", err)
			}
		}
	}
}

func withRetry(ctx context.Context, log *logger.Logger, name string, attempts int, baseDelay time.Duration, fn func() error) error {
	if attempts < 1 {
		return errors.New(name + ": invalid retry attempts")
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := fn(); err == nil {
			return nil
		} else {
			lastErr = err
			log.Warn("retryable operation failed", "operation", name, "attempt", attempt, "error", err)
		}

		if attempt < attempts {
			delay := time.Duration(attempt*attempt) * baseDelay
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}
	}

	return errors.New(name + ": " + lastErr.Error())
}
