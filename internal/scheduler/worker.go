package scheduler

import (
	"context"
	"fmt"

	"loolook_backend/internal/geocode"
	"loolook_backend/internal/toilets/repository"
	"loolook_backend/platform/config"
	"loolook_backend/platform/logger"

	"github.com/hibiken/asynq"
	"golang.org/x/time/rate"
)

type Worker struct {
	server   *asynq.Server
	mux      *asynq.ServeMux
	repo     repository.Repository
	resolver *geocode.Resolver
	limiter  *rate.Limiter
	log      *logger.Logger
}

func NewWorker(cfg config.SchedulerConfig, repo repository.Repository, resolver *geocode.Resolver, delay rate.Limit, log *logger.Logger) (*Worker, error) {
	redisURL := cfg.GetRedisURL()
	if redisURL == "" {
		return nil, fmt.Errorf("redis url not configured")
	}

	opt, err := redisClientOpt(redisURL)
	if err != nil {
		return nil, err
	}

	queue := cfg.GetAsynqQueueName()
	if queue == "" {
		queue = "default"
	}

	concurrency := cfg.GetAsynqConcurrency()
	if concurrency < 1 {
		concurrency = 1
	}

	server := asynq.NewServer(opt, asynq.Config{
		Concurrency: concurrency,
		Queues: map[string]int{
			queue: 1,
		},
	})

	mux := asynq.NewServeMux()
	w := &Worker{
		server:   server,
		mux:      mux,
		repo:     repo,
		resolver: resolver,
		limiter:  rate.NewLimiter(delay, 1),
		log:      log,
	}

	mux.HandleFunc(TaskGeocodeBackfill, w.handleGeocodeBackfill)

	return w, nil
}

// handleGeocodeBackfill geocodes one batch of rows without coordinates.
// Rows the resolver cannot place are left untouched for a later pass.
// Provider calls are paced by the limiter so a batch never trips the
// provider rate limits.
func (w *Worker) handleGeocodeBackfill(ctx context.Context, task *asynq.Task) error {
	payload, err := ParseGeocodeBackfillPayload(task)
	if err != nil {
		return err
	}

	batch := payload.BatchSize
	if batch < 1 {
		batch = 100
	}

	targets, err := w.repo.ListMissingCoordinates(ctx, batch)
	if err != nil {
		return err
	}
	if len(targets) == 0 {
		return nil
	}

	resolved, failed := 0, 0
	for _, t := range targets {
		if err := w.limiter.Wait(ctx); err != nil {
			return err
		}

		result, err := w.resolver.Resolve(ctx, t.Address)
		if err != nil {
			return err
		}
		if result == nil {
			failed++
			continue
		}

		if err := w.repo.UpdateCoordinates(ctx, t.ID, result.Point); err != nil {
			w.log.DatabaseError("backfill update", err)
			failed++
			continue
		}
		resolved++
	}

	remaining, err := w.repo.CountMissingCoordinates(ctx)
	if err != nil {
		remaining = -1
	}

	w.log.Info("geocode backfill pass finished",
		"batch", len(targets),
		"resolved", resolved,
		"failed", failed,
		"remaining", remaining,
	)
	return nil
}

func (w *Worker) Run(ctx context.Context) {
	if w == nil || w.server == nil {
		return
	}

	go func() {
		<-ctx.Done()
		w.server.Shutdown()
	}()

	if err := w.server.Run(w.mux); err != nil {
		w.log.Error("scheduler worker stopped", "error", err)
	}
}
