package queue

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/hibiken/asynq"
	"github.com/yukikurage/room-workflow-api/internal/config"
	"github.com/yukikurage/room-workflow-api/pkg/logger"
)

// Worker consumes tasks from Redis and dispatches them through a Mux.
type Worker struct {
	server   *asynq.Server
	mux      *asynq.ServeMux
	handlers *Mux
	running  bool
	mu       sync.Mutex
}

// NewWorker returns nil when Redis is disabled; the sync queue then runs tasks in-process.
func NewWorker(cfg *config.Config, handlers *Mux) *Worker {
	if !cfg.Redis.Enabled {
		return nil
	}

	concurrency := cfg.Queue.Concurrency
	if concurrency <= 0 {
		concurrency = 10
	}

	server := asynq.NewServer(
		redisOpt(&cfg.Redis),
		asynq.Config{
			Concurrency: concurrency,
			Queues: map[string]int{
				cfg.Queue.Name: 1,
			},
			ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
				retried, _ := asynq.GetRetryCount(ctx)
				maxRetry, _ := asynq.GetMaxRetry(ctx)
				logger.Error().Err(err).
					Str("type", task.Type()).
					Int("retry", retried).
					Int("max_retry", maxRetry).
					Msg("task failed")
			}),
		},
	)

	return &Worker{
		server:   server,
		mux:      asynq.NewServeMux(),
		handlers: handlers,
	}
}

// Start begins processing tasks
func (w *Worker) Start() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.running {
		return nil
	}

	for _, taskType := range w.handlers.Types() {
		w.mux.HandleFunc(taskType, w.handle)
	}

	logger.Info().Strs("types", w.handlers.Types()).Msg("starting task worker")
	if err := w.server.Start(w.mux); err != nil {
		return err
	}

	w.running = true
	return nil
}

// Stop gracefully shuts down the worker
func (w *Worker) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.running {
		return
	}

	logger.Info().Msg("shutting down task worker")
	w.server.Shutdown()
	w.running = false
}

func (w *Worker) handle(ctx context.Context, t *asynq.Task) error {
	err := w.handlers.Dispatch(ctx, t.Type(), t.Payload())
	if errors.Is(err, ErrMalformedPayload) {
		// retrying cannot fix the payload
		return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
	}
	return err
}
