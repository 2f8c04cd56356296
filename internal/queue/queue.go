package queue

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/hibiken/asynq"
	"github.com/yukikurage/room-workflow-api/internal/config"
	"github.com/yukikurage/room-workflow-api/pkg/logger"
)

// TaskQueue accepts side-effect tasks and returns without waiting for them.
type TaskQueue interface {
	// Enqueue marshals payload and schedules it under taskType
	Enqueue(ctx context.Context, taskType string, payload interface{}) error
	// IsAsync returns true if tasks leave the process
	IsAsync() bool
	// Close gracefully shuts down the queue
	Close() error
}

// New returns an asynq-backed queue when Redis is enabled and reachable, and an
// in-process queue dispatching to mux otherwise.
func New(cfg *config.Config, mux *Mux) TaskQueue {
	if !cfg.Redis.Enabled {
		logger.Info().Msg("sync task queue initialized (redis disabled)")
		return NewSyncQueue(mux)
	}

	q, err := NewAsyncQueue(&cfg.Redis, &cfg.Queue)
	if err != nil {
		logger.Warn().Err(err).Msg("redis unavailable, falling back to sync task queue")
		return NewSyncQueue(mux)
	}

	logger.Info().Str("addr", cfg.Redis.Addr).Str("queue", cfg.Queue.Name).Msg("async task queue initialized")
	return q
}

func redisOpt(cfg *config.RedisConfig) asynq.RedisClientOpt {
	return asynq.RedisClientOpt{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	}
}

// AsyncQueue implements TaskQueue using asynq (Redis-based)
type AsyncQueue struct {
	client   *asynq.Client
	queue    string
	maxRetry int
}

// NewAsyncQueue creates a Redis-based queue after checking the connection.
func NewAsyncQueue(redisCfg *config.RedisConfig, queueCfg *config.QueueConfig) (*AsyncQueue, error) {
	opt := redisOpt(redisCfg)
	client := asynq.NewClient(opt)

	inspector := asynq.NewInspector(opt)
	defer inspector.Close()

	if _, err := inspector.Queues(); err != nil {
		client.Close()
		return nil, err
	}

	return &AsyncQueue{
		client:   client,
		queue:    queueCfg.Name,
		maxRetry: queueCfg.MaxRetry,
	}, nil
}

func (q *AsyncQueue) Enqueue(ctx context.Context, taskType string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	info, err := q.client.EnqueueContext(ctx, asynq.NewTask(taskType, data),
		asynq.Queue(q.queue),
		asynq.MaxRetry(q.maxRetry),
	)
	if err != nil {
		return err
	}

	logger.Debug().Str("task_id", info.ID).Str("type", taskType).Str("queue", info.Queue).Msg("task enqueued")
	return nil
}

func (q *AsyncQueue) IsAsync() bool {
	return true
}

func (q *AsyncQueue) Close() error {
	return q.client.Close()
}

// SyncQueue implements TaskQueue by running tasks on goroutines in this process.
// Failed tasks are logged and dropped.
type SyncQueue struct {
	mux *Mux
	wg  sync.WaitGroup
}

func NewSyncQueue(mux *Mux) *SyncQueue {
	return &SyncQueue{mux: mux}
}

func (q *SyncQueue) Enqueue(ctx context.Context, taskType string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	if q.mux == nil {
		logger.Warn().Str("type", taskType).Msg("no task handlers set, task dropped")
		return nil
	}

	// detached from the request context, which ends with the response
	q.wg.Add(1)
	go func() {
		defer q.wg.Done()
		if err := q.mux.Dispatch(context.Background(), taskType, data); err != nil {
			logger.Error().Err(err).Str("type", taskType).Msg("task processing failed")
		}
	}()

	return nil
}

// Wait blocks until every task enqueued so far has finished.
func (q *SyncQueue) Wait() {
	q.wg.Wait()
}

func (q *SyncQueue) IsAsync() bool {
	return false
}

func (q *SyncQueue) Close() error {
	q.wg.Wait()
	return nil
}
