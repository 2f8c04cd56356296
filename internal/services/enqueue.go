package services

import (
	"context"

	"github.com/yukikurage/room-workflow-api/internal/queue"
	"github.com/yukikurage/room-workflow-api/pkg/logger"
)

// enqueue schedules a side effect. A failure is logged as deferred delivery and
// returned for callers that care; the operation that produced it has already
// committed and must not fail because of it.
func enqueue(ctx context.Context, q queue.TaskQueue, taskType string, payload interface{}) error {
	if q == nil {
		return nil
	}
	if err := q.Enqueue(ctx, taskType, payload); err != nil {
		err = queue.Deferred(taskType, err)
		logger.Warn().Err(err).Str("type", taskType).Msg("side effect deferred")
		return err
	}
	return nil
}
