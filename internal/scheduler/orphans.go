package scheduler

import (
	"context"
	"time"

	"voicerly_backend/internal/events"
	"voicerly_backend/platform/logger"
)

// OrphanRetryDelay is how long the first deferred delete waits.
const OrphanRetryDelay = time.Minute

// StorageOrphanHandler queues a deferred delete for every object the inline
// delete left behind.
func StorageOrphanHandler(sched StorageCleanupScheduler, log *logger.Logger) events.Handler {
	return events.HandlerFunc(func(ctx context.Context, event events.Event) error {
		e, ok := event.(events.AudioStorageOrphaned)
		if !ok {
			return nil
		}

		err := sched.ScheduleStorageDelete(ctx, StorageDeletePayload{
			Bucket:      e.Bucket,
			StoragePath: e.StoragePath,
		}, OrphanRetryDelay)
		if err != nil {
			log.Error("failed to schedule storage delete", "error", err, "path", e.StoragePath, "reason", e.Reason)
			return err
		}
		return nil
	})
}
