package scheduler

import (
	"context"
	"fmt"

	"voicerly_backend/platform/config"
	"voicerly_backend/platform/logger"

	"github.com/hibiken/asynq"
)

// ObjectDeleter removes stored objects.
type ObjectDeleter interface {
	DeleteObject(ctx context.Context, bucket, fileKey string) error
}

type Worker struct {
	server  *asynq.Server
	mux     *asynq.ServeMux
	storage ObjectDeleter
	log     *logger.Logger
}

func NewWorker(cfg config.SchedulerConfig, storage ObjectDeleter, log *logger.Logger) (*Worker, error) {
	redisURL := cfg.GetRedisURL()
	if redisURL == "" {
		return nil, fmt.Errorf("redis url not configured")
	}

	opt, err := redisClientOpt(redisURL, cfg.GetRedisTLSInsecure())
	if err != nil {
		return nil, err
	}

	concurrency := cfg.GetAsynqConcurrency()
	if concurrency < 1 {
		concurrency = 10
	}

	server := asynq.NewServer(opt, asynq.Config{
		Concurrency: concurrency,
		Queues: map[string]int{
			queueName(cfg): 1,
		},
	})

	mux := asynq.NewServeMux()
	w := &Worker{
		server:  server,
		mux:     mux,
		storage: storage,
		log:     log,
	}

	mux.HandleFunc(TaskStorageDelete, w.handleStorageDelete)

	return w, nil
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

func (w *Worker) handleStorageDelete(ctx context.Context, task *asynq.Task) error {
	payload, err := ParseStorageDeletePayload(task)
	if err != nil {
		return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
	}

	if err := w.storage.DeleteObject(ctx, payload.Bucket, payload.StoragePath); err != nil {
		w.log.StorageError("deferred delete", payload.StoragePath, err)
		return err
	}

	w.log.Info("deferred storage delete completed", "bucket", payload.Bucket, "path", payload.StoragePath)
	return nil
}
