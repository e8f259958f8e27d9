package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"voicerly_backend/internal/events"
	"voicerly_backend/platform/logger"

	"github.com/hibiken/asynq"
)

func TestStorageDeleteTask(t *testing.T) {
	task, err := NewStorageDeleteTask(StorageDeletePayload{Bucket: "audio-storage", StoragePath: "abc.webm"})
	if err != nil {
		t.Fatalf("NewStorageDeleteTask() error = %v", err)
	}
	if task.Type() != TaskStorageDelete {
		t.Errorf("type = %q", task.Type())
	}

	payload, err := ParseStorageDeletePayload(task)
	if err != nil {
		t.Fatalf("ParseStorageDeletePayload() error = %v", err)
	}
	if payload.Bucket != "audio-storage" || payload.StoragePath != "abc.webm" {
		t.Errorf("payload = %+v", payload)
	}

	if _, err := NewStorageDeleteTask(StorageDeletePayload{Bucket: "audio-storage"}); err == nil {
		t.Error("expected error for missing path")
	}
}

func TestRedisClientOpt(t *testing.T) {
	opt, err := redisClientOpt("redis://:secret@localhost:6380/2", false)
	if err != nil {
		t.Fatalf("redisClientOpt() error = %v", err)
	}
	if opt.Addr != "localhost:6380" || opt.Password != "secret" || opt.DB != 2 || opt.TLSConfig != nil {
		t.Errorf("opt = %+v", opt)
	}

	opt, err = redisClientOpt("rediss://localhost:6380", true)
	if err != nil {
		t.Fatalf("redisClientOpt() error = %v", err)
	}
	if opt.TLSConfig == nil || !opt.TLSConfig.InsecureSkipVerify {
		t.Error("expected insecure TLS config")
	}

	if _, err := redisClientOpt("://bad", false); err == nil {
		t.Error("expected parse error")
	}
}

type fakeDeleter struct {
	err  error
	keys []string
}

func (f *fakeDeleter) DeleteObject(_ context.Context, bucket, key string) error {
	f.keys = append(f.keys, bucket+"/"+key)
	return f.err
}

func TestHandleStorageDelete(t *testing.T) {
	deleter := &fakeDeleter{}
	w := &Worker{storage: deleter, log: logger.Nop()}

	task, _ := NewStorageDeleteTask(StorageDeletePayload{Bucket: "audio-storage", StoragePath: "abc.webm"})
	if err := w.handleStorageDelete(context.Background(), task); err != nil {
		t.Fatalf("handleStorageDelete() error = %v", err)
	}
	if len(deleter.keys) != 1 || deleter.keys[0] != "audio-storage/abc.webm" {
		t.Errorf("keys = %v", deleter.keys)
	}

	deleter.err = errors.New("still down")
	if err := w.handleStorageDelete(context.Background(), task); err == nil {
		t.Error("expected error so asynq retries")
	}

	bad := asynq.NewTask(TaskStorageDelete, []byte("{"))
	if err := w.handleStorageDelete(context.Background(), bad); !errors.Is(err, asynq.SkipRetry) {
		t.Errorf("error = %v, want SkipRetry", err)
	}
}

type fakeScheduler struct {
	payloads []StorageDeletePayload
	delay    time.Duration
}

func (f *fakeScheduler) ScheduleStorageDelete(_ context.Context, p StorageDeletePayload, delay time.Duration) error {
	f.payloads = append(f.payloads, p)
	f.delay = delay
	return nil
}

func TestStorageOrphanHandler(t *testing.T) {
	sched := &fakeScheduler{}
	h := StorageOrphanHandler(sched, logger.Nop())

	err := h.Handle(context.Background(), events.AudioStorageOrphaned{
		BaseEvent:   events.NewBaseEvent(),
		Bucket:      "audio-storage",
		StoragePath: "abc.webm",
		Reason:      "storage delete failed",
	})
	if err != nil {
		t.Fatalf("Handle() error = %v", err)
	}
	if len(sched.payloads) != 1 || sched.payloads[0].StoragePath != "abc.webm" || sched.delay != OrphanRetryDelay {
		t.Errorf("scheduled = %+v delay %v", sched.payloads, sched.delay)
	}

	if err := h.Handle(context.Background(), events.AudioDeleted{}); err != nil {
		t.Errorf("unrelated event error = %v", err)
	}
	if len(sched.payloads) != 1 {
		t.Error("unrelated event scheduled work")
	}
}
