package scheduler

import (
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
)

const TaskStorageDelete = "audio.storage.delete"

// StorageDeletePayload names an object whose delete failed inline.
type StorageDeletePayload struct {
	Bucket      string `json:"bucket"`
	StoragePath string `json:"storagePath"`
}

func NewStorageDeleteTask(payload StorageDeletePayload) (*asynq.Task, error) {
	if payload.Bucket == "" || payload.StoragePath == "" {
		return nil, fmt.Errorf("storage delete task needs bucket and path")
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskStorageDelete, data), nil
}

func ParseStorageDeletePayload(task *asynq.Task) (StorageDeletePayload, error) {
	var payload StorageDeletePayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return StorageDeletePayload{}, err
	}
	return payload, nil
}
