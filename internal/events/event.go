// Package events provides domain event definitions for decoupled,
// event-driven communication between modules.
// Infrastructure (Bus, Handler) is in platform/events.
package events

import (
	"voicerly_backend/platform/events"
	"voicerly_backend/platform/logger"

	"github.com/google/uuid"
)

// Re-export platform types for convenience
type (
	Event       = events.Event
	Bus         = events.Bus
	Handler     = events.Handler
	HandlerFunc = events.HandlerFunc
	BaseEvent   = events.BaseEvent
	InMemoryBus = events.InMemoryBus
)

// Re-export platform functions
var NewBaseEvent = events.NewBaseEvent

// NewInMemoryBus creates the in-process event bus.
func NewInMemoryBus(log *logger.Logger) *InMemoryBus {
	return events.NewInMemoryBus(log)
}

// =============================================================================
// Audio Domain Events
// =============================================================================

// AudioAdmitted is published after an upload is stored and recorded.
type AudioAdmitted struct {
	BaseEvent
	AssetID     uuid.UUID `json:"assetId"`
	ShortID     string    `json:"shortId"`
	StoragePath string    `json:"storagePath"`
	MimeType    string    `json:"mimeType"`
	SizeBytes   int64     `json:"sizeBytes"`
}

func (e AudioAdmitted) EventName() string { return "audio.admitted" }

// AudioDeleted is published once an asset's metadata record is gone.
type AudioDeleted struct {
	BaseEvent
	AssetID     uuid.UUID `json:"assetId"`
	ShortID     string    `json:"shortId"`
	StoragePath string    `json:"storagePath"`
	SizeBytes   int64     `json:"sizeBytes"`
}

func (e AudioDeleted) EventName() string { return "audio.deleted" }

// AudioStorageOrphaned is published when an object could not be removed from
// storage and may have been left behind.
type AudioStorageOrphaned struct {
	BaseEvent
	Bucket      string `json:"bucket"`
	StoragePath string `json:"storagePath"`
	Reason      string `json:"reason"`
}

func (e AudioStorageOrphaned) EventName() string { return "audio.storage.orphaned" }
