// Package events provides the in-process event bus used to hand work off
// from request handlers to background subscribers.
// This is part of the platform layer and contains no business logic.
package events

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Event is implemented by every published event.
type Event interface {
	// EventName is the subscription key, e.g. "audio.deleted".
	EventName() string
	OccurredAt() time.Time
}

// BaseEvent carries the id and timestamp shared by all events.
type BaseEvent struct {
	EventID   uuid.UUID `json:"eventId"`
	Timestamp time.Time `json:"timestamp"`
}

// OccurredAt returns when the event occurred.
func (e BaseEvent) OccurredAt() time.Time {
	return e.Timestamp
}

// ID returns the event's unique id.
func (e BaseEvent) ID() uuid.UUID {
	return e.EventID
}

// NewBaseEvent stamps a fresh id and the current UTC time.
func NewBaseEvent() BaseEvent {
	return BaseEvent{EventID: uuid.New(), Timestamp: time.Now().UTC()}
}

// Handler reacts to one event.
type Handler interface {
	Handle(ctx context.Context, event Event) error
}

// HandlerFunc adapts a function to Handler.
type HandlerFunc func(ctx context.Context, event Event) error

// Handle calls f.
func (f HandlerFunc) Handle(ctx context.Context, event Event) error {
	return f(ctx, event)
}

// Bus publishes events to subscribers registered by name.
type Bus interface {
	// Publish fans the event out to its handlers without waiting.
	Publish(ctx context.Context, event Event)
	Subscribe(eventName string, handler Handler)
}

// identified is satisfied by events embedding BaseEvent.
type identified interface {
	ID() uuid.UUID
}

func eventID(event Event) string {
	if e, ok := event.(identified); ok {
		return e.ID().String()
	}
	return ""
}
