package audio

import (
	"context"
	"fmt"

	"voicerly_backend/internal/events"
	"voicerly_backend/platform/logger"
)

func admittedLogger(log *logger.Logger) events.Handler {
	return events.HandlerFunc(func(ctx context.Context, event events.Event) error {
		e, ok := event.(events.AudioAdmitted)
		if !ok {
			return fmt.Errorf("unexpected event type %T", event)
		}
		log.WithContext(ctx).AssetAdmitted(e.ShortID, e.SizeBytes, e.MimeType)
		return nil
	})
}

func deletedLogger(log *logger.Logger) events.Handler {
	return events.HandlerFunc(func(ctx context.Context, event events.Event) error {
		e, ok := event.(events.AudioDeleted)
		if !ok {
			return fmt.Errorf("unexpected event type %T", event)
		}
		log.WithContext(ctx).AssetDeleted(e.ShortID, e.SizeBytes)
		return nil
	})
}
