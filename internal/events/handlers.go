package events

import (
	"context"
	"log/slog"
)

// NewLogHandler returns a handler that records every event at debug level.
func NewLogHandler(logger *slog.Logger) EventHandler {
	return HandlerFunc(func(_ context.Context, event *Event) error {
		logger.Debug("event observed",
			"event_id", event.ID,
			"event_type", event.Type,
			"payload_bytes", len(event.Payload))
		return nil
	})
}
