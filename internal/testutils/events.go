package testutils

import (
	"context"
	"log/slog"

	"github.com/phrazzld/tasklist/internal/events"
)

// ChannelHandler forwards events to a buffered channel.
// Events are dropped, not blocked on, when the buffer is full.
type ChannelHandler struct {
	ch     chan *events.Event
	logger *slog.Logger
}

var _ events.EventHandler = (*ChannelHandler)(nil)

// NewChannelHandler creates a ChannelHandler with the given buffer size.
func NewChannelHandler(size int, logger *slog.Logger) *ChannelHandler {
	if size <= 0 {
		size = 1
	}
	return &ChannelHandler{
		ch:     make(chan *events.Event, size),
		logger: logger,
	}
}

// HandleEvent implements events.EventHandler.
func (h *ChannelHandler) HandleEvent(_ context.Context, event *events.Event) error {
	select {
	case h.ch <- event:
	default:
		h.logger.Warn("event channel full, dropping event",
			"event_id", event.ID,
			"event_type", event.Type)
	}
	return nil
}

// Events returns the channel events are delivered on.
func (h *ChannelHandler) Events() <-chan *events.Event {
	return h.ch
}

// Drain empties the channel and returns how many events it held.
func (h *ChannelHandler) Drain() int {
	n := 0
	for {
		select {
		case <-h.ch:
			n++
		default:
			return n
		}
	}
}
