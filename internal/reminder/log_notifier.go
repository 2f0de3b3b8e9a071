package reminder

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
)

// LogNotifier writes notifications to a logger and keeps the latest one per ID.
type LogNotifier struct {
	logger *slog.Logger

	mu       sync.Mutex
	channels map[string]Channel
	active   map[int]Notification
	posted   int
}

var _ Notifier = (*LogNotifier)(nil)

// NewLogNotifier creates a LogNotifier.
func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	return &LogNotifier{
		logger:   logger.With("component", "log_notifier"),
		channels: make(map[string]Channel),
		active:   make(map[int]Notification),
	}
}

// EnsureChannel implements Notifier.
func (n *LogNotifier) EnsureChannel(_ context.Context, channel Channel) error {
	if channel.ID == "" {
		return fmt.Errorf("channel id is required")
	}

	n.mu.Lock()
	defer n.mu.Unlock()

	if _, ok := n.channels[channel.ID]; ok {
		return nil
	}
	n.channels[channel.ID] = channel
	n.logger.Debug("notification channel created",
		"channel_id", channel.ID,
		"channel_name", channel.Name,
		"importance", channel.Importance.String())
	return nil
}

// Notify implements Notifier.
func (n *LogNotifier) Notify(_ context.Context, notification Notification) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	if _, ok := n.channels[notification.ChannelID]; !ok {
		return fmt.Errorf("notification channel %q does not exist", notification.ChannelID)
	}

	_, replaced := n.active[notification.ID]
	n.active[notification.ID] = notification
	n.posted++

	n.logger.Info("notification",
		"notification_id", notification.ID,
		"channel_id", notification.ChannelID,
		"title", notification.Title,
		"body", notification.Body,
		"replaced", replaced)
	return nil
}
