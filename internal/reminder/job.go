package reminder

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/phrazzld/tasklist/internal/job"
)

// Fixed identifiers of the reminder.
const (
	JobName        = "task_reminder_work"
	ChannelID      = "task_reminder_channel"
	ChannelName    = "Task Reminder"
	NotificationID = 1

	Title = "Task Reminder"
	Body  = "Don't forget to complete your pending tasks."
)

// DefaultChannel is the channel every reminder is posted under.
var DefaultChannel = Channel{
	ID:         ChannelID,
	Name:       ChannelName,
	Importance: ImportanceDefault,
}

// Reminder returns the notification posted by every run.
func Reminder() Notification {
	return Notification{
		ID:        NotificationID,
		ChannelID: ChannelID,
		Title:     Title,
		Body:      Body,
	}
}

// Job posts the pending tasks reminder.
type Job struct {
	notifier Notifier
	logger   *slog.Logger
}

var _ job.Job = (*Job)(nil)

// NewJob creates a reminder Job delivering through notifier.
func NewJob(notifier Notifier, logger *slog.Logger) (*Job, error) {
	if notifier == nil {
		return nil, fmt.Errorf("notifier cannot be nil")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger cannot be nil")
	}
	return &Job{
		notifier: notifier,
		logger:   logger.With("component", "reminder_job"),
	}, nil
}

// Name implements job.Job.
func (j *Job) Name() string {
	return JobName
}

// Run implements job.Job. A channel failure is logged and the notification
// is still attempted; only a notify failure is returned.
func (j *Job) Run(ctx context.Context) error {
	if err := j.notifier.EnsureChannel(ctx, DefaultChannel); err != nil {
		j.logger.Warn("failed to ensure notification channel",
			"channel_id", DefaultChannel.ID,
			"error", err)
	}

	notification := Reminder()
	if err := j.notifier.Notify(ctx, notification); err != nil {
		return fmt.Errorf("failed to post reminder: %w", err)
	}

	j.logger.Info("reminder posted",
		"notification_id", notification.ID,
		"channel_id", notification.ChannelID)
	return nil
}
