package reminder

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"google.golang.org/api/option"
)

// MessageSender is the subset of the FCM client used to deliver messages.
type MessageSender interface {
	Send(ctx context.Context, message *messaging.Message) (string, error)
}

// FCMConfig holds the settings of the Firebase notifier.
type FCMConfig struct {
	CredentialsFile string
	ProjectID       string
	Topic           string
}

// FCMNotifier pushes notifications to an FCM topic.
// Channels are created by the client app, so EnsureChannel only validates.
type FCMNotifier struct {
	sender MessageSender
	topic  string
	logger *slog.Logger
}

var _ Notifier = (*FCMNotifier)(nil)

// NewFCMNotifier initializes a Firebase app from a service account file and
// returns a notifier using its messaging client.
func NewFCMNotifier(ctx context.Context, cfg FCMConfig, logger *slog.Logger) (*FCMNotifier, error) {
	if cfg.Topic == "" {
		return nil, fmt.Errorf("fcm topic is required")
	}

	var opts []option.ClientOption
	if cfg.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	}

	var appConfig *firebase.Config
	if cfg.ProjectID != "" {
		appConfig = &firebase.Config{ProjectID: cfg.ProjectID}
	}

	app, err := firebase.NewApp(ctx, appConfig, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize firebase app: %w", err)
	}

	client, err := app.Messaging(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create messaging client: %w", err)
	}

	return NewFCMNotifierWithSender(client, cfg.Topic, logger), nil
}

// NewFCMNotifierWithSender creates a notifier around an existing sender.
func NewFCMNotifierWithSender(sender MessageSender, topic string, logger *slog.Logger) *FCMNotifier {
	return &FCMNotifier{
		sender: sender,
		topic:  topic,
		logger: logger.With("component", "fcm_notifier", "topic", topic),
	}
}

// EnsureChannel implements Notifier.
func (n *FCMNotifier) EnsureChannel(_ context.Context, channel Channel) error {
	if channel.ID == "" {
		return fmt.Errorf("channel id is required")
	}
	return nil
}

// Notify implements Notifier.
func (n *FCMNotifier) Notify(ctx context.Context, notification Notification) error {
	messageID, err := n.sender.Send(ctx, BuildMessage(notification, n.topic))
	if err != nil {
		return fmt.Errorf("failed to send fcm message: %w", err)
	}

	n.logger.Debug("fcm message sent",
		"message_id", messageID,
		"notification_id", notification.ID)
	return nil
}

// BuildMessage converts a notification into an FCM message for topic.
// The notification ID becomes the Android tag, so a newer message
// replaces the older one on the device.
func BuildMessage(notification Notification, topic string) *messaging.Message {
	return &messaging.Message{
		Topic: topic,
		Notification: &messaging.Notification{
			Title: notification.Title,
			Body:  notification.Body,
		},
		Android: &messaging.AndroidConfig{
			Priority: "normal",
			Notification: &messaging.AndroidNotification{
				ChannelID: notification.ChannelID,
				Tag:       strconv.Itoa(notification.ID),
				Priority:  messaging.PriorityDefault,
			},
		},
		Data: map[string]string{
			"notification_id": strconv.Itoa(notification.ID),
		},
	}
}
