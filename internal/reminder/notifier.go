package reminder

import "context"

// Importance mirrors the notification channel importance levels.
type Importance int

// Importance levels
const (
	ImportanceLow Importance = iota
	ImportanceDefault
	ImportanceHigh
)

// String returns the lowercase name of the level.
func (i Importance) String() string {
	switch i {
	case ImportanceLow:
		return "low"
	case ImportanceHigh:
		return "high"
	default:
		return "default"
	}
}

// Channel describes the category a notification is posted under.
type Channel struct {
	ID         string
	Name       string
	Importance Importance
}

// Notification is a single user-visible message. Posting a notification
// with the ID of an existing one replaces it.
type Notification struct {
	ID        int
	ChannelID string
	Title     string
	Body      string
}

// Notifier delivers notifications to the user.
type Notifier interface {
	// EnsureChannel creates the channel if it does not exist yet.
	EnsureChannel(ctx context.Context, channel Channel) error

	// Notify posts or replaces the notification.
	Notify(ctx context.Context, notification Notification) error
}
