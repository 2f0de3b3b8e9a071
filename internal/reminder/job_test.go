package reminder

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phrazzld/tasklist/internal/platform/logger"
)

// mockNotifier records calls and returns the configured errors
type mockNotifier struct {
	channelErr error
	notifyErr  error

	channels      []Channel
	notifications []Notification
}

func (m *mockNotifier) EnsureChannel(_ context.Context, channel Channel) error {
	m.channels = append(m.channels, channel)
	return m.channelErr
}

func (m *mockNotifier) Notify(_ context.Context, notification Notification) error {
	m.notifications = append(m.notifications, notification)
	return m.notifyErr
}

func TestNewJob(t *testing.T) {
	_, err := NewJob(nil, logger.NewDiscardLogger())
	assert.Error(t, err)

	_, err = NewJob(&mockNotifier{}, nil)
	assert.Error(t, err)

	j, err := NewJob(&mockNotifier{}, logger.NewDiscardLogger())
	require.NoError(t, err)
	assert.Equal(t, "task_reminder_work", j.Name())
}

func TestJob_Run(t *testing.T) {
	t.Run("ensures channel then posts reminder", func(t *testing.T) {
		notifier := &mockNotifier{}
		j, err := NewJob(notifier, logger.NewDiscardLogger())
		require.NoError(t, err)

		require.NoError(t, j.Run(context.Background()))

		require.Len(t, notifier.channels, 1)
		assert.Equal(t, Channel{ID: "task_reminder_channel", Name: "Task Reminder", Importance: ImportanceDefault}, notifier.channels[0])

		require.Len(t, notifier.notifications, 1)
		assert.Equal(t, Notification{
			ID:        1,
			ChannelID: "task_reminder_channel",
			Title:     "Task Reminder",
			Body:      "Don't forget to complete your pending tasks.",
		}, notifier.notifications[0])
	})

	t.Run("channel failure still notifies", func(t *testing.T) {
		notifier := &mockNotifier{channelErr: errors.New("no permission")}
		j, err := NewJob(notifier, logger.NewDiscardLogger())
		require.NoError(t, err)

		assert.NoError(t, j.Run(context.Background()))
		assert.Len(t, notifier.notifications, 1)
	})

	t.Run("notify failure is returned", func(t *testing.T) {
		notifier := &mockNotifier{notifyErr: errors.New("push service down")}
		j, err := NewJob(notifier, logger.NewDiscardLogger())
		require.NoError(t, err)

		err = j.Run(context.Background())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "push service down")
	})
}

func TestJob_RunWithLogNotifier(t *testing.T) {
	buf, log := logger.NewBufferedLogger()
	notifier := NewLogNotifier(log)
	j, err := NewJob(notifier, log)
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		require.NoError(t, j.Run(context.Background()))
	}

	assert.True(t, notifier.hasChannel(ChannelID))
	assert.Equal(t, 3, notifier.postedCount())
	assert.Equal(t, []Notification{Reminder()}, notifier.activeNotifications(), "each run replaces the previous notification")

	entries, err := buf.GetLogEntries()
	require.NoError(t, err)

	found := false
	for _, e := range entries {
		if e["msg"] == "notification" && e["title"] == Title {
			found = true
		}
	}
	assert.True(t, found)
}

func TestLogNotifier_RequiresChannel(t *testing.T) {
	notifier := NewLogNotifier(logger.NewDiscardLogger())

	err := notifier.Notify(context.Background(), Reminder())
	assert.Error(t, err)

	assert.Error(t, notifier.EnsureChannel(context.Background(), Channel{}))
}

func TestImportance_String(t *testing.T) {
	assert.Equal(t, "low", ImportanceLow.String())
	assert.Equal(t, "default", ImportanceDefault.String())
	assert.Equal(t, "high", ImportanceHigh.String())
}
