package job

import (
	"context"
	"time"
)

// Schedule is the persisted registration of a periodic job
type Schedule struct {
	Name      string
	Interval  time.Duration
	LastRunAt *time.Time
	UpdatedAt time.Time
}

// NextRun returns when the job should run next, given the current time.
// A job that never ran, or is overdue, is due immediately.
func (s Schedule) NextRun(now time.Time) time.Time {
	if s.LastRunAt == nil {
		return now
	}
	next := s.LastRunAt.Add(s.Interval)
	if next.Before(now) {
		return now
	}
	return next
}

// ScheduleStore defines the interface for persisting job schedules
type ScheduleStore interface {
	// SaveSchedule creates the schedule or replaces the interval of an
	// existing one with the same name. LastRunAt is preserved.
	SaveSchedule(ctx context.Context, name string, interval time.Duration) error

	// GetSchedule retrieves a schedule by name.
	// Returns store.ErrScheduleNotFound if it does not exist.
	GetSchedule(ctx context.Context, name string) (Schedule, error)

	// MarkRun records the time of the latest run.
	// Returns store.ErrScheduleNotFound if it does not exist.
	MarkRun(ctx context.Context, name string, at time.Time) error
}
