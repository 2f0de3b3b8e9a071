package job

import (
	"context"
	"sync"
	"time"

	"github.com/phrazzld/tasklist/internal/store"
)

// MemoryScheduleStore implements ScheduleStore in memory.
// The Fn fields, when set, replace the default behaviour.
type MemoryScheduleStore struct {
	mutex     sync.RWMutex
	schedules map[string]Schedule

	SaveFn    func(ctx context.Context, name string, interval time.Duration) error
	MarkRunFn func(ctx context.Context, name string, at time.Time) error
}

// NewMemoryScheduleStore creates an empty MemoryScheduleStore
func NewMemoryScheduleStore() *MemoryScheduleStore {
	return &MemoryScheduleStore{schedules: make(map[string]Schedule)}
}

var _ ScheduleStore = (*MemoryScheduleStore)(nil)

// SaveSchedule implements ScheduleStore
func (s *MemoryScheduleStore) SaveSchedule(ctx context.Context, name string, interval time.Duration) error {
	if s.SaveFn != nil {
		return s.SaveFn(ctx, name, interval)
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()

	sched := s.schedules[name]
	sched.Name = name
	sched.Interval = interval
	sched.UpdatedAt = time.Now().UTC()
	s.schedules[name] = sched
	return nil
}

// GetSchedule implements ScheduleStore
func (s *MemoryScheduleStore) GetSchedule(ctx context.Context, name string) (Schedule, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	sched, ok := s.schedules[name]
	if !ok {
		return Schedule{}, store.ErrScheduleNotFound
	}
	return sched, nil
}

// MarkRun implements ScheduleStore
func (s *MemoryScheduleStore) MarkRun(ctx context.Context, name string, at time.Time) error {
	if s.MarkRunFn != nil {
		return s.MarkRunFn(ctx, name, at)
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()

	sched, ok := s.schedules[name]
	if !ok {
		return store.ErrScheduleNotFound
	}
	at = at.UTC()
	sched.LastRunAt = &at
	s.schedules[name] = sched
	return nil
}

// SetLastRun seeds the last run time of a schedule, creating it if needed
func (s *MemoryScheduleStore) SetLastRun(name string, interval time.Duration, at time.Time) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	at = at.UTC()
	s.schedules[name] = Schedule{Name: name, Interval: interval, LastRunAt: &at, UpdatedAt: at}
}
