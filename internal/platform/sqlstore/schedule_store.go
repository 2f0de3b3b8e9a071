package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/phrazzld/tasklist/internal/job"
	"github.com/phrazzld/tasklist/internal/platform/logger"
	"github.com/phrazzld/tasklist/internal/store"
)

// ScheduleStore implements job.ScheduleStore on a SQL database.
type ScheduleStore struct {
	db      store.DBTX
	dialect Dialect
	now     func() time.Time
}

// NewScheduleStore creates a ScheduleStore speaking the given dialect.
// db may be a *sql.DB or a *sql.Tx.
func NewScheduleStore(db store.DBTX, dialect Dialect) *ScheduleStore {
	return &ScheduleStore{
		db:      db,
		dialect: dialect,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

var _ job.ScheduleStore = (*ScheduleStore)(nil)

// SaveSchedule implements job.ScheduleStore. The last run time of an
// existing schedule is left untouched.
func (s *ScheduleStore) SaveSchedule(ctx context.Context, name string, interval time.Duration) error {
	log := logger.FromContext(ctx)

	var query string
	switch s.dialect {
	case DialectMySQL:
		query = `
			INSERT INTO job_schedules (name, interval_ms, last_run_at, updated_at)
			VALUES (?, ?, NULL, ?)
			ON DUPLICATE KEY UPDATE
				interval_ms = VALUES(interval_ms),
				updated_at = VALUES(updated_at)`
	default:
		query = `
			INSERT INTO job_schedules (name, interval_ms, last_run_at, updated_at)
			VALUES (?, ?, NULL, ?)
			ON CONFLICT (name) DO UPDATE SET
				interval_ms = excluded.interval_ms,
				updated_at = excluded.updated_at`
	}

	_, err := s.db.ExecContext(ctx, s.dialect.Rebind(query),
		name, interval.Milliseconds(), s.now())
	if err != nil {
		log.Error("failed to save job schedule", "job_name", name, "error", err)
		return storeError("job_schedule", "save", "upsert failed", err)
	}

	return nil
}

// GetSchedule implements job.ScheduleStore.
func (s *ScheduleStore) GetSchedule(ctx context.Context, name string) (job.Schedule, error) {
	log := logger.FromContext(ctx)

	var (
		sched      job.Schedule
		intervalMS int64
		lastRunAt  sql.NullTime
	)

	err := s.db.QueryRowContext(ctx,
		s.dialect.Rebind(`
			SELECT name, interval_ms, last_run_at, updated_at
			FROM job_schedules
			WHERE name = ?`),
		name,
	).Scan(&sched.Name, &intervalMS, &lastRunAt, &sched.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return job.Schedule{}, store.ErrScheduleNotFound
	}
	if err != nil {
		log.Error("failed to get job schedule", "job_name", name, "error", err)
		return job.Schedule{}, storeError("job_schedule", "get", "query failed", err)
	}

	sched.Interval = time.Duration(intervalMS) * time.Millisecond
	if lastRunAt.Valid {
		at := lastRunAt.Time.UTC()
		sched.LastRunAt = &at
	}

	return sched, nil
}

// MarkRun implements job.ScheduleStore.
func (s *ScheduleStore) MarkRun(ctx context.Context, name string, at time.Time) error {
	log := logger.FromContext(ctx)

	result, err := s.db.ExecContext(ctx,
		s.dialect.Rebind(`UPDATE job_schedules SET last_run_at = ?, updated_at = ? WHERE name = ?`),
		at.UTC(), s.now(), name)
	if err != nil {
		log.Error("failed to record job run", "job_name", name, "error", err)
		return storeError("job_schedule", "mark_run", "update failed", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return storeError("job_schedule", "mark_run", "reading rows affected failed", err)
	}
	if n == 0 {
		return store.ErrScheduleNotFound
	}

	return nil
}
