package job

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// DefaultMinInterval is the shortest period a job may be scheduled with.
const DefaultMinInterval = 15 * time.Minute

// ErrSchedulerStopped is returned by Register after Stop.
var ErrSchedulerStopped = errors.New("scheduler is stopped")

// SchedulerConfig holds configuration for the scheduler
type SchedulerConfig struct {
	// MinInterval clamps registered intervals from below.
	// If zero or negative, defaults to DefaultMinInterval
	MinInterval time.Duration
}

// Scheduler runs uniquely named jobs periodically.
// Registering a name that already exists replaces the previous job and interval.
type Scheduler struct {
	store  ScheduleStore
	config SchedulerConfig
	logger *slog.Logger
	now    func() time.Time

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu      sync.Mutex
	entries map[string]*scheduledJob
	started bool
	stopped bool
}

type scheduledJob struct {
	name     string
	interval time.Duration
	job      Job
	firstRun time.Time
	cancel   context.CancelFunc
}

// NewScheduler creates a new Scheduler
func NewScheduler(store ScheduleStore, config SchedulerConfig, logger *slog.Logger) *Scheduler {
	if config.MinInterval <= 0 {
		config.MinInterval = DefaultMinInterval
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Scheduler{
		store:   store,
		config:  config,
		logger:  logger.With("component", "scheduler"),
		now:     time.Now,
		ctx:     ctx,
		cancel:  cancel,
		entries: make(map[string]*scheduledJob),
	}
}

// Register persists the schedule and arranges for job to run every interval.
// Intervals below the configured minimum are raised to it. The first run
// happens one interval after the persisted last run, or immediately if the
// job never ran or is overdue. If the scheduler is already started the job
// begins running right away.
func (s *Scheduler) Register(ctx context.Context, name string, interval time.Duration, job Job) error {
	if name == "" {
		return fmt.Errorf("schedule name is required")
	}
	if job == nil {
		return fmt.Errorf("job is required for schedule %s", name)
	}

	if interval < s.config.MinInterval {
		s.logger.Warn("requested interval below minimum, clamping",
			"job_name", name,
			"requested_interval", interval.String(),
			"min_interval", s.config.MinInterval.String())
		interval = s.config.MinInterval
	}

	if err := s.store.SaveSchedule(ctx, name, interval); err != nil {
		return fmt.Errorf("failed to save schedule %s: %w", name, err)
	}

	sched, err := s.store.GetSchedule(ctx, name)
	if err != nil {
		return fmt.Errorf("failed to load schedule %s: %w", name, err)
	}
	sched.Interval = interval

	entry := &scheduledJob{
		name:     name,
		interval: interval,
		job:      job,
		firstRun: sched.NextRun(s.now()),
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopped {
		return ErrSchedulerStopped
	}

	old, replaced := s.entries[name]
	if replaced && old.cancel != nil {
		old.cancel()
	}
	s.entries[name] = entry

	if s.started {
		s.launch(entry)
	}

	s.logger.Info("job registered",
		"job_name", name,
		"interval", interval.String(),
		"first_run", entry.firstRun,
		"replaced", replaced)
	return nil
}

// Start begins running every registered job. Calling Start more than once has no effect.
func (s *Scheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started || s.stopped {
		return
	}
	s.started = true

	for _, entry := range s.entries {
		s.launch(entry)
	}
	s.logger.Info("scheduler started", "job_count", len(s.entries))
}

// Stop cancels all schedules and waits for running jobs to return
func (s *Scheduler) Stop() {
	s.mu.Lock()
	s.stopped = true
	s.cancel()
	s.mu.Unlock()

	s.wg.Wait()
	s.logger.Info("scheduler stopped")
}

// launch starts the goroutine of one entry; s.mu must be held
func (s *Scheduler) launch(entry *scheduledJob) {
	ctx, cancel := context.WithCancel(s.ctx)
	entry.cancel = cancel

	s.wg.Add(1)
	go s.loop(ctx, entry)
}

// loop waits for the first run, then runs the job on every tick
func (s *Scheduler) loop(ctx context.Context, entry *scheduledJob) {
	defer s.wg.Done()

	delay := entry.firstRun.Sub(s.now())
	if delay < 0 {
		delay = 0
	}

	timer := time.NewTimer(delay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return
	case <-timer.C:
		s.runOnce(ctx, entry)
	}

	ticker := time.NewTicker(entry.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.runOnce(ctx, entry)
		}
	}
}

// runOnce executes the job and records the run; failures are logged only
func (s *Scheduler) runOnce(ctx context.Context, entry *scheduledJob) {
	if ctx.Err() != nil {
		return
	}

	logger := s.logger.With(
		"job_name", entry.name,
		"run_id", uuid.New().String(),
	)

	started := s.now()
	logger.Debug("running scheduled job")

	if err := runSafely(ctx, entry.job); err != nil {
		logger.Error("scheduled job failed", "error", err)
	} else {
		logger.Info("scheduled job completed",
			"duration_ms", time.Since(started).Milliseconds())
	}

	if err := s.store.MarkRun(context.WithoutCancel(ctx), entry.name, started); err != nil {
		logger.Error("failed to record job run", "error", err)
	}
}
