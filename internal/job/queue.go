package job

import (
	"context"
	"errors"
	"log/slog"
	"sync"
)

// ErrQueueClosed is returned when submitting to a closed queue
var ErrQueueClosed = errors.New("job queue is closed")

// Queue implements a buffered job queue that satisfies both
// QueueReader and QueueWriter interfaces
type Queue struct {
	jobs   chan Job
	logger *slog.Logger

	// mu guards closed; senders hold the read lock while sending so that
	// Close never races a send on the channel
	mu     sync.RWMutex
	closed bool
}

// NewQueue creates a new job queue with the specified buffer size
func NewQueue(size int, logger *slog.Logger) *Queue {
	if size < 0 {
		size = 0
	}
	return &Queue{
		jobs:   make(chan Job, size),
		logger: logger,
	}
}

// EnqueueContext adds a job to the queue, waiting for capacity
func (q *Queue) EnqueueContext(ctx context.Context, job Job) error {
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		return ErrQueueClosed
	}

	select {
	case q.jobs <- job:
		q.logger.Debug("job enqueued",
			"job_name", job.Name(),
			"queue_len", len(q.jobs),
			"queue_cap", cap(q.jobs))
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close closes the job queue, preventing further job submission.
// Jobs already buffered remain readable.
func (q *Queue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()

	if !q.closed {
		q.closed = true
		close(q.jobs)
		q.logger.Info("job queue closed")
	}
}

// GetChannel returns a read-only channel for consuming jobs
func (q *Queue) GetChannel() <-chan Job {
	return q.jobs
}
