package job

import (
	"context"
	"log/slog"
	"sync"
)

// DefaultExecutorQueueSize is the buffer used when NewSerialExecutor gets a non-positive size.
const DefaultExecutorQueueSize = 64

// Executor runs submitted units of work one at a time, in submission order,
// on a single background worker.
type Executor struct {
	queue     QueueWriter
	pool      *WorkerPool
	closeOnce sync.Once
}

// unit is a job whose result is delivered to the caller waiting in Do.
// Successful runs report themselves; failures and recovered panics are
// delivered by the pool's error handler.
type unit struct {
	Job
	done chan error
}

// NewSerialExecutor creates and starts an executor backed by a one-worker pool.
func NewSerialExecutor(queueSize int, logger *slog.Logger) *Executor {
	if queueSize <= 0 {
		queueSize = DefaultExecutorQueueSize
	}

	queue := NewQueue(queueSize, logger)
	pool := NewWorkerPool(queue, WorkerPoolConfig{WorkerCount: 1}, logger)
	pool.SetErrorHandler(func(job Job, err error) {
		u, ok := job.(*unit)
		if !ok {
			logger.Error("job execution failed", "job_name", job.Name(), "error", err)
			return
		}
		logger.Debug("unit returned an error", "job_name", u.Name(), "error", err)
		u.done <- err
	})
	pool.Start()

	return &Executor{queue: queue, pool: pool}
}

// Do enqueues fn and waits for it to finish, returning its error.
//
// Once accepted, fn always runs to completion: it receives a context that
// keeps the values of ctx but not its cancellation. If ctx is done before
// fn finishes, Do returns ctx.Err() and fn keeps running in the background.
// Returns ErrQueueClosed after Close.
func (e *Executor) Do(ctx context.Context, name string, fn func(ctx context.Context) error) error {
	detached := context.WithoutCancel(ctx)
	u := &unit{done: make(chan error, 1)}
	u.Job = NewFunc(name, func(context.Context) error {
		if err := fn(detached); err != nil {
			return err
		}
		u.done <- nil
		return nil
	})

	if err := e.queue.EnqueueContext(ctx, u); err != nil {
		return err
	}

	select {
	case err := <-u.done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close stops accepting work, runs everything already queued, and waits for the worker to exit.
func (e *Executor) Close() {
	e.closeOnce.Do(func() {
		e.queue.Close()
		e.pool.Wait()
	})
}
