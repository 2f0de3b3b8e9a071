package job

import "context"

// Job represents a unit of background work to be processed
type Job interface {
	// Name returns an identifier used in logs and schedule registrations
	Name() string

	// Run executes the job logic
	Run(ctx context.Context) error
}

// funcJob adapts a plain function to the Job interface
type funcJob struct {
	name string
	fn   func(ctx context.Context) error
}

// NewFunc wraps fn as a Job with the given name
func NewFunc(name string, fn func(ctx context.Context) error) Job {
	return &funcJob{name: name, fn: fn}
}

func (j *funcJob) Name() string { return j.name }

func (j *funcJob) Run(ctx context.Context) error { return j.fn(ctx) }

// QueueReader provides read-only access to the job channel
// allowing workers to consume jobs without the ability to enqueue
type QueueReader interface {
	// GetChannel returns a read-only channel for consuming jobs
	GetChannel() <-chan Job
}

// QueueWriter provides write access to the job queue
type QueueWriter interface {
	// EnqueueContext blocks until the job is accepted, the queue is closed,
	// or ctx is done
	EnqueueContext(ctx context.Context, job Job) error

	// Close closes the queue, preventing further submission
	Close()
}
