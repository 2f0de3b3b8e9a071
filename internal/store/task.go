package store

import (
	"context"

	"github.com/phrazzld/tasklist/internal/domain"
)

// TaskStore defines the interface for task data persistence.
// Every operation is atomic at the single-record or whole-table granularity.
type TaskStore interface {
	// GetAllTasks returns every stored task in insertion order.
	// Returns an empty slice when the store is empty.
	GetAllTasks(ctx context.Context) ([]domain.Task, error)

	// InsertTask creates a new pending task with a fresh unique ID.
	// Returns a validation error if the description is invalid and
	// ErrStorage if the underlying medium is unavailable.
	InsertTask(ctx context.Context, description string) (domain.Task, error)

	// UpdateTask replaces the stored record matching task.ID.
	// Returns ErrTaskNotFound if no record has that ID.
	UpdateTask(ctx context.Context, task domain.Task) error

	// DeleteTask removes the record matching task.ID.
	// Deleting a task that does not exist is not an error.
	DeleteTask(ctx context.Context, task domain.Task) error

	// DeleteAllTasks removes every record.
	DeleteAllTasks(ctx context.Context) error
}
