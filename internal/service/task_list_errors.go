package service

import (
	"errors"
	"fmt"

	"github.com/phrazzld/tasklist/internal/store"
)

// ErrTaskNotFound indicates that no task with the requested ID is loaded.
// It is the store sentinel so callers can check either package.
var ErrTaskNotFound = store.ErrTaskNotFound

// ErrControllerClosed is returned by operations issued after Close.
var ErrControllerClosed = errors.New("task list controller is closed")

// TaskListError wraps errors from the task list controller with context.
type TaskListError struct {
	// Operation is the operation that failed (e.g., "add_task", "toggle_task")
	Operation string
	// TaskID is the ID of the task involved, zero when not applicable
	TaskID int64
	// Err is the underlying error that caused the failure
	Err error
}

// Error implements the error interface for TaskListError.
func (e *TaskListError) Error() string {
	if e.TaskID != 0 {
		return fmt.Sprintf("task list %s failed for task %d: %v", e.Operation, e.TaskID, e.Err)
	}
	return fmt.Sprintf("task list %s failed: %v", e.Operation, e.Err)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *TaskListError) Unwrap() error {
	return e.Err
}

// NewTaskListError creates a new TaskListError, or returns nil if err is nil.
func NewTaskListError(operation string, taskID int64, err error) error {
	if err == nil {
		return nil
	}
	return &TaskListError{Operation: operation, TaskID: taskID, Err: err}
}
