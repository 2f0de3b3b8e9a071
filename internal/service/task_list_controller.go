package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/phrazzld/tasklist/internal/domain"
	"github.com/phrazzld/tasklist/internal/events"
	"github.com/phrazzld/tasklist/internal/job"
	"github.com/phrazzld/tasklist/internal/platform/logger"
	"github.com/phrazzld/tasklist/internal/store"
)

// Snapshot is an immutable copy of the controller state.
type Snapshot struct {
	Filter        domain.Filter `json:"filter"`
	Tasks         []domain.Task `json:"tasks"`
	FilteredTasks []domain.Task `json:"filtered_tasks"`
	Version       uint64        `json:"version"`
}

// Counts returns the number of tasks in total, completed and pending.
func (s Snapshot) Counts() (total, completed, pending int) {
	for _, t := range s.Tasks {
		if t.IsCompleted {
			completed++
		}
	}
	total = len(s.Tasks)
	return total, completed, total - completed
}

func (s Snapshot) clone() Snapshot {
	s.Tasks = slices.Clone(s.Tasks)
	s.FilteredTasks = slices.Clone(s.FilteredTasks)
	return s
}

// ControllerConfig holds configuration for the task list controller
type ControllerConfig struct {
	// QueueSize is the number of operations that may wait for the executor.
	// If zero or negative, defaults to job.DefaultExecutorQueueSize
	QueueSize int
}

// TaskListController holds the loaded task list and the view derived from it
// under the current filter. It is the only writer of both.
//
// Every operation that touches the store, and every filter change, runs as a
// unit of work on a single serial executor, so a reload can never overwrite
// the result of a later mutation. Calls block until their unit completed and
// return the state that unit committed, which later units cannot alter.
// Readers may be called from any goroutine.
type TaskListController struct {
	store   store.TaskStore
	emitter events.EventEmitter
	logger  *slog.Logger
	exec    *job.Executor

	mu    sync.RWMutex
	state Snapshot

	closeOnce sync.Once
}

// NewTaskListController creates a controller with an empty list and the "all" filter.
// Load must be called to populate the list from the store.
func NewTaskListController(
	taskStore store.TaskStore,
	emitter events.EventEmitter,
	logger *slog.Logger,
	config ControllerConfig,
) (*TaskListController, error) {
	if taskStore == nil {
		return nil, fmt.Errorf("task store cannot be nil")
	}
	if emitter == nil {
		return nil, fmt.Errorf("event emitter cannot be nil")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger cannot be nil")
	}

	logger = logger.With("component", "task_list_controller")

	return &TaskListController{
		store:   taskStore,
		emitter: emitter,
		logger:  logger,
		exec:    job.NewSerialExecutor(config.QueueSize, logger),
		state: Snapshot{
			Filter:        domain.FilterAll,
			Tasks:         []domain.Task{},
			FilteredTasks: []domain.Task{},
		},
	}, nil
}

// Load replaces the list with the contents of the store and refilters it.
func (c *TaskListController) Load(ctx context.Context) (Snapshot, error) {
	return c.run(ctx, "load_tasks", func(ctx context.Context) (Snapshot, error) {
		return c.reload(ctx, "load_tasks", 0)
	})
}

// AddTask inserts a new pending task and reloads the list.
// An empty description is ignored and the current state is returned.
func (c *TaskListController) AddTask(ctx context.Context, description string) (Snapshot, error) {
	if description == "" {
		return c.Snapshot(), nil
	}

	return c.run(ctx, "add_task", func(ctx context.Context) (Snapshot, error) {
		task, err := c.store.InsertTask(ctx, description)
		if err != nil {
			return Snapshot{}, c.fail(ctx, "add_task", 0, err)
		}
		return c.reload(ctx, "add_task", task.ID)
	})
}

// ToggleTaskCompletion persists task with its completion flag flipped and reloads the list.
func (c *TaskListController) ToggleTaskCompletion(ctx context.Context, task domain.Task) (Snapshot, error) {
	return c.run(ctx, "toggle_task", func(ctx context.Context) (Snapshot, error) {
		if err := c.store.UpdateTask(ctx, task.Toggled()); err != nil {
			return Snapshot{}, c.fail(ctx, "toggle_task", task.ID, err)
		}
		return c.reload(ctx, "toggle_task", task.ID)
	})
}

// UpdateTaskDescription persists task with a new description and reloads the list.
// The completion flag and ID are kept. An empty description is ignored.
func (c *TaskListController) UpdateTaskDescription(
	ctx context.Context,
	task domain.Task,
	description string,
) (Snapshot, error) {
	if description == "" {
		return c.Snapshot(), nil
	}

	return c.run(ctx, "update_task_description", func(ctx context.Context) (Snapshot, error) {
		if err := c.store.UpdateTask(ctx, task.WithDescription(description)); err != nil {
			return Snapshot{}, c.fail(ctx, "update_task_description", task.ID, err)
		}
		return c.reload(ctx, "update_task_description", task.ID)
	})
}

// DeleteTask removes task from the store and reloads the list.
func (c *TaskListController) DeleteTask(ctx context.Context, task domain.Task) (Snapshot, error) {
	return c.run(ctx, "delete_task", func(ctx context.Context) (Snapshot, error) {
		if err := c.store.DeleteTask(ctx, task); err != nil {
			return Snapshot{}, c.fail(ctx, "delete_task", task.ID, err)
		}
		return c.reload(ctx, "delete_task", task.ID)
	})
}

// DeleteAllTasks clears the store and empties both lists without reloading.
// The filter selection is kept.
func (c *TaskListController) DeleteAllTasks(ctx context.Context) (Snapshot, error) {
	return c.run(ctx, "delete_all_tasks", func(ctx context.Context) (Snapshot, error) {
		if err := c.store.DeleteAllTasks(ctx); err != nil {
			return Snapshot{}, c.fail(ctx, "delete_all_tasks", 0, err)
		}
		return c.commit(ctx, []domain.Task{}, c.Filter()), nil
	})
}

// SetFilter recomputes the view from the loaded list under filter.
// The store is not consulted.
func (c *TaskListController) SetFilter(ctx context.Context, filter domain.Filter) (Snapshot, error) {
	if !filter.IsValid() {
		return Snapshot{}, NewTaskListError("set_filter", 0, domain.ErrInvalidFilter)
	}

	return c.run(ctx, "set_filter", func(ctx context.Context) (Snapshot, error) {
		return c.commit(ctx, c.Tasks(), filter), nil
	})
}

// ShowAllTasks selects the "all" view.
func (c *TaskListController) ShowAllTasks(ctx context.Context) (Snapshot, error) {
	return c.SetFilter(ctx, domain.FilterAll)
}

// ShowCompletedTasks selects the "completed" view.
func (c *TaskListController) ShowCompletedTasks(ctx context.Context) (Snapshot, error) {
	return c.SetFilter(ctx, domain.FilterCompleted)
}

// ShowPendingTasks selects the "pending" view.
func (c *TaskListController) ShowPendingTasks(ctx context.Context) (Snapshot, error) {
	return c.SetFilter(ctx, domain.FilterPending)
}

// Tasks returns a copy of the full loaded list.
func (c *TaskListController) Tasks() []domain.Task {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return slices.Clone(c.state.Tasks)
}

// FilteredTasks returns a copy of the view under the current filter.
func (c *TaskListController) FilteredTasks() []domain.Task {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return slices.Clone(c.state.FilteredTasks)
}

// Filter returns the current filter.
func (c *TaskListController) Filter() domain.Filter {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state.Filter
}

// Snapshot returns a copy of the whole state.
func (c *TaskListController) Snapshot() Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state.clone()
}

// FindTask returns the loaded task with the given ID.
func (c *TaskListController) FindTask(id int64) (domain.Task, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	for _, t := range c.state.Tasks {
		if t.ID == id {
			return t, nil
		}
	}
	return domain.Task{}, ErrTaskNotFound
}

// Close waits for queued operations to finish and stops the executor.
func (c *TaskListController) Close() {
	c.closeOnce.Do(func() {
		c.exec.Close()
		c.logger.Debug("task list controller closed")
	})
}

// run executes fn as one unit on the serial executor and returns the
// snapshot that unit committed.
func (c *TaskListController) run(
	ctx context.Context,
	operation string,
	fn func(ctx context.Context) (Snapshot, error),
) (Snapshot, error) {
	var committed Snapshot
	err := c.exec.Do(ctx, operation, func(ctx context.Context) error {
		snapshot, err := fn(ctx)
		committed = snapshot
		return err
	})
	if errors.Is(err, job.ErrQueueClosed) {
		return Snapshot{}, NewTaskListError(operation, 0, ErrControllerClosed)
	}
	if err != nil {
		return Snapshot{}, err
	}
	// Do returned the unit's own result, so the unit has finished writing committed.
	return committed, nil
}

// reload fetches the full list and commits it under the current filter.
func (c *TaskListController) reload(ctx context.Context, operation string, taskID int64) (Snapshot, error) {
	tasks, err := c.store.GetAllTasks(ctx)
	if err != nil {
		return Snapshot{}, c.fail(ctx, operation, taskID, fmt.Errorf("reloading tasks: %w", err))
	}
	return c.commit(ctx, tasks, c.Filter()), nil
}

// commit installs a new state, publishes it and returns a copy.
// Only units on the executor call it.
func (c *TaskListController) commit(ctx context.Context, tasks []domain.Task, filter domain.Filter) Snapshot {
	if tasks == nil {
		tasks = []domain.Task{}
	}

	c.mu.Lock()
	c.state = Snapshot{
		Filter:        filter,
		Tasks:         tasks,
		FilteredTasks: filter.Apply(tasks),
		Version:       c.state.Version + 1,
	}
	snapshot := c.state.clone()
	c.mu.Unlock()

	c.publish(ctx, snapshot)
	return snapshot
}

// publish emits the snapshot; handler failures are logged and otherwise ignored.
// Handlers run on the executor and must not call back into the controller.
func (c *TaskListController) publish(ctx context.Context, snapshot Snapshot) {
	log := logger.FromContextOrDefault(ctx, c.logger)

	event, err := events.NewEvent(events.TaskListChanged, snapshot)
	if err != nil {
		log.Error("failed to build task list event", "error", err)
		return
	}

	if err := c.emitter.EmitEvent(ctx, event); err != nil {
		log.Warn("task list observer failed",
			"version", snapshot.Version,
			"error", err)
	}
}

// fail logs the failure and returns it wrapped; state is left untouched.
func (c *TaskListController) fail(ctx context.Context, operation string, taskID int64, err error) error {
	log := logger.FromContextOrDefault(ctx, c.logger)

	attrs := []any{"operation", operation, "error", err}
	if taskID != 0 {
		attrs = append(attrs, "task_id", taskID)
	}

	if store.IsNotFoundError(err) || errors.Is(err, domain.ErrValidation) {
		log.Warn("task list operation rejected", attrs...)
	} else {
		log.Error("task list operation failed", attrs...)
	}

	return NewTaskListError(operation, taskID, err)
}
