package service_test

import (
	"context"
	"sync"

	"github.com/phrazzld/tasklist/internal/domain"
	"github.com/phrazzld/tasklist/internal/store"
)

// MockTaskStore is an in-memory store.TaskStore. The Fn fields, when set,
// replace the default behaviour of the matching method.
type MockTaskStore struct {
	mu     sync.Mutex
	tasks  []domain.Task
	nextID int64
	calls  map[string]int

	GetAllTasksFn    func(ctx context.Context) ([]domain.Task, error)
	InsertTaskFn     func(ctx context.Context, description string) (domain.Task, error)
	UpdateTaskFn     func(ctx context.Context, task domain.Task) error
	DeleteTaskFn     func(ctx context.Context, task domain.Task) error
	DeleteAllTasksFn func(ctx context.Context) error
}

func NewMockTaskStore() *MockTaskStore {
	return &MockTaskStore{nextID: 1, calls: make(map[string]int)}
}

var _ store.TaskStore = (*MockTaskStore)(nil)

func (m *MockTaskStore) record(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls[name]++
}

// Calls returns how many times the named method was invoked.
func (m *MockTaskStore) Calls(name string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[name]
}

func (m *MockTaskStore) GetAllTasks(ctx context.Context) ([]domain.Task, error) {
	m.record("GetAllTasks")
	if m.GetAllTasksFn != nil {
		return m.GetAllTasksFn(ctx)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.Task, len(m.tasks))
	copy(out, m.tasks)
	return out, nil
}

func (m *MockTaskStore) InsertTask(ctx context.Context, description string) (domain.Task, error) {
	m.record("InsertTask")
	if m.InsertTaskFn != nil {
		return m.InsertTaskFn(ctx, description)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	t := domain.Task{ID: m.nextID, Description: description}
	m.nextID++
	m.tasks = append(m.tasks, t)
	return t, nil
}

func (m *MockTaskStore) UpdateTask(ctx context.Context, task domain.Task) error {
	m.record("UpdateTask")
	if m.UpdateTaskFn != nil {
		return m.UpdateTaskFn(ctx, task)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.tasks {
		if m.tasks[i].ID == task.ID {
			m.tasks[i] = task
			return nil
		}
	}
	return store.ErrTaskNotFound
}

func (m *MockTaskStore) DeleteTask(ctx context.Context, task domain.Task) error {
	m.record("DeleteTask")
	if m.DeleteTaskFn != nil {
		return m.DeleteTaskFn(ctx, task)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.tasks {
		if m.tasks[i].ID == task.ID {
			m.tasks = append(m.tasks[:i], m.tasks[i+1:]...)
			return nil
		}
	}
	return nil
}

func (m *MockTaskStore) DeleteAllTasks(ctx context.Context) error {
	m.record("DeleteAllTasks")
	if m.DeleteAllTasksFn != nil {
		return m.DeleteAllTasksFn(ctx)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.tasks = nil
	return nil
}
