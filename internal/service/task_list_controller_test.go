package service_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phrazzld/tasklist/internal/domain"
	"github.com/phrazzld/tasklist/internal/events"
	"github.com/phrazzld/tasklist/internal/platform/logger"
	"github.com/phrazzld/tasklist/internal/service"
	"github.com/phrazzld/tasklist/internal/store"
	"github.com/phrazzld/tasklist/internal/testutils"
)

type controllerFixture struct {
	controller *service.TaskListController
	store      *MockTaskStore
	events     *testutils.ChannelHandler
}

func newControllerFixture(t *testing.T) controllerFixture {
	t.Helper()

	log := logger.NewDiscardLogger()
	taskStore := NewMockTaskStore()
	emitter := events.NewInMemoryEventEmitter(log)
	observed := testutils.NewChannelHandler(64, log)
	emitter.RegisterHandler(observed)

	controller, err := service.NewTaskListController(taskStore, emitter, log, service.ControllerConfig{})
	require.NoError(t, err)
	t.Cleanup(controller.Close)

	_, err = controller.Load(context.Background())
	require.NoError(t, err)
	observed.Drain()

	return controllerFixture{controller: controller, store: taskStore, events: observed}
}

// must fails the test when an operation returns an error and yields its snapshot.
func must(t *testing.T) func(service.Snapshot, error) service.Snapshot {
	t.Helper()
	return func(snap service.Snapshot, err error) service.Snapshot {
		t.Helper()
		require.NoError(t, err)
		return snap
	}
}

func TestNewTaskListController(t *testing.T) {
	log := logger.NewDiscardLogger()
	emitter := events.NewInMemoryEventEmitter(log)

	_, err := service.NewTaskListController(nil, emitter, log, service.ControllerConfig{})
	assert.Error(t, err)

	_, err = service.NewTaskListController(NewMockTaskStore(), nil, log, service.ControllerConfig{})
	assert.Error(t, err)

	_, err = service.NewTaskListController(NewMockTaskStore(), emitter, nil, service.ControllerConfig{})
	assert.Error(t, err)

	controller, err := service.NewTaskListController(NewMockTaskStore(), emitter, log, service.ControllerConfig{})
	require.NoError(t, err)
	defer controller.Close()

	assert.Equal(t, domain.FilterAll, controller.Filter())
	assert.Empty(t, controller.Tasks())
	assert.NotNil(t, controller.Tasks())
	assert.NotNil(t, controller.FilteredTasks())
}

func TestTaskListController_Load(t *testing.T) {
	ctx := context.Background()
	log := logger.NewDiscardLogger()

	taskStore := NewMockTaskStore()
	_, _ = taskStore.InsertTask(ctx, "A")
	b, _ := taskStore.InsertTask(ctx, "B")
	require.NoError(t, taskStore.UpdateTask(ctx, b.Toggled()))

	controller, err := service.NewTaskListController(taskStore, events.NewInMemoryEventEmitter(log), log, service.ControllerConfig{})
	require.NoError(t, err)
	defer controller.Close()

	snap := must(t)(controller.Load(ctx))

	assert.Len(t, controller.Tasks(), 2)
	assert.Equal(t, controller.Tasks(), controller.FilteredTasks())
	assert.Equal(t, uint64(1), snap.Version)
	assert.Equal(t, controller.Snapshot(), snap)
}

func TestTaskListController_BuyMilkScenario(t *testing.T) {
	ctx := context.Background()
	f := newControllerFixture(t)
	c := f.controller

	must(t)(c.AddTask(ctx, "Buy milk"))

	milk := domain.Task{ID: 1, Description: "Buy milk", IsCompleted: false}
	assert.Equal(t, []domain.Task{milk}, c.Tasks())
	assert.Equal(t, []domain.Task{milk}, c.FilteredTasks())

	must(t)(c.ToggleTaskCompletion(ctx, milk))
	done := milk.WithCompleted(true)
	assert.Equal(t, []domain.Task{done}, c.Tasks())

	must(t)(c.ShowCompletedTasks(ctx))
	assert.Equal(t, domain.FilterCompleted, c.Filter())
	assert.Equal(t, []domain.Task{done}, c.FilteredTasks())

	must(t)(c.ShowPendingTasks(ctx))
	assert.Empty(t, c.FilteredTasks())
	assert.Equal(t, []domain.Task{done}, c.Tasks())

	// the filter survives mutations
	must(t)(c.AddTask(ctx, "Buy bread"))
	assert.Equal(t, domain.FilterPending, c.Filter())
	require.Len(t, c.FilteredTasks(), 1)
	assert.Equal(t, "Buy bread", c.FilteredTasks()[0].Description)
}

func TestTaskListController_ReturnsCommittedSnapshot(t *testing.T) {
	ctx := context.Background()
	f := newControllerFixture(t)
	c := f.controller

	added := must(t)(c.AddTask(ctx, "Buy milk"))
	assert.Equal(t, c.Snapshot(), added)

	// returned slices are copies
	added.Tasks[0].Description = "mutated"
	assert.Equal(t, "Buy milk", c.Tasks()[0].Description)

	pending := must(t)(c.ShowPendingTasks(ctx))
	assert.Equal(t, added.Version+1, pending.Version)
	assert.Equal(t, domain.FilterPending, pending.Filter)

	// later commits do not reach snapshots already handed out
	must(t)(c.AddTask(ctx, "Buy bread"))
	assert.Len(t, added.Tasks, 1)
	assert.Len(t, pending.FilteredTasks, 1)

	cleared := must(t)(c.DeleteAllTasks(ctx))
	assert.Empty(t, cleared.Tasks)
	assert.Equal(t, domain.FilterPending, cleared.Filter)
	assert.Len(t, added.Tasks, 1)
}

func TestTaskListController_LongDescription(t *testing.T) {
	ctx := context.Background()
	f := newControllerFixture(t)

	long := strings.Repeat("a", 1001)
	snap := must(t)(f.controller.AddTask(ctx, long))

	require.Len(t, snap.Tasks, 1)
	assert.Equal(t, long, snap.Tasks[0].Description)
	assert.Equal(t, snap.Tasks, f.controller.Tasks())
}

func TestTaskListController_DeleteAllKeepsFilter(t *testing.T) {
	ctx := context.Background()
	f := newControllerFixture(t)
	c := f.controller

	must(t)(c.AddTask(ctx, "A"))
	must(t)(c.AddTask(ctx, "B"))
	must(t)(c.ShowPendingTasks(ctx))

	getAllBefore := f.store.Calls("GetAllTasks")
	must(t)(c.DeleteAllTasks(ctx))

	assert.Empty(t, c.Tasks())
	assert.Empty(t, c.FilteredTasks())
	assert.NotNil(t, c.Tasks())
	assert.Equal(t, domain.FilterPending, c.Filter())
	assert.Equal(t, getAllBefore, f.store.Calls("GetAllTasks"), "delete all must not reload")

	remaining, err := f.store.GetAllTasks(ctx)
	require.NoError(t, err)
	assert.Empty(t, remaining)
}

func TestTaskListController_UpdateDescription(t *testing.T) {
	ctx := context.Background()
	f := newControllerFixture(t)
	c := f.controller

	must(t)(c.AddTask(ctx, "Buy milk"))
	milk, err := c.FindTask(1)
	require.NoError(t, err)
	must(t)(c.ToggleTaskCompletion(ctx, milk))
	milk, err = c.FindTask(1)
	require.NoError(t, err)

	must(t)(c.UpdateTaskDescription(ctx, milk, "Buy oat milk"))

	edited, err := c.FindTask(1)
	require.NoError(t, err)
	assert.Equal(t, domain.Task{ID: 1, Description: "Buy oat milk", IsCompleted: true}, edited)

	t.Run("empty description is ignored", func(t *testing.T) {
		before := f.store.Calls("UpdateTask")
		version := c.Snapshot().Version

		snap := must(t)(c.UpdateTaskDescription(ctx, edited, ""))

		assert.Equal(t, before, f.store.Calls("UpdateTask"))
		assert.Equal(t, version, c.Snapshot().Version)
		assert.Equal(t, version, snap.Version)
	})

	t.Run("missing task", func(t *testing.T) {
		_, err := c.UpdateTaskDescription(ctx, domain.Task{ID: 42, Description: "x"}, "y")
		assert.ErrorIs(t, err, store.ErrTaskNotFound)
		assert.ErrorIs(t, err, service.ErrTaskNotFound)
	})
}

func TestTaskListController_EmptyAddIsNoOp(t *testing.T) {
	ctx := context.Background()
	f := newControllerFixture(t)

	before := f.controller.Snapshot()
	snap := must(t)(f.controller.AddTask(ctx, ""))

	assert.Equal(t, before, snap)
	assert.Equal(t, before, f.controller.Snapshot())
	assert.Zero(t, f.store.Calls("InsertTask"))
	assert.Zero(t, f.events.Drain())
}

func TestTaskListController_DeleteTask(t *testing.T) {
	ctx := context.Background()
	f := newControllerFixture(t)
	c := f.controller

	must(t)(c.AddTask(ctx, "A"))
	must(t)(c.AddTask(ctx, "B"))

	a, err := c.FindTask(1)
	require.NoError(t, err)
	must(t)(c.DeleteTask(ctx, a))

	assert.Equal(t, []domain.Task{{ID: 2, Description: "B"}}, c.Tasks())

	_, err = c.FindTask(1)
	assert.ErrorIs(t, err, service.ErrTaskNotFound)
}

func TestTaskListController_ShowAllIsIdempotent(t *testing.T) {
	ctx := context.Background()
	f := newControllerFixture(t)
	c := f.controller

	must(t)(c.AddTask(ctx, "A"))
	must(t)(c.AddTask(ctx, "B"))
	b, _ := c.FindTask(2)
	must(t)(c.ToggleTaskCompletion(ctx, b))

	first := must(t)(c.ShowAllTasks(ctx)).FilteredTasks
	must(t)(c.ShowAllTasks(ctx))

	assert.Equal(t, first, c.FilteredTasks())
	assert.Equal(t, c.Tasks(), c.FilteredTasks())
}

func TestTaskListController_SetFilter(t *testing.T) {
	ctx := context.Background()
	f := newControllerFixture(t)

	_, err := f.controller.SetFilter(ctx, domain.Filter("urgent"))
	assert.ErrorIs(t, err, domain.ErrInvalidFilter)
	assert.Equal(t, domain.FilterAll, f.controller.Filter())

	getAll := f.store.Calls("GetAllTasks")
	must(t)(f.controller.SetFilter(ctx, domain.FilterCompleted))
	assert.Equal(t, getAll, f.store.Calls("GetAllTasks"), "filter changes must not touch the store")
}

func TestTaskListController_FailureLeavesStateUnchanged(t *testing.T) {
	ctx := context.Background()
	storageErr := fmt.Errorf("%w: disk unplugged", store.ErrStorage)

	addB := func(c *service.TaskListController, _ domain.Task) error {
		_, err := c.AddTask(ctx, "B")
		return err
	}

	tests := []struct {
		name   string
		inject func(m *MockTaskStore)
		act    func(c *service.TaskListController, seeded domain.Task) error
	}{
		{
			name: "insert fails",
			inject: func(m *MockTaskStore) {
				m.InsertTaskFn = func(context.Context, string) (domain.Task, error) {
					return domain.Task{}, storageErr
				}
			},
			act: addB,
		},
		{
			name: "update fails",
			inject: func(m *MockTaskStore) {
				m.UpdateTaskFn = func(context.Context, domain.Task) error { return storageErr }
			},
			act: func(c *service.TaskListController, seeded domain.Task) error {
				_, err := c.ToggleTaskCompletion(ctx, seeded)
				return err
			},
		},
		{
			name: "delete fails",
			inject: func(m *MockTaskStore) {
				m.DeleteTaskFn = func(context.Context, domain.Task) error { return storageErr }
			},
			act: func(c *service.TaskListController, seeded domain.Task) error {
				_, err := c.DeleteTask(ctx, seeded)
				return err
			},
		},
		{
			name: "delete all fails",
			inject: func(m *MockTaskStore) {
				m.DeleteAllTasksFn = func(context.Context) error { return storageErr }
			},
			act: func(c *service.TaskListController, _ domain.Task) error {
				_, err := c.DeleteAllTasks(ctx)
				return err
			},
		},
		{
			name: "reload fails after write",
			inject: func(m *MockTaskStore) {
				m.GetAllTasksFn = func(context.Context) ([]domain.Task, error) { return nil, storageErr }
			},
			act: addB,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newControllerFixture(t)
			must(t)(f.controller.AddTask(ctx, "A"))
			seeded, err := f.controller.FindTask(1)
			require.NoError(t, err)
			f.events.Drain()

			before := f.controller.Snapshot()
			tt.inject(f.store)

			err = tt.act(f.controller, seeded)
			require.Error(t, err)
			assert.ErrorIs(t, err, store.ErrStorage)

			var listErr *service.TaskListError
			assert.True(t, errors.As(err, &listErr))

			assert.Equal(t, before, f.controller.Snapshot())
			assert.Zero(t, f.events.Drain(), "failed operations must not publish")
		})
	}
}

func TestTaskListController_PublishesSnapshots(t *testing.T) {
	ctx := context.Background()
	f := newControllerFixture(t)

	must(t)(f.controller.AddTask(ctx, "Buy milk"))
	pending := must(t)(f.controller.ShowPendingTasks(ctx))

	var versions []uint64
	for i := 0; i < 2; i++ {
		event := <-f.events.Events()
		assert.Equal(t, events.TaskListChanged, event.Type)

		var snap service.Snapshot
		require.NoError(t, event.UnmarshalPayload(&snap))
		versions = append(versions, snap.Version)

		if i == 1 {
			assert.Equal(t, pending, snap)
			assert.Equal(t, []domain.Task{{ID: 1, Description: "Buy milk"}}, snap.FilteredTasks)
		}
	}
	assert.Equal(t, versions[0]+1, versions[1])
}

func TestTaskListController_ObserverPanicDoesNotFailCommit(t *testing.T) {
	ctx := context.Background()
	log := logger.NewDiscardLogger()
	emitter := events.NewInMemoryEventEmitter(log)
	emitter.RegisterHandler(events.HandlerFunc(func(context.Context, *events.Event) error {
		panic("observer bug")
	}))

	controller, err := service.NewTaskListController(NewMockTaskStore(), emitter, log, service.ControllerConfig{})
	require.NoError(t, err)
	defer controller.Close()

	snap := must(t)(controller.AddTask(ctx, "Buy milk"))
	assert.Len(t, snap.Tasks, 1)
	assert.Equal(t, snap, controller.Snapshot())
}

func TestTaskListController_ConcurrentAdds(t *testing.T) {
	ctx := context.Background()
	f := newControllerFixture(t)

	const n = 25
	var mu sync.Mutex
	seen := make(map[uint64]bool)

	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			snap, err := f.controller.AddTask(ctx, fmt.Sprintf("task %d", i))
			assert.NoError(t, err)

			mu.Lock()
			defer mu.Unlock()
			assert.False(t, seen[snap.Version], "version %d returned twice", snap.Version)
			seen[snap.Version] = true
		}(i)
	}
	wg.Wait()

	stored, err := f.store.GetAllTasks(ctx)
	require.NoError(t, err)
	assert.Len(t, f.controller.Tasks(), n)
	assert.Equal(t, stored, f.controller.Tasks())
	assert.Len(t, seen, n)
}

func TestTaskListController_Close(t *testing.T) {
	ctx := context.Background()
	f := newControllerFixture(t)

	f.controller.Close()
	f.controller.Close()

	_, err := f.controller.AddTask(ctx, "late")
	assert.ErrorIs(t, err, service.ErrControllerClosed)
}

func TestSnapshot_Counts(t *testing.T) {
	snap := service.Snapshot{Tasks: []domain.Task{
		{ID: 1, Description: "a", IsCompleted: true},
		{ID: 2, Description: "b"},
		{ID: 3, Description: "c"},
	}}

	total, completed, pending := snap.Counts()
	assert.Equal(t, 3, total)
	assert.Equal(t, 1, completed)
	assert.Equal(t, 2, pending)
}
