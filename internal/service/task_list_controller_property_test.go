package service_test

import (
	"context"
	"testing"

	"pgregory.net/rapid"

	"github.com/phrazzld/tasklist/internal/domain"
	"github.com/phrazzld/tasklist/internal/events"
	"github.com/phrazzld/tasklist/internal/platform/logger"
	"github.com/phrazzld/tasklist/internal/platform/sqlstore"
	"github.com/phrazzld/tasklist/internal/service"
)

// TestTaskListController_MirrorsStore checks that after any sequence of
// operations the loaded list equals the store and every view is the
// matching subset of it.
func TestTaskListController_MirrorsStore(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		ctx := context.Background()
		log := logger.NewDiscardLogger()

		db, err := sqlstore.Open(ctx, sqlstore.Config{Driver: sqlstore.DialectSQLite, DSN: ":memory:"}, log)
		if err != nil {
			rt.Fatalf("open: %v", err)
		}
		defer func() { _ = db.Close() }()

		if err := sqlstore.Migrate(ctx, db, sqlstore.DialectSQLite, "up", log); err != nil {
			rt.Fatalf("migrate: %v", err)
		}

		taskStore := sqlstore.NewTaskStore(db, sqlstore.DialectSQLite)
		controller, err := service.NewTaskListController(taskStore, events.NewInMemoryEventEmitter(log), log, service.ControllerConfig{})
		if err != nil {
			rt.Fatalf("controller: %v", err)
		}
		defer controller.Close()

		if _, err := controller.Load(ctx); err != nil {
			rt.Fatalf("load: %v", err)
		}

		filters := []domain.Filter{domain.FilterAll, domain.FilterCompleted, domain.FilterPending}

		steps := rapid.IntRange(1, 25).Draw(rt, "steps")
		for i := 0; i < steps; i++ {
			loaded := controller.Tasks()

			switch op := rapid.IntRange(0, 5).Draw(rt, "op"); {
			case op == 0 || op == 1:
				desc := rapid.StringMatching(`[A-Za-z ]{0,12}`).Draw(rt, "description")
				if _, err := controller.AddTask(ctx, desc); err != nil {
					rt.Fatalf("add %q: %v", desc, err)
				}
			case op == 2 && len(loaded) > 0:
				target := rapid.SampledFrom(loaded).Draw(rt, "delete")
				if _, err := controller.DeleteTask(ctx, target); err != nil {
					rt.Fatalf("delete %d: %v", target.ID, err)
				}
			case op == 3 && len(loaded) > 0:
				target := rapid.SampledFrom(loaded).Draw(rt, "toggle")
				if _, err := controller.ToggleTaskCompletion(ctx, target); err != nil {
					rt.Fatalf("toggle %d: %v", target.ID, err)
				}
			case op == 4:
				filter := rapid.SampledFrom(filters).Draw(rt, "filter")
				if _, err := controller.SetFilter(ctx, filter); err != nil {
					rt.Fatalf("filter %s: %v", filter, err)
				}
			case op == 5 && rapid.IntRange(0, 9).Draw(rt, "clear") == 0:
				if _, err := controller.DeleteAllTasks(ctx); err != nil {
					rt.Fatalf("clear: %v", err)
				}
			}

			stored, err := taskStore.GetAllTasks(ctx)
			if err != nil {
				rt.Fatalf("list: %v", err)
			}
			snap := controller.Snapshot()

			if len(stored) != len(snap.Tasks) {
				rt.Fatalf("controller has %d tasks, store has %d", len(snap.Tasks), len(stored))
			}
			for j := range stored {
				if stored[j] != snap.Tasks[j] {
					rt.Fatalf("task %d differs: controller %+v store %+v", j, snap.Tasks[j], stored[j])
				}
			}

			want := snap.Filter.Apply(snap.Tasks)
			if len(want) != len(snap.FilteredTasks) {
				rt.Fatalf("view under %s has %d tasks, want %d", snap.Filter, len(snap.FilteredTasks), len(want))
			}
			for j := range want {
				if want[j] != snap.FilteredTasks[j] {
					rt.Fatalf("view entry %d differs under %s", j, snap.Filter)
				}
				if !snap.Filter.Matches(snap.FilteredTasks[j]) {
					rt.Fatalf("task %d does not belong in the %s view", snap.FilteredTasks[j].ID, snap.Filter)
				}
			}
		}
	})
}
