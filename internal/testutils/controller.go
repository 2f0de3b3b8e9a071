package testutils

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/phrazzld/tasklist/internal/events"
	"github.com/phrazzld/tasklist/internal/platform/logger"
	"github.com/phrazzld/tasklist/internal/platform/sqlstore"
	"github.com/phrazzld/tasklist/internal/service"
)

// NewController returns a loaded controller over db that is closed with the test.
// Extra event handlers are registered before loading.
func NewController(t testing.TB, db *sql.DB, handlers ...events.EventHandler) *service.TaskListController {
	t.Helper()

	log := logger.NewDiscardLogger()
	emitter := events.NewInMemoryEventEmitter(log)
	for _, h := range handlers {
		emitter.RegisterHandler(h)
	}

	controller, err := service.NewTaskListController(
		sqlstore.NewTaskStore(db, sqlstore.DialectSQLite),
		emitter,
		log,
		service.ControllerConfig{},
	)
	require.NoError(t, err)
	t.Cleanup(controller.Close)

	_, err = controller.Load(context.Background())
	require.NoError(t, err)
	return controller
}

// SeedTasks adds one task per description, in order.
func SeedTasks(t testing.TB, controller *service.TaskListController, descriptions ...string) {
	t.Helper()

	for _, d := range descriptions {
		_, err := controller.AddTask(context.Background(), d)
		require.NoError(t, err, "seed %q", d)
	}
}
