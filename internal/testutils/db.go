package testutils

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/phrazzld/tasklist/internal/platform/logger"
	"github.com/phrazzld/tasklist/internal/platform/sqlstore"
)

// OpenSQLite opens a migrated in-memory SQLite database closed with the test.
func OpenSQLite(t testing.TB) *sql.DB {
	t.Helper()

	ctx := context.Background()
	log := logger.NewDiscardLogger()

	db, err := sqlstore.Open(ctx, sqlstore.Config{Driver: sqlstore.DialectSQLite, DSN: ":memory:"}, log)
	require.NoError(t, err, "open in-memory sqlite")
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, sqlstore.Migrate(ctx, db, sqlstore.DialectSQLite, "up", log), "migrate sqlite")
	return db
}

// CountTasks returns the number of rows in the tasks table.
func CountTasks(t testing.TB, db *sql.DB) int {
	t.Helper()

	var n int
	require.NoError(t, db.QueryRowContext(context.Background(), "SELECT COUNT(*) FROM tasks").Scan(&n))
	return n
}
