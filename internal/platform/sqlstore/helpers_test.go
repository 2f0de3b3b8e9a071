package sqlstore

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/phrazzld/tasklist/internal/platform/logger"
)

// openTestDB opens a migrated in-memory SQLite database that is closed with the test.
func openTestDB(t *testing.T) *sql.DB {
	t.Helper()

	ctx := context.Background()
	log := logger.NewDiscardLogger()

	db, err := Open(ctx, Config{Driver: DialectSQLite, DSN: ":memory:"}, log)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	migrator, err := NewMigrator(db, DialectSQLite, log)
	require.NoError(t, err)
	require.NoError(t, migrator.Up(ctx))

	return db
}
