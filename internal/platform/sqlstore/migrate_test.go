package sqlstore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phrazzld/tasklist/internal/platform/logger"
)

func TestMigrator(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	log := logger.NewDiscardLogger()

	db, err := Open(ctx, Config{Driver: DialectSQLite, DSN: ":memory:"}, log)
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	migrator, err := NewMigrator(db, DialectSQLite, log)
	require.NoError(t, err)

	statuses, err := migrator.Status(ctx)
	require.NoError(t, err)
	require.Len(t, statuses, 2)
	for _, s := range statuses {
		assert.False(t, s.Applied)
	}

	require.NoError(t, migrator.Up(ctx))
	version, err := migrator.Version(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), version)

	// applying again is a no-op
	require.NoError(t, migrator.Up(ctx))

	var name string
	err = db.QueryRowContext(ctx,
		`SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?`, MigrationTableName).Scan(&name)
	require.NoError(t, err)
	assert.Equal(t, MigrationTableName, name)

	require.NoError(t, migrator.Down(ctx))
	version, err = migrator.Version(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), version)

	require.NoError(t, migrator.Reset(ctx))
	version, err = migrator.Version(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), version)

	require.NoError(t, Migrate(ctx, db, DialectSQLite, "up", log))
	require.NoError(t, Migrate(ctx, db, DialectSQLite, "status", log))
	require.NoError(t, Migrate(ctx, db, DialectSQLite, "version", log))
	assert.Error(t, Migrate(ctx, db, DialectSQLite, "sideways", log))
}

func TestNewMigrator_UnknownDialect(t *testing.T) {
	_, err := NewMigrator(nil, Dialect("oracle"), logger.NewDiscardLogger())
	assert.Error(t, err)
}
