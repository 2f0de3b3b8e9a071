package sqlstore

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"log/slog"

	"github.com/pressly/goose/v3"
	"github.com/pressly/goose/v3/database"
)

// MigrationTableName is the goose version table.
const MigrationTableName = "schema_migrations"

//go:embed migrations/*/*.sql
var migrationsFS embed.FS

// MigrationStatus describes one migration and whether it has been applied.
type MigrationStatus struct {
	Version int64
	Source  string
	Applied bool
}

// Migrator applies the embedded schema migrations for one dialect.
type Migrator struct {
	provider *goose.Provider
	logger   *slog.Logger
}

// NewMigrator creates a Migrator for db using the migrations of dialect d.
func NewMigrator(db *sql.DB, d Dialect, logger *slog.Logger) (*Migrator, error) {
	gooseDialect, err := d.gooseDialect()
	if err != nil {
		return nil, err
	}

	fsys, err := fs.Sub(migrationsFS, "migrations/"+string(d))
	if err != nil {
		return nil, fmt.Errorf("failed to locate %s migrations: %w", d, err)
	}

	versionStore, err := database.NewStore(gooseDialect, MigrationTableName)
	if err != nil {
		return nil, fmt.Errorf("failed to create migration version store: %w", err)
	}

	logger = logger.With("component", "migrations", "dialect", string(d))

	provider, err := goose.NewProvider("", db, fsys,
		goose.WithStore(versionStore),
		goose.WithLogger(&slogGooseLogger{logger: logger}),
		goose.WithVerbose(true),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create migration provider: %w", err)
	}

	return &Migrator{provider: provider, logger: logger}, nil
}

// Up applies every pending migration.
func (m *Migrator) Up(ctx context.Context) error {
	results, err := m.provider.Up(ctx)
	if err != nil {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}
	m.logger.Info("migrations applied", "count", len(results))
	return nil
}

// Down rolls back the most recent migration.
func (m *Migrator) Down(ctx context.Context) error {
	result, err := m.provider.Down(ctx)
	if err != nil {
		return fmt.Errorf("failed to roll back migration: %w", err)
	}
	if result != nil && result.Source != nil {
		m.logger.Info("migration rolled back", "version", result.Source.Version)
	}
	return nil
}

// Reset rolls back every applied migration.
func (m *Migrator) Reset(ctx context.Context) error {
	results, err := m.provider.DownTo(ctx, 0)
	if err != nil {
		return fmt.Errorf("failed to reset migrations: %w", err)
	}
	m.logger.Info("migrations reset", "count", len(results))
	return nil
}

// Version returns the current schema version, 0 when nothing is applied.
func (m *Migrator) Version(ctx context.Context) (int64, error) {
	version, err := m.provider.GetDBVersion(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to read schema version: %w", err)
	}
	return version, nil
}

// Status lists every known migration in version order.
func (m *Migrator) Status(ctx context.Context) ([]MigrationStatus, error) {
	statuses, err := m.provider.Status(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read migration status: %w", err)
	}

	out := make([]MigrationStatus, 0, len(statuses))
	for _, s := range statuses {
		out = append(out, MigrationStatus{
			Version: s.Source.Version,
			Source:  s.Source.Path,
			Applied: s.State == goose.StateApplied,
		})
	}
	return out, nil
}

// Migrate runs a migration command by name: up, down, reset, status or version.
func Migrate(ctx context.Context, db *sql.DB, d Dialect, command string, logger *slog.Logger) error {
	m, err := NewMigrator(db, d, logger)
	if err != nil {
		return err
	}

	switch command {
	case "up":
		return m.Up(ctx)
	case "down":
		return m.Down(ctx)
	case "reset":
		return m.Reset(ctx)
	case "version":
		version, err := m.Version(ctx)
		if err != nil {
			return err
		}
		m.logger.Info("current schema version", "version", version)
		return nil
	case "status":
		statuses, err := m.Status(ctx)
		if err != nil {
			return err
		}
		for _, s := range statuses {
			m.logger.Info("migration status",
				"version", s.Version,
				"source", s.Source,
				"applied", s.Applied)
		}
		return nil
	default:
		return fmt.Errorf("unknown migration command %q", command)
	}
}

func (d Dialect) gooseDialect() (database.Dialect, error) {
	switch d {
	case DialectSQLite:
		return database.DialectSQLite3, nil
	case DialectPostgres:
		return database.DialectPostgres, nil
	case DialectMySQL:
		return database.DialectMySQL, nil
	default:
		return "", fmt.Errorf("unsupported dialect %q", d)
	}
}

// slogGooseLogger adapts slog to the goose.Logger interface.
type slogGooseLogger struct {
	logger *slog.Logger
}

// Printf forwards goose progress messages at info level.
func (l *slogGooseLogger) Printf(format string, v ...interface{}) {
	l.logger.Info(fmt.Sprintf(format, v...))
}

// Fatalf logs at error level. It does not exit; the error is returned to the caller.
func (l *slogGooseLogger) Fatalf(format string, v ...interface{}) {
	l.logger.Error(fmt.Sprintf(format, v...))
}
