package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/phrazzld/tasklist/internal/config"
	"github.com/phrazzld/tasklist/internal/platform/sqlstore"
)

// setupAppDatabase opens the configured database and, when auto migration
// is enabled and migrate is true, applies pending migrations.
func setupAppDatabase(
	ctx context.Context,
	cfg *config.Config,
	logger *slog.Logger,
	migrate bool,
) (*sql.DB, sqlstore.Dialect, error) {
	dialect, err := sqlstore.ParseDialect(cfg.Database.Driver)
	if err != nil {
		return nil, "", err
	}

	db, err := sqlstore.Open(ctx, sqlstore.Config{
		Driver:          dialect,
		DSN:             cfg.Database.URL,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
	}, logger)
	if err != nil {
		return nil, "", fmt.Errorf("failed to connect to database: %w", err)
	}

	if migrate && cfg.Database.AutoMigrate {
		if err := sqlstore.Migrate(ctx, db, dialect, "up", logger); err != nil {
			_ = db.Close()
			return nil, "", fmt.Errorf("failed to apply migrations: %w", err)
		}
	}

	return db, dialect, nil
}
