package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/phrazzld/tasklist/internal/platform/logger"
)

// TxFn is the body of a transaction. Queries must go through tx.
type TxFn func(ctx context.Context, tx DBTX) error

// RunInTransaction runs fn in a transaction on db. It commits when fn returns
// nil and rolls back otherwise. A panic in fn rolls back and is re-raised.
// Begin and commit failures wrap ErrTransactionFailed.
func RunInTransaction(ctx context.Context, db *sql.DB, fn TxFn) error {
	log := logger.FromContext(ctx)

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		log.Error("failed to begin transaction", slog.String("error", err.Error()))
		return fmt.Errorf("%w: begin: %w", ErrTransactionFailed, err)
	}

	defer func() {
		if p := recover(); p != nil {
			log.Error("transaction body panicked", slog.Any("panic", p))
			_ = rollback(log, tx, fmt.Errorf("panic: %v", p))
			// ALLOW-PANIC: re-raise after rollback
			panic(p)
		}
	}()

	if err := fn(ctx, tx); err != nil {
		return rollback(log, tx, err)
	}

	if err := tx.Commit(); err != nil {
		log.Error("failed to commit transaction", slog.String("error", err.Error()))
		return fmt.Errorf("%w: commit: %w", ErrTransactionFailed, err)
	}
	log.Debug("transaction committed")
	return nil
}

// rollback undoes tx after cause and returns cause, annotated when the
// rollback itself failed.
func rollback(log *slog.Logger, tx *sql.Tx, cause error) error {
	if err := tx.Rollback(); err != nil {
		log.Error("failed to roll back transaction",
			slog.String("rollback_error", err.Error()),
			slog.String("original_error", cause.Error()))
		return fmt.Errorf("%w (rollback failed: %v)", cause, err)
	}
	log.Debug("rolled back transaction", slog.String("cause", cause.Error()))
	return cause
}
