package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/phrazzld/tasklist/internal/domain"
	"github.com/phrazzld/tasklist/internal/platform/logger"
	"github.com/phrazzld/tasklist/internal/store"
)

// TaskStore implements store.TaskStore on a SQL database.
type TaskStore struct {
	db      *sql.DB
	dialect Dialect
}

// NewTaskStore creates a TaskStore speaking the given dialect.
func NewTaskStore(db *sql.DB, dialect Dialect) *TaskStore {
	return &TaskStore{db: db, dialect: dialect}
}

var _ store.TaskStore = (*TaskStore)(nil)

// GetAllTasks implements store.TaskStore.
func (s *TaskStore) GetAllTasks(ctx context.Context) ([]domain.Task, error) {
	log := logger.FromContext(ctx)

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, description, isCompleted FROM tasks ORDER BY id ASC`)
	if err != nil {
		log.Error("failed to query tasks", "error", err)
		return nil, storeError("task", "list", "query failed", err)
	}
	defer func() { _ = rows.Close() }()

	tasks := make([]domain.Task, 0)
	for rows.Next() {
		var t domain.Task
		if err := rows.Scan(&t.ID, &t.Description, &t.IsCompleted); err != nil {
			log.Error("failed to scan task row", "error", err)
			return nil, storeError("task", "list", "scan failed", err)
		}
		tasks = append(tasks, t)
	}

	if err := rows.Err(); err != nil {
		log.Error("error iterating task rows", "error", err)
		return nil, storeError("task", "list", "iteration failed", err)
	}

	return tasks, nil
}

// InsertTask implements store.TaskStore.
func (s *TaskStore) InsertTask(ctx context.Context, description string) (domain.Task, error) {
	log := logger.FromContext(ctx)

	if err := domain.ValidateDescription(description); err != nil {
		return domain.Task{}, err
	}

	task := domain.Task{Description: description}

	if s.dialect.supportsReturning() {
		query := s.dialect.Rebind(
			`INSERT INTO tasks (description, isCompleted) VALUES (?, ?) RETURNING id`)
		if err := s.db.QueryRowContext(ctx, query, description, false).Scan(&task.ID); err != nil {
			log.Error("failed to insert task", "error", err)
			return domain.Task{}, storeError("task", "insert", "insert failed", err)
		}
		return task, nil
	}

	result, err := s.db.ExecContext(ctx,
		`INSERT INTO tasks (description, isCompleted) VALUES (?, ?)`, description, false)
	if err != nil {
		log.Error("failed to insert task", "error", err)
		return domain.Task{}, storeError("task", "insert", "insert failed", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		log.Error("failed to read inserted task id", "error", err)
		return domain.Task{}, storeError("task", "insert", "reading id failed", err)
	}
	task.ID = id

	return task, nil
}

// UpdateTask implements store.TaskStore. The existence check and the write
// share one transaction.
func (s *TaskStore) UpdateTask(ctx context.Context, task domain.Task) error {
	log := logger.FromContext(ctx).With("task_id", task.ID)

	if err := task.Validate(); err != nil {
		return err
	}

	err := store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx store.DBTX) error {
		var exists int
		err := tx.QueryRowContext(ctx,
			s.dialect.Rebind(`SELECT 1 FROM tasks WHERE id = ?`), task.ID).Scan(&exists)
		if errors.Is(err, sql.ErrNoRows) {
			return store.ErrTaskNotFound
		}
		if err != nil {
			return storeError("task", "update", "lookup failed", err)
		}

		_, err = tx.ExecContext(ctx,
			s.dialect.Rebind(`UPDATE tasks SET description = ?, isCompleted = ? WHERE id = ?`),
			task.Description, task.IsCompleted, task.ID)
		if err != nil {
			return storeError("task", "update", "update failed", err)
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, store.ErrTaskNotFound) {
			log.Debug("task to update not found")
		} else {
			log.Error("failed to update task", "error", err)
		}
		return mapTransactionError(err)
	}

	return nil
}

// DeleteTask implements store.TaskStore.
func (s *TaskStore) DeleteTask(ctx context.Context, task domain.Task) error {
	log := logger.FromContext(ctx)

	result, err := s.db.ExecContext(ctx,
		s.dialect.Rebind(`DELETE FROM tasks WHERE id = ?`), task.ID)
	if err != nil {
		log.Error("failed to delete task", "task_id", task.ID, "error", err)
		return storeError("task", "delete", "delete failed", err)
	}

	if n, err := result.RowsAffected(); err == nil && n == 0 {
		log.Debug("task to delete not found, nothing to do", "task_id", task.ID)
	}

	return nil
}

// DeleteAllTasks implements store.TaskStore.
func (s *TaskStore) DeleteAllTasks(ctx context.Context) error {
	log := logger.FromContext(ctx)

	result, err := s.db.ExecContext(ctx, `DELETE FROM tasks`)
	if err != nil {
		log.Error("failed to delete all tasks", "error", err)
		return storeError("task", "delete_all", "delete failed", err)
	}

	if n, err := result.RowsAffected(); err == nil {
		log.Debug("deleted all tasks", "count", n)
	}

	return nil
}

// storeError maps err and wraps it in a StoreError. Driver errors that fall
// outside the taxonomy are reported as storage failures.
func storeError(entity, operation, message string, err error) error {
	mapped := MapError(err)
	if !store.IsNotFoundError(mapped) &&
		!IsConstraintViolation(mapped) &&
		!store.IsStorageError(mapped) {
		mapped = fmt.Errorf("%w: %w", store.ErrStorage, mapped)
	}
	return store.NewStoreError(entity, operation, message, mapped)
}

// mapTransactionError keeps transaction begin/commit failures inside the
// storage category.
func mapTransactionError(err error) error {
	if errors.Is(err, store.ErrTransactionFailed) && !store.IsStorageError(err) {
		return fmt.Errorf("%w: %w", store.ErrStorage, err)
	}
	return err
}
