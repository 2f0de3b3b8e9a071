// Package sqlstore implements the store interfaces on top of database/sql.
//
// Three dialects are supported: SQLite (modernc.org/sqlite, the default,
// backed by the local task_db file), PostgreSQL (pgx stdlib driver) and MySQL
// (go-sql-driver/mysql). Queries are written once with '?' placeholders and
// rebound per dialect. The schema is managed with goose migrations embedded
// in the binary, one directory per dialect.
//
// Driver errors are translated by MapError into the store error taxonomy so
// that callers can rely on errors.Is(err, store.ErrStorage) and friends
// regardless of the backend in use.
package sqlstore
