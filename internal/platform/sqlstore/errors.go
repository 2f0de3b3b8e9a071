package sqlstore

import (
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"net"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/phrazzld/tasklist/internal/store"
)

// PostgreSQL error codes
const (
	pgUniqueViolationCode     = "23505"
	pgForeignKeyViolationCode = "23503"
	pgCheckViolationCode      = "23514"
	pgNotNullViolationCode    = "23502"

	// pgConnectionExceptionClass covers every 08xxx connection error
	pgConnectionExceptionClass = "08"
)

// MySQL error numbers
const (
	mysqlDuplicateEntry    = 1062
	mysqlBadNull           = 1048
	mysqlNoReferencedRow   = 1452
	mysqlCheckViolated     = 3819
	mysqlServerShutdown    = 1053
	mysqlTooManyConnection = 1040
)

// MapError maps a driver error to the store error taxonomy.
// Constraint violations map to store.ErrInvalidEntity; connection and IO
// failures map to store.ErrStorage. The original error is kept in the message.
func MapError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: %v", store.ErrNotFound, err)
	}

	if errors.Is(err, sql.ErrConnDone) || errors.Is(err, driver.ErrBadConn) ||
		errors.Is(err, mysql.ErrInvalidConn) {
		return fmt.Errorf("%w: %v", store.ErrStorage, err)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch {
		case pgErr.Code == pgUniqueViolationCode,
			pgErr.Code == pgForeignKeyViolationCode,
			pgErr.Code == pgCheckViolationCode,
			pgErr.Code == pgNotNullViolationCode:
			return fmt.Errorf("%w: constraint violation (%s): %v",
				store.ErrInvalidEntity, pgErr.ConstraintName, err)
		case len(pgErr.Code) >= 2 && pgErr.Code[:2] == pgConnectionExceptionClass:
			return fmt.Errorf("%w: %v", store.ErrStorage, err)
		}
		return err
	}

	var pgConnErr *pgconn.ConnectError
	if errors.As(err, &pgConnErr) {
		return fmt.Errorf("%w: %v", store.ErrStorage, err)
	}

	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		switch myErr.Number {
		case mysqlDuplicateEntry, mysqlBadNull, mysqlNoReferencedRow, mysqlCheckViolated:
			return fmt.Errorf("%w: constraint violation: %v", store.ErrInvalidEntity, err)
		case mysqlServerShutdown, mysqlTooManyConnection:
			return fmt.Errorf("%w: %v", store.ErrStorage, err)
		}
		return err
	}

	var liteErr *sqlite.Error
	if errors.As(err, &liteErr) {
		switch liteErr.Code() & 0xff {
		case sqlite3.SQLITE_CONSTRAINT:
			return fmt.Errorf("%w: constraint violation: %v", store.ErrInvalidEntity, err)
		case sqlite3.SQLITE_BUSY, sqlite3.SQLITE_LOCKED, sqlite3.SQLITE_IOERR,
			sqlite3.SQLITE_CORRUPT, sqlite3.SQLITE_FULL, sqlite3.SQLITE_CANTOPEN,
			sqlite3.SQLITE_READONLY, sqlite3.SQLITE_NOTADB:
			return fmt.Errorf("%w: %v", store.ErrStorage, err)
		}
		return err
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return fmt.Errorf("%w: %v", store.ErrStorage, err)
	}

	return err
}

// IsConstraintViolation reports whether err was mapped from a constraint violation.
func IsConstraintViolation(err error) bool {
	return errors.Is(err, store.ErrInvalidEntity)
}
