package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"

	// Database drivers
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"
)

// DefaultSQLitePath is the database file used when no DSN is configured.
const DefaultSQLitePath = "task_db"

// Config describes how to reach the database.
type Config struct {
	Driver          Dialect
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	PingTimeout     time.Duration
}

// Open connects to the database described by cfg, applies pool settings and
// verifies the connection with a ping.
func Open(ctx context.Context, cfg Config, logger *slog.Logger) (*sql.DB, error) {
	if cfg.Driver == "" {
		cfg.Driver = DialectSQLite
	}

	dsn, err := normalizeDSN(cfg.Driver, cfg.DSN)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open(cfg.Driver.DriverName(), dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}

	configurePool(db, cfg)

	timeout := cfg.PingTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, MapError(fmt.Errorf("failed to ping database: %w", err))
	}

	logger.Info("database connection established",
		"driver", string(cfg.Driver),
		"max_open_conns", db.Stats().MaxOpenConnections)
	return db, nil
}

// configurePool applies connection pool limits. SQLite is always pinned to
// a single connection so that writers never contend for the file lock and
// in-memory databases are shared by every query.
func configurePool(db *sql.DB, cfg Config) {
	if cfg.Driver == DialectSQLite {
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
		db.SetConnMaxLifetime(0)
		return
	}

	maxOpen := cfg.MaxOpenConns
	if maxOpen <= 0 {
		maxOpen = 10
	}
	maxIdle := cfg.MaxIdleConns
	if maxIdle <= 0 {
		maxIdle = 5
	}
	lifetime := cfg.ConnMaxLifetime
	if lifetime <= 0 {
		lifetime = 5 * time.Minute
	}

	db.SetMaxOpenConns(maxOpen)
	db.SetMaxIdleConns(maxIdle)
	db.SetConnMaxLifetime(lifetime)
}

// normalizeDSN fills in defaults and the driver options the stores rely on.
func normalizeDSN(d Dialect, dsn string) (string, error) {
	switch d {
	case DialectSQLite:
		return sqliteDSN(dsn), nil
	case DialectMySQL:
		mcfg, err := mysql.ParseDSN(dsn)
		if err != nil {
			return "", fmt.Errorf("invalid mysql dsn: %w", err)
		}
		mcfg.ParseTime = true
		mcfg.ClientFoundRows = true
		mcfg.Loc = time.UTC
		return mcfg.FormatDSN(), nil
	case DialectPostgres:
		if dsn == "" {
			return "", fmt.Errorf("postgres dsn is required")
		}
		return dsn, nil
	default:
		return "", fmt.Errorf("unsupported dialect %q", d)
	}
}

// sqliteDSN turns a file path (or ":memory:") into a modernc DSN with the
// pragmas every connection needs.
func sqliteDSN(dsn string) string {
	if dsn == "" {
		dsn = DefaultSQLitePath
	}

	pragmas := []string{"foreign_keys(1)", "busy_timeout(5000)"}
	if !strings.Contains(dsn, ":memory:") && !strings.Contains(dsn, "mode=memory") {
		pragmas = append(pragmas, "journal_mode(WAL)")
	}

	params := url.Values{}
	for _, p := range pragmas {
		params.Add("_pragma", p)
	}

	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	if !strings.HasPrefix(dsn, "file:") {
		dsn = "file:" + dsn
	}
	return dsn + sep + params.Encode()
}
