// Package sqlstore implements the repository interfaces on a sqlx connection pool.
//
// Two drivers are supported through database/sql:
//
//	pgx     PostgreSQL (github.com/jackc/pgx/v5/stdlib), used in production
//	sqlite  modernc.org/sqlite (pure Go), used for local development and tests
//
// All queries use $N placeholders, which both drivers accept.
package sqlstore

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

const (
	DriverPostgres = "pgx"
	DriverSQLite   = "sqlite"
)

// sqlitePragmas are applied to every pooled sqlite connection via the DSN.
// Foreign keys are off by default in SQLite; ON DELETE CASCADE needs them.
const sqlitePragmas = "_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_time_format=sqlite"

// DB owns the connection pool. It is created once by the process and handed
// to each store; nothing in this package keeps a global handle.
type DB struct {
	conn   *sqlx.DB
	driver string
}

// Open connects to the database and verifies the connection with a ping.
// It does not touch the schema; run Migrate (or cmd/migrate) for that.
func Open(ctx context.Context, driver, dsn string) (*DB, error) {
	switch driver {
	case DriverSQLite:
		dsn = sqliteDSN(dsn)
		if dir := filepath.Dir(sqlitePath(dsn)); dir != "." && dir != "" {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("sqlstore: creating data directory: %w", err)
			}
		}
	case DriverPostgres:
	default:
		return nil, fmt.Errorf("sqlstore: unsupported driver %q", driver)
	}

	conn, err := sqlx.ConnectContext(ctx, driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlstore: connecting (%s): %w", driver, err)
	}

	conn.SetMaxOpenConns(25)
	conn.SetMaxIdleConns(5)
	conn.SetConnMaxLifetime(5 * time.Minute)

	return &DB{conn: conn, driver: driver}, nil
}

// Close closes the connection pool.
func (db *DB) Close() error {
	return db.conn.Close()
}

// Driver returns the database/sql driver name the pool was opened with.
func (db *DB) Driver() string {
	return db.driver
}

// Ping checks that the database is reachable.
func (db *DB) Ping(ctx context.Context) error {
	return db.conn.PingContext(ctx)
}

// Users returns the user store backed by this pool.
func (db *DB) Users() *UserStore {
	return &UserStore{db: db.conn}
}

// Favorites returns the favorites store backed by this pool.
func (db *DB) Favorites() *FavoriteStore {
	return &FavoriteStore{db: db.conn}
}

// Comments returns the comment store backed by this pool.
func (db *DB) Comments() *CommentStore {
	return &CommentStore{db: db.conn}
}

// sqliteDSN appends the connection pragmas unless the caller set its own.
func sqliteDSN(dsn string) string {
	if strings.Contains(dsn, "_pragma=") {
		return dsn
	}
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + sqlitePragmas
}

func sqlitePath(dsn string) string {
	path, _, _ := strings.Cut(strings.TrimPrefix(dsn, "file:"), "?")
	return path
}
