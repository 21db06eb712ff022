// Package sqlite implements the repository interfaces using SQLite as the
// storage backend.
//
// WHY SQLITE?
// SQLite is an embedded database — it lives inside the Go binary as a single
// file. No separate database server to install, configure, or manage, which
// matches how this service is deployed: one process next to one data file.
//
// WHY modernc.org/sqlite INSTEAD OF github.com/mattn/go-sqlite3?
// mattn/go-sqlite3 uses CGo (calls C code from Go), which means you need a C
// compiler installed and cross-compilation becomes painful. modernc.org/sqlite
// is a pure Go translation of the SQLite C code — no C compiler needed,
// works everywhere Go works.
package sqlite

import (
	"database/sql"
	"fmt"

	// BLANK IMPORT:
	// A side-effect only import. The sqlite package's init() registers itself
	// with database/sql as a driver named "sqlite"; after this import,
	// sql.Open("sqlite", ...) knows how to talk to SQLite.
	_ "modernc.org/sqlite"
)

// DB wraps a sql.DB connection pool and provides the repository methods.
type DB struct {
	conn *sql.DB
}

// New creates a new SQLite database connection and runs migrations.
//
// dbPath examples:
//   - "data/gameclub.db"  → file-based database (persistent)
//   - ":memory:"          → in-memory database (great for tests, lost on close)
//
// SINGLE-WRITER POOL:
// SQLite allows exactly one writer at a time. With the default pool size,
// concurrent score submissions would race for the write lock and surface as
// SQLITE_BUSY errors. Capping the pool at one connection makes concurrent
// requests queue inside database/sql instead, and busy_timeout covers the
// remaining contention window. A side benefit: ":memory:" databases are
// per-connection in this driver, so a one-connection pool is also what makes
// in-memory tests see a single database.
func New(dbPath string) (*DB, error) {
	// sql.Open does NOT open a connection — it creates a pool manager.
	// Ping forces an immediate connection so a bad path fails here, not on
	// the first query.
	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("sqlite: opening database: %w", err)
	}

	conn.SetMaxOpenConns(1)

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: pinging database: %w", err)
	}

	// WAL (Write-Ahead Logging) keeps readers unblocked while a score write
	// is committing.
	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: setting WAL mode: %w", err)
	}

	// Foreign keys are OFF by default in SQLite. The scores→users reference
	// is a hard invariant here: a score row must never exist without its
	// owning user.
	if _, err := conn.Exec("PRAGMA foreign_keys=ON"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: enabling foreign keys: %w", err)
	}

	// If a writer does hit the lock anyway, wait up to 5s before giving up
	// with SQLITE_BUSY.
	if _, err := conn.Exec("PRAGMA busy_timeout=5000"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: setting busy timeout: %w", err)
	}

	db := &DB{conn: conn}

	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: running migrations: %w", err)
	}

	return db, nil
}

// Close closes the database connection pool, flushing the WAL and releasing
// the file lock. Callers should defer this next to New().
func (db *DB) Close() error {
	return db.conn.Close()
}

// migrate creates the schema. The shape is fixed — there is no migration
// history to track, so CREATE TABLE IF NOT EXISTS is all we need.
func (db *DB) migrate() error {
	// users: one row per distinct player.
	// firebase_uid is UNIQUE — this constraint, enforced by the database, is
	// what makes concurrent first-time submissions for the same player safe.
	// total_points is the materialized aggregate; see RecordScore.
	_, err := db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS users (
			id           TEXT PRIMARY KEY,
			firebase_uid TEXT NOT NULL UNIQUE,
			total_points INTEGER NOT NULL DEFAULT 0,
			created_at   DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
	`)
	if err != nil {
		return fmt.Errorf("creating users table: %w", err)
	}

	// scores: append-only log of score events. AUTOINCREMENT guarantees IDs
	// are monotonic and never reused, even after a crash.
	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS scores (
			id         INTEGER PRIMARY KEY AUTOINCREMENT,
			user_id    TEXT NOT NULL REFERENCES users(id),
			points     INTEGER NOT NULL,
			game_type  TEXT NOT NULL DEFAULT 'unknown',
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_scores_user_id ON scores(user_id);
	`)
	if err != nil {
		return fmt.Errorf("creating scores table: %w", err)
	}

	return nil
}
