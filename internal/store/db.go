package store

import (
	"context"
	"database/sql"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"
)

// DB wraps sql.DB for Postgres (pgx) or SQLite (go-sqlite3).
// Queries use $N placeholders in ascending order so both drivers accept them.
type DB struct {
	Client *sql.DB
	Driver string
}

// NewDB opens a connection, pings it and applies the schema.
func NewDB(ctx context.Context, driver, connString string) (*DB, error) {
	switch driver {
	case "pgx", "sqlite3":
	default:
		return nil, errors.Errorf("unsupported database driver %q", driver)
	}
	db, err := sql.Open(driver, connString)
	if err != nil {
		return nil, errors.Wrap(err, "open db")
	}
	if driver == "sqlite3" {
		// one connection keeps ":memory:" databases shared and writes serialized
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(10)
		db.SetMaxIdleConns(5)
		db.SetConnMaxLifetime(time.Hour)
	}
	d := &DB{Client: db, Driver: driver}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, "ping db")
	}
	if err := d.Migrate(ctx); err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, "migrate")
	}
	return d, nil
}

// Migrate creates the tables the check-in service relies on. The
// (student_id, date) unique constraint is what makes attendance writes
// idempotent under concurrent callers.
func (d *DB) Migrate(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS students (
			id          TEXT PRIMARY KEY,
			name        TEXT NOT NULL,
			status      TEXT NOT NULL DEFAULT 'active',
			class_id    TEXT NOT NULL DEFAULT '',
			created_at  TIMESTAMP NOT NULL,
			updated_at  TIMESTAMP NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS attendance (
			id          TEXT PRIMARY KEY,
			student_id  TEXT NOT NULL REFERENCES students(id),
			date        TEXT NOT NULL,
			present     BOOLEAN NOT NULL DEFAULT TRUE,
			notes       TEXT NOT NULL DEFAULT '',
			created_at  TIMESTAMP NOT NULL,
			UNIQUE (student_id, date)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_attendance_date ON attendance(date)`,
		`CREATE TABLE IF NOT EXISTS school_settings (
			id               INTEGER PRIMARY KEY,
			work_start_time  TEXT NOT NULL,
			work_end_time    TEXT NOT NULL,
			updated_at       TIMESTAMP NOT NULL
		)`,
	}
	for _, stmt := range stmts {
		if _, err := d.Client.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

// Healthy pings the database.
func (d *DB) Healthy(ctx context.Context) bool {
	if d == nil || d.Client == nil {
		return false
	}
	return d.Client.PingContext(ctx) == nil
}

// Close closes the underlying connection.
func (d *DB) Close() error {
	if d == nil || d.Client == nil {
		return nil
	}
	return d.Client.Close()
}
