package store

import (
	"context"
	"database/sql"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
)

// DB wraps sql.DB for Postgres using pgx.
type DB struct {
	Client *sql.DB
}

// NewDB creates a Postgres connection, applies the schema, and pings.
func NewDB(connString string) (*DB, error) {
	db, err := sql.Open("pgx", connString)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(time.Hour)
	if err := db.PingContext(context.Background()); err != nil {
		return &DB{Client: db}, err
	}
	if err := migrate(db); err != nil {
		return &DB{Client: db}, err
	}
	return &DB{Client: db}, nil
}

func migrate(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS graduates (
		id                 TEXT PRIMARY KEY,
		submission_date    TIMESTAMPTZ,
		name               TEXT NOT NULL,
		email              TEXT NOT NULL DEFAULT '',
		qualification      TEXT,
		student_id         TEXT NOT NULL DEFAULT '',
		payment_status     TEXT NOT NULL DEFAULT '',
		gown_option        TEXT NOT NULL DEFAULT '',
		additional_guests  INT NOT NULL DEFAULT 0 CHECK (additional_guests >= 0),
		total_amount       NUMERIC(10,2) NOT NULL DEFAULT 0,
		unique_id          TEXT NOT NULL UNIQUE,
		gown_size          TEXT NOT NULL DEFAULT '',
		submission_id      TEXT NOT NULL DEFAULT '',
		photo_path         TEXT NOT NULL DEFAULT '',

		attended           BOOLEAN NOT NULL DEFAULT FALSE,
		check_in_time      TIMESTAMPTZ,
		checked_in_by      TEXT NOT NULL DEFAULT '',
		gown_collected     BOOLEAN NOT NULL DEFAULT FALSE,
		gown_returned      BOOLEAN NOT NULL DEFAULT FALSE,
		gown_notes         TEXT NOT NULL DEFAULT '',
		seat_row           TEXT NOT NULL DEFAULT '',
		seat_number        TEXT NOT NULL DEFAULT '',
		presentation_order INT CHECK (presentation_order > 0),
		display_name       TEXT NOT NULL DEFAULT '',
		course_name        TEXT NOT NULL DEFAULT '',

		created_at         TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at         TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);

	CREATE INDEX IF NOT EXISTS idx_graduates_name     ON graduates(name);
	CREATE INDEX IF NOT EXISTS idx_graduates_eligible ON graduates(unique_id) WHERE attended AND gown_collected;

	CREATE TABLE IF NOT EXISTS stage_state (
		id                  INT PRIMARY KEY CHECK (id = 1),
		current_graduate_id TEXT REFERENCES graduates(id) ON DELETE SET NULL,
		updated_at          TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);
	`
	_, err := db.Exec(schema)
	return err
}

// Close closes the underlying connection.
func (d *DB) Close() error {
	if d == nil || d.Client == nil {
		return nil
	}
	return d.Client.Close()
}
