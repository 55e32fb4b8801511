package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/vaultrack/custody/common/db"
)

// schema is applied through the bootstrap DB init hook on startup.
//
// custody_event.serial deliberately carries no foreign key: the ledger is the
// audit trail and must outlive retired assets.
//
// The partial unique index on (holder_code, category) is the hard backstop
// for the one-asset-per-category-per-holder rule; the assignment service
// checks first so callers get a ConflictingAssignment naming the serial, and
// the index catches the concurrent-assign race the check cannot.
const schema = `
CREATE TABLE IF NOT EXISTS holder (
	holder_code  TEXT PRIMARY KEY,
	name         TEXT NOT NULL,
	org_unit     TEXT NOT NULL DEFAULT '',
	portrait_ref TEXT,
	created_at   TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at   TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS asset (
	serial         TEXT PRIMARY KEY,
	category       TEXT NOT NULL,
	make           TEXT NOT NULL DEFAULT '',
	model          TEXT NOT NULL DEFAULT '',
	color          TEXT NOT NULL DEFAULT '',
	holder_code    TEXT REFERENCES holder(holder_code),
	credential_ref TEXT,
	created_at     TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at     TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE UNIQUE INDEX IF NOT EXISTS asset_one_per_category
	ON asset (holder_code, category)
	WHERE holder_code IS NOT NULL;

CREATE TABLE IF NOT EXISTS custody_event (
	event_id    UUID PRIMARY KEY,
	serial      TEXT NOT NULL,
	holder_code TEXT NOT NULL DEFAULT '',
	holder_name TEXT NOT NULL DEFAULT '',
	action      TEXT NOT NULL,
	recorded_by TEXT NOT NULL DEFAULT '',
	occurred_at TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS custody_event_serial_occurred
	ON custody_event (serial, occurred_at DESC);
`

// EnsureSchema creates the tables and indexes if they do not exist
func EnsureSchema(database *db.DB) error {
	if _, err := database.Exec(context.Background(), schema); err != nil {
		return fmt.Errorf("failed to ensure schema: %w", err)
	}
	return nil
}

// uniqueViolation reports whether err is a Postgres unique-constraint
// violation (SQLSTATE 23505). These are permanent integrity conflicts and
// must surface as typed domain errors, never as a retryable store outage.
func uniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
