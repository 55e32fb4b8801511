package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/vaultrack/custody/cmd/custody/models"
	"github.com/vaultrack/custody/common/db"
)

// CustodyEventRepository handles the append-only custody ledger
type CustodyEventRepository struct {
	db *db.DB
}

// NewCustodyEventRepository creates a new custody event repository
func NewCustodyEventRepository(db *db.DB) *CustodyEventRepository {
	return &CustodyEventRepository{db: db}
}

const eventColumns = `event_id, serial, holder_code, holder_name, action, recorded_by, occurred_at`

func scanEvent(row pgx.Row) (*models.CustodyEvent, error) {
	event := &models.CustodyEvent{}
	err := row.Scan(
		&event.EventID,
		&event.Serial,
		&event.HolderCode,
		&event.HolderName,
		&event.Action,
		&event.RecordedBy,
		&event.OccurredAt,
	)
	if err != nil {
		return nil, err
	}
	return event, nil
}

// Latest retrieves the most recent event for a serial, or nil when the asset
// has no history.
func (r *CustodyEventRepository) Latest(ctx context.Context, serial string) (*models.CustodyEvent, error) {
	query := `
		SELECT ` + eventColumns + `
		FROM custody_event
		WHERE serial = $1
		ORDER BY occurred_at DESC, event_id DESC
		LIMIT 1
	`

	event, err := scanEvent(r.db.QueryRow(ctx, query, serial))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, models.StoreError("get latest event", err)
	}

	return event, nil
}

// ListBySerial retrieves events for a serial ordered by timestamp descending
func (r *CustodyEventRepository) ListBySerial(ctx context.Context, serial string, limit int) ([]*models.CustodyEvent, error) {
	query := `
		SELECT ` + eventColumns + `
		FROM custody_event
		WHERE serial = $1
		ORDER BY occurred_at DESC, event_id DESC
		LIMIT $2
	`

	return r.queryEvents(ctx, query, serial, limit)
}

// ListAll retrieves the full ledger in chronological order, for export
func (r *CustodyEventRepository) ListAll(ctx context.Context) ([]*models.CustodyEvent, error) {
	query := `
		SELECT ` + eventColumns + `
		FROM custody_event
		ORDER BY occurred_at ASC, event_id ASC
	`

	return r.queryEvents(ctx, query)
}

// AppendAlternating appends an event to the ledger as one transactional
// unit keyed on the serial: it locks the asset row, takes the holder
// snapshot, re-reads the latest event and inserts, all under the same lock.
// This is what keeps two concurrent scans of the same serial from both
// landing and breaking strict alternation, and what keeps a reassignment
// committing mid-scan from leaving a stale holder in the event; the
// service-level status check alone is read-then-decide and cannot.
// The event's holder fields are overwritten with the locked live state.
func (r *CustodyEventRepository) AppendAlternating(ctx context.Context, event *models.CustodyEvent) error {
	err := r.appendTx(ctx, event)
	if err == nil {
		return nil
	}

	// Begin/commit failures come back untyped; everything raised inside the
	// transaction is already a domain error or a wrapped store error.
	var notFound *models.NotFoundError
	var redundant *models.RedundantActionError
	if errors.As(err, &notFound) || errors.As(err, &redundant) || errors.Is(err, models.ErrStoreUnavailable) {
		return err
	}
	return models.StoreError("append event", err)
}

func (r *CustodyEventRepository) appendTx(ctx context.Context, event *models.CustodyEvent) error {
	return r.db.WithTx(ctx, func(tx pgx.Tx) error {
		// Serialize per-serial appends on the asset row and snapshot the
		// live holder while it cannot change
		var holderCode *string
		err := tx.QueryRow(ctx, `SELECT holder_code FROM asset WHERE serial = $1 FOR UPDATE`, event.Serial).Scan(&holderCode)
		if errors.Is(err, pgx.ErrNoRows) {
			return &models.NotFoundError{Kind: "asset", Key: event.Serial}
		}
		if err != nil {
			return models.StoreError("lock asset", err)
		}

		event.HolderCode, event.HolderName = "", ""
		if holderCode != nil {
			event.HolderCode = *holderCode
			err := tx.QueryRow(ctx, `SELECT name FROM holder WHERE holder_code = $1`, *holderCode).Scan(&event.HolderName)
			if err != nil {
				return models.StoreError("snapshot holder", err)
			}
		}

		// Re-check alternation under the lock
		var lastAction models.CustodyAction
		err = tx.QueryRow(ctx, `
			SELECT action FROM custody_event
			WHERE serial = $1
			ORDER BY occurred_at DESC, event_id DESC
			LIMIT 1
		`, event.Serial).Scan(&lastAction)

		if err != nil && !errors.Is(err, pgx.ErrNoRows) {
			return models.StoreError("read latest event", err)
		}
		if err == nil && lastAction == event.Action {
			return &models.RedundantActionError{Serial: event.Serial, Action: event.Action}
		}
		// No history counts as IN: a first CHECK_IN is redundant too
		if errors.Is(err, pgx.ErrNoRows) && event.Action == models.ActionCheckIn {
			return &models.RedundantActionError{Serial: event.Serial, Action: event.Action}
		}

		_, err = tx.Exec(ctx, `
			INSERT INTO custody_event (event_id, serial, holder_code, holder_name, action, recorded_by, occurred_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
		`,
			event.EventID,
			event.Serial,
			event.HolderCode,
			event.HolderName,
			event.Action,
			event.RecordedBy,
			event.OccurredAt,
		)
		if err != nil {
			return models.StoreError("append event", err)
		}

		return nil
	})
}

func (r *CustodyEventRepository) queryEvents(ctx context.Context, query string, args ...any) ([]*models.CustodyEvent, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, models.StoreError("list events", err)
	}
	defer rows.Close()

	var events []*models.CustodyEvent
	for rows.Next() {
		event, err := scanEvent(rows)
		if err != nil {
			return nil, models.StoreError("scan event", err)
		}
		events = append(events, event)
	}

	if err := rows.Err(); err != nil {
		return nil, models.StoreError("iterate events", err)
	}

	return events, nil
}
