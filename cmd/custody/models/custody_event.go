package models

import (
	"time"

	"github.com/google/uuid"
)

// CustodyAction is the transition recorded by a scan
type CustodyAction string

const (
	ActionCheckIn  CustodyAction = "CHECK_IN"
	ActionCheckOut CustodyAction = "CHECK_OUT"
)

// Valid reports whether the action is one of the known values
func (a CustodyAction) Valid() bool {
	return a == ActionCheckIn || a == ActionCheckOut
}

// CustodyStatus is the derived IN/OUT state of an asset
type CustodyStatus string

const (
	StatusIn  CustodyStatus = "IN"
	StatusOut CustodyStatus = "OUT"
)

// Status returns the custody status an asset holds after this action
func (a CustodyAction) Status() CustodyStatus {
	if a == ActionCheckOut {
		return StatusOut
	}
	return StatusIn
}

// StatusOf derives the custody status from the latest event.
// An asset with no history is treated as present on-site.
func StatusOf(latest *CustodyEvent) CustodyStatus {
	if latest == nil {
		return StatusIn
	}
	return latest.Action.Status()
}

// CustodyEvent is one immutable entry of the append-only custody ledger.
// Holder fields are a denormalized snapshot taken at acceptance time, not a
// live join: the ledger must stay meaningful after reassignments.
// Maps to: custody_event table
type CustodyEvent struct {
	EventID uuid.UUID `db:"event_id" json:"event_id"`

	// Which asset this event belongs to
	Serial string `db:"serial" json:"serial"`

	// Holder identity at the time of the event (empty when unassigned)
	HolderCode string `db:"holder_code" json:"holder_code"`
	HolderName string `db:"holder_name" json:"holder_name"`

	Action CustodyAction `db:"action" json:"action"`

	// Operator who accepted the scan at the checkpoint
	RecordedBy string `db:"recorded_by" json:"recorded_by,omitempty"`

	// System clock at acceptance
	OccurredAt time.Time `db:"occurred_at" json:"occurred_at"`
}
