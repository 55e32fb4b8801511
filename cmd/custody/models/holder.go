package models

import "time"

// Holder represents the organizational person accountable for assets
// Maps to: holder table (holder_code is the primary key)
type Holder struct {
	// Human-assigned code, unique and immutable once created
	HolderCode string `db:"holder_code" json:"holder_code"`

	// Display name
	Name string `db:"name" json:"name"`

	// Organizational-unit label
	OrgUnit string `db:"org_unit" json:"org_unit"`

	// Optional portrait reference shown at the checkpoint screen
	PortraitRef *string `db:"portrait_ref" json:"portrait_ref,omitempty"`

	// Audit fields
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}
