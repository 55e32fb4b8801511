package models

import "time"

// Category classifies who owns an asset
type Category string

const (
	CategoryOrganizationOwned Category = "ORGANIZATION_OWNED"
	CategoryPersonallyOwned   Category = "PERSONALLY_OWNED"
)

// Valid reports whether the category is one of the known values
func (c Category) Valid() bool {
	return c == CategoryOrganizationOwned || c == CategoryPersonallyOwned
}

// Asset represents a trackable physical device
// Maps to: asset table (serial is the primary key)
type Asset struct {
	// Serial code, unique and immutable
	Serial string `db:"serial" json:"serial"`

	// Ownership category, fixed at registration
	Category Category `db:"category" json:"category"`

	// Descriptive fields (free text)
	Make  string `db:"make" json:"make"`
	Model string `db:"model" json:"model"`
	Color string `db:"color" json:"color"`

	// Weak reference to the accountable holder's code.
	// Nil means the asset is currently unassigned.
	HolderCode *string `db:"holder_code" json:"holder_code,omitempty"`

	// Cached credential token reference (set after first encode)
	CredentialRef *string `db:"credential_ref" json:"credential_ref,omitempty"`

	// Audit fields
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// AssetView is an Asset together with its derived custody status.
// Status is never stored; it is computed from the latest custody event.
type AssetView struct {
	Asset
	Status CustodyStatus `json:"status"`
}
