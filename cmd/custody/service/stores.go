package service

import (
	"context"

	"github.com/vaultrack/custody/cmd/custody/models"
)

// Store interfaces consumed by the services. The pgx repositories implement
// them in production; tests use in-memory fakes. The engine itself only
// needs point reads, equality queries and append-only writes.

// HolderStore persists holder records
type HolderStore interface {
	Create(ctx context.Context, holder *models.Holder) error
	Get(ctx context.Context, holderCode string) (*models.Holder, error)
	Update(ctx context.Context, holder *models.Holder) error
	Delete(ctx context.Context, holderCode string) error
	List(ctx context.Context) ([]*models.Holder, error)
}

// AssetStore persists asset records
type AssetStore interface {
	Create(ctx context.Context, asset *models.Asset) error
	Get(ctx context.Context, serial string) (*models.Asset, error)
	UpdateDescriptive(ctx context.Context, asset *models.Asset) error
	SetHolder(ctx context.Context, serial string, holderCode *string) error
	SetCredentialRef(ctx context.Context, serial string, ref *string) error
	Delete(ctx context.Context, serial string) error
	List(ctx context.Context) ([]*models.Asset, error)
	ListByCategory(ctx context.Context, category models.Category) ([]*models.Asset, error)
	ListByHolder(ctx context.Context, holderCode string) ([]*models.Asset, error)
	FindHeldByCategory(ctx context.Context, holderCode string, category models.Category) (*models.Asset, error)
	CountByHolder(ctx context.Context, holderCode string) (int, error)
}

// LedgerStore persists the append-only custody event ledger.
// AppendAlternating must perform its alternation check, the live holder
// snapshot (overwriting the event's holder fields) and the insert as one
// atomic unit keyed on the serial, returning RedundantActionError when the
// ledger head already carries the requested action.
type LedgerStore interface {
	Latest(ctx context.Context, serial string) (*models.CustodyEvent, error)
	ListBySerial(ctx context.Context, serial string, limit int) ([]*models.CustodyEvent, error)
	ListAll(ctx context.Context) ([]*models.CustodyEvent, error)
	AppendAlternating(ctx context.Context, event *models.CustodyEvent) error
}

// CredentialInvalidator drops cached credential tokens when the state they
// snapshot goes stale (reassignment, descriptive edits, retirement).
type CredentialInvalidator interface {
	Invalidate(ctx context.Context, serial string) error
}
