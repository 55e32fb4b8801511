package service

import (
	"context"
	"fmt"

	"github.com/vaultrack/custody/cmd/custody/models"
	"github.com/vaultrack/custody/common/logger"
)

// AssignmentService enforces the rules that govern binding assets to
// holders: one asset per category per holder, and mandatory assignment of
// personally-owned assets at registration.
type AssignmentService struct {
	assets      AssetStore
	holders     HolderStore
	ledger      LedgerStore
	credentials CredentialInvalidator
	log         *logger.Logger
}

// NewAssignmentService creates a new assignment service
func NewAssignmentService(assets AssetStore, holders HolderStore, ledger LedgerStore, credentials CredentialInvalidator, log *logger.Logger) *AssignmentService {
	return &AssignmentService{
		assets:      assets,
		holders:     holders,
		ledger:      ledger,
		credentials: credentials,
		log:         log,
	}
}

// Assign binds an asset to a holder
func (s *AssignmentService) Assign(ctx context.Context, serial, holderCode string) error {
	return s.bind(ctx, serial, holderCode)
}

// Rebind is the update path of Assign. The conflict check always excludes
// the asset's own serial, so an asset being re-saved never conflicts with
// itself; both operations share one implementation.
func (s *AssignmentService) Rebind(ctx context.Context, serial, holderCode string) error {
	return s.bind(ctx, serial, holderCode)
}

func (s *AssignmentService) bind(ctx context.Context, serial, holderCode string) error {
	asset, err := s.assets.Get(ctx, serial)
	if err != nil {
		return err
	}

	if holderCode == "" {
		if asset.Category == models.CategoryPersonallyOwned && asset.HolderCode == nil {
			return &models.PolicyViolationError{
				Reason: "personally-owned assets must be assigned at registration",
			}
		}
		return &models.PolicyViolationError{
			Reason: "holder code is required; use unassign to clear an assignment",
		}
	}

	// The target holder must exist
	holder, err := s.holders.Get(ctx, holderCode)
	if err != nil {
		return err
	}

	if err := s.CheckConflict(ctx, holderCode, asset.Category, serial); err != nil {
		return err
	}

	if err := s.assets.SetHolder(ctx, serial, &holder.HolderCode); err != nil {
		return err
	}

	// Any token encoded before this point snapshots the wrong holder
	if err := s.credentials.Invalidate(ctx, serial); err != nil {
		s.log.Warn("failed to invalidate credential cache", "serial", serial, "error", err)
	}

	s.log.Info("asset assigned",
		"serial", serial,
		"holder_code", holderCode,
		"category", asset.Category,
	)

	return nil
}

// Unassign clears an asset's holder. Rejected while the asset is checked
// out: an unassigned-but-checked-out asset would be unattributable.
func (s *AssignmentService) Unassign(ctx context.Context, serial string) error {
	asset, err := s.assets.Get(ctx, serial)
	if err != nil {
		return err
	}

	if asset.HolderCode == nil {
		return nil // already unassigned
	}

	latest, err := s.ledger.Latest(ctx, serial)
	if err != nil {
		return err
	}
	if models.StatusOf(latest) == models.StatusOut {
		return &models.PolicyViolationError{
			Reason: fmt.Sprintf("asset %s is checked out; it must be checked in before unassignment", serial),
		}
	}

	if err := s.assets.SetHolder(ctx, serial, nil); err != nil {
		return err
	}

	if err := s.credentials.Invalidate(ctx, serial); err != nil {
		s.log.Warn("failed to invalidate credential cache", "serial", serial, "error", err)
	}

	s.log.Info("asset unassigned", "serial", serial, "previous_holder", *asset.HolderCode)

	return nil
}

// CheckConflict fails with ConflictingAssignment when the holder already
// holds another asset of the same category. excludeSerial removes the asset
// being saved from consideration.
func (s *AssignmentService) CheckConflict(ctx context.Context, holderCode string, category models.Category, excludeSerial string) error {
	held, err := s.assets.FindHeldByCategory(ctx, holderCode, category)
	if err != nil {
		return err
	}

	if held != nil && held.Serial != excludeSerial {
		return &models.ConflictingAssignmentError{
			HolderCode:        holderCode,
			Category:          category,
			ConflictingSerial: held.Serial,
		}
	}

	return nil
}

// CheckHolderDeletable fails with PolicyViolation while any asset still
// references the holder. The store does not enforce this; the rule lives
// here.
func (s *AssignmentService) CheckHolderDeletable(ctx context.Context, holderCode string) error {
	count, err := s.assets.CountByHolder(ctx, holderCode)
	if err != nil {
		return err
	}

	if count > 0 {
		return &models.PolicyViolationError{
			Reason: fmt.Sprintf("holder %s still has %d assigned asset(s)", holderCode, count),
		}
	}

	return nil
}
