package service

import (
	"context"
	"fmt"
	"time"

	"github.com/vaultrack/custody/cmd/custody/models"
	"github.com/vaultrack/custody/common/logger"
)

// AssetService handles asset registration, lookup and retirement. The
// assignment rules themselves live in AssignmentService; this service
// delegates to it wherever a holder binding is involved.
type AssetService struct {
	assets      AssetStore
	ledger      LedgerStore
	assignment  *AssignmentService
	credentials CredentialInvalidator
	log         *logger.Logger
}

// NewAssetService creates a new asset service
func NewAssetService(assets AssetStore, ledger LedgerStore, assignment *AssignmentService, credentials CredentialInvalidator, log *logger.Logger) *AssetService {
	return &AssetService{
		assets:      assets,
		ledger:      ledger,
		assignment:  assignment,
		credentials: credentials,
		log:         log,
	}
}

// RegisterAssetRequest carries the fields accepted at registration
type RegisterAssetRequest struct {
	Serial     string          `json:"serial"`
	Category   models.Category `json:"category"`
	Make       string          `json:"make"`
	Model      string          `json:"model"`
	Color      string          `json:"color"`
	HolderCode string          `json:"holder_code"`
}

// Register creates a new asset. Category is fixed at creation.
// Personally-owned assets must name a holder: an unassigned personally-owned
// asset has no accountable party at all.
func (s *AssetService) Register(ctx context.Context, req *RegisterAssetRequest) (*models.Asset, error) {
	if req.Serial == "" {
		return nil, &models.PolicyViolationError{Reason: "serial code is required"}
	}
	if !req.Category.Valid() {
		return nil, &models.PolicyViolationError{
			Reason: fmt.Sprintf("unknown category %q", req.Category),
		}
	}
	if req.Category == models.CategoryPersonallyOwned && req.HolderCode == "" {
		return nil, &models.PolicyViolationError{
			Reason: "personally-owned assets must be assigned at registration",
		}
	}

	var holderCode *string
	if req.HolderCode != "" {
		if err := s.assignment.CheckConflict(ctx, req.HolderCode, req.Category, req.Serial); err != nil {
			return nil, err
		}
		holderCode = &req.HolderCode
	}

	now := time.Now()
	asset := &models.Asset{
		Serial:     req.Serial,
		Category:   req.Category,
		Make:       req.Make,
		Model:      req.Model,
		Color:      req.Color,
		HolderCode: holderCode,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := s.assets.Create(ctx, asset); err != nil {
		return nil, err
	}

	s.log.Info("asset registered",
		"serial", asset.Serial,
		"category", asset.Category,
		"holder_code", req.HolderCode,
	)

	return asset, nil
}

// Get retrieves an asset together with its derived custody status
func (s *AssetService) Get(ctx context.Context, serial string) (*models.AssetView, error) {
	asset, err := s.assets.Get(ctx, serial)
	if err != nil {
		return nil, err
	}

	latest, err := s.ledger.Latest(ctx, serial)
	if err != nil {
		return nil, err
	}

	return &models.AssetView{Asset: *asset, Status: models.StatusOf(latest)}, nil
}

// List retrieves assets, optionally filtered by category, each with its
// derived status.
func (s *AssetService) List(ctx context.Context, category *models.Category) ([]*models.AssetView, error) {
	var (
		assets []*models.Asset
		err    error
	)
	if category != nil {
		assets, err = s.assets.ListByCategory(ctx, *category)
	} else {
		assets, err = s.assets.List(ctx)
	}
	if err != nil {
		return nil, err
	}

	views := make([]*models.AssetView, 0, len(assets))
	for _, asset := range assets {
		latest, err := s.ledger.Latest(ctx, asset.Serial)
		if err != nil {
			return nil, err
		}
		views = append(views, &models.AssetView{Asset: *asset, Status: models.StatusOf(latest)})
	}

	return views, nil
}

// UpdateDescriptive mutates the free-text fields of an asset and drops any
// cached credential, which snapshots them.
func (s *AssetService) UpdateDescriptive(ctx context.Context, serial, makeName, model, color string) (*models.Asset, error) {
	asset, err := s.assets.Get(ctx, serial)
	if err != nil {
		return nil, err
	}

	asset.Make = makeName
	asset.Model = model
	asset.Color = color

	if err := s.assets.UpdateDescriptive(ctx, asset); err != nil {
		return nil, err
	}

	if err := s.credentials.Invalidate(ctx, serial); err != nil {
		s.log.Warn("failed to invalidate credential cache", "serial", serial, "error", err)
	}

	s.log.Info("asset updated", "serial", serial)

	return asset, nil
}

// Retire hard-deletes an asset record. Rejected while the asset is checked
// out, so no live custody ever becomes untraceable; the event ledger itself
// is never deleted.
func (s *AssetService) Retire(ctx context.Context, serial string) error {
	latest, err := s.ledger.Latest(ctx, serial)
	if err != nil {
		return err
	}
	if models.StatusOf(latest) == models.StatusOut {
		return &models.PolicyViolationError{
			Reason: fmt.Sprintf("asset %s is checked out; it must be checked in before retirement", serial),
		}
	}

	if err := s.assets.Delete(ctx, serial); err != nil {
		return err
	}

	if err := s.credentials.Invalidate(ctx, serial); err != nil {
		s.log.Warn("failed to invalidate credential cache", "serial", serial, "error", err)
	}

	s.log.Info("asset retired", "serial", serial)

	return nil
}

// History retrieves the asset's custody events, newest first
func (s *AssetService) History(ctx context.Context, serial string, limit int) ([]*models.CustodyEvent, error) {
	// Surface NotFound for unknown serials instead of an empty ledger
	if _, err := s.assets.Get(ctx, serial); err != nil {
		return nil, err
	}

	if limit <= 0 {
		limit = 50
	}

	return s.ledger.ListBySerial(ctx, serial, limit)
}
