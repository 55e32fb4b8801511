package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/vaultrack/custody/cmd/custody/models"
	"github.com/vaultrack/custody/common/logger"
)

// ScanService reconciles scanned credential payloads against live store
// state and advances the custody state machine. The payload's embedded
// fields are an untrusted historical snapshot: the asset's holder may have
// changed since the credential was generated, so every decision is made on
// freshly fetched records keyed by the payload's serial.
type ScanService struct {
	assets  AssetStore
	holders HolderStore
	ledger  LedgerStore
	log     *logger.Logger
}

// NewScanService creates a new scan service
func NewScanService(assets AssetStore, holders HolderStore, ledger LedgerStore, log *logger.Logger) *ScanService {
	return &ScanService{
		assets:  assets,
		holders: holders,
		ledger:  ledger,
		log:     log,
	}
}

// ScanView is the reconciled view presented at the checkpoint: live holder
// identity and custody status, plus the payload's descriptive fields for
// visual matching against the physical device.
type ScanView struct {
	Asset   *models.Asset            `json:"asset"`
	Holder  *models.Holder           `json:"holder,omitempty"`
	Status  models.CustodyStatus     `json:"status"`
	Payload models.CredentialPayload `json:"payload"`

	// True when the payload's embedded holder differs from the live
	// assignment; the checkpoint screen highlights this.
	HolderChanged bool `json:"holder_changed"`
}

// Reconcile fetches the live Asset and Holder records for a scanned payload
// and computes the current custody status.
func (s *ScanService) Reconcile(ctx context.Context, payload models.CredentialPayload) (*ScanView, error) {
	asset, err := s.assets.Get(ctx, payload.Serial)
	if err != nil {
		return nil, err
	}

	var holder *models.Holder
	if asset.HolderCode != nil {
		holder, err = s.holders.Get(ctx, *asset.HolderCode)
		if err != nil {
			return nil, err
		}
	}

	latest, err := s.ledger.Latest(ctx, asset.Serial)
	if err != nil {
		return nil, err
	}

	liveHolder := ""
	if asset.HolderCode != nil {
		liveHolder = *asset.HolderCode
	}

	return &ScanView{
		Asset:         asset,
		Holder:        holder,
		Status:        models.StatusOf(latest),
		Payload:       payload,
		HolderChanged: payload.HolderCode != liveHolder,
	}, nil
}

// Apply commits a custody transition for the asset. The denormalized holder
// snapshot written into the event comes from the live assignment, never from
// the payload, and is taken by the ledger append inside its per-serial
// transaction: a reassignment committing mid-scan cannot leave a stale
// holder in the event. Redundant requests (CHECK_IN while IN, CHECK_OUT
// while OUT) are rejected with RedundantActionError under the same lock, so
// concurrent scans cannot both land.
func (s *ScanService) Apply(ctx context.Context, serial string, action models.CustodyAction, operator string) (*models.CustodyEvent, error) {
	if !action.Valid() {
		return nil, &models.PolicyViolationError{
			Reason: "action must be CHECK_IN or CHECK_OUT",
		}
	}

	event := &models.CustodyEvent{
		EventID:    uuid.New(),
		Serial:     serial,
		Action:     action,
		RecordedBy: operator,
		OccurredAt: time.Now(),
	}

	if err := s.ledger.AppendAlternating(ctx, event); err != nil {
		return nil, err
	}

	s.log.Info("custody transition applied",
		"serial", serial,
		"action", action,
		"holder_code", event.HolderCode,
		"recorded_by", operator,
	)

	return event, nil
}
