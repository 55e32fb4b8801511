package service

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"time"

	"github.com/vaultrack/custody/cmd/custody/models"
	"github.com/vaultrack/custody/common/cache"
	"github.com/vaultrack/custody/common/logger"
)

// CredentialService encodes and decodes the scannable credential payload.
// The token is base64(JSON) of the flat payload; rendering it into a QR
// image is the label printer's concern, not the engine's. Encoded tokens
// are cached per serial and dropped whenever the snapshot they carry goes
// stale.
type CredentialService struct {
	assets  AssetStore
	holders HolderStore
	cache   cache.Cache
	ttl     time.Duration
	log     *logger.Logger
}

// NewCredentialService creates a new credential service
func NewCredentialService(assets AssetStore, holders HolderStore, tokenCache cache.Cache, ttl time.Duration, log *logger.Logger) *CredentialService {
	return &CredentialService{
		assets:  assets,
		holders: holders,
		cache:   tokenCache,
		ttl:     ttl,
		log:     log,
	}
}

func credentialKey(serial string) string {
	return "credential:" + serial
}

// Encode builds the credential payload for an asset from live store state
// and returns the encoded token. The cached token is reused when present.
func (s *CredentialService) Encode(ctx context.Context, serial string) (string, *models.CredentialPayload, error) {
	if cached, found, err := s.cache.Get(ctx, credentialKey(serial)); err == nil && found {
		payload, err := s.Decode(string(cached))
		if err == nil {
			return string(cached), payload, nil
		}
		// An undecodable cache entry is dropped and re-encoded
		s.log.Warn("dropping corrupt cached credential", "serial", serial, "error", err)
	}

	asset, err := s.assets.Get(ctx, serial)
	if err != nil {
		return "", nil, err
	}

	payload := &models.CredentialPayload{
		Serial:   asset.Serial,
		Make:     asset.Make,
		Model:    asset.Model,
		Color:    asset.Color,
		Category: asset.Category,
	}

	if asset.HolderCode != nil {
		holder, err := s.holders.Get(ctx, *asset.HolderCode)
		if err != nil {
			return "", nil, err
		}
		payload.HolderCode = holder.HolderCode
		payload.HolderName = holder.Name
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return "", nil, fmt.Errorf("failed to marshal credential payload: %w", err)
	}

	token := base64.StdEncoding.EncodeToString(raw)

	if err := s.cache.Set(ctx, credentialKey(serial), []byte(token), s.ttl); err != nil {
		s.log.Warn("failed to cache credential token", "serial", serial, "error", err)
	}

	s.log.Info("credential encoded", "serial", serial)

	return token, payload, nil
}

// Decode parses a scanned token back into a payload. The result is advisory
// input only; decisions are made against live state by the scan service.
func (s *CredentialService) Decode(token string) (*models.CredentialPayload, error) {
	raw, err := base64.StdEncoding.DecodeString(token)
	if err != nil {
		return nil, &models.PolicyViolationError{Reason: "credential token is not valid base64"}
	}

	payload := &models.CredentialPayload{}
	if err := json.Unmarshal(raw, payload); err != nil {
		return nil, &models.PolicyViolationError{Reason: "credential token does not decode to a payload"}
	}

	if payload.Serial == "" {
		return nil, &models.PolicyViolationError{Reason: "credential payload has no serial"}
	}

	return payload, nil
}

// Invalidate drops the cached token for a serial
func (s *CredentialService) Invalidate(ctx context.Context, serial string) error {
	return s.cache.Delete(ctx, credentialKey(serial))
}
