package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vaultrack/custody/cmd/custody/models"
	"github.com/vaultrack/custody/common/cache"
)

func newCredentialFixture(t *testing.T) (*memStore, *CredentialService) {
	store := newMemStore()
	tokenCache := cache.NewMemoryCache(testLogger())
	t.Cleanup(func() { tokenCache.Close() })
	svc := NewCredentialService(store.assetView(), store, tokenCache, time.Hour, testLogger())
	return store, svc
}

func TestEncode_SnapshotsLiveState(t *testing.T) {
	store, svc := newCredentialFixture(t)
	store.addHolder("H1", "Ada", "Engineering")
	asset := store.addAsset("A1", models.CategoryOrganizationOwned, "H1")
	asset.Make = "Lenovo"
	asset.Model = "T14"
	asset.Color = "black"

	token, payload, err := svc.Encode(context.Background(), "A1")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	assert.Equal(t, "A1", payload.Serial)
	assert.Equal(t, "H1", payload.HolderCode)
	assert.Equal(t, "Ada", payload.HolderName)
	assert.Equal(t, "Lenovo", payload.Make)
	assert.Equal(t, models.CategoryOrganizationOwned, payload.Category)

	decoded, err := svc.Decode(token)
	require.NoError(t, err)
	assert.Equal(t, payload, decoded)
}

func TestEncode_ReusesCachedTokenUntilInvalidated(t *testing.T) {
	store, svc := newCredentialFixture(t)
	store.addHolder("H1", "Ada", "Engineering")
	store.addHolder("H2", "Grace", "Security")
	store.addAsset("A1", models.CategoryOrganizationOwned, "H1")

	first, _, err := svc.Encode(context.Background(), "A1")
	require.NoError(t, err)

	// Reassign without invalidating: the stale cached token is returned
	h2 := "H2"
	store.assets["A1"].HolderCode = &h2
	cached, payload, err := svc.Encode(context.Background(), "A1")
	require.NoError(t, err)
	assert.Equal(t, first, cached)
	assert.Equal(t, "H1", payload.HolderCode)

	// After invalidation the token snapshots the new holder
	require.NoError(t, svc.Invalidate(context.Background(), "A1"))
	fresh, payload, err := svc.Encode(context.Background(), "A1")
	require.NoError(t, err)
	assert.NotEqual(t, first, fresh)
	assert.Equal(t, "H2", payload.HolderCode)
}

func TestEncode_UnassignedAsset(t *testing.T) {
	store, svc := newCredentialFixture(t)
	store.addAsset("A1", models.CategoryOrganizationOwned, "")

	_, payload, err := svc.Encode(context.Background(), "A1")
	require.NoError(t, err)
	assert.Empty(t, payload.HolderCode)
	assert.Empty(t, payload.HolderName)
}

func TestDecode_RejectsGarbage(t *testing.T) {
	_, svc := newCredentialFixture(t)

	var policy *models.PolicyViolationError

	_, err := svc.Decode("not base64 at all!!")
	require.ErrorAs(t, err, &policy)

	// Valid base64, not a payload
	_, err = svc.Decode("bm90IGpzb24=")
	require.ErrorAs(t, err, &policy)

	// Valid payload shape with no serial
	_, err = svc.Decode("e30=")
	require.ErrorAs(t, err, &policy)
	assert.Contains(t, policy.Reason, "serial")
}
