package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vaultrack/custody/cmd/custody/models"
)

func newAssignmentFixture() (*memStore, *fakeInvalidator, *AssignmentService) {
	store := newMemStore()
	invalidator := &fakeInvalidator{}
	svc := NewAssignmentService(store.assetView(), store, store.ledgerView(), invalidator, testLogger())
	return store, invalidator, svc
}

func TestAssign_BindsAssetAndDropsCredential(t *testing.T) {
	store, invalidator, svc := newAssignmentFixture()
	store.addHolder("H1", "Ada", "Engineering")
	store.addAsset("A1", models.CategoryOrganizationOwned, "")

	err := svc.Assign(context.Background(), "A1", "H1")
	require.NoError(t, err)

	require.NotNil(t, store.assets["A1"].HolderCode)
	assert.Equal(t, "H1", *store.assets["A1"].HolderCode)
	assert.Equal(t, []string{"A1"}, invalidator.dropped)
}

func TestAssign_ConflictNamesHeldSerial(t *testing.T) {
	store, _, svc := newAssignmentFixture()
	store.addHolder("H1", "Ada", "Engineering")
	store.addAsset("A1", models.CategoryOrganizationOwned, "H1")
	store.addAsset("A2", models.CategoryOrganizationOwned, "")

	err := svc.Assign(context.Background(), "A2", "H1")

	var conflict *models.ConflictingAssignmentError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, "A1", conflict.ConflictingSerial)
	assert.Equal(t, "H1", conflict.HolderCode)
	assert.Equal(t, models.CategoryOrganizationOwned, conflict.Category)

	// The failed bind must not touch the asset
	assert.Nil(t, store.assets["A2"].HolderCode)
}

func TestAssign_DifferentCategoriesDoNotConflict(t *testing.T) {
	store, _, svc := newAssignmentFixture()
	store.addHolder("H1", "Ada", "Engineering")
	store.addAsset("A1", models.CategoryOrganizationOwned, "H1")
	store.addAsset("P1", models.CategoryPersonallyOwned, "")

	err := svc.Assign(context.Background(), "P1", "H1")
	require.NoError(t, err)
}

func TestRebind_ExcludesOwnSerialFromConflictCheck(t *testing.T) {
	store, _, svc := newAssignmentFixture()
	store.addHolder("H1", "Ada", "Engineering")
	store.addAsset("A1", models.CategoryOrganizationOwned, "H1")

	// Re-saving an asset to its current holder must not conflict with itself
	err := svc.Rebind(context.Background(), "A1", "H1")
	require.NoError(t, err)
}

func TestAssign_UnknownHolderFails(t *testing.T) {
	store, _, svc := newAssignmentFixture()
	store.addAsset("A1", models.CategoryOrganizationOwned, "")

	err := svc.Assign(context.Background(), "A1", "NOBODY")
	assert.True(t, models.IsNotFound(err))
}

func TestAssign_EmptyHolderOnPersonallyOwnedFails(t *testing.T) {
	store, _, svc := newAssignmentFixture()
	store.addAsset("P1", models.CategoryPersonallyOwned, "")

	err := svc.Assign(context.Background(), "P1", "")

	var policy *models.PolicyViolationError
	require.ErrorAs(t, err, &policy)
	assert.Contains(t, policy.Reason, "assigned at registration")
}

func TestUnassign_ClearsHolderWhenOnSite(t *testing.T) {
	store, invalidator, svc := newAssignmentFixture()
	store.addHolder("H1", "Ada", "Engineering")
	store.addAsset("A1", models.CategoryOrganizationOwned, "H1")
	store.addEvent("A1", models.ActionCheckOut, "H1", "Ada", time.Now().Add(-2*time.Hour))
	store.addEvent("A1", models.ActionCheckIn, "H1", "Ada", time.Now().Add(-time.Hour))

	err := svc.Unassign(context.Background(), "A1")
	require.NoError(t, err)
	assert.Nil(t, store.assets["A1"].HolderCode)
	assert.Equal(t, []string{"A1"}, invalidator.dropped)
}

func TestUnassign_RejectedWhileCheckedOut(t *testing.T) {
	store, _, svc := newAssignmentFixture()
	store.addHolder("H1", "Ada", "Engineering")
	store.addAsset("A1", models.CategoryOrganizationOwned, "H1")
	store.addEvent("A1", models.ActionCheckOut, "H1", "Ada", time.Now().Add(-time.Hour))

	err := svc.Unassign(context.Background(), "A1")

	var policy *models.PolicyViolationError
	require.ErrorAs(t, err, &policy)

	// The holder binding survives the rejected unassign
	require.NotNil(t, store.assets["A1"].HolderCode)
	assert.Equal(t, "H1", *store.assets["A1"].HolderCode)
}

func TestUnassign_AlreadyUnassignedIsANoop(t *testing.T) {
	store, invalidator, svc := newAssignmentFixture()
	store.addAsset("A1", models.CategoryOrganizationOwned, "")

	err := svc.Unassign(context.Background(), "A1")
	require.NoError(t, err)
	assert.Empty(t, invalidator.dropped)
}

func TestCheckHolderDeletable(t *testing.T) {
	store, _, svc := newAssignmentFixture()
	store.addHolder("H1", "Ada", "Engineering")
	store.addAsset("A1", models.CategoryOrganizationOwned, "H1")

	err := svc.CheckHolderDeletable(context.Background(), "H1")
	var policy *models.PolicyViolationError
	require.ErrorAs(t, err, &policy)

	require.NoError(t, store.assetView().SetHolder(context.Background(), "A1", nil))
	assert.NoError(t, svc.CheckHolderDeletable(context.Background(), "H1"))
}
