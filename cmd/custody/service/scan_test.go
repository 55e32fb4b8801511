package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vaultrack/custody/cmd/custody/models"
)

func newScanFixture() (*memStore, *ScanService) {
	store := newMemStore()
	svc := NewScanService(store.assetView(), store, store.ledgerView(), testLogger())
	return store, svc
}

func TestApply_CheckOutThenCheckIn(t *testing.T) {
	store, svc := newScanFixture()
	store.addHolder("H1", "Ada", "Engineering")
	store.addAsset("A1", models.CategoryOrganizationOwned, "H1")

	out, err := svc.Apply(context.Background(), "A1", models.ActionCheckOut, "gate-1")
	require.NoError(t, err)
	assert.Equal(t, models.ActionCheckOut, out.Action)
	assert.Equal(t, "H1", out.HolderCode)
	assert.Equal(t, "Ada", out.HolderName)
	assert.Equal(t, "gate-1", out.RecordedBy)
	assert.NotZero(t, out.EventID)
	assert.False(t, out.OccurredAt.IsZero())

	in, err := svc.Apply(context.Background(), "A1", models.ActionCheckIn, "gate-2")
	require.NoError(t, err)
	assert.Equal(t, models.ActionCheckIn, in.Action)

	require.Len(t, store.events["A1"], 2)
}

func TestApply_RedundantCheckOutRejected(t *testing.T) {
	store, svc := newScanFixture()
	store.addHolder("H1", "Ada", "Engineering")
	store.addAsset("A1", models.CategoryOrganizationOwned, "H1")

	_, err := svc.Apply(context.Background(), "A1", models.ActionCheckOut, "gate-1")
	require.NoError(t, err)

	_, err = svc.Apply(context.Background(), "A1", models.ActionCheckOut, "gate-1")
	var redundant *models.RedundantActionError
	require.ErrorAs(t, err, &redundant)
	assert.Equal(t, "A1", redundant.Serial)
	assert.Equal(t, models.ActionCheckOut, redundant.Action)

	// The rejected scan must not append a second event
	require.Len(t, store.events["A1"], 1)
}

func TestApply_CheckInWithNoHistoryRejected(t *testing.T) {
	store, svc := newScanFixture()
	store.addAsset("A1", models.CategoryOrganizationOwned, "")

	// An asset with no history is already on-site
	_, err := svc.Apply(context.Background(), "A1", models.ActionCheckIn, "gate-1")
	var redundant *models.RedundantActionError
	require.ErrorAs(t, err, &redundant)
	assert.Empty(t, store.events["A1"])
}

func TestApply_UnknownSerialFails(t *testing.T) {
	_, svc := newScanFixture()
	_, err := svc.Apply(context.Background(), "GHOST", models.ActionCheckOut, "gate-1")
	assert.True(t, models.IsNotFound(err))
}

func TestApply_InvalidActionRejected(t *testing.T) {
	store, svc := newScanFixture()
	store.addAsset("A1", models.CategoryOrganizationOwned, "")

	_, err := svc.Apply(context.Background(), "A1", models.CustodyAction("LOST"), "gate-1")
	var policy *models.PolicyViolationError
	require.ErrorAs(t, err, &policy)
}

func TestApply_SnapshotsLiveHolderNotPayload(t *testing.T) {
	store, svc := newScanFixture()
	store.addHolder("H2", "Grace", "Security")
	store.addAsset("A1", models.CategoryOrganizationOwned, "H2")

	// A stale credential naming the previous holder has no bearing on what
	// gets written to the ledger
	event, err := svc.Apply(context.Background(), "A1", models.ActionCheckOut, "gate-1")
	require.NoError(t, err)
	assert.Equal(t, "H2", event.HolderCode)
	assert.Equal(t, "Grace", event.HolderName)
}

func TestApply_ReassignmentBeforeAppendSnapshotsNewHolder(t *testing.T) {
	store, svc := newScanFixture()
	store.addHolder("H1", "Ada", "Engineering")
	store.addHolder("H2", "Grace", "Security")
	store.addAsset("A1", models.CategoryOrganizationOwned, "H1")

	// The checkpoint screen showed H1, but the rebind commits first. The
	// append snapshots the holder under its own lock, so the event must
	// carry the post-rebind assignment.
	view, err := svc.Reconcile(context.Background(), models.CredentialPayload{
		Serial:     "A1",
		HolderCode: "H1",
	})
	require.NoError(t, err)
	require.NotNil(t, view.Holder)
	assert.Equal(t, "H1", view.Holder.HolderCode)

	h2 := "H2"
	require.NoError(t, store.assetView().SetHolder(context.Background(), "A1", &h2))

	event, err := svc.Apply(context.Background(), "A1", models.ActionCheckOut, "gate-1")
	require.NoError(t, err)
	assert.Equal(t, "H2", event.HolderCode)
	assert.Equal(t, "Grace", event.HolderName)
}

func TestReconcile_FlagsHolderChange(t *testing.T) {
	store, svc := newScanFixture()
	store.addHolder("H2", "Grace", "Security")
	store.addAsset("A1", models.CategoryOrganizationOwned, "H2")

	// Credential printed while H1 still held the asset
	view, err := svc.Reconcile(context.Background(), models.CredentialPayload{
		Serial:     "A1",
		HolderCode: "H1",
		HolderName: "Ada",
	})
	require.NoError(t, err)

	assert.True(t, view.HolderChanged)
	require.NotNil(t, view.Holder)
	assert.Equal(t, "H2", view.Holder.HolderCode)
	assert.Equal(t, models.StatusIn, view.Status)

	// The payload rides along untouched for visual matching
	assert.Equal(t, "H1", view.Payload.HolderCode)
}

func TestReconcile_DerivesStatusFromLedger(t *testing.T) {
	store, svc := newScanFixture()
	store.addHolder("H1", "Ada", "Engineering")
	store.addAsset("A1", models.CategoryOrganizationOwned, "H1")
	store.addEvent("A1", models.ActionCheckOut, "H1", "Ada", at(wednesday, 9))

	view, err := svc.Reconcile(context.Background(), models.CredentialPayload{
		Serial:     "A1",
		HolderCode: "H1",
	})
	require.NoError(t, err)
	assert.Equal(t, models.StatusOut, view.Status)
	assert.False(t, view.HolderChanged)
}

func TestReconcile_UnassignedAsset(t *testing.T) {
	store, svc := newScanFixture()
	store.addAsset("A1", models.CategoryOrganizationOwned, "")

	view, err := svc.Reconcile(context.Background(), models.CredentialPayload{
		Serial:     "A1",
		HolderCode: "H1",
	})
	require.NoError(t, err)
	assert.Nil(t, view.Holder)
	assert.True(t, view.HolderChanged)
}

func TestReconcile_UnknownSerialFails(t *testing.T) {
	_, svc := newScanFixture()
	_, err := svc.Reconcile(context.Background(), models.CredentialPayload{Serial: "GHOST"})
	assert.True(t, models.IsNotFound(err))
}
