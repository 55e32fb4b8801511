package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vaultrack/custody/cmd/custody/models"
)

// Calendar anchors. 2024-03-01 was a Friday.
var (
	friday    = time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	wednesday = time.Date(2024, 2, 28, 0, 0, 0, 0, time.UTC)
	monday    = time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)
	saturday  = time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC)
)

func at(day time.Time, hour int) time.Time {
	return day.Add(time.Duration(hour) * time.Hour)
}

func newAlertFixture() (*memStore, *AlertService) {
	store := newMemStore()
	svc := NewAlertService(store.assetView(), store.ledgerView(), testLogger())
	return store, svc
}

func TestDetect_FridayCheckout_MondayMorning_NoAlert(t *testing.T) {
	store, svc := newAlertFixture()
	store.addAsset("S1", models.CategoryOrganizationOwned, "H1")
	store.addEvent("S1", models.ActionCheckOut, "H1", "Ada", at(friday, 18))

	// 62h elapsed, weekday evaluation, inside the Friday grace window
	alerts, err := svc.Detect(context.Background(), at(monday, 8))
	require.NoError(t, err)
	assert.Empty(t, alerts)
}

func TestDetect_FridayCheckout_MondayAfternoon_Overtime(t *testing.T) {
	store, svc := newAlertFixture()
	store.addAsset("S1", models.CategoryOrganizationOwned, "H1")
	store.addEvent("S1", models.ActionCheckOut, "H1", "Ada", at(friday, 18))

	// 68h elapsed, past the Friday grace window
	alerts, err := svc.Detect(context.Background(), at(monday, 14))
	require.NoError(t, err)
	require.Len(t, alerts, 1)

	assert.Equal(t, "S1", alerts[0].Serial)
	assert.Equal(t, "H1", alerts[0].HolderCode)
	assert.Equal(t, "Ada", alerts[0].HolderName)
	assert.Equal(t, models.ReasonOvertimeWeekday, alerts[0].Reason)
	assert.Equal(t, 68, alerts[0].ElapsedHrs)
	assert.Equal(t, at(friday, 18), alerts[0].OutSince)
}

func TestDetect_WeekendEvaluation_AlwaysWeekendStay(t *testing.T) {
	store, svc := newAlertFixture()
	store.addAsset("S2", models.CategoryOrganizationOwned, "H2")
	store.addEvent("S2", models.ActionCheckOut, "H2", "Grace", at(wednesday, 9))

	// The weekend-now branch fires regardless of elapsed hours
	alerts, err := svc.Detect(context.Background(), at(saturday, 10))
	require.NoError(t, err)
	require.Len(t, alerts, 1)
	assert.Equal(t, models.ReasonWeekendStay, alerts[0].Reason)
}

func TestDetect_WeekdayCheckout_Overtime(t *testing.T) {
	store, svc := newAlertFixture()
	store.addAsset("S3", models.CategoryOrganizationOwned, "H3")
	store.addEvent("S3", models.ActionCheckOut, "H3", "Edsger", at(wednesday, 9))

	// 47h elapsed on a Friday (a weekday): past the 38h threshold
	alerts, err := svc.Detect(context.Background(), at(friday, 8))
	require.NoError(t, err)
	require.Len(t, alerts, 1)
	assert.Equal(t, models.ReasonOvertimeWeekday, alerts[0].Reason)
	assert.Equal(t, 47, alerts[0].ElapsedHrs)
}

func TestDetect_UnderThreshold_NoAlert(t *testing.T) {
	store, svc := newAlertFixture()
	store.addAsset("S4", models.CategoryOrganizationOwned, "H4")
	store.addEvent("S4", models.ActionCheckOut, "H4", "Barbara", at(wednesday, 18))

	// Overnight absence, 15h elapsed
	alerts, err := svc.Detect(context.Background(), at(wednesday, 33))
	require.NoError(t, err)
	assert.Empty(t, alerts)
}

func TestDetect_SkipsCheckedInAndNoHistory(t *testing.T) {
	store, svc := newAlertFixture()
	store.addAsset("IN1", models.CategoryOrganizationOwned, "H1")
	store.addEvent("IN1", models.ActionCheckOut, "H1", "Ada", at(wednesday, 9))
	store.addEvent("IN1", models.ActionCheckIn, "H1", "Ada", at(wednesday, 17))
	store.addAsset("NEW1", models.CategoryOrganizationOwned, "H2")

	alerts, err := svc.Detect(context.Background(), at(monday, 14))
	require.NoError(t, err)
	assert.Empty(t, alerts)
}

func TestDetect_PersonallyOwnedNeverEvaluated(t *testing.T) {
	store, svc := newAlertFixture()
	store.addAsset("P1", models.CategoryPersonallyOwned, "H1")
	store.addEvent("P1", models.ActionCheckOut, "H1", "Ada", at(friday, 18))

	// Out for over a week; still no claim on its whereabouts
	alerts, err := svc.Detect(context.Background(), at(monday.AddDate(0, 0, 7), 14))
	require.NoError(t, err)
	assert.Empty(t, alerts)
}

func TestDetect_Deterministic(t *testing.T) {
	store, svc := newAlertFixture()
	store.addAsset("S1", models.CategoryOrganizationOwned, "H1")
	store.addEvent("S1", models.ActionCheckOut, "H1", "Ada", at(friday, 18))
	store.addAsset("S2", models.CategoryOrganizationOwned, "H2")
	store.addEvent("S2", models.ActionCheckOut, "H2", "Grace", at(wednesday, 9))

	now := at(monday, 14)
	first, err := svc.Detect(context.Background(), now)
	require.NoError(t, err)
	second, err := svc.Detect(context.Background(), now)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestDetect_RoundsElapsedHours(t *testing.T) {
	store, svc := newAlertFixture()
	store.addAsset("S1", models.CategoryOrganizationOwned, "H1")
	store.addEvent("S1", models.ActionCheckOut, "H1", "Ada", at(wednesday, 9).Add(-40*time.Minute))

	// 47h40m rounds to 48
	alerts, err := svc.Detect(context.Background(), at(friday, 8))
	require.NoError(t, err)
	require.Len(t, alerts, 1)
	assert.Equal(t, 48, alerts[0].ElapsedHrs)
}

func TestClassifyExposure_Precedence(t *testing.T) {
	cases := []struct {
		name    string
		now     time.Time
		outAt   time.Time
		reason  models.AlertReason
		flagged bool
	}{
		{"weekend shadows everything", at(saturday, 0), at(friday, 18), models.ReasonWeekendStay, true},
		{"sunday evaluation", at(saturday, 30), at(wednesday, 9), models.ReasonWeekendStay, true},
		{"friday grace window holds", at(monday, 8), at(friday, 18), "", false},
		{"friday grace window expires", at(monday, 14), at(friday, 18), models.ReasonOvertimeWeekday, true},
		{"weekday threshold", at(friday, 8), at(wednesday, 9), models.ReasonOvertimeWeekday, true},
		{"overnight is fine", at(wednesday, 33), at(wednesday, 18), "", false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			reason, flagged := ClassifyExposure(tc.now, tc.outAt)
			assert.Equal(t, tc.flagged, flagged)
			assert.Equal(t, tc.reason, reason)
		})
	}
}
