package service

import (
	"context"
	"math"
	"time"

	"github.com/vaultrack/custody/cmd/custody/models"
	"github.com/vaultrack/custody/common/logger"
)

// Exposure thresholds. 38h covers a normal overnight absence with margin;
// 66h from a Friday checkout covers a full weekend without flagging
// legitimate Friday-evening-to-Monday-morning custody.
const (
	overtimeThresholdHours = 38
	fridayThresholdHours   = 66
)

// AlertService classifies the elapsed-time exposure of checked-out
// organization-owned assets. It is read-only and a pure function of the
// ledger and the evaluation time: safe to re-run at any frequency, tolerant
// of slightly stale reads, with no side effects.
type AlertService struct {
	assets AssetStore
	ledger LedgerStore
	log    *logger.Logger
}

// NewAlertService creates a new alert service
func NewAlertService(assets AssetStore, ledger LedgerStore, log *logger.Logger) *AlertService {
	return &AlertService{
		assets: assets,
		ledger: ledger,
		log:    log,
	}
}

// Detect evaluates every organization-owned asset at the given time and
// returns the alerts. Personally-owned assets are never evaluated; the
// organization has no claim on their whereabouts.
func (s *AlertService) Detect(ctx context.Context, now time.Time) ([]models.Alert, error) {
	assets, err := s.assets.ListByCategory(ctx, models.CategoryOrganizationOwned)
	if err != nil {
		return nil, err
	}

	alerts := make([]models.Alert, 0)
	for _, asset := range assets {
		latest, err := s.ledger.Latest(ctx, asset.Serial)
		if err != nil {
			return nil, err
		}

		// No history or on-site: nothing to flag
		if latest == nil || latest.Action != models.ActionCheckOut {
			continue
		}

		reason, flagged := ClassifyExposure(now, latest.OccurredAt)
		if !flagged {
			continue
		}

		alerts = append(alerts, models.Alert{
			Serial:     asset.Serial,
			HolderCode: latest.HolderCode,
			HolderName: latest.HolderName,
			OutSince:   latest.OccurredAt,
			ElapsedHrs: int(math.Round(now.Sub(latest.OccurredAt).Hours())),
			Reason:     reason,
		})
	}

	s.log.Info("compliance detection complete",
		"evaluated_at", now,
		"alerts", len(alerts),
	)

	return alerts, nil
}

// ClassifyExposure applies the calendar-aware threshold precedence to a
// single checkout. The branch order is deliberate and must not be
// rearranged:
//
//  1. evaluation moment falls on a weekend day -> WEEKEND_STAY
//  2. Friday checkout: grace window of 66h, then OVERTIME_WEEKDAY
//  3. any other checkout: 38h, then OVERTIME_WEEKDAY
//
// The Friday grace window exists so that a legitimate Friday-evening-
// to-Monday-morning custody (about 62h) never flags on Monday morning.
// The weekend-now branch shadows everything else once Saturday starts.
func ClassifyExposure(now, outAt time.Time) (models.AlertReason, bool) {
	if isWeekend(now.Weekday()) {
		return models.ReasonWeekendStay, true
	}

	elapsed := now.Sub(outAt).Hours()
	threshold := float64(overtimeThresholdHours)
	if outAt.Weekday() == time.Friday {
		threshold = fridayThresholdHours
	}

	if elapsed > threshold {
		return models.ReasonOvertimeWeekday, true
	}

	return "", false
}

func isWeekend(day time.Weekday) bool {
	return day == time.Saturday || day == time.Sunday
}
