package models

import "time"

// AlertReason classifies why a checkout is anomalous
type AlertReason string

const (
	ReasonOvertimeWeekday AlertReason = "OVERTIME_WEEKDAY"
	ReasonWeekendStay     AlertReason = "WEEKEND_STAY"
)

// Alert flags an organization-owned asset checked out longer than policy
// permits. Alerts are derived fresh on every detector run and never persisted.
type Alert struct {
	Serial     string      `json:"serial"`
	HolderCode string      `json:"holder_code"`
	HolderName string      `json:"holder_name"`
	OutSince   time.Time   `json:"out_since"`
	ElapsedHrs int         `json:"elapsed_hours"`
	Reason     AlertReason `json:"reason"`
}
