package models

import (
	"time"
)

// Alert statuses (alert_log.status).
const (
	AlertStatusOpen       = "open"
	AlertStatusInProgress = "in_progress"
	AlertStatusDone       = "done"
	AlertStatusMuted      = "muted"
	AlertStatusCancelled  = "cancelled"
)

// Alert sources (alert_log.status_source).
const (
	AlertSourceSystem = "system"
	AlertSourceManual = "manual"
)

// DefaultAlertSeverity is used when a check does not override severity (1..3).
const DefaultAlertSeverity = 2

// DefaultVisibleRoles is used when a check does not override role visibility.
var DefaultVisibleRoles = []string{"manager", "staff"}

// Alert 対応 alert_log テーブル（コンプライアンスエンジンの出力）
type Alert struct {
	AlertID        string     `json:"alert_id" db:"alert_id"`
	Fingerprint    string     `json:"fingerprint" db:"fingerprint"`
	Message        string     `json:"message" db:"message"` // may embed an <a href> anchor
	Status         string     `json:"status" db:"status"`
	StatusSource   string     `json:"status_source" db:"status_source"`
	Severity       int        `json:"severity" db:"severity"`
	SubjectID      *string    `json:"kaipoke_cs_id,omitempty" db:"kaipoke_cs_id"`
	WorkerID       *string    `json:"user_id,omitempty" db:"user_id"`
	ShiftID        *int64     `json:"shift_id,omitempty" db:"shift_id"`
	RequestID      *string    `json:"request_id,omitempty" db:"request_id"`
	VisibleRoles   []string   `json:"visible_roles" db:"visible_roles"`
	ResolvedBy     *string    `json:"resolved_by,omitempty" db:"resolved_by"`
	ResolutionNote *string    `json:"resolution_note,omitempty" db:"resolution_note"`
	CreatedAt      time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at" db:"updated_at"`
}

// LiveAlertStatuses are the statuses the dedup lookup matches: a violation
// with an alert in any of these states must not produce a second alert.
var LiveAlertStatuses = []string{AlertStatusOpen, AlertStatusInProgress, AlertStatusMuted}
