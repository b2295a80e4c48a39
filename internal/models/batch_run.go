package models

import (
	"encoding/json"
	"time"
)

// Batch run types (batch_runs.run_type).
const (
	RunTypeManual    = "manual"
	RunTypeScheduled = "scheduled"
)

// BatchRun 1回のバッチ実行の記録（batch_runs テーブル）
type BatchRun struct {
	BatchRunID  string          `json:"batch_run_id" db:"batch_run_id"`
	RunType     string          `json:"run_type" db:"run_type"`
	TriggeredBy *string         `json:"triggered_by,omitempty" db:"triggered_by"`
	Checkset    string          `json:"checkset" db:"checkset"`
	Stats       json.RawMessage `json:"stats" db:"stats"` // JSONB
	OK          *bool           `json:"ok,omitempty" db:"ok"`
	Error       *string         `json:"error,omitempty" db:"error"`
	StartedAt   time.Time       `json:"started_at" db:"started_at"`
	FinishedAt  *time.Time      `json:"finished_at,omitempty" db:"finished_at"`
}
