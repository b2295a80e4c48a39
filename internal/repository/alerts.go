package repository

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/junkusano/famille-shift-matching-sub002/internal/models"
)

// AlertsRepository is the engine's only writable store (alert_log).
// Checks append through EnsureSystemAlert; status transitions to done or
// cancelled happen manually in the portal, never here.
type AlertsRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewAlertsRepository 作成
func NewAlertsRepository(db *sql.DB, logger *zap.Logger) *AlertsRepository {
	return &AlertsRepository{
		db:     db,
		logger: logger,
	}
}

// Fingerprint derives the stable dedup key of a violation. Identity is
// {check name, subject key, violation type}, so message wording can change
// without opening a new alert series.
func Fingerprint(checkName, subjectKey, violationType string) string {
	sum := sha256.Sum256([]byte(checkName + "|" + subjectKey + "|" + violationType))
	return hex.EncodeToString(sum[:])[:16]
}

// EnsureAlertParams input of EnsureSystemAlert.
type EnsureAlertParams struct {
	Fingerprint  string
	Message      string
	Severity     int      // 0 → default 2
	VisibleRoles []string // nil → {manager, staff}
	SubjectID    *string
	WorkerID     *string
	ShiftID      *int64
	RequestID    *string
}

// EnsureAlertResult output of EnsureSystemAlert.
type EnsureAlertResult struct {
	Created bool   `json:"created"`
	AlertID string `json:"alert_id"`
}

// EnsureSystemAlert performs the idempotent lookup-then-insert:
// if a live system alert (open/in_progress/muted) already exists for the
// fingerprint, nothing is written and the existing id is returned. A repeat
// scan therefore never churns severity or message on an alert a human is
// already looking at. Done/cancelled alerts do not match, so a re-observed
// violation after manual resolution opens a fresh alert.
func (r *AlertsRepository) EnsureSystemAlert(ctx context.Context, params EnsureAlertParams) (EnsureAlertResult, error) {
	if params.Fingerprint == "" {
		return EnsureAlertResult{}, fmt.Errorf("fingerprint is required")
	}
	if params.Message == "" {
		return EnsureAlertResult{}, fmt.Errorf("message is required")
	}

	existingID, err := r.findLiveAlert(ctx, params.Fingerprint)
	if err != nil {
		return EnsureAlertResult{}, err
	}
	if existingID != "" {
		return EnsureAlertResult{Created: false, AlertID: existingID}, nil
	}

	severity := params.Severity
	if severity == 0 {
		severity = models.DefaultAlertSeverity
	}
	roles := params.VisibleRoles
	if roles == nil {
		roles = models.DefaultVisibleRoles
	}

	alertID := uuid.New().String()
	now := time.Now()

	query := `
		INSERT INTO alert_log (
			alert_id,
			fingerprint,
			message,
			status,
			status_source,
			severity,
			kaipoke_cs_id,
			user_id,
			shift_id,
			request_id,
			visible_roles,
			created_at,
			updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13
		)
	`

	_, err = r.db.ExecContext(ctx, query,
		alertID,
		params.Fingerprint,
		params.Message,
		models.AlertStatusOpen,
		models.AlertSourceSystem,
		severity,
		params.SubjectID,
		params.WorkerID,
		params.ShiftID,
		params.RequestID,
		pq.Array(roles),
		now,
		now,
	)
	if err != nil {
		// A concurrent check may have won the race on the partial unique
		// index over live fingerprints; treat that as a dedup hit.
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			existingID, lookupErr := r.findLiveAlert(ctx, params.Fingerprint)
			if lookupErr == nil && existingID != "" {
				return EnsureAlertResult{Created: false, AlertID: existingID}, nil
			}
		}
		return EnsureAlertResult{}, fmt.Errorf("failed to insert alert: %w", err)
	}

	return EnsureAlertResult{Created: true, AlertID: alertID}, nil
}

// findLiveAlert returns the id of the oldest live system alert for the
// fingerprint, or "" when none exists.
func (r *AlertsRepository) findLiveAlert(ctx context.Context, fingerprint string) (string, error) {
	query := `
		SELECT alert_id
		FROM alert_log
		WHERE status_source = $1
		  AND status = ANY($2)
		  AND fingerprint = $3
		ORDER BY created_at
		LIMIT 1
	`

	var alertID string
	err := r.db.QueryRowContext(ctx, query,
		models.AlertSourceSystem,
		pq.Array(models.LiveAlertStatuses),
		fingerprint,
	).Scan(&alertID)
	if err != nil {
		if err == sql.ErrNoRows {
			return "", nil
		}
		return "", fmt.Errorf("failed to query live alerts: %w", err)
	}

	return alertID, nil
}

// ListAlerts returns alerts filtered by status, newest first.
// An empty status lists every live alert.
func (r *AlertsRepository) ListAlerts(ctx context.Context, status string, limit int) ([]*models.Alert, error) {
	if limit <= 0 {
		limit = 100
	}

	statuses := models.LiveAlertStatuses
	if status != "" {
		statuses = []string{status}
	}

	query := `
		SELECT
			alert_id,
			fingerprint,
			message,
			status,
			status_source,
			severity,
			kaipoke_cs_id,
			user_id,
			shift_id,
			request_id,
			visible_roles,
			resolved_by,
			resolution_note,
			created_at,
			updated_at
		FROM alert_log
		WHERE status = ANY($1)
		ORDER BY created_at DESC
		LIMIT $2
	`

	rows, err := r.db.QueryContext(ctx, query, pq.Array(statuses), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query alerts: %w", err)
	}
	defer rows.Close()

	alerts := []*models.Alert{}
	for rows.Next() {
		var alert models.Alert
		var subjectID, workerID, requestID, resolvedBy, resolutionNote sql.NullString
		var shiftID sql.NullInt64

		err := rows.Scan(
			&alert.AlertID,
			&alert.Fingerprint,
			&alert.Message,
			&alert.Status,
			&alert.StatusSource,
			&alert.Severity,
			&subjectID,
			&workerID,
			&shiftID,
			&requestID,
			pq.Array(&alert.VisibleRoles),
			&resolvedBy,
			&resolutionNote,
			&alert.CreatedAt,
			&alert.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan alert: %w", err)
		}

		if subjectID.Valid {
			alert.SubjectID = &subjectID.String
		}
		if workerID.Valid {
			alert.WorkerID = &workerID.String
		}
		if shiftID.Valid {
			alert.ShiftID = &shiftID.Int64
		}
		if requestID.Valid {
			alert.RequestID = &requestID.String
		}
		if resolvedBy.Valid {
			alert.ResolvedBy = &resolvedBy.String
		}
		if resolutionNote.Valid {
			alert.ResolutionNote = &resolutionNote.String
		}

		alerts = append(alerts, &alert)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate alerts: %w", err)
	}

	return alerts, nil
}
