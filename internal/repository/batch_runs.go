package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/junkusano/famille-shift-matching-sub002/internal/models"
)

// BatchRunsRepository バッチ実行記録（batch_runs）
type BatchRunsRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

func NewBatchRunsRepository(db *sql.DB, logger *zap.Logger) *BatchRunsRepository {
	return &BatchRunsRepository{
		db:     db,
		logger: logger,
	}
}

// CreateBatchRun inserts a started run and returns its id.
func (r *BatchRunsRepository) CreateBatchRun(ctx context.Context, runType, checkset string, triggeredBy *string) (string, error) {
	if runType == "" {
		return "", fmt.Errorf("run_type is required")
	}
	if checkset == "" {
		return "", fmt.Errorf("checkset is required")
	}

	batchRunID := uuid.New().String()

	query := `
		INSERT INTO batch_runs (batch_run_id, run_type, triggered_by, checkset, stats, started_at)
		VALUES ($1, $2, $3, $4, '{}', $5)
	`

	_, err := r.db.ExecContext(ctx, query, batchRunID, runType, triggeredBy, checkset, time.Now())
	if err != nil {
		return "", fmt.Errorf("failed to create batch run: %w", err)
	}

	return batchRunID, nil
}

// FinishBatchRun records the outcome of a run.
func (r *BatchRunsRepository) FinishBatchRun(ctx context.Context, batchRunID string, ok bool, stats interface{}, runErr string) error {
	if batchRunID == "" {
		return fmt.Errorf("batch_run_id is required")
	}

	statsJSON, err := json.Marshal(stats)
	if err != nil {
		return fmt.Errorf("failed to marshal stats: %w", err)
	}

	var errVal *string
	if runErr != "" {
		errVal = &runErr
	}

	query := `
		UPDATE batch_runs
		SET ok = $1,
		    stats = $2,
		    error = $3,
		    finished_at = $4
		WHERE batch_run_id = $5
	`

	result, err := r.db.ExecContext(ctx, query, ok, statsJSON, errVal, time.Now(), batchRunID)
	if err != nil {
		return fmt.Errorf("failed to finish batch run: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("batch run not found: batch_run_id=%s", batchRunID)
	}

	return nil
}

// GetBatchRun returns a run by id, or nil when not found.
func (r *BatchRunsRepository) GetBatchRun(ctx context.Context, batchRunID string) (*models.BatchRun, error) {
	if batchRunID == "" {
		return nil, fmt.Errorf("batch_run_id is required")
	}

	query := `
		SELECT batch_run_id, run_type, triggered_by, checkset, stats, ok, error, started_at, finished_at
		FROM batch_runs
		WHERE batch_run_id = $1
	`

	var run models.BatchRun
	var triggeredBy, runErr sql.NullString
	var ok sql.NullBool
	var finishedAt sql.NullTime
	var stats []byte

	err := r.db.QueryRowContext(ctx, query, batchRunID).Scan(
		&run.BatchRunID,
		&run.RunType,
		&triggeredBy,
		&run.Checkset,
		&stats,
		&ok,
		&runErr,
		&run.StartedAt,
		&finishedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get batch run: %w", err)
	}

	if triggeredBy.Valid {
		run.TriggeredBy = &triggeredBy.String
	}
	if ok.Valid {
		run.OK = &ok.Bool
	}
	if runErr.Valid {
		run.Error = &runErr.String
	}
	if finishedAt.Valid {
		run.FinishedAt = &finishedAt.Time
	}
	if len(stats) > 0 {
		run.Stats = stats
	} else {
		run.Stats = json.RawMessage("{}")
	}

	return &run, nil
}
