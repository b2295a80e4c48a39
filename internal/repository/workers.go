package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/junkusano/famille-shift-matching-sub002/internal/models"
)

// WorkersRepository スタッフマスタ（users）への読み取り専用アクセス
type WorkersRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

func NewWorkersRepository(db *sql.DB, logger *zap.Logger) *WorkersRepository {
	return &WorkersRepository{
		db:     db,
		logger: logger,
	}
}

// ResignerViolation is one fully offboarded worker who still has upcoming
// shift assignments, with enough context to build the alert message.
type ResignerViolation struct {
	UserID        string
	NameKanji     string
	ShiftCount    int
	NextShiftDate time.Time
}

// ListTerminalWorkersWithUpcomingShifts returns workers in terminal
// employment status assigned (any slot) to a shift dated on or after from.
func (r *WorkersRepository) ListTerminalWorkersWithUpcomingShifts(ctx context.Context, from time.Time) ([]ResignerViolation, error) {
	query := `
		SELECT u.user_id, u.name_kanji, COUNT(s.shift_id), MIN(s.shift_date)
		FROM users u
		JOIN shift s
		  ON s.user_id_1 = u.user_id
		  OR s.user_id_2 = u.user_id
		  OR s.user_id_3 = u.user_id
		WHERE u.employment_status = $1
		  AND s.shift_date >= $2
		GROUP BY u.user_id, u.name_kanji
		ORDER BY u.user_id
	`

	rows, err := r.db.QueryContext(ctx, query, models.EmploymentStatusTerminal, from)
	if err != nil {
		return nil, fmt.Errorf("failed to query resigner shifts: %w", err)
	}
	defer rows.Close()

	violations := []ResignerViolation{}
	for rows.Next() {
		var v ResignerViolation
		if err := rows.Scan(&v.UserID, &v.NameKanji, &v.ShiftCount, &v.NextShiftDate); err != nil {
			return nil, fmt.Errorf("failed to scan resigner violation: %w", err)
		}
		violations = append(violations, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate resigner violations: %w", err)
	}

	return violations, nil
}

// GetWorker returns a worker by id, or nil when not found.
func (r *WorkersRepository) GetWorker(ctx context.Context, userID string) (*models.Worker, error) {
	if userID == "" {
		return nil, fmt.Errorf("user_id is required")
	}

	query := `
		SELECT user_id, name_kanji, name_kana, employment_status, role_level
		FROM users
		WHERE user_id = $1
	`

	var worker models.Worker
	err := r.db.QueryRowContext(ctx, query, userID).Scan(
		&worker.UserID,
		&worker.NameKanji,
		&worker.NameKana,
		&worker.EmploymentStatus,
		&worker.RoleLevel,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get worker: %w", err)
	}

	return &worker, nil
}
