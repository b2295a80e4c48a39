package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/junkusano/famille-shift-matching-sub002/internal/models"
)

// SubjectsRepository 利用者マスタ（cs_kaipoke_info）への読み取り専用アクセス
type SubjectsRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

func NewSubjectsRepository(db *sql.DB, logger *zap.Logger) *SubjectsRepository {
	return &SubjectsRepository{
		db:     db,
		logger: logger,
	}
}

// ListActiveMissingPostalCode returns active subjects whose postal code is
// NULL or empty. Inactive subjects are out of scope for the check.
func (r *SubjectsRepository) ListActiveMissingPostalCode(ctx context.Context, limit int) ([]models.Subject, error) {
	if limit <= 0 {
		limit = 500
	}

	query := `
		SELECT kaipoke_cs_id, name, postal_code, is_active
		FROM cs_kaipoke_info
		WHERE is_active = true
		  AND (postal_code IS NULL OR postal_code = '')
		ORDER BY kaipoke_cs_id
		LIMIT $1
	`

	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query subjects missing postal code: %w", err)
	}
	defer rows.Close()

	return scanSubjects(rows)
}

// ListActiveSubjectsMissingKodoPlan returns active subjects that have at least
// one shift in the given service codes (行動援護) but no support-plan link.
func (r *SubjectsRepository) ListActiveSubjectsMissingKodoPlan(ctx context.Context, serviceCodes []string) ([]models.Subject, error) {
	if len(serviceCodes) == 0 {
		return []models.Subject{}, nil
	}

	query := `
		SELECT DISTINCT c.kaipoke_cs_id, c.name, c.postal_code, c.is_active
		FROM cs_kaipoke_info c
		JOIN shift s ON s.kaipoke_cs_id = c.kaipoke_cs_id
		WHERE c.is_active = true
		  AND (c.kodo_plan_url IS NULL OR c.kodo_plan_url = '')
		  AND s.service_code = ANY($1)
		ORDER BY c.kaipoke_cs_id
	`

	rows, err := r.db.QueryContext(ctx, query, pq.Array(serviceCodes))
	if err != nil {
		return nil, fmt.Errorf("failed to query subjects missing kodo plan: %w", err)
	}
	defer rows.Close()

	return scanSubjects(rows)
}

func scanSubjects(rows *sql.Rows) ([]models.Subject, error) {
	subjects := []models.Subject{}
	for rows.Next() {
		var subject models.Subject
		var postalCode sql.NullString

		if err := rows.Scan(&subject.KaipokeCsID, &subject.Name, &postalCode, &subject.IsActive); err != nil {
			return nil, fmt.Errorf("failed to scan subject: %w", err)
		}
		if postalCode.Valid {
			subject.PostalCode = &postalCode.String
		}
		subjects = append(subjects, subject)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate subjects: %w", err)
	}
	return subjects, nil
}
