package repository

import (
	"context"
	"database/sql"
	"fmt"

	"go.uber.org/zap"

	"github.com/junkusano/famille-shift-matching-sub002/internal/models"
)

// DocumentsRepository 利用者の契約・計画書類（cs_documents）への読み取り専用アクセス
type DocumentsRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

func NewDocumentsRepository(db *sql.DB, logger *zap.Logger) *DocumentsRepository {
	return &DocumentsRepository{
		db:     db,
		logger: logger,
	}
}

// ListValidDocTypesBySubject returns, per subject, the set of document types
// with a valid document on file. Drafts and expired documents do not count.
func (r *DocumentsRepository) ListValidDocTypesBySubject(ctx context.Context) (map[string]map[string]bool, error) {
	query := `
		SELECT kaipoke_cs_id, doc_type
		FROM cs_documents
		WHERE status = $1
		  AND kaipoke_cs_id IS NOT NULL
	`

	rows, err := r.db.QueryContext(ctx, query, models.SubjectDocStatusValid)
	if err != nil {
		return nil, fmt.Errorf("failed to query subject documents: %w", err)
	}
	defer rows.Close()

	held := map[string]map[string]bool{}
	for rows.Next() {
		var subjectID, docType string
		if err := rows.Scan(&subjectID, &docType); err != nil {
			return nil, fmt.Errorf("failed to scan subject document: %w", err)
		}
		if held[subjectID] == nil {
			held[subjectID] = map[string]bool{}
		}
		held[subjectID][docType] = true
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate subject documents: %w", err)
	}

	return held, nil
}
