package repository

import (
	"context"
	"database/sql"
	"fmt"

	"go.uber.org/zap"

	"github.com/junkusano/famille-shift-matching-sub002/internal/models"
)

// CertificatesRepository 資格証（user_documents）と資格マスタ（cs_master）への
// 読み取り専用アクセス
type CertificatesRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

func NewCertificatesRepository(db *sql.DB, logger *zap.Logger) *CertificatesRepository {
	return &CertificatesRepository{
		db:     db,
		logger: logger,
	}
}

// ListWorkerCertificates returns the certificate documents held by a worker.
// A worker with no rows is qualified for nothing, not "unknown".
func (r *CertificatesRepository) ListWorkerCertificates(ctx context.Context, userID string) ([]models.CertificateDocument, error) {
	if userID == "" {
		return nil, fmt.Errorf("user_id is required")
	}

	query := `
		SELECT user_id, label
		FROM user_documents
		WHERE user_id = $1
	`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query worker certificates: %w", err)
	}
	defer rows.Close()

	docs := []models.CertificateDocument{}
	for rows.Next() {
		var doc models.CertificateDocument
		if err := rows.Scan(&doc.UserID, &doc.Label); err != nil {
			return nil, fmt.Errorf("failed to scan certificate document: %w", err)
		}
		docs = append(docs, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate certificate documents: %w", err)
	}

	return docs, nil
}

// ListCertificateTaxonomy returns the full certificate master, active and
// inactive rows alike; the eligibility judge applies the filtering.
func (r *CertificatesRepository) ListCertificateTaxonomy(ctx context.Context) ([]models.CertificateMaster, error) {
	query := `
		SELECT category, label, is_active, service_group
		FROM cs_master
		WHERE category = $1
	`

	rows, err := r.db.QueryContext(ctx, query, models.TaxonomyCategoryCertificate)
	if err != nil {
		return nil, fmt.Errorf("failed to query certificate taxonomy: %w", err)
	}
	defer rows.Close()

	taxonomy := []models.CertificateMaster{}
	for rows.Next() {
		var row models.CertificateMaster
		var serviceGroup sql.NullString

		if err := rows.Scan(&row.Category, &row.Label, &row.IsActive, &serviceGroup); err != nil {
			return nil, fmt.Errorf("failed to scan taxonomy row: %w", err)
		}
		if serviceGroup.Valid {
			row.ServiceGroup = &serviceGroup.String
		}
		taxonomy = append(taxonomy, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate taxonomy rows: %w", err)
	}

	return taxonomy, nil
}
