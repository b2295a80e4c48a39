package checks

import (
	"context"
	"fmt"

	"github.com/junkusano/famille-shift-matching-sub002/internal/models"
)

// CertificateSource is the read side the cross-reference needs.
type CertificateSource interface {
	ListWorkerCertificates(ctx context.Context, userID string) ([]models.CertificateDocument, error)
	ListCertificateTaxonomy(ctx context.Context) ([]models.CertificateMaster, error)
}

// ShiftComplianceJudge decides whether a shift's attending workers cover the
// qualifications its service category requires. Worker qualified-key sets are
// memoized per run so a worker on many shifts is resolved once.
type ShiftComplianceJudge struct {
	certs    CertificateSource
	taxonomy []models.CertificateMaster
	memo     map[string][]string // user_id → qualified keys
}

// NewShiftComplianceJudge loads the taxonomy once for the run.
func NewShiftComplianceJudge(ctx context.Context, certs CertificateSource) (*ShiftComplianceJudge, error) {
	taxonomy, err := certs.ListCertificateTaxonomy(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load certificate taxonomy: %w", err)
	}

	return &ShiftComplianceJudge{
		certs:    certs,
		taxonomy: taxonomy,
		memo:     map[string][]string{},
	}, nil
}

// Judge returns whether the shift is compliant, and if not, which required
// service keys no attending worker covers. A service code outside the
// mapping table requires nothing and passes automatically.
func (j *ShiftComplianceJudge) Judge(ctx context.Context, shift models.Shift) (bool, []string, error) {
	required := KeysForServiceCode(shift.ServiceCode)
	if len(required) == 0 {
		return true, nil, nil
	}

	covered := map[string]bool{}
	for _, userID := range shift.AttendingWorkerIDs() {
		keys, err := j.qualifiedKeys(ctx, userID)
		if err != nil {
			return false, nil, err
		}
		for _, key := range keys {
			covered[key] = true
		}
	}

	var missing []string
	for _, key := range required {
		if !covered[key] {
			missing = append(missing, key)
		}
	}

	return len(missing) == 0, missing, nil
}

func (j *ShiftComplianceJudge) qualifiedKeys(ctx context.Context, userID string) ([]string, error) {
	if keys, ok := j.memo[userID]; ok {
		return keys, nil
	}

	docs, err := j.certs.ListWorkerCertificates(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load certificates for %s: %w", userID, err)
	}

	keys := DetermineServicesFromCertificates(docs, j.taxonomy)
	j.memo[userID] = keys
	return keys, nil
}
