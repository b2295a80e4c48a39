package checks

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/junkusano/famille-shift-matching-sub002/internal/models"
)

// fakeCertificateSource serves fixed certificate data and counts lookups so
// memoization is observable.
type fakeCertificateSource struct {
	taxonomy    []models.CertificateMaster
	docs        map[string][]models.CertificateDocument
	lookups     map[string]int
	taxonomyErr error
	docsErr     map[string]error
}

func newFakeCertificateSource() *fakeCertificateSource {
	return &fakeCertificateSource{
		taxonomy: []models.CertificateMaster{
			certMaster("行動援護従業者養成研修", ServiceKeyKodoengo, true),
			certMaster("重度訪問介護従業者養成研修", ServiceKeyJudo, true),
			certMaster("介護職員初任者研修", ServiceKeyKyotaku, true),
		},
		docs:    map[string][]models.CertificateDocument{},
		lookups: map[string]int{},
		docsErr: map[string]error{},
	}
}

func (f *fakeCertificateSource) ListWorkerCertificates(ctx context.Context, userID string) ([]models.CertificateDocument, error) {
	f.lookups[userID]++
	if err := f.docsErr[userID]; err != nil {
		return nil, err
	}
	return f.docs[userID], nil
}

func (f *fakeCertificateSource) ListCertificateTaxonomy(ctx context.Context) ([]models.CertificateMaster, error) {
	if f.taxonomyErr != nil {
		return nil, f.taxonomyErr
	}
	return f.taxonomy, nil
}

func testShift(serviceCode string, workerIDs ...string) models.Shift {
	shift := models.Shift{
		ShiftID:     1001,
		ShiftDate:   time.Date(2025, 11, 4, 0, 0, 0, 0, time.UTC),
		StartTime:   "09:00",
		EndTime:     "11:00",
		ServiceCode: serviceCode,
	}
	if len(workerIDs) > 0 {
		shift.UserID1 = strPtr(workerIDs[0])
	}
	if len(workerIDs) > 1 {
		shift.UserID2 = strPtr(workerIDs[1])
		shift.AttendFlg2 = true
	}
	if len(workerIDs) > 2 {
		shift.UserID3 = strPtr(workerIDs[2])
		shift.AttendFlg3 = true
	}
	return shift
}

// ============================================
// シフト×資格クロスリファレンス
// ============================================

func TestJudge_QualifiedWorkerPasses(t *testing.T) {
	certs := newFakeCertificateSource()
	certs.docs["u1"] = []models.CertificateDocument{
		{UserID: "u1", Label: "行動援護従業者養成研修"},
	}

	judge, err := NewShiftComplianceJudge(context.Background(), certs)
	require.NoError(t, err)

	compliant, missing, err := judge.Judge(context.Background(), testShift("行動援護", "u1"))

	require.NoError(t, err)
	assert.True(t, compliant)
	assert.Empty(t, missing)
}

func TestJudge_UnqualifiedWorkerFails(t *testing.T) {
	certs := newFakeCertificateSource()
	certs.docs["u1"] = []models.CertificateDocument{
		{UserID: "u1", Label: "介護職員初任者研修"},
	}

	judge, err := NewShiftComplianceJudge(context.Background(), certs)
	require.NoError(t, err)

	compliant, missing, err := judge.Judge(context.Background(), testShift("行動援護", "u1"))

	require.NoError(t, err)
	assert.False(t, compliant)
	assert.Equal(t, []string{ServiceKeyKodoengo}, missing)
}

func TestJudge_AnyAttendingWorkerCovers(t *testing.T) {
	certs := newFakeCertificateSource()
	certs.docs["u2"] = []models.CertificateDocument{
		{UserID: "u2", Label: "重度訪問介護従業者養成研修"},
	}

	judge, err := NewShiftComplianceJudge(context.Background(), certs)
	require.NoError(t, err)

	// u1 holds nothing; the attending second worker carries the shift.
	compliant, missing, err := judge.Judge(context.Background(), testShift("重度訪問介護", "u1", "u2"))

	require.NoError(t, err)
	assert.True(t, compliant)
	assert.Empty(t, missing)
}

func TestJudge_NonAttendingWorkerDoesNotCover(t *testing.T) {
	certs := newFakeCertificateSource()
	certs.docs["u2"] = []models.CertificateDocument{
		{UserID: "u2", Label: "重度訪問介護従業者養成研修"},
	}

	shift := testShift("重度訪問介護", "u1", "u2")
	shift.AttendFlg2 = false

	judge, err := NewShiftComplianceJudge(context.Background(), certs)
	require.NoError(t, err)

	compliant, missing, err := judge.Judge(context.Background(), shift)

	require.NoError(t, err)
	assert.False(t, compliant)
	assert.Equal(t, []string{ServiceKeyJudo}, missing)
	assert.Zero(t, certs.lookups["u2"], "non-attending worker should not be resolved")
}

func TestJudge_UnmappedServiceCodePasses(t *testing.T) {
	certs := newFakeCertificateSource()

	judge, err := NewShiftComplianceJudge(context.Background(), certs)
	require.NoError(t, err)

	compliant, missing, err := judge.Judge(context.Background(), testShift("自費サービス", "u1"))

	require.NoError(t, err)
	assert.True(t, compliant)
	assert.Empty(t, missing)
	assert.Empty(t, certs.lookups, "unmapped code should resolve no workers")
}

func TestJudge_MemoizesWorkerLookups(t *testing.T) {
	certs := newFakeCertificateSource()
	certs.docs["u1"] = []models.CertificateDocument{
		{UserID: "u1", Label: "行動援護従業者養成研修"},
	}

	judge, err := NewShiftComplianceJudge(context.Background(), certs)
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		_, _, err := judge.Judge(context.Background(), testShift("行動援護", "u1"))
		require.NoError(t, err)
	}

	assert.Equal(t, 1, certs.lookups["u1"])
}

func TestJudge_WorkerLookupErrorPropagates(t *testing.T) {
	certs := newFakeCertificateSource()
	certs.docsErr["u1"] = fmt.Errorf("connection reset")

	judge, err := NewShiftComplianceJudge(context.Background(), certs)
	require.NoError(t, err)

	_, _, err = judge.Judge(context.Background(), testShift("行動援護", "u1"))

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "u1")
}

func TestNewShiftComplianceJudge_TaxonomyError(t *testing.T) {
	certs := newFakeCertificateSource()
	certs.taxonomyErr = fmt.Errorf("relation does not exist")

	judge, err := NewShiftComplianceJudge(context.Background(), certs)

	assert.Error(t, err)
	assert.Nil(t, judge)
}
