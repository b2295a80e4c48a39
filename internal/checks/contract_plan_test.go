package checks

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/junkusano/famille-shift-matching-sub002/internal/repository"
)

type fakeSubjectServiceSource struct {
	rows     []repository.SubjectServiceRow
	gotFrom  time.Time
	gotCodes []string
}

func (f *fakeSubjectServiceSource) ListSubjectServiceCodes(ctx context.Context, from time.Time, serviceCodes []string) ([]repository.SubjectServiceRow, error) {
	f.gotFrom = from
	f.gotCodes = serviceCodes
	return f.rows, nil
}

type fakeSubjectDocSource struct {
	held map[string]map[string]bool
}

func (f *fakeSubjectDocSource) ListValidDocTypesBySubject(ctx context.Context) (map[string]map[string]bool, error) {
	return f.held, nil
}

func newContractPlanCheck(shifts *fakeSubjectServiceSource, docs *fakeSubjectDocSource, sink *fakeAlertSink) *CsContractPlanCheck {
	return NewCsContractPlanCheck(shifts, docs, sink, NewLinkBuilder("https://portal.example.jp"),
		time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC), zap.NewNop())
}

// ============================================
// 契約・計画書類チェック
// ============================================

func TestContractPlanCheck_MissingBaseDocuments(t *testing.T) {
	shifts := &fakeSubjectServiceSource{rows: []repository.SubjectServiceRow{
		{KaipokeCsID: "cs-101", Name: "山田 花子", ServiceCode: "身体介護"},
	}}
	docs := &fakeSubjectDocSource{held: map[string]map[string]bool{}}
	sink := newFakeAlertSink()
	check := newContractPlanCheck(shifts, docs, sink)

	result, err := check.Run(context.Background(), Options{})
	require.NoError(t, err)
	assert.Equal(t, Result{Scanned: 1, Created: 1}, result)

	require.Len(t, sink.inserts, 1)
	assert.Contains(t, sink.inserts[0].Message, DocTypeContract)
	assert.Contains(t, sink.inserts[0].Message, DocTypeDisclosure)
}

func TestContractPlanCheck_CompleteDocumentsPass(t *testing.T) {
	shifts := &fakeSubjectServiceSource{rows: []repository.SubjectServiceRow{
		{KaipokeCsID: "cs-101", Name: "山田 花子", ServiceCode: "身体介護"},
	}}
	docs := &fakeSubjectDocSource{held: map[string]map[string]bool{
		"cs-101": {DocTypeContract: true, DocTypeDisclosure: true},
	}}
	sink := newFakeAlertSink()
	check := newContractPlanCheck(shifts, docs, sink)

	result, err := check.Run(context.Background(), Options{})
	require.NoError(t, err)
	assert.Equal(t, Result{}, result)
}

func TestContractPlanCheck_KodoengoRequiresSupportPlan(t *testing.T) {
	shifts := &fakeSubjectServiceSource{rows: []repository.SubjectServiceRow{
		{KaipokeCsID: "cs-101", Name: "山田 花子", ServiceCode: "身体介護"},
		{KaipokeCsID: "cs-101", Name: "山田 花子", ServiceCode: "行動援護"},
	}}
	docs := &fakeSubjectDocSource{held: map[string]map[string]bool{
		"cs-101": {DocTypeContract: true, DocTypeDisclosure: true},
	}}
	sink := newFakeAlertSink()
	check := newContractPlanCheck(shifts, docs, sink)

	result, err := check.Run(context.Background(), Options{})
	require.NoError(t, err)
	assert.Equal(t, Result{Scanned: 1, Created: 1}, result)

	require.Len(t, sink.inserts, 1)
	assert.Contains(t, sink.inserts[0].Message, DocTypeSupportPlan)
	assert.NotContains(t, sink.inserts[0].Message, DocTypeContract+"、")
}

func TestContractPlanCheck_FingerprintTracksMissingSet(t *testing.T) {
	shifts := &fakeSubjectServiceSource{rows: []repository.SubjectServiceRow{
		{KaipokeCsID: "cs-101", Name: "山田 花子", ServiceCode: "行動援護"},
	}}
	docs := &fakeSubjectDocSource{held: map[string]map[string]bool{}}
	sink := newFakeAlertSink()
	check := newContractPlanCheck(shifts, docs, sink)

	_, err := check.Run(context.Background(), Options{})
	require.NoError(t, err)
	require.Len(t, sink.inserts, 1)

	// The subject registers the contract pair; only the support plan is
	// still missing. A different missing set is a different violation.
	docs.held["cs-101"] = map[string]bool{DocTypeContract: true, DocTypeDisclosure: true}
	result, err := check.Run(context.Background(), Options{})
	require.NoError(t, err)
	assert.Equal(t, Result{Scanned: 1, Created: 1}, result)
	assert.Len(t, sink.inserts, 2)
	assert.NotEqual(t, sink.inserts[0].Fingerprint, sink.inserts[1].Fingerprint)
}

func TestContractPlanCheck_QueriesAllKnownCodes(t *testing.T) {
	shifts := &fakeSubjectServiceSource{}
	docs := &fakeSubjectDocSource{}
	sink := newFakeAlertSink()
	check := newContractPlanCheck(shifts, docs, sink)

	_, err := check.Run(context.Background(), Options{})
	require.NoError(t, err)
	assert.Equal(t, AllServiceCodes(), shifts.gotCodes)
}
