package report

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/junkusano/famille-shift-matching-sub002/internal/models"
)

func TestGenerateAlertsWorkbook_RoundTrip(t *testing.T) {
	subjectID := "cs-101"
	shiftID := int64(2001)
	alerts := []*models.Alert{
		{
			AlertID:      "a-1",
			Fingerprint:  "a1b2c3d4e5f60718",
			Message:      "郵便番号が未登録です",
			Status:       models.AlertStatusOpen,
			StatusSource: models.AlertSourceSystem,
			Severity:     2,
			SubjectID:    &subjectID,
			ShiftID:      &shiftID,
			VisibleRoles: []string{"manager", "staff"},
			CreatedAt:    time.Date(2025, 11, 4, 9, 30, 0, 0, time.UTC),
		},
	}

	raw, err := GenerateAlertsWorkbook(alerts)
	require.NoError(t, err)
	require.NotEmpty(t, raw)

	f, err := excelize.OpenReader(bytes.NewReader(raw))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Alerts")
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, AlertExportHeader, rows[0][:len(AlertExportHeader)])
	assert.Equal(t, "a-1", rows[1][0])
	assert.Equal(t, models.AlertStatusOpen, rows[1][1])
	assert.Equal(t, "cs-101", rows[1][3])
	assert.Contains(t, rows[1][6], "郵便番号")
}

func TestGenerateAlertsWorkbook_EmptyList(t *testing.T) {
	raw, err := GenerateAlertsWorkbook(nil)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(raw))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Alerts")
	require.NoError(t, err)
	require.Len(t, rows, 1, "header only")
}
