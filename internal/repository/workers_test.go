package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/junkusano/famille-shift-matching-sub002/internal/models"
)

func setupMockWorkersDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock, *WorkersRepository) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	repo := NewWorkersRepository(db, zap.NewNop())
	return db, mock, repo
}

func TestListTerminalWorkersWithUpcomingShifts(t *testing.T) {
	db, mock, repo := setupMockWorkersDB(t)
	defer db.Close()

	from := time.Date(2025, 11, 4, 0, 0, 0, 0, time.UTC)
	next := time.Date(2025, 11, 6, 0, 0, 0, 0, time.UTC)

	rows := sqlmock.NewRows([]string{"user_id", "name_kanji", "count", "min"}).
		AddRow("w-301", "鈴木 太郎", 3, next)

	mock.ExpectQuery(`SELECT u.user_id, u.name_kanji`).
		WithArgs(models.EmploymentStatusTerminal, from).
		WillReturnRows(rows)

	violations, err := repo.ListTerminalWorkersWithUpcomingShifts(context.Background(), from)

	require.NoError(t, err)
	require.Len(t, violations, 1)
	assert.Equal(t, "w-301", violations[0].UserID)
	assert.Equal(t, "鈴木 太郎", violations[0].NameKanji)
	assert.Equal(t, 3, violations[0].ShiftCount)
	assert.Equal(t, next, violations[0].NextShiftDate)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestListTerminalWorkersWithUpcomingShifts_Empty(t *testing.T) {
	db, mock, repo := setupMockWorkersDB(t)
	defer db.Close()

	from := time.Date(2025, 11, 4, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery(`SELECT u.user_id, u.name_kanji`).
		WithArgs(models.EmploymentStatusTerminal, from).
		WillReturnRows(sqlmock.NewRows([]string{"user_id", "name_kanji", "count", "min"}))

	violations, err := repo.ListTerminalWorkersWithUpcomingShifts(context.Background(), from)

	require.NoError(t, err)
	assert.Empty(t, violations)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetWorker_NotFound(t *testing.T) {
	db, mock, repo := setupMockWorkersDB(t)
	defer db.Close()

	mock.ExpectQuery(`SELECT user_id, name_kanji`).
		WithArgs("w-404").
		WillReturnError(sql.ErrNoRows)

	worker, err := repo.GetWorker(context.Background(), "w-404")

	require.NoError(t, err)
	assert.Nil(t, worker)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetWorker_RequiresID(t *testing.T) {
	db, mock, repo := setupMockWorkersDB(t)
	defer db.Close()

	worker, err := repo.GetWorker(context.Background(), "")

	assert.Error(t, err)
	assert.Nil(t, worker)
	assert.Contains(t, err.Error(), "user_id is required")

	require.NoError(t, mock.ExpectationsWereMet())
}
