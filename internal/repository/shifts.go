package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/junkusano/famille-shift-matching-sub002/internal/models"
)

// ShiftsRepository シフト（shift / shift_shift_records）への読み取り専用アクセス
// The alert engine never mutates shifts.
type ShiftsRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

func NewShiftsRepository(db *sql.DB, logger *zap.Logger) *ShiftsRepository {
	return &ShiftsRepository{
		db:     db,
		logger: logger,
	}
}

const shiftColumns = `
	s.shift_id,
	s.kaipoke_cs_id,
	s.shift_date,
	s.start_time,
	s.end_time,
	s.service_code,
	s.user_id_1,
	s.user_id_2,
	s.user_id_3,
	s.attend_flg_2,
	s.attend_flg_3
`

// ListShiftsFrom returns shifts dated on or after from, oldest first.
// Shifts without a subject join key are filtered out here: absence of the
// key means "not applicable", not a fault.
func (r *ShiftsRepository) ListShiftsFrom(ctx context.Context, from time.Time, limit int) ([]models.Shift, error) {
	if limit <= 0 {
		limit = 1000
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM shift s
		WHERE s.shift_date >= $1
		  AND s.kaipoke_cs_id IS NOT NULL
		ORDER BY s.shift_date, s.shift_id
		LIMIT $2
	`, shiftColumns)

	rows, err := r.db.QueryContext(ctx, query, from, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query shifts: %w", err)
	}
	defer rows.Close()

	return scanShifts(rows, false)
}

// ListUnfinishedRecordShifts returns shifts that started between floor and
// before (exclusive) whose visit record is missing or not yet submitted.
// Placeholder subjects (id prefix excludePrefix) are filtered in SQL.
func (r *ShiftsRepository) ListUnfinishedRecordShifts(ctx context.Context, floor, before time.Time, excludePrefix string, limit int) ([]models.Shift, error) {
	if limit <= 0 {
		limit = 1000
	}

	query := fmt.Sprintf(`
		SELECT %s, rec.status
		FROM shift s
		LEFT JOIN shift_shift_records rec ON rec.shift_id = s.shift_id
		WHERE s.shift_date >= $1
		  AND s.shift_date < $2
		  AND s.kaipoke_cs_id IS NOT NULL
		  AND ($3 = '' OR s.kaipoke_cs_id NOT LIKE $3 || '%%')
		  AND (rec.status IS NULL OR rec.status <> $4)
		ORDER BY s.shift_date, s.shift_id
		LIMIT $5
	`, shiftColumns)

	rows, err := r.db.QueryContext(ctx, query, floor, before, excludePrefix, models.RecordStatusSubmitted, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query unfinished record shifts: %w", err)
	}
	defer rows.Close()

	return scanShifts(rows, true)
}

// SubjectRef kaipoke_cs_id と表示名のペア（メッセージ組み立て用）
type SubjectRef struct {
	KaipokeCsID string
	Name        string
}

// ListSubjectsWithShifts returns the distinct active subjects appearing in
// shift assignments dated on or after from.
func (r *ShiftsRepository) ListSubjectsWithShifts(ctx context.Context, from time.Time) ([]SubjectRef, error) {
	query := `
		SELECT DISTINCT c.kaipoke_cs_id, c.name
		FROM shift s
		JOIN cs_kaipoke_info c ON c.kaipoke_cs_id = s.kaipoke_cs_id
		WHERE s.shift_date >= $1
		  AND c.is_active = true
		ORDER BY c.kaipoke_cs_id
	`

	rows, err := r.db.QueryContext(ctx, query, from)
	if err != nil {
		return nil, fmt.Errorf("failed to query subjects with shifts: %w", err)
	}
	defer rows.Close()

	return scanSubjectRefs(rows)
}

// SubjectServiceRow one (subject, service_code) pair observed in shifts.
type SubjectServiceRow struct {
	KaipokeCsID string
	Name        string
	ServiceCode string
}

// ListSubjectServiceCodes returns the distinct (active subject, service code)
// pairs for shifts in the given codes dated on or after from.
func (r *ShiftsRepository) ListSubjectServiceCodes(ctx context.Context, from time.Time, serviceCodes []string) ([]SubjectServiceRow, error) {
	if len(serviceCodes) == 0 {
		return []SubjectServiceRow{}, nil
	}

	query := `
		SELECT DISTINCT c.kaipoke_cs_id, c.name, s.service_code
		FROM shift s
		JOIN cs_kaipoke_info c ON c.kaipoke_cs_id = s.kaipoke_cs_id
		WHERE s.shift_date >= $1
		  AND s.service_code = ANY($2)
		  AND c.is_active = true
		ORDER BY c.kaipoke_cs_id, s.service_code
	`

	rows, err := r.db.QueryContext(ctx, query, from, pq.Array(serviceCodes))
	if err != nil {
		return nil, fmt.Errorf("failed to query subject service codes: %w", err)
	}
	defer rows.Close()

	result := []SubjectServiceRow{}
	for rows.Next() {
		var row SubjectServiceRow
		if err := rows.Scan(&row.KaipokeCsID, &row.Name, &row.ServiceCode); err != nil {
			return nil, fmt.Errorf("failed to scan subject service row: %w", err)
		}
		result = append(result, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate subject service rows: %w", err)
	}

	return result, nil
}

func scanSubjectRefs(rows *sql.Rows) ([]SubjectRef, error) {
	refs := []SubjectRef{}
	for rows.Next() {
		var ref SubjectRef
		if err := rows.Scan(&ref.KaipokeCsID, &ref.Name); err != nil {
			return nil, fmt.Errorf("failed to scan subject ref: %w", err)
		}
		refs = append(refs, ref)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate subject refs: %w", err)
	}
	return refs, nil
}

func scanShifts(rows *sql.Rows, withRecordStatus bool) ([]models.Shift, error) {
	shifts := []models.Shift{}
	for rows.Next() {
		var shift models.Shift
		var subjectID, userID1, userID2, userID3 sql.NullString
		var recordStatus sql.NullString

		dest := []interface{}{
			&shift.ShiftID,
			&subjectID,
			&shift.ShiftDate,
			&shift.StartTime,
			&shift.EndTime,
			&shift.ServiceCode,
			&userID1,
			&userID2,
			&userID3,
			&shift.AttendFlg2,
			&shift.AttendFlg3,
		}
		if withRecordStatus {
			dest = append(dest, &recordStatus)
		}

		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("failed to scan shift: %w", err)
		}

		if subjectID.Valid {
			shift.KaipokeCsID = &subjectID.String
		}
		if userID1.Valid {
			shift.UserID1 = &userID1.String
		}
		if userID2.Valid {
			shift.UserID2 = &userID2.String
		}
		if userID3.Valid {
			shift.UserID3 = &userID3.String
		}
		if recordStatus.Valid {
			shift.RecordStatus = &recordStatus.String
		}

		shifts = append(shifts, shift)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate shifts: %w", err)
	}
	return shifts, nil
}
