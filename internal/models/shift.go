package models

import (
	"time"
)

// RecordStatusSubmitted is the completed value of shift_shift_records.status.
const RecordStatusSubmitted = "submitted"

// Shift 1件の訪問予定（shift テーブル）
// Up to three worker slots; slot 1 always attends, slots 2-3 carry an
// independent attending flag.
type Shift struct {
	ShiftID     int64      `json:"shift_id" db:"shift_id"`
	KaipokeCsID *string    `json:"kaipoke_cs_id,omitempty" db:"kaipoke_cs_id"`
	ShiftDate   time.Time  `json:"shift_date" db:"shift_date"`
	StartTime   string     `json:"start_time" db:"start_time"`
	EndTime     string     `json:"end_time" db:"end_time"`
	ServiceCode string     `json:"service_code" db:"service_code"`
	UserID1     *string    `json:"user_id_1,omitempty" db:"user_id_1"`
	UserID2     *string    `json:"user_id_2,omitempty" db:"user_id_2"`
	UserID3     *string    `json:"user_id_3,omitempty" db:"user_id_3"`
	AttendFlg2  bool       `json:"attend_flg_2" db:"attend_flg_2"`
	AttendFlg3  bool       `json:"attend_flg_3" db:"attend_flg_3"`

	// Joined from shift_shift_records when the query asks for it.
	RecordStatus *string `json:"record_status,omitempty" db:"record_status"`
}

// AttendingWorkerIDs returns the worker ids actually attending this shift.
// Slot 1 is always attending; slots 2-3 only when their flag is set.
func (s *Shift) AttendingWorkerIDs() []string {
	var ids []string
	if s.UserID1 != nil && *s.UserID1 != "" {
		ids = append(ids, *s.UserID1)
	}
	if s.AttendFlg2 && s.UserID2 != nil && *s.UserID2 != "" {
		ids = append(ids, *s.UserID2)
	}
	if s.AttendFlg3 && s.UserID3 != nil && *s.UserID3 != "" {
		ids = append(ids, *s.UserID3)
	}
	return ids
}
