package models

// EmploymentStatusTerminal marks a worker removed from both the messaging
// system (LINE WORKS) and the scheduling system (kaipoke). A worker in this
// status must never appear on a future shift; ResignerShiftCheck exists to
// catch violations of that invariant.
const EmploymentStatusTerminal = "lw_kaipoke_deleted"

// Worker スタッフ（users テーブル）
type Worker struct {
	UserID           string `json:"user_id" db:"user_id"`
	NameKanji        string `json:"name_kanji" db:"name_kanji"`
	NameKana         string `json:"name_kana" db:"name_kana"`
	EmploymentStatus string `json:"employment_status" db:"employment_status"`
	RoleLevel        int    `json:"role_level" db:"role_level"`
}
