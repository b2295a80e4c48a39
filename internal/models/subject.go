package models

import (
	"time"
)

// Subject 利用者（cs_kaipoke_info テーブル）
type Subject struct {
	KaipokeCsID string     `json:"kaipoke_cs_id" db:"kaipoke_cs_id"`
	Name        string     `json:"name" db:"name"`
	PostalCode  *string    `json:"postal_code,omitempty" db:"postal_code"`
	IsActive    bool       `json:"is_active" db:"is_active"`
	EndAt       *time.Time `json:"end_at,omitempty" db:"end_at"`
	KodoPlanURL *string    `json:"kodo_plan_url,omitempty" db:"kodo_plan_url"`
}
