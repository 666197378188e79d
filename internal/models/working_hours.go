package models

import "time"

// WorkingHours é o expediente de um profissional num dia da semana
// (0 = domingo). Horários em HH:MM no fuso do studio; almoço é opcional.
type WorkingHours struct {
	ID             uint `gorm:"primaryKey" json:"id"`
	StudioID       uint `gorm:"index" json:"studio_id"`
	ProfessionalID uint `gorm:"uniqueIndex:idx_wh_professional_day,priority:1" json:"professional_id"`
	Weekday        int  `gorm:"uniqueIndex:idx_wh_professional_day,priority:2;check:weekday BETWEEN 0 AND 6" json:"weekday"`

	Active     bool   `json:"active"`
	StartTime  string `gorm:"size:5" json:"start_time"`
	EndTime    string `gorm:"size:5" json:"end_time"`
	LunchStart string `gorm:"size:5" json:"lunch_start,omitempty"`
	LunchEnd   string `gorm:"size:5" json:"lunch_end,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
