package models

import "time"

type Studio struct {
	ID                uint   `gorm:"primaryKey" json:"id"`
	Name              string `gorm:"size:100;not null" json:"name"`
	Slug              string `gorm:"size:100;uniqueIndex;not null" json:"slug"`
	Phone             string `gorm:"size:20" json:"phone"`
	Address           string `gorm:"size:255" json:"address"`
	Timezone          string `gorm:"size:64;default:'America/Sao_Paulo'" json:"timezone"`
	MinAdvanceMinutes int    `gorm:"default:120" json:"min_advance_minutes"`

	// Janela e granularidade da grade de agenda
	DayStartHour int  `gorm:"default:8" json:"day_start_hour"`
	DayEndHour   int  `gorm:"default:20" json:"day_end_hour"`
	SlotMinutes  int  `gorm:"default:15" json:"slot_minutes"`
	AllowOverlap bool `gorm:"default:true" json:"allow_overlap"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
