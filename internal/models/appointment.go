package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

type Appointment struct {
	ID uint `gorm:"primaryKey" json:"id"`

	StudioID uint `gorm:"index" json:"studio_id"`

	ProfessionalID uint `gorm:"index" json:"professional_id"`
	Professional   User `gorm:"constraint:OnUpdate:CASCADE,OnDelete:SET NULL;" json:"professional"`

	// Bloqueios de agenda não têm cliente
	ClientID *uint  `json:"client_id"`
	Client   Client `gorm:"constraint:OnUpdate:CASCADE,OnDelete:SET NULL;" json:"client"`

	StartTime time.Time `gorm:"index" json:"start_time"`
	EndTime   time.Time `json:"end_time"`

	Status string `gorm:"size:24;default:'scheduled'" json:"status"`

	// Snapshot do serviço composto, calculado uma única vez no salvamento
	ServiceName     string          `gorm:"size:255" json:"service_name"`
	ServicePrice    decimal.Decimal `gorm:"type:decimal(12,2)" json:"service_price"`
	ServiceDuration int             `json:"service_duration"`
	ServiceColor    string          `gorm:"size:16" json:"service_color"`
	Services        datatypes.JSON  `gorm:"type:jsonb" json:"services"`

	Origin      string     `gorm:"size:20;default:'internal'" json:"origin"`
	Notes       string     `gorm:"size:255" json:"notes"`
	CancelledAt *time.Time `json:"cancelled_at"`
	CompletedAt *time.Time `json:"completed_at"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
