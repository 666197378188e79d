package models

import (
	"time"

	"gorm.io/datatypes"
)

// AuditLog é a trilha de ações sensíveis do studio (status, caixa, cadastros).
type AuditLog struct {
	ID       uint  `gorm:"primaryKey" json:"id"`
	StudioID uint  `gorm:"index:idx_audit_studio_created,priority:1" json:"studio_id"`
	UserID   *uint `json:"user_id"`

	Action   string         `gorm:"size:50;not null;index" json:"action"`
	Entity   string         `gorm:"size:50" json:"entity"`
	EntityID *uint          `json:"entity_id"`
	Metadata datatypes.JSON `gorm:"type:jsonb" json:"metadata,omitempty"`

	CreatedAt time.Time `gorm:"index:idx_audit_studio_created,priority:2" json:"created_at"`
}
