package audit

import (
	"context"
	"encoding/json"
	"fmt"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/BruksfildServices01/studio-scheduler/internal/models"
)

// Logger é o Sink gorm: uma linha em audit_logs por evento.
type Logger struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Logger {
	return &Logger{db: db}
}

var _ Sink = (*Logger)(nil)

func (l *Logger) Log(ctx context.Context, ev Event) error {
	row := models.AuditLog{
		StudioID: ev.StudioID,
		UserID:   ev.UserID,
		Action:   ev.Action,
		Entity:   ev.Entity,
		EntityID: ev.EntityID,
	}

	if ev.Metadata != nil {
		raw, err := json.Marshal(ev.Metadata)
		if err != nil {
			return fmt.Errorf("audit: metadata de %s: %w", ev.Action, err)
		}
		row.Metadata = datatypes.JSON(raw)
	}

	return l.db.WithContext(ctx).Create(&row).Error
}
