package handlers

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/BruksfildServices01/studio-scheduler/internal/httperr"
	"github.com/BruksfildServices01/studio-scheduler/internal/httpresp"
	"github.com/BruksfildServices01/studio-scheduler/internal/models"
)

type AuditLogsHandler struct {
	db *gorm.DB
}

func NewAuditLogsHandler(db *gorm.DB) *AuditLogsHandler {
	return &AuditLogsHandler{db: db}
}

// AuditQuery são os filtros aceitos na listagem. Datas são dias no fuso do studio.
type AuditQuery struct {
	Action   string `form:"action"`
	Entity   string `form:"entity"`
	EntityID uint   `form:"entity_id"`
	From     string `form:"from"`
	To       string `form:"to"`
	Page     int    `form:"page,default=1" binding:"min=1"`
	Limit    int    `form:"limit,default=50" binding:"min=1,max=200"`
}

// GET /api/me/audit-logs
func (h *AuditLogsHandler) List(c *gin.Context) {
	t, ok := tenantOf(c)
	if !ok {
		return
	}

	var q AuditQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		httperr.BadRequest(c, "invalid_query", "Filtros inválidos.")
		return
	}

	var studio models.Studio
	if err := h.db.WithContext(c.Request.Context()).First(&studio, t.StudioID).Error; err != nil {
		httperr.NotFound(c, "studio_not_found", "Studio não encontrado.")
		return
	}

	// 1️⃣ base sempre presa ao studio
	base := h.db.WithContext(c.Request.Context()).
		Model(&models.AuditLog{}).
		Where("studio_id = ?", t.StudioID)

	// 2️⃣ filtros opcionais
	if q.Action != "" {
		base = base.Where("action = ?", q.Action)
	}
	if q.Entity != "" {
		base = base.Where("entity = ?", q.Entity)
	}
	if q.EntityID != 0 {
		base = base.Where("entity_id = ?", q.EntityID)
	}
	if q.From != "" {
		from, err := parseDateInStudio(&studio, q.From)
		if err != nil {
			httperr.BadRequest(c, "invalid_date", "Data inicial inválida.")
			return
		}
		base = base.Where("created_at >= ?", from)
	}
	if q.To != "" {
		to, err := parseDateInStudio(&studio, q.To)
		if err != nil {
			httperr.BadRequest(c, "invalid_date", "Data final inválida.")
			return
		}
		// o dia final entra inteiro
		base = base.Where("created_at < ?", to.AddDate(0, 0, 1))
	}

	// 3️⃣ total do filtro e página pedida, cada um na sua sessão
	base = base.Session(&gorm.Session{})

	var total int64
	if err := base.Count(&total).Error; err != nil {
		httperr.Internal(c, "audit_count_failed", "Erro ao contar logs.")
		return
	}

	var logs []models.AuditLog
	if err := base.
		Order("created_at DESC").
		Limit(q.Limit).
		Offset((q.Page - 1) * q.Limit).
		Find(&logs).Error; err != nil {
		httperr.Internal(c, "audit_list_failed", "Erro ao listar logs.")
		return
	}

	httpresp.Page(c, logs, total, q.Page, q.Limit)
}
