package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/BruksfildServices01/studio-scheduler/internal/httperr"
	"github.com/BruksfildServices01/studio-scheduler/internal/models"
	"github.com/BruksfildServices01/studio-scheduler/internal/tenant"
)

type WorkingHoursHandler struct {
	db *gorm.DB
}

func NewWorkingHoursHandler(db *gorm.DB) *WorkingHoursHandler {
	return &WorkingHoursHandler{db: db}
}

type WorkingDayConfig struct {
	Weekday    int    `json:"weekday" binding:"min=0,max=6"`
	Active     bool   `json:"active"`
	StartTime  string `json:"start_time"`
	EndTime    string `json:"end_time"`
	LunchStart string `json:"lunch_start"`
	LunchEnd   string `json:"lunch_end"`
}

type WorkingHoursUpdateRequest struct {
	Days []WorkingDayConfig `json:"days" binding:"required,dive"`
}

// professionalFor resolve de quem é o expediente: o próprio usuário ou,
// para gerentes, o professional_id informado (sempre do mesmo studio).
func (h *WorkingHoursHandler) professionalFor(c *gin.Context) (tenant.Context, uint, bool) {
	t, ok := tenantOf(c)
	if !ok {
		return tenant.Context{}, 0, false
	}

	id := t.UserID
	if p := c.Query("professional_id"); p != "" {
		v, err := parseUint(p)
		if err != nil || v == 0 {
			httperr.BadRequest(c, "invalid_professional_id", "Profissional inválido.")
			return tenant.Context{}, 0, false
		}
		if v != t.UserID && !t.CanManage() {
			httperr.Forbidden(c, "forbidden", "Acesso restrito a gerentes.")
			return tenant.Context{}, 0, false
		}
		id = v
	}

	var count int64
	h.db.WithContext(c.Request.Context()).
		Model(&models.User{}).
		Where("id = ? AND studio_id = ?", id, t.StudioID).
		Count(&count)
	if count == 0 {
		httperr.NotFound(c, "professional_not_found", "Profissional não encontrado.")
		return tenant.Context{}, 0, false
	}
	return t, id, true
}

func (h *WorkingHoursHandler) Get(c *gin.Context) {
	_, professionalID, ok := h.professionalFor(c)
	if !ok {
		return
	}

	var hours []models.WorkingHours
	if err := h.db.WithContext(c.Request.Context()).
		Where("professional_id = ?", professionalID).
		Order("weekday ASC").
		Find(&hours).Error; err != nil {

		httperr.Internal(c, "failed_to_get_working_hours", "Erro ao buscar expediente.")
		return
	}

	c.JSON(http.StatusOK, hours)
}

// Update substitui a semana inteira do profissional.
func (h *WorkingHoursHandler) Update(c *gin.Context) {
	t, professionalID, ok := h.professionalFor(c)
	if !ok {
		return
	}

	var req WorkingHoursUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "Dados inválidos.")
		return
	}

	seen := map[int]bool{}
	toCreate := make([]models.WorkingHours, 0, len(req.Days))
	for _, d := range req.Days {
		if seen[d.Weekday] {
			httperr.BadRequest(c, "duplicate_weekday", "Dia da semana repetido.")
			return
		}
		seen[d.Weekday] = true

		if d.Active {
			if !isHHMM(d.StartTime) || !isHHMM(d.EndTime) || d.StartTime >= d.EndTime {
				httperr.BadRequest(c, "invalid_working_hours", "Horário de expediente inválido.")
				return
			}
			if (d.LunchStart != "" || d.LunchEnd != "") &&
				(!isHHMM(d.LunchStart) || !isHHMM(d.LunchEnd) || d.LunchStart >= d.LunchEnd) {
				httperr.BadRequest(c, "invalid_lunch", "Horário de almoço inválido.")
				return
			}
		}

		toCreate = append(toCreate, models.WorkingHours{
			StudioID:       t.StudioID,
			ProfessionalID: professionalID,
			Weekday:        d.Weekday,
			Active:         d.Active,
			StartTime:      d.StartTime,
			EndTime:        d.EndTime,
			LunchStart:     d.LunchStart,
			LunchEnd:       d.LunchEnd,
		})
	}

	err := h.db.WithContext(c.Request.Context()).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("professional_id = ?", professionalID).Delete(&models.WorkingHours{}).Error; err != nil {
			return err
		}
		if len(toCreate) == 0 {
			return nil
		}
		return tx.Create(&toCreate).Error
	})
	if err != nil {
		httperr.Internal(c, "failed_to_save_working_hours", "Erro ao salvar expediente.")
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
