package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/BruksfildServices01/studio-scheduler/internal/httperr"
	"github.com/BruksfildServices01/studio-scheduler/internal/models"
	"github.com/BruksfildServices01/studio-scheduler/internal/timezone"
)

// Invalidator descarta o bootstrap em cache depois de mudanças no catálogo.
type Invalidator interface {
	Invalidate(ctx context.Context, studioID uint)
}

type StudioHandler struct {
	db    *gorm.DB
	cache Invalidator
}

func NewStudioHandler(db *gorm.DB, cache Invalidator) *StudioHandler {
	return &StudioHandler{db: db, cache: cache}
}

type UpdateStudioConfigRequest struct {
	Name              *string `json:"name"`
	Phone             *string `json:"phone"`
	Address           *string `json:"address"`
	Timezone          *string `json:"timezone"`
	MinAdvanceMinutes *int    `json:"min_advance_minutes"`
	DayStartHour      *int    `json:"day_start_hour"`
	DayEndHour        *int    `json:"day_end_hour"`
	SlotMinutes       *int    `json:"slot_minutes"`
	AllowOverlap      *bool   `json:"allow_overlap"`
}

func (h *StudioHandler) load(c *gin.Context) (*models.Studio, bool) {
	t, ok := tenantOf(c)
	if !ok {
		return nil, false
	}

	var studio models.Studio
	if err := h.db.WithContext(c.Request.Context()).First(&studio, t.StudioID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			httperr.NotFound(c, "studio_not_found", "Studio não encontrado.")
			return nil, false
		}
		httperr.Internal(c, "failed_to_get_studio", "Erro ao buscar dados do studio.")
		return nil, false
	}
	return &studio, true
}

func (h *StudioHandler) Get(c *gin.Context) {
	studio, ok := h.load(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, studio)
}

func (h *StudioHandler) Update(c *gin.Context) {
	studio, ok := h.load(c)
	if !ok {
		return
	}

	var req UpdateStudioConfigRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "Dados inválidos na requisição.")
		return
	}

	if req.Name != nil {
		studio.Name = *req.Name
	}
	if req.Phone != nil {
		studio.Phone = *req.Phone
	}
	if req.Address != nil {
		studio.Address = *req.Address
	}
	if req.Timezone != nil {
		if !timezone.IsValid(*req.Timezone) {
			httperr.BadRequest(c, "invalid_timezone", "Fuso horário inválido.")
			return
		}
		studio.Timezone = *req.Timezone
	}
	if req.MinAdvanceMinutes != nil {
		if *req.MinAdvanceMinutes < 0 {
			httperr.BadRequest(c, "invalid_min_advance", "Antecedência mínima deve ser zero ou positiva (em minutos).")
			return
		}
		studio.MinAdvanceMinutes = *req.MinAdvanceMinutes
	}
	if req.DayStartHour != nil {
		studio.DayStartHour = *req.DayStartHour
	}
	if req.DayEndHour != nil {
		studio.DayEndHour = *req.DayEndHour
	}
	if studio.DayStartHour < 0 || studio.DayEndHour > 24 || studio.DayStartHour >= studio.DayEndHour {
		httperr.BadRequest(c, "invalid_day_window", "Janela do dia inválida.")
		return
	}
	if req.SlotMinutes != nil {
		if *req.SlotMinutes <= 0 || 60%*req.SlotMinutes != 0 {
			httperr.BadRequest(c, "invalid_slot_minutes", "O encaixe precisa dividir a hora (5, 10, 15, 30...).")
			return
		}
		studio.SlotMinutes = *req.SlotMinutes
	}
	if req.AllowOverlap != nil {
		studio.AllowOverlap = *req.AllowOverlap
	}

	if err := h.db.WithContext(c.Request.Context()).Save(studio).Error; err != nil {
		httperr.Internal(c, "failed_to_update_studio", "Erro ao salvar as configurações do studio.")
		return
	}
	h.cache.Invalidate(c.Request.Context(), studio.ID)

	c.JSON(http.StatusOK, studio)
}
