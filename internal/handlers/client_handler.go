package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/BruksfildServices01/studio-scheduler/internal/httperr"
	"github.com/BruksfildServices01/studio-scheduler/internal/httpresp"
	"github.com/BruksfildServices01/studio-scheduler/internal/models"
	"github.com/BruksfildServices01/studio-scheduler/internal/validators"
)

type ClientHandler struct {
	db *gorm.DB
}

func NewClientHandler(db *gorm.DB) *ClientHandler {
	return &ClientHandler{db: db}
}

type CreateClientRequest struct {
	Name  string `json:"name" binding:"required"`
	Phone string `json:"phone"`
	Email string `json:"email" binding:"omitempty,email"`
	Notes string `json:"notes"`
}

// ======================================================
// LIST / SEARCH
// ======================================================
func (h *ClientHandler) List(c *gin.Context) {
	t, ok := tenantOf(c)
	if !ok {
		return
	}

	query := strings.ToLower(strings.TrimSpace(c.Query("query")))

	q := h.db.WithContext(c.Request.Context()).Where("studio_id = ?", t.StudioID)

	if query != "" {
		like := "%" + query + "%"
		q = q.Where(
			"LOWER(name) LIKE ? OR phone LIKE ? OR LOWER(email) LIKE ?",
			like, like, like,
		)
	}

	var clients []models.Client
	if err := q.
		Order("created_at DESC").
		Limit(200).
		Find(&clients).Error; err != nil {

		httperr.Internal(c, "failed_to_list_clients", "Erro ao listar clientes.")
		return
	}

	c.JSON(http.StatusOK, clients)
}

// ======================================================
// CREATE
// ======================================================
func (h *ClientHandler) Create(c *gin.Context) {
	t, ok := tenantOf(c)
	if !ok {
		return
	}

	var req CreateClientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "Dados inválidos.")
		return
	}

	phone := validators.NormalizePhone(req.Phone)
	if strings.TrimSpace(req.Phone) != "" && phone == "" {
		httperr.BadRequest(c, "invalid_phone", "Telefone inválido.")
		return
	}
	if phone != "" {
		var count int64
		h.db.WithContext(c.Request.Context()).
			Model(&models.Client{}).
			Where("studio_id = ? AND phone = ?", t.StudioID, phone).
			Count(&count)
		if count > 0 {
			httperr.Conflict(c, "client_phone_exists", "Já existe cliente com este telefone.")
			return
		}
	}

	client := models.Client{
		StudioID: t.StudioID,
		Name:     strings.TrimSpace(req.Name),
		Phone:    phone,
		Email:    strings.ToLower(strings.TrimSpace(req.Email)),
		Notes:    req.Notes,
	}
	if err := h.db.WithContext(c.Request.Context()).Create(&client).Error; err != nil {
		httperr.Internal(c, "failed_to_create_client", "Erro ao criar cliente.")
		return
	}

	httpresp.Created(c, client)
}
