package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/BruksfildServices01/studio-scheduler/internal/domain/checkout"
	"github.com/BruksfildServices01/studio-scheduler/internal/httperr"
	"github.com/BruksfildServices01/studio-scheduler/internal/httpresp"
	"github.com/BruksfildServices01/studio-scheduler/internal/models"
)

// PaymentMethodHandler configura as formas de pagamento (somente gerência).
type PaymentMethodHandler struct {
	db    *gorm.DB
	cache Invalidator
}

func NewPaymentMethodHandler(db *gorm.DB, cache Invalidator) *PaymentMethodHandler {
	return &PaymentMethodHandler{db: db, cache: cache}
}

type PaymentMethodRequest struct {
	Category        string             `json:"category" binding:"required,oneof=pix cash credit debit"`
	Name            string             `json:"name" binding:"required,max=60"`
	Rate            decimal.Decimal    `json:"rate"`
	MaxInstallments int                `json:"max_installments"`
	CreditRates     []checkout.Bracket `json:"credit_rates"`
	Active          *bool              `json:"active"`
}

func (h *PaymentMethodHandler) List(c *gin.Context) {
	t, ok := tenantOf(c)
	if !ok {
		return
	}

	var methods []models.PaymentMethod
	if err := h.db.WithContext(c.Request.Context()).
		Where("studio_id = ?", t.StudioID).
		Order("id ASC").
		Find(&methods).Error; err != nil {
		httperr.Internal(c, "failed_to_list_payment_methods", "Erro ao listar formas de pagamento.")
		return
	}
	c.JSON(http.StatusOK, methods)
}

// fillPaymentMethod copia o pedido para o registro e valida pelo mesmo parser usado no caixa.
func fillPaymentMethod(pm *models.PaymentMethod, req PaymentMethodRequest) error {
	pm.Category = req.Category
	pm.Name = req.Name
	pm.Rate = req.Rate
	pm.MaxInstallments = req.MaxInstallments
	if pm.MaxInstallments <= 0 {
		pm.MaxInstallments = 1
	}
	pm.CreditRates = nil
	if len(req.CreditRates) > 0 {
		raw, err := json.Marshal(req.CreditRates)
		if err != nil {
			return err
		}
		pm.CreditRates = datatypes.JSON(raw)
	}
	if req.Active != nil {
		pm.Active = *req.Active
	}

	// o ID ainda pode ser zero na criação
	candidate := *pm
	if candidate.ID == 0 {
		candidate.ID = 1
	}
	_, err := checkout.ParseMethod(candidate)
	return err
}

func (h *PaymentMethodHandler) Create(c *gin.Context) {
	t, ok := tenantOf(c)
	if !ok {
		return
	}

	var req PaymentMethodRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "Dados inválidos.")
		return
	}

	pm := models.PaymentMethod{StudioID: t.StudioID, Active: true}
	if err := fillPaymentMethod(&pm, req); err != nil {
		httperr.BadRequest(c, "invalid_payment_method", "Configuração de pagamento inválida.")
		return
	}

	if err := h.db.WithContext(c.Request.Context()).Create(&pm).Error; err != nil {
		httperr.Internal(c, "failed_to_create_payment_method", "Erro ao salvar forma de pagamento.")
		return
	}
	h.cache.Invalidate(c.Request.Context(), t.StudioID)

	httpresp.Created(c, pm)
}

func (h *PaymentMethodHandler) Update(c *gin.Context) {
	t, ok := tenantOf(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	var pm models.PaymentMethod
	if err := h.db.WithContext(c.Request.Context()).
		Where("id = ? AND studio_id = ?", id, t.StudioID).
		First(&pm).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			httperr.NotFound(c, "payment_method_not_found", "Forma de pagamento não encontrada.")
			return
		}
		httperr.Internal(c, "failed_to_get_payment_method", "Erro ao buscar forma de pagamento.")
		return
	}

	var req PaymentMethodRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "Dados inválidos.")
		return
	}
	if err := fillPaymentMethod(&pm, req); err != nil {
		httperr.BadRequest(c, "invalid_payment_method", "Configuração de pagamento inválida.")
		return
	}

	if err := h.db.WithContext(c.Request.Context()).Save(&pm).Error; err != nil {
		httperr.Internal(c, "failed_to_update_payment_method", "Erro ao salvar forma de pagamento.")
		return
	}
	h.cache.Invalidate(c.Request.Context(), t.StudioID)

	c.JSON(http.StatusOK, pm)
}
