package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/BruksfildServices01/studio-scheduler/internal/dto"
	"github.com/BruksfildServices01/studio-scheduler/internal/httperr"
	"github.com/BruksfildServices01/studio-scheduler/internal/httpresp"
	ucCheckout "github.com/BruksfildServices01/studio-scheduler/internal/usecase/checkout"
)

// ======================================================
// HANDLER
// ======================================================

type CommandHandler struct {
	open       *ucCheckout.OpenCommand
	get        *ucCheckout.GetCommand
	addItem    *ucCheckout.AddItem
	removeItem *ucCheckout.RemoveItem
	cancel     *ucCheckout.CancelCommand
	finish     *ucCheckout.FinishCommand
	log        *logrus.Logger
}

func NewCommandHandler(
	open *ucCheckout.OpenCommand,
	get *ucCheckout.GetCommand,
	addItem *ucCheckout.AddItem,
	removeItem *ucCheckout.RemoveItem,
	cancel *ucCheckout.CancelCommand,
	finish *ucCheckout.FinishCommand,
	log *logrus.Logger,
) *CommandHandler {
	return &CommandHandler{
		open:       open,
		get:        get,
		addItem:    addItem,
		removeItem: removeItem,
		cancel:     cancel,
		finish:     finish,
		log:        log,
	}
}

// ======================================================
// OPEN / GET / CANCEL
// ======================================================

func (h *CommandHandler) Open(c *gin.Context) {
	t, ok := tenantOf(c)
	if !ok {
		return
	}

	var req dto.OpenCommandDTO
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			httperr.BadRequest(c, "invalid_request", "Dados inválidos.")
			return
		}
	}

	cmd, err := h.open.Execute(c.Request.Context(), t, req.ClientID, req.AppointmentID)
	if err != nil {
		respondError(c, h.log, "checkout", "Open", err)
		return
	}
	httpresp.Created(c, cmd)
}

func (h *CommandHandler) Get(c *gin.Context) {
	t, ok := tenantOf(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	cmd, err := h.get.Execute(c.Request.Context(), t, id)
	if err != nil {
		respondError(c, h.log, "checkout", "Get", err)
		return
	}
	httpresp.OK(c, cmd)
}

func (h *CommandHandler) Cancel(c *gin.Context) {
	t, ok := tenantOf(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	cmd, err := h.cancel.Execute(c.Request.Context(), t, id)
	if err != nil {
		respondError(c, h.log, "checkout", "Cancel", err)
		return
	}
	httpresp.OK(c, cmd)
}

// ======================================================
// ITEMS
// ======================================================

func (h *CommandHandler) AddItem(c *gin.Context) {
	t, ok := tenantOf(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	var req dto.CommandItemDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "Item inválido.")
		return
	}

	cmd, err := h.addItem.Execute(c.Request.Context(), t, id, ucCheckout.ItemInput{
		Kind:           req.Kind,
		RefID:          req.RefID,
		ProfessionalID: req.ProfessionalID,
		Quantity:       req.Quantity,
	})
	if err != nil {
		respondError(c, h.log, "checkout", "AddItem", err)
		return
	}
	httpresp.OK(c, cmd)
}

func (h *CommandHandler) RemoveItem(c *gin.Context) {
	t, ok := tenantOf(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	itemID, ok := paramID(c, "itemId")
	if !ok {
		return
	}

	cmd, err := h.removeItem.Execute(c.Request.Context(), t, id, itemID)
	if err != nil {
		respondError(c, h.log, "checkout", "RemoveItem", err)
		return
	}
	httpresp.OK(c, cmd)
}

// ======================================================
// FINISH (todas as entradas num único pedido)
// ======================================================

func (h *CommandHandler) Finish(c *gin.Context) {
	t, ok := tenantOf(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	var req dto.FinishCommandDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "Pagamentos inválidos.")
		return
	}

	in := ucCheckout.FinishInput{Tenant: t, CommandID: id}
	for _, e := range req.Entries {
		in.Entries = append(in.Entries, ucCheckout.EntryInput{
			MethodID:       e.MethodID,
			Amount:         e.Amount,
			Installments:   e.Installments,
			IdempotencyKey: e.IdempotencyKey,
		})
	}

	res, err := h.finish.Execute(c.Request.Context(), in)
	if err != nil {
		respondError(c, h.log, "checkout", "Finish", err)
		return
	}

	httpresp.OK(c, dto.FinishResultDTO{
		CommandID: res.Command.ID,
		Status:    res.Command.Status,
		Gross:     res.Totals.Gross,
		Fee:       res.Totals.Fee,
		Net:       res.Totals.Net,
		Replayed:  res.Replayed,
	})
}
