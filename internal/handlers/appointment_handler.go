package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/BruksfildServices01/studio-scheduler/internal/dto"
	"github.com/BruksfildServices01/studio-scheduler/internal/httperr"
	"github.com/BruksfildServices01/studio-scheduler/internal/httpresp"
	"github.com/BruksfildServices01/studio-scheduler/internal/tenant"
	ucAppointment "github.com/BruksfildServices01/studio-scheduler/internal/usecase/appointment"
)

// ======================================================
// HANDLER
// ======================================================

type AppointmentHandler struct {
	create    *ucAppointment.CreateAppointment
	update    *ucAppointment.UpdateAppointment
	delete    *ucAppointment.DeleteAppointment
	setStatus *ucAppointment.SetStatus
	listRange *ucAppointment.ListRange
	schedule  *ucAppointment.GetSchedule
	log       *logrus.Logger
}

func NewAppointmentHandler(
	create *ucAppointment.CreateAppointment,
	update *ucAppointment.UpdateAppointment,
	delete *ucAppointment.DeleteAppointment,
	setStatus *ucAppointment.SetStatus,
	listRange *ucAppointment.ListRange,
	schedule *ucAppointment.GetSchedule,
	log *logrus.Logger,
) *AppointmentHandler {
	return &AppointmentHandler{
		create:    create,
		update:    update,
		delete:    delete,
		setStatus: setStatus,
		listRange: listRange,
		schedule:  schedule,
		log:       log,
	}
}

func writeInput(t tenant.Context, req dto.AppointmentWriteDTO) ucAppointment.WriteInput {
	in := ucAppointment.WriteInput{
		Tenant:         t,
		ProfessionalID: req.ProfessionalID,
		ClientID:       req.ClientID,
		ServiceIDs:     req.ServiceIDs,
		Start:          req.StartTime,
		Status:         req.Status,
		Notes:          req.Notes,
	}
	if req.EndTime != nil {
		in.End = *req.EndTime
	}
	return in
}

// ======================================================
// LIST [from, to)
// ======================================================

func (h *AppointmentHandler) List(c *gin.Context) {
	t, ok := tenantOf(c)
	if !ok {
		return
	}

	fromStr, toStr := c.Query("from"), c.Query("to")
	if fromStr == "" || toStr == "" {
		httperr.BadRequest(c, "missing_range", "Informe o período (from e to).")
		return
	}

	from, err := parseInstant(nil, fromStr)
	if err != nil {
		httperr.BadRequest(c, "invalid_range", "Período inválido.")
		return
	}
	to, err := parseInstant(nil, toStr)
	if err != nil {
		httperr.BadRequest(c, "invalid_range", "Período inválido.")
		return
	}

	var professionalID uint
	if p := c.Query("professional_id"); p != "" {
		v, err := strconv.ParseUint(p, 10, 64)
		if err != nil {
			httperr.BadRequest(c, "invalid_professional_id", "Profissional inválido.")
			return
		}
		professionalID = uint(v)
	}

	aps, err := h.listRange.Execute(c.Request.Context(), t, from, to, professionalID)
	if err != nil {
		respondError(c, h.log, "appointment", "List", err)
		return
	}

	out := make([]dto.AppointmentDTO, 0, len(aps))
	for _, ap := range aps {
		out = append(out, ucAppointment.ToDTO(ap))
	}
	httpresp.List(c, out)
}

// ======================================================
// SCHEDULE (grade posicionada)
// ======================================================

func (h *AppointmentHandler) Schedule(c *gin.Context) {
	t, ok := tenantOf(c)
	if !ok {
		return
	}

	in := ucAppointment.ScheduleInput{
		Tenant: t,
		View:   c.DefaultQuery("view", "day"),
		Date:   c.Query("date"),
	}
	if p := c.Query("professional_id"); p != "" {
		v, err := strconv.ParseUint(p, 10, 64)
		if err != nil {
			httperr.BadRequest(c, "invalid_professional_id", "Profissional inválido.")
			return
		}
		in.ProfessionalID = uint(v)
	}

	sched, err := h.schedule.Execute(c.Request.Context(), in)
	if err != nil {
		respondError(c, h.log, "appointment", "Schedule", err)
		return
	}
	httpresp.OK(c, sched)
}

// ======================================================
// CREATE / UPDATE
// ======================================================

func (h *AppointmentHandler) Create(c *gin.Context) {
	t, ok := tenantOf(c)
	if !ok {
		return
	}

	var req dto.AppointmentWriteDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "Dados inválidos.")
		return
	}

	ap, err := h.create.Execute(c.Request.Context(), writeInput(t, req))
	if err != nil {
		respondError(c, h.log, "appointment", "Create", err)
		return
	}
	httpresp.Created(c, ucAppointment.ToDTO(*ap))
}

// Update substitui o agendamento inteiro, recompondo os serviços do zero.
func (h *AppointmentHandler) Update(c *gin.Context) {
	t, ok := tenantOf(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	var req dto.AppointmentWriteDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "Dados inválidos.")
		return
	}

	ap, err := h.update.Execute(c.Request.Context(), id, writeInput(t, req))
	if err != nil {
		respondError(c, h.log, "appointment", "Update", err)
		return
	}
	httpresp.OK(c, ucAppointment.ToDTO(*ap))
}

// ======================================================
// STATUS / DELETE
// ======================================================

func (h *AppointmentHandler) SetStatus(c *gin.Context) {
	t, ok := tenantOf(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	var req dto.StatusDTO
	if err := c.ShouldBindJSON(&req); err != nil || req.Status == "" {
		httperr.BadRequest(c, "invalid_request", "Informe o status.")
		return
	}

	ap, err := h.setStatus.Execute(c.Request.Context(), t, id, req.Status)
	if err != nil {
		respondError(c, h.log, "appointment", "SetStatus", err)
		return
	}
	httpresp.OK(c, ucAppointment.ToDTO(*ap))
}

func (h *AppointmentHandler) Delete(c *gin.Context) {
	t, ok := tenantOf(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	if err := h.delete.Execute(c.Request.Context(), t, id); err != nil {
		respondError(c, h.log, "appointment", "Delete", err)
		return
	}
	httpresp.NoContent(c)
}
