package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	domain "github.com/BruksfildServices01/studio-scheduler/internal/domain/appointment"
	"github.com/BruksfildServices01/studio-scheduler/internal/dto"
	"github.com/BruksfildServices01/studio-scheduler/internal/httperr"
	"github.com/BruksfildServices01/studio-scheduler/internal/httpresp"
	"github.com/BruksfildServices01/studio-scheduler/internal/models"
	ucAppointment "github.com/BruksfildServices01/studio-scheduler/internal/usecase/appointment"
)

////////////////////////////////////////////////////////
// HANDLER
////////////////////////////////////////////////////////

// PublicHandler atende a página de agendamento online do studio (sem login).
type PublicHandler struct {
	db           *gorm.DB
	repo         domain.Repository
	availability *ucAppointment.GetAvailability
	create       *ucAppointment.CreatePublicAppointment
	log          *logrus.Logger
}

func NewPublicHandler(
	db *gorm.DB,
	repo domain.Repository,
	availability *ucAppointment.GetAvailability,
	create *ucAppointment.CreatePublicAppointment,
	log *logrus.Logger,
) *PublicHandler {
	return &PublicHandler{
		db:           db,
		repo:         repo,
		availability: availability,
		create:       create,
		log:          log,
	}
}

////////////////////////////////////////////////////////
// DTOs
////////////////////////////////////////////////////////

type PublicCreateAppointmentRequest struct {
	ProfessionalID uint   `json:"professional_id" binding:"required"`
	ClientName     string `json:"client_name" binding:"required"`
	ClientPhone    string `json:"client_phone" binding:"required"`
	ClientEmail    string `json:"client_email" binding:"omitempty,email"`
	ServiceIDs     []uint `json:"service_ids" binding:"required,min=1"`
	Date           string `json:"date" binding:"required"` // YYYY-MM-DD
	Time           string `json:"time" binding:"required"` // HH:mm
	Notes          string `json:"notes"`
}

func (h *PublicHandler) studio(c *gin.Context) (*models.Studio, bool) {
	studio, err := h.repo.GetStudioBySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		httperr.NotFound(c, "studio_not_found", "Studio não encontrado.")
		return nil, false
	}
	return studio, true
}

////////////////////////////////////////////////////////
// CATÁLOGO
////////////////////////////////////////////////////////

// Catalog devolve o studio, os serviços ativos e a equipe que atende online.
func (h *PublicHandler) Catalog(c *gin.Context) {
	studio, ok := h.studio(c)
	if !ok {
		return
	}

	category := strings.TrimSpace(strings.ToLower(c.Query("category")))
	query := strings.TrimSpace(strings.ToLower(c.Query("query")))

	q := h.db.WithContext(c.Request.Context()).
		Where("studio_id = ? AND active = true", studio.ID)

	if category != "" {
		q = q.Where("LOWER(category) = ?", category)
	}

	if query != "" {
		like := "%" + query + "%"
		q = q.Where("LOWER(name) LIKE ? OR LOWER(description) LIKE ?", like, like)
	}

	var services []models.Service
	if err := q.Order("id ASC").Find(&services).Error; err != nil {
		httperr.Internal(c, "failed_to_list_services", "Erro ao listar serviços.")
		return
	}

	pros, err := h.repo.ListProfessionals(c.Request.Context(), studio.ID)
	if err != nil {
		respondError(c, h.log, "public", "Catalog", err)
		return
	}
	team := make([]dto.ProfessionalDTO, 0, len(pros))
	for _, p := range pros {
		team = append(team, dto.FromProfessional(p))
	}

	c.JSON(http.StatusOK, gin.H{
		"studio":        studio,
		"services":      services,
		"professionals": team,
	})
}

////////////////////////////////////////////////////////
// AVAILABILITY
////////////////////////////////////////////////////////

// parseIDs aceita "1,2,3" e também service_id repetido na query.
func parseIDs(values []string) ([]uint, error) {
	var ids []uint
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			id, err := strconv.ParseUint(part, 10, 64)
			if err != nil || id == 0 {
				return nil, strconv.ErrSyntax
			}
			ids = append(ids, uint(id))
		}
	}
	return ids, nil
}

func (h *PublicHandler) Availability(c *gin.Context) {
	dateStr := c.Query("date")
	professionalStr := c.Query("professional_id")
	serviceIDs, err := parseIDs(c.QueryArray("service_id"))

	if dateStr == "" || professionalStr == "" || err != nil || len(serviceIDs) == 0 {
		httperr.BadRequest(c, "missing_params", "Data, profissional e serviço obrigatórios.")
		return
	}

	professionalID, err := parseUint(professionalStr)
	if err != nil {
		httperr.BadRequest(c, "invalid_professional_id", "Profissional inválido.")
		return
	}

	studio, ok := h.studio(c)
	if !ok {
		return
	}

	date, err := parseDateInStudio(studio, dateStr)
	if err != nil {
		httperr.BadRequest(c, "invalid_date", "Data inválida.")
		return
	}

	slots, err := h.availability.Execute(c.Request.Context(), domain.AvailabilityInput{
		StudioID:       studio.ID,
		ProfessionalID: professionalID,
		ServiceIDs:     serviceIDs,
		Date:           date,
	})
	if err != nil {
		respondError(c, h.log, "public", "Availability", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"date":  dateStr,
		"slots": slots,
	})
}

////////////////////////////////////////////////////////
// CREATE APPOINTMENT
////////////////////////////////////////////////////////

func (h *PublicHandler) CreateAppointment(c *gin.Context) {
	var req PublicCreateAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "Dados inválidos.")
		return
	}

	ap, err := h.create.Execute(c.Request.Context(), ucAppointment.CreatePublicAppointmentInput{
		Slug:           c.Param("slug"),
		ProfessionalID: req.ProfessionalID,
		ClientName:     req.ClientName,
		ClientPhone:    req.ClientPhone,
		ClientEmail:    req.ClientEmail,
		ServiceIDs:     req.ServiceIDs,
		Date:           req.Date,
		Time:           req.Time,
		Notes:          req.Notes,
	})
	if err != nil {
		respondError(c, h.log, "public", "CreateAppointment", err)
		return
	}

	httpresp.Created(c, ucAppointment.ToDTO(*ap))
}
